package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"ecoroute/pkg/config"
	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/emission"
	"ecoroute/pkg/engine/routingalgorithm"
	"ecoroute/pkg/history"
	"ecoroute/pkg/parser"
	"ecoroute/pkg/place"
	"ecoroute/pkg/server/rest"
	"ecoroute/pkg/server/rest/service"
	"ecoroute/pkg/traffic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "net/http/pprof"

	"github.com/cockroachdb/pebble"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	configFile = flag.String("config", "config.yaml", "path to yaml config file")
	listenAddr = flag.String("listenaddr", "", "server listen address, overrides config")
)

func main() {
	flag.Parse()

	cfg, err := config.ReadConfig(*configFile)
	if err != nil {
		log.Printf("%v, falling back to defaults", err)
		cfg = config.Default()
	}
	if *listenAddr != "" {
		cfg.Listen = *listenAddr
	}

	placeNodes, err := parser.LoadPlacesSpace(cfg.Data.Places)
	if err != nil {
		log.Fatal(err)
	}
	cityNodes, err := parser.LoadCitiesComma(cfg.Data.Cities)
	if err != nil {
		log.Fatal(err)
	}

	sparseGraph, err := datastructure.NewKNNGraph(placeNodes, cfg.Graph.KNearest)
	if err != nil {
		log.Fatal(err)
	}
	denseGraph, err := datastructure.NewDenseGraph(cityNodes)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("place graph: %d nodes, %d edges", sparseGraph.NumNodes(), sparseGraph.EdgeCount())
	log.Printf("city graph: %d nodes", denseGraph.NumNodes())

	carFactors, err := parser.LoadVehicleProfiles(cfg.Data.Cars)
	if err != nil {
		log.Fatal(err)
	}
	profiles := emission.NewVehicleProfiles(carFactors)

	db, err := pebble.Open(cfg.History.Dir, &pebble.Options{})
	if err != nil {
		log.Fatal(err)
	}
	historyDB := history.NewKVDB(db)
	defer historyDB.Close()

	provider := traffic.NewTomTomClient(cfg.Traffic.APIKey,
		time.Duration(cfg.Traffic.TimeoutMS)*time.Millisecond)
	cache := traffic.NewCache(cfg.Traffic.CachePath)
	sampler := traffic.NewSampler(provider, cache, cfg.Traffic.SampleStride)

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m)) // prometheus http middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	sparseEngine := routingalgorithm.NewRouteEngine(sparseGraph)
	denseEngine := routingalgorithm.NewRouteEngine(denseGraph)

	routingSvc := service.NewRoutingService(
		sparseGraph, denseGraph,
		sparseEngine, denseEngine,
		place.NewResolver(sparseGraph.Nodes()), place.NewResolver(denseGraph.Nodes()),
		place.NewSpatialIndex(sparseGraph.Nodes()), place.NewSpatialIndex(denseGraph.Nodes()),
		sampler, profiles, historyDB,
		cfg.Emission.DefaultGramsPerKm, cfg.Traffic.TTLMinutes,
	)
	rest.RoutingRouter(r, routingSvc, m)

	log.Printf("server started at %s", cfg.Listen)
	log.Fatal(http.ListenAndServe(cfg.Listen, r))
}
