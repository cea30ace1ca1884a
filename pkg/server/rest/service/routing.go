package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/emission"
	"ecoroute/pkg/geo"
	"ecoroute/pkg/history"
	"ecoroute/pkg/place"
	"ecoroute/pkg/server"
	"ecoroute/pkg/util"
)

type RouteEngine interface {
	ShortestPath(source, target int32) (datastructure.Path, bool, error)
	TwoBestPaths(source, target int32) ([]datastructure.Path, error)
}

type PlaceResolver interface {
	Resolve(query string) (int32, []place.Candidate, error)
}

type NearestIndex interface {
	NearestNodeIDx(lat, lon float64) (int32, bool)
}

type TrafficSampler interface {
	ApplyTrafficFactors(ctx context.Context, g *datastructure.DenseGraph, forceRefresh bool, ttlMinutes int) bool
}

type HistoryDB interface {
	SaveRecord(rec history.RouteRecord) error
	UserRecords(username string) ([]history.RouteRecord, error)
	DeleteUserRecords(username string) (int, error)
	TopRoutes(limit int) ([]history.RouteRecord, error)
	UserStats(username string) (history.Stats, error)
}

// PlaceQuery one endpoint of a route request. Either a place name or a
// raw coordinate that gets snapped to the nearest known place.
type PlaceQuery struct {
	Name     string
	Lat, Lon float64
	HasCoord bool
}

type RouteResult struct {
	Polyline    string
	DistanceKm  float64
	CarTimeMin  float64
	BikeTimeMin float64
	WalkTimeMin float64
	Places      []string
	Route       []geo.Coordinate
}

type EcoSegment struct {
	From          string  `json:"from"`
	To            string  `json:"to"`
	DistanceKm    float64 `json:"distance_km"`
	TrafficFactor float64 `json:"traffic_factor"`
	CO2Grams      float64 `json:"co2_grams"`
	CarTimeMin    float64 `json:"car_time_min"`
}

type EcoRouteResult struct {
	Polyline    string
	DistanceKm  float64
	CO2Kg       float64
	GramsPerKm  float64
	CarTimeMin  float64
	BikeTimeMin float64
	WalkTimeMin float64
	Segments    []EcoSegment
	Places      []string
	Route       []geo.Coordinate
	CacheHit    bool
}

type RoutingService struct {
	sparseGraph *datastructure.Graph
	denseGraph  *datastructure.DenseGraph

	sparseEngine RouteEngine
	denseEngine  RouteEngine

	sparseResolver PlaceResolver
	denseResolver  PlaceResolver
	sparseIndex    NearestIndex
	denseIndex     NearestIndex

	sampler   TrafficSampler
	profiles  *emission.VehicleProfiles
	historyDB HistoryDB

	gramsPerKm float64
	ttlMinutes int

	// denseMu serializes emission searches: traffic factors and co2 weights
	// live on the shared dense graph, so the request that wrote them must be
	// the one running Dijkstra over them.
	denseMu sync.Mutex
}

func NewRoutingService(
	sparseGraph *datastructure.Graph, denseGraph *datastructure.DenseGraph,
	sparseEngine, denseEngine RouteEngine,
	sparseResolver, denseResolver PlaceResolver,
	sparseIndex, denseIndex NearestIndex,
	sampler TrafficSampler, profiles *emission.VehicleProfiles, hist HistoryDB,
	gramsPerKm float64, ttlMinutes int,
) *RoutingService {
	return &RoutingService{
		sparseGraph:    sparseGraph,
		denseGraph:     denseGraph,
		sparseEngine:   sparseEngine,
		denseEngine:    denseEngine,
		sparseResolver: sparseResolver,
		denseResolver:  denseResolver,
		sparseIndex:    sparseIndex,
		denseIndex:     denseIndex,
		sampler:        sampler,
		profiles:       profiles,
		historyDB:      hist,
		gramsPerKm:     gramsPerKm,
		ttlMinutes:     ttlMinutes,
	}
}

func (uc *RoutingService) resolveQuery(q PlaceQuery, resolver PlaceResolver, index NearestIndex) (int32, error) {
	if q.HasCoord {
		idx, ok := index.NearestNodeIDx(q.Lat, q.Lon)
		if !ok {
			return -1, server.WrapErrorf(nil, server.ErrNotFound,
				"no place near (%f, %f) on my map", q.Lat, q.Lon)
		}
		return idx, nil
	}

	idx, candidates, err := resolver.Resolve(q.Name)
	if err != nil {
		names := make([]string, 0, len(candidates))
		for _, c := range candidates {
			names = append(names, c.Name)
		}
		if len(names) > 0 {
			return -1, server.WrapErrorf(err, server.ErrNotFound,
				"place %q not found, did you mean: %s", q.Name, strings.Join(names, ", "))
		}
		return -1, server.WrapErrorf(err, server.ErrNotFound, "place %q not found", q.Name)
	}
	return idx, nil
}

// ShortestPaths finds the best and (when one exists) the second best
// route between two places on the sparse place graph, weighted by
// haversine distance.
func (uc *RoutingService) ShortestPaths(ctx context.Context, src, dst PlaceQuery) ([]RouteResult, error) {
	srcIDx, err := uc.resolveQuery(src, uc.sparseResolver, uc.sparseIndex)
	if err != nil {
		return nil, err
	}
	dstIDx, err := uc.resolveQuery(dst, uc.sparseResolver, uc.sparseIndex)
	if err != nil {
		return nil, err
	}
	if srcIDx == dstIDx {
		return nil, server.WrapErrorf(nil, server.ErrBadParamInput,
			"source and destination resolve to the same place %q", uc.sparseGraph.GetNode(srcIDx).Name)
	}

	paths, err := uc.sparseEngine.TwoBestPaths(srcIDx, dstIDx)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}

	results := make([]RouteResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, uc.renderSparsePath(p))
	}
	return results, nil
}

func (uc *RoutingService) renderSparsePath(p datastructure.Path) RouteResult {
	places := make([]string, 0, len(p.Nodes))
	coords := make([]geo.Coordinate, 0, len(p.Nodes))
	for _, idx := range p.Nodes {
		node := uc.sparseGraph.GetNode(idx)
		places = append(places, node.Name)
		coords = append(coords, node.Coordinate())
	}
	route := geo.RDPSimplify(geo.InterpolateRoute(coords), geo.DefaultSimplifyEpsDeg)

	return RouteResult{
		Polyline:    datastructure.RenderPath(route),
		DistanceKm:  util.RoundFloat(p.Cost, 2),
		CarTimeMin:  util.RoundFloat(emission.ComputeTimeMin(p.Cost, emission.CarKmh), 2),
		BikeTimeMin: util.RoundFloat(emission.ComputeTimeMin(p.Cost, emission.BikeKmh), 2),
		WalkTimeMin: util.RoundFloat(emission.ComputeTimeMin(p.Cost, emission.WalkKmh), 2),
		Places:      places,
		Route:       route,
	}
}

// EcoRoute finds the lowest-emission route between two cities on the
// dense city graph. Edge weights are co2 grams, so the search trades
// distance against live congestion.
func (uc *RoutingService) EcoRoute(ctx context.Context, src, dst PlaceQuery,
	carModel, username string, refreshTraffic bool) (EcoRouteResult, bool, error) {

	srcIDx, err := uc.resolveQuery(src, uc.denseResolver, uc.denseIndex)
	if err != nil {
		return EcoRouteResult{}, false, err
	}
	dstIDx, err := uc.resolveQuery(dst, uc.denseResolver, uc.denseIndex)
	if err != nil {
		return EcoRouteResult{}, false, err
	}
	if srcIDx == dstIDx {
		return EcoRouteResult{}, false, server.WrapErrorf(nil, server.ErrBadParamInput,
			"source and destination resolve to the same city %q", uc.denseGraph.GetNode(srcIDx).Name)
	}

	uc.denseMu.Lock()
	defer uc.denseMu.Unlock()

	cacheHit := uc.sampler.ApplyTrafficFactors(ctx, uc.denseGraph, refreshTraffic, uc.ttlMinutes)

	gramsPerKm := uc.gramsPerKm
	if carModel != "" {
		if factor, ok := uc.profiles.Factor(carModel); ok {
			gramsPerKm = factor
		}
	}
	emission.ApplyCO2Weights(uc.denseGraph, gramsPerKm)

	p, found, err := uc.denseEngine.ShortestPath(srcIDx, dstIDx)
	if err != nil {
		return EcoRouteResult{}, false, server.WrapErrorf(err, server.ErrBadParamInput, err.Error())
	}
	if !found {
		return EcoRouteResult{}, false, nil
	}

	res := uc.renderEcoPath(p, gramsPerKm)
	res.CacheHit = cacheHit

	if username != "" {
		rec := history.RouteRecord{
			Username:    username,
			Source:      res.Places[0],
			Destination: res.Places[len(res.Places)-1],
			DistanceKm:  res.DistanceKm,
			CO2Kg:       res.CO2Kg,
			CreatedAt:   time.Now().UnixNano(),
		}
		if err := uc.historyDB.SaveRecord(rec); err != nil {
			return EcoRouteResult{}, true, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
		}
	}
	return res, true, nil
}

func (uc *RoutingService) renderEcoPath(p datastructure.Path, gramsPerKm float64) EcoRouteResult {
	places := make([]string, 0, len(p.Nodes))
	coords := make([]geo.Coordinate, 0, len(p.Nodes))
	for _, idx := range p.Nodes {
		node := uc.denseGraph.GetNode(idx)
		places = append(places, node.Name)
		coords = append(coords, node.Coordinate())
	}
	route := geo.RDPSimplify(geo.InterpolateRoute(coords), geo.DefaultSimplifyEpsDeg)

	segments := make([]EcoSegment, 0, len(p.Nodes)-1)
	var totalDist, totalCO2, carTime float64
	for i := 0; i+1 < len(p.Nodes); i++ {
		edge := uc.denseGraph.GetEdge(p.Nodes[i], p.Nodes[i+1])
		segCarTime := emission.CarTimeMinWithTraffic(edge.DistanceKm, edge.TrafficFactor)
		segments = append(segments, EcoSegment{
			From:          places[i],
			To:            places[i+1],
			DistanceKm:    util.RoundFloat(edge.DistanceKm, 2),
			TrafficFactor: util.RoundFloat(edge.TrafficFactor, 2),
			CO2Grams:      util.RoundFloat(edge.CO2Cost, 2),
			CarTimeMin:    util.RoundFloat(segCarTime, 2),
		})
		totalDist += edge.DistanceKm
		totalCO2 += edge.CO2Cost
		carTime += segCarTime
	}

	return EcoRouteResult{
		Polyline:    datastructure.RenderPath(route),
		DistanceKm:  util.RoundFloat(totalDist, 2),
		CO2Kg:       util.RoundFloat(totalCO2/1000.0, 3),
		GramsPerKm:  gramsPerKm,
		CarTimeMin:  util.RoundFloat(carTime, 2),
		BikeTimeMin: util.RoundFloat(emission.ComputeTimeMin(totalDist, emission.BikeKmh), 2),
		WalkTimeMin: util.RoundFloat(emission.ComputeTimeMin(totalDist, emission.WalkKmh), 2),
		Segments:    segments,
		Places:      places,
		Route:       route,
	}
}

// ResolvePlace resolves a query against the sparse place list. The
// candidate list is only filled on a fuzzy or ambiguous match.
func (uc *RoutingService) ResolvePlace(ctx context.Context, query string) (datastructure.Node, []place.Candidate, error) {
	idx, candidates, err := uc.sparseResolver.Resolve(query)
	if err != nil {
		if len(candidates) > 0 {
			return datastructure.Node{}, candidates, server.WrapErrorf(err, server.ErrNotFound,
				"place %q not found", query)
		}
		return datastructure.Node{}, nil, server.WrapErrorf(err, server.ErrNotFound, "place %q not found", query)
	}
	return uc.sparseGraph.GetNode(idx), nil, nil
}

func (uc *RoutingService) UserHistory(ctx context.Context, username string) ([]history.RouteRecord, error) {
	recs, err := uc.historyDB.UserRecords(username)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return recs, nil
}

func (uc *RoutingService) DeleteHistory(ctx context.Context, username string) (int, error) {
	deleted, err := uc.historyDB.DeleteUserRecords(username)
	if err != nil {
		return 0, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return deleted, nil
}

func (uc *RoutingService) TopRoutes(ctx context.Context, limit int) ([]history.RouteRecord, error) {
	recs, err := uc.historyDB.TopRoutes(limit)
	if err != nil {
		return nil, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return recs, nil
}

func (uc *RoutingService) UserStats(ctx context.Context, username string) (history.Stats, error) {
	stats, err := uc.historyDB.UserStats(username)
	if err != nil {
		return history.Stats{}, server.WrapErrorf(err, server.ErrInternalServerError, server.MessageInternalServerError)
	}
	return stats, nil
}
