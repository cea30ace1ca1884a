package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ecoroute/pkg/datastructure"
	"ecoroute/pkg/geo"
	"ecoroute/pkg/history"
	"ecoroute/pkg/place"
	"ecoroute/pkg/server"
	"ecoroute/pkg/server/rest/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type RoutingService interface {
	ShortestPaths(ctx context.Context, src, dst service.PlaceQuery) ([]service.RouteResult, error)
	EcoRoute(ctx context.Context, src, dst service.PlaceQuery,
		carModel, username string, refreshTraffic bool) (service.EcoRouteResult, bool, error)
	ResolvePlace(ctx context.Context, query string) (datastructure.Node, []place.Candidate, error)

	UserHistory(ctx context.Context, username string) ([]history.RouteRecord, error)
	DeleteHistory(ctx context.Context, username string) (int, error)
	TopRoutes(ctx context.Context, limit int) ([]history.RouteRecord, error)
	UserStats(ctx context.Context, username string) (history.Stats, error)
}

type RoutingHandler struct {
	svc          RoutingService
	promeMetrics *metrics
}

func RoutingRouter(r *chi.Mux, svc RoutingService, m *metrics) {
	handler := &RoutingHandler{svc, m}

	r.Group(func(r chi.Router) {
		r.Route("/api/routes", func(r chi.Router) {
			r.Post("/shortest-path", handler.shortestPath)
			r.Post("/eco", handler.ecoRoute)
		})
		r.Route("/api/places", func(r chi.Router) {
			r.Post("/resolve", handler.resolvePlace)
		})
		r.Route("/api/history", func(r chi.Router) {
			r.Get("/top-routes", handler.topRoutes)
			r.Get("/{username}", handler.userHistory)
			r.Get("/{username}/stats", handler.userStats)
			r.Delete("/{username}", handler.deleteHistory)
		})
	})
}

// PlaceQueryReq one endpoint of a route query. Give either a place
// name or a lat/lon coordinate pair.
type PlaceQueryReq struct {
	Name string  `json:"name" validate:"omitempty,max=100"`
	Lat  float64 `json:"lat" validate:"omitempty,lt=90,gt=-90"`
	Lon  float64 `json:"lon" validate:"omitempty,lt=180,gt=-180"`
}

func (p *PlaceQueryReq) valid() bool {
	return p.Name != "" || p.Lat != 0 || p.Lon != 0
}

func (p *PlaceQueryReq) toQuery() service.PlaceQuery {
	if p.Name != "" {
		return service.PlaceQuery{Name: p.Name}
	}
	return service.PlaceQuery{Lat: p.Lat, Lon: p.Lon, HasCoord: true}
}

type ShortestPathRequest struct {
	Src PlaceQueryReq `json:"src" validate:"required"`
	Dst PlaceQueryReq `json:"dst" validate:"required"`
}

func (s *ShortestPathRequest) Bind(r *http.Request) error {
	if !s.Src.valid() || !s.Dst.valid() {
		return errors.New("invalid request")
	}
	return nil
}

type RouteRes struct {
	Polyline    string           `json:"path"`
	DistanceKm  float64          `json:"distance_km"`
	CarTimeMin  float64          `json:"car_time_min"`
	BikeTimeMin float64          `json:"bike_time_min"`
	WalkTimeMin float64          `json:"walk_time_min"`
	Places      []string         `json:"places"`
	Route       []geo.Coordinate `json:"route,omitempty"`
}

type ShortestPathResponse struct {
	Found  bool       `json:"found"`
	Routes []RouteRes `json:"routes"`
	Alg    string     `json:"algorithm"`
}

func NewShortestPathResponse(results []service.RouteResult) *ShortestPathResponse {
	routes := make([]RouteRes, 0, len(results))
	for _, res := range results {
		routes = append(routes, RouteRes{
			Polyline:    res.Polyline,
			DistanceKm:  res.DistanceKm,
			CarTimeMin:  res.CarTimeMin,
			BikeTimeMin: res.BikeTimeMin,
			WalkTimeMin: res.WalkTimeMin,
			Places:      res.Places,
			Route:       res.Route,
		})
	}
	return &ShortestPathResponse{
		Found:  len(routes) > 0,
		Routes: routes,
		Alg:    "Dijkstra + Yen",
	}
}

func (h *RoutingHandler) shortestPath(w http.ResponseWriter, r *http.Request) {
	data := &ShortestPathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	h.promeMetrics.RouteQueryCount.WithLabelValues("distance").Inc()
	results, err := h.svc.ShortestPaths(r.Context(), data.Src.toQuery(), data.Dst.toQuery())
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewShortestPathResponse(results))
}

type EcoRouteRequest struct {
	Src            PlaceQueryReq `json:"src" validate:"required"`
	Dst            PlaceQueryReq `json:"dst" validate:"required"`
	CarModel       string        `json:"car_model" validate:"omitempty,max=100"`
	Username       string        `json:"username" validate:"omitempty,max=100"`
	RefreshTraffic bool          `json:"refresh_traffic"`
}

func (s *EcoRouteRequest) Bind(r *http.Request) error {
	if !s.Src.valid() || !s.Dst.valid() {
		return errors.New("invalid request")
	}
	return nil
}

type EcoRouteResponse struct {
	Found       bool                 `json:"found"`
	Polyline    string               `json:"path,omitempty"`
	DistanceKm  float64              `json:"distance_km,omitempty"`
	CO2Kg       float64              `json:"co2_kg,omitempty"`
	GramsPerKm  float64              `json:"grams_per_km,omitempty"`
	CarTimeMin  float64              `json:"car_time_min,omitempty"`
	BikeTimeMin float64              `json:"bike_time_min,omitempty"`
	WalkTimeMin float64              `json:"walk_time_min,omitempty"`
	Segments    []service.EcoSegment `json:"segments,omitempty"`
	Places      []string             `json:"places,omitempty"`
	Route       []geo.Coordinate     `json:"route,omitempty"`
	TrafficSrc  string               `json:"traffic_source"`
}

func NewEcoRouteResponse(res service.EcoRouteResult, found bool) *EcoRouteResponse {
	trafficSrc := "live"
	if res.CacheHit {
		trafficSrc = "cache"
	}
	return &EcoRouteResponse{
		Found:       found,
		Polyline:    res.Polyline,
		DistanceKm:  res.DistanceKm,
		CO2Kg:       res.CO2Kg,
		GramsPerKm:  res.GramsPerKm,
		CarTimeMin:  res.CarTimeMin,
		BikeTimeMin: res.BikeTimeMin,
		WalkTimeMin: res.WalkTimeMin,
		Segments:    res.Segments,
		Places:      res.Places,
		Route:       res.Route,
		TrafficSrc:  trafficSrc,
	}
}

func (h *RoutingHandler) ecoRoute(w http.ResponseWriter, r *http.Request) {
	data := &EcoRouteRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	h.promeMetrics.RouteQueryCount.WithLabelValues("eco").Inc()
	res, found, err := h.svc.EcoRoute(r.Context(), data.Src.toQuery(), data.Dst.toQuery(),
		data.CarModel, data.Username, data.RefreshTraffic)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, NewEcoRouteResponse(res, found))
}

type ResolvePlaceRequest struct {
	Query string `json:"query" validate:"required,max=100"`
}

func (s *ResolvePlaceRequest) Bind(r *http.Request) error {
	if s.Query == "" {
		return errors.New("invalid request")
	}
	return nil
}

type ResolvePlaceResponse struct {
	Name       string            `json:"name,omitempty"`
	Lat        float64           `json:"lat,omitempty"`
	Lon        float64           `json:"lon,omitempty"`
	Candidates []place.Candidate `json:"candidates,omitempty"`
}

func (h *RoutingHandler) resolvePlace(w http.ResponseWriter, r *http.Request) {
	data := &ResolvePlaceRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	node, candidates, err := h.svc.ResolvePlace(r.Context(), data.Query)
	if err != nil {
		if len(candidates) > 0 {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, &ResolvePlaceResponse{Candidates: candidates})
			return
		}
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &ResolvePlaceResponse{Name: node.Name, Lat: node.Lat, Lon: node.Lon})
}

type HistoryResponse struct {
	Records []history.RouteRecord `json:"records"`
}

func (h *RoutingHandler) userHistory(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	recs, err := h.svc.UserHistory(r.Context(), username)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &HistoryResponse{Records: recs})
}

type DeleteHistoryResponse struct {
	Deleted int `json:"deleted"`
}

func (h *RoutingHandler) deleteHistory(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	deleted, err := h.svc.DeleteHistory(r.Context(), username)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &DeleteHistoryResponse{Deleted: deleted})
}

func (h *RoutingHandler) topRoutes(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if q := r.URL.Query().Get("limit"); q != "" {
		parsed, err := strconv.Atoi(q)
		if err != nil || parsed < 1 {
			render.Render(w, r, ErrInvalidRequest(errors.New("limit must be a positive integer")))
			return
		}
		limit = parsed
	}

	recs, err := h.svc.TopRoutes(r.Context(), limit)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &HistoryResponse{Records: recs})
}

func (h *RoutingHandler) userStats(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	stats, err := h.svc.UserStats(r.Context(), username)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, stats)
}

// ErrResponse model info
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrRender(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 422,
		StatusText:     "Error rendering response.",
		ErrorText:      err.Error(),
	}
}

func ErrChi(err error) render.Renderer {
	statusText := ""
	switch getStatusCode(err) {
	case http.StatusNotFound:
		statusText = "Resource not found."
	case http.StatusInternalServerError:
		statusText = "Internal server error."
	case http.StatusConflict:
		statusText = "Resource conflict."
	case http.StatusBadRequest:
		statusText = "Bad request."
	default:
		statusText = "Error."
	}

	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: getStatusCode(err),
		StatusText:     statusText,
		ErrorText:      err.Error(),
	}
}

func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var ierr *server.Error
	if !errors.As(err, &ierr) {
		return http.StatusInternalServerError
	} else {
		switch ierr.Code() {
		case server.ErrInternalServerError:
			return http.StatusInternalServerError
		case server.ErrNotFound:
			return http.StatusNotFound
		case server.ErrConflict:
			return http.StatusConflict
		case server.ErrBadParamInput:
			return http.StatusBadRequest
		default:
			return http.StatusInternalServerError
		}
	}

}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	validatorErrs := err.(validator.ValidationErrors)
	for _, e := range validatorErrs {
		translatedErr := fmt.Errorf(e.Translate(trans))
		errs = append(errs, translatedErr)
	}
	return errs
}
