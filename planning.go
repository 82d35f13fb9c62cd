package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ttpr0/go-transit/geo"
	"github.com/ttpr0/go-transit/graph"
	"github.com/ttpr0/go-transit/raptor"
	"golang.org/x/exp/slog"
)

//**********************************************************
// router
//**********************************************************

func NewRouter(manager *NetworkManager) chi.Router {
	config := manager.Config()
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: config.Server.CorsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		snapshot := manager.Current()
		if snapshot == nil {
			WriteResponse(w, HealthResponse{Status: "loading"}, http.StatusServiceUnavailable)
			return
		}
		net := snapshot.Network()
		WriteResponse(w, HealthResponse{
			Status:  "ok",
			Version: snapshot.Version,
			Loaded:  snapshot.Loaded.UTC(),
			Stops:   net.StopCount(),
			Routes:  net.RouteCount(),
		}, http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	MapPost(r, "/v1/plan", HandlePlanRequest(manager))
	MapGet(r, "/v1/stops", HandleStopsRequest(manager))
	return r
}

type HealthResponse struct {
	Status  string    `json:"status"`
	Version int       `json:"version,omitempty"`
	Loaded  time.Time `json:"loaded,omitempty"`
	Stops   int       `json:"stops,omitempty"`
	Routes  int       `json:"routes,omitempty"`
}

//**********************************************************
// plan requests and responses
//**********************************************************

// Either a coordinate or a stop id.
type LocationParam struct {
	Lon    *float32 `json:"lon"`
	Lat    *float32 `json:"lat"`
	StopID string   `json:"stop_id"`
}

type PlanRequest struct {
	From LocationParam `json:"from"`
	To   LocationParam `json:"to"`
	// departure or arrival time depending on mode, defaults to now
	Time      time.Time   `json:"time"`
	Mode      *SearchMode `json:"mode"`
	TimeoutMS int         `json:"timeout_ms"`
	// overrides of the configured planner defaults, see raptor.Options
	Options json.RawMessage `json:"options"`
}

type PlanResponse struct {
	raptor.Result
	Mode SearchMode `json:"mode"`
	// network snapshot the query ran on
	Version int `json:"version"`
}

//**********************************************************
// plan handlers
//**********************************************************

func HandlePlanRequest(manager *NetworkManager) func(context.Context, PlanRequest) Result {
	return func(ctx context.Context, req PlanRequest) Result {
		snapshot := manager.Current()
		if snapshot == nil {
			return ServiceUnavailable("network not loaded")
		}
		config := manager.Config()
		planner := snapshot.Planner

		from, ok := _ResolveLocation(planner, req.From)
		if !ok {
			return BadRequest("unable to resolve origin")
		}
		to, ok := _ResolveLocation(planner, req.To)
		if !ok {
			return BadRequest("unable to resolve destination")
		}

		opts := config.Planner.Options
		if len(req.Options) > 0 {
			if err := json.Unmarshal(req.Options, &opts); err != nil {
				return BadRequest("invalid options: " + err.Error())
			}
		}
		if req.TimeoutMS > 0 {
			opts.Timeout = time.Duration(req.TimeoutMS) * time.Millisecond
		}
		mode := config.Planner.Mode
		if req.Mode != nil {
			mode = *req.Mode
		}
		opts.Direction = graph.FORWARD
		if mode == ARRIVE_BY {
			opts.Direction = graph.BACKWARD
		}
		if opts.TransitTimes == nil {
			opts.TransitTimes = snapshot.TransitTimes
		}
		t := req.Time
		if t.IsZero() {
			t = time.Now()
		}

		if config.Server.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, config.Server.RequestTimeout)
			defer cancel()
		}
		result, err := planner.Plan(ctx, raptor.Request{From: from, To: to, Time: t, Options: opts})
		if err != nil {
			if errors.Is(err, raptor.ErrInvalidRequest) {
				return BadRequest(err.Error())
			}
			// itineraries found before the deadline are still returned
			if errors.Is(err, context.DeadlineExceeded) {
				slog.Info("plan hit request deadline", "query", result.ID, "itineraries", len(result.Itineraries))
				result.Note = raptor.NOTE_TIMEOUT
				return OK(PlanResponse{Result: result, Mode: mode, Version: snapshot.Version})
			}
			slog.Warn("plan interrupted", "query", result.ID, "error", err)
			return ServiceUnavailable(err.Error())
		}
		return OK(PlanResponse{Result: result, Mode: mode, Version: snapshot.Version})
	}
}

func _ResolveLocation(planner *raptor.Planner, loc LocationParam) (int32, bool) {
	if loc.StopID != "" {
		return planner.ResolveStop(loc.StopID)
	}
	if loc.Lon == nil || loc.Lat == nil {
		return -1, false
	}
	return planner.ResolveLocation(geo.Coord{*loc.Lon, *loc.Lat})
}

//**********************************************************
// stop requests and responses
//**********************************************************

type StopsRequest struct {
	// case-insensitive substring of the stop id or name
	Query string `json:"q"`
	Limit int    `json:"limit"`
}

type StopInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Loc       geo.Coord `json:"loc"`
	LocalOnly bool      `json:"local_only,omitempty"`
	Connected bool      `json:"connected"`
	Routes    []string  `json:"routes"`
}

type StopsResponse struct {
	Stops []StopInfo `json:"stops"`
}

func HandleStopsRequest(manager *NetworkManager) func(context.Context, StopsRequest) Result {
	return func(ctx context.Context, req StopsRequest) Result {
		snapshot := manager.Current()
		if snapshot == nil {
			return ServiceUnavailable("network not loaded")
		}
		if req.Limit < 0 {
			return BadRequest("limit must not be negative")
		}
		limit := req.Limit
		if limit == 0 {
			limit = 100
		}
		query := strings.ToLower(req.Query)

		net := snapshot.Network()
		stops := make([]StopInfo, 0, min(limit, net.StopCount()))
		for i := 0; i < net.StopCount() && len(stops) < limit; i++ {
			stop := net.GetStop(int32(i))
			if query != "" && !strings.Contains(strings.ToLower(stop.ID), query) && !strings.Contains(strings.ToLower(stop.Name), query) {
				continue
			}
			routes := []string{}
			for _, rs := range net.GetRoutesAtStop(int32(i)) {
				routes = append(routes, net.GetRoute(rs.Route).ID)
			}
			stops = append(stops, StopInfo{
				ID:        stop.ID,
				Name:      stop.Name,
				Loc:       stop.Loc,
				LocalOnly: stop.LocalOnly,
				Connected: stop.Node >= 0,
				Routes:    routes,
			})
		}
		return OK(StopsResponse{Stops: stops})
	}
}
