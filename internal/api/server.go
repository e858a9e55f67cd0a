// Package api serves the rendering boundary over HTTP and websocket.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/skytrace/missionmap/internal/hover"
	"github.com/skytrace/missionmap/internal/mission"
	"github.com/skytrace/missionmap/internal/monitor"
	"github.com/skytrace/missionmap/internal/registry"
	"github.com/skytrace/missionmap/internal/render"
	"github.com/skytrace/missionmap/internal/viewport"
	"github.com/skytrace/missionmap/pkg/core"
)

// StatusReporter provides the /api/status body.
type StatusReporter interface {
	Status() monitor.Status
}

// Dependencies holds all dependencies for the API server
type Dependencies struct {
	Registry *registry.Registry
	Session  *mission.Session
	Fitter   *viewport.Fitter
	// Hub serves /ws when non-nil.
	Hub *Hub
	// Status may be nil; /api/status then reports registry counts only.
	Status StatusReporter
	Logger *slog.Logger
}

// Server routes API requests to the registry and session.
type Server struct {
	deps Dependencies
}

// AltitudeResponse is the altitude chart of one mission.
type AltitudeResponse struct {
	Available bool              `json:"available"`
	Points    []core.ChartPoint `json:"points"`
}

// NewServer validates deps and returns a server.
func NewServer(deps Dependencies) (*Server, error) {
	if deps.Registry == nil || deps.Session == nil || deps.Fitter == nil {
		return nil, errors.New("api: registry, session and fitter are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Server{deps: deps}, nil
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthcheck", s.healthcheck)
	if s.deps.Hub != nil {
		r.Get("/ws", s.deps.Hub.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.status)
		r.Get("/markers", s.markers)
		r.Get("/framing", s.framing)

		r.Route("/missions", func(r chi.Router) {
			r.Get("/", s.listMissions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getMission)
				r.Delete("/", s.removeMission)
				r.Get("/track", s.track)
				r.Get("/track.geojson", s.trackGeoJSON)
				r.Get("/altitude", s.altitude)
			})
		})

		r.Post("/select/{id}", s.selectMission)
		r.Delete("/select", s.deselect)

		r.Get("/hover", s.currentHover)
		r.Post("/hover", s.hover)
		r.Delete("/hover", s.leave)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.deps.Logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) healthcheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Status != nil {
		writeJSON(w, http.StatusOK, s.deps.Status.Status())
		return
	}
	counts := s.deps.Registry.Counts()
	writeJSON(w, http.StatusOK, monitor.Status{
		Time:    time.Now(),
		Loading: counts[core.StateLoading],
		Ready:   counts[core.StateReady],
		Failed:  counts[core.StateFailed],
	})
}

func (s *Server) markers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, render.Markers(s.deps.Registry.List()))
}

func (s *Server) framing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Fitter.FitMissions(s.deps.Registry.List()))
}

func (s *Server) listMissions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, render.SummarizeAll(s.deps.Registry.List()))
}

// lookup writes a 404 and returns false when the {id} mission is unknown.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (core.Mission, bool) {
	id := chi.URLParam(r, "id")
	m, ok := s.deps.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "mission not found: "+id)
	}
	return m, ok
}

func (s *Server) getMission(w http.ResponseWriter, r *http.Request) {
	if m, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, render.Summarize(m))
	}
}

func (s *Server) removeMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deps.Registry.Remove(id) {
		writeError(w, http.StatusNotFound, "mission not found: "+id)
		return
	}
	s.deps.Session.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) track(w http.ResponseWriter, r *http.Request) {
	if m, ok := s.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, render.Polyline(m.Track))
	}
}

func (s *Server) trackGeoJSON(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	data, err := render.GeoJSON(m)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) altitude(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	points := hover.Series(m.Track)
	if points == nil {
		points = []core.ChartPoint{}
	}
	writeJSON(w, http.StatusOK, AltitudeResponse{Available: len(points) > 0, Points: points})
}

func (s *Server) selectMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.deps.Session.Select(id) {
		writeError(w, http.StatusNotFound, "mission not found: "+id)
		return
	}
	m, ok := s.deps.Registry.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "mission not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, render.Summarize(m))
}

func (s *Server) deselect(w http.ResponseWriter, _ *http.Request) {
	s.deps.Session.Deselect()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) currentHover(w http.ResponseWriter, _ *http.Request) {
	pos, ok := s.deps.Session.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func (s *Server) hover(w http.ResponseWriter, r *http.Request) {
	var sample core.ChartSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeError(w, http.StatusBadRequest, "invalid chart sample: "+err.Error())
		return
	}
	pos, ok := s.deps.Session.Hover(sample)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, pos)
}

func (s *Server) leave(w http.ResponseWriter, _ *http.Request) {
	s.deps.Session.Leave()
	w.WriteHeader(http.StatusNoContent)
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
