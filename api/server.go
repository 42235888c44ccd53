// Package api exposes the engine as JSON over HTTP.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kilianp07/skyops/core/audit"
	"github.com/kilianp07/skyops/core/engine"
	"github.com/kilianp07/skyops/core/logger"
	"github.com/kilianp07/skyops/core/model"
	"github.com/kilianp07/skyops/core/registry"
	"github.com/kilianp07/skyops/core/request"
	"github.com/kilianp07/skyops/pkg/export"
)

// Engine is the subset of *engine.Engine served over HTTP.
type Engine interface {
	Handle(ctx context.Context, req request.Request) (engine.Response, error)
	Refresh(ctx context.Context) (engine.RefreshReport, error)
}

// Config wires the router.
type Config struct {
	Engine Engine
	Audit  audit.Store
	// Metrics serves /metrics when set, typically promhttp.Handler().
	Metrics http.Handler
	// Token, when set, is required as a bearer token on /api routes.
	Token string
	Log   logger.Logger
}

type queryBody struct {
	QueryType  string            `json:"query_type"`
	Parameters map[string]string `json:"parameters"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// NewRouter builds the HTTP routes.
func NewRouter(cfg Config) http.Handler {
	s := &server{eng: cfg.Engine, audit: cfg.Audit, log: logger.OrNop(cfg.Log)}
	if s.audit == nil {
		s.audit = audit.NopStore{}
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Route("/api", func(r chi.Router) {
		r.Use(bearerAuth(cfg.Token))
		r.Post("/query", s.query)
		r.Post("/refresh", s.refresh)
		r.Get("/conflicts", s.conflicts)
		r.Get("/conflicts/export", s.exportConflicts)
		r.Get("/availability", s.do(func(*http.Request) (request.Request, error) { return request.GetAvailability{}, nil }))
		r.Get("/summary", s.do(func(*http.Request) (request.Request, error) { return request.GetSummary{}, nil }))
		r.Get("/audit", s.auditLog)
		r.Route("/missions/{id}", func(r chi.Router) {
			r.Get("/pilots", s.do(func(r *http.Request) (request.Request, error) {
				return request.Decode(string(request.KindFindPilots), missionParams(r))
			}))
			r.Get("/drones", s.do(func(r *http.Request) (request.Request, error) {
				return request.Decode(string(request.KindFindDrones), missionParams(r))
			}))
			r.Get("/cost", s.do(func(r *http.Request) (request.Request, error) {
				p := missionParams(r)
				p["pilot_name"] = r.URL.Query().Get("pilot")
				return request.Decode(string(request.KindCalculateCosts), p)
			}))
			r.Get("/conflicts", s.do(func(r *http.Request) (request.Request, error) {
				return request.CheckConflicts{MissionID: chi.URLParam(r, "id")}, nil
			}))
		})
	})
	return r
}

type server struct {
	eng   Engine
	audit audit.Store
	log   logger.Logger
}

func (s *server) query(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, &request.DecodeError{Kind: request.KindUnknown, Field: "body", Reason: err.Error()})
		return
	}
	req, err := request.Decode(body.QueryType, body.Parameters)
	if err != nil {
		writeError(w, err)
		return
	}
	s.handle(w, r, req)
}

func (s *server) do(build func(*http.Request) (request.Request, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := build(r)
		if err != nil {
			writeError(w, err)
			return
		}
		s.handle(w, r, req)
	}
}

func (s *server) handle(w http.ResponseWriter, r *http.Request, req request.Request) {
	resp, err := s.eng.Handle(r.Context(), req)
	if err != nil {
		s.log.Warnf("api: %s failed: %v", req.Kind(), err)
		if resp.Mutation != nil && len(resp.Mutation.Committed) > 0 {
			// Partially committed mutations still report what was applied.
			writeJSON(w, statusFor(err), struct {
				errorBody
				Response engine.Response `json:"response"`
			}{errorBody{Error: err.Error(), Code: codeFor(err)}, resp})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	rep, err := s.eng.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *server) conflicts(w http.ResponseWriter, r *http.Request) {
	s.handle(w, r, request.CheckConflicts{MissionID: r.URL.Query().Get("mission_id")})
}

func (s *server) exportConflicts(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	ct, err := export.ContentType(format)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Code: "bad_request"})
		return
	}
	resp, err := s.eng.Handle(r.Context(), request.CheckConflicts{MissionID: r.URL.Query().Get("mission_id")})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", ct)
	if format == "csv" {
		w.Header().Set("Content-Disposition", `attachment; filename="conflicts.csv"`)
	}
	if err := export.Write(w, format, resp.Detection.Conflicts); err != nil {
		s.log.Errorf("api: export failed: %v", err)
	}
}

func (s *server) auditLog(w http.ResponseWriter, r *http.Request) {
	q := audit.Query{
		MissionID: r.URL.Query().Get("mission_id"),
		Kind:      audit.Kind(r.URL.Query().Get("kind")),
	}
	var err error
	if q.Start, err = timeParam(r, "start"); err != nil {
		writeError(w, err)
		return
	}
	if q.End, err = timeParam(r, "end"); err != nil {
		writeError(w, err)
		return
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, &request.DecodeError{Kind: auditKind, Field: "limit", Reason: "must be a non-negative integer"})
			return
		}
		q.Limit = n
	}
	recs, err := s.audit.Query(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	if recs == nil {
		recs = []audit.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

const auditKind request.Kind = "audit"

func timeParam(r *http.Request, key string) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, &request.DecodeError{Kind: auditKind, Field: key, Reason: "must be RFC3339"}
	}
	return t, nil
}

func missionParams(r *http.Request) map[string]string {
	p := map[string]string{"mission_id": chi.URLParam(r, "id")}
	for key, vals := range r.URL.Query() {
		if len(vals) > 0 {
			p[key] = vals[0]
		}
	}
	return p
}

// bearerAuth requires "Authorization: Bearer <token>" when token is set.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			want := []byte("Bearer " + token)
			if token != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), want) != 1 {
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized", Code: "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, request.ErrInvalid), errors.Is(err, engine.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrWeatherIncompatible), errors.Is(err, registry.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, engine.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func codeFor(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusBadGateway:
		return "provider_error"
	default:
		return "internal"
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error(), Code: codeFor(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
