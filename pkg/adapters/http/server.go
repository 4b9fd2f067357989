package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/ports"
	"github.com/aretw0/weft/pkg/session"
)

// Server exposes a graph engine as a JSON API.
type Server struct {
	Engine   ports.GraphEngine
	Sessions *session.Manager
	Logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithSessions enables the /graphs persistence routes.
func WithSessions(m *session.Manager) Option {
	return func(s *Server) {
		s.Sessions = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.GraphEngine, opts ...Option) http.Handler {
	s := &Server{
		Engine: engine,
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.ListTypes)

	r.Route("/nodes", func(r chi.Router) {
		r.Get("/", s.ListNodes)
		r.Post("/", s.CreateNode)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetNode)
			r.Delete("/", s.RemoveNode)
			r.Get("/output", s.GetOutput)
			r.Get("/connected", s.GetConnected)
			r.Patch("/config", s.PatchConfig)
			r.Put("/inputs/{port}", s.SetInput)
			r.Delete("/inputs/{port}", s.ClearInput)
		})
	})

	r.Get("/connections", s.ListConnections)
	r.Post("/connections", s.Connect)
	r.Delete("/connections", s.Disconnect)

	r.Get("/graph", s.GetGraph)
	r.Put("/graph", s.PutGraph)
	r.Get("/graph/mermaid", s.GetMermaid)
	r.Post("/wait", s.Wait)
	r.Get("/events", s.SubscribeEvents)

	r.Route("/graphs", func(r chi.Router) {
		r.Use(s.requireSessions)
		r.Get("/", s.ListGraphs)
		r.Post("/", s.SaveNewGraph)
		r.Put("/{graphID}", s.SaveGraph)
		r.Post("/{graphID}/load", s.LoadGraph)
		r.Delete("/{graphID}", s.DeleteGraph)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Custom-Header")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireSessions(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Sessions == nil {
			writeJSON(w, http.StatusNotImplemented, errorBody{Error: "graph persistence is not configured"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":         "weft-http",
		"version":     strings.TrimSpace(weft.Version),
		"persistence": s.Sessions != nil,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
