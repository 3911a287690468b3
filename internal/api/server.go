package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/config"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/llm"
	"github.com/sanketmuchhala/Project-Green-Lantern-sub000/internal/orchestrator"
)

// maxBodyBytes bounds request bodies; conversations are sent whole
const maxBodyBytes = 4 << 20

// Server represents the API server
type Server struct {
	cfg          *config.Config
	router       *chi.Mux
	registry     *llm.Registry
	orchestrator *orchestrator.Orchestrator
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, registry *llm.Registry, orch *orchestrator.Orchestrator) (*Server, error) {
	if orch == nil {
		orch = orchestrator.New(nil)
	}
	s := &Server{
		cfg:          cfg,
		router:       chi.NewRouter(),
		registry:     registry,
		orchestrator: orch,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the HTTP router
func (s *Server) Router() http.Handler {
	return s.router
}

// No request timeout: provider calls run until the upstream answers or the
// client goes away.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(corsMiddleware(s.cfg.CORSOrigin))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.healthCheck)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/chat", s.chat)
		r.Post("/ping", s.pingProvider)
		r.Get("/ping", s.pingLocal)
		r.Get("/status", s.status)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// LocalQueueStatus reports the local dispatch queue
type LocalQueueStatus struct {
	Size       int  `json:"size"`
	Processing bool `json:"processing"`
}

// StatusResponse is the body of GET /v1/status
type StatusResponse struct {
	Status     string           `json:"status"`
	Providers  []llm.Provider   `json:"providers"`
	LocalQueue LocalQueueStatus `json:"localQueue"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	queue := s.registry.LocalQueue()
	respondJSON(w, http.StatusOK, StatusResponse{
		Status:    "ok",
		Providers: s.registry.Providers(),
		LocalQueue: LocalQueueStatus{
			Size:       queue.QueueSize(),
			Processing: queue.IsProcessing(),
		},
	})
}
