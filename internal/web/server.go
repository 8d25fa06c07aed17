package web

import (
	"fmt"
	"net/http"

	"github.com/roddenjw/plotline/internal/engine"
	"github.com/roddenjw/plotline/internal/store"
)

// Server exposes the engine and its stores as a local JSON API for the
// authoring UI.
type Server struct {
	Store  *store.Store
	Engine *engine.Engine
	Addr   string
	// ValidateRPS caps validation requests per second; zero disables the cap.
	ValidateRPS float64
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	fmt.Printf("Serving at http://%s\n", s.Addr)
	return http.ListenAndServe(s.Addr, s.routes())
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/manuscripts", s.handleManuscripts)
	mux.HandleFunc("GET /api/events", s.handleEvents)
	mux.HandleFunc("GET /api/distances", s.handleDistances)
	mux.HandleFunc("PUT /api/distances", s.handleSetDistance)
	mux.HandleFunc("GET /api/speeds", s.handleSpeeds)
	mux.HandleFunc("PUT /api/speeds", s.handleUpdateSpeeds)
	mux.HandleFunc("GET /api/inconsistencies", s.handleInconsistencies)
	mux.HandleFunc("POST /api/inconsistencies/resolve", s.handleResolve)
	mux.HandleFunc("POST /api/inconsistencies/dismiss", s.handleDismiss)
	mux.HandleFunc("GET /api/overview", s.handleOverview)

	validate := http.HandlerFunc(s.handleValidate)
	if s.ValidateRPS > 0 {
		validate = newLimiter(s.ValidateRPS).wrap(s.handleValidate)
	}
	mux.HandleFunc("POST /api/validate", validate)

	return mux
}
