package web

import (
	"encoding/json"
	"net/http"

	"github.com/roddenjw/plotline/internal/model"
)

func (s *Server) handleManuscripts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Store.Manuscripts())
}

func manuscriptParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ms := r.URL.Query().Get("manuscript")
	if ms == "" {
		http.Error(w, "missing 'manuscript' parameter", http.StatusBadRequest)
		return "", false
	}
	return ms, true
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	ms, ok := manuscriptParam(w, r)
	if !ok {
		return
	}
	events, err := s.Store.ListEvents(ms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, events)
}

func (s *Server) handleDistances(w http.ResponseWriter, r *http.Request) {
	ms, ok := manuscriptParam(w, r)
	if !ok {
		return
	}
	dists, err := s.Store.ListDistances(ms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dists)
}

func (s *Server) handleSetDistance(w http.ResponseWriter, r *http.Request) {
	var d model.LocationDistance
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "invalid distance payload", http.StatusBadRequest)
		return
	}
	if d.ManuscriptID == "" || d.LocA == "" || d.LocB == "" {
		http.Error(w, "manuscript_id, loc_a and loc_b are required", http.StatusBadRequest)
		return
	}
	if err := s.Store.SetDistance(d.ManuscriptID, d.LocA, d.LocB, d.Km, d.Metadata); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, d)
}

func (s *Server) handleSpeeds(w http.ResponseWriter, r *http.Request) {
	ms, ok := manuscriptParam(w, r)
	if !ok {
		return
	}
	p, err := s.Store.GetOrCreateSpeedProfile(ms, s.Engine.DefaultSpeed, s.Engine.HoursPerStep)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleUpdateSpeeds(w http.ResponseWriter, r *http.Request) {
	var p model.TravelSpeedProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid speed profile payload", http.StatusBadRequest)
		return
	}
	if p.ManuscriptID == "" {
		http.Error(w, "manuscript_id is required", http.StatusBadRequest)
		return
	}
	if err := s.Store.UpdateSpeeds(&p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

func (s *Server) handleInconsistencies(w http.ResponseWriter, r *http.Request) {
	ms, ok := manuscriptParam(w, r)
	if !ok {
		return
	}
	status := model.Status(r.URL.Query().Get("status"))
	incs, err := s.Store.ListInconsistencies(ms, status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, incs)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	ms, ok := manuscriptParam(w, r)
	if !ok {
		return
	}
	report, err := s.Engine.Validate(r.Context(), ms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, report)
}

type resolutionRequest struct {
	ID    string `json:"id"`
	Notes string `json:"notes,omitempty"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.Engine.Resolve)
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	s.handleTransition(w, r, s.Engine.Dismiss)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request, apply func(id, notes string) (*model.Inconsistency, error)) {
	var req resolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		http.Error(w, "invalid resolution payload", http.StatusBadRequest)
		return
	}
	inc, err := apply(req.ID, req.Notes)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, inc)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ms, ok := manuscriptParam(w, r)
	if !ok {
		return
	}
	ov, err := s.Engine.Overview(ms)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, ov)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	// Wildcard CORS - this is a local authoring companion, not a public API.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if v == nil {
		_, _ = w.Write([]byte("[]"))
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}
