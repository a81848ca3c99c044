package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/desertthunder/deck/internal/export"
	"github.com/desertthunder/deck/internal/shared"
	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// ProgressBody is the request and response payload of /api/progress.
type ProgressBody struct {
	Key   string `json:"key,omitempty"`
	Slide int    `json:"slide"`
	Total int    `json:"total,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) handleDeckHTML(w http.ResponseWriter, r *http.Request) {
	out, err := export.RenderHTML(s.currentDeck(), s.page)
	if err != nil {
		s.logger.Error("failed to render deck", "error", err)
		http.Error(w, "Failed to render deck", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

// GET /slides/{n}
func (s *Server) handleSlideHTML(w http.ResponseWriter, r *http.Request) {
	d := s.currentDeck()
	n, err := strconv.Atoi(mux.Vars(r)["n"])
	if err != nil || !d.Contains(n) {
		http.Error(w, fmt.Sprintf("Slide %s not found", mux.Vars(r)["n"]), http.StatusNotFound)
		return
	}

	out, err := export.RenderSlideHTML(d, n, s.page)
	if err != nil {
		s.logger.Error("failed to render slide", "slide", n, "error", err)
		http.Error(w, "Failed to render slide", http.StatusInternalServerError)
		return
	}
	writeHTML(w, out)
}

func (s *Server) handleDeckJSON(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.currentDeck())
}

func (s *Server) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: shared.ErrServiceUnavailable.Error()})
		return
	}

	slide, err := s.store.Load(r.Context(), s.key)
	switch {
	case errors.Is(err, shared.ErrProgressNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("failed to load progress", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to load progress"})
		return
	}

	s.writeJSON(w, http.StatusOK, ProgressBody{Key: s.key, Slide: slide, Total: s.currentDeck().Len()})
}

func (s *Server) handlePutProgress(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: shared.ErrServiceUnavailable.Error()})
		return
	}

	var body ProgressBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("%v: %v", shared.ErrInvalidInput, err)})
		return
	}

	d := s.currentDeck()
	if !d.Contains(body.Slide) {
		s.writeJSON(w, http.StatusBadRequest, errorBody{
			Error: fmt.Sprintf("%v: slide must be between 1 and %d", shared.ErrInvalidInput, d.Len()),
		})
		return
	}

	if err := s.store.Save(r.Context(), s.key, body.Slide); err != nil {
		s.logger.Error("failed to save progress", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to save progress"})
		return
	}

	s.writeJSON(w, http.StatusOK, ProgressBody{Key: s.key, Slide: body.Slide, Total: d.Len()})
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := shared.MarshalJSON(v, false)
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
