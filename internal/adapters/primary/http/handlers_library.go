package http

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

// handleListLibrary lists saved carousels, newest first
func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := s.library.List(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// handleSaveLibrary snapshots the current document
func (s *Server) handleSaveLibrary(w http.ResponseWriter, r *http.Request) {
	if s.doc.Len() == 0 {
		s.handleError(w, r, validationError(errors.New("carousel has no slides to save")))
		return
	}
	saved, err := s.library.Save(r.Context(), s.doc.State())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetLibrary(w http.ResponseWriter, r *http.Request) {
	saved, err := s.library.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteLibrary(w http.ResponseWriter, r *http.Request) {
	if err := s.library.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRestoreLibrary loads a saved carousel into the editor
func (s *Server) handleRestoreLibrary(w http.ResponseWriter, r *http.Request) {
	if _, err := s.library.Restore(r.Context(), mux.Vars(r)["id"], s.doc); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.snapshot())
}
