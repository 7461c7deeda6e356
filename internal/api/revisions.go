package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// getStats returns aggregated processing outcomes
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "outcome store not available")
		return
	}

	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to load stats")
		respondError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// listRevisions lists recently processed revisions
func (s *Server) listRevisions(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "outcome store not available")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	revs, err := s.store.ListRevisions(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list revisions")
		respondError(w, http.StatusInternalServerError, "failed to list revisions")
		return
	}

	respondJSON(w, http.StatusOK, revs)
}

// getRevision returns one revision outcome by ID
func (s *Server) getRevision(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "outcome store not available")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "revisionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid revision ID")
		return
	}

	rev, err := s.store.GetRevision(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("revision_id", id.String()).Msg("failed to get revision")
		respondError(w, http.StatusInternalServerError, "failed to get revision")
		return
	}
	if rev == nil {
		respondError(w, http.StatusNotFound, "revision not found")
		return
	}

	respondJSON(w, http.StatusOK, rev)
}
