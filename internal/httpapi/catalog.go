package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"mediashelf/shared/go/models"
)

type mediaRequest struct {
	ExternalID string            `json:"externalId"`
	Title      string            `json:"title"`
	Synopsis   string            `json:"synopsis"`
	CoverURL   string            `json:"coverUrl"`
	Genres     []string          `json:"genres"`
	Attributes models.Attributes `json:"attributes"`
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	query := r.URL.Query().Get("query")
	if query == "" {
		query = r.URL.Query().Get("q")
	}

	records, err := s.catalog.Browse(r.Context(), category, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Items []models.MediaRecord `json:"items"`
	}{Items: records})
}

func (s *Server) handleGetMedia(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	record, err := s.catalog.Get(r.Context(), category, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleCreateMedia(w http.ResponseWriter, r *http.Request) {
	if _, err := s.identity(r); err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	record, err := s.catalog.Create(r.Context(), models.MediaRecord{
		Category:   category,
		ExternalID: req.ExternalID,
		Title:      req.Title,
		Synopsis:   req.Synopsis,
		CoverURL:   req.CoverURL,
		Genres:     req.Genres,
		Attributes: req.Attributes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	if _, err := s.identity(r); err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var req mediaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	externalID := r.PathValue("id")
	record, err := s.catalog.Update(r.Context(), category, externalID, models.MediaRecord{
		Category:   category,
		ExternalID: externalID,
		Title:      req.Title,
		Synopsis:   req.Synopsis,
		CoverURL:   req.CoverURL,
		Genres:     req.Genres,
		Attributes: req.Attributes,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if _, err := s.identity(r); err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	if err := s.catalog.Delete(r.Context(), category, r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var window time.Duration
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be a positive integer"})
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	entries, err := s.rankings.Top(r.Context(), category, window, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Entries []models.RankingEntry `json:"entries"`
	}{Entries: entries})
}
