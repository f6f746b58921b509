package httpapi

import (
	"encoding/json"
	"net/http"
)

type ratingRequest struct {
	Value int `json:"value"`
}

type reviewRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) handleAddRating(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	record, err := s.engagement.RateMedia(r.Context(), caller, category, r.PathValue("id"), req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	record, err := s.engagement.UpdateRating(r.Context(), caller, category, r.PathValue("id"), r.PathValue("ratingId"), req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	record, err := s.engagement.DeleteRating(r.Context(), caller, category, r.PathValue("id"), r.PathValue("ratingId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	record, err := s.engagement.ReviewMedia(r.Context(), caller, category, r.PathValue("id"), req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) handleUpdateReview(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	record, err := s.engagement.UpdateReview(r.Context(), caller, category, r.PathValue("id"), r.PathValue("reviewId"), req.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	category, ok := categoryFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	record, err := s.engagement.DeleteReview(r.Context(), caller, category, r.PathValue("id"), r.PathValue("reviewId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}
