package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mediashelf/shared/go/models"
)

type createListRequest struct {
	Name string `json:"name"`
}

type addItemRequest struct {
	Category string `json:"category"`
	ItemID   string `json:"itemId"`
}

func listIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("listId"), 10, 64)
	return id, err == nil
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var req createListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	list, err := s.lists.Create(r.Context(), caller, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, list)
}

func (s *Server) handleMyLists(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lists, err := s.lists.Mine(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Lists []models.List `json:"lists"`
	}{Lists: lists})
}

func (s *Server) handleAddListItem(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	listID, ok := listIDFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list id"})
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	category, err := models.ParseCategory(req.Category)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown category"})
		return
	}

	list, err := s.lists.AddItem(r.Context(), caller, listID, category, req.ItemID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRemoveListItem(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	listID, ok := listIDFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list id"})
		return
	}

	list, err := s.lists.RemoveItem(r.Context(), caller, listID, r.PathValue("itemId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	caller, err := s.identity(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	listID, ok := listIDFromPath(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid list id"})
		return
	}

	if err := s.lists.Delete(r.Context(), caller, listID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
