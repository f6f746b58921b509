package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediashelf/internal/auth"
	"mediashelf/internal/provider"
	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// CatalogService coordinates catalog browsing and curation workflows.
type CatalogService interface {
	Browse(ctx context.Context, category models.Category, query string) ([]models.MediaRecord, error)
	Get(ctx context.Context, category models.Category, externalID string) (models.MediaRecord, error)
	Create(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error)
	Update(ctx context.Context, category models.Category, externalID string, record models.MediaRecord) (models.MediaRecord, error)
	Delete(ctx context.Context, category models.Category, externalID string) error
}

// EngagementService coordinates rating and review workflows.
type EngagementService interface {
	RateMedia(ctx context.Context, caller auth.Identity, category models.Category, externalID string, value int) (models.MediaRecord, error)
	UpdateRating(ctx context.Context, caller auth.Identity, category models.Category, externalID, ratingID string, value int) (models.MediaRecord, error)
	DeleteRating(ctx context.Context, caller auth.Identity, category models.Category, externalID, ratingID string) (models.MediaRecord, error)
	ReviewMedia(ctx context.Context, caller auth.Identity, category models.Category, externalID, comment string) (models.MediaRecord, error)
	UpdateReview(ctx context.Context, caller auth.Identity, category models.Category, externalID, reviewID, comment string) (models.MediaRecord, error)
	DeleteReview(ctx context.Context, caller auth.Identity, category models.Category, externalID, reviewID string) (models.MediaRecord, error)
}

// ListService coordinates user-owned list workflows.
type ListService interface {
	Create(ctx context.Context, caller auth.Identity, name string) (models.List, error)
	Mine(ctx context.Context, caller auth.Identity) ([]models.List, error)
	AddItem(ctx context.Context, caller auth.Identity, listID int64, category models.Category, itemID string) (models.List, error)
	RemoveItem(ctx context.Context, caller auth.Identity, listID int64, itemID string) (models.List, error)
	Delete(ctx context.Context, caller auth.Identity, listID int64) error
}

// RankingService answers time-windowed top-N queries.
type RankingService interface {
	Top(ctx context.Context, category models.Category, window time.Duration, limit int) ([]models.RankingEntry, error)
}

// TokenVerifier extracts a caller identity from a bearer token.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	catalog    CatalogService
	engagement EngagementService
	lists      ListService
	rankings   RankingService
	tokens     TokenVerifier
}

// New configures a Server with the given services.
func New(
	catalog CatalogService,
	engagement EngagementService,
	lists ListService,
	rankings RankingService,
	tokens TokenVerifier,
) *Server {
	return &Server{
		catalog:    catalog,
		engagement: engagement,
		lists:      lists,
		rankings:   rankings,
		tokens:     tokens,
	}
}

// Routes exposes the HTTP handlers for catalog browsing, engagement and
// lists.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Catalog routes. The literal "top" segment takes precedence over the
	// {id} wildcard.
	mux.HandleFunc("GET /api/v1/catalog/{category}", s.handleBrowse)
	mux.HandleFunc("POST /api/v1/catalog/{category}", s.handleCreateMedia)
	mux.HandleFunc("GET /api/v1/catalog/{category}/top", s.handleTopRated)
	mux.HandleFunc("GET /api/v1/catalog/{category}/{id}", s.handleGetMedia)
	mux.HandleFunc("PUT /api/v1/catalog/{category}/{id}", s.handleUpdateMedia)
	mux.HandleFunc("DELETE /api/v1/catalog/{category}/{id}", s.handleDeleteMedia)

	// Rating routes
	mux.HandleFunc("POST /api/v1/catalog/{category}/{id}/ratings", s.handleAddRating)
	mux.HandleFunc("PUT /api/v1/catalog/{category}/{id}/ratings/{ratingId}", s.handleUpdateRating)
	mux.HandleFunc("DELETE /api/v1/catalog/{category}/{id}/ratings/{ratingId}", s.handleDeleteRating)

	// Review routes
	mux.HandleFunc("POST /api/v1/catalog/{category}/{id}/reviews", s.handleAddReview)
	mux.HandleFunc("PUT /api/v1/catalog/{category}/{id}/reviews/{reviewId}", s.handleUpdateReview)
	mux.HandleFunc("DELETE /api/v1/catalog/{category}/{id}/reviews/{reviewId}", s.handleDeleteReview)

	// List routes
	mux.HandleFunc("POST /api/v1/lists", s.handleCreateList)
	mux.HandleFunc("GET /api/v1/lists", s.handleMyLists)
	mux.HandleFunc("DELETE /api/v1/lists/{listId}", s.handleDeleteList)
	mux.HandleFunc("POST /api/v1/lists/{listId}/items", s.handleAddListItem)
	mux.HandleFunc("DELETE /api/v1/lists/{listId}/items/{itemId}", s.handleRemoveListItem)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeServiceError translates domain errors into HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
	case errors.Is(err, store.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
	case errors.Is(err, store.ErrMediaNotFound),
		errors.Is(err, store.ErrRatingNotFound),
		errors.Is(err, store.ErrReviewNotFound),
		errors.Is(err, store.ErrListNotFound),
		errors.Is(err, provider.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrMediaExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrInvalidMedia),
		errors.Is(err, store.ErrInvalidRating),
		errors.Is(err, store.ErrInvalidReview),
		errors.Is(err, store.ErrInvalidList):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, provider.ErrUnavailable):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "catalog provider unavailable"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// identity resolves the caller from the Authorization header.
func (s *Server) identity(r *http.Request) (auth.Identity, error) {
	raw := parseBearerToken(r.Header.Get("Authorization"))
	if raw == "" {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	return s.tokens.Verify(raw)
}

func categoryFromPath(r *http.Request) (models.Category, bool) {
	category, err := models.ParseCategory(r.PathValue("category"))
	return category, err == nil
}
