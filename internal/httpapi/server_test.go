package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediashelf/internal/auth"
	"mediashelf/internal/provider"
	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

type stubCatalogService struct {
	browseResponse []models.MediaRecord
	browseErr      error
	lastQuery      string

	getResponse models.MediaRecord
	getErr      error
}

func (s *stubCatalogService) Browse(_ context.Context, _ models.Category, query string) ([]models.MediaRecord, error) {
	s.lastQuery = query
	if s.browseErr != nil {
		return nil, s.browseErr
	}
	return s.browseResponse, nil
}

func (s *stubCatalogService) Get(context.Context, models.Category, string) (models.MediaRecord, error) {
	if s.getErr != nil {
		return models.MediaRecord{}, s.getErr
	}
	return s.getResponse, nil
}

func (s *stubCatalogService) Create(_ context.Context, record models.MediaRecord) (models.MediaRecord, error) {
	return record, nil
}

func (s *stubCatalogService) Update(_ context.Context, _ models.Category, _ string, record models.MediaRecord) (models.MediaRecord, error) {
	return record, nil
}

func (s *stubCatalogService) Delete(context.Context, models.Category, string) error {
	return nil
}

type stubEngagementService struct {
	lastCaller auth.Identity
	lastValue  int
	response   models.MediaRecord
	err        error
}

func (s *stubEngagementService) RateMedia(_ context.Context, caller auth.Identity, _ models.Category, _ string, value int) (models.MediaRecord, error) {
	s.lastCaller = caller
	s.lastValue = value
	if s.err != nil {
		return models.MediaRecord{}, s.err
	}
	return s.response, nil
}

func (s *stubEngagementService) UpdateRating(_ context.Context, caller auth.Identity, _ models.Category, _, _ string, value int) (models.MediaRecord, error) {
	s.lastCaller = caller
	s.lastValue = value
	if s.err != nil {
		return models.MediaRecord{}, s.err
	}
	return s.response, nil
}

func (s *stubEngagementService) DeleteRating(_ context.Context, caller auth.Identity, _ models.Category, _, _ string) (models.MediaRecord, error) {
	s.lastCaller = caller
	if s.err != nil {
		return models.MediaRecord{}, s.err
	}
	return s.response, nil
}

func (s *stubEngagementService) ReviewMedia(_ context.Context, caller auth.Identity, _ models.Category, _, _ string) (models.MediaRecord, error) {
	s.lastCaller = caller
	if s.err != nil {
		return models.MediaRecord{}, s.err
	}
	return s.response, nil
}

func (s *stubEngagementService) UpdateReview(_ context.Context, caller auth.Identity, _ models.Category, _, _, _ string) (models.MediaRecord, error) {
	s.lastCaller = caller
	if s.err != nil {
		return models.MediaRecord{}, s.err
	}
	return s.response, nil
}

func (s *stubEngagementService) DeleteReview(_ context.Context, caller auth.Identity, _ models.Category, _, _ string) (models.MediaRecord, error) {
	s.lastCaller = caller
	if s.err != nil {
		return models.MediaRecord{}, s.err
	}
	return s.response, nil
}

type stubListService struct {
	response models.List
	lists    []models.List
	err      error
}

func (s *stubListService) Create(context.Context, auth.Identity, string) (models.List, error) {
	if s.err != nil {
		return models.List{}, s.err
	}
	return s.response, nil
}

func (s *stubListService) Mine(context.Context, auth.Identity) ([]models.List, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.lists, nil
}

func (s *stubListService) AddItem(context.Context, auth.Identity, int64, models.Category, string) (models.List, error) {
	if s.err != nil {
		return models.List{}, s.err
	}
	return s.response, nil
}

func (s *stubListService) RemoveItem(context.Context, auth.Identity, int64, string) (models.List, error) {
	if s.err != nil {
		return models.List{}, s.err
	}
	return s.response, nil
}

func (s *stubListService) Delete(context.Context, auth.Identity, int64) error {
	return s.err
}

type stubRankingService struct {
	lastWindow time.Duration
	lastLimit  int
	entries    []models.RankingEntry
	err        error
}

func (s *stubRankingService) Top(_ context.Context, _ models.Category, window time.Duration, limit int) ([]models.RankingEntry, error) {
	s.lastWindow = window
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubVerifier struct {
	identity auth.Identity
	err      error
}

func (s stubVerifier) Verify(string) (auth.Identity, error) {
	if s.err != nil {
		return auth.Identity{}, s.err
	}
	return s.identity, nil
}

func newTestServer(
	catalog *stubCatalogService,
	engagement *stubEngagementService,
	lists *stubListService,
	rankings *stubRankingService,
	verifier stubVerifier,
) *Server {
	if catalog == nil {
		catalog = &stubCatalogService{}
	}
	if engagement == nil {
		engagement = &stubEngagementService{}
	}
	if lists == nil {
		lists = &stubListService{}
	}
	if rankings == nil {
		rankings = &stubRankingService{}
	}
	return New(catalog, engagement, lists, rankings, verifier)
}

func TestBrowseUnknownCategory(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/movies", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestBrowsePassesQuery(t *testing.T) {
	catalog := &stubCatalogService{
		browseResponse: []models.MediaRecord{{Category: models.CategoryBooks, ExternalID: "vol-1", Title: "Dune"}},
	}
	srv := newTestServer(catalog, nil, nil, nil, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/books?query=dune", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if catalog.lastQuery != "dune" {
		t.Fatalf("expected query to be threaded, got %q", catalog.lastQuery)
	}

	var body struct {
		Items []models.MediaRecord `json:"items"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Items) != 1 || body.Items[0].Title != "Dune" {
		t.Fatalf("unexpected body: %#v", body)
	}
}

func TestBrowseAcceptsShortQueryParam(t *testing.T) {
	catalog := &stubCatalogService{}
	srv := newTestServer(catalog, nil, nil, nil, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/books?q=dune", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if catalog.lastQuery != "dune" {
		t.Fatalf("expected q fallback to be threaded, got %q", catalog.lastQuery)
	}
}

func TestCatalogMutationsRequireToken(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil, stubVerifier{err: auth.ErrUnauthenticated})

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{name: "create", method: http.MethodPost, target: "/api/v1/catalog/books", body: `{"externalId": "vol-1", "title": "Dune"}`},
		{name: "update", method: http.MethodPut, target: "/api/v1/catalog/books/vol-1", body: `{"title": "Dune"}`},
		{name: "delete", method: http.MethodDelete, target: "/api/v1/catalog/books/vol-1"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var body *bytes.Buffer
			if tc.body != "" {
				body = bytes.NewBufferString(tc.body)
			} else {
				body = &bytes.Buffer{}
			}

			req := httptest.NewRequest(tc.method, tc.target, body)
			rec := httptest.NewRecorder()
			srv.Routes().ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestCreateMediaWithToken(t *testing.T) {
	srv := newTestServer(&stubCatalogService{}, nil, nil, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1", Username: "alice"},
	})

	body := bytes.NewBufferString(`{"externalId": "vol-1", "title": "Dune"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/books", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestBrowseProviderOutageIsBadGateway(t *testing.T) {
	catalog := &stubCatalogService{browseErr: provider.ErrUnavailable}
	srv := newTestServer(catalog, nil, nil, nil, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/games?q=portal", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestGetMediaNotFound(t *testing.T) {
	catalog := &stubCatalogService{getErr: store.ErrMediaNotFound}
	srv := newTestServer(catalog, nil, nil, nil, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/anime/999", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestTopRatedBeatsWildcardRoute(t *testing.T) {
	catalog := &stubCatalogService{getErr: store.ErrMediaNotFound}
	rankings := &stubRankingService{
		entries: []models.RankingEntry{{ExternalID: "20", Title: "Naruto", AverageRating: 4.67, RatingCount: 3}},
	}
	srv := newTestServer(catalog, nil, nil, rankings, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/anime/top?days=30&limit=10", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rankings.lastWindow != 30*24*time.Hour || rankings.lastLimit != 10 {
		t.Fatalf("unexpected params: window=%v limit=%d", rankings.lastWindow, rankings.lastLimit)
	}
}

func TestTopRatedRejectsBadParams(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil, stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/anime/top?days=soon", nil)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAddRatingRequiresToken(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil, stubVerifier{err: auth.ErrUnauthenticated})

	body := bytes.NewBufferString(`{"value": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/books/vol-1/ratings", body)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAddRatingThreadsIdentity(t *testing.T) {
	engagement := &stubEngagementService{
		response: models.MediaRecord{Category: models.CategoryBooks, ExternalID: "vol-1", AverageRating: 5},
	}
	srv := newTestServer(nil, engagement, nil, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1", Username: "alice"},
	})

	body := bytes.NewBufferString(`{"value": 5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/books/vol-1/ratings", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if engagement.lastCaller.UserID != "u1" || engagement.lastValue != 5 {
		t.Fatalf("unexpected call: %#v value=%d", engagement.lastCaller, engagement.lastValue)
	}
}

func TestUpdateRatingForbidden(t *testing.T) {
	engagement := &stubEngagementService{err: store.ErrNotOwner}
	srv := newTestServer(nil, engagement, nil, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1", Username: "alice"},
	})

	body := bytes.NewBufferString(`{"value": 2}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/catalog/books/vol-1/ratings/r1", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAddReviewInvalidPayload(t *testing.T) {
	engagement := &stubEngagementService{err: store.ErrInvalidReview}
	srv := newTestServer(nil, engagement, nil, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1"},
	})

	body := bytes.NewBufferString(`{"comment": "   "}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/catalog/anime/20/reviews", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateListRequiresToken(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil, stubVerifier{err: auth.ErrUnauthenticated})

	body := bytes.NewBufferString(`{"name": "Backlog"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lists", body)
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAddListItemUnknownCategory(t *testing.T) {
	srv := newTestServer(nil, nil, &stubListService{}, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1"},
	})

	body := bytes.NewBufferString(`{"category": "movies", "itemId": "1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/lists/5/items", body)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteListNoContent(t *testing.T) {
	srv := newTestServer(nil, nil, &stubListService{}, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1"},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/lists/5", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestRemoveListItemNotFound(t *testing.T) {
	srv := newTestServer(nil, nil, &stubListService{err: store.ErrListNotFound}, nil, stubVerifier{
		identity: auth.Identity{UserID: "u1"},
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/lists/5/items/20", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
