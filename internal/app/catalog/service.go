package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"mediashelf/internal/provider"
	"mediashelf/internal/store"
	"mediashelf/shared/go/models"
)

// Store captures the persistence needs for catalog workflows.
type Store interface {
	UpsertMedia(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error)
	GetMedia(ctx context.Context, category models.Category, externalID string) (models.MediaRecord, error)
	ListMedia(ctx context.Context, category models.Category) ([]models.MediaRecord, error)
	CreateMedia(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error)
	UpdateMedia(ctx context.Context, category models.Category, externalID string, record models.MediaRecord) (models.MediaRecord, error)
	DeleteMedia(ctx context.Context, category models.Category, externalID string) error
}

// Service coordinates catalog browsing backed by external providers and the
// local cache.
type Service interface {
	Browse(ctx context.Context, category models.Category, query string) ([]models.MediaRecord, error)
	Get(ctx context.Context, category models.Category, externalID string) (models.MediaRecord, error)
	Create(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error)
	Update(ctx context.Context, category models.Category, externalID string, record models.MediaRecord) (models.MediaRecord, error)
	Delete(ctx context.Context, category models.Category, externalID string) error
}

type service struct {
	store     Store
	providers map[models.Category]provider.Client
	log       zerolog.Logger
}

// New constructs a Service backed by the provided Store and provider clients,
// one client per category.
func New(st Store, clients []provider.Client, log zerolog.Logger) Service {
	providers := make(map[models.Category]provider.Client, len(clients))
	for _, client := range clients {
		providers[client.Category()] = client
	}
	return &service{store: st, providers: providers, log: log}
}

// Browse returns catalog entries for a category. With a query it always asks
// the provider and folds the results into the cache; without one it serves
// whatever the cache already holds.
func (s *service) Browse(ctx context.Context, category models.Category, query string) ([]models.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return s.store.ListMedia(ctx, category)
	}

	client, ok := s.providers[category]
	if !ok {
		return nil, fmt.Errorf("%w: no provider for category %q", provider.ErrUnavailable, category)
	}

	drafts, err := client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	records := make([]models.MediaRecord, 0, len(drafts))
	for _, draft := range drafts {
		if _, err := s.store.UpsertMedia(ctx, draft); err != nil {
			// One bad provider entry must not sink the whole result set.
			s.log.Warn().Err(err).
				Str("category", string(draft.Category)).
				Str("external_id", draft.ExternalID).
				Msg("skipping unstorable search result")
			continue
		}
		record, err := s.store.GetMedia(ctx, draft.Category, draft.ExternalID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Get returns a single catalog entry, fetching it from the provider on a
// cache miss. A cached record is served as-is without contacting the
// provider.
func (s *service) Get(ctx context.Context, category models.Category, externalID string) (models.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaRecord{}, err
	}

	record, err := s.store.GetMedia(ctx, category, externalID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, store.ErrMediaNotFound) {
		return models.MediaRecord{}, err
	}

	client, ok := s.providers[category]
	if !ok {
		return models.MediaRecord{}, fmt.Errorf("%w: no provider for category %q", provider.ErrUnavailable, category)
	}

	draft, err := client.GetByID(ctx, externalID)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return models.MediaRecord{}, store.ErrMediaNotFound
		}
		return models.MediaRecord{}, err
	}

	return s.store.UpsertMedia(ctx, *draft)
}

// Create adds a manually curated entry to the cache.
func (s *service) Create(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.CreateMedia(ctx, record)
}

// Update replaces the descriptive fields of a cached entry.
func (s *service) Update(ctx context.Context, category models.Category, externalID string, record models.MediaRecord) (models.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.UpdateMedia(ctx, category, externalID, record)
}

// Delete removes a cached entry along with its ratings and reviews.
func (s *service) Delete(ctx context.Context, category models.Category, externalID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteMedia(ctx, category, externalID)
}
