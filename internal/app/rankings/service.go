package rankings

import (
	"context"
	"time"

	"mediashelf/shared/go/models"
)

const (
	// DefaultWindow is the ranking window used when the caller does not
	// supply one.
	DefaultWindow = 7 * 24 * time.Hour
	// DefaultLimit is the number of entries returned by default.
	DefaultLimit = 5
	// MaxLimit caps how many entries a single request may ask for.
	MaxLimit = 50
)

// Store captures the persistence needs for ranking queries.
type Store interface {
	TopRated(ctx context.Context, category models.Category, window time.Duration, limit int) ([]models.RankingEntry, error)
}

// Service answers time-windowed top-N ranking queries.
type Service interface {
	Top(ctx context.Context, category models.Category, window time.Duration, limit int) ([]models.RankingEntry, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Top(ctx context.Context, category models.Category, window time.Duration, limit int) ([]models.RankingEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return s.store.TopRated(ctx, category, window, limit)
}
