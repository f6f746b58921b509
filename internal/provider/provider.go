package provider

import (
	"context"
	"errors"
	"time"

	"mediashelf/shared/go/models"
)

var (
	// ErrNotFound indicates the provider has no entry for the requested id.
	ErrNotFound = errors.New("provider: item not found")
	// ErrUnavailable indicates the provider call failed or timed out.
	ErrUnavailable = errors.New("provider: upstream unavailable")
)

// Sentinel values used when a provider omits a descriptive field, so that
// downstream consumers never see a null/empty required field.
const (
	unknownValue    = "Unknown"
	defaultSynopsis = "No description available"
	defaultHTTPWait = 10 * time.Second
)

// Client fetches catalog data from one external provider and normalizes it
// into media record drafts (empty ratings/reviews).
type Client interface {
	// Category reports which catalog this client serves.
	Category() models.Category

	// Search looks up items matching a free-text query.
	Search(ctx context.Context, query string) ([]models.MediaRecord, error)

	// GetByID fetches a single item by its provider-native identifier.
	// Returns ErrNotFound when the provider reports no such id.
	GetByID(ctx context.Context, externalID string) (*models.MediaRecord, error)
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}

func orDefaultSynopsis(s string) string {
	if s == "" {
		return defaultSynopsis
	}
	return s
}
