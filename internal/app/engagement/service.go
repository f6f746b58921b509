package engagement

import (
	"context"

	"mediashelf/internal/auth"
	"mediashelf/shared/go/models"
)

// Store captures the persistence needs for rating and review workflows.
type Store interface {
	AddRating(ctx context.Context, category models.Category, externalID, userID, username string, value int) (models.MediaRecord, error)
	UpdateRating(ctx context.Context, category models.Category, externalID, ratingID, userID string, value int) (models.MediaRecord, error)
	DeleteRating(ctx context.Context, category models.Category, externalID, ratingID, userID string) (models.MediaRecord, error)
	AddReview(ctx context.Context, category models.Category, externalID, userID, username, comment string) (models.MediaRecord, error)
	UpdateReview(ctx context.Context, category models.Category, externalID, reviewID, userID, comment string) (models.MediaRecord, error)
	DeleteReview(ctx context.Context, category models.Category, externalID, reviewID, userID string) (models.MediaRecord, error)
}

// Service coordinates rating and review operations. Every operation requires
// an authenticated caller.
type Service interface {
	RateMedia(ctx context.Context, caller auth.Identity, category models.Category, externalID string, value int) (models.MediaRecord, error)
	UpdateRating(ctx context.Context, caller auth.Identity, category models.Category, externalID, ratingID string, value int) (models.MediaRecord, error)
	DeleteRating(ctx context.Context, caller auth.Identity, category models.Category, externalID, ratingID string) (models.MediaRecord, error)
	ReviewMedia(ctx context.Context, caller auth.Identity, category models.Category, externalID, comment string) (models.MediaRecord, error)
	UpdateReview(ctx context.Context, caller auth.Identity, category models.Category, externalID, reviewID, comment string) (models.MediaRecord, error)
	DeleteReview(ctx context.Context, caller auth.Identity, category models.Category, externalID, reviewID string) (models.MediaRecord, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) RateMedia(ctx context.Context, caller auth.Identity, category models.Category, externalID string, value int) (models.MediaRecord, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.AddRating(ctx, category, externalID, caller.UserID, caller.Username, value)
}

func (s *service) UpdateRating(ctx context.Context, caller auth.Identity, category models.Category, externalID, ratingID string, value int) (models.MediaRecord, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.UpdateRating(ctx, category, externalID, ratingID, caller.UserID, value)
}

func (s *service) DeleteRating(ctx context.Context, caller auth.Identity, category models.Category, externalID, ratingID string) (models.MediaRecord, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.DeleteRating(ctx, category, externalID, ratingID, caller.UserID)
}

func (s *service) ReviewMedia(ctx context.Context, caller auth.Identity, category models.Category, externalID, comment string) (models.MediaRecord, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.AddReview(ctx, category, externalID, caller.UserID, caller.Username, comment)
}

func (s *service) UpdateReview(ctx context.Context, caller auth.Identity, category models.Category, externalID, reviewID, comment string) (models.MediaRecord, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.UpdateReview(ctx, category, externalID, reviewID, caller.UserID, comment)
}

func (s *service) DeleteReview(ctx context.Context, caller auth.Identity, category models.Category, externalID, reviewID string) (models.MediaRecord, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.MediaRecord{}, err
	}
	return s.store.DeleteReview(ctx, category, externalID, reviewID, caller.UserID)
}

func checkCaller(ctx context.Context, caller auth.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if caller.UserID == "" {
		return auth.ErrUnauthenticated
	}
	return nil
}
