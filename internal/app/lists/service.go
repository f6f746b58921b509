package lists

import (
	"context"

	"mediashelf/internal/auth"
	"mediashelf/shared/go/models"
)

// Store captures the persistence needs for list workflows.
type Store interface {
	CreateList(ctx context.Context, userID, name string) (models.List, error)
	ListsByOwner(ctx context.Context, userID string) ([]models.List, error)
	AddItem(ctx context.Context, listID int64, userID string, category models.Category, itemID string) (models.List, error)
	RemoveItem(ctx context.Context, listID int64, userID, itemID string) (models.List, error)
	DeleteList(ctx context.Context, listID int64, userID string) error
}

// Service coordinates user-owned list operations. Every operation requires an
// authenticated caller.
type Service interface {
	Create(ctx context.Context, caller auth.Identity, name string) (models.List, error)
	Mine(ctx context.Context, caller auth.Identity) ([]models.List, error)
	AddItem(ctx context.Context, caller auth.Identity, listID int64, category models.Category, itemID string) (models.List, error)
	RemoveItem(ctx context.Context, caller auth.Identity, listID int64, itemID string) (models.List, error)
	Delete(ctx context.Context, caller auth.Identity, listID int64) error
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, caller auth.Identity, name string) (models.List, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.List{}, err
	}
	return s.store.CreateList(ctx, caller.UserID, name)
}

func (s *service) Mine(ctx context.Context, caller auth.Identity) ([]models.List, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return nil, err
	}
	return s.store.ListsByOwner(ctx, caller.UserID)
}

func (s *service) AddItem(ctx context.Context, caller auth.Identity, listID int64, category models.Category, itemID string) (models.List, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.List{}, err
	}
	return s.store.AddItem(ctx, listID, caller.UserID, category, itemID)
}

func (s *service) RemoveItem(ctx context.Context, caller auth.Identity, listID int64, itemID string) (models.List, error) {
	if err := checkCaller(ctx, caller); err != nil {
		return models.List{}, err
	}
	return s.store.RemoveItem(ctx, listID, caller.UserID, itemID)
}

func (s *service) Delete(ctx context.Context, caller auth.Identity, listID int64) error {
	if err := checkCaller(ctx, caller); err != nil {
		return err
	}
	return s.store.DeleteList(ctx, listID, caller.UserID)
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
