package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mediashelf/shared/go/models"
)

// CreateList creates a named list owned by the given user.
func (s *Store) CreateList(ctx context.Context, userID, name string) (models.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.List{}, fmt.Errorf("%w: name is required", ErrInvalidList)
	}

	list := models.List{
		UserID: userID,
		Name:   name,
		Items:  []models.ListItem{},
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO lists (user_id, name, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`, userID, name).Scan(&list.ID, &list.CreatedAt)
	if err != nil {
		return models.List{}, fmt.Errorf("insert list: %w", err)
	}

	return list, nil
}

// ListsByOwner returns all lists owned by the given user, newest first.
func (s *Store) ListsByOwner(ctx context.Context, userID string) ([]models.List, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM lists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select lists: %w", err)
	}
	defer rows.Close()

	lists := make([]models.List, 0)
	for rows.Next() {
		var list models.List
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &list.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}

	for i := range lists {
		items, err := s.listItems(ctx, lists[i].ID)
		if err != nil {
			return nil, err
		}
		lists[i].Items = items
	}
	return lists, nil
}

// AddItem adds a catalog reference to a list the caller owns. Adding a
// reference that is already present leaves the list unchanged.
func (s *Store) AddItem(ctx context.Context, listID int64, userID string, category models.Category, itemID string) (models.List, error) {
	if !category.Valid() {
		return models.List{}, fmt.Errorf("%w: unknown category %q", ErrInvalidList, category)
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return models.List{}, fmt.Errorf("%w: item id is required", ErrInvalidList)
	}

	if err := s.checkListOwner(ctx, listID, userID); err != nil {
		return models.List{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO list_items (list_id, category, item_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (list_id, category, item_id) DO NOTHING
	`, listID, category, itemID); err != nil {
		return models.List{}, fmt.Errorf("insert list item: %w", err)
	}

	return s.getList(ctx, listID)
}

// RemoveItem removes every entry matching the item id from a list the caller
// owns, regardless of category. Removing an absent item is a no-op.
func (s *Store) RemoveItem(ctx context.Context, listID int64, userID, itemID string) (models.List, error) {
	if err := s.checkListOwner(ctx, listID, userID); err != nil {
		return models.List{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM list_items
		WHERE list_id = $1 AND item_id = $2
	`, listID, itemID); err != nil {
		return models.List{}, fmt.Errorf("delete list item: %w", err)
	}

	return s.getList(ctx, listID)
}

// DeleteList removes a list the caller owns. Items cascade.
func (s *Store) DeleteList(ctx context.Context, listID int64, userID string) error {
	if err := s.checkListOwner(ctx, listID, userID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM lists
		WHERE id = $1
	`, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

func (s *Store) getList(ctx context.Context, listID int64) (models.List, error) {
	var list models.List
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, created_at
		FROM lists
		WHERE id = $1
	`, listID).Scan(&list.ID, &list.UserID, &list.Name, &list.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.List{}, ErrListNotFound
		}
		return models.List{}, fmt.Errorf("lookup list: %w", err)
	}

	items, err := s.listItems(ctx, listID)
	if err != nil {
		return models.List{}, err
	}
	list.Items = items
	return list, nil
}

func (s *Store) listItems(ctx context.Context, listID int64) ([]models.ListItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, item_id
		FROM list_items
		WHERE list_id = $1
		ORDER BY category ASC, item_id ASC
	`, listID)
	if err != nil {
		return nil, fmt.Errorf("select list items: %w", err)
	}
	defer rows.Close()

	items := make([]models.ListItem, 0)
	for rows.Next() {
		var item models.ListItem
		if err := rows.Scan(&item.Category, &item.ItemID); err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate list items: %w", err)
	}
	return items, nil
}

func (s *Store) checkListOwner(ctx context.Context, listID int64, userID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM lists
		WHERE id = $1
	`, listID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrListNotFound
		}
		return fmt.Errorf("lookup list: %w", err)
	}
	if owner != userID {
		return ErrNotOwner
	}
	return nil
}
