package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mediashelf/shared/go/models"
)

// UpsertMedia inserts a media record or, when the (category, externalId) key
// already exists, replaces only the descriptive fields. Ratings and reviews
// live in child tables and are never touched by an upsert, so a re-synced
// provider draft cannot erase accumulated engagement data. Applying the same
// record twice yields the same stored state.
func (s *Store) UpsertMedia(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error) {
	if err := validateMedia(record); err != nil {
		return models.MediaRecord{}, err
	}
	record.Title = strings.TrimSpace(record.Title)

	genresJSON, attrsJSON, err := encodeDescriptive(record)
	if err != nil {
		return models.MediaRecord{}, err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO media_items (category, external_id, title, synopsis, cover_url, genres, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, NOW(), NOW())
		ON CONFLICT (category, external_id)
		DO UPDATE SET
			title = EXCLUDED.title,
			synopsis = EXCLUDED.synopsis,
			cover_url = EXCLUDED.cover_url,
			genres = EXCLUDED.genres,
			attributes = EXCLUDED.attributes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, record.Category, record.ExternalID, record.Title, record.Synopsis, record.CoverURL,
		string(genresJSON), string(attrsJSON)).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("upsert media item: %w", err)
	}

	if record.Ratings == nil {
		record.Ratings = []models.Rating{}
	}
	if record.Reviews == nil {
		record.Reviews = []models.Review{}
	}
	record.AverageRating = record.ComputeAverageRating()
	return record, nil
}

// CreateMedia inserts a brand new media record. Unlike UpsertMedia it fails
// with ErrMediaExists when the key is already cached.
func (s *Store) CreateMedia(ctx context.Context, record models.MediaRecord) (models.MediaRecord, error) {
	if err := validateMedia(record); err != nil {
		return models.MediaRecord{}, err
	}
	record.Title = strings.TrimSpace(record.Title)

	genresJSON, attrsJSON, err := encodeDescriptive(record)
	if err != nil {
		return models.MediaRecord{}, err
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO media_items (category, external_id, title, synopsis, cover_url, genres, attributes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`, record.Category, record.ExternalID, record.Title, record.Synopsis, record.CoverURL,
		string(genresJSON), string(attrsJSON)).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.MediaRecord{}, ErrMediaExists
		}
		return models.MediaRecord{}, fmt.Errorf("insert media item: %w", err)
	}

	record.Ratings = []models.Rating{}
	record.Reviews = []models.Review{}
	return record, nil
}

// GetMedia returns the cached media record for the given key, including its
// ratings and reviews and the derived average rating.
func (s *Store) GetMedia(ctx context.Context, category models.Category, externalID string) (models.MediaRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, external_id, title, synopsis, cover_url, genres, attributes, created_at, updated_at
		FROM media_items
		WHERE category = $1 AND external_id = $2
	`, category, externalID)

	record, err := scanMediaRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MediaRecord{}, ErrMediaNotFound
		}
		return models.MediaRecord{}, err
	}

	if err := s.loadEngagement(ctx, &record); err != nil {
		return models.MediaRecord{}, err
	}
	return record, nil
}

// ListMedia returns all cached media records in a category.
func (s *Store) ListMedia(ctx context.Context, category models.Category) ([]models.MediaRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, external_id, title, synopsis, cover_url, genres, attributes, created_at, updated_at
		FROM media_items
		WHERE category = $1
		ORDER BY title ASC, id ASC
	`, category)
	if err != nil {
		return nil, fmt.Errorf("select media items: %w", err)
	}
	defer rows.Close()

	records := make([]models.MediaRecord, 0)
	for rows.Next() {
		record, err := scanMediaRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate media items: %w", err)
	}

	for i := range records {
		if err := s.loadEngagement(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

// UpdateMedia replaces the descriptive fields of an existing record.
func (s *Store) UpdateMedia(ctx context.Context, category models.Category, externalID string, record models.MediaRecord) (models.MediaRecord, error) {
	record.Category = category
	record.ExternalID = externalID
	if err := validateMedia(record); err != nil {
		return models.MediaRecord{}, err
	}
	record.Title = strings.TrimSpace(record.Title)

	genresJSON, attrsJSON, err := encodeDescriptive(record)
	if err != nil {
		return models.MediaRecord{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE media_items
		SET title = $1, synopsis = $2, cover_url = $3, genres = $4::jsonb, attributes = $5::jsonb, updated_at = NOW()
		WHERE category = $6 AND external_id = $7
	`, record.Title, record.Synopsis, record.CoverURL, string(genresJSON), string(attrsJSON), category, externalID)
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("update media item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return models.MediaRecord{}, ErrMediaNotFound
	}

	return s.GetMedia(ctx, category, externalID)
}

// DeleteMedia removes a cached record. Ratings and reviews cascade.
func (s *Store) DeleteMedia(ctx context.Context, category models.Category, externalID string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM media_items
		WHERE category = $1 AND external_id = $2
	`, category, externalID)
	if err != nil {
		return fmt.Errorf("delete media item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrMediaNotFound
	}
	return nil
}

func (s *Store) mediaIDByKey(ctx context.Context, category models.Category, externalID string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		SELECT id
		FROM media_items
		WHERE category = $1 AND external_id = $2
	`, category, externalID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrMediaNotFound
		}
		return 0, fmt.Errorf("lookup media item: %w", err)
	}
	return id, nil
}

func (s *Store) loadEngagement(ctx context.Context, record *models.MediaRecord) error {
	ratings, err := s.listRatings(ctx, record.ID)
	if err != nil {
		return err
	}
	reviews, err := s.listReviews(ctx, record.ID)
	if err != nil {
		return err
	}
	record.Ratings = ratings
	record.Reviews = reviews
	record.AverageRating = record.ComputeAverageRating()
	return nil
}

func validateMedia(record models.MediaRecord) error {
	switch {
	case !record.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMedia, record.Category)
	case strings.TrimSpace(record.ExternalID) == "":
		return fmt.Errorf("%w: external id is required", ErrInvalidMedia)
	case strings.TrimSpace(record.Title) == "":
		return fmt.Errorf("%w: title is required", ErrInvalidMedia)
	}
	return nil
}

func encodeDescriptive(record models.MediaRecord) ([]byte, []byte, error) {
	genres := record.Genres
	if genres == nil {
		genres = []string{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare genres payload: %w", err)
	}
	attrsJSON, err := json.Marshal(record.Attributes)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare attributes payload: %w", err)
	}
	return genresJSON, attrsJSON, nil
}

type mediaScanner interface {
	Scan(dest ...any) error
}

func scanMediaRow(scanner mediaScanner) (models.MediaRecord, error) {
	var (
		record     models.MediaRecord
		genresJSON []byte
		attrsJSON  []byte
	)

	if err := scanner.Scan(
		&record.ID,
		&record.Category,
		&record.ExternalID,
		&record.Title,
		&record.Synopsis,
		&record.CoverURL,
		&genresJSON,
		&attrsJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.MediaRecord{}, err
		}
		return models.MediaRecord{}, fmt.Errorf("scan media item: %w", err)
	}

	if err := json.Unmarshal(genresJSON, &record.Genres); err != nil {
		return models.MediaRecord{}, fmt.Errorf("decode genres: %w", err)
	}
	if err := json.Unmarshal(attrsJSON, &record.Attributes); err != nil {
		return models.MediaRecord{}, fmt.Errorf("decode attributes: %w", err)
	}
	return record, nil
}
