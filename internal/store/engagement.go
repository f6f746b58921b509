package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediashelf/shared/go/models"
)

// AddRating appends a rating to a media record and returns the refreshed
// record. A user may rate the same item more than once; every submission
// counts toward the average.
func (s *Store) AddRating(ctx context.Context, category models.Category, externalID, userID, username string, value int) (models.MediaRecord, error) {
	if err := validateRatingValue(value); err != nil {
		return models.MediaRecord{}, err
	}

	mediaID, err := s.mediaIDByKey(ctx, category, externalID)
	if err != nil {
		return models.MediaRecord{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO ratings (id, media_id, user_id, username, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), mediaID, userID, username, value, time.Now().UTC()); err != nil {
		return models.MediaRecord{}, fmt.Errorf("insert rating: %w", err)
	}

	return s.GetMedia(ctx, category, externalID)
}

// UpdateRating changes the value of an existing rating. Only the rating's
// author may update it. The original timestamp is kept so the rating stays in
// its original ranking window.
func (s *Store) UpdateRating(ctx context.Context, category models.Category, externalID, ratingID, userID string, value int) (models.MediaRecord, error) {
	if err := validateRatingValue(value); err != nil {
		return models.MediaRecord{}, err
	}

	mediaID, err := s.mediaIDByKey(ctx, category, externalID)
	if err != nil {
		return models.MediaRecord{}, err
	}

	if err := s.checkRatingOwner(ctx, mediaID, ratingID, userID); err != nil {
		return models.MediaRecord{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE ratings
		SET value = $1
		WHERE id = $2
	`, value, ratingID); err != nil {
		return models.MediaRecord{}, fmt.Errorf("update rating: %w", err)
	}

	return s.GetMedia(ctx, category, externalID)
}

// DeleteRating removes a rating. Only the rating's author may delete it.
func (s *Store) DeleteRating(ctx context.Context, category models.Category, externalID, ratingID, userID string) (models.MediaRecord, error) {
	mediaID, err := s.mediaIDByKey(ctx, category, externalID)
	if err != nil {
		return models.MediaRecord{}, err
	}

	if err := s.checkRatingOwner(ctx, mediaID, ratingID, userID); err != nil {
		return models.MediaRecord{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM ratings
		WHERE id = $1
	`, ratingID); err != nil {
		return models.MediaRecord{}, fmt.Errorf("delete rating: %w", err)
	}

	return s.GetMedia(ctx, category, externalID)
}

// AddReview appends a review to a media record and returns the refreshed
// record.
func (s *Store) AddReview(ctx context.Context, category models.Category, externalID, userID, username, comment string) (models.MediaRecord, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return models.MediaRecord{}, fmt.Errorf("%w: comment is required", ErrInvalidReview)
	}

	mediaID, err := s.mediaIDByKey(ctx, category, externalID)
	if err != nil {
		return models.MediaRecord{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, media_id, user_id, username, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.New().String(), mediaID, userID, username, comment, time.Now().UTC()); err != nil {
		return models.MediaRecord{}, fmt.Errorf("insert review: %w", err)
	}

	return s.GetMedia(ctx, category, externalID)
}

// UpdateReview replaces the comment of an existing review. Only the review's
// author may update it.
func (s *Store) UpdateReview(ctx context.Context, category models.Category, externalID, reviewID, userID, comment string) (models.MediaRecord, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return models.MediaRecord{}, fmt.Errorf("%w: comment is required", ErrInvalidReview)
	}

	mediaID, err := s.mediaIDByKey(ctx, category, externalID)
	if err != nil {
		return models.MediaRecord{}, err
	}

	if err := s.checkReviewOwner(ctx, mediaID, reviewID, userID); err != nil {
		return models.MediaRecord{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		UPDATE reviews
		SET comment = $1
		WHERE id = $2
	`, comment, reviewID); err != nil {
		return models.MediaRecord{}, fmt.Errorf("update review: %w", err)
	}

	return s.GetMedia(ctx, category, externalID)
}

// DeleteReview removes a review. Only the review's author may delete it.
func (s *Store) DeleteReview(ctx context.Context, category models.Category, externalID, reviewID, userID string) (models.MediaRecord, error) {
	mediaID, err := s.mediaIDByKey(ctx, category, externalID)
	if err != nil {
		return models.MediaRecord{}, err
	}

	if err := s.checkReviewOwner(ctx, mediaID, reviewID, userID); err != nil {
		return models.MediaRecord{}, err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM reviews
		WHERE id = $1
	`, reviewID); err != nil {
		return models.MediaRecord{}, fmt.Errorf("delete review: %w", err)
	}

	return s.GetMedia(ctx, category, externalID)
}

func (s *Store) checkRatingOwner(ctx context.Context, mediaID int64, ratingID, userID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM ratings
		WHERE id = $1 AND media_id = $2
	`, ratingID, mediaID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRatingNotFound
		}
		return fmt.Errorf("lookup rating: %w", err)
	}
	if owner != userID {
		return ErrNotOwner
	}
	return nil
}

func (s *Store) checkReviewOwner(ctx context.Context, mediaID int64, reviewID, userID string) error {
	var owner string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM reviews
		WHERE id = $1 AND media_id = $2
	`, reviewID, mediaID).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("lookup review: %w", err)
	}
	if owner != userID {
		return ErrNotOwner
	}
	return nil
}

func validateRatingValue(value int) error {
	if value < 1 || value > 5 {
		return fmt.Errorf("%w: value must be between 1 and 5", ErrInvalidRating)
	}
	return nil
}

func (s *Store) listRatings(ctx context.Context, mediaID int64) ([]models.Rating, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, value, created_at
		FROM ratings
		WHERE media_id = $1
		ORDER BY created_at ASC, id ASC
	`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]models.Rating, 0)
	for rows.Next() {
		var r models.Rating
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Value, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

func (s *Store) listReviews(ctx context.Context, mediaID int64) ([]models.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, username, comment, created_at
		FROM reviews
		WHERE media_id = $1
		ORDER BY created_at ASC, id ASC
	`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0)
	for rows.Next() {
		var r models.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Comment, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}
