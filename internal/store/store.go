package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrMediaNotFound signals a missing media record.
	ErrMediaNotFound = errors.New("media item not found")
	// ErrMediaExists signals a (category, externalId) collision on create.
	ErrMediaExists = errors.New("media item already exists")
	// ErrInvalidMedia indicates validation failure for media data.
	ErrInvalidMedia = errors.New("invalid media item")
	// ErrRatingNotFound signals a missing rating on the media record.
	ErrRatingNotFound = errors.New("rating not found")
	// ErrInvalidRating indicates a rating value outside 1..5.
	ErrInvalidRating = errors.New("invalid rating")
	// ErrReviewNotFound signals a missing review on the media record.
	ErrReviewNotFound = errors.New("review not found")
	// ErrInvalidReview indicates an empty review comment.
	ErrInvalidReview = errors.New("invalid review")
	// ErrListNotFound signals a missing user list.
	ErrListNotFound = errors.New("list not found")
	// ErrInvalidList indicates validation failure for list data.
	ErrInvalidList = errors.New("invalid list")
	// ErrNotOwner indicates the caller does not own the resource it is
	// trying to mutate.
	ErrNotOwner = errors.New("caller does not own this resource")
)

// Store provides persistence backed by Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
