package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"mediashelf/shared/go/models"
)

func expectMediaLookup(mock sqlmock.Sqlmock, category, externalID string, mediaID int64) {
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM media_items
		WHERE category = $1 AND external_id = $2
	`)).
		WithArgs(category, externalID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(mediaID))
}

func expectMediaReload(mock sqlmock.Sqlmock, category, externalID string, mediaID int64, ratingValues ...int) {
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, category, external_id, title, synopsis, cover_url, genres, attributes, created_at, updated_at
		FROM media_items
		WHERE category = $1 AND external_id = $2
	`)).
		WithArgs(category, externalID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "category", "external_id", "title", "synopsis", "cover_url", "genres", "attributes", "created_at", "updated_at",
		}).AddRow(mediaID, category, externalID, "Title", "Synopsis", "", `[]`, `{}`, now, now))

	ratingRows := sqlmock.NewRows([]string{"id", "user_id", "username", "value", "created_at"})
	for i, value := range ratingValues {
		ratingRows.AddRow("r"+strconv.Itoa(i+1), "u1", "alice", value, now)
	}
	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, username, value, created_at
		FROM ratings
		WHERE media_id = $1
		ORDER BY created_at ASC, id ASC
	`)).
		WithArgs(mediaID).
		WillReturnRows(ratingRows)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, user_id, username, comment, created_at
		FROM reviews
		WHERE media_id = $1
		ORDER BY created_at ASC, id ASC
	`)).
		WithArgs(mediaID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "username", "comment", "created_at"}))
}

func TestAddRatingInvalidValue(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	for _, value := range []int{0, 6, -1} {
		if _, err := s.AddRating(context.Background(), models.CategoryBooks, "vol-1", "u1", "alice", value); !errors.Is(err, ErrInvalidRating) {
			t.Fatalf("value %d: expected ErrInvalidRating, got %v", value, err)
		}
	}
}

func TestAddRatingMediaNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id
		FROM media_items
		WHERE category = $1 AND external_id = $2
	`)).
		WithArgs("books", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err = s.AddRating(context.Background(), models.CategoryBooks, "missing", "u1", "alice", 4)
	if !errors.Is(err, ErrMediaNotFound) {
		t.Fatalf("expected ErrMediaNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddRatingReturnsRefreshedRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	expectMediaLookup(mock, "anime", "20", int64(3))

	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO ratings (id, media_id, user_id, username, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)).
		WithArgs(sqlmock.AnyArg(), int64(3), "u1", "alice", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectMediaReload(mock, "anime", "20", int64(3), 5, 4)

	got, err := s.AddRating(context.Background(), models.CategoryAnime, "20", "u1", "alice", 5)
	if err != nil {
		t.Fatalf("AddRating: %v", err)
	}

	if len(got.Ratings) != 2 || got.AverageRating != 4.5 {
		t.Fatalf("unexpected refreshed record: %#v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddRatingAppendsIndependently(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// Two submissions for the same item are two independent inserts with
	// fresh ids; neither call rewrites the other's row, so both survive and
	// the rating count grows by exactly two.
	expectMediaLookup(mock, "books", "vol-1", int64(7))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO ratings (id, media_id, user_id, username, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)).
		WithArgs(sqlmock.AnyArg(), int64(7), "u1", "alice", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectMediaReload(mock, "books", "vol-1", int64(7), 5)

	expectMediaLookup(mock, "books", "vol-1", int64(7))
	mock.ExpectExec(regexp.QuoteMeta(`
		INSERT INTO ratings (id, media_id, user_id, username, value, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)).
		WithArgs(sqlmock.AnyArg(), int64(7), "u2", "bob", 3, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectMediaReload(mock, "books", "vol-1", int64(7), 5, 3)

	first, err := s.AddRating(context.Background(), models.CategoryBooks, "vol-1", "u1", "alice", 5)
	if err != nil {
		t.Fatalf("first AddRating: %v", err)
	}
	second, err := s.AddRating(context.Background(), models.CategoryBooks, "vol-1", "u2", "bob", 3)
	if err != nil {
		t.Fatalf("second AddRating: %v", err)
	}

	if len(first.Ratings) != 1 {
		t.Fatalf("expected 1 rating after first call, got %d", len(first.Ratings))
	}
	if len(second.Ratings) != 2 {
		t.Fatalf("expected 2 ratings after second call, got %d", len(second.Ratings))
	}
	if second.AverageRating != 4 {
		t.Fatalf("expected average 4, got %v", second.AverageRating)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateRatingNotOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	expectMediaLookup(mock, "anime", "20", int64(3))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM ratings
		WHERE id = $1 AND media_id = $2
	`)).
		WithArgs("r1", int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("someone-else"))

	_, err = s.UpdateRating(context.Background(), models.CategoryAnime, "20", "r1", "u1", 2)
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteRatingNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	expectMediaLookup(mock, "games", "10", int64(9))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM ratings
		WHERE id = $1 AND media_id = $2
	`)).
		WithArgs("missing", int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err = s.DeleteRating(context.Background(), models.CategoryGames, "10", "missing", "u1")
	if !errors.Is(err, ErrRatingNotFound) {
		t.Fatalf("expected ErrRatingNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddReviewRequiresComment(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	if _, err := s.AddReview(context.Background(), models.CategoryBooks, "vol-1", "u1", "alice", "   "); !errors.Is(err, ErrInvalidReview) {
		t.Fatalf("expected ErrInvalidReview, got %v", err)
	}
}

func TestUpdateReviewTrimsComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	expectMediaLookup(mock, "books", "vol-1", int64(7))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM reviews
		WHERE id = $1 AND media_id = $2
	`)).
		WithArgs("rv1", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("u1"))

	mock.ExpectExec(regexp.QuoteMeta(`
		UPDATE reviews
		SET comment = $1
		WHERE id = $2
	`)).
		WithArgs("Changed my mind", "rv1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	expectMediaReload(mock, "books", "vol-1", int64(7))

	if _, err := s.UpdateReview(context.Background(), models.CategoryBooks, "vol-1", "rv1", "u1", "  Changed my mind  "); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteReviewNotOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	expectMediaLookup(mock, "books", "vol-1", int64(7))

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT user_id
		FROM reviews
		WHERE id = $1 AND media_id = $2
	`)).
		WithArgs("rv1", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("someone-else"))

	_, err = s.DeleteReview(context.Background(), models.CategoryBooks, "vol-1", "rv1", "u1")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
