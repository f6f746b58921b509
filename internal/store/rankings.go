package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"mediashelf/shared/go/models"
)

// TopRated returns the best rated media items of a category within the given
// time window, ordered by average rating and then by rating count. Only items
// with at least one rating inside the window appear.
func (s *Store) TopRated(ctx context.Context, category models.Category, window time.Duration, limit int) ([]models.RankingEntry, error) {
	cutoff := time.Now().UTC().Add(-window)

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.external_id, m.title, AVG(r.value)::float8 AS avg_value, COUNT(r.id) AS rating_count
		FROM ratings r
		JOIN media_items m ON m.id = r.media_id
		WHERE m.category = $1 AND r.created_at >= $2
		GROUP BY m.external_id, m.title
		ORDER BY avg_value DESC, rating_count DESC
		LIMIT $3
	`, category, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("select top rated: %w", err)
	}
	defer rows.Close()

	entries := make([]models.RankingEntry, 0, limit)
	for rows.Next() {
		var entry models.RankingEntry
		if err := rows.Scan(&entry.ExternalID, &entry.Title, &entry.AverageRating, &entry.RatingCount); err != nil {
			return nil, fmt.Errorf("scan ranking entry: %w", err)
		}
		entry.AverageRating = math.Round(entry.AverageRating*100) / 100
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking entries: %w", err)
	}
	return entries, nil
}
