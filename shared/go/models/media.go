package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category identifies which catalog a media record belongs to.
type Category string

const (
	CategoryBooks Category = "books"
	CategoryAnime Category = "anime"
	CategoryGames Category = "games"
)

// Categories lists every supported catalog category.
var Categories = []Category{CategoryBooks, CategoryAnime, CategoryGames}

// ParseCategory converts a path/query value into a Category.
func ParseCategory(raw string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(raw))) {
	case CategoryBooks:
		return CategoryBooks, nil
	case CategoryAnime:
		return CategoryAnime, nil
	case CategoryGames:
		return CategoryGames, nil
	default:
		return "", fmt.Errorf("unknown category %q", raw)
	}
}

// Valid reports whether the category is one of the supported catalogs.
func (c Category) Valid() bool {
	switch c {
	case CategoryBooks, CategoryAnime, CategoryGames:
		return true
	}
	return false
}

// Attributes carries the category-specific descriptive fields of a media
// record. Only the fields relevant to the record's category are populated.
type Attributes struct {
	// Books
	Authors       []string `json:"authors,omitempty"`
	PublishedDate string   `json:"publishedDate,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`

	// Anime
	Studio       string `json:"studio,omitempty"`
	Episodes     int    `json:"episodes,omitempty"`
	AiringStatus string `json:"airingStatus,omitempty"`

	// Games
	Developer   string   `json:"developer,omitempty"`
	Platforms   []string `json:"platforms,omitempty"`
	ReleaseDate string   `json:"releaseDate,omitempty"`
}

// Rating is a single user's 1-5 score on a media record. The username is a
// snapshot taken at write time.
type Rating struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Review is a free-text comment on a media record, owned by one user.
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// MediaRecord is the canonical cached representation of a catalog entry.
// (category, externalId) uniquely identifies one record.
type MediaRecord struct {
	ID         int64      `json:"id"`
	Category   Category   `json:"category"`
	ExternalID string     `json:"externalId"`
	Title      string     `json:"title"`
	Synopsis   string     `json:"synopsis"`
	CoverURL   string     `json:"coverUrl"`
	Genres     []string   `json:"genres"`
	Attributes Attributes `json:"attributes"`
	Ratings    []Rating   `json:"ratings"`
	Reviews    []Review   `json:"reviews"`

	// AverageRating is derived from Ratings on read and never stored.
	AverageRating float64 `json:"averageRating"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ComputeAverageRating returns the arithmetic mean of the record's rating
// values rounded to two decimal places, or 0 when there are no ratings.
func (m *MediaRecord) ComputeAverageRating() float64 {
	if len(m.Ratings) == 0 {
		return 0
	}
	total := 0
	for _, r := range m.Ratings {
		total += r.Value
	}
	mean := float64(total) / float64(len(m.Ratings))
	return math.Round(mean*100) / 100
}

// RankingEntry is one row of a time-windowed top-N ranking.
type RankingEntry struct {
	ExternalID    string  `json:"externalId"`
	Title         string  `json:"title"`
	AverageRating float64 `json:"averageRating"`
	RatingCount   int     `json:"ratingCount"`
}
