package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"mediashelf/shared/go/models"
)

// JikanClient fetches anime data from the Jikan (MyAnimeList) API. Jikan
// requires no API key but enforces a 3 requests/second limit.
type JikanClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewJikanClient creates a Jikan API client.
func NewJikanClient() *JikanClient {
	return &JikanClient{
		baseURL: "https://api.jikan.moe/v4",
		httpClient: &http.Client{
			Timeout: defaultHTTPWait,
		},
		limiter: rate.NewLimiter(rate.Limit(3), 3),
	}
}

// Jikan API response structures

type jikanSearchResponse struct {
	Data []jikanAnime `json:"data"`
}

type jikanItemResponse struct {
	Data jikanAnime `json:"data"`
}

type jikanAnime struct {
	MalID    int         `json:"mal_id"`
	Title    string      `json:"title"`
	Synopsis string      `json:"synopsis"`
	Episodes int         `json:"episodes"`
	Status   string      `json:"status"`
	Images   jikanImages `json:"images"`
	Studios  []jikanName `json:"studios"`
	Genres   []jikanName `json:"genres"`
}

type jikanImages struct {
	JPG jikanImage `json:"jpg"`
}

type jikanImage struct {
	ImageURL string `json:"image_url"`
}

type jikanName struct {
	Name string `json:"name"`
}

// Category reports the catalog served by this client.
func (c *JikanClient) Category() models.Category {
	return models.CategoryAnime
}

// Search looks up anime matching the query.
func (c *JikanClient) Search(ctx context.Context, query string) ([]models.MediaRecord, error) {
	params := url.Values{}
	params.Set("q", query)

	var result jikanSearchResponse
	if err := getJSON(ctx, c.httpClient, c.limiter, c.baseURL+"/anime?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	records := make([]models.MediaRecord, 0, len(result.Data))
	for _, item := range result.Data {
		records = append(records, c.convertAnime(item))
	}
	return records, nil
}

// GetByID fetches a single anime by its MyAnimeList id.
func (c *JikanClient) GetByID(ctx context.Context, externalID string) (*models.MediaRecord, error) {
	var result jikanItemResponse
	if err := getJSON(ctx, c.httpClient, c.limiter, c.baseURL+"/anime/"+url.PathEscape(externalID), &result); err != nil {
		return nil, err
	}

	record := c.convertAnime(result.Data)
	return &record, nil
}

func (c *JikanClient) convertAnime(a jikanAnime) models.MediaRecord {
	studio := ""
	if len(a.Studios) > 0 {
		studio = a.Studios[0].Name
	}

	genres := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		genres = append(genres, g.Name)
	}

	return models.MediaRecord{
		Category:   models.CategoryAnime,
		ExternalID: strconv.Itoa(a.MalID),
		Title:      orUnknown(a.Title),
		Synopsis:   orDefaultSynopsis(a.Synopsis),
		CoverURL:   a.Images.JPG.ImageURL,
		Genres:     genres,
		Attributes: models.Attributes{
			Studio:       orUnknown(studio),
			Episodes:     a.Episodes,
			AiringStatus: a.Status,
		},
		Ratings: []models.Rating{},
		Reviews: []models.Review{},
	}
}
