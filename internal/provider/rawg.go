package provider

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"mediashelf/shared/go/models"
)

// RAWGClient fetches game data from the RAWG video games database API.
type RAWGClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRAWGClient creates a RAWG API client. RAWG requires an API key.
func NewRAWGClient(apiKey string) *RAWGClient {
	return &RAWGClient{
		apiKey:  apiKey,
		baseURL: "https://api.rawg.io/api",
		httpClient: &http.Client{
			Timeout: defaultHTTPWait,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// RAWG API response structures

type rawgSearchResponse struct {
	Results []rawgGame `json:"results"`
}

type rawgGame struct {
	ID              int            `json:"id"`
	Name            string         `json:"name"`
	DescriptionRaw  string         `json:"description_raw"`
	BackgroundImage string         `json:"background_image"`
	Released        string         `json:"released"`
	Genres          []rawgName     `json:"genres"`
	Platforms       []rawgPlatform `json:"platforms"`
	Developers      []rawgName     `json:"developers"`
}

type rawgName struct {
	Name string `json:"name"`
}

type rawgPlatform struct {
	Platform rawgName `json:"platform"`
}

// Category reports the catalog served by this client.
func (c *RAWGClient) Category() models.Category {
	return models.CategoryGames
}

// Search looks up games matching the query.
func (c *RAWGClient) Search(ctx context.Context, query string) ([]models.MediaRecord, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("search", query)

	var result rawgSearchResponse
	if err := getJSON(ctx, c.httpClient, c.limiter, c.baseURL+"/games?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	records := make([]models.MediaRecord, 0, len(result.Results))
	for _, item := range result.Results {
		records = append(records, c.convertGame(item))
	}
	return records, nil
}

// GetByID fetches a single game by its RAWG id.
func (c *RAWGClient) GetByID(ctx context.Context, externalID string) (*models.MediaRecord, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)

	var item rawgGame
	if err := getJSON(ctx, c.httpClient, c.limiter, c.baseURL+"/games/"+url.PathEscape(externalID)+"?"+params.Encode(), &item); err != nil {
		return nil, err
	}

	record := c.convertGame(item)
	return &record, nil
}

func (c *RAWGClient) convertGame(g rawgGame) models.MediaRecord {
	developer := ""
	if len(g.Developers) > 0 {
		developer = g.Developers[0].Name
	}

	genres := make([]string, 0, len(g.Genres))
	for _, item := range g.Genres {
		genres = append(genres, item.Name)
	}

	platforms := make([]string, 0, len(g.Platforms))
	for _, item := range g.Platforms {
		platforms = append(platforms, item.Platform.Name)
	}

	return models.MediaRecord{
		Category:   models.CategoryGames,
		ExternalID: strconv.Itoa(g.ID),
		Title:      orUnknown(g.Name),
		Synopsis:   orDefaultSynopsis(g.DescriptionRaw),
		CoverURL:   g.BackgroundImage,
		Genres:     genres,
		Attributes: models.Attributes{
			Developer:   orUnknown(developer),
			Platforms:   platforms,
			ReleaseDate: g.Released,
		},
		Ratings: []models.Rating{},
		Reviews: []models.Review{},
	}
}
