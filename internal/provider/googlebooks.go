package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"mediashelf/shared/go/models"
)

// GoogleBooksClient fetches book data from the Google Books volumes API.
type GoogleBooksClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGoogleBooksClient creates a Google Books client. The API key is optional
// for low request volumes but recommended.
func NewGoogleBooksClient(apiKey string) *GoogleBooksClient {
	return &GoogleBooksClient{
		apiKey:  apiKey,
		baseURL: "https://www.googleapis.com/books/v1",
		httpClient: &http.Client{
			Timeout: defaultHTTPWait,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
}

// Google Books API response structures

type booksSearchResponse struct {
	Items []booksVolume `json:"items"`
}

type booksVolume struct {
	ID         string          `json:"id"`
	VolumeInfo booksVolumeInfo `json:"volumeInfo"`
}

type booksVolumeInfo struct {
	Title               string            `json:"title"`
	Authors             []string          `json:"authors"`
	Categories          []string          `json:"categories"`
	Description         string            `json:"description"`
	PublishedDate       string            `json:"publishedDate"`
	ImageLinks          *booksImageLinks  `json:"imageLinks"`
	IndustryIdentifiers []booksIdentifier `json:"industryIdentifiers"`
}

type booksImageLinks struct {
	Thumbnail string `json:"thumbnail"`
}

type booksIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// Category reports the catalog served by this client.
func (c *GoogleBooksClient) Category() models.Category {
	return models.CategoryBooks
}

// Search looks up volumes matching the query.
func (c *GoogleBooksClient) Search(ctx context.Context, query string) ([]models.MediaRecord, error) {
	params := url.Values{}
	params.Set("q", query)
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var result booksSearchResponse
	if err := getJSON(ctx, c.httpClient, c.limiter, c.baseURL+"/volumes?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	records := make([]models.MediaRecord, 0, len(result.Items))
	for _, item := range result.Items {
		records = append(records, c.convertVolume(item))
	}
	return records, nil
}

// GetByID fetches a single volume by its Google Books id.
func (c *GoogleBooksClient) GetByID(ctx context.Context, externalID string) (*models.MediaRecord, error) {
	params := url.Values{}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	endpoint := c.baseURL + "/volumes/" + url.PathEscape(externalID)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var item booksVolume
	if err := getJSON(ctx, c.httpClient, c.limiter, endpoint, &item); err != nil {
		return nil, err
	}

	record := c.convertVolume(item)
	return &record, nil
}

func (c *GoogleBooksClient) convertVolume(v booksVolume) models.MediaRecord {
	info := v.VolumeInfo

	coverURL := ""
	if info.ImageLinks != nil {
		coverURL = info.ImageLinks.Thumbnail
	}

	isbn := ""
	if len(info.IndustryIdentifiers) > 0 {
		isbn = info.IndustryIdentifiers[0].Identifier
	}

	authors := info.Authors
	if len(authors) == 0 {
		authors = []string{unknownValue}
	}

	return models.MediaRecord{
		Category:   models.CategoryBooks,
		ExternalID: v.ID,
		Title:      orUnknown(info.Title),
		Synopsis:   orDefaultSynopsis(info.Description),
		CoverURL:   coverURL,
		Genres:     append([]string{}, info.Categories...),
		Attributes: models.Attributes{
			Authors:       authors,
			PublishedDate: info.PublishedDate,
			ISBN:          isbn,
		},
		Ratings: []models.Rating{},
		Reviews: []models.Review{},
	}
}

// getJSON performs a rate-limited GET and decodes the JSON response body.
// A 404 maps to ErrNotFound; any other failure maps to ErrUnavailable.
func getJSON(ctx context.Context, client *http.Client, limiter *rate.Limiter, endpoint string, result any) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s - %s", ErrUnavailable, resp.Status, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}
