// Package movieapi wraps the external movie catalog service.  The catalog
// is the authority for movie metadata; the local movies table only stores
// what has been imported for scheduling.
package movieapi

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client talks to a TMDB-compatible catalog API.
type Client struct {
	http   *resty.Client
	apiKey string
}

// New builds a catalog client for the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: httpClient, apiKey: apiKey}
}

// MovieDetails is the catalog record of one movie.
type MovieDetails struct {
	ID         uint64 `json:"id"`
	Title      string `json:"title"`
	Overview   string `json:"overview"`
	PosterPath string `json:"poster_path"`
	RuntimeMin uint32 `json:"runtime"`
}

// SearchResult is one row of a catalog search.  Runtime is not part of
// search responses; importing a movie goes through Details.
type SearchResult struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview"`
	PosterPath  string `json:"poster_path"`
	ReleaseDate string `json:"release_date"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []SearchResult `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Details fetches the full record of a movie by its catalog id.
func (c *Client) Details(ctx context.Context, id uint64) (*MovieDetails, error) {
	var details MovieDetails
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("api_key", c.apiKey).
		SetResult(&details).
		Get(fmt.Sprintf("/movie/%d", id))
	if err != nil {
		return nil, fmt.Errorf("movie catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("movie catalog: %s for movie %d", resp.Status(), id)
	}
	return &details, nil
}

// Search queries the catalog by title.  Page is 1-based; 0 means first page.
func (c *Client) Search(ctx context.Context, query string, page int) ([]SearchResult, error) {
	if page < 1 {
		page = 1
	}
	var payload searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"api_key": c.apiKey,
			"query":   query,
			"page":    fmt.Sprint(page),
		}).
		SetResult(&payload).
		Get("/search/movie")
	if err != nil {
		return nil, fmt.Errorf("movie catalog: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("movie catalog: %s for query %q", resp.Status(), query)
	}
	return payload.Results, nil
}
