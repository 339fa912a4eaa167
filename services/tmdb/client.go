// Package tmdb wraps the third-party movie metadata API. Every call goes
// through the fetch primitive so timeouts and retries are uniform; callers
// above this package own fallback behavior.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"reelfeed/internal/fetch"
	"reelfeed/models"
)

const (
	defaultBaseURL = "https://api.themoviedb.org/3"
	imageBaseURL   = "https://image.tmdb.org/t/p/w500"
)

var (
	// ErrNoCredentials is returned when no API key is configured.
	ErrNoCredentials = errors.New("tmdb: api key not configured")
	// ErrBadPayload wraps responses that are not valid provider JSON.
	ErrBadPayload = errors.New("tmdb: malformed response payload")
)

// Client talks to the metadata provider.
type Client struct {
	baseURL string
	apiKey  string
	fetcher *fetch.Client
}

// NewClient creates a provider client. An empty apiKey is allowed; calls
// will fail with ErrNoCredentials until UpdateCredentials supplies one.
func NewClient(apiKey string, fetcher *fetch.Client) *Client {
	if fetcher == nil {
		fetcher = fetch.NewClient(fetch.Config{})
	}
	return &Client{
		baseURL: defaultBaseURL,
		apiKey:  apiKey,
		fetcher: fetcher,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(apiKey, baseURL string, fetcher *fetch.Client) *Client {
	c := NewClient(apiKey, fetcher)
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// HasCredentials checks if the client has an API key configured.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// UpdateCredentials replaces the API key.
func (c *Client) UpdateCredentials(apiKey string) {
	c.apiKey = apiKey
}

// listResponse is the common paged envelope for listing endpoints.
type listResponse struct {
	Page         int            `json:"page"`
	Results      []models.Movie `json:"results"`
	TotalPages   int            `json:"total_pages"`
	TotalResults int            `json:"total_results"`
}

// Popular fetches one page of currently popular movies.
func (c *Client) Popular(ctx context.Context, page int) ([]models.Movie, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{}
	params.Set("page", fmt.Sprint(page))
	return c.list(ctx, "/movie/popular", params)
}

// Trending fetches trending movies for the given window ("day" or "week").
func (c *Client) Trending(ctx context.Context, window string) ([]models.Movie, error) {
	if window != "day" {
		window = "week"
	}
	return c.list(ctx, "/trending/movie/"+window, nil)
}

// TopRated fetches the first page of top rated movies.
func (c *Client) TopRated(ctx context.Context) ([]models.Movie, error) {
	return c.list(ctx, "/movie/top_rated", nil)
}

// NowPlaying fetches movies currently in theatres.
func (c *Client) NowPlaying(ctx context.Context) ([]models.Movie, error) {
	return c.list(ctx, "/movie/now_playing", nil)
}

// Upcoming fetches upcoming releases.
func (c *Client) Upcoming(ctx context.Context) ([]models.Movie, error) {
	return c.list(ctx, "/movie/upcoming", nil)
}

// Similar fetches movies similar to the given id.
func (c *Client) Similar(ctx context.Context, id int) ([]models.Movie, error) {
	return c.list(ctx, fmt.Sprintf("/movie/%d/similar", id), nil)
}

// Recommendations fetches provider recommendations seeded by the given id.
func (c *Client) Recommendations(ctx context.Context, id int) ([]models.Movie, error) {
	return c.list(ctx, fmt.Sprintf("/movie/%d/recommendations", id), nil)
}

// Search looks up movies by free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]models.Movie, error) {
	params := url.Values{}
	params.Set("query", query)
	return c.list(ctx, "/search/movie", params)
}

// Details fetches a single movie record by id.
func (c *Client) Details(ctx context.Context, id int) (*models.Movie, error) {
	body, err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil)
	if err != nil {
		return nil, err
	}
	var movie models.Movie
	if err := json.Unmarshal(body, &movie); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return &movie, nil
}

func (c *Client) list(ctx context.Context, path string, params url.Values) ([]models.Movie, error) {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	var result listResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return result.Results, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if !c.HasCredentials() {
		return nil, ErrNoCredentials
	}
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	return c.fetcher.Get(ctx, c.baseURL+path+"?"+params.Encode())
}

// PosterURL resolves a provider poster path into a full image URL.
// Returns "" for records without a poster.
func PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return imageBaseURL + path
}
