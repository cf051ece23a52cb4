// Package catalog is an HTTP client for TheMealDB recipe API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"recipebrowser"
)

const (
	DefaultBaseURL = "https://www.themealdb.com/api/json/v1/1"

	defaultRPS     = 10.0
	defaultBurst   = 5
	defaultTimeout = 15 * time.Second
)

var _ recipebrowser.Catalog = (*Client)(nil)

// Client is a rate-limited TheMealDB client.
type Client struct {
	baseURL    string
	httpClient recipebrowser.HTTPClient
	limiter    *rate.Limiter
	logger     *slog.Logger
}

type ClientOpts struct {
	BaseURL           string
	HTTPClient        recipebrowser.HTTPClient
	RequestsPerSecond float64
	Burst             int
	Logger            *slog.Logger
}

// NewClient creates a catalog client. Zero-valued options fall back to defaults.
func NewClient(opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRPS
	}
	if opts.Burst <= 0 {
		opts.Burst = defaultBurst
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		logger:     opts.Logger,
	}
}

// NewClientFromConfig builds a client from environment configuration.
func NewClientFromConfig(cfg recipebrowser.CatalogConfig, logger *slog.Logger) *Client {
	return NewClient(ClientOpts{
		BaseURL:           cfg.BaseURL,
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Logger:            logger,
	})
}

func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var resp wireCategories
	if err := c.get(ctx, "list.php", url.Values{"c": {"list"}}, &resp); err != nil {
		return nil, wrapError("categories", "", err)
	}

	categories := make([]string, 0, len(resp.Meals))
	for _, m := range resp.Meals {
		if name := strings.TrimSpace(m.Category); name != "" {
			categories = append(categories, name)
		}
	}
	return categories, nil
}

// FilterByCategory returns the category's recipes. The API only sends id, name and
// thumbnail for these, so the requested category is stamped on each result.
func (c *Client) FilterByCategory(ctx context.Context, category string) ([]recipebrowser.Recipe, error) {
	var resp wireMeals
	if err := c.get(ctx, "filter.php", url.Values{"c": {category}}, &resp); err != nil {
		return nil, wrapError("filter", category, err)
	}

	recipes := toRecipes(resp.Meals)
	for i := range recipes {
		if recipes[i].Category == "" {
			recipes[i].Category = category
		}
	}
	return recipes, nil
}

func (c *Client) SearchByName(ctx context.Context, query string) ([]recipebrowser.Recipe, error) {
	var resp wireMeals
	if err := c.get(ctx, "search.php", url.Values{"s": {query}}, &resp); err != nil {
		return nil, wrapError("search", query, err)
	}
	return toRecipes(resp.Meals), nil
}

func (c *Client) LookupByID(ctx context.Context, id string) (*recipebrowser.Recipe, error) {
	var resp wireMeals
	if err := c.get(ctx, "lookup.php", url.Values{"i": {id}}, &resp); err != nil {
		return nil, wrapError("lookup", id, err)
	}

	recipes := toRecipes(resp.Meals)
	if len(recipes) == 0 {
		return nil, wrapError("lookup", id, ErrNotFound)
	}
	return &recipes[0], nil
}

// get performs a rate-limited GET against the API and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + "/" + endpoint + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("CATALOG: Request", "endpoint", endpoint, "query", query.Encode())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("CATALOG: Response",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrServer, resp.Status)
	default:
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}

	// An empty body is how the API answers some unknown filters.
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
