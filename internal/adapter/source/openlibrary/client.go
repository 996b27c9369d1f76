package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/shelf/internal/domain"
)

const (
	// DefaultBaseURL is the Open Library API host.
	DefaultBaseURL = "https://openlibrary.org"

	// DefaultLimit caps results per search.
	DefaultLimit = 25

	defaultTimeout = 10 * time.Second
	userAgent      = "shelf/1.0"

	searchFields = "key,title,author_name,first_publish_year,edition_count,cover_i"
)

// Client implements domain.MetadataSearcher for Open Library
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ domain.MetadataSearcher = (*Client)(nil)

// NewClient creates a new Open Library client. An empty baseURL uses the
// public host and a non-positive timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// doRequest performs a GET and returns the body of a 200 response
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s", c.baseURL, path)
	if query != nil {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("openlibrary request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("openlibrary request failed", "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("openlibrary request error", "status", resp.StatusCode, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: unexpected status code: %d", domain.ErrSearchUnavailable, resp.StatusCode)
	}

	return body, nil
}

// Search queries /search.json. A blank query returns no results without a
// request.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	body, err := c.doRequest(ctx, "/search.json", params)
	if err != nil {
		return nil, err
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := MapResults(resp.Docs)
	c.logger.Info("openlibrary search", "query", query, "found", resp.NumFound, "returned", len(results))
	return results, nil
}
