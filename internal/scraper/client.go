// Package scraper fetches character names, wiki summaries and quotes over HTTP.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a single HTTP request
const DefaultTimeout = 30 * time.Second

// Config holds the endpoints the client talks to
type Config struct {
	// APIURL serves GET /characters as a JSON array of objects with a "name" field
	APIURL string

	// WikiURL serves one HTML page per character at /<name>
	WikiURL string

	// QuotesURL serves GET /<n> as a JSON array of {"quote", "author"} objects
	QuotesURL string

	Timeout time.Duration
}

// Client is safe for concurrent use
type Client struct {
	http   *http.Client
	cfg    Config
	logger *slog.Logger
}

// NewClient creates a client for cfg
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		logger: logger,
	}
}

// Characters lists character names. A non-200 response yields an empty list.
func (c *Client) Characters(ctx context.Context) ([]string, error) {
	body, status, err := c.get(ctx, strings.TrimRight(c.cfg.APIURL, "/")+"/characters")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Warn("character list unavailable", "status", status)
		return []string{}, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("character list is not valid JSON")
	}

	results := gjson.GetBytes(body, "#.name").Array()
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.String())
	}

	c.logger.Debug("fetched characters", "count", len(names))
	return names, nil
}

// Summary fetches the character's wiki page and returns the text of its
// first SummaryParagraphs paragraphs joined by newlines. The page is parsed
// whatever its status code.
func (c *Client) Summary(ctx context.Context, name string) (string, error) {
	pageURL := strings.TrimRight(c.cfg.WikiURL, "/") + "/" + url.PathEscape(name)

	body, status, err := c.get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		c.logger.Warn("wiki page returned non-200 status", "character", name, "status", status)
	}

	paragraphs, err := Paragraphs(bytes.NewReader(body), SummaryParagraphs)
	if err != nil {
		return "", fmt.Errorf("failed to parse wiki page for %q: %w", name, err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// Quotes fetches n quotes and groups them by author
func (c *Client) Quotes(ctx context.Context, n int) (map[string][]string, error) {
	if n < 1 {
		return nil, fmt.Errorf("quote count must be at least 1, got %d", n)
	}

	body, status, err := c.get(ctx, strings.TrimRight(c.cfg.QuotesURL, "/")+"/"+strconv.Itoa(n))
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("quotes request failed with status %d", status)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("quotes response is not valid JSON")
	}

	quotes := make(map[string][]string)
	gjson.ParseBytes(body).ForEach(func(_, q gjson.Result) bool {
		author := q.Get("author").String()
		quotes[author] = append(quotes[author], q.Get("quote").String())
		return true
	})

	return quotes, nil
}

// Authors returns the keys of a Quotes result, sorted
func Authors(quotes map[string][]string) []string {
	authors := make([]string, 0, len(quotes))
	for a := range quotes {
		authors = append(authors, a)
	}
	sort.Strings(authors)
	return authors
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request: %w", err)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response from %s: %w", rawURL, err)
	}

	c.logger.Debug("http request",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start))

	return body, resp.StatusCode, nil
}
