// Package newsapi implements a client for the NewsAPI /everything endpoint,
// scoped to legislative coverage.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/civicwire/statehouse-news/internal/domain"
	"github.com/civicwire/statehouse-news/pkg/httpclient"
)

// legislativeKeywords anchors every upstream query to statehouse coverage.
// Additional filters are AND-combined on top of this disjunction.
const legislativeKeywords = "(Law OR Legislation OR Congress OR Senate OR House)"

// SearchResult is the decoded upstream payload.
type SearchResult struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []domain.Article `json:"articles"`
}

// Client talks to the external news search API.
type Client struct {
	baseURL string
	apiKey  string
	http    httpclient.Client
}

// New builds a Client. The baseURL should not carry a trailing slash;
// one is stripped if present.
func New(baseURL, apiKey string, client httpclient.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  apiKey,
		http:    client,
	}
}

// BuildQuery assembles the upstream q parameter from the sanitized filters.
// Multi-word terms are parenthesized so the AND binding stays unambiguous.
func BuildQuery(f domain.QueryFilters) string {
	parts := []string{legislativeKeywords}
	for _, term := range []string{f.Search, f.Region, f.Topic} {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		if strings.ContainsAny(term, " \t") {
			term = "(" + term + ")"
		}
		parts = append(parts, term)
	}
	return strings.Join(parts, " AND ")
}

// Search queries the /everything endpoint with the given filters and
// returns the decoded upstream response.
func (c *Client) Search(ctx context.Context, f domain.QueryFilters) (*SearchResult, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("newsapi client is not initialized")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("newsapi: api key is not configured")
	}

	query := map[string]string{
		"q":        BuildQuery(f),
		"sortBy":   "publishedAt",
		"language": "en",
		"page":     strconv.Itoa(f.Page),
		"pageSize": strconv.Itoa(f.PageSize),
	}
	headers := map[string]string{"X-Api-Key": c.apiKey}

	resp, err := c.http.Get(ctx, c.baseURL+"/everything", headers, query)
	if err != nil {
		return nil, fmt.Errorf("newsapi request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d: %s", resp.StatusCode(), responseSnippet(resp.Body()))
	}

	var out SearchResult
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}
	if out.Status != "ok" {
		return nil, fmt.Errorf("newsapi reported status %q: %s", out.Status, responseSnippet(resp.Body()))
	}
	return &out, nil
}

// responseSnippet bounds upstream bodies before they reach error messages.
func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
