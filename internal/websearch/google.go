// Package websearch queries the Google Custom Search API for general web
// results complementing the court-records indices.
package websearch

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

	"github.com/lawgpt-ru/lawsearch/backend/internal/config"
)

const defaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// pageSize is the hard per-request cap of the Custom Search API.
const pageSize = 10

// Result is one web hit in the shape downstream consumers expect.
type Result struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Body  string `json:"body"`
}

// Client calls the Custom Search REST endpoint. Optional restrictions
// (language, country, domains, exact terms, file type, date) apply to every
// request.
type Client struct {
	apiKey       string
	cxKey        string
	safeSearch   string
	Language     string
	Country      string
	QueryDomains []string
	ExactTerms   string
	FileType     string
	DateRestrict string

	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// New builds a web search client from config.
func New(cfg *config.Google, log *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" || cfg.CXKey == "" {
		return nil, fmt.Errorf("google api key and cx key are required")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	safe := "off"
	if cfg.SafeSearch {
		safe = "active"
	}

	return &Client{
		apiKey:       cfg.APIKey,
		cxKey:        cfg.CXKey,
		safeSearch:   safe,
		Language:     cfg.Language,
		Country:      cfg.Country,
		QueryDomains: cfg.QueryDomains,
		DateRestrict: cfg.DateRestrict,
		baseURL:      defaultBaseURL,
		client:       &http.Client{Timeout: 20 * time.Second},
		log:          log,
	}, nil
}

// Search pages through results ten at a time until maxResults are collected,
// the API runs dry, or a request fails. Failures are logged and whatever was
// already collected is returned.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []Result {
	if maxResults <= 0 {
		maxResults = pageSize
	}

	results := make([]Result, 0, maxResults)
	start := 1

	for len(results) < maxResults {
		page, err := c.fetchPage(ctx, query, start)
		if err != nil {
			c.log.Error("web search request failed", slog.Any("err", err))
			break
		}
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			if len(results) >= maxResults {
				break
			}
			results = append(results, Result{
				Title: item.Title,
				Link:  item.Link,
				Body:  item.Snippet,
			})
		}

		if len(page.Items) < pageSize {
			break
		}
		start += pageSize
	}

	return results
}

type searchPage struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

func (c *Client) fetchPage(ctx context.Context, query string, start int) (*searchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("cx", c.cxKey)
	params.Set("safe", c.safeSearch)
	params.Set("start", strconv.Itoa(start))

	if c.Language != "" {
		params.Set("lr", "lang_"+c.Language)
	}
	if c.Country != "" {
		params.Set("cr", "country"+c.Country)
	}
	if len(c.QueryDomains) > 0 {
		params.Set("siteSearch", strings.Join(c.QueryDomains, "|"))
		params.Set("siteSearchFilter", "i")
	}
	if c.ExactTerms != "" {
		params.Set("exactTerms", c.ExactTerms)
	}
	if c.FileType != "" {
		params.Set("fileType", c.FileType)
	}
	if c.DateRestrict != "" {
		params.Set("dateRestrict", c.DateRestrict)
	}
	req.URL.RawQuery = params.Encode()

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("custom search call: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("custom search status %d: %s", res.StatusCode, strings.TrimSpace(string(data)))
	}

	var page searchPage
	if err := json.NewDecoder(res.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode search page: %w", err)
	}

	return &page, nil
}
