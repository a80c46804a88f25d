package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lawgpt-ru/lawsearch/backend/internal/models"
)

// Endpoint is the optional external retriever used when Elasticsearch is
// unreachable. Extra parameters come from RETRIEVER_ARG_-prefixed environment
// variables and are forwarded on every request.
type Endpoint struct {
	url    string
	params map[string]string
	client *http.Client
}

// NewEndpoint builds an endpoint fallback. Returns nil when no URL is
// configured so callers can pass the result straight to NewRetriever.
func NewEndpoint(rawURL string, params map[string]string) *Endpoint {
	if rawURL == "" {
		return nil
	}
	return &Endpoint{
		url:    rawURL,
		params: params,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// Search issues one GET with the configured params plus the query and decodes
// the returned document list.
func (e *Endpoint) Search(ctx context.Context, query string) ([]models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build endpoint request: %w", err)
	}

	values := url.Values{}
	for key, value := range e.params {
		values.Set(key, value)
	}
	values.Set("query", query)
	req.URL.RawQuery = values.Encode()

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call retriever endpoint: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("retriever endpoint status %d: %s", res.StatusCode, string(data))
	}

	var docs []models.Document
	if err := json.NewDecoder(res.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode endpoint response: %w", err)
	}

	return docs, nil
}
