package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lawgpt-ru/lawsearch/backend/internal/esclient"
)

type stubBackend struct {
	hits   map[string][]esclient.Hit
	errs   map[string]error
	bodies map[string]map[string]any
	calls  []string
}

func (s *stubBackend) Search(_ context.Context, index string, body map[string]any) ([]esclient.Hit, error) {
	if s.bodies == nil {
		s.bodies = make(map[string]map[string]any)
	}
	s.bodies[index] = body
	s.calls = append(s.calls, index)
	if err := s.errs[index]; err != nil {
		return nil, err
	}
	return s.hits[index], nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIndices() Indices {
	return DefaultIndices()
}

func hit(id string, score float64, highlights int) esclient.Hit {
	h := esclient.Hit{
		ID:     id,
		Score:  score,
		Source: map[string]any{"case_number": "А03-1/2020"},
	}
	if highlights > 0 {
		frags := make([]string, highlights)
		for i := range frags {
			frags[i] = "<b>фрагмент</b>"
		}
		h.Highlight = map[string][]string{"full_text": frags}
	}
	return h
}

func TestSearchDecisionsDecoratesHits(t *testing.T) {
	backend := &stubBackend{hits: map[string][]esclient.Hit{
		"court_decisions_index": {hit("doc-1", 3.5, 2)},
	}}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.SearchDecisions(context.Background(), "дело А03-1/2020", 10)
	require.False(t, res.Partial())
	require.Len(t, res.Hits, 1)

	doc := res.Hits[0]
	require.Equal(t, 3.5, doc["score"])
	require.Equal(t, "es://court_decisions_index/doc-1", doc["url"])
	require.Equal(t, "court_decisions_index", doc["index"])
	require.Equal(t, "court_decision", doc["doc_type"])
	require.Len(t, doc.Highlights(), 2)
}

func TestSearchDecisionsBackendErrorYieldsEmptyResult(t *testing.T) {
	backend := &stubBackend{errs: map[string]error{
		"court_decisions_index": errors.New("connection refused"),
	}}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.SearchDecisions(context.Background(), "дело А03-1/2020", 10)
	require.NotNil(t, res.Hits)
	require.Empty(t, res.Hits)
	require.True(t, res.Partial())
	require.Equal(t, []string{"court_decisions_index"}, res.Failed)
}

func TestSearchEntityQueryUsesDecisionsIndexOnly(t *testing.T) {
	backend := &stubBackend{hits: map[string][]esclient.Hit{
		"court_decisions_index": {hit("doc-1", 2.0, 0)},
	}}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.Search(context.Background(), "информация по делу А03-13997/2019", 10)
	require.Len(t, res.Hits, 1)
	require.Equal(t, []string{"court_decisions_index"}, backend.calls)
}

func TestSearchEntityMissFallsBackToAllIndices(t *testing.T) {
	backend := &stubBackend{hits: map[string][]esclient.Hit{
		"legal_articles_index": {hit("art-1", 1.0, 0)},
	}}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.Search(context.Background(), "решения по ООО «Сахкомцентр»", 10)
	require.Len(t, res.Hits, 1)
	require.Equal(t, "legal_articles", res.Hits[0]["doc_type"])
	// Decisions first, then every index in registry order
	require.Equal(t, 6, len(backend.calls))
	require.Equal(t, "court_decisions_index", backend.calls[0])
}

func TestSearchBudgetSplit(t *testing.T) {
	backend := &stubBackend{}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	r.Search(context.Background(), "общий запрос", 10)
	require.Len(t, backend.bodies, 5)
	for index, body := range backend.bodies {
		require.Equal(t, 2, body["size"], "index %s", index)
	}

	// A small budget still grants every index at least two slots
	backend = &stubBackend{}
	r = NewRetriever(backend, testIndices(), nil, testLogger())
	r.Search(context.Background(), "общий запрос", 3)
	for index, body := range backend.bodies {
		require.Equal(t, 2, body["size"], "index %s", index)
	}
}

func TestSearchPerIndexFailureIsolation(t *testing.T) {
	backend := &stubBackend{
		hits: map[string][]esclient.Hit{
			"court_reviews_index":    {hit("rev-1", 2.0, 1)},
			"procedural_forms_index": {hit("form-1", 1.0, 0)},
		},
		errs: map[string]error{
			"legal_articles_index": errors.New("index unavailable"),
		},
	}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.Search(context.Background(), "общий запрос", 10)
	require.Len(t, res.Hits, 2)
	require.True(t, res.Partial())
	require.Equal(t, []string{"legal_articles_index"}, res.Failed)
}

func TestSearchResortAndTruncate(t *testing.T) {
	backend := &stubBackend{hits: map[string][]esclient.Hit{
		"court_decisions_index": {hit("a", 1.0, 0), hit("b", 5.0, 1)},
		"court_reviews_index":   {hit("c", 5.0, 3), hit("d", 2.0, 0)},
		"legal_articles_index":  {hit("e", 3.0, 0)},
	}}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.Search(context.Background(), "общий запрос", 4)
	require.Len(t, res.Hits, 4)

	// Score descending, ties broken by highlight count descending
	require.Equal(t, "es://court_reviews_index/c", res.Hits[0]["url"])
	require.Equal(t, "es://court_decisions_index/b", res.Hits[1]["url"])
	require.Equal(t, "es://legal_articles_index/e", res.Hits[2]["url"])
	require.Equal(t, "es://court_reviews_index/d", res.Hits[3]["url"])
}

func TestSearchNeverExceedsRequestedLimit(t *testing.T) {
	many := make([]esclient.Hit, 8)
	for i := range many {
		many[i] = hit(string(rune('a'+i)), float64(i), 0)
	}
	backend := &stubBackend{hits: map[string][]esclient.Hit{
		"court_decisions_index": many,
		"court_reviews_index":   many,
	}}
	r := NewRetriever(backend, testIndices(), nil, testLogger())

	res := r.Search(context.Background(), "общий запрос", 5)
	require.Len(t, res.Hits, 5)
}

func TestSearchDegradedWithoutBackend(t *testing.T) {
	r := NewRetriever(nil, testIndices(), nil, testLogger())

	res := r.Search(context.Background(), "любой запрос", 10)
	require.NotNil(t, res.Hits)
	require.Empty(t, res.Hits)
	require.Equal(t, []string{"elasticsearch"}, res.Failed)

	res = r.SearchDecisions(context.Background(), "дело А03-1/2020", 10)
	require.Empty(t, res.Hits)
	require.True(t, res.Partial())
}
