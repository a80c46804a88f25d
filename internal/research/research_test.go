package research_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lawgpt-ru/lawsearch/backend/internal/models"
	"github.com/lawgpt-ru/lawsearch/backend/internal/research"
	"github.com/lawgpt-ru/lawsearch/backend/internal/search"
	"github.com/lawgpt-ru/lawsearch/backend/internal/websearch"
)

type stubCourt struct {
	queries []string
	result  search.Result
}

func (s *stubCourt) Search(_ context.Context, query string, _ int) search.Result {
	s.queries = append(s.queries, query)
	return s.result
}

type stubWeb struct {
	queries []string
	results []websearch.Result
}

func (s *stubWeb) Search(_ context.Context, query string, _ int) []websearch.Result {
	s.queries = append(s.queries, query)
	return s.results
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerateQueriesCapsAtBreadth(t *testing.T) {
	cfg := research.Config{
		BreadthQueries:        4,
		IncludeLegislation:    true,
		IncludeCaseLaw:        true,
		IncludeExpertOpinions: true,
	}

	queries := cfg.GenerateQueries("ответственность за нарушение трудового законодательства")
	require.Len(t, queries, 4)

	// Declared order: legislation first, then case law
	require.Equal(t, "legislation", queries[0].SourceType)
	require.Equal(t, "legislation", queries[1].SourceType)
	require.Equal(t, "case_law", queries[2].SourceType)
	require.Equal(t, "case_law", queries[3].SourceType)
}

func TestGenerateQueriesHonorsIncludeFlags(t *testing.T) {
	cfg := research.Config{
		BreadthQueries:        6,
		IncludeExpertOpinions: true,
	}

	queries := cfg.GenerateQueries("аренда")
	require.Len(t, queries, 2)
	for _, q := range queries {
		require.Equal(t, "expert", q.SourceType)
		require.Contains(t, q.Query, "аренда")
	}
}

func TestConductAggregatesSources(t *testing.T) {
	court := &stubCourt{result: search.Result{Hits: []models.Document{
		{"url": "es://court_decisions_index/1", "score": 2.0},
		{"url": "es://court_decisions_index/2", "score": 1.0},
	}}}
	web := &stubWeb{results: []websearch.Result{
		{Title: "статья", Link: "https://example.org/article"},
	}}

	adapter := research.NewAdapter(research.Config{
		Type:               research.LegislationAnalysis,
		BreadthQueries:     2,
		IncludeLegislation: true,
	}, court, web, testLogger())

	outcome := adapter.Conduct(context.Background(), "вопрос")
	require.Equal(t, research.LegislationAnalysis, outcome.Type)
	require.Len(t, court.queries, 2)
	require.Len(t, web.queries, 2)

	// The same document URLs from the second query are deduplicated
	require.Len(t, outcome.Sources, 2)
	require.Len(t, outcome.WebSources, 1)
	require.ElementsMatch(t, []string{
		"es://court_decisions_index/1",
		"es://court_decisions_index/2",
		"https://example.org/article",
	}, outcome.VisitedURLs)
}

func TestConductCollectsFailedSources(t *testing.T) {
	court := &stubCourt{result: search.Result{
		Hits:   []models.Document{},
		Failed: []string{"legal_articles_index"},
	}}

	adapter := research.NewAdapter(research.Config{
		Type:           research.CaseLawResearch,
		BreadthQueries: 2,
		IncludeCaseLaw: true,
	}, court, nil, testLogger())

	outcome := adapter.Conduct(context.Background(), "вопрос")
	require.Equal(t, []string{"legal_articles_index"}, outcome.Failed)
	require.Empty(t, outcome.Sources)
}

func TestServiceRejectsUnregisteredType(t *testing.T) {
	service := research.NewService()
	_, err := service.Conduct(context.Background(), "вопрос", research.LegalOpinion)
	require.Error(t, err)

	service.Register(research.LegalOpinion, research.NewAdapter(research.Config{
		Type:               research.LegalOpinion,
		IncludeLegislation: true,
	}, &stubCourt{result: search.Result{}}, nil, testLogger()))

	outcome, err := service.Conduct(context.Background(), "вопрос", research.LegalOpinion)
	require.NoError(t, err)
	require.Equal(t, "вопрос", outcome.Question)
}
