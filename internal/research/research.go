// Package research adapts the legal retrievers to multi-query research runs:
// a research type expands one legal question into several targeted search
// queries, fans them out over the court indices and the web, and aggregates
// sources. Report writing is left to the external orchestrator.
package research

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lawgpt-ru/lawsearch/backend/internal/models"
	"github.com/lawgpt-ru/lawsearch/backend/internal/search"
	"github.com/lawgpt-ru/lawsearch/backend/internal/websearch"
)

// Type names a kind of legal research.
type Type string

const (
	LegislationAnalysis Type = "legislation_analysis"
	CaseLawResearch     Type = "case_law_research"
	ContractAnalysis    Type = "contract_analysis"
	ComplianceCheck     Type = "compliance_check"
	LegalOpinion        Type = "legal_opinion"
)

// Config controls how a question is expanded into queries.
type Config struct {
	Type                  Type
	Jurisdiction          string
	LegalAreas            []string
	DepthLevels           int
	BreadthQueries        int
	IncludeCaseLaw        bool
	IncludeLegislation    bool
	IncludeExpertOpinions bool
}

// Query is one generated search query with its goal annotation.
type Query struct {
	Query      string `json:"query"`
	Goal       string `json:"researchGoal"`
	SourceType string `json:"source_type"`
}

// GenerateQueries expands a legal question into targeted queries, capped at
// the configured breadth.
func (c Config) GenerateQueries(question string) []Query {
	breadth := c.BreadthQueries
	if breadth <= 0 {
		breadth = 4
	}

	var queries []Query

	if c.IncludeLegislation {
		queries = append(queries,
			Query{
				Query:      "актуальная редакция законодательства " + question,
				Goal:       "Анализ действующего законодательства",
				SourceType: "legislation",
			},
			Query{
				Query:      "изменения в законодательстве " + question + " 2024-2025",
				Goal:       "Анализ последних изменений в законодательстве",
				SourceType: "legislation",
			},
		)
	}

	if c.IncludeCaseLaw {
		queries = append(queries,
			Query{
				Query:      "судебная практика " + question + " ВС РФ",
				Goal:       "Анализ позиции Верховного Суда РФ",
				SourceType: "case_law",
			},
			Query{
				Query:      "арбитражная практика " + question,
				Goal:       "Анализ арбитражной практики",
				SourceType: "case_law",
			},
		)
	}

	if c.IncludeExpertOpinions {
		queries = append(queries,
			Query{
				Query:      "комментарии экспертов " + question,
				Goal:       "Анализ экспертных мнений",
				SourceType: "expert",
			},
			Query{
				Query:      "научные статьи " + question + " право",
				Goal:       "Анализ научных исследований",
				SourceType: "expert",
			},
		)
	}

	if len(queries) > breadth {
		queries = queries[:breadth]
	}
	return queries
}

// CourtSearcher is the court-records retriever surface used here.
type CourtSearcher interface {
	Search(ctx context.Context, query string, limit int) search.Result
}

// WebSearcher is the web retriever surface used here.
type WebSearcher interface {
	Search(ctx context.Context, query string, maxResults int) []websearch.Result
}

// Outcome aggregates everything a research run gathered.
type Outcome struct {
	Question    string             `json:"question"`
	Type        Type               `json:"research_type"`
	Queries     []Query            `json:"queries"`
	Sources     []models.Document  `json:"sources"`
	WebSources  []websearch.Result `json:"web_sources,omitempty"`
	VisitedURLs []string           `json:"visited_urls"`
	Failed      []string           `json:"failed,omitempty"`
}

// Adapter runs one research type over the configured retrievers.
type Adapter struct {
	cfg   Config
	court CourtSearcher
	web   WebSearcher
	log   *slog.Logger
}

// perQueryLimit bounds how many court documents each generated query may
// contribute.
const perQueryLimit = 10

// NewAdapter wires an adapter. web may be nil when no web search is
// configured.
func NewAdapter(cfg Config, court CourtSearcher, web WebSearcher, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Jurisdiction == "" {
		cfg.Jurisdiction = "russia"
	}
	return &Adapter{cfg: cfg, court: court, web: web, log: log}
}

// Conduct expands the question and gathers sources query by query,
// sequentially. Failed sources are collected, not fatal.
func (a *Adapter) Conduct(ctx context.Context, question string) *Outcome {
	queries := a.cfg.GenerateQueries(question)

	outcome := &Outcome{
		Question:    question,
		Type:        a.cfg.Type,
		Queries:     queries,
		Sources:     []models.Document{},
		VisitedURLs: []string{},
	}

	visited := make(map[string]struct{})
	failedSeen := make(map[string]struct{})

	for _, q := range queries {
		res := a.court.Search(ctx, q.Query, perQueryLimit)
		for _, name := range res.Failed {
			if _, ok := failedSeen[name]; !ok {
				failedSeen[name] = struct{}{}
				outcome.Failed = append(outcome.Failed, name)
			}
		}
		for _, doc := range res.Hits {
			url, _ := doc["url"].(string)
			if url != "" {
				if _, ok := visited[url]; ok {
					continue
				}
				visited[url] = struct{}{}
				outcome.VisitedURLs = append(outcome.VisitedURLs, url)
			}
			outcome.Sources = append(outcome.Sources, doc)
		}

		if a.web == nil {
			continue
		}
		for _, hit := range a.web.Search(ctx, q.Query, perQueryLimit) {
			if _, ok := visited[hit.Link]; ok {
				continue
			}
			visited[hit.Link] = struct{}{}
			outcome.VisitedURLs = append(outcome.VisitedURLs, hit.Link)
			outcome.WebSources = append(outcome.WebSources, hit)
		}
	}

	a.log.Info("research run finished",
		slog.String("type", string(a.cfg.Type)),
		slog.Int("queries", len(queries)),
		slog.Int("sources", len(outcome.Sources)),
		slog.Int("web_sources", len(outcome.WebSources)),
	)

	return outcome
}

// Service is a registry of adapters keyed by research type.
type Service struct {
	adapters map[Type]*Adapter
}

// NewService creates an empty registry.
func NewService() *Service {
	return &Service{adapters: make(map[Type]*Adapter)}
}

// Register adds or replaces the adapter for a research type.
func (s *Service) Register(t Type, adapter *Adapter) {
	s.adapters[t] = adapter
}

// Conduct runs the registered adapter for the given type.
func (s *Service) Conduct(ctx context.Context, question string, t Type) (*Outcome, error) {
	adapter, ok := s.adapters[t]
	if !ok {
		return nil, fmt.Errorf("research type %q is not registered", t)
	}
	return adapter.Conduct(ctx, question), nil
}
