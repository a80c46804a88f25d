// Package search builds weighted Elasticsearch queries from recognized query
// entities and runs them against the legal index registry. Backend failures
// never propagate to callers: every entry point returns a Result whose Failed
// list names the sources that produced no answer.
package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lawgpt-ru/lawsearch/backend/internal/esclient"
	"github.com/lawgpt-ru/lawsearch/backend/internal/extract"
	"github.com/lawgpt-ru/lawsearch/backend/internal/models"
)

const defaultLimit = 10

// Backend is the narrow slice of the Elasticsearch client the retriever
// needs. Tests stub it.
type Backend interface {
	Search(ctx context.Context, index string, body map[string]any) ([]esclient.Hit, error)
}

// Result carries the ranked documents plus the names of sources that failed
// while producing it, so partial degradation is observable instead of looking
// like "no matches".
type Result struct {
	Hits   []models.Document `json:"hits"`
	Failed []string          `json:"failed,omitempty"`
}

// Partial reports whether any source failed.
func (r Result) Partial() bool {
	return len(r.Failed) > 0
}

// Retriever runs entity-aware searches over the legal indices. A nil backend
// puts it into degraded mode: the external endpoint is used when configured,
// otherwise every search comes back empty.
type Retriever struct {
	backend  Backend
	endpoint *Endpoint
	indices  Indices
	log      *slog.Logger
}

// NewRetriever wires a retriever. endpoint may be nil.
func NewRetriever(backend Backend, indices Indices, endpoint *Endpoint, log *slog.Logger) *Retriever {
	if log == nil {
		log = slog.Default()
	}
	return &Retriever{
		backend:  backend,
		endpoint: endpoint,
		indices:  indices,
		log:      log,
	}
}

// SearchDecisions runs the entity-aware query against the court-decisions
// index. A backend failure yields an empty result with the index recorded in
// Failed.
func (r *Retriever) SearchDecisions(ctx context.Context, query string, limit int) Result {
	if limit <= 0 {
		limit = defaultLimit
	}

	if r.backend == nil {
		return r.searchDegraded(ctx, query)
	}

	entities := extract.All(query)
	body := buildDecisionsQuery(entities, query, limit)

	hits, err := r.backend.Search(ctx, r.indices.CourtDecisions, body)
	if err != nil {
		r.log.Error("court decisions search failed",
			slog.String("index", r.indices.CourtDecisions),
			slog.Any("err", err),
		)
		return Result{Hits: []models.Document{}, Failed: []string{r.indices.CourtDecisions}}
	}

	docs := make([]models.Document, 0, len(hits))
	for _, hit := range hits {
		docs = append(docs, decorate(hit, r.indices.CourtDecisions, "court_decision", decisionDateFields))
	}

	return Result{Hits: docs}
}

// Search is the "search across everything" operation. When the query names a
// case number or an organization the decisions index is consulted first;
// otherwise (or when it comes back empty) a generic wildcard-field query runs
// once per index with the result budget split evenly, at least two per index.
// Per-index failures are isolated: remaining indices still contribute.
func (r *Retriever) Search(ctx context.Context, query string, limit int) Result {
	if limit <= 0 {
		limit = defaultLimit
	}

	if r.backend == nil {
		return r.searchDegraded(ctx, query)
	}

	var failed []string

	entities := extract.All(query)
	if entities.CaseNumber != "" || entities.CompanyName != "" {
		res := r.SearchDecisions(ctx, query, limit)
		failed = append(failed, res.Failed...)
		if len(res.Hits) > 0 {
			res.Failed = failed
			return res
		}
		r.log.Info("entity search returned nothing, falling back to all indices",
			slog.String("case_number", entities.CaseNumber),
			slog.String("company", entities.CompanyName),
		)
	}

	entries := r.indices.entries()
	perIndex := limit / len(entries)
	if perIndex < 2 {
		perIndex = 2
	}

	all := make([]models.Document, 0, limit)
	for _, entry := range entries {
		hits, err := r.backend.Search(ctx, entry.Name, buildGenericQuery(query, perIndex))
		if err != nil {
			r.log.Error("index search failed",
				slog.String("index", entry.Name),
				slog.Any("err", err),
			)
			failed = append(failed, entry.Name)
			continue
		}

		docType := strings.TrimSuffix(entry.Kind, "_index")
		for _, hit := range hits {
			all = append(all, decorate(hit, entry.Name, docType, genericDateFields))
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		si, sj := all[i].Score(), all[j].Score()
		if si != sj {
			return si > sj
		}
		return len(all[i].Highlights()) > len(all[j].Highlights())
	})

	if len(all) > limit {
		all = all[:limit]
	}

	return Result{Hits: all, Failed: failed}
}

func (r *Retriever) searchDegraded(ctx context.Context, query string) Result {
	if r.endpoint == nil {
		return Result{Hits: []models.Document{}, Failed: []string{"elasticsearch"}}
	}

	docs, err := r.endpoint.Search(ctx, query)
	if err != nil {
		r.log.Error("retriever endpoint failed", slog.Any("err", err))
		return Result{Hits: []models.Document{}, Failed: []string{"elasticsearch", "endpoint"}}
	}

	return Result{Hits: docs, Failed: []string{"elasticsearch"}}
}
