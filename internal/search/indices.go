package search

import "github.com/lawgpt-ru/lawsearch/backend/internal/config"

// Indices is the immutable registry mapping the five logical document
// categories to physical index names. It is passed into the retriever at
// construction so tests and multi-backend setups can swap it freely.
type Indices struct {
	CourtDecisions  string
	CourtReviews    string
	LegalArticles   string
	RuslawodChunks  string
	ProceduralForms string
}

type indexEntry struct {
	Kind string
	Name string
}

// entries returns category/index pairs in a fixed declared order so the
// multi-index search and its budget split stay deterministic.
func (i Indices) entries() []indexEntry {
	return []indexEntry{
		{Kind: "court_decisions", Name: i.CourtDecisions},
		{Kind: "court_reviews", Name: i.CourtReviews},
		{Kind: "legal_articles", Name: i.LegalArticles},
		{Kind: "ruslawod_chunks", Name: i.RuslawodChunks},
		{Kind: "procedural_forms", Name: i.ProceduralForms},
	}
}

// DefaultIndices returns the registry with the production index names.
func DefaultIndices() Indices {
	return Indices{
		CourtDecisions:  "court_decisions_index",
		CourtReviews:    "court_reviews_index",
		LegalArticles:   "legal_articles_index",
		RuslawodChunks:  "ruslawod_chunks_index",
		ProceduralForms: "procedural_forms_index",
	}
}

// IndicesFromConfig builds the registry from a Search config.
func IndicesFromConfig(cfg *config.Search) Indices {
	return Indices{
		CourtDecisions:  cfg.DecisionsIndex,
		CourtReviews:    cfg.ReviewsIndex,
		LegalArticles:   cfg.ArticlesIndex,
		RuslawodChunks:  cfg.LawChunksIndex,
		ProceduralForms: cfg.FormsIndex,
	}
}
