package search

import (
	"fmt"
	"sort"
	"time"

	"github.com/lawgpt-ru/lawsearch/backend/internal/esclient"
	"github.com/lawgpt-ru/lawsearch/backend/internal/models"
)

var decisionDateFields = []string{"date", "decision_date", "indexed_at"}

var genericDateFields = []string{"date", "decision_date", "publication_date", "creation_date", "indexed_at"}

// decorate turns a raw hit into the caller-facing document: original source
// fields plus score, synthetic URL, index name, document-type tag, normalized
// dates and flattened highlights.
func decorate(hit esclient.Hit, index, docType string, dateFields []string) models.Document {
	doc := make(models.Document, len(hit.Source)+5)
	for k, v := range hit.Source {
		doc[k] = v
	}

	doc["score"] = hit.Score
	doc["url"] = fmt.Sprintf("es://%s/%s", index, hit.ID)
	doc["index"] = index
	doc["doc_type"] = docType

	normalizeDates(doc, dateFields)
	doc["highlights"] = flattenHighlights(hit.Highlight)

	return doc
}

// normalizeDates re-renders recognized YYYY-MM-DD date fields. Malformed
// values are left untouched; this never fails.
func normalizeDates(doc models.Document, fields []string) {
	for _, field := range fields {
		raw, ok := doc[field].(string)
		if !ok || raw == "" {
			continue
		}
		if ts, err := time.Parse("2006-01-02", raw); err == nil {
			doc[field] = ts.Format("2006-01-02")
		}
	}
}

// flattenHighlights collapses the per-field fragment mapping into one flat
// list. Field names are visited in sorted order to keep the output
// deterministic.
func flattenHighlights(highlight map[string][]string) []string {
	flattened := make([]string, 0, len(highlight))

	fields := make([]string, 0, len(highlight))
	for field := range highlight {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		flattened = append(flattened, highlight[field]...)
	}

	return flattened
}
