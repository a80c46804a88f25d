package search

import (
	"regexp"
	"strings"

	"github.com/lawgpt-ru/lawsearch/backend/internal/extract"
)

var (
	companyPrefix = regexp.MustCompile(`^(?:ООО|ЗАО|ОАО|ПАО|АО)\s*[«"]?\s*`)
	companySuffix = regexp.MustCompile(`[»"]?\s*$`)
)

var decisionSourceFields = []string{
	"case_number", "court_name", "date", "decision_date",
	"subject", "claimant", "defendant", "full_text",
	"doc_id", "chunk_id", "instance", "region",
	"judges", "arguments", "conclusion", "result",
	"laws", "amount", "vid_dokumenta", "vidpr",
}

// buildDecisionsQuery assembles the court-decisions query body. Each
// recognized entity contributes one must-clause holding a weighted should
// group; with no entities the generic boosted multi_match takes over, so the
// body always carries at least one must-clause.
func buildDecisionsQuery(entities extract.Entities, rawQuery string, limit int) map[string]any {
	must := make([]map[string]any, 0, 3)

	if entities.CaseNumber != "" {
		should := make([]map[string]any, 0, 4)
		variants := caseNumberVariants(entities.CaseNumber)
		for _, variant := range variants {
			should = append(should, map[string]any{
				"term": map[string]any{
					"case_number": map[string]any{"value": variant, "boost": 10.0},
				},
			})
		}
		for _, variant := range variants {
			should = append(should, map[string]any{
				"match_phrase": map[string]any{
					"full_text": map[string]any{"query": variant, "boost": 5.0},
				},
			})
		}
		must = append(must, anyOf(should))
	}

	if entities.CompanyName != "" {
		normalized, clean := normalizeCompany(entities.CompanyName)
		should := []map[string]any{
			{"match_phrase": map[string]any{"claimant": map[string]any{"query": normalized, "boost": 8.0}}},
			{"match_phrase": map[string]any{"defendant": map[string]any{"query": normalized, "boost": 8.0}}},
			{"match": map[string]any{"claimant": map[string]any{"query": clean, "boost": 4.0, "fuzziness": "AUTO"}}},
			{"match": map[string]any{"defendant": map[string]any{"query": clean, "boost": 4.0, "fuzziness": "AUTO"}}},
			{"match_phrase": map[string]any{"full_text": map[string]any{"query": normalized, "boost": 2.0}}},
		}
		must = append(must, anyOf(should))
	}

	if entities.DocumentType != "" {
		should := []map[string]any{
			{"term": map[string]any{"vid_dokumenta": map[string]any{"value": entities.DocumentType, "boost": 6.0}}},
			{"match_phrase": map[string]any{"full_text": map[string]any{"query": entities.DocumentType, "boost": 3.0}}},
		}
		must = append(must, anyOf(should))
	}

	if len(must) == 0 {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query": rawQuery,
				"fields": []string{
					"case_number^10",
					"claimant^8",
					"defendant^8",
					"subject^6",
					"court_name^4",
					"judges^3",
					"full_text^2",
				},
				"type":      "best_fields",
				"operator":  "and",
				"fuzziness": "AUTO",
			},
		})
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"size":    limit,
		"_source": decisionSourceFields,
		"sort": []map[string]any{
			{"_score": map[string]any{"order": "desc"}},
			{"date": map[string]any{"order": "desc", "missing": "_last"}},
			{"doc_id": map[string]any{"order": "asc"}},
			{"chunk_id": map[string]any{"order": "asc"}},
		},
		"highlight": map[string]any{
			"fields": map[string]any{
				"full_text": map[string]any{
					"type":                "unified",
					"pre_tags":            []string{"<b>"},
					"post_tags":           []string{"</b>"},
					"fragment_size":       300,
					"number_of_fragments": 3,
					"fragmenter":          "span",
				},
				"case_number": tagOnlyHighlight(),
				"claimant":    tagOnlyHighlight(),
				"defendant":   tagOnlyHighlight(),
				"subject":     tagOnlyHighlight(),
				"court_name":  tagOnlyHighlight(),
				"judges":      tagOnlyHighlight(),
			},
		},
	}
}

// buildGenericQuery is the wildcard-field body used by the multi-index
// search. Unlike the decisions fallback above, which boosts seven named
// fields, this one matches every field ("*") with no boosting: document
// shapes differ per index, so there is no shared field list to weight.
func buildGenericQuery(rawQuery string, limit int) map[string]any {
	return map[string]any{
		"size": limit,
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     rawQuery,
				"fields":    []string{"*"},
				"type":      "best_fields",
				"operator":  "and",
				"fuzziness": "AUTO",
			},
		},
		"highlight": map[string]any{
			"fields": map[string]any{
				"*": map[string]any{
					"pre_tags":            []string{"<b>"},
					"post_tags":           []string{"</b>"},
					"fragment_size":       300,
					"number_of_fragments": 3,
				},
			},
		},
	}
}

func anyOf(should []map[string]any) map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"should":               should,
			"minimum_should_match": 1,
		},
	}
}

func tagOnlyHighlight() map[string]any {
	return map[string]any{
		"pre_tags":  []string{"<b>"},
		"post_tags": []string{"</b>"},
	}
}

// caseNumberVariants returns the case number in both Cyrillic and Latin
// spellings of the look-alike leading letter.
func caseNumberVariants(caseNumber string) []string {
	variants := []string{caseNumber}
	if strings.Contains(caseNumber, "А") {
		variants = append(variants, strings.ReplaceAll(caseNumber, "А", "A"))
	} else {
		variants = append(variants, strings.ReplaceAll(caseNumber, "A", "А"))
	}
	return variants
}

// normalizeCompany straightens curly quotes and additionally strips the
// legal-form prefix and surrounding quotes for the fuzzy clauses.
func normalizeCompany(company string) (normalized, clean string) {
	normalized = strings.NewReplacer("«", `"`, "»", `"`, "'", `"`).Replace(company)
	clean = companyPrefix.ReplaceAllString(normalized, "")
	clean = companySuffix.ReplaceAllString(clean, "")
	return normalized, clean
}
