// Package extract recognizes legal-domain entities in free-text queries:
// arbitration case numbers, organization names and document types. Extraction
// is pure; each entity kind tries an ordered pattern list and the first match
// wins.
package extract

import (
	"regexp"
	"strings"
)

var caseNumberPatterns = []*regexp.Regexp{
	// Основной формат: А03-13997/2019, А40-12345/19-55-ФЛ
	regexp.MustCompile(`[АA]\d{1,2}-\d+/\d{2,4}(?:-[А-Яа-яA-Za-z0-9]+)*`),
	// Альтернативный формат без номера суда: А-12345/2019
	regexp.MustCompile(`[АA]-\d+/\d{2,4}(?:-[А-Яа-яA-Za-z0-9]+)*`),
}

var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:ООО|ЗАО|ОАО|ПАО|АО)\s*[«"]([^»"]+)[»"]`),
	regexp.MustCompile(`(?i)(?:ООО|ЗАО|ОАО|ПАО|АО)\s+([А-Яа-яA-Za-z0-9\s\-]+)`),
	regexp.MustCompile(`(?i)(?:ИП\s+[А-Я][а-я]+\s+[А-Я][а-я]+\s+[А-Я][а-я]+)`),
	regexp.MustCompile(`(?i)ОГРН\s*:\s*(\d{13}|\d{15})`),
	regexp.MustCompile(`(?i)ИНН\s*:\s*(\d{10}|\d{12})`),
}

// documentTypes maps canonical labels to lowercase trigger phrases. Order
// matters: the first label with a contained trigger wins, so it is a slice,
// not a map.
var documentTypes = []struct {
	canonical string
	triggers  []string
}{
	{"исковое заявление", []string{"исковое заявление", "иск"}},
	{"отзыв", []string{"отзыв на исковое заявление", "отзыв"}},
	{"апелляционная жалоба", []string{"апелляционная жалоба", "апелляция"}},
	{"кассационная жалоба", []string{"кассационная жалоба", "кассация"}},
	{"заявление", []string{"заявление", "ходатайство"}},
	{"определение", []string{"определение суда"}},
	{"решение", []string{"решение суда"}},
	{"постановление", []string{"постановление суда", "постановление"}},
}

// Entities bundles everything recognized in one query. Empty string means the
// entity was absent.
type Entities struct {
	CaseNumber   string
	CompanyName  string
	DocumentType string
}

// All runs every extractor over the text.
func All(text string) Entities {
	return Entities{
		CaseNumber:   CaseNumber(text),
		CompanyName:  CompanyName(text),
		DocumentType: DocumentType(text),
	}
}

// CaseNumber finds an arbitration case number. A two-digit year is expanded
// to four digits: values below 50 map to 20xx, the rest to 19xx. Only the
// first occurrence of the short year substring is rewritten.
func CaseNumber(text string) string {
	for _, pattern := range caseNumberPatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		return normalizeCaseYear(match)
	}
	return ""
}

func normalizeCaseYear(caseNumber string) string {
	parts := strings.SplitN(caseNumber, "/", 2)
	if len(parts) < 2 {
		return caseNumber
	}

	yearPart := strings.SplitN(parts[1], "-", 2)[0]
	if len(yearPart) != 2 {
		return caseNumber
	}

	fullYear := "19" + yearPart
	if yearPart < "50" {
		fullYear = "20" + yearPart
	}

	return strings.Replace(caseNumber, "/"+yearPart, "/"+fullYear, 1)
}

// CompanyName finds an organization reference. The full matched span is
// returned, including the legal-form prefix (ООО, АО, ...) when present.
func CompanyName(text string) string {
	for _, pattern := range companyPatterns {
		if match := pattern.FindString(text); match != "" {
			return match
		}
	}
	return ""
}

// DocumentType maps trigger phrases in the query to a canonical document-type
// label. Matching is case-insensitive substring containment.
func DocumentType(text string) string {
	lowered := strings.ToLower(text)
	for _, dt := range documentTypes {
		for _, trigger := range dt.triggers {
			if strings.Contains(lowered, trigger) {
				return dt.canonical
			}
		}
	}
	return ""
}
