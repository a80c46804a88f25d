// Package processing normalizes raw court-document chunks before indexing.
package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// CleanText unescapes HTML entities, squeezes whitespace and trims. The text
// itself (punctuation, quotes, case numbers) is preserved: court documents
// are matched verbatim.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// NormalizeDate validates a YYYY-MM-DD value by round-tripping it. Malformed
// values come back unchanged.
func NormalizeDate(raw string) string {
	if raw == "" {
		return raw
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return raw
	}
	return ts.Format("2006-01-02")
}

// BuildChunkID derives a deterministic document ID from the chunk's stable
// identity fields. Empty when nothing identifying is present.
func BuildChunkID(docID string, chunkID int, caseNumber string) string {
	if docID == "" && caseNumber == "" {
		return ""
	}
	s := sha1.Sum(fmt.Appendf(nil, "%s|%d|%s", docID, chunkID, caseNumber))
	return hex.EncodeToString(s[:])
}
