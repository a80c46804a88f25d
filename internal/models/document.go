package models

import "time"

// Document is one matched document as returned to callers: the original
// _source fields plus the injected score, url, index, doc_type and highlights
// keys.
type Document map[string]any

// Score reads the injected relevance score, zero when missing.
func (d Document) Score() float64 {
	if v, ok := d["score"].(float64); ok {
		return v
	}
	return 0
}

// Highlights reads the injected highlight fragments.
func (d Document) Highlights() []string {
	if v, ok := d["highlights"].([]string); ok {
		return v
	}
	return nil
}

// CourtDocument is the canonical chunk structure stored in the court
// decisions index.
type CourtDocument struct {
	DocID        string    `json:"doc_id"`
	ChunkID      int       `json:"chunk_id"`
	CaseNumber   string    `json:"case_number"`
	CourtName    string    `json:"court_name"`
	Date         string    `json:"date"`
	DecisionDate string    `json:"decision_date"`
	Subject      string    `json:"subject"`
	Claimant     string    `json:"claimant"`
	Defendant    string    `json:"defendant"`
	FullText     string    `json:"full_text"`
	Instance     string    `json:"instance"`
	Region       string    `json:"region"`
	Judges       string    `json:"judges"`
	Arguments    string    `json:"arguments"`
	Conclusion   string    `json:"conclusion"`
	Result       string    `json:"result"`
	Laws         string    `json:"laws"`
	Amount       string    `json:"amount"`
	VidDokumenta string    `json:"vid_dokumenta"`
	Vidpr        string    `json:"vidpr"`
	IndexedAt    time.Time `json:"indexed_at"`
}
