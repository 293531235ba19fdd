// Package corpus defines the raw utterance table and the derived MupeTalk
// table, with CSV ingestion, persistence, and schema validation.
package corpus

import "sort"

// Utterance is one transcribed speech turn of an oral-history interview.
// Supplied by the external CSV loader; never mutated by the pipeline.
type Utterance struct {
	InterviewID  string
	SpeakerCode  string
	StartTime    float64
	EndTime      float64
	Duration     float64
	OriginalText string
	FilePath     string
}

// Table holds the full raw utterance table and the name of the column its
// InterviewID values came from ("audio_id" or "interview_id").
type Table struct {
	KeyColumn  string
	Utterances []Utterance
}

// ForInterview returns a copy of the rows for the given interview key,
// preserving the table's original row order.
func (t *Table) ForInterview(id string) []Utterance {
	var out []Utterance
	for _, u := range t.Utterances {
		if u.InterviewID == id {
			out = append(out, u)
		}
	}
	return out
}

// InterviewIDs returns the distinct interview keys, sorted.
func (t *Table) InterviewIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, u := range t.Utterances {
		if !seen[u.InterviewID] {
			seen[u.InterviewID] = true
			ids = append(ids, u.InterviewID)
		}
	}
	sort.Strings(ids)
	return ids
}
