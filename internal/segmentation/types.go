// Package segmentation defines the interview segmentation tree produced by
// the external LLM collaborator, the client that requests it, and the JSON
// persistence of per-interview segmentation files.
package segmentation

// Item maps one question back to its position in the interview by the
// positional identifier assigned during question extraction.
type Item struct {
	ID        int    `json:"id" jsonschema_description:"Numeric question identifier (e.g. 0, 2, 4)"`
	Timestamp string `json:"timestamp" jsonschema_description:"Original timestamp (e.g. 00:06)"`
}

// Subsection groups questions under one script subtitle.
type Subsection struct {
	Subtitle string `json:"subtitle" jsonschema_description:"Script subtitle (e.g. IDENTIFICAÇÃO)"`
	Items    []Item `json:"items"`
}

// Section groups subsections under one script title.
type Section struct {
	Title       string       `json:"title" jsonschema_description:"Main script title (e.g. INTRODUÇÃO)"`
	Subsections []Subsection `json:"subsections"`
}

// Result is the full segmentation tree for one interview.
type Result struct {
	Segments []Section `json:"segments"`
}

// Question is one interviewer question handed to the collaborator: its
// positional identifier, start offset in seconds, and text.
type Question struct {
	ID        int
	StartTime float64
	Text      string
}
