package question

import (
	"fmt"

	"github.com/antonio-moreira/mupetalk/internal/dialogue"
)

// Row is one interviewer question with its stable positional identifier:
// the index of its block in the interview's aggregated block table. The
// identifier is the join key back from the segmentation result, so it is
// never regenerated after filtering.
type Row struct {
	ID        int
	Text      string
	StartTime float64
}

// NoQuestionsFoundError reports an interview whose block table carries no
// rows for the given interviewer code. Downstream segmentation needs at
// least one question, so this is fatal for the interview.
type NoQuestionsFoundError struct {
	InterviewerCode string
}

func (e *NoQuestionsFoundError) Error() string {
	return fmt.Sprintf("no questions found for interviewer code %s", e.InterviewerCode)
}

// Extract selects the interviewer-attributed blocks, keeping each block's
// positional index as the row identifier.
func Extract(blocks []dialogue.SpeakerBlock, interviewerCode string) ([]Row, error) {
	var rows []Row
	for i, b := range blocks {
		if b.SpeakerCode == interviewerCode {
			rows = append(rows, Row{ID: i, Text: b.OriginalText, StartTime: b.StartTime})
		}
	}
	if len(rows) == 0 {
		return nil, &NoQuestionsFoundError{InterviewerCode: interviewerCode}
	}
	return rows, nil
}
