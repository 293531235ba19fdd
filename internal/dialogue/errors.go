package dialogue

import "fmt"

// EmptyInputError reports an aggregation request that matched no utterances.
type EmptyInputError struct {
	InterviewID string
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no rows found for interview %s", e.InterviewID)
}

// PatternMismatchError reports a file_path that violates the interview-wide
// filename pattern, or a study code that is not uniform across the
// interview. Either way the underlying data is corrupt upstream.
type PatternMismatchError struct {
	InterviewID string
	FilePath    string
	Reason      string
}

func (e *PatternMismatchError) Error() string {
	return fmt.Sprintf("interview %s: file path %q: %s", e.InterviewID, e.FilePath, e.Reason)
}
