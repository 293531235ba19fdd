package dialogue

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"

	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

// SpeakerBlock is a maximal run of contiguous utterances by one (resolved)
// speaker. FilePaths and FileIDs are parallel, ordered by time.
type SpeakerBlock struct {
	FilePaths    []string
	FileIDs      []int
	SpeakerCode  string
	StartTime    float64
	EndTime      float64
	Duration     float64
	OriginalText string
}

// Aggregator builds speaker blocks for one interview at a time. The filename
// pattern must carry "mupe_code" and "file_id" named groups; the study code
// is asserted uniform across the interview.
type Aggregator struct {
	pattern   *regexp.Regexp
	codeIdx   int
	fileIDIdx int
}

// NewAggregator compiles the file-path pattern. Returns an error if the
// pattern does not define the required named groups.
func NewAggregator(filePattern string) (*Aggregator, error) {
	re, err := regexp.Compile(filePattern)
	if err != nil {
		return nil, fmt.Errorf("compile file pattern: %w", err)
	}
	codeIdx, fileIDIdx := -1, -1
	for i, name := range re.SubexpNames() {
		switch name {
		case "mupe_code":
			codeIdx = i
		case "file_id":
			fileIDIdx = i
		}
	}
	if codeIdx < 0 || fileIDIdx < 0 {
		return nil, fmt.Errorf("file pattern %q must define mupe_code and file_id groups", filePattern)
	}
	return &Aggregator{pattern: re, codeIdx: codeIdx, fileIDIdx: fileIDIdx}, nil
}

// Aggregate merges contiguous same-speaker utterances of one interview into
// blocks. Returns the blocks, the sorted file counters missing from the
// observed [min, max] span, and the canonical interviewer code. The input
// slice is not mutated; speaker remapping happens on a copy.
func (a *Aggregator) Aggregate(interviewID string, utterances []corpus.Utterance) ([]SpeakerBlock, []int, string, error) {
	if len(utterances) == 0 {
		return nil, nil, "", &EmptyInputError{InterviewID: interviewID}
	}

	rows := make([]corpus.Utterance, len(utterances))
	copy(rows, utterances)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].StartTime < rows[j].StartTime })

	codes := make([]string, len(rows))
	for i, u := range rows {
		codes[i] = u.SpeakerCode
	}
	canonical, constituents := ResolveInterviewer(codes)

	if len(constituents) > 1 {
		isInterviewer := make(map[string]bool, len(constituents))
		for _, c := range constituents {
			isInterviewer[c] = true
		}
		for i := range rows {
			if isInterviewer[rows[i].SpeakerCode] {
				rows[i].SpeakerCode = canonical
			}
		}
	}

	fileIDs, err := a.extractFileIDs(interviewID, rows)
	if err != nil {
		return nil, nil, "", err
	}

	var blocks []SpeakerBlock
	var seen []int
	for i, u := range rows {
		if i == 0 || u.SpeakerCode != rows[i-1].SpeakerCode {
			blocks = append(blocks, SpeakerBlock{
				SpeakerCode: u.SpeakerCode,
				StartTime:   u.StartTime,
				EndTime:     u.EndTime,
			})
		}
		b := &blocks[len(blocks)-1]
		if u.StartTime < b.StartTime {
			b.StartTime = u.StartTime
		}
		if u.EndTime > b.EndTime {
			b.EndTime = u.EndTime
		}
		b.Duration += u.Duration
		if b.OriginalText != "" {
			b.OriginalText += " "
		}
		b.OriginalText += u.OriginalText
		if u.FilePath != "" {
			b.FilePaths = append(b.FilePaths, u.FilePath)
			b.FileIDs = append(b.FileIDs, fileIDs[i])
			seen = append(seen, fileIDs[i])
		}
	}

	return blocks, missingIDs(seen), canonical, nil
}

// extractFileIDs parses the file counter from every non-empty file path and
// asserts the study code is uniform. Rows with an empty file path carry no
// counter and are skipped (their slot holds a placeholder never read).
func (a *Aggregator) extractFileIDs(interviewID string, rows []corpus.Utterance) ([]int, error) {
	ids := make([]int, len(rows))
	studyCode := ""
	for i, u := range rows {
		if u.FilePath == "" {
			continue
		}
		m := a.pattern.FindStringSubmatch(u.FilePath)
		if m == nil {
			return nil, &PatternMismatchError{
				InterviewID: interviewID,
				FilePath:    u.FilePath,
				Reason:      "does not match the filename pattern",
			}
		}
		code := m[a.codeIdx]
		if studyCode == "" {
			studyCode = code
		} else if code != studyCode {
			return nil, &PatternMismatchError{
				InterviewID: interviewID,
				FilePath:    u.FilePath,
				Reason: fmt.Sprintf("study code %q does not match %q seen earlier in the interview",
					code, studyCode),
			}
		}
		n, err := strconv.Atoi(m[a.fileIDIdx])
		if err != nil {
			return nil, &PatternMismatchError{
				InterviewID: interviewID,
				FilePath:    u.FilePath,
				Reason:      "file counter is not an integer",
			}
		}
		ids[i] = n
	}
	return ids, nil
}

// missingIDs returns the sorted integers absent from the contiguous span
// [min(seen), max(seen)]. Empty input yields an empty result.
func missingIDs(seen []int) []int {
	if len(seen) == 0 {
		return nil
	}
	lo, hi := seen[0], seen[0]
	present := make(map[int]bool, len(seen))
	for _, n := range seen {
		present[n] = true
		if n < lo {
			lo = n
		}
		if n > hi {
			hi = n
		}
	}
	var missing []int
	for n := lo; n <= hi; n++ {
		if !present[n] {
			missing = append(missing, n)
		}
	}
	return missing
}
