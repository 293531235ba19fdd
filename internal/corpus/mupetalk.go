package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// MupeTalkRow is one block-level row of the derived MupeTalk table: an
// aggregated speaker block carrying its subsection label and dialogue group.
type MupeTalkRow struct {
	InterviewID  string
	FilePaths    []string
	FileIDs      []int
	SpeakerCode  string
	StartTime    float64
	EndTime      float64
	Duration     float64
	OriginalText string
	Subsection   string
	GroupID      int
}

var mupeTalkHeader = []string{
	"interview_id", "file_path", "file_id", "speaker_code",
	"start_time", "end_time", "duration", "original_text",
	"subsection", "group_id",
}

// WriteMupeTalkCSV persists the derived table. List-valued columns are
// serialized with FormatStringList/FormatIntList so they round-trip.
func WriteMupeTalkCSV(path string, rows []MupeTalkRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create mupetalk table: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(mupeTalkHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.InterviewID,
			FormatStringList(r.FilePaths),
			FormatIntList(r.FileIDs),
			r.SpeakerCode,
			formatFloat(r.StartTime),
			formatFloat(r.EndTime),
			formatFloat(r.Duration),
			r.OriginalText,
			r.Subsection,
			strconv.Itoa(r.GroupID),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReadMupeTalkCSV loads a persisted derived table, parsing list columns back
// into ordered slices.
func ReadMupeTalkCSV(path string) ([]MupeTalkRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mupetalk table: %w", err)
	}
	defer f.Close()
	return readMupeTalk(f)
}

func readMupeTalk(r io.Reader) ([]MupeTalkRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	col := func(record []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return record[idx]
	}

	var rows []MupeTalkRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line+1, err)
		}
		line++

		paths, err := ParseStringList(col(record, "file_path"))
		if err != nil {
			return nil, fmt.Errorf("line %d: file_path: %w", line, err)
		}
		ids, err := ParseIntList(col(record, "file_id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: file_id: %w", line, err)
		}
		start, err := parseFloat(col(record, "start_time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: start_time: %w", line, err)
		}
		end, err := parseFloat(col(record, "end_time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: end_time: %w", line, err)
		}
		dur, err := parseFloat(col(record, "duration"))
		if err != nil {
			return nil, fmt.Errorf("line %d: duration: %w", line, err)
		}
		groupID := 0
		if g := strings.TrimSpace(col(record, "group_id")); g != "" {
			groupID, err = strconv.Atoi(g)
			if err != nil {
				return nil, fmt.Errorf("line %d: group_id: %w", line, err)
			}
		}

		// The grouping key column may be audio_id or interview_id depending
		// on which split produced the table.
		key := col(record, "interview_id")
		if key == "" {
			key = col(record, "audio_id")
		}

		rows = append(rows, MupeTalkRow{
			InterviewID:  strings.TrimSpace(key),
			FilePaths:    paths,
			FileIDs:      ids,
			SpeakerCode:  strings.TrimSpace(col(record, "speaker_code")),
			StartTime:    start,
			EndTime:      end,
			Duration:     dur,
			OriginalText: col(record, "original_text"),
			Subsection:   strings.TrimSpace(col(record, "subsection")),
			GroupID:      groupID,
		})
	}
	return rows, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ValidateMupeTalk checks a derived table against the schema contract:
// required fields present, parallel list columns of equal length, and the
// subsection drawn from the closed label set. validLabel reports membership
// in that set so the corpus package stays independent of the label table.
func ValidateMupeTalk(rows []MupeTalkRow, validLabel func(string) bool) error {
	for i, r := range rows {
		if r.SpeakerCode == "" {
			return fmt.Errorf("row %d: empty speaker_code", i)
		}
		if len(r.FilePaths) != len(r.FileIDs) {
			return fmt.Errorf("row %d: file_path length %d != file_id length %d",
				i, len(r.FilePaths), len(r.FileIDs))
		}
		if r.EndTime < r.StartTime {
			return fmt.Errorf("row %d: end_time %v before start_time %v", i, r.EndTime, r.StartTime)
		}
		if r.Subsection == "" {
			return fmt.Errorf("row %d: empty subsection", i)
		}
		if validLabel != nil && !validLabel(r.Subsection) {
			return fmt.Errorf("row %d: subsection %q not in the known label set", i, r.Subsection)
		}
	}
	return nil
}
