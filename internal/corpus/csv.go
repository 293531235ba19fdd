package corpus

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadCSV reads the raw utterance table from path. Columns are resolved by
// header name so column order does not matter. keyColumn selects the
// grouping key ("audio_id" or "interview_id").
func LoadCSV(path, keyColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open utterance table: %w", err)
	}
	defer f.Close()

	table, err := readUtterances(f, keyColumn)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return table, nil
}

func readUtterances(r io.Reader, keyColumn string) (*Table, error) {
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

	required := []string{keyColumn, "speaker_code", "start_time", "end_time", "duration", "original_text", "file_path"}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	table := &Table{KeyColumn: keyColumn}
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

		field := func(name string) string {
			idx := cols[name]
			if idx >= len(record) {
				return ""
			}
			return record[idx]
		}
		start, err := parseFloat(field("start_time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: start_time: %w", line, err)
		}
		end, err := parseFloat(field("end_time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: end_time: %w", line, err)
		}
		dur, err := parseFloat(field("duration"))
		if err != nil {
			return nil, fmt.Errorf("line %d: duration: %w", line, err)
		}

		table.Utterances = append(table.Utterances, Utterance{
			InterviewID:  strings.TrimSpace(field(keyColumn)),
			SpeakerCode:  strings.TrimSpace(field("speaker_code")),
			StartTime:    start,
			EndTime:      end,
			Duration:     dur,
			OriginalText: field("original_text"),
			FilePath:     strings.TrimSpace(field("file_path")),
		})
	}
	return table, nil
}

func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
