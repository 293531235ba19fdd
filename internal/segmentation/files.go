package segmentation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

var fileNameRe = regexp.MustCompile(`^interview_segmentation_(?P<id>\w+)\.json$`)

// FileName returns the canonical segmentation file name for an interview.
func FileName(interviewID string) string {
	return fmt.Sprintf("interview_segmentation_%s.json", interviewID)
}

// InterviewIDFromFileName extracts the interview key from a segmentation
// file name; ok is false when the name does not match the convention.
func InterviewIDFromFileName(name string) (string, bool) {
	m := fileNameRe.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Save persists a segmentation tree under dir using the canonical name,
// overwriting any previous run for the same interview.
func Save(dir, interviewID string, result *Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create segmentation dir: %w", err)
	}
	path := filepath.Join(dir, FileName(interviewID))
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal segmentation: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write segmentation: %w", err)
	}
	return path, nil
}

// LoadFile reads and validates one persisted segmentation tree.
func LoadFile(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read segmentation: %w", err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validate(&result); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &result, nil
}

// ListFiles returns the segmentation files under dir keyed by interview id,
// in sorted order, ignoring files that do not follow the name convention.
func ListFiles(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read segmentation dir: %w", err)
	}
	out := make(map[string]string)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		if id, ok := InterviewIDFromFileName(name); ok {
			out[id] = filepath.Join(dir, name)
		}
	}
	return out, nil
}
