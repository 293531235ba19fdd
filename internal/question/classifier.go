package question

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/antonio-moreira/mupetalk/internal/segmentation"
)

// Level selects which label columns Classify attaches.
type Level int

const (
	LevelBoth Level = iota
	LevelSection
	LevelSubsection
)

// ClassifiedRow is a question row augmented with its script labels. Only
// the columns requested by the classification level are populated.
type ClassifiedRow struct {
	Row
	Section    Label
	Subsection Label
	Timestamp  string
}

// UnclassifiedQuestionsError reports question identifiers absent from the
// segmentation tree. Partial labeling is never accepted.
type UnclassifiedQuestionsError struct {
	MissingIDs []int
}

func (e *UnclassifiedQuestionsError) Error() string {
	return fmt.Sprintf("unclassified question ids: %v", e.MissingIDs)
}

type labelEntry struct {
	section    Label
	subsection Label
	timestamp  string
}

// Classifier attaches section/subsection labels to question rows by walking
// a segmentation tree.
type Classifier struct {
	logger *zap.Logger
}

// NewClassifier returns a classifier. logger may be nil.
func NewClassifier(logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{logger: logger}
}

// Classify walks the tree once, builds an id→labels lookup, verifies every
// input row has an entry, and returns labeled copies of the rows. A
// subsection title outside the known set falls back to the section title
// with a warning; a section title outside the set is fatal, since it
// signals a data-quality bug in the collaborator's output.
func (c *Classifier) Classify(tree *segmentation.Result, rows []Row, level Level) ([]ClassifiedRow, error) {
	lookup := make(map[int]labelEntry)
	for _, sec := range tree.Segments {
		sectionLabel, err := ParseLabel(sec.Title)
		if err != nil {
			return nil, fmt.Errorf("unknown section title: %w", err)
		}
		for _, sub := range sec.Subsections {
			subLabel, subErr := ParseLabel(sub.Subtitle)
			if subErr != nil {
				c.logger.Warn("unknown subsection title, falling back to section title",
					zap.String("subtitle", sub.Subtitle),
					zap.String("section", sec.Title),
				)
				subLabel = sectionLabel
			}
			for _, item := range sub.Items {
				lookup[item.ID] = labelEntry{
					section:    sectionLabel,
					subsection: subLabel,
					timestamp:  item.Timestamp,
				}
			}
		}
	}

	var missing []int
	for _, r := range rows {
		if _, ok := lookup[r.ID]; !ok {
			missing = append(missing, r.ID)
		}
	}
	if len(missing) > 0 {
		sort.Ints(missing)
		return nil, &UnclassifiedQuestionsError{MissingIDs: missing}
	}

	out := make([]ClassifiedRow, 0, len(rows))
	for _, r := range rows {
		entry := lookup[r.ID]
		labeled := ClassifiedRow{Row: r, Timestamp: entry.timestamp}
		if level == LevelBoth || level == LevelSection {
			labeled.Section = entry.section
		}
		if level == LevelBoth || level == LevelSubsection {
			labeled.Subsection = entry.subsection
		}
		out = append(out, labeled)
	}
	return out, nil
}
