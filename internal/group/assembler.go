// Package group builds the final dialogue-group partitioning from
// classified block rows and derives the presentation color mapping.
package group

import (
	"fmt"
	"sort"

	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

// AssignFunc maps a row (by position and content) to a group id. ok=false
// means the row belongs to no group and is discarded, never merged into a
// neighbor.
type AssignFunc func(i int, row corpus.MupeTalkRow) (groupID int, ok bool)

// DialogueGroup is one contiguous, time-ordered run of block rows sharing
// a group id. Groups are the sampling units for audio extraction.
type DialogueGroup struct {
	ID   int
	Rows []corpus.MupeTalkRow
}

// ForwardFillLabels returns a copy of rows where every empty subsection
// label is replaced by the last non-empty one seen so far. Interviewee
// blocks never get a label from the segmentation step directly, so they
// inherit the label of the question that precedes them.
func ForwardFillLabels(rows []corpus.MupeTalkRow) []corpus.MupeTalkRow {
	out := make([]corpus.MupeTalkRow, len(rows))
	copy(out, rows)
	last := ""
	for i := range out {
		if out[i].Subsection == "" {
			out[i].Subsection = last
		} else {
			last = out[i].Subsection
		}
	}
	return out
}

// Assemble partitions rows into dialogue groups using the caller-supplied
// assignment. Rows without an assignment are dropped. Each group must be a
// non-empty contiguous run in row order with non-decreasing start times;
// a group id that reappears after another group started is an error, since
// it would silently interleave dialogue units. Groups are returned in
// ascending id order with the assigned id stamped onto every member row.
func Assemble(rows []corpus.MupeTalkRow, assign AssignFunc) ([]DialogueGroup, error) {
	byID := make(map[int]*DialogueGroup)
	var order []int
	closed := make(map[int]bool)

	current := 0
	haveCurrent := false
	for i, row := range rows {
		id, ok := assign(i, row)
		if !ok {
			continue
		}
		if haveCurrent && id != current {
			closed[current] = true
		}
		if closed[id] {
			return nil, fmt.Errorf("group %d is not contiguous: reappears at row %d", id, i)
		}
		current, haveCurrent = id, true

		g, exists := byID[id]
		if !exists {
			g = &DialogueGroup{ID: id}
			byID[id] = g
			order = append(order, id)
		}
		if n := len(g.Rows); n > 0 && row.StartTime < g.Rows[n-1].StartTime {
			return nil, fmt.Errorf("group %d is not time ordered at row %d", id, i)
		}
		row.GroupID = id
		g.Rows = append(g.Rows, row)
	}

	sort.Ints(order)
	groups := make([]DialogueGroup, 0, len(order))
	for _, id := range order {
		groups = append(groups, *byID[id])
	}
	return groups, nil
}

// ColorMapping assigns a display color to each group, enumerating distinct
// ids in ascending order and cycling the palette when it runs out.
func ColorMapping(groups []DialogueGroup, palette []string) map[int]string {
	ids := make([]int, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	sort.Ints(ids)

	colors := make(map[int]string, len(ids))
	for i, id := range ids {
		if _, ok := colors[id]; ok {
			continue
		}
		colors[id] = palette[i%len(palette)]
	}
	return colors
}
