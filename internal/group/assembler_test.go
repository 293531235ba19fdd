package group

import (
	"reflect"
	"testing"

	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

func row(speaker, subsection string, start float64) corpus.MupeTalkRow {
	return corpus.MupeTalkRow{
		InterviewID: "7",
		SpeakerCode: speaker,
		StartTime:   start,
		EndTime:     start + 2,
		Subsection:  subsection,
	}
}

func TestForwardFillLabels(t *testing.T) {
	rows := []corpus.MupeTalkRow{
		row("hv229", "INTRODUÇÃO", 0),
		row("p001", "", 2),
		row("p001", "", 4),
		row("hv229", "INFÂNCIA", 6),
		row("p001", "", 8),
	}
	filled := ForwardFillLabels(rows)

	want := []string{"INTRODUÇÃO", "INTRODUÇÃO", "INTRODUÇÃO", "INFÂNCIA", "INFÂNCIA"}
	for i, w := range want {
		if filled[i].Subsection != w {
			t.Errorf("row %d subsection = %q, want %q", i, filled[i].Subsection, w)
		}
	}
	if rows[1].Subsection != "" {
		t.Error("ForwardFillLabels() mutated its input")
	}
}

func TestAssemble(t *testing.T) {
	rows := []corpus.MupeTalkRow{
		row("hv229", "INTRODUÇÃO", 0),
		row("p001", "INTRODUÇÃO", 2),
		row("hv229", "INFÂNCIA", 4),
		row("p001", "INFÂNCIA", 6),
	}
	assign := func(i int, r corpus.MupeTalkRow) (int, bool) {
		if i < 2 {
			return 1, true
		}
		return 2, true
	}

	groups, err := Assemble(rows, assign)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("Assemble() returned %d groups, want 2", len(groups))
	}
	if groups[0].ID != 1 || len(groups[0].Rows) != 2 {
		t.Errorf("group[0] = id %d with %d rows", groups[0].ID, len(groups[0].Rows))
	}
	for _, g := range groups {
		for _, r := range g.Rows {
			if r.GroupID != g.ID {
				t.Errorf("row in group %d carries group_id %d", g.ID, r.GroupID)
			}
		}
	}
}

func TestAssembleDiscardsUnassigned(t *testing.T) {
	rows := []corpus.MupeTalkRow{
		row("hv229", "INTRODUÇÃO", 0),
		row("p001", "INTRODUÇÃO", 2),
		row("hv229", "INFÂNCIA", 4),
	}
	assign := func(i int, r corpus.MupeTalkRow) (int, bool) {
		if i == 1 {
			return 0, false
		}
		return 3, true
	}

	groups, err := Assemble(rows, assign)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(groups) != 1 || len(groups[0].Rows) != 2 {
		t.Fatalf("groups = %+v, want one group of 2 rows", groups)
	}
}

func TestAssembleRejectsInterleavedGroup(t *testing.T) {
	rows := []corpus.MupeTalkRow{
		row("hv229", "INTRODUÇÃO", 0),
		row("p001", "INTRODUÇÃO", 2),
		row("hv229", "INFÂNCIA", 4),
	}
	assign := func(i int, r corpus.MupeTalkRow) (int, bool) {
		// 1, 2, 1 — group 1 reappears after group 2 started.
		if i == 1 {
			return 2, true
		}
		return 1, true
	}

	if _, err := Assemble(rows, assign); err == nil {
		t.Error("Assemble() expected error for interleaved group")
	}
}

func TestAssembleRejectsTimeDisorder(t *testing.T) {
	rows := []corpus.MupeTalkRow{
		row("hv229", "INTRODUÇÃO", 4),
		row("p001", "INTRODUÇÃO", 2),
	}
	assign := func(i int, r corpus.MupeTalkRow) (int, bool) { return 1, true }

	if _, err := Assemble(rows, assign); err == nil {
		t.Error("Assemble() expected error for time-disordered group")
	}
}

func TestColorMapping(t *testing.T) {
	groups := []DialogueGroup{{ID: 3}, {ID: 1}, {ID: 2}}
	palette := []string{"#AAAAAA", "#BBBBBB"}

	colors := ColorMapping(groups, palette)
	want := map[int]string{
		1: "#AAAAAA",
		2: "#BBBBBB",
		3: "#AAAAAA", // palette cycles
	}
	if !reflect.DeepEqual(colors, want) {
		t.Errorf("ColorMapping() = %v, want %v", colors, want)
	}
}
