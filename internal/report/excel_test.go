package report

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

func TestWriteExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.xlsx")
	rows := []corpus.MupeTalkRow{
		{InterviewID: "7", SpeakerCode: "hv229", StartTime: 0, EndTime: 5,
			Duration: 5, OriginalText: "Qual o seu nome?", Subsection: "INTRODUÇÃO", GroupID: 1},
		{InterviewID: "7", SpeakerCode: "p001", StartTime: 5, EndTime: 12,
			Duration: 7, OriginalText: "Maria.", Subsection: "INTRODUÇÃO", GroupID: 1},
		{InterviewID: "7", SpeakerCode: "hv229", StartTime: 12, EndTime: 15,
			Duration: 3, OriginalText: "Onde nasceu?", Subsection: "INFÂNCIA", GroupID: 2},
	}
	colors := map[int]string{1: "#FFB3BA", 2: "#BAFFC9"}

	if err := WriteExcel(path, rows, colors); err != nil {
		t.Fatalf("WriteExcel() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("workbook has %d rows, want 4", len(got))
	}
	if got[0][0] != "interview_id" || got[0][7] != "group_id" {
		t.Errorf("header = %v", got[0])
	}
	if got[1][5] != "Qual o seu nome?" {
		t.Errorf("row 1 text = %q", got[1][5])
	}
	if got[3][6] != "INFÂNCIA" {
		t.Errorf("row 3 subsection = %q", got[3][6])
	}

	// Row fills must differ across groups and match within a group.
	s1, err := f.GetCellStyle(sheetName, "A2")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := f.GetCellStyle(sheetName, "A3")
	if err != nil {
		t.Fatal(err)
	}
	s3, err := f.GetCellStyle(sheetName, "A4")
	if err != nil {
		t.Fatal(err)
	}
	if s1 != s2 {
		t.Errorf("rows of group 1 have different styles: %d vs %d", s1, s2)
	}
	if s1 == s3 {
		t.Errorf("groups 1 and 2 share style %d", s1)
	}
}

func TestWriteExcelNoColorMapping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.xlsx")
	rows := []corpus.MupeTalkRow{
		{InterviewID: "7", SpeakerCode: "hv229", GroupID: 9},
	}

	if err := WriteExcel(path, rows, nil); err != nil {
		t.Fatalf("WriteExcel() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	got, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("workbook has %d rows, want 2", len(got))
	}
}
