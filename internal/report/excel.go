// Package report exports the classified block table as a styled Excel
// workbook for manual review, coloring rows by dialogue group.
package report

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

const sheetName = "Blocks"

var header = []string{
	"interview_id", "speaker_code", "start_time", "end_time",
	"duration", "original_text", "subsection", "group_id",
}

// WriteExcel writes one sheet with a header row and one row per block,
// filling each row's background with its group's color.
func WriteExcel(path string, rows []corpus.MupeTalkRow, colors map[int]string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	// One style per distinct color, created lazily.
	styles := make(map[string]int)
	styleFor := func(color string) (int, error) {
		if id, ok := styles[color]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return 0, err
		}
		styles[color] = id
		return id, nil
	}

	for i, row := range rows {
		rowNum := i + 2
		values := []interface{}{
			row.InterviewID, row.SpeakerCode, row.StartTime, row.EndTime,
			row.Duration, row.OriginalText, row.Subsection, row.GroupID,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}

		color, ok := colors[row.GroupID]
		if !ok {
			continue
		}
		styleID, err := styleFor(color)
		if err != nil {
			return fmt.Errorf("creating style for color %s: %w", color, err)
		}
		first := "A" + strconv.Itoa(rowNum)
		last, err := excelize.CoordinatesToCellName(len(header), rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, first, last, styleID); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
