package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = `audio_id,speaker_code,start_time,end_time,duration,original_text,file_path
229,MA_HV229,0.0,5.2,5.2,"bom dia",pc_ma_hv229_0_seg.wav
229,ENTR1,5.2,7.0,1.8,"como vai",pc_ma_hv229_1_seg.wav
230,MA_HV230,0.0,3.0,3.0,"oi",pc_ma_hv230_0_seg.wav
`

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "train.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	table, err := LoadCSV(writeTempCSV(t, sampleCSV), "audio_id")
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}
	if len(table.Utterances) != 3 {
		t.Fatalf("got %d utterances, want 3", len(table.Utterances))
	}
	u := table.Utterances[0]
	if u.InterviewID != "229" || u.SpeakerCode != "MA_HV229" {
		t.Errorf("first row = %+v", u)
	}
	if u.EndTime != 5.2 || u.Duration != 5.2 {
		t.Errorf("times = %v/%v", u.EndTime, u.Duration)
	}
	if u.OriginalText != "bom dia" {
		t.Errorf("text = %q", u.OriginalText)
	}
}

func TestLoadCSVColumnOrderIndependent(t *testing.T) {
	reordered := `speaker_code,file_path,audio_id,original_text,duration,end_time,start_time
SPK1,p.wav,1,hello,2.0,2.0,0.0
`
	table, err := LoadCSV(writeTempCSV(t, reordered), "audio_id")
	if err != nil {
		t.Fatalf("LoadCSV error: %v", err)
	}
	u := table.Utterances[0]
	if u.InterviewID != "1" || u.SpeakerCode != "SPK1" || u.EndTime != 2.0 {
		t.Errorf("row = %+v", u)
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	bad := "audio_id,speaker_code,start_time\n1,S,0\n"
	_, err := LoadCSV(writeTempCSV(t, bad), "audio_id")
	if err == nil || !strings.Contains(err.Error(), "missing column") {
		t.Errorf("expected missing-column error, got %v", err)
	}
}

func TestForInterview(t *testing.T) {
	table, err := LoadCSV(writeTempCSV(t, sampleCSV), "audio_id")
	if err != nil {
		t.Fatal(err)
	}
	rows := table.ForInterview("229")
	if len(rows) != 2 {
		t.Fatalf("got %d rows for 229, want 2", len(rows))
	}
	// Returned slice is a copy; mutating it must not touch the table.
	rows[0].SpeakerCode = "CHANGED"
	if table.Utterances[0].SpeakerCode == "CHANGED" {
		t.Error("ForInterview aliases the table backing array")
	}
}

func TestInterviewIDs(t *testing.T) {
	table, err := LoadCSV(writeTempCSV(t, sampleCSV), "audio_id")
	if err != nil {
		t.Fatal(err)
	}
	ids := table.InterviewIDs()
	if len(ids) != 2 || ids[0] != "229" || ids[1] != "230" {
		t.Errorf("InterviewIDs = %v", ids)
	}
}
