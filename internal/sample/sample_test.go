package sample

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	gaudio "github.com/go-audio/audio"

	"github.com/antonio-moreira/mupetalk/internal/audio"
	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

type fakeResolver map[string][]byte

func (f fakeResolver) Resolve(_ context.Context, paths []string) (map[string][]byte, []string, error) {
	found := make(map[string][]byte)
	var missing []string
	for _, p := range paths {
		if b, ok := f[p]; ok {
			found[p] = b
		} else {
			missing = append(missing, p)
		}
	}
	return found, missing, nil
}

func wavPayload(t *testing.T, sampleRate, n int) []byte {
	t.Helper()
	seg := &audio.Segment{
		Buffer: &gaudio.IntBuffer{
			Format:         &gaudio.Format{NumChannels: 1, SampleRate: sampleRate},
			Data:           make([]int, n),
			SourceBitDepth: 16,
		},
		BitDepth: 16,
	}
	path := filepath.Join(t.TempDir(), "seg.wav")
	if err := audio.WriteWAV(path, seg); err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func tableRows() []corpus.MupeTalkRow {
	return []corpus.MupeTalkRow{
		{InterviewID: "7", SpeakerCode: "hv229", StartTime: 0, EndTime: 2, GroupID: 1,
			FilePaths: []string{"a.wav"}, FileIDs: []int{0}},
		{InterviewID: "7", SpeakerCode: "p001", StartTime: 2, EndTime: 4, GroupID: 1,
			FilePaths: []string{"b.wav"}, FileIDs: []int{1}},
		{InterviewID: "7", SpeakerCode: "hv229", StartTime: 4, EndTime: 6, GroupID: 2,
			FilePaths: []string{"c.wav"}, FileIDs: []int{2}},
		{InterviewID: "9", SpeakerCode: "hv229", StartTime: 0, EndTime: 2, GroupID: 1,
			FilePaths: []string{"d.wav"}, FileIDs: []int{0}},
	}
}

func TestSpeakerDialogues(t *testing.T) {
	dialogues, err := SpeakerDialogues(tableRows(), "hv229", 2)
	if err != nil {
		t.Fatalf("SpeakerDialogues() error = %v", err)
	}
	if len(dialogues) != 2 {
		t.Fatalf("got %d dialogues, want 2", len(dialogues))
	}
	if dialogues[0].InterviewID != "7" || dialogues[1].InterviewID != "9" {
		t.Errorf("interview ids = %s, %s", dialogues[0].InterviewID, dialogues[1].InterviewID)
	}
	if len(dialogues[0].Rows) != 3 {
		t.Errorf("interview 7 has %d rows, want 3", len(dialogues[0].Rows))
	}
	if len(dialogues[0].Groups) != 2 {
		t.Errorf("interview 7 has %d groups, want 2", len(dialogues[0].Groups))
	}
}

func TestSpeakerDialoguesOverRequest(t *testing.T) {
	_, err := SpeakerDialogues(tableRows(), "p001", 3)
	if err == nil {
		t.Fatal("SpeakerDialogues() expected error when requesting more than available")
	}
	want := "speaker p001 participates in 1 dialogues, 3 requested"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestAssemble(t *testing.T) {
	resolver := fakeResolver{
		"a.wav": wavPayload(t, 16000, 100),
		"b.wav": wavPayload(t, 16000, 50),
		"c.wav": wavPayload(t, 16000, 75),
		"d.wav": wavPayload(t, 16000, 25),
	}
	dialogues, err := SpeakerDialogues(tableRows(), "hv229", 2)
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	asm := NewAssembler(resolver, outDir, nil)
	written, err := asm.Assemble(context.Background(), dialogues)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	// 2 interviews + 2 groups + 1 group.
	if len(written) != 5 {
		t.Fatalf("wrote %d units, want 5: %v", len(written), written)
	}
	if written[0].GroupID != -1 || written[0].UnitIndex != 0 {
		t.Errorf("full unit artifact = %+v", written[0])
	}
	if written[1].GroupID != 1 || written[1].InterviewID != "7" {
		t.Errorf("group unit artifact = %+v", written[1])
	}

	for _, name := range []string{
		"sample_0.wav", "sample_0.json",
		"sample_0_group_1.wav", "sample_0_group_1.json",
		"sample_0_group_2.wav",
		"sample_1.wav", "sample_1.json",
		"sample_1_group_1.wav",
	} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}

	full, err := os.ReadFile(filepath.Join(outDir, "sample_0.wav"))
	if err != nil {
		t.Fatal(err)
	}
	seg, err := audio.Decode(full)
	if err != nil {
		t.Fatalf("decoding written sample: %v", err)
	}
	if len(seg.Buffer.Data) != 225 {
		t.Errorf("sample_0.wav has %d samples, want 225", len(seg.Buffer.Data))
	}

	var meta unitMetadata
	b, err := os.ReadFile(filepath.Join(outDir, "sample_0.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		t.Fatalf("parsing metadata: %v", err)
	}
	if meta.InterviewID != "7" || len(meta.Turns) != 3 {
		t.Errorf("metadata = %+v, want interview 7 with 3 turns", meta)
	}
	if meta.Turns[1].SpeakerCode != "p001" {
		t.Errorf("turn 1 speaker = %q, want p001", meta.Turns[1].SpeakerCode)
	}
}

func TestAssemblePartialUnitOnMissingAudio(t *testing.T) {
	resolver := fakeResolver{
		"a.wav": wavPayload(t, 16000, 100),
		// b.wav missing, c.wav missing entirely disables group 2.
	}
	dialogues, err := SpeakerDialogues(tableRows()[:3], "hv229", 1)
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	asm := NewAssembler(resolver, outDir, nil)
	written, err := asm.Assemble(context.Background(), dialogues)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	// Full interview and group 1 are written partially; group 2 resolved
	// no audio at all and is skipped.
	if len(written) != 2 {
		t.Fatalf("wrote %d units, want 2: %v", len(written), written)
	}

	full, err := os.ReadFile(filepath.Join(outDir, "sample_0.wav"))
	if err != nil {
		t.Fatal(err)
	}
	seg, err := audio.Decode(full)
	if err != nil {
		t.Fatal(err)
	}
	if len(seg.Buffer.Data) != 100 {
		t.Errorf("partial sample has %d samples, want 100", len(seg.Buffer.Data))
	}
}

func TestAssembleSampleRateMismatchSkipsUnitOnly(t *testing.T) {
	resolver := fakeResolver{
		"a.wav": wavPayload(t, 16000, 100),
		"b.wav": wavPayload(t, 22050, 100),
		"c.wav": wavPayload(t, 16000, 75),
		"d.wav": wavPayload(t, 16000, 25),
	}
	dialogues, err := SpeakerDialogues(tableRows(), "hv229", 2)
	if err != nil {
		t.Fatal(err)
	}

	outDir := t.TempDir()
	asm := NewAssembler(resolver, outDir, nil)
	written, err := asm.Assemble(context.Background(), dialogues)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}

	// Interview 7's full unit and group 1 mix 16000 and 22050 Hz and are
	// dropped; group 2 and interview 9 survive.
	if _, statErr := os.Stat(filepath.Join(outDir, "sample_0.wav")); statErr == nil {
		t.Error("sample_0.wav written despite sample rate mismatch")
	}
	if len(written) != 3 {
		t.Errorf("wrote %d units, want 3: %v", len(written), written)
	}
}
