// Package sample assembles per-dialogue audio and metadata artifacts from
// the MupeTalk table and an audio blob resolver.
package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/antonio-moreira/mupetalk/internal/audio"
	"github.com/antonio-moreira/mupetalk/internal/blobstore"
	"github.com/antonio-moreira/mupetalk/internal/corpus"
)

// Dialogue is one sampling unit: a full interview's ordered block rows,
// plus its per-group sub-units.
type Dialogue struct {
	InterviewID string
	Rows        []corpus.MupeTalkRow
	Groups      []GroupUnit
}

// GroupUnit is one dialogue group inside an interview.
type GroupUnit struct {
	GroupID int
	Rows    []corpus.MupeTalkRow
}

// MissingAudioError reports file paths the blob store could not resolve
// for one unit. It is soft: the unit is still written with the audio that
// was found.
type MissingAudioError struct {
	InterviewID string
	Missing     []string
}

func (e *MissingAudioError) Error() string {
	return fmt.Sprintf("interview %s: %d audio files not found in blob store: %s",
		e.InterviewID, len(e.Missing), strings.Join(e.Missing, ", "))
}

// SpeakerDialogues selects the first n distinct interviews the speaker
// participates in, each with its group sub-units rebuilt from the stored
// group ids. Requesting more interviews than the speaker has is fatal and
// the error names the actual available count.
func SpeakerDialogues(rows []corpus.MupeTalkRow, speakerCode string, n int) ([]Dialogue, error) {
	participates := make(map[string]bool)
	var order []string
	for _, r := range rows {
		if r.SpeakerCode != speakerCode {
			continue
		}
		if !participates[r.InterviewID] {
			participates[r.InterviewID] = true
			order = append(order, r.InterviewID)
		}
	}
	if n > len(order) {
		return nil, fmt.Errorf("speaker %s participates in %d dialogues, %d requested",
			speakerCode, len(order), n)
	}

	dialogues := make([]Dialogue, 0, n)
	for _, id := range order[:n] {
		var d Dialogue
		d.InterviewID = id
		for _, r := range rows {
			if r.InterviewID == id {
				d.Rows = append(d.Rows, r)
			}
		}
		d.Groups = groupUnits(d.Rows)
		dialogues = append(dialogues, d)
	}
	return dialogues, nil
}

// groupUnits splits an interview's ordered rows on group-id change. Rows
// are already contiguous per group by construction of the table.
func groupUnits(rows []corpus.MupeTalkRow) []GroupUnit {
	var units []GroupUnit
	for _, r := range rows {
		if n := len(units); n == 0 || units[n-1].GroupID != r.GroupID {
			units = append(units, GroupUnit{GroupID: r.GroupID})
		}
		last := &units[len(units)-1]
		last.Rows = append(last.Rows, r)
	}
	return units
}

// Artifact is one written sample pair. GroupID is -1 for a full-interview
// unit.
type Artifact struct {
	InterviewID  string
	UnitIndex    int
	GroupID      int
	AudioPath    string
	MetadataPath string
}

// Assembler writes one WAV plus one JSON metadata artifact per unit into
// outputDir, using deterministic names so reruns overwrite.
type Assembler struct {
	resolver  blobstore.Resolver
	outputDir string
	logger    *zap.Logger
}

func NewAssembler(resolver blobstore.Resolver, outputDir string, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembler{resolver: resolver, outputDir: outputDir, logger: logger}
}

// Assemble processes every dialogue and each of its groups as independent
// units. Missing audio is soft: the unit is written from whatever
// resolved, with the full missing list logged. Sample-rate mismatches and
// decode failures are fatal for that unit only; siblings keep going.
func (a *Assembler) Assemble(ctx context.Context, dialogues []Dialogue) ([]Artifact, error) {
	if err := os.MkdirAll(a.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var written []Artifact
	for idx, d := range dialogues {
		base := fmt.Sprintf("sample_%d", idx)
		if art, err := a.assembleUnit(ctx, d.InterviewID, base, d.Rows); err != nil {
			a.logger.Error("skipping unit",
				zap.String("interview_id", d.InterviewID),
				zap.String("unit", base),
				zap.Error(err),
			)
		} else {
			art.UnitIndex = idx
			art.GroupID = -1
			written = append(written, art)
		}

		for _, g := range d.Groups {
			name := fmt.Sprintf("sample_%d_group_%d", idx, g.GroupID)
			if art, err := a.assembleUnit(ctx, d.InterviewID, name, g.Rows); err != nil {
				a.logger.Error("skipping unit",
					zap.String("interview_id", d.InterviewID),
					zap.String("unit", name),
					zap.Error(err),
				)
			} else {
				art.UnitIndex = idx
				art.GroupID = g.GroupID
				written = append(written, art)
			}
		}
	}
	return written, nil
}

func (a *Assembler) assembleUnit(ctx context.Context, interviewID, name string, rows []corpus.MupeTalkRow) (Artifact, error) {
	var paths []string
	for _, r := range rows {
		paths = append(paths, r.FilePaths...)
	}
	if len(paths) == 0 {
		return Artifact{}, fmt.Errorf("unit has no audio references")
	}

	found, missing, err := a.resolver.Resolve(ctx, paths)
	if err != nil {
		return Artifact{}, fmt.Errorf("resolving audio: %w", err)
	}
	if len(missing) > 0 {
		softErr := &MissingAudioError{InterviewID: interviewID, Missing: missing}
		a.logger.Warn("partial unit, continuing with resolved audio",
			zap.String("unit", name),
			zap.Error(softErr),
		)
	}

	var segments []*audio.Segment
	for _, p := range paths {
		payload, ok := found[p]
		if !ok {
			continue
		}
		seg, err := audio.Decode(payload)
		if err != nil {
			return Artifact{}, fmt.Errorf("decoding %s: %w", p, err)
		}
		segments = append(segments, seg)
	}
	if len(segments) == 0 {
		return Artifact{}, fmt.Errorf("no audio resolved for unit")
	}

	joined, err := audio.Concat(segments)
	if err != nil {
		return Artifact{}, err
	}

	wavPath := filepath.Join(a.outputDir, name+".wav")
	metaPath := filepath.Join(a.outputDir, name+".json")
	if err := audio.WriteWAV(wavPath, joined); err != nil {
		return Artifact{}, err
	}
	if err := a.writeMetadata(metaPath, interviewID, rows); err != nil {
		return Artifact{}, err
	}
	return Artifact{InterviewID: interviewID, AudioPath: wavPath, MetadataPath: metaPath}, nil
}

type turnRecord struct {
	SpeakerCode  string   `json:"speaker_code"`
	StartTime    float64  `json:"start_time"`
	EndTime      float64  `json:"end_time"`
	Duration     float64  `json:"duration"`
	OriginalText string   `json:"original_text"`
	Subsection   string   `json:"subsection"`
	GroupID      int      `json:"group_id"`
	FilePaths    []string `json:"file_path"`
}

type unitMetadata struct {
	InterviewID string       `json:"interview_id"`
	Turns       []turnRecord `json:"turns"`
}

func (a *Assembler) writeMetadata(path, interviewID string, rows []corpus.MupeTalkRow) error {
	meta := unitMetadata{InterviewID: interviewID}
	for _, r := range rows {
		meta.Turns = append(meta.Turns, turnRecord{
			SpeakerCode:  r.SpeakerCode,
			StartTime:    r.StartTime,
			EndTime:      r.EndTime,
			Duration:     r.Duration,
			OriginalText: r.OriginalText,
			Subsection:   r.Subsection,
			GroupID:      r.GroupID,
			FilePaths:    r.FilePaths,
		})
	}
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
