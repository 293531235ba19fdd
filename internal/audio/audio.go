// Package audio decodes WAV payloads from the blob store and concatenates
// them into playable per-unit artifacts.
package audio

import (
	"bytes"
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRateMismatchError reports two segments of one unit that disagree
// in sample rate. Resampling is out of scope, so the unit is abandoned.
type SampleRateMismatchError struct {
	Want int
	Got  int
}

func (e *SampleRateMismatchError) Error() string {
	return fmt.Sprintf("sample rate mismatch: %d Hz vs %d Hz", e.Want, e.Got)
}

// Segment is one decoded PCM payload.
type Segment struct {
	Buffer   *gaudio.IntBuffer
	BitDepth int
}

// Decode parses a WAV byte payload into PCM samples.
func Decode(b []byte) (*Segment, error) {
	dec := wav.NewDecoder(bytes.NewReader(b))
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav payload: %w", err)
	}
	if dec.Err() != nil {
		return nil, fmt.Errorf("decoding wav payload: %w", dec.Err())
	}
	return &Segment{Buffer: buf, BitDepth: int(dec.BitDepth)}, nil
}

// Concat joins segments in the given order into a single PCM buffer. All
// segments must share one sample rate and channel count.
func Concat(segments []*Segment) (*Segment, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments to concatenate")
	}

	first := segments[0]
	total := 0
	for _, s := range segments {
		if s.Buffer.Format.SampleRate != first.Buffer.Format.SampleRate {
			return nil, &SampleRateMismatchError{
				Want: first.Buffer.Format.SampleRate,
				Got:  s.Buffer.Format.SampleRate,
			}
		}
		if s.Buffer.Format.NumChannels != first.Buffer.Format.NumChannels {
			return nil, fmt.Errorf("channel count mismatch: %d vs %d",
				first.Buffer.Format.NumChannels, s.Buffer.Format.NumChannels)
		}
		total += len(s.Buffer.Data)
	}

	data := make([]int, 0, total)
	for _, s := range segments {
		data = append(data, s.Buffer.Data...)
	}
	return &Segment{
		Buffer: &gaudio.IntBuffer{
			Format: &gaudio.Format{
				NumChannels: first.Buffer.Format.NumChannels,
				SampleRate:  first.Buffer.Format.SampleRate,
			},
			Data:           data,
			SourceBitDepth: first.Buffer.SourceBitDepth,
		},
		BitDepth: first.BitDepth,
	}, nil
}

// WriteWAV persists a segment as a WAV file, overwriting any previous one.
func WriteWAV(path string, seg *Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	enc := wav.NewEncoder(f,
		seg.Buffer.Format.SampleRate,
		seg.BitDepth,
		seg.Buffer.Format.NumChannels,
		1,
	)
	if err := enc.Write(seg.Buffer); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing %s: %w", path, err)
	}
	return f.Close()
}
