// Package transcribe runs speech recognition over extracted audio and
// exposes the word-level timings the caption builder consumes.
package transcribe

import (
	"context"
	"strings"

	"github.com/reelsmith/reelsmith/internal/job"
)

// Engine produces a transcript for a mono 16kHz WAV file. workDir receives
// any intermediate artifacts and belongs to the calling job's workspace.
type Engine interface {
	Transcribe(ctx context.Context, wavPath, workDir string) (Transcript, error)
}

// Transcript is the engine's output: full text plus per-segment word timings.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}

// FullText returns the transcript text, falling back to joined segment text
// when the engine left the top-level field empty.
func (t Transcript) FullText() string {
	if s := strings.TrimSpace(t.Text); s != "" {
		return s
	}
	parts := make([]string, 0, len(t.Segments))
	for _, seg := range t.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Words flattens segments into one ordered word sequence, dropping entries
// with empty text or inverted timing.
func (t Transcript) Words() []job.Word {
	var out []job.Word
	for _, seg := range t.Segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.Start > w.End {
				continue
			}
			out = append(out, job.Word{Text: text, Start: w.Start, End: w.End})
		}
	}
	return out
}
