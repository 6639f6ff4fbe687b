package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const maxStderrTail = 8 * 1024

// WhisperCLI shells out to a whisper.cpp-style binary that writes word-level
// timings as JSON next to the audio file.
type WhisperCLI struct {
	bin     string
	model   string
	timeout time.Duration
}

func NewWhisperCLI(bin, model string, timeout time.Duration) *WhisperCLI {
	if bin == "" {
		bin = "whisper-cli"
	}
	return &WhisperCLI{bin: bin, model: model, timeout: timeout}
}

func (w *WhisperCLI) Transcribe(ctx context.Context, wavPath, workDir string) (Transcript, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	outPrefix := filepath.Join(workDir, "whisper")
	cmd := exec.CommandContext(ctx, w.bin,
		"-m", w.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := stderr.Bytes()
		if len(tail) > maxStderrTail {
			tail = tail[len(tail)-maxStderrTail:]
		}
		return Transcript{}, fmt.Errorf("whisper: %w\n%s", err, bytes.TrimSpace(tail))
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return Transcript{}, fmt.Errorf("whisper output: %w", err)
	}

	var tr Transcript
	if err := json.Unmarshal(data, &tr); err != nil {
		return Transcript{}, fmt.Errorf("parse whisper output: %w", err)
	}
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
	}
	return tr, nil
}
