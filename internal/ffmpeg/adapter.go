// Package ffmpeg drives the command-line transcoder for every re-encoding
// stage of the render pipeline and owns filter-graph construction.
package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// Adapter invokes the ffmpeg binary. Every call is bounded by the configured
// stage timeout; exceeding it is a stage failure.
type Adapter struct {
	bin     string
	timeout time.Duration
	logger  *slog.Logger
	exec    runner
}

func NewAdapter(bin string, stageTimeout time.Duration, logger *slog.Logger) *Adapter {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &Adapter{bin: bin, timeout: stageTimeout, logger: logger, exec: execRunner{}}
}

// ExtractAudioMono16k pulls the audio track as mono 16kHz WAV, the input
// format the transcription engine expects.
func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	return a.run(ctx, "extract audio",
		"-y", "-i", in,
		"-vn", "-ac", "1", "-ar", "16000",
		"-f", "wav",
		outWav,
	)
}

// TightenSilence shortens leading and trailing silence above threshold using
// peak detection, copying the video stream untouched.
func (a *Adapter) TightenSilence(ctx context.Context, in, out string, threshold time.Duration) error {
	sec := fmtSeconds(threshold.Seconds())
	af := "silenceremove=start_periods=1:start_silence=" + sec +
		":stop_periods=1:stop_silence=" + sec + ":detection=peak"
	return a.run(ctx, "tighten silence",
		"-y", "-i", in,
		"-af", af,
		"-c:v", "copy",
		out,
	)
}

// BurnFilters applies the composed filter graph, re-encoding video with the
// fixed quality preset and audio at a fixed bitrate.
func (a *Adapter) BurnFilters(ctx context.Context, in, out, vf string) error {
	return a.run(ctx, "burn filters",
		"-y", "-i", in,
		"-vf", vf,
		"-c:v", "libx264", "-preset", "veryfast", "-crf", "18",
		"-c:a", "aac", "-b:a", "160k",
		out,
	)
}

// NormalizeLoudness adjusts audio to the target integrated loudness and true
// peak. The burn stage already finalized the video stream, so it is copied.
func (a *Adapter) NormalizeLoudness(ctx context.Context, in, out string, lufs, peakDB float64) error {
	af := "loudnorm=I=" + fmtLoudness(lufs) + ":TP=" + fmtLoudness(peakDB) + ":LRA=11"
	return a.run(ctx, "normalize loudness",
		"-y", "-i", in,
		"-af", af,
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "160k",
		out,
	)
}

func (a *Adapter) run(ctx context.Context, op string, args ...string) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	err := a.exec.run(ctx, a.bin, args...)
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w", op, err)
	}
	if a.logger != nil {
		a.logger.Debug("ffmpeg invocation finished",
			"op", op,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return nil
}

func fmtLoudness(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
