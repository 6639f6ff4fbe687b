// Package job defines the render request model and the word/chunk timing
// data the pipeline stages exchange.
package job

import "time"

// Word is one spoken word with its transcript timing, in seconds.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Chunk is a small group of consecutive words rendered as one subtitle event.
type Chunk struct {
	Text  string
	Start float64
	End   float64
}

// Settings carries the tunables a caller may override per request. Absent
// fields take the documented defaults (see DefaultSettings).
type Settings struct {
	PauseTrim    time.Duration // silence-gap threshold for trimming
	LUFS         float64       // integrated loudness target
	PeakDB       float64       // true-peak ceiling
	HookStart    float64       // overlay window start, seconds
	HookDuration float64       // overlay window length, seconds
}

// DefaultSettings returns the baseline tunables applied when a request omits
// them.
func DefaultSettings() Settings {
	return Settings{
		PauseTrim:    350 * time.Millisecond,
		LUFS:         -14,
		PeakDB:       -1,
		HookStart:    0.3,
		HookDuration: 2.5,
	}
}

// Request is one immutable render job.
type Request struct {
	VideoID  string
	RawURL   string
	Captions bool
	Settings Settings
}

// Status values reported to the downstream webhook.
const (
	StatusReady  = "READY"
	StatusFailed = "FAILED"
)
