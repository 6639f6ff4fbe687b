package transcribe

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var (
	sharedOnce   sync.Once
	sharedEngine Engine
	sharedErr    error
)

// Shared returns the process-wide transcription engine, constructing it on
// first use. Concurrent first calls share a single construction; the model
// path is validated exactly once.
func Shared(bin, model string, timeout time.Duration) (Engine, error) {
	sharedOnce.Do(func() {
		if model == "" {
			sharedErr = fmt.Errorf("transcription model path is not configured")
			return
		}
		if _, err := os.Stat(model); err != nil {
			sharedErr = fmt.Errorf("transcription model: %w", err)
			return
		}
		sharedEngine = NewWhisperCLI(bin, model, timeout)
	})
	return sharedEngine, sharedErr
}
