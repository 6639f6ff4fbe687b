package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// maxStderrTail bounds the diagnostic output kept from a failed invocation.
const maxStderrTail = 8 * 1024

// runner abstracts process execution so adapter tests can record argument
// lists without spawning binaries.
type runner interface {
	run(ctx context.Context, name string, args ...string) error
}

type execRunner struct{}

func (execRunner) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w\n%s", err, stderrTail(stderr.Bytes()))
	}
	return nil
}

func stderrTail(b []byte) string {
	if len(b) > maxStderrTail {
		b = b[len(b)-maxStderrTail:]
	}
	return string(bytes.TrimSpace(b))
}
