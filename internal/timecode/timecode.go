// Package timecode formats and parses the H:MM:SS.CC clock strings used in
// subtitle documents. Precision is one centisecond.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var clockRe = regexp.MustCompile(`^(\d+):([0-5]\d):([0-5]\d)\.(\d{2})$`)

// Format renders a fractional-second value as H:MM:SS.CC. Negative inputs
// clamp to zero. Rounding to the nearest centisecond carries into the
// seconds, minutes, and hours fields, so 59.996 becomes 0:01:00.00.
func Format(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	cs := int64(math.Round(sec * 100))

	h := cs / 360000
	cs -= h * 360000
	m := cs / 6000
	cs -= m * 6000
	s := cs / 100
	cs -= s * 100

	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

// Parse inverts Format. The returned value matches the original Format input
// within one centisecond.
func Parse(clock string) (float64, error) {
	m := clockRe.FindStringSubmatch(clock)
	if m == nil {
		return 0, fmt.Errorf("invalid clock string %q", clock)
	}

	h, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", clock, err)
	}
	mins, _ := strconv.ParseInt(m[2], 10, 64)
	secs, _ := strconv.ParseInt(m[3], 10, 64)
	cents, _ := strconv.ParseInt(m[4], 10, 64)

	return float64(h*3600+mins*60+secs) + float64(cents)/100, nil
}
