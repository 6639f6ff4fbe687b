package captions

import (
	"fmt"
	"io"
	"strings"

	"github.com/reelsmith/reelsmith/internal/job"
	"github.com/reelsmith/reelsmith/internal/timecode"
)

// Fixed style: white fill with a heavy black outline, bottom-third placement,
// centered on a 1080x1920 reference canvas.
const assHeader = `[Script Info]
ScriptType: v4.00+
PlayResX: 1080
PlayResY: 1920

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: ReelCaption,Arial,64,&H00FFFFFF,&H00000000,&H00000000,1,0,0,0,100,100,0,0,1,4,0,2,80,80,240,1

[Events]
Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text
`

// WriteASS renders chunks as an ASS document, one Dialogue event per chunk.
// An empty chunk list produces a valid document with no events.
func WriteASS(w io.Writer, chunks []job.Chunk) error {
	if _, err := io.WriteString(w, assHeader); err != nil {
		return err
	}
	for _, c := range chunks {
		line := fmt.Sprintf("Dialogue: 0,%s,%s,ReelCaption,,0,0,0,,%s\n",
			timecode.Format(c.Start), timecode.Format(c.End), sanitizeEventText(c.Text))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderASS is WriteASS into a string.
func RenderASS(chunks []job.Chunk) string {
	var b strings.Builder
	_ = WriteASS(&b, chunks)
	return b.String()
}

// sanitizeEventText keeps chunk text from being read as ASS override tags or
// breaking the one-event-per-line format.
func sanitizeEventText(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.TrimSpace(s)
}
