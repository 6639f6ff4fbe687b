package ffmpeg

import (
	"strconv"
	"strings"
)

// FilterGraph assembles the video filter expression for the burn stage. Each
// method appends one filter; String joins them in call order. All escaping of
// filter values happens here so call sites never handle it inline.
type FilterGraph struct {
	steps []string
}

func NewFilterGraph() *FilterGraph {
	return &FilterGraph{}
}

// ScaleFill scales to cover a w x h frame, preserving aspect ratio.
func (g *FilterGraph) ScaleFill(w, h int) *FilterGraph {
	g.steps = append(g.steps,
		"scale="+strconv.Itoa(w)+":"+strconv.Itoa(h)+":force_original_aspect_ratio=increase")
	return g
}

// CenterCrop cuts the scaled frame down to exactly w x h.
func (g *FilterGraph) CenterCrop(w, h int) *FilterGraph {
	g.steps = append(g.steps, "crop="+strconv.Itoa(w)+":"+strconv.Itoa(h))
	return g
}

// BurnSubtitles renders the ASS document at path onto the video.
func (g *FilterGraph) BurnSubtitles(path string) *FilterGraph {
	g.steps = append(g.steps, "subtitles='"+escapeFilterValue(path)+"'")
	return g
}

// DrawHook overlays text centered horizontally at a fixed vertical offset,
// visible from start for dur seconds.
func (g *FilterGraph) DrawHook(text string, start, dur float64) *FilterGraph {
	g.steps = append(g.steps,
		"drawtext=text='"+escapeFilterValue(text)+"':"+
			"fontcolor=white:fontsize=64:borderw=4:bordercolor=black:"+
			"x=(w-tw)/2:y=h*0.2:"+
			"enable='between(t\\,"+fmtSeconds(start)+"\\,"+fmtSeconds(start+dur)+")'")
	return g
}

func (g *FilterGraph) String() string {
	return strings.Join(g.steps, ",")
}

// escapeFilterValue escapes the characters with special meaning inside a
// quoted filter argument: backslash first so later escapes survive, then
// colon, single quote, and double quote.
func escapeFilterValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `:`, `\:`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func fmtSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
