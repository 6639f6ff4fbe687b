// Package captions groups transcript words into subtitle chunks and renders
// them as an ASS document sized for a 1080x1920 vertical frame.
package captions

import (
	"strings"

	"github.com/reelsmith/reelsmith/internal/job"
)

// DefaultGroupSize is the number of words shown per subtitle event.
const DefaultGroupSize = 3

// BuildChunks partitions words into contiguous groups of up to size words
// and emits one chunk per non-empty group. A chunk's start is the first
// word's start and its end the last word's end. Words whose text is empty
// after trimming are dropped before grouping.
func BuildChunks(words []job.Word, size int) []job.Chunk {
	if size <= 0 {
		size = DefaultGroupSize
	}

	usable := make([]job.Word, 0, len(words))
	for _, w := range words {
		if strings.TrimSpace(w.Text) == "" {
			continue
		}
		usable = append(usable, w)
	}

	var chunks []job.Chunk
	for i := 0; i < len(usable); i += size {
		group := usable[i:min(i+size, len(usable))]
		parts := make([]string, 0, len(group))
		for _, w := range group {
			parts = append(parts, strings.TrimSpace(w.Text))
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}
		chunks = append(chunks, job.Chunk{
			Text:  text,
			Start: group[0].Start,
			End:   group[len(group)-1].End,
		})
	}
	return chunks
}
