// Package hook derives the short overlay headline burned into a video's
// opening seconds.
package hook

import (
	"regexp"
	"strings"
	"unicode"
)

// Default is used when the transcript yields no candidate sentences.
const Default = "Watch this"

// maxWords caps the headline length; longer sentences are cut at a word
// boundary so the overlay stays readable at fontsize 64.
const maxWords = 8

// triggerRe marks sentences likely to hold attention: interrogatives plus a
// fixed set of curiosity words. A tunable constant, not a learned model.
var triggerRe = regexp.MustCompile(`(?i)\b(how|what|why|stop|secret|best|avoid|never)\b`)

// Select picks the headline for a transcript: the first sentence containing
// a trigger word, else the first sentence, else Default. The result is
// truncated to its first eight words.
func Select(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return Default
	}

	candidates := splitSentences(transcript)
	if len(candidates) == 0 {
		return Default
	}

	line := candidates[0]
	for _, c := range candidates {
		if triggerRe.MatchString(c) {
			line = c
			break
		}
	}

	words := strings.Fields(line)
	if len(words) > maxWords {
		return strings.Join(words[:maxWords], " ")
	}
	return line
}

// splitSentences cuts text after sentence-ending punctuation followed by
// whitespace, keeping the punctuation with its sentence.
func splitSentences(text string) []string {
	var out []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if isSentenceEnd(runes[i]) && unicode.IsSpace(runes[i+1]) {
			if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
