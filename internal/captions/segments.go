package captions

import (
	"strings"
	"unicode"
)

// MaxSegmentWords is the default word-count cap per display segment.
const MaxSegmentWords = 5

// Segment is a contiguous run of words grouped for display and editing.
// Segments are derived, never persisted; the display path and the edit path
// must use the same grouping, which is why GroupWords is the only place the
// rule lives.
type Segment struct {
	Index int    `json:"index"`
	Words []Word `json:"words"`
}

// Start returns the segment's start time, taken from its first word.
func (s Segment) Start() float64 {
	if len(s.Words) == 0 {
		return 0
	}
	return s.Words[0].Start
}

// End returns the segment's end time, taken from its last word.
func (s Segment) End() float64 {
	if len(s.Words) == 0 {
		return 0
	}
	return s.Words[len(s.Words)-1].End
}

// Text joins the segment's words with single spaces.
func (s Segment) Text() string {
	parts := make([]string, 0, len(s.Words))
	for _, w := range s.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// GroupWords partitions a flat word list into segments, breaking after
// maxWords consecutive words or after a word ending in terminal punctuation,
// whichever comes first. If maxWords is not positive, MaxSegmentWords is used.
func GroupWords(words []Word, maxWords int) []Segment {
	if maxWords <= 0 {
		maxWords = MaxSegmentWords
	}
	if len(words) == 0 {
		return nil
	}

	segments := make([]Segment, 0, (len(words)+maxWords-1)/maxWords)
	current := make([]Word, 0, maxWords)

	flush := func() {
		if len(current) == 0 {
			return
		}
		segments = append(segments, Segment{Index: len(segments), Words: current})
		current = make([]Word, 0, maxWords)
	}

	for _, w := range words {
		current = append(current, w)
		if len(current) >= maxWords || endsSentence(w.Text) {
			flush()
		}
	}
	flush()

	return segments
}

// endsSentence reports whether the word's last meaningful rune is terminal
// punctuation. Trailing quotes and brackets are skipped so `word."` still
// breaks a segment.
func endsSentence(text string) bool {
	runes := []rune(strings.TrimSpace(text))
	for i := len(runes) - 1; i >= 0; i-- {
		r := runes[i]
		if r == '"' || r == '\'' || r == ')' || r == ']' || unicode.Is(unicode.Pf, r) {
			continue
		}
		return r == '.' || r == '!' || r == '?'
	}
	return false
}
