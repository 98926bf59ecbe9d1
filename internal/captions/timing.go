package captions

import "sync"

// Presentation constants for the active word.
const (
	// HighlightScale is how much the active word is scaled up relative to
	// its neighbors.
	HighlightScale = 1.2

	// glowBase is the glow radius at containerScale 1. The effective radius
	// scales with the display size so the glow looks the same everywhere.
	glowBase = 8.0
)

// ActiveSegment returns the segment whose [start, end] interval contains the
// clip-relative time, bounds inclusive. When adjacent segments share a
// boundary the earlier one wins, so there is never more than one match.
func ActiveSegment(segments []Segment, rel float64) (Segment, bool) {
	for _, s := range segments {
		if len(s.Words) == 0 {
			continue
		}
		if rel >= s.Start() && rel <= s.End() {
			return s, true
		}
	}
	return Segment{}, false
}

// ActiveWordIndex returns the index of the word in the segment whose
// [start, end] interval contains the clip-relative time, or -1. First match
// wins on shared boundaries.
func ActiveWordIndex(s Segment, rel float64) int {
	for i, w := range s.Words {
		if rel >= w.Start && rel <= w.End {
			return i
		}
	}
	return -1
}

// WordView is one word of a rendered segment with its derived presentation.
type WordView struct {
	ID     string  `json:"id"`
	Text   string  `json:"word"`
	Active bool    `json:"active"`
	Color  string  `json:"color"`
	Scale  float64 `json:"scale"`
	Glow   float64 `json:"glow"`
}

// SegmentView is what gets drawn in the caption layer for the active segment.
// When Plain is true the segment renders as a single unstyled text run.
type SegmentView struct {
	Index int        `json:"index"`
	Text  string     `json:"text"`
	Plain bool       `json:"plain"`
	Words []WordView `json:"words,omitempty"`
}

// RenderSegment derives the presentation of a segment at the clip-relative
// time. Word-level styling applies only when the style enables highlighting
// and the segment actually carries word timings; otherwise the segment is
// rendered as plain text.
func RenderSegment(s Segment, rel float64, style Style, containerScale float64) SegmentView {
	view := SegmentView{Index: s.Index, Text: s.Text()}

	if !style.HighlightEnabled || !hasWordTimings(s) {
		view.Plain = true
		return view
	}

	active := ActiveWordIndex(s, rel)
	view.Words = make([]WordView, len(s.Words))
	for i, w := range s.Words {
		wv := WordView{ID: w.ID, Text: w.Text, Color: style.TextColor, Scale: 1.0}
		if i == active {
			wv.Active = true
			wv.Color = style.HighlightColor
			wv.Scale = HighlightScale
			wv.Glow = glowBase * containerScale
		}
		view.Words[i] = wv
	}
	return view
}

// hasWordTimings reports whether any word in the segment carries a real
// interval. Upstream data sometimes delivers segment text with zeroed word
// timestamps.
func hasWordTimings(s Segment) bool {
	for _, w := range s.Words {
		if w.End > w.Start {
			return true
		}
	}
	return false
}

// Tracker remembers the last active segment and word so that consumers react
// only when the active word actually changes, not on every frame. It drives
// the transcript auto-scroll. Safe for concurrent observers.
type Tracker struct {
	mu      sync.Mutex
	segment int
	word    int
}

// NewTracker returns a tracker with no observed word.
func NewTracker() *Tracker {
	return &Tracker{segment: -1, word: -1}
}

// Observe records the active segment/word pair for the current frame and
// reports whether it differs from the previous frame. Pass -1 for either
// index when nothing is active.
func (t *Tracker) Observe(segment, word int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if segment == t.segment && word == t.word {
		return false
	}
	t.segment = segment
	t.word = word
	return true
}
