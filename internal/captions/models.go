package captions

import "errors"

// Word is a single caption word with clip-relative timing in seconds.
// A start of 0 is the moment the clip itself begins, not absolute video start.
type Word struct {
	ID    string  `json:"id"`
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Position is the vertical placement of the caption block on the canvas.
type Position string

const (
	PositionTop    Position = "top"
	PositionCenter Position = "center"
	PositionBottom Position = "bottom"
)

// Style is the full set of caption presentation attributes. It is an
// immutable value: updates replace it wholesale via MergeStyle, never by
// partial in-place mutation.
type Style struct {
	FontFamily        string   `json:"fontFamily"`
	FontSize          int      `json:"fontSize"`
	TextColor         string   `json:"textColor"`
	BackgroundColor   string   `json:"backgroundColor"`
	HighlightColor    string   `json:"highlightColor"`
	OutlineColor      string   `json:"outlineColor"`
	BackgroundOpacity float64  `json:"backgroundOpacity"`
	Position          Position `json:"position"`
	Alignment         string   `json:"alignment"`
	Shadow            bool     `json:"shadow"`
	Outline           bool     `json:"outline"`
	HighlightEnabled  bool     `json:"highlightEnabled"`
	Animation         string   `json:"animation"`
}

// Template is a named style preset from the template catalog.
type Template struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Style Style  `json:"style"`
}

// Data is the caption payload exchanged with the caption store:
// the word list, the style, the applied template, and whether the clip's
// captions have been edited since generation.
type Data struct {
	Words      []Word `json:"words"`
	Style      *Style `json:"style,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
	IsEdited   bool   `json:"isEdited"`
}

var (
	// ErrInvalidTiming is returned when a word list violates the ordering
	// invariant: start < end per word, words time-ordered and non-overlapping.
	ErrInvalidTiming = errors.New("caption words must be time-ordered and non-overlapping")

	// ErrEmptyCaption is returned for operations that would produce or
	// persist an empty word list.
	ErrEmptyCaption = errors.New("caption word list must not be empty")
)

// CloneWords returns a copy of the word list; Word has no reference fields,
// so a shallow slice copy is a full snapshot.
func CloneWords(words []Word) []Word {
	if words == nil {
		return nil
	}
	out := make([]Word, len(words))
	copy(out, words)
	return out
}

// ValidateWords checks the word-timing invariant for a non-empty list.
func ValidateWords(words []Word) error {
	if len(words) == 0 {
		return ErrEmptyCaption
	}
	for i, w := range words {
		if w.Start >= w.End {
			return ErrInvalidTiming
		}
		if i > 0 && w.Start < words[i-1].End {
			return ErrInvalidTiming
		}
	}
	return nil
}

// ClipRelative converts an absolute playback time into the clip's own
// time base by subtracting the clip's start offset.
func ClipRelative(absolute, clipStart float64) float64 {
	return absolute - clipStart
}
