package captions

import "testing"

func word(id, text string, start, end float64) Word {
	return Word{ID: id, Text: text, Start: start, End: end}
}

func sequentialWords(texts ...string) []Word {
	words := make([]Word, len(texts))
	for i, text := range texts {
		words[i] = word(text, text, float64(i), float64(i)+0.9)
	}
	return words
}

func TestGroupWords_breaks_at_word_cap(t *testing.T) {
	words := sequentialWords("a", "b", "c", "d", "e", "f", "g")
	segments := GroupWords(words, 5)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if len(segments[0].Words) != 5 || len(segments[1].Words) != 2 {
		t.Errorf("expected 5+2 split, got %d+%d", len(segments[0].Words), len(segments[1].Words))
	}
	if segments[0].Index != 0 || segments[1].Index != 1 {
		t.Error("segment indexes should be sequential")
	}
}

func TestGroupWords_breaks_at_terminal_punctuation(t *testing.T) {
	words := sequentialWords("hello", "world.", "next", "one")
	segments := GroupWords(words, 5)

	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	if segments[0].Text() != "hello world." {
		t.Errorf("first segment text %q", segments[0].Text())
	}
	if segments[1].Text() != "next one" {
		t.Errorf("second segment text %q", segments[1].Text())
	}
}

func TestGroupWords_punctuation_before_trailing_quote(t *testing.T) {
	words := sequentialWords("he", `said."`, "then")
	segments := GroupWords(words, 5)
	if len(segments) != 2 {
		t.Fatalf("quote after period should still break: got %d segments", len(segments))
	}
}

func TestGroupWords_default_cap(t *testing.T) {
	words := sequentialWords("a", "b", "c", "d", "e", "f")
	segments := GroupWords(words, 0)
	if len(segments) != 2 || len(segments[0].Words) != MaxSegmentWords {
		t.Errorf("zero cap should fall back to MaxSegmentWords, got %d segments", len(segments))
	}
}

func TestGroupWords_empty(t *testing.T) {
	if got := GroupWords(nil, 5); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestSegment_bounds_and_text(t *testing.T) {
	s := Segment{Words: []Word{
		word("1", "hello", 0.0, 0.4),
		word("2", "world", 0.4, 0.9),
	}}
	if s.Start() != 0.0 || s.End() != 0.9 {
		t.Errorf("bounds (%g, %g)", s.Start(), s.End())
	}
	if s.Text() != "hello world" {
		t.Errorf("text %q", s.Text())
	}
}

func TestValidateWords(t *testing.T) {
	ok := []Word{word("1", "a", 0, 0.4), word("2", "b", 0.4, 0.9)}
	if err := ValidateWords(ok); err != nil {
		t.Errorf("valid words rejected: %v", err)
	}

	if err := ValidateWords(nil); err != ErrEmptyCaption {
		t.Errorf("expected ErrEmptyCaption, got %v", err)
	}

	inverted := []Word{word("1", "a", 0.5, 0.2)}
	if err := ValidateWords(inverted); err != ErrInvalidTiming {
		t.Errorf("expected ErrInvalidTiming for start >= end, got %v", err)
	}

	overlapping := []Word{word("1", "a", 0, 0.5), word("2", "b", 0.3, 0.9)}
	if err := ValidateWords(overlapping); err != ErrInvalidTiming {
		t.Errorf("expected ErrInvalidTiming for overlap, got %v", err)
	}
}
