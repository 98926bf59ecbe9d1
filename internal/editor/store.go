package editor

import (
	"context"
	"sync"

	"caption-canvas/internal/captions"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrClipNotFound is returned when a clip has no caption record.
var ErrClipNotFound = errors.New("clip not found")

// CaptionStore is the caption-storage collaborator. Implementations can be
// in-memory, database-backed, or remote; the editor does not care which.
type CaptionStore interface {
	// Fetch returns the caption payload for a clip.
	Fetch(ctx context.Context, clipID string) (captions.Data, error)

	// BulkUpdateWords replaces the clip's full word list and returns the
	// server-canonical list (normalized IDs, server-side cleanup).
	BulkUpdateWords(ctx context.Context, clipID string, words []captions.Word) ([]captions.Word, error)

	// UpdateStyle replaces the clip's style (and optionally the template id)
	// and returns the canonical style.
	UpdateStyle(ctx context.Context, clipID string, style captions.Style, templateID string) (captions.Style, error)

	// Reset restores the clip's captions to the generated defaults,
	// optionally resetting the style as well.
	Reset(ctx context.Context, clipID string, resetStyle bool) (captions.Data, error)
}

// TemplateCatalog is the read-only list of named style presets.
type TemplateCatalog interface {
	Templates(ctx context.Context) ([]captions.Template, error)
	Template(ctx context.Context, id string) (captions.Template, bool, error)
}

// clipRecord is the stored state for one clip plus the generated defaults
// used by Reset.
type clipRecord struct {
	current  captions.Data
	defaults captions.Data
}

// InMemoryCaptionStore is a concurrency-safe in-memory CaptionStore.
type InMemoryCaptionStore struct {
	mu    sync.RWMutex
	clips map[string]*clipRecord
}

// NewInMemoryCaptionStore returns an empty store.
func NewInMemoryCaptionStore() *InMemoryCaptionStore {
	return &InMemoryCaptionStore{clips: make(map[string]*clipRecord)}
}

// Seed installs the generated caption payload for a clip. The seeded data
// becomes both the current state and the Reset baseline.
func (s *InMemoryCaptionStore) Seed(clipID string, data captions.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data.Words = normalizeWords(data.Words)
	s.clips[clipID] = &clipRecord{
		current:  cloneData(data),
		defaults: cloneData(data),
	}
}

// Fetch implements CaptionStore.
func (s *InMemoryCaptionStore) Fetch(ctx context.Context, clipID string) (captions.Data, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.clips[clipID]
	if !ok {
		return captions.Data{}, errors.Wrapf(ErrClipNotFound, "fetch captions for %q", clipID)
	}
	return cloneData(rec.current), nil
}

// BulkUpdateWords implements CaptionStore. An empty word list is refused.
func (s *InMemoryCaptionStore) BulkUpdateWords(ctx context.Context, clipID string, words []captions.Word) ([]captions.Word, error) {
	if len(words) == 0 {
		return nil, captions.ErrEmptyCaption
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.clips[clipID]
	if !ok {
		return nil, errors.Wrapf(ErrClipNotFound, "update words for %q", clipID)
	}

	rec.current.Words = normalizeWords(captions.CloneWords(words))
	rec.current.IsEdited = true
	return captions.CloneWords(rec.current.Words), nil
}

// UpdateStyle implements CaptionStore.
func (s *InMemoryCaptionStore) UpdateStyle(ctx context.Context, clipID string, style captions.Style, templateID string) (captions.Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.clips[clipID]
	if !ok {
		return captions.Style{}, errors.Wrapf(ErrClipNotFound, "update style for %q", clipID)
	}

	st := style
	rec.current.Style = &st
	if templateID != "" {
		rec.current.TemplateID = templateID
	}
	rec.current.IsEdited = true
	return st, nil
}

// Reset implements CaptionStore.
func (s *InMemoryCaptionStore) Reset(ctx context.Context, clipID string, resetStyle bool) (captions.Data, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.clips[clipID]
	if !ok {
		return captions.Data{}, errors.Wrapf(ErrClipNotFound, "reset captions for %q", clipID)
	}

	restored := cloneData(rec.defaults)
	if !resetStyle {
		restored.Style = rec.current.Style
		restored.TemplateID = rec.current.TemplateID
	}
	restored.IsEdited = false
	rec.current = cloneData(restored)
	return restored, nil
}

// normalizeWords mints IDs for words that arrive without one. This is the
// server-side normalization the editor reconciles after a save.
func normalizeWords(words []captions.Word) []captions.Word {
	for i := range words {
		if words[i].ID == "" {
			words[i].ID = uuid.NewString()
		}
	}
	return words
}

func cloneData(d captions.Data) captions.Data {
	out := captions.Data{
		Words:      captions.CloneWords(d.Words),
		TemplateID: d.TemplateID,
		IsEdited:   d.IsEdited,
	}
	if d.Style != nil {
		st := *d.Style
		out.Style = &st
	}
	return out
}

// StaticTemplateCatalog serves a fixed set of presets.
type StaticTemplateCatalog struct {
	templates []captions.Template
}

// NewStaticTemplateCatalog returns a catalog with the built-in presets.
func NewStaticTemplateCatalog() *StaticTemplateCatalog {
	bold := captions.DefaultStyle()
	bold.FontFamily = "Archivo Black"
	bold.HighlightColor = "#00E676"
	bold.Outline = true

	minimal := captions.DefaultStyle()
	minimal.HighlightEnabled = false
	minimal.BackgroundOpacity = 0
	minimal.Shadow = true

	karaoke := captions.DefaultStyle()
	karaoke.HighlightColor = "#40C4FF"
	karaoke.Animation = "pop"

	return &StaticTemplateCatalog{templates: []captions.Template{
		{ID: "bold", Name: "Bold", Style: bold},
		{ID: "minimal", Name: "Minimal", Style: minimal},
		{ID: "karaoke", Name: "Karaoke", Style: karaoke},
	}}
}

// Templates implements TemplateCatalog.
func (c *StaticTemplateCatalog) Templates(ctx context.Context) ([]captions.Template, error) {
	out := make([]captions.Template, len(c.templates))
	copy(out, c.templates)
	return out, nil
}

// Template implements TemplateCatalog.
func (c *StaticTemplateCatalog) Template(ctx context.Context, id string) (captions.Template, bool, error) {
	for _, t := range c.templates {
		if t.ID == id {
			return t, true, nil
		}
	}
	return captions.Template{}, false, nil
}
