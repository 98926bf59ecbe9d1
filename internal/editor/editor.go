package editor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"caption-canvas/internal/captions"

	"github.com/google/uuid"
)

var (
	// ErrWordNotFound is returned when an edit names a word id that does not
	// exist in the current list.
	ErrWordNotFound = errors.New("caption word not found")

	// ErrEmptyWordText is returned for edits that would leave a word with no
	// text. The edit is refused; no state mutation occurs.
	ErrEmptyWordText = errors.New("caption word text must not be empty")

	// ErrTemplateNotFound is returned when applying an unknown template id.
	ErrTemplateNotFound = errors.New("caption template not found")
)

// State is the unit of undo/redo: the word list, the style, and the applied
// template. It is mutated only through the Editor; direct mutation bypasses
// history and is forbidden.
type State struct {
	Words      []captions.Word `json:"words"`
	Style      *captions.Style `json:"style,omitempty"`
	TemplateID string          `json:"templateId,omitempty"`
}

func (s State) clone() State {
	out := State{
		Words:      captions.CloneWords(s.Words),
		TemplateID: s.TemplateID,
	}
	if s.Style != nil {
		st := *s.Style
		out.Style = &st
	}
	return out
}

// Options tunes an Editor.
type Options struct {
	// Debounce is the autosave quiet period; DefaultDebounce when zero.
	Debounce time.Duration
	// OnSaved fires after each successful autosave with the canonical words.
	OnSaved func(n int)
	// OnSaveError fires when an autosave is rejected by the store.
	OnSaveError func(error)
}

// Editor owns the mutable caption state for one clip behind a linear
// undo/redo history, with debounced autosave of word edits and immediate
// persistence of style changes.
type Editor struct {
	mu      sync.Mutex
	clipID  string
	store   CaptionStore
	catalog TemplateCatalog
	state   State
	hist    History[State]
	edited  bool
	auto    *Coordinator

	// onSaveError also surfaces style re-persistence failures from undo/redo.
	onSaveError func(error)
}

// New fetches the clip's captions from the store and builds an editor seeded
// with the response.
func New(ctx context.Context, clipID string, store CaptionStore, catalog TemplateCatalog, opts Options) (*Editor, error) {
	data, err := store.Fetch(ctx, clipID)
	if err != nil {
		return nil, err
	}

	e := &Editor{
		clipID:      clipID,
		store:       store,
		catalog:     catalog,
		edited:      data.IsEdited,
		onSaveError: opts.OnSaveError,
	}
	e.state = State{Words: data.Words, Style: data.Style, TemplateID: data.TemplateID}

	e.auto = NewCoordinator(store, clipID, opts.Debounce,
		e.snapshotWords,
		func(canonical []captions.Word) {
			e.adoptCanonical(canonical)
			if opts.OnSaved != nil {
				opts.OnSaved(len(canonical))
			}
		},
		opts.OnSaveError,
	)
	return e, nil
}

// ClipID returns the clip this editor is bound to.
func (e *Editor) ClipID() string { return e.clipID }

// Words returns a snapshot of the current word list.
func (e *Editor) Words() []captions.Word {
	e.mu.Lock()
	defer e.mu.Unlock()
	return captions.CloneWords(e.state.Words)
}

// Style returns the current style, or nil if none has been set.
func (e *Editor) Style() *captions.Style {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Style == nil {
		return nil
	}
	st := *e.state.Style
	return &st
}

// TemplateID returns the applied template id, if any.
func (e *Editor) TemplateID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TemplateID
}

// IsEdited reports whether the clip's captions differ from the generated
// defaults, per the store.
func (e *Editor) IsEdited() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.edited
}

// Dirty reports whether unsaved word edits are pending.
func (e *Editor) Dirty() bool { return e.auto.Dirty() }

// CanUndo reports whether an undo is available.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanUndo()
}

// CanRedo reports whether a redo is available.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.CanRedo()
}

// Segments derives the display segments from the current word list using the
// shared grouping rule. The edit path uses the same derivation, so the two
// can never drift apart.
func (e *Editor) Segments(maxWords int) []captions.Segment {
	return captions.GroupWords(e.Words(), maxWords)
}

// EditWord replaces a word's text. Edits to empty text are refused.
func (e *Editor) EditWord(id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyWordText
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOfLocked(id)
	if i < 0 {
		return ErrWordNotFound
	}

	e.hist.Push(e.state.clone())
	e.state.Words[i].Text = text
	e.markDirtyLocked()
	return nil
}

// InsertWord inserts a new word after the word with afterID, or at the front
// when afterID is empty. The anchor word's interval is split at its midpoint
// so word ordering and non-overlap still hold.
func (e *Editor) InsertWord(afterID, text string) (captions.Word, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return captions.Word{}, ErrEmptyWordText
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.Words) == 0 {
		return captions.Word{}, captions.ErrEmptyCaption
	}

	anchor := 0
	if afterID != "" {
		anchor = e.indexOfLocked(afterID)
		if anchor < 0 {
			return captions.Word{}, ErrWordNotFound
		}
	}

	e.hist.Push(e.state.clone())

	host := &e.state.Words[anchor]
	mid := (host.Start + host.End) / 2
	inserted := captions.Word{ID: uuid.NewString(), Text: text}

	if afterID == "" {
		// Prepend: the new word takes the first half of the first word.
		inserted.Start, inserted.End = host.Start, mid
		host.Start = mid
		e.state.Words = append([]captions.Word{inserted}, e.state.Words...)
	} else {
		inserted.Start, inserted.End = mid, host.End
		host.End = mid
		rest := append([]captions.Word{inserted}, e.state.Words[anchor+1:]...)
		e.state.Words = append(e.state.Words[:anchor+1], rest...)
	}

	e.markDirtyLocked()
	return inserted, nil
}

// RemoveWord deletes a word. Removing the last remaining word is refused:
// an empty caption is an invalid state and must never reach history or
// persistence.
func (e *Editor) RemoveWord(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.state.Words) <= 1 {
		return captions.ErrEmptyCaption
	}
	i := e.indexOfLocked(id)
	if i < 0 {
		return ErrWordNotFound
	}

	e.hist.Push(e.state.clone())
	e.state.Words = append(e.state.Words[:i], e.state.Words[i+1:]...)
	e.markDirtyLocked()
	return nil
}

// SetStyle merges the patch into the current style and persists the result
// immediately. The local state is updated optimistically; on store failure it
// is rolled back verbatim and the error returned. History records only
// committed transitions.
func (e *Editor) SetStyle(ctx context.Context, patch captions.StylePatch, templateID string) error {
	e.mu.Lock()
	prev := e.state.clone()
	merged := captions.MergeStyle(e.state.Style, patch)
	e.state.Style = &merged
	if templateID != "" {
		e.state.TemplateID = templateID
	}
	e.mu.Unlock()

	canonical, err := e.store.UpdateStyle(ctx, e.clipID, merged, templateID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		// Only the style fields roll back: an autosave that adopted
		// server-canonical words while the round trip was in flight must
		// not be reverted.
		e.state.Style = prev.Style
		e.state.TemplateID = prev.TemplateID
		return err
	}
	e.state.Style = &canonical
	e.hist.Push(prev)
	e.edited = true
	return nil
}

// ApplyTemplate applies a catalog preset wholesale as the new style.
func (e *Editor) ApplyTemplate(ctx context.Context, templateID string) error {
	tpl, ok, err := e.catalog.Template(ctx, templateID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTemplateNotFound
	}

	e.mu.Lock()
	prev := e.state.clone()
	st := tpl.Style
	e.state.Style = &st
	e.state.TemplateID = tpl.ID
	e.mu.Unlock()

	canonical, err := e.store.UpdateStyle(ctx, e.clipID, st, tpl.ID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.state.Style = prev.Style
		e.state.TemplateID = prev.TemplateID
		return err
	}
	e.state.Style = &canonical
	e.hist.Push(prev)
	e.edited = true
	return nil
}

// Undo restores the previous state. Word-level differences become pending
// autosave work; a reverted style is re-persisted directly, since autosave
// only carries words.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	cur := e.state.clone()
	restored, ok := e.hist.Undo(cur)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.state = restored
	snapshot := restored.clone()
	e.markDirtyLocked()
	e.mu.Unlock()

	if styleDiffers(cur, snapshot) {
		e.persistStyle(snapshot.Style, snapshot.TemplateID)
	}
	return true
}

// Redo is the mirror of Undo.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	cur := e.state.clone()
	restored, ok := e.hist.Redo(cur)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.state = restored
	snapshot := restored.clone()
	e.markDirtyLocked()
	e.mu.Unlock()

	if styleDiffers(cur, snapshot) {
		e.persistStyle(snapshot.Style, snapshot.TemplateID)
	}
	return true
}

// Save flushes any pending debounce immediately. Used by the manual save
// path so edits are never lost to a still-running timer.
func (e *Editor) Save(ctx context.Context) error {
	return e.auto.Flush(ctx)
}

// ResetFromServer restores the clip's generated captions. The response is
// adopted directly, bypassing history, and both stacks are cleared.
func (e *Editor) ResetFromServer(ctx context.Context, resetStyle bool) error {
	data, err := e.store.Reset(ctx, e.clipID, resetStyle)
	if err != nil {
		return err
	}
	e.Reseed(data)
	return nil
}

// Reseed replaces the editor state with freshly fetched server data and
// clears all history and pending autosave work. Used whenever the upstream
// clip data changes.
func (e *Editor) Reseed(data captions.Data) {
	e.mu.Lock()
	e.state = State{Words: data.Words, Style: data.Style, TemplateID: data.TemplateID}
	e.edited = data.IsEdited
	e.hist.Reset()
	e.mu.Unlock()

	e.auto.ClearDirty()
}

// Close tears the editor down; no autosave timer survives it. Idempotent.
func (e *Editor) Close() {
	e.auto.Close()
}

// persistStyle pushes a restored style to the store and adopts the canonical
// response. A failure is surfaced like a failed autosave; the store catches
// up on the next style change.
func (e *Editor) persistStyle(style *captions.Style, templateID string) {
	if style == nil {
		return
	}

	canonical, err := e.store.UpdateStyle(context.Background(), e.clipID, *style, templateID)
	if err != nil {
		if e.onSaveError != nil {
			e.onSaveError(err)
		}
		return
	}

	e.mu.Lock()
	e.state.Style = &canonical
	e.mu.Unlock()
}

// styleDiffers reports whether two states carry different presentation.
func styleDiffers(a, b State) bool {
	if a.TemplateID != b.TemplateID {
		return true
	}
	switch {
	case a.Style == nil && b.Style == nil:
		return false
	case a.Style == nil || b.Style == nil:
		return true
	}
	return *a.Style != *b.Style
}

func (e *Editor) indexOfLocked(id string) int {
	for i, w := range e.state.Words {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// markDirtyLocked is called with e.mu held; the coordinator has its own lock.
func (e *Editor) markDirtyLocked() {
	e.auto.MarkDirty()
}

func (e *Editor) snapshotWords() []captions.Word {
	e.mu.Lock()
	defer e.mu.Unlock()
	return captions.CloneWords(e.state.Words)
}

func (e *Editor) adoptCanonical(words []captions.Word) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Words = captions.CloneWords(words)
	e.edited = true
}
