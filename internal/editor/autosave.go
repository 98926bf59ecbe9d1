package editor

import (
	"context"
	"sync"
	"time"

	"caption-canvas/internal/captions"
)

// DefaultDebounce is the autosave quiet period after the last word edit.
const DefaultDebounce = 2000 * time.Millisecond

// Coordinator tracks the dirty flag on the caption word list and debounces
// persistence. Only one timer is live at a time: marking dirty again restarts
// the window instead of stacking timers. The words are snapshotted when the
// save fires, so a burst of edits persists once with the final list.
type Coordinator struct {
	store    CaptionStore
	clipID   string
	debounce time.Duration

	// words provides the current word list at save time.
	words func() []captions.Word
	// onSaved receives the server-canonical list after a successful save.
	onSaved func([]captions.Word)
	// onError surfaces a failed save; the dirty flag stays set for retry.
	onError func(error)

	mu     sync.Mutex
	timer  *time.Timer
	dirty  bool
	seq    uint64
	closed bool
}

// NewCoordinator wires a coordinator for one caption editor instance.
// onSaved and onError may be nil.
func NewCoordinator(store CaptionStore, clipID string, debounce time.Duration, words func() []captions.Word, onSaved func([]captions.Word), onError func(error)) *Coordinator {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Coordinator{
		store:    store,
		clipID:   clipID,
		debounce: debounce,
		words:    words,
		onSaved:  onSaved,
		onError:  onError,
	}
}

// MarkDirty flags the word list as changed and (re)starts the debounce
// window, cancelling any pending one.
func (c *Coordinator) MarkDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.dirty = true
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, func() {
		_ = c.save(context.Background())
	})
}

// Flush persists immediately if dirty, cancelling any pending timer. It is
// the manual-save path: edits must not be lost to a still-running debounce
// when the user navigates away.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	return c.save(ctx)
}

// Dirty reports whether unsaved word edits exist.
func (c *Coordinator) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// ClearDirty drops the dirty flag and any pending timer without saving.
// Used when state is reseeded from the server.
func (c *Coordinator) ClearDirty() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// Close stops the coordinator. Idempotent; no timer survives it.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) save(ctx context.Context) error {
	c.mu.Lock()
	if !c.dirty || c.closed {
		c.mu.Unlock()
		return nil
	}
	seq := c.seq
	c.mu.Unlock()

	// words takes the editor's lock, so it must run outside c.mu: every edit
	// path locks the editor first and then this coordinator. An edit landing
	// between the seq read and the snapshot is covered by the seq check below.
	snapshot := c.words()

	canonical, err := c.store.BulkUpdateWords(ctx, c.clipID, snapshot)
	if err != nil {
		// Dirty stays set; the next debounce cycle or manual save retries.
		if c.onError != nil {
			c.onError(err)
		}
		return err
	}

	c.mu.Lock()
	// An edit that landed while the save was in flight keeps the flag set.
	if c.seq == seq {
		c.dirty = false
	}
	c.mu.Unlock()

	if c.onSaved != nil {
		c.onSaved(canonical)
	}
	return nil
}
