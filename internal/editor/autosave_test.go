package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"caption-canvas/internal/captions"
)

// countingStore counts BulkUpdateWords calls and records the last payload.
type countingStore struct {
	*InMemoryCaptionStore
	mu    sync.Mutex
	calls int
	last  []captions.Word
	fail  error
}

func newCountingStore(words []captions.Word) *countingStore {
	s := &countingStore{InMemoryCaptionStore: NewInMemoryCaptionStore()}
	s.Seed("clip1", captions.Data{Words: words})
	return s
}

func (s *countingStore) BulkUpdateWords(ctx context.Context, clipID string, words []captions.Word) ([]captions.Word, error) {
	s.mu.Lock()
	s.calls++
	s.last = captions.CloneWords(words)
	fail := s.fail
	s.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	return s.InMemoryCaptionStore.BulkUpdateWords(ctx, clipID, words)
}

func (s *countingStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) lastPayload() []captions.Word {
	s.mu.Lock()
	defer s.mu.Unlock()
	return captions.CloneWords(s.last)
}

func TestCoordinator_burst_of_edits_saves_once(t *testing.T) {
	words := seedWords(3)
	store := newCountingStore(words)

	var current []captions.Word
	var mu sync.Mutex
	setWords := func(w []captions.Word) {
		mu.Lock()
		current = w
		mu.Unlock()
	}
	setWords(words)

	c := NewCoordinator(store, "clip1", 30*time.Millisecond, func() []captions.Word {
		mu.Lock()
		defer mu.Unlock()
		return captions.CloneWords(current)
	}, nil, nil)
	defer c.Close()

	// A burst of rapid edits inside one debounce window.
	for i := 0; i < 10; i++ {
		w := captions.CloneWords(words)
		w[0].Text = "edit" + string(rune('0'+i))
		setWords(w)
		c.MarkDirty()
		time.Sleep(time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := store.callCount(); got != 1 {
		t.Fatalf("expected exactly one persistence call, got %d", got)
	}
	if got := store.lastPayload()[0].Text; got != "edit9" {
		t.Errorf("save must carry the final word list, got %q", got)
	}
	if c.Dirty() {
		t.Error("successful save should clear the dirty flag")
	}
}

func TestCoordinator_flush_saves_immediately(t *testing.T) {
	words := seedWords(2)
	store := newCountingStore(words)

	c := NewCoordinator(store, "clip1", time.Hour, func() []captions.Word {
		return captions.CloneWords(words)
	}, nil, nil)
	defer c.Close()

	c.MarkDirty()
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.callCount() != 1 {
		t.Errorf("flush should bypass the debounce, calls=%d", store.callCount())
	}
	if c.Dirty() {
		t.Error("dirty should be cleared after flush")
	}
}

func TestCoordinator_flush_without_dirty_is_noop(t *testing.T) {
	store := newCountingStore(seedWords(2))
	c := NewCoordinator(store, "clip1", time.Hour, func() []captions.Word { return nil }, nil, nil)
	defer c.Close()

	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if store.callCount() != 0 {
		t.Error("nothing dirty, nothing saved")
	}
}

func TestCoordinator_failure_keeps_dirty_for_retry(t *testing.T) {
	words := seedWords(2)
	store := newCountingStore(words)
	store.fail = errors.New("storage down")

	var surfaced atomic.Value
	c := NewCoordinator(store, "clip1", time.Hour, func() []captions.Word {
		return captions.CloneWords(words)
	}, nil, func(err error) { surfaced.Store(err) })
	defer c.Close()

	c.MarkDirty()
	if err := c.Flush(context.Background()); err == nil {
		t.Fatal("expected the save error")
	}
	if !c.Dirty() {
		t.Error("dirty must stay set after a failed save")
	}
	if surfaced.Load() == nil {
		t.Error("failure should be surfaced through the error callback")
	}

	// Retry succeeds once storage recovers.
	store.fail = nil
	if err := c.Flush(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if c.Dirty() {
		t.Error("dirty should clear after the retry succeeds")
	}
}

func TestCoordinator_close_cancels_pending_timer(t *testing.T) {
	store := newCountingStore(seedWords(2))
	c := NewCoordinator(store, "clip1", 20*time.Millisecond, func() []captions.Word {
		return seedWords(2)
	}, nil, nil)

	c.MarkDirty()
	c.Close()
	c.Close() // idempotent

	time.Sleep(60 * time.Millisecond)
	if store.callCount() != 0 {
		t.Error("no save may fire after Close")
	}
}
