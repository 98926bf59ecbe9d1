package session

import "testing"

func TestInMemoryRepository_put_get_delete(t *testing.T) {
	r := NewInMemoryRepository()

	s := &Session{ID: "s1"}
	r.Put(s)

	got, ok := r.Get("s1")
	if !ok || got.ID != "s1" {
		t.Fatalf("Get: ok=%v got=%+v", ok, got)
	}
	if r.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d", r.ActiveCount())
	}

	deleted, ok := r.Delete("s1")
	if !ok || deleted.ID != "s1" {
		t.Errorf("Delete: ok=%v", ok)
	}
	if _, ok := r.Get("s1"); ok {
		t.Error("session should be gone after delete")
	}
	if r.ActiveCount() != 0 {
		t.Errorf("ActiveCount = %d", r.ActiveCount())
	}
}

func TestInMemoryRepository_delete_unknown_is_noop(t *testing.T) {
	r := NewInMemoryRepository()
	if _, ok := r.Delete("missing"); ok {
		t.Error("deleting an unknown session should report ok=false")
	}
}
