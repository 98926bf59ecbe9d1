package canvas

import "testing"

func newTestStore() *LayerStore {
	return NewLayerStore(RatioPortrait.NativeSize())
}

func TestLayerStore_fill_created_on_init(t *testing.T) {
	s := newTestStore()

	fill := s.Fill()
	if fill.Kind != LayerFill {
		t.Fatalf("expected fill layer, got %s", fill.Kind)
	}
	if fill.Width != 1080 || fill.Height != 1920 {
		t.Errorf("fill should span the canvas, got %gx%g", fill.Width, fill.Height)
	}
	if len(s.Layers()) != 1 {
		t.Errorf("expected exactly one layer, got %d", len(s.Layers()))
	}
}

func TestLayerStore_caption_layer_idempotent(t *testing.T) {
	s := newTestStore()

	rect := Rect{X: 100, Y: 1500, Width: 880, Height: 200}
	first := s.EnsureCaptionLayer(rect)
	second := s.EnsureCaptionLayer(Rect{X: 0, Y: 0, Width: 10, Height: 10})

	if first.ID != second.ID {
		t.Error("repeated activation created a second caption layer")
	}
	if second.X != rect.X || second.Width != rect.Width {
		t.Error("second call must not alter the existing caption layer")
	}
	if len(s.Layers()) != 2 {
		t.Errorf("expected 2 layers, got %d", len(s.Layers()))
	}
}

func TestLayerStore_reset_canvas_keeps_caption(t *testing.T) {
	s := newTestStore()
	cap := s.EnsureCaptionLayer(Rect{X: 10, Y: 20, Width: 30, Height: 40})
	fillID := s.Fill().ID

	s.ResetCanvas(RatioSquare.NativeSize())

	if got := s.Fill(); got.ID != fillID || got.Width != 1080 || got.Height != 1080 {
		t.Errorf("fill should be re-derived for the new canvas, got %+v", got)
	}
	got, ok := s.Caption()
	if !ok || got.ID != cap.ID {
		t.Error("caption layer should survive a canvas reset")
	}
}

func TestLayerStore_setters(t *testing.T) {
	s := newTestStore()
	id := s.Fill().ID

	if err := s.SetPosition(id, 12, -7); err != nil {
		t.Fatalf("SetPosition: %v", err)
	}
	if l, _ := s.Get(id); l.X != 12 || l.Y != -7 {
		t.Errorf("position not applied: %+v", l)
	}

	if err := s.SetSize(id, 500, 400); err != nil {
		t.Fatalf("SetSize: %v", err)
	}
	if err := s.SetSize(id, 0, 400); err != ErrInvalidSize {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
	if err := s.SetRotation(id, 45); err != nil {
		t.Fatalf("SetRotation: %v", err)
	}

	if err := s.SetPosition("missing", 0, 0); err != ErrLayerNotFound {
		t.Errorf("expected ErrLayerNotFound, got %v", err)
	}
}

func TestLayerStore_hit_test_caption_above_fill(t *testing.T) {
	s := newTestStore()
	cap := s.EnsureCaptionLayer(Rect{X: 100, Y: 100, Width: 200, Height: 100})

	if l, ok := s.HitTest(Point{X: 150, Y: 150}); !ok || l.ID != cap.ID {
		t.Error("point inside caption should hit the caption layer")
	}
	if l, ok := s.HitTest(Point{X: 500, Y: 500}); !ok || l.Kind != LayerFill {
		t.Errorf("point outside caption should hit fill, got %+v ok=%v", l, ok)
	}
	if _, ok := s.HitTest(Point{X: -5, Y: -5}); ok {
		t.Error("point outside the canvas should hit nothing")
	}
}
