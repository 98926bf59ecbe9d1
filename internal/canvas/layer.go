package canvas

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// LayerKind distinguishes the main content region from the caption region.
type LayerKind string

const (
	LayerFill    LayerKind = "fill"
	LayerCaption LayerKind = "caption"
)

var (
	// ErrLayerNotFound is returned when mutating a layer id that does not exist.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrInvalidSize is returned when resizing a layer to a non-positive size.
	ErrInvalidSize = errors.New("layer size must be positive")
)

// Layer is a positionable, resizable, rotatable rectangular region. All
// position and size fields are in canvas-native pixel units.
type Layer struct {
	ID       string    `json:"id"`
	Kind     LayerKind `json:"type"`
	X        float64   `json:"x"`
	Y        float64   `json:"y"`
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Rotation float64   `json:"rotation"`
}

// Bounds returns the layer rectangle. Rotation is not applied; hit testing
// uses the unrotated bounding box.
func (l Layer) Bounds() Rect {
	return Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}
}

// LayerStore exclusively owns all layer state for one canvas. Exactly one
// fill layer exists per store; the caption layer is created lazily and never
// duplicated. All mutation goes through setters so there is a single source
// of truth for what is drawn.
type LayerStore struct {
	mu     sync.RWMutex
	native Size
	fill   Layer
	// caption is valid only when hasCaption is true.
	caption    Layer
	hasCaption bool
}

// NewLayerStore creates a store whose fill layer covers the full canvas.
func NewLayerStore(native Size) *LayerStore {
	s := &LayerStore{}
	s.ResetCanvas(native)
	return s
}

// ResetCanvas re-derives the fill layer for a new canvas size. The fill layer
// is recreated to span the full canvas; an existing caption layer keeps its
// identity and geometry.
func (s *LayerStore) ResetCanvas(native Size) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.fill.ID
	if id == "" {
		id = uuid.NewString()
	}
	s.native = native
	s.fill = Layer{
		ID:     id,
		Kind:   LayerFill,
		Width:  native.Width,
		Height: native.Height,
	}
}

// EnsureCaptionLayer returns the caption layer, creating it with the given
// rectangle if it does not exist yet. Repeated calls never create a second
// instance.
func (s *LayerStore) EnsureCaptionLayer(rect Rect) Layer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasCaption {
		return s.caption
	}
	s.caption = Layer{
		ID:     uuid.NewString(),
		Kind:   LayerCaption,
		X:      rect.X,
		Y:      rect.Y,
		Width:  rect.Width,
		Height: rect.Height,
	}
	s.hasCaption = true
	return s.caption
}

// Fill returns the fill layer.
func (s *LayerStore) Fill() Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fill
}

// Caption returns the caption layer if it has been created.
func (s *LayerStore) Caption() (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caption, s.hasCaption
}

// Get returns the layer with the given id.
func (s *LayerStore) Get(id string) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fill.ID == id {
		return s.fill, true
	}
	if s.hasCaption && s.caption.ID == id {
		return s.caption, true
	}
	return Layer{}, false
}

// Layers returns a snapshot of all layers, bottom-most first.
func (s *LayerStore) Layers() []Layer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Layer{s.fill}
	if s.hasCaption {
		out = append(out, s.caption)
	}
	return out
}

// SetPosition moves a layer to the given canvas-native position.
func (s *LayerStore) SetPosition(id string, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lookupLocked(id)
	if !ok {
		return ErrLayerNotFound
	}
	l.X = x
	l.Y = y
	return nil
}

// SetSize resizes a layer in canvas-native units.
func (s *LayerStore) SetSize(id string, width, height float64) error {
	if width <= 0 || height <= 0 {
		return ErrInvalidSize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lookupLocked(id)
	if !ok {
		return ErrLayerNotFound
	}
	l.Width = width
	l.Height = height
	return nil
}

// SetRotation sets a layer's rotation in degrees.
func (s *LayerStore) SetRotation(id string, degrees float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lookupLocked(id)
	if !ok {
		return ErrLayerNotFound
	}
	l.Rotation = degrees
	return nil
}

// HitTest returns the top-most layer containing the canvas-native point.
// The caption layer sits above the fill layer.
func (s *LayerStore) HitTest(p Point) (Layer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.hasCaption && s.caption.Bounds().Contains(p) {
		return s.caption, true
	}
	if s.fill.Bounds().Contains(p) {
		return s.fill, true
	}
	return Layer{}, false
}

// lookupLocked returns a pointer into the store's layer state.
// Caller must hold s.mu in write mode.
func (s *LayerStore) lookupLocked(id string) (*Layer, bool) {
	if s.fill.ID == id {
		return &s.fill, true
	}
	if s.hasCaption && s.caption.ID == id {
		return &s.caption, true
	}
	return nil, false
}
