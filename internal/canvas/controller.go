package canvas

import "sync"

// Edge is one side of a selection outline, in display space. The four edges
// are exposed independently so each can be styled on its own.
type Edge struct {
	Side string `json:"side"` // "top", "right", "bottom", "left"
	From Point  `json:"from"`
	To   Point  `json:"to"`
}

// Controller translates pointer gestures in display space into layer
// mutations in canvas space. At most one layer is selected at a time, and
// selecting a layer never moves it. The containerScale is passed with each
// event rather than stored, so it can never desync from the geometry it is
// derived from.
type Controller struct {
	mu       sync.Mutex
	layers   *LayerStore
	selected string
	dragging bool
	// pointerStart is in display space, layerStart in canvas space.
	pointerStart Point
	layerStart   Point
}

// NewController returns a controller operating on the given layer store.
func NewController(layers *LayerStore) *Controller {
	return &Controller{layers: layers}
}

// Selected returns the id of the selected layer, if any.
func (c *Controller) Selected() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.selected != ""
}

// Select marks a layer as selected without moving it.
func (c *Controller) Select(id string) error {
	if _, ok := c.layers.Get(id); !ok {
		return ErrLayerNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = id
	return nil
}

// ClearSelection deselects any selected layer and abandons an in-flight drag.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = ""
	c.dragging = false
}

// PointerDown starts a gesture at a display-space position. A hit on a layer
// selects it and begins a drag; a hit on the background clears the selection.
func (c *Controller) PointerDown(p Point, containerScale float64) {
	if containerScale <= 0 {
		return
	}

	layer, ok := c.layers.HitTest(ToCanvas(p, containerScale))

	c.mu.Lock()
	defer c.mu.Unlock()

	if !ok {
		c.selected = ""
		c.dragging = false
		return
	}

	c.selected = layer.ID
	c.dragging = true
	c.pointerStart = p
	c.layerStart = Point{X: layer.X, Y: layer.Y}
}

// PointerMove updates the dragged layer's position: the display-space delta
// from the drag origin is converted to canvas space and added to the layer's
// starting position. Moves outside the layer's own bounds still apply, so a
// fast drag is never lost.
func (c *Controller) PointerMove(p Point, containerScale float64) {
	c.mu.Lock()
	if !c.dragging || containerScale <= 0 {
		c.mu.Unlock()
		return
	}
	id := c.selected
	x := c.layerStart.X + (p.X-c.pointerStart.X)/containerScale
	y := c.layerStart.Y + (p.Y-c.pointerStart.Y)/containerScale
	c.mu.Unlock()

	// Ignore a layer that vanished mid-drag; the gesture ends harmlessly.
	_ = c.layers.SetPosition(id, x, y)
}

// PointerUp ends the current drag. Safe to call when no drag is active.
func (c *Controller) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
}

// Cancel abandons any in-flight drag without clearing the selection. It is
// idempotent and is the teardown path for an unmount mid-drag.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dragging = false
}

// Dragging reports whether a drag gesture is in flight.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// Outline returns the selected layer's bounding outline as four independent
// edges in display space, recomputed from the layer's current geometry.
func (c *Controller) Outline(containerScale float64) ([]Edge, bool) {
	c.mu.Lock()
	id := c.selected
	c.mu.Unlock()

	if id == "" {
		return nil, false
	}
	layer, ok := c.layers.Get(id)
	if !ok {
		return nil, false
	}

	tl := ToDisplay(Point{X: layer.X, Y: layer.Y}, containerScale)
	br := ToDisplay(Point{X: layer.X + layer.Width, Y: layer.Y + layer.Height}, containerScale)
	tr := Point{X: br.X, Y: tl.Y}
	bl := Point{X: tl.X, Y: br.Y}

	return []Edge{
		{Side: "top", From: tl, To: tr},
		{Side: "right", From: tr, To: br},
		{Side: "bottom", From: br, To: bl},
		{Side: "left", From: bl, To: tl},
	}, true
}
