package canvas

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval approximates a 60 Hz display refresh.
const DefaultFrameInterval = 16 * time.Millisecond

// Frame describes the current state of the video source. Ready is false while
// the source has insufficient buffered data.
type Frame struct {
	Width  int
	Height int
	Ready  bool
}

// FrameSource provides the current video frame. The underlying media element
// is owned by the caller; the compositor only reads from it.
type FrameSource interface {
	Frame() Frame
}

// SourceFunc adapts a plain function to the FrameSource interface.
type SourceFunc func() Frame

// Frame implements FrameSource.
func (f SourceFunc) Frame() Frame { return f() }

// Surface is the output drawing target. The compositor is its exclusive
// writer.
type Surface interface {
	// DrawFrame draws the crop sub-region of the source frame, scaled to
	// cover the full output surface.
	DrawFrame(f Frame, crop Rect)
}

// Compositor continuously draws a center-cropped, aspect-correct copy of the
// current video frame onto the output surface.
type Compositor struct {
	src      FrameSource
	out      Surface
	ratio    AspectRatio
	interval time.Duration
	onDraw   func()
}

// NewCompositor returns a compositor drawing src onto out at the given target
// ratio. If interval is not positive, DefaultFrameInterval is used. onDraw,
// if non-nil, is called after every successful draw (e.g. for metrics).
func NewCompositor(src FrameSource, out Surface, ratio AspectRatio, interval time.Duration, onDraw func()) *Compositor {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Compositor{src: src, out: out, ratio: ratio, interval: interval, onDraw: onDraw}
}

// Run draws once per frame interval until ctx is cancelled. Frames that are
// not ready or have zero dimensions are skipped rather than treated as
// errors. Run blocks; callers typically run it in its own goroutine. When it
// returns, no further draws are scheduled.
func (c *Compositor) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.drawOnce()
		}
	}
}

func (c *Compositor) drawOnce() {
	f := c.src.Frame()
	if !f.Ready {
		return
	}
	crop, ok := CropRect(float64(f.Width), float64(f.Height), c.ratio)
	if !ok {
		return
	}
	c.out.DrawFrame(f, crop)
	if c.onDraw != nil {
		c.onDraw()
	}
}

// MemorySurface records the most recent draw. It stands in for a real
// rendering target and is what the session service and tests observe.
type MemorySurface struct {
	mu    sync.Mutex
	last  Rect
	frame Frame
	draws int64
}

// NewMemorySurface returns an empty surface.
func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

// DrawFrame implements Surface.
func (s *MemorySurface) DrawFrame(f Frame, crop Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = f
	s.last = crop
	s.draws++
}

// LastDraw returns the most recent frame and crop, and whether anything has
// been drawn yet.
func (s *MemorySurface) LastDraw() (Frame, Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.last, s.draws > 0
}

// Draws returns the total number of draws.
func (s *MemorySurface) Draws() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}
