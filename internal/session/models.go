package session

import (
	"context"

	"caption-canvas/internal/canvas"
	"caption-canvas/internal/captions"
	"caption-canvas/internal/editor"
)

// ID uniquely identifies a preview session.
type ID string

// Source describes the playable media behind a session. The media element
// itself lives in the client; the server only needs its identity and
// dimensions.
type Source struct {
	URL       string `json:"url"`
	PosterURL string `json:"poster_url,omitempty"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Clip bounds playback to a sub-range of a longer source. Caption word times
// are relative to Start.
type Clip struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
}

// Session is the server-side state of one preview: the canvas with its
// layers, the running compositor, and the caption editor for the clip.
type Session struct {
	ID         ID
	ClipID     string
	Source     Source
	Clip       Clip
	Ratio      canvas.AspectRatio
	Layers     *canvas.LayerStore
	Controller *canvas.Controller
	Surface    *canvas.MemorySurface
	Editor     *editor.Editor
	Tracker    *captions.Tracker

	// cancel stops the compositor goroutine; teardown must leave no
	// dangling frame loop.
	cancel context.CancelFunc
}

// teardown stops the compositor and the editor's autosave timer. Idempotent.
func (s *Session) teardown() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.Controller.Cancel()
	s.Editor.Close()
}

// PointerEventType is the gesture phase reported by the client.
type PointerEventType string

const (
	PointerDown   PointerEventType = "down"
	PointerMove   PointerEventType = "move"
	PointerUp     PointerEventType = "up"
	PointerCancel PointerEventType = "cancel"
)

// PointerEvent is a display-space pointer sample plus the container size it
// was measured in, from which the containerScale is derived per event.
type PointerEvent struct {
	Type       PointerEventType `json:"type"`
	X          float64          `json:"x"`
	Y          float64          `json:"y"`
	ContainerW float64          `json:"container_width"`
	ContainerH float64          `json:"container_height"`
}

// CreateRequest is the payload for opening a session.
type CreateRequest struct {
	ClipID    string  `json:"clip_id"`
	SourceURL string  `json:"source_url"`
	PosterURL string  `json:"poster_url,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Ratio     string  `json:"target_ratio"`
}

// View is the session state returned to clients.
type View struct {
	ID        ID             `json:"id"`
	ClipID    string         `json:"clip_id"`
	Source    Source         `json:"source"`
	Clip      Clip           `json:"clip"`
	Ratio     string         `json:"target_ratio"`
	Native    canvas.Size    `json:"native_size"`
	Layers    []canvas.Layer `json:"layers"`
	Selection string         `json:"selection,omitempty"`
	Outline   []canvas.Edge  `json:"outline,omitempty"`
}

// DisplayView is the computed display geometry for a container.
type DisplayView struct {
	Display        canvas.Size `json:"display_size"`
	ContainerScale float64     `json:"container_scale"`
}

// CaptionStateView is the editor state returned to clients.
type CaptionStateView struct {
	Words      []captions.Word `json:"words"`
	Style      *captions.Style `json:"style,omitempty"`
	TemplateID string          `json:"template_id,omitempty"`
	IsEdited   bool            `json:"is_edited"`
	Dirty      bool            `json:"dirty"`
	CanUndo    bool            `json:"can_undo"`
	CanRedo    bool            `json:"can_redo"`
}

// ActiveCaptionView is the active segment at a playback time with derived
// presentation, or Active=false when no segment covers that time.
type ActiveCaptionView struct {
	Active bool `json:"active"`
	// Segment is meaningful only when Active.
	Segment captions.SegmentView `json:"segment,omitempty"`
	// ScrollIntoView is set only on frames where the active word changed.
	ScrollIntoView bool `json:"scroll_into_view"`
	// CaptionLayerID is the lazily created caption layer.
	CaptionLayerID string `json:"caption_layer_id,omitempty"`
}
