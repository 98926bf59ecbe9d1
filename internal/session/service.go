package session

import (
	"context"
	"errors"
	"time"

	"caption-canvas/internal/canvas"
	"caption-canvas/internal/captions"
	"caption-canvas/internal/editor"
	"caption-canvas/internal/media"

	"github.com/google/uuid"
)

// ErrMissingDimensions is returned when a session is created without source
// dimensions and no prober is available to resolve them.
var ErrMissingDimensions = errors.New("source dimensions unknown")

// Config tunes the Service.
type Config struct {
	// Debounce is the caption autosave quiet period.
	Debounce time.Duration
	// FrameInterval is the compositor tick; DefaultFrameInterval when zero.
	FrameInterval time.Duration
	// MaxSegmentWords caps words per caption segment; the shared default
	// applies when zero.
	MaxSegmentWords int
	// OnFrameDrawn, OnAutosave, and OnAutosaveError are metric hooks.
	OnFrameDrawn    func()
	OnAutosave      func(n int)
	OnAutosaveError func(error)
}

// Service owns session lifecycle and routes all interaction with a session's
// canvas, layers, and caption editor.
type Service struct {
	repo    Repository
	store   editor.CaptionStore
	catalog editor.TemplateCatalog
	prober  media.Prober
	cfg     Config
}

// NewService wires a Service. prober may be nil when clients always supply
// source dimensions.
func NewService(repo Repository, store editor.CaptionStore, catalog editor.TemplateCatalog, prober media.Prober, cfg Config) *Service {
	return &Service{repo: repo, store: store, catalog: catalog, prober: prober, cfg: cfg}
}

// Create opens a preview session: resolves source dimensions, builds the
// layer store and caption editor, and starts the compositor loop.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	ratio, err := canvas.ParseRatio(req.Ratio)
	if err != nil {
		return nil, err
	}

	src := Source{URL: req.SourceURL, PosterURL: req.PosterURL, Width: req.Width, Height: req.Height}
	if src.Width <= 0 || src.Height <= 0 {
		if s.prober == nil {
			return nil, ErrMissingDimensions
		}
		info, err := s.prober.Probe(ctx, req.SourceURL)
		if err != nil {
			return nil, err
		}
		src.Width, src.Height = info.Width, info.Height
	}

	ed, err := editor.New(ctx, req.ClipID, s.store, s.catalog, editor.Options{
		Debounce:    s.cfg.Debounce,
		OnSaved:     s.cfg.OnAutosave,
		OnSaveError: s.cfg.OnAutosaveError,
	})
	if err != nil {
		return nil, err
	}

	native := ratio.NativeSize()
	layers := canvas.NewLayerStore(native)

	sess := &Session{
		ID:         ID(uuid.NewString()),
		ClipID:     req.ClipID,
		Source:     src,
		Clip:       Clip{Start: req.StartTime, End: req.EndTime},
		Ratio:      ratio,
		Layers:     layers,
		Controller: canvas.NewController(layers),
		Surface:    canvas.NewMemorySurface(),
		Editor:     ed,
		Tracker:    captions.NewTracker(),
	}

	// The frame source mirrors the client's media element: frames become
	// available once the source has dimensions.
	frame := canvas.Frame{Width: src.Width, Height: src.Height, Ready: src.Width > 0 && src.Height > 0}
	comp := canvas.NewCompositor(
		canvas.SourceFunc(func() canvas.Frame { return frame }),
		sess.Surface, ratio, s.cfg.FrameInterval, s.cfg.OnFrameDrawn,
	)

	runCtx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	go comp.Run(runCtx)

	s.repo.Put(sess)
	return sess, nil
}

// Teardown stops a session's compositor and autosave and removes it.
// Tearing down an unknown session is a no-op.
func (s *Service) Teardown(id ID) {
	sess, ok := s.repo.Delete(id)
	if !ok {
		return
	}
	sess.teardown()
}

// ActiveCount returns the number of live sessions.
func (s *Service) ActiveCount() int {
	return s.repo.ActiveCount()
}

// State returns the session view. container may be zero, in which case the
// outline is reported in canvas-native units (scale 1).
func (s *Service) State(id ID, container canvas.Size) (View, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return View{}, ErrSessionNotFound
	}

	native := sess.Ratio.NativeSize()
	v := View{
		ID:     sess.ID,
		ClipID: sess.ClipID,
		Source: sess.Source,
		Clip:   sess.Clip,
		Ratio:  string(sess.Ratio),
		Native: native,
		Layers: sess.Layers.Layers(),
	}
	if sel, ok := sess.Controller.Selected(); ok {
		v.Selection = sel
		if edges, ok := sess.Controller.Outline(s.scaleFor(sess, container)); ok {
			v.Outline = edges
		}
	}
	return v, nil
}

// Display computes the on-screen size and conversion factor for a container.
func (s *Service) Display(id ID, container canvas.Size) (DisplayView, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return DisplayView{}, ErrSessionNotFound
	}

	native := sess.Ratio.NativeSize()
	display := canvas.FitDisplay(container, native)
	return DisplayView{
		Display:        display,
		ContainerScale: canvas.ContainerScale(display, native),
	}, nil
}

// Pointer applies a display-space pointer event to the session's controller.
func (s *Service) Pointer(id ID, ev PointerEvent) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}

	scale := s.scaleFor(sess, canvas.Size{Width: ev.ContainerW, Height: ev.ContainerH})
	p := canvas.Point{X: ev.X, Y: ev.Y}

	switch ev.Type {
	case PointerDown:
		sess.Controller.PointerDown(p, scale)
	case PointerMove:
		sess.Controller.PointerMove(p, scale)
	case PointerUp:
		sess.Controller.PointerUp()
	case PointerCancel:
		sess.Controller.Cancel()
	}
	return nil
}

// CaptionState returns the caption editor state.
func (s *Service) CaptionState(id ID) (CaptionStateView, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return CaptionStateView{}, ErrSessionNotFound
	}

	return CaptionStateView{
		Words:      sess.Editor.Words(),
		Style:      sess.Editor.Style(),
		TemplateID: sess.Editor.TemplateID(),
		IsEdited:   sess.Editor.IsEdited(),
		Dirty:      sess.Editor.Dirty(),
		CanUndo:    sess.Editor.CanUndo(),
		CanRedo:    sess.Editor.CanRedo(),
	}, nil
}

// ActiveCaption resolves the active segment and word at an absolute playback
// time. The first activation lazily creates the caption layer; the scroll
// hint is set only on frames where the active word changed.
func (s *Service) ActiveCaption(id ID, at float64, container canvas.Size) (ActiveCaptionView, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ActiveCaptionView{}, ErrSessionNotFound
	}

	rel := captions.ClipRelative(at, sess.Clip.Start)
	segments := sess.Editor.Segments(s.cfg.MaxSegmentWords)

	seg, active := captions.ActiveSegment(segments, rel)
	if !active {
		sess.Tracker.Observe(-1, -1)
		return ActiveCaptionView{Active: false}, nil
	}

	style := captions.DefaultStyle()
	if st := sess.Editor.Style(); st != nil {
		style = *st
	}

	layer := sess.Layers.EnsureCaptionLayer(captionLayerRect(sess.Ratio.NativeSize(), style.Position))
	scale := s.scaleFor(sess, container)
	view := captions.RenderSegment(seg, rel, style, scale)
	changed := sess.Tracker.Observe(seg.Index, captions.ActiveWordIndex(seg, rel))

	return ActiveCaptionView{
		Active:         true,
		Segment:        view,
		ScrollIntoView: changed,
		CaptionLayerID: layer.ID,
	}, nil
}

// EditWord replaces a word's text.
func (s *Service) EditWord(id ID, wordID, text string) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Editor.EditWord(wordID, text)
}

// InsertWord inserts a word after afterID (or at the front when empty).
func (s *Service) InsertWord(id ID, afterID, text string) (captions.Word, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return captions.Word{}, ErrSessionNotFound
	}
	return sess.Editor.InsertWord(afterID, text)
}

// RemoveWord deletes a word.
func (s *Service) RemoveWord(id ID, wordID string) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Editor.RemoveWord(wordID)
}

// SetStyle merges a style patch and persists it immediately.
func (s *Service) SetStyle(ctx context.Context, id ID, patch captions.StylePatch, templateID string) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Editor.SetStyle(ctx, patch, templateID)
}

// ApplyTemplate applies a catalog preset.
func (s *Service) ApplyTemplate(ctx context.Context, id ID, templateID string) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Editor.ApplyTemplate(ctx, templateID)
}

// Undo reverts the last caption edit.
func (s *Service) Undo(id ID) (bool, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return false, ErrSessionNotFound
	}
	return sess.Editor.Undo(), nil
}

// Redo reapplies the last undone edit.
func (s *Service) Redo(id ID) (bool, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return false, ErrSessionNotFound
	}
	return sess.Editor.Redo(), nil
}

// Save flushes pending caption edits immediately.
func (s *Service) Save(ctx context.Context, id ID) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Editor.Save(ctx)
}

// Reset restores the clip's generated captions.
func (s *Service) Reset(ctx context.Context, id ID, resetStyle bool) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Editor.ResetFromServer(ctx, resetStyle)
}

// Templates lists the style presets.
func (s *Service) Templates(ctx context.Context) ([]captions.Template, error) {
	return s.catalog.Templates(ctx)
}

// scaleFor derives the containerScale for a container size, falling back to
// canvas-native units when the container is unknown.
func (s *Service) scaleFor(sess *Session, container canvas.Size) float64 {
	if container.Width <= 0 || container.Height <= 0 {
		return 1
	}
	native := sess.Ratio.NativeSize()
	return canvas.ContainerScale(canvas.FitDisplay(container, native), native)
}

// captionLayerRect is the default placement of the lazily created caption
// layer: 80% of the canvas width, anchored by the style's vertical position.
func captionLayerRect(native canvas.Size, pos captions.Position) canvas.Rect {
	w := native.Width * 0.8
	h := native.Height * 0.15
	x := (native.Width - w) / 2

	var y float64
	switch pos {
	case captions.PositionTop:
		y = native.Height * 0.08
	case captions.PositionCenter:
		y = (native.Height - h) / 2
	default:
		y = native.Height*0.92 - h
	}
	return canvas.Rect{X: x, Y: y, Width: w, Height: h}
}
