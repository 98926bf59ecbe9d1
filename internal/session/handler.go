package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"caption-canvas/internal/canvas"
	"caption-canvas/internal/captions"
	"caption-canvas/internal/editor"
	"caption-canvas/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the session HTTP endpoints using go-chi.
type Handler struct {
	svc     *Service
	log     *slog.Logger
	metrics *metrics.Metrics
}

// NewHandler returns a Handler using the given Service, Logger, and optional
// Metrics. Metrics may be nil to disable metric recording (e.g. in tests).
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{svc: svc, log: log, metrics: m}
}

// Routes mounts all session endpoints onto a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/templates", h.ListTemplates)
	r.Post("/sessions", h.CreateSession)
	r.Route("/sessions/{session_id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.DeleteSession)
		r.Get("/display", h.GetDisplay)
		r.Post("/pointer", h.Pointer)
		r.Route("/captions", func(r chi.Router) {
			r.Get("/", h.GetCaptions)
			r.Get("/active", h.GetActiveCaption)
			r.Post("/words", h.InsertWord)
			r.Put("/words/{word_id}", h.EditWord)
			r.Delete("/words/{word_id}", h.RemoveWord)
			r.Patch("/style", h.SetStyle)
			r.Post("/template/{template_id}", h.ApplyTemplate)
			r.Post("/undo", h.Undo)
			r.Post("/redo", h.Redo)
			r.Post("/save", h.Save)
			r.Post("/reset", h.Reset)
		})
	})
}

// CreateSession handles POST /sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create session body", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if req.ClipID == "" || req.SourceURL == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	sess, err := h.svc.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, "create session", err)
		return
	}

	h.log.Info("session created",
		slog.String("session_id", string(sess.ID)),
		slog.String("clip_id", sess.ClipID),
		slog.String("ratio", string(sess.Ratio)))

	view, _ := h.svc.State(sess.ID, canvas.Size{})
	h.writeJSON(w, http.StatusCreated, view)
}

// GetSession handles GET /sessions/{session_id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	view, err := h.svc.State(id, containerFromQuery(r))
	if err != nil {
		h.writeError(w, "get session", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// DeleteSession handles DELETE /sessions/{session_id}. Idempotent.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))
	h.svc.Teardown(id)
	h.log.Info("session torn down", slog.String("session_id", string(id)))
	w.WriteHeader(http.StatusNoContent)
}

// GetDisplay handles GET /sessions/{session_id}/display?w=&h=.
func (h *Handler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	container := containerFromQuery(r)
	if container.Width <= 0 || container.Height <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	view, err := h.svc.Display(id, container)
	if err != nil {
		h.writeError(w, "get display", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// Pointer handles POST /sessions/{session_id}/pointer.
func (h *Handler) Pointer(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	var ev PointerEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	switch ev.Type {
	case PointerDown, PointerMove, PointerUp, PointerCancel:
	default:
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.svc.Pointer(id, ev); err != nil {
		h.writeError(w, "pointer", err)
		return
	}

	view, err := h.svc.State(id, canvas.Size{Width: ev.ContainerW, Height: ev.ContainerH})
	if err != nil {
		h.writeError(w, "pointer", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// GetCaptions handles GET /sessions/{session_id}/captions.
func (h *Handler) GetCaptions(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	view, err := h.svc.CaptionState(id)
	if err != nil {
		h.writeError(w, "get captions", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// GetActiveCaption handles GET /sessions/{session_id}/captions/active?t=.
func (h *Handler) GetActiveCaption(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	at, err := strconv.ParseFloat(r.URL.Query().Get("t"), 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	view, err := h.svc.ActiveCaption(id, at, containerFromQuery(r))
	if err != nil {
		h.writeError(w, "get active caption", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

// EditWord handles PUT /sessions/{session_id}/captions/words/{word_id}.
func (h *Handler) EditWord(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))
	wordID := chi.URLParam(r, "word_id")

	var body struct {
		Text string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.svc.EditWord(id, wordID, body.Text); err != nil {
		h.writeError(w, "edit word", err)
		return
	}
	h.captionState(w, id)
}

// InsertWord handles POST /sessions/{session_id}/captions/words.
func (h *Handler) InsertWord(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	var body struct {
		AfterID string `json:"after_id"`
		Text    string `json:"word"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	word, err := h.svc.InsertWord(id, body.AfterID, body.Text)
	if err != nil {
		h.writeError(w, "insert word", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, word)
}

// RemoveWord handles DELETE /sessions/{session_id}/captions/words/{word_id}.
func (h *Handler) RemoveWord(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))
	wordID := chi.URLParam(r, "word_id")

	if err := h.svc.RemoveWord(id, wordID); err != nil {
		h.writeError(w, "remove word", err)
		return
	}
	h.captionState(w, id)
}

// SetStyle handles PATCH /sessions/{session_id}/captions/style.
func (h *Handler) SetStyle(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	var body struct {
		captions.StylePatch
		TemplateID string `json:"template_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.svc.SetStyle(r.Context(), id, body.StylePatch, body.TemplateID); err != nil {
		h.writeError(w, "set style", err)
		return
	}
	h.captionState(w, id)
}

// ApplyTemplate handles POST /sessions/{session_id}/captions/template/{template_id}.
func (h *Handler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))
	templateID := chi.URLParam(r, "template_id")

	if err := h.svc.ApplyTemplate(r.Context(), id, templateID); err != nil {
		h.writeError(w, "apply template", err)
		return
	}
	h.captionState(w, id)
}

// Undo handles POST /sessions/{session_id}/captions/undo.
func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	ok, err := h.svc.Undo(id)
	if err != nil {
		h.writeError(w, "undo", err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusConflict)
		return
	}
	h.captionState(w, id)
}

// Redo handles POST /sessions/{session_id}/captions/redo.
func (h *Handler) Redo(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	ok, err := h.svc.Redo(id)
	if err != nil {
		h.writeError(w, "redo", err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusConflict)
		return
	}
	h.captionState(w, id)
}

// Save handles POST /sessions/{session_id}/captions/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	if err := h.svc.Save(r.Context(), id); err != nil {
		h.writeError(w, "save", err)
		return
	}
	h.captionState(w, id)
}

// Reset handles POST /sessions/{session_id}/captions/reset.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	id := ID(chi.URLParam(r, "session_id"))

	var body struct {
		ResetStyle bool `json:"reset_style"`
	}
	// An empty body means words-only reset.
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.svc.Reset(r.Context(), id, body.ResetStyle); err != nil {
		h.writeError(w, "reset", err)
		return
	}
	h.captionState(w, id)
}

// ListTemplates handles GET /templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.svc.Templates(r.Context())
	if err != nil {
		h.writeError(w, "list templates", err)
		return
	}
	h.writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) captionState(w http.ResponseWriter, id ID) {
	view, err := h.svc.CaptionState(id)
	if err != nil {
		h.writeError(w, "caption state", err)
		return
	}
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("encode response", slog.String("error", err.Error()))
	}
}

// writeError maps domain errors onto HTTP statuses. Refused edits are 409:
// the state was not mutated and the client can retry differently.
// Persistence failures are 502: local state was rolled back or kept dirty and
// the save will be retried.
func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var status int
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, editor.ErrWordNotFound),
		errors.Is(err, editor.ErrTemplateNotFound),
		errors.Is(err, editor.ErrClipNotFound):
		status = http.StatusNotFound
	case errors.Is(err, captions.ErrEmptyCaption),
		errors.Is(err, editor.ErrEmptyWordText),
		errors.Is(err, captions.ErrInvalidTiming):
		status = http.StatusConflict
	case errors.Is(err, canvas.ErrUnsupportedRatio),
		errors.Is(err, ErrMissingDimensions):
		status = http.StatusBadRequest
	default:
		status = http.StatusBadGateway
	}

	if status >= 500 {
		h.log.Error(op+" failed", slog.String("error", err.Error()))
	} else {
		h.log.Debug(op+" rejected", slog.String("error", err.Error()))
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// containerFromQuery reads optional ?w=&h= container dimensions.
func containerFromQuery(r *http.Request) canvas.Size {
	w, _ := strconv.ParseFloat(r.URL.Query().Get("w"), 64)
	h, _ := strconv.ParseFloat(r.URL.Query().Get("h"), 64)
	return canvas.Size{Width: w, Height: h}
}
