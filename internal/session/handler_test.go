package session

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"caption-canvas/internal/captions"
	"caption-canvas/internal/editor"
	"caption-canvas/internal/media"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := editor.NewInMemoryCaptionStore()
	style := captions.DefaultStyle()
	store.Seed("clip1", captions.Data{Words: testWords(), Style: &style})

	svc := NewService(
		NewInMemoryRepository(),
		store,
		editor.NewStaticTemplateCatalog(),
		stubProber{info: media.SourceInfo{Width: 1920, Height: 1080}},
		Config{Debounce: time.Hour, FrameInterval: time.Millisecond},
	)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	h := NewHandler(svc, log, nil)

	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, r http.Handler) View {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/sessions", map[string]any{
		"clip_id":      "clip1",
		"source_url":   "clip.mp4",
		"start_time":   10.0,
		"end_time":     22.0,
		"target_ratio": "9:16",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	var view View
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return view
}

func TestHandler_CreateSession(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)

	if view.ID == "" || view.Ratio != "9:16" {
		t.Errorf("unexpected view: %+v", view)
	}
	if len(view.Layers) != 1 || view.Layers[0].Kind != "fill" {
		t.Errorf("expected one fill layer, got %+v", view.Layers)
	}
}

func TestHandler_CreateSession_bad_request(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/sessions", map[string]any{"clip_id": "clip1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing source: expected 400, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, "/sessions", map[string]any{
		"clip_id": "clip1", "source_url": "clip.mp4", "target_ratio": "4:3",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad ratio: expected 400, got %d", rec.Code)
	}
}

func TestHandler_CreateSession_unknown_clip(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/sessions", map[string]any{
		"clip_id": "missing", "source_url": "clip.mp4", "target_ratio": "9:16",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_GetDisplay(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)

	rec := doJSON(t, r, http.MethodGet, "/sessions/"+string(view.ID)+"/display?w=540&h=2000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var d DisplayView
	_ = json.Unmarshal(rec.Body.Bytes(), &d)
	if d.ContainerScale != 0.5 {
		t.Errorf("containerScale %g", d.ContainerScale)
	}

	rec = doJSON(t, r, http.MethodGet, "/sessions/"+string(view.ID)+"/display", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing container dims: expected 400, got %d", rec.Code)
	}
}

func TestHandler_pointer_drag(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	path := "/sessions/" + string(view.ID) + "/pointer"

	send := func(typ string, x, y float64) *httptest.ResponseRecorder {
		return doJSON(t, r, http.MethodPost, path, map[string]any{
			"type": typ, "x": x, "y": y, "container_width": 540.0, "container_height": 960.0,
		})
	}

	if rec := send("down", 100, 100); rec.Code != http.StatusOK {
		t.Fatalf("down: %d", rec.Code)
	}
	if rec := send("move", 150, 120); rec.Code != http.StatusOK {
		t.Fatalf("move: %d", rec.Code)
	}
	rec := send("up", 150, 120)
	if rec.Code != http.StatusOK {
		t.Fatalf("up: %d", rec.Code)
	}

	var after View
	_ = json.Unmarshal(rec.Body.Bytes(), &after)
	if after.Layers[0].X != 100 || after.Layers[0].Y != 40 {
		t.Errorf("fill should land at (100, 40), got (%g, %g)", after.Layers[0].X, after.Layers[0].Y)
	}
	if after.Selection == "" || len(after.Outline) != 4 {
		t.Errorf("expected a selection with 4 outline edges: %+v", after)
	}

	if rec := send("sideways", 0, 0); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown pointer type: expected 400, got %d", rec.Code)
	}
}

func TestHandler_active_caption(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)

	rec := doJSON(t, r, http.MethodGet, "/sessions/"+string(view.ID)+"/captions/active?t=10.5", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var ac ActiveCaptionView
	_ = json.Unmarshal(rec.Body.Bytes(), &ac)
	if !ac.Active || ac.CaptionLayerID == "" {
		t.Errorf("expected an active caption with a layer: %+v", ac)
	}

	rec = doJSON(t, r, http.MethodGet, "/sessions/"+string(view.ID)+"/captions/active", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing t: expected 400, got %d", rec.Code)
	}
}

func TestHandler_edit_word_and_undo(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	base := "/sessions/" + string(view.ID) + "/captions"

	rec := doJSON(t, r, http.MethodPut, base+"/words/w1", map[string]any{"word": "hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit: expected 200, got %d", rec.Code)
	}
	var state CaptionStateView
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Words[0].Text != "hi" || !state.Dirty {
		t.Errorf("unexpected state: %+v", state)
	}

	rec = doJSON(t, r, http.MethodPost, base+"/undo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo: expected 200, got %d", rec.Code)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Words[0].Text != "hello" {
		t.Errorf("undo should restore hello, got %q", state.Words[0].Text)
	}

	// Nothing left to undo.
	rec = doJSON(t, r, http.MethodPost, base+"/undo", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("empty undo stack: expected 409, got %d", rec.Code)
	}
}

func TestHandler_edit_word_refusals(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	base := "/sessions/" + string(view.ID) + "/captions"

	rec := doJSON(t, r, http.MethodPut, base+"/words/missing", map[string]any{"word": "x"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown word: expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPut, base+"/words/w1", map[string]any{"word": "  "})
	if rec.Code != http.StatusConflict {
		t.Errorf("empty text: expected 409, got %d", rec.Code)
	}
}

func TestHandler_remove_words_until_refused(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	base := "/sessions/" + string(view.ID) + "/captions"

	for _, id := range []string{"w1", "w2"} {
		rec := doJSON(t, r, http.MethodDelete, base+"/words/"+id, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("remove %s: expected 200, got %d", id, rec.Code)
		}
	}

	rec := doJSON(t, r, http.MethodDelete, base+"/words/w3", nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("removing the last word: expected 409, got %d", rec.Code)
	}
}

func TestHandler_style_and_template(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	base := "/sessions/" + string(view.ID) + "/captions"

	rec := doJSON(t, r, http.MethodPatch, base+"/style", map[string]any{"highlightColor": "#123456"})
	if rec.Code != http.StatusOK {
		t.Fatalf("style: expected 200, got %d", rec.Code)
	}
	var state CaptionStateView
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Style == nil || state.Style.HighlightColor != "#123456" {
		t.Errorf("style not applied: %+v", state.Style)
	}

	rec = doJSON(t, r, http.MethodPost, base+"/template/bold", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("template: expected 200, got %d", rec.Code)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.TemplateID != "bold" {
		t.Errorf("template id %q", state.TemplateID)
	}

	rec = doJSON(t, r, http.MethodPost, base+"/template/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown template: expected 404, got %d", rec.Code)
	}
}

func TestHandler_save_and_reset(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	base := "/sessions/" + string(view.ID) + "/captions"

	_ = doJSON(t, r, http.MethodPut, base+"/words/w1", map[string]any{"word": "edited"})

	rec := doJSON(t, r, http.MethodPost, base+"/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", rec.Code)
	}
	var state CaptionStateView
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Dirty {
		t.Error("manual save should clear the dirty flag")
	}

	rec = doJSON(t, r, http.MethodPost, base+"/reset", map[string]any{"reset_style": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: expected 200, got %d", rec.Code)
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Words[0].Text != "hello" || state.CanUndo {
		t.Errorf("reset should restore defaults and clear history: %+v", state)
	}
}

func TestHandler_delete_session_idempotent(t *testing.T) {
	r := newTestRouter(t)
	view := createSession(t, r)
	path := "/sessions/" + string(view.ID)

	if rec := doJSON(t, r, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodDelete, path, nil); rec.Code != http.StatusNoContent {
		t.Errorf("second delete: expected 204, got %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestHandler_templates(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/templates", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var templates []captions.Template
	_ = json.Unmarshal(rec.Body.Bytes(), &templates)
	if len(templates) == 0 {
		t.Error("expected at least one template")
	}
}
