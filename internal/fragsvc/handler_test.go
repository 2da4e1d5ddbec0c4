// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	repo := NewInMemoryRepository()
	svc := NewService(repo)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewHandler(svc, log, nil, 1000)
}

func newTestRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/tracks/{track_id}", func(r chi.Router) {
		r.Post("/cues", h.PushCue)
		r.Post("/flush", h.Flush)
		r.Get("/ready", h.Ready)
		r.Delete("/", h.DeleteTrack)
	})
	return r
}

func TestHandler_PushCue(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	body := map[string]interface{}{"start_time": 0, "duration": 2000, "payload": "hi"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/tracks/t1/cues", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_PushCue_VTTBody(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	body := "WEBVTT\n\n00:00:00.000 --> 00:00:02.000\nhi\n\n00:00:02.000 --> 00:00:03.000\nbye\n"

	req := httptest.NewRequest(http.MethodPost, "/tracks/t5/cues", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "text/vtt")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/tracks/t5/ready", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var got ReadyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	if got.Ready != 1 {
		t.Errorf("Ready = %d, want 1 (first cue becomes ready once the second cue's start is seen)", got.Ready)
	}
}

func TestHandler_PushCue_VTTBody_Malformed(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/tracks/t6/cues", bytes.NewReader([]byte("not a vtt file")))
	req.Header.Set("Content-Type", "text/vtt")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_PushCue_ZeroDurationConflict(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	body := map[string]interface{}{"start_time": 0, "duration": 0, "payload": "hi"}
	b, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/tracks/t1/cues", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestHandler_FlushUnknownTrack(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/tracks/ghost/flush", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_PushThenFlush(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	push := func(start, dur int, payload string) {
		body := map[string]interface{}{"start_time": start, "duration": dur, "payload": payload}
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/tracks/t2/cues", bytes.NewReader(b))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("push cue: expected 201, got %d", rec.Code)
		}
	}
	push(0, 2000, "hi")
	push(2000, 1000, "hello")

	req := httptest.NewRequest(http.MethodPost, "/tracks/t2/flush", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("flush: expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("flush: expected non-empty body")
	}
	if got := rec.Header().Get("Content-Type"); got != fragmentContentType {
		t.Errorf("Content-Type = %q, want %q", got, fragmentContentType)
	}
}

func TestHandler_Ready(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	body := map[string]interface{}{"start_time": 0, "duration": 1000, "payload": "hi"}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/tracks/t3/cues", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/tracks/t3/ready", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", rec.Code)
	}
	var got ReadyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	if got.Ready != 0 {
		t.Errorf("Ready = %d, want 0 (sample not yet emitted before a later push or flush)", got.Ready)
	}
}

func TestHandler_DeleteTrack(t *testing.T) {
	h := newTestHandler(t)
	r := newTestRouter(h)

	body := map[string]interface{}{"start_time": 0, "duration": 1000, "payload": "hi"}
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/tracks/t4/cues", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodDelete, "/tracks/t4/", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/tracks/t4/ready", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("ready after delete: expected 404, got %d", rec.Code)
	}
}
