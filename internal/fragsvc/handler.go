// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/teocci/go-stream-av/internal/platform/metrics"

	"github.com/teocci/go-stream-av/format/mp4/mp4io"
	"github.com/teocci/go-stream-av/format/vtt"
	"github.com/teocci/go-stream-av/format/webvtt"
	"github.com/teocci/go-stream-av/utils/bits/pio"
)

const (
	fragmentContentType = "application/octet-stream"
	vttContentType      = "text/vtt"

	// defaultTimescale is used when a Handler is constructed with a zero
	// timescale (e.g. in tests that don't care about tick conversion).
	defaultTimescale = 1000
)

// Handler exposes fragsvc HTTP endpoints using go-chi.
type Handler struct {
	svc       *Service
	log       *slog.Logger
	metrics   *metrics.Metrics
	timescale uint64
}

// NewHandler returns a Handler that uses the given Service, Logger, and
// optional Metrics. Metrics may be nil to disable metric recording (e.g.
// in tests). timescale is the tick rate used to convert raw WebVTT
// timestamps pushed via a text/vtt body; a zero timescale falls back to
// defaultTimescale.
func NewHandler(svc *Service, log *slog.Logger, m *metrics.Metrics, timescale uint64) *Handler {
	if timescale == 0 {
		timescale = defaultTimescale
	}
	return &Handler{svc: svc, log: log, metrics: m, timescale: timescale}
}

// NewTrackID generates a fresh, opaque track identifier for callers that
// do not supply one of their own.
func NewTrackID() TrackID {
	return TrackID(uuid.NewString())
}

// PushCue handles POST /tracks/{track_id}/cues. The body is either a raw
// WebVTT document (Content-Type: text/vtt, parsed via format/webvtt and
// pushed one cue at a time in file order) or a JSON envelope
// {"start_time":0,"duration":2000,"identifier":"","settings":"","payload":"hi"}.
func (h *Handler) PushCue(w http.ResponseWriter, r *http.Request) {
	trackID := TrackID(chi.URLParam(r, "track_id"))
	if trackID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var cues []vtt.Cue
	if isVTTBody(r.Header.Get("Content-Type")) {
		parsed, err := h.parseVTTBody(r.Body)
		if err != nil {
			h.log.Debug("invalid vtt body", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		cues = parsed
	} else {
		var req CueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log.Debug("invalid cue body", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		cues = []vtt.Cue{req.Cue()}
	}

	for _, cue := range cues {
		if err := h.svc.PushCue(trackID, cue); err != nil {
			switch {
			case errors.Is(err, ErrZeroDuration), errors.Is(err, ErrOutOfOrder):
				h.log.Info("cue rejected",
					slog.String("track_id", string(trackID)),
					slog.String("error", err.Error()))
				w.WriteHeader(http.StatusConflict)
				return
			default:
				h.log.Error("push cue failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
		}
		h.log.Debug("cue pushed",
			slog.String("track_id", string(trackID)),
			slog.Uint64("start_time", cue.StartTime))
		if h.metrics != nil {
			h.metrics.IncCuesPushed()
		}
	}

	w.WriteHeader(http.StatusCreated)
}

// isVTTBody reports whether contentType names a raw WebVTT document rather
// than the JSON cue envelope.
func isVTTBody(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), vttContentType)
}

// parseVTTBody parses a complete WEBVTT document from body and returns its
// cues in file order.
func (h *Handler) parseVTTBody(body io.Reader) ([]vtt.Cue, error) {
	var cues []vtt.Cue
	p := webvtt.NewParser()
	if err := p.Parse(body, h.timescale, func(c vtt.Cue) {
		cues = append(cues, c)
	}); err != nil {
		return nil, err
	}
	return cues, nil
}

// Flush handles POST /tracks/{track_id}/flush.
func (h *Handler) Flush(w http.ResponseWriter, r *http.Request) {
	trackID := TrackID(chi.URLParam(r, "track_id"))
	if trackID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	moof, mdat, err := h.svc.Flush(trackID)
	if err != nil {
		if errors.Is(err, ErrUnknownTrack) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.log.Error("flush failed", slog.String("track_id", string(trackID)), slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	moofBuf := make([]byte, moof.Len())
	moof.Marshal(moofBuf)

	mdatBuf := make([]byte, len(mdat)+8)
	pio.PutU32BE(mdatBuf[0:], uint32(len(mdatBuf)))
	pio.PutU32BE(mdatBuf[4:], uint32(mp4io.MDAT))
	copy(mdatBuf[8:], mdat)

	w.Header().Set("Content-Type", fragmentContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(moofBuf)
	w.Write(mdatBuf)

	if h.metrics != nil {
		h.metrics.IncFragmentsWritten()
	}
}

// Ready handles GET /tracks/{track_id}/ready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	trackID := TrackID(chi.URLParam(r, "track_id"))
	if trackID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	n, err := h.svc.ReadySamples(trackID)
	if err != nil {
		if errors.Is(err, ErrUnknownTrack) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ReadyResponse{Ready: n})
}

// DeleteTrack handles DELETE /tracks/{track_id}.
func (h *Handler) DeleteTrack(w http.ResponseWriter, r *http.Request) {
	trackID := TrackID(chi.URLParam(r, "track_id"))
	if trackID == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.svc.DeleteTrack(trackID)
	h.log.Info("track deleted", slog.String("track_id", string(trackID)))
	w.WriteHeader(http.StatusOK)
}
