// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import "github.com/teocci/go-stream-av/format/vtt"

// TrackID uniquely identifies a subtitle track.
type TrackID string

// CueRequest is the JSON envelope accepted by POST /tracks/{track_id}/cues
// when the request does not carry a raw WebVTT body.
type CueRequest struct {
	Identifier string `json:"identifier,omitempty"`
	StartTime  uint64 `json:"start_time"`
	Duration   uint64 `json:"duration"`
	Settings   string `json:"settings,omitempty"`
	Payload    string `json:"payload"`
}

// Cue converts the JSON envelope into a vtt.Cue.
func (r CueRequest) Cue() vtt.Cue {
	cue := vtt.Cue{
		StartTime: r.StartTime,
		Duration:  r.Duration,
		Payload:   []byte(r.Payload),
	}
	if r.Identifier != "" {
		cue.Identifier = []byte(r.Identifier)
	}
	if r.Settings != "" {
		cue.Settings = []byte(r.Settings)
	}
	return cue
}

// ReadyResponse is returned by GET /tracks/{track_id}/ready.
type ReadyResponse struct {
	Ready int `json:"ready"`
}
