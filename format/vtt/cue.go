// Package vtt
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package vtt

import (
	"github.com/teocci/go-stream-av/format/mp4/mp4io"
)

// Cue is one WebVTT cue handed to the fragmenter by the parser. Start and
// duration are in a timescale chosen by the caller; the fragmenter never
// converts between units. Cue is immutable once pushed.
type Cue struct {
	Identifier []byte
	StartTime  uint64
	Duration   uint64
	Settings   []byte
	Payload    []byte
}

// EndTime returns StartTime + Duration.
func (c Cue) EndTime() uint64 {
	return c.StartTime + c.Duration
}

func (c Cue) box() *mp4io.VTTCueBox {
	return &mp4io.VTTCueBox{
		Identifier: c.Identifier,
		Settings:   c.Settings,
		Payload:    c.Payload,
	}
}

// activeEntry is a Cue plus the bookkeeping the active set needs: its
// derived end time and its arrival index, the monotonically increasing
// counter assigned on push that fixes the cue's position in every output
// sample it appears in.
type activeEntry struct {
	cue     Cue
	endTime uint64
	arrival uint64
}
