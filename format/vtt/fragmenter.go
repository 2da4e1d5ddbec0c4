// Package vtt implements the WebVTT-in-ISO-BMFF fragmenter: it consumes
// time-stamped WebVTT cues in presentation-time order and emits a strictly
// non-overlapping, time-contiguous sequence of samples, each carrying the
// serialized box structures of every cue active over its interval.
//
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package vtt

import (
	"github.com/teocci/go-stream-av/format/mp4/mp4io"
)

// OutputSample is a half-open interval [PTS, PTS+Duration) and the
// serialized box data covering it.
type OutputSample struct {
	PTS      uint64
	Duration uint64
	Data     []byte
}

// emptyCueBox is the precomputed 8-byte 'vtte' marker emitted for any
// interval during which no cue is active.
var emptyCueBox = func() []byte {
	b := &mp4io.VTTEmptyCueBox{}
	buf := make([]byte, b.Len())
	b.Marshal(buf)
	return buf
}()

// Fragmenter is the push/flush/pop façade that drives the sweep-line
// decomposition of active cues into non-overlapping samples. It is not
// safe for concurrent use: every operation runs synchronously on the
// caller's goroutine, there is no background work and no I/O.
type Fragmenter struct {
	cursor      uint64
	started     bool
	nextArrival uint64
	active      *activeSet
	pending     *sampleQueue
}

// NewFragmenter returns an empty Fragmenter ready to accept pushed cues.
func NewFragmenter() *Fragmenter {
	return &Fragmenter{
		active:  newActiveSet(),
		pending: newSampleQueue(),
	}
}

// PushSample pushes one cue. Precondition: cue.Duration > 0 (panics
// otherwise), and cue.StartTime is non-decreasing across successive calls;
// the fragmenter does not reorder input. A cue starting before the cursor
// (the end of already-emitted output) is accepted only while it starts
// before the earliest end in the active set; otherwise PushSample panics.
// Other ordering violations are not detected.
// PushSample may synchronously enqueue zero or more completed output
// samples onto the pending queue.
func (f *Fragmenter) PushSample(cue Cue) {
	if cue.Duration == 0 {
		panic("vtt: PushSample: cue duration must be > 0")
	}

	switch {
	case !f.started:
		f.cursor = cue.StartTime
		f.started = true
	case cue.StartTime > f.cursor:
		f.advanceTo(cue.StartTime)
	case cue.StartTime < f.cursor:
		if f.active.len() == 0 || cue.StartTime >= f.active.earliestEnd() {
			panic("vtt: PushSample: cue.StartTime is before the already-emitted timeline")
		}
	}

	f.active.insert(&activeEntry{
		cue:     cue,
		endTime: cue.EndTime(),
		arrival: f.nextArrival,
	})
	f.nextArrival++
}

// Flush drains the active set: every remaining active interval is emitted
// in order, and the active set is left empty. No trailing gap sample is
// emitted after the last cue ends.
func (f *Fragmenter) Flush() {
	for f.active.len() > 0 {
		f.drainNext()
	}
}

// ReadySamplesSize returns the number of completed output samples waiting
// to be popped.
func (f *Fragmenter) ReadySamplesSize() int {
	return f.pending.len()
}

// PopSample removes and returns the oldest completed output sample.
// Precondition: ReadySamplesSize() > 0.
func (f *Fragmenter) PopSample() OutputSample {
	return f.pending.pop()
}

// advanceTo moves the cursor forward to target, emitting one output sample
// per maximal interval over which the active set stays constant, evicting
// expired cues along the way.
func (f *Fragmenter) advanceTo(target uint64) {
	for f.active.len() > 0 && f.active.earliestEnd() <= target {
		f.drainNext()
	}
	if target > f.cursor {
		f.emit(f.cursor, target)
		f.cursor = target
	}
}

// drainNext emits the sample covering [cursor, earliestEnd), advances the
// cursor to it, and evicts every entry ending exactly there.
func (f *Fragmenter) drainNext() {
	tNext := f.active.earliestEnd()
	if f.cursor != tNext {
		f.emit(f.cursor, tNext)
	}
	f.cursor = tNext
	f.active.popAllEndingAtOrBefore(tNext)
}

// emit composes and queues the sample covering [a, b) from the active set
// as it stands right now.
func (f *Fragmenter) emit(a, b uint64) {
	f.pending.push(OutputSample{
		PTS:      a,
		Duration: b - a,
		Data:     f.composeData(),
	})
}

func (f *Fragmenter) composeData() []byte {
	entries := f.active.iterateInArrivalOrder()
	if len(entries) == 0 {
		data := make([]byte, len(emptyCueBox))
		copy(data, emptyCueBox)
		return data
	}
	var data []byte
	for _, e := range entries {
		data = mp4io.AppendBoxToVector(e.cue.box(), data)
	}
	return data
}
