// Package fragsvc
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package fragsvc

import (
	"errors"
	"testing"

	"github.com/teocci/go-stream-av/format/vtt"
)

func TestService_PushCue_RejectsZeroDuration(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	err := svc.PushCue(TrackID("t1"), vtt.Cue{Payload: []byte("hi"), StartTime: 0, Duration: 0})
	if !errors.Is(err, ErrZeroDuration) {
		t.Fatalf("PushCue error = %v, want ErrZeroDuration", err)
	}
}

func TestService_PushCue_And_Flush(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	trackID := TrackID("t2")

	if err := svc.PushCue(trackID, vtt.Cue{Payload: []byte("hi"), StartTime: 0, Duration: 2000}); err != nil {
		t.Fatalf("PushCue: %v", err)
	}

	n, err := svc.ReadySamples(trackID)
	if err != nil {
		t.Fatalf("ReadySamples: %v", err)
	}
	if n != 0 {
		t.Errorf("ReadySamples() before flush = %d, want 0", n)
	}

	moof, _, err := svc.Flush(trackID)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if len(moof.Tracks[0].Run.Entries) != 1 {
		t.Errorf("entries = %d, want 1", len(moof.Tracks[0].Run.Entries))
	}
}

func TestService_ActiveTrackCount(t *testing.T) {
	svc := NewService(NewInMemoryRepository())
	_ = svc.PushCue(TrackID("a"), vtt.Cue{Payload: []byte("x"), StartTime: 0, Duration: 1000})
	_ = svc.PushCue(TrackID("b"), vtt.Cue{Payload: []byte("y"), StartTime: 0, Duration: 1000})

	if got := svc.ActiveTrackCount(); got != 2 {
		t.Errorf("ActiveTrackCount() = %d, want 2", got)
	}

	svc.DeleteTrack(TrackID("a"))
	if got := svc.ActiveTrackCount(); got != 1 {
		t.Errorf("ActiveTrackCount() after delete = %d, want 1", got)
	}
}
