// Package vtt
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package vtt

import (
	"bytes"
	"testing"

	"github.com/teocci/go-stream-av/format/mp4/mp4io"
)

func cueBoxBytes(text string) []byte {
	box := &mp4io.VTTCueBox{Payload: []byte(text)}
	return mp4io.AppendBoxToVector(box, nil)
}

func concatBoxes(texts ...string) []byte {
	var out []byte
	for _, t := range texts {
		out = append(out, cueBoxBytes(t)...)
	}
	return out
}

func emptyBoxBytes() []byte {
	box := &mp4io.VTTEmptyCueBox{}
	return mp4io.AppendBoxToVector(box, nil)
}

func cue(text string, start, dur uint64) Cue {
	return Cue{Payload: []byte(text), StartTime: start, Duration: dur}
}

type wantSample struct {
	pts, dur uint64
	data     []byte
}

func checkSamples(t *testing.T, f *Fragmenter, want []wantSample) {
	t.Helper()
	if got := f.ReadySamplesSize(); got != len(want) {
		t.Fatalf("ReadySamplesSize() = %d, want %d", got, len(want))
	}
	for i, w := range want {
		s := f.PopSample()
		if s.PTS != w.pts || s.Duration != w.dur {
			t.Errorf("sample %d: [%d,%d), want [%d,%d)", i, s.PTS, s.PTS+s.Duration, w.pts, w.pts+w.dur)
		}
		if !bytes.Equal(s.Data, w.data) {
			t.Errorf("sample %d: data = % x, want % x", i, s.Data, w.data)
		}
	}
}

func TestAppendBoxToVector(t *testing.T) {
	want := []byte{
		0x00, 0x00, 0x00, 0x1c, // size
		0x76, 0x74, 0x74, 0x63, // 'vttc'
		0x00, 0x00, 0x00, 0x14, // size
		0x70, 0x61, 0x79, 0x6c, // 'payl'
		's', 'o', 'm', 'e', ' ', 'm', 'e', 's', 's', 'a', 'g', 'e',
	}
	got := cueBoxBytes("some message")
	if !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestEmptyCueBox(t *testing.T) {
	want := []byte{0x00, 0x00, 0x00, 0x08, 0x76, 0x74, 0x74, 0x65}
	if got := emptyBoxBytes(); !bytes.Equal(got, want) {
		t.Fatalf("got % x, want % x", got, want)
	}
}

func TestNoOverlapContiguous(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 2000))
	f.PushSample(cue("hello", 2000, 1000))
	f.Flush()

	checkSamples(t, f, []wantSample{
		{0, 2000, concatBoxes("hi")},
		{2000, 1000, concatBoxes("hello")},
	})
}

func TestGap(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 1000))
	f.PushSample(cue("hello", 2000, 1000))
	if got := f.ReadySamplesSize(); got != 2 {
		t.Fatalf("before flush: ReadySamplesSize() = %d, want 2", got)
	}

	f.Flush()
	checkSamples(t, f, []wantSample{
		{0, 1000, concatBoxes("hi")},
		{1000, 1000, emptyBoxBytes()},
		{2000, 1000, concatBoxes("hello")},
	})
}

func TestOverlappingCuesSequential(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 2000))
	f.PushSample(cue("hello", 1000, 2000))
	f.PushSample(cue("some multi word message", 1500, 4000))
	f.Flush()

	checkSamples(t, f, []wantSample{
		{0, 1000, concatBoxes("hi")},
		{1000, 500, concatBoxes("hi", "hello")},
		{1500, 500, concatBoxes("hi", "hello", "some multi word message")},
		{2000, 1000, concatBoxes("hello", "some multi word message")},
		{3000, 2500, concatBoxes("some multi word message")},
	})
}

func TestOverlappingLongCue(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 10000))
	f.PushSample(cue("hello", 1000, 5000))
	f.PushSample(cue("some multi word message", 2000, 1000))
	f.PushSample(cue("message!!", 8000, 1000))
	f.Flush()

	checkSamples(t, f, []wantSample{
		{0, 1000, concatBoxes("hi")},
		{1000, 1000, concatBoxes("hi", "hello")},
		{2000, 1000, concatBoxes("hi", "hello", "some multi word message")},
		{3000, 3000, concatBoxes("hi", "hello")},
		{6000, 2000, concatBoxes("hi")},
		{8000, 1000, concatBoxes("hi", "message!!")},
		{9000, 1000, concatBoxes("hi")},
	})
}

func TestGapAtBeginning(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 1200, 2000))
	f.Flush()

	checkSamples(t, f, []wantSample{
		{1200, 2000, concatBoxes("hi")},
	})
}

func TestSameStartTime(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 2000))
	f.PushSample(cue("hello", 0, 1500))
	f.Flush()

	checkSamples(t, f, []wantSample{
		{0, 1500, concatBoxes("hi", "hello")},
		{1500, 500, concatBoxes("hi")},
	})
}

func TestMoreCases(t *testing.T) {
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 2000))
	f.PushSample(cue("hello", 100, 100))
	f.PushSample(cue("some multi word message", 1500, 1000))
	f.PushSample(cue("message!!", 1500, 800))
	f.Flush()

	checkSamples(t, f, []wantSample{
		{0, 100, concatBoxes("hi")},
		{100, 100, concatBoxes("hi", "hello")},
		{200, 1300, concatBoxes("hi")},
		{1500, 500, concatBoxes("hi", "some multi word message", "message!!")},
		{2000, 300, concatBoxes("some multi word message", "message!!")},
		{2300, 200, concatBoxes("some multi word message")},
	})
}

func TestPushSampleZeroDurationPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero-duration cue")
		}
	}()
	NewFragmenter().PushSample(cue("hi", 0, 0))
}

func TestPushSampleOutOfOrderPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-order start time")
		}
	}()
	f := NewFragmenter()
	f.PushSample(cue("hi", 0, 1000))
	f.Flush() // active set now empty, cursor == 1000

	f.PushSample(cue("late", 500, 100)) // 500 < cursor(1000), active set empty
}

func TestPopSampleOnEmptyQueuePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic popping an empty queue")
		}
	}()
	NewFragmenter().PopSample()
}
