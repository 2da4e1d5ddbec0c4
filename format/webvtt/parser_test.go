// Package webvtt
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package webvtt

import (
	"strings"
	"testing"

	"github.com/teocci/go-stream-av/format/vtt"
)

func parseAll(t *testing.T, doc string, timescale uint64) []vtt.Cue {
	t.Helper()
	var cues []vtt.Cue
	p := NewParser()
	if err := p.Parse(strings.NewReader(doc), timescale, func(c vtt.Cue) {
		cues = append(cues, c)
	}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cues
}

func TestParseSimpleCues(t *testing.T) {
	doc := "WEBVTT\n\n" +
		"00:00:00.000 --> 00:00:02.000\n" +
		"hi\n\n" +
		"00:00:02.000 --> 00:00:03.000\n" +
		"hello\n"

	cues := parseAll(t, doc, 1000)
	if len(cues) != 2 {
		t.Fatalf("len(cues) = %d, want 2", len(cues))
	}
	if cues[0].StartTime != 0 || cues[0].Duration != 2000 || string(cues[0].Payload) != "hi" {
		t.Errorf("cue 0 = %+v", cues[0])
	}
	if cues[1].StartTime != 2000 || cues[1].Duration != 1000 || string(cues[1].Payload) != "hello" {
		t.Errorf("cue 1 = %+v", cues[1])
	}
}

func TestParseIdentifierAndSettings(t *testing.T) {
	doc := "WEBVTT\n\n" +
		"cue-1\n" +
		"00:00:01.500 --> 00:00:02.500 line:2 align:left\n" +
		"line one\nline two\n"

	cues := parseAll(t, doc, 1000)
	if len(cues) != 1 {
		t.Fatalf("len(cues) = %d, want 1", len(cues))
	}
	c := cues[0]
	if string(c.Identifier) != "cue-1" {
		t.Errorf("Identifier = %q, want cue-1", c.Identifier)
	}
	if string(c.Settings) != "line:2 align:left" {
		t.Errorf("Settings = %q", c.Settings)
	}
	if string(c.Payload) != "line one\nline two" {
		t.Errorf("Payload = %q", c.Payload)
	}
}

func TestParseSkipsNoteBlocks(t *testing.T) {
	doc := "WEBVTT\n\n" +
		"NOTE this is a comment\nspanning lines\n\n" +
		"00:00:00.000 --> 00:00:01.000\nhi\n"

	cues := parseAll(t, doc, 1000)
	if len(cues) != 1 {
		t.Fatalf("len(cues) = %d, want 1", len(cues))
	}
}

func TestParseTimescaleConversion(t *testing.T) {
	doc := "WEBVTT\n\n00:00:01.000 --> 00:00:02.000\nhi\n"
	cues := parseAll(t, doc, 90000)
	if cues[0].StartTime != 90000 || cues[0].Duration != 90000 {
		t.Errorf("cue = %+v, want StartTime=90000 Duration=90000", cues[0])
	}
}

func TestParseRejectsMissingSignature(t *testing.T) {
	p := NewParser()
	err := p.Parse(strings.NewReader("NOT WEBVTT\n"), 1000, func(vtt.Cue) {})
	if err == nil {
		t.Fatal("expected error for missing WEBVTT signature")
	}
}

func TestParseRejectsOutOfOrderCues(t *testing.T) {
	doc := "WEBVTT\n\n" +
		"00:00:05.000 --> 00:00:06.000\nlater\n\n" +
		"00:00:01.000 --> 00:00:02.000\nearlier\n"

	p := NewParser()
	err := p.Parse(strings.NewReader(doc), 1000, func(vtt.Cue) {})
	if err == nil {
		t.Fatal("expected error for out-of-order cue start times")
	}
}

func TestParseRejectsMalformedTiming(t *testing.T) {
	doc := "WEBVTT\n\nnot-a-timing-line\nhi\n"
	p := NewParser()
	// A line with no "-->" and no blank separator is read as a bare
	// identifier; the following non-timing line should then be rejected.
	err := p.Parse(strings.NewReader(doc), 1000, func(vtt.Cue) {})
	if err == nil {
		t.Fatal("expected error for malformed timing line")
	}
}
