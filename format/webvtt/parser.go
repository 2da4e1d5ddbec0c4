// Package webvtt implements a streaming parser for the WebVTT cue-text
// format, producing vtt.Cue records in file order.
//
// Created by RTT.
// Author: teocci@yandex.com on 2021-Oct-27
package webvtt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/teocci/go-stream-av/format/vtt"
)

// readingState mirrors the line-classification states a WebVTT document
// walks through: the header banner, then repeatedly an optional identifier
// or NOTE block, a timing line, and a payload block.
type readingState int

const (
	stateHeader readingState = iota
	stateCueIdentifierOrTimingOrComment
	stateCueTiming
	stateCuePayload
	stateComment
)

// Parser converts a WEBVTT document into vtt.Cue records.
type Parser struct {
	state             readingState
	lastStart         uint64
	haveCue           bool
	pending           vtt.Cue
	payload           []string
	sawAnyLine        bool
	pendingIdentifier []byte
}

// NewParser returns a Parser ready to read from the start of a document.
func NewParser() *Parser {
	return &Parser{state: stateHeader}
}

// Parse reads a complete WEBVTT document from r, calling emit once per
// parsed cue in file order, after converting its timestamps from
// milliseconds into timescale ticks per second (ticks = millis *
// timescale / 1000). Parse returns a descriptive error on malformed input
// instead of panicking: unlike format/vtt's programmer-error
// preconditions, bad input text is an ordinary, recoverable condition at
// this boundary.
func (p *Parser) Parse(r io.Reader, timescale uint64, emit func(vtt.Cue)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if err := p.step(line, timescale, emit); err != nil {
			return fmt.Errorf("webvtt: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("webvtt: %w", err)
	}
	p.finishPayload(emit)
	return nil
}

func (p *Parser) step(line string, timescale uint64, emit func(vtt.Cue)) error {
	switch p.state {
	case stateHeader:
		if !p.sawAnyLine {
			p.sawAnyLine = true
			if !strings.HasPrefix(line, "WEBVTT") {
				return fmt.Errorf("expected WEBVTT signature, got %q", line)
			}
			return nil
		}
		if strings.TrimSpace(line) == "" {
			p.state = stateCueIdentifierOrTimingOrComment
		}
		return nil

	case stateCueIdentifierOrTimingOrComment:
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			return nil
		case strings.HasPrefix(trimmed, "NOTE"):
			p.state = stateComment
			return nil
		case isTimingLine(line):
			return p.startCue(nil, line, timescale)
		default:
			// A bare identifier line; the timing line follows next.
			identifier := []byte(line)
			p.pendingIdentifier = identifier
			p.state = stateCueTiming
			return nil
		}

	case stateCueTiming:
		if !isTimingLine(line) {
			return fmt.Errorf("expected cue timing line, got %q", line)
		}
		id := p.pendingIdentifier
		p.pendingIdentifier = nil
		return p.startCue(id, line, timescale)

	case stateCuePayload:
		if strings.TrimSpace(line) == "" {
			p.finishPayload(emit)
			p.state = stateCueIdentifierOrTimingOrComment
			return nil
		}
		p.payload = append(p.payload, line)
		return nil

	case stateComment:
		if strings.TrimSpace(line) == "" {
			p.state = stateCueIdentifierOrTimingOrComment
		}
		return nil
	}
	return nil
}

func (p *Parser) startCue(identifier []byte, timingLine string, timescale uint64) error {
	start, duration, settings, err := parseTimingLine(timingLine, timescale)
	if err != nil {
		return err
	}
	if p.haveCue && start < p.lastStart {
		return fmt.Errorf("cue start time %d is before previous cue start time %d", start, p.lastStart)
	}
	p.haveCue = true
	p.lastStart = start
	p.pending = vtt.Cue{
		Identifier: identifier,
		StartTime:  start,
		Duration:   duration,
		Settings:   settings,
	}
	p.payload = p.payload[:0]
	p.state = stateCuePayload
	return nil
}

func (p *Parser) finishPayload(emit func(vtt.Cue)) {
	if p.state != stateCuePayload {
		return
	}
	cue := p.pending
	cue.Payload = []byte(strings.Join(p.payload, "\n"))
	emit(cue)
	p.payload = nil
}

func isTimingLine(line string) bool {
	return strings.Contains(line, "-->")
}

// parseTimingLine parses "HH:MM:SS.mmm --> HH:MM:SS.mmm settings..." and
// returns the start time and duration in timescale ticks, plus the raw
// trailing settings bytes (unparsed, passed through per the core's
// contract).
func parseTimingLine(line string, timescale uint64) (start, duration uint64, settings []byte, err error) {
	arrow := strings.Index(line, "-->")
	if arrow < 0 {
		return 0, 0, nil, fmt.Errorf("malformed timing line %q: missing '-->'", line)
	}
	startStr := strings.TrimSpace(line[:arrow])
	rest := strings.TrimSpace(line[arrow+3:])

	endStr := rest
	var rawSettings string
	if sp := strings.IndexAny(rest, " \t"); sp >= 0 {
		endStr = rest[:sp]
		rawSettings = strings.TrimSpace(rest[sp+1:])
	}

	startMs, err := parseTimestamp(startStr)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("malformed start timestamp %q: %w", startStr, err)
	}
	endMs, err := parseTimestamp(endStr)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("malformed end timestamp %q: %w", endStr, err)
	}
	if endMs <= startMs {
		return 0, 0, nil, fmt.Errorf("end timestamp %q is not after start timestamp %q", endStr, startStr)
	}

	start = startMs * timescale / 1000
	duration = endMs*timescale/1000 - start
	if duration == 0 {
		duration = 1
	}
	if rawSettings != "" {
		settings = []byte(rawSettings)
	}
	return start, duration, settings, nil
}

// parseTimestamp parses "HH:MM:SS.mmm" or "MM:SS.mmm" into milliseconds.
func parseTimestamp(s string) (uint64, error) {
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		return 0, fmt.Errorf("missing fractional seconds")
	}
	millisStr := s[dot+1:]
	if len(millisStr) != 3 {
		return 0, fmt.Errorf("fractional seconds must have 3 digits")
	}
	millis, err := strconv.ParseUint(millisStr, 10, 64)
	if err != nil {
		return 0, err
	}

	parts := strings.Split(s[:dot], ":")
	var h, m, sec uint64
	switch len(parts) {
	case 3:
		h, err = strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0, err
		}
		m, err = strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return 0, err
		}
		sec, err = strconv.ParseUint(parts[2], 10, 64)
		if err != nil {
			return 0, err
		}
	case 2:
		m, err = strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return 0, err
		}
		sec, err = strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("expected HH:MM:SS.mmm or MM:SS.mmm")
	}

	return (h*3600+m*60+sec)*1000 + millis, nil
}
