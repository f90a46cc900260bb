// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlevents

import (
	"io"
)

// Parser produces events in stream order. Next returns io.EOF once the
// stream (including its StreamEnd event) has been exhausted.
type Parser interface {
	Next() (*Event, error)
}

// Emitter consumes events in stream order.
type Emitter interface {
	Emit(*Event) error
}

// SliceParser replays a fixed list of events.
type SliceParser struct {
	events []*Event
	idx    int
}

var _ Parser = &SliceParser{}

func NewSliceParser(events ...*Event) *SliceParser {
	return &SliceParser{events: events}
}

func (p *SliceParser) Next() (*Event, error) {
	if p.idx >= len(p.events) {
		return nil, io.EOF
	}
	ev := p.events[p.idx]
	p.idx++
	return ev, nil
}

// Recorder keeps every emitted event.
type Recorder struct {
	events []*Event
}

var _ Emitter = &Recorder{}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Emit(ev *Event) error {
	r.events = append(r.events, ev)
	return nil
}

func (r *Recorder) Events() []*Event { return r.events }

// Strings renders recorded events with Event.String.
func (r *Recorder) Strings() []string {
	var result []string
	for _, ev := range r.events {
		result = append(result, ev.String())
	}
	return result
}

// Parser replays what was recorded so far.
func (r *Recorder) Parser() *SliceParser {
	return NewSliceParser(r.events...)
}

// Document wraps node events into StreamStart, DocumentStart ... DocumentEnd, StreamEnd.
func Document(nodeEvents ...*Event) []*Event {
	result := []*Event{NewStreamStart(), NewDocumentStart(true)}
	result = append(result, nodeEvents...)
	return append(result, NewDocumentEnd(true), NewStreamEnd())
}
