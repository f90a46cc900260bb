// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlevents

import (
	"io"

	"carvel.dev/yamlgraph/pkg/filepos"
)

// Reader provides single event lookahead over a Parser.
// Errors returned by the Parser are sticky: once one occurs, every
// subsequent call reports it.
type Reader struct {
	parser Parser
	peeked *Event
	last   *Event
	err    error
	atEOF  bool
}

func NewReader(parser Parser) *Reader {
	return &Reader{parser: parser}
}

// Peek returns the next event without consuming it; nil at the end of the stream.
func (r *Reader) Peek() (*Event, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.peeked != nil || r.atEOF {
		return r.peeked, nil
	}
	ev, err := r.parser.Next()
	if err != nil {
		if err == io.EOF {
			r.atEOF = true
			return nil, nil
		}
		r.err = AsYamlError(err, r.Position(), nil)
		return nil, r.err
	}
	r.peeked = ev
	return ev, nil
}

// Next consumes the next event; it is an error to read past the end of the stream.
func (r *Reader) Next() (*Event, error) {
	ev, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, NewError(r.last, "unexpected end of stream")
	}
	r.peeked = nil
	r.last = ev
	return ev, nil
}

// Accept reports whether the next event is of the given kind without consuming it.
func (r *Reader) Accept(kind Kind) bool {
	ev, err := r.Peek()
	return err == nil && ev != nil && ev.Kind == kind
}

// Allow consumes and returns the next event if it is of the given kind, nil otherwise.
func (r *Reader) Allow(kind Kind) *Event {
	if !r.Accept(kind) {
		return nil
	}
	ev, _ := r.Next()
	return ev
}

// Expect consumes the next event and fails unless it is of the given kind.
func (r *Reader) Expect(kind Kind) (*Event, error) {
	ev, err := r.Peek()
	if err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, NewError(r.last, "expected %s, but reached end of stream", kind)
	}
	if ev.Kind != kind {
		return nil, NewError(ev, "expected %s, but got %s", kind, ev.Kind)
	}
	return r.Next()
}

// Skip consumes one complete node (a scalar, an alias, or a whole collection).
func (r *Reader) Skip() error {
	depth := 0
	for {
		ev, err := r.Next()
		if err != nil {
			return err
		}
		switch ev.Kind {
		case SequenceStart, MappingStart:
			depth++
		case SequenceEnd, MappingEnd:
			depth--
		case Scalar, Alias:
		default:
			return NewError(ev, "unexpected %s while skipping a node", ev.Kind)
		}
		if depth <= 0 {
			return nil
		}
	}
}

// Position is the start of the next event when known, otherwise of the last consumed one.
func (r *Reader) Position() *filepos.Position {
	if r.peeked != nil && r.peeked.Start != nil {
		return r.peeked.Start
	}
	return r.last.StartPosition()
}

// Current is the last consumed event (nil before the first one).
func (r *Reader) Current() *Event { return r.last }
