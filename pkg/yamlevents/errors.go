// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlevents

import (
	"fmt"

	"carvel.dev/yamlgraph/pkg/filepos"
)

// YamlError is the error reported to callers of load/deserialize operations:
// an underlying cause plus the position in the stream where it happened.
type YamlError struct {
	Start *filepos.Position
	End   *filepos.Position
	Err   error
}

func NewError(ev *Event, format string, args ...interface{}) *YamlError {
	err := &YamlError{Err: fmt.Errorf(format, args...)}
	if ev != nil {
		err.Start = ev.Start
		err.End = ev.End
	}
	return err
}

func (e *YamlError) Error() string {
	if e.Start.IsKnown() {
		return fmt.Sprintf("yaml: %s: %s", e.Start.AsString(), e.Err)
	}
	return fmt.Sprintf("yaml: %s", e.Err)
}

func (e *YamlError) Unwrap() error { return e.Err }

// DuplicateAnchorError is returned when an anchor is defined twice within one document.
type DuplicateAnchorError struct {
	Anchor string
	Start  *filepos.Position
	End    *filepos.Position
}

func (e *DuplicateAnchorError) Error() string {
	return fmt.Sprintf("anchor '%s' is already defined in this document", e.Anchor)
}

// AnchorNotFoundError is returned when an alias references an anchor that
// is not defined in the document.
type AnchorNotFoundError struct {
	Anchor string
	Start  *filepos.Position
	End    *filepos.Position
}

func (e *AnchorNotFoundError) Error() string {
	return fmt.Sprintf("alias '*%s' references an undefined anchor", e.Anchor)
}

// AsYamlError attaches a position to err unless it already is a *YamlError.
func AsYamlError(err error, start, end *filepos.Position) *YamlError {
	if typedErr, ok := err.(*YamlError); ok {
		return typedErr
	}
	switch typedErr := err.(type) {
	case *DuplicateAnchorError:
		start, end = typedErr.Start, typedErr.End
	case *AnchorNotFoundError:
		start, end = typedErr.Start, typedErr.End
	}
	return &YamlError{Start: start, End: end, Err: err}
}
