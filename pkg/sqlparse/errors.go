// Copyright 2024-2026 Madhukar Beema. All rights reserved.
// Use of this source code is governed by the Business Source License
// included in the LICENSE file of this repository.

package sqlparse

import (
	"errors"
	"fmt"
)

// ErrTooDeep is returned when parenthesis nesting exceeds the configured limit.
var ErrTooDeep = errors.New("nesting too deep")

// ParseError reports input that cannot be turned into a token tree.
type ParseError struct {
	Offset int // byte offset into the input
	Line   int
	Column int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sqlparse: line %d, column %d: %s: %v", e.Line, e.Column, e.Msg, e.Err)
	}
	return fmt.Sprintf("sqlparse: line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError locates offset within input.
func newParseError(input string, offset int, msg string, err error) *ParseError {
	line, col := 1, 1
	for i := 0; i < offset && i < len(input); i++ {
		if input[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return &ParseError{Offset: offset, Line: line, Column: col, Msg: msg, Err: err}
}
