package ginja

import (
	"fmt"

	"github.com/juju/errors"
)

// Error identifies a single lex, parse, evaluation, or I/O failure. It is
// the unit of record in Environment's accumulated error list (spec.md §6,
// §7 taxonomy).
type Error struct {
	Filename string
	Line     int
	Column   int
	Sender   string
	ErrorMsg string
}

// Error formats as "<template-name>:<line>:<column>: <message>" (spec.md
// §6 "Error messages"). Line/Column are 0 for errors with no source
// position, such as a directory-loader I/O failure.
func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.ErrorMsg)
}

// newTokenError builds an Error anchored to tok, annotated with sender for
// diagnostic traceability (e.g. "parser", "evaluator").
func newTokenError(filename string, tok *Token, sender, format string, args ...interface{}) *Error {
	line, col := 0, 0
	if tok != nil {
		line, col = tok.Line, tok.Col
	}
	return &Error{
		Filename: filename,
		Line:     line,
		Column:   col,
		Sender:   sender,
		ErrorMsg: fmt.Sprintf(format, args...),
	}
}

// newIOError wraps an underlying I/O failure (e.g. from the directory
// loader) as an *Error with no source position. The cause's message is
// folded into ErrorMsg via juju/errors.Annotatef; the cause value itself is
// not retained.
func newIOError(filename string, cause error, format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	annotated := errors.Annotatef(cause, "%s", msg)
	return &Error{
		Filename: filename,
		Sender:   "loader",
		ErrorMsg: annotated.Error(),
	}
}
