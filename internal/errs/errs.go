// Package errs defines the error kinds shared by the parsing, generation and
// serialization packages.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// ParseError reports malformed MIDI or WAV structure. Offset is the absolute
// byte offset of the offending data, or -1 when no position applies.
type ParseError struct {
	Offset int64
	Msg    string
}

func (e *ParseError) Error() string {
	if e.Offset < 0 {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
}

// Parse builds a ParseError with a formatted message.
func Parse(offset int64, format string, args ...any) error {
	return errors.WithStack(&ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)})
}

// IOError wraps a failure of the underlying reader or writer.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error { return e.Err }

// IO wraps err as an IOError for operation op. A nil err yields nil.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Err: errors.WithStack(err)}
}

// ParamError reports a caller precondition violation, such as a zero
// frequency or an unstable feedback coefficient.
type ParamError struct {
	Param string
	Msg   string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Msg)
}

// Param builds a ParamError for the named parameter.
func Param(param string, format string, args ...any) error {
	return &ParamError{Param: param, Msg: fmt.Sprintf(format, args...)}
}
