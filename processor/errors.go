package processor

import (
	"errors"
	"fmt"
	"go/token"
	"strings"
)

// ErrResolutionPending is returned by SymbolGraph.ResolveType when a type
// cannot be resolved yet, for example because it refers to a symbol that a
// later round of code generation will produce. Declarations whose types are
// pending are deferred, not reported.
var ErrResolutionPending = errors.New("type not yet resolvable")

// ErrorWithPosition is an error that has source position information associated
// with it. The position indicates the location in a source file where the error
// was encountered.
type ErrorWithPosition struct {
	err error
	pos token.Position
}

// Error implements the error interface. It includes position information in the
// returned message.
func (e *ErrorWithPosition) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.pos.Filename, e.pos.Line, e.pos.Column, e.err.Error())
}

// Unwrap returns the underlying error, for use with errors.Is and errors.As.
func (e *ErrorWithPosition) Unwrap() error {
	return e.err
}

// Pos returns the location in source where the underlying error was
// encountered.
func (e *ErrorWithPosition) Pos() token.Position {
	return e.pos
}

// NewErrorWithPosition returns the given error, but associates it with the
// given source code location.
func NewErrorWithPosition(pos token.Position, err error) *ErrorWithPosition {
	return &ErrorWithPosition{err: err, pos: pos}
}

// ConfigurationError indicates that the options given to a pass, or the
// arguments of a marker annotation, are missing or malformed. It is fatal: a
// pass that returns it has not validated or written anything.
type ConfigurationError struct {
	// The option key, or the marker argument name, that is invalid.
	Option string
	// Where the invalid value was written, if it came from source. The
	// position is not valid for options that came from the host.
	Pos token.Position
	Err error
}

func (e *ConfigurationError) Error() string {
	var sb strings.Builder
	if e.Pos.IsValid() {
		sb.WriteString(e.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString("configuration error")
	if e.Option != "" {
		fmt.Fprintf(&sb, " in %q", e.Option)
	}
	sb.WriteString(": ")
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErrorf(option string, pos token.Position, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Option: option, Pos: pos, Err: fmt.Errorf(format, args...)}
}

// OutputError describes a generated file that could not be written. Each
// failure is isolated to its own file: other artifacts of the same pass are
// still written.
type OutputError struct {
	Path string
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *OutputError) Unwrap() error {
	return e.Err
}
