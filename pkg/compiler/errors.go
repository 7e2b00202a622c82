package compiler

import (
	"strings"
)

// Phase indicates where in the pipeline the error occurred
type Phase string

const (
	PhaseConfig    Phase = "config"    // configuration lookup
	PhaseParse     Phase = "parse"     // source front end
	PhaseTransform Phase = "transform" // tree rewriting
	PhaseEmit      Phase = "emit"      // template generation
)

// Kind categorizes the error
type Kind string

const (
	KindMissingAdapter  Kind = "missing_adapter"
	KindInvalidPlatform Kind = "invalid_platform"
	KindInvalidConfig   Kind = "invalid_config"
	KindSyntax          Kind = "syntax"
	KindUnsupported     Kind = "unsupported"
)

// Error is the structured error returned by the compiler. Errors of
// PhaseConfig abort the compile unit.
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("[compile mode] [")
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by phase and kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Fatal reports whether the error must abort the compile unit.
func (e *Error) Fatal() bool {
	return e.Phase == PhaseConfig
}

// ErrMissingAdapter matches any missing control-flow adapter error via errors.Is.
var ErrMissingAdapter = &Error{Phase: PhaseConfig, Kind: KindMissingAdapter}

// ErrSyntax matches any front-end syntax error via errors.Is.
var ErrSyntax = &Error{Phase: PhaseParse, Kind: KindSyntax}

// ErrorBuilder provides structured error construction
type ErrorBuilder struct {
	err Error
}

// NewError starts building an error of the given phase and kind.
func NewError(phase Phase, kind Kind) *ErrorBuilder {
	return &ErrorBuilder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the location path
func (b *ErrorBuilder) Path(path ...string) *ErrorBuilder {
	b.err.Path = path
	return b
}

// Detail sets the message
func (b *ErrorBuilder) Detail(detail string) *ErrorBuilder {
	b.err.Detail = detail
	return b
}

// Cause sets the wrapped error
func (b *ErrorBuilder) Cause(err error) *ErrorBuilder {
	b.err.Cause = err
	return b
}

// Build returns the error
func (b *ErrorBuilder) Build() *Error {
	err := b.err
	return &err
}
