package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in a block's life cycle the error occurred
type Phase string

const (
	PhaseConstruct Phase = "construct" // building a literal
	PhaseInvoke    Phase = "invoke"    // calling through a literal
	PhaseRetain    Phase = "retain"    // copy / retain
	PhaseRelease   Phase = "release"   // release
	PhaseDispose   Phase = "dispose"   // copy and dispose helpers
	PhaseAlloc     Phase = "alloc"     // literal storage
	PhaseGuest     Phase = "guest"     // wasm32 guest runtime
	PhaseConfig    Phase = "config"    // configuration
	PhaseAwait     Phase = "await"     // completion futures
)

// Kind categorizes the error
type Kind string

const (
	KindContract      Kind = "contract_violation"
	KindDisposed      Kind = "disposed"
	KindAllocation    Kind = "allocation"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindUnsupported   Kind = "unsupported"
	KindInvalidInput  Kind = "invalid_input"
	KindNotFound      Kind = "not_found"
	KindInstantiation Kind = "instantiation"
	KindCanceled      Kind = "canceled"
	KindPanic         Kind = "panic"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value     any
	Cause     error
	Phase     Phase
	Kind      Kind
	Class     string
	Signature string
	Detail    string
	Block     uintptr
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Block != 0 {
		fmt.Fprintf(&b, " at %#x", e.Block)
	}
	if e.Class != "" {
		b.WriteString(" (")
		b.WriteString(e.Class)
		b.WriteByte(')')
	}

	if e.Signature != "" {
		b.WriteString(": ")
		b.WriteString(e.Signature)
	}

	if e.Detail != "" {
		if e.Signature != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
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

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Block sets the literal address
func (b *Builder) Block(addr uintptr) *Builder {
	b.err.Block = addr
	return b
}

// Class sets the storage class name
func (b *Builder) Class(c string) *Builder {
	b.err.Class = c
	return b
}

// Signature sets the Go signature of the block
func (b *Builder) Signature(s string) *Builder {
	b.err.Signature = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Contract creates a contract violation error
func Contract(phase Phase, addr uintptr, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindContract,
		Block:  addr,
		Detail: detail,
	}
}

// Disposed creates an error for a literal whose payload is already gone
func Disposed(phase Phase, addr uintptr) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDisposed,
		Block:  addr,
		Detail: "captured payload already disposed",
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uintptr, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Value:  size,
		Cause:  cause,
	}
}

// OutOfBounds creates an out of bounds error for a memory range
func OutOfBounds(phase Phase, addr uintptr, length, limit uint64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Block:  addr,
		Detail: fmt.Sprintf("range [%#x, %#x) exceeds %d bytes", addr, uint64(addr)+length, limit),
		Value:  length,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidConfig creates a configuration error for a named setting
func InvalidConfig(setting string, value any, detail string) *Error {
	return &Error{
		Phase:  PhaseConfig,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("%s=%v: %s", setting, value, detail),
		Value:  value,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Instantiation creates a guest instantiation error
func Instantiation(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseGuest,
		Kind:   KindInstantiation,
		Detail: fmt.Sprintf("instantiate %s", what),
		Cause:  cause,
	}
}

// Canceled creates an error for an abandoned wait
func Canceled(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCanceled,
		Detail: "wait abandoned",
		Cause:  cause,
	}
}

// Panicked wraps a value recovered from a wrapped closure
func Panicked(phase Phase, addr uintptr, recovered any) *Error {
	e := &Error{
		Phase:  phase,
		Kind:   KindPanic,
		Block:  addr,
		Value:  recovered,
		Detail: fmt.Sprintf("closure panicked: %v", recovered),
	}
	if err, ok := recovered.(error); ok {
		e.Cause = err
	}
	return e
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
