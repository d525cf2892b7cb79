package xmss

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrorKind classifies the ways this package's operations can fail, per
// the error taxonomy in spec.md §7.
type ErrorKind int

const (
	// ErrParameter marks malformed input: bad lengths, out-of-range
	// heights/widths, negative values. No state is mutated before this
	// is returned.
	ErrParameter ErrorKind = iota
	// ErrUnsupportedFormat marks a request for something this
	// implementation doesn't (yet) support, e.g. an address format other
	// than SHA_256.
	ErrUnsupportedFormat
	// ErrKeyExhausted marks idx >= 2^h on Sign.
	ErrKeyExhausted
	// ErrInternalInvariant marks an unreachable-in-theory state, such as
	// a tree-hash stack underflow. It indicates a bug in this package,
	// not a caller error.
	ErrInternalInvariant
)

func (k ErrorKind) String() string {
	switch k {
	case ErrParameter:
		return "parameter"
	case ErrUnsupportedFormat:
		return "unsupported format"
	case ErrKeyExhausted:
		return "key exhausted"
	case ErrInternalInvariant:
		return "internal invariant"
	default:
		return "unknown"
	}
}

// Error is the typed error interface every fallible entry point in this
// package returns. Modelled on the teacher's errorImpl/Error pair
// (Locked()/Inner()), generalised from a single boolean flag to the
// four-way ErrorKind the spec names.
type Error interface {
	error
	Kind() ErrorKind
	Inner() error
}

type xmssError struct {
	kind  ErrorKind
	msg   string
	inner error
}

func (e *xmssError) Kind() ErrorKind { return e.kind }
func (e *xmssError) Inner() error    { return e.inner }

func (e *xmssError) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.inner.Error())
	}
	return e.msg
}

func newError(kind ErrorKind, format string, a ...interface{}) *xmssError {
	return &xmssError{kind: kind, msg: fmt.Sprintf(format, a...)}
}

func wrapError(kind ErrorKind, err error, format string, a ...interface{}) *xmssError {
	return &xmssError{kind: kind, msg: fmt.Sprintf(format, a...), inner: err}
}

func newParameterError(format string, a ...interface{}) *xmssError {
	return newError(ErrParameter, format, a...)
}

func newUnsupportedFormatError(format string, a ...interface{}) *xmssError {
	return newError(ErrUnsupportedFormat, format, a...)
}

func newKeyExhaustedError(format string, a ...interface{}) *xmssError {
	return newError(ErrKeyExhausted, format, a...)
}

func newInternalInvariantError(format string, a ...interface{}) *xmssError {
	return newError(ErrInternalInvariant, format, a...)
}

// validationErrors aggregates every violated invariant found while
// constructing WOTSParams/XMSSParams, rather than stopping at the first.
// Grounded on the teacher's go.mod dependency on hashicorp/go-multierror,
// which is otherwise unexercised in the snapshot we inherited.
type validationErrors struct {
	merr *multierror.Error
}

func (v *validationErrors) add(format string, a ...interface{}) {
	v.merr = multierror.Append(v.merr, fmt.Errorf(format, a...))
}

func (v *validationErrors) errOrNil() Error {
	if v.merr == nil || len(v.merr.Errors) == 0 {
		return nil
	}
	return wrapError(ErrParameter, v.merr, "invalid parameters")
}
