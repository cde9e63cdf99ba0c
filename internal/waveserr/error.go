// Package waveserr defines the typed error kinds shared across the daemon
// and the formatting used to turn them into a user-facing message, in the
// spirit of internal/errmsg's Op-based formatting.
package waveserr

import "fmt"

// Kind classifies a daemon error so callers (and the wire protocol) can
// react without string-matching messages.
type Kind int

const (
	// KindIO covers filesystem or socket failures.
	KindIO Kind = iota
	// KindDecoding covers unsupported or corrupt audio.
	KindDecoding
	// KindInvalidParameters covers out-of-range indices or missing arguments.
	KindInvalidParameters
	// KindUnrecognizedCommand covers an unknown wire route.
	KindUnrecognizedCommand
	// KindChannel covers a cross-goroutine send/receive whose peer is gone.
	KindChannel
	// KindEnvVarNotPresent covers an unresolved environment expansion.
	KindEnvVarNotPresent
)

// String returns the kind's wire-stable name.
func (k Kind) String() string {
	switch k {
	case KindIO:
		return "IOError"
	case KindDecoding:
		return "DecodingError"
	case KindInvalidParameters:
		return "InvalidParameters"
	case KindUnrecognizedCommand:
		return "UnrecognizedCommand"
	case KindChannel:
		return "ChannelError"
	case KindEnvVarNotPresent:
		return "EnvVarNotPresent"
	default:
		return "UnknownError"
	}
}

// Error is the daemon's single error type: a Kind plus a message and an
// optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind, wrapping an existing cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, otherwise
// KindIO as the conservative default.
func KindOf(err error) Kind {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return KindIO
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
