// Package errkind defines the engine's error taxonomy.
// Indicator kernels and the signal generator never return an error —
// warm-up shortfalls surface as None values or a HOLD signal instead.
// Only transport and config errors ever propagate to the top-level task.
package errkind

import "errors"

// Kind tags an error with its recovery/visibility policy.
type Kind int

const (
	// TransientNetwork covers a dropped socket, a 5xx REST response, or a
	// timeout. Local recovery: reconnect with backoff. Visible as a
	// warning log line.
	TransientNetwork Kind = iota
	// ReplayedFrame is a closed-bar tick older than the buffer's
	// last_closed_time. Dropped silently, never surfaced.
	ReplayedFrame
	// ParseError is malformed JSON or a non-finite number in a frame.
	// The single frame is dropped; a warning is logged.
	ParseError
	// ConfigInvalid means the resolved StrategyConfig failed validation
	// (weights don't sum to 1, thresholds out of order). Fatal, exit 1.
	ConfigInvalid
	// Unrecoverable means retries were exhausted. Fatal, exit 2.
	Unrecoverable
)

func (k Kind) String() string {
	switch k {
	case TransientNetwork:
		return "TransientNetwork"
	case ReplayedFrame:
		return "ReplayedFrame"
	case ParseError:
		return "ParseError"
	case ConfigInvalid:
		return "ConfigInvalid"
	case Unrecoverable:
		return "Unrecoverable"
	default:
		return "Unknown"
	}
}

// Error wraps a cause with its Kind so callers can branch on recovery
// policy without string matching.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause with the given Kind.
func New(kind Kind, cause error) *Error { return &Error{Kind: kind, Cause: cause} }

// Is reports whether err (or something it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ExitCode returns the process exit code mandated for a fatal Kind, or 0
// if the Kind is not fatal (callers should not exit on it).
func ExitCode(kind Kind) int {
	switch kind {
	case ConfigInvalid:
		return 1
	case Unrecoverable:
		return 2
	default:
		return 0
	}
}
