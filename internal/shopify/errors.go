package shopify

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure categories surfaced by this package.
// Callers switch on the kind rather than string-matching messages.
type Kind int

const (
	// KindInvalidPath marks a local path outside the theme base directory or
	// outside the recognized theme subdirectories. Never sent to the network.
	KindInvalidPath Kind = iota + 1

	// KindRemoteRejection is an HTTP status >= 400 with an API error body.
	KindRemoteRejection

	// KindTransport covers connection, DNS and timeout failures.
	KindTransport

	// KindMalformedResponse covers non-JSON bodies and JSON bodies missing a
	// required field.
	KindMalformedResponse

	// KindUnknownAction is a queue task whose action name is not recognized.
	KindUnknownAction
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "invalid path"
	case KindRemoteRejection:
		return "remote rejection"
	case KindTransport:
		return "transport error"
	case KindMalformedResponse:
		return "malformed response"
	case KindUnknownAction:
		return "unknown action"
	default:
		return "unknown error"
	}
}

// Error is the structured error type returned by the client and the engines.
type Error struct {
	Kind   Kind
	Op     string // the operation that failed, e.g. "upload assets/app.js"
	Detail string // human-readable detail, API-provided where available
	Err    error  // underlying cause, if any
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Op)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a shopify Error of the given kind.
func IsKind(err error, k Kind) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind == k
	}
	return false
}
