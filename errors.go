package gap

import (
	"github.com/pkg/errors"
)

// HostError is a failure detected by the host rather than reported by the controller.
type HostError int

const (
	ErrNotReady HostError = iota + 1
	ErrNotSupported
	ErrCanceled
	ErrFailed
	ErrInsufficientSecurity
	ErrNotFound
	ErrTimedOut
	ErrInvalidParameters
	ErrPacketMalformed
	ErrAlreadyExists
	ErrLinkDisconnected
)

var hostErrorStrings = map[HostError]string{
	ErrNotReady:             "not ready",
	ErrNotSupported:         "not supported",
	ErrCanceled:             "canceled",
	ErrFailed:               "failed",
	ErrInsufficientSecurity: "insufficient security",
	ErrNotFound:             "not found",
	ErrTimedOut:             "timed out",
	ErrInvalidParameters:    "invalid parameters",
	ErrPacketMalformed:      "packet malformed",
	ErrAlreadyExists:        "already exists",
	ErrLinkDisconnected:     "link disconnected",
}

func (e HostError) Error() string {
	if s, ok := hostErrorStrings[e]; ok {
		return s
	}
	return "unknown host error"
}

// IsHostError reports whether the root cause of err is the host error e.
func IsHostError(err error, e HostError) bool {
	if err == nil {
		return false
	}
	he, ok := errors.Cause(err).(HostError)
	return ok && he == e
}
