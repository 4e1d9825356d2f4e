package hci

import (
	"time"

	"github.com/rigado/gap"
)

// Option configures an HCI.
type Option func(*HCI) error

// SetCommandTimeout bounds the wait for a command's status.
func (h *HCI) SetCommandTimeout(d time.Duration) error {
	h.commandTimeout = d
	return nil
}

// SetErrorHandler installs the receiver of transport failures.
func (h *HCI) SetErrorHandler(handler func(error)) error {
	h.errorHandler = handler
	return nil
}

// SetLogger replaces the component logger.
func (h *HCI) SetLogger(l gap.Logger) error {
	h.logger = l
	return nil
}

// OptCommandTimeout sets the command timeout.
func OptCommandTimeout(d time.Duration) Option {
	return func(h *HCI) error { return h.SetCommandTimeout(d) }
}

// OptErrorHandler sets the transport error handler.
func OptErrorHandler(fn func(error)) Option {
	return func(h *HCI) error { return h.SetErrorHandler(fn) }
}

// OptLogger sets the logger.
func OptLogger(l gap.Logger) Option {
	return func(h *HCI) error { return h.SetLogger(l) }
}
