package hci

import "github.com/rigado/gap/hci/cmd"

// TransactionID identifies a command sent through a Controller. Zero is never issued.
type TransactionID uint64

// HandlerID identifies a registered event handler. Zero is never issued.
type HandlerID uint64

// CommandCallback receives the Command Status and completion events of a command.
// A failed status ends the transaction and no further event is delivered.
type CommandCallback func(e Event)

// EventHandler receives events that are not consumed by a pending command.
type EventHandler func(e Event)

// Controller is the command channel to a Bluetooth controller. All methods and
// callbacks run on the dispatcher the Controller was created with.
type Controller interface {
	// SendCommand queues c. complete names the event that finishes the
	// transaction: CommandCompleteEvent for synchronous commands,
	// CommandStatusEvent when only the status is of interest, otherwise the
	// asynchronous completion event.
	SendCommand(c cmd.Command, cb CommandCallback, complete EventCode) TransactionID

	// SendExclusiveCommand is SendCommand with a set of opcodes that must not
	// be in flight at the same time as c.
	SendExclusiveCommand(c cmd.Command, cb CommandCallback, complete EventCode, exclusions ...int) TransactionID

	// AbandonTransaction stops waiting for the completion of a transaction
	// without invoking its callback again.
	AbandonTransaction(id TransactionID)

	AddEventHandler(code EventCode, h EventHandler) HandlerID
	RemoveEventHandler(id HandlerID)
}
