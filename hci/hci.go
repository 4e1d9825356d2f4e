package hci

import (
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
)

type transaction struct {
	id         TransactionID
	cmd        cmd.Command
	opcode     int
	complete   EventCode
	exclusions []int
	cb         CommandCallback
	timer      dispatch.Timer
}

func (t *transaction) excludes(opcode int) bool {
	for _, op := range t.exclusions {
		if op == opcode {
			return true
		}
	}
	return false
}

// async reports whether the transaction ends with an event other than Command Status or Command Complete.
func (t *transaction) async() bool {
	return t.complete != CommandCompleteEvent && t.complete != CommandStatusEvent
}

type handler struct {
	id   HandlerID
	code EventCode
	fn   EventHandler
}

// NewHCI returns a command channel writing packets to w. Packets read from the
// controller must be delivered with HandlePacket, or by Start.
func NewHCI(d dispatch.Dispatcher, w io.Writer, opts ...Option) (*HCI, error) {
	h := &HCI{
		d:              d,
		w:              w,
		logger:         gap.ComponentLogger("hci"),
		allowed:        1,
		commandTimeout: DefaultCommandTimeout,
		awaitingStatus: make(map[int]*transaction),
		awaitingEvent:  make(map[EventCode]*transaction),
		handlers:       make(map[EventCode][]*handler),
		handlerCodes:   make(map[HandlerID]EventCode),
		acl:            newACLState(),
	}
	if err := h.Option(opts...); err != nil {
		return nil, errors.Wrap(err, "can't set options")
	}
	return h, nil
}

// HCI implements Controller over an HCI transport.
type HCI struct {
	d      dispatch.Dispatcher
	w      io.Writer
	logger gap.Logger

	// Host to Controller command flow control [Vol 2, Part E, 4.4]
	allowed        int
	commandTimeout time.Duration

	nextID         TransactionID
	queue          []*transaction
	awaitingStatus map[int]*transaction
	awaitingEvent  map[EventCode]*transaction

	nextHandler  HandlerID
	handlers     map[EventCode][]*handler
	handlerCodes map[HandlerID]EventCode

	acl aclState

	errorHandler func(error)
	closed       bool
	done         chan struct{}
}

// Option sets the options specified.
func (h *HCI) Option(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return err
		}
	}
	return nil
}

// Start runs the read loop on r. Each Read must return exactly one packet,
// which is how both the HCI user channel socket and the H4 framers behave.
func (h *HCI) Start(r io.Reader) {
	h.done = make(chan struct{})
	go h.readLoop(r, h.done)
}

func (h *HCI) readLoop(r io.Reader, done chan struct{}) {
	b := make([]byte, readBufferSize)
	for {
		n, err := r.Read(b)
		switch {
		case n == 0 && err == nil:
			// read timeout
			select {
			case <-done:
				return
			default:
				continue
			}
		case err != nil:
			if err != io.EOF {
				err = errors.Wrap(err, "skt read error")
			}
			h.d.Post(func() { h.dispatchError(err) })
			return
		}

		p := make([]byte, n)
		copy(p, b)
		h.d.Post(func() {
			if err := h.HandlePacket(p); err != nil {
				h.logger.Warnf("skt: %v", err)
			}
		})
	}
}

// Close fails every pending command with ErrCanceled and refuses new ones.
func (h *HCI) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	if h.done != nil {
		close(h.done)
	}

	var pending []*transaction
	pending = append(pending, h.queue...)
	for _, t := range h.awaitingStatus {
		pending = append(pending, t)
	}
	for _, t := range h.awaitingEvent {
		pending = append(pending, t)
	}
	h.queue = nil
	h.awaitingStatus = make(map[int]*transaction)
	h.awaitingEvent = make(map[EventCode]*transaction)
	for _, t := range pending {
		if t.timer != nil {
			t.timer.Stop()
		}
		h.fail(t, gap.ErrCanceled)
	}

	if c, ok := h.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// SendCommand implements Controller.
func (h *HCI) SendCommand(c cmd.Command, cb CommandCallback, complete EventCode) TransactionID {
	return h.enqueue(c, cb, complete, nil)
}

// SendExclusiveCommand implements Controller.
func (h *HCI) SendExclusiveCommand(c cmd.Command, cb CommandCallback, complete EventCode, exclusions ...int) TransactionID {
	return h.enqueue(c, cb, complete, exclusions)
}

func (h *HCI) enqueue(c cmd.Command, cb CommandCallback, complete EventCode, exclusions []int) TransactionID {
	if complete == 0 {
		complete = CommandCompleteEvent
	}
	h.nextID++
	t := &transaction{
		id:         h.nextID,
		cmd:        c,
		opcode:     c.OpCode(),
		complete:   complete,
		exclusions: exclusions,
		cb:         cb,
	}
	if h.closed {
		h.d.Post(func() { h.fail(t, gap.ErrNotReady) })
		return t.id
	}
	h.queue = append(h.queue, t)
	h.trySend()
	return t.id
}

// AbandonTransaction implements Controller.
func (h *HCI) AbandonTransaction(id TransactionID) {
	for i, t := range h.queue {
		if t.id == id {
			h.queue = append(h.queue[:i], h.queue[i+1:]...)
			return
		}
	}
	for code, t := range h.awaitingEvent {
		if t.id == id {
			delete(h.awaitingEvent, code)
			h.trySend()
			return
		}
	}
	for _, t := range h.awaitingStatus {
		if t.id == id {
			// Let the status through for flow control, but nobody is listening anymore.
			t.cb = nil
			t.complete = CommandStatusEvent
			return
		}
	}
}

// AddEventHandler implements Controller. Command Status and Command Complete
// belong to the command channel and can't be subscribed to.
func (h *HCI) AddEventHandler(code EventCode, fn EventHandler) HandlerID {
	if code == CommandStatusEvent || code == CommandCompleteEvent || fn == nil {
		return 0
	}
	h.nextHandler++
	hd := &handler{id: h.nextHandler, code: code, fn: fn}
	h.handlers[code] = append(h.handlers[code], hd)
	h.handlerCodes[hd.id] = code
	return hd.id
}

// RemoveEventHandler implements Controller.
func (h *HCI) RemoveEventHandler(id HandlerID) {
	code, ok := h.handlerCodes[id]
	if !ok {
		return
	}
	delete(h.handlerCodes, id)
	hs := h.handlers[code]
	for i, hd := range hs {
		if hd.id == id {
			h.handlers[code] = append(hs[:i:i], hs[i+1:]...)
			break
		}
	}
	if len(h.handlers[code]) == 0 {
		delete(h.handlers, code)
	}
}

func (h *HCI) canSend(t *transaction) bool {
	if _, busy := h.awaitingStatus[t.opcode]; busy {
		return false
	}
	if t.async() {
		if _, busy := h.awaitingEvent[t.complete]; busy {
			return false
		}
	}
	running := func(r *transaction) bool {
		if t.async() && r.async() && r.complete == t.complete {
			return true
		}
		return r.excludes(t.opcode) || t.excludes(r.opcode)
	}
	for _, r := range h.awaitingStatus {
		if running(r) {
			return false
		}
	}
	for _, r := range h.awaitingEvent {
		if running(r) {
			return false
		}
	}
	return true
}

func (h *HCI) trySend() {
	for i := 0; i < len(h.queue) && h.allowed > 0; {
		t := h.queue[i]
		if !h.canSend(t) {
			i++
			continue
		}
		h.queue = append(h.queue[:i], h.queue[i+1:]...)
		h.write(t)
	}
}

func (h *HCI) write(t *transaction) {
	b := make([]byte, 4+t.cmd.Len())
	b[0] = PktTypeCommand
	b[1] = byte(t.opcode)
	b[2] = byte(t.opcode >> 8)
	b[3] = byte(t.cmd.Len())
	if err := t.cmd.Marshal(b[4:]); err != nil {
		h.logger.Errorf("failed to marshal %v: %v", t.cmd, err)
		h.d.Post(func() { h.fail(t, gap.ErrInvalidParameters) })
		return
	}

	h.logger.Debugf("send %v [% X]", t.cmd, b)
	if n, err := h.w.Write(b); err != nil || n != len(b) {
		if err == nil {
			err = io.ErrShortWrite
		}
		h.dispatchError(errors.Wrapf(err, "failed to send %v", t.cmd))
		h.d.Post(func() { h.fail(t, gap.ErrFailed) })
		return
	}

	h.allowed--
	h.awaitingStatus[t.opcode] = t
	t.timer = h.d.PostDelayed(h.commandTimeout, func() { h.onCommandTimeout(t) })
}

func (h *HCI) onCommandTimeout(t *transaction) {
	if h.awaitingStatus[t.opcode] != t {
		return
	}
	delete(h.awaitingStatus, t.opcode)
	h.logger.Errorf("no response to %v", t.cmd)
	h.dispatchError(fmt.Errorf("hci: no response to command 0x%04X", t.opcode))

	// Nothing will replenish the credit for a lost command.
	if h.allowed == 0 {
		h.allowed = 1
	}
	h.fail(t, gap.ErrTimedOut)
	h.trySend()
}

func (h *HCI) fail(t *transaction, err error) {
	if t.cb != nil {
		t.cb(failedStatusEvent(t.opcode, err))
	}
}

// HandlePacket processes one packet received from the controller, including its packet type indicator.
func (h *HCI) HandlePacket(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("empty packet")
	}
	// Strip the 1-byte HCI header and pass down the rest of the packet.
	t, b := b[0], b[1:]
	switch t {
	case PktTypeACLData:
		return h.handleACL(b)
	case PktTypeEvent:
		return h.handleEvt(b)
	case PktTypeCommand:
		return fmt.Errorf("unmanaged cmd: % X", b)
	case PktTypeSCOData:
		return fmt.Errorf("unsupported sco packet: % X", b)
	case PktTypeVendor:
		return fmt.Errorf("unsupported vendor packet: % X", b)
	default:
		return fmt.Errorf("invalid packet: 0x%02X % X", t, b)
	}
}

func (h *HCI) handleEvt(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("invalid event packet: % X", b)
	}
	code, plen := b[0], int(b[1])
	if plen != len(b[2:]) {
		return fmt.Errorf("invalid event packet: % X", b)
	}
	params := b[2:]

	switch code {
	case evt.CommandCompleteCode:
		return h.handleCommandComplete(params)
	case evt.CommandStatusCode:
		return h.handleCommandStatus(params)
	case evt.NumberOfCompletedPacketsCode:
		return h.handleNumberOfCompletedPackets(params)
	}

	ec := EventCode(code)
	if code == evt.LEMetaCode {
		if len(params) == 0 {
			return fmt.Errorf("invalid LE meta event: % X", b)
		}
		ec = LEMetaEventCode(params[0])
	}
	e := Event{Code: ec, Params: params}

	if t, ok := h.awaitingEvent[ec]; ok {
		delete(h.awaitingEvent, ec)
		if t.cb != nil {
			t.cb(e)
		}
		h.trySend()
		return nil
	}

	h.notify(e)
	return nil
}

func (h *HCI) notify(e Event) {
	hs := append([]*handler(nil), h.handlers[e.Code]...)
	if len(hs) == 0 {
		if e.Code != VendorEvent {
			h.logger.Debugf("unhandled %v [% X]", e.Code, e.Params)
		}
		return
	}
	for _, hd := range hs {
		// A handler may remove another one.
		if _, ok := h.handlerCodes[hd.id]; !ok {
			continue
		}
		hd.fn(e)
	}
}

func (h *HCI) handleCommandComplete(b []byte) error {
	e := evt.CommandComplete(b)
	n, err := e.NumHCICommandPacketsWErr()
	if err != nil {
		return errors.Wrap(err, "command complete")
	}
	h.setAllowedCommands(int(n))

	// NOP command, used for flow control purpose [Vol 2, Part E, 4.4]
	op, err := e.CommandOpcodeWErr()
	if err != nil || op == 0x0000 {
		h.trySend()
		return nil
	}

	t, found := h.awaitingStatus[int(op)]
	if !found {
		h.trySend()
		return fmt.Errorf("can't find the cmd for CommandComplete: % X", b)
	}
	delete(h.awaitingStatus, int(op))
	t.timer.Stop()

	ev := Event{Code: CommandCompleteEvent, Params: b}
	if t.async() {
		// Some controllers answer Inquiry with Command Complete. The completion
		// event still follows, so treat it as the status.
		h.logger.Warnf("command complete for asynchronous command %v", t.cmd)
		status, _ := e.StatusWErr()
		h.onStatus(t, ev, status)
		return nil
	}
	if t.cb != nil {
		t.cb(ev)
	}
	h.trySend()
	return nil
}

func (h *HCI) handleCommandStatus(b []byte) error {
	e := evt.CommandStatus(b)
	if !e.Valid() {
		err := fmt.Errorf("invalid command status: % X", b)
		h.dispatchError(err)
		return err
	}
	h.setAllowedCommands(int(e.NumHCICommandPackets()))

	op := int(e.CommandOpcode())
	if op == 0x0000 {
		h.trySend()
		return nil
	}
	t, found := h.awaitingStatus[op]
	if !found {
		h.trySend()
		return fmt.Errorf("can't find the cmd for CommandStatus: % X", b)
	}
	delete(h.awaitingStatus, op)
	t.timer.Stop()

	h.onStatus(t, Event{Code: CommandStatusEvent, Params: b}, e.Status())
	return nil
}

func (h *HCI) onStatus(t *transaction, e Event, status uint8) {
	if status == 0 && t.async() {
		h.awaitingEvent[t.complete] = t
	}
	if t.cb != nil {
		t.cb(e)
	}
	h.trySend()
}

func (h *HCI) setAllowedCommands(n int) {
	h.allowed = n
}

func (h *HCI) dispatchError(e error) {
	switch {
	case h.errorHandler == nil:
		h.logger.Error(e)
	case h.closed:
		h.logger.Info("hci closing:", e)
	default:
		h.errorHandler(e)
	}
}
