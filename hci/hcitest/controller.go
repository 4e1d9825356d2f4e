// Package hcitest provides a scripted controller for exercising code that talks HCI.
package hcitest

import (
	"sync"

	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
)

// Responder produces the packets a controller would answer a command with.
type Responder func(params []byte) [][]byte

// Controller is a real *hci.HCI whose transport is a recorder. Commands are
// answered by registered responders; the answers are posted to the dispatcher,
// so tests drive them with RunUntilIdle.
type Controller struct {
	*hci.HCI

	d dispatch.Dispatcher

	mu         sync.Mutex
	responders map[int]Responder
	sent       []sentCommand
	acl        [][]byte
}

type sentCommand struct {
	opcode int
	params []byte
}

// New returns a controller bound to d.
func New(d dispatch.Dispatcher) *Controller {
	c := &Controller{
		d:          d,
		responders: make(map[int]Responder),
	}
	h, err := hci.NewHCI(d, recorder{c})
	if err != nil {
		panic(err)
	}
	c.HCI = h
	return c
}

// OnCommand installs fn as the responder for opcode, replacing any previous one.
func (c *Controller) OnCommand(opcode int, fn Responder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.responders[opcode] = fn
}

// Respond answers every future opcode command with pkts.
func (c *Controller) Respond(opcode int, pkts ...[]byte) {
	c.OnCommand(opcode, func([]byte) [][]byte { return pkts })
}

// RespondComplete answers opcode with a Command Complete carrying rp.
func (c *Controller) RespondComplete(opcode int, rp ...byte) {
	c.Respond(opcode, CommandComplete(opcode, rp...))
}

// RespondStatus answers opcode with a Command Status.
func (c *Controller) RespondStatus(opcode int, status byte, then ...[]byte) {
	c.Respond(opcode, append([][]byte{CommandStatus(opcode, status)}, then...)...)
}

// Silence removes the responder for opcode; the command goes unanswered.
func (c *Controller) Silence(opcode int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.responders, opcode)
}

// Inject posts a packet from the controller.
func (c *Controller) Inject(pkts ...[]byte) {
	for _, p := range pkts {
		p := p
		c.d.Post(func() { c.HCI.HandlePacket(p) })
	}
}

// Sent returns the parameters of every opcode command written so far.
func (c *Controller) Sent(opcode int) [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out [][]byte
	for _, s := range c.sent {
		if s.opcode == opcode {
			out = append(out, s.params)
		}
	}
	return out
}

// SentCount returns how many opcode commands were written.
func (c *Controller) SentCount(opcode int) int {
	return len(c.Sent(opcode))
}

// SentOpcodes returns the opcodes of every command written, in order.
func (c *Controller) SentOpcodes() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]int, len(c.sent))
	for i, s := range c.sent {
		out[i] = s.opcode
	}
	return out
}

// SentACL returns every ACL packet written, including the packet type octet.
func (c *Controller) SentACL() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.acl...)
}

// ClearSent forgets recorded packets.
func (c *Controller) ClearSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = nil
	c.acl = nil
}

type recorder struct {
	c *Controller
}

func (r recorder) Write(b []byte) (int, error) {
	c := r.c
	p := make([]byte, len(b))
	copy(p, b)

	c.mu.Lock()
	if p[0] == hci.PktTypeACLData {
		c.acl = append(c.acl, p)
		c.mu.Unlock()
		return len(b), nil
	}
	opcode := int(p[1]) | int(p[2])<<8
	params := p[4:]
	c.sent = append(c.sent, sentCommand{opcode: opcode, params: params})
	fn := c.responders[opcode]
	c.mu.Unlock()

	if fn != nil {
		c.Inject(fn(params)...)
	}
	return len(b), nil
}
