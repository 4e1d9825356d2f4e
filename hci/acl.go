package hci

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci/evt"
)

// aclPacket implements HCI ACL Data Packet [Vol 2, Part E, 5.4.2]
// Packet boundary flags , bit[5:6] of handle field's MSB
// Broadcast flags. bit[7:8] of handle field's MSB
// Not used in LE-U. Leave it as 0x00 (Point-to-Point).
type aclPacket []byte

func (a aclPacket) handle() ConnectionHandle {
	return ConnectionHandle(uint16(a[0]) | (uint16(a[1]&0x0f) << 8))
}
func (a aclPacket) pbf() uint8   { return (a[1] >> 4) & 0x3 }
func (a aclPacket) dlen() int    { return int(a[2]) | (int(a[3]) << 8) }
func (a aclPacket) data() []byte { return a[4:] }

// ACLHandler receives inbound ACL data fragments.
type ACLHandler func(handle ConnectionHandle, pbf uint8, data []byte)

type aclFrame struct {
	handle ConnectionHandle
	b      []byte
}

// aclState implements packet based data flow control [Vol 2, Part E, 4.1.1].
type aclState struct {
	handler  ACLHandler
	mtu      int
	credits  int
	inFlight map[ConnectionHandle]int
	queue    []aclFrame
}

func newACLState() aclState {
	return aclState{
		mtu:      27,
		credits:  1,
		inFlight: make(map[ConnectionHandle]int),
	}
}

// SetACLHandler installs the receiver of inbound ACL data.
func (h *HCI) SetACLHandler(fn ACLHandler) {
	h.acl.handler = fn
}

// SetACLBuffer records the controller data buffer size and count, as read
// with Read Buffer Size or LE Read Buffer Size.
func (h *HCI) SetACLBuffer(size, count int) {
	if size > 0 {
		h.acl.mtu = size
	}
	if count > 0 {
		h.acl.credits = count
		for _, n := range h.acl.inFlight {
			h.acl.credits -= n
		}
	}
	h.flushACL()
}

// ACLMTU is the largest fragment the controller accepts.
func (h *HCI) ACLMTU() int {
	return h.acl.mtu
}

// SendACL queues one ACL fragment for handle. data must not exceed ACLMTU.
func (h *HCI) SendACL(handle ConnectionHandle, pbf uint8, data []byte) error {
	if h.closed {
		return gap.ErrNotReady
	}
	if len(data) > h.acl.mtu {
		return errors.Wrapf(gap.ErrInvalidParameters, "fragment of %d bytes exceeds mtu %d", len(data), h.acl.mtu)
	}
	b := make([]byte, 5+len(data))
	b[0] = PktTypeACLData
	b[1] = byte(handle)
	b[2] = byte(handle>>8)&0x0f | pbf<<4
	b[3] = byte(len(data))
	b[4] = byte(len(data) >> 8)
	copy(b[5:], data)
	h.acl.queue = append(h.acl.queue, aclFrame{handle: handle, b: b})
	h.flushACL()
	return nil
}

func (h *HCI) flushACL() {
	for h.acl.credits > 0 && len(h.acl.queue) > 0 {
		f := h.acl.queue[0]
		h.acl.queue = h.acl.queue[1:]
		if _, err := h.w.Write(f.b); err != nil {
			h.dispatchError(errors.Wrap(err, "failed to send acl data"))
			continue
		}
		h.acl.credits--
		h.acl.inFlight[f.handle]++
	}
}

// ClearACLHandle drops queued data for a disconnected handle and recovers the
// buffers the controller was holding for it [Vol 2, Part E, 4.3].
func (h *HCI) ClearACLHandle(handle ConnectionHandle) {
	q := h.acl.queue[:0]
	for _, f := range h.acl.queue {
		if f.handle != handle {
			q = append(q, f)
		}
	}
	h.acl.queue = q
	h.acl.credits += h.acl.inFlight[handle]
	delete(h.acl.inFlight, handle)
	h.flushACL()
}

func (h *HCI) handleACL(b []byte) error {
	if len(b) < 4 {
		return fmt.Errorf("short acl packet: % X", b)
	}
	p := aclPacket(b)
	if p.dlen() != len(p.data()) {
		return fmt.Errorf("invalid acl packet length: % X", b)
	}
	if h.acl.handler == nil {
		h.logger.Warnf("dropping acl data for handle 0x%04X", p.handle())
		return nil
	}
	h.acl.handler(p.handle(), p.pbf(), p.data())
	return nil
}

func (h *HCI) handleNumberOfCompletedPackets(b []byte) error {
	e := evt.NumberOfCompletedPackets(b)
	n, err := e.NumberOfHandlesWErr()
	if err != nil {
		return errors.Wrap(err, "number of completed packets")
	}
	for i := 0; i < int(n); i++ {
		ch, err := e.ConnectionHandleWErr(i)
		if err != nil {
			return errors.Wrap(err, "number of completed packets")
		}
		cnt, err := e.HCNumOfCompletedPacketsWErr(i)
		if err != nil {
			return errors.Wrap(err, "number of completed packets")
		}
		handle := ConnectionHandle(ch)
		done := int(cnt)
		if inFlight := h.acl.inFlight[handle]; done > inFlight {
			done = inFlight
		}
		h.acl.inFlight[handle] -= done
		if h.acl.inFlight[handle] == 0 {
			delete(h.acl.inFlight, handle)
		}
		h.acl.credits += done
	}
	h.flushACL()
	return nil
}
