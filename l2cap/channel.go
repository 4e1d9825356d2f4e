package l2cap

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap"
)

// Channel is a fixed channel on an LE-U link.
type Channel struct {
	l    *L2CAP
	link *link
	id   uint16

	open   bool
	rx     func(sdu []byte)
	closed func()
	// SDUs received before Activate
	queue [][]byte
}

func newChannel(l *L2CAP, k *link, id uint16) *Channel {
	return &Channel{l: l, link: k, id: id, open: true}
}

func (c *Channel) ID() uint16 { return c.id }

func (c *Channel) LinkHandle() uint16 { return uint16(c.link.handle) }

// Send transmits one SDU.
func (c *Channel) Send(sdu []byte) error {
	if !c.open {
		return errors.Wrapf(gap.ErrLinkDisconnected, "channel 0x%04X", c.id)
	}
	return c.l.writePDU(c.link.handle, newPDU(c.id, sdu))
}

// Activate starts delivery of inbound SDUs, beginning with any that arrived earlier.
// It reports false if the channel is already closed or active.
func (c *Channel) Activate(rx func(sdu []byte), closed func()) bool {
	if !c.open || c.rx != nil {
		return false
	}
	c.rx = rx
	c.closed = closed
	q := c.queue
	c.queue = nil
	for _, sdu := range q {
		if c.rx == nil {
			return true
		}
		c.rx(sdu)
	}
	return true
}

// Deactivate stops delivery; inbound SDUs are dropped from then on.
func (c *Channel) Deactivate() {
	c.rx = nil
	c.closed = nil
	c.open = false
}

// Security returns the properties of the key the link is encrypted with.
func (c *Channel) Security() gap.SecurityProperties {
	return c.link.security
}

// UpgradeSecurity asks the link owner to raise the link to level. cb runs on
// the dispatcher, immediately posted if the level is already met.
func (c *Channel) UpgradeSecurity(level gap.SecurityLevel, cb func(error)) {
	if !c.open {
		c.l.d.Post(func() { cb(gap.ErrLinkDisconnected) })
		return
	}
	if c.link.security.Level >= level {
		c.l.d.Post(func() { cb(nil) })
		return
	}
	if c.link.securityUpgrade == nil {
		c.l.d.Post(func() { cb(gap.ErrNotSupported) })
		return
	}
	c.link.securityUpgrade(level, cb)
}

// SignalLinkError reports that the link can no longer be used.
func (c *Channel) SignalLinkError() {
	if c.open && c.link.linkError != nil {
		c.link.linkError()
	}
}

func (c *Channel) receive(sdu []byte) {
	if !c.open {
		return
	}
	if c.rx == nil {
		c.queue = append(c.queue, sdu)
		return
	}
	c.rx(sdu)
}

func (c *Channel) close() {
	if !c.open {
		return
	}
	closed := c.closed
	c.open = false
	c.rx = nil
	c.closed = nil
	c.queue = nil
	if closed != nil {
		closed()
	}
}

var _ gap.Channel = (*Channel)(nil)
