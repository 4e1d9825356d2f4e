package le

import (
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/sm"
	"github.com/rigado/gap/weakref"
)

// ConnectCallback receives a new reference to the link, or the reason there
// is none. It is never called from within Connect.
type ConnectCallback func(h *ConnectionHandle, err error)

// Connection is an LE link owned by the ConnectionManager. Users hold
// ConnectionHandles to it; the link is disconnected when the last one is
// released.
type Connection struct {
	id       gap.PeerID
	handle   hci.ConnectionHandle
	role     hci.Role
	addr     gap.Address
	bondable gap.BondableMode
	params   hci.LEConnectionParameters

	att gap.Channel
	sm  *sm.SecurityManager

	refs    map[*ConnectionHandle]struct{}
	ready   bool
	closed  bool
	inbound bool
	pause   dispatch.Timer

	// outbound request answered once interrogation is over
	req     *request
	waiting []ConnectCallback
}

func (c *Connection) PeerID() gap.PeerID           { return c.id }
func (c *Connection) Handle() hci.ConnectionHandle { return c.handle }
func (c *Connection) Role() hci.Role               { return c.role }
func (c *Connection) Address() gap.Address         { return c.addr }

// Parameters returns the connection parameters in effect.
func (c *Connection) Parameters() hci.LEConnectionParameters { return c.params }

// Security returns the properties of the current link encryption.
func (c *Connection) Security() gap.SecurityProperties {
	if c.sm == nil {
		return gap.SecurityProperties{}
	}
	return c.sm.Security()
}

// Refs returns the number of live handles.
func (c *Connection) Refs() int { return len(c.refs) }

// ConnectionHandle is one reference to an LE link. Each handle is released
// independently; a handle must not be copied.
type ConnectionHandle struct {
	mgr    weakref.Ref[*ConnectionManager]
	conn   *Connection
	active bool
	closed func()
}

// Active reports whether the handle still refers to a live link.
func (h *ConnectionHandle) Active() bool { return h.active }

func (h *ConnectionHandle) PeerID() gap.PeerID               { return h.conn.id }
func (h *ConnectionHandle) Handle() hci.ConnectionHandle     { return h.conn.handle }
func (h *ConnectionHandle) Role() hci.Role                   { return h.conn.role }
func (h *ConnectionHandle) BondableMode() gap.BondableMode   { return h.conn.bondable }
func (h *ConnectionHandle) Security() gap.SecurityProperties { return h.conn.Security() }

// SetClosedCallback sets the function called when the link goes away while
// the handle is active. It is not called for Release.
func (h *ConnectionHandle) SetClosedCallback(fn func()) { h.closed = fn }

// Release drops the reference. Releasing the last reference disconnects the link.
func (h *ConnectionHandle) Release() {
	if !h.active {
		return
	}
	h.active = false
	if m, ok := h.mgr.Get(); ok {
		m.release(h)
	}
}

// invalidate marks the handle dead and reports it to its owner.
func (h *ConnectionHandle) invalidate() {
	if !h.active {
		return
	}
	h.active = false
	if h.closed != nil {
		h.closed()
	}
}
