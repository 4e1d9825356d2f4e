package bredr

import (
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
)

// ConnectCallback receives the link to a peer, or the reason it could not be
// established.
type ConnectCallback func(c *Connection, err error)

// Connection is an ACL-U link to a peer.
type Connection struct {
	mgr     *ConnectionManager
	id      gap.PeerID
	handle  hci.ConnectionHandle
	addr    gap.Address
	inbound bool

	pairing   *PairingState
	key       *gap.LTK
	encrypted bool

	ready   bool
	closed  bool
	waiting []ConnectCallback
}

func (c *Connection) PeerID() gap.PeerID           { return c.id }
func (c *Connection) Handle() hci.ConnectionHandle { return c.handle }
func (c *Connection) Address() gap.Address         { return c.addr }

// Inbound reports whether the peer paged us.
func (c *Connection) Inbound() bool { return c.inbound }

// Open reports whether the link is up. A closed Connection stays closed.
func (c *Connection) Open() bool { return !c.closed }

// Security returns the protection of the link as currently encrypted.
func (c *Connection) Security() gap.SecurityProperties {
	if !c.encrypted {
		return gap.SecurityProperties{}
	}
	if c.key == nil {
		return gap.SecurityProperties{Level: gap.SecurityEncrypted}
	}
	return c.key.Security
}

// PairingState returns the pairing state machine of the link.
func (c *Connection) PairingState() *PairingState { return c.pairing }

// SetLinkKey implements PairingLink.
func (c *Connection) SetLinkKey(key gap.LTK) {
	c.key = &key
	if err := c.mgr.cache.StoreBrEdrBond(c.addr, key); err != nil {
		c.mgr.log.Warnf("%v: storing link key: %v", c.id, err)
	}
}

// StartEncryption implements PairingLink.
func (c *Connection) StartEncryption() {
	c.mgr.ctrl.SendCommand(&cmd.SetConnectionEncryption{ConnectionHandle: uint16(c.handle), EncryptionEnable: 0x01}, func(e hci.Event) {
		if err := e.Err(); err != nil && !c.closed {
			c.pairing.OnEncryptionChange(err, false)
		}
	}, hci.CommandStatusEvent)
}
