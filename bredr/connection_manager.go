package bredr

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
	"github.com/rigado/gap/interrogator"
	"github.com/rigado/gap/peer"
)

const (
	linkTypeACL = 0x01

	// DM1, DH1, DM3, DH3, DM5 and DH5.
	aclPacketTypes = 0xCC18

	roleRemainPeripheral = 0x01
	defaultPSRM          = 0x01
)

type connectRequest struct {
	id        gap.PeerID
	callbacks []ConnectCallback
}

// ConnectionManager accepts and creates BR/EDR links, interrogates them, and
// runs pairing on them.
type ConnectionManager struct {
	ctrl     hci.Controller
	cache    *peer.Cache
	log      gap.Logger
	interrog *interrogator.Interrogator
	delegate gap.PairingDelegate
	handlers []hci.HandlerID
	closed   bool

	pending map[gap.PeerID]*connectRequest
	conns   map[hci.ConnectionHandle]*Connection

	onConnected    func(c *Connection)
	onDisconnected func(c *Connection, err error)
}

// NewConnectionManager returns a manager handling the ACL events of ctrl.
func NewConnectionManager(ctrl hci.Controller, cache *peer.Cache, l gap.Logger) *ConnectionManager {
	if l == nil {
		l = gap.ComponentLogger("gap-bredr")
	}
	m := &ConnectionManager{
		ctrl:     ctrl,
		cache:    cache,
		log:      l,
		interrog: interrogator.NewBrEdr(ctrl, cache, l),
		pending:  make(map[gap.PeerID]*connectRequest),
		conns:    make(map[hci.ConnectionHandle]*Connection),
	}
	for code, fn := range map[hci.EventCode]hci.EventHandler{
		hci.ConnectionRequestEvent:       m.onConnectionRequest,
		hci.ConnectionCompleteEvent:      m.onConnectionComplete,
		hci.DisconnectionCompleteEvent:   m.onDisconnectionComplete,
		hci.LinkKeyRequestEvent:          m.onLinkKeyRequest,
		hci.LinkKeyNotificationEvent:     m.onLinkKeyNotification,
		hci.IOCapabilityRequestEvent:     m.onIOCapabilityRequest,
		hci.IOCapabilityResponseEvent:    m.onIOCapabilityResponse,
		hci.UserConfirmationRequestEvent: m.onUserConfirmationRequest,
		hci.UserPasskeyRequestEvent:      m.onUserPasskeyRequest,
		hci.UserPasskeyNotificationEvent: m.onUserPasskeyNotification,
		hci.SimplePairingCompleteEvent:   m.onSimplePairingComplete,
		hci.AuthenticationCompleteEvent:  m.onAuthenticationComplete,
		hci.EncryptionChangeEvent:        m.onEncryptionChange,
	} {
		m.handlers = append(m.handlers, ctrl.AddEventHandler(code, fn))
	}
	return m
}

// SetPairingDelegate sets the delegate of every current and future link.
func (m *ConnectionManager) SetPairingDelegate(d gap.PairingDelegate) {
	m.delegate = d
	for _, c := range m.conns {
		c.pairing.SetPairingDelegate(d)
	}
}

// SetConnectionCallback sets the function called for every link, inbound or
// outbound, once it is interrogated.
func (m *ConnectionManager) SetConnectionCallback(fn func(c *Connection)) { m.onConnected = fn }

// SetDisconnectionCallback sets the function called when a ready link goes away.
func (m *ConnectionManager) SetDisconnectionCallback(fn func(c *Connection, err error)) {
	m.onDisconnected = fn
}

// SetConnectable enables or disables page scan.
func (m *ConnectionManager) SetConnectable(on bool, cb func(error)) {
	updateScanEnable(m.ctrl, scanPage, on, cb)
}

// Connections returns the links that are up.
func (m *ConnectionManager) Connections() []*Connection {
	var out []*Connection
	for _, c := range m.conns {
		if c.ready {
			out = append(out, c)
		}
	}
	return out
}

// Connection returns the link to id, or nil.
func (m *ConnectionManager) Connection(id gap.PeerID) *Connection {
	for _, c := range m.conns {
		if c.id == id {
			return c
		}
	}
	return nil
}

func (m *ConnectionManager) connByAddr(bdaddr [6]byte) *Connection {
	for _, c := range m.conns {
		if c.addr.Value == bdaddr {
			return c
		}
	}
	return nil
}

// Connect pages the peer. Concurrent requests for the same peer share one
// Create Connection; each callback is called once.
func (m *ConnectionManager) Connect(id gap.PeerID, cb ConnectCallback) {
	if m.closed {
		cb(nil, errors.Wrap(gap.ErrNotReady, "connection manager closed"))
		return
	}
	p := m.cache.FindByID(id)
	if p == nil || p.BrEdr() == nil {
		cb(nil, errors.Wrapf(gap.ErrNotFound, "br/edr peer %v", id))
		return
	}
	if c := m.Connection(id); c != nil {
		if c.ready {
			cb(c, nil)
			return
		}
		c.waiting = append(c.waiting, cb)
		return
	}
	if r, ok := m.pending[id]; ok {
		r.callbacks = append(r.callbacks, cb)
		return
	}

	r := &connectRequest{id: id, callbacks: []ConnectCallback{cb}}
	m.pending[id] = r
	d := p.MutBrEdr()
	d.SetConnectionState(peer.Initializing)

	c := &cmd.CreateConnection{
		BDADDR:                 d.Address().Value,
		PacketType:             aclPacketTypes,
		PageScanRepetitionMode: defaultPSRM,
		AllowRoleSwitch:        0x01,
	}
	if psrm, ok := d.PageScanRepetitionMode(); ok {
		c.PageScanRepetitionMode = psrm
	}
	if offset, ok := d.ClockOffset(); ok {
		c.ClockOffset = offset
	}
	m.log.Debugf("connecting to %v", p)
	m.ctrl.SendCommand(c, func(e hci.Event) {
		if err := e.Err(); err != nil {
			m.failRequest(id, errors.Wrap(err, "create connection"))
		}
	}, hci.CommandStatusEvent)
}

func (m *ConnectionManager) failRequest(id gap.PeerID, err error) {
	r, ok := m.pending[id]
	if !ok {
		return
	}
	delete(m.pending, id)
	if p := m.cache.FindByID(id); p != nil && p.BrEdr() != nil {
		p.MutBrEdr().SetConnectionState(peer.NotConnected)
	}
	m.log.Infof("connection to %v failed: %v", id, err)
	for _, cb := range r.callbacks {
		cb(nil, err)
	}
}

// Disconnect closes the link to id. The link is torn down before the
// controller confirms.
func (m *ConnectionManager) Disconnect(id gap.PeerID) error {
	c := m.Connection(id)
	if c == nil {
		return errors.Wrapf(gap.ErrNotFound, "no link to %v", id)
	}
	m.disconnect(c, errors.Wrap(gap.ErrCanceled, "disconnected locally"))
	return nil
}

func (m *ConnectionManager) disconnect(c *Connection, err error) {
	m.teardown(c, err)
	m.ctrl.SendCommand(&cmd.Disconnect{ConnectionHandle: uint16(c.handle), Reason: uint8(hci.ErrRemoteUser)}, func(e hci.Event) {
		if err := e.Err(); err != nil {
			m.log.Warnf("disconnect 0x%04X: %v", c.handle, err)
		}
	}, hci.CommandStatusEvent)
}

func (m *ConnectionManager) teardown(c *Connection, err error) {
	if c.closed {
		return
	}
	c.closed = true
	delete(m.conns, c.handle)
	m.interrog.Cancel(c.id)
	if p := m.cache.FindByID(c.id); p != nil {
		p.MutBrEdr().SetConnectionState(peer.NotConnected)
	}
	m.log.Infof("link to %v (handle 0x%04X) closed: %v", c.id, c.handle, err)

	c.pairing.Abandon(errors.Wrap(gap.ErrLinkDisconnected, "link closed"))
	waiting := c.waiting
	c.waiting = nil
	for _, cb := range waiting {
		cb(nil, err)
	}
	if c.ready && m.onDisconnected != nil {
		m.onDisconnected(c, err)
	}
}

// Pair raises the security of the link to id to at least level.
func (m *ConnectionManager) Pair(id gap.PeerID, level gap.SecurityLevel, cb func(error)) {
	c := m.Connection(id)
	if c == nil || !c.ready {
		cb(errors.Wrapf(gap.ErrNotFound, "no link to %v", id))
		return
	}
	if c.Security().Level >= level {
		cb(nil)
		return
	}

	action := c.pairing.InitiatePairing(func(err error) {
		if err == nil && c.Security().Level < level {
			err = errors.Wrapf(gap.ErrInsufficientSecurity, "paired at %v", c.Security().Level)
		}
		cb(err)
	})
	if action != SendAuthenticationRequest {
		return
	}
	m.ctrl.SendCommand(&cmd.AuthenticationRequested{ConnectionHandle: uint16(c.handle)}, func(e hci.Event) {
		if err := e.Err(); err != nil && !c.closed {
			c.pairing.OnAuthenticationComplete(err)
		}
	}, hci.CommandStatusEvent)
}

// Close fails pending requests, drops every link and detaches from the controller.
func (m *ConnectionManager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, id := range m.handlers {
		m.ctrl.RemoveEventHandler(id)
	}
	for id := range m.pending {
		m.failRequest(id, errors.Wrap(gap.ErrCanceled, "connection manager closed"))
	}
	for _, c := range m.conns {
		m.disconnect(c, errors.Wrap(gap.ErrCanceled, "connection manager closed"))
	}
}

func (m *ConnectionManager) onConnectionRequest(e hci.Event) {
	ev := evt.ConnectionRequest(e.Params)
	bdaddr := ev.BDADDR()
	reject := func(reason hci.ErrCommand) {
		m.ctrl.SendCommand(&cmd.RejectConnectionRequest{BDADDR: bdaddr, Reason: uint8(reason)}, nil, hci.CommandStatusEvent)
	}
	if ev.LinkType() != linkTypeACL {
		m.log.Debugf("rejecting link type 0x%02X", ev.LinkType())
		reject(hci.ErrRejectedLimitedResources)
		return
	}
	if m.connByAddr(bdaddr) != nil {
		reject(hci.ErrRejectedBadAddr)
		return
	}

	addr := gap.NewAddress(gap.AddressBREDR, bdaddr[:])
	p := m.cache.FindByAddress(addr)
	if p == nil {
		var err error
		if p, err = m.cache.NewPeer(addr, true); err != nil {
			m.log.Warnf("inbound connection from %v: %v", addr, err)
			reject(hci.ErrRejectedLimitedResources)
			return
		}
	}
	d := p.MutBrEdr()
	d.SetClassOfDevice(ev.ClassOfDevice())
	d.SetConnectionState(peer.Initializing)

	m.log.Debugf("accepting connection from %v", p)
	m.ctrl.SendCommand(&cmd.AcceptConnectionRequest{BDADDR: bdaddr, Role: roleRemainPeripheral}, func(e hci.Event) {
		if err := e.Err(); err != nil {
			m.log.Warnf("accept connection from %v: %v", addr, err)
			d.SetConnectionState(peer.NotConnected)
		}
	}, hci.CommandStatusEvent)
}

func (m *ConnectionManager) onConnectionComplete(e hci.Event) {
	ev := evt.ConnectionComplete(e.Params)
	if ev.LinkType() != linkTypeACL {
		return
	}
	bdaddr := ev.BDADDR()
	addr := gap.NewAddress(gap.AddressBREDR, bdaddr[:])
	p := m.cache.FindByAddress(addr)

	var r *connectRequest
	if p != nil {
		r = m.pending[p.ID()]
	}
	if err := e.Err(); err != nil {
		if r != nil {
			m.failRequest(r.id, errors.Wrap(err, "connection complete"))
		} else if p != nil {
			p.MutBrEdr().SetConnectionState(peer.NotConnected)
		}
		return
	}

	handle := hci.ConnectionHandle(ev.ConnectionHandle())
	if p == nil {
		var err error
		if p, err = m.cache.NewPeer(addr, true); err != nil {
			m.log.Warnf("connection from %v: %v", addr, err)
			m.ctrl.SendCommand(&cmd.Disconnect{ConnectionHandle: uint16(handle), Reason: uint8(hci.ErrRemoteUser)}, nil, hci.CommandStatusEvent)
			return
		}
	}

	c := &Connection{
		mgr:       m,
		id:        p.ID(),
		handle:    handle,
		addr:      addr,
		inbound:   r == nil,
		encrypted: ev.EncryptionEnabled() != 0,
	}
	if r != nil {
		delete(m.pending, r.id)
		c.waiting = r.callbacks
	}
	c.pairing = NewPairingState(c.id, c, m.onPairingStatus, m.log)
	c.pairing.SetPairingDelegate(m.delegate)
	m.conns[handle] = c
	p.MutBrEdr().SetConnectionState(peer.Initializing)

	m.log.Infof("link to %v up (handle 0x%04X, inbound %v)", p, handle, c.inbound)
	m.interrog.Start(c.id, handle, func(err error) {
		if c.closed {
			return
		}
		if err != nil {
			m.disconnect(c, errors.Wrap(err, "interrogation"))
			return
		}
		m.onInterrogated(c)
	})
}

func (m *ConnectionManager) onInterrogated(c *Connection) {
	c.ready = true
	if p := m.cache.FindByID(c.id); p != nil {
		p.MutBrEdr().SetConnectionState(peer.Connected)
	}
	waiting := c.waiting
	c.waiting = nil
	for _, cb := range waiting {
		if c.closed {
			cb(nil, errors.Wrap(gap.ErrLinkDisconnected, "link closed"))
			continue
		}
		cb(c, nil)
	}
	if !c.closed && m.onConnected != nil {
		m.onConnected(c)
	}
}

func (m *ConnectionManager) onDisconnectionComplete(e hci.Event) {
	ev := evt.DisconnectionComplete(e.Params)
	if e.Err() != nil {
		return
	}
	c, ok := m.conns[hci.ConnectionHandle(ev.ConnectionHandle())]
	if !ok {
		return
	}
	m.teardown(c, errors.Wrapf(gap.ErrLinkDisconnected, "reason: %v", hci.ErrCommand(ev.Reason())))
}

func (m *ConnectionManager) onPairingStatus(handle hci.ConnectionHandle, err error) {
	c, ok := m.conns[handle]
	if !ok {
		return
	}
	if m.delegate != nil {
		m.delegate.CompletePairing(c.id, err)
	}
}

func (m *ConnectionManager) reply(c cmd.Command) {
	m.ctrl.SendCommand(c, func(e hci.Event) {
		if err := e.Err(); err != nil {
			m.log.Warnf("%v: %v", c, err)
		}
	}, hci.CommandCompleteEvent)
}

func (m *ConnectionManager) onLinkKeyRequest(e hci.Event) {
	bdaddr := evt.LinkKeyRequest(e.Params).BDADDR()

	var bond *gap.LTK
	if p := m.cache.FindByAddress(gap.NewAddress(gap.AddressBREDR, bdaddr[:])); p != nil && p.BrEdr() != nil {
		bond = p.BrEdr().LinkKey()
	}
	key := bond
	if c := m.connByAddr(bdaddr); c != nil {
		if key = c.pairing.OnLinkKeyRequest(bond); key != nil {
			c.key = key
		}
	}

	if key == nil {
		m.reply(&cmd.LinkKeyRequestNegativeReply{BDADDR: bdaddr})
		return
	}
	m.reply(&cmd.LinkKeyRequestReply{BDADDR: bdaddr, LinkKey: key.Key})
}

func (m *ConnectionManager) onLinkKeyNotification(e hci.Event) {
	ev := evt.LinkKeyNotification(e.Params)
	c := m.connByAddr(ev.BDADDR())
	if c == nil {
		m.log.Warnf("link key for unknown link")
		return
	}
	c.pairing.OnLinkKeyNotification(ev.LinkKey(), gap.LinkKeyType(ev.KeyType()))
}

func (m *ConnectionManager) onIOCapabilityRequest(e hci.Event) {
	bdaddr := evt.IOCapabilityRequest(e.Params).BDADDR()
	c := m.connByAddr(bdaddr)
	if c == nil {
		m.reply(&cmd.IOCapabilityRequestNegativeReply{BDADDR: bdaddr, Reason: uint8(hci.ErrPairingNotAllowed)})
		return
	}
	io, authReq, ok := c.pairing.OnIOCapabilityRequest()
	if !ok {
		m.reply(&cmd.IOCapabilityRequestNegativeReply{BDADDR: bdaddr, Reason: uint8(hci.ErrPairingNotAllowed)})
		return
	}
	m.reply(&cmd.IOCapabilityRequestReply{
		BDADDR:                     bdaddr,
		IOCapability:               uint8(io),
		AuthenticationRequirements: authReq,
	})
}

func (m *ConnectionManager) onIOCapabilityResponse(e hci.Event) {
	ev := evt.IOCapabilityResponse(e.Params)
	if c := m.connByAddr(ev.BDADDR()); c != nil {
		c.pairing.OnIOCapabilityResponse(gap.IOCapability(ev.IOCapability()))
	}
}

func (m *ConnectionManager) onUserConfirmationRequest(e hci.Event) {
	ev := evt.UserConfirmationRequest(e.Params)
	bdaddr := ev.BDADDR()
	confirm := func(ok bool) {
		if ok {
			m.reply(&cmd.UserConfirmationRequestReply{BDADDR: bdaddr})
			return
		}
		m.reply(&cmd.UserConfirmationRequestNegativeReply{BDADDR: bdaddr})
	}
	c := m.connByAddr(bdaddr)
	if c == nil {
		confirm(false)
		return
	}
	c.pairing.OnUserConfirmationRequest(ev.NumericValue(), confirm)
}

func (m *ConnectionManager) onUserPasskeyRequest(e hci.Event) {
	bdaddr := evt.UserPasskeyRequest(e.Params).BDADDR()
	respond := func(passkey int64) {
		if passkey < 0 || passkey > 999999 {
			m.reply(&cmd.UserPasskeyRequestNegativeReply{BDADDR: bdaddr})
			return
		}
		m.reply(&cmd.UserPasskeyRequestReply{BDADDR: bdaddr, NumericValue: uint32(passkey)})
	}
	c := m.connByAddr(bdaddr)
	if c == nil {
		respond(-1)
		return
	}
	c.pairing.OnUserPasskeyRequest(respond)
}

func (m *ConnectionManager) onUserPasskeyNotification(e hci.Event) {
	ev := evt.UserPasskeyNotification(e.Params)
	if c := m.connByAddr(ev.BDADDR()); c != nil {
		c.pairing.OnUserPasskeyNotification(ev.Passkey())
	}
}

func (m *ConnectionManager) onSimplePairingComplete(e hci.Event) {
	ev := evt.SimplePairingComplete(e.Params)
	if c := m.connByAddr(ev.BDADDR()); c != nil {
		c.pairing.OnSimplePairingComplete(e.Err())
	}
}

func (m *ConnectionManager) onAuthenticationComplete(e hci.Event) {
	ev := evt.AuthenticationComplete(e.Params)
	if c, ok := m.conns[hci.ConnectionHandle(ev.ConnectionHandle())]; ok {
		c.pairing.OnAuthenticationComplete(e.Err())
	}
}

func (m *ConnectionManager) onEncryptionChange(e hci.Event) {
	ev := evt.EncryptionChange(e.Params)
	c, ok := m.conns[hci.ConnectionHandle(ev.ConnectionHandle())]
	if !ok {
		return
	}
	err := e.Err()
	enabled := ev.EncryptionEnabled() != 0
	c.encrypted = err == nil && enabled
	c.pairing.OnEncryptionChange(err, enabled)
}
