package le

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
	"github.com/rigado/gap/interrogator"
	"github.com/rigado/gap/peer"
	"github.com/rigado/gap/sm"
	"github.com/rigado/gap/weakref"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Time a new link keeps its initial parameters before the preferred ones are
// requested [Vol 3, Part C, 9.3.12].
var (
	ConnectionPauseCentral    = 1 * time.Second
	ConnectionPausePeripheral = 5 * time.Second
)

// maxConnectAttempts bounds retries of links that fail with Connection
// Failed To Be Established.
const maxConnectAttempts = 3

type request struct {
	id        gap.PeerID
	bondable  gap.BondableMode
	callbacks []ConnectCallback
	attempts  int
}

// ConnectionManager creates LE links, initializes L2CAP, GATT and SMP on
// them, and hands out reference counted handles. All methods must be called
// on the dispatcher.
type ConnectionManager struct {
	d        dispatch.Dispatcher
	ctrl     hci.Controller
	cache    *peer.Cache
	l2cap    L2CAP
	gatt     GATT
	log      gap.Logger
	interrog *interrogator.Interrogator
	conn     *connector

	self     *weakref.Factory[*ConnectionManager]
	handlers []hci.HandlerID
	closed   bool

	local         gap.Address
	localFeatures uint64
	delegate      gap.PairingDelegate
	timeout       time.Duration
	initial       hci.LEPreferredConnectionParameters
	preferred     hci.LEPreferredConnectionParameters

	pending    *orderedmap.OrderedMap[gap.PeerID, *request]
	connecting *request
	conns      map[gap.PeerID]*Connection

	onIncoming     func(h *ConnectionHandle)
	onDisconnected func(id gap.PeerID)
}

// NewConnectionManager returns a manager for the LE links of ctrl. gatt may be nil.
func NewConnectionManager(d dispatch.Dispatcher, ctrl hci.Controller, cache *peer.Cache, l2 L2CAP, gatt GATT, l gap.Logger) *ConnectionManager {
	if l == nil {
		l = gap.ComponentLogger("gap-le")
	}
	m := &ConnectionManager{
		d:         d,
		ctrl:      ctrl,
		cache:     cache,
		l2cap:     l2,
		gatt:      gatt,
		log:       l,
		interrog:  interrogator.NewLE(ctrl, cache, l),
		timeout:   DefaultCreateConnectionTimeout,
		initial:   hci.DefaultInitialConnectionParameters,
		preferred: hci.DefaultPreferredConnectionParameters,
		pending:   orderedmap.New[gap.PeerID, *request](),
		conns:     make(map[gap.PeerID]*Connection),
	}
	m.self = weakref.NewFactory(m)
	m.conn = newConnector(d, ctrl, l, m.onIncomingLink)
	for code, fn := range map[hci.EventCode]hci.EventHandler{
		hci.DisconnectionCompleteEvent:              m.onDisconnectionComplete,
		hci.LEConnectionUpdateCompleteEvent:         m.onConnectionUpdateComplete,
		hci.LERemoteConnectionParameterRequestEvent: m.onRemoteConnectionParameterRequest,
		hci.LELongTermKeyRequestEvent:               m.onLongTermKeyRequest,
		hci.EncryptionChangeEvent:                   m.onEncryptionChange,
		hci.EncryptionKeyRefreshCompleteEvent:       m.onEncryptionKeyRefresh,
	} {
		m.handlers = append(m.handlers, ctrl.AddEventHandler(code, fn))
	}
	return m
}

// SetLocalAddress sets the identity address used in pairing.
func (m *ConnectionManager) SetLocalAddress(a gap.Address) { m.local = a }

// SetLocalFeatures records the LE features of the local controller.
func (m *ConnectionManager) SetLocalFeatures(f uint64) { m.localFeatures = f }

// SetPairingDelegate sets the delegate used by links created from now on.
func (m *ConnectionManager) SetPairingDelegate(d gap.PairingDelegate) { m.delegate = d }

// SetConnectionTimeout bounds each outgoing connection attempt.
func (m *ConnectionManager) SetConnectionTimeout(d time.Duration) { m.timeout = d }

// SetPreferredConnectionParameters sets the parameters requested in the
// peripheral role, and used in the central role for peers without a preference.
func (m *ConnectionManager) SetPreferredConnectionParameters(p hci.LEPreferredConnectionParameters) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(gap.ErrInvalidParameters, err.Error())
	}
	m.preferred = p
	return nil
}

// SetIncomingConnectionCallback sets the receiver of links created by remote
// centrals. Without one, such links are disconnected.
func (m *ConnectionManager) SetIncomingConnectionCallback(fn func(h *ConnectionHandle)) {
	m.onIncoming = fn
}

// SetDisconnectionCallback sets the function called when an initialized link goes away.
func (m *ConnectionManager) SetDisconnectionCallback(fn func(id gap.PeerID)) { m.onDisconnected = fn }

// Connection returns the link to id, or nil.
func (m *ConnectionManager) Connection(id gap.PeerID) *Connection { return m.conns[id] }

// Connections returns every link, initialized or not.
func (m *ConnectionManager) Connections() []*Connection {
	out := make([]*Connection, 0, len(m.conns))
	for _, c := range m.conns {
		out = append(out, c)
	}
	return out
}

func (m *ConnectionManager) connByHandle(h hci.ConnectionHandle) *Connection {
	for _, c := range m.conns {
		if c.handle == h {
			return c
		}
	}
	return nil
}

func (m *ConnectionManager) post(cb ConnectCallback, err error) {
	m.d.Post(func() { cb(nil, err) })
}

// Connect hands cb a new handle to the link to id, creating the link if
// needed. Concurrent requests for the same peer share one connection attempt.
func (m *ConnectionManager) Connect(id gap.PeerID, bondable gap.BondableMode, cb ConnectCallback) {
	if m.closed {
		m.post(cb, errors.Wrap(gap.ErrNotReady, "connection manager closed"))
		return
	}
	p := m.cache.FindByID(id)
	switch {
	case p == nil:
		m.post(cb, errors.Wrapf(gap.ErrNotFound, "peer %v", id))
		return
	case p.LE() == nil:
		m.post(cb, errors.Wrapf(gap.ErrNotSupported, "peer %v is not le", id))
		return
	case !p.Connectable():
		m.post(cb, errors.Wrapf(gap.ErrNotSupported, "peer %v is not connectable", id))
		return
	}

	if c, ok := m.conns[id]; ok {
		if c.ready {
			m.deliver(cb, m.newHandle(c))
			return
		}
		c.waiting = append(c.waiting, cb)
		return
	}
	if m.connecting != nil && m.connecting.id == id {
		m.connecting.callbacks = append(m.connecting.callbacks, cb)
		return
	}
	if r, ok := m.pending.Get(id); ok {
		r.callbacks = append(r.callbacks, cb)
		return
	}

	p.MutLE().SetConnectionState(peer.Initializing)
	m.pending.Set(id, &request{id: id, bondable: bondable, callbacks: []ConnectCallback{cb}})
	m.tryCreateNext()
}

func (m *ConnectionManager) tryCreateNext() {
	for !m.closed && m.connecting == nil && m.pending.Len() > 0 {
		pair := m.pending.Oldest()
		r := pair.Value
		m.pending.Delete(pair.Key)

		p := m.cache.FindByID(r.id)
		if p == nil {
			m.fail(r, errors.Wrapf(gap.ErrNotFound, "peer %v", r.id))
			continue
		}
		addr := p.Address()
		if bond := p.LE().BondData(); bond != nil && bond.IdentityAddress != nil {
			addr = *bond.IdentityAddress
		}

		r.attempts++
		m.connecting = r
		err := m.conn.create(addr, m.initial, m.timeout, func(l link, err error) {
			m.connecting = nil
			m.onConnectResult(r, l, err)
		})
		if err != nil {
			m.connecting = nil
			m.fail(r, err)
		}
	}
}

func (m *ConnectionManager) onConnectResult(r *request, l link, err error) {
	defer m.tryCreateNext()

	if err != nil {
		if m.retry(r, err) {
			return
		}
		m.log.Infof("connection to %v failed: %v", r.id, err)
		m.fail(r, err)
		return
	}
	if _, ok := m.conns[r.id]; ok {
		// the peer connected to us in the meantime
		m.log.Warnf("second link to %v, disconnecting 0x%04X", r.id, l.handle)
		m.conn.disconnect(l.handle)
		c := m.conns[r.id]
		if !c.ready {
			c.waiting = append(c.waiting, r.callbacks...)
			return
		}
		for _, cb := range r.callbacks {
			m.deliver(cb, m.newHandle(c))
		}
		return
	}
	c := m.initializeConnection(r.id, l, r.bondable)
	if c == nil {
		m.fail(r, errors.Wrapf(gap.ErrFailed, "initializing link to %v", r.id))
		return
	}
	c.req = r
}

// retry requeues r at the front when the link failed to be established.
func (m *ConnectionManager) retry(r *request, err error) bool {
	if m.closed || !hci.IsStatus(err, hci.ErrConnFailedToBeEstablished) || r.attempts >= maxConnectAttempts {
		return false
	}
	p := m.cache.FindByID(r.id)
	if p == nil {
		return false
	}
	m.log.Infof("connection to %v failed to be established, retrying (attempt %d)", r.id, r.attempts+1)
	p.MutLE().SetConnectionState(peer.Initializing)
	m.pending.Set(r.id, r)
	m.pending.MoveToFront(r.id)
	return true
}

// fail resolves every callback of r with err and forgets the request.
func (m *ConnectionManager) fail(r *request, err error) {
	if p := m.cache.FindByID(r.id); p != nil && p.LE() != nil && m.conns[r.id] == nil {
		p.MutLE().SetConnectionState(peer.NotConnected)
	}
	for _, cb := range r.callbacks {
		m.post(cb, err)
	}
}

func (m *ConnectionManager) onIncomingLink(l link) {
	if m.closed || m.onIncoming == nil {
		m.log.Infof("rejecting incoming le link from %v", l.peer)
		m.conn.disconnect(l.handle)
		return
	}
	p := m.cache.FindByAddress(l.peer)
	if p == nil {
		var err error
		if p, err = m.cache.NewPeer(l.peer, true); err != nil {
			m.log.Warnf("can't add peer %v: %v", l.peer, err)
			m.conn.disconnect(l.handle)
			return
		}
	}
	if _, ok := m.conns[p.ID()]; ok {
		m.log.Warnf("second link to %v, disconnecting 0x%04X", p.ID(), l.handle)
		m.conn.disconnect(l.handle)
		return
	}
	c := m.initializeConnection(p.ID(), l, gap.Bondable)
	if c != nil {
		c.inbound = true
	}
}

// initializeConnection registers a new link with L2CAP, SMP and GATT and
// starts interrogating it.
func (m *ConnectionManager) initializeConnection(id gap.PeerID, l link, bondable gap.BondableMode) *Connection {
	p := m.cache.FindByID(id)
	if p == nil {
		m.conn.disconnect(l.handle)
		return nil
	}
	c := &Connection{
		id:       id,
		handle:   l.handle,
		role:     l.role,
		addr:     l.peer,
		bondable: bondable,
		params:   l.params,
		refs:     make(map[*ConnectionHandle]struct{}),
	}

	att, smp, err := m.l2cap.AddLEConnection(l.handle, l.role,
		func() { m.onLinkError(c) },
		func(params hci.LEPreferredConnectionParameters) { m.onPeerParameterRequest(c, params) },
		func(level gap.SecurityLevel, cb func(error)) { m.upgradeSecurity(c, level, cb) },
	)
	if err != nil {
		m.log.Errorf("l2cap registration of 0x%04X: %v", l.handle, err)
		m.conn.disconnect(l.handle)
		return nil
	}
	c.att = att

	le := p.MutLE()
	c.sm = sm.New(m.d, smp, sm.NewHCILink(m.ctrl, l.handle, m.log), sm.Config{
		PeerID:   id,
		Role:     l.role,
		Local:    m.local,
		Remote:   l.peer,
		Bondable: bondable,
		Delegate: m.delegate,
		Bond:     le.BondData(),
		PairingData: func(data gap.PairingData) {
			if err := m.cache.StoreLowEnergyBond(id, data); err != nil {
				m.log.Warnf("%v: storing bond: %v", id, err)
			}
		},
		SecurityChanged: func(sp gap.SecurityProperties) {
			m.l2cap.AssignLinkSecurityProperties(l.handle, sp)
		},
	}, m.log)

	if m.gatt != nil {
		m.gatt.AddConnection(id, att)
	}
	le.SetConnectionParameters(l.params)
	le.SetConnectionState(peer.Initializing)
	m.conns[id] = c

	m.log.Infof("le link 0x%04X to %v (%v), interrogating", l.handle, id, l.role)
	m.interrog.Start(id, l.handle, func(err error) { m.onInterrogated(c, err) })
	return c
}

func (m *ConnectionManager) onInterrogated(c *Connection, err error) {
	if c.closed {
		return
	}
	if err != nil {
		m.log.Infof("interrogation of %v failed: %v", c.id, err)
		r := c.req
		c.req = nil
		m.disconnect(c, err)
		if r != nil {
			if !m.retry(r, err) {
				m.fail(r, err)
			}
			m.tryCreateNext()
		}
		return
	}

	c.ready = true
	if p := m.cache.FindByID(c.id); p != nil {
		p.MutLE().SetConnectionState(peer.Connected)
	}
	if m.gatt != nil {
		m.gatt.DiscoverServices(c.id, []uuid.UUID{GenericAccessService})
	}
	pause := ConnectionPauseCentral
	if c.role == hci.RolePeripheral {
		pause = ConnectionPausePeripheral
	}
	c.pause = m.d.PostDelayed(pause, func() { m.onPauseElapsed(c) })

	var callbacks []ConnectCallback
	if c.req != nil {
		callbacks = c.req.callbacks
		c.req = nil
	}
	callbacks = append(callbacks, c.waiting...)
	c.waiting = nil
	for _, cb := range callbacks {
		m.deliver(cb, m.newHandle(c))
	}

	if c.inbound {
		h := m.newHandle(c)
		m.d.Post(func() {
			if h.Active() && m.onIncoming != nil {
				m.onIncoming(h)
			}
		})
	}
}

func (m *ConnectionManager) newHandle(c *Connection) *ConnectionHandle {
	h := &ConnectionHandle{mgr: m.self.Ref(), conn: c, active: true}
	c.refs[h] = struct{}{}
	return h
}

// deliver hands h to cb from the dispatcher, unless the link went away in between.
func (m *ConnectionManager) deliver(cb ConnectCallback, h *ConnectionHandle) {
	m.d.Post(func() {
		if !h.Active() {
			cb(nil, errors.Wrapf(gap.ErrLinkDisconnected, "link to %v", h.conn.id))
			return
		}
		cb(h, nil)
	})
}

func (m *ConnectionManager) release(h *ConnectionHandle) {
	c := h.conn
	delete(c.refs, h)
	if len(c.refs) > 0 || c.closed || !c.ready {
		return
	}
	m.log.Debugf("last handle to %v released", c.id)
	m.disconnect(c, errors.Wrap(gap.ErrLinkDisconnected, "released"))
}

// Disconnect cancels a pending connection to id or disconnects its link. It
// reports whether there was anything to disconnect.
func (m *ConnectionManager) Disconnect(id gap.PeerID) bool {
	if r, ok := m.pending.Get(id); ok {
		m.pending.Delete(id)
		m.fail(r, errors.Wrapf(gap.ErrCanceled, "connect to %v", id))
		return true
	}
	if m.connecting != nil && m.connecting.id == id {
		m.conn.cancel()
		return true
	}
	c, ok := m.conns[id]
	if !ok {
		return false
	}
	m.disconnect(c, errors.Wrap(gap.ErrLinkDisconnected, "local disconnect"))
	return true
}

func (m *ConnectionManager) disconnect(c *Connection, err error) {
	if c.closed {
		return
	}
	m.teardown(c, err)
	m.conn.disconnect(c.handle)
}

// teardown removes every trace of c. It runs once per link.
func (m *ConnectionManager) teardown(c *Connection, err error) {
	if c.closed {
		return
	}
	c.closed = true
	delete(m.conns, c.id)
	if c.pause != nil {
		c.pause.Stop()
	}
	m.interrog.Cancel(c.id)
	c.sm.Close()
	if m.gatt != nil {
		m.gatt.RemoveConnection(c.id)
	}
	m.l2cap.RemoveConnection(c.handle)
	if p := m.cache.FindByID(c.id); p != nil && p.LE() != nil {
		p.MutLE().SetConnectionState(peer.NotConnected)
	}
	m.log.Infof("le link 0x%04X to %v closed: %v", c.handle, c.id, err)

	refs := make([]*ConnectionHandle, 0, len(c.refs))
	for h := range c.refs {
		refs = append(refs, h)
		delete(c.refs, h)
	}
	for _, h := range refs {
		h.invalidate()
	}

	var callbacks []ConnectCallback
	if c.req != nil {
		callbacks = c.req.callbacks
		c.req = nil
	}
	callbacks = append(callbacks, c.waiting...)
	c.waiting = nil
	for _, cb := range callbacks {
		m.post(cb, err)
	}

	if c.ready && m.onDisconnected != nil {
		m.onDisconnected(c.id)
	}
}

func (m *ConnectionManager) onLinkError(c *Connection) {
	m.log.Warnf("link error on 0x%04X", c.handle)
	m.disconnect(c, errors.Wrap(gap.ErrLinkDisconnected, "link error"))
}

// Pair raises the security of the link to id to at least level. cb is never
// called from within Pair.
func (m *ConnectionManager) Pair(id gap.PeerID, level gap.SecurityLevel, cb func(error)) {
	c, ok := m.conns[id]
	if !ok || !c.ready {
		m.d.Post(func() { cb(errors.Wrapf(gap.ErrNotFound, "no link to %v", id)) })
		return
	}
	m.upgradeSecurity(c, level, cb)
}

func (m *ConnectionManager) upgradeSecurity(c *Connection, level gap.SecurityLevel, cb func(error)) {
	c.sm.UpgradeSecurity(level, cb)
}

func (m *ConnectionManager) onPauseElapsed(c *Connection) {
	c.pause = nil
	if c.closed {
		return
	}
	p := m.preferred
	if c.role == hci.RoleCentral {
		if pr := m.cache.FindByID(c.id); pr != nil && pr.LE().PreferredConnectionParameters() != nil {
			p = *pr.LE().PreferredConnectionParameters()
		}
	}
	m.updateParameters(c, p)
}

// UpdateConnectionParameters asks for new parameters on the link to id.
func (m *ConnectionManager) UpdateConnectionParameters(id gap.PeerID, p hci.LEPreferredConnectionParameters) error {
	if err := p.Validate(); err != nil {
		return errors.Wrap(gap.ErrInvalidParameters, err.Error())
	}
	c, ok := m.conns[id]
	if !ok {
		return errors.Wrapf(gap.ErrNotFound, "no link to %v", id)
	}
	m.updateParameters(c, p)
	return nil
}

// updateParameters uses the link layer procedure when the central runs it or
// both sides support the Connection Parameters Request procedure, and L2CAP
// signaling otherwise.
func (m *ConnectionManager) updateParameters(c *Connection, p hci.LEPreferredConnectionParameters) {
	m.log.Debugf("updating parameters of 0x%04X to %+v", c.handle, p)
	if c.role == hci.RoleCentral {
		m.sendConnectionUpdate(c, p, false)
		return
	}
	if m.supportsParameterRequest(c) {
		m.sendConnectionUpdate(c, p, true)
		return
	}
	m.requestL2CAPUpdate(c, p)
}

func (m *ConnectionManager) supportsParameterRequest(c *Connection) bool {
	if m.localFeatures&hci.LEFeatureConnectionParametersRequest == 0 {
		return false
	}
	p := m.cache.FindByID(c.id)
	if p == nil || p.LE() == nil {
		return false
	}
	f, ok := p.LE().Features()
	return ok && f&hci.LEFeatureConnectionParametersRequest != 0
}

// sendConnectionUpdate runs LE Connection Update. With fallback set, an
// Unsupported Remote Feature status, whether in the Command Status or in the
// completion event, retries over L2CAP.
func (m *ConnectionManager) sendConnectionUpdate(c *Connection, p hci.LEPreferredConnectionParameters, fallback bool) {
	u := &cmd.LEConnectionUpdate{
		ConnectionHandle:   uint16(c.handle),
		ConnIntervalMin:    p.MinInterval,
		ConnIntervalMax:    p.MaxInterval,
		ConnLatency:        p.MaxLatency,
		SupervisionTimeout: p.SupervisionTimeout,
	}
	m.ctrl.SendCommand(u, func(e hci.Event) {
		if c.closed {
			return
		}
		err := e.Err()
		if err == nil {
			if e.Code == hci.LEConnectionUpdateCompleteEvent {
				m.onConnectionUpdateComplete(e)
			}
			return
		}
		if fallback && hci.IsStatus(err, hci.ErrUnsupportedRemoteFeature) {
			m.log.Debugf("0x%04X: link layer update unsupported, using l2cap", c.handle)
			m.requestL2CAPUpdate(c, p)
			return
		}
		m.log.Warnf("0x%04X: connection update: %v", c.handle, err)
	}, hci.LEConnectionUpdateCompleteEvent)
}

func (m *ConnectionManager) requestL2CAPUpdate(c *Connection, p hci.LEPreferredConnectionParameters) {
	err := m.l2cap.RequestConnectionParameterUpdate(c.handle, p, func(accepted bool) {
		if !accepted {
			m.log.Infof("0x%04X: central rejected parameter update", c.handle)
		}
	})
	if err != nil {
		m.log.Warnf("0x%04X: l2cap parameter update: %v", c.handle, err)
	}
}

// onPeerParameterRequest applies parameters a peripheral asked for over L2CAP.
func (m *ConnectionManager) onPeerParameterRequest(c *Connection, p hci.LEPreferredConnectionParameters) {
	if c.closed || c.role != hci.RoleCentral {
		return
	}
	if pr := m.cache.FindByID(c.id); pr != nil {
		pr.MutLE().SetPreferredConnectionParameters(p)
	}
	m.sendConnectionUpdate(c, p, false)
}

func (m *ConnectionManager) onConnectionUpdateComplete(e hci.Event) {
	ev := evt.LEConnectionUpdateComplete(e.Params)
	if _, err := ev.SupervisionTimeoutWErr(); err != nil {
		m.log.Warnf("malformed le connection update complete [% X]", e.Params)
		return
	}
	c := m.connByHandle(hci.ConnectionHandle(ev.ConnectionHandle()))
	if c == nil {
		return
	}
	if err := e.Err(); err != nil {
		m.log.Infof("0x%04X: connection update failed: %v", c.handle, err)
		return
	}
	c.params = hci.LEConnectionParameters{
		Interval:           ev.ConnInterval(),
		Latency:            ev.ConnLatency(),
		SupervisionTimeout: ev.SupervisionTimeout(),
	}
	if p := m.cache.FindByID(c.id); p != nil {
		p.MutLE().SetConnectionParameters(c.params)
	}
	m.log.Debugf("0x%04X: parameters now %+v", c.handle, c.params)
}

func (m *ConnectionManager) onRemoteConnectionParameterRequest(e hci.Event) {
	ev := evt.LERemoteConnectionParameterRequest(e.Params)
	if _, err := ev.TimeoutWErr(); err != nil {
		m.log.Warnf("malformed remote connection parameter request [% X]", e.Params)
		return
	}
	handle := ev.ConnectionHandle()
	if m.connByHandle(hci.ConnectionHandle(handle)) == nil {
		return
	}
	p := hci.LEPreferredConnectionParameters{
		MinInterval:        ev.IntervalMin(),
		MaxInterval:        ev.IntervalMax(),
		MaxLatency:         ev.Latency(),
		SupervisionTimeout: ev.Timeout(),
	}
	var c cmd.Command
	if err := p.Validate(); err != nil {
		m.log.Infof("0x%04X: rejecting parameters: %v", handle, err)
		c = &cmd.LERemoteConnectionParameterRequestNegativeReply{
			ConnectionHandle: handle,
			Reason:           uint8(hci.ErrUnacceptableConnParameters),
		}
	} else {
		c = &cmd.LERemoteConnectionParameterRequestReply{
			ConnectionHandle: handle,
			IntervalMin:      p.MinInterval,
			IntervalMax:      p.MaxInterval,
			Latency:          p.MaxLatency,
			Timeout:          p.SupervisionTimeout,
		}
	}
	m.ctrl.SendCommand(c, func(e hci.Event) {
		if err := e.Err(); err != nil {
			m.log.Warnf("0x%04X: %v: %v", handle, c, err)
		}
	}, hci.CommandCompleteEvent)
}

func (m *ConnectionManager) onLongTermKeyRequest(e hci.Event) {
	ev := evt.LELongTermKeyRequest(e.Params)
	if _, err := ev.EncryptionDiversifierWErr(); err != nil {
		m.log.Warnf("malformed ltk request [% X]", e.Params)
		return
	}
	c := m.connByHandle(hci.ConnectionHandle(ev.ConnectionHandle()))
	if c == nil {
		m.ctrl.SendCommand(&cmd.LELongTermKeyRequestNegativeReply{ConnectionHandle: ev.ConnectionHandle()}, nil, hci.CommandCompleteEvent)
		return
	}
	c.sm.OnLTKRequest(ev.RandomNumber(), ev.EncryptionDiversifier())
}

func (m *ConnectionManager) onEncryptionChange(e hci.Event) {
	ev := evt.EncryptionChange(e.Params)
	if _, err := ev.EncryptionEnabledWErr(); err != nil {
		return
	}
	if c := m.connByHandle(hci.ConnectionHandle(ev.ConnectionHandle())); c != nil {
		c.sm.OnEncryptionChange(e.Err(), ev.EncryptionEnabled() != 0)
	}
}

func (m *ConnectionManager) onEncryptionKeyRefresh(e hci.Event) {
	ev := evt.EncryptionKeyRefreshComplete(e.Params)
	if _, err := ev.ConnectionHandleWErr(); err != nil {
		return
	}
	if c := m.connByHandle(hci.ConnectionHandle(ev.ConnectionHandle())); c != nil {
		c.sm.OnEncryptionChange(e.Err(), true)
	}
}

func (m *ConnectionManager) onDisconnectionComplete(e hci.Event) {
	ev := evt.DisconnectionComplete(e.Params)
	if _, err := ev.ReasonWErr(); err != nil {
		return
	}
	if err := e.Err(); err != nil {
		m.log.Warnf("disconnection of 0x%04X failed: %v", ev.ConnectionHandle(), err)
		return
	}
	c := m.connByHandle(hci.ConnectionHandle(ev.ConnectionHandle()))
	if c == nil {
		return
	}
	reason := hci.StatusErr(ev.Reason())
	m.teardown(c, errors.Wrapf(gap.ErrLinkDisconnected, "%v", reason))
}

// Close fails pending requests with ErrCanceled, disconnects every link and
// detaches from the controller.
func (m *ConnectionManager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	for _, id := range m.handlers {
		m.ctrl.RemoveEventHandler(id)
	}
	if r := m.connecting; r != nil {
		m.connecting = nil
		m.fail(r, errors.Wrap(gap.ErrCanceled, "connection manager closed"))
	}
	m.conn.close()
	for p := m.pending.Oldest(); p != nil; p = p.Next() {
		m.fail(p.Value, errors.Wrap(gap.ErrCanceled, "connection manager closed"))
	}
	m.pending = orderedmap.New[gap.PeerID, *request]()
	for _, c := range m.Connections() {
		m.disconnect(c, errors.Wrap(gap.ErrCanceled, "connection manager closed"))
	}
	m.self.Invalidate()
}
