package bredr

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/adv"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
	"github.com/rigado/gap/peer"
	"github.com/rigado/gap/weakref"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// inquiryLength is in units of 1.28 s.
const inquiryLength = 0x08

// DiscoverySession keeps inquiry running for as long as it is active.
type DiscoverySession struct {
	mgr     weakref.Ref[*DiscoveryManager]
	active  bool
	result  func(p *peer.Peer)
	onError func()
}

// SetResultCallback sets the function called for every peer found.
func (s *DiscoverySession) SetResultCallback(fn func(p *peer.Peer)) { s.result = fn }

// SetErrorCallback sets the function called when inquiry fails and the
// session is ended by the manager.
func (s *DiscoverySession) SetErrorCallback(fn func()) { s.onError = fn }

// Active reports whether the session still receives results.
func (s *DiscoverySession) Active() bool { return s.active }

// Stop ends the session. Inquiry stops with the last session.
func (s *DiscoverySession) Stop() {
	if !s.active {
		return
	}
	s.active = false
	if m, ok := s.mgr.Get(); ok {
		m.stopDiscovery(s)
	}
}

// DiscoverableSession keeps inquiry scan enabled for as long as it is active.
type DiscoverableSession struct {
	mgr    weakref.Ref[*DiscoveryManager]
	active bool
}

// Active reports whether the session is held.
func (s *DiscoverableSession) Active() bool { return s.active }

// Stop releases the session. Inquiry scan is disabled with the last one.
func (s *DiscoverableSession) Stop() {
	if !s.active {
		return
	}
	s.active = false
	if m, ok := s.mgr.Get(); ok {
		m.stopDiscoverable(s)
	}
}

type (
	DiscoveryCallback    func(s *DiscoverySession, err error)
	DiscoverableCallback func(s *DiscoverableSession, err error)
)

// DiscoveryManager runs BR/EDR inquiry and inquiry scan on behalf of any
// number of sessions.
type DiscoveryManager struct {
	ctrl  hci.Controller
	cache *peer.Cache
	log   gap.Logger

	self     *weakref.Factory[*DiscoveryManager]
	handlers []hci.HandlerID
	closed   bool

	pendingDiscovery []DiscoveryCallback
	discovering      map[*DiscoverySession]struct{}
	// zombies were stopped while a cancel of the inquiry is still in flight.
	zombies    map[*DiscoverySession]struct{}
	inquiring  bool
	inquiryTxn hci.TransactionID

	pendingDiscoverable []DiscoverableCallback
	discoverable        map[*DiscoverableSession]struct{}
	scanUpdating        bool
	scanDirty           bool

	names *orderedmap.OrderedMap[gap.PeerID, hci.TransactionID]
}

// NewDiscoveryManager returns a manager receiving inquiry events from ctrl.
func NewDiscoveryManager(ctrl hci.Controller, cache *peer.Cache, l gap.Logger) *DiscoveryManager {
	if l == nil {
		l = gap.ComponentLogger("gap-bredr")
	}
	m := &DiscoveryManager{
		ctrl:         ctrl,
		cache:        cache,
		log:          l,
		discovering:  make(map[*DiscoverySession]struct{}),
		zombies:      make(map[*DiscoverySession]struct{}),
		discoverable: make(map[*DiscoverableSession]struct{}),
		names:        orderedmap.New[gap.PeerID, hci.TransactionID](),
	}
	m.self = weakref.NewFactory(m)
	m.handlers = []hci.HandlerID{
		ctrl.AddEventHandler(hci.InquiryResultEvent, m.onInquiryResult),
		ctrl.AddEventHandler(hci.InquiryResultWithRSSIEvent, m.onInquiryResultWithRSSI),
		ctrl.AddEventHandler(hci.ExtendedInquiryResultEvent, m.onExtendedInquiryResult),
		ctrl.AddEventHandler(hci.InquiryCompleteEvent, m.onStrayInquiryComplete),
	}
	return m
}

// SetExtendedInquiryMode asks the controller for Extended Inquiry Results.
func (m *DiscoveryManager) SetExtendedInquiryMode(cb func(error)) {
	m.ctrl.SendCommand(&cmd.WriteInquiryMode{InquiryMode: hci.InquiryModeExtended}, func(e hci.Event) {
		cb(errors.Wrap(e.Err(), "write inquiry mode"))
	}, hci.CommandCompleteEvent)
}

// Discovering reports whether any discovery session is active.
func (m *DiscoveryManager) Discovering() bool { return len(m.discovering) > 0 }

// Discoverable reports whether any discoverable session is active.
func (m *DiscoveryManager) Discoverable() bool { return len(m.discoverable) > 0 }

// PendingNameRequests returns the peers with a Remote Name Request in flight, oldest first.
func (m *DiscoveryManager) PendingNameRequests() []gap.PeerID {
	var ids []gap.PeerID
	for p := m.names.Oldest(); p != nil; p = p.Next() {
		ids = append(ids, p.Key)
	}
	return ids
}

// RequestDiscovery starts inquiry if needed and hands cb a new session once
// it runs. cb is called exactly once.
func (m *DiscoveryManager) RequestDiscovery(cb DiscoveryCallback) {
	if m.closed {
		cb(nil, errors.Wrap(gap.ErrNotReady, "discovery manager closed"))
		return
	}
	if len(m.pendingDiscovery) > 0 {
		m.pendingDiscovery = append(m.pendingDiscovery, cb)
		return
	}
	if len(m.discovering) > 0 || len(m.zombies) > 0 {
		cb(m.newDiscoverySession(), nil)
		return
	}
	m.pendingDiscovery = append(m.pendingDiscovery, cb)
	m.startInquiry()
}

func (m *DiscoveryManager) newDiscoverySession() *DiscoverySession {
	s := &DiscoverySession{mgr: m.self.Ref(), active: true}
	m.discovering[s] = struct{}{}
	return s
}

func (m *DiscoveryManager) startInquiry() {
	if m.inquiring {
		return
	}
	m.log.Debugf("starting inquiry")
	m.inquiring = true
	c := &cmd.Inquiry{LAP: hci.GIAC, InquiryLength: inquiryLength}
	m.inquiryTxn = m.ctrl.SendExclusiveCommand(c, m.onInquiryEvent, hci.InquiryCompleteEvent, cmd.RemoteNameRequestOpCode)
}

func (m *DiscoveryManager) onInquiryEvent(e hci.Event) {
	if e.Code == hci.InquiryCompleteEvent {
		m.inquiring = false
		m.onInquiryComplete(e.Err())
		return
	}

	// Command Status, or Command Complete from controllers that answer
	// Inquiry that way.
	if err := e.Err(); err != nil {
		m.inquiring = false
		m.log.Warnf("inquiry failed to start: %v", err)
		m.failDiscovery(errors.Wrap(err, "inquiry"))
		return
	}
	pending := m.pendingDiscovery
	m.pendingDiscovery = nil
	for _, cb := range pending {
		cb(m.newDiscoverySession(), nil)
	}
}

func (m *DiscoveryManager) onInquiryComplete(err error) {
	for s := range m.zombies {
		delete(m.zombies, s)
	}
	if err != nil {
		m.log.Warnf("inquiry complete: %v", err)
		m.failDiscovery(errors.Wrap(err, "inquiry"))
		return
	}
	if len(m.discovering) > 0 || len(m.pendingDiscovery) > 0 {
		m.log.Debugf("inquiry complete, restarting for %d sessions", len(m.discovering))
		m.startInquiry()
	}
}

// onStrayInquiryComplete handles an Inquiry Complete no transaction waits
// for, e.g. one racing an Inquiry Cancel.
func (m *DiscoveryManager) onStrayInquiryComplete(e hci.Event) {
	if m.inquiring {
		return
	}
	m.onInquiryComplete(e.Err())
}

// failDiscovery resolves pending requests with err and ends every session.
func (m *DiscoveryManager) failDiscovery(err error) {
	pending := m.pendingDiscovery
	m.pendingDiscovery = nil
	for s := range m.zombies {
		delete(m.zombies, s)
	}
	sessions := make([]*DiscoverySession, 0, len(m.discovering))
	for s := range m.discovering {
		sessions = append(sessions, s)
		delete(m.discovering, s)
	}

	for _, cb := range pending {
		cb(nil, err)
	}
	for _, s := range sessions {
		s.active = false
		if s.onError != nil {
			s.onError()
		}
	}
}

func (m *DiscoveryManager) stopDiscovery(s *DiscoverySession) {
	if _, ok := m.discovering[s]; !ok {
		return
	}
	delete(m.discovering, s)
	if !m.inquiring {
		return
	}
	m.zombies[s] = struct{}{}
	if len(m.discovering) > 0 {
		return
	}

	m.log.Debugf("last discovery session stopped, cancelling inquiry")
	txn := m.inquiryTxn
	m.ctrl.SendCommand(&cmd.InquiryCancel{}, func(e hci.Event) {
		if err := e.Err(); err != nil {
			// Inquiry already over; its completion cleans up.
			m.log.Debugf("inquiry cancel: %v", err)
			return
		}
		if !m.inquiring || m.inquiryTxn != txn {
			// the canceled inquiry completed and another one started
			return
		}
		m.ctrl.AbandonTransaction(txn)
		m.inquiring = false
		m.onInquiryComplete(nil)
	}, hci.CommandCompleteEvent)
}

func (m *DiscoveryManager) onInquiryResult(e hci.Event) {
	r := evt.InquiryResult(e.Params)
	if !r.Valid() {
		m.log.Warnf("malformed inquiry result [% X]", e.Params)
		return
	}
	for i := 0; i < int(r.NumResponses()); i++ {
		m.addResult(r.BDADDR(i), peer.InquiryData{
			PageScanRepetitionMode: r.PageScanRepetitionMode(i),
			ClassOfDevice:          r.ClassOfDevice(i),
			ClockOffset:            r.ClockOffset(i),
		})
	}
}

func (m *DiscoveryManager) onInquiryResultWithRSSI(e hci.Event) {
	r := evt.InquiryResultWithRSSI(e.Params)
	if !r.Valid() {
		m.log.Warnf("malformed inquiry result with rssi [% X]", e.Params)
		return
	}
	for i := 0; i < int(r.NumResponses()); i++ {
		rssi := r.RSSI(i)
		m.addResult(r.BDADDR(i), peer.InquiryData{
			PageScanRepetitionMode: r.PageScanRepetitionMode(i),
			ClassOfDevice:          r.ClassOfDevice(i),
			ClockOffset:            r.ClockOffset(i),
			RSSI:                   &rssi,
		})
	}
}

func (m *DiscoveryManager) onExtendedInquiryResult(e hci.Event) {
	r := evt.ExtendedInquiryResult(e.Params)
	if !r.Valid() {
		m.log.Warnf("malformed extended inquiry result [% X]", e.Params)
		return
	}
	rssi := r.RSSI()
	data := peer.InquiryData{
		PageScanRepetitionMode: r.PageScanRepetitionMode(),
		ClassOfDevice:          r.ClassOfDevice(),
		ClockOffset:            r.ClockOffset(),
		RSSI:                   &rssi,
	}
	eir, err := adv.Parse(r.ExtendedInquiryResponse())
	if err != nil {
		m.log.Debugf("bad extended inquiry response from %X: %v", r.BDADDR(), err)
	} else {
		data.EIR = eir
	}
	m.addResult(r.BDADDR(), data)
}

func (m *DiscoveryManager) addResult(bdaddr [6]byte, data peer.InquiryData) {
	addr := gap.NewAddress(gap.AddressBREDR, bdaddr[:])
	p := m.cache.FindByAddress(addr)
	if p == nil {
		var err error
		if p, err = m.cache.NewPeer(addr, true); err != nil {
			m.log.Warnf("can't add peer %v: %v", addr, err)
			return
		}
	}
	p.MutBrEdr().SetInquiryData(data)

	if _, known := p.Name(); !known {
		m.requestName(p)
	}

	sessions := make([]*DiscoverySession, 0, len(m.discovering))
	for s := range m.discovering {
		sessions = append(sessions, s)
	}
	for _, s := range sessions {
		if s.active && s.result != nil {
			s.result(p)
		}
	}
}

// requestName reads the name of p unless a request for it is already running.
func (m *DiscoveryManager) requestName(p *peer.Peer) {
	id := p.ID()
	if _, ok := m.names.Get(id); ok {
		return
	}
	c := &cmd.RemoteNameRequest{}
	bd := p.MutBrEdr()
	addr := bd.Address()
	copy(c.BDADDR[:], addr.Value[:])
	if psrm, ok := bd.PageScanRepetitionMode(); ok {
		c.PageScanRepetitionMode = psrm
	}
	if offset, ok := bd.ClockOffset(); ok {
		c.ClockOffset = offset
	}

	txn := m.ctrl.SendExclusiveCommand(c, func(e hci.Event) {
		if e.Code == hci.CommandStatusEvent && e.Err() == nil {
			return
		}
		m.names.Delete(id)
		if err := e.Err(); err != nil {
			m.log.Debugf("remote name request for %v: %v", id, err)
			return
		}
		n := evt.RemoteNameRequestComplete(e.Params)
		if p := m.cache.FindByID(id); p != nil {
			p.SetName(n.RemoteName())
		}
	}, hci.RemoteNameRequestCompleteEvent, cmd.InquiryOpCode)
	m.names.Set(id, txn)
}

// RequestDiscoverable enables inquiry scan if needed and hands cb a new
// session. cb is called exactly once.
func (m *DiscoveryManager) RequestDiscoverable(cb DiscoverableCallback) {
	if m.closed {
		cb(nil, errors.Wrap(gap.ErrNotReady, "discovery manager closed"))
		return
	}
	if len(m.pendingDiscoverable) > 0 {
		m.pendingDiscoverable = append(m.pendingDiscoverable, cb)
		return
	}
	if len(m.discoverable) > 0 {
		cb(m.newDiscoverableSession(), nil)
		return
	}
	m.pendingDiscoverable = append(m.pendingDiscoverable, cb)
	m.updateInquiryScan()
}

func (m *DiscoveryManager) newDiscoverableSession() *DiscoverableSession {
	s := &DiscoverableSession{mgr: m.self.Ref(), active: true}
	m.discoverable[s] = struct{}{}
	return s
}

func (m *DiscoveryManager) stopDiscoverable(s *DiscoverableSession) {
	delete(m.discoverable, s)
	if len(m.discoverable) == 0 {
		m.updateInquiryScan()
	}
}

func (m *DiscoveryManager) updateInquiryScan() {
	if m.scanUpdating {
		m.scanDirty = true
		return
	}
	m.scanUpdating = true
	on := len(m.discoverable) > 0 || len(m.pendingDiscoverable) > 0
	updateScanEnable(m.ctrl, scanInquiry, on, func(err error) {
		m.scanUpdating = false
		if err != nil {
			m.log.Warnf("inquiry scan update failed: %v", err)
		}

		pending := m.pendingDiscoverable
		m.pendingDiscoverable = nil
		for _, cb := range pending {
			if err != nil {
				cb(nil, err)
				continue
			}
			cb(m.newDiscoverableSession(), nil)
		}

		if m.scanDirty && !m.closed {
			m.scanDirty = false
			m.updateInquiryScan()
		}
	})
}

// Close ends every session, fails pending requests with ErrCanceled and
// detaches from the controller.
func (m *DiscoveryManager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.self.Invalidate()
	for _, id := range m.handlers {
		m.ctrl.RemoveEventHandler(id)
	}
	for p := m.names.Oldest(); p != nil; p = p.Next() {
		m.ctrl.AbandonTransaction(p.Value)
	}
	m.names = orderedmap.New[gap.PeerID, hci.TransactionID]()
	if m.inquiring {
		m.ctrl.AbandonTransaction(m.inquiryTxn)
		m.inquiring = false
		m.ctrl.SendCommand(&cmd.InquiryCancel{}, nil, hci.CommandCompleteEvent)
	}

	m.failDiscovery(errors.Wrap(gap.ErrCanceled, "discovery manager closed"))

	pending := m.pendingDiscoverable
	m.pendingDiscoverable = nil
	for _, cb := range pending {
		cb(nil, errors.Wrap(gap.ErrCanceled, "discovery manager closed"))
	}
	for s := range m.discoverable {
		s.active = false
		delete(m.discoverable, s)
	}
}
