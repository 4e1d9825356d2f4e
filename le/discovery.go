package le

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/adv"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
	"github.com/rigado/gap/peer"
	"github.com/rigado/gap/weakref"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ScanPeriod is how long a scan runs before it is restarted with a fresh
// duplicate filter and result cache.
var ScanPeriod = 10240 * time.Millisecond

// Advertising report event types [Vol 4, Part E, 7.7.65.2].
const (
	advInd        = 0x00
	advDirectInd  = 0x01
	advScanInd    = 0x02
	advNonconnInd = 0x03
	scanRsp       = 0x04
)

type scanState int

const (
	scanIdle scanState = iota
	scanStarting
	scanRunning
	scanStopping
)

// DiscoverySession keeps LE scanning running for as long as it is active.
type DiscoverySession struct {
	mgr     weakref.Ref[*DiscoveryManager]
	active  bool
	scan    bool
	filter  DiscoveryFilter
	result  func(p *peer.Peer)
	onError func()
}

// Filter returns the filter applied to results of the session. It may be
// changed at any time.
func (s *DiscoverySession) Filter() *DiscoveryFilter { return &s.filter }

// ActiveScan reports whether the session asked for scan responses.
func (s *DiscoverySession) ActiveScan() bool { return s.scan }

// Active reports whether the session still receives results.
func (s *DiscoverySession) Active() bool { return s.active }

// SetErrorCallback sets the function called when scanning fails and the
// session is ended by the manager.
func (s *DiscoverySession) SetErrorCallback(fn func()) { s.onError = fn }

// SetResultCallback sets the function called for every matching peer. Peers
// already seen during the current scan period are reported right away.
func (s *DiscoverySession) SetResultCallback(fn func(p *peer.Peer)) {
	s.result = fn
	if fn == nil {
		return
	}
	m, ok := s.mgr.Get()
	if !ok {
		return
	}
	for _, id := range m.CachedResults() {
		if !s.active {
			return
		}
		if p := m.cache.FindByID(id); p != nil && s.filter.Matches(p) {
			fn(p)
		}
	}
}

// Stop ends the session. Scanning stops with the last session.
func (s *DiscoverySession) Stop() {
	if !s.active {
		return
	}
	s.active = false
	if m, ok := s.mgr.Get(); ok {
		m.removeSession(s)
	}
}

func (s *DiscoverySession) notify(p *peer.Peer) {
	if s.active && s.result != nil && s.filter.Matches(p) {
		s.result(p)
	}
}

// DiscoveryCallback receives a new session, or the reason scanning could not start.
type DiscoveryCallback func(s *DiscoverySession, err error)

type discoveryRequest struct {
	active bool
	cb     DiscoveryCallback
}

// DiscoveryManager runs LE scanning on behalf of any number of sessions and
// feeds advertising reports into the peer cache.
type DiscoveryManager struct {
	d     dispatch.Dispatcher
	ctrl  hci.Controller
	cache *peer.Cache
	log   gap.Logger

	self    *weakref.Factory[*DiscoveryManager]
	handler hci.HandlerID
	closed  bool

	params   cmd.LESetScanParameters
	state    scanState
	scanning bool // the running scan is active
	runner   *hci.SequentialCommandRunner
	period   dispatch.Timer

	pending  []discoveryRequest
	sessions map[*DiscoverySession]struct{}

	// advertising payloads seen during the current scan period, by peer
	cached *orderedmap.OrderedMap[gap.PeerID, []byte]
}

// NewDiscoveryManager returns a manager scanning through ctrl.
func NewDiscoveryManager(d dispatch.Dispatcher, ctrl hci.Controller, cache *peer.Cache, l gap.Logger) *DiscoveryManager {
	if l == nil {
		l = gap.ComponentLogger("gap-le")
	}
	m := &DiscoveryManager{
		d:        d,
		ctrl:     ctrl,
		cache:    cache,
		log:      l,
		params:   hci.DefaultScanParameters,
		runner:   hci.NewSequentialCommandRunner(ctrl),
		sessions: make(map[*DiscoverySession]struct{}),
		cached:   orderedmap.New[gap.PeerID, []byte](),
	}
	m.self = weakref.NewFactory(m)
	m.handler = ctrl.AddEventHandler(hci.LEAdvertisingReportEvent, m.onAdvertisingReport)
	return m
}

// SetScanParameters replaces the interval, window, own address type and
// filter policy used by the next scan. The scan type follows the sessions.
func (m *DiscoveryManager) SetScanParameters(p cmd.LESetScanParameters) error {
	if err := hci.ValidateScanParams(p); err != nil {
		return errors.Wrap(gap.ErrInvalidParameters, err.Error())
	}
	m.params = p
	return nil
}

// Discovering reports whether any session is active.
func (m *DiscoveryManager) Discovering() bool { return len(m.sessions) > 0 }

// ActiveScanning reports whether the running scan requests scan responses.
func (m *DiscoveryManager) ActiveScanning() bool {
	return m.state == scanRunning && m.scanning
}

// CachedResults returns the peers seen during the current scan period, in the
// order they were first seen.
func (m *DiscoveryManager) CachedResults() []gap.PeerID {
	ids := make([]gap.PeerID, 0, m.cached.Len())
	for p := m.cached.Oldest(); p != nil; p = p.Next() {
		ids = append(ids, p.Key)
	}
	return ids
}

// RequestDiscovery starts scanning if needed and hands cb a new session once
// the scan runs. An active session upgrades a running passive scan. cb is
// called exactly once.
func (m *DiscoveryManager) RequestDiscovery(active bool, cb DiscoveryCallback) {
	if m.closed {
		cb(nil, errors.Wrap(gap.ErrNotReady, "discovery manager closed"))
		return
	}
	if m.state == scanRunning && (m.scanning || !active) {
		cb(m.newSession(active), nil)
		return
	}
	m.pending = append(m.pending, discoveryRequest{active: active, cb: cb})
	switch m.state {
	case scanIdle:
		m.startScan()
	case scanRunning:
		// passive scan running, restart it as active
		m.stopScan()
	}
}

func (m *DiscoveryManager) newSession(active bool) *DiscoverySession {
	s := &DiscoverySession{mgr: m.self.Ref(), active: true, scan: active}
	m.sessions[s] = struct{}{}
	return s
}

func (m *DiscoveryManager) wantActive() bool {
	for s := range m.sessions {
		if s.scan {
			return true
		}
	}
	for _, r := range m.pending {
		if r.active {
			return true
		}
	}
	return false
}

func (m *DiscoveryManager) startScan() {
	p := m.params
	p.LEScanType = hci.LEScanTypePassive
	if m.wantActive() {
		p.LEScanType = hci.LEScanTypeActive
	}
	m.state = scanStarting
	m.log.Debugf("starting %s scan", scanTypeString(p.LEScanType))

	m.runner.QueueCommand(&p, nil, true, hci.CommandCompleteEvent)
	m.runner.QueueCommand(&cmd.LESetScanEnable{LEScanEnable: 1, FilterDuplicates: 1}, nil, true, hci.CommandCompleteEvent)
	m.runner.RunCommands(func(err error) {
		if m.closed {
			return
		}
		if err != nil {
			m.state = scanIdle
			m.log.Warnf("scan failed to start: %v", err)
			m.fail(errors.Wrap(err, "le scan"))
			return
		}
		m.state = scanRunning
		m.scanning = p.LEScanType == hci.LEScanTypeActive
		m.period = m.d.PostDelayed(ScanPeriod, m.onScanPeriod)

		pending := m.pending
		m.pending = nil
		var later []discoveryRequest
		for _, r := range pending {
			if r.active && !m.scanning {
				later = append(later, r)
				continue
			}
			r.cb(m.newSession(r.active), nil)
		}
		m.pending = append(later, m.pending...)
		if len(m.sessions) == 0 || len(m.pending) > 0 {
			m.stopScan()
		}
	})
}

func (m *DiscoveryManager) stopScan() {
	if m.state != scanRunning {
		return
	}
	if m.period != nil {
		m.period.Stop()
		m.period = nil
	}
	m.state = scanStopping
	m.log.Debugf("stopping scan")
	m.ctrl.SendCommand(&cmd.LESetScanEnable{}, func(e hci.Event) {
		if m.closed {
			return
		}
		if err := e.Err(); err != nil {
			m.log.Warnf("scan disable: %v", err)
		}
		m.state = scanIdle
		m.cached = orderedmap.New[gap.PeerID, []byte]()
		if len(m.sessions) > 0 || len(m.pending) > 0 {
			m.startScan()
		}
	}, hci.CommandCompleteEvent)
}

// onScanPeriod restarts the scan so peers filtered as duplicates are
// reported again.
func (m *DiscoveryManager) onScanPeriod() {
	m.period = nil
	if m.state != scanRunning {
		return
	}
	m.log.Debugf("scan period over")
	m.stopScan()
}

func (m *DiscoveryManager) removeSession(s *DiscoverySession) {
	if _, ok := m.sessions[s]; !ok {
		return
	}
	delete(m.sessions, s)
	if len(m.sessions) > 0 {
		return
	}
	if m.state == scanRunning {
		m.stopScan()
	}
}

func (m *DiscoveryManager) fail(err error) {
	pending := m.pending
	m.pending = nil
	sessions := make([]*DiscoverySession, 0, len(m.sessions))
	for s := range m.sessions {
		sessions = append(sessions, s)
		delete(m.sessions, s)
	}
	for _, r := range pending {
		r.cb(nil, err)
	}
	for _, s := range sessions {
		s.active = false
		if s.onError != nil {
			s.onError()
		}
	}
}

func (m *DiscoveryManager) onAdvertisingReport(e hci.Event) {
	r := evt.LEAdvertisingReport(e.Params)
	n, err := r.NumReportsWErr()
	if err != nil {
		m.log.Warnf("malformed advertising report [% X]", e.Params)
		return
	}
	for i := 0; i < int(n); i++ {
		typ, err1 := r.EventTypeWErr(i)
		addrType, err2 := r.AddressTypeWErr(i)
		bdaddr, err3 := r.AddressWErr(i)
		data, err4 := r.DataWErr(i)
		rssi, err5 := r.RSSIWErr(i)
		if err := firstErr(err1, err2, err3, err4, err5); err != nil {
			m.log.Warnf("malformed advertising report %d: %v", i, err)
			return
		}
		m.addReport(typ, gap.LEAddressFromHCI(addrType, bdaddr[:]), data, rssi)
	}
}

func (m *DiscoveryManager) addReport(typ uint8, addr gap.Address, data []byte, rssi int8) {
	if m.state != scanRunning && m.state != scanStopping {
		return
	}
	connectable := typ == advInd || typ == advDirectInd

	p := m.cache.FindByAddress(addr)
	if p == nil {
		if typ == scanRsp {
			// a scan response only makes sense with the advertisement it answers
			return
		}
		var err error
		if p, err = m.cache.NewPeer(addr, connectable); err != nil {
			m.log.Warnf("can't add peer %v: %v", addr, err)
			return
		}
	} else if connectable {
		p.SetConnectable(true)
	}

	payload := data
	if typ == scanRsp {
		prev, _ := m.cached.Get(p.ID())
		payload = append(append([]byte(nil), prev...), data...)
	} else {
		m.cached.Set(p.ID(), append([]byte(nil), data...))
	}

	ad, err := adv.Parse(payload)
	if err != nil {
		m.log.Debugf("bad advertising data from %v: %v", addr, err)
		p.SetRSSI(rssi)
	} else {
		p.MutLE().SetAdvertisingData(rssi, ad)
	}

	sessions := make([]*DiscoverySession, 0, len(m.sessions))
	for s := range m.sessions {
		sessions = append(sessions, s)
	}
	for _, s := range sessions {
		s.notify(p)
	}
}

// Close ends every session, fails pending requests with ErrCanceled and
// disables scanning.
func (m *DiscoveryManager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.self.Invalidate()
	m.ctrl.RemoveEventHandler(m.handler)
	m.runner.Cancel()
	if m.period != nil {
		m.period.Stop()
		m.period = nil
	}
	if m.state == scanRunning || m.state == scanStarting {
		m.ctrl.SendCommand(&cmd.LESetScanEnable{}, nil, hci.CommandCompleteEvent)
	}
	m.state = scanIdle
	m.fail(errors.Wrap(gap.ErrCanceled, "discovery manager closed"))
}

func scanTypeString(t uint8) string {
	if t == hci.LEScanTypeActive {
		return "active"
	}
	return "passive"
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
