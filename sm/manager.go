// Package sm implements the LE Security Manager: SMP pairing, link encryption
// and key distribution for one LE link.
package sm

import (
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
)

// Config describes the link a SecurityManager protects.
type Config struct {
	PeerID   gap.PeerID
	Role     hci.Role
	Local    gap.Address
	Remote   gap.Address
	Bondable gap.BondableMode
	// Delegate may be nil, in which case only Just Works is possible.
	Delegate gap.PairingDelegate
	// Bond holds the keys of an earlier pairing, if any.
	Bond *gap.PairingData

	// PairingData receives the keys of a pairing that bonded.
	PairingData func(gap.PairingData)
	// SecurityChanged is called whenever the link encryption changes.
	SecurityChanged func(gap.SecurityProperties)
}

type request struct {
	level gap.SecurityLevel
	cb    func(error)
}

// SecurityManager runs SMP on the fixed SMP channel of a link. All methods
// must be called on the dispatcher.
type SecurityManager struct {
	d    dispatch.Dispatcher
	ch   gap.Channel
	link Link
	cfg  Config
	log  gap.Logger

	security gap.SecurityProperties
	bond     *gap.PairingData
	pairing  *pairing
	requests []request

	// key the central is encrypting with outside of pairing
	encrypting *gap.LTK
	// key the peripheral handed to the controller outside of pairing
	replied *gap.LTK

	securityRequested bool
	timer             dispatch.Timer
	timedOut          bool
	closed            bool
}

// New returns a SecurityManager bound to the SMP channel ch.
func New(d dispatch.Dispatcher, ch gap.Channel, link Link, cfg Config, l gap.Logger) *SecurityManager {
	if l == nil {
		l = gap.ComponentLogger("sm")
	}
	m := &SecurityManager{
		d:    d,
		ch:   ch,
		link: link,
		cfg:  cfg,
		log:  l.ChildLogger(map[string]interface{}{"peer": cfg.PeerID.String()}),
		bond: cfg.Bond,
	}
	ch.Activate(m.onSDU, m.Close)
	return m
}

// Security returns the properties of the current link encryption.
func (m *SecurityManager) Security() gap.SecurityProperties { return m.security }

// Pairing reports whether a pairing procedure is in progress.
func (m *SecurityManager) Pairing() bool { return m.pairing != nil }

// UpgradeSecurity raises the link to at least level. cb is always invoked
// asynchronously or from a later event, never inline.
func (m *SecurityManager) UpgradeSecurity(level gap.SecurityLevel, cb func(error)) {
	switch {
	case m.closed:
		m.d.Post(func() { cb(gap.ErrLinkDisconnected) })
		return
	case m.timedOut:
		m.d.Post(func() { cb(errors.Wrap(gap.ErrTimedOut, "smp")) })
		return
	case m.security.Level >= level:
		m.d.Post(func() { cb(nil) })
		return
	}

	m.requests = append(m.requests, request{level: level, cb: cb})
	if m.pairing != nil || m.encrypting != nil || m.securityRequested {
		return
	}

	if m.cfg.Role == hci.RoleCentral {
		if ltk := m.bondLTK(level); ltk != nil {
			m.startEncryption(*ltk)
			return
		}
		m.startPairing(level)
		return
	}
	m.sendSecurityRequest(level)
}

// Close fails everything pending with ErrLinkDisconnected.
func (m *SecurityManager) Close() {
	if m.closed {
		return
	}
	m.closed = true
	m.fail(gap.ErrLinkDisconnected)
	m.ch.Deactivate()
}

func (m *SecurityManager) ioCap() gap.IOCapability {
	if m.cfg.Delegate == nil {
		return gap.IONoInputNoOutput
	}
	return m.cfg.Delegate.IOCapability()
}

func (m *SecurityManager) bondable() bool {
	return m.cfg.Bondable == gap.Bondable
}

func (m *SecurityManager) authReq(level gap.SecurityLevel) byte {
	a := authReqSC
	if m.bondable() {
		a |= authReqBond
	}
	if level >= gap.SecurityAuthenticated {
		a |= authReqMITM
	}
	return a
}

// bondLTK returns the stored key a central can encrypt with to reach level.
func (m *SecurityManager) bondLTK(level gap.SecurityLevel) *gap.LTK {
	if m.bond == nil || m.bond.PeerLTK == nil || m.bond.PeerLTK.Security.Level < level {
		return nil
	}
	return m.bond.PeerLTK
}

func (m *SecurityManager) pendingLevel() gap.SecurityLevel {
	level := gap.SecurityEncrypted
	for _, r := range m.requests {
		if r.level > level {
			level = r.level
		}
	}
	return level
}

func (m *SecurityManager) send(b []byte) {
	if err := m.ch.Send(b); err != nil {
		m.log.Warnf("smp send 0x%02X: %v", b[0], err)
	}
}

func (m *SecurityManager) resetTimer() {
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = m.d.PostDelayed(Timeout, m.onTimeout)
}

func (m *SecurityManager) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *SecurityManager) onTimeout() {
	m.timer = nil
	m.log.Warnf("smp timeout")
	// No further SMP traffic is allowed on this link [Vol 3, Part H, 3.4].
	m.timedOut = true
	m.fail(errors.Wrap(gap.ErrTimedOut, "smp"))
}

func (m *SecurityManager) sendSecurityRequest(level gap.SecurityLevel) {
	m.securityRequested = true
	m.resetTimer()
	m.send([]byte{securityRequest, m.authReq(level)})
}

func (m *SecurityManager) startEncryption(ltk gap.LTK) {
	k := &ltk
	m.encrypting = k
	m.resetTimer()
	m.link.StartEncryption(ltk, func(err error) {
		if err == nil || m.encrypting != k {
			return
		}
		m.encrypting = nil
		m.stopTimer()
		m.resolve(errors.Wrap(err, "start encryption"))
	})
}

// OnLTKRequest handles an LE Long Term Key Request for this link.
func (m *SecurityManager) OnLTKRequest(rand uint64, ediv uint16) {
	if p := m.pairing; p != nil && p.phase == phaseEncrypt && !p.initiator {
		if rand != 0 || ediv != 0 {
			m.link.ReplyLTK(nil)
			return
		}
		ltk := p.ltk
		m.link.ReplyLTK(&ltk)
		return
	}

	if m.bond != nil && m.bond.LocalLTK != nil && m.bond.LocalLTK.Rand == rand && m.bond.LocalLTK.EDiv == ediv {
		ltk := *m.bond.LocalLTK
		m.replied = &ltk
		m.link.ReplyLTK(&ltk)
		return
	}
	m.log.Infof("no key for ltk request (ediv 0x%04X)", ediv)
	m.link.ReplyLTK(nil)
}

// OnEncryptionChange handles Encryption Change and Encryption Key Refresh Complete.
func (m *SecurityManager) OnEncryptionChange(err error, enabled bool) {
	if err == nil && !enabled {
		err = errors.New("encryption disabled")
	}

	if p := m.pairing; p != nil && p.phase == phaseEncrypt {
		if err != nil {
			m.fail(errors.Wrap(err, "pairing encryption"))
			return
		}
		m.setSecurity(p.ltk.Security)
		m.startKeyDistribution(p)
		return
	}

	var ltk *gap.LTK
	switch {
	case m.encrypting != nil:
		ltk, m.encrypting = m.encrypting, nil
	case m.replied != nil:
		ltk, m.replied = m.replied, nil
	}

	if err != nil {
		m.log.Warnf("encryption failed: %v", err)
		m.setSecurity(gap.SecurityProperties{})
		if ltk != nil {
			m.stopTimer()
			m.resolve(err)
		}
		return
	}
	if ltk != nil {
		m.stopTimer()
		m.setSecurity(ltk.Security)
		if m.pairing == nil {
			m.securityRequested = false
			m.resolve(nil)
		}
	}
}

func (m *SecurityManager) setSecurity(p gap.SecurityProperties) {
	m.security = p
	m.log.Infof("security: %v", p)
	if m.cfg.SecurityChanged != nil {
		m.cfg.SecurityChanged(p)
	}
}

// resolve answers every pending request: err if set, otherwise by comparing
// the request against the current security level.
func (m *SecurityManager) resolve(err error) {
	reqs := m.requests
	m.requests = nil
	for _, r := range reqs {
		switch {
		case err != nil:
			r.cb(err)
		case m.security.Level >= r.level:
			r.cb(nil)
		default:
			r.cb(errors.Wrapf(gap.ErrInsufficientSecurity, "reached %v, wanted %v", m.security.Level, r.level))
		}
	}
}

// abort sends Pairing Failed and fails the pairing.
func (m *SecurityManager) abort(reason Reason) {
	if !m.closed {
		m.send([]byte{pairingFailed, byte(reason)})
	}
	m.fail(ErrPairing{Reason: reason})
}

func (m *SecurityManager) fail(err error) {
	p := m.pairing
	m.pairing = nil
	m.encrypting = nil
	m.securityRequested = false
	m.stopTimer()
	if p != nil {
		m.log.Warnf("pairing failed: %v", err)
		if m.cfg.Delegate != nil {
			m.cfg.Delegate.CompletePairing(m.cfg.PeerID, err)
		}
	}
	m.resolve(err)
}

// check aborts the pairing for a failed step.
func (m *SecurityManager) check(err error) {
	if err == nil {
		return
	}
	if pe, ok := errors.Cause(err).(ErrPairing); ok {
		m.abort(pe.Reason)
		return
	}
	m.log.Errorf("pairing: %v", err)
	m.abort(ReasonUnspecified)
}

type smpDispatcher struct {
	desc    string
	handler func(m *SecurityManager, in []byte) error
}

var dispatcher = map[byte]smpDispatcher{
	pairingRequest:          {"pairing request", (*SecurityManager).onPairingRequest},
	pairingResponse:         {"pairing response", (*SecurityManager).onPairingResponse},
	pairingConfirm:          {"pairing confirm", (*SecurityManager).onPairingConfirm},
	pairingRandom:           {"pairing random", (*SecurityManager).onPairingRandom},
	pairingFailed:           {"pairing failed", (*SecurityManager).onPairingFailed},
	encryptionInformation:   {"encryption info", (*SecurityManager).onEncryptionInformation},
	masterIdentification:    {"master id", (*SecurityManager).onMasterIdentification},
	identityInformation:     {"id info", (*SecurityManager).onIdentityInformation},
	identityAddrInformation: {"id addr info", (*SecurityManager).onIdentityAddrInformation},
	signingInformation:      {"signing info", nil},
	securityRequest:         {"security req", (*SecurityManager).onSecurityRequest},
	pairingPublicKey:        {"pairing pub key", (*SecurityManager).onPairingPublicKey},
	pairingDHKeyCheck:       {"pairing dhkey check", (*SecurityManager).onPairingDHKeyCheck},
	pairingKeypress:         {"pairing keypress", nil},
}

func (m *SecurityManager) onSDU(sdu []byte) {
	if m.timedOut || m.closed || len(sdu) == 0 {
		return
	}
	code, data := sdu[0], sdu[1:]

	v, ok := dispatcher[code]
	if !ok {
		m.log.Warnf("unhandled smp command 0x%02X", code)
		m.send([]byte{pairingFailed, byte(ReasonCommandNotSupported)})
		if m.pairing != nil {
			m.fail(ErrPairing{Reason: ReasonCommandNotSupported})
		}
		return
	}
	if len(data) != pduSizes[code] {
		m.log.Warnf("%v: invalid length %v", v.desc, hex.EncodeToString(sdu))
		m.abort(ReasonInvalidParameters)
		return
	}
	m.log.Debugf("rx %v: %v", v.desc, hex.EncodeToString(data))
	if v.handler == nil {
		return
	}
	if m.pairing != nil {
		m.resetTimer()
	}
	m.check(v.handler(m, data))
}

func (m *SecurityManager) onPairingFailed(in []byte) error {
	m.fail(ErrPairing{Reason: Reason(in[0]), Remote: true})
	return nil
}

func (m *SecurityManager) onSecurityRequest(in []byte) error {
	if m.cfg.Role != hci.RoleCentral {
		return ErrPairing{Reason: ReasonCommandNotSupported}
	}
	if m.pairing != nil || m.encrypting != nil {
		return nil
	}

	level := gap.SecurityEncrypted
	if in[0]&authReqMITM != 0 {
		level = gap.SecurityAuthenticated
	}
	if ltk := m.bondLTK(level); ltk != nil && in[0]&authReqBondMask == authReqBond {
		m.startEncryption(*ltk)
		return nil
	}
	m.startPairing(level)
	return nil
}
