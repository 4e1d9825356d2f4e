package sm

import (
	"crypto"
	"crypto/rand"
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
)

type phase int

const (
	phaseFeatures phase = iota
	phaseLegacyTK
	phaseLegacyConfirm
	phaseLegacyRandom
	phaseSCPublicKey
	phaseSCConfirm
	phaseSCRandom
	phaseSCUser
	phaseSCDHKeyCheck
	phaseEncrypt
	phaseKeyDistribution
)

// pairing is the state of one pairing procedure.
type pairing struct {
	initiator bool
	level     gap.SecurityLevel
	phase     phase

	// Pairing Request and Pairing Response PDUs, code included
	preq, pres []byte

	initAddr, respAddr gap.Address

	sc       bool
	method   Method
	keySize  int
	bonding  bool
	initKeys byte
	respKeys byte

	localRandom   []byte
	remoteRandom  []byte
	remoteConfirm []byte

	// legacy temporary key
	tk []byte

	// secure connections
	keys         *keyPair
	localPKX     []byte
	remotePKX    []byte
	remotePK     crypto.PublicKey
	dhKey        []byte
	macKey       []byte
	passkey      uint32
	passkeyKnown bool
	round        int
	sentConfirm  bool
	userConfirm  bool
	remoteCheck  []byte

	// key the link is encrypted with at the end of phase 2
	ltk gap.LTK

	// phase 3
	expect byte
	gotEnc []byte
	gotIRK []byte
	data   gap.PairingData
}

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, errors.Wrap(err, "random")
	}
	return b, nil
}

func randPasskey() (uint32, error) {
	b, err := randBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b) % (maxPasskey + 1), nil
}

// maskKey keeps the size least significant octets of a key.
func maskKey(k []byte, size int) [16]byte {
	var out [16]byte
	copy(out[:size], k)
	return out
}

func (m *SecurityManager) newPairing(initiator bool, level gap.SecurityLevel) *pairing {
	p := &pairing{initiator: initiator, level: level}
	if initiator {
		p.initAddr, p.respAddr = m.cfg.Local, m.cfg.Remote
	} else {
		p.initAddr, p.respAddr = m.cfg.Remote, m.cfg.Local
	}
	m.pairing = p
	m.resetTimer()
	return p
}

// guard returns fn wrapped to run only while p is the current pairing.
func (m *SecurityManager) guard(p *pairing, fn func()) func() {
	return func() {
		if m.pairing != p {
			return
		}
		fn()
	}
}

func (m *SecurityManager) startPairing(level gap.SecurityLevel) {
	p := m.newPairing(true, level)
	f := features{
		IOCap:      uint8(m.ioCap()),
		AuthReq:    m.authReq(level),
		MaxKeySize: maxEncryptionKeySize,
	}
	if m.bondable() {
		f.RespKeyDist = keyDistEnc | keyDistID
	}
	p.preq = f.marshal(pairingRequest)
	p.phase = phaseFeatures
	m.log.Infof("pairing as initiator, level %v", level)
	m.send(p.preq)
}

func (m *SecurityManager) onPairingRequest(in []byte) error {
	if m.cfg.Role != hci.RolePeripheral {
		return ErrPairing{Reason: ReasonCommandNotSupported}
	}
	if m.pairing != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	req := parseFeatures(in)

	p := m.newPairing(false, m.pendingLevel())
	m.securityRequested = false
	p.preq = append([]byte{pairingRequest}, in...)

	rsp := features{
		IOCap:      uint8(m.ioCap()),
		AuthReq:    m.authReq(p.level),
		MaxKeySize: maxEncryptionKeySize,
	}
	if m.bondable() && req.bonding() {
		rsp.InitKeyDist = req.InitKeyDist & (keyDistEnc | keyDistID)
		rsp.RespKeyDist = req.RespKeyDist & keyDistEnc
	}
	p.pres = rsp.marshal(pairingResponse)

	if err := m.negotiate(p); err != nil {
		return err
	}
	m.send(p.pres)

	if p.sc {
		p.phase = phaseSCPublicKey
		return nil
	}
	p.phase = phaseLegacyConfirm
	m.obtainTK(p)
	return nil
}

func (m *SecurityManager) onPairingResponse(in []byte) error {
	p := m.pairing
	if p == nil || !p.initiator || p.phase != phaseFeatures {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.pres = append([]byte{pairingResponse}, in...)
	if err := m.negotiate(p); err != nil {
		return err
	}

	if p.sc {
		p.phase = phaseSCPublicKey
		return m.sendPublicKey(p)
	}
	p.phase = phaseLegacyTK
	m.obtainTK(p)
	return nil
}

// negotiate derives the pairing parameters from the exchanged features.
func (m *SecurityManager) negotiate(p *pairing) error {
	req := parseFeatures(p.preq[1:])
	rsp := parseFeatures(p.pres[1:])

	p.sc = req.sc() && rsp.sc()

	size := req.MaxKeySize
	if rsp.MaxKeySize < size {
		size = rsp.MaxKeySize
	}
	if size < minEncryptionKeySize || size > maxEncryptionKeySize {
		return ErrPairing{Reason: ReasonEncryptionKeySize}
	}
	p.keySize = int(size)

	remote := rsp.IOCap
	if !p.initiator {
		remote = req.IOCap
	}
	p.method = selectMethod(p.sc, p.initiator, req.mitm() || rsp.mitm(), m.ioCap(), gap.IOCapability(remote))

	if p.level >= gap.SecurityAuthenticated && !p.method.Authenticated() {
		m.log.Warnf("%v cannot reach %v", p.method, p.level)
		return ErrPairing{Reason: ReasonAuthenticationRequirements}
	}
	if p.level >= gap.SecuritySecureAuthenticated && !p.sc {
		return ErrPairing{Reason: ReasonAuthenticationRequirements}
	}

	p.bonding = req.bonding() && rsp.bonding()
	if p.bonding {
		p.initKeys = req.InitKeyDist & rsp.InitKeyDist
		p.respKeys = req.RespKeyDist & rsp.RespKeyDist
	}
	p.initKeys &^= keyDistSign | keyDistLink
	p.respKeys &^= keyDistSign | keyDistLink
	if p.sc {
		p.initKeys &^= keyDistEnc
		p.respKeys &^= keyDistEnc
	}

	m.log.Infof("pairing method: %v, secure connections: %v, key size %d", p.method, p.sc, p.keySize)
	return nil
}

// obtainPasskey runs the user interaction of Just Works consent and passkey entry.
func (m *SecurityManager) obtainPasskey(p *pairing, done func(passkey uint32)) {
	dg := m.cfg.Delegate
	id := m.cfg.PeerID

	switch p.method {
	case PasskeyDisplay:
		pk, err := randPasskey()
		if err != nil {
			m.check(err)
			return
		}
		dg.DisplayPasskey(id, pk, gap.DisplayPeerEntry, func(ok bool) {
			m.guard(p, func() {
				if !ok {
					m.abort(ReasonPasskeyEntryFailed)
					return
				}
				done(pk)
			})()
		})

	case PasskeyInput:
		dg.RequestPasskey(id, func(v int64) {
			m.guard(p, func() {
				if v < 0 || v > maxPasskey {
					m.abort(ReasonPasskeyEntryFailed)
					return
				}
				done(uint32(v))
			})()
		})

	default:
		if p.initiator || dg == nil {
			done(0)
			return
		}
		dg.ConfirmPairing(id, func(ok bool) {
			m.guard(p, func() {
				if !ok {
					m.abort(ReasonUnspecified)
					return
				}
				done(0)
			})()
		})
	}
}

func (m *SecurityManager) finishPairing(p *pairing) {
	m.pairing = nil
	m.stopTimer()

	if p.bonding && p.data.Bondable() {
		data := p.data
		if m.bond != nil {
			merged := *m.bond
			mergePairingData(&merged, data)
			data = merged
		}
		m.bond = &data
		if m.cfg.PairingData != nil {
			m.cfg.PairingData(data)
		}
	}

	m.log.Infof("pairing complete: %v", m.security)
	if m.cfg.Delegate != nil {
		m.cfg.Delegate.CompletePairing(m.cfg.PeerID, nil)
	}
	m.resolve(nil)
}

func mergePairingData(dst *gap.PairingData, src gap.PairingData) {
	if src.IdentityAddress != nil {
		dst.IdentityAddress = src.IdentityAddress
	}
	if src.PeerLTK != nil {
		dst.PeerLTK = src.PeerLTK
	}
	if src.LocalLTK != nil {
		dst.LocalLTK = src.LocalLTK
	}
	if src.IRK != nil {
		dst.IRK = src.IRK
	}
	if src.CSRK != nil {
		dst.CSRK = src.CSRK
	}
}
