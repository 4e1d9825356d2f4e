package sm

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
)

// LE Secure Connections phase 2 [Vol 3, Part H, 2.3.5.6].

func (m *SecurityManager) sendPublicKey(p *pairing) error {
	if p.keys == nil {
		keys, err := generateKeys()
		if err != nil {
			return err
		}
		p.keys = keys
	}
	k := marshalPublicKeyXY(p.keys.public)
	p.localPKX = k[:32]
	m.send(append([]byte{pairingPublicKey}, k...))
	return nil
}

func (m *SecurityManager) onPairingPublicKey(in []byte) error {
	p := m.pairing
	if p == nil || !p.sc || p.phase != phaseSCPublicKey || p.remotePK != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}

	pub, ok := unmarshalPublicKey(in)
	if !ok {
		return ErrPairing{Reason: ReasonInvalidParameters}
	}
	if !p.initiator {
		if err := m.sendPublicKey(p); err != nil {
			return err
		}
	}

	//validate the remote public key does not match our public key
	//CVE-2020-26558
	if bytes.Equal(marshalPublicKeyXY(p.keys.public), in) {
		return ErrPairing{Reason: ReasonInvalidParameters}
	}
	p.remotePK = pub
	p.remotePKX = append([]byte(nil), in[:32]...)

	dh, err := dhKey(p.keys.private, pub)
	if err != nil {
		return ErrPairing{Reason: ReasonInvalidParameters}
	}
	p.dhKey = dh

	p.phase = phaseSCConfirm
	switch p.method {
	case JustWorks, NumericComparison:
		if p.initiator {
			// wait for Cb
			return nil
		}
		r, err := randBytes(16)
		if err != nil {
			return err
		}
		p.localRandom = r
		c, err := F4(p.localPKX, p.remotePKX, r, 0)
		if err != nil {
			return err
		}
		p.phase = phaseSCRandom
		m.send(append([]byte{pairingConfirm}, c...))

	default:
		m.obtainPasskey(p, func(passkey uint32) {
			p.passkey = passkey
			p.passkeyKnown = true
			if p.initiator || p.remoteConfirm != nil {
				m.check(m.scSendPasskeyConfirm(p))
			}
		})
	}
	return nil
}

// passkeyBit is r_i of round i of passkey entry.
func (p *pairing) passkeyBit() uint8 {
	return 0x80 | uint8((p.passkey>>uint(p.round))&0x01)
}

func (m *SecurityManager) scSendPasskeyConfirm(p *pairing) error {
	r, err := randBytes(16)
	if err != nil {
		return err
	}
	p.localRandom = r
	c, err := F4(p.localPKX, p.remotePKX, r, p.passkeyBit())
	if err != nil {
		return err
	}
	p.sentConfirm = true
	if !p.initiator {
		p.phase = phaseSCRandom
	}
	m.send(append([]byte{pairingConfirm}, c...))
	return nil
}

func (m *SecurityManager) scOnConfirm(p *pairing, in []byte) error {
	if p.phase != phaseSCConfirm || p.remoteConfirm != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	passkey := p.method == PasskeyDisplay || p.method == PasskeyInput

	if !p.initiator {
		if !passkey {
			return ErrPairing{Reason: ReasonUnspecified}
		}
		p.remoteConfirm = append([]byte(nil), in...)
		if p.passkeyKnown {
			return m.scSendPasskeyConfirm(p)
		}
		return nil
	}

	if passkey && !p.sentConfirm {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.remoteConfirm = append([]byte(nil), in...)
	if !passkey {
		r, err := randBytes(16)
		if err != nil {
			return err
		}
		p.localRandom = r
	}
	p.phase = phaseSCRandom
	m.send(append([]byte{pairingRandom}, p.localRandom...))
	return nil
}

func (m *SecurityManager) scOnRandom(p *pairing, in []byte) error {
	if p.phase != phaseSCRandom {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.remoteRandom = append([]byte(nil), in...)
	passkey := p.method == PasskeyDisplay || p.method == PasskeyInput

	if p.initiator || passkey {
		z := uint8(0)
		if passkey {
			z = p.passkeyBit()
		}
		c, err := F4(p.remotePKX, p.localPKX, p.remoteRandom, z)
		if err != nil {
			return err
		}
		if !bytes.Equal(c, p.remoteConfirm) {
			return ErrPairing{Reason: ReasonConfirmValueFailed}
		}
	}
	if !p.initiator {
		m.send(append([]byte{pairingRandom}, p.localRandom...))
	}

	if passkey {
		p.round++
		if p.round < passkeyIterationCount {
			p.remoteConfirm = nil
			p.sentConfirm = false
			p.phase = phaseSCConfirm
			if p.initiator {
				return m.scSendPasskeyConfirm(p)
			}
			return nil
		}
	}

	if p.initiator {
		p.phase = phaseSCUser
		m.scUserConfirm(p, func() { m.check(m.scSendDHKeyCheck(p)) })
		return nil
	}
	p.phase = phaseSCDHKeyCheck
	m.scUserConfirm(p, func() {
		p.userConfirm = true
		if p.remoteCheck != nil {
			m.check(m.scCheckInitiator(p))
		}
	})
	return nil
}

// nonces returns Na and Nb.
func (p *pairing) nonces() ([]byte, []byte) {
	if p.initiator {
		return p.localRandom, p.remoteRandom
	}
	return p.remoteRandom, p.localRandom
}

// pkx returns PKax and PKbx.
func (p *pairing) pkx() ([]byte, []byte) {
	if p.initiator {
		return p.localPKX, p.remotePKX
	}
	return p.remotePKX, p.localPKX
}

func (m *SecurityManager) scUserConfirm(p *pairing, done func()) {
	switch p.method {
	case NumericComparison:
		na, nb := p.nonces()
		pka, pkb := p.pkx()
		v, err := G2(pka, pkb, na, nb)
		if err != nil {
			m.check(err)
			return
		}
		m.cfg.Delegate.DisplayPasskey(m.cfg.PeerID, v, gap.DisplayComparison, func(ok bool) {
			m.guard(p, func() {
				if !ok {
					m.abort(ReasonNumericComparisonFailed)
					return
				}
				done()
			})()
		})

	case JustWorks:
		m.obtainPasskey(p, func(uint32) { done() })

	default:
		done()
	}
}

// computeKeys derives MacKey and LTK with f5.
func (m *SecurityManager) computeKeys(p *pairing) error {
	na, nb := p.nonces()
	mac, ltk, err := F5(p.dhKey, na, nb, addr7(p.initAddr), addr7(p.respAddr))
	if err != nil {
		return errors.Wrap(err, "f5")
	}
	p.macKey = mac
	p.ltk = gap.LTK{
		Security: securityFor(p.method, true, p.keySize),
		Key:      maskKey(ltk, p.keySize),
	}
	return nil
}

// dhKeyChecks returns Ea and Eb.
func (m *SecurityManager) dhKeyChecks(p *pairing) ([]byte, []byte, error) {
	na, nb := p.nonces()
	r := make([]byte, 16)
	if p.method == PasskeyDisplay || p.method == PasskeyInput {
		r = legacyTK(p.passkey)
	}
	a, b := addr7(p.initAddr), addr7(p.respAddr)

	ea, err := F6(p.macKey, na, nb, r, p.preq[1:4], a, b)
	if err != nil {
		return nil, nil, err
	}
	eb, err := F6(p.macKey, nb, na, r, p.pres[1:4], b, a)
	if err != nil {
		return nil, nil, err
	}
	return ea, eb, nil
}

func (m *SecurityManager) scSendDHKeyCheck(p *pairing) error {
	if err := m.computeKeys(p); err != nil {
		return err
	}
	ea, _, err := m.dhKeyChecks(p)
	if err != nil {
		return err
	}
	p.phase = phaseSCDHKeyCheck
	m.send(append([]byte{pairingDHKeyCheck}, ea...))
	return nil
}

func (m *SecurityManager) onPairingDHKeyCheck(in []byte) error {
	p := m.pairing
	if p == nil || !p.sc || p.phase != phaseSCDHKeyCheck || p.remoteCheck != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.remoteCheck = append([]byte(nil), in...)

	if !p.initiator {
		if p.userConfirm {
			return m.scCheckInitiator(p)
		}
		return nil
	}

	_, eb, err := m.dhKeyChecks(p)
	if err != nil {
		return err
	}
	if !bytes.Equal(eb, p.remoteCheck) {
		return ErrPairing{Reason: ReasonDHKeyCheckFailed}
	}
	m.log.Debugf("dhKeyCheck: OK")
	p.phase = phaseEncrypt
	m.startPairingEncryption(p)
	return nil
}

// scCheckInitiator verifies Ea and answers with Eb.
func (m *SecurityManager) scCheckInitiator(p *pairing) error {
	if err := m.computeKeys(p); err != nil {
		return err
	}
	ea, eb, err := m.dhKeyChecks(p)
	if err != nil {
		return err
	}
	if !bytes.Equal(ea, p.remoteCheck) {
		return ErrPairing{Reason: ReasonDHKeyCheckFailed}
	}
	m.log.Debugf("dhKeyCheck: OK")
	p.phase = phaseEncrypt
	m.send(append([]byte{pairingDHKeyCheck}, eb...))
	return nil
}
