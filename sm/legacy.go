package sm

import (
	"bytes"
	"encoding/hex"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
)

// LE legacy pairing phase 2 [Vol 3, Part H, 2.3.5.5].

func (m *SecurityManager) obtainTK(p *pairing) {
	m.obtainPasskey(p, func(passkey uint32) {
		p.tk = legacyTK(passkey)
		if p.initiator {
			m.check(m.legacySendConfirm(p))
			return
		}
		// the responder answers once the initiator's confirm is in
		if p.remoteConfirm != nil {
			m.check(m.legacySendConfirm(p))
		}
	})
}

func (m *SecurityManager) legacyConfirm(p *pairing, r []byte) ([]byte, error) {
	return C1(p.tk, r, p.preq, p.pres,
		p.initAddr.HCIType(), p.respAddr.HCIType(),
		p.initAddr.Value[:], p.respAddr.Value[:],
	)
}

func (m *SecurityManager) legacySendConfirm(p *pairing) error {
	r, err := randBytes(16)
	if err != nil {
		return err
	}
	p.localRandom = r

	c, err := m.legacyConfirm(p, r)
	if err != nil {
		return err
	}
	if p.initiator {
		p.phase = phaseLegacyConfirm
	} else {
		p.phase = phaseLegacyRandom
	}
	m.send(append([]byte{pairingConfirm}, c...))
	return nil
}

func (m *SecurityManager) onPairingConfirm(in []byte) error {
	p := m.pairing
	if p == nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	if p.sc {
		return m.scOnConfirm(p, in)
	}
	if p.phase != phaseLegacyConfirm || p.remoteConfirm != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.remoteConfirm = append([]byte(nil), in...)

	if p.initiator {
		p.phase = phaseLegacyRandom
		m.send(append([]byte{pairingRandom}, p.localRandom...))
		return nil
	}
	if p.tk != nil {
		return m.legacySendConfirm(p)
	}
	return nil
}

func (m *SecurityManager) onPairingRandom(in []byte) error {
	p := m.pairing
	if p == nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	if p.sc {
		return m.scOnRandom(p, in)
	}
	if p.phase != phaseLegacyRandom {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.remoteRandom = append([]byte(nil), in...)

	c, err := m.legacyConfirm(p, p.remoteRandom)
	if err != nil {
		return err
	}
	if !bytes.Equal(c, p.remoteConfirm) {
		m.log.Warnf("confirm mismatch: exp %v got %v", hex.EncodeToString(p.remoteConfirm), hex.EncodeToString(c))
		return ErrPairing{Reason: ReasonConfirmValueFailed}
	}

	srand, mrand := p.remoteRandom, p.localRandom
	if !p.initiator {
		srand, mrand = p.localRandom, p.remoteRandom
		m.send(append([]byte{pairingRandom}, p.localRandom...))
	}
	stk, err := S1(p.tk, srand, mrand)
	if err != nil {
		return errors.Wrap(err, "stk")
	}

	p.ltk = gap.LTK{
		Security: securityFor(p.method, false, p.keySize),
		Key:      maskKey(stk, p.keySize),
	}
	p.phase = phaseEncrypt
	if p.initiator {
		m.startPairingEncryption(p)
	}
	return nil
}

// startPairingEncryption encrypts the link with the key of phase 2.
func (m *SecurityManager) startPairingEncryption(p *pairing) {
	m.link.StartEncryption(p.ltk, func(err error) {
		if err != nil && m.pairing == p {
			m.fail(errors.Wrap(err, "start encryption"))
		}
	})
}
