package sm

import (
	"encoding/binary"

	"github.com/rigado/gap"
)

// Phase 3: transport specific key distribution [Vol 3, Part H, 3.6].
// The responder distributes first.

func (m *SecurityManager) startKeyDistribution(p *pairing) {
	p.phase = phaseKeyDistribution
	if p.initiator {
		p.expect = p.respKeys
	} else {
		p.expect = p.initKeys
		if err := m.sendKeys(p, p.respKeys); err != nil {
			m.check(err)
			return
		}
	}
	m.maybeFinish(p)
}

// sendKeys distributes the local keys in dist. Only the legacy LTK is ever
// offered, so dist never carries the other bits.
func (m *SecurityManager) sendKeys(p *pairing, dist byte) error {
	if dist&keyDistEnc == 0 || p.sc {
		return nil
	}
	b, err := randBytes(16 + 2 + 8)
	if err != nil {
		return err
	}
	ltk := gap.LTK{
		Security: p.ltk.Security,
		Key:      maskKey(b[:16], p.keySize),
		EDiv:     binary.LittleEndian.Uint16(b[16:18]),
		Rand:     binary.LittleEndian.Uint64(b[18:26]),
	}
	m.send(append([]byte{encryptionInformation}, ltk.Key[:]...))
	m.send(masterIdentificationPDU(ltk))
	p.data.LocalLTK = &ltk
	return nil
}

// keyPDU returns the pairing if a key in bit is still expected.
func (m *SecurityManager) keyPDU(bit byte) (*pairing, error) {
	p := m.pairing
	if p == nil || p.phase != phaseKeyDistribution || p.expect&bit == 0 {
		return nil, ErrPairing{Reason: ReasonUnspecified}
	}
	return p, nil
}

func (m *SecurityManager) onEncryptionInformation(in []byte) error {
	p, err := m.keyPDU(keyDistEnc)
	if err != nil {
		return err
	}
	if p.gotEnc != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.gotEnc = append([]byte(nil), in...)
	return nil
}

func (m *SecurityManager) onMasterIdentification(in []byte) error {
	p, err := m.keyPDU(keyDistEnc)
	if err != nil {
		return err
	}
	if p.gotEnc == nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	ltk := &gap.LTK{
		Security: p.ltk.Security,
		Key:      maskKey(p.gotEnc, p.keySize),
		EDiv:     binary.LittleEndian.Uint16(in[0:2]),
		Rand:     binary.LittleEndian.Uint64(in[2:10]),
	}
	p.data.PeerLTK = ltk
	p.expect &^= keyDistEnc
	m.maybeFinish(p)
	return nil
}

func (m *SecurityManager) onIdentityInformation(in []byte) error {
	p, err := m.keyPDU(keyDistID)
	if err != nil {
		return err
	}
	if p.gotIRK != nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}
	p.gotIRK = append([]byte(nil), in...)
	return nil
}

func (m *SecurityManager) onIdentityAddrInformation(in []byte) error {
	p, err := m.keyPDU(keyDistID)
	if err != nil {
		return err
	}
	if p.gotIRK == nil {
		return ErrPairing{Reason: ReasonUnspecified}
	}

	irk := &gap.Key{Security: p.ltk.Security}
	copy(irk.Value[:], p.gotIRK)
	p.data.IRK = irk

	t := gap.AddressLERandom
	if in[0] == 0x00 {
		t = gap.AddressLEPublic
	}
	addr := gap.NewAddress(t, in[1:7])
	p.data.IdentityAddress = &addr

	p.expect &^= keyDistID
	m.maybeFinish(p)
	return nil
}

func (m *SecurityManager) maybeFinish(p *pairing) {
	if m.pairing != p || p.expect != 0 {
		return
	}
	if p.initiator {
		if err := m.sendKeys(p, p.initKeys); err != nil {
			m.check(err)
			return
		}
	}
	if p.sc && p.bonding {
		ltk := p.ltk
		p.data.PeerLTK = &ltk
		local := p.ltk
		p.data.LocalLTK = &local
	}
	m.finishPairing(p)
}
