package sm

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch/dispatchtest"
	"github.com/rigado/gap/hci"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	centralAddr    = gap.Address{Type: gap.AddressLEPublic, Value: [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}}
	peripheralAddr = gap.Address{Type: gap.AddressLERandom, Value: [6]byte{0xa1, 0xa2, 0xa3, 0xa4, 0xa5, 0xc6}}
)

// passkeyBoard carries a displayed passkey to the user typing it on the other device.
type passkeyBoard struct {
	d       *dispatchtest.Fake
	value   int64
	known   bool
	waiting func(int64)
}

func (b *passkeyBoard) show(pk uint32) {
	b.value, b.known = int64(pk), true
	if w := b.waiting; w != nil {
		b.waiting = nil
		b.d.Post(func() { w(int64(pk)) })
	}
}

func (b *passkeyBoard) request(respond func(int64)) {
	if b.known {
		v := b.value
		b.d.Post(func() { respond(v) })
		return
	}
	b.waiting = respond
}

type testDelegate struct {
	d         *dispatchtest.Fake
	io        gap.IOCapability
	reject    bool
	board     *passkeyBoard
	compared  []uint32
	confirms  int
	completed []error
}

func (t *testDelegate) IOCapability() gap.IOCapability { return t.io }

func (t *testDelegate) CompletePairing(id gap.PeerID, err error) {
	t.completed = append(t.completed, err)
}

func (t *testDelegate) ConfirmPairing(id gap.PeerID, confirm func(bool)) {
	t.confirms++
	t.d.Post(func() { confirm(!t.reject) })
}

func (t *testDelegate) DisplayPasskey(id gap.PeerID, pk uint32, method gap.DisplayMethod, confirm func(bool)) {
	if method == gap.DisplayComparison {
		t.compared = append(t.compared, pk)
	} else {
		t.board.show(pk)
	}
	t.d.Post(func() { confirm(!t.reject) })
}

func (t *testDelegate) RequestPasskey(id gap.PeerID, respond func(int64)) {
	if t.reject {
		t.d.Post(func() { respond(-1) })
		return
	}
	t.board.request(respond)
}

// loopChannel delivers SDUs to its peer through the dispatcher.
type loopChannel struct {
	d      *dispatchtest.Fake
	peer   *loopChannel
	rx     func([]byte)
	closed func()
	sent   [][]byte
}

func (c *loopChannel) ID() uint16         { return gap.ChannelSMP }
func (c *loopChannel) LinkHandle() uint16 { return 0x0040 }

func (c *loopChannel) Send(sdu []byte) error {
	b := append([]byte(nil), sdu...)
	c.sent = append(c.sent, b)
	peer := c.peer
	c.d.Post(func() {
		if peer.rx != nil {
			peer.rx(b)
		}
	})
	return nil
}

func (c *loopChannel) Activate(rx func([]byte), closed func()) bool {
	c.rx, c.closed = rx, closed
	return true
}

func (c *loopChannel) Deactivate() { c.rx, c.closed = nil, nil }

// loopLink stands in for the two controllers of a link: the central's key
// must match the peripheral's LTK reply for encryption to come up.
type loopLink struct {
	d    *dispatchtest.Fake
	sm   *SecurityManager
	peer *loopLink
	key  *gap.LTK
}

func (l *loopLink) StartEncryption(ltk gap.LTK, cb func(error)) {
	l.key = &ltk
	l.d.Post(func() { cb(nil) })
	peer := l.peer
	l.d.Post(func() { peer.sm.OnLTKRequest(ltk.Rand, ltk.EDiv) })
}

func (l *loopLink) ReplyLTK(ltk *gap.LTK) {
	central := l.peer
	l.d.Post(func() {
		if ltk == nil || central.key == nil || ltk.Key != central.key.Key {
			central.sm.OnEncryptionChange(hci.ErrPinOrKeyMissing, false)
			return
		}
		l.sm.OnEncryptionChange(nil, true)
		central.sm.OnEncryptionChange(nil, true)
	})
}

type side struct {
	sm    *SecurityManager
	ch    *loopChannel
	link  *loopLink
	bonds []gap.PairingData
}

func newLoopback(t *testing.T, cdel, pdel *testDelegate, cbond, pbond *gap.PairingData) (*dispatchtest.Fake, *side, *side) {
	d := dispatchtest.New()
	c := &side{ch: &loopChannel{d: d}, link: &loopLink{d: d}}
	p := &side{ch: &loopChannel{d: d}, link: &loopLink{d: d}}
	c.ch.peer, p.ch.peer = p.ch, c.ch
	c.link.peer, p.link.peer = p.link, c.link

	for _, dg := range []*testDelegate{cdel, pdel} {
		if dg != nil {
			dg.d = d
		}
	}

	cfg := func(s *side, role hci.Role, local, remote gap.Address, dg *testDelegate, bond *gap.PairingData) Config {
		cf := Config{
			PeerID:      gap.PeerID(1),
			Role:        role,
			Local:       local,
			Remote:      remote,
			Bondable:    gap.Bondable,
			Bond:        bond,
			PairingData: func(data gap.PairingData) { s.bonds = append(s.bonds, data) },
		}
		if dg != nil {
			cf.Delegate = dg
		}
		return cf
	}

	c.sm = New(d, c.ch, c.link, cfg(c, hci.RoleCentral, centralAddr, peripheralAddr, cdel, cbond), nil)
	p.sm = New(d, p.ch, p.link, cfg(p, hci.RolePeripheral, peripheralAddr, centralAddr, pdel, pbond), nil)
	c.link.sm, p.link.sm = c.sm, p.sm
	require.NotNil(t, c.ch.rx)
	require.NotNil(t, p.ch.rx)
	return d, c, p
}

// upgrade requests level and returns a pointer to the reported result.
func upgrade(m *SecurityManager, level gap.SecurityLevel) (*bool, *error) {
	done := new(bool)
	res := new(error)
	m.UpgradeSecurity(level, func(err error) {
		*done = true
		*res = err
	})
	return done, res
}

func TestSecureConnectionsJustWorks(t *testing.T) {
	pdel := &testDelegate{io: gap.IONoInputNoOutput}
	d, c, p := newLoopback(t, nil, pdel, nil, nil)

	done, err := upgrade(c.sm, gap.SecurityEncrypted)
	d.RunUntilIdle()

	require.True(t, *done)
	require.NoError(t, *err)
	assert.Equal(t, 1, pdel.confirms)
	assert.Equal(t, []error{nil}, pdel.completed)

	exp := gap.SecurityProperties{Level: gap.SecurityEncrypted, EncryptionKeySize: 16, SecureConnections: true}
	assert.Equal(t, exp, c.sm.Security())
	assert.Equal(t, exp, p.sm.Security())
	assert.False(t, c.sm.Pairing())
	assert.False(t, p.sm.Pairing())

	require.Len(t, c.bonds, 1)
	require.Len(t, p.bonds, 1)
	cb, pb := c.bonds[0], p.bonds[0]
	require.NotNil(t, cb.PeerLTK)
	require.NotNil(t, pb.LocalLTK)
	assert.Equal(t, cb.PeerLTK.Key, pb.LocalLTK.Key)
	assert.Equal(t, *cb.PeerLTK, *cb.LocalLTK)
	assert.Zero(t, cb.PeerLTK.EDiv)
	assert.Zero(t, cb.PeerLTK.Rand)
	assert.Equal(t, 0, d.PendingTimers())
}

func TestSecureConnectionsNumericComparison(t *testing.T) {
	cdel := &testDelegate{io: gap.IODisplayYesNo}
	pdel := &testDelegate{io: gap.IODisplayYesNo}
	d, c, p := newLoopback(t, cdel, pdel, nil, nil)

	done, err := upgrade(c.sm, gap.SecurityAuthenticated)
	d.RunUntilIdle()

	require.True(t, *done)
	require.NoError(t, *err)
	require.Len(t, cdel.compared, 1)
	assert.Equal(t, cdel.compared, pdel.compared)
	assert.True(t, cdel.compared[0] <= maxPasskey)
	assert.Equal(t, gap.SecuritySecureAuthenticated, c.sm.Security().Level)
	assert.Equal(t, gap.SecuritySecureAuthenticated, p.sm.Security().Level)
	assert.Equal(t, gap.SecuritySecureAuthenticated, c.bonds[0].PeerLTK.Security.Level)
}

func TestNumericComparisonRejected(t *testing.T) {
	cdel := &testDelegate{io: gap.IODisplayYesNo}
	pdel := &testDelegate{io: gap.IODisplayYesNo, reject: true}
	d, c, p := newLoopback(t, cdel, pdel, nil, nil)

	done, err := upgrade(c.sm, gap.SecurityAuthenticated)
	d.RunUntilIdle()

	require.True(t, *done)
	assert.Equal(t, ErrPairing{Reason: ReasonNumericComparisonFailed, Remote: true}, *err)
	assert.Equal(t, []error{ErrPairing{Reason: ReasonNumericComparisonFailed}}, pdel.completed)
	assert.Equal(t, gap.SecurityNone, c.sm.Security().Level)
	assert.Equal(t, gap.SecurityNone, p.sm.Security().Level)
	assert.Empty(t, c.bonds)
}

func TestSecureConnectionsPasskey(t *testing.T) {
	board := &passkeyBoard{}
	cdel := &testDelegate{io: gap.IOKeyboardOnly, board: board}
	pdel := &testDelegate{io: gap.IODisplayOnly, board: board}
	d, c, p := newLoopback(t, cdel, pdel, nil, nil)
	board.d = d

	done, err := upgrade(c.sm, gap.SecurityAuthenticated)
	d.RunUntilIdle()

	require.True(t, *done)
	require.NoError(t, *err)
	assert.True(t, board.known)
	assert.Equal(t, gap.SecuritySecureAuthenticated, c.sm.Security().Level)
	assert.Equal(t, gap.SecuritySecureAuthenticated, p.sm.Security().Level)

	// one confirm per passkey bit from each side
	confirms := 0
	for _, b := range c.ch.sent {
		if b[0] == pairingConfirm {
			confirms++
		}
	}
	assert.Equal(t, passkeyIterationCount, confirms)
}

func TestPasskeyInputRejected(t *testing.T) {
	board := &passkeyBoard{}
	cdel := &testDelegate{io: gap.IOKeyboardOnly, board: board, reject: true}
	pdel := &testDelegate{io: gap.IODisplayOnly, board: board}
	d, c, _ := newLoopback(t, cdel, pdel, nil, nil)
	board.d = d

	done, err := upgrade(c.sm, gap.SecurityAuthenticated)
	d.RunUntilIdle()

	require.True(t, *done)
	assert.Equal(t, ErrPairing{Reason: ReasonPasskeyEntryFailed}, *err)
	require.Len(t, pdel.completed, 1)
	assert.Equal(t, ErrPairing{Reason: ReasonPasskeyEntryFailed, Remote: true}, pdel.completed[0])
}

func TestAuthenticationRequirementsNotMet(t *testing.T) {
	pdel := &testDelegate{io: gap.IONoInputNoOutput}
	d, c, _ := newLoopback(t, nil, pdel, nil, nil)

	done, err := upgrade(c.sm, gap.SecurityAuthenticated)
	d.RunUntilIdle()

	require.True(t, *done)
	assert.Equal(t, ErrPairing{Reason: ReasonAuthenticationRequirements}, *err)
	require.Len(t, pdel.completed, 1)
	assert.Equal(t, ErrPairing{Reason: ReasonAuthenticationRequirements, Remote: true}, pdel.completed[0])
}

func TestEncryptWithBond(t *testing.T) {
	pdel := &testDelegate{io: gap.IONoInputNoOutput}
	d, c, p := newLoopback(t, nil, pdel, nil, nil)
	upgrade(c.sm, gap.SecurityEncrypted)
	d.RunUntilIdle()
	require.Len(t, c.bonds, 1)
	require.Len(t, p.bonds, 1)

	// reconnect
	d, c2, p2 := newLoopback(t, nil, pdel, &c.bonds[0], &p.bonds[0])
	done, err := upgrade(c2.sm, gap.SecurityEncrypted)
	d.RunUntilIdle()

	require.True(t, *done)
	require.NoError(t, *err)
	assert.Empty(t, c2.ch.sent)
	assert.Empty(t, p2.ch.sent)
	assert.True(t, c2.sm.Security().SecureConnections)
	assert.Equal(t, gap.SecurityEncrypted, p2.sm.Security().Level)
	assert.Empty(t, c2.bonds)
}

func TestPeripheralSecurityRequest(t *testing.T) {
	pdel := &testDelegate{io: gap.IONoInputNoOutput}
	d, c, p := newLoopback(t, nil, pdel, nil, nil)

	done, err := upgrade(p.sm, gap.SecurityEncrypted)
	d.RunUntilIdle()

	require.True(t, *done)
	require.NoError(t, *err)
	require.NotEmpty(t, p.ch.sent)
	assert.Equal(t, []byte{securityRequest, authReqSC | authReqBond}, p.ch.sent[0])
	assert.Equal(t, gap.SecurityEncrypted, c.sm.Security().Level)
}

func TestUpgradeAlreadySatisfied(t *testing.T) {
	pdel := &testDelegate{io: gap.IONoInputNoOutput}
	d, c, _ := newLoopback(t, nil, pdel, nil, nil)
	upgrade(c.sm, gap.SecurityEncrypted)
	d.RunUntilIdle()
	sent := len(c.ch.sent)

	done, err := upgrade(c.sm, gap.SecurityEncrypted)
	assert.False(t, *done, "completion must not run inline")
	d.RunUntilIdle()
	require.True(t, *done)
	require.NoError(t, *err)
	assert.Len(t, c.ch.sent, sent)
}

func TestConcurrentRequestsShareOnePairing(t *testing.T) {
	pdel := &testDelegate{io: gap.IONoInputNoOutput}
	d, c, _ := newLoopback(t, nil, pdel, nil, nil)

	done1, err1 := upgrade(c.sm, gap.SecurityEncrypted)
	done2, err2 := upgrade(c.sm, gap.SecurityAuthenticated)
	d.RunUntilIdle()

	require.True(t, *done1)
	require.True(t, *done2)
	assert.NoError(t, *err1)
	assert.True(t, gap.IsHostError(*err2, gap.ErrInsufficientSecurity))

	requests := 0
	for _, b := range c.ch.sent {
		if b[0] == pairingRequest {
			requests++
		}
	}
	assert.Equal(t, 1, requests)
}

// scriptChannel hands inbound SDUs to the manager synchronously.
type scriptChannel struct {
	rx   func([]byte)
	sent [][]byte
}

func (c *scriptChannel) ID() uint16         { return gap.ChannelSMP }
func (c *scriptChannel) LinkHandle() uint16 { return 0x0040 }
func (c *scriptChannel) Send(sdu []byte) error {
	c.sent = append(c.sent, append([]byte(nil), sdu...))
	return nil
}
func (c *scriptChannel) Activate(rx func([]byte), closed func()) bool {
	c.rx = rx
	return true
}
func (c *scriptChannel) Deactivate() { c.rx = nil }

func (c *scriptChannel) last(t *testing.T) []byte {
	require.NotEmpty(t, c.sent)
	return c.sent[len(c.sent)-1]
}

type recLink struct {
	started []gap.LTK
	replies []*gap.LTK
}

func (l *recLink) StartEncryption(ltk gap.LTK, cb func(error)) {
	l.started = append(l.started, ltk)
	cb(nil)
}

func (l *recLink) ReplyLTK(ltk *gap.LTK) { l.replies = append(l.replies, ltk) }

func newScripted(role hci.Role, bond *gap.PairingData) (*dispatchtest.Fake, *SecurityManager, *scriptChannel, *recLink, *[]gap.PairingData) {
	d := dispatchtest.New()
	ch := &scriptChannel{}
	link := &recLink{}
	bonds := &[]gap.PairingData{}
	local, remote := centralAddr, peripheralAddr
	if role == hci.RolePeripheral {
		local, remote = remote, local
	}
	m := New(d, ch, link, Config{
		PeerID:      gap.PeerID(2),
		Role:        role,
		Local:       local,
		Remote:      remote,
		Bondable:    gap.Bondable,
		Bond:        bond,
		PairingData: func(data gap.PairingData) { *bonds = append(*bonds, data) },
	}, nil)
	return d, m, ch, link, bonds
}

func TestLegacyJustWorksAsCentral(t *testing.T) {
	d, m, ch, link, bonds := newScripted(hci.RoleCentral, nil)

	done, res := upgrade(m, gap.SecurityEncrypted)
	preq := ch.last(t)
	require.Equal(t, []byte{pairingRequest, byte(gap.IONoInputNoOutput), 0x00, authReqSC | authReqBond, 16, 0x00, keyDistEnc | keyDistID}, preq)

	// legacy peer without secure connections support
	pres := []byte{pairingResponse, byte(gap.IONoInputNoOutput), 0x00, authReqBond, 16, 0x00, keyDistEnc}
	ch.rx(pres)

	mconfirm := ch.last(t)
	require.Equal(t, byte(pairingConfirm), mconfirm[0])

	tk := make([]byte, 16)
	srand := make([]byte, 16)
	for i := range srand {
		srand[i] = byte(i)
	}
	sconfirm, err := C1(tk, srand, preq, pres, centralAddr.HCIType(), peripheralAddr.HCIType(), centralAddr.Value[:], peripheralAddr.Value[:])
	require.NoError(t, err)
	ch.rx(append([]byte{pairingConfirm}, sconfirm...))

	mrand := ch.last(t)
	require.Equal(t, byte(pairingRandom), mrand[0])
	exp, err := C1(tk, mrand[1:], preq, pres, centralAddr.HCIType(), peripheralAddr.HCIType(), centralAddr.Value[:], peripheralAddr.Value[:])
	require.NoError(t, err)
	assert.Equal(t, exp, mconfirm[1:])

	ch.rx(append([]byte{pairingRandom}, srand...))
	require.Len(t, link.started, 1)
	stk, err := S1(tk, srand, mrand[1:])
	require.NoError(t, err)
	assert.Equal(t, stk, link.started[0].Key[:])
	assert.Zero(t, link.started[0].EDiv)

	m.OnEncryptionChange(nil, true)
	assert.Equal(t, gap.SecurityProperties{Level: gap.SecurityEncrypted, EncryptionKeySize: 16}, m.Security())
	assert.False(t, *done)

	var key [16]byte
	key[0] = 0xaa
	ch.rx(append([]byte{encryptionInformation}, key[:]...))
	mid := make([]byte, 11)
	mid[0] = masterIdentification
	binary.LittleEndian.PutUint16(mid[1:], 0x1234)
	binary.LittleEndian.PutUint64(mid[3:], 0x0102030405060708)
	ch.rx(mid)

	require.True(t, *done)
	require.NoError(t, *res)
	require.Len(t, *bonds, 1)
	ltk := (*bonds)[0].PeerLTK
	require.NotNil(t, ltk)
	assert.Equal(t, key, ltk.Key)
	assert.Equal(t, uint16(0x1234), ltk.EDiv)
	assert.Equal(t, uint64(0x0102030405060708), ltk.Rand)
	assert.Nil(t, (*bonds)[0].LocalLTK)
	assert.Equal(t, 0, d.PendingTimers())

	// re-encryption uses the distributed key
	m.OnEncryptionChange(nil, false)
	upgrade(m, gap.SecurityEncrypted)
	require.Len(t, link.started, 2)
	assert.Equal(t, *ltk, link.started[1])
}

func TestLegacyConfirmMismatch(t *testing.T) {
	_, m, ch, link, _ := newScripted(hci.RoleCentral, nil)
	done, res := upgrade(m, gap.SecurityEncrypted)

	ch.rx([]byte{pairingResponse, byte(gap.IONoInputNoOutput), 0x00, authReqBond, 16, 0x00, 0x00})
	ch.rx(append([]byte{pairingConfirm}, make([]byte, 16)...))
	ch.rx(append([]byte{pairingRandom}, make([]byte, 16)...))

	require.True(t, *done)
	assert.Equal(t, ErrPairing{Reason: ReasonConfirmValueFailed}, *res)
	assert.Equal(t, []byte{pairingFailed, byte(ReasonConfirmValueFailed)}, ch.last(t))
	assert.Empty(t, link.started)
}

func TestPairingFailedByPeer(t *testing.T) {
	_, m, ch, _, _ := newScripted(hci.RoleCentral, nil)
	done, res := upgrade(m, gap.SecurityEncrypted)
	require.Len(t, ch.sent, 1)

	ch.rx([]byte{pairingFailed, byte(ReasonPairingNotSupported)})

	require.True(t, *done)
	assert.Equal(t, ErrPairing{Reason: ReasonPairingNotSupported, Remote: true}, *res)
	assert.False(t, m.Pairing())
	assert.Len(t, ch.sent, 1)
}

func TestSMPTimeout(t *testing.T) {
	d, m, ch, _, _ := newScripted(hci.RoleCentral, nil)
	done, res := upgrade(m, gap.SecurityEncrypted)

	d.Advance(Timeout - 1)
	assert.False(t, *done)
	d.Advance(1)
	require.True(t, *done)
	assert.True(t, gap.IsHostError(*res, gap.ErrTimedOut))

	// the link is unusable for SMP from now on
	sent := len(ch.sent)
	ch.rx([]byte{pairingResponse, 0x03, 0x00, authReqBond, 16, 0x00, 0x00})
	assert.Len(t, ch.sent, sent)

	done, res = upgrade(m, gap.SecurityEncrypted)
	d.RunUntilIdle()
	require.True(t, *done)
	assert.True(t, gap.IsHostError(*res, gap.ErrTimedOut))
}

func TestUnknownCommand(t *testing.T) {
	_, _, ch, _, _ := newScripted(hci.RolePeripheral, nil)
	ch.rx([]byte{0x3f, 0x00})
	assert.Equal(t, []byte{pairingFailed, byte(ReasonCommandNotSupported)}, ch.last(t))
}

func TestInvalidLength(t *testing.T) {
	_, m, ch, _, _ := newScripted(hci.RoleCentral, nil)
	done, res := upgrade(m, gap.SecurityEncrypted)

	ch.rx([]byte{pairingResponse, 0x03, 0x00})

	require.True(t, *done)
	assert.Equal(t, ErrPairing{Reason: ReasonInvalidParameters}, *res)
	assert.Equal(t, []byte{pairingFailed, byte(ReasonInvalidParameters)}, ch.last(t))
}

func TestPairingRequestToCentral(t *testing.T) {
	_, _, ch, _, _ := newScripted(hci.RoleCentral, nil)
	ch.rx([]byte{pairingRequest, 0x03, 0x00, authReqBond, 16, 0x00, 0x00})
	assert.Equal(t, []byte{pairingFailed, byte(ReasonCommandNotSupported)}, ch.last(t))
}

func TestKeySizeTooSmall(t *testing.T) {
	_, _, ch, _, _ := newScripted(hci.RolePeripheral, nil)
	ch.rx([]byte{pairingRequest, 0x03, 0x00, authReqBond, 6, 0x00, 0x00})
	assert.Equal(t, []byte{pairingFailed, byte(ReasonEncryptionKeySize)}, ch.last(t))
}

func TestLTKRequest(t *testing.T) {
	bond := &gap.PairingData{LocalLTK: &gap.LTK{
		Security: gap.SecurityProperties{Level: gap.SecurityEncrypted, EncryptionKeySize: 16},
		Key:      [16]byte{1, 2, 3},
		EDiv:     0x0102,
		Rand:     0x99,
	}}
	_, m, _, link, _ := newScripted(hci.RolePeripheral, bond)

	m.OnLTKRequest(0x98, 0x0102)
	m.OnLTKRequest(0x99, 0x0102)
	require.Len(t, link.replies, 2)
	assert.Nil(t, link.replies[0])
	require.NotNil(t, link.replies[1])
	assert.Equal(t, *bond.LocalLTK, *link.replies[1])

	m.OnEncryptionChange(nil, true)
	assert.Equal(t, bond.LocalLTK.Security, m.Security())

	m.OnEncryptionChange(errors.New("mic failure"), false)
	assert.Equal(t, gap.SecurityNone, m.Security().Level)
}

func TestCloseFailsPendingRequests(t *testing.T) {
	d, m, ch, _, _ := newScripted(hci.RoleCentral, nil)
	done, res := upgrade(m, gap.SecurityEncrypted)

	m.Close()
	require.True(t, *done)
	assert.Equal(t, gap.ErrLinkDisconnected, *res)
	assert.Nil(t, ch.rx)
	assert.Equal(t, 0, d.PendingTimers())

	done, res = upgrade(m, gap.SecurityEncrypted)
	d.RunUntilIdle()
	require.True(t, *done)
	assert.Equal(t, gap.ErrLinkDisconnected, *res)
}
