package peer

import (
	"testing"
	"time"

	"github.com/rigado/gap"
	"github.com/rigado/gap/adv"
	"github.com/rigado/gap/dispatch/dispatchtest"
	"github.com/rigado/gap/sliceops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	leAddr    = gap.NewAddress(gap.AddressLEPublic, []byte{1, 2, 3, 4, 5, 6})
	bredrAddr = gap.NewAddress(gap.AddressBREDR, []byte{1, 2, 3, 4, 5, 7})
	// hash 0dfbaa, prand 708194 under testIRK
	rpa     = gap.NewAddress(gap.AddressLERandom, []byte{0xaa, 0xfb, 0x0d, 0x94, 0x81, 0x70})
	testIRK = [16]byte{}
)

func init() {
	copy(testIRK[:], sliceops.SwapBuf([]byte{0xec, 0x02, 0x34, 0xa3, 0x57, 0xc8, 0xad, 0x05,
		0x34, 0x10, 0x10, 0xa6, 0x0a, 0x39, 0x7d, 0x9b}))
}

type events struct {
	updated []gap.PeerID
	removed []gap.PeerID
	bonded  []gap.PeerID
}

func newTestCache(t *testing.T) (*Cache, *dispatchtest.Fake, *events) {
	d := dispatchtest.New()
	c := NewCache(d, nil)
	ev := &events{}
	c.AddPeerUpdatedCallback(func(p *Peer) { ev.updated = append(ev.updated, p.ID()) })
	c.AddPeerRemovedCallback(func(id gap.PeerID) { ev.removed = append(ev.removed, id) })
	c.AddPeerBondedCallback(func(p *Peer) { ev.bonded = append(ev.bonded, p.ID()) })
	return c, d, ev
}

func leBond() gap.PairingData {
	ia := gap.NewAddress(gap.AddressLEPublic, []byte{0x10, 0x20, 0x30, 0x40, 0x50, 0x60})
	return gap.PairingData{
		IdentityAddress: &ia,
		PeerLTK: &gap.LTK{
			Security: gap.SecurityProperties{Level: gap.SecurityEncrypted, EncryptionKeySize: 16},
			Key:      [16]byte{1, 2, 3},
			EDiv:     0x1234,
			Rand:     0x1122334455667788,
		},
		IRK: &gap.Key{Value: testIRK},
	}
}

func TestNewPeer(t *testing.T) {
	c, _, ev := newTestCache(t)

	p, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)
	assert.True(t, p.Temporary())
	assert.True(t, p.Connectable())
	assert.True(t, p.IdentityKnown())
	require.NotNil(t, p.LE())
	assert.Nil(t, p.BrEdr())
	assert.Equal(t, []gap.PeerID{p.ID()}, ev.updated)

	assert.Equal(t, p, c.FindByID(p.ID()))
	assert.Equal(t, p, c.FindByAddress(leAddr))

	// public addresses are shared between transports
	_, err = c.NewPeer(gap.NewAddress(gap.AddressBREDR, leAddr.Bytes()), true)
	assert.True(t, gap.IsHostError(err, gap.ErrAlreadyExists))

	b, err := c.NewPeer(bredrAddr, false)
	require.NoError(t, err)
	assert.NotNil(t, b.BrEdr())
	assert.Nil(t, b.LE())
	assert.Equal(t, 2, c.Len())
}

func TestRandomAddressIsNotIdentity(t *testing.T) {
	c, _, _ := newTestCache(t)
	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)
	assert.False(t, p.IdentityKnown())
}

func TestFindByAddressResolvesRPA(t *testing.T) {
	c, _, _ := newTestCache(t)
	p, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)

	assert.Nil(t, c.FindByAddress(rpa))

	require.NoError(t, c.StoreLowEnergyBond(p.ID(), leBond()))
	assert.Equal(t, p, c.FindByAddress(rpa))

	other := rpa
	other.Value[0] ^= 0xff
	assert.Nil(t, c.FindByAddress(other))
}

func TestStoreLowEnergyBondIdempotent(t *testing.T) {
	c, _, ev := newTestCache(t)
	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)

	bond := leBond()
	require.NoError(t, c.StoreLowEnergyBond(p.ID(), bond))
	assert.Equal(t, []gap.PeerID{p.ID()}, ev.bonded)
	assert.False(t, p.Temporary())
	assert.True(t, p.Bonded())
	assert.True(t, p.IdentityKnown())
	assert.Equal(t, *bond.IdentityAddress, p.Address())
	assert.Equal(t, p, c.FindByAddress(*bond.IdentityAddress))

	updates := len(ev.updated)
	again := leBond()
	require.NoError(t, c.StoreLowEnergyBond(p.ID(), again))
	assert.Len(t, ev.bonded, 1)
	assert.Len(t, ev.updated, updates)
	assert.True(t, p.LE().BondData().Equal(bond))

	changed := leBond()
	changed.PeerLTK.Key[0] = 0xff
	require.NoError(t, c.StoreLowEnergyBond(p.ID(), changed))
	assert.Len(t, ev.bonded, 2)
}

func TestStoreLowEnergyBondErrors(t *testing.T) {
	c, _, _ := newTestCache(t)

	err := c.StoreLowEnergyBond(gap.PeerID(42), leBond())
	assert.True(t, gap.IsHostError(err, gap.ErrNotFound))

	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)
	err = c.StoreLowEnergyBond(p.ID(), gap.PairingData{})
	assert.True(t, gap.IsHostError(err, gap.ErrInvalidParameters))
}

func TestStoreLowEnergyBondIdentityCollision(t *testing.T) {
	c, _, ev := newTestCache(t)
	bond := leBond()

	// a bonded peer already owns the identity
	owner, err := c.NewPeer(*bond.IdentityAddress, true)
	require.NoError(t, err)
	require.NoError(t, c.StoreBrEdrBond(owner.Address(), gap.LTK{Key: [16]byte{9}}))

	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)
	err = c.StoreLowEnergyBond(p.ID(), bond)
	assert.True(t, gap.IsHostError(err, gap.ErrAlreadyExists))
	assert.False(t, p.Bonded())
	assert.Empty(t, ev.removed)
}

func TestStoreLowEnergyBondMergesDualMode(t *testing.T) {
	c, _, ev := newTestCache(t)
	bond := leBond()

	classic, err := c.NewPeer(gap.NewAddress(gap.AddressBREDR, bond.IdentityAddress.Bytes()), true)
	require.NoError(t, err)
	classic.SetName("headset")

	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)
	require.NoError(t, c.StoreLowEnergyBond(p.ID(), bond))

	assert.Equal(t, []gap.PeerID{classic.ID()}, ev.removed)
	assert.Nil(t, c.FindByID(classic.ID()))
	require.NotNil(t, p.BrEdr())
	name, ok := p.Name()
	assert.True(t, ok)
	assert.Equal(t, "headset", name)
	assert.Equal(t, p, c.FindByAddress(gap.NewAddress(gap.AddressBREDR, bond.IdentityAddress.Bytes())))
}

func TestStoreBrEdrBond(t *testing.T) {
	c, _, ev := newTestCache(t)
	key := gap.LTK{Security: gap.SecurityPropertiesForLinkKey(gap.LinkKeyAuthenticatedCombination192), Key: [16]byte{7}}

	require.NoError(t, c.StoreBrEdrBond(bredrAddr, key))
	p := c.FindByAddress(bredrAddr)
	require.NotNil(t, p)
	assert.True(t, p.Bonded())
	assert.False(t, p.Temporary())
	assert.Equal(t, key, *p.BrEdr().LinkKey())
	assert.Len(t, ev.bonded, 1)

	require.NoError(t, c.StoreBrEdrBond(bredrAddr, key))
	assert.Len(t, ev.bonded, 1)

	err := c.StoreBrEdrBond(rpa, key)
	assert.True(t, gap.IsHostError(err, gap.ErrInvalidParameters))
}

func TestRemoveDisconnectedPeer(t *testing.T) {
	c, _, ev := newTestCache(t)
	p, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)

	p.LE().SetConnectionState(Connected)
	assert.False(t, c.RemoveDisconnectedPeer(p.ID()))
	assert.NotNil(t, c.FindByID(p.ID()))

	p.LE().SetConnectionState(NotConnected)
	assert.True(t, c.RemoveDisconnectedPeer(p.ID()))
	assert.Nil(t, c.FindByID(p.ID()))
	assert.Nil(t, c.FindByAddress(leAddr))
	assert.Equal(t, []gap.PeerID{p.ID()}, ev.removed)

	assert.True(t, c.RemoveDisconnectedPeer(p.ID()))
}

func TestTemporaryRules(t *testing.T) {
	c, _, _ := newTestCache(t)
	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)
	assert.True(t, p.Temporary())

	p.LE().SetConnectionState(Initializing)
	assert.False(t, p.Temporary())
	p.LE().SetConnectionState(Connected)
	assert.False(t, p.Temporary())

	// no identity, no bond
	p.LE().SetConnectionState(NotConnected)
	assert.True(t, p.Temporary())

	q, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)
	q.LE().SetConnectionState(Connected)
	q.LE().SetConnectionState(NotConnected)
	assert.False(t, q.Temporary())
}

func TestTemporaryPeerExpires(t *testing.T) {
	c, d, ev := newTestCache(t)
	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)

	d.Advance(CacheTimeout / 2)
	p.SetRSSI(-40)
	d.Advance(CacheTimeout / 2)
	require.NotNil(t, c.FindByID(p.ID()))

	d.Advance(CacheTimeout / 2)
	assert.Nil(t, c.FindByID(p.ID()))
	assert.Equal(t, []gap.PeerID{p.ID()}, ev.removed)
}

func TestConnectedPeerDoesNotExpire(t *testing.T) {
	c, d, _ := newTestCache(t)
	p, err := c.NewPeer(rpa, true)
	require.NoError(t, err)
	p.LE().SetConnectionState(Connected)

	d.Advance(2 * CacheTimeout)
	assert.NotNil(t, c.FindByID(p.ID()))

	p.LE().SetConnectionState(NotConnected)
	d.Advance(CacheTimeout + time.Second)
	assert.Nil(t, c.FindByID(p.ID()))
}

func TestAddBondedPeer(t *testing.T) {
	c, d, _ := newTestCache(t)
	bond := leBond()
	id := gap.PeerID(0x1234)

	require.NoError(t, c.AddBondedPeer(BondingData{ID: id, Address: rpa, Name: "tag", LE: &bond}))
	p := c.FindByID(id)
	require.NotNil(t, p)
	assert.False(t, p.Temporary())
	assert.True(t, p.Bonded())
	assert.Equal(t, p, c.FindByAddress(*bond.IdentityAddress))
	assert.Equal(t, p, c.FindByAddress(rpa))

	d.Advance(2 * CacheTimeout)
	assert.NotNil(t, c.FindByID(id))

	err := c.AddBondedPeer(BondingData{ID: id, Address: leAddr, LE: &bond})
	assert.True(t, gap.IsHostError(err, gap.ErrAlreadyExists))

	err = c.AddBondedPeer(BondingData{ID: 7, Address: leAddr})
	assert.True(t, gap.IsHostError(err, gap.ErrInvalidParameters))
}

func TestListenerRemoval(t *testing.T) {
	c, _, _ := newTestCache(t)
	n := 0
	id := c.AddPeerUpdatedCallback(func(*Peer) { n++ })
	_, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, c.RemoveListener(id))
	assert.False(t, c.RemoveListener(id))
	_, err = c.NewPeer(bredrAddr, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestAdvertisingData(t *testing.T) {
	c, _, ev := newTestCache(t)
	p, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)

	d, err := adv.Parse([]byte{0x05, 0x09, 't', 'e', 's', 't'})
	require.NoError(t, err)

	p.LE().SetAdvertisingData(-50, d)
	name, ok := p.Name()
	assert.True(t, ok)
	assert.Equal(t, "test", name)
	assert.Equal(t, int8(-50), p.RSSI())
	n := len(ev.updated)

	// same content, only rssi moved
	d2, err := adv.Parse([]byte{0x05, 0x09, 't', 'e', 's', 't'})
	require.NoError(t, err)
	p.LE().SetAdvertisingData(-60, d2)
	assert.Len(t, ev.updated, n)
	assert.Equal(t, int8(-60), p.RSSI())
}

func TestForEach(t *testing.T) {
	c, _, _ := newTestCache(t)
	_, err := c.NewPeer(leAddr, true)
	require.NoError(t, err)
	_, err = c.NewPeer(bredrAddr, true)
	require.NoError(t, err)

	seen := map[gap.PeerID]bool{}
	c.ForEach(func(p *Peer) { seen[p.ID()] = true })
	assert.Len(t, seen, 2)
}
