package le

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch/dispatchtest"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/hcitest"
	"github.com/rigado/gap/peer"
	"github.com/stretchr/testify/require"
)

var (
	addrA = [6]byte{0x0a, 0x00, 0x00, 0x00, 0xee, 0xc0}
	addrB = [6]byte{0x0b, 0x00, 0x00, 0x00, 0xee, 0xc0}
)

type fakeChannel struct {
	id     uint16
	handle hci.ConnectionHandle
	sent   [][]byte
	rx     func([]byte)
	closed func()
	active bool
}

func (c *fakeChannel) ID() uint16         { return c.id }
func (c *fakeChannel) LinkHandle() uint16 { return uint16(c.handle) }

func (c *fakeChannel) Send(sdu []byte) error {
	c.sent = append(c.sent, sdu)
	return nil
}

func (c *fakeChannel) Activate(rx func([]byte), closed func()) bool {
	c.rx, c.closed, c.active = rx, closed, true
	return true
}

func (c *fakeChannel) Deactivate() { c.active = false }

type fakeLELink struct {
	role            hci.Role
	att, smp        *fakeChannel
	security        gap.SecurityProperties
	linkError       func()
	paramUpdate     func(hci.LEPreferredConnectionParameters)
	securityUpgrade func(gap.SecurityLevel, func(error))
}

type fakeL2CAP struct {
	links   map[hci.ConnectionHandle]*fakeLELink
	removed []hci.ConnectionHandle
	updates []hci.LEPreferredConnectionParameters
}

func newFakeL2CAP() *fakeL2CAP {
	return &fakeL2CAP{links: make(map[hci.ConnectionHandle]*fakeLELink)}
}

func (l *fakeL2CAP) AddLEConnection(handle hci.ConnectionHandle, role hci.Role,
	linkError func(),
	paramUpdate func(hci.LEPreferredConnectionParameters),
	securityUpgrade func(gap.SecurityLevel, func(error))) (gap.Channel, gap.Channel, error) {

	k := &fakeLELink{
		role:            role,
		att:             &fakeChannel{id: gap.ChannelATT, handle: handle},
		smp:             &fakeChannel{id: gap.ChannelSMP, handle: handle},
		linkError:       linkError,
		paramUpdate:     paramUpdate,
		securityUpgrade: securityUpgrade,
	}
	l.links[handle] = k
	return k.att, k.smp, nil
}

func (l *fakeL2CAP) RemoveConnection(handle hci.ConnectionHandle) {
	delete(l.links, handle)
	l.removed = append(l.removed, handle)
}

func (l *fakeL2CAP) AssignLinkSecurityProperties(handle hci.ConnectionHandle, p gap.SecurityProperties) {
	if k, ok := l.links[handle]; ok {
		k.security = p
	}
}

func (l *fakeL2CAP) RequestConnectionParameterUpdate(handle hci.ConnectionHandle, p hci.LEPreferredConnectionParameters, cb func(bool)) error {
	l.updates = append(l.updates, p)
	cb(true)
	return nil
}

type fakeGATT struct {
	added      []gap.PeerID
	removed    []gap.PeerID
	discovered map[gap.PeerID][]uuid.UUID
}

func newFakeGATT() *fakeGATT {
	return &fakeGATT{discovered: make(map[gap.PeerID][]uuid.UUID)}
}

func (g *fakeGATT) AddConnection(id gap.PeerID, att gap.Channel) { g.added = append(g.added, id) }
func (g *fakeGATT) RemoveConnection(id gap.PeerID)               { g.removed = append(g.removed, id) }

func (g *fakeGATT) DiscoverServices(id gap.PeerID, services []uuid.UUID) {
	g.discovered[id] = services
}

func (g *fakeGATT) ListServices(id gap.PeerID, services []uuid.UUID, cb func([]uuid.UUID, error)) {
	cb(g.discovered[id], nil)
}

// leTest is a connection manager on a scripted controller. Outgoing
// connections succeed with increasing handles starting at 0x0040.
type leTest struct {
	d     *dispatchtest.Fake
	c     *hcitest.Controller
	cache *peer.Cache
	l2    *fakeL2CAP
	gatt  *fakeGATT
	m     *ConnectionManager

	nextHandle     uint16
	remoteFeatures uint64
	// status of the next LE Connection Complete events, consumed in order
	failures []byte
}

func newLETest(t *testing.T) *leTest {
	d := dispatchtest.New()
	c := hcitest.New(d)
	lt := &leTest{
		d:          d,
		c:          c,
		cache:      peer.NewCache(d, nil),
		l2:         newFakeL2CAP(),
		gatt:       newFakeGATT(),
		nextHandle: 0x0040,
	}
	c.OnCommand(cmd.LECreateConnectionOpCode, func(params []byte) [][]byte {
		var peerAddr [6]byte
		copy(peerAddr[:], params[6:12])
		status := byte(0x00)
		if len(lt.failures) > 0 {
			status, lt.failures = lt.failures[0], lt.failures[1:]
		}
		h := lt.nextHandle
		lt.nextHandle++
		return [][]byte{
			hcitest.CommandStatus(cmd.LECreateConnectionOpCode, 0x00),
			hcitest.LEConnectionComplete(status, h, byte(hci.RoleCentral), params[5], peerAddr, 0x0018, 0, 0x002a),
		}
	})
	c.OnCommand(cmd.ReadRemoteVersionInformationOpCode, func(params []byte) [][]byte {
		h := binary.LittleEndian.Uint16(params)
		return [][]byte{
			hcitest.CommandStatus(cmd.ReadRemoteVersionInformationOpCode, 0x00),
			hcitest.ReadRemoteVersionInformationComplete(0x00, h, 0x09, 0x000f, 0x0001),
		}
	})
	c.OnCommand(cmd.LEReadRemoteFeaturesOpCode, func(params []byte) [][]byte {
		h := binary.LittleEndian.Uint16(params)
		return [][]byte{
			hcitest.CommandStatus(cmd.LEReadRemoteFeaturesOpCode, 0x00),
			hcitest.LEReadRemoteFeaturesComplete(0x00, h, lt.remoteFeatures),
		}
	})
	c.OnCommand(cmd.DisconnectOpCode, func(params []byte) [][]byte {
		h := binary.LittleEndian.Uint16(params)
		return [][]byte{
			hcitest.CommandStatus(cmd.DisconnectOpCode, 0x00),
			hcitest.DisconnectionComplete(h, byte(hci.ErrLocalHost)),
		}
	})
	c.OnCommand(cmd.LEConnectionUpdateOpCode, func(params []byte) [][]byte {
		h := binary.LittleEndian.Uint16(params)
		return [][]byte{
			hcitest.CommandStatus(cmd.LEConnectionUpdateOpCode, 0x00),
			hcitest.LEConnectionUpdateComplete(0x00, h, binary.LittleEndian.Uint16(params[4:]), 0, binary.LittleEndian.Uint16(params[8:])),
		}
	})
	c.RespondComplete(cmd.LERemoteConnectionParameterRequestReplyOpCode, 0x00, 0x40, 0x00)
	c.RespondComplete(cmd.LERemoteConnectionParameterRequestNegativeReplyOpCode, 0x00, 0x40, 0x00)
	lt.m = NewConnectionManager(d, c, lt.cache, lt.l2, lt.gatt, nil)
	return lt
}

// addPeer adds a connectable LE peer whose features are already known.
func (lt *leTest) addPeer(t *testing.T, addr [6]byte, features uint64) *peer.Peer {
	p, err := lt.cache.NewPeer(gap.NewAddress(gap.AddressLEPublic, addr[:]), true)
	require.NoError(t, err)
	p.MutLE().SetFeatures(features)
	return p
}

type handles struct {
	got  []*ConnectionHandle
	errs []error
}

func (h *handles) cb(c *ConnectionHandle, err error) {
	h.got = append(h.got, c)
	h.errs = append(h.errs, err)
}

// connect connects to p and returns the handle.
func (lt *leTest) connect(t *testing.T, p *peer.Peer) *ConnectionHandle {
	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	require.Len(t, r.errs, 1)
	require.NoError(t, r.errs[0])
	require.True(t, r.got[0].Active())
	return r.got[0]
}
