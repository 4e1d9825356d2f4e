package le

import (
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
	"github.com/rigado/gap/hci/hcitest"
	"github.com/rigado/gap/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectCoalescesRequests(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)

	var r handles
	for i := 0; i < 3; i++ {
		lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	}
	assert.Empty(t, r.errs, "callbacks must not run inline")
	assert.Equal(t, peer.Initializing, p.LE().ConnectionState())

	lt.d.RunUntilIdle()
	require.Len(t, r.errs, 3)
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	for i, err := range r.errs {
		require.NoError(t, err)
		assert.True(t, r.got[i].Active())
		assert.Equal(t, p.ID(), r.got[i].PeerID())
		assert.Equal(t, hci.ConnectionHandle(0x0040), r.got[i].Handle())
		assert.Equal(t, hci.RoleCentral, r.got[i].Role())
	}
	assert.NotSame(t, r.got[0], r.got[1])
	assert.NotSame(t, r.got[1], r.got[2])

	c := lt.m.Connection(p.ID())
	require.NotNil(t, c)
	assert.Equal(t, 3, c.Refs())
	assert.Equal(t, peer.Connected, p.LE().ConnectionState())
	assert.Equal(t, []gap.PeerID{p.ID()}, lt.gatt.added)
	assert.Equal(t, GenericAccessService, lt.gatt.discovered[p.ID()][0])
	assert.Contains(t, lt.l2.links, hci.ConnectionHandle(0x0040))
}

func TestConnectToConnectedPeer(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	first := lt.connect(t, p)

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	assert.Empty(t, r.errs)
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	require.NoError(t, r.errs[0])
	assert.Equal(t, first.Handle(), r.got[0].Handle())
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Equal(t, 2, lt.m.Connection(p.ID()).Refs())
}

func TestDeliveryAfterDisconnect(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.connect(t, p)

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	assert.True(t, lt.m.Disconnect(p.ID()))
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	assert.Nil(t, r.got[0])
	assert.True(t, gap.IsHostError(r.errs[0], gap.ErrLinkDisconnected))
}

func TestReleaseLastHandleTearsDown(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	h1 := lt.connect(t, p)
	h2 := lt.connect(t, p)

	closed := 0
	h1.SetClosedCallback(func() { closed++ })
	h2.SetClosedCallback(func() { closed++ })

	h1.Release()
	assert.False(t, h1.Active())
	assert.Equal(t, 0, lt.c.SentCount(cmd.DisconnectOpCode))
	assert.NotNil(t, lt.m.Connection(p.ID()))

	h2.Release()
	h2.Release()
	lt.d.RunUntilIdle()

	assert.Equal(t, 1, lt.c.SentCount(cmd.DisconnectOpCode))
	assert.Nil(t, lt.m.Connection(p.ID()))
	assert.Equal(t, []hci.ConnectionHandle{0x0040}, lt.l2.removed)
	assert.Equal(t, []gap.PeerID{p.ID()}, lt.gatt.removed)
	assert.Equal(t, peer.NotConnected, p.LE().ConnectionState())
	assert.Equal(t, 0, closed)
}

func TestRemoteDisconnectInvalidatesHandles(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	h1 := lt.connect(t, p)
	h2 := lt.connect(t, p)

	closed := 0
	h1.SetClosedCallback(func() { closed++ })
	h2.SetClosedCallback(func() { closed++ })
	var gone []gap.PeerID
	lt.m.SetDisconnectionCallback(func(id gap.PeerID) { gone = append(gone, id) })

	lt.c.Inject(hcitest.DisconnectionComplete(0x0040, byte(hci.ErrRemoteUser)))
	lt.d.RunUntilIdle()

	assert.False(t, h1.Active())
	assert.False(t, h2.Active())
	assert.Equal(t, 2, closed)
	assert.Equal(t, []gap.PeerID{p.ID()}, gone)
	assert.Nil(t, lt.m.Connection(p.ID()))
	assert.Equal(t, 0, lt.c.SentCount(cmd.DisconnectOpCode))

	lt.c.Inject(hcitest.DisconnectionComplete(0x0040, byte(hci.ErrRemoteUser)))
	lt.d.RunUntilIdle()
	assert.Equal(t, 2, closed)
	assert.Len(t, gone, 1)
	assert.Len(t, lt.l2.removed, 1)

	// releasing a dead handle does nothing
	h1.Release()
	assert.Equal(t, 0, lt.c.SentCount(cmd.DisconnectOpCode))
}

func TestFailedDisconnectionKeepsLink(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	h := lt.connect(t, p)

	// Command Disallowed, handle 0x0040, reason Remote User Terminated
	lt.c.Inject(hcitest.Event(evt.DisconnectionCompleteCode, byte(hci.ErrDisallowed), 0x40, 0x00, byte(hci.ErrRemoteUser)))
	lt.d.RunUntilIdle()

	assert.True(t, h.Active())
	assert.NotNil(t, lt.m.Connection(p.ID()))
	assert.Empty(t, lt.l2.removed)
	assert.Equal(t, peer.Connected, p.LE().ConnectionState())
}

func TestConnectCreateStatusFailure(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.c.RespondStatus(cmd.LECreateConnectionOpCode, byte(hci.ErrDisallowed))

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	assert.True(t, hci.IsStatus(r.errs[0], hci.ErrDisallowed))
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Equal(t, peer.NotConnected, p.LE().ConnectionState())
}

func TestConnectRetries(t *testing.T) {
	for _, tc := range []struct {
		name     string
		failures []byte
		creates  int
		ok       bool
	}{
		{"recovers", []byte{0x3e, 0x3e}, 3, true},
		{"gives up", []byte{0x3e, 0x3e, 0x3e}, 3, false},
		{"other status", []byte{0x08}, 1, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			lt := newLETest(t)
			lt.failures = tc.failures
			p := lt.addPeer(t, addrA, 0)

			var r handles
			lt.m.Connect(p.ID(), gap.Bondable, r.cb)
			lt.d.RunUntilIdle()

			require.Len(t, r.errs, 1)
			assert.Equal(t, tc.creates, lt.c.SentCount(cmd.LECreateConnectionOpCode))
			if tc.ok {
				require.NoError(t, r.errs[0])
				assert.True(t, r.got[0].Active())
				assert.Equal(t, peer.Connected, p.LE().ConnectionState())
				return
			}
			assert.Error(t, r.errs[0])
			assert.Equal(t, hci.ErrCommand(tc.failures[len(tc.failures)-1]), errors.Cause(r.errs[0]))
			assert.Equal(t, peer.NotConnected, p.LE().ConnectionState())
		})
	}
}

func TestConnectTimeout(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.c.RespondStatus(cmd.LECreateConnectionOpCode, 0x00)
	lt.c.Respond(cmd.LECreateConnectionCancelOpCode,
		hcitest.CommandComplete(cmd.LECreateConnectionCancelOpCode, 0x00),
		hcitest.LEConnectionComplete(byte(hci.ErrConnID), 0x0000, byte(hci.RoleCentral), 0x00, addrA, 0, 0, 0),
	)

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	assert.Empty(t, r.errs)

	lt.d.Advance(DefaultCreateConnectionTimeout)
	require.Len(t, r.errs, 1)
	assert.True(t, gap.IsHostError(r.errs[0], gap.ErrTimedOut))
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionCancelOpCode))
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Equal(t, peer.NotConnected, p.LE().ConnectionState())
}

func TestDisconnectCancelsRequests(t *testing.T) {
	lt := newLETest(t)
	a := lt.addPeer(t, addrA, 0)
	b := lt.addPeer(t, addrB, 0)

	var ra, rb handles
	lt.m.Connect(a.ID(), gap.Bondable, ra.cb)
	lt.m.Connect(b.ID(), gap.Bondable, rb.cb)
	assert.True(t, lt.m.Disconnect(b.ID()))
	lt.d.RunUntilIdle()

	require.Len(t, rb.errs, 1)
	assert.True(t, gap.IsHostError(rb.errs[0], gap.ErrCanceled))
	assert.Equal(t, peer.NotConnected, b.LE().ConnectionState())
	require.Len(t, ra.errs, 1)
	assert.NoError(t, ra.errs[0])
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))

	assert.False(t, lt.m.Disconnect(b.ID()))
}

func TestDisconnectCancelsRunningAttempt(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.c.RespondStatus(cmd.LECreateConnectionOpCode, 0x00)
	lt.c.Respond(cmd.LECreateConnectionCancelOpCode,
		hcitest.CommandComplete(cmd.LECreateConnectionCancelOpCode, 0x00),
		hcitest.LEConnectionComplete(byte(hci.ErrConnID), 0x0000, byte(hci.RoleCentral), 0x00, addrA, 0, 0, 0),
	)

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	assert.True(t, lt.m.Disconnect(p.ID()))
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	assert.True(t, gap.IsHostError(r.errs[0], gap.ErrCanceled))
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionCancelOpCode))
}

func TestOneConnectionAttemptAtATime(t *testing.T) {
	lt := newLETest(t)
	a := lt.addPeer(t, addrA, 0)
	b := lt.addPeer(t, addrB, 0)
	lt.c.RespondStatus(cmd.LECreateConnectionOpCode, 0x00)

	var ra, rb handles
	lt.m.Connect(a.ID(), gap.Bondable, ra.cb)
	lt.m.Connect(b.ID(), gap.Bondable, rb.cb)
	lt.d.RunUntilIdle()
	require.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Equal(t, addrA[:], lt.c.Sent(cmd.LECreateConnectionOpCode)[0][6:12])

	lt.c.Inject(hcitest.LEConnectionComplete(0x00, 0x0040, byte(hci.RoleCentral), 0x00, addrA, 0x0018, 0, 0x002a))
	lt.d.RunUntilIdle()

	require.Len(t, ra.errs, 1)
	assert.NoError(t, ra.errs[0])
	assert.Empty(t, rb.errs)
	require.Equal(t, 2, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Equal(t, addrB[:], lt.c.Sent(cmd.LECreateConnectionOpCode)[1][6:12])
}

func TestInterrogationFailure(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.c.OnCommand(cmd.ReadRemoteVersionInformationOpCode, func(params []byte) [][]byte {
		h := binary.LittleEndian.Uint16(params)
		return [][]byte{
			hcitest.CommandStatus(cmd.ReadRemoteVersionInformationOpCode, 0x00),
			hcitest.ReadRemoteVersionInformationComplete(byte(hci.ErrConnTimeout), h, 0, 0, 0),
		}
	})

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	assert.True(t, hci.IsStatus(r.errs[0], hci.ErrConnTimeout))
	assert.Equal(t, 1, lt.c.SentCount(cmd.DisconnectOpCode))
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Nil(t, lt.m.Connection(p.ID()))
	assert.Equal(t, []hci.ConnectionHandle{0x0040}, lt.l2.removed)
	assert.Equal(t, peer.NotConnected, p.LE().ConnectionState())
}

func TestInterrogationRetry(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	reads := 0
	lt.c.OnCommand(cmd.ReadRemoteVersionInformationOpCode, func(params []byte) [][]byte {
		h := binary.LittleEndian.Uint16(params)
		status := byte(0x00)
		if reads++; reads == 1 {
			status = byte(hci.ErrConnFailedToBeEstablished)
		}
		return [][]byte{
			hcitest.CommandStatus(cmd.ReadRemoteVersionInformationOpCode, 0x00),
			hcitest.ReadRemoteVersionInformationComplete(status, h, 0x09, 0x000f, 0x0001),
		}
	})

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	require.NoError(t, r.errs[0])
	assert.Equal(t, hci.ConnectionHandle(0x0041), r.got[0].Handle())
	assert.Equal(t, 2, lt.c.SentCount(cmd.LECreateConnectionOpCode))
	assert.Equal(t, 1, lt.c.SentCount(cmd.DisconnectOpCode))
	assert.Equal(t, peer.Connected, p.LE().ConnectionState())
}

func TestCentralParameterUpdateAfterPause(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.connect(t, p)
	assert.Equal(t, 0, lt.c.SentCount(cmd.LEConnectionUpdateOpCode))

	lt.d.Advance(ConnectionPauseCentral)
	sent := lt.c.Sent(cmd.LEConnectionUpdateOpCode)
	require.Len(t, sent, 1)
	pr := hci.DefaultPreferredConnectionParameters
	assert.Equal(t, pr.MinInterval, binary.LittleEndian.Uint16(sent[0][2:]))
	assert.Equal(t, pr.MaxInterval, binary.LittleEndian.Uint16(sent[0][4:]))
	assert.Equal(t, pr.SupervisionTimeout, binary.LittleEndian.Uint16(sent[0][8:]))

	want := hci.LEConnectionParameters{Interval: pr.MaxInterval, SupervisionTimeout: pr.SupervisionTimeout}
	assert.Equal(t, want, lt.m.Connection(p.ID()).Parameters())
	assert.Equal(t, want, *p.LE().ConnectionParameters())
	assert.Empty(t, lt.l2.updates)
}

func TestCentralUsesPeerPreferredParameters(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	pr := hci.LEPreferredConnectionParameters{MinInterval: 0x0030, MaxInterval: 0x0040, MaxLatency: 0, SupervisionTimeout: 0x0100}
	p.MutLE().SetPreferredConnectionParameters(pr)
	lt.connect(t, p)

	lt.d.Advance(ConnectionPauseCentral)
	sent := lt.c.Sent(cmd.LEConnectionUpdateOpCode)
	require.Len(t, sent, 1)
	assert.Equal(t, pr.MinInterval, binary.LittleEndian.Uint16(sent[0][2:]))
	assert.Equal(t, pr.MaxInterval, binary.LittleEndian.Uint16(sent[0][4:]))
}

func TestNoParameterUpdateAfterDisconnect(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	h := lt.connect(t, p)
	h.Release()

	lt.d.Advance(ConnectionPausePeripheral)
	assert.Equal(t, 0, lt.c.SentCount(cmd.LEConnectionUpdateOpCode))
	assert.Empty(t, lt.l2.updates)
}

// acceptIncoming injects a link from a remote central and returns the handle
// given to the incoming connection callback.
func (lt *leTest) acceptIncoming(t *testing.T, handle uint16, addr [6]byte) *ConnectionHandle {
	var got []*ConnectionHandle
	lt.m.SetIncomingConnectionCallback(func(h *ConnectionHandle) { got = append(got, h) })
	lt.c.Inject(hcitest.LEConnectionComplete(0x00, handle, byte(hci.RolePeripheral), 0x00, addr, 0x0018, 0, 0x002a))
	lt.d.RunUntilIdle()
	require.Len(t, got, 1)
	require.True(t, got[0].Active())
	return got[0]
}

func TestIncomingConnection(t *testing.T) {
	lt := newLETest(t)
	lt.remoteFeatures = hci.LEFeatureConnectionParametersRequest
	h := lt.acceptIncoming(t, 0x0080, addrB)

	assert.Equal(t, hci.RolePeripheral, h.Role())
	assert.Equal(t, gap.Bondable, h.BondableMode())
	p := lt.cache.FindByID(h.PeerID())
	require.NotNil(t, p)
	assert.Equal(t, peer.Connected, p.LE().ConnectionState())
	f, ok := p.LE().Features()
	assert.True(t, ok)
	assert.Equal(t, hci.LEFeatureConnectionParametersRequest, f)
	assert.Equal(t, 1, lt.c.SentCount(cmd.LEReadRemoteFeaturesOpCode))
	assert.Equal(t, hci.RolePeripheral, lt.l2.links[0x0080].role)

	// the link is also reachable through Connect
	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	require.Len(t, r.errs, 1)
	assert.NoError(t, r.errs[0])
	assert.Equal(t, 0, lt.c.SentCount(cmd.LECreateConnectionOpCode))
}

func TestIncomingConnectionWithoutCallback(t *testing.T) {
	lt := newLETest(t)
	lt.c.Inject(hcitest.LEConnectionComplete(0x00, 0x0080, byte(hci.RolePeripheral), 0x00, addrB, 0x0018, 0, 0x002a))
	lt.d.RunUntilIdle()

	sent := lt.c.Sent(cmd.DisconnectOpCode)
	require.Len(t, sent, 1)
	assert.Equal(t, uint16(0x0080), binary.LittleEndian.Uint16(sent[0]))
	assert.Empty(t, lt.l2.links)
	assert.Empty(t, lt.m.Connections())
}

func TestOutgoingLinkAfterIncomingIsReady(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.c.RespondStatus(cmd.LECreateConnectionOpCode, 0x00)

	var r handles
	lt.m.Connect(p.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	require.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionOpCode))

	in := lt.acceptIncoming(t, 0x0080, addrA)
	require.Equal(t, p.ID(), in.PeerID())

	lt.c.Inject(hcitest.LEConnectionComplete(0x00, 0x0040, byte(hci.RoleCentral), 0x00, addrA, 0x0018, 0, 0x002a))
	lt.d.RunUntilIdle()

	sent := lt.c.Sent(cmd.DisconnectOpCode)
	require.Len(t, sent, 1)
	assert.Equal(t, uint16(0x0040), binary.LittleEndian.Uint16(sent[0]))

	require.Len(t, r.errs, 1)
	require.NoError(t, r.errs[0])
	assert.Equal(t, hci.ConnectionHandle(0x0080), r.got[0].Handle())
	assert.True(t, r.got[0].Active())
	assert.Equal(t, 2, lt.m.Connection(p.ID()).Refs())
}

func TestPeripheralParameterUpdate(t *testing.T) {
	for _, tc := range []struct {
		name      string
		local     uint64
		remote    uint64
		responder func(params []byte) [][]byte
		linkLayer int
	}{
		{
			name:      "fallback at status",
			local:     hci.LEFeatureConnectionParametersRequest,
			remote:    hci.LEFeatureConnectionParametersRequest,
			responder: func([]byte) [][]byte { return [][]byte{hcitest.CommandStatus(cmd.LEConnectionUpdateOpCode, byte(hci.ErrUnsupportedRemoteFeature))} },
			linkLayer: 1,
		},
		{
			name:   "fallback at completion",
			local:  hci.LEFeatureConnectionParametersRequest,
			remote: hci.LEFeatureConnectionParametersRequest,
			responder: func(params []byte) [][]byte {
				h := binary.LittleEndian.Uint16(params)
				return [][]byte{
					hcitest.CommandStatus(cmd.LEConnectionUpdateOpCode, 0x00),
					hcitest.LEConnectionUpdateComplete(byte(hci.ErrUnsupportedRemoteFeature), h, 0, 0, 0),
				}
			},
			linkLayer: 1,
		},
		{
			name:      "remote lacks the procedure",
			local:     hci.LEFeatureConnectionParametersRequest,
			linkLayer: 0,
		},
		{
			name:      "local lacks the procedure",
			remote:    hci.LEFeatureConnectionParametersRequest,
			linkLayer: 0,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			lt := newLETest(t)
			lt.m.SetLocalFeatures(tc.local)
			lt.remoteFeatures = tc.remote
			if tc.responder != nil {
				lt.c.OnCommand(cmd.LEConnectionUpdateOpCode, tc.responder)
			}
			lt.acceptIncoming(t, 0x0080, addrB)

			lt.d.Advance(ConnectionPauseCentral)
			assert.Equal(t, 0, lt.c.SentCount(cmd.LEConnectionUpdateOpCode))
			assert.Empty(t, lt.l2.updates)

			lt.d.Advance(ConnectionPausePeripheral - ConnectionPauseCentral)
			assert.Equal(t, tc.linkLayer, lt.c.SentCount(cmd.LEConnectionUpdateOpCode))
			assert.Equal(t, []hci.LEPreferredConnectionParameters{hci.DefaultPreferredConnectionParameters}, lt.l2.updates)
		})
	}
}

func TestPeripheralLinkLayerUpdate(t *testing.T) {
	lt := newLETest(t)
	lt.m.SetLocalFeatures(hci.LEFeatureConnectionParametersRequest)
	lt.remoteFeatures = hci.LEFeatureConnectionParametersRequest
	h := lt.acceptIncoming(t, 0x0080, addrB)

	lt.d.Advance(ConnectionPausePeripheral)
	assert.Equal(t, 1, lt.c.SentCount(cmd.LEConnectionUpdateOpCode))
	assert.Empty(t, lt.l2.updates)
	assert.Equal(t, hci.DefaultPreferredConnectionParameters.MaxInterval, lt.m.Connection(h.PeerID()).Parameters().Interval)
}

func TestRemoteConnectionParameterRequest(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.connect(t, p)

	lt.c.Inject(hcitest.LERemoteConnectionParameterRequest(0x0040, 0x0018, 0x0028, 0, 0x002a))
	lt.d.RunUntilIdle()
	sent := lt.c.Sent(cmd.LERemoteConnectionParameterRequestReplyOpCode)
	require.Len(t, sent, 1)
	assert.Equal(t, uint16(0x0040), binary.LittleEndian.Uint16(sent[0][0:]))
	assert.Equal(t, uint16(0x0018), binary.LittleEndian.Uint16(sent[0][2:]))
	assert.Equal(t, uint16(0x0028), binary.LittleEndian.Uint16(sent[0][4:]))
	assert.Equal(t, uint16(0x002a), binary.LittleEndian.Uint16(sent[0][8:]))

	// supervision timeout too short for the interval
	lt.c.Inject(hcitest.LERemoteConnectionParameterRequest(0x0040, 0x0018, 0x0028, 0, 0x000a))
	lt.d.RunUntilIdle()
	sent = lt.c.Sent(cmd.LERemoteConnectionParameterRequestNegativeReplyOpCode)
	require.Len(t, sent, 1)
	assert.Equal(t, uint16(0x0040), binary.LittleEndian.Uint16(sent[0][0:]))
	assert.Equal(t, byte(hci.ErrUnacceptableConnParameters), sent[0][2])
	assert.Len(t, lt.c.Sent(cmd.LERemoteConnectionParameterRequestReplyOpCode), 1)
}

func TestPeerParameterRequestOverL2CAP(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	lt.connect(t, p)

	pr := hci.LEPreferredConnectionParameters{MinInterval: 0x0006, MaxInterval: 0x000c, MaxLatency: 0, SupervisionTimeout: 0x0048}
	lt.l2.links[0x0040].paramUpdate(pr)
	lt.d.RunUntilIdle()

	sent := lt.c.Sent(cmd.LEConnectionUpdateOpCode)
	require.Len(t, sent, 1)
	assert.Equal(t, pr.MinInterval, binary.LittleEndian.Uint16(sent[0][2:]))
	require.NotNil(t, p.LE().PreferredConnectionParameters())
	assert.Equal(t, pr, *p.LE().PreferredConnectionParameters())
	assert.Equal(t, pr.MaxInterval, lt.m.Connection(p.ID()).Parameters().Interval)
}

func TestPair(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)

	var errs []error
	lt.m.Pair(p.ID(), gap.SecurityNone, func(err error) { errs = append(errs, err) })
	assert.Empty(t, errs)
	lt.d.RunUntilIdle()
	require.Len(t, errs, 1)
	assert.True(t, gap.IsHostError(errs[0], gap.ErrNotFound))

	h := lt.connect(t, p)
	lt.m.Pair(p.ID(), gap.SecurityNone, func(err error) { errs = append(errs, err) })
	lt.d.RunUntilIdle()
	require.Len(t, errs, 2)
	assert.NoError(t, errs[1])
	assert.Equal(t, gap.SecurityNone, h.Security().Level)
}

func TestLinkErrorDisconnects(t *testing.T) {
	lt := newLETest(t)
	p := lt.addPeer(t, addrA, 0)
	h := lt.connect(t, p)

	lt.l2.links[0x0040].linkError()
	lt.d.RunUntilIdle()

	assert.False(t, h.Active())
	assert.Equal(t, 1, lt.c.SentCount(cmd.DisconnectOpCode))
	assert.Nil(t, lt.m.Connection(p.ID()))
}

func TestConnectRejectsUnusablePeers(t *testing.T) {
	lt := newLETest(t)
	nc, err := lt.cache.NewPeer(gap.NewAddress(gap.AddressLEPublic, addrB[:]), false)
	require.NoError(t, err)

	var r handles
	lt.m.Connect(gap.RandomPeerID(), gap.Bondable, r.cb)
	lt.m.Connect(nc.ID(), gap.Bondable, r.cb)
	assert.Empty(t, r.errs)
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 2)
	assert.True(t, gap.IsHostError(r.errs[0], gap.ErrNotFound))
	assert.True(t, gap.IsHostError(r.errs[1], gap.ErrNotSupported))
	assert.Equal(t, 0, lt.c.SentCount(cmd.LECreateConnectionOpCode))
}

func TestSetPreferredConnectionParameters(t *testing.T) {
	lt := newLETest(t)
	err := lt.m.SetPreferredConnectionParameters(hci.LEPreferredConnectionParameters{MinInterval: 0x0028, MaxInterval: 0x0018, SupervisionTimeout: 0x002a})
	assert.True(t, gap.IsHostError(err, gap.ErrInvalidParameters))
	assert.NoError(t, lt.m.SetPreferredConnectionParameters(hci.DefaultInitialConnectionParameters))
}

func TestClose(t *testing.T) {
	lt := newLETest(t)
	a := lt.addPeer(t, addrA, 0)
	b := lt.addPeer(t, addrB, 0)
	h := lt.connect(t, a)
	lt.c.RespondStatus(cmd.LECreateConnectionOpCode, 0x00)

	var r handles
	lt.m.Connect(b.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	lt.m.Close()
	lt.d.RunUntilIdle()

	require.Len(t, r.errs, 1)
	assert.True(t, gap.IsHostError(r.errs[0], gap.ErrCanceled))
	assert.False(t, h.Active())
	assert.Equal(t, 1, lt.c.SentCount(cmd.DisconnectOpCode))
	assert.Equal(t, 1, lt.c.SentCount(cmd.LECreateConnectionCancelOpCode))
	assert.Empty(t, lt.m.Connections())

	lt.m.Connect(a.ID(), gap.Bondable, r.cb)
	lt.d.RunUntilIdle()
	require.Len(t, r.errs, 2)
	assert.True(t, gap.IsHostError(r.errs[1], gap.ErrNotReady))
}
