package hci_test

import (
	"testing"

	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch/dispatchtest"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/hcitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAddr = [6]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}

func setup() (*dispatchtest.Fake, *hcitest.Controller) {
	d := dispatchtest.New()
	return d, hcitest.New(d)
}

func TestSyncCommand(t *testing.T) {
	d, c := setup()
	c.RespondComplete(cmd.ReadBDADDROpCode, append([]byte{0x00}, testAddr[:]...)...)

	var got []hci.Event
	c.SendCommand(&cmd.ReadBDADDR{}, func(e hci.Event) { got = append(got, e) }, hci.CommandCompleteEvent)
	d.RunUntilIdle()

	require.Len(t, got, 1)
	assert.Equal(t, hci.CommandCompleteEvent, got[0].Code)
	require.NoError(t, got[0].Err())

	rp := cmd.ReadBDADDRRP{}
	require.NoError(t, rp.Unmarshal(got[0].ReturnParameters()))
	assert.Equal(t, testAddr, rp.BDADDR)
}

func TestFailedStatusEndsTransaction(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.InquiryOpCode, byte(hci.ErrDisallowed))

	var handled int
	c.AddEventHandler(hci.InquiryCompleteEvent, func(hci.Event) { handled++ })

	var got []hci.Event
	c.SendCommand(&cmd.Inquiry{LAP: hci.GIAC}, func(e hci.Event) { got = append(got, e) }, hci.InquiryCompleteEvent)
	d.RunUntilIdle()

	require.Len(t, got, 1)
	assert.True(t, hci.IsStatus(got[0].Err(), hci.ErrDisallowed))

	c.Inject(hcitest.InquiryComplete(0))
	d.RunUntilIdle()
	assert.Len(t, got, 1)
	assert.Equal(t, 1, handled)
}

func TestAsyncCompletionConsumedByTransaction(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.RemoteNameRequestOpCode, 0x00, hcitest.RemoteNameRequestComplete(0, testAddr, "speaker"))

	var handled int
	c.AddEventHandler(hci.RemoteNameRequestCompleteEvent, func(hci.Event) { handled++ })

	var codes []hci.EventCode
	c.SendCommand(&cmd.RemoteNameRequest{BDADDR: testAddr}, func(e hci.Event) {
		require.NoError(t, e.Err())
		codes = append(codes, e.Code)
	}, hci.RemoteNameRequestCompleteEvent)
	d.RunUntilIdle()

	assert.Equal(t, []hci.EventCode{hci.CommandStatusEvent, hci.RemoteNameRequestCompleteEvent}, codes)
	assert.Zero(t, handled)
}

func TestInquiryCommandCompleteTolerated(t *testing.T) {
	d, c := setup()
	c.Respond(cmd.InquiryOpCode, hcitest.CommandComplete(cmd.InquiryOpCode, 0x00))

	var codes []hci.EventCode
	c.SendCommand(&cmd.Inquiry{LAP: hci.GIAC}, func(e hci.Event) {
		require.NoError(t, e.Err())
		codes = append(codes, e.Code)
	}, hci.InquiryCompleteEvent)
	d.RunUntilIdle()
	assert.Equal(t, []hci.EventCode{hci.CommandCompleteEvent}, codes)

	c.Inject(hcitest.InquiryComplete(0))
	d.RunUntilIdle()
	assert.Equal(t, []hci.EventCode{hci.CommandCompleteEvent, hci.InquiryCompleteEvent}, codes)
}

func TestSameCompletionEventSerialized(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.RemoteNameRequestOpCode, 0x00)

	var done int
	cb := func(e hci.Event) {
		if e.Code == hci.RemoteNameRequestCompleteEvent {
			done++
		}
	}
	c.SendCommand(&cmd.RemoteNameRequest{BDADDR: testAddr}, cb, hci.RemoteNameRequestCompleteEvent)
	c.SendCommand(&cmd.RemoteNameRequest{BDADDR: [6]byte{9}}, cb, hci.RemoteNameRequestCompleteEvent)
	d.RunUntilIdle()
	assert.Equal(t, 1, c.SentCount(cmd.RemoteNameRequestOpCode))

	c.Inject(hcitest.RemoteNameRequestComplete(0, testAddr, "a"))
	d.RunUntilIdle()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, c.SentCount(cmd.RemoteNameRequestOpCode))
}

func TestExclusiveCommandHoldsExcludedOpcode(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.InquiryOpCode, 0x00)
	c.RespondStatus(cmd.RemoteNameRequestOpCode, 0x00)
	c.RespondComplete(cmd.ReadBDADDROpCode, append([]byte{0x00}, testAddr[:]...)...)

	c.SendExclusiveCommand(&cmd.Inquiry{LAP: hci.GIAC}, nil, hci.InquiryCompleteEvent, cmd.RemoteNameRequestOpCode)
	c.SendCommand(&cmd.RemoteNameRequest{BDADDR: testAddr}, nil, hci.RemoteNameRequestCompleteEvent)
	c.SendCommand(&cmd.ReadBDADDR{}, nil, hci.CommandCompleteEvent)
	d.RunUntilIdle()

	assert.Equal(t, 0, c.SentCount(cmd.RemoteNameRequestOpCode))
	// unrelated commands are not held
	assert.Equal(t, 1, c.SentCount(cmd.ReadBDADDROpCode))

	c.Inject(hcitest.InquiryComplete(0))
	d.RunUntilIdle()
	assert.Equal(t, 1, c.SentCount(cmd.RemoteNameRequestOpCode))
}

func TestCommandFlowControl(t *testing.T) {
	d, c := setup()
	c.SendCommand(&cmd.ReadBDADDR{}, nil, hci.CommandCompleteEvent)
	c.SendCommand(&cmd.ReadBufferSize{}, nil, hci.CommandCompleteEvent)
	d.RunUntilIdle()
	assert.Equal(t, []int{cmd.ReadBDADDROpCode}, c.SentOpcodes())

	// NOP with one credit
	c.Inject(hcitest.CommandComplete(0x0000))
	d.RunUntilIdle()
	assert.Equal(t, []int{cmd.ReadBDADDROpCode, cmd.ReadBufferSizeOpCode}, c.SentOpcodes())
}

func TestCommandTimeout(t *testing.T) {
	d, c := setup()

	var got []hci.Event
	c.SendCommand(&cmd.Reset{}, func(e hci.Event) { got = append(got, e) }, hci.CommandCompleteEvent)
	d.RunUntilIdle()
	assert.Empty(t, got)

	d.Advance(hci.DefaultCommandTimeout)
	require.Len(t, got, 1)
	assert.True(t, got[0].Synthetic())
	assert.True(t, gap.IsHostError(got[0].Err(), gap.ErrTimedOut))

	// the lost credit is restored
	c.RespondComplete(cmd.ReadBDADDROpCode, append([]byte{0x00}, testAddr[:]...)...)
	ok := false
	c.SendCommand(&cmd.ReadBDADDR{}, func(e hci.Event) { ok = e.Err() == nil }, hci.CommandCompleteEvent)
	d.RunUntilIdle()
	assert.True(t, ok)
}

func TestAbandonTransaction(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.InquiryOpCode, 0x00)

	var calls, handled int
	c.AddEventHandler(hci.InquiryCompleteEvent, func(hci.Event) { handled++ })
	id := c.SendCommand(&cmd.Inquiry{LAP: hci.GIAC}, func(hci.Event) { calls++ }, hci.InquiryCompleteEvent)
	d.RunUntilIdle()
	require.Equal(t, 1, calls)

	c.AbandonTransaction(id)
	c.Inject(hcitest.InquiryComplete(0))
	d.RunUntilIdle()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, handled)
}

func TestEventHandlers(t *testing.T) {
	d, c := setup()

	var a, b int
	ida := c.AddEventHandler(hci.DisconnectionCompleteEvent, func(hci.Event) { a++ })
	c.AddEventHandler(hci.DisconnectionCompleteEvent, func(hci.Event) { b++ })
	assert.Zero(t, c.AddEventHandler(hci.CommandStatusEvent, func(hci.Event) {}))

	c.Inject(hcitest.DisconnectionComplete(0x0040, byte(hci.ErrRemoteUser)))
	d.RunUntilIdle()
	c.RemoveEventHandler(ida)
	c.Inject(hcitest.DisconnectionComplete(0x0040, byte(hci.ErrRemoteUser)))
	d.RunUntilIdle()

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestLEMetaStatus(t *testing.T) {
	d, c := setup()

	var got hci.Event
	c.AddEventHandler(hci.LEConnectionCompleteEvent, func(e hci.Event) { got = e })
	c.Inject(hcitest.LEConnectionComplete(byte(hci.ErrConnFailedToBeEstablished), 0, 0, 0, testAddr, 0, 0, 0))
	d.RunUntilIdle()

	assert.Equal(t, hci.LEConnectionCompleteEvent, got.Code)
	assert.True(t, got.Code.IsLEMeta())
	assert.True(t, hci.IsStatus(got.Err(), hci.ErrConnFailedToBeEstablished))
}

func TestCloseFailsPending(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.InquiryOpCode, 0x00)

	var errs []error
	c.SendCommand(&cmd.Inquiry{LAP: hci.GIAC}, func(e hci.Event) { errs = append(errs, e.Err()) }, hci.InquiryCompleteEvent)
	c.SendCommand(&cmd.ReadBDADDR{}, func(e hci.Event) { errs = append(errs, e.Err()) }, hci.CommandCompleteEvent)
	d.RunUntilIdle()
	require.NoError(t, c.Close())

	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.True(t, gap.IsHostError(errs[1], gap.ErrCanceled))
	assert.True(t, gap.IsHostError(errs[2], gap.ErrCanceled))
}

func TestACLFlowControl(t *testing.T) {
	d, c := setup()
	c.SetACLBuffer(27, 1)

	require.NoError(t, c.SendACL(0x0040, hci.PbfHostToControllerStart, []byte{1, 2, 3}))
	require.NoError(t, c.SendACL(0x0040, hci.PbfContinuing, []byte{4}))
	assert.Len(t, c.SentACL(), 1)
	assert.Equal(t, []byte{0x02, 0x40, 0x00, 0x03, 0x00, 1, 2, 3}, c.SentACL()[0])

	c.Inject(hcitest.NumberOfCompletedPackets(0x0040, 1))
	d.RunUntilIdle()
	require.Len(t, c.SentACL(), 2)
	assert.Equal(t, []byte{0x02, 0x40, 0x10, 0x01, 0x00, 4}, c.SentACL()[1])

	assert.Error(t, c.SendACL(0x0040, 0, make([]byte, 28)))
}

func TestACLClearHandleRestoresCredits(t *testing.T) {
	_, c := setup()
	c.SetACLBuffer(27, 1)

	require.NoError(t, c.SendACL(0x0040, 0, []byte{1}))
	require.NoError(t, c.SendACL(0x0040, 0, []byte{2}))
	require.NoError(t, c.SendACL(0x0041, 0, []byte{3}))
	require.Len(t, c.SentACL(), 1)

	c.ClearACLHandle(0x0040)
	require.Len(t, c.SentACL(), 2)
	assert.Equal(t, byte(0x41), c.SentACL()[1][1])
}

func TestInboundACL(t *testing.T) {
	d, c := setup()

	var handle hci.ConnectionHandle
	var data []byte
	c.SetACLHandler(func(h hci.ConnectionHandle, pbf uint8, b []byte) {
		handle, data = h, b
	})
	c.Inject(hcitest.ACL(0x0041, hci.PbfControllerToHostStart, []byte{0x01, 0x00, 0x04, 0x00, 0xaa}))
	d.RunUntilIdle()

	assert.Equal(t, hci.ConnectionHandle(0x0041), handle)
	assert.Equal(t, []byte{0x01, 0x00, 0x04, 0x00, 0xaa}, data)
}
