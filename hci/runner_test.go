package hci_test

import (
	"testing"

	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/hcitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerSuccess(t *testing.T) {
	d, c := setup()
	c.RespondComplete(cmd.ReadBDADDROpCode, append([]byte{0x00}, testAddr[:]...)...)
	c.RespondStatus(cmd.ReadRemoteVersionInformationOpCode, 0x00,
		hcitest.ReadRemoteVersionInformationComplete(0, 0x0040, 0x09, 0x000f, 0x1234))

	r := hci.NewSequentialCommandRunner(c)
	var order []string
	r.QueueCommand(&cmd.ReadBDADDR{}, func(hci.Event) { order = append(order, "addr") }, true, hci.CommandCompleteEvent)
	r.QueueCommand(&cmd.ReadRemoteVersionInformation{ConnectionHandle: 0x0040}, func(e hci.Event) {
		assert.Equal(t, hci.ReadRemoteVersionInformationCompleteEvent, e.Code)
		order = append(order, "version")
	}, true, hci.ReadRemoteVersionInformationCompleteEvent)
	assert.True(t, r.HasQueuedCommands())

	var status []error
	r.RunCommands(func(err error) { status = append(status, err) })
	assert.False(t, r.IsReady())
	d.RunUntilIdle()

	require.Len(t, status, 1)
	assert.NoError(t, status[0])
	assert.Equal(t, []string{"addr", "version"}, order)
	assert.True(t, r.IsReady())
	assert.False(t, r.HasQueuedCommands())
}

func TestRunnerWaitOrdersCommands(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.ReadRemoteVersionInformationOpCode, 0x00)

	r := hci.NewSequentialCommandRunner(c)
	r.QueueCommand(&cmd.ReadRemoteVersionInformation{ConnectionHandle: 0x0040}, nil, true, hci.ReadRemoteVersionInformationCompleteEvent)
	r.QueueCommand(&cmd.ReadBDADDR{}, nil, true, hci.CommandCompleteEvent)
	r.RunCommands(func(error) {})
	d.RunUntilIdle()

	assert.Equal(t, 0, c.SentCount(cmd.ReadBDADDROpCode))
	c.RespondComplete(cmd.ReadBDADDROpCode, append([]byte{0x00}, testAddr[:]...)...)
	c.Inject(hcitest.ReadRemoteVersionInformationComplete(0, 0x0040, 0x09, 0x000f, 0x1234))
	d.RunUntilIdle()
	assert.Equal(t, 1, c.SentCount(cmd.ReadBDADDROpCode))
}

func TestRunnerFirstFailureAborts(t *testing.T) {
	d, c := setup()
	c.RespondComplete(cmd.ReadBDADDROpCode, byte(hci.ErrHardware))

	r := hci.NewSequentialCommandRunner(c)
	called := false
	r.QueueCommand(&cmd.ReadBDADDR{}, func(hci.Event) { called = true }, true, hci.CommandCompleteEvent)
	r.QueueCommand(&cmd.ReadBufferSize{}, nil, true, hci.CommandCompleteEvent)

	var status []error
	r.RunCommands(func(err error) { status = append(status, err) })
	d.RunUntilIdle()

	require.Len(t, status, 1)
	assert.True(t, hci.IsStatus(status[0], hci.ErrHardware))
	assert.False(t, called)
	assert.Equal(t, 0, c.SentCount(cmd.ReadBufferSizeOpCode))
	assert.True(t, r.IsReady())
}

func TestRunnerCancelDropsLateCallbacks(t *testing.T) {
	d, c := setup()
	c.RespondStatus(cmd.ReadRemoteVersionInformationOpCode, 0x00)

	r := hci.NewSequentialCommandRunner(c)
	called := false
	r.QueueCommand(&cmd.ReadRemoteVersionInformation{ConnectionHandle: 0x0040}, func(hci.Event) { called = true }, true, hci.ReadRemoteVersionInformationCompleteEvent)

	var status []error
	r.RunCommands(func(err error) { status = append(status, err) })
	d.RunUntilIdle()
	r.Cancel()

	c.Inject(hcitest.ReadRemoteVersionInformationComplete(0, 0x0040, 0x09, 0x000f, 0x1234))
	d.RunUntilIdle()

	require.Len(t, status, 1)
	assert.True(t, gap.IsHostError(status[0], gap.ErrCanceled))
	assert.False(t, called)
}

func TestRunnerBusy(t *testing.T) {
	d, c := setup()
	r := hci.NewSequentialCommandRunner(c)
	r.QueueCommand(&cmd.Reset{}, nil, true, hci.CommandCompleteEvent)
	r.RunCommands(func(error) {})

	var err error
	r.RunCommands(func(e error) { err = e })
	d.RunUntilIdle()
	assert.True(t, gap.IsHostError(err, gap.ErrNotReady))
}
