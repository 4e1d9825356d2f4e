package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalInPlace(t *testing.T) {
	c := &LEConnectionUpdate{
		ConnectionHandle:   0x0040,
		ConnIntervalMin:    0x0018,
		ConnIntervalMax:    0x0028,
		ConnLatency:         0,
		SupervisionTimeout: 0x002a,
	}
	b := make([]byte, c.Len())
	require.NoError(t, c.Marshal(b))
	assert.Equal(t, []byte{
		0x40, 0x00,
		0x18, 0x00,
		0x28, 0x00,
		0x00, 0x00,
		0x2a, 0x00,
		0x00, 0x00,
		0x00, 0x00,
	}, b)
	assert.Equal(t, 0x2013, c.OpCode())
}

func TestMarshalShortBuffer(t *testing.T) {
	c := &Inquiry{LAP: [3]byte{0x33, 0x8b, 0x9e}, InquiryLength: 0x08}
	assert.Error(t, c.Marshal(make([]byte, 2)))
}

func TestUnmarshalCommand(t *testing.T) {
	in := &RemoteNameRequest{BDADDR: [6]byte{1, 2, 3, 4, 5, 6}, PageScanRepetitionMode: 1, ClockOffset: 0x8000}
	b := make([]byte, in.Len())
	require.NoError(t, in.Marshal(b))

	out := &RemoteNameRequest{}
	require.NoError(t, Unmarshal(out, b))
	assert.Equal(t, in, out)
	assert.Equal(t, 0x01, OGF(out.OpCode()))
	assert.Equal(t, 0x19, OCF(out.OpCode()))
}

func TestReturnParameters(t *testing.T) {
	rp := &ReadBDADDRRP{}
	require.NoError(t, rp.Unmarshal([]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66}))
	assert.Equal(t, uint8(0), rp.Status)
	assert.Equal(t, [6]byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, rp.BDADDR)

	assert.Error(t, (&ReadScanEnableRP{}).Unmarshal([]byte{0x00}))
}
