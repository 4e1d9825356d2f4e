package h4

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeadlineConnReadTimesOut(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	d := &deadlineConn{Conn: a, timeout: 20 * time.Millisecond}
	defer d.Close()

	n, err := d.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.True(t, isTimeout(err), "%v", err)
}

func TestDeadlineConnPassesData(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()
	d := &deadlineConn{Conn: a, timeout: time.Second}
	defer d.Close()

	go b.Write([]byte{0x04, 0x0e})
	buf := make([]byte, 8)
	n, err := d.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x0e}, buf[:n])

	go b.Read(make([]byte, 8))
	n, err = d.Write([]byte{0x01, 0x03, 0x0c, 0x00})
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestSocketTransportDeliversPackets(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	go func() {
		c, err := l.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		// a stall longer than the deadline must not end the stream
		time.Sleep(100 * time.Millisecond)
		c.Write([]byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00})
		time.Sleep(time.Second)
	}()

	rwc, err := NewSocket(l.Addr().String(), 50*time.Millisecond)
	require.NoError(t, err)
	defer rwc.Close()

	buf := make([]byte, 64)
	n, err := rwc.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x04, 0x0e, 0x04, 0x01, 0x03, 0x0c, 0x00}, buf[:n])
}
