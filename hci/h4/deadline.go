package h4

import (
	"net"
	"time"

	"github.com/pkg/errors"
)

// deadlineConn bounds every Read and Write on a stream connection so that a
// stalled peer surfaces as a timeout instead of blocking the rx loop forever.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (d *deadlineConn) Read(b []byte) (int, error) {
	if err := d.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, errors.Wrap(err, "can't set read deadline")
	}
	return d.Conn.Read(b)
}

func (d *deadlineConn) Write(b []byte) (int, error) {
	if err := d.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, errors.Wrap(err, "can't set write deadline")
	}
	return d.Conn.Write(b)
}

func isTimeout(err error) bool {
	ne, ok := errors.Cause(err).(net.Error)
	return ok && ne.Timeout()
}
