package le

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
)

// DefaultCreateConnectionTimeout bounds an outgoing connection attempt.
const DefaultCreateConnectionTimeout = 20 * time.Second

// link is an LE logical link reported by the controller.
type link struct {
	handle hci.ConnectionHandle
	role   hci.Role
	peer   gap.Address
	params hci.LEConnectionParameters
}

type attempt struct {
	peer     gap.Address
	cb       func(l link, err error)
	timer    dispatch.Timer
	canceled bool
	timedOut bool
}

// connector runs LE Create Connection, one attempt at a time, and reports
// links the remote side created.
type connector struct {
	d    dispatch.Dispatcher
	ctrl hci.Controller
	log  gap.Logger

	handler  hci.HandlerID
	pending  *attempt
	incoming func(l link)
}

func newConnector(d dispatch.Dispatcher, ctrl hci.Controller, l gap.Logger, incoming func(link)) *connector {
	c := &connector{d: d, ctrl: ctrl, log: l, incoming: incoming}
	c.handler = ctrl.AddEventHandler(hci.LEConnectionCompleteEvent, c.onConnectionComplete)
	return c
}

func (c *connector) busy() bool { return c.pending != nil }

// create starts a connection attempt. cb is called exactly once unless the
// connector is closed first.
func (c *connector) create(peer gap.Address, p hci.LEPreferredConnectionParameters, timeout time.Duration, cb func(link, error)) error {
	if c.busy() {
		return errors.Wrap(gap.ErrNotReady, "connection attempt in progress")
	}
	a := &attempt{peer: peer, cb: cb}
	c.pending = a
	c.log.Debugf("connecting to %v", peer)

	c.ctrl.SendCommand(hci.CreateConnection(peer.HCIType(), peer.Value, p), func(e hci.Event) {
		if c.pending != a {
			return
		}
		if err := e.Err(); err != nil {
			c.finish(link{}, errors.Wrap(err, "le create connection"))
			return
		}
		if a.canceled {
			c.sendCancel()
			return
		}
		a.timer = c.d.PostDelayed(timeout, func() {
			if c.pending != a {
				return
			}
			c.log.Infof("connection to %v timed out", peer)
			a.timedOut = true
			c.cancel()
		})
	}, hci.CommandStatusEvent)
	return nil
}

// cancel aborts the running attempt. The attempt resolves with ErrCanceled
// (or ErrTimedOut) once the controller confirms.
func (c *connector) cancel() {
	a := c.pending
	if a == nil || a.canceled {
		return
	}
	a.canceled = true
	if a.timer == nil {
		// Create Connection status still outstanding
		return
	}
	c.sendCancel()
}

func (c *connector) sendCancel() {
	c.ctrl.SendCommand(&cmd.LECreateConnectionCancel{}, func(e hci.Event) {
		if err := e.Err(); err != nil {
			// the connection completed first
			c.log.Debugf("le create connection cancel: %v", err)
		}
	}, hci.CommandCompleteEvent)
}

func (c *connector) finish(l link, err error) {
	a := c.pending
	c.pending = nil
	if a.timer != nil {
		a.timer.Stop()
	}
	a.cb(l, err)
}

func (c *connector) onConnectionComplete(e hci.Event) {
	ev := evt.LEConnectionComplete(e.Params)
	if _, err := ev.SupervisionTimeoutWErr(); err != nil {
		c.log.Warnf("malformed le connection complete [% X]", e.Params)
		return
	}
	role := hci.Role(ev.Role())
	bdaddr := ev.PeerAddress()
	l := link{
		handle: hci.ConnectionHandle(ev.ConnectionHandle()),
		role:   role,
		peer:   gap.LEAddressFromHCI(ev.PeerAddressType(), bdaddr[:]),
		params: hci.LEConnectionParameters{
			Interval:           ev.ConnInterval(),
			Latency:            ev.ConnLatency(),
			SupervisionTimeout: ev.SupervisionTimeout(),
		},
	}
	err := e.Err()

	if role == hci.RolePeripheral {
		if err != nil {
			c.log.Infof("incoming le connection failed: %v", err)
			return
		}
		c.incoming(l)
		return
	}

	a := c.pending
	if a == nil {
		if err == nil {
			c.log.Warnf("unexpected le connection to %v, disconnecting", l.peer)
			c.disconnect(l.handle)
		}
		return
	}
	switch {
	case a.timedOut:
		if err == nil {
			c.disconnect(l.handle)
		}
		c.finish(link{}, errors.Wrapf(gap.ErrTimedOut, "connect to %v", a.peer))
	case a.canceled:
		if err == nil {
			c.disconnect(l.handle)
		}
		c.finish(link{}, errors.Wrapf(gap.ErrCanceled, "connect to %v", a.peer))
	case err != nil:
		c.finish(link{}, errors.Wrapf(err, "connect to %v", a.peer))
	default:
		c.finish(l, nil)
	}
}

func (c *connector) disconnect(h hci.ConnectionHandle) {
	c.ctrl.SendCommand(&cmd.Disconnect{ConnectionHandle: uint16(h), Reason: uint8(hci.ErrRemoteUser)}, nil, hci.CommandStatusEvent)
}

// close drops the running attempt without calling it back.
func (c *connector) close() {
	c.ctrl.RemoveEventHandler(c.handler)
	if a := c.pending; a != nil {
		if a.timer != nil {
			a.timer.Stop()
			c.sendCancel()
		}
		c.pending = nil
	}
}
