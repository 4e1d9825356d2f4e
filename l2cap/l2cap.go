// Package l2cap carries the fixed LE-U channels over HCI ACL data.
package l2cap

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
)

// DefaultMTU is the minimum MTU of the fixed channels on LE-U [Vol 3, Part A, 3.2.8].
const DefaultMTU = 23

// SignalingResponseTimeout bounds the wait for a signaling response (RTX).
var SignalingResponseTimeout = 30 * time.Second

// ACL is the data path of the controller.
type ACL interface {
	SendACL(handle hci.ConnectionHandle, pbf uint8, data []byte) error
	ACLMTU() int
	SetACLHandler(fn hci.ACLHandler)
}

type pendingRequest struct {
	code  uint8
	cb    func(accepted bool)
	timer dispatch.Timer
}

type link struct {
	handle   hci.ConnectionHandle
	role     hci.Role
	channels map[uint16]*Channel
	security gap.SecurityProperties

	// partial PDU being recombined
	recv pdu

	linkError       func()
	paramUpdate     func(hci.LEPreferredConnectionParameters)
	securityUpgrade func(gap.SecurityLevel, func(error))

	sigID   uint8
	pending map[uint8]*pendingRequest
}

func (k *link) nextSigID() uint8 {
	// identifier 0 is never used [Vol 3, Part A, 4]
	k.sigID++
	if k.sigID == 0 {
		k.sigID = 1
	}
	return k.sigID
}

// L2CAP owns the logical links registered by the connection managers.
type L2CAP struct {
	d     dispatch.Dispatcher
	acl   ACL
	log   gap.Logger
	links map[hci.ConnectionHandle]*link
}

// New installs an L2CAP layer as the ACL data receiver of acl.
func New(d dispatch.Dispatcher, acl ACL, l gap.Logger) *L2CAP {
	if l == nil {
		l = gap.ComponentLogger("l2cap")
	}
	c := &L2CAP{
		d:     d,
		acl:   acl,
		log:   l,
		links: make(map[hci.ConnectionHandle]*link),
	}
	acl.SetACLHandler(c.handleACL)
	return c
}

// AddLEConnection registers an LE-U link and opens its ATT and SMP channels.
// linkError is called when the link can no longer be used. paramUpdate is
// called, in the central role, for parameters a peripheral asked for and that
// were accepted. securityUpgrade serves channel requests for a higher security level.
func (l *L2CAP) AddLEConnection(handle hci.ConnectionHandle, role hci.Role,
	linkError func(),
	paramUpdate func(hci.LEPreferredConnectionParameters),
	securityUpgrade func(gap.SecurityLevel, func(error))) (att, smp *Channel, err error) {

	if _, ok := l.links[handle]; ok {
		return nil, nil, errors.Wrapf(gap.ErrAlreadyExists, "link 0x%04X", handle)
	}
	k := &link{
		handle:          handle,
		role:            role,
		channels:        make(map[uint16]*Channel),
		linkError:       linkError,
		paramUpdate:     paramUpdate,
		securityUpgrade: securityUpgrade,
		pending:         make(map[uint8]*pendingRequest),
	}
	att = newChannel(l, k, gap.ChannelATT)
	smp = newChannel(l, k, gap.ChannelSMP)
	k.channels[gap.ChannelATT] = att
	k.channels[gap.ChannelSMP] = smp
	l.links[handle] = k
	l.log.Debugf("added le link 0x%04X as %v", handle, role)
	return att, smp, nil
}

// RemoveConnection closes the channels of a link. Signaling requests still
// waiting for a response are dropped without invoking their callbacks.
func (l *L2CAP) RemoveConnection(handle hci.ConnectionHandle) {
	k, ok := l.links[handle]
	if !ok {
		return
	}
	delete(l.links, handle)
	for id, p := range k.pending {
		p.timer.Stop()
		delete(k.pending, id)
	}
	for _, ch := range k.channels {
		ch.close()
	}
	l.log.Debugf("removed link 0x%04X", handle)
}

// AssignLinkSecurityProperties records the security of the key the link is encrypted with.
func (l *L2CAP) AssignLinkSecurityProperties(handle hci.ConnectionHandle, p gap.SecurityProperties) {
	if k, ok := l.links[handle]; ok {
		k.security = p
	}
}

// RequestConnectionParameterUpdate asks the central for new parameters. Only
// a peripheral may send the request. cb reports whether the central accepted;
// a timeout or Command Reject counts as rejection.
func (l *L2CAP) RequestConnectionParameterUpdate(handle hci.ConnectionHandle, p hci.LEPreferredConnectionParameters, cb func(accepted bool)) error {
	k, ok := l.links[handle]
	if !ok {
		return errors.Wrapf(gap.ErrNotFound, "link 0x%04X", handle)
	}
	if k.role != hci.RolePeripheral {
		return errors.Wrap(gap.ErrNotSupported, "only a peripheral may request a parameter update")
	}
	req := ConnectionParameterUpdateRequest{
		IntervalMin:       p.MinInterval,
		IntervalMax:       p.MaxInterval,
		SlaveLatency:      p.MaxLatency,
		TimeoutMultiplier: p.SupervisionTimeout,
	}
	id := k.nextSigID()
	if err := l.sendSignal(k, SignalConnectionParameterUpdateRequest, id, req.Marshal()); err != nil {
		return err
	}
	pr := &pendingRequest{code: SignalConnectionParameterUpdateResponse, cb: cb}
	pr.timer = l.d.PostDelayed(SignalingResponseTimeout, func() {
		if k.pending[id] != pr {
			return
		}
		delete(k.pending, id)
		l.log.Warnf("link 0x%04X: no response to parameter update request", k.handle)
		pr.cb(false)
	})
	k.pending[id] = pr
	return nil
}

func (l *L2CAP) sendSignal(k *link, code, id uint8, data []byte) error {
	return l.writePDU(k.handle, newPDU(gap.ChannelLESignal, newSignal(code, id, data)))
}

// writePDU breaks down a L2CAP PDU into fragments if it's larger than the HCI buffer size. [Vol 3, Part A, 7.2.1]
func (l *L2CAP) writePDU(handle hci.ConnectionHandle, p pdu) error {
	mtu := l.acl.ACLMTU()
	pbf := uint8(hci.PbfHostToControllerStart)
	for len(p) > 0 {
		n := len(p)
		if n > mtu {
			n = mtu
		}
		if err := l.acl.SendACL(handle, pbf, p[:n]); err != nil {
			return errors.Wrap(err, "write pdu")
		}
		pbf = hci.PbfContinuing
		p = p[n:]
	}
	return nil
}

// handleACL recombines fragments into a L2CAP PDU. [Vol 3, Part A, 7.2.2]
func (l *L2CAP) handleACL(handle hci.ConnectionHandle, pbf uint8, data []byte) {
	k, ok := l.links[handle]
	if !ok {
		l.log.Debugf("dropping acl data for unknown link 0x%04X", handle)
		return
	}

	if pbf != hci.PbfContinuing {
		if k.recv != nil {
			l.log.Warnf("link 0x%04X: dropping incomplete pdu", handle)
		}
		if len(data) < 4 {
			l.log.Warnf("link 0x%04X: short start fragment % X", handle, data)
			k.recv = nil
			return
		}
		k.recv = append(pdu(nil), data...)
	} else {
		if k.recv == nil {
			l.log.Warnf("link 0x%04X: continuation without start", handle)
			return
		}
		k.recv = append(k.recv, data...)
	}

	p := k.recv
	switch {
	case len(p.payload()) < p.dlen():
		return
	case len(p.payload()) > p.dlen():
		l.log.Warnf("link 0x%04X: pdu longer than its header, dropped", handle)
		k.recv = nil
		return
	}
	k.recv = nil

	if p.cid() == gap.ChannelLESignal {
		l.handleSignal(k, signal(p.payload()))
		return
	}
	ch, ok := k.channels[p.cid()]
	if !ok {
		l.log.Debugf("link 0x%04X: unrecognized cid 0x%04X", handle, p.cid())
		return
	}
	ch.receive(p.payload())
}

func (l *L2CAP) handleSignal(k *link, s signal) {
	if !s.complete() {
		l.log.Warnf("link 0x%04X: malformed signaling packet % X", k.handle, []byte(s))
		return
	}

	switch s.code() {
	case SignalConnectionParameterUpdateRequest:
		l.onParameterUpdateRequest(k, s)

	case SignalConnectionParameterUpdateResponse:
		var rsp ConnectionParameterUpdateResponse
		if err := rsp.Unmarshal(s.data()); err != nil {
			l.log.Warnf("link 0x%04X: %v", k.handle, err)
			return
		}
		l.resolve(k, s.id(), s.code(), rsp.Result == ParametersAccepted)

	case SignalCommandReject:
		l.resolve(k, s.id(), 0, false)

	default:
		rej := CommandReject{Reason: RejectNotUnderstood}
		l.sendSignal(k, SignalCommandReject, s.id(), rej.Marshal())
	}
}

func (l *L2CAP) onParameterUpdateRequest(k *link, s signal) {
	if k.role != hci.RoleCentral {
		rej := CommandReject{Reason: RejectNotUnderstood}
		l.sendSignal(k, SignalCommandReject, s.id(), rej.Marshal())
		return
	}

	var req ConnectionParameterUpdateRequest
	if err := req.Unmarshal(s.data()); err != nil {
		l.log.Warnf("link 0x%04X: %v", k.handle, err)
		return
	}
	p := hci.LEPreferredConnectionParameters{
		MinInterval:        req.IntervalMin,
		MaxInterval:        req.IntervalMax,
		MaxLatency:         req.SlaveLatency,
		SupervisionTimeout: req.TimeoutMultiplier,
	}

	rsp := ConnectionParameterUpdateResponse{Result: ParametersAccepted}
	if err := p.Validate(); err != nil {
		l.log.Infof("link 0x%04X: rejecting parameters: %v", k.handle, err)
		rsp.Result = ParametersRejected
	}
	l.sendSignal(k, SignalConnectionParameterUpdateResponse, s.id(), rsp.Marshal())

	if rsp.Result == ParametersAccepted && k.paramUpdate != nil {
		k.paramUpdate(p)
	}
}

// resolve completes the request with identifier id. code 0 matches any request.
func (l *L2CAP) resolve(k *link, id, code uint8, accepted bool) {
	pr, ok := k.pending[id]
	if !ok || (code != 0 && pr.code != code) {
		l.log.Debugf("link 0x%04X: unexpected signaling response 0x%02X id %d", k.handle, code, id)
		return
	}
	delete(k.pending, id)
	pr.timer.Stop()
	pr.cb(accepted)
}
