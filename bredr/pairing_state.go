package bredr

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
)

// State is a step of Secure Simple Pairing on one link.
type State int

const (
	StateIdle State = iota
	StateInitiatorPairingStarted
	StateInitiatorWaitIoCapResponse
	StateResponderWaitIoCapRequest
	StateWaitUserConfirmationRequest
	StateWaitUserPasskeyRequest
	StateWaitUserPasskeyNotification
	StateWaitPairingComplete
	StateWaitLinkKey
	StateInitiatorWaitAuthComplete
	StateWaitEncryption
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:                        "Idle",
	StateInitiatorPairingStarted:     "InitiatorPairingStarted",
	StateInitiatorWaitIoCapResponse:  "InitiatorWaitIoCapResponse",
	StateResponderWaitIoCapRequest:   "ResponderWaitIoCapRequest",
	StateWaitUserConfirmationRequest: "WaitUserConfirmationRequest",
	StateWaitUserPasskeyRequest:      "WaitUserPasskeyRequest",
	StateWaitUserPasskeyNotification: "WaitUserPasskeyNotification",
	StateWaitPairingComplete:         "WaitPairingComplete",
	StateWaitLinkKey:                 "WaitLinkKey",
	StateInitiatorWaitAuthComplete:   "InitiatorWaitAuthComplete",
	StateWaitEncryption:              "WaitEncryption",
	StateFailed:                      "Failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InitiatorAction tells the link owner whether to send HCI Authentication Requested.
type InitiatorAction int

const (
	DoNotSendAuthenticationRequest InitiatorAction = iota
	SendAuthenticationRequest
)

// PairingLink is the side of a BR/EDR link PairingState drives.
type PairingLink interface {
	Handle() hci.ConnectionHandle
	// SetLinkKey records a key that passed the security policy.
	SetLinkKey(key gap.LTK)
	// StartEncryption asks the controller to encrypt the link. The outcome is
	// reported through OnEncryptionChange.
	StartEncryption()
}

// StatusCallback receives the outcome of every pairing procedure on a link.
type StatusCallback func(handle hci.ConnectionHandle, err error)

// PairingState runs Secure Simple Pairing for one BR/EDR link. Every method
// must be called from the dispatcher that delivers HCI events.
type PairingState struct {
	id       gap.PeerID
	link     PairingLink
	delegate gap.PairingDelegate
	status   StatusCallback
	log      gap.Logger

	state     State
	initiator bool
	localIO   gap.IOCapability
	peerIO    gap.IOCapability
	security  gap.SecurityProperties
	callbacks []func(error)
}

// NewPairingState returns a PairingState in Idle. status is called after each
// pairing attempt completes or fails.
func NewPairingState(id gap.PeerID, link PairingLink, status StatusCallback, l gap.Logger) *PairingState {
	if l == nil {
		l = gap.ComponentLogger("gap-bredr")
	}
	return &PairingState{
		id:     id,
		link:   link,
		status: status,
		log:    l.ChildLogger(map[string]interface{}{"peer": id.String()}),
	}
}

// State returns the current state.
func (ps *PairingState) State() State { return ps.state }

// IsPairing reports whether a pairing procedure is in progress.
func (ps *PairingState) IsPairing() bool {
	return ps.state != StateIdle && ps.state != StateFailed
}

// Initiator reports whether the local device started the current pairing.
func (ps *PairingState) Initiator() bool { return ps.initiator }

// SecurityProperties returns the properties of the last accepted link key.
func (ps *PairingState) SecurityProperties() gap.SecurityProperties { return ps.security }

// SetPairingDelegate replaces the delegate used for later user interaction.
func (ps *PairingState) SetPairingDelegate(d gap.PairingDelegate) { ps.delegate = d }

// InitiatePairing starts pairing as initiator, or joins the pairing already
// running. cb is called once when that pairing ends.
func (ps *PairingState) InitiatePairing(cb func(error)) InitiatorAction {
	if ps.state == StateFailed {
		cb(errors.Wrap(gap.ErrNotSupported, "pairing failed on this link"))
		return DoNotSendAuthenticationRequest
	}
	if ps.delegate == nil {
		cb(errors.Wrap(gap.ErrNotReady, "no pairing delegate"))
		return DoNotSendAuthenticationRequest
	}

	ps.callbacks = append(ps.callbacks, cb)
	if ps.state != StateIdle {
		ps.log.Debugf("pairing in progress (%v), queued request", ps.state)
		return DoNotSendAuthenticationRequest
	}

	ps.initiator = true
	ps.state = StateInitiatorPairingStarted
	return SendAuthenticationRequest
}

// OnLinkKeyRequest returns the key to answer HCI Link Key Request with, or
// nil for a negative reply. bond is the stored key of the peer, if any.
func (ps *PairingState) OnLinkKeyRequest(bond *gap.LTK) *gap.LTK {
	switch ps.state {
	case StateFailed:
		return nil
	case StateIdle:
		// Peer authenticating with us.
		return bond
	case StateInitiatorPairingStarted:
		if bond == nil {
			return nil
		}
		ps.security = bond.Security
		ps.state = StateInitiatorWaitAuthComplete
		return bond
	}
	ps.failUnexpected("Link Key Request")
	return nil
}

// OnIOCapabilityRequest returns the IO capability and authentication
// requirements to reply with. ok is false when the request must be rejected.
func (ps *PairingState) OnIOCapabilityRequest() (io gap.IOCapability, authReq uint8, ok bool) {
	switch ps.state {
	case StateFailed:
		return 0, 0, false
	case StateInitiatorPairingStarted, StateResponderWaitIoCapRequest:
		if ps.delegate == nil {
			ps.log.Infof("rejecting pairing: no pairing delegate")
			ps.fail(errors.Wrap(gap.ErrNotReady, "no pairing delegate"))
			return 0, 0, false
		}
	default:
		ps.failUnexpected("IO Capability Request")
		return 0, 0, false
	}

	ps.localIO = ps.delegate.IOCapability().BREDR()
	if ps.state == StateInitiatorPairingStarted {
		ps.state = StateInitiatorWaitIoCapResponse
		if ps.localIO == gap.IONoInputNoOutput {
			return ps.localIO, authReqGeneralBonding, true
		}
		return ps.localIO, authReqGeneralBondingMITM, true
	}
	ps.state = ps.expectedState()
	return ps.localIO, authRequirements(ps.localIO, ps.peerIO), true
}

// OnIOCapabilityResponse records the peer's IO capability.
func (ps *PairingState) OnIOCapabilityResponse(peerIO gap.IOCapability) {
	switch ps.state {
	case StateFailed:
	case StateIdle:
		ps.initiator = false
		ps.peerIO = peerIO
		ps.state = StateResponderWaitIoCapRequest
	case StateInitiatorWaitIoCapResponse:
		ps.peerIO = peerIO
		ps.state = ps.expectedState()
	default:
		ps.failUnexpected("IO Capability Response")
	}
}

func (ps *PairingState) expectedState() State {
	switch ExpectedEvent(ps.localIO, ps.peerIO) {
	case hci.UserPasskeyRequestEvent:
		return StateWaitUserPasskeyRequest
	case hci.UserPasskeyNotificationEvent:
		return StateWaitUserPasskeyNotification
	}
	return StateWaitUserConfirmationRequest
}

func (ps *PairingState) action() PairingAction {
	if ps.initiator {
		return InitiatorPairingAction(ps.localIO, ps.peerIO)
	}
	return ResponderPairingAction(ps.peerIO, ps.localIO)
}

// OnUserConfirmationRequest asks the user, when the association model needs
// it, to accept value. confirm receives the answer for the controller.
func (ps *PairingState) OnUserConfirmationRequest(value uint32, confirm func(bool)) {
	if ps.state != StateWaitUserConfirmationRequest {
		ps.failUnexpected("User Confirmation Request")
		confirm(false)
		return
	}
	ps.state = StateWaitPairingComplete

	action := ps.action()
	ps.log.Debugf("user confirmation request: %v", action)
	if action == Automatic {
		confirm(true)
		return
	}
	if ps.delegate == nil {
		confirm(false)
		return
	}
	switch action {
	case GetConsent:
		ps.delegate.ConfirmPairing(ps.id, confirm)
	default:
		ps.delegate.DisplayPasskey(ps.id, value, gap.DisplayComparison, confirm)
	}
}

// OnUserPasskeyRequest asks the user for the passkey shown on the peer. A
// negative value passed to respond rejects the request.
func (ps *PairingState) OnUserPasskeyRequest(respond func(passkey int64)) {
	if ps.state != StateWaitUserPasskeyRequest {
		ps.failUnexpected("User Passkey Request")
		respond(-1)
		return
	}
	ps.state = StateWaitPairingComplete
	if ps.delegate == nil {
		respond(-1)
		return
	}
	ps.delegate.RequestPasskey(ps.id, respond)
}

// OnUserPasskeyNotification shows the passkey the user enters on the peer.
func (ps *PairingState) OnUserPasskeyNotification(passkey uint32) {
	if ps.state != StateWaitUserPasskeyNotification {
		ps.failUnexpected("User Passkey Notification")
		return
	}
	ps.state = StateWaitPairingComplete
	if ps.delegate != nil {
		ps.delegate.DisplayPasskey(ps.id, passkey, gap.DisplayPeerEntry, func(bool) {})
	}
}

// OnSimplePairingComplete handles the end of the SSP exchange.
func (ps *PairingState) OnSimplePairingComplete(status error) {
	if ps.state == StateFailed {
		return
	}
	if ps.state != StateWaitPairingComplete {
		ps.failUnexpected("Simple Pairing Complete")
		return
	}
	if status != nil {
		ps.fail(errors.Wrap(status, "simple pairing"))
		return
	}
	ps.state = StateWaitLinkKey
}

// OnLinkKeyNotification checks the new key against the negotiated
// requirements before it is stored and used.
func (ps *PairingState) OnLinkKeyNotification(key [16]byte, keyType gap.LinkKeyType) {
	if ps.state == StateFailed {
		return
	}
	if ps.state != StateWaitLinkKey {
		ps.failUnexpected("Link Key Notification")
		return
	}

	sec := gap.SecurityPropertiesForLinkKey(keyType)
	if keyType.Legacy() || sec.Level == gap.SecurityNone {
		ps.log.Warnf("rejecting link key of type 0x%02X", uint8(keyType))
		ps.fail(errors.Wrapf(gap.ErrInsufficientSecurity, "link key type 0x%02X", uint8(keyType)))
		return
	}
	if !sec.Authenticated() && IsPairingAuthenticated(ps.localIO, ps.peerIO) {
		ps.log.Warnf("unauthenticated link key for %v/%v pairing", ps.localIO, ps.peerIO)
		ps.fail(errors.Wrap(gap.ErrInsufficientSecurity, "unauthenticated link key"))
		return
	}

	ps.security = sec
	ps.link.SetLinkKey(gap.LTK{Security: sec, Key: key})
	if ps.initiator {
		ps.state = StateInitiatorWaitAuthComplete
		return
	}
	ps.state = StateWaitEncryption
	ps.link.StartEncryption()
}

// OnAuthenticationComplete handles the result of Authentication Requested.
func (ps *PairingState) OnAuthenticationComplete(status error) {
	switch {
	case ps.state == StateFailed:
	case ps.state == StateInitiatorPairingStarted && status != nil:
		ps.fail(errors.Wrap(status, "authentication"))
	case ps.state != StateInitiatorWaitAuthComplete:
		ps.failUnexpected("Authentication Complete")
	case status != nil:
		ps.fail(errors.Wrap(status, "authentication"))
	default:
		ps.state = StateWaitEncryption
		ps.link.StartEncryption()
	}
}

// OnEncryptionChange ends pairing with the encryption result.
func (ps *PairingState) OnEncryptionChange(status error, enabled bool) {
	if ps.state != StateWaitEncryption {
		// the peer may change encryption at any time [Vol 2, Part F, 4.4]
		if ps.state != StateIdle && ps.state != StateFailed {
			ps.log.Debugf("ignoring encryption change in state %v", ps.state)
		}
		return
	}
	if status == nil && !enabled {
		status = errors.Wrap(gap.ErrFailed, "encryption disabled")
	}
	ps.state = StateIdle
	ps.initiator = false
	ps.signal(status)
}

// Abandon ends the pairing in progress with err, if any. The link owner calls
// it when the link goes away before pairing finished.
func (ps *PairingState) Abandon(err error) {
	if ps.state == StateIdle || ps.state == StateFailed {
		return
	}
	ps.fail(err)
}

func (ps *PairingState) failUnexpected(event string) {
	if ps.state == StateFailed {
		return
	}
	ps.log.Warnf("unexpected %s in state %v", event, ps.state)
	ps.fail(errors.Wrapf(gap.ErrNotSupported, "%s in state %v", event, ps.state))
}

func (ps *PairingState) fail(err error) {
	ps.state = StateFailed
	ps.signal(err)
}

// signal reports err to the link owner and every caller of this pairing.
// Callbacks are detached first: any of them may drop the PairingState or
// start a new pairing.
func (ps *PairingState) signal(err error) {
	handle := ps.link.Handle()
	status := ps.status
	callbacks := ps.callbacks
	ps.callbacks = nil

	if err != nil {
		ps.log.Infof("pairing failed: %v", err)
	} else {
		ps.log.Infof("pairing complete: %v", ps.security)
	}

	if status != nil {
		status(handle, err)
	}
	for _, cb := range callbacks {
		cb(err)
	}
}
