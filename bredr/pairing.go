package bredr

import (
	"fmt"

	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
)

// PairingAction is what the local device does for the user during Secure
// Simple Pairing, per Core Spec v5.0 Vol 3, Part C, Table 5.7.
type PairingAction int

const (
	// Automatic: no user interaction (Just Works).
	Automatic PairingAction = iota
	// GetConsent: ask the user to allow pairing.
	GetConsent
	// DisplayPasskey: show the value, the user may confirm.
	DisplayPasskey
	// ComparePasskey: show the value and ask whether it matches the peer's.
	ComparePasskey
	// RequestPasskey: the user types the passkey shown on the peer.
	RequestPasskey
)

func (a PairingAction) String() string {
	switch a {
	case Automatic:
		return "automatic"
	case GetConsent:
		return "get consent"
	case DisplayPasskey:
		return "display passkey"
	case ComparePasskey:
		return "compare passkey"
	case RequestPasskey:
		return "request passkey"
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// InitiatorPairingAction returns the action of the pairing initiator.
func InitiatorPairingAction(initiator, responder gap.IOCapability) PairingAction {
	if initiator == gap.IONoInputNoOutput {
		return Automatic
	}
	if responder == gap.IONoInputNoOutput {
		if initiator == gap.IODisplayYesNo {
			return GetConsent
		}
		return Automatic
	}
	if initiator == gap.IOKeyboardOnly {
		return RequestPasskey
	}
	if responder == gap.IODisplayOnly {
		if initiator == gap.IODisplayYesNo {
			return ComparePasskey
		}
		return Automatic
	}
	return DisplayPasskey
}

// ResponderPairingAction returns the action of the pairing responder.
func ResponderPairingAction(initiator, responder gap.IOCapability) PairingAction {
	if initiator == gap.IONoInputNoOutput && responder == gap.IOKeyboardOnly {
		return GetConsent
	}
	if initiator == gap.IODisplayYesNo && responder == gap.IODisplayYesNo {
		return ComparePasskey
	}
	return InitiatorPairingAction(responder, initiator)
}

// ExpectedEvent returns the user interaction event the controller sends once
// IO capabilities have been exchanged.
func ExpectedEvent(local, remote gap.IOCapability) hci.EventCode {
	switch {
	case local == gap.IONoInputNoOutput || remote == gap.IONoInputNoOutput:
		return hci.UserConfirmationRequestEvent
	case local == gap.IOKeyboardOnly:
		return hci.UserPasskeyRequestEvent
	case remote == gap.IOKeyboardOnly:
		return hci.UserPasskeyNotificationEvent
	}
	return hci.UserConfirmationRequestEvent
}

// IsPairingAuthenticated reports whether the association model for the two
// capabilities protects against MITM.
func IsPairingAuthenticated(local, remote gap.IOCapability) bool {
	switch {
	case local == gap.IONoInputNoOutput || remote == gap.IONoInputNoOutput:
		return false
	case local == gap.IODisplayYesNo && remote == gap.IODisplayYesNo:
		return true
	case local == gap.IOKeyboardOnly || remote == gap.IOKeyboardOnly:
		return true
	}
	return false
}

// Authentication_Requirements of IO Capability Request Reply [Vol 4, Part E, 7.1.29].
const (
	authReqGeneralBonding     uint8 = 0x04
	authReqGeneralBondingMITM uint8 = 0x05
)

func authRequirements(local, remote gap.IOCapability) uint8 {
	if IsPairingAuthenticated(local, remote) {
		return authReqGeneralBondingMITM
	}
	return authReqGeneralBonding
}
