package sm

import (
	"fmt"
	"time"
)

// SMP command codes [Vol 3, Part H, 3.3].
const (
	pairingRequest          = 0x01 // Pairing Request LE-U, ACL-U
	pairingResponse         = 0x02 // Pairing Response LE-U, ACL-U
	pairingConfirm          = 0x03 // Pairing Confirm LE-U
	pairingRandom           = 0x04 // Pairing Random LE-U
	pairingFailed           = 0x05 // Pairing Failed LE-U, ACL-U
	encryptionInformation   = 0x06 // Encryption Information LE-U
	masterIdentification    = 0x07 // Master Identification LE-U
	identityInformation     = 0x08 // Identity Information LE-U, ACL-U
	identityAddrInformation = 0x09 // Identity Address Information LE-U, ACL-U
	signingInformation      = 0x0A // Signing Information LE-U, ACL-U
	securityRequest         = 0x0B // Security Request LE-U
	pairingPublicKey        = 0x0C // Pairing Public Key LE-U
	pairingDHKeyCheck       = 0x0D // Pairing DHKey Check LE-U
	pairingKeypress         = 0x0E // Pairing Keypress Notification LE-U

	passkeyIterationCount = 20
	maxPasskey            = 999999
)

// AuthReq bits [Vol 3, Part H, 3.5.1].
const (
	authReqBondMask = byte(0x03)
	authReqBond     = byte(0x01)
	authReqNoBond   = byte(0x00)
	authReqMITM     = byte(0x04)
	authReqSC       = byte(0x08)
	authReqKeypress = byte(0x10)
	authReqCT2      = byte(0x20)
)

// Key distribution bits [Vol 3, Part H, 3.6.1].
const (
	keyDistEnc  = byte(0x01)
	keyDistID   = byte(0x02)
	keyDistSign = byte(0x04)
	keyDistLink = byte(0x08)
)

const (
	maxEncryptionKeySize = 16
	minEncryptionKeySize = 7
)

// Timeout is the SMP transaction timeout [Vol 3, Part H, 3.4].
var Timeout = 30 * time.Second

// Reason is a Pairing Failed reason code [Vol 3, Part H, 3.5.5].
type Reason uint8

const (
	ReasonPasskeyEntryFailed         Reason = 0x01
	ReasonOOBNotAvailable            Reason = 0x02
	ReasonAuthenticationRequirements Reason = 0x03
	ReasonConfirmValueFailed         Reason = 0x04
	ReasonPairingNotSupported        Reason = 0x05
	ReasonEncryptionKeySize          Reason = 0x06
	ReasonCommandNotSupported        Reason = 0x07
	ReasonUnspecified                Reason = 0x08
	ReasonRepeatedAttempts           Reason = 0x09
	ReasonInvalidParameters          Reason = 0x0A
	ReasonDHKeyCheckFailed           Reason = 0x0B
	ReasonNumericComparisonFailed    Reason = 0x0C
)

//Core spec v5.2, Vol 3, Part H, 3.5.5, Table 3.7
var pairingFailedReason = []string{
	"reserved",
	"passkey entry failed",
	"oob not available",
	"authentication requirements",
	"confirm value failed",
	"pairing not supported",
	"encryption key size",
	"command not supported",
	"unspecified reason",
	"repeated attempts",
	"invalid parameters",
	"dhkey check failed",
	"numeric comparison failed",
	"BR/EDR pairing in progress",
	"cross-transport key derivation/generation not allowed",
}

// ErrPairing is a pairing failure, either reported by the peer or sent to it.
type ErrPairing struct {
	Reason Reason
	// Remote is set when the peer sent Pairing Failed.
	Remote bool
}

func (e ErrPairing) Error() string {
	r := fmt.Sprintf("reason 0x%02X", uint8(e.Reason))
	if int(e.Reason) < len(pairingFailedReason) {
		r = pairingFailedReason[e.Reason]
	}
	if e.Remote {
		return "pairing failed by peer: " + r
	}
	return "pairing failed: " + r
}
