package hci

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrCommand is a status code reported by the controller [Vol 1, Part F].
type ErrCommand byte

const (
	ErrUnknownCommand               ErrCommand = 0x01
	ErrConnID                       ErrCommand = 0x02
	ErrHardware                     ErrCommand = 0x03
	ErrPageTimeout                  ErrCommand = 0x04
	ErrAuth                         ErrCommand = 0x05
	ErrPinOrKeyMissing              ErrCommand = 0x06
	ErrMemoryExceeded               ErrCommand = 0x07
	ErrConnTimeout                  ErrCommand = 0x08
	ErrConnLimitExceeded            ErrCommand = 0x09
	ErrConnAlreadyExists            ErrCommand = 0x0B
	ErrDisallowed                   ErrCommand = 0x0C
	ErrRejectedLimitedResources     ErrCommand = 0x0D
	ErrRejectedSecurity             ErrCommand = 0x0E
	ErrRejectedBadAddr              ErrCommand = 0x0F
	ErrConnAcceptTimeout            ErrCommand = 0x10
	ErrUnsupportedFeature           ErrCommand = 0x11
	ErrInvalidParameters            ErrCommand = 0x12
	ErrRemoteUser                   ErrCommand = 0x13
	ErrRemoteLowResources           ErrCommand = 0x14
	ErrRemotePowerOff               ErrCommand = 0x15
	ErrLocalHost                    ErrCommand = 0x16
	ErrRepeatedAttempts             ErrCommand = 0x17
	ErrPairingNotAllowed            ErrCommand = 0x18
	ErrUnknownLMPPDU                ErrCommand = 0x19
	ErrUnsupportedRemoteFeature     ErrCommand = 0x1A
	ErrInvalidLMPParameters         ErrCommand = 0x1E
	ErrUnspecified                  ErrCommand = 0x1F
	ErrUnsupportedLMPParameterValue ErrCommand = 0x20
	ErrLMPResponseTimeout           ErrCommand = 0x22
	ErrInstantPassed                ErrCommand = 0x28
	ErrPairingWithUnitKey           ErrCommand = 0x29
	ErrInsufficientSecurity         ErrCommand = 0x2F
	ErrSSPNotSupportedByHost        ErrCommand = 0x37
	ErrHostBusyPairing              ErrCommand = 0x38
	ErrControllerBusy               ErrCommand = 0x3A
	ErrUnacceptableConnParameters   ErrCommand = 0x3B
	ErrAdvertisingTimeout           ErrCommand = 0x3C
	ErrMICFailure                   ErrCommand = 0x3D
	ErrConnFailedToBeEstablished    ErrCommand = 0x3E
)

var errCommandNames = map[ErrCommand]string{
	ErrUnknownCommand:               "unknown HCI command",
	ErrConnID:                       "unknown connection identifier",
	ErrHardware:                     "hardware failure",
	ErrPageTimeout:                  "page timeout",
	ErrAuth:                         "authentication failure",
	ErrPinOrKeyMissing:              "PIN or key missing",
	ErrMemoryExceeded:               "memory capacity exceeded",
	ErrConnTimeout:                  "connection timeout",
	ErrConnLimitExceeded:            "connection limit exceeded",
	ErrConnAlreadyExists:            "connection already exists",
	ErrDisallowed:                   "command disallowed",
	ErrRejectedLimitedResources:     "connection rejected due to limited resources",
	ErrRejectedSecurity:             "connection rejected due to security reasons",
	ErrRejectedBadAddr:              "connection rejected due to unacceptable BD_ADDR",
	ErrConnAcceptTimeout:            "connection accept timeout exceeded",
	ErrUnsupportedFeature:           "unsupported feature or parameter value",
	ErrInvalidParameters:            "invalid HCI command parameters",
	ErrRemoteUser:                   "remote user terminated connection",
	ErrRemoteLowResources:           "remote device terminated connection due to low resources",
	ErrRemotePowerOff:               "remote device terminated connection due to power off",
	ErrLocalHost:                    "connection terminated by local host",
	ErrRepeatedAttempts:             "repeated attempts",
	ErrPairingNotAllowed:            "pairing not allowed",
	ErrUnknownLMPPDU:                "unknown LMP PDU",
	ErrUnsupportedRemoteFeature:     "unsupported remote feature",
	ErrInvalidLMPParameters:         "invalid LMP parameters",
	ErrUnspecified:                  "unspecified error",
	ErrUnsupportedLMPParameterValue: "unsupported LMP parameter value",
	ErrLMPResponseTimeout:           "LMP response timeout",
	ErrInstantPassed:                "instant passed",
	ErrPairingWithUnitKey:           "pairing with unit key not supported",
	ErrInsufficientSecurity:         "insufficient security",
	ErrSSPNotSupportedByHost:        "secure simple pairing not supported by host",
	ErrHostBusyPairing:              "host busy - pairing",
	ErrControllerBusy:               "controller busy",
	ErrUnacceptableConnParameters:   "unacceptable connection parameters",
	ErrAdvertisingTimeout:           "advertising timeout",
	ErrMICFailure:                   "connection terminated due to MIC failure",
	ErrConnFailedToBeEstablished:    "connection failed to be established",
}

func (e ErrCommand) Error() string {
	if s, ok := errCommandNames[e]; ok {
		return s
	}
	return fmt.Sprintf("hci status 0x%02X", byte(e))
}

// IsStatus reports whether the root cause of err is the controller status s.
func IsStatus(err error, s ErrCommand) bool {
	if err == nil {
		return false
	}
	ec, ok := errors.Cause(err).(ErrCommand)
	return ok && ec == s
}

// StatusErr converts a status octet into an error, nil for success.
func StatusErr(status uint8) error {
	if status == 0 {
		return nil
	}
	return ErrCommand(status)
}
