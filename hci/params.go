package hci

import (
	"fmt"

	"github.com/rigado/gap/hci/cmd"
)

const (
	AddressTypePublic           = 0
	AddressTypeRandom           = 1
	FilterPolicyAcceptAll       = 0
	FilterPolicyAcceptWhitelist = 1
	LEScanTypePassive           = 0
	LEScanTypeActive            = 1

	LEScanIntervalMin = 0x0004
	LEScanIntervalMax = 0x4000
	LEScanWindowMin   = 0x0004
	LEScanWindowMax   = 0x4000

	ConnIntervalMin = 0x0006
	ConnIntervalMax = 0x0c80
	ConnLatencyMin  = 0x0000
	ConnLatencyMax  = 0x01f3

	SupervisionTimeoutMin = 0x000a
	SupervisionTimeoutMax = 0x0c80
)

// Scan Enable values [Vol 4, Part E, 7.3.18].
const (
	ScanEnableInquiry uint8 = 0x01
	ScanEnablePage    uint8 = 0x02
)

// General Inquiry Access Code, 0x9E8B33 little endian.
var GIAC = [3]byte{0x33, 0x8B, 0x9E}

// Inquiry Mode values [Vol 4, Part E, 7.3.50].
const (
	InquiryModeStandard = 0x00
	InquiryModeRSSI     = 0x01
	InquiryModeExtended = 0x02
)

// LE feature bits [Vol 6, Part B, 4.6].
const (
	LEFeatureEncryption                     uint64 = 1 << 0
	LEFeatureConnectionParametersRequest    uint64 = 1 << 1
	LEFeatureExtendedRejectIndication       uint64 = 1 << 2
	LEFeaturePeripheralInitiatedFeatureExch uint64 = 1 << 3
	LEFeaturePing                           uint64 = 1 << 4
	LEFeatureDataPacketLengthExtension      uint64 = 1 << 5
	LEFeaturePrivacy                        uint64 = 1 << 6
)

// LMP feature bits [Vol 2, Part C, 3.3].
const (
	LMPFeatureEncryption          uint64 = 1 << 2
	LMPFeatureBREDRNotSupported   uint64 = 1 << 37
	LMPFeatureLESupported         uint64 = 1 << 38
	LMPFeatureExtendedInquiry     uint64 = 1 << 48
	LMPFeatureSecureSimplePairing uint64 = 1 << 51
	LMPFeatureExtendedFeatures    uint64 = 1 << 63

	// Page 1
	LMPFeatureSSPHostSupport uint64 = 1 << 0
	LMPFeatureLEHostSupport  uint64 = 1 << 1
	LMPFeatureSCHostSupport  uint64 = 1 << 3
)

// LEConnectionParameters are the parameters in effect on an LE link.
type LEConnectionParameters struct {
	Interval           uint16 // N * 1.25 msec
	Latency            uint16
	SupervisionTimeout uint16 // N * 10 msec
}

// LEPreferredConnectionParameters are the parameters a device asks for.
type LEPreferredConnectionParameters struct {
	MinInterval        uint16 // N * 1.25 msec
	MaxInterval        uint16 // N * 1.25 msec
	MaxLatency         uint16
	SupervisionTimeout uint16 // N * 10 msec
}

// Validate checks the parameter ranges of [Vol 4, Part E, 7.8.12].
func (p LEPreferredConnectionParameters) Validate() error {
	/* The Supervision_Timeout in milliseconds shall be larger than
	(1 + Conn_Latency) * Conn_Interval_Max * 2, where Conn_Interval_Max is
	given in milliseconds.
	*/
	minStoMs := (1 + float64(p.MaxLatency)) * (float64(p.MaxInterval) * 1.25) * 2
	stoMs := float64(p.SupervisionTimeout) * 10

	switch {
	case p.MaxInterval < ConnIntervalMin || p.MaxInterval > ConnIntervalMax:
		return fmt.Errorf("invalid ConnIntervalMax %v", p.MaxInterval)

	case p.MinInterval < ConnIntervalMin || p.MinInterval > ConnIntervalMax:
		return fmt.Errorf("invalid ConnIntervalMin %v", p.MinInterval)

	case p.MinInterval > p.MaxInterval:
		return fmt.Errorf("ConnIntervalMin %v > ConnIntervalMax %v", p.MinInterval, p.MaxInterval)

	case p.MaxLatency > ConnLatencyMax:
		return fmt.Errorf("invalid ConnLatency %v", p.MaxLatency)

	case p.SupervisionTimeout < SupervisionTimeoutMin || p.SupervisionTimeout > SupervisionTimeoutMax:
		return fmt.Errorf("invalid SupervisionTimeout %v", p.SupervisionTimeout)

	case stoMs <= minStoMs:
		return fmt.Errorf("invalid SupervisionTimeout %v (too small)", p.SupervisionTimeout)
	}
	return nil
}

// Parameters used for connection establishment and the first seconds of a link.
var DefaultInitialConnectionParameters = LEPreferredConnectionParameters{
	MinInterval:        0x0018, // 30 msec
	MaxInterval:        0x0028, // 50 msec
	MaxLatency:         0x0000,
	SupervisionTimeout: 0x002a, // 420 msec
}

// Parameters a central switches to when the peer states no preference.
var DefaultPreferredConnectionParameters = LEPreferredConnectionParameters{
	MinInterval:        0x0050, // 100 msec
	MaxInterval:        0x0064, // 125 msec
	MaxLatency:         0x0000,
	SupervisionTimeout: 0x01f4, // 5 sec
}

// DefaultScanParameters are used for LE discovery.
var DefaultScanParameters = cmd.LESetScanParameters{
	LEScanType:           LEScanTypeActive,
	LEScanInterval:       0x0060, // 60 msec
	LEScanWindow:         0x0030, // 30 msec
	OwnAddressType:       AddressTypePublic,
	ScanningFilterPolicy: FilterPolicyAcceptAll,
}

// ValidateScanParams checks LE Set Scan Parameters [Vol 4, Part E, 7.8.10].
func ValidateScanParams(p cmd.LESetScanParameters) error {
	switch {
	case p.LEScanType != LEScanTypeActive && p.LEScanType != LEScanTypePassive:
		return fmt.Errorf("invalid LEScanType %v", p.LEScanType)

	case p.LEScanInterval < LEScanIntervalMin || p.LEScanInterval > LEScanIntervalMax:
		return fmt.Errorf("invalid LEScanInterval %v", p.LEScanInterval)

	case p.LEScanWindow < LEScanWindowMin || p.LEScanWindow > LEScanWindowMax:
		return fmt.Errorf("invalid LEScanWindow %v", p.LEScanWindow)

	case p.LEScanWindow > p.LEScanInterval:
		return fmt.Errorf("LEScanWindow %v > LEScanInterval %v", p.LEScanWindow, p.LEScanInterval)

	case p.OwnAddressType != AddressTypePublic && p.OwnAddressType != AddressTypeRandom:
		return fmt.Errorf("invalid OwnAddressType %v", p.OwnAddressType)

	case p.ScanningFilterPolicy != FilterPolicyAcceptAll && p.ScanningFilterPolicy != FilterPolicyAcceptWhitelist:
		return fmt.Errorf("invalid ScanningFilterPolicy %v", p.ScanningFilterPolicy)
	}

	return nil
}

// CreateConnection builds LE Create Connection for a peer with the initial parameters.
func CreateConnection(peerType uint8, peer [6]byte, p LEPreferredConnectionParameters) *cmd.LECreateConnection {
	return &cmd.LECreateConnection{
		LEScanInterval:        0x0060, // 0x0004 - 0x4000; N * 0.625 msec
		LEScanWindow:          0x0030, // 0x0004 - 0x4000; N * 0.625 msec
		InitiatorFilterPolicy: FilterPolicyAcceptAll,
		PeerAddressType:       peerType,
		PeerAddress:           peer,
		OwnAddressType:        AddressTypePublic,
		ConnIntervalMin:       p.MinInterval,
		ConnIntervalMax:       p.MaxInterval,
		ConnLatency:           p.MaxLatency,
		SupervisionTimeout:    p.SupervisionTimeout,
	}
}
