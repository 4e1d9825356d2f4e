package evt

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

func (e CommandComplete) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e CommandComplete) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e CommandComplete) ReturnParametersWErr() ([]byte, error) {
	return getBytes(e, 3, -1)
}

// StatusWErr returns the first return parameter, which is the status for every command we send.
func (e CommandComplete) StatusWErr() (uint8, error) {
	return getByte(e, 3, 0xff)
}

func (e CommandStatus) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e CommandStatus) NumHCICommandPacketsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e CommandStatus) CommandOpcodeWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e InquiryComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e InquiryResult) NumResponsesWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

// ValidWErr checks the response count against the parameter length.
func (e InquiryResult) ValidWErr() error {
	return checkResponses(e, InquiryResultSize)
}

func (e InquiryResult) BDADDRWErr(i int) ([6]byte, error) {
	return getAddr(e, 1+i*InquiryResultSize)
}

func (e InquiryResult) PageScanRepetitionModeWErr(i int) (uint8, error) {
	return getByte(e, 1+i*InquiryResultSize+6, 0)
}

func (e InquiryResult) ClassOfDeviceWErr(i int) (uint32, error) {
	return getUint24LE(e, 1+i*InquiryResultSize+9, 0)
}

func (e InquiryResult) ClockOffsetWErr(i int) (uint16, error) {
	return getUint16LE(e, 1+i*InquiryResultSize+12, 0)
}

func (e InquiryResultWithRSSI) NumResponsesWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e InquiryResultWithRSSI) ValidWErr() error {
	return checkResponses(e, InquiryResultWithRSSISize)
}

func (e InquiryResultWithRSSI) BDADDRWErr(i int) ([6]byte, error) {
	return getAddr(e, 1+i*InquiryResultWithRSSISize)
}

func (e InquiryResultWithRSSI) PageScanRepetitionModeWErr(i int) (uint8, error) {
	return getByte(e, 1+i*InquiryResultWithRSSISize+6, 0)
}

func (e InquiryResultWithRSSI) ClassOfDeviceWErr(i int) (uint32, error) {
	return getUint24LE(e, 1+i*InquiryResultWithRSSISize+8, 0)
}

func (e InquiryResultWithRSSI) ClockOffsetWErr(i int) (uint16, error) {
	return getUint16LE(e, 1+i*InquiryResultWithRSSISize+11, 0)
}

func (e InquiryResultWithRSSI) RSSIWErr(i int) (int8, error) {
	v, err := getByte(e, 1+i*InquiryResultWithRSSISize+13, 0x7f)
	return int8(v), err
}

func (e ExtendedInquiryResult) NumResponsesWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

// ValidWErr enforces the single fixed-size response the controller is required to send.
func (e ExtendedInquiryResult) ValidWErr() error {
	n, err := e.NumResponsesWErr()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("extended inquiry result with %d responses", n)
	}
	if len(e) != 1+ExtendedInquiryResultSize {
		return fmt.Errorf("extended inquiry result length %d, want %d", len(e), 1+ExtendedInquiryResultSize)
	}
	return nil
}

func (e ExtendedInquiryResult) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 1)
}

func (e ExtendedInquiryResult) PageScanRepetitionModeWErr() (uint8, error) {
	return getByte(e, 7, 0)
}

func (e ExtendedInquiryResult) ClassOfDeviceWErr() (uint32, error) {
	return getUint24LE(e, 9, 0)
}

func (e ExtendedInquiryResult) ClockOffsetWErr() (uint16, error) {
	return getUint16LE(e, 12, 0)
}

func (e ExtendedInquiryResult) RSSIWErr() (int8, error) {
	v, err := getByte(e, 14, 0x7f)
	return int8(v), err
}

func (e ExtendedInquiryResult) ExtendedInquiryResponseWErr() ([]byte, error) {
	return getBytes(e, 15, EIRDataSize)
}

func (e ConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e ConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e ConnectionComplete) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 3)
}

func (e ConnectionComplete) LinkTypeWErr() (uint8, error) {
	return getByte(e, 9, 0xff)
}

func (e ConnectionComplete) EncryptionEnabledWErr() (uint8, error) {
	return getByte(e, 10, 0)
}

func (e ConnectionRequest) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e ConnectionRequest) ClassOfDeviceWErr() (uint32, error) {
	return getUint24LE(e, 6, 0)
}

func (e ConnectionRequest) LinkTypeWErr() (uint8, error) {
	return getByte(e, 9, 0xff)
}

func (e DisconnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e DisconnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e DisconnectionComplete) ReasonWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e AuthenticationComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e AuthenticationComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e RemoteNameRequestComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e RemoteNameRequestComplete) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 1)
}

// RemoteNameWErr returns the name up to the first NUL.
func (e RemoteNameRequestComplete) RemoteNameWErr() (string, error) {
	b, err := getBytes(e, 7, -1)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}

func (e EncryptionChange) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e EncryptionChange) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e EncryptionChange) EncryptionEnabledWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e EncryptionKeyRefreshComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e EncryptionKeyRefreshComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e ReadRemoteSupportedFeaturesComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e ReadRemoteSupportedFeaturesComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e ReadRemoteSupportedFeaturesComplete) LMPFeaturesWErr() (uint64, error) {
	return getUint64LE(e, 3, 0)
}

func (e ReadRemoteVersionInformationComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e ReadRemoteVersionInformationComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e ReadRemoteVersionInformationComplete) VersionWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e ReadRemoteVersionInformationComplete) ManufacturerNameWErr() (uint16, error) {
	return getUint16LE(e, 4, 0)
}

func (e ReadRemoteVersionInformationComplete) SubversionWErr() (uint16, error) {
	return getUint16LE(e, 6, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e ReadRemoteExtendedFeaturesComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e ReadRemoteExtendedFeaturesComplete) PageNumberWErr() (uint8, error) {
	return getByte(e, 3, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) MaxPageNumberWErr() (uint8, error) {
	return getByte(e, 4, 0)
}

func (e ReadRemoteExtendedFeaturesComplete) ExtendedLMPFeaturesWErr() (uint64, error) {
	return getUint64LE(e, 5, 0)
}

// Per-spec [Vol 2, Part E, 7.7.19], the packet structure should be:
//
//     NumOfHandle, HandleA, HandleB, CompPktNumA, CompPktNumB
//
// But we got the actual packet from BCM20702A1 with the following structure instead.
//
//     NumOfHandle, HandleA, CompPktNumA, HandleB, CompPktNumB
//              02,   40 00,       01 00,   41 00,       01 00

func (e NumberOfCompletedPackets) NumberOfHandlesWErr() (uint8, error) {
	return getByte(e, 0, 0)
}

func (e NumberOfCompletedPackets) ConnectionHandleWErr(i int) (uint16, error) {
	si := 1 + (i * 4)
	return getUint16LE(e, si, 0xffff)
}

func (e NumberOfCompletedPackets) HCNumOfCompletedPacketsWErr(i int) (uint16, error) {
	si := 1 + (i * 4) + 2
	return getUint16LE(e, si, 0)
}

func (e LinkKeyRequest) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e LinkKeyNotification) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e LinkKeyNotification) LinkKeyWErr() ([16]byte, error) {
	out := [16]byte{}
	b, err := getBytes(e, 6, 16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (e LinkKeyNotification) KeyTypeWErr() (uint8, error) {
	return getByte(e, 22, 0xff)
}

func (e IOCapabilityRequest) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e IOCapabilityResponse) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e IOCapabilityResponse) IOCapabilityWErr() (uint8, error) {
	return getByte(e, 6, 0xff)
}

func (e IOCapabilityResponse) OOBDataPresentWErr() (uint8, error) {
	return getByte(e, 7, 0)
}

func (e IOCapabilityResponse) AuthenticationRequirementsWErr() (uint8, error) {
	return getByte(e, 8, 0)
}

func (e UserConfirmationRequest) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e UserConfirmationRequest) NumericValueWErr() (uint32, error) {
	return getUint32LE(e, 6, 0)
}

func (e UserPasskeyRequest) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e UserPasskeyNotification) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 0)
}

func (e UserPasskeyNotification) PasskeyWErr() (uint32, error) {
	return getUint32LE(e, 6, 0)
}

func (e SimplePairingComplete) StatusWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e SimplePairingComplete) BDADDRWErr() ([6]byte, error) {
	return getAddr(e, 1)
}

func (e LEConnectionComplete) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e LEConnectionComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0xff)
}

func (e LEConnectionComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e LEConnectionComplete) RoleWErr() (uint8, error) {
	return getByte(e, 4, 0xff)
}

func (e LEConnectionComplete) PeerAddressTypeWErr() (uint8, error) {
	return getByte(e, 5, 0xff)
}

func (e LEConnectionComplete) PeerAddressWErr() ([6]byte, error) {
	return getAddr(e, 6)
}

func (e LEConnectionComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 12, 0)
}

func (e LEConnectionComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 14, 0)
}

func (e LEConnectionComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 16, 0)
}

func (e LEConnectionComplete) MasterClockAccuracyWErr() (uint8, error) {
	return getByte(e, 18, 0)
}

func (e LEAdvertisingReport) SubeventCodeWErr() (uint8, error) {
	return getByte(e, 0, 0xff)
}

func (e LEAdvertisingReport) NumReportsWErr() (uint8, error) {
	return getByte(e, 1, 0)
}

func (e LEAdvertisingReport) EventTypeWErr(i int) (uint8, error) {
	return getByte(e, 2+i, 0xff)
}

func (e LEAdvertisingReport) AddressTypeWErr(i int) (uint8, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return 0, err
	}

	si := 2 + int(nr) + i
	return getByte(e, si, 0xff)
}

func (e LEAdvertisingReport) AddressWErr(i int) ([6]byte, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return [6]byte{}, err
	}

	return getAddr(e, 2+int(nr)*2+(6*i))
}

func (e LEAdvertisingReport) LengthDataWErr(i int) (uint8, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return 0, err
	}

	si := 2 + int(nr)*8 + i
	return getByte(e, si, 0)
}

func (e LEAdvertisingReport) DataWErr(i int) ([]byte, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return nil, err
	}

	l := 0
	for j := 0; j < i; j++ {
		ll, err := e.LengthDataWErr(j)
		if err != nil {
			return nil, err
		}
		l += int(ll)
	}

	ll, err := e.LengthDataWErr(i)
	if err != nil {
		return nil, err
	}
	si := 2 + int(nr)*9 + l
	if ll == 0 {
		return []byte{}, nil
	}
	return getBytes(e, si, int(ll))
}

func (e LEAdvertisingReport) RSSIWErr(i int) (int8, error) {
	nr, err := e.NumReportsWErr()
	if err != nil {
		return 0, err
	}

	l := 0
	for j := 0; j < int(nr); j++ {
		ll, err := e.LengthDataWErr(j)
		if err != nil {
			return 0, err
		}
		l += int(ll)
	}

	si := 2 + int(nr)*9 + l + i
	rssi, err := getByte(e, si, 0)
	return int8(rssi), err
}

func (e LEConnectionUpdateComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0xff)
}

func (e LEConnectionUpdateComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e LEConnectionUpdateComplete) ConnIntervalWErr() (uint16, error) {
	return getUint16LE(e, 4, 0)
}

func (e LEConnectionUpdateComplete) ConnLatencyWErr() (uint16, error) {
	return getUint16LE(e, 6, 0)
}

func (e LEConnectionUpdateComplete) SupervisionTimeoutWErr() (uint16, error) {
	return getUint16LE(e, 8, 0)
}

func (e LEReadRemoteFeaturesComplete) StatusWErr() (uint8, error) {
	return getByte(e, 1, 0xff)
}

func (e LEReadRemoteFeaturesComplete) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 2, 0xffff)
}

func (e LEReadRemoteFeaturesComplete) LEFeaturesWErr() (uint64, error) {
	return getUint64LE(e, 4, 0)
}

func (e LELongTermKeyRequest) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e LELongTermKeyRequest) RandomNumberWErr() (uint64, error) {
	return getUint64LE(e, 3, 0)
}

func (e LELongTermKeyRequest) EncryptionDiversifierWErr() (uint16, error) {
	return getUint16LE(e, 11, 0)
}

func (e LERemoteConnectionParameterRequest) ConnectionHandleWErr() (uint16, error) {
	return getUint16LE(e, 1, 0xffff)
}

func (e LERemoteConnectionParameterRequest) IntervalMinWErr() (uint16, error) {
	return getUint16LE(e, 3, 0)
}

func (e LERemoteConnectionParameterRequest) IntervalMaxWErr() (uint16, error) {
	return getUint16LE(e, 5, 0)
}

func (e LERemoteConnectionParameterRequest) LatencyWErr() (uint16, error) {
	return getUint16LE(e, 7, 0)
}

func (e LERemoteConnectionParameterRequest) TimeoutWErr() (uint16, error) {
	return getUint16LE(e, 9, 0)
}

func checkResponses(b []byte, size int) error {
	n, err := getByte(b, 0, 0)
	if err != nil {
		return err
	}
	if want := 1 + int(n)*size; len(b) != want {
		return fmt.Errorf("%d responses need %d bytes, got %d", n, want, len(b))
	}
	return nil
}

//get or default
func getByte(b []byte, i int, def byte) (byte, error) {
	bb, err := getBytes(b, i, 1)
	if err != nil {
		return def, err
	}
	return bb[0], nil
}

//get or default
func getUint16LE(b []byte, i int, def uint16) (uint16, error) {
	bb, err := getBytes(b, i, 2)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint16(bb), nil
}

func getUint24LE(b []byte, i int, def uint32) (uint32, error) {
	bb, err := getBytes(b, i, 3)
	if err != nil {
		return def, err
	}
	return uint32(bb[0]) | uint32(bb[1])<<8 | uint32(bb[2])<<16, nil
}

func getUint32LE(b []byte, i int, def uint32) (uint32, error) {
	bb, err := getBytes(b, i, 4)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint32(bb), nil
}

func getUint64LE(b []byte, i int, def uint64) (uint64, error) {
	bb, err := getBytes(b, i, 8)
	if err != nil {
		return def, err
	}
	return binary.LittleEndian.Uint64(bb), nil
}

func getAddr(b []byte, i int) ([6]byte, error) {
	out := [6]byte{}
	bb, err := getBytes(b, i, 6)
	if err != nil {
		return out, err
	}
	copy(out[:], bb)
	return out, nil
}

func getBytes(bytes []byte, start int, count int) ([]byte, error) {
	if bytes == nil || start >= len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	if count < 0 {
		return bytes[start:], nil
	}

	end := start + count
	//end is non-inclusive
	if end > len(bytes) {
		return nil, fmt.Errorf("index error")
	}

	return bytes[start:end], nil
}
