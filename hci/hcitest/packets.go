package hcitest

import (
	"encoding/binary"

	"github.com/rigado/gap/hci/evt"
)

// Event builds an event packet.
func Event(code byte, params ...byte) []byte {
	return append([]byte{0x04, code, byte(len(params))}, params...)
}

// LEMeta builds an LE Meta event packet.
func LEMeta(sub byte, params ...byte) []byte {
	return Event(evt.LEMetaCode, append([]byte{sub}, params...)...)
}

// CommandComplete builds a Command Complete packet allowing one more command.
func CommandComplete(opcode int, rp ...byte) []byte {
	return Event(evt.CommandCompleteCode, append([]byte{0x01, byte(opcode), byte(opcode >> 8)}, rp...)...)
}

// CommandStatus builds a Command Status packet allowing one more command.
func CommandStatus(opcode int, status byte) []byte {
	return Event(evt.CommandStatusCode, status, 0x01, byte(opcode), byte(opcode>>8))
}

// ACL builds an inbound ACL data packet.
func ACL(handle uint16, pbf uint8, data []byte) []byte {
	b := []byte{0x02, byte(handle), byte(handle>>8)&0x0f | pbf<<4, 0, 0}
	binary.LittleEndian.PutUint16(b[3:], uint16(len(data)))
	return append(b, data...)
}

func le16(v uint16) []byte { return []byte{byte(v), byte(v >> 8)} }

// ConnectionComplete builds a BR/EDR ACL Connection Complete.
func ConnectionComplete(status byte, handle uint16, addr [6]byte) []byte {
	p := append([]byte{status}, le16(handle)...)
	p = append(p, addr[:]...)
	return Event(evt.ConnectionCompleteCode, append(p, 0x01, 0x00)...)
}

// ConnectionRequest builds an inbound ACL Connection Request.
func ConnectionRequest(addr [6]byte, cod uint32) []byte {
	p := append(addr[:0:0], addr[:]...)
	p = append(p, byte(cod), byte(cod>>8), byte(cod>>16), 0x01)
	return Event(evt.ConnectionRequestCode, p...)
}

// DisconnectionComplete builds a Disconnection Complete.
func DisconnectionComplete(handle uint16, reason byte) []byte {
	return Event(evt.DisconnectionCompleteCode, append(append([]byte{0x00}, le16(handle)...), reason)...)
}

// EncryptionChange builds an Encryption Change.
func EncryptionChange(status byte, handle uint16, enabled bool) []byte {
	on := byte(0)
	if enabled {
		on = 1
	}
	return Event(evt.EncryptionChangeCode, append(append([]byte{status}, le16(handle)...), on)...)
}

// AuthenticationComplete builds an Authentication Complete.
func AuthenticationComplete(status byte, handle uint16) []byte {
	return Event(evt.AuthenticationCompleteCode, append([]byte{status}, le16(handle)...)...)
}

// InquiryComplete builds an Inquiry Complete.
func InquiryComplete(status byte) []byte {
	return Event(evt.InquiryCompleteCode, status)
}

// InquiryResponse describes one device found by an inquiry.
type InquiryResponse struct {
	Addr        [6]byte
	PSRM        uint8
	Class       uint32
	ClockOffset uint16
	RSSI        int8
	EIR         []byte
}

// InquiryResult builds a standard Inquiry Result.
func InquiryResult(rs ...InquiryResponse) []byte {
	p := []byte{byte(len(rs))}
	for _, r := range rs {
		p = append(p, r.Addr[:]...)
		p = append(p, r.PSRM, 0, 0, byte(r.Class), byte(r.Class>>8), byte(r.Class>>16))
		p = append(p, le16(r.ClockOffset)...)
	}
	return Event(evt.InquiryResultCode, p...)
}

// InquiryResultWithRSSI builds an Inquiry Result with RSSI.
func InquiryResultWithRSSI(rs ...InquiryResponse) []byte {
	p := []byte{byte(len(rs))}
	for _, r := range rs {
		p = append(p, r.Addr[:]...)
		p = append(p, r.PSRM, 0, byte(r.Class), byte(r.Class>>8), byte(r.Class>>16))
		p = append(p, le16(r.ClockOffset)...)
		p = append(p, byte(r.RSSI))
	}
	return Event(evt.InquiryResultWithRSSICode, p...)
}

// ExtendedInquiryResult builds an Extended Inquiry Result.
func ExtendedInquiryResult(r InquiryResponse) []byte {
	p := []byte{1}
	p = append(p, r.Addr[:]...)
	p = append(p, r.PSRM, 0, byte(r.Class), byte(r.Class>>8), byte(r.Class>>16))
	p = append(p, le16(r.ClockOffset)...)
	p = append(p, byte(r.RSSI))
	eir := make([]byte, evt.EIRDataSize)
	copy(eir, r.EIR)
	return Event(evt.ExtendedInquiryResultCode, append(p, eir...)...)
}

// RemoteNameRequestComplete builds a Remote Name Request Complete.
func RemoteNameRequestComplete(status byte, addr [6]byte, name string) []byte {
	p := append([]byte{status}, addr[:]...)
	n := make([]byte, evt.RemoteNameSize)
	copy(n, name)
	return Event(evt.RemoteNameRequestCompleteCode, append(p, n...)...)
}

// ReadRemoteVersionInformationComplete builds the event for handle.
func ReadRemoteVersionInformationComplete(status byte, handle uint16, version byte, manufacturer, subversion uint16) []byte {
	p := append([]byte{status}, le16(handle)...)
	p = append(p, version)
	p = append(p, le16(manufacturer)...)
	p = append(p, le16(subversion)...)
	return Event(evt.ReadRemoteVersionInformationCompleteCode, p...)
}

// ReadRemoteSupportedFeaturesComplete builds the event for handle.
func ReadRemoteSupportedFeaturesComplete(status byte, handle uint16, features uint64) []byte {
	p := append([]byte{status}, le16(handle)...)
	p = binary.LittleEndian.AppendUint64(p, features)
	return Event(evt.ReadRemoteSupportedFeaturesCompleteCode, p...)
}

// ReadRemoteExtendedFeaturesComplete builds the event for handle.
func ReadRemoteExtendedFeaturesComplete(status byte, handle uint16, page, maxPage byte, features uint64) []byte {
	p := append([]byte{status}, le16(handle)...)
	p = append(p, page, maxPage)
	p = binary.LittleEndian.AppendUint64(p, features)
	return Event(evt.ReadRemoteExtendedFeaturesCompleteCode, p...)
}

// LinkKeyRequest builds a Link Key Request.
func LinkKeyRequest(addr [6]byte) []byte {
	return Event(evt.LinkKeyRequestCode, addr[:]...)
}

// LinkKeyNotification builds a Link Key Notification.
func LinkKeyNotification(addr [6]byte, key [16]byte, keyType byte) []byte {
	p := append(addr[:0:0], addr[:]...)
	p = append(p, key[:]...)
	return Event(evt.LinkKeyNotificationCode, append(p, keyType)...)
}

// IOCapabilityRequest builds an IO Capability Request.
func IOCapabilityRequest(addr [6]byte) []byte {
	return Event(evt.IOCapabilityRequestCode, addr[:]...)
}

// IOCapabilityResponse builds an IO Capability Response.
func IOCapabilityResponse(addr [6]byte, iocap, authReq byte) []byte {
	p := append(addr[:0:0], addr[:]...)
	return Event(evt.IOCapabilityResponseCode, append(p, iocap, 0x00, authReq)...)
}

// UserConfirmationRequest builds a User Confirmation Request.
func UserConfirmationRequest(addr [6]byte, value uint32) []byte {
	p := append(addr[:0:0], addr[:]...)
	return Event(evt.UserConfirmationRequestCode, binary.LittleEndian.AppendUint32(p, value)...)
}

// UserPasskeyRequest builds a User Passkey Request.
func UserPasskeyRequest(addr [6]byte) []byte {
	return Event(evt.UserPasskeyRequestCode, addr[:]...)
}

// UserPasskeyNotification builds a User Passkey Notification.
func UserPasskeyNotification(addr [6]byte, passkey uint32) []byte {
	p := append(addr[:0:0], addr[:]...)
	return Event(evt.UserPasskeyNotificationCode, binary.LittleEndian.AppendUint32(p, passkey)...)
}

// SimplePairingComplete builds a Simple Pairing Complete.
func SimplePairingComplete(status byte, addr [6]byte) []byte {
	return Event(evt.SimplePairingCompleteCode, append([]byte{status}, addr[:]...)...)
}

// LEConnectionComplete builds an LE Connection Complete.
func LEConnectionComplete(status byte, handle uint16, role byte, peerType byte, peer [6]byte, interval, latency, timeout uint16) []byte {
	p := append([]byte{status}, le16(handle)...)
	p = append(p, role, peerType)
	p = append(p, peer[:]...)
	p = append(p, le16(interval)...)
	p = append(p, le16(latency)...)
	p = append(p, le16(timeout)...)
	return LEMeta(evt.LEConnectionCompleteSubCode, append(p, 0x00)...)
}

// LEConnectionUpdateComplete builds an LE Connection Update Complete.
func LEConnectionUpdateComplete(status byte, handle uint16, interval, latency, timeout uint16) []byte {
	p := append([]byte{status}, le16(handle)...)
	p = append(p, le16(interval)...)
	p = append(p, le16(latency)...)
	p = append(p, le16(timeout)...)
	return LEMeta(evt.LEConnectionUpdateCompleteSubCode, p...)
}

// LEReadRemoteFeaturesComplete builds an LE Read Remote Features Complete.
func LEReadRemoteFeaturesComplete(status byte, handle uint16, features uint64) []byte {
	p := append([]byte{status}, le16(handle)...)
	return LEMeta(evt.LEReadRemoteFeaturesCompleteSubCode, binary.LittleEndian.AppendUint64(p, features)...)
}

// LELongTermKeyRequest builds an LE Long Term Key Request.
func LELongTermKeyRequest(handle uint16, rand uint64, ediv uint16) []byte {
	p := le16(handle)
	p = binary.LittleEndian.AppendUint64(p, rand)
	return LEMeta(evt.LELongTermKeyRequestSubCode, append(p, le16(ediv)...)...)
}

// LERemoteConnectionParameterRequest builds an LE Remote Connection Parameter Request.
func LERemoteConnectionParameterRequest(handle, minInterval, maxInterval, latency, timeout uint16) []byte {
	p := le16(handle)
	for _, v := range []uint16{minInterval, maxInterval, latency, timeout} {
		p = append(p, le16(v)...)
	}
	return LEMeta(evt.LERemoteConnectionParameterRequestSubCode, p...)
}

// LEAdvertisingReport builds a single-report LE Advertising Report.
func LEAdvertisingReport(eventType, addrType byte, addr [6]byte, data []byte, rssi int8) []byte {
	p := []byte{1, eventType, addrType}
	p = append(p, addr[:]...)
	p = append(p, byte(len(data)))
	p = append(p, data...)
	return LEMeta(evt.LEAdvertisingReportSubCode, append(p, byte(rssi))...)
}

// NumberOfCompletedPackets builds the flow control event for one handle.
func NumberOfCompletedPackets(handle uint16, n uint16) []byte {
	return Event(evt.NumberOfCompletedPacketsCode, append(append([]byte{1}, le16(handle)...), le16(n)...)...)
}
