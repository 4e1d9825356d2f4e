package cmd

// Inquiry implements HCI command (0x01|0x0001) [Vol 4, Part E, 7.1.1].
type Inquiry struct {
	LAP           [3]byte
	InquiryLength uint8
	NumResponses  uint8
}

func (c *Inquiry) String() string {
	return "Inquiry (0x01|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *Inquiry) OpCode() int { return 0x01<<10 | 0x0001 }

// Len returns the length of the command.
func (c *Inquiry) Len() int { return 5 }

// Marshal serializes the command parameters into binary form.
func (c *Inquiry) Marshal(b []byte) error {
	return marshal(c, b)
}

// InquiryOpCode is the opcode of Inquiry.
const InquiryOpCode = 0x01<<10 | 0x0001

// InquiryCancel implements HCI command (0x01|0x0002) [Vol 4, Part E, 7.1.2].
type InquiryCancel struct{}

func (c *InquiryCancel) String() string {
	return "InquiryCancel (0x01|0x0002)"
}

// OpCode returns the opcode of the command.
func (c *InquiryCancel) OpCode() int { return 0x01<<10 | 0x0002 }

// Len returns the length of the command.
func (c *InquiryCancel) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *InquiryCancel) Marshal(b []byte) error { return nil }

// InquiryCancelOpCode is the opcode of InquiryCancel.
const InquiryCancelOpCode = 0x01<<10 | 0x0002

// CreateConnection implements HCI command (0x01|0x0005) [Vol 4, Part E, 7.1.5].
type CreateConnection struct {
	BDADDR                 [6]byte
	PacketType             uint16
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
	AllowRoleSwitch        uint8
}

func (c *CreateConnection) String() string {
	return "CreateConnection (0x01|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *CreateConnection) OpCode() int { return 0x01<<10 | 0x0005 }

// Len returns the length of the command.
func (c *CreateConnection) Len() int { return 13 }

// Marshal serializes the command parameters into binary form.
func (c *CreateConnection) Marshal(b []byte) error {
	return marshal(c, b)
}

// CreateConnectionOpCode is the opcode of CreateConnection.
const CreateConnectionOpCode = 0x01<<10 | 0x0005

// Disconnect implements HCI command (0x01|0x0006) [Vol 4, Part E, 7.1.6].
type Disconnect struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *Disconnect) String() string {
	return "Disconnect (0x01|0x0006)"
}

// OpCode returns the opcode of the command.
func (c *Disconnect) OpCode() int { return 0x01<<10 | 0x0006 }

// Len returns the length of the command.
func (c *Disconnect) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *Disconnect) Marshal(b []byte) error {
	return marshal(c, b)
}

// DisconnectOpCode is the opcode of Disconnect.
const DisconnectOpCode = 0x01<<10 | 0x0006

// CreateConnectionCancel implements HCI command (0x01|0x0008) [Vol 4, Part E, 7.1.7].
type CreateConnectionCancel struct {
	BDADDR [6]byte
}

func (c *CreateConnectionCancel) String() string {
	return "CreateConnectionCancel (0x01|0x0008)"
}

// OpCode returns the opcode of the command.
func (c *CreateConnectionCancel) OpCode() int { return 0x01<<10 | 0x0008 }

// Len returns the length of the command.
func (c *CreateConnectionCancel) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *CreateConnectionCancel) Marshal(b []byte) error {
	return marshal(c, b)
}

// CreateConnectionCancelOpCode is the opcode of CreateConnectionCancel.
const CreateConnectionCancelOpCode = 0x01<<10 | 0x0008

// AcceptConnectionRequest implements HCI command (0x01|0x0009) [Vol 4, Part E, 7.1.8].
type AcceptConnectionRequest struct {
	BDADDR [6]byte
	Role   uint8
}

func (c *AcceptConnectionRequest) String() string {
	return "AcceptConnectionRequest (0x01|0x0009)"
}

// OpCode returns the opcode of the command.
func (c *AcceptConnectionRequest) OpCode() int { return 0x01<<10 | 0x0009 }

// Len returns the length of the command.
func (c *AcceptConnectionRequest) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *AcceptConnectionRequest) Marshal(b []byte) error {
	return marshal(c, b)
}

// AcceptConnectionRequestOpCode is the opcode of AcceptConnectionRequest.
const AcceptConnectionRequestOpCode = 0x01<<10 | 0x0009

// RejectConnectionRequest implements HCI command (0x01|0x000A) [Vol 4, Part E, 7.1.9].
type RejectConnectionRequest struct {
	BDADDR [6]byte
	Reason uint8
}

func (c *RejectConnectionRequest) String() string {
	return "RejectConnectionRequest (0x01|0x000A)"
}

// OpCode returns the opcode of the command.
func (c *RejectConnectionRequest) OpCode() int { return 0x01<<10 | 0x000A }

// Len returns the length of the command.
func (c *RejectConnectionRequest) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *RejectConnectionRequest) Marshal(b []byte) error {
	return marshal(c, b)
}

// RejectConnectionRequestOpCode is the opcode of RejectConnectionRequest.
const RejectConnectionRequestOpCode = 0x01<<10 | 0x000A

// LinkKeyRequestReply implements HCI command (0x01|0x000B) [Vol 4, Part E, 7.1.10].
type LinkKeyRequestReply struct {
	BDADDR  [6]byte
	LinkKey [16]byte
}

func (c *LinkKeyRequestReply) String() string {
	return "LinkKeyRequestReply (0x01|0x000B)"
}

// OpCode returns the opcode of the command.
func (c *LinkKeyRequestReply) OpCode() int { return 0x01<<10 | 0x000B }

// Len returns the length of the command.
func (c *LinkKeyRequestReply) Len() int { return 22 }

// Marshal serializes the command parameters into binary form.
func (c *LinkKeyRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LinkKeyRequestReplyOpCode is the opcode of LinkKeyRequestReply.
const LinkKeyRequestReplyOpCode = 0x01<<10 | 0x000B

// LinkKeyRequestNegativeReply implements HCI command (0x01|0x000C) [Vol 4, Part E, 7.1.11].
type LinkKeyRequestNegativeReply struct {
	BDADDR [6]byte
}

func (c *LinkKeyRequestNegativeReply) String() string {
	return "LinkKeyRequestNegativeReply (0x01|0x000C)"
}

// OpCode returns the opcode of the command.
func (c *LinkKeyRequestNegativeReply) OpCode() int { return 0x01<<10 | 0x000C }

// Len returns the length of the command.
func (c *LinkKeyRequestNegativeReply) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *LinkKeyRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LinkKeyRequestNegativeReplyOpCode is the opcode of LinkKeyRequestNegativeReply.
const LinkKeyRequestNegativeReplyOpCode = 0x01<<10 | 0x000C

// AuthenticationRequested implements HCI command (0x01|0x0011) [Vol 4, Part E, 7.1.15].
type AuthenticationRequested struct {
	ConnectionHandle uint16
}

func (c *AuthenticationRequested) String() string {
	return "AuthenticationRequested (0x01|0x0011)"
}

// OpCode returns the opcode of the command.
func (c *AuthenticationRequested) OpCode() int { return 0x01<<10 | 0x0011 }

// Len returns the length of the command.
func (c *AuthenticationRequested) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *AuthenticationRequested) Marshal(b []byte) error {
	return marshal(c, b)
}

// AuthenticationRequestedOpCode is the opcode of AuthenticationRequested.
const AuthenticationRequestedOpCode = 0x01<<10 | 0x0011

// SetConnectionEncryption implements HCI command (0x01|0x0013) [Vol 4, Part E, 7.1.16].
type SetConnectionEncryption struct {
	ConnectionHandle uint16
	EncryptionEnable uint8
}

func (c *SetConnectionEncryption) String() string {
	return "SetConnectionEncryption (0x01|0x0013)"
}

// OpCode returns the opcode of the command.
func (c *SetConnectionEncryption) OpCode() int { return 0x01<<10 | 0x0013 }

// Len returns the length of the command.
func (c *SetConnectionEncryption) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *SetConnectionEncryption) Marshal(b []byte) error {
	return marshal(c, b)
}

// SetConnectionEncryptionOpCode is the opcode of SetConnectionEncryption.
const SetConnectionEncryptionOpCode = 0x01<<10 | 0x0013

// RemoteNameRequest implements HCI command (0x01|0x0019) [Vol 4, Part E, 7.1.19].
type RemoteNameRequest struct {
	BDADDR                 [6]byte
	PageScanRepetitionMode uint8
	Reserved               uint8
	ClockOffset            uint16
}

func (c *RemoteNameRequest) String() string {
	return "RemoteNameRequest (0x01|0x0019)"
}

// OpCode returns the opcode of the command.
func (c *RemoteNameRequest) OpCode() int { return 0x01<<10 | 0x0019 }

// Len returns the length of the command.
func (c *RemoteNameRequest) Len() int { return 10 }

// Marshal serializes the command parameters into binary form.
func (c *RemoteNameRequest) Marshal(b []byte) error {
	return marshal(c, b)
}

// RemoteNameRequestOpCode is the opcode of RemoteNameRequest.
const RemoteNameRequestOpCode = 0x01<<10 | 0x0019

// ReadRemoteSupportedFeatures implements HCI command (0x01|0x001B) [Vol 4, Part E, 7.1.21].
type ReadRemoteSupportedFeatures struct {
	ConnectionHandle uint16
}

func (c *ReadRemoteSupportedFeatures) String() string {
	return "ReadRemoteSupportedFeatures (0x01|0x001B)"
}

// OpCode returns the opcode of the command.
func (c *ReadRemoteSupportedFeatures) OpCode() int { return 0x01<<10 | 0x001B }

// Len returns the length of the command.
func (c *ReadRemoteSupportedFeatures) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *ReadRemoteSupportedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadRemoteSupportedFeaturesOpCode is the opcode of ReadRemoteSupportedFeatures.
const ReadRemoteSupportedFeaturesOpCode = 0x01<<10 | 0x001B

// ReadRemoteExtendedFeatures implements HCI command (0x01|0x001C) [Vol 4, Part E, 7.1.22].
type ReadRemoteExtendedFeatures struct {
	ConnectionHandle uint16
	PageNumber       uint8
}

func (c *ReadRemoteExtendedFeatures) String() string {
	return "ReadRemoteExtendedFeatures (0x01|0x001C)"
}

// OpCode returns the opcode of the command.
func (c *ReadRemoteExtendedFeatures) OpCode() int { return 0x01<<10 | 0x001C }

// Len returns the length of the command.
func (c *ReadRemoteExtendedFeatures) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *ReadRemoteExtendedFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadRemoteExtendedFeaturesOpCode is the opcode of ReadRemoteExtendedFeatures.
const ReadRemoteExtendedFeaturesOpCode = 0x01<<10 | 0x001C

// ReadRemoteVersionInformation implements HCI command (0x01|0x001D) [Vol 4, Part E, 7.1.23].
type ReadRemoteVersionInformation struct {
	ConnectionHandle uint16
}

func (c *ReadRemoteVersionInformation) String() string {
	return "ReadRemoteVersionInformation (0x01|0x001D)"
}

// OpCode returns the opcode of the command.
func (c *ReadRemoteVersionInformation) OpCode() int { return 0x01<<10 | 0x001D }

// Len returns the length of the command.
func (c *ReadRemoteVersionInformation) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *ReadRemoteVersionInformation) Marshal(b []byte) error {
	return marshal(c, b)
}

// ReadRemoteVersionInformationOpCode is the opcode of ReadRemoteVersionInformation.
const ReadRemoteVersionInformationOpCode = 0x01<<10 | 0x001D

// IOCapabilityRequestReply implements HCI command (0x01|0x002B) [Vol 4, Part E, 7.1.29].
type IOCapabilityRequestReply struct {
	BDADDR                     [6]byte
	IOCapability               uint8
	OOBDataPresent             uint8
	AuthenticationRequirements uint8
}

func (c *IOCapabilityRequestReply) String() string {
	return "IOCapabilityRequestReply (0x01|0x002B)"
}

// OpCode returns the opcode of the command.
func (c *IOCapabilityRequestReply) OpCode() int { return 0x01<<10 | 0x002B }

// Len returns the length of the command.
func (c *IOCapabilityRequestReply) Len() int { return 9 }

// Marshal serializes the command parameters into binary form.
func (c *IOCapabilityRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// IOCapabilityRequestReplyOpCode is the opcode of IOCapabilityRequestReply.
const IOCapabilityRequestReplyOpCode = 0x01<<10 | 0x002B

// UserConfirmationRequestReply implements HCI command (0x01|0x002C) [Vol 4, Part E, 7.1.30].
type UserConfirmationRequestReply struct {
	BDADDR [6]byte
}

func (c *UserConfirmationRequestReply) String() string {
	return "UserConfirmationRequestReply (0x01|0x002C)"
}

// OpCode returns the opcode of the command.
func (c *UserConfirmationRequestReply) OpCode() int { return 0x01<<10 | 0x002C }

// Len returns the length of the command.
func (c *UserConfirmationRequestReply) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *UserConfirmationRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// UserConfirmationRequestReplyOpCode is the opcode of UserConfirmationRequestReply.
const UserConfirmationRequestReplyOpCode = 0x01<<10 | 0x002C

// UserConfirmationRequestNegativeReply implements HCI command (0x01|0x002D) [Vol 4, Part E, 7.1.31].
type UserConfirmationRequestNegativeReply struct {
	BDADDR [6]byte
}

func (c *UserConfirmationRequestNegativeReply) String() string {
	return "UserConfirmationRequestNegativeReply (0x01|0x002D)"
}

// OpCode returns the opcode of the command.
func (c *UserConfirmationRequestNegativeReply) OpCode() int { return 0x01<<10 | 0x002D }

// Len returns the length of the command.
func (c *UserConfirmationRequestNegativeReply) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *UserConfirmationRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// UserConfirmationRequestNegativeReplyOpCode is the opcode of UserConfirmationRequestNegativeReply.
const UserConfirmationRequestNegativeReplyOpCode = 0x01<<10 | 0x002D

// UserPasskeyRequestReply implements HCI command (0x01|0x002E) [Vol 4, Part E, 7.1.32].
type UserPasskeyRequestReply struct {
	BDADDR       [6]byte
	NumericValue uint32
}

func (c *UserPasskeyRequestReply) String() string {
	return "UserPasskeyRequestReply (0x01|0x002E)"
}

// OpCode returns the opcode of the command.
func (c *UserPasskeyRequestReply) OpCode() int { return 0x01<<10 | 0x002E }

// Len returns the length of the command.
func (c *UserPasskeyRequestReply) Len() int { return 10 }

// Marshal serializes the command parameters into binary form.
func (c *UserPasskeyRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// UserPasskeyRequestReplyOpCode is the opcode of UserPasskeyRequestReply.
const UserPasskeyRequestReplyOpCode = 0x01<<10 | 0x002E

// UserPasskeyRequestNegativeReply implements HCI command (0x01|0x002F) [Vol 4, Part E, 7.1.33].
type UserPasskeyRequestNegativeReply struct {
	BDADDR [6]byte
}

func (c *UserPasskeyRequestNegativeReply) String() string {
	return "UserPasskeyRequestNegativeReply (0x01|0x002F)"
}

// OpCode returns the opcode of the command.
func (c *UserPasskeyRequestNegativeReply) OpCode() int { return 0x01<<10 | 0x002F }

// Len returns the length of the command.
func (c *UserPasskeyRequestNegativeReply) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *UserPasskeyRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// UserPasskeyRequestNegativeReplyOpCode is the opcode of UserPasskeyRequestNegativeReply.
const UserPasskeyRequestNegativeReplyOpCode = 0x01<<10 | 0x002F

// IOCapabilityRequestNegativeReply implements HCI command (0x01|0x0034) [Vol 4, Part E, 7.1.36].
type IOCapabilityRequestNegativeReply struct {
	BDADDR [6]byte
	Reason uint8
}

func (c *IOCapabilityRequestNegativeReply) String() string {
	return "IOCapabilityRequestNegativeReply (0x01|0x0034)"
}

// OpCode returns the opcode of the command.
func (c *IOCapabilityRequestNegativeReply) OpCode() int { return 0x01<<10 | 0x0034 }

// Len returns the length of the command.
func (c *IOCapabilityRequestNegativeReply) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *IOCapabilityRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// IOCapabilityRequestNegativeReplyOpCode is the opcode of IOCapabilityRequestNegativeReply.
const IOCapabilityRequestNegativeReplyOpCode = 0x01<<10 | 0x0034

// SetEventMask implements HCI command (0x03|0x0001) [Vol 4, Part E, 7.3.1].
type SetEventMask struct {
	EventMask uint64
}

func (c *SetEventMask) String() string {
	return "SetEventMask (0x03|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *SetEventMask) OpCode() int { return 0x03<<10 | 0x0001 }

// Len returns the length of the command.
func (c *SetEventMask) Len() int { return 8 }

// Marshal serializes the command parameters into binary form.
func (c *SetEventMask) Marshal(b []byte) error {
	return marshal(c, b)
}

// SetEventMaskOpCode is the opcode of SetEventMask.
const SetEventMaskOpCode = 0x03<<10 | 0x0001

// Reset implements HCI command (0x03|0x0003) [Vol 4, Part E, 7.3.2].
type Reset struct{}

func (c *Reset) String() string {
	return "Reset (0x03|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *Reset) OpCode() int { return 0x03<<10 | 0x0003 }

// Len returns the length of the command.
func (c *Reset) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *Reset) Marshal(b []byte) error { return nil }

// ResetOpCode is the opcode of Reset.
const ResetOpCode = 0x03<<10 | 0x0003

// WriteLocalName implements HCI command (0x03|0x0013) [Vol 4, Part E, 7.3.11].
type WriteLocalName struct {
	LocalName [248]byte
}

func (c *WriteLocalName) String() string {
	return "WriteLocalName (0x03|0x0013)"
}

// OpCode returns the opcode of the command.
func (c *WriteLocalName) OpCode() int { return 0x03<<10 | 0x0013 }

// Len returns the length of the command.
func (c *WriteLocalName) Len() int { return 248 }

// Marshal serializes the command parameters into binary form.
func (c *WriteLocalName) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteLocalNameOpCode is the opcode of WriteLocalName.
const WriteLocalNameOpCode = 0x03<<10 | 0x0013

// ReadScanEnable implements HCI command (0x03|0x0019) [Vol 4, Part E, 7.3.17].
type ReadScanEnable struct{}

func (c *ReadScanEnable) String() string {
	return "ReadScanEnable (0x03|0x0019)"
}

// OpCode returns the opcode of the command.
func (c *ReadScanEnable) OpCode() int { return 0x03<<10 | 0x0019 }

// Len returns the length of the command.
func (c *ReadScanEnable) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadScanEnable) Marshal(b []byte) error { return nil }

// ReadScanEnableOpCode is the opcode of ReadScanEnable.
const ReadScanEnableOpCode = 0x03<<10 | 0x0019

// WriteScanEnable implements HCI command (0x03|0x001A) [Vol 4, Part E, 7.3.18].
type WriteScanEnable struct {
	ScanEnable uint8
}

func (c *WriteScanEnable) String() string {
	return "WriteScanEnable (0x03|0x001A)"
}

// OpCode returns the opcode of the command.
func (c *WriteScanEnable) OpCode() int { return 0x03<<10 | 0x001A }

// Len returns the length of the command.
func (c *WriteScanEnable) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *WriteScanEnable) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteScanEnableOpCode is the opcode of WriteScanEnable.
const WriteScanEnableOpCode = 0x03<<10 | 0x001A

// WriteClassOfDevice implements HCI command (0x03|0x0024) [Vol 4, Part E, 7.3.26].
type WriteClassOfDevice struct {
	ClassOfDevice [3]byte
}

func (c *WriteClassOfDevice) String() string {
	return "WriteClassOfDevice (0x03|0x0024)"
}

// OpCode returns the opcode of the command.
func (c *WriteClassOfDevice) OpCode() int { return 0x03<<10 | 0x0024 }

// Len returns the length of the command.
func (c *WriteClassOfDevice) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *WriteClassOfDevice) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteClassOfDeviceOpCode is the opcode of WriteClassOfDevice.
const WriteClassOfDeviceOpCode = 0x03<<10 | 0x0024

// WriteInquiryMode implements HCI command (0x03|0x0045) [Vol 4, Part E, 7.3.50].
type WriteInquiryMode struct {
	InquiryMode uint8
}

func (c *WriteInquiryMode) String() string {
	return "WriteInquiryMode (0x03|0x0045)"
}

// OpCode returns the opcode of the command.
func (c *WriteInquiryMode) OpCode() int { return 0x03<<10 | 0x0045 }

// Len returns the length of the command.
func (c *WriteInquiryMode) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *WriteInquiryMode) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteInquiryModeOpCode is the opcode of WriteInquiryMode.
const WriteInquiryModeOpCode = 0x03<<10 | 0x0045

// WriteSimplePairingMode implements HCI command (0x03|0x0056) [Vol 4, Part E, 7.3.59].
type WriteSimplePairingMode struct {
	SimplePairingMode uint8
}

func (c *WriteSimplePairingMode) String() string {
	return "WriteSimplePairingMode (0x03|0x0056)"
}

// OpCode returns the opcode of the command.
func (c *WriteSimplePairingMode) OpCode() int { return 0x03<<10 | 0x0056 }

// Len returns the length of the command.
func (c *WriteSimplePairingMode) Len() int { return 1 }

// Marshal serializes the command parameters into binary form.
func (c *WriteSimplePairingMode) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteSimplePairingModeOpCode is the opcode of WriteSimplePairingMode.
const WriteSimplePairingModeOpCode = 0x03<<10 | 0x0056

// WriteLEHostSupport implements HCI command (0x03|0x006D) [Vol 4, Part E, 7.3.79].
type WriteLEHostSupport struct {
	LESupportedHost    uint8
	SimultaneousLEHost uint8
}

func (c *WriteLEHostSupport) String() string {
	return "WriteLEHostSupport (0x03|0x006D)"
}

// OpCode returns the opcode of the command.
func (c *WriteLEHostSupport) OpCode() int { return 0x03<<10 | 0x006D }

// Len returns the length of the command.
func (c *WriteLEHostSupport) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *WriteLEHostSupport) Marshal(b []byte) error {
	return marshal(c, b)
}

// WriteLEHostSupportOpCode is the opcode of WriteLEHostSupport.
const WriteLEHostSupportOpCode = 0x03<<10 | 0x006D

// ReadLocalVersionInformation implements HCI command (0x04|0x0001) [Vol 4, Part E, 7.4.1].
type ReadLocalVersionInformation struct{}

func (c *ReadLocalVersionInformation) String() string {
	return "ReadLocalVersionInformation (0x04|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalVersionInformation) OpCode() int { return 0x04<<10 | 0x0001 }

// Len returns the length of the command.
func (c *ReadLocalVersionInformation) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalVersionInformation) Marshal(b []byte) error { return nil }

// ReadLocalVersionInformationOpCode is the opcode of ReadLocalVersionInformation.
const ReadLocalVersionInformationOpCode = 0x04<<10 | 0x0001

// ReadLocalSupportedFeatures implements HCI command (0x04|0x0003) [Vol 4, Part E, 7.4.3].
type ReadLocalSupportedFeatures struct{}

func (c *ReadLocalSupportedFeatures) String() string {
	return "ReadLocalSupportedFeatures (0x04|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *ReadLocalSupportedFeatures) OpCode() int { return 0x04<<10 | 0x0003 }

// Len returns the length of the command.
func (c *ReadLocalSupportedFeatures) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadLocalSupportedFeatures) Marshal(b []byte) error { return nil }

// ReadLocalSupportedFeaturesOpCode is the opcode of ReadLocalSupportedFeatures.
const ReadLocalSupportedFeaturesOpCode = 0x04<<10 | 0x0003

// ReadBufferSize implements HCI command (0x04|0x0005) [Vol 4, Part E, 7.4.5].
type ReadBufferSize struct{}

func (c *ReadBufferSize) String() string {
	return "ReadBufferSize (0x04|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *ReadBufferSize) OpCode() int { return 0x04<<10 | 0x0005 }

// Len returns the length of the command.
func (c *ReadBufferSize) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadBufferSize) Marshal(b []byte) error { return nil }

// ReadBufferSizeOpCode is the opcode of ReadBufferSize.
const ReadBufferSizeOpCode = 0x04<<10 | 0x0005

// ReadBDADDR implements HCI command (0x04|0x0009) [Vol 4, Part E, 7.4.6].
type ReadBDADDR struct{}

func (c *ReadBDADDR) String() string {
	return "ReadBDADDR (0x04|0x0009)"
}

// OpCode returns the opcode of the command.
func (c *ReadBDADDR) OpCode() int { return 0x04<<10 | 0x0009 }

// Len returns the length of the command.
func (c *ReadBDADDR) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *ReadBDADDR) Marshal(b []byte) error { return nil }

// ReadBDADDROpCode is the opcode of ReadBDADDR.
const ReadBDADDROpCode = 0x04<<10 | 0x0009

// LESetEventMask implements HCI command (0x08|0x0001) [Vol 4, Part E, 7.8.1].
type LESetEventMask struct {
	LEEventMask uint64
}

func (c *LESetEventMask) String() string {
	return "LESetEventMask (0x08|0x0001)"
}

// OpCode returns the opcode of the command.
func (c *LESetEventMask) OpCode() int { return 0x08<<10 | 0x0001 }

// Len returns the length of the command.
func (c *LESetEventMask) Len() int { return 8 }

// Marshal serializes the command parameters into binary form.
func (c *LESetEventMask) Marshal(b []byte) error {
	return marshal(c, b)
}

// LESetEventMaskOpCode is the opcode of LESetEventMask.
const LESetEventMaskOpCode = 0x08<<10 | 0x0001

// LEReadBufferSize implements HCI command (0x08|0x0002) [Vol 4, Part E, 7.8.2].
type LEReadBufferSize struct{}

func (c *LEReadBufferSize) String() string {
	return "LEReadBufferSize (0x08|0x0002)"
}

// OpCode returns the opcode of the command.
func (c *LEReadBufferSize) OpCode() int { return 0x08<<10 | 0x0002 }

// Len returns the length of the command.
func (c *LEReadBufferSize) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadBufferSize) Marshal(b []byte) error { return nil }

// LEReadBufferSizeOpCode is the opcode of LEReadBufferSize.
const LEReadBufferSizeOpCode = 0x08<<10 | 0x0002

// LEReadLocalSupportedFeatures implements HCI command (0x08|0x0003) [Vol 4, Part E, 7.8.3].
type LEReadLocalSupportedFeatures struct{}

func (c *LEReadLocalSupportedFeatures) String() string {
	return "LEReadLocalSupportedFeatures (0x08|0x0003)"
}

// OpCode returns the opcode of the command.
func (c *LEReadLocalSupportedFeatures) OpCode() int { return 0x08<<10 | 0x0003 }

// Len returns the length of the command.
func (c *LEReadLocalSupportedFeatures) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadLocalSupportedFeatures) Marshal(b []byte) error { return nil }

// LEReadLocalSupportedFeaturesOpCode is the opcode of LEReadLocalSupportedFeatures.
const LEReadLocalSupportedFeaturesOpCode = 0x08<<10 | 0x0003

// LESetRandomAddress implements HCI command (0x08|0x0005) [Vol 4, Part E, 7.8.4].
type LESetRandomAddress struct {
	RandomAddress [6]byte
}

func (c *LESetRandomAddress) String() string {
	return "LESetRandomAddress (0x08|0x0005)"
}

// OpCode returns the opcode of the command.
func (c *LESetRandomAddress) OpCode() int { return 0x08<<10 | 0x0005 }

// Len returns the length of the command.
func (c *LESetRandomAddress) Len() int { return 6 }

// Marshal serializes the command parameters into binary form.
func (c *LESetRandomAddress) Marshal(b []byte) error {
	return marshal(c, b)
}

// LESetRandomAddressOpCode is the opcode of LESetRandomAddress.
const LESetRandomAddressOpCode = 0x08<<10 | 0x0005

// LESetScanParameters implements HCI command (0x08|0x000B) [Vol 4, Part E, 7.8.10].
type LESetScanParameters struct {
	LEScanType           uint8
	LEScanInterval       uint16
	LEScanWindow         uint16
	OwnAddressType       uint8
	ScanningFilterPolicy uint8
}

func (c *LESetScanParameters) String() string {
	return "LESetScanParameters (0x08|0x000B)"
}

// OpCode returns the opcode of the command.
func (c *LESetScanParameters) OpCode() int { return 0x08<<10 | 0x000B }

// Len returns the length of the command.
func (c *LESetScanParameters) Len() int { return 7 }

// Marshal serializes the command parameters into binary form.
func (c *LESetScanParameters) Marshal(b []byte) error {
	return marshal(c, b)
}

// LESetScanParametersOpCode is the opcode of LESetScanParameters.
const LESetScanParametersOpCode = 0x08<<10 | 0x000B

// LESetScanEnable implements HCI command (0x08|0x000C) [Vol 4, Part E, 7.8.11].
type LESetScanEnable struct {
	LEScanEnable     uint8
	FilterDuplicates uint8
}

func (c *LESetScanEnable) String() string {
	return "LESetScanEnable (0x08|0x000C)"
}

// OpCode returns the opcode of the command.
func (c *LESetScanEnable) OpCode() int { return 0x08<<10 | 0x000C }

// Len returns the length of the command.
func (c *LESetScanEnable) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *LESetScanEnable) Marshal(b []byte) error {
	return marshal(c, b)
}

// LESetScanEnableOpCode is the opcode of LESetScanEnable.
const LESetScanEnableOpCode = 0x08<<10 | 0x000C

// LECreateConnection implements HCI command (0x08|0x000D) [Vol 4, Part E, 7.8.12].
type LECreateConnection struct {
	LEScanInterval        uint16
	LEScanWindow          uint16
	InitiatorFilterPolicy uint8
	PeerAddressType       uint8
	PeerAddress           [6]byte
	OwnAddressType        uint8
	ConnIntervalMin       uint16
	ConnIntervalMax       uint16
	ConnLatency           uint16
	SupervisionTimeout    uint16
	MinimumCELength       uint16
	MaximumCELength       uint16
}

func (c *LECreateConnection) String() string {
	return "LECreateConnection (0x08|0x000D)"
}

// OpCode returns the opcode of the command.
func (c *LECreateConnection) OpCode() int { return 0x08<<10 | 0x000D }

// Len returns the length of the command.
func (c *LECreateConnection) Len() int { return 25 }

// Marshal serializes the command parameters into binary form.
func (c *LECreateConnection) Marshal(b []byte) error {
	return marshal(c, b)
}

// LECreateConnectionOpCode is the opcode of LECreateConnection.
const LECreateConnectionOpCode = 0x08<<10 | 0x000D

// LECreateConnectionCancel implements HCI command (0x08|0x000E) [Vol 4, Part E, 7.8.13].
type LECreateConnectionCancel struct{}

func (c *LECreateConnectionCancel) String() string {
	return "LECreateConnectionCancel (0x08|0x000E)"
}

// OpCode returns the opcode of the command.
func (c *LECreateConnectionCancel) OpCode() int { return 0x08<<10 | 0x000E }

// Len returns the length of the command.
func (c *LECreateConnectionCancel) Len() int { return 0 }

// Marshal serializes the command parameters into binary form.
func (c *LECreateConnectionCancel) Marshal(b []byte) error { return nil }

// LECreateConnectionCancelOpCode is the opcode of LECreateConnectionCancel.
const LECreateConnectionCancelOpCode = 0x08<<10 | 0x000E

// LEConnectionUpdate implements HCI command (0x08|0x0013) [Vol 4, Part E, 7.8.18].
type LEConnectionUpdate struct {
	ConnectionHandle   uint16
	ConnIntervalMin    uint16
	ConnIntervalMax    uint16
	ConnLatency        uint16
	SupervisionTimeout uint16
	MinimumCELength    uint16
	MaximumCELength    uint16
}

func (c *LEConnectionUpdate) String() string {
	return "LEConnectionUpdate (0x08|0x0013)"
}

// OpCode returns the opcode of the command.
func (c *LEConnectionUpdate) OpCode() int { return 0x08<<10 | 0x0013 }

// Len returns the length of the command.
func (c *LEConnectionUpdate) Len() int { return 14 }

// Marshal serializes the command parameters into binary form.
func (c *LEConnectionUpdate) Marshal(b []byte) error {
	return marshal(c, b)
}

// LEConnectionUpdateOpCode is the opcode of LEConnectionUpdate.
const LEConnectionUpdateOpCode = 0x08<<10 | 0x0013

// LEReadRemoteFeatures implements HCI command (0x08|0x0016) [Vol 4, Part E, 7.8.21].
type LEReadRemoteFeatures struct {
	ConnectionHandle uint16
}

func (c *LEReadRemoteFeatures) String() string {
	return "LEReadRemoteFeatures (0x08|0x0016)"
}

// OpCode returns the opcode of the command.
func (c *LEReadRemoteFeatures) OpCode() int { return 0x08<<10 | 0x0016 }

// Len returns the length of the command.
func (c *LEReadRemoteFeatures) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *LEReadRemoteFeatures) Marshal(b []byte) error {
	return marshal(c, b)
}

// LEReadRemoteFeaturesOpCode is the opcode of LEReadRemoteFeatures.
const LEReadRemoteFeaturesOpCode = 0x08<<10 | 0x0016

// LEStartEncryption implements HCI command (0x08|0x0019) [Vol 4, Part E, 7.8.24].
type LEStartEncryption struct {
	ConnectionHandle     uint16
	RandomNumber         uint64
	EncryptedDiversifier uint16
	LongTermKey          [16]byte
}

func (c *LEStartEncryption) String() string {
	return "LEStartEncryption (0x08|0x0019)"
}

// OpCode returns the opcode of the command.
func (c *LEStartEncryption) OpCode() int { return 0x08<<10 | 0x0019 }

// Len returns the length of the command.
func (c *LEStartEncryption) Len() int { return 28 }

// Marshal serializes the command parameters into binary form.
func (c *LEStartEncryption) Marshal(b []byte) error {
	return marshal(c, b)
}

// LEStartEncryptionOpCode is the opcode of LEStartEncryption.
const LEStartEncryptionOpCode = 0x08<<10 | 0x0019

// LELongTermKeyRequestReply implements HCI command (0x08|0x001A) [Vol 4, Part E, 7.8.25].
type LELongTermKeyRequestReply struct {
	ConnectionHandle uint16
	LongTermKey      [16]byte
}

func (c *LELongTermKeyRequestReply) String() string {
	return "LELongTermKeyRequestReply (0x08|0x001A)"
}

// OpCode returns the opcode of the command.
func (c *LELongTermKeyRequestReply) OpCode() int { return 0x08<<10 | 0x001A }

// Len returns the length of the command.
func (c *LELongTermKeyRequestReply) Len() int { return 18 }

// Marshal serializes the command parameters into binary form.
func (c *LELongTermKeyRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LELongTermKeyRequestReplyOpCode is the opcode of LELongTermKeyRequestReply.
const LELongTermKeyRequestReplyOpCode = 0x08<<10 | 0x001A

// LELongTermKeyRequestNegativeReply implements HCI command (0x08|0x001B) [Vol 4, Part E, 7.8.26].
type LELongTermKeyRequestNegativeReply struct {
	ConnectionHandle uint16
}

func (c *LELongTermKeyRequestNegativeReply) String() string {
	return "LELongTermKeyRequestNegativeReply (0x08|0x001B)"
}

// OpCode returns the opcode of the command.
func (c *LELongTermKeyRequestNegativeReply) OpCode() int { return 0x08<<10 | 0x001B }

// Len returns the length of the command.
func (c *LELongTermKeyRequestNegativeReply) Len() int { return 2 }

// Marshal serializes the command parameters into binary form.
func (c *LELongTermKeyRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LELongTermKeyRequestNegativeReplyOpCode is the opcode of LELongTermKeyRequestNegativeReply.
const LELongTermKeyRequestNegativeReplyOpCode = 0x08<<10 | 0x001B

// LERemoteConnectionParameterRequestReply implements HCI command (0x08|0x0020) [Vol 4, Part E, 7.8.31].
type LERemoteConnectionParameterRequestReply struct {
	ConnectionHandle uint16
	IntervalMin      uint16
	IntervalMax      uint16
	Latency          uint16
	Timeout          uint16
	MinimumCELength  uint16
	MaximumCELength  uint16
}

func (c *LERemoteConnectionParameterRequestReply) String() string {
	return "LERemoteConnectionParameterRequestReply (0x08|0x0020)"
}

// OpCode returns the opcode of the command.
func (c *LERemoteConnectionParameterRequestReply) OpCode() int { return 0x08<<10 | 0x0020 }

// Len returns the length of the command.
func (c *LERemoteConnectionParameterRequestReply) Len() int { return 14 }

// Marshal serializes the command parameters into binary form.
func (c *LERemoteConnectionParameterRequestReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LERemoteConnectionParameterRequestReplyOpCode is the opcode of LERemoteConnectionParameterRequestReply.
const LERemoteConnectionParameterRequestReplyOpCode = 0x08<<10 | 0x0020

// LERemoteConnectionParameterRequestNegativeReply implements HCI command (0x08|0x0021) [Vol 4, Part E, 7.8.32].
type LERemoteConnectionParameterRequestNegativeReply struct {
	ConnectionHandle uint16
	Reason           uint8
}

func (c *LERemoteConnectionParameterRequestNegativeReply) String() string {
	return "LERemoteConnectionParameterRequestNegativeReply (0x08|0x0021)"
}

// OpCode returns the opcode of the command.
func (c *LERemoteConnectionParameterRequestNegativeReply) OpCode() int { return 0x08<<10 | 0x0021 }

// Len returns the length of the command.
func (c *LERemoteConnectionParameterRequestNegativeReply) Len() int { return 3 }

// Marshal serializes the command parameters into binary form.
func (c *LERemoteConnectionParameterRequestNegativeReply) Marshal(b []byte) error {
	return marshal(c, b)
}

// LERemoteConnectionParameterRequestNegativeReplyOpCode is the opcode of LERemoteConnectionParameterRequestNegativeReply.
const LERemoteConnectionParameterRequestNegativeReplyOpCode = 0x08<<10 | 0x0021

// ReadScanEnableRP returns the return parameter of ReadScanEnable
type ReadScanEnableRP struct {
	Status     uint8
	ScanEnable uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadScanEnableRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalVersionInformationRP returns the return parameter of ReadLocalVersionInformation
type ReadLocalVersionInformationRP struct {
	Status           uint8
	HCIVersion       uint8
	HCIRevision      uint16
	LMPPALVersion    uint8
	ManufacturerName uint16
	LMPPALSubversion uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalVersionInformationRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadLocalSupportedFeaturesRP returns the return parameter of ReadLocalSupportedFeatures
type ReadLocalSupportedFeaturesRP struct {
	Status      uint8
	LMPFeatures uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadBufferSizeRP returns the return parameter of ReadBufferSize
type ReadBufferSizeRP struct {
	Status                           uint8
	HCACLDataPacketLength            uint16
	HCSynchronousDataPacketLength    uint8
	HCTotalNumACLDataPackets         uint16
	HCTotalNumSynchronousDataPackets uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBufferSizeRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// ReadBDADDRRP returns the return parameter of ReadBDADDR
type ReadBDADDRRP struct {
	Status uint8
	BDADDR [6]byte
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *ReadBDADDRRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadBufferSizeRP returns the return parameter of LEReadBufferSize
type LEReadBufferSizeRP struct {
	Status                     uint8
	HCLEACLDataPacketLength    uint16
	HCTotalNumLEACLDataPackets uint8
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadBufferSizeRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LEReadLocalSupportedFeaturesRP returns the return parameter of LEReadLocalSupportedFeatures
type LEReadLocalSupportedFeaturesRP struct {
	Status     uint8
	LEFeatures uint64
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LEReadLocalSupportedFeaturesRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}

// LELongTermKeyRequestReplyRP returns the return parameter of LELongTermKeyRequestReply
type LELongTermKeyRequestReplyRP struct {
	Status           uint8
	ConnectionHandle uint16
}

// Unmarshal de-serializes the binary data and stores the result in the receiver.
func (c *LELongTermKeyRequestReplyRP) Unmarshal(b []byte) error {
	return unmarshal(c, b)
}
