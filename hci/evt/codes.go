package evt

// Event codes [Vol 4, Part E, 7.7].
const (
	InquiryCompleteCode                      = 0x01
	InquiryResultCode                        = 0x02
	ConnectionCompleteCode                   = 0x03
	ConnectionRequestCode                    = 0x04
	DisconnectionCompleteCode                = 0x05
	AuthenticationCompleteCode               = 0x06
	RemoteNameRequestCompleteCode            = 0x07
	EncryptionChangeCode                     = 0x08
	ReadRemoteSupportedFeaturesCompleteCode  = 0x0B
	ReadRemoteVersionInformationCompleteCode = 0x0C
	CommandCompleteCode                      = 0x0E
	CommandStatusCode                        = 0x0F
	HardwareErrorCode                        = 0x10
	NumberOfCompletedPacketsCode             = 0x13
	LinkKeyRequestCode                       = 0x17
	LinkKeyNotificationCode                  = 0x18
	InquiryResultWithRSSICode                = 0x22
	ReadRemoteExtendedFeaturesCompleteCode   = 0x23
	ExtendedInquiryResultCode                = 0x2F
	EncryptionKeyRefreshCompleteCode         = 0x30
	IOCapabilityRequestCode                  = 0x31
	IOCapabilityResponseCode                 = 0x32
	UserConfirmationRequestCode              = 0x33
	UserPasskeyRequestCode                   = 0x34
	SimplePairingCompleteCode                = 0x36
	UserPasskeyNotificationCode              = 0x3B
	LEMetaCode                               = 0x3E
	VendorCode                               = 0xFF
)

// LE Meta subevent codes [Vol 4, Part E, 7.7.65].
const (
	LEConnectionCompleteSubCode               = 0x01
	LEAdvertisingReportSubCode                = 0x02
	LEConnectionUpdateCompleteSubCode         = 0x03
	LEReadRemoteFeaturesCompleteSubCode       = 0x04
	LELongTermKeyRequestSubCode               = 0x05
	LERemoteConnectionParameterRequestSubCode = 0x06
)

// Event parameter views. Each is the parameter block following the event header;
// LE Meta views start with the subevent code.
type (
	CommandComplete                      []byte
	CommandStatus                        []byte
	InquiryComplete                      []byte
	InquiryResult                        []byte
	InquiryResultWithRSSI                []byte
	ExtendedInquiryResult                []byte
	ConnectionComplete                   []byte
	ConnectionRequest                    []byte
	DisconnectionComplete                []byte
	AuthenticationComplete               []byte
	RemoteNameRequestComplete            []byte
	EncryptionChange                     []byte
	EncryptionKeyRefreshComplete         []byte
	ReadRemoteSupportedFeaturesComplete  []byte
	ReadRemoteVersionInformationComplete []byte
	ReadRemoteExtendedFeaturesComplete   []byte
	NumberOfCompletedPackets             []byte
	LinkKeyRequest                       []byte
	LinkKeyNotification                  []byte
	IOCapabilityRequest                  []byte
	IOCapabilityResponse                 []byte
	UserConfirmationRequest              []byte
	UserPasskeyRequest                   []byte
	UserPasskeyNotification              []byte
	SimplePairingComplete                []byte
	LEConnectionComplete                 []byte
	LEAdvertisingReport                  []byte
	LEConnectionUpdateComplete           []byte
	LEReadRemoteFeaturesComplete         []byte
	LELongTermKeyRequest                 []byte
	LERemoteConnectionParameterRequest   []byte
)

// Inquiry result record sizes [Vol 4, Part E, 7.7.2, 7.7.33, 7.7.38].
const (
	InquiryResultSize         = 14
	InquiryResultWithRSSISize = 14
	ExtendedInquiryResultSize = 254
	EIRDataSize               = 240
	RemoteNameSize            = 248
)
