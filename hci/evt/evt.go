package evt

func (e CommandComplete) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandComplete) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e CommandComplete) ReturnParameters() []byte {
	v, _ := e.ReturnParametersWErr()
	return v
}

func (e CommandComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e CommandStatus) NumHCICommandPackets() uint8 {
	v, _ := e.NumHCICommandPacketsWErr()
	return v
}

func (e CommandStatus) CommandOpcode() uint16 {
	v, _ := e.CommandOpcodeWErr()
	return v
}

func (e InquiryComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e InquiryResult) NumResponses() uint8 {
	v, _ := e.NumResponsesWErr()
	return v
}

func (e InquiryResult) BDADDR(i int) [6]byte {
	v, _ := e.BDADDRWErr(i)
	return v
}

func (e InquiryResult) PageScanRepetitionMode(i int) uint8 {
	v, _ := e.PageScanRepetitionModeWErr(i)
	return v
}

func (e InquiryResult) ClassOfDevice(i int) uint32 {
	v, _ := e.ClassOfDeviceWErr(i)
	return v
}

func (e InquiryResult) ClockOffset(i int) uint16 {
	v, _ := e.ClockOffsetWErr(i)
	return v
}

func (e InquiryResultWithRSSI) NumResponses() uint8 {
	v, _ := e.NumResponsesWErr()
	return v
}

func (e InquiryResultWithRSSI) BDADDR(i int) [6]byte {
	v, _ := e.BDADDRWErr(i)
	return v
}

func (e InquiryResultWithRSSI) PageScanRepetitionMode(i int) uint8 {
	v, _ := e.PageScanRepetitionModeWErr(i)
	return v
}

func (e InquiryResultWithRSSI) ClassOfDevice(i int) uint32 {
	v, _ := e.ClassOfDeviceWErr(i)
	return v
}

func (e InquiryResultWithRSSI) ClockOffset(i int) uint16 {
	v, _ := e.ClockOffsetWErr(i)
	return v
}

func (e InquiryResultWithRSSI) RSSI(i int) int8 {
	v, _ := e.RSSIWErr(i)
	return v
}

func (e ExtendedInquiryResult) NumResponses() uint8 {
	v, _ := e.NumResponsesWErr()
	return v
}

func (e ExtendedInquiryResult) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e ExtendedInquiryResult) PageScanRepetitionMode() uint8 {
	v, _ := e.PageScanRepetitionModeWErr()
	return v
}

func (e ExtendedInquiryResult) ClassOfDevice() uint32 {
	v, _ := e.ClassOfDeviceWErr()
	return v
}

func (e ExtendedInquiryResult) ClockOffset() uint16 {
	v, _ := e.ClockOffsetWErr()
	return v
}

func (e ExtendedInquiryResult) RSSI() int8 {
	v, _ := e.RSSIWErr()
	return v
}

func (e ExtendedInquiryResult) ExtendedInquiryResponse() []byte {
	v, _ := e.ExtendedInquiryResponseWErr()
	return v
}

func (e ConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ConnectionComplete) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e ConnectionComplete) LinkType() uint8 {
	v, _ := e.LinkTypeWErr()
	return v
}

func (e ConnectionComplete) EncryptionEnabled() uint8 {
	v, _ := e.EncryptionEnabledWErr()
	return v
}

func (e ConnectionRequest) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e ConnectionRequest) ClassOfDevice() uint32 {
	v, _ := e.ClassOfDeviceWErr()
	return v
}

func (e ConnectionRequest) LinkType() uint8 {
	v, _ := e.LinkTypeWErr()
	return v
}

func (e DisconnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e DisconnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e DisconnectionComplete) Reason() uint8 {
	v, _ := e.ReasonWErr()
	return v
}

func (e AuthenticationComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e AuthenticationComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e RemoteNameRequestComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e RemoteNameRequestComplete) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e RemoteNameRequestComplete) RemoteName() string {
	v, _ := e.RemoteNameWErr()
	return v
}

func (e EncryptionChange) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e EncryptionChange) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e EncryptionChange) EncryptionEnabled() uint8 {
	v, _ := e.EncryptionEnabledWErr()
	return v
}

func (e EncryptionKeyRefreshComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e EncryptionKeyRefreshComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteSupportedFeaturesComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ReadRemoteSupportedFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteSupportedFeaturesComplete) LMPFeatures() uint64 {
	v, _ := e.LMPFeaturesWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) Version() uint8 {
	v, _ := e.VersionWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) ManufacturerName() uint16 {
	v, _ := e.ManufacturerNameWErr()
	return v
}

func (e ReadRemoteVersionInformationComplete) Subversion() uint16 {
	v, _ := e.SubversionWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) PageNumber() uint8 {
	v, _ := e.PageNumberWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) MaxPageNumber() uint8 {
	v, _ := e.MaxPageNumberWErr()
	return v
}

func (e ReadRemoteExtendedFeaturesComplete) ExtendedLMPFeatures() uint64 {
	v, _ := e.ExtendedLMPFeaturesWErr()
	return v
}

func (e NumberOfCompletedPackets) NumberOfHandles() uint8 {
	v, _ := e.NumberOfHandlesWErr()
	return v
}

func (e NumberOfCompletedPackets) ConnectionHandle(i int) uint16 {
	v, _ := e.ConnectionHandleWErr(i)
	return v
}

func (e NumberOfCompletedPackets) HCNumOfCompletedPackets(i int) uint16 {
	v, _ := e.HCNumOfCompletedPacketsWErr(i)
	return v
}

func (e LinkKeyRequest) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e LinkKeyNotification) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e LinkKeyNotification) LinkKey() [16]byte {
	v, _ := e.LinkKeyWErr()
	return v
}

func (e LinkKeyNotification) KeyType() uint8 {
	v, _ := e.KeyTypeWErr()
	return v
}

func (e IOCapabilityRequest) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e IOCapabilityResponse) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e IOCapabilityResponse) IOCapability() uint8 {
	v, _ := e.IOCapabilityWErr()
	return v
}

func (e IOCapabilityResponse) OOBDataPresent() uint8 {
	v, _ := e.OOBDataPresentWErr()
	return v
}

func (e IOCapabilityResponse) AuthenticationRequirements() uint8 {
	v, _ := e.AuthenticationRequirementsWErr()
	return v
}

func (e UserConfirmationRequest) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e UserConfirmationRequest) NumericValue() uint32 {
	v, _ := e.NumericValueWErr()
	return v
}

func (e UserPasskeyRequest) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e UserPasskeyNotification) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e UserPasskeyNotification) Passkey() uint32 {
	v, _ := e.PasskeyWErr()
	return v
}

func (e SimplePairingComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e SimplePairingComplete) BDADDR() [6]byte {
	v, _ := e.BDADDRWErr()
	return v
}

func (e LEConnectionComplete) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEConnectionComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEConnectionComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEConnectionComplete) Role() uint8 {
	v, _ := e.RoleWErr()
	return v
}

func (e LEConnectionComplete) PeerAddressType() uint8 {
	v, _ := e.PeerAddressTypeWErr()
	return v
}

func (e LEConnectionComplete) PeerAddress() [6]byte {
	v, _ := e.PeerAddressWErr()
	return v
}

func (e LEConnectionComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEConnectionComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEConnectionComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

func (e LEConnectionComplete) MasterClockAccuracy() uint8 {
	v, _ := e.MasterClockAccuracyWErr()
	return v
}

func (e LEAdvertisingReport) SubeventCode() uint8 {
	v, _ := e.SubeventCodeWErr()
	return v
}

func (e LEAdvertisingReport) NumReports() uint8 {
	v, _ := e.NumReportsWErr()
	return v
}

func (e LEAdvertisingReport) EventType(i int) uint8 {
	v, _ := e.EventTypeWErr(i)
	return v
}

func (e LEAdvertisingReport) AddressType(i int) uint8 {
	v, _ := e.AddressTypeWErr(i)
	return v
}

func (e LEAdvertisingReport) Address(i int) [6]byte {
	v, _ := e.AddressWErr(i)
	return v
}

func (e LEAdvertisingReport) LengthData(i int) uint8 {
	v, _ := e.LengthDataWErr(i)
	return v
}

func (e LEAdvertisingReport) Data(i int) []byte {
	v, _ := e.DataWErr(i)
	return v
}

func (e LEAdvertisingReport) RSSI(i int) int8 {
	v, _ := e.RSSIWErr(i)
	return v
}

func (e LEConnectionUpdateComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnInterval() uint16 {
	v, _ := e.ConnIntervalWErr()
	return v
}

func (e LEConnectionUpdateComplete) ConnLatency() uint16 {
	v, _ := e.ConnLatencyWErr()
	return v
}

func (e LEConnectionUpdateComplete) SupervisionTimeout() uint16 {
	v, _ := e.SupervisionTimeoutWErr()
	return v
}

func (e LEReadRemoteFeaturesComplete) Status() uint8 {
	v, _ := e.StatusWErr()
	return v
}

func (e LEReadRemoteFeaturesComplete) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LEReadRemoteFeaturesComplete) LEFeatures() uint64 {
	v, _ := e.LEFeaturesWErr()
	return v
}

func (e LELongTermKeyRequest) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LELongTermKeyRequest) RandomNumber() uint64 {
	v, _ := e.RandomNumberWErr()
	return v
}

func (e LELongTermKeyRequest) EncryptionDiversifier() uint16 {
	v, _ := e.EncryptionDiversifierWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) ConnectionHandle() uint16 {
	v, _ := e.ConnectionHandleWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) IntervalMin() uint16 {
	v, _ := e.IntervalMinWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) IntervalMax() uint16 {
	v, _ := e.IntervalMaxWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) Latency() uint16 {
	v, _ := e.LatencyWErr()
	return v
}

func (e LERemoteConnectionParameterRequest) Timeout() uint16 {
	v, _ := e.TimeoutWErr()
	return v
}

func (e InquiryResult) Valid() bool {
	return e.ValidWErr() == nil
}

func (e InquiryResultWithRSSI) Valid() bool {
	return e.ValidWErr() == nil
}

func (e ExtendedInquiryResult) Valid() bool {
	return e.ValidWErr() == nil
}

// Valid reports whether a Command Status event carries all of its parameters.
func (e CommandStatus) Valid() bool {
	return len(e) == 4
}
