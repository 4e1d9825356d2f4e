package hci

import (
	"fmt"

	"github.com/rigado/gap/hci/evt"
)

// EventCode identifies an event. LE Meta subevents are encoded as 0x3E<<8 | subevent.
type EventCode uint16

// LEMetaEventCode returns the code of an LE Meta subevent.
func LEMetaEventCode(sub uint8) EventCode {
	return EventCode(evt.LEMetaCode)<<8 | EventCode(sub)
}

const (
	InquiryCompleteEvent                      EventCode = evt.InquiryCompleteCode
	InquiryResultEvent                        EventCode = evt.InquiryResultCode
	ConnectionCompleteEvent                   EventCode = evt.ConnectionCompleteCode
	ConnectionRequestEvent                    EventCode = evt.ConnectionRequestCode
	DisconnectionCompleteEvent                EventCode = evt.DisconnectionCompleteCode
	AuthenticationCompleteEvent               EventCode = evt.AuthenticationCompleteCode
	RemoteNameRequestCompleteEvent            EventCode = evt.RemoteNameRequestCompleteCode
	EncryptionChangeEvent                     EventCode = evt.EncryptionChangeCode
	ReadRemoteSupportedFeaturesCompleteEvent  EventCode = evt.ReadRemoteSupportedFeaturesCompleteCode
	ReadRemoteVersionInformationCompleteEvent EventCode = evt.ReadRemoteVersionInformationCompleteCode
	CommandCompleteEvent                      EventCode = evt.CommandCompleteCode
	CommandStatusEvent                        EventCode = evt.CommandStatusCode
	HardwareErrorEvent                        EventCode = evt.HardwareErrorCode
	NumberOfCompletedPacketsEvent             EventCode = evt.NumberOfCompletedPacketsCode
	LinkKeyRequestEvent                       EventCode = evt.LinkKeyRequestCode
	LinkKeyNotificationEvent                  EventCode = evt.LinkKeyNotificationCode
	InquiryResultWithRSSIEvent                EventCode = evt.InquiryResultWithRSSICode
	ReadRemoteExtendedFeaturesCompleteEvent   EventCode = evt.ReadRemoteExtendedFeaturesCompleteCode
	ExtendedInquiryResultEvent                EventCode = evt.ExtendedInquiryResultCode
	EncryptionKeyRefreshCompleteEvent         EventCode = evt.EncryptionKeyRefreshCompleteCode
	IOCapabilityRequestEvent                  EventCode = evt.IOCapabilityRequestCode
	IOCapabilityResponseEvent                 EventCode = evt.IOCapabilityResponseCode
	UserConfirmationRequestEvent              EventCode = evt.UserConfirmationRequestCode
	UserPasskeyRequestEvent                   EventCode = evt.UserPasskeyRequestCode
	SimplePairingCompleteEvent                EventCode = evt.SimplePairingCompleteCode
	UserPasskeyNotificationEvent              EventCode = evt.UserPasskeyNotificationCode
	VendorEvent                               EventCode = evt.VendorCode
)

var (
	LEConnectionCompleteEvent               = LEMetaEventCode(evt.LEConnectionCompleteSubCode)
	LEAdvertisingReportEvent                = LEMetaEventCode(evt.LEAdvertisingReportSubCode)
	LEConnectionUpdateCompleteEvent         = LEMetaEventCode(evt.LEConnectionUpdateCompleteSubCode)
	LEReadRemoteFeaturesCompleteEvent       = LEMetaEventCode(evt.LEReadRemoteFeaturesCompleteSubCode)
	LELongTermKeyRequestEvent               = LEMetaEventCode(evt.LELongTermKeyRequestSubCode)
	LERemoteConnectionParameterRequestEvent = LEMetaEventCode(evt.LERemoteConnectionParameterRequestSubCode)
)

// IsLEMeta reports whether the code names an LE Meta subevent.
func (c EventCode) IsLEMeta() bool {
	return c>>8 == evt.LEMetaCode
}

func (c EventCode) String() string {
	if c.IsLEMeta() {
		return fmt.Sprintf("LEMeta(0x%02X)", uint8(c))
	}
	return fmt.Sprintf("Event(0x%02X)", uint8(c))
}

// Event is a decoded event header with its parameter block. For LE Meta events
// Params starts with the subevent code, matching the evt views.
type Event struct {
	Code   EventCode
	Params []byte

	// hostErr is set on events synthesized by the host when a command could not be run.
	hostErr error
}

// Err returns the status carried by the event: the host failure for synthesized events,
// the controller status otherwise. It must only be used on events that carry a status.
func (e Event) Err() error {
	if e.hostErr != nil {
		return e.hostErr
	}
	var (
		s   uint8
		err error
	)
	switch {
	case e.Code == CommandCompleteEvent:
		s, err = evt.CommandComplete(e.Params).StatusWErr()
	case e.Code.IsLEMeta():
		s, err = getStatus(e.Params, 1)
	default:
		s, err = getStatus(e.Params, 0)
	}
	if err != nil {
		return err
	}
	return StatusErr(s)
}

// ReturnParameters returns the return parameters of a Command Complete event.
func (e Event) ReturnParameters() []byte {
	if e.Code != CommandCompleteEvent {
		return nil
	}
	return evt.CommandComplete(e.Params).ReturnParameters()
}

// Synthetic reports whether the event was produced locally.
func (e Event) Synthetic() bool {
	return e.hostErr != nil
}

func getStatus(b []byte, i int) (uint8, error) {
	if i >= len(b) {
		return 0xff, fmt.Errorf("event too short for status")
	}
	return b[i], nil
}

// failedStatusEvent builds a Command Status event carrying a host error.
func failedStatusEvent(opcode int, err error) Event {
	return Event{
		Code:    CommandStatusEvent,
		Params:  []byte{byte(ErrUnspecified), 0, byte(opcode), byte(opcode >> 8)},
		hostErr: err,
	}
}
