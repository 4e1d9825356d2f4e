package hci

import (
	"testing"

	"github.com/rigado/gap"
	"github.com/stretchr/testify/assert"
)

func TestEventErr(t *testing.T) {
	tests := []struct {
		name string
		e    Event
		want error
	}{
		{"command complete ok", Event{Code: CommandCompleteEvent, Params: []byte{1, 0x09, 0x10, 0x00}}, nil},
		{"command complete failed", Event{Code: CommandCompleteEvent, Params: []byte{1, 0x09, 0x10, 0x0c}}, ErrDisallowed},
		{"command status", Event{Code: CommandStatusEvent, Params: []byte{0x1a, 1, 0x13, 0x20}}, ErrUnsupportedRemoteFeature},
		{"le meta", Event{Code: LEConnectionUpdateCompleteEvent, Params: []byte{0x03, 0x3b}}, ErrUnacceptableConnParameters},
		{"plain", Event{Code: AuthenticationCompleteEvent, Params: []byte{0x05, 0x40, 0x00}}, ErrAuth},
		{"synthetic", failedStatusEvent(0x0401, gap.ErrTimedOut), gap.ErrTimedOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.e.Err())
		})
	}
}

func TestEventCode(t *testing.T) {
	assert.Equal(t, EventCode(0x3e01), LEConnectionCompleteEvent)
	assert.True(t, LELongTermKeyRequestEvent.IsLEMeta())
	assert.False(t, InquiryCompleteEvent.IsLEMeta())
	assert.Equal(t, "LEMeta(0x06)", LERemoteConnectionParameterRequestEvent.String())
}

func TestErrCommand(t *testing.T) {
	assert.Equal(t, "unsupported remote feature", ErrUnsupportedRemoteFeature.Error())
	assert.Equal(t, "hci status 0x7F", ErrCommand(0x7f).Error())
	assert.Nil(t, StatusErr(0))
	assert.True(t, IsStatus(StatusErr(0x3e), ErrConnFailedToBeEstablished))
	assert.False(t, IsStatus(nil, ErrConnFailedToBeEstablished))
}

func TestValidatePreferredParameters(t *testing.T) {
	assert.NoError(t, DefaultInitialConnectionParameters.Validate())
	assert.NoError(t, DefaultPreferredConnectionParameters.Validate())

	p := DefaultPreferredConnectionParameters
	p.MinInterval = p.MaxInterval + 1
	assert.Error(t, p.Validate())

	p = DefaultPreferredConnectionParameters
	p.SupervisionTimeout = SupervisionTimeoutMin
	assert.Error(t, p.Validate())

	assert.NoError(t, ValidateScanParams(DefaultScanParameters))
}
