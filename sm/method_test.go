package sm

import (
	"testing"

	"github.com/rigado/gap"
	"github.com/stretchr/testify/assert"
)

func TestSelectMethod(t *testing.T) {
	tests := []struct {
		name      string
		sc        bool
		initiator bool
		mitm      bool
		local     gap.IOCapability
		remote    gap.IOCapability
		exp       Method
	}{
		{"no mitm", true, true, false, gap.IOKeyboardDisplay, gap.IOKeyboardDisplay, JustWorks},
		{"no io", true, true, true, gap.IONoInputNoOutput, gap.IOKeyboardDisplay, JustWorks},
		{"yes/no both sides sc", true, true, true, gap.IODisplayYesNo, gap.IODisplayYesNo, NumericComparison},
		{"yes/no both sides legacy", false, true, true, gap.IODisplayYesNo, gap.IODisplayYesNo, JustWorks},
		{"keyboard initiator", true, true, true, gap.IOKeyboardOnly, gap.IODisplayOnly, PasskeyInput},
		{"display responder", true, false, true, gap.IODisplayOnly, gap.IOKeyboardOnly, PasskeyDisplay},
		{"both keyboards", false, true, true, gap.IOKeyboardOnly, gap.IOKeyboardOnly, PasskeyInput},
		{"keyboard display initiator legacy", false, true, true, gap.IOKeyboardDisplay, gap.IOKeyboardDisplay, PasskeyInput},
		{"keyboard display responder legacy", false, false, true, gap.IOKeyboardDisplay, gap.IOKeyboardDisplay, PasskeyDisplay},
		{"display only both", true, true, true, gap.IODisplayOnly, gap.IODisplayOnly, JustWorks},
		{"out of range", true, true, true, gap.IOCapability(9), gap.IODisplayOnly, JustWorks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, selectMethod(tt.sc, tt.initiator, tt.mitm, tt.local, tt.remote))
		})
	}
}

func TestSecurityFor(t *testing.T) {
	assert.Equal(t, gap.SecurityProperties{Level: gap.SecurityEncrypted, EncryptionKeySize: 16}, securityFor(JustWorks, false, 16))
	assert.Equal(t, gap.SecurityAuthenticated, securityFor(PasskeyInput, false, 16).Level)
	assert.Equal(t, gap.SecuritySecureAuthenticated, securityFor(NumericComparison, true, 16).Level)
	assert.Equal(t, 7, securityFor(JustWorks, true, 7).EncryptionKeySize)
}
