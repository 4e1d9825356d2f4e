package sm

import "github.com/rigado/gap"

// Method is the association model selected for a pairing.
type Method int

const (
	JustWorks Method = iota
	NumericComparison
	// PasskeyDisplay: the local device shows the passkey the peer enters.
	PasskeyDisplay
	// PasskeyInput: the local user enters the passkey.
	PasskeyInput
)

var methodStrings = map[Method]string{
	JustWorks:         "just works",
	NumericComparison: "numeric comparison",
	PasskeyDisplay:    "passkey display",
	PasskeyInput:      "passkey input",
}

func (m Method) String() string { return methodStrings[m] }

// Authenticated reports whether the method protects against MITM.
func (m Method) Authenticated() bool { return m != JustWorks }

const (
	jw = iota
	nc
	pk
)

//Core spec v5.0 Vol 3, Part H, 2.3.5.1
//Tables 2.6, 2.7, and 2.8
//Rows are the responder's capability, columns the initiator's.
var ioCapsTableSC = [][]int{
	{jw, jw, pk, jw, pk},
	{jw, nc, pk, jw, nc},
	{pk, pk, pk, jw, pk},
	{jw, jw, jw, jw, jw},
	{pk, nc, pk, jw, nc},
}

var ioCapsTableLegacy = [][]int{
	{jw, jw, pk, jw, pk},
	{jw, jw, pk, jw, pk},
	{pk, pk, pk, jw, pk},
	{jw, jw, jw, jw, jw},
	{pk, pk, pk, jw, pk},
}

// selectMethod picks the association model from the local point of view.
func selectMethod(sc, initiator, mitm bool, local, remote gap.IOCapability) Method {
	if !mitm {
		return JustWorks
	}
	if local > gap.IOKeyboardDisplay || remote > gap.IOKeyboardDisplay {
		return JustWorks
	}

	initCap, respCap := local, remote
	if !initiator {
		initCap, respCap = remote, local
	}

	table := ioCapsTableSC
	if !sc {
		table = ioCapsTableLegacy
	}

	switch table[respCap][initCap] {
	case nc:
		return NumericComparison
	case pk:
		return passkeyRole(initiator, local, remote)
	}
	return JustWorks
}

// passkeyRole decides which side displays the passkey.
func passkeyRole(initiator bool, local, remote gap.IOCapability) Method {
	switch {
	case local == gap.IOKeyboardOnly:
		return PasskeyInput
	case remote == gap.IOKeyboardOnly:
		return PasskeyDisplay
	case local == gap.IOKeyboardDisplay && remote == gap.IOKeyboardDisplay:
		if initiator {
			return PasskeyInput
		}
		return PasskeyDisplay
	case local == gap.IOKeyboardDisplay:
		return PasskeyInput
	}
	return PasskeyDisplay
}

// securityFor returns the properties of a key obtained with m.
func securityFor(m Method, sc bool, keySize int) gap.SecurityProperties {
	p := gap.SecurityProperties{
		Level:             gap.SecurityEncrypted,
		EncryptionKeySize: keySize,
		SecureConnections: sc,
	}
	if m.Authenticated() {
		p.Level = gap.SecurityAuthenticated
		if sc {
			p.Level = gap.SecuritySecureAuthenticated
		}
	}
	return p
}
