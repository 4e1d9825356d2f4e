package gap

import (
	"fmt"
	"reflect"
)

// SecurityLevel orders the protection a link provides.
type SecurityLevel int

const (
	SecurityNone SecurityLevel = iota
	SecurityEncrypted
	SecurityAuthenticated
	SecuritySecureAuthenticated
)

func (l SecurityLevel) String() string {
	switch l {
	case SecurityNone:
		return "none"
	case SecurityEncrypted:
		return "encrypted"
	case SecurityAuthenticated:
		return "authenticated"
	case SecuritySecureAuthenticated:
		return "secure-authenticated"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// SecurityProperties describe the key a link is (or will be) encrypted with.
type SecurityProperties struct {
	Level             SecurityLevel
	EncryptionKeySize int
	SecureConnections bool
}

func (p SecurityProperties) Authenticated() bool {
	return p.Level >= SecurityAuthenticated
}

func (p SecurityProperties) String() string {
	return fmt.Sprintf("level: %v, key size: %d, sc: %v", p.Level, p.EncryptionKeySize, p.SecureConnections)
}

// LinkKeyType is the BR/EDR key type reported in HCI Link Key Notification.
type LinkKeyType uint8

const (
	LinkKeyCombination                   LinkKeyType = 0x00
	LinkKeyLocalUnit                     LinkKeyType = 0x01
	LinkKeyRemoteUnit                    LinkKeyType = 0x02
	LinkKeyDebugCombination              LinkKeyType = 0x03
	LinkKeyUnauthenticatedCombination192 LinkKeyType = 0x04
	LinkKeyAuthenticatedCombination192   LinkKeyType = 0x05
	LinkKeyChangedCombination            LinkKeyType = 0x06
	LinkKeyUnauthenticatedCombination256 LinkKeyType = 0x07
	LinkKeyAuthenticatedCombination256   LinkKeyType = 0x08
)

// Legacy reports whether the key type comes from pre-SSP pairing.
func (t LinkKeyType) Legacy() bool {
	return t <= LinkKeyRemoteUnit
}

// SecurityPropertiesForLinkKey maps a BR/EDR key type onto the protection it offers.
// Legacy, debug and changed keys carry no usable security.
func SecurityPropertiesForLinkKey(t LinkKeyType) SecurityProperties {
	switch t {
	case LinkKeyUnauthenticatedCombination192:
		return SecurityProperties{Level: SecurityEncrypted, EncryptionKeySize: 16}
	case LinkKeyAuthenticatedCombination192:
		return SecurityProperties{Level: SecurityAuthenticated, EncryptionKeySize: 16}
	case LinkKeyUnauthenticatedCombination256:
		return SecurityProperties{Level: SecurityEncrypted, EncryptionKeySize: 16, SecureConnections: true}
	case LinkKeyAuthenticatedCombination256:
		return SecurityProperties{Level: SecuritySecureAuthenticated, EncryptionKeySize: 16, SecureConnections: true}
	}
	return SecurityProperties{Level: SecurityNone}
}

// LinkKeyType returns the BR/EDR key type with these properties.
func (p SecurityProperties) LinkKeyType() LinkKeyType {
	switch {
	case p.Authenticated() && p.SecureConnections:
		return LinkKeyAuthenticatedCombination256
	case p.Authenticated():
		return LinkKeyAuthenticatedCombination192
	case p.SecureConnections:
		return LinkKeyUnauthenticatedCombination256
	}
	return LinkKeyUnauthenticatedCombination192
}

// IOCapability is the local or remote input/output capability used to select an association model.
type IOCapability uint8

const (
	IODisplayOnly     IOCapability = 0x00
	IODisplayYesNo    IOCapability = 0x01
	IOKeyboardOnly    IOCapability = 0x02
	IONoInputNoOutput IOCapability = 0x03
	// IOKeyboardDisplay exists on LE only.
	IOKeyboardDisplay IOCapability = 0x04
)

func (c IOCapability) String() string {
	switch c {
	case IODisplayOnly:
		return "DisplayOnly"
	case IODisplayYesNo:
		return "DisplayYesNo"
	case IOKeyboardOnly:
		return "KeyboardOnly"
	case IONoInputNoOutput:
		return "NoInputNoOutput"
	case IOKeyboardDisplay:
		return "KeyboardDisplay"
	}
	return fmt.Sprintf("iocap(%d)", uint8(c))
}

// BREDR maps the capability onto the four values HCI accepts for Secure Simple Pairing.
func (c IOCapability) BREDR() IOCapability {
	if c == IOKeyboardDisplay {
		return IODisplayYesNo
	}
	return c
}

// BondableMode selects whether pairing distributes and stores long-term keys.
type BondableMode int

const (
	Bondable BondableMode = iota
	NonBondable
)

// Key is a 128-bit key along with the security it provides.
type Key struct {
	Security SecurityProperties
	Value    [16]byte
}

// LTK is an LE long term key (EDIV and Rand are zero for Secure Connections) or a BR/EDR link key.
type LTK struct {
	Security SecurityProperties
	Key      [16]byte
	EDiv     uint16
	Rand     uint64
}

// PairingData holds the keys exchanged with a peer during LE pairing.
type PairingData struct {
	IdentityAddress   *Address
	PeerLTK           *LTK
	LocalLTK          *LTK
	IRK               *Key
	CSRK              *Key
	CrossTransportKey *LTK
}

// Bondable reports whether the data contains enough to recognise or re-encrypt with the peer.
func (d PairingData) Bondable() bool {
	return d.PeerLTK != nil || d.LocalLTK != nil || d.IRK != nil
}

// Equal compares the key material of two pairing records.
func (d PairingData) Equal(o PairingData) bool {
	return reflect.DeepEqual(d, o)
}

// DisplayMethod tells the delegate how a displayed passkey is used.
type DisplayMethod int

const (
	DisplayComparison DisplayMethod = iota
	DisplayPeerEntry
)

// PairingDelegate is supplied by the application to interact with the user during pairing.
// Every response continuation must be invoked at most once; it may be called from any
// goroutine only if the caller posts it back to the stack's dispatcher.
type PairingDelegate interface {
	IOCapability() IOCapability
	CompletePairing(id PeerID, err error)
	ConfirmPairing(id PeerID, confirm func(bool))
	DisplayPasskey(id PeerID, passkey uint32, method DisplayMethod, confirm func(bool))
	// RequestPasskey expects a non-negative passkey, or a negative value to reject.
	RequestPasskey(id PeerID, respond func(passkey int64))
}
