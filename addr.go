package gap

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rigado/gap/sliceops"
)

// AddressType identifies the transport and kind of a device address.
type AddressType uint8

const (
	AddressBREDR AddressType = iota
	AddressLEPublic
	AddressLERandom
	AddressLEAnonymous
)

func (t AddressType) String() string {
	switch t {
	case AddressBREDR:
		return "br/edr"
	case AddressLEPublic:
		return "le-public"
	case AddressLERandom:
		return "le-random"
	case AddressLEAnonymous:
		return "le-anonymous"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Address is a device address. Value holds the BD_ADDR in controller (little-endian) order.
type Address struct {
	Type  AddressType
	Value [6]byte
}

// NewAddress builds an address from wire order bytes.
func NewAddress(t AddressType, b []byte) Address {
	a := Address{Type: t}
	copy(a.Value[:], b)
	return a
}

// ParseAddress parses "aa:bb:cc:dd:ee:ff" (most significant octet first).
func ParseAddress(t AddressType, s string) (Address, error) {
	b, err := hex.DecodeString(strings.Replace(s, ":", "", -1))
	if err != nil {
		return Address{}, errors.Wrapf(err, "parse address %q", s)
	}
	if len(b) != 6 {
		return Address{}, errors.Errorf("invalid address length %d", len(b))
	}
	return NewAddress(t, sliceops.SwapBuf(b)), nil
}

// Bytes returns the address in wire order.
func (a Address) Bytes() []byte {
	out := make([]byte, 6)
	copy(out, a.Value[:])
	return out
}

func (a Address) String() string {
	be := sliceops.SwapBuf(a.Value[:])
	parts := make([]string, len(be))
	for i, v := range be {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, ":") + " (" + a.Type.String() + ")"
}

// IsPublic reports whether the address is a public device address on either transport.
func (a Address) IsPublic() bool {
	return a.Type == AddressBREDR || a.Type == AddressLEPublic
}

// IsResolvablePrivate reports whether a is an LE resolvable private address.
func (a Address) IsResolvablePrivate() bool {
	return a.Type == AddressLERandom && a.Value[5]&0xc0 == 0x40
}

// IsNonResolvablePrivate reports whether a is an LE non-resolvable private address.
func (a Address) IsNonResolvablePrivate() bool {
	return a.Type == AddressLERandom && a.Value[5]&0xc0 == 0x00
}

// IsStaticRandom reports whether a is an LE static random address.
func (a Address) IsStaticRandom() bool {
	return a.Type == AddressLERandom && a.Value[5]&0xc0 == 0xc0
}

// Key returns a map key that treats BR/EDR and LE public addresses as the same identity.
func (a Address) Key() string {
	t := a.Type
	if a.IsPublic() {
		t = AddressBREDR
	}
	return fmt.Sprintf("%d/%s", t, hex.EncodeToString(a.Value[:]))
}

// Equal compares two addresses, treating public addresses as equal across transports.
func (a Address) Equal(b Address) bool {
	return a.Key() == b.Key()
}

// HCIType returns the LE address type octet used in HCI commands.
func (a Address) HCIType() uint8 {
	if a.Type == AddressLERandom || a.Type == AddressLEAnonymous {
		return 0x01
	}
	return 0x00
}

// LEAddressFromHCI converts an HCI LE peer address type and value into an Address.
func LEAddressFromHCI(t uint8, b []byte) Address {
	switch t {
	case 0x01, 0x03:
		return NewAddress(AddressLERandom, b)
	case 0xff:
		return NewAddress(AddressLEAnonymous, b)
	}
	return NewAddress(AddressLEPublic, b)
}
