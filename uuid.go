package gap

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// BaseUUID is the Bluetooth base UUID 00000000-0000-1000-8000-00805F9B34FB.
var BaseUUID = uuid.MustParse("00000000-0000-1000-8000-00805f9b34fb")

// UUID16 expands a 16-bit assigned number into a full UUID.
func UUID16(v uint16) uuid.UUID {
	u := BaseUUID
	binary.BigEndian.PutUint16(u[2:4], v)
	return u
}

// UUID32 expands a 32-bit assigned number into a full UUID.
func UUID32(v uint32) uuid.UUID {
	u := BaseUUID
	binary.BigEndian.PutUint32(u[0:4], v)
	return u
}

// UUIDFromLE decodes a 2, 4 or 16 octet little-endian UUID as carried in AD and ATT PDUs.
func UUIDFromLE(b []byte) (uuid.UUID, bool) {
	switch len(b) {
	case 2:
		return UUID16(binary.LittleEndian.Uint16(b)), true
	case 4:
		return UUID32(binary.LittleEndian.Uint32(b)), true
	case 16:
		var u uuid.UUID
		for i := range b {
			u[15-i] = b[i]
		}
		return u, true
	}
	return uuid.UUID{}, false
}

var (
	GenericAccessService              = UUID16(0x1800)
	DeviceNameCharacteristic          = UUID16(0x2a00)
	AppearanceCharacteristic          = UUID16(0x2a01)
	PeripheralPreferredConnParamsChar = UUID16(0x2a04)
)
