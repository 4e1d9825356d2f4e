package adv

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
)

// https://www.bluetooth.org/en-us/specification/assigned-numbers/generic-access-profile
var types = struct {
	flags       byte
	uuid16inc   byte
	uuid16comp  byte
	uuid32inc   byte
	uuid32comp  byte
	uuid128inc  byte
	uuid128comp byte
	nameshort   byte
	namecomp    byte
	txpwr       byte
	cod         byte
	sol16       byte
	sol128      byte
	svc16       byte
	appearance  byte
	sol32       byte
	svc32       byte
	svc128      byte
	mfgdata     byte
}{
	flags:       0x01,
	uuid16inc:   0x02,
	uuid16comp:  0x03,
	uuid32inc:   0x04,
	uuid32comp:  0x05,
	uuid128inc:  0x06,
	uuid128comp: 0x07,
	nameshort:   0x08,
	namecomp:    0x09,
	txpwr:       0x0a,
	cod:         0x0d,
	sol16:       0x14,
	sol128:      0x15,
	svc16:       0x16,
	appearance:  0x19,
	sol32:       0x1f,
	svc32:       0x20,
	svc128:      0x21,
	mfgdata:     0xff,
}

type field int

const (
	fieldFlags field = iota
	fieldServices
	fieldSolicited
	fieldServiceData
	fieldName
	fieldTxPower
	fieldClass
	fieldAppearance
	fieldManufacturer
)

type pduRecord struct {
	arrayElementSz int
	minSz          int
	maxSz          int
	field          field
}

var pduDecodeMap = map[byte]pduRecord{
	types.flags:       {0, 1, 0, fieldFlags},
	types.uuid16inc:   {2, 2, 0, fieldServices},
	types.uuid16comp:  {2, 2, 0, fieldServices},
	types.uuid32inc:   {4, 4, 0, fieldServices},
	types.uuid32comp:  {4, 4, 0, fieldServices},
	types.uuid128inc:  {16, 16, 0, fieldServices},
	types.uuid128comp: {16, 16, 0, fieldServices},
	types.nameshort:   {0, 1, 0, fieldName},
	types.namecomp:    {0, 1, 0, fieldName},
	types.txpwr:       {0, 1, 1, fieldTxPower},
	types.cod:         {0, 3, 3, fieldClass},
	types.sol16:       {2, 2, 0, fieldSolicited},
	types.sol32:       {4, 4, 0, fieldSolicited},
	types.sol128:      {16, 16, 0, fieldSolicited},
	types.svc16:       {0, 2, 0, fieldServiceData},
	types.svc32:       {0, 4, 0, fieldServiceData},
	types.svc128:      {0, 16, 0, fieldServiceData},
	types.appearance:  {0, 2, 2, fieldAppearance},
	types.mfgdata:     {0, 2, 0, fieldManufacturer},
}

// service data UUID width per AD type
var svcDataUUIDSz = map[byte]int{
	types.svc16:  2,
	types.svc32:  4,
	types.svc128: 16,
}

func getArray(size int, bytes []byte) ([][]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size")
	}

	if len(bytes) == 0 {
		return nil, fmt.Errorf("nil/empty bytes")
	}

	count := len(bytes) / size
	rem := len(bytes) % size
	if rem != 0 || count == 0 {
		return nil, fmt.Errorf("incorrect size")
	}

	arr := make([][]byte, 0, count)
	for j := 0; j < len(bytes); j += size {
		arr = append(arr, bytes[j:(j+size)])
	}

	return arr, nil
}

func getUUIDs(size int, bytes []byte) ([]uuid.UUID, error) {
	arr, err := getArray(size, bytes)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(arr))
	for _, b := range arr {
		u, ok := gap.UUIDFromLE(b)
		if !ok {
			return nil, fmt.Errorf("invalid uuid length %d", len(b))
		}
		out = append(out, u)
	}
	return out, nil
}

// Parse decodes advertising data or an extended inquiry response into Data.
// A zero length octet ends the significant part, as in EIR padding.
// Unknown AD types are kept only in Raw.
func Parse(pdu []byte) (*Data, error) {
	if pdu == nil {
		return nil, fmt.Errorf("nil pdu")
	}

	d := &Data{Raw: make([]byte, 0, len(pdu))}
	for i := 0; (i + 1) < len(pdu); {
		// length @ offset 0
		// type @ offset 1
		// data @ 2 - length
		length := int(pdu[i])
		if length == 0 {
			break
		}
		typ := pdu[i+1]

		if (i + length) >= len(pdu) {
			return nil, fmt.Errorf("buffer overflow: want %v, have %v", (i + length), len(pdu))
		}

		start := i + 2
		end := start + length - 1
		bytes := pdu[start:end]
		d.Raw = append(d.Raw, pdu[i:end]...)
		i = end

		dec, ok := pduDecodeMap[typ]
		if !ok {
			continue
		}
		if dec.minSz > len(bytes) {
			return nil, fmt.Errorf("adv type %v: min length %v, have %v", typ, dec.minSz, len(bytes))
		}
		if dec.maxSz > 0 && len(bytes) > dec.maxSz {
			return nil, fmt.Errorf("adv type %v: max length %v, have %v", typ, dec.maxSz, len(bytes))
		}

		if err := d.set(typ, dec, bytes); err != nil {
			return nil, errors.Wrapf(err, "adv type %v", typ)
		}
	}

	return d, nil
}

func (d *Data) set(typ byte, dec pduRecord, bytes []byte) error {
	switch dec.field {
	case fieldFlags:
		d.Flags = bytes[0]
		d.HasFlags = true

	case fieldServices:
		u, err := getUUIDs(dec.arrayElementSz, bytes)
		if err != nil {
			return err
		}
		d.Services = append(d.Services, u...)

	case fieldSolicited:
		u, err := getUUIDs(dec.arrayElementSz, bytes)
		if err != nil {
			return err
		}
		d.Solicited = append(d.Solicited, u...)

	case fieldServiceData:
		sz := svcDataUUIDSz[typ]
		u, _ := gap.UUIDFromLE(bytes[:sz])
		d.ServiceData = append(d.ServiceData, ServiceData{
			UUID: u,
			Data: append([]byte(nil), bytes[sz:]...),
		})

	case fieldName:
		complete := typ == types.namecomp
		// a shortened name never replaces a complete one
		if d.NameComplete && !complete {
			return nil
		}
		d.Name = string(bytes)
		d.NameComplete = complete

	case fieldTxPower:
		p := int8(bytes[0])
		d.TxPower = &p

	case fieldClass:
		c := uint32(bytes[0]) | uint32(bytes[1])<<8 | uint32(bytes[2])<<16
		d.ClassOfDevice = &c

	case fieldAppearance:
		a := binary.LittleEndian.Uint16(bytes)
		d.Appearance = &a

	case fieldManufacturer:
		d.Manufacturer = append([]byte(nil), bytes...)
	}
	return nil
}
