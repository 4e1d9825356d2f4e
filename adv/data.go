package adv

import (
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// Flags bits of the Flags AD type.
const (
	FlagLimitedDiscoverable = 0x01
	FlagGeneralDiscoverable = 0x02
	FlagLEOnly              = 0x04
)

// ServiceData is a service UUID with its associated payload.
type ServiceData struct {
	UUID uuid.UUID
	Data []byte
}

// Data is the decoded content of an advertising report or extended inquiry response.
type Data struct {
	Flags         byte
	HasFlags      bool
	Name          string
	NameComplete  bool
	Services      []uuid.UUID
	Solicited     []uuid.UUID
	ServiceData   []ServiceData
	TxPower       *int8
	Appearance    *uint16
	ClassOfDevice *uint32
	Manufacturer  []byte

	// Raw holds the significant part of the payload, padding stripped.
	Raw []byte
}

// ManufacturerID returns the company identifier of the manufacturer specific data.
func (d *Data) ManufacturerID() (uint16, bool) {
	if len(d.Manufacturer) < 2 {
		return 0, false
	}
	return binary.LittleEndian.Uint16(d.Manufacturer), true
}

// HasService reports whether u is in the advertised service list.
func (d *Data) HasService(u uuid.UUID) bool {
	for _, s := range d.Services {
		if s == u {
			return true
		}
	}
	return false
}

// MatchName does a case-insensitive substring match against the advertised name.
func (d *Data) MatchName(sub string) bool {
	return strings.Contains(strings.ToLower(d.Name), strings.ToLower(sub))
}

// Discoverable reports whether the flags allow discovery (limited or general).
func (d *Data) Discoverable() bool {
	return d.HasFlags && d.Flags&(FlagLimitedDiscoverable|FlagGeneralDiscoverable) != 0
}

// Equal compares the raw payloads.
func (d *Data) Equal(o *Data) bool {
	if d == nil || o == nil {
		return d == o
	}
	return bytes.Equal(d.Raw, o.Raw)
}
