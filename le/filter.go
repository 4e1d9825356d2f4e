package le

import (
	"github.com/google/uuid"
	"github.com/rigado/gap/peer"
)

// DiscoveryFilter selects the peers a discovery session reports. The zero
// value matches every peer.
type DiscoveryFilter struct {
	// GeneralDiscovery only passes peers advertising the limited or general
	// discoverable flag.
	GeneralDiscovery bool
	Connectable      *bool
	// NameSubstring is matched case-insensitively against the advertised name.
	NameSubstring string
	// ServiceUUIDs passes peers advertising any of the services.
	ServiceUUIDs     []uuid.UUID
	MinRSSI          *int8
	ManufacturerCode *uint16
}

// Matches reports whether the most recent advertisement of p passes the filter.
func (f *DiscoveryFilter) Matches(p *peer.Peer) bool {
	if f == nil {
		return true
	}
	le := p.LE()
	if le == nil || le.AdvertisingData() == nil {
		return false
	}
	data := le.AdvertisingData()

	if f.GeneralDiscovery && !data.Discoverable() {
		return false
	}
	if f.Connectable != nil && *f.Connectable != p.Connectable() {
		return false
	}
	if f.NameSubstring != "" && !data.MatchName(f.NameSubstring) {
		return false
	}
	if f.MinRSSI != nil && p.RSSI() < *f.MinRSSI {
		return false
	}
	if f.ManufacturerCode != nil {
		if id, ok := data.ManufacturerID(); !ok || id != *f.ManufacturerCode {
			return false
		}
	}
	if len(f.ServiceUUIDs) > 0 {
		for _, u := range f.ServiceUUIDs {
			if data.HasService(u) {
				return true
			}
		}
		return false
	}
	return true
}
