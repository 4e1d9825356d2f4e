// Package peer keeps the records of remote devices known to the stack.
package peer

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rigado/gap"
	"github.com/rigado/gap/adv"
	"github.com/rigado/gap/hci"
)

// ConnectionState is the state of a peer's link on one transport.
type ConnectionState int

const (
	NotConnected ConnectionState = iota
	Initializing
	Connected
)

func (s ConnectionState) String() string {
	switch s {
	case NotConnected:
		return "not connected"
	case Initializing:
		return "initializing"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// RSSIInvalid is reported when no signal strength has been measured.
const RSSIInvalid int8 = 127

// VersionInfo is the result of Read Remote Version Information.
type VersionInfo struct {
	Version      uint8
	Manufacturer uint16
	Subversion   uint16
}

// Peer is a remote device. Peers are owned by a Cache and must only be
// used on the Cache's dispatcher.
type Peer struct {
	c *Cache

	id            gap.PeerID
	address       gap.Address
	identityKnown bool
	connectable   bool
	temporary     bool

	name      string
	nameKnown bool
	rssi      int8

	version     *VersionInfo
	lmpFeatures [3]uint64
	lmpMaxPage  uint8
	lmpPages    uint8 // bit per page read

	le    *LowEnergyData
	bredr *BrEdrData

	lastUpdated time.Time
}

func newPeer(c *Cache, id gap.PeerID, addr gap.Address, connectable bool) *Peer {
	p := &Peer{
		c:             c,
		id:            id,
		address:       addr,
		identityKnown: isIdentity(addr),
		connectable:   connectable,
		temporary:     true,
		rssi:          RSSIInvalid,
		lastUpdated:   c.d.Now(),
	}
	if addr.Type == gap.AddressBREDR {
		p.bredr = &BrEdrData{p: p, address: addr}
	} else {
		p.le = &LowEnergyData{p: p}
	}
	return p
}

func isIdentity(a gap.Address) bool {
	return a.IsPublic() || a.IsStaticRandom()
}

func (p *Peer) ID() gap.PeerID { return p.id }

// Address is the identity address if known, otherwise the most recently used one.
func (p *Peer) Address() gap.Address { return p.address }

func (p *Peer) IdentityKnown() bool { return p.identityKnown }
func (p *Peer) Connectable() bool   { return p.connectable }

// Temporary peers are evicted from the cache when they go unused.
func (p *Peer) Temporary() bool { return p.temporary }

func (p *Peer) Name() (string, bool) { return p.name, p.nameKnown }
func (p *Peer) RSSI() int8           { return p.rssi }

func (p *Peer) Version() *VersionInfo  { return p.version }
func (p *Peer) LastUpdated() time.Time { return p.lastUpdated }

// LE returns the LE data, or nil if the peer was never seen on LE.
func (p *Peer) LE() *LowEnergyData { return p.le }

// BrEdr returns the BR/EDR data, or nil if the peer was never seen on BR/EDR.
func (p *Peer) BrEdr() *BrEdrData { return p.bredr }

// MutLE returns the LE data, creating it for a dual-mode peer.
func (p *Peer) MutLE() *LowEnergyData {
	if p.le == nil {
		p.le = &LowEnergyData{p: p}
		p.changed()
	}
	return p.le
}

// MutBrEdr returns the BR/EDR data, creating it for a dual-mode peer.
// Only peers with a public identity address can be reached over BR/EDR.
func (p *Peer) MutBrEdr() *BrEdrData {
	if p.bredr == nil {
		a := p.address
		a.Type = gap.AddressBREDR
		p.bredr = &BrEdrData{p: p, address: a}
		p.changed()
	}
	return p.bredr
}

// Connected reports whether a link on either transport is initializing or up.
func (p *Peer) Connected() bool {
	return (p.le != nil && p.le.connState != NotConnected) ||
		(p.bredr != nil && p.bredr.connState != NotConnected)
}

// Bonded reports whether keys are stored for either transport.
func (p *Peer) Bonded() bool {
	return (p.le != nil && p.le.Bonded()) || (p.bredr != nil && p.bredr.Bonded())
}

func (p *Peer) SetName(name string) {
	if p.nameKnown && p.name == name {
		return
	}
	p.name = name
	p.nameKnown = true
	p.changed()
}

func (p *Peer) SetRSSI(rssi int8) {
	p.rssi = rssi
	p.touch()
}

// SetConnectable only ever upgrades; a non-connectable advertisement does not
// make a peer unreachable.
func (p *Peer) SetConnectable(c bool) {
	if p.connectable || !c {
		return
	}
	p.connectable = true
	p.changed()
}

func (p *Peer) SetVersion(v VersionInfo) {
	p.version = &v
	p.changed()
}

// LMPFeatures returns the LMP feature page if it has been read.
func (p *Peer) LMPFeatures(page uint8) (uint64, bool) {
	if int(page) >= len(p.lmpFeatures) || p.lmpPages&(1<<page) == 0 {
		return 0, false
	}
	return p.lmpFeatures[page], true
}

func (p *Peer) LMPMaxPage() uint8 { return p.lmpMaxPage }

func (p *Peer) SetLMPFeatures(page uint8, f uint64) {
	if int(page) >= len(p.lmpFeatures) {
		return
	}
	p.lmpFeatures[page] = f
	p.lmpPages |= 1 << page
	p.changed()
}

func (p *Peer) SetLMPMaxPage(max uint8) {
	p.lmpMaxPage = max
}

func (p *Peer) String() string {
	return fmt.Sprintf("peer %v (%v)", p.id, p.address)
}

// touch records activity without notifying listeners.
func (p *Peer) touch() {
	p.lastUpdated = p.c.d.Now()
	p.c.updateExpiry(p)
}

func (p *Peer) changed() {
	p.lastUpdated = p.c.d.Now()
	p.c.notifyUpdated(p)
	p.c.updateExpiry(p)
}

// connectionStateChanged applies the temporary rules after a transport changed state.
func (p *Peer) connectionStateChanged() {
	if p.Connected() {
		p.temporary = false
	} else if !p.Bonded() && !p.identityKnown {
		p.temporary = true
	}
	p.changed()
}

// LowEnergyData holds what is known about a peer on the LE transport.
type LowEnergyData struct {
	p *Peer

	connState ConnectionState
	advData   *adv.Data
	advTime   time.Time

	features      uint64
	featuresKnown bool

	connParams *hci.LEConnectionParameters
	preferred  *hci.LEPreferredConnectionParameters

	bond *gap.PairingData
}

func (d *LowEnergyData) ConnectionState() ConnectionState { return d.connState }

func (d *LowEnergyData) SetConnectionState(s ConnectionState) {
	if d.connState == s {
		return
	}
	d.p.c.log.Debugf("%v: le %v -> %v", d.p, d.connState, s)
	d.connState = s
	d.p.connectionStateChanged()
}

// AdvertisingData is the most recent advertising and scan response content.
func (d *LowEnergyData) AdvertisingData() *adv.Data { return d.advData }

func (d *LowEnergyData) AdvertisingTime() time.Time { return d.advTime }

// SetAdvertisingData records a report. Listeners are only notified when the
// content changes; the RSSI alone is not worth a notification.
func (d *LowEnergyData) SetAdvertisingData(rssi int8, data *adv.Data) {
	d.p.rssi = rssi
	d.advTime = d.p.c.d.Now()
	if data.Name != "" && (data.NameComplete || !d.p.nameKnown) {
		d.p.name = data.Name
		d.p.nameKnown = true
	}
	if d.advData.Equal(data) {
		d.p.touch()
		return
	}
	d.advData = data
	d.p.changed()
}

// Features returns the LE feature mask read from the peer.
func (d *LowEnergyData) Features() (uint64, bool) { return d.features, d.featuresKnown }

func (d *LowEnergyData) SetFeatures(f uint64) {
	d.features = f
	d.featuresKnown = true
	d.p.changed()
}

func (d *LowEnergyData) ConnectionParameters() *hci.LEConnectionParameters { return d.connParams }

func (d *LowEnergyData) SetConnectionParameters(p hci.LEConnectionParameters) {
	d.connParams = &p
	d.p.changed()
}

// PreferredConnectionParameters are the parameters the peer asked for, if any.
func (d *LowEnergyData) PreferredConnectionParameters() *hci.LEPreferredConnectionParameters {
	return d.preferred
}

func (d *LowEnergyData) SetPreferredConnectionParameters(p hci.LEPreferredConnectionParameters) {
	d.preferred = &p
	d.p.changed()
}

func (d *LowEnergyData) Bonded() bool { return d.bond != nil && d.bond.Bondable() }

// BondData returns the stored LE keys.
func (d *LowEnergyData) BondData() *gap.PairingData { return d.bond }

// InquiryData is one response from a BR/EDR inquiry.
type InquiryData struct {
	PageScanRepetitionMode uint8
	ClassOfDevice          uint32
	ClockOffset            uint16
	RSSI                   *int8
	EIR                    *adv.Data
}

// BrEdrData holds what is known about a peer on the BR/EDR transport.
type BrEdrData struct {
	p *Peer

	connState ConnectionState
	address   gap.Address

	classOfDevice *uint32
	psrm          *uint8
	clockOffset   *uint16
	eir           *adv.Data

	linkKey  *gap.LTK
	services []uuid.UUID
}

func (d *BrEdrData) ConnectionState() ConnectionState { return d.connState }

func (d *BrEdrData) SetConnectionState(s ConnectionState) {
	if d.connState == s {
		return
	}
	d.p.c.log.Debugf("%v: br/edr %v -> %v", d.p, d.connState, s)
	d.connState = s
	d.p.connectionStateChanged()
}

func (d *BrEdrData) Address() gap.Address { return d.address }

func (d *BrEdrData) ClassOfDevice() (uint32, bool) {
	if d.classOfDevice == nil {
		return 0, false
	}
	return *d.classOfDevice, true
}

// PageScanRepetitionMode and ClockOffset speed up paging; they are only valid
// when learned from an inquiry.
func (d *BrEdrData) PageScanRepetitionMode() (uint8, bool) {
	if d.psrm == nil {
		return 0, false
	}
	return *d.psrm, true
}

func (d *BrEdrData) ClockOffset() (uint16, bool) {
	if d.clockOffset == nil {
		return 0, false
	}
	return *d.clockOffset, true
}

func (d *BrEdrData) ExtendedInquiryResponse() *adv.Data { return d.eir }

// SetInquiryData records an inquiry result.
func (d *BrEdrData) SetInquiryData(r InquiryData) {
	psrm, cod, offset := r.PageScanRepetitionMode, r.ClassOfDevice, r.ClockOffset|0x8000
	d.psrm = &psrm
	d.classOfDevice = &cod
	d.clockOffset = &offset
	if r.RSSI != nil {
		d.p.rssi = *r.RSSI
	}
	if r.EIR != nil {
		d.eir = r.EIR
		if r.EIR.Name != "" && (r.EIR.NameComplete || !d.p.nameKnown) {
			d.p.name = r.EIR.Name
			d.p.nameKnown = true
		}
		d.services = append(d.services[:0], r.EIR.Services...)
	}
	d.p.connectable = true
	d.p.changed()
}

func (d *BrEdrData) SetClassOfDevice(cod uint32) {
	d.classOfDevice = &cod
	d.p.changed()
}

// Services are the service UUIDs advertised in the extended inquiry response.
func (d *BrEdrData) Services() []uuid.UUID { return d.services }

func (d *BrEdrData) Bonded() bool { return d.linkKey != nil }

// LinkKey returns the stored link key.
func (d *BrEdrData) LinkKey() *gap.LTK { return d.linkKey }
