package adapter

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/le"
	"github.com/rigado/gap/peer"
)

// BondStore persists the bonds of the peer cache.
type BondStore interface {
	Track(c *peer.Cache) peer.ListenerID
	Restore(c *peer.Cache) (int, error)
	Delete(id gap.PeerID) error
}

// scan interval and window are in units of 0.625 ms
const scanUnit = 625 * time.Microsecond

// SetLogger replaces the adapter logger.
func (a *Adapter) SetLogger(l gap.Logger) error {
	if l == nil {
		return errors.New("nil logger")
	}
	a.log = l
	return nil
}

// SetIOCapability overrides the capability reported by the pairing delegate.
func (a *Adapter) SetIOCapability(c gap.IOCapability) error {
	if c > gap.IOKeyboardDisplay {
		return errors.Errorf("invalid io capability %d", c)
	}
	a.ioCap = &c
	return nil
}

// SetLEConnectionTimeout bounds LE Create Connection.
func (a *Adapter) SetLEConnectionTimeout(d time.Duration) error {
	if d <= 0 {
		return errors.Errorf("invalid connection timeout %v", d)
	}
	a.leTimeout = d
	return nil
}

// SetLocalName sets the name written to the controller during initialization.
func (a *Adapter) SetLocalName(name string) error {
	if len(name) > 248 {
		return errors.Errorf("local name is %d bytes, at most 248 allowed", len(name))
	}
	a.localName = name
	return nil
}

// SetDeviceClass sets the class of device written during initialization.
func (a *Adapter) SetDeviceClass(cod uint32) error {
	if cod > 0xffffff {
		return errors.Errorf("invalid class of device 0x%x", cod)
	}
	a.deviceClass = &cod
	return nil
}

// SetScanParams overrides the LE scan interval and window. active selects
// the scan type of sessions started with StartLEDiscovery.
func (a *Adapter) SetScanParams(interval, window time.Duration, active bool) error {
	p := hci.DefaultScanParameters
	p.LEScanInterval = uint16(interval / scanUnit)
	p.LEScanWindow = uint16(window / scanUnit)
	if err := hci.ValidateScanParams(p); err != nil {
		return errors.Wrap(err, "scan params")
	}
	a.scanParams = &p
	a.activeScan = active
	return nil
}

// SetBondStore enables bond persistence. s must implement BondStore.
func (a *Adapter) SetBondStore(s interface{}) error {
	bs, ok := s.(BondStore)
	if !ok {
		return errors.Errorf("unknown bond store type %T", s)
	}
	a.bonds = bs
	return nil
}

// SetGATT supplies the GATT layer. g must implement le.GATT.
func (a *Adapter) SetGATT(g interface{}) error {
	gatt, ok := g.(le.GATT)
	if !ok {
		return errors.Errorf("unknown gatt type %T", g)
	}
	a.gatt = gatt
	return nil
}

// SetErrorHandler installs the receiver of transport failures.
func (a *Adapter) SetErrorHandler(fn func(error)) error {
	a.errorHandler = fn
	return nil
}
