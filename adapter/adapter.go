// Package adapter assembles the host stack on top of an HCI transport and
// exposes it as a single Bluetooth adapter.
package adapter

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/bredr"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/l2cap"
	"github.com/rigado/gap/le"
	"github.com/rigado/gap/peer"
	"github.com/rigado/gap/store"
)

// Adapter owns the dispatcher, the command channel and every manager of the
// stack. Methods may be called from any goroutine; callbacks run on the
// adapter's dispatcher.
type Adapter struct {
	d    dispatch.Dispatcher
	loop *dispatch.Loop
	hci  *hci.HCI
	log  gap.Logger

	cache          *peer.Cache
	l2cap          *l2cap.L2CAP
	leDiscovery    *le.DiscoveryManager
	leConns        *le.ConnectionManager
	bredrDiscovery *bredr.DiscoveryManager
	bredrConns     *bredr.ConnectionManager
	runner         *hci.SequentialCommandRunner

	// options
	ioCap        *gap.IOCapability
	leTimeout    time.Duration
	localName    string
	deviceClass  *uint32
	scanParams   *cmd.LESetScanParameters
	activeScan   bool
	bonds        BondStore
	gatt         le.GATT
	errorHandler func(error)

	// controller state read during initialization
	address       gap.Address
	version       cmd.ReadLocalVersionInformationRP
	lmpFeatures   uint64
	leFeatures    uint64
	initialized   bool
	bondsListener peer.ListenerID

	// inbound LE links nobody asked for are held here until they drop
	inbound    map[gap.PeerID]*le.ConnectionHandle
	onIncoming func(h *le.ConnectionHandle)
	onLEGone   func(id gap.PeerID)
	closed     bool
}

// New starts a dispatcher and a command channel on t and assembles the
// stack. The controller is not touched until Init.
func New(t io.ReadWriteCloser, opts ...gap.Option) (*Adapter, error) {
	loop := dispatch.NewLoop()
	go loop.Run()

	h, err := hci.NewHCI(loop, t)
	if err != nil {
		loop.Stop()
		return nil, errors.Wrap(err, "can't create hci")
	}

	type result struct {
		a   *Adapter
		err error
	}
	res := make(chan result, 1)
	loop.Post(func() {
		a, err := newAdapter(loop, h, opts...)
		res <- result{a, err}
	})
	r := <-res
	if r.err != nil {
		loop.Stop()
		t.Close()
		return nil, r.err
	}

	r.a.loop = loop
	h.Start(t)
	return r.a, nil
}

// newAdapter wires the managers to h. It must run on d.
func newAdapter(d dispatch.Dispatcher, h *hci.HCI, opts ...gap.Option) (*Adapter, error) {
	a := &Adapter{
		d:       d,
		hci:     h,
		log:     gap.ComponentLogger("adapter"),
		inbound: make(map[gap.PeerID]*le.ConnectionHandle),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, errors.Wrap(err, "can't set options")
		}
	}
	if err := h.SetErrorHandler(a.onTransportError); err != nil {
		return nil, err
	}

	a.cache = peer.NewCache(d, a.child("peer"))
	a.l2cap = l2cap.New(d, h, a.child("l2cap"))
	a.runner = hci.NewSequentialCommandRunner(h)

	a.leDiscovery = le.NewDiscoveryManager(d, h, a.cache, a.child("gap-le"))
	if a.scanParams != nil {
		if err := a.leDiscovery.SetScanParameters(*a.scanParams); err != nil {
			return nil, err
		}
	}

	a.leConns = le.NewConnectionManager(d, h, a.cache, le.NewL2CAP(a.l2cap), a.gatt, a.child("gap-le"))
	if a.leTimeout > 0 {
		a.leConns.SetConnectionTimeout(a.leTimeout)
	}
	a.leConns.SetIncomingConnectionCallback(a.onIncomingLE)
	a.leConns.SetDisconnectionCallback(a.onLEDisconnected)

	a.bredrDiscovery = bredr.NewDiscoveryManager(h, a.cache, a.child("gap-bredr"))
	a.bredrConns = bredr.NewConnectionManager(h, a.cache, a.child("gap-bredr"))

	if a.bonds != nil {
		n, err := a.bonds.Restore(a.cache)
		if err != nil {
			a.log.Errorf("restore bonds: %v", err)
		} else {
			a.log.Infof("restored %d bonds", n)
		}
		a.bondsListener = a.bonds.Track(a.cache)
	}
	return a, nil
}

func (a *Adapter) child(component string) gap.Logger {
	return a.log.ChildLogger(map[string]interface{}{"component": component})
}

func (a *Adapter) onTransportError(err error) {
	a.log.Errorf("transport: %v", err)
	if a.errorHandler != nil {
		a.errorHandler(err)
	}
}

// Do runs fn on the adapter's dispatcher. Sessions, handles and peers
// handed out by the adapter must only be used from there.
func (a *Adapter) Do(fn func()) { a.d.Post(fn) }

// Cache returns the peer directory. Use it from the dispatcher only.
func (a *Adapter) Cache() *peer.Cache { return a.cache }

// Address returns the public address of the controller, known after Init.
func (a *Adapter) Address() gap.Address { return a.address }

// Version returns the controller version information, known after Init.
func (a *Adapter) Version() cmd.ReadLocalVersionInformationRP { return a.version }

// Initialized reports whether Init completed.
func (a *Adapter) Initialized() bool { return a.initialized }

// Init runs the controller initialization sequence and waits for it. It
// requires the adapter to run its own dispatcher, as created by New.
func (a *Adapter) Init(ctx context.Context) error {
	if a.loop == nil {
		return errors.Wrap(gap.ErrNotSupported, "adapter has no dispatcher loop")
	}
	errc := make(chan error, 1)
	a.Initialize(func(err error) { errc <- err })
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		a.d.Post(a.runner.Cancel)
		return errors.Wrap(ctx.Err(), "init")
	}
}

// SetPairingDelegate installs the delegate that answers pairing requests on
// both transports.
func (a *Adapter) SetPairingDelegate(pd gap.PairingDelegate) {
	a.d.Post(func() {
		if pd != nil && a.ioCap != nil {
			pd = ioDelegate{PairingDelegate: pd, io: *a.ioCap}
		}
		a.leConns.SetPairingDelegate(pd)
		a.bredrConns.SetPairingDelegate(pd)
	})
}

type ioDelegate struct {
	gap.PairingDelegate
	io gap.IOCapability
}

func (d ioDelegate) IOCapability() gap.IOCapability { return d.io }

// SetIncomingLEConnectionCallback receives links opened by remote centrals.
// Without a callback the adapter holds those links until they drop.
func (a *Adapter) SetIncomingLEConnectionCallback(fn func(h *le.ConnectionHandle)) {
	a.d.Post(func() { a.onIncoming = fn })
}

// SetLEDisconnectionCallback is called when an LE link goes away.
func (a *Adapter) SetLEDisconnectionCallback(fn func(id gap.PeerID)) {
	a.d.Post(func() { a.onLEGone = fn })
}

func (a *Adapter) onIncomingLE(h *le.ConnectionHandle) {
	if a.onIncoming != nil {
		a.onIncoming(h)
		return
	}
	id := h.PeerID()
	if old, ok := a.inbound[id]; ok {
		old.Release()
	}
	a.inbound[id] = h
	a.log.Infof("%v: inbound le link", id)
}

func (a *Adapter) onLEDisconnected(id gap.PeerID) {
	delete(a.inbound, id)
	if a.onLEGone != nil {
		a.onLEGone(id)
	}
}

// StartLEDiscovery starts an LE discovery session. The scan type is the one
// set with OptScanParams, active by default.
func (a *Adapter) StartLEDiscovery(cb le.DiscoveryCallback) {
	a.d.Post(func() {
		if !a.ready(func(err error) { cb(nil, err) }) {
			return
		}
		a.leDiscovery.RequestDiscovery(a.scanParams == nil || a.activeScan, cb)
	})
}

// StartBrEdrDiscovery starts a BR/EDR inquiry session.
func (a *Adapter) StartBrEdrDiscovery(cb bredr.DiscoveryCallback) {
	a.d.Post(func() {
		if !a.ready(func(err error) { cb(nil, err) }) {
			return
		}
		a.bredrDiscovery.RequestDiscovery(cb)
	})
}

// SetDiscoverable makes the adapter discoverable over BR/EDR for as long as
// the session lives.
func (a *Adapter) SetDiscoverable(cb bredr.DiscoverableCallback) {
	a.d.Post(func() {
		if !a.ready(func(err error) { cb(nil, err) }) {
			return
		}
		a.bredrDiscovery.RequestDiscoverable(cb)
	})
}

// SetConnectable enables or disables BR/EDR page scan.
func (a *Adapter) SetConnectable(on bool, cb func(error)) {
	a.d.Post(func() {
		if !a.ready(cb) {
			return
		}
		a.bredrConns.SetConnectable(on, cb)
	})
}

// ConnectLE opens, or joins, an LE link to id.
func (a *Adapter) ConnectLE(id gap.PeerID, bondable gap.BondableMode, cb le.ConnectCallback) {
	a.d.Post(func() {
		if !a.ready(func(err error) { cb(nil, err) }) {
			return
		}
		a.leConns.Connect(id, bondable, cb)
	})
}

// ConnectBrEdr opens a BR/EDR link to id.
func (a *Adapter) ConnectBrEdr(id gap.PeerID, cb bredr.ConnectCallback) {
	a.d.Post(func() {
		if !a.ready(func(err error) { cb(nil, err) }) {
			return
		}
		a.bredrConns.Connect(id, cb)
	})
}

// Disconnect drops the links to id on both transports. cb receives
// ErrNotFound when there was no link.
func (a *Adapter) Disconnect(id gap.PeerID, cb func(error)) {
	a.d.Post(func() {
		found := a.leConns.Disconnect(id)
		if err := a.bredrConns.Disconnect(id); err == nil {
			found = true
		}
		if !found {
			cb(errors.Wrapf(gap.ErrNotFound, "no link to %v", id))
			return
		}
		cb(nil)
	})
}

// Pair raises the security of the link to id. The LE link is used when
// there is one.
func (a *Adapter) Pair(id gap.PeerID, level gap.SecurityLevel, cb func(error)) {
	a.d.Post(func() {
		if a.leConns.Connection(id) != nil {
			a.leConns.Pair(id, level, cb)
			return
		}
		a.bredrConns.Pair(id, level, cb)
	})
}

// Bonds returns the bonding data of every bonded peer.
func (a *Adapter) Bonds(cb func([]peer.BondingData)) {
	a.d.Post(func() {
		var out []peer.BondingData
		a.cache.ForEach(func(p *peer.Peer) {
			if p.Bonded() {
				out = append(out, store.FromPeer(p))
			}
		})
		cb(out)
	})
}

// ForgetPeer removes a disconnected peer and its stored bond.
func (a *Adapter) ForgetPeer(id gap.PeerID, cb func(error)) {
	a.d.Post(func() {
		if !a.cache.RemoveDisconnectedPeer(id) {
			cb(errors.Wrapf(gap.ErrFailed, "%v is connected", id))
			return
		}
		if a.bonds != nil {
			if err := a.bonds.Delete(id); err != nil {
				cb(errors.Wrap(err, "delete bond"))
				return
			}
		}
		cb(nil)
	})
}

func (a *Adapter) ready(fail func(error)) bool {
	switch {
	case a.closed:
		fail(errors.Wrap(gap.ErrNotReady, "adapter closed"))
		return false
	case !a.initialized:
		fail(errors.Wrap(gap.ErrNotReady, "adapter not initialized"))
		return false
	}
	return true
}

// Close shuts every manager down, closes the transport and stops the
// dispatcher.
func (a *Adapter) Close() error {
	if a.loop == nil {
		return a.shutdown()
	}
	errc := make(chan error, 1)
	a.d.Post(func() { errc <- a.shutdown() })
	err := <-errc
	a.loop.Stop()
	return err
}

func (a *Adapter) shutdown() error {
	if a.closed {
		return nil
	}
	a.closed = true
	a.runner.Cancel()
	for _, h := range a.inbound {
		h.Release()
	}
	a.inbound = nil
	a.leDiscovery.Close()
	a.leConns.Close()
	a.bredrDiscovery.Close()
	a.bredrConns.Close()
	if a.bonds != nil {
		a.cache.RemoveListener(a.bondsListener)
	}
	return a.hci.Close()
}
