package main

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/bredr"
	"github.com/rigado/gap/le"
	"github.com/rigado/gap/peer"
	"github.com/urfave/cli"
)

// result forwards at most one error from the dispatcher goroutine.
type result chan error

func newResult() result { return make(result, 1) }

func (r result) done(err error) {
	select {
	case r <- err:
	default:
	}
}

func (r result) wait(ctx context.Context) error {
	select {
	case err := <-r:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func scan(c *cli.Context) error {
	filter := le.DiscoveryFilter{NameSubstring: c.String("name")}
	for _, s := range c.StringSlice("service") {
		u, err := parseUUID(s)
		if err != nil {
			return err
		}
		filter.ServiceUUIDs = append(filter.ServiceUUIDs, u)
	}
	if c.IsSet("rssi") {
		rssi := int8(c.Int("rssi"))
		filter.MinRSSI = &rssi
	}
	if c.Bool("connectable") {
		yes := true
		filter.Connectable = &yes
	}

	ctx, cancel := runContext(c.Duration("duration"))
	defer cancel()

	res := newResult()
	var session *le.DiscoverySession
	dev.Do(func() {
		if c.Bool("passive") {
			if err := dev.SetScanParams(cfg.LE.ScanInterval, cfg.LE.ScanWindow, false); err != nil {
				res.done(err)
				return
			}
		}
		dev.StartLEDiscovery(func(s *le.DiscoverySession, err error) {
			if err != nil {
				res.done(errors.Wrap(err, "can't start scan"))
				return
			}
			session = s
			*s.Filter() = filter
			s.SetErrorCallback(func() { res.done(errors.New("scan stopped by controller")) })
			s.SetResultCallback(printLEPeer)
		})
	})

	err := res.wait(ctx)
	dev.Do(func() {
		if session != nil {
			session.Stop()
		}
	})
	return chkErr(err)
}

func inquiry(c *cli.Context) error {
	ctx, cancel := runContext(c.Duration("duration"))
	defer cancel()

	res := newResult()
	var session *bredr.DiscoverySession
	dev.StartBrEdrDiscovery(func(s *bredr.DiscoverySession, err error) {
		if err != nil {
			res.done(errors.Wrap(err, "can't start inquiry"))
			return
		}
		session = s
		s.SetErrorCallback(func() { res.done(errors.New("inquiry failed")) })
		s.SetResultCallback(printBrEdrPeer)
	})

	err := res.wait(ctx)
	dev.Do(func() {
		if session != nil {
			session.Stop()
		}
	})
	return chkErr(err)
}

func discoverable(c *cli.Context) error {
	ctx, cancel := runContext(c.Duration("duration"))
	defer cancel()

	res := newResult()
	var session *bredr.DiscoverableSession
	dev.SetConnectable(true, func(err error) {
		if err != nil {
			res.done(errors.Wrap(err, "can't enable page scan"))
		}
	})
	dev.SetDiscoverable(func(s *bredr.DiscoverableSession, err error) {
		if err != nil {
			res.done(errors.Wrap(err, "can't enable inquiry scan"))
			return
		}
		session = s
		printInfo("discoverable as %q", cfg.LocalName)
	})

	err := res.wait(ctx)
	dev.Do(func() {
		if session != nil {
			session.Stop()
		}
	})
	dev.SetConnectable(false, func(error) {})
	return chkErr(err)
}

// lookup finds the peer with the address given on the command line,
// adding it to the cache if it is unknown.
func lookup(c *cli.Context) (gap.PeerID, error) {
	if c.String("addr") == "" {
		return gap.InvalidPeerID, errors.New("missing --addr")
	}
	typ := gap.AddressLEPublic
	switch {
	case c.Bool("bredr"):
		typ = gap.AddressBREDR
	case c.Bool("random"):
		typ = gap.AddressLERandom
	}
	addr, err := gap.ParseAddress(typ, c.String("addr"))
	if err != nil {
		return gap.InvalidPeerID, err
	}

	ch := make(chan gap.PeerID, 1)
	errc := newResult()
	dev.Do(func() {
		if p := dev.Cache().FindByAddress(addr); p != nil {
			ch <- p.ID()
			return
		}
		p, err := dev.Cache().NewPeer(addr, true)
		if err != nil {
			errc.done(err)
			return
		}
		ch <- p.ID()
	})
	select {
	case id := <-ch:
		return id, nil
	case err := <-errc:
		return gap.InvalidPeerID, err
	}
}

// link is an open connection on either transport.
type link struct {
	release func()
	closed  chan struct{}
}

func open(ctx context.Context, c *cli.Context, id gap.PeerID) (*link, error) {
	res := newResult()
	l := &link{closed: make(chan struct{})}
	gone := func() { close(l.closed) }

	if c.Bool("bredr") {
		dev.ConnectBrEdr(id, func(_ *bredr.Connection, err error) {
			if err == nil {
				l.release = func() { dev.Disconnect(id, func(error) {}) }
			}
			res.done(err)
		})
	} else {
		dev.ConnectLE(id, gap.Bondable, func(h *le.ConnectionHandle, err error) {
			if err == nil {
				h.SetClosedCallback(gone)
				l.release = func() { dev.Do(h.Release) }
			}
			res.done(err)
		})
	}
	if err := res.wait(ctx); err != nil {
		return nil, errors.Wrap(err, "can't connect")
	}
	return l, nil
}

func connect(c *cli.Context) error {
	id, err := lookup(c)
	if err != nil {
		return err
	}
	ctx, cancel := runContext(c.Duration("duration"))
	defer cancel()

	l, err := open(ctx, c, id)
	if err != nil {
		return chkErr(err)
	}
	printInfo("connected to %v", id)

	select {
	case <-ctx.Done():
		l.release()
		printInfo("disconnected")
		return chkErr(ctx.Err())
	case <-l.closed:
		return errors.New("link lost")
	}
}

func pair(c *cli.Context) error {
	level, err := parseLevel(c.String("level"))
	if err != nil {
		return err
	}
	id, err := lookup(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	ctx = withSigHandler(ctx, cancel)
	defer cancel()

	dev.SetPairingDelegate(newConsoleDelegate(dev.Do))
	l, err := open(ctx, c, id)
	if err != nil {
		return chkErr(err)
	}
	defer l.release()

	res := newResult()
	dev.Pair(id, level, res.done)
	if err := res.wait(ctx); err != nil {
		return chkErr(errors.Wrap(err, "pairing failed"))
	}
	printInfo("paired with %v at %v", id, level)
	return nil
}

func listBonds(c *cli.Context) error {
	ch := make(chan []peer.BondingData, 1)
	dev.Bonds(func(b []peer.BondingData) { ch <- b })

	select {
	case bonds := <-ch:
		if len(bonds) == 0 {
			printInfo("no bonds")
		}
		for _, b := range bonds {
			printBond(b)
		}
	case <-time.After(5 * time.Second):
		return errors.New("timed out listing bonds")
	}
	return nil
}

func forgetBond(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected one peer id")
	}
	v, err := strconv.ParseUint(c.Args().First(), 16, 64)
	if err != nil {
		return errors.Wrap(err, "invalid peer id")
	}
	id := gap.PeerID(v)

	res := newResult()
	dev.ForgetPeer(id, res.done)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := res.wait(ctx); err != nil {
		return err
	}
	printInfo("forgot %v", id)
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	switch len(s) {
	case 4:
		v, err := strconv.ParseUint(s, 16, 16)
		return gap.UUID16(uint16(v)), errors.Wrapf(err, "invalid uuid %q", s)
	case 8:
		v, err := strconv.ParseUint(s, 16, 32)
		return gap.UUID32(uint32(v)), errors.Wrapf(err, "invalid uuid %q", s)
	}
	u, err := uuid.Parse(s)
	return u, errors.Wrapf(err, "invalid uuid %q", s)
}

func parseLevel(s string) (gap.SecurityLevel, error) {
	switch s {
	case "encrypted":
		return gap.SecurityEncrypted, nil
	case "authenticated":
		return gap.SecurityAuthenticated, nil
	case "secure":
		return gap.SecuritySecureAuthenticated, nil
	}
	return gap.SecurityNone, errors.Errorf("unknown security level %q", s)
}
