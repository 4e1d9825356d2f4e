// Package interrogator reads the capabilities of a newly connected peer
// before its link is handed to callers.
package interrogator

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
	"github.com/rigado/gap/hci/evt"
	"github.com/rigado/gap/peer"
)

// maxExtendedPage bounds the LMP feature pages read from a peer.
const maxExtendedPage = 2

type interrogation struct {
	id     gap.PeerID
	handle hci.ConnectionHandle
	runner *hci.SequentialCommandRunner
	cb     func(error)
}

// Interrogator runs the read remote information commands of one transport.
// Only one interrogation per peer may run at a time.
type Interrogator struct {
	ctrl  hci.Controller
	cache *peer.Cache
	log   gap.Logger
	le    bool

	pending map[gap.PeerID]*interrogation
}

// NewLE returns an Interrogator for LE links.
func NewLE(ctrl hci.Controller, cache *peer.Cache, l gap.Logger) *Interrogator {
	return newInterrogator(ctrl, cache, l, true)
}

// NewBrEdr returns an Interrogator for BR/EDR links.
func NewBrEdr(ctrl hci.Controller, cache *peer.Cache, l gap.Logger) *Interrogator {
	return newInterrogator(ctrl, cache, l, false)
}

func newInterrogator(ctrl hci.Controller, cache *peer.Cache, l gap.Logger, le bool) *Interrogator {
	if l == nil {
		l = gap.ComponentLogger("interrogator")
	}
	return &Interrogator{
		ctrl:    ctrl,
		cache:   cache,
		log:     l,
		le:      le,
		pending: make(map[gap.PeerID]*interrogation),
	}
}

// Start interrogates the peer on handle. cb receives nil once every command
// completed, or the first failure. Reading the remote version also proves the
// link works: a link that died right after being established fails here with
// ConnectionFailedToBeEstablished.
func (i *Interrogator) Start(id gap.PeerID, handle hci.ConnectionHandle, cb func(error)) {
	if _, ok := i.pending[id]; ok {
		cb(errors.Wrapf(gap.ErrAlreadyExists, "interrogation of %v", id))
		return
	}
	p := i.cache.FindByID(id)
	if p == nil {
		cb(errors.Wrapf(gap.ErrNotFound, "peer %v", id))
		return
	}

	it := &interrogation{
		id:     id,
		handle: handle,
		runner: hci.NewSequentialCommandRunner(i.ctrl),
		cb:     cb,
	}
	i.pending[id] = it

	if i.le {
		i.queueLE(it, p)
	} else {
		i.queueBrEdr(it, p)
	}

	i.log.Debugf("interrogating %v (handle 0x%04X)", p, handle)
	it.runner.RunCommands(func(err error) {
		if i.pending[id] != it {
			return
		}
		delete(i.pending, id)
		if err != nil {
			i.log.Infof("interrogation of %v failed: %v", id, err)
		}
		it.cb(err)
	})
}

// Cancel stops the interrogation of id, which then fails with ErrCanceled.
func (i *Interrogator) Cancel(id gap.PeerID) {
	if it, ok := i.pending[id]; ok {
		it.runner.Cancel()
	}
}

// peer looks the record up again: it may have been removed while a command ran.
func (i *Interrogator) peer(it *interrogation) *peer.Peer {
	p := i.cache.FindByID(it.id)
	if p == nil {
		i.log.Warnf("peer %v removed during interrogation", it.id)
	}
	return p
}

func (i *Interrogator) queueVersion(it *interrogation) {
	it.runner.QueueCommand(&cmd.ReadRemoteVersionInformation{ConnectionHandle: uint16(it.handle)}, func(e hci.Event) {
		v := evt.ReadRemoteVersionInformationComplete(e.Params)
		if p := i.peer(it); p != nil {
			p.SetVersion(peer.VersionInfo{
				Version:      v.Version(),
				Manufacturer: v.ManufacturerName(),
				Subversion:   v.Subversion(),
			})
		}
	}, false, hci.ReadRemoteVersionInformationCompleteEvent)
}

func (i *Interrogator) queueLE(it *interrogation, p *peer.Peer) {
	i.queueVersion(it)

	if _, ok := p.MutLE().Features(); ok {
		return
	}
	it.runner.QueueCommand(&cmd.LEReadRemoteFeatures{ConnectionHandle: uint16(it.handle)}, func(e hci.Event) {
		f := evt.LEReadRemoteFeaturesComplete(e.Params)
		if p := i.peer(it); p != nil {
			p.MutLE().SetFeatures(f.LEFeatures())
		}
	}, false, hci.LEReadRemoteFeaturesCompleteEvent)
}

func (i *Interrogator) queueBrEdr(it *interrogation, p *peer.Peer) {
	if _, ok := p.Name(); !ok {
		i.queueName(it, p)
	}
	if p.Version() == nil {
		i.queueVersion(it)
	}

	if f, ok := p.LMPFeatures(0); ok {
		if f&hci.LMPFeatureExtendedFeatures != 0 {
			i.queueExtendedFeatures(it, 1)
		}
		return
	}
	it.runner.QueueCommand(&cmd.ReadRemoteSupportedFeatures{ConnectionHandle: uint16(it.handle)}, func(e hci.Event) {
		f := evt.ReadRemoteSupportedFeaturesComplete(e.Params).LMPFeatures()
		p := i.peer(it)
		if p == nil {
			return
		}
		p.SetLMPFeatures(0, f)
		if f&hci.LMPFeatureExtendedFeatures != 0 {
			i.queueExtendedFeatures(it, 1)
		}
	}, true, hci.ReadRemoteSupportedFeaturesCompleteEvent)
}

func (i *Interrogator) queueName(it *interrogation, p *peer.Peer) {
	c := &cmd.RemoteNameRequest{}
	addr := p.MutBrEdr().Address()
	copy(c.BDADDR[:], addr.Value[:])
	if psrm, ok := p.MutBrEdr().PageScanRepetitionMode(); ok {
		c.PageScanRepetitionMode = psrm
	}
	if offset, ok := p.MutBrEdr().ClockOffset(); ok {
		c.ClockOffset = offset
	}
	it.runner.QueueCommand(c, func(e hci.Event) {
		n := evt.RemoteNameRequestComplete(e.Params)
		if p := i.peer(it); p != nil {
			p.SetName(n.RemoteName())
		}
	}, false, hci.RemoteNameRequestCompleteEvent, cmd.InquiryOpCode)
}

// queueExtendedFeatures reads page and then every following page up to the
// last one the peer reports.
func (i *Interrogator) queueExtendedFeatures(it *interrogation, page uint8) {
	c := &cmd.ReadRemoteExtendedFeatures{ConnectionHandle: uint16(it.handle), PageNumber: page}
	it.runner.QueueCommand(c, func(e hci.Event) {
		f := evt.ReadRemoteExtendedFeaturesComplete(e.Params)
		p := i.peer(it)
		if p == nil {
			return
		}
		p.SetLMPFeatures(f.PageNumber(), f.ExtendedLMPFeatures())
		max := f.MaxPageNumber()
		if max > maxExtendedPage {
			max = maxExtendedPage
		}
		p.SetLMPMaxPage(max)
		if page < max {
			i.queueExtendedFeatures(it, page+1)
		}
	}, true, hci.ReadRemoteExtendedFeaturesCompleteEvent)
}
