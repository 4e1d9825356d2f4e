package adapter

import (
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
)

// Event masks enabled during initialization [Vol 4, Part E, 7.3.1 and 7.8.1].
const (
	EventMask   uint64 = 0x3dbff807fffbffff
	LEEventMask uint64 = 0x000000000000003f
)

// Initialize resets the controller, reads its address, buffers and
// features, and configures the event masks and host support the managers
// rely on. cb runs on the dispatcher.
func (a *Adapter) Initialize(cb func(error)) {
	a.d.Post(func() {
		if a.closed {
			cb(errors.Wrap(gap.ErrNotReady, "adapter closed"))
			return
		}
		if !a.runner.IsReady() {
			cb(errors.Wrap(gap.ErrNotReady, "initialization in progress"))
			return
		}
		a.initialized = false
		a.readController(cb)
	})
}

// readController runs the first batch: reset and the reads every later step
// depends on.
func (a *Adapter) readController(cb func(error)) {
	r := a.runner
	r.QueueCommand(&cmd.Reset{}, nil, true, 0)
	r.QueueCommand(&cmd.ReadBDADDR{}, func(e hci.Event) {
		var rp cmd.ReadBDADDRRP
		if err := rp.Unmarshal(e.ReturnParameters()); err != nil {
			a.log.Warnf("read bdaddr: %v", err)
			return
		}
		a.address = gap.NewAddress(gap.AddressBREDR, rp.BDADDR[:])
	}, false, 0)
	r.QueueCommand(&cmd.ReadLocalVersionInformation{}, func(e hci.Event) {
		if err := a.version.Unmarshal(e.ReturnParameters()); err != nil {
			a.log.Warnf("read local version: %v", err)
		}
	}, false, 0)
	r.QueueCommand(&cmd.ReadLocalSupportedFeatures{}, func(e hci.Event) {
		var rp cmd.ReadLocalSupportedFeaturesRP
		if err := rp.Unmarshal(e.ReturnParameters()); err != nil {
			a.log.Warnf("read local features: %v", err)
			return
		}
		a.lmpFeatures = rp.LMPFeatures
	}, false, 0)

	r.RunCommands(func(err error) {
		if err != nil {
			cb(errors.Wrap(err, "read controller"))
			return
		}
		a.log.Infof("controller %v, hci version %d, manufacturer 0x%04x",
			a.address, a.version.HCIVersion, a.version.ManufacturerName)
		a.configure(cb)
	})
}

// configure runs the second batch, shaped by the transports the controller
// supports.
func (a *Adapter) configure(cb func(error)) {
	r := a.runner
	bredrOK := a.lmpFeatures&hci.LMPFeatureBREDRNotSupported == 0
	leOK := a.lmpFeatures&hci.LMPFeatureLESupported != 0

	var aclSize, aclCount, leSize, leCount int
	if bredrOK {
		r.QueueCommand(&cmd.ReadBufferSize{}, func(e hci.Event) {
			var rp cmd.ReadBufferSizeRP
			if err := rp.Unmarshal(e.ReturnParameters()); err == nil {
				aclSize, aclCount = int(rp.HCACLDataPacketLength), int(rp.HCTotalNumACLDataPackets)
			}
		}, false, 0)
	}
	if leOK {
		r.QueueCommand(&cmd.LEReadBufferSize{}, func(e hci.Event) {
			var rp cmd.LEReadBufferSizeRP
			if err := rp.Unmarshal(e.ReturnParameters()); err == nil {
				leSize, leCount = int(rp.HCLEACLDataPacketLength), int(rp.HCTotalNumLEACLDataPackets)
			}
		}, false, 0)
		r.QueueCommand(&cmd.LEReadLocalSupportedFeatures{}, func(e hci.Event) {
			var rp cmd.LEReadLocalSupportedFeaturesRP
			if err := rp.Unmarshal(e.ReturnParameters()); err == nil {
				a.leFeatures = rp.LEFeatures
			}
		}, false, 0)
	}

	r.QueueCommand(&cmd.SetEventMask{EventMask: EventMask}, nil, false, 0)
	if leOK {
		r.QueueCommand(&cmd.LESetEventMask{LEEventMask: LEEventMask}, nil, false, 0)
		if bredrOK {
			r.QueueCommand(&cmd.WriteLEHostSupport{LESupportedHost: 1, SimultaneousLEHost: 0}, nil, false, 0)
		}
	}
	if bredrOK {
		if a.lmpFeatures&hci.LMPFeatureSecureSimplePairing != 0 {
			r.QueueCommand(&cmd.WriteSimplePairingMode{SimplePairingMode: 1}, nil, false, 0)
		}
		if a.deviceClass != nil {
			c := *a.deviceClass
			r.QueueCommand(&cmd.WriteClassOfDevice{ClassOfDevice: [3]byte{byte(c), byte(c >> 8), byte(c >> 16)}}, nil, false, 0)
		}
	}
	if a.localName != "" {
		wln := &cmd.WriteLocalName{}
		copy(wln.LocalName[:], a.localName)
		r.QueueCommand(wln, nil, false, 0)
	}

	r.RunCommands(func(err error) {
		if err != nil {
			cb(errors.Wrap(err, "configure controller"))
			return
		}

		// LE-U uses the shared buffers when the controller has none of its own
		if leCount == 0 {
			leSize, leCount = aclSize, aclCount
		}
		a.hci.SetACLBuffer(leSize, leCount)
		a.leConns.SetLocalAddress(gap.NewAddress(gap.AddressLEPublic, a.address.Value[:]))
		a.leConns.SetLocalFeatures(a.leFeatures)

		if !bredrOK || a.lmpFeatures&hci.LMPFeatureExtendedInquiry == 0 {
			a.finishInit(cb)
			return
		}
		a.bredrDiscovery.SetExtendedInquiryMode(func(err error) {
			if err != nil {
				cb(err)
				return
			}
			a.finishInit(cb)
		})
	})
}

func (a *Adapter) finishInit(cb func(error)) {
	a.initialized = true
	a.log.Infof("initialized, le features 0x%x", a.leFeatures)
	cb(nil)
}
