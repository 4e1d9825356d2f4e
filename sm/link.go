package sm

import (
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/hci/cmd"
)

// Link starts or answers link encryption on the controller. Results arrive
// through SecurityManager.OnEncryptionChange.
type Link interface {
	// StartEncryption is used by the central. cb receives the command status.
	StartEncryption(ltk gap.LTK, cb func(error))
	// ReplyLTK answers an LE Long Term Key Request; nil rejects it.
	ReplyLTK(ltk *gap.LTK)
}

type hciLink struct {
	ctrl   hci.Controller
	handle hci.ConnectionHandle
	log    gap.Logger
}

// NewHCILink returns a Link sending LE encryption commands for handle.
func NewHCILink(ctrl hci.Controller, handle hci.ConnectionHandle, l gap.Logger) Link {
	if l == nil {
		l = gap.ComponentLogger("sm")
	}
	return &hciLink{ctrl: ctrl, handle: handle, log: l}
}

func (k *hciLink) StartEncryption(ltk gap.LTK, cb func(error)) {
	c := &cmd.LEStartEncryption{
		ConnectionHandle:     uint16(k.handle),
		RandomNumber:         ltk.Rand,
		EncryptedDiversifier: ltk.EDiv,
		LongTermKey:          ltk.Key,
	}
	k.ctrl.SendCommand(c, func(e hci.Event) { cb(e.Err()) }, hci.CommandStatusEvent)
}

func (k *hciLink) ReplyLTK(ltk *gap.LTK) {
	var c cmd.Command = &cmd.LELongTermKeyRequestNegativeReply{ConnectionHandle: uint16(k.handle)}
	if ltk != nil {
		c = &cmd.LELongTermKeyRequestReply{ConnectionHandle: uint16(k.handle), LongTermKey: ltk.Key}
	}
	k.ctrl.SendCommand(c, func(e hci.Event) {
		if err := e.Err(); err != nil {
			k.log.Warnf("link 0x%04X: %v: %v", k.handle, c, err)
		}
	}, hci.CommandCompleteEvent)
}
