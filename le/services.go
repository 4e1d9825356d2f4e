package le

import (
	"github.com/google/uuid"
	"github.com/rigado/gap"
	"github.com/rigado/gap/hci"
	"github.com/rigado/gap/l2cap"
)

// GenericAccessService is the mandatory GAP service of every LE peer.
var GenericAccessService = uuid.MustParse("00001800-0000-1000-8000-00805f9b34fb")

// L2CAP is the part of the L2CAP layer the connection manager drives.
type L2CAP interface {
	AddLEConnection(handle hci.ConnectionHandle, role hci.Role,
		linkError func(),
		paramUpdate func(hci.LEPreferredConnectionParameters),
		securityUpgrade func(gap.SecurityLevel, func(error))) (att, smp gap.Channel, err error)
	RemoveConnection(handle hci.ConnectionHandle)
	AssignLinkSecurityProperties(handle hci.ConnectionHandle, p gap.SecurityProperties)
	RequestConnectionParameterUpdate(handle hci.ConnectionHandle, p hci.LEPreferredConnectionParameters, cb func(accepted bool)) error
}

// GATT is the attribute protocol client/server layer. Connections are handed
// over with their ATT channel once the link is up.
type GATT interface {
	AddConnection(id gap.PeerID, att gap.Channel)
	RemoveConnection(id gap.PeerID)
	// DiscoverServices starts primary service discovery, limited to services
	// when non-empty.
	DiscoverServices(id gap.PeerID, services []uuid.UUID)
	ListServices(id gap.PeerID, services []uuid.UUID, cb func(found []uuid.UUID, err error))
}

// NewL2CAP adapts the l2cap package to the connection manager.
func NewL2CAP(l *l2cap.L2CAP) L2CAP {
	return l2capLayer{l}
}

type l2capLayer struct {
	*l2cap.L2CAP
}

func (l l2capLayer) AddLEConnection(handle hci.ConnectionHandle, role hci.Role,
	linkError func(),
	paramUpdate func(hci.LEPreferredConnectionParameters),
	securityUpgrade func(gap.SecurityLevel, func(error))) (gap.Channel, gap.Channel, error) {

	att, smp, err := l.L2CAP.AddLEConnection(handle, role, linkError, paramUpdate, securityUpgrade)
	if err != nil {
		return nil, nil, err
	}
	return att, smp, nil
}
