package gap

// Fixed L2CAP channel identifiers on an LE-U logical link [Vol 3, Part A, 2.1].
const (
	ChannelATT      uint16 = 0x04
	ChannelLESignal uint16 = 0x05
	ChannelSMP      uint16 = 0x06
	// ChannelBREDRSMP is the SMP channel over ACL-U.
	ChannelBREDRSMP uint16 = 0x07
)

// Channel is a fixed L2CAP channel delivered to an upper layer.
type Channel interface {
	ID() uint16
	LinkHandle() uint16
	Send(sdu []byte) error
	// Activate starts delivery. rx is called for every inbound SDU and closed once when the link goes away.
	Activate(rx func(sdu []byte), closed func()) bool
	Deactivate()
}
