package gap

import (
	"fmt"
	"math/rand"
	"sync"
)

// PeerID is an opaque identifier for a remote device that survives address changes.
type PeerID uint64

// InvalidPeerID is never assigned to a peer.
const InvalidPeerID PeerID = 0

func (id PeerID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

var (
	idMu  sync.Mutex
	idRnd = rand.New(rand.NewSource(rand.Int63()))
)

// RandomPeerID returns a new random non-zero PeerID.
func RandomPeerID() PeerID {
	idMu.Lock()
	defer idMu.Unlock()
	for {
		if id := PeerID(idRnd.Uint64()); id != InvalidPeerID {
			return id
		}
	}
}
