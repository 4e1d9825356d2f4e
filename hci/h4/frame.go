package h4

import (
	"time"
)

const (
	pktTypeACL   = 0x02
	pktTypeEvent = 0x04

	frameTimeout = 500 * time.Millisecond
)

// assembler reassembles H4 packets from an unframed byte stream. Bytes that
// precede a packet type indicator are discarded, and a partial packet is
// dropped when its remainder does not arrive within frameTimeout.
type assembler struct {
	b        []byte
	deadline time.Time
	now      func() time.Time
}

func newAssembler() *assembler {
	return &assembler{now: time.Now}
}

// feed consumes b and returns every packet completed by it.
func (a *assembler) feed(b []byte) [][]byte {
	if len(a.b) > 0 && a.now().After(a.deadline) {
		a.b = nil
	}

	var out [][]byte
	for len(b) > 0 {
		if len(a.b) == 0 {
			i := 0
			for i < len(b) && b[i] != pktTypeEvent && b[i] != pktTypeACL {
				i++
			}
			if i == len(b) {
				return out
			}
			a.b = append(a.b, b[i])
			b = b[i+1:]
			a.deadline = a.now().Add(frameTimeout)
			continue
		}

		n := a.missing()
		if n < 0 {
			// header still incomplete, take what we need to read the length
			take := -n
			if take > len(b) {
				take = len(b)
			}
			a.b = append(a.b, b[:take]...)
			b = b[take:]
			continue
		}
		if n > len(b) {
			n = len(b)
		}
		a.b = append(a.b, b[:n]...)
		b = b[n:]
		if a.missing() == 0 {
			out = append(out, a.b)
			a.b = nil
		}
	}
	return out
}

// missing returns the bytes needed to complete the current packet, or the
// negated count needed to complete its header.
func (a *assembler) missing() int {
	switch a.b[0] {
	case pktTypeEvent:
		if len(a.b) < 3 {
			return len(a.b) - 3
		}
		return 3 + int(a.b[2]) - len(a.b)
	default:
		if len(a.b) < 5 {
			return len(a.b) - 5
		}
		return 5 + (int(a.b[3]) | int(a.b[4])<<8) - len(a.b)
	}
}
