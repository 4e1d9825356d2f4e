package l2cap

import "encoding/binary"

// pdu is a B-frame: basic L2CAP header followed by the payload [Vol 3, Part A, 3.1].
type pdu []byte

func (p pdu) dlen() int       { return int(binary.LittleEndian.Uint16(p[0:2])) }
func (p pdu) cid() uint16     { return binary.LittleEndian.Uint16(p[2:4]) }
func (p pdu) payload() []byte { return p[4:] }

func newPDU(cid uint16, sdu []byte) pdu {
	b := make([]byte, 4+len(sdu))
	binary.LittleEndian.PutUint16(b[0:2], uint16(len(sdu)))
	binary.LittleEndian.PutUint16(b[2:4], cid)
	copy(b[4:], sdu)
	return b
}

// signal is one command on the LE signaling channel [Vol 3, Part A, 4].
type signal []byte

func (s signal) code() uint8    { return s[0] }
func (s signal) id() uint8      { return s[1] }
func (s signal) dlen() int      { return int(binary.LittleEndian.Uint16(s[2:4])) }
func (s signal) data() []byte   { return s[4:] }
func (s signal) complete() bool { return len(s) >= 4 && len(s)-4 == s.dlen() }

func newSignal(code, id uint8, data []byte) []byte {
	b := make([]byte, 4+len(data))
	b[0] = code
	b[1] = id
	binary.LittleEndian.PutUint16(b[2:4], uint16(len(data)))
	copy(b[4:], data)
	return b
}
