package sm

import (
	"crypto/aes"
	"encoding/binary"
	"fmt"

	"github.com/aead/cmac"
	"github.com/rigado/gap/sliceops"
)

// All values below are little-endian byte slices, the order they travel in on the air.

var (
	f5Salt = []byte{0xbe, 0x83, 0x60, 0x5a, 0xdb, 0x0b, 0x37, 0x60,
		0x38, 0xa5, 0xf5, 0xaa, 0x91, 0x83, 0x88, 0x6c}
	f5KeyID = []byte{0x65, 0x6c, 0x74, 0x62} // "btle"
)

func aesCMAC(key, msg []byte) ([]byte, error) {
	c, err := aes.NewCipher(sliceops.SwapBuf(key))
	if err != nil {
		return nil, err
	}

	mac, err := cmac.New(c)
	if err != nil {
		return nil, err
	}

	mac.Write(sliceops.SwapBuf(msg))

	return sliceops.SwapBuf(mac.Sum(nil)), nil
}

// e is the security function e [Vol 3, Part H, 2.2.1].
func e(key, plaintext []byte) ([]byte, error) {
	if len(key) != 16 || len(plaintext) != 16 {
		return nil, fmt.Errorf("length error")
	}
	c, err := aes.NewCipher(sliceops.SwapBuf(key))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 16)
	c.Encrypt(out, sliceops.SwapBuf(plaintext))
	return sliceops.SwapBuf(out), nil
}

// Ah is the random address hash function [Vol 3, Part H, 2.2.2].
func Ah(irk, r []byte) ([]byte, error) {
	if len(r) != 3 {
		return nil, fmt.Errorf("length error")
	}
	rp := make([]byte, 16)
	copy(rp, r)
	h, err := e(irk, rp)
	if err != nil {
		return nil, err
	}
	return h[:3], nil
}

// ResolveRPA reports whether the resolvable private address addr was generated from irk.
func ResolveRPA(irk [16]byte, addr [6]byte) bool {
	h, err := Ah(irk[:], addr[3:6])
	if err != nil {
		return false
	}
	return h[0] == addr[0] && h[1] == addr[1] && h[2] == addr[2]
}

// C1 is the legacy pairing confirm value generation function [Vol 3, Part H, 2.2.3].
func C1(k, r, preq, pres []byte, iat, rat byte, ia, ra []byte) ([]byte, error) {
	if len(preq) != 7 || len(pres) != 7 || len(ia) != 6 || len(ra) != 6 {
		return nil, fmt.Errorf("length error")
	}

	p1 := make([]byte, 0, 16)
	p1 = append(p1, iat, rat)
	p1 = append(p1, preq...)
	p1 = append(p1, pres...)

	p2 := make([]byte, 0, 16)
	p2 = append(p2, ra...)
	p2 = append(p2, ia...)
	p2 = append(p2, 0, 0, 0, 0)

	t, err := e(k, sliceops.Xor(r, p1))
	if err != nil {
		return nil, err
	}
	return e(k, sliceops.Xor(t, p2))
}

// S1 is the legacy short term key generation function [Vol 3, Part H, 2.2.4].
func S1(k, r1, r2 []byte) ([]byte, error) {
	if len(r1) != 16 || len(r2) != 16 {
		return nil, fmt.Errorf("length error")
	}
	rp := make([]byte, 0, 16)
	rp = append(rp, r2[:8]...)
	rp = append(rp, r1[:8]...)
	return e(k, rp)
}

// F4 is the LE Secure Connections confirm value generation function [Vol 3, Part H, 2.2.6].
func F4(u, v, x []byte, z uint8) ([]byte, error) {
	if len(u) != 32 || len(v) != 32 || len(x) != 16 {
		return nil, fmt.Errorf("length error")
	}

	m := make([]byte, 0, 65)
	m = append(m, z)
	m = append(m, v...)
	m = append(m, u...)

	return aesCMAC(x, m)
}

// F5 is the LE Secure Connections key generation function [Vol 3, Part H, 2.2.7].
// a1 and a2 are the 6 octet addresses followed by their type octet.
func F5(w, n1, n2, a1, a2 []byte) (macKey []byte, ltk []byte, err error) {
	switch {
	case len(w) != 32:
		return nil, nil, fmt.Errorf("length error w")
	case len(n1) != 16:
		return nil, nil, fmt.Errorf("length error n1")
	case len(n2) != 16:
		return nil, nil, fmt.Errorf("length error n2")
	case len(a1) != 7:
		return nil, nil, fmt.Errorf("length error a1")
	case len(a2) != 7:
		return nil, nil, fmt.Errorf("length error a2")
	}

	t, err := aesCMAC(f5Salt, w)
	if err != nil {
		return nil, nil, err
	}

	m := make([]byte, 0, 53)
	m = append(m, 0x00, 0x01) // length 256
	m = append(m, a2...)
	m = append(m, a1...)
	m = append(m, n2...)
	m = append(m, n1...)
	m = append(m, f5KeyID...)
	m = append(m, 0x00)

	macKey, err = aesCMAC(t, m)
	if err != nil {
		return nil, nil, err
	}

	// counter
	m[52] = 0x01

	ltk, err = aesCMAC(t, m)
	if err != nil {
		return nil, nil, err
	}

	return macKey, ltk, nil
}

// F6 is the LE Secure Connections check value generation function [Vol 3, Part H, 2.2.8].
func F6(w, n1, n2, r, ioCap, a1, a2 []byte) ([]byte, error) {
	if len(w) != 16 || len(n1) != 16 || len(n2) != 16 || len(r) != 16 || len(ioCap) != 3 || len(a1) != 7 || len(a2) != 7 {
		return nil, fmt.Errorf("length error")
	}

	m := make([]byte, 0, 65)
	m = append(m, a2...)
	m = append(m, a1...)
	m = append(m, ioCap...)
	m = append(m, r...)
	m = append(m, n2...)
	m = append(m, n1...)

	return aesCMAC(w, m)
}

// G2 is the LE Secure Connections numeric comparison value generation function [Vol 3, Part H, 2.2.9].
func G2(u, v, x, y []byte) (uint32, error) {
	if len(u) != 32 || len(v) != 32 || len(x) != 16 || len(y) != 16 {
		return 0, fmt.Errorf("length error")
	}

	m := make([]byte, 0, 80)
	m = append(m, y...)
	m = append(m, v...)
	m = append(m, u...)

	h, err := aesCMAC(x, m)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(h[:4]) % 1000000, nil
}

// legacyTK builds the temporary key for a passkey (zero for Just Works).
func legacyTK(passkey uint32) []byte {
	tk := make([]byte, 16)
	binary.LittleEndian.PutUint32(tk, passkey)
	return tk
}
