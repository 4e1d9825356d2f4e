package sm

import (
	"encoding/hex"
	"testing"

	"github.com/rigado/gap/sliceops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// s2h decodes a hex string; swap converts a most-significant-first value into wire order.
func s2h(t *testing.T, swap bool, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	if swap {
		return sliceops.SwapBuf(b)
	}
	return b
}

func TestAesCMAC(t *testing.T) {
	key := s2h(t, true, "2b7e151628aed2a6abf7158809cf4f3c")
	msg := s2h(t, true, "6bc1bee22e409f96e93d7e117393172a")

	mac, err := aesCMAC(key, msg)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "070a16b46b4d4144f79bdd9dd04a287c"), mac)
}

func TestAh(t *testing.T) {
	irk := s2h(t, true, "ec0234a357c8ad05341010a60a397d9b")
	prand := s2h(t, true, "708194")

	h, err := Ah(irk, prand)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "0dfbaa"), h)

	var k [16]byte
	copy(k[:], irk)
	var addr [6]byte
	copy(addr[:], append(h, prand...))
	assert.True(t, ResolveRPA(k, addr))

	addr[0] ^= 0x01
	assert.False(t, ResolveRPA(k, addr))
}

func TestC1(t *testing.T) {
	k := make([]byte, 16)
	r := s2h(t, true, "5783d52156ad6f0e6388274ec6702ee0")
	preq := s2h(t, true, "07071000000101")
	pres := s2h(t, true, "05000800000302")
	ia := s2h(t, true, "a1a2a3a4a5a6")
	ra := s2h(t, true, "b1b2b3b4b5b6")

	c, err := C1(k, r, preq, pres, 0x01, 0x00, ia, ra)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "1e1e3fef878988ead2a74dc5bef13b86"), c)

	_, err = C1(k, r, preq[:6], pres, 0x01, 0x00, ia, ra)
	assert.Error(t, err)
}

func TestS1(t *testing.T) {
	k := make([]byte, 16)
	r1 := s2h(t, true, "000f0e0d0c0b0a091122334455667788")
	r2 := s2h(t, true, "010203040506070899aabbccddeeff00")

	stk, err := S1(k, r1, r2)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "9a1fe1f0e8b0f49b5b4216ae796da062"), stk)
}

func TestSecureConnectionsFunctions(t *testing.T) {
	u := s2h(t, true, "20b003d2f297be2c5e2c83a7e9f9a5b9eff49111acf4fddbcc0301480e359de6")
	v := s2h(t, true, "55188b3d32f6bb9a900afcfbeed4e72a59cb9ac2f19d7cfb6b4fdd49f47fc5fd")
	x := s2h(t, true, "d5cb8454d177733effffb2ec712baeab")
	y := s2h(t, true, "a6e8e7cc25a75f6e216583f7ff3dc4cf")

	f4, err := F4(u, v, x, 0)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "f2c916f107a9bd1cf1eda1bea974872d"), f4)

	w := s2h(t, true, "ec0234a357c8ad05341010a60a397d9b99796b13b4f866f1868d34f373bfa698")
	a1 := s2h(t, true, "0056123737bfce")
	a2 := s2h(t, true, "00a713702dcfc1")
	macKey, ltk, err := F5(w, x, y, a1, a2)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "2965f176a1084a02fd3f6a20ce636e20"), macKey)
	assert.Equal(t, s2h(t, true, "6986791169d7cd23980522b594750a38"), ltk)

	r := s2h(t, true, "12a3343bb453bb5408da42d20c2d0fc8")
	ioCap := s2h(t, true, "010102")
	f6, err := F6(macKey, x, y, r, ioCap, a1, a2)
	require.NoError(t, err)
	assert.Equal(t, s2h(t, true, "e3c473989cd0e8c5d26c0b09da958f61"), f6)

	g2, err := G2(u, v, x, y)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x2f9ed5ba%1000000), g2)

	_, err = F4(u[:31], v, x, 0)
	assert.Error(t, err)
}

func TestLegacyTK(t *testing.T) {
	tk := legacyTK(123456)
	assert.Len(t, tk, 16)
	assert.Equal(t, []byte{0x40, 0xe2, 0x01, 0x00}, tk[:4])
	assert.Equal(t, make([]byte, 12), tk[4:])
}
