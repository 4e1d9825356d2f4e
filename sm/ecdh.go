package sm

import (
	"crypto"
	"crypto/elliptic"
	"crypto/rand"

	"github.com/pkg/errors"
	"github.com/rigado/gap/sliceops"
	"github.com/wsddn/go-ecdh"
)

// keyPair is a P-256 key pair for LE Secure Connections.
type keyPair struct {
	public  crypto.PublicKey
	private crypto.PrivateKey
}

func p256() ecdh.ECDH {
	return ecdh.NewEllipticECDH(elliptic.P256())
}

func generateKeys() (*keyPair, error) {
	var err error
	kp := keyPair{}

	kp.private, kp.public, err = p256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "generate p-256 key")
	}

	return &kp, nil
}

// unmarshalPublicKey decodes the 64 octet X || Y of a Pairing Public Key PDU.
func unmarshalPublicKey(b []byte) (crypto.PublicKey, bool) {
	if len(b) != 64 {
		return nil, false
	}
	xs := sliceops.SwapBuf(b[:32])
	ys := sliceops.SwapBuf(b[32:])

	// uncompressed point
	r := append([]byte{0x04}, xs...)
	r = append(r, ys...)

	return p256().Unmarshal(r)
}

func marshalPublicKeyXY(k crypto.PublicKey) []byte {
	ba := p256().Marshal(k)
	ba = ba[1:]
	x := sliceops.SwapBuf(ba[:32])
	y := sliceops.SwapBuf(ba[32:])

	return append(x, y...)
}

func marshalPublicKeyX(k crypto.PublicKey) []byte {
	return marshalPublicKeyXY(k)[:32]
}

func dhKey(prv crypto.PrivateKey, pub crypto.PublicKey) ([]byte, error) {
	b, err := p256().GenerateSharedSecret(prv, pub)
	if err != nil {
		return nil, errors.Wrap(err, "dhkey")
	}
	// left pad the x coordinate
	if len(b) < 32 {
		b = append(make([]byte, 32-len(b)), b...)
	}
	return sliceops.SwapBuf(b), nil
}
