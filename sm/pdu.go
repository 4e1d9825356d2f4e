package sm

import (
	"encoding/binary"

	"github.com/rigado/gap"
)

// features is the body of Pairing Request and Pairing Response [Vol 3, Part H, 3.5.1].
type features struct {
	IOCap       uint8
	OOBFlag     uint8
	AuthReq     uint8
	MaxKeySize  uint8
	InitKeyDist uint8
	RespKeyDist uint8
}

func (f features) marshal(code uint8) []byte {
	return []byte{code, f.IOCap, f.OOBFlag, f.AuthReq, f.MaxKeySize, f.InitKeyDist, f.RespKeyDist}
}

func parseFeatures(in []byte) features {
	return features{
		IOCap:       in[0],
		OOBFlag:     in[1],
		AuthReq:     in[2],
		MaxKeySize:  in[3],
		InitKeyDist: in[4],
		RespKeyDist: in[5],
	}
}

func (f features) bonding() bool { return f.AuthReq&authReqBondMask == authReqBond }
func (f features) mitm() bool    { return f.AuthReq&authReqMITM != 0 }
func (f features) sc() bool      { return f.AuthReq&authReqSC != 0 }

// pduSizes holds the payload length of every command, code octet excluded.
var pduSizes = map[byte]int{
	pairingRequest:          6,
	pairingResponse:         6,
	pairingConfirm:          16,
	pairingRandom:           16,
	pairingFailed:           1,
	encryptionInformation:   16,
	masterIdentification:    10,
	identityInformation:     16,
	identityAddrInformation: 7,
	signingInformation:      16,
	securityRequest:         1,
	pairingPublicKey:        64,
	pairingDHKeyCheck:       16,
	pairingKeypress:         1,
}

func masterIdentificationPDU(ltk gap.LTK) []byte {
	b := make([]byte, 11)
	b[0] = masterIdentification
	binary.LittleEndian.PutUint16(b[1:3], ltk.EDiv)
	binary.LittleEndian.PutUint64(b[3:11], ltk.Rand)
	return b
}

// addr7 is the 56 bit address with its type as used by f5 and f6.
func addr7(a gap.Address) []byte {
	return append(append([]byte(nil), a.Value[:]...), a.HCIType())
}
