// Package store keeps bonding data in a JSON file so that bonds survive a
// restart of the host.
package store

import (
	"encoding/hex"
	"os"
	"strconv"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/peer"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type bondFile struct {
	Bonds []bondRecord `json:"bonds"`
}

type bondRecord struct {
	ID      string        `json:"id"`
	Address addressRecord `json:"address"`
	Name    string        `json:"name,omitempty"`
	LE      *leRecord     `json:"le,omitempty"`
	LinkKey *ltkRecord    `json:"linkKey,omitempty"`
}

type addressRecord struct {
	Type  uint8  `json:"type"`
	Value string `json:"value"`
}

type leRecord struct {
	IdentityAddress   *addressRecord `json:"identityAddress,omitempty"`
	PeerLTK           *ltkRecord     `json:"peerLtk,omitempty"`
	LocalLTK          *ltkRecord     `json:"localLtk,omitempty"`
	IRK               *keyRecord     `json:"irk,omitempty"`
	CSRK              *keyRecord     `json:"csrk,omitempty"`
	CrossTransportKey *ltkRecord     `json:"crossTransportKey,omitempty"`
}

type securityRecord struct {
	Level             int  `json:"level"`
	KeySize           int  `json:"keySize"`
	SecureConnections bool `json:"secureConnections"`
}

type keyRecord struct {
	Security securityRecord `json:"security"`
	Value    string         `json:"value"`
}

type ltkRecord struct {
	Security securityRecord `json:"security"`
	Key      string         `json:"key"`
	EDiv     uint16         `json:"ediv"`
	Rand     string         `json:"rand"`
}

// File is a bond store backed by a single JSON file. It is safe for
// concurrent use; the file is read and rewritten on every call.
type File struct {
	filename string
	lock     sync.RWMutex
	log      gap.Logger
}

func New(filename string, l gap.Logger) *File {
	if l == nil {
		l = gap.ComponentLogger("store")
	}
	return &File{filename: filename, log: l}
}

// Save adds b, replacing any record with the same peer id.
func (f *File) Save(b peer.BondingData) error {
	if b.ID == gap.InvalidPeerID {
		return errors.Wrap(gap.ErrInvalidParameters, "invalid peer id")
	}
	if b.LE == nil && b.BrEdrLinkKey == nil {
		return errors.Wrapf(gap.ErrInvalidParameters, "%v: no keys", b.ID)
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	bf, err := f.loadExisting()
	if err != nil {
		return err
	}

	rec := toRecord(b)
	replaced := false
	for i := range bf.Bonds {
		if bf.Bonds[i].ID == rec.ID {
			bf.Bonds[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		bf.Bonds = append(bf.Bonds, rec)
	}

	return f.storeBonds(bf)
}

// Load returns every stored bond.
func (f *File) Load() ([]peer.BondingData, error) {
	f.lock.RLock()
	defer f.lock.RUnlock()

	bf, err := f.loadExisting()
	if err != nil {
		return nil, err
	}

	out := make([]peer.BondingData, 0, len(bf.Bonds))
	for _, r := range bf.Bonds {
		b, err := fromRecord(r)
		if err != nil {
			return nil, errors.Wrapf(err, "bond %s", r.ID)
		}
		out = append(out, b)
	}
	return out, nil
}

// Delete removes the bond of id. Deleting an unknown id is not an error.
func (f *File) Delete(id gap.PeerID) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	bf, err := f.loadExisting()
	if err != nil {
		return err
	}

	key := id.String()
	kept := bf.Bonds[:0]
	for _, r := range bf.Bonds {
		if r.ID != key {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(bf.Bonds) {
		return nil
	}
	bf.Bonds = kept
	return f.storeBonds(bf)
}

// Clear removes the file.
func (f *File) Clear() error {
	f.lock.Lock()
	defer f.lock.Unlock()

	err := os.Remove(f.filename)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// FromPeer extracts the bonding data of a bonded peer.
func FromPeer(p *peer.Peer) peer.BondingData {
	b := peer.BondingData{ID: p.ID(), Address: p.Address()}
	if name, ok := p.Name(); ok {
		b.Name = name
	}
	if le := p.LE(); le != nil && le.BondData() != nil {
		d := *le.BondData()
		b.LE = &d
	}
	if bredr := p.BrEdr(); bredr != nil && bredr.LinkKey() != nil {
		k := *bredr.LinkKey()
		b.BrEdrLinkKey = &k
	}
	return b
}

// Track saves peers to the file whenever the cache reports a new bond.
// Cache listeners run on the cache's dispatcher, so Track must be called
// from it too.
func (f *File) Track(c *peer.Cache) peer.ListenerID {
	return c.AddPeerBondedCallback(func(p *peer.Peer) {
		if err := f.Save(FromPeer(p)); err != nil {
			f.log.Errorf("%v: save bond: %v", p.ID(), err)
			return
		}
		f.log.Debugf("%v: bond saved", p.ID())
	})
}

// Restore adds every stored bond to the cache and returns how many were
// restored. Records the cache refuses are logged and skipped.
func (f *File) Restore(c *peer.Cache) (int, error) {
	bonds, err := f.Load()
	if err != nil {
		return 0, err
	}

	n := 0
	for _, b := range bonds {
		if err := c.AddBondedPeer(b); err != nil {
			f.log.Warnf("%v: restore bond: %v", b.ID, err)
			continue
		}
		n++
	}
	return n, nil
}

func (f *File) loadExisting() (*bondFile, error) {
	in, err := os.ReadFile(f.filename)
	if os.IsNotExist(err) {
		return &bondFile{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read bond file")
	}

	var bf bondFile
	if len(in) > 0 {
		if err := json.Unmarshal(in, &bf); err != nil {
			return nil, errors.Wrap(err, "unmarshal bond file")
		}
	}
	return &bf, nil
}

func (f *File) storeBonds(bf *bondFile) error {
	out, err := json.MarshalIndent(bf, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal bonds")
	}
	return errors.Wrap(os.WriteFile(f.filename, out, 0600), "write bond file")
}

func toRecord(b peer.BondingData) bondRecord {
	r := bondRecord{
		ID:      b.ID.String(),
		Address: toAddress(b.Address),
		Name:    b.Name,
		LinkKey: toLTK(b.BrEdrLinkKey),
	}
	if d := b.LE; d != nil {
		r.LE = &leRecord{
			PeerLTK:           toLTK(d.PeerLTK),
			LocalLTK:          toLTK(d.LocalLTK),
			IRK:               toKey(d.IRK),
			CSRK:              toKey(d.CSRK),
			CrossTransportKey: toLTK(d.CrossTransportKey),
		}
		if d.IdentityAddress != nil {
			a := toAddress(*d.IdentityAddress)
			r.LE.IdentityAddress = &a
		}
	}
	return r
}

func fromRecord(r bondRecord) (peer.BondingData, error) {
	var b peer.BondingData

	id, err := strconv.ParseUint(r.ID, 16, 64)
	if err != nil {
		return b, errors.Wrap(err, "id")
	}
	b.ID = gap.PeerID(id)
	b.Name = r.Name

	if b.Address, err = fromAddress(r.Address); err != nil {
		return b, err
	}
	if b.BrEdrLinkKey, err = fromLTK(r.LinkKey); err != nil {
		return b, errors.Wrap(err, "link key")
	}

	if r.LE == nil {
		return b, nil
	}
	d := &gap.PairingData{}
	if r.LE.IdentityAddress != nil {
		a, err := fromAddress(*r.LE.IdentityAddress)
		if err != nil {
			return b, errors.Wrap(err, "identity")
		}
		d.IdentityAddress = &a
	}
	if d.PeerLTK, err = fromLTK(r.LE.PeerLTK); err != nil {
		return b, errors.Wrap(err, "peer ltk")
	}
	if d.LocalLTK, err = fromLTK(r.LE.LocalLTK); err != nil {
		return b, errors.Wrap(err, "local ltk")
	}
	if d.CrossTransportKey, err = fromLTK(r.LE.CrossTransportKey); err != nil {
		return b, errors.Wrap(err, "cross transport key")
	}
	if d.IRK, err = fromKey(r.LE.IRK); err != nil {
		return b, errors.Wrap(err, "irk")
	}
	if d.CSRK, err = fromKey(r.LE.CSRK); err != nil {
		return b, errors.Wrap(err, "csrk")
	}
	b.LE = d
	return b, nil
}

func toAddress(a gap.Address) addressRecord {
	return addressRecord{Type: uint8(a.Type), Value: strings.Fields(a.String())[0]}
}

func fromAddress(r addressRecord) (gap.Address, error) {
	if r.Type > uint8(gap.AddressLEAnonymous) {
		return gap.Address{}, errors.Errorf("invalid address type %d", r.Type)
	}
	return gap.ParseAddress(gap.AddressType(r.Type), r.Value)
}

func toSecurity(p gap.SecurityProperties) securityRecord {
	return securityRecord{Level: int(p.Level), KeySize: p.EncryptionKeySize, SecureConnections: p.SecureConnections}
}

func fromSecurity(r securityRecord) gap.SecurityProperties {
	return gap.SecurityProperties{
		Level:             gap.SecurityLevel(r.Level),
		EncryptionKeySize: r.KeySize,
		SecureConnections: r.SecureConnections,
	}
}

func toLTK(k *gap.LTK) *ltkRecord {
	if k == nil {
		return nil
	}
	var rnd [8]byte
	for i := range rnd {
		rnd[i] = byte(k.Rand >> (8 * i))
	}
	return &ltkRecord{
		Security: toSecurity(k.Security),
		Key:      hex.EncodeToString(k.Key[:]),
		EDiv:     k.EDiv,
		Rand:     hex.EncodeToString(rnd[:]),
	}
}

func fromLTK(r *ltkRecord) (*gap.LTK, error) {
	if r == nil {
		return nil, nil
	}
	k := &gap.LTK{Security: fromSecurity(r.Security), EDiv: r.EDiv}
	if err := decodeHex(k.Key[:], r.Key); err != nil {
		return nil, err
	}
	var rnd [8]byte
	if err := decodeHex(rnd[:], r.Rand); err != nil {
		return nil, errors.Wrap(err, "rand")
	}
	for i, v := range rnd {
		k.Rand |= uint64(v) << (8 * i)
	}
	return k, nil
}

func toKey(k *gap.Key) *keyRecord {
	if k == nil {
		return nil
	}
	return &keyRecord{Security: toSecurity(k.Security), Value: hex.EncodeToString(k.Value[:])}
}

func fromKey(r *keyRecord) (*gap.Key, error) {
	if r == nil {
		return nil, nil
	}
	k := &gap.Key{Security: fromSecurity(r.Security)}
	if err := decodeHex(k.Value[:], r.Value); err != nil {
		return nil, err
	}
	return k, nil
}

func decodeHex(dst []byte, s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return err
	}
	if len(b) != len(dst) {
		return errors.Errorf("expected %d bytes, got %d", len(dst), len(b))
	}
	copy(dst, b)
	return nil
}
