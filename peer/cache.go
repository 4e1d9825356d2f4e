package peer

import (
	"time"

	"github.com/cornelk/hashmap"
	"github.com/pkg/errors"
	"github.com/rigado/gap"
	"github.com/rigado/gap/dispatch"
	"github.com/rigado/gap/sm"
)

// CacheTimeout is how long an unused temporary peer is kept.
const CacheTimeout = 60 * time.Second

// ListenerID identifies a registered callback.
type ListenerID uint64

type listener struct {
	id      ListenerID
	updated func(*Peer)
	removed func(gap.PeerID)
	bonded  func(*Peer)
}

// BondingData restores a peer from persistent storage.
type BondingData struct {
	ID           gap.PeerID
	Address      gap.Address
	Name         string
	LE           *gap.PairingData
	BrEdrLinkKey *gap.LTK
}

// Cache is the directory of known peers, indexed by id and by address.
//
// Every mutation notifies listeners before returning. Listeners may read the
// cache but must post further mutations to the dispatcher.
type Cache struct {
	d   dispatch.Dispatcher
	log gap.Logger

	peers  *hashmap.Map[uint64, *Peer]
	byAddr *hashmap.Map[string, gap.PeerID]
	// resolving list, peer id to IRK
	irks   *hashmap.Map[uint64, [16]byte]
	expiry map[gap.PeerID]dispatch.Timer

	listeners    []listener
	nextListener ListenerID
}

// NewCache returns an empty cache whose timers run on d.
func NewCache(d dispatch.Dispatcher, l gap.Logger) *Cache {
	if l == nil {
		l = gap.ComponentLogger("peer")
	}
	return &Cache{
		d:      d,
		log:    l,
		peers:  hashmap.New[uint64, *Peer](),
		byAddr: hashmap.New[string, gap.PeerID](),
		irks:   hashmap.New[uint64, [16]byte](),
		expiry: make(map[gap.PeerID]dispatch.Timer),
	}
}

// NewPeer creates a temporary peer. It fails if the address is already known.
func (c *Cache) NewPeer(addr gap.Address, connectable bool) (*Peer, error) {
	if p := c.FindByAddress(addr); p != nil {
		return nil, errors.Wrapf(gap.ErrAlreadyExists, "%v is %v", addr, p.id)
	}
	p := c.insert(gap.RandomPeerID(), addr, connectable)
	c.notifyUpdated(p)
	c.updateExpiry(p)
	return p, nil
}

func (c *Cache) insert(id gap.PeerID, addr gap.Address, connectable bool) *Peer {
	p := newPeer(c, id, addr, connectable)
	c.peers.Set(uint64(id), p)
	c.byAddr.Set(addr.Key(), id)
	c.log.Debugf("new %v", p)
	return p
}

// AddBondedPeer restores a bonded peer. It fails if the id or an address is already in use.
func (c *Cache) AddBondedPeer(b BondingData) error {
	if b.LE == nil && b.BrEdrLinkKey == nil {
		return errors.Wrap(gap.ErrInvalidParameters, "no keys")
	}
	if b.ID == gap.InvalidPeerID {
		return errors.Wrap(gap.ErrInvalidParameters, "invalid id")
	}
	if c.FindByID(b.ID) != nil {
		return errors.Wrapf(gap.ErrAlreadyExists, "id %v", b.ID)
	}
	if b.LE != nil && b.LE.IdentityAddress != nil && c.FindByAddress(*b.LE.IdentityAddress) != nil {
		return errors.Wrapf(gap.ErrAlreadyExists, "address %v", *b.LE.IdentityAddress)
	}
	if c.FindByAddress(b.Address) != nil {
		return errors.Wrapf(gap.ErrAlreadyExists, "address %v", b.Address)
	}

	p := c.insert(b.ID, b.Address, true)
	p.temporary = false
	if b.Name != "" {
		p.name = b.Name
		p.nameKnown = true
	}
	if b.LE != nil {
		le := p.MutLE()
		d := *b.LE
		le.bond = &d
		if d.IdentityAddress != nil {
			p.address = *d.IdentityAddress
			p.identityKnown = true
			c.byAddr.Set(d.IdentityAddress.Key(), p.id)
		}
		if d.IRK != nil {
			c.irks.Set(uint64(p.id), d.IRK.Value)
		}
	}
	if b.BrEdrLinkKey != nil {
		k := *b.BrEdrLinkKey
		p.MutBrEdr().linkKey = &k
	}
	c.notifyUpdated(p)
	return nil
}

// FindByID returns the peer or nil.
func (c *Cache) FindByID(id gap.PeerID) *Peer {
	p, ok := c.peers.Get(uint64(id))
	if !ok {
		return nil
	}
	return p
}

// FindByAddress returns the peer known by addr. Resolvable private addresses
// are also matched against the IRKs of bonded peers.
func (c *Cache) FindByAddress(addr gap.Address) *Peer {
	if id, ok := c.byAddr.Get(addr.Key()); ok {
		return c.FindByID(id)
	}
	if !addr.IsResolvablePrivate() {
		return nil
	}
	var found *Peer
	c.irks.Range(func(id uint64, irk [16]byte) bool {
		if sm.ResolveRPA(irk, addr.Value) {
			found = c.FindByID(gap.PeerID(id))
			return false
		}
		return true
	})
	return found
}

// StoreLowEnergyBond saves the keys of an LE pairing. Storing the same data
// again changes nothing and notifies no one. If the identity address belongs
// to another peer, that peer is merged into this one when it is neither
// connected nor bonded; otherwise the call fails.
func (c *Cache) StoreLowEnergyBond(id gap.PeerID, data gap.PairingData) error {
	p := c.FindByID(id)
	if p == nil {
		return errors.Wrapf(gap.ErrNotFound, "peer %v", id)
	}
	if !data.Bondable() {
		return errors.Wrap(gap.ErrInvalidParameters, "pairing data has no keys")
	}
	if p.le != nil && p.le.bond != nil && p.le.bond.Equal(data) {
		return nil
	}

	if data.IdentityAddress != nil {
		ia := *data.IdentityAddress
		if other := c.FindByAddress(ia); other != nil && other.id != id {
			if err := c.merge(p, other); err != nil {
				return err
			}
		}
		c.byAddr.Set(ia.Key(), id)
		p.address = ia
		p.identityKnown = true
	}
	if data.IRK != nil {
		c.irks.Set(uint64(id), data.IRK.Value)
	}

	le := p.MutLE()
	d := data
	le.bond = &d
	p.temporary = false

	c.log.Infof("%v: stored le bond", p)
	c.notifyBonded(p)
	p.changed()
	return nil
}

// StoreBrEdrBond saves a link key, creating the peer if needed.
func (c *Cache) StoreBrEdrBond(addr gap.Address, key gap.LTK) error {
	if !addr.IsPublic() {
		return errors.Wrapf(gap.ErrInvalidParameters, "%v is not a br/edr address", addr)
	}
	p := c.FindByAddress(addr)
	if p == nil {
		p = c.insert(gap.RandomPeerID(), gap.NewAddress(gap.AddressBREDR, addr.Value[:]), true)
	}

	d := p.MutBrEdr()
	if d.linkKey != nil && *d.linkKey == key {
		return nil
	}
	d.linkKey = &key
	p.temporary = false

	c.log.Infof("%v: stored br/edr bond", p)
	c.notifyBonded(p)
	p.changed()
	return nil
}

// merge moves the BR/EDR record of other into p and removes other.
func (c *Cache) merge(p, other *Peer) error {
	if other.Connected() || other.Bonded() {
		return errors.Wrapf(gap.ErrAlreadyExists, "identity address belongs to %v", other)
	}
	if p.bredr == nil && other.bredr != nil {
		p.bredr = other.bredr
		p.bredr.p = p
	}
	if !p.nameKnown && other.nameKnown {
		p.name = other.name
		p.nameKnown = true
	}
	c.log.Infof("merging %v into %v", other, p)
	c.remove(other)
	return nil
}

// RemoveDisconnectedPeer forgets a peer. It reports false, and does nothing,
// while the peer has a link. Unknown ids report true.
func (c *Cache) RemoveDisconnectedPeer(id gap.PeerID) bool {
	p := c.FindByID(id)
	if p == nil {
		return true
	}
	if p.Connected() {
		return false
	}
	c.remove(p)
	return true
}

func (c *Cache) remove(p *Peer) {
	if t, ok := c.expiry[p.id]; ok {
		t.Stop()
		delete(c.expiry, p.id)
	}
	var keys []string
	c.byAddr.Range(func(k string, id gap.PeerID) bool {
		if id == p.id {
			keys = append(keys, k)
		}
		return true
	})
	for _, k := range keys {
		c.byAddr.Del(k)
	}
	c.irks.Del(uint64(p.id))
	c.peers.Del(uint64(p.id))
	c.log.Debugf("removed %v", p)
	c.notifyRemoved(p.id)
}

// ForEach calls fn for every peer.
func (c *Cache) ForEach(fn func(*Peer)) {
	c.peers.Range(func(_ uint64, p *Peer) bool {
		fn(p)
		return true
	})
}

// Len is the number of known peers.
func (c *Cache) Len() int {
	return c.peers.Len()
}

func (c *Cache) updateExpiry(p *Peer) {
	if t, ok := c.expiry[p.id]; ok {
		t.Stop()
		delete(c.expiry, p.id)
	}
	if !p.temporary || p.Connected() {
		return
	}
	id := p.id
	c.expiry[id] = c.d.PostDelayed(CacheTimeout, func() {
		delete(c.expiry, id)
		p := c.FindByID(id)
		if p == nil || !p.temporary || p.Connected() {
			return
		}
		c.log.Debugf("%v expired", p)
		c.remove(p)
	})
}

// AddPeerUpdatedCallback registers fn for every change to a peer, including creation.
func (c *Cache) AddPeerUpdatedCallback(fn func(*Peer)) ListenerID {
	return c.addListener(listener{updated: fn})
}

// AddPeerRemovedCallback registers fn for peers leaving the cache.
func (c *Cache) AddPeerRemovedCallback(fn func(gap.PeerID)) ListenerID {
	return c.addListener(listener{removed: fn})
}

// AddPeerBondedCallback registers fn for newly stored or changed keys.
func (c *Cache) AddPeerBondedCallback(fn func(*Peer)) ListenerID {
	return c.addListener(listener{bonded: fn})
}

func (c *Cache) addListener(l listener) ListenerID {
	c.nextListener++
	l.id = c.nextListener
	c.listeners = append(c.listeners, l)
	return l.id
}

// RemoveListener unregisters a callback.
func (c *Cache) RemoveListener(id ListenerID) bool {
	for i, l := range c.listeners {
		if l.id == id {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cache) snapshot() []listener {
	return append([]listener(nil), c.listeners...)
}

func (c *Cache) notifyUpdated(p *Peer) {
	for _, l := range c.snapshot() {
		if l.updated != nil {
			l.updated(p)
		}
	}
}

func (c *Cache) notifyRemoved(id gap.PeerID) {
	for _, l := range c.snapshot() {
		if l.removed != nil {
			l.removed(id)
		}
	}
}

func (c *Cache) notifyBonded(p *Peer) {
	for _, l := range c.snapshot() {
		if l.bonded != nil {
			l.bonded(p)
		}
	}
}
