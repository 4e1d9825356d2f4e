// Package weakref implements generation-checked back references. A Ref never keeps
// its target reachable for protocol purposes: once the owning Factory is invalidated,
// every Ref minted before that point reports the target as gone.
package weakref

type cell struct {
	gen uint64
}

// Factory mints references to a single target.
type Factory[T any] struct {
	target T
	cell   *cell
}

func NewFactory[T any](target T) *Factory[T] {
	return &Factory[T]{target: target, cell: &cell{}}
}

// Ref returns a reference that stays valid until the next Invalidate.
func (f *Factory[T]) Ref() Ref[T] {
	return Ref[T]{target: f.target, cell: f.cell, gen: f.cell.gen}
}

// Invalidate kills every outstanding Ref. New refs may be minted afterwards.
func (f *Factory[T]) Invalidate() {
	f.cell.gen++
}

// Ref is a weak back reference.
type Ref[T any] struct {
	target T
	cell   *cell
	gen    uint64
}

// Get returns the target if the factory has not been invalidated since the Ref was minted.
func (r Ref[T]) Get() (T, bool) {
	if r.cell == nil || r.cell.gen != r.gen {
		var zero T
		return zero, false
	}
	return r.target, true
}

// Alive reports whether Get would succeed.
func (r Ref[T]) Alive() bool {
	_, ok := r.Get()
	return ok
}
