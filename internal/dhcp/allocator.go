package dhcp

import "errors"

// ErrPoolExhausted is returned when no free address remains in the pool.
var ErrPoolExhausted = errors.New("pool exhausted")

// Allocator picks the next offerable address by incremental scan with
// wrap-around. LastOffered is a named field rather than function-local
// static state, so multiple allocators (and tests) never share a cursor.
type Allocator struct {
	Min         uint32
	Max         uint32
	LastOffered uint32

	store *BindingStore
}

// NewAllocator returns an allocator over [min, max] backed by store. The
// cursor is seeded to max so the first candidate computed is min.
func NewAllocator(min, max uint32, store *BindingStore) *Allocator {
	return &Allocator{Min: min, Max: max, LastOffered: max, store: store}
}

// Next returns the address to offer an already-bound client (its existing
// binding) or, for a new client, the next free address found by scanning
// forward from the cursor with wrap-around. It does not mutate the
// allocator or the store; the cursor moves only when the caller calls
// Commit.
func (a *Allocator) Next(existing *Binding) (uint32, error) {
	if existing != nil {
		return existing.AddrValue, nil
	}

	candidate := a.LastOffered + 1
	if candidate > a.Max {
		candidate = a.Min
	}
	initial := candidate

	for {
		if a.store.FindByAddrValue(candidate) == -1 {
			return candidate, nil
		}
		candidate++
		if candidate > a.Max {
			candidate = a.Min
		}
		if candidate == initial {
			return 0, ErrPoolExhausted
		}
	}
}

// Commit records that addr was offered, advancing the cursor. The handler
// calls it when it builds an OFFER, before the transport writes the reply;
// a later failed socket write does not roll the cursor back.
func (a *Allocator) Commit(addr uint32) {
	a.LastOffered = addr
}
