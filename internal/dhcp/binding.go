package dhcp

import "bytes"

// Binding records that addr_value has been handed to a client identified by
// ClientID. An empty ClientID marks the reserved server self-binding.
type Binding struct {
	AddrValue uint32
	ClientID  []byte
}

// BindingStore is the in-memory collection of address bindings. It is
// mutated only by the handler, which is single-threaded with respect to
// itself, so no locking is needed.
type BindingStore struct {
	bindings []Binding
}

// NewBindingStore returns an empty store.
func NewBindingStore() *BindingStore {
	return &BindingStore{}
}

// FindByClientID returns the index of the first binding whose ClientID
// matches id exactly, or -1 if none does. An empty id never matches: that
// identifies the reserved server self-binding, not a real client.
func (s *BindingStore) FindByClientID(id []byte) int {
	if len(id) == 0 {
		return -1
	}
	for i, b := range s.bindings {
		if bytes.Equal(b.ClientID, id) {
			return i
		}
	}
	return -1
}

// FindByAddrValue returns the index of the binding holding v, or -1 if none
// does.
func (s *BindingStore) FindByAddrValue(v uint32) int {
	for i, b := range s.bindings {
		if b.AddrValue == v {
			return i
		}
	}
	return -1
}

// Insert appends a new binding. The caller (the handler, using an address
// the allocator chose) guarantees there is no address collision.
func (s *BindingStore) Insert(b Binding) int {
	s.bindings = append(s.bindings, b)
	return len(s.bindings) - 1
}

// Get returns a copy of the binding at index i.
func (s *BindingStore) Get(i int) Binding {
	return s.bindings[i]
}

// Len returns the number of bindings in the store, including the server
// self-binding.
func (s *BindingStore) Len() int {
	return len(s.bindings)
}
