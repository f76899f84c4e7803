package raffle

import "github.com/tonkeeper/tongo/ton"

// CollectionRegistry is the ordered, append-only set of collection addresses
// whose assets may be raffled. It never shrinks. An auxiliary set backs the
// membership checks; entry order and counts are identical to appending with
// a linear membership scan.
type CollectionRegistry struct {
	capacity int
	entries  []ton.AccountID
	index    map[ton.AccountID]struct{}
}

func NewCollectionRegistry(capacity int, entries []ton.AccountID) *CollectionRegistry {
	registry := &CollectionRegistry{
		capacity: capacity,
		entries:  entries,
		index:    make(map[ton.AccountID]struct{}, len(entries)),
	}
	for _, entry := range entries {
		registry.index[entry] = struct{}{}
	}
	return registry
}

// Append adds id unless it is already present; duplicate calls are safe
// no-ops. It reports whether the registry grew, and fails with
// ErrCapacityExceeded only when id is new and the registry is full.
func (r *CollectionRegistry) Append(id ton.AccountID) (bool, error) {
	if _, ok := r.index[id]; ok {
		return false, nil
	}
	if len(r.entries) >= r.capacity {
		return false, ErrCapacityExceeded
	}
	r.entries = append(r.entries, id)
	r.index[id] = struct{}{}
	return true, nil
}

func (r *CollectionRegistry) Contains(id ton.AccountID) bool {
	_, ok := r.index[id]
	return ok
}

func (r *CollectionRegistry) Count() int {
	return len(r.entries)
}

func (r *CollectionRegistry) Entries() []ton.AccountID {
	return r.entries
}
