package raffle

import "github.com/tonkeeper/tongo/ton"

// Store persists the admin identity, the collection registry, and the raffle
// records. Every method is a single all-or-nothing transaction: when a
// callback or a later step fails, nothing written earlier in the call
// survives.
type Store interface {
	// Admin returns the curating identity, or ErrAdminNotInitialized.
	Admin() (ton.AccountID, error)
	// InitializeAdmin writes the singleton admin identity exactly once and
	// fails with ErrAdminAlreadyInitialized afterwards.
	InitializeAdmin(admin ton.AccountID) error

	// Collections returns the registry entries in append order.
	Collections() ([]ton.AccountID, error)
	// AppendCollection appends id unless present (idempotent) and reports
	// whether the registry grew. A new id beyond capacity fails with
	// ErrCapacityExceeded.
	AppendCollection(id ton.AccountID, capacity int) (bool, error)

	// CreateRaffle inserts rec, assigns rec.ID, and then runs escrow; an
	// escrow failure discards the insert.
	CreateRaffle(rec *Record, escrow func() error) error
	// GetRaffle loads one record with its entrants, or ErrRaffleNotFound.
	GetRaffle(id uint64) (*Record, error)
	// UpdateRaffle loads the record, applies mutate, and persists the
	// resulting counters, winner, status, and any appended entrants. A
	// mutate error aborts the whole update and is returned unchanged.
	UpdateRaffle(id uint64, mutate func(rec *Record) error) error
}
