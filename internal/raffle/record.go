package raffle

import "github.com/tonkeeper/tongo/ton"

// Day is the minimum sale window and the creator's withdraw delay, in seconds.
const Day int64 = 60 * 60 * 24

type Status uint8

// Status values use a stable on-record encoding:
// 0 open, 1 claimed, 2 drawn, 3 withdrawn.
const (
	StatusOpen      Status = 0
	StatusClaimed   Status = 1
	StatusDrawn     Status = 2
	StatusWithdrawn Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "open"
	case StatusClaimed:
		return "claimed"
	case StatusDrawn:
		return "drawn"
	case StatusWithdrawn:
		return "withdrawn"
	}
	return "unknown"
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusClaimed || s == StatusWithdrawn
}

// Record is the persistent state of one raffle. Entrants holds one slot per
// ticket sold, not per buyer; a buyer purchasing n tickets appears n times,
// which is what makes the draw odds proportional to tickets held.
type Record struct {
	ID               uint64
	Creator          ton.AccountID
	Asset            ton.AccountID
	TicketPrice      uint64
	StartTime        int64
	EndTime          int64
	MaxTickets       uint64
	TicketCount      uint64
	UniqueBuyerCount uint64
	Entrants         []ton.AccountID
	WinnerIndex      uint64
	Winner           ton.AccountID
	Status           Status

	buyers map[ton.AccountID]struct{}
}

// HasEntrant reports whether buyer already holds at least one ticket.
// Membership is answered from an index built on first use, so repeated
// purchases stay O(1) while the observable outcome matches a scan of
// Entrants.
func (r *Record) HasEntrant(buyer ton.AccountID) bool {
	r.ensureBuyerIndex()
	_, ok := r.buyers[buyer]
	return ok
}

// AppendEntrants adds amount tickets for buyer, maintaining TicketCount and
// UniqueBuyerCount. Callers must have checked the capacity bound already.
func (r *Record) AppendEntrants(buyer ton.AccountID, amount uint64) {
	r.ensureBuyerIndex()
	if _, ok := r.buyers[buyer]; !ok {
		r.buyers[buyer] = struct{}{}
		r.UniqueBuyerCount++
	}
	for i := uint64(0); i < amount; i++ {
		r.Entrants = append(r.Entrants, buyer)
	}
	r.TicketCount += amount
}

func (r *Record) ensureBuyerIndex() {
	if r.buyers != nil {
		return
	}
	r.buyers = make(map[ton.AccountID]struct{}, len(r.Entrants))
	for _, entrant := range r.Entrants {
		r.buyers[entrant] = struct{}{}
	}
}
