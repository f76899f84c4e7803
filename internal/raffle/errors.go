package raffle

import "errors"

// Rejections reported by the lifecycle operations. Every precondition is
// checked before the first mutation, so a returned error always means the
// raffle record was left untouched.
var (
	// input validation
	ErrCapacityTooLarge    = errors.New("max tickets is too large")
	ErrTicketPriceTooLarge = errors.New("ticket price is too large")
	ErrInvalidEndTime      = errors.New("end time is earlier than one day after start")
	ErrInvalidTicketAmount = errors.New("ticket amount must be at least one")
	ErrCapacityExceeded    = errors.New("collection registry is full")

	// eligibility
	ErrCollectionNotAllowed = errors.New("unknown collection or the collection is not allowed")
	ErrMetadataParseError   = errors.New("cannot parse the asset's collection membership")

	// window / state violations
	ErrRaffleEnded          = errors.New("raffle has ended")
	ErrRaffleNotEnded       = errors.New("raffle has not ended")
	ErrInvalidRevealedData  = errors.New("invalid revealed data")
	ErrNotEnoughTicketsLeft = errors.New("not enough tickets left")
	ErrWinnersAlreadyDrawn  = errors.New("winner already drawn")
	ErrWinnerNotDrawn       = errors.New("winner not drawn")

	// authorization
	ErrNotAdmin      = errors.New("caller is not the admin")
	ErrNotCreator    = errors.New("caller is not the creator")
	ErrNotWinner     = errors.New("caller is not the winner")
	ErrOtherEntrants = errors.New("there are other entrants")

	// resources / funds
	ErrInsufficientFunds = errors.New("buyer balance does not cover the ticket total")

	// sub-call propagation
	ErrTransferFailed = errors.New("transfer failed")

	// storage conditions
	ErrRaffleNotFound          = errors.New("raffle not found")
	ErrAdminNotInitialized     = errors.New("admin identity not initialized")
	ErrAdminAlreadyInitialized = errors.New("admin identity already initialized")
)
