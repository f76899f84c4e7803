package raffle

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/tonkeeper/tongo/ton"
	"go.uber.org/zap"

	"raffle/internal/ledger"
	"raffle/internal/logger"
)

// CollectionProof is one entry of an asset's declared collection membership:
// a claimed parent collection plus the verified flag from the asset's own
// metadata. Only entries that are both verified and registered make the
// asset eligible.
type CollectionProof struct {
	Collection ton.AccountID
	Verified   bool
}

// Params are the policy values of the platform: the ticket and registry
// caps and the treasury fee.
type Params struct {
	Treasury       ton.AccountID
	Vault          ton.AccountID
	FeePercent     uint64
	MaxTickets     uint64
	MaxCollections int
}

// Service runs the raffle lifecycle over a Store, with custody and value
// movement delegated to the injected ledger capabilities.
type Service struct {
	store   Store
	custody ledger.AssetCustody
	value   ledger.ValueTransfer
	clock   ledger.Clock
	params  Params
}

func NewService(store Store, custody ledger.AssetCustody, value ledger.ValueTransfer, clock ledger.Clock, params Params) *Service {
	return &Service{
		store:   store,
		custody: custody,
		value:   value,
		clock:   clock,
		params:  params,
	}
}

// InitializeAdmin writes the curating identity. It succeeds exactly once.
func (s *Service) InitializeAdmin(admin ton.AccountID) error {
	logger.Debug("initializing admin identity...", zap.String("admin", admin.ToRaw()))

	if err := s.store.InitializeAdmin(admin); err != nil {
		return err
	}

	logger.Debug("initializing admin identity... done")
	return nil
}

// AddCollection appends a collection to the eligibility registry. Only the
// admin identity may call it; duplicate appends are safe no-ops.
func (s *Service) AddCollection(caller, collection ton.AccountID) error {
	admin, err := s.store.Admin()
	if err != nil {
		return err
	}
	if caller != admin {
		return ErrNotAdmin
	}

	entries, err := s.store.Collections()
	if err != nil {
		return err
	}
	registry := NewCollectionRegistry(s.params.MaxCollections, entries)

	added, err := registry.Append(collection)
	if err != nil {
		return err
	}
	if !added {
		logger.Debug("collection already registered", zap.String("collection", collection.ToRaw()))
		return nil
	}

	// the store repeats the capacity and uniqueness checks inside its own
	// transaction
	if _, err := s.store.AppendCollection(collection, s.params.MaxCollections); err != nil {
		return err
	}

	logger.Debug("collection appended", zap.String("collection", collection.ToRaw()))
	return nil
}

// Collections returns the registry entries in append order.
func (s *Service) Collections() ([]ton.AccountID, error) {
	return s.store.Collections()
}

// CreateRaffle escrows one unit of asset into the vault and opens a raffle
// for it. The asset must prove verified membership in a registered
// collection, the sale window must be at least one day, and maxTickets must
// not exceed the platform cap.
func (s *Service) CreateRaffle(ctx context.Context, creator, asset ton.AccountID, proof []CollectionProof, ticketPrice uint64, endTime int64, maxTickets uint64) (*Record, error) {
	logger.Debug("creating raffle...",
		zap.String("creator", creator.ToRaw()),
		zap.String("asset", asset.ToRaw()),
	)

	if maxTickets > s.params.MaxTickets {
		return nil, ErrCapacityTooLarge
	}

	// the price is stored as a signed 64-bit integer
	if ticketPrice > math.MaxInt64 {
		return nil, ErrTicketPriceTooLarge
	}

	now := s.clock.Now().Unix()
	if now+Day > endTime {
		return nil, ErrInvalidEndTime
	}

	if len(proof) == 0 {
		return nil, ErrMetadataParseError
	}

	entries, err := s.store.Collections()
	if err != nil {
		return nil, err
	}
	registry := NewCollectionRegistry(s.params.MaxCollections, entries)

	eligible := false
	for _, entry := range proof {
		if entry.Verified && registry.Contains(entry.Collection) {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, ErrCollectionNotAllowed
	}

	rec := &Record{
		Creator:     creator,
		Asset:       asset,
		TicketPrice: ticketPrice,
		StartTime:   now,
		EndTime:     endTime,
		MaxTickets:  maxTickets,
		Status:      StatusOpen,
	}

	err = s.store.CreateRaffle(rec, func() error {
		if err := s.custody.TransferAsset(ctx, asset, creator, s.params.Vault); err != nil {
			return fmt.Errorf("%w: escrow: %v", ErrTransferFailed, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("creating raffle... done", zap.Uint64("raffle", rec.ID))
	return rec, nil
}

// BuyTickets sells amount tickets to buyer and splits the payment between
// the creator and the treasury. The whole sale applies atomically or not at
// all.
func (s *Service) BuyTickets(ctx context.Context, buyer ton.AccountID, raffleID uint64, amount uint64) error {
	logger.Debug("buying tickets...",
		zap.Uint64("raffle", raffleID),
		zap.String("buyer", buyer.ToRaw()),
		zap.Uint64("amount", amount),
	)

	if amount == 0 {
		return ErrInvalidTicketAmount
	}

	err := s.store.UpdateRaffle(raffleID, func(rec *Record) error {
		if rec.Status != StatusOpen {
			return ErrRaffleEnded
		}
		if s.clock.Now().Unix() > rec.EndTime {
			return ErrRaffleEnded
		}
		// TicketCount never exceeds MaxTickets, so the subtraction cannot wrap
		if amount > rec.MaxTickets-rec.TicketCount {
			return ErrNotEnoughTicketsLeft
		}

		// a total beyond 64 bits can never be covered by a balance
		hi, total := bits.Mul64(amount, rec.TicketPrice)
		if hi != 0 {
			return ErrInsufficientFunds
		}

		balance, err := s.value.Balance(ctx, buyer)
		if err != nil {
			return fmt.Errorf("%w: balance: %v", ErrTransferFailed, err)
		}
		if balance < total {
			return ErrInsufficientFunds
		}

		rec.AppendEntrants(buyer, amount)

		creatorShare, feeShare := Split(total, s.params.FeePercent)
		if creatorShare > 0 {
			if err := s.value.TransferValue(ctx, creatorShare, buyer, rec.Creator); err != nil {
				return fmt.Errorf("%w: creator share: %v", ErrTransferFailed, err)
			}
		}
		if feeShare > 0 {
			if err := s.value.TransferValue(ctx, feeShare, buyer, s.params.Treasury); err != nil {
				return fmt.Errorf("%w: fee share: %v", ErrTransferFailed, err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("buying tickets... done")
	return nil
}

// RevealWinner derives the winning ticket once the sale window has closed
// and at least one ticket was sold. Anyone may call it.
func (s *Service) RevealWinner(raffleID uint64) error {
	logger.Debug("revealing winner...", zap.Uint64("raffle", raffleID))

	err := s.store.UpdateRaffle(raffleID, func(rec *Record) error {
		switch rec.Status {
		case StatusOpen:
		case StatusDrawn:
			return ErrWinnersAlreadyDrawn
		default:
			return ErrRaffleEnded
		}

		now := s.clock.Now().Unix()
		if now < rec.EndTime {
			return ErrRaffleNotEnded
		}
		if rec.TicketCount == 0 {
			return ErrInvalidRevealedData
		}

		rec.WinnerIndex = DeriveWinnerIndex(now, rec.TicketCount)
		rec.Winner = rec.Entrants[rec.WinnerIndex]
		rec.Status = StatusDrawn

		logger.Info("winner drawn",
			zap.Uint64("raffle", rec.ID),
			zap.Uint64("winner index", rec.WinnerIndex),
			zap.String("winner", rec.Winner.ToRaw()),
		)
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("revealing winner... done")
	return nil
}

// ClaimReward releases the escrowed asset to the drawn winner.
func (s *Service) ClaimReward(ctx context.Context, caller ton.AccountID, raffleID uint64) error {
	logger.Debug("claiming reward...",
		zap.Uint64("raffle", raffleID),
		zap.String("caller", caller.ToRaw()),
	)

	err := s.store.UpdateRaffle(raffleID, func(rec *Record) error {
		switch rec.Status {
		case StatusDrawn:
		case StatusOpen:
			return ErrWinnerNotDrawn
		default:
			return ErrRaffleEnded
		}

		if s.clock.Now().Unix() < rec.EndTime {
			return ErrRaffleNotEnded
		}
		if caller != rec.Winner {
			return ErrNotWinner
		}

		if err := s.custody.TransferAsset(ctx, rec.Asset, s.params.Vault, rec.Winner); err != nil {
			return fmt.Errorf("%w: claim: %v", ErrTransferFailed, err)
		}

		rec.Status = StatusClaimed
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("claiming reward... done")
	return nil
}

// WithdrawAsset returns the escrowed asset to the creator of a raffle that
// never sold a ticket, one day after it opened at the earliest. Any sale
// forecloses withdrawal for good.
func (s *Service) WithdrawAsset(ctx context.Context, caller ton.AccountID, raffleID uint64) error {
	logger.Debug("withdrawing asset...",
		zap.Uint64("raffle", raffleID),
		zap.String("caller", caller.ToRaw()),
	)

	err := s.store.UpdateRaffle(raffleID, func(rec *Record) error {
		if rec.Status != StatusOpen {
			return ErrRaffleEnded
		}
		if s.clock.Now().Unix() < rec.StartTime+Day {
			return ErrRaffleNotEnded
		}
		if caller != rec.Creator {
			return ErrNotCreator
		}
		if rec.TicketCount != 0 {
			return ErrOtherEntrants
		}

		if err := s.custody.TransferAsset(ctx, rec.Asset, s.params.Vault, rec.Creator); err != nil {
			return fmt.Errorf("%w: withdraw: %v", ErrTransferFailed, err)
		}

		rec.Status = StatusWithdrawn
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug("withdrawing asset... done")
	return nil
}

// GetRaffle loads one raffle record with its entrants.
func (s *Service) GetRaffle(raffleID uint64) (*Record, error) {
	return s.store.GetRaffle(raffleID)
}
