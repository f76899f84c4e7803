package ledger

import (
	"context"
	"time"

	"github.com/tonkeeper/tongo/ton"
)

// The lifecycle treats the host ledger's side effects as injected
// capabilities so it can be tested against fakes that simulate failure.
// Implementations must make each call atomic: a returned error means no
// units moved.

type Clock interface {
	Now() time.Time
}

// AssetCustody moves exactly one unit of a non-fungible asset between
// holders.
type AssetCustody interface {
	TransferAsset(ctx context.Context, asset, from, to ton.AccountID) error
}

// ValueTransfer moves native value units and answers balance queries.
type ValueTransfer interface {
	Balance(ctx context.Context, account ton.AccountID) (uint64, error)
	TransferValue(ctx context.Context, amount uint64, from, to ton.AccountID) error
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
