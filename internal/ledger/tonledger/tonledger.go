// Package tonledger backs the custody and value-transfer capabilities with
// the TON blockchain: balances are read through tonapi and transfers are
// signed and sent by the service's vault wallet. Only vault-outbound legs
// (claim and withdraw) can be signed here; inbound escrow deposits and
// ticket payments are the payers' own transactions and fail if attempted.
package tonledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tonkeeper/tonapi-go"
	"github.com/tonkeeper/tongo/boc"
	"github.com/tonkeeper/tongo/liteapi"
	"github.com/tonkeeper/tongo/tlb"
	"github.com/tonkeeper/tongo/ton"
	"github.com/tonkeeper/tongo/wallet"
	"go.uber.org/zap"

	"raffle/internal/logger"
)

// nftTransferOp is the TEP-62 NFT transfer op code.
const nftTransferOp = 0x5fcc3d14

// carryAmount is attached to outgoing custody messages to pay forward fees.
const carryAmount = 5_000_000_0

const sendTimeout = 60 * time.Second

var WalletMap = map[string]int{
	"V1R1":         0,
	"V1R2":         1,
	"V1R3":         2,
	"V2R1":         3,
	"V2R2":         4,
	"V3R1":         5,
	"V3R2":         6,
	"V3R2Lockup":   7,
	"V4R1":         8,
	"V4R2":         9,
	"V5Beta":       10,
	"V5R1":         11,
	"HighLoadV1R1": 12,
	"HighLoadV1R2": 13,
	"HighLoadV2":   14,
	"HighLoadV2R1": 15,
	"HighLoadV2R2": 16,
}

type Configuration struct {
	Vault          ton.AccountID
	WalletMnemonic string
	WalletVersion  string
	Token          string
}

type Ledger struct {
	client *tonapi.Client
	wallet *wallet.Wallet
	vault  ton.AccountID
}

type Func[T any] func() (T, error)

func rateLimitRetry[T any](
	fn Func[T],
) (T, error) {
	for {
		result, err := fn()
		if err != nil {
			var e *tonapi.ErrorStatusCode
			if errors.As(errors.Unwrap(err), &e) && e.StatusCode == 429 {
				time.Sleep(500 * time.Millisecond)
				continue
			}
		}

		return result, err
	}
}

func New(configuration Configuration) (*Ledger, error) {

	logger.Debug("ton ledger initialization: tonapi client...")
	client, err := tonapi.NewClient(tonapi.TonApiURL, tonapi.WithToken(configuration.Token))
	if err != nil {
		return nil, err
	}

	logger.Debug("ton ledger initialization: wallet...")
	clientLite, err := liteapi.NewClientWithDefaultMainnet()
	if err != nil {
		return nil, err
	}

	pk, err := wallet.SeedToPrivateKey(configuration.WalletMnemonic)
	if err != nil {
		return nil, err
	}

	version, ok := WalletMap[configuration.WalletVersion]
	if !ok {
		return nil, fmt.Errorf("unknown wallet version %q", configuration.WalletVersion)
	}

	vaultWallet, err := wallet.New(pk, wallet.Version(version), clientLite)
	if err != nil {
		return nil, err
	}

	logger.Debug("ton ledger initialization: done", zap.String("vault", configuration.Vault.ToRaw()))
	return &Ledger{
		client: client,
		wallet: &vaultWallet,
		vault:  configuration.Vault,
	}, nil
}

func (l *Ledger) Balance(ctx context.Context, account ton.AccountID) (uint64, error) {

	state, err := rateLimitRetry(
		func() (*tonapi.Account, error) {
			return l.client.GetAccount(ctx, tonapi.GetAccountParams{
				AccountID: account.ToRaw(),
			})
		})

	if err != nil {
		return 0, err
	}

	balance := state.GetBalance()
	if balance < 0 {
		return 0, nil
	}

	return uint64(balance), nil
}

// TransferValue sends amount from the vault wallet. Pull-style transfers
// from arbitrary accounts belong to the host ledger; this adapter can only
// sign for the vault it owns.
func (l *Ledger) TransferValue(ctx context.Context, amount uint64, from, to ton.AccountID) error {
	if from != l.vault {
		return fmt.Errorf("value can only be sent from the vault wallet, got %s", from.ToRaw())
	}

	logger.Debug("sending value transfer...",
		zap.Uint64("amount", amount),
		zap.String("to", to.ToRaw()),
	)

	message := wallet.Message{
		Amount:  tlb.Grams(amount),
		Address: to,
		Bounce:  true,
		Mode:    wallet.DefaultMessageMode,
		Body:    boc.NewCell(),
	}

	_, err := l.wallet.SendV2(ctx, sendTimeout, message)
	if err != nil {
		return err
	}

	logger.Debug("sending value transfer... done")
	return nil
}

// TransferAsset sends a TEP-62 transfer message to the NFT item account,
// re-owning it to the destination. The vault wallet signs, so moves out of
// any holder other than the vault belong to the host ledger.
func (l *Ledger) TransferAsset(ctx context.Context, asset, from, to ton.AccountID) error {
	if from != l.vault {
		return fmt.Errorf("assets can only be released from the vault, got %s", from.ToRaw())
	}

	logger.Debug("sending asset transfer...",
		zap.String("asset", asset.ToRaw()),
		zap.String("to", to.ToRaw()),
	)

	cell := boc.NewCell()

	if err := cell.WriteUint(nftTransferOp, 32); err != nil {
		return err
	}

	// query id
	if err := cell.WriteUint(0, 64); err != nil {
		return err
	}

	// new owner
	if err := tlb.Marshal(cell, to.ToMsgAddress()); err != nil {
		return err
	}

	// response destination for excess value
	if err := tlb.Marshal(cell, from.ToMsgAddress()); err != nil {
		return err
	}

	// no custom payload, zero forward amount, inline (empty) forward payload
	if err := cell.WriteBit(false); err != nil {
		return err
	}
	if err := cell.WriteUint(0, 4); err != nil {
		return err
	}
	if err := cell.WriteBit(false); err != nil {
		return err
	}

	message := wallet.Message{
		Amount:  carryAmount,
		Address: asset,
		Bounce:  true,
		Mode:    wallet.DefaultMessageMode,
		Body:    cell,
	}

	_, err := l.wallet.SendV2(ctx, sendTimeout, message)
	if err != nil {
		return err
	}

	logger.Debug("sending asset transfer... done")
	return nil
}
