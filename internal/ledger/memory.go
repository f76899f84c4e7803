package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/tonkeeper/tongo/ton"
)

var (
	ErrNotHolder        = errors.New("account does not hold the asset")
	ErrBalanceTooLow    = errors.New("account balance is lower than the transfer amount")
	ErrTransferRejected = errors.New("transfer rejected")
)

// Memory is an in-process ledger for local runs and tests. It keeps
// per-account balances and per-asset holders under one mutex and can be
// told to reject transfers to exercise failure paths.
type Memory struct {
	mu       sync.Mutex
	balances map[ton.AccountID]uint64
	holders  map[ton.AccountID]ton.AccountID

	rejectValue bool
	rejectAsset bool
}

func NewMemory() *Memory {
	return &Memory{
		balances: make(map[ton.AccountID]uint64),
		holders:  make(map[ton.AccountID]ton.AccountID),
	}
}

func (m *Memory) SetBalance(account ton.AccountID, amount uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account] = amount
}

func (m *Memory) SetHolder(asset, holder ton.AccountID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holders[asset] = holder
}

func (m *Memory) Holder(asset ton.AccountID) ton.AccountID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.holders[asset]
}

// RejectValueTransfers makes every subsequent TransferValue fail.
func (m *Memory) RejectValueTransfers(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectValue = reject
}

// RejectAssetTransfers makes every subsequent TransferAsset fail.
func (m *Memory) RejectAssetTransfers(reject bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectAsset = reject
}

func (m *Memory) Balance(_ context.Context, account ton.AccountID) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account], nil
}

func (m *Memory) TransferValue(_ context.Context, amount uint64, from, to ton.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rejectValue {
		return ErrTransferRejected
	}
	if m.balances[from] < amount {
		return ErrBalanceTooLow
	}

	m.balances[from] -= amount
	m.balances[to] += amount
	return nil
}

func (m *Memory) TransferAsset(_ context.Context, asset, from, to ton.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rejectAsset {
		return ErrTransferRejected
	}
	if m.holders[asset] != from {
		return ErrNotHolder
	}

	m.holders[asset] = to
	return nil
}
