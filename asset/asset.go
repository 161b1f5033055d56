// Package asset defines the fungible-asset transfer boundary the vesting
// ledger operates across, plus an in-memory implementation for tests and
// development wiring.
package asset

import (
	"context"
	"errors"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// Sentinel errors for asset transfer failures.
var (
	ErrInsufficientBalance   = errors.New("asset: insufficient balance")
	ErrInsufficientAllowance = errors.New("asset: insufficient allowance")
)

// Token is the fungible-asset interface the vesting ledger consumes.
// Implementations act on behalf of a bound holder account: Transfer moves
// out of the holder's balance, Approve grants a spender an allowance on it,
// and TransferFrom spends the allowance the holder was granted by another
// account. Any failure must abort the enclosing ledger operation.
type Token interface {
	Transfer(ctx context.Context, to id.AccountID, amount types.Assets) error
	TransferFrom(ctx context.Context, from, to id.AccountID, amount types.Assets) error
	Approve(ctx context.Context, spender id.AccountID, amount types.Assets) error
	BalanceOf(ctx context.Context, owner id.AccountID) (types.Assets, error)
}
