// Package vault defines the yield vault adapter used to custody locked
// vesting funds. Deposited assets are exchanged for vault shares at the
// vault's current rate; shares appreciate as the vault accrues yield and
// are redeemed back into assets when beneficiaries claim.
package vault

import (
	"context"
	"errors"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// ErrInsufficientShares is returned when a redeem asks for more shares
// than the owner holds.
var ErrInsufficientShares = errors.New("vault: insufficient shares")

// Adapter is the yield vault a vesting ledger deposits into. Implementations
// wrap external tokenized vaults; InMemory provides a deterministic local one.
type Adapter interface {
	// Account returns the vault's own asset account, the destination of
	// deposit pulls and the source of redeem payouts.
	Account() id.AccountID

	// Deposit exchanges assets for shares credited to receiver. The vault
	// pulls the assets from receiver's balance, so the caller must have
	// approved the vault account beforehand.
	Deposit(ctx context.Context, assets types.Assets, receiver id.AccountID) (types.Shares, error)

	// Redeem burns shares held by owner and pays the corresponding assets
	// to receiver.
	Redeem(ctx context.Context, shares types.Shares, receiver, owner id.AccountID) (types.Assets, error)

	// ConvertToShares quotes how many shares a deposit of assets would
	// mint at the current rate.
	ConvertToShares(ctx context.Context, assets types.Assets) (types.Shares, error)

	// ConvertToAssets quotes how many assets a redeem of shares would
	// pay at the current rate.
	ConvertToAssets(ctx context.Context, shares types.Shares) (types.Assets, error)
}
