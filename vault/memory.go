package vault

import (
	"context"
	"fmt"
	"sync"

	"github.com/xraph/vesting/asset"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// InMemory is a deterministic in-memory yield vault backed by an asset
// ledger. The exchange rate is assets-per-share expressed as a rational
// rateNum/rateDen; raising it simulates yield accrual.
type InMemory struct {
	mu      sync.Mutex
	account id.AccountID
	token   asset.Token
	shares  map[string]types.Shares
	rateNum uint64
	rateDen uint64
}

// NewInMemory creates a vault holding assets on ledger at a 1:1 rate.
func NewInMemory(ledger *asset.InMemory) *InMemory {
	acct := id.NewAccountID()
	return &InMemory{
		account: acct,
		token:   ledger.Bind(acct),
		shares:  make(map[string]types.Shares),
		rateNum: 1,
		rateDen: 1,
	}
}

// Account returns the vault's asset account.
func (v *InMemory) Account() id.AccountID { return v.account }

// SetExchangeRate sets the assets-per-share rate to num/den. Yield
// simulation helper for tests.
func (v *InMemory) SetExchangeRate(num, den uint64) {
	if num == 0 || den == 0 {
		panic("vault: exchange rate terms must be positive")
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rateNum, v.rateDen = num, den
}

// SharesOf returns the shares held by owner.
func (v *InMemory) SharesOf(owner id.AccountID) types.Shares {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shares[owner.String()]
}

func (v *InMemory) Deposit(ctx context.Context, assets types.Assets, receiver id.AccountID) (types.Shares, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.token.TransferFrom(ctx, receiver, v.account, assets); err != nil {
		return 0, fmt.Errorf("vault: deposit pull failed: %w", err)
	}
	minted := types.MulDiv(types.Shares(assets), v.rateDen, v.rateNum)
	v.shares[receiver.String()] += minted
	return minted, nil
}

func (v *InMemory) Redeem(ctx context.Context, shares types.Shares, receiver, owner id.AccountID) (types.Assets, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.shares[owner.String()] < shares {
		return 0, ErrInsufficientShares
	}
	paid := types.Assets(types.MulDiv(shares, v.rateNum, v.rateDen))
	if err := v.token.Transfer(ctx, receiver, paid); err != nil {
		return 0, fmt.Errorf("vault: redeem payout failed: %w", err)
	}
	v.shares[owner.String()] -= shares
	return paid, nil
}

func (v *InMemory) ConvertToShares(_ context.Context, assets types.Assets) (types.Shares, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return types.MulDiv(types.Shares(assets), v.rateDen, v.rateNum), nil
}

func (v *InMemory) ConvertToAssets(_ context.Context, shares types.Shares) (types.Assets, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return types.Assets(types.MulDiv(shares, v.rateNum, v.rateDen)), nil
}

var _ Adapter = (*InMemory)(nil)
