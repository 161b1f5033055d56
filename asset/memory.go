package asset

import (
	"context"
	"sync"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// InMemory is a minimal in-memory fungible asset ledger with standard
// balance/allowance semantics. Use Bind to obtain a Token view acting on
// behalf of a holder account.
type InMemory struct {
	mu         sync.Mutex
	balances   map[string]types.Assets
	allowances map[string]map[string]types.Assets // owner -> spender -> amount
}

// NewInMemory creates an empty in-memory asset ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		balances:   make(map[string]types.Assets),
		allowances: make(map[string]map[string]types.Assets),
	}
}

// Mint credits an account's balance. Test and bootstrap helper.
func (m *InMemory) Mint(acct id.AccountID, amount types.Assets) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[acct.String()] += amount
}

// BalanceOf returns an account's balance.
func (m *InMemory) BalanceOf(_ context.Context, owner id.AccountID) (types.Assets, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[owner.String()], nil
}

// Bind returns a Token view acting on behalf of holder.
func (m *InMemory) Bind(holder id.AccountID) Token {
	return &boundToken{ledger: m, holder: holder}
}

func (m *InMemory) transfer(from, to id.AccountID, amount types.Assets) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transferLocked(from, to, amount)
}

func (m *InMemory) transferLocked(from, to id.AccountID, amount types.Assets) error {
	if m.balances[from.String()] < amount {
		return ErrInsufficientBalance
	}
	m.balances[from.String()] -= amount
	m.balances[to.String()] += amount
	return nil
}

type boundToken struct {
	ledger *InMemory
	holder id.AccountID
}

func (t *boundToken) Transfer(_ context.Context, to id.AccountID, amount types.Assets) error {
	return t.ledger.transfer(t.holder, to, amount)
}

func (t *boundToken) TransferFrom(_ context.Context, from, to id.AccountID, amount types.Assets) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	spenders := t.ledger.allowances[from.String()]
	if spenders == nil || spenders[t.holder.String()] < amount {
		return ErrInsufficientAllowance
	}
	if err := t.ledger.transferLocked(from, to, amount); err != nil {
		return err
	}
	spenders[t.holder.String()] -= amount
	return nil
}

func (t *boundToken) Approve(_ context.Context, spender id.AccountID, amount types.Assets) error {
	t.ledger.mu.Lock()
	defer t.ledger.mu.Unlock()

	spenders := t.ledger.allowances[t.holder.String()]
	if spenders == nil {
		spenders = make(map[string]types.Assets)
		t.ledger.allowances[t.holder.String()] = spenders
	}
	spenders[spender.String()] = amount
	return nil
}

func (t *boundToken) BalanceOf(ctx context.Context, owner id.AccountID) (types.Assets, error) {
	return t.ledger.BalanceOf(ctx, owner)
}
