// Package authz defines the capability policy consulted before privileged
// vesting operations. The ledger never manages role membership itself; it
// asks the configured Policy whether a caller holds the required role.
package authz

import (
	"context"
	"sync"

	"github.com/xraph/vesting/id"
)

// Role names a capability a caller may hold.
type Role string

const (
	// RoleAdmin may cancel schedules and withdraw reclaimed shares.
	RoleAdmin Role = "vesting.admin"

	// RoleManager may create vesting schedules.
	RoleManager Role = "vesting.manager"
)

// Policy answers capability checks for vesting operations.
type Policy interface {
	HasCapability(ctx context.Context, caller id.AccountID, role Role) bool
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, caller id.AccountID, role Role) bool

func (f PolicyFunc) HasCapability(ctx context.Context, caller id.AccountID, role Role) bool {
	return f(ctx, caller, role)
}

// AllowAll grants every capability to every caller. Test helper.
func AllowAll() Policy {
	return PolicyFunc(func(context.Context, id.AccountID, Role) bool { return true })
}

// Static is an in-memory grant table.
type Static struct {
	mu     sync.RWMutex
	grants map[string]map[Role]bool
}

// NewStatic creates an empty grant table.
func NewStatic() *Static {
	return &Static{grants: make(map[string]map[Role]bool)}
}

// Grant gives caller the role.
func (s *Static) Grant(caller id.AccountID, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roles := s.grants[caller.String()]
	if roles == nil {
		roles = make(map[Role]bool)
		s.grants[caller.String()] = roles
	}
	roles[role] = true
}

// Revoke removes the role from caller.
func (s *Static) Revoke(caller id.AccountID, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.grants[caller.String()], role)
}

func (s *Static) HasCapability(_ context.Context, caller id.AccountID, role Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grants[caller.String()][role]
}

var _ Policy = (*Static)(nil)
