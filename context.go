package vesting

import (
	"context"

	"github.com/xraph/vesting/id"
)

type contextKey int

const callerKey contextKey = iota

// WithCaller returns a context carrying the calling account's identity.
// Every privileged Ledger operation reads the caller from its context.
func WithCaller(ctx context.Context, caller id.AccountID) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext extracts the caller identity set by WithCaller.
// The second return is false when no caller is attached.
func CallerFromContext(ctx context.Context) (id.AccountID, bool) {
	caller, ok := ctx.Value(callerKey).(id.AccountID)
	if !ok || caller.IsNil() {
		return id.Nil, false
	}
	return caller, true
}

// requireCaller extracts the caller or fails with ErrNoCaller.
func requireCaller(ctx context.Context) (id.AccountID, error) {
	caller, ok := CallerFromContext(ctx)
	if !ok {
		return id.Nil, ErrNoCaller
	}
	return caller, nil
}
