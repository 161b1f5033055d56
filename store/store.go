package store

import (
	"context"

	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// Store is the unified storage interface for all vesting entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Schedule methods
	CreateSchedule(ctx context.Context, s *schedule.Schedule) error
	GetSchedule(ctx context.Context, schedID id.ScheduleID) (*schedule.Schedule, error)
	GetActiveSchedule(ctx context.Context, beneficiary id.AccountID) (*schedule.Schedule, error)
	ListSchedules(ctx context.Context, beneficiary id.AccountID, opts schedule.ListOpts) ([]*schedule.Schedule, error)
	UpdateSchedule(ctx context.Context, s *schedule.Schedule) error

	// Claim methods
	CreateClaim(ctx context.Context, r *claim.Receipt) error
	ListClaims(ctx context.Context, beneficiary id.AccountID, opts claim.ListOpts) ([]*claim.Receipt, error)

	// Withdrawable accumulator. AddWithdrawable credits shares reclaimed
	// from cancellations and returns the new total; TakeWithdrawable
	// atomically drains the accumulator to zero and returns what it held.
	AddWithdrawable(ctx context.Context, shares types.Shares) (types.Shares, error)
	TakeWithdrawable(ctx context.Context) (types.Shares, error)
	Withdrawable(ctx context.Context) (types.Shares, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
