// Package vesting provides a composable token vesting engine for Go
// applications.
//
// Vesting is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - Cliff plus interval-based linear vesting schedules per beneficiary
//   - Yield-bearing custody: locked funds sit in a vault and appreciate
//     until claimed
//   - Integer-only share math with 128-bit intermediates, no floating point
//   - Admin cancellation with a global reclaimed-shares accumulator
//   - Pluggable storage (memory, SQLite, PostgreSQL, MongoDB via Grove)
//   - Lifecycle plugins for audit trails and metrics
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/xraph/vesting"
//	    "github.com/xraph/vesting/store/memory"
//	)
//
//	l := vesting.New(memory.New(), vaultAdapter, token,
//	    vesting.WithAuthorizer(policy),
//	)
//
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// A schedule locks a total amount for a beneficiary. The amount (minus any
// pre-vested portion) is deposited into a yield vault in exchange for
// shares; shares unlock linearly between the cliff and the end time, and
// redeem for more assets as the vault accrues yield:
//
//	sched, err := l.CreateSchedule(ctx, schedule.Params{
//	    Beneficiary:      beneficiary,
//	    TotalAmount:      1_000_000,
//	    CliffDuration:    180 * 24 * time.Hour,
//	    IntervalDuration: 90 * 24 * time.Hour,
//	    Intervals:        4,
//	})
//
// Beneficiaries claim whatever has unlocked:
//
//	paid, err := l.Claim(vesting.WithCaller(ctx, beneficiary))
//
// Callers are identified through the context; privileged operations consult
// the configured authz.Policy.
package vesting
