// Package plugin provides an extensible plugin system for the vesting
// ledger. Plugins can hook into lifecycle events to extend functionality.
package plugin

import (
	"context"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Schedule lifecycle hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated is called when a new vesting schedule is created.
type OnScheduleCreated interface {
	Plugin
	OnScheduleCreated(ctx context.Context, sched interface{}) error
}

// OnVestingCancelled is called when a schedule is cancelled by an admin.
type OnVestingCancelled interface {
	Plugin
	OnVestingCancelled(ctx context.Context, sched interface{}, reclaimedShares uint64) error
}

// ──────────────────────────────────────────────────
// Payout hooks
// ──────────────────────────────────────────────────

// OnClaimed is called when a beneficiary claims released funds.
type OnClaimed interface {
	Plugin
	OnClaimed(ctx context.Context, receipt interface{}) error
}

// OnWithdrawn is called when an admin withdraws reclaimed shares.
type OnWithdrawn interface {
	Plugin
	OnWithdrawn(ctx context.Context, shares, assets uint64) error
}
