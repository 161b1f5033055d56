// Package observability provides a metrics extension for Ledger that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"

	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/schedule"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin             = (*MetricsExtension)(nil)
	_ plugin.OnInit             = (*MetricsExtension)(nil)
	_ plugin.OnScheduleCreated  = (*MetricsExtension)(nil)
	_ plugin.OnVestingCancelled = (*MetricsExtension)(nil)
	_ plugin.OnClaimed          = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawn        = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Ledger plugin to automatically track vesting metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Schedule metrics
	ScheduleCreated   Counter
	VestingCancelled  Counter
	SharesReclaimed   Counter
	ScheduleShareSize Histogram

	// Payout metrics
	Claims          Counter
	SharesRedeemed  Counter
	AssetsPaid      Counter
	ClaimPayoutSize Histogram

	// Withdrawal metrics
	Withdrawals      Counter
	AssetsWithdrawn  Counter
	WithdrawalAmount Histogram

	// Error metrics
	StoreErrors  Counter
	PluginErrors Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Schedule metrics
		ScheduleCreated:   factory.Counter("vesting.schedule.created"),
		VestingCancelled:  factory.Counter("vesting.schedule.cancelled"),
		SharesReclaimed:   factory.Counter("vesting.shares.reclaimed"),
		ScheduleShareSize: factory.Histogram("vesting.schedule.total_shares"),

		// Payout metrics
		Claims:          factory.Counter("vesting.claims"),
		SharesRedeemed:  factory.Counter("vesting.shares.redeemed"),
		AssetsPaid:      factory.Counter("vesting.assets.paid"),
		ClaimPayoutSize: factory.Histogram("vesting.claim.assets_paid"),

		// Withdrawal metrics
		Withdrawals:      factory.Counter("vesting.withdrawals"),
		AssetsWithdrawn:  factory.Counter("vesting.assets.withdrawn"),
		WithdrawalAmount: factory.Histogram("vesting.withdrawal.assets"),

		// Error metrics
		StoreErrors:  factory.Counter("vesting.store.errors"),
		PluginErrors: factory.Counter("vesting.plugin.errors"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Schedule lifecycle hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated implements plugin.OnScheduleCreated.
func (m *MetricsExtension) OnScheduleCreated(_ context.Context, sched interface{}) error {
	m.ScheduleCreated.Inc()
	if s, ok := sched.(*schedule.Schedule); ok {
		m.ScheduleShareSize.Observe(float64(s.TotalShares))
	}
	return nil
}

// OnVestingCancelled implements plugin.OnVestingCancelled.
func (m *MetricsExtension) OnVestingCancelled(_ context.Context, _ interface{}, reclaimedShares uint64) error {
	m.VestingCancelled.Inc()
	m.SharesReclaimed.Add(float64(reclaimedShares))
	return nil
}

// ──────────────────────────────────────────────────
// Payout hooks
// ──────────────────────────────────────────────────

// OnClaimed implements plugin.OnClaimed.
func (m *MetricsExtension) OnClaimed(_ context.Context, receipt interface{}) error {
	m.Claims.Inc()
	if r, ok := receipt.(*claim.Receipt); ok {
		m.SharesRedeemed.Add(float64(r.SharesRedeemed))
		m.AssetsPaid.Add(float64(r.AssetsPaid))
		m.ClaimPayoutSize.Observe(float64(r.AssetsPaid))
	}
	return nil
}

// OnWithdrawn implements plugin.OnWithdrawn.
func (m *MetricsExtension) OnWithdrawn(_ context.Context, _, assets uint64) error {
	m.Withdrawals.Inc()
	m.AssetsWithdrawn.Add(float64(assets))
	m.WithdrawalAmount.Observe(float64(assets))
	return nil
}
