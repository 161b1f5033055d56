// Package audithook bridges Ledger lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/schedule"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin             = (*Extension)(nil)
	_ plugin.OnScheduleCreated  = (*Extension)(nil)
	_ plugin.OnVestingCancelled = (*Extension)(nil)
	_ plugin.OnClaimed          = (*Extension)(nil)
	_ plugin.OnWithdrawn        = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Ledger lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Schedule lifecycle hooks
// ──────────────────────────────────────────────────

// OnScheduleCreated implements plugin.OnScheduleCreated.
func (e *Extension) OnScheduleCreated(ctx context.Context, sched interface{}) error {
	var scheduleID, beneficiary string
	var totalShares uint64
	if s, ok := sched.(*schedule.Schedule); ok {
		scheduleID = s.ID.String()
		beneficiary = s.Beneficiary.String()
		totalShares = uint64(s.TotalShares)
	}
	return e.record(ctx, ActionScheduleCreated, SeverityInfo, OutcomeSuccess,
		ResourceSchedule, scheduleID, CategoryVesting, nil,
		"beneficiary", beneficiary,
		"total_shares", totalShares,
	)
}

// OnVestingCancelled implements plugin.OnVestingCancelled.
func (e *Extension) OnVestingCancelled(ctx context.Context, sched interface{}, reclaimedShares uint64) error {
	var scheduleID, beneficiary string
	if s, ok := sched.(*schedule.Schedule); ok {
		scheduleID = s.ID.String()
		beneficiary = s.Beneficiary.String()
	}
	return e.record(ctx, ActionVestingCancelled, SeverityWarning, OutcomeSuccess,
		ResourceSchedule, scheduleID, CategoryVesting, nil,
		"beneficiary", beneficiary,
		"reclaimed_shares", reclaimedShares,
	)
}

// ──────────────────────────────────────────────────
// Payout hooks
// ──────────────────────────────────────────────────

// OnClaimed implements plugin.OnClaimed.
func (e *Extension) OnClaimed(ctx context.Context, receipt interface{}) error {
	var claimID, beneficiary string
	var sharesRedeemed, assetsPaid uint64
	if r, ok := receipt.(*claim.Receipt); ok {
		claimID = r.ID.String()
		beneficiary = r.Beneficiary.String()
		sharesRedeemed = uint64(r.SharesRedeemed)
		assetsPaid = uint64(r.AssetsPaid)
	}
	return e.record(ctx, ActionClaimPaid, SeverityInfo, OutcomeSuccess,
		ResourceClaim, claimID, CategoryPayout, nil,
		"beneficiary", beneficiary,
		"shares_redeemed", sharesRedeemed,
		"assets_paid", assetsPaid,
	)
}

// OnWithdrawn implements plugin.OnWithdrawn.
func (e *Extension) OnWithdrawn(ctx context.Context, shares, assets uint64) error {
	return e.record(ctx, ActionFundsWithdrawn, SeverityWarning, OutcomeSuccess,
		ResourceTreasury, "", CategoryPayout, nil,
		"shares_redeemed", shares,
		"assets_paid", assets,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
