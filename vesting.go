package vesting

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/vesting/asset"
	"github.com/xraph/vesting/authz"
	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/plugin"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
	"github.com/xraph/vesting/vault"
)

// CancelPolicy selects what happens to time-unlocked but unclaimed shares
// when an admin cancels a schedule.
type CancelPolicy int

const (
	// CancelForfeitAccrued moves the full unreleased remainder into the
	// withdrawable accumulator, including shares already unlocked by
	// elapsed time.
	CancelForfeitAccrued CancelPolicy = iota

	// CancelSettleAccrued redeems currently-releasable shares to the
	// beneficiary first; only the still-locked remainder accrues to the
	// withdrawable accumulator.
	CancelSettleAccrued
)

// Ledger is the vesting engine. It custodies locked funds in a yield vault,
// tracks per-beneficiary schedules, and pays out claims as time unlocks them.
type Ledger struct {
	store   store.Store
	vault   vault.Adapter
	token   asset.Token
	authz   authz.Policy
	plugins *plugin.Registry
	logger  *slog.Logger

	// clock is swappable for deterministic tests.
	clock func() time.Time

	// custody is the account holding pulled assets and vault shares.
	// The configured token must act on behalf of this account.
	custody id.AccountID

	cancelPolicy CancelPolicy

	// mu serializes all mutating operations. External calls (token, vault)
	// happen while holding it, so state transitions never interleave.
	mu sync.Mutex
}

// New creates a new Ledger instance.
//
// The token must be bound to the custody account: its Transfer and Approve
// act as custody, and its TransferFrom spends allowances granted to custody.
func New(s store.Store, v vault.Adapter, t asset.Token, opts ...Option) *Ledger {
	l := &Ledger{
		store:        s,
		vault:        v,
		token:        t,
		authz:        authz.AllowAll(),
		plugins:      plugin.NewRegistry(),
		logger:       slog.Default(),
		clock:        time.Now,
		custody:      id.NewAccountID(),
		cancelPolicy: CancelForfeitAccrued,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithAuthorizer sets the capability policy. The default policy allows
// everything and is only suitable for tests.
func WithAuthorizer(p authz.Policy) Option {
	return func(l *Ledger) {
		l.authz = p
	}
}

// WithClock replaces the time source.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) {
		l.clock = clock
	}
}

// WithCustodyAccount sets the account that holds pulled assets and vault
// shares.
func WithCustodyAccount(acct id.AccountID) Option {
	return func(l *Ledger) {
		l.custody = acct
	}
}

// WithCancelPolicy sets the cancellation policy for accrued shares.
func WithCancelPolicy(p CancelPolicy) Option {
	return func(l *Ledger) {
		l.cancelPolicy = p
	}
}

// CustodyAccount returns the ledger's custody account.
func (l *Ledger) CustodyAccount() id.AccountID { return l.custody }

// Start migrates the store and initializes plugins.
func (l *Ledger) Start(ctx context.Context) error {
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.logger.Info("vesting ledger started",
		"custody", l.custody.String(),
		"vault", l.vault.Account().String(),
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Schedule Management
// ──────────────────────────────────────────────────

// CreateSchedule creates a vesting schedule for a beneficiary. It pulls the
// full amount from the caller into custody, deposits the currently-vesting
// portion into the yield vault, and persists the schedule starting now.
//
// The caller must hold the scheduling-manager capability and must have
// approved custody for at least p.TotalAmount.
func (l *Ledger) CreateSchedule(ctx context.Context, p schedule.Params) (*schedule.Schedule, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if !l.authz.HasCapability(ctx, caller, authz.RoleManager) {
		return nil, ErrUnauthorized
	}
	if err := validateParams(p); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.store.GetActiveSchedule(ctx, p.Beneficiary); err == nil {
		return nil, ErrScheduleActive
	} else if !IsNotFound(err) {
		return nil, err
	}

	now := l.clock()

	// The pre-vested portion stays in custody as raw assets; only the
	// currently-vesting remainder earns yield in the vault.
	depositAmount := p.TotalAmount - p.VestedAmount

	// Quote the deposit before any funds move. A vault that would mint zero
	// shares leaves nothing to redeem later, so the call aborts while the
	// caller still holds their assets.
	if depositAmount > 0 {
		quoted, err := l.vault.ConvertToShares(ctx, depositAmount)
		if err != nil {
			return nil, err
		}
		if quoted.IsZero() {
			return nil, ErrDepositFailed
		}
	}

	// Pull the full amount into custody before touching the vault.
	if err := l.token.TransferFrom(ctx, caller, l.custody, p.TotalAmount); err != nil {
		return nil, err
	}

	var shares types.Shares
	if depositAmount > 0 {
		if err := l.token.Approve(ctx, l.vault.Account(), depositAmount); err != nil {
			l.refund(ctx, caller, p.TotalAmount)
			return nil, err
		}
		shares, err = l.vault.Deposit(ctx, depositAmount, l.custody)
		if err != nil {
			l.refund(ctx, caller, p.TotalAmount)
			return nil, err
		}
		if shares.IsZero() {
			l.refund(ctx, caller, p.TotalAmount)
			return nil, ErrDepositFailed
		}
	}

	sched := &schedule.Schedule{
		Entity:       types.NewEntity(),
		ID:           id.NewScheduleID(),
		Beneficiary:  p.Beneficiary,
		TotalShares:  shares,
		VestedAmount: p.VestedAmount,
		StartTime:    now,
		CliffTime:    now.Add(p.CliffDuration),
		EndTime:      now.Add(p.TotalDuration()),
		Intervals:    p.Intervals,
		Active:       true,
	}

	if err := l.store.CreateSchedule(ctx, sched); err != nil {
		return nil, err
	}

	l.logger.Info("vesting schedule created",
		"schedule", sched.ID.String(),
		"beneficiary", sched.Beneficiary.String(),
		"total_shares", uint64(sched.TotalShares),
		"vested_amount", uint64(sched.VestedAmount),
	)

	l.plugins.EmitScheduleCreated(ctx, sched)
	return sched, nil
}

// GetSchedule retrieves the beneficiary's active schedule.
func (l *Ledger) GetSchedule(ctx context.Context, beneficiary id.AccountID) (*schedule.Schedule, error) {
	return l.store.GetActiveSchedule(ctx, beneficiary)
}

// ListSchedules lists a beneficiary's schedules, including cancelled ones,
// oldest first.
func (l *Ledger) ListSchedules(ctx context.Context, beneficiary id.AccountID, opts schedule.ListOpts) ([]*schedule.Schedule, error) {
	return l.store.ListSchedules(ctx, beneficiary, opts)
}

// GetReleasableShares returns the shares a beneficiary could claim right now.
// It returns 0 when the beneficiary has no active schedule or the cliff has
// not been reached.
func (l *Ledger) GetReleasableShares(ctx context.Context, beneficiary id.AccountID) (types.Shares, error) {
	sched, err := l.store.GetActiveSchedule(ctx, beneficiary)
	if err != nil {
		if IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return sched.ReleasableShares(l.clock()), nil
}

// ──────────────────────────────────────────────────
// Claims
// ──────────────────────────────────────────────────

// Claim pays the caller everything their schedule owes right now: the
// pre-vested amount (once) plus the redemption value of all shares unlocked
// by elapsed time. Returns the total assets paid.
func (l *Ledger) Claim(ctx context.Context) (types.Assets, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return 0, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sched, err := l.store.GetActiveSchedule(ctx, caller)
	if err != nil {
		return 0, err
	}

	now := l.clock()
	if now.Before(sched.CliffTime) {
		return 0, ErrCliffNotReached
	}

	releasable := sched.ReleasableShares(now)
	vestedDue := sched.UnclaimedVested()

	// Quote the redemption up front. Shares worth zero assets at the current
	// rate stay unreleased instead of being burned for nothing; they remain
	// claimable once the rate recovers.
	if !releasable.IsZero() {
		quoted, qerr := l.vault.ConvertToAssets(ctx, releasable)
		if qerr != nil {
			return 0, qerr
		}
		if quoted.IsZero() {
			releasable = 0
		}
	}

	if releasable.IsZero() && vestedDue.IsZero() {
		return 0, ErrNothingToClaim
	}

	// Persist the state transition before any external call, so a hostile
	// token or vault cannot re-enter and double-claim.
	prevReleased := sched.ReleasedShares
	prevVestedClaimed := sched.VestedClaimed
	sched.ReleasedShares += releasable
	if !vestedDue.IsZero() {
		sched.VestedClaimed = true
	}
	sched.Touch()
	if err := l.store.UpdateSchedule(ctx, sched); err != nil {
		return 0, err
	}

	restore := func() {
		sched.ReleasedShares = prevReleased
		sched.VestedClaimed = prevVestedClaimed
		sched.Touch()
		if uerr := l.store.UpdateSchedule(ctx, sched); uerr != nil {
			l.logger.Error("failed to restore schedule after payout failure",
				"schedule", sched.ID.String(),
				"error", uerr,
			)
		}
	}

	var paid types.Assets

	// The pre-vested portion was never deposited; pay it straight from
	// custody.
	if !vestedDue.IsZero() {
		if err := l.token.Transfer(ctx, caller, vestedDue); err != nil {
			restore()
			return 0, err
		}
		paid += vestedDue
	}

	var redeemed types.Assets
	if !releasable.IsZero() {
		redeemed, err = l.vault.Redeem(ctx, releasable, caller, l.custody)
		if err != nil {
			// The vested payment, if any, already went through; only the
			// share release is rolled back.
			sched.ReleasedShares = prevReleased
			sched.Touch()
			if uerr := l.store.UpdateSchedule(ctx, sched); uerr != nil {
				l.logger.Error("failed to restore schedule after redeem failure",
					"schedule", sched.ID.String(),
					"error", uerr,
				)
			}
			return paid, err
		}
		paid += redeemed
	}

	receipt := &claim.Receipt{
		ID:             id.NewClaimID(),
		ScheduleID:     sched.ID,
		Beneficiary:    caller,
		SharesRedeemed: releasable,
		AssetsPaid:     paid,
		VestedPortion:  vestedDue,
		ClaimedAt:      now,
	}
	if err := l.store.CreateClaim(ctx, receipt); err != nil {
		l.logger.Warn("failed to persist claim receipt",
			"schedule", sched.ID.String(),
			"error", err,
		)
	}

	l.logger.Info("claim paid",
		"schedule", sched.ID.String(),
		"beneficiary", caller.String(),
		"shares_redeemed", uint64(releasable),
		"assets_paid", uint64(paid),
	)

	l.plugins.EmitClaimed(ctx, receipt)
	return paid, nil
}

// ListClaims lists a beneficiary's claim receipts, oldest first.
func (l *Ledger) ListClaims(ctx context.Context, beneficiary id.AccountID, opts claim.ListOpts) ([]*claim.Receipt, error) {
	return l.store.ListClaims(ctx, beneficiary, opts)
}

// ──────────────────────────────────────────────────
// Cancellation and Withdrawal
// ──────────────────────────────────────────────────

// CancelVesting deactivates a beneficiary's schedule. The unreleased share
// remainder moves into the withdrawable accumulator per the configured
// CancelPolicy; any unclaimed pre-vested amount is paid to the beneficiary
// since it was theirs from creation.
//
// Requires the admin capability.
func (l *Ledger) CancelVesting(ctx context.Context, beneficiary id.AccountID) error {
	caller, err := requireCaller(ctx)
	if err != nil {
		return err
	}
	if !l.authz.HasCapability(ctx, caller, authz.RoleAdmin) {
		return ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	sched, err := l.store.GetActiveSchedule(ctx, beneficiary)
	if err != nil {
		return err
	}

	now := l.clock()
	remaining := sched.RemainingShares()
	vestedDue := sched.UnclaimedVested()
	if remaining.IsZero() && vestedDue.IsZero() {
		return ErrNothingToCancel
	}

	var settle types.Shares
	if l.cancelPolicy == CancelSettleAccrued {
		settle = sched.ReleasableShares(now)
	}
	forfeit := remaining - settle

	prevReleased := sched.ReleasedShares
	prevVestedClaimed := sched.VestedClaimed
	sched.Active = false
	sched.CancelledAt = &now
	sched.ReleasedShares += settle
	if !vestedDue.IsZero() {
		sched.VestedClaimed = true
	}
	sched.Touch()
	if err := l.store.UpdateSchedule(ctx, sched); err != nil {
		return err
	}

	restore := func() {
		sched.Active = true
		sched.CancelledAt = nil
		sched.ReleasedShares = prevReleased
		sched.VestedClaimed = prevVestedClaimed
		sched.Touch()
		if uerr := l.store.UpdateSchedule(ctx, sched); uerr != nil {
			l.logger.Error("failed to restore schedule after cancel failure",
				"schedule", sched.ID.String(),
				"error", uerr,
			)
		}
	}

	if !vestedDue.IsZero() {
		if err := l.token.Transfer(ctx, beneficiary, vestedDue); err != nil {
			restore()
			return err
		}
	}

	if !settle.IsZero() {
		if _, err := l.vault.Redeem(ctx, settle, beneficiary, l.custody); err != nil {
			// The vested payment, if any, already left custody; only the
			// cancellation and the share release are rolled back, the
			// claimed flag stays set so the amount cannot be paid twice.
			sched.Active = true
			sched.CancelledAt = nil
			sched.ReleasedShares = prevReleased
			sched.Touch()
			if uerr := l.store.UpdateSchedule(ctx, sched); uerr != nil {
				l.logger.Error("failed to restore schedule after cancel failure",
					"schedule", sched.ID.String(),
					"error", uerr,
				)
			}
			return err
		}
	}

	if !forfeit.IsZero() {
		if _, err := l.store.AddWithdrawable(ctx, forfeit); err != nil {
			l.logger.Error("failed to accrue reclaimed shares",
				"schedule", sched.ID.String(),
				"shares", uint64(forfeit),
				"error", err,
			)
			return err
		}
	}

	l.logger.Info("vesting cancelled",
		"schedule", sched.ID.String(),
		"beneficiary", beneficiary.String(),
		"settled_shares", uint64(settle),
		"reclaimed_shares", uint64(forfeit),
	)

	l.plugins.EmitVestingCancelled(ctx, sched, uint64(forfeit))
	return nil
}

// Withdraw drains the withdrawable accumulator and redeems the shares from
// the vault to the caller. Returns the assets paid out.
//
// Requires the admin capability.
func (l *Ledger) Withdraw(ctx context.Context) (types.Assets, error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return 0, err
	}
	if !l.authz.HasCapability(ctx, caller, authz.RoleAdmin) {
		return 0, ErrUnauthorized
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	shares, err := l.store.TakeWithdrawable(ctx)
	if err != nil {
		return 0, err
	}
	if shares.IsZero() {
		return 0, ErrNothingToWithdraw
	}

	assets, err := l.vault.Redeem(ctx, shares, caller, l.custody)
	if err != nil {
		// Put the shares back so they remain withdrawable.
		if _, aerr := l.store.AddWithdrawable(ctx, shares); aerr != nil {
			l.logger.Error("failed to restore withdrawable shares after redeem failure",
				"shares", uint64(shares),
				"error", aerr,
			)
		}
		return 0, err
	}

	l.logger.Info("reclaimed shares withdrawn",
		"caller", caller.String(),
		"shares", uint64(shares),
		"assets", uint64(assets),
	)

	l.plugins.EmitWithdrawn(ctx, uint64(shares), uint64(assets))
	return assets, nil
}

// Withdrawable reports the shares currently held by the accumulator.
func (l *Ledger) Withdrawable(ctx context.Context) (types.Shares, error) {
	return l.store.Withdrawable(ctx)
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

func validateParams(p schedule.Params) error {
	switch {
	case p.Beneficiary.IsNil():
		return ErrNoBeneficiary
	case p.TotalAmount.IsZero():
		return ErrAmountNotPositive
	case p.Intervals == 0 || p.IntervalDuration <= 0:
		return ErrNoIntervals
	case p.VestedAmount > p.TotalAmount:
		return ErrVestedExceedsTotal
	case p.CliffDuration > p.TotalDuration():
		return ErrCliffTooLong
	case p.CliffDuration > 0 && !p.VestedAmount.IsZero():
		return ErrCliffWithVested
	case p.CliffDuration > 0 && p.CliffDuration < p.IntervalDuration:
		return ErrCliffTooShort
	}
	return nil
}

// refund returns pulled assets to the caller after a failed creation.
// Best-effort: a failure here is logged, not returned.
func (l *Ledger) refund(ctx context.Context, caller id.AccountID, amount types.Assets) {
	if err := l.token.Transfer(ctx, caller, amount); err != nil {
		l.logger.Error("failed to refund caller after aborted schedule creation",
			"caller", caller.String(),
			"amount", uint64(amount),
			"error", err,
		)
	}
}
