package vesting_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xraph/vesting"
	"github.com/xraph/vesting/asset"
	"github.com/xraph/vesting/authz"
	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/store/memory"
	"github.com/xraph/vesting/types"
	"github.com/xraph/vesting/vault"
)

const day = 24 * time.Hour

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fixture wires a ledger against in-memory collaborators.
type fixture struct {
	ledger *vesting.Ledger
	assets *asset.InMemory
	vault  *vault.InMemory
	policy *authz.Static
	clock  *fakeClock

	custody     id.AccountID
	admin       id.AccountID
	manager     id.AccountID
	beneficiary id.AccountID
}

func newFixture(t *testing.T, opts ...vesting.Option) *fixture {
	t.Helper()

	f := &fixture{
		assets:      asset.NewInMemory(),
		policy:      authz.NewStatic(),
		clock:       newFakeClock(),
		custody:     id.NewAccountID(),
		admin:       id.NewAccountID(),
		manager:     id.NewAccountID(),
		beneficiary: id.NewAccountID(),
	}
	f.vault = vault.NewInMemory(f.assets)
	f.policy.Grant(f.admin, authz.RoleAdmin)
	f.policy.Grant(f.manager, authz.RoleManager)

	base := []vesting.Option{
		vesting.WithAuthorizer(f.policy),
		vesting.WithClock(f.clock.Now),
		vesting.WithCustodyAccount(f.custody),
	}
	f.ledger = vesting.New(memory.New(), f.vault, f.assets.Bind(f.custody), append(base, opts...)...)

	if err := f.ledger.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		if err := f.ledger.Stop(); err != nil {
			t.Errorf("Stop() error = %v", err)
		}
	})
	return f
}

func (f *fixture) as(acct id.AccountID) context.Context {
	return vesting.WithCaller(context.Background(), acct)
}

// fund mints assets to the manager and approves custody to pull them.
func (f *fixture) fund(t *testing.T, amount types.Assets) {
	t.Helper()
	f.assets.Mint(f.manager, amount)
	if err := f.assets.Bind(f.manager).Approve(context.Background(), f.custody, amount); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
}

func (f *fixture) create(t *testing.T, p schedule.Params) *schedule.Schedule {
	t.Helper()
	f.fund(t, p.TotalAmount)
	sched, err := f.ledger.CreateSchedule(f.as(f.manager), p)
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	return sched
}

// standardParams is a 1000-asset grant with a 180-day cliff unlocking over
// four 90-day intervals.
func (f *fixture) standardParams() schedule.Params {
	return schedule.Params{
		Beneficiary:      f.beneficiary,
		TotalAmount:      1000,
		CliffDuration:    180 * day,
		IntervalDuration: 90 * day,
		Intervals:        4,
	}
}

func (f *fixture) balance(t *testing.T, acct id.AccountID) types.Assets {
	t.Helper()
	bal, err := f.assets.BalanceOf(context.Background(), acct)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	return bal
}

// ──────────────────────────────────────────────────
// CreateSchedule
// ──────────────────────────────────────────────────

func TestCreateSchedule(t *testing.T) {
	f := newFixture(t)
	sched := f.create(t, f.standardParams())

	if sched.TotalShares != 1000 {
		t.Errorf("TotalShares = %d, want 1000 at 1:1", sched.TotalShares)
	}
	if sched.ReleasedShares != 0 {
		t.Errorf("ReleasedShares = %d, want 0", sched.ReleasedShares)
	}
	if !sched.Active {
		t.Error("schedule not active")
	}
	if got := sched.CliffTime.Sub(sched.StartTime); got != 180*day {
		t.Errorf("cliff duration = %v, want 180d", got)
	}
	if got := sched.EndTime.Sub(sched.StartTime); got != 360*day {
		t.Errorf("total duration = %v, want 360d", got)
	}

	// Manager's funds moved out; vault custodies the deposit.
	if got := f.balance(t, f.manager); got != 0 {
		t.Errorf("manager balance = %d, want 0", got)
	}
	if got := f.balance(t, f.vault.Account()); got != 1000 {
		t.Errorf("vault balance = %d, want 1000", got)
	}
	if got := f.vault.SharesOf(f.custody); got != 1000 {
		t.Errorf("custody shares = %d, want 1000", got)
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	f := newFixture(t)

	base := f.standardParams()
	tests := []struct {
		name    string
		mutate  func(*schedule.Params)
		wantErr error
	}{
		{
			name:    "no beneficiary",
			mutate:  func(p *schedule.Params) { p.Beneficiary = id.Nil },
			wantErr: vesting.ErrNoBeneficiary,
		},
		{
			name:    "zero amount",
			mutate:  func(p *schedule.Params) { p.TotalAmount = 0 },
			wantErr: vesting.ErrAmountNotPositive,
		},
		{
			name:    "zero intervals",
			mutate:  func(p *schedule.Params) { p.Intervals = 0 },
			wantErr: vesting.ErrNoIntervals,
		},
		{
			name:    "zero interval duration",
			mutate:  func(p *schedule.Params) { p.IntervalDuration = 0 },
			wantErr: vesting.ErrNoIntervals,
		},
		{
			name:    "vested exceeds total",
			mutate:  func(p *schedule.Params) { p.VestedAmount = 1001; p.CliffDuration = 0 },
			wantErr: vesting.ErrVestedExceedsTotal,
		},
		{
			name:    "cliff past end",
			mutate:  func(p *schedule.Params) { p.CliffDuration = 361 * day },
			wantErr: vesting.ErrCliffTooLong,
		},
		{
			name:    "cliff with pre-vested amount",
			mutate:  func(p *schedule.Params) { p.VestedAmount = 100 },
			wantErr: vesting.ErrCliffWithVested,
		},
		{
			name:    "cliff shorter than interval",
			mutate:  func(p *schedule.Params) { p.CliffDuration = 89 * day },
			wantErr: vesting.ErrCliffTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := f.ledger.CreateSchedule(f.as(f.manager), p)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CreateSchedule() error = %v, want %v", err, tt.wantErr)
			}
			if !vesting.IsValidation(err) {
				t.Errorf("IsValidation(%v) = false, want true", err)
			}
		})
	}
}

func TestCreateScheduleAuthorization(t *testing.T) {
	f := newFixture(t)
	p := f.standardParams()

	if _, err := f.ledger.CreateSchedule(context.Background(), p); !errors.Is(err, vesting.ErrNoCaller) {
		t.Errorf("CreateSchedule() without caller error = %v, want ErrNoCaller", err)
	}
	if _, err := f.ledger.CreateSchedule(f.as(f.beneficiary), p); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("CreateSchedule() by non-manager error = %v, want ErrUnauthorized", err)
	}
	// Admin role alone does not imply scheduling rights.
	if _, err := f.ledger.CreateSchedule(f.as(f.admin), p); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("CreateSchedule() by admin error = %v, want ErrUnauthorized", err)
	}
}

func TestCreateScheduleDuplicateActive(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	f.fund(t, 1000)
	_, err := f.ledger.CreateSchedule(f.as(f.manager), f.standardParams())
	if !errors.Is(err, vesting.ErrScheduleActive) {
		t.Errorf("second CreateSchedule() error = %v, want ErrScheduleActive", err)
	}
}

func TestCreateScheduleWithoutApproval(t *testing.T) {
	f := newFixture(t)
	f.assets.Mint(f.manager, 1000)

	_, err := f.ledger.CreateSchedule(f.as(f.manager), f.standardParams())
	if !errors.Is(err, asset.ErrInsufficientAllowance) {
		t.Errorf("CreateSchedule() error = %v, want ErrInsufficientAllowance", err)
	}
}

func TestCreateScheduleZeroShareDeposit(t *testing.T) {
	f := newFixture(t)

	// At 1000 assets per share a 500-asset deposit mints nothing.
	f.vault.SetExchangeRate(1000, 1)
	f.fund(t, 500)

	_, err := f.ledger.CreateSchedule(f.as(f.manager), schedule.Params{
		Beneficiary:      f.beneficiary,
		TotalAmount:      500,
		IntervalDuration: 90 * day,
		Intervals:        4,
	})
	if !errors.Is(err, vesting.ErrDepositFailed) {
		t.Fatalf("CreateSchedule() error = %v, want ErrDepositFailed", err)
	}

	// The failed call must not move funds or persist anything.
	if got := f.balance(t, f.manager); got != 500 {
		t.Errorf("manager balance = %d, want 500 after aborted creation", got)
	}
	if got := f.balance(t, f.custody); got != 0 {
		t.Errorf("custody balance = %d, want 0", got)
	}
	if _, err := f.ledger.GetSchedule(context.Background(), f.beneficiary); !errors.Is(err, vesting.ErrScheduleNotFound) {
		t.Errorf("GetSchedule() error = %v, want ErrScheduleNotFound", err)
	}
}

// ──────────────────────────────────────────────────
// Releasable shares and claims
// ──────────────────────────────────────────────────

func TestGetReleasableShares(t *testing.T) {
	f := newFixture(t)

	// No schedule yet: zero, not an error.
	got, err := f.ledger.GetReleasableShares(context.Background(), f.beneficiary)
	if err != nil || got != 0 {
		t.Fatalf("GetReleasableShares() = %d, %v, want 0, nil", got, err)
	}

	f.create(t, f.standardParams())

	steps := []struct {
		advance time.Duration
		want    types.Shares
	}{
		{0, 0},            // at start
		{179 * day, 0},    // just before cliff
		{1 * day, 500},    // at cliff, two of four intervals elapsed
		{90 * day, 750},   // third interval
		{90 * day, 1000},  // end
		{365 * day, 1000}, // long past end, clamped
	}
	for _, step := range steps {
		f.clock.Advance(step.advance)
		got, err := f.ledger.GetReleasableShares(context.Background(), f.beneficiary)
		if err != nil {
			t.Fatalf("GetReleasableShares() error = %v", err)
		}
		if got != step.want {
			t.Errorf("GetReleasableShares() at %v = %d, want %d",
				f.clock.Now(), got, step.want)
		}
	}
}

func TestClaimLifecycle(t *testing.T) {
	f := newFixture(t)
	sched := f.create(t, f.standardParams())

	// Before the cliff nothing is claimable.
	f.clock.Advance(90 * day)
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); !errors.Is(err, vesting.ErrCliffNotReached) {
		t.Fatalf("Claim() before cliff error = %v, want ErrCliffNotReached", err)
	}

	// At the cliff half the grant has unlocked.
	f.clock.Advance(90 * day)
	paid, err := f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() at cliff error = %v", err)
	}
	if paid != 500 {
		t.Errorf("Claim() at cliff paid = %d, want 500", paid)
	}
	if got := f.balance(t, f.beneficiary); got != 500 {
		t.Errorf("beneficiary balance = %d, want 500", got)
	}

	// Claiming again immediately yields nothing.
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); !errors.Is(err, vesting.ErrNothingToClaim) {
		t.Errorf("repeat Claim() error = %v, want ErrNothingToClaim", err)
	}

	// The rest unlocks by the end.
	f.clock.Advance(180 * day)
	paid, err = f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() at end error = %v", err)
	}
	if paid != 500 {
		t.Errorf("Claim() at end paid = %d, want 500", paid)
	}
	if got := f.balance(t, f.beneficiary); got != 1000 {
		t.Errorf("final beneficiary balance = %d, want 1000", got)
	}

	// Fully claimed, still active, nothing left.
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); !errors.Is(err, vesting.ErrNothingToClaim) {
		t.Errorf("Claim() after full release error = %v, want ErrNothingToClaim", err)
	}

	receipts, err := f.ledger.ListClaims(context.Background(), f.beneficiary, claim.ListOpts{})
	if err != nil {
		t.Fatalf("ListClaims() error = %v", err)
	}
	if len(receipts) != 2 {
		t.Fatalf("ListClaims() len = %d, want 2", len(receipts))
	}
	for _, r := range receipts {
		if r.ScheduleID != sched.ID {
			t.Errorf("receipt schedule = %v, want %v", r.ScheduleID, sched.ID)
		}
		if r.SharesRedeemed != 500 || r.AssetsPaid != 500 {
			t.Errorf("receipt = %d shares / %d assets, want 500/500",
				r.SharesRedeemed, r.AssetsPaid)
		}
	}
}

func TestClaimWithYield(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	f.clock.Advance(360 * day)

	// The vault accrued 20% while the grant vested.
	f.vault.SetExchangeRate(12, 10)
	f.assets.Mint(f.vault.Account(), 200)

	paid, err := f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if paid != 1200 {
		t.Errorf("Claim() paid = %d, want 1200 with yield", paid)
	}
}

func TestClaimWorthlessSharesStayReleasable(t *testing.T) {
	f := newFixture(t)
	f.create(t, schedule.Params{
		Beneficiary:      f.beneficiary,
		TotalAmount:      500,
		IntervalDuration: 90 * day,
		Intervals:        4,
	})

	f.clock.Advance(360 * day)

	// The rate collapses: 500 shares now redeem to zero assets. The claim
	// fails outright instead of burning the shares for nothing.
	f.vault.SetExchangeRate(1, 1000)
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); !errors.Is(err, vesting.ErrNothingToClaim) {
		t.Fatalf("Claim() at collapsed rate error = %v, want ErrNothingToClaim", err)
	}

	// Nothing was released; the shares are still there for a better rate.
	got, err := f.ledger.GetReleasableShares(context.Background(), f.beneficiary)
	if err != nil {
		t.Fatalf("GetReleasableShares() error = %v", err)
	}
	if got != 500 {
		t.Errorf("GetReleasableShares() = %d, want 500 after failed claim", got)
	}

	f.vault.SetExchangeRate(1, 1)
	paid, err := f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() at recovered rate error = %v", err)
	}
	if paid != 500 {
		t.Errorf("Claim() = %d, want 500", paid)
	}
}

func TestClaimNoSchedule(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledger.Claim(f.as(f.beneficiary))
	if !errors.Is(err, vesting.ErrScheduleNotFound) {
		t.Errorf("Claim() error = %v, want ErrScheduleNotFound", err)
	}
}

func TestPreVestedAmountPaidOnce(t *testing.T) {
	f := newFixture(t)
	f.create(t, schedule.Params{
		Beneficiary:      f.beneficiary,
		TotalAmount:      1000,
		VestedAmount:     300,
		IntervalDuration: 90 * day,
		Intervals:        2,
	})

	// Only the unvested 700 went into the vault.
	if got := f.vault.SharesOf(f.custody); got != 700 {
		t.Fatalf("custody shares = %d, want 700", got)
	}
	// The pre-vested 300 stays in custody as raw assets.
	if got := f.balance(t, f.custody); got != 300 {
		t.Fatalf("custody balance = %d, want 300", got)
	}

	// Claimable immediately, no cliff.
	paid, err := f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if paid != 300 {
		t.Errorf("Claim() paid = %d, want the pre-vested 300", paid)
	}

	// Paid once only.
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); !errors.Is(err, vesting.ErrNothingToClaim) {
		t.Errorf("repeat Claim() error = %v, want ErrNothingToClaim", err)
	}

	f.clock.Advance(180 * day)
	paid, err = f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() at end error = %v", err)
	}
	if paid != 700 {
		t.Errorf("Claim() at end paid = %d, want 700", paid)
	}
	if got := f.balance(t, f.beneficiary); got != 1000 {
		t.Errorf("final beneficiary balance = %d, want 1000", got)
	}
}

func TestBeneficiaryIsolation(t *testing.T) {
	f := newFixture(t)
	other := id.NewAccountID()

	f.create(t, f.standardParams())
	p := f.standardParams()
	p.Beneficiary = other
	p.TotalAmount = 2000
	f.create(t, p)

	f.clock.Advance(180 * day)

	paid, err := f.ledger.Claim(f.as(f.beneficiary))
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if paid != 500 {
		t.Errorf("beneficiary Claim() = %d, want 500", paid)
	}

	paid, err = f.ledger.Claim(f.as(other))
	if err != nil {
		t.Fatalf("other Claim() error = %v", err)
	}
	if paid != 1000 {
		t.Errorf("other Claim() = %d, want 1000", paid)
	}
}

// ──────────────────────────────────────────────────
// Cancellation and withdrawal
// ──────────────────────────────────────────────────

func TestCancelForfeitsRemainder(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	f.clock.Advance(180 * day)
	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}

	// Default policy forfeits even the accrued half.
	withdrawable, err := f.ledger.Withdrawable(context.Background())
	if err != nil {
		t.Fatalf("Withdrawable() error = %v", err)
	}
	if withdrawable != 1000 {
		t.Errorf("Withdrawable() = %d, want 1000", withdrawable)
	}
	if got := f.balance(t, f.beneficiary); got != 0 {
		t.Errorf("beneficiary balance = %d, want 0", got)
	}

	if _, err := f.ledger.Claim(f.as(f.beneficiary)); !errors.Is(err, vesting.ErrScheduleNotFound) {
		t.Errorf("Claim() after cancel error = %v, want ErrScheduleNotFound", err)
	}

	// The cancelled record is retained.
	history, err := f.ledger.ListSchedules(context.Background(), f.beneficiary, schedule.ListOpts{})
	if err != nil {
		t.Fatalf("ListSchedules() error = %v", err)
	}
	if len(history) != 1 || history[0].Active || history[0].CancelledAt == nil {
		t.Errorf("history = %+v, want one inactive cancelled record", history)
	}
}

func TestCancelSettlesAccrued(t *testing.T) {
	f := newFixture(t, vesting.WithCancelPolicy(vesting.CancelSettleAccrued))
	f.create(t, f.standardParams())

	f.clock.Advance(180 * day)
	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}

	// The accrued half is paid out, the locked half accrues.
	if got := f.balance(t, f.beneficiary); got != 500 {
		t.Errorf("beneficiary balance = %d, want 500", got)
	}
	withdrawable, err := f.ledger.Withdrawable(context.Background())
	if err != nil {
		t.Fatalf("Withdrawable() error = %v", err)
	}
	if withdrawable != 500 {
		t.Errorf("Withdrawable() = %d, want 500", withdrawable)
	}
}

func TestCancelPaysUnclaimedVested(t *testing.T) {
	f := newFixture(t)
	f.create(t, schedule.Params{
		Beneficiary:      f.beneficiary,
		TotalAmount:      1000,
		VestedAmount:     300,
		IntervalDuration: 90 * day,
		Intervals:        2,
	})

	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}

	// The pre-vested portion was theirs from creation.
	if got := f.balance(t, f.beneficiary); got != 300 {
		t.Errorf("beneficiary balance = %d, want 300", got)
	}
	withdrawable, _ := f.ledger.Withdrawable(context.Background())
	if withdrawable != 700 {
		t.Errorf("Withdrawable() = %d, want 700", withdrawable)
	}
}

// refusingVault delegates to a real vault but can be made to reject
// redemptions.
type refusingVault struct {
	vault.Adapter
	refuse bool
}

func (v *refusingVault) Redeem(ctx context.Context, shares types.Shares, receiver, owner id.AccountID) (types.Assets, error) {
	if v.refuse {
		return 0, errors.New("vault offline")
	}
	return v.Adapter.Redeem(ctx, shares, receiver, owner)
}

func TestCancelRedeemFailureKeepsVestedPaid(t *testing.T) {
	pool := asset.NewInMemory()
	fv := &refusingVault{Adapter: vault.NewInMemory(pool)}
	custody := id.NewAccountID()
	clk := newFakeClock()
	policy := authz.NewStatic()

	admin := id.NewAccountID()
	manager := id.NewAccountID()
	beneficiary := id.NewAccountID()
	policy.Grant(admin, authz.RoleAdmin)
	policy.Grant(manager, authz.RoleManager)

	l := vesting.New(memory.New(), fv, pool.Bind(custody),
		vesting.WithAuthorizer(policy),
		vesting.WithClock(clk.Now),
		vesting.WithCustodyAccount(custody),
		vesting.WithCancelPolicy(vesting.CancelSettleAccrued),
	)

	ctx := context.Background()
	if err := l.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer l.Stop()

	pool.Mint(manager, 1000)
	if err := pool.Bind(manager).Approve(ctx, custody, 1000); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if _, err := l.CreateSchedule(vesting.WithCaller(ctx, manager), schedule.Params{
		Beneficiary:      beneficiary,
		TotalAmount:      1000,
		VestedAmount:     300,
		IntervalDuration: 90 * day,
		Intervals:        2,
	}); err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	// Halfway through, half of the 700 deposited shares have unlocked.
	clk.Advance(90 * day)

	// The cancel pays the vested 300 and then fails on the settle redeem.
	fv.refuse = true
	if err := l.CancelVesting(vesting.WithCaller(ctx, admin), beneficiary); err == nil {
		t.Fatal("CancelVesting() error = nil, want redeem failure")
	}

	bal, err := pool.BalanceOf(ctx, beneficiary)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if bal != 300 {
		t.Fatalf("beneficiary balance = %d, want 300", bal)
	}

	// The schedule is active again, but the paid vested amount stays marked
	// as claimed so it cannot be paid a second time.
	sched, err := l.GetSchedule(ctx, beneficiary)
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}
	if !sched.Active {
		t.Error("schedule not restored to active")
	}
	if !sched.VestedClaimed {
		t.Error("VestedClaimed reset despite the vested payout going through")
	}
	if sched.ReleasedShares != 0 {
		t.Errorf("ReleasedShares = %d, want 0 after rollback", sched.ReleasedShares)
	}

	// With the vault back, the beneficiary claims exactly the share value;
	// across the whole schedule they never exceed the original grant.
	fv.refuse = false
	paid, err := l.Claim(vesting.WithCaller(ctx, beneficiary))
	if err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if paid != 350 {
		t.Errorf("Claim() = %d, want 350 without the vested portion", paid)
	}

	clk.Advance(90 * day)
	paid, err = l.Claim(vesting.WithCaller(ctx, beneficiary))
	if err != nil {
		t.Fatalf("Claim() at end error = %v", err)
	}
	if paid != 350 {
		t.Errorf("Claim() at end = %d, want 350", paid)
	}

	bal, err = pool.BalanceOf(ctx, beneficiary)
	if err != nil {
		t.Fatalf("BalanceOf() error = %v", err)
	}
	if bal != 1000 {
		t.Errorf("final beneficiary balance = %d, want exactly the 1000 grant", bal)
	}
}

func TestCancelAuthorization(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	if err := f.ledger.CancelVesting(f.as(f.manager), f.beneficiary); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("CancelVesting() by manager error = %v, want ErrUnauthorized", err)
	}
	if err := f.ledger.CancelVesting(context.Background(), f.beneficiary); !errors.Is(err, vesting.ErrNoCaller) {
		t.Errorf("CancelVesting() without caller error = %v, want ErrNoCaller", err)
	}
}

func TestCancelNothingToCancel(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	// Fully claim, then cancel has nothing left to reclaim.
	f.clock.Advance(360 * day)
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary)
	if !errors.Is(err, vesting.ErrNothingToCancel) {
		t.Errorf("CancelVesting() error = %v, want ErrNothingToCancel", err)
	}
}

func TestRecreateAfterCancel(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}

	sched := f.create(t, f.standardParams())
	if !sched.Active {
		t.Error("recreated schedule not active")
	}

	history, err := f.ledger.ListSchedules(context.Background(), f.beneficiary, schedule.ListOpts{})
	if err != nil {
		t.Fatalf("ListSchedules() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history len = %d, want 2", len(history))
	}
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.standardParams())

	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}

	assets, err := f.ledger.Withdraw(f.as(f.admin))
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if assets != 1000 {
		t.Errorf("Withdraw() = %d, want 1000", assets)
	}
	if got := f.balance(t, f.admin); got != 1000 {
		t.Errorf("admin balance = %d, want 1000", got)
	}

	// Drained: a second withdrawal has nothing to take.
	if _, err := f.ledger.Withdraw(f.as(f.admin)); !errors.Is(err, vesting.ErrNothingToWithdraw) {
		t.Errorf("second Withdraw() error = %v, want ErrNothingToWithdraw", err)
	}
}

func TestWithdrawAuthorization(t *testing.T) {
	f := newFixture(t)

	if _, err := f.ledger.Withdraw(f.as(f.manager)); !errors.Is(err, vesting.ErrUnauthorized) {
		t.Errorf("Withdraw() by manager error = %v, want ErrUnauthorized", err)
	}
	if _, err := f.ledger.Withdraw(f.as(f.admin)); !errors.Is(err, vesting.ErrNothingToWithdraw) {
		t.Errorf("Withdraw() with empty accumulator error = %v, want ErrNothingToWithdraw", err)
	}
}

func TestWithdrawAccumulatesAcrossCancellations(t *testing.T) {
	f := newFixture(t)
	other := id.NewAccountID()

	f.create(t, f.standardParams())
	p := f.standardParams()
	p.Beneficiary = other
	f.create(t, p)

	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}
	if err := f.ledger.CancelVesting(f.as(f.admin), other); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}

	assets, err := f.ledger.Withdraw(f.as(f.admin))
	if err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}
	if assets != 2000 {
		t.Errorf("Withdraw() = %d, want 2000 across both grants", assets)
	}
}

// ──────────────────────────────────────────────────
// Plugins
// ──────────────────────────────────────────────────

// recordingPlugin captures every hook invocation.
type recordingPlugin struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPlugin) Name() string { return "recorder" }

func (p *recordingPlugin) record(event string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPlugin) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPlugin) OnInit(context.Context, interface{}) error {
	p.record("init")
	return nil
}

func (p *recordingPlugin) OnShutdown(context.Context) error {
	p.record("shutdown")
	return nil
}

func (p *recordingPlugin) OnScheduleCreated(_ context.Context, _ interface{}) error {
	p.record("schedule.created")
	return nil
}

func (p *recordingPlugin) OnClaimed(_ context.Context, _ interface{}) error {
	p.record("claimed")
	return nil
}

func (p *recordingPlugin) OnVestingCancelled(_ context.Context, _ interface{}, _ uint64) error {
	p.record("cancelled")
	return nil
}

func (p *recordingPlugin) OnWithdrawn(_ context.Context, _ uint64, _ uint64) error {
	p.record("withdrawn")
	return nil
}

func TestPluginHooks(t *testing.T) {
	rec := &recordingPlugin{}
	f := newFixture(t, vesting.WithPlugin(rec))

	f.create(t, f.standardParams())
	f.clock.Advance(180 * day)
	if _, err := f.ledger.Claim(f.as(f.beneficiary)); err != nil {
		t.Fatalf("Claim() error = %v", err)
	}
	if err := f.ledger.CancelVesting(f.as(f.admin), f.beneficiary); err != nil {
		t.Fatalf("CancelVesting() error = %v", err)
	}
	if _, err := f.ledger.Withdraw(f.as(f.admin)); err != nil {
		t.Fatalf("Withdraw() error = %v", err)
	}

	want := []string{"init", "schedule.created", "claimed", "cancelled", "withdrawn"}
	got := rec.Events()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
