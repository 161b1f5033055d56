package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/pgdriver"
	"github.com/xraph/grove/migrate"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	vestingstore "github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// compile-time interface check
var _ vestingstore.Store = (*Store)(nil)

// Store implements store.Store using PostgreSQL via Grove ORM.
type Store struct {
	db *grove.DB
	pg *pgdriver.PgDB
}

// New creates a new PostgreSQL store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db: db,
		pg: pgdriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.pg)
	if err != nil {
		return fmt.Errorf("vesting/postgres: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("vesting/postgres: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Schedule Store ====================

func (s *Store) CreateSchedule(ctx context.Context, sched *schedule.Schedule) error {
	if sched.Active {
		// Keep one active schedule per beneficiary. The partial unique
		// index backs this up; checking first yields the typed error.
		if _, err := s.GetActiveSchedule(ctx, sched.Beneficiary); err == nil {
			return vesting.ErrScheduleActive
		} else if !errors.Is(err, vesting.ErrScheduleNotFound) {
			return err
		}
	}
	m := toScheduleModel(sched)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetSchedule(ctx context.Context, schedID id.ScheduleID) (*schedule.Schedule, error) {
	m := new(scheduleModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", schedID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, vesting.ErrNotFound
		}
		return nil, err
	}
	return fromScheduleModel(m)
}

func (s *Store) GetActiveSchedule(ctx context.Context, beneficiary id.AccountID) (*schedule.Schedule, error) {
	m := new(scheduleModel)
	err := s.pg.NewSelect(m).
		Where("beneficiary = ?", beneficiary.String()).
		Where("active = ?", true).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, vesting.ErrScheduleNotFound
		}
		return nil, err
	}
	return fromScheduleModel(m)
}

func (s *Store) ListSchedules(ctx context.Context, beneficiary id.AccountID, opts schedule.ListOpts) ([]*schedule.Schedule, error) {
	var models []scheduleModel
	q := s.pg.NewSelect(&models).Where("beneficiary = ?", beneficiary.String())

	if opts.ActiveOnly {
		q = q.Where("active = ?", true)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("start_time ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*schedule.Schedule, len(models))
	for i := range models {
		sched, err := fromScheduleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = sched
	}
	return result, nil
}

func (s *Store) UpdateSchedule(ctx context.Context, sched *schedule.Schedule) error {
	m := toScheduleModel(sched)
	m.UpdatedAt = now()
	res, err := s.pg.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return vesting.ErrNotFound
	}
	return nil
}

// ==================== Claim Store ====================

func (s *Store) CreateClaim(ctx context.Context, r *claim.Receipt) error {
	m := toClaimModel(r)
	_, err := s.pg.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) ListClaims(ctx context.Context, beneficiary id.AccountID, opts claim.ListOpts) ([]*claim.Receipt, error) {
	var models []claimModel
	q := s.pg.NewSelect(&models).Where("beneficiary = ?", beneficiary.String())

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("claimed_at ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*claim.Receipt, len(models))
	for i := range models {
		r, err := fromClaimModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ==================== Withdrawable Store ====================

func (s *Store) AddWithdrawable(ctx context.Context, shares types.Shares) (types.Shares, error) {
	var total int64
	err := s.pg.NewRaw(`
		UPDATE vesting_state SET withdrawable = withdrawable + ?
		WHERE id = 1
		RETURNING withdrawable
	`, int64(shares)).Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return types.Shares(total), nil
}

func (s *Store) TakeWithdrawable(ctx context.Context) (types.Shares, error) {
	// Single statement so the read and the reset cannot interleave.
	var prev int64
	err := s.pg.NewRaw(`
		UPDATE vesting_state SET withdrawable = 0
		FROM (SELECT withdrawable AS prev FROM vesting_state WHERE id = 1) old
		WHERE vesting_state.id = 1
		RETURNING old.prev
	`).Scan(ctx, &prev)
	if err != nil {
		return 0, err
	}
	return types.Shares(prev), nil
}

func (s *Store) Withdrawable(ctx context.Context) (types.Shares, error) {
	m := new(stateModel)
	err := s.pg.NewSelect(m).
		Where("id = ?", 1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return 0, nil
		}
		return 0, err
	}
	return types.Shares(m.Withdrawable), nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
