package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	vesting "github.com/xraph/vesting"
	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	vestingstore "github.com/xraph/vesting/store"
	"github.com/xraph/vesting/types"
)

// Collection name constants.
const (
	colSchedules = "vesting_schedules"
	colClaims    = "vesting_claims"
	colState     = "vesting_state"
)

// stateDocID is the _id of the singleton accumulator document.
const stateDocID = int64(1)

// compile-time interface check
var _ vestingstore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all vesting collections and seeds the
// accumulator document.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("vesting/mongo: migrate %s indexes: %w", col, err)
		}
	}

	_, err := s.mdb.NewUpdate((*stateModel)(nil)).
		Filter(bson.M{"_id": stateDocID}).
		SetUpdate(bson.M{"$setOnInsert": bson.M{"withdrawable": int64(0)}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("vesting/mongo: seed state: %w", err)
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("vesting/mongo: create schedule: %w", err)
	}
	return nil
}

func (s *Store) GetSchedule(ctx context.Context, schedID id.ScheduleID) (*schedule.Schedule, error) {
	var m scheduleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": schedID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, vesting.ErrNotFound
		}
		return nil, fmt.Errorf("vesting/mongo: get schedule: %w", err)
	}
	return fromScheduleModel(&m)
}

func (s *Store) GetActiveSchedule(ctx context.Context, beneficiary id.AccountID) (*schedule.Schedule, error) {
	var m scheduleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"beneficiary": beneficiary.String(), "active": true}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, vesting.ErrScheduleNotFound
		}
		return nil, fmt.Errorf("vesting/mongo: get active schedule: %w", err)
	}
	return fromScheduleModel(&m)
}

func (s *Store) ListSchedules(ctx context.Context, beneficiary id.AccountID, opts schedule.ListOpts) ([]*schedule.Schedule, error) {
	var models []scheduleModel

	filter := bson.M{"beneficiary": beneficiary.String()}
	if opts.ActiveOnly {
		filter["active"] = true
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "start_time", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("vesting/mongo: list schedules: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("vesting/mongo: update schedule: %w", err)
	}
	if res.MatchedCount() == 0 {
		return vesting.ErrNotFound
	}
	return nil
}

// ==================== Claim Store ====================

func (s *Store) CreateClaim(ctx context.Context, r *claim.Receipt) error {
	m := toClaimModel(r)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("vesting/mongo: create claim: %w", err)
	}
	return nil
}

func (s *Store) ListClaims(ctx context.Context, beneficiary id.AccountID, opts claim.ListOpts) ([]*claim.Receipt, error) {
	var models []claimModel

	q := s.mdb.NewFind(&models).
		Filter(bson.M{"beneficiary": beneficiary.String()}).
		Sort(bson.D{{Key: "claimed_at", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("vesting/mongo: list claims: %w", err)
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
	var doc stateModel
	err := s.mdb.Collection(colState).FindOneAndUpdate(ctx,
		bson.M{"_id": stateDocID},
		bson.M{"$inc": bson.M{"withdrawable": int64(shares)}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("vesting/mongo: add withdrawable: %w", err)
	}
	return types.Shares(doc.Withdrawable), nil
}

func (s *Store) TakeWithdrawable(ctx context.Context) (types.Shares, error) {
	// FindOneAndUpdate returns the document before the reset, which is
	// exactly the drained amount.
	var doc stateModel
	err := s.mdb.Collection(colState).FindOneAndUpdate(ctx,
		bson.M{"_id": stateDocID},
		bson.M{"$set": bson.M{"withdrawable": int64(0)}},
	).Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("vesting/mongo: take withdrawable: %w", err)
	}
	return types.Shares(doc.Withdrawable), nil
}

func (s *Store) Withdrawable(ctx context.Context) (types.Shares, error) {
	var m stateModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": stateDocID}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("vesting/mongo: get withdrawable: %w", err)
	}
	return types.Shares(m.Withdrawable), nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all vesting collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colSchedules: {
			{
				Keys: bson.D{{Key: "beneficiary", Value: 1}},
				Options: options.Index().
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"active": true}),
			},
			{Keys: bson.D{{Key: "beneficiary", Value: 1}, {Key: "start_time", Value: 1}}},
		},
		colClaims: {
			{Keys: bson.D{{Key: "beneficiary", Value: 1}, {Key: "claimed_at", Value: 1}}},
			{Keys: bson.D{{Key: "schedule_id", Value: 1}}},
		},
		colState: {},
	}
}
