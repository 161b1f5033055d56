package memory

import (
	"context"
	"sync"

	"github.com/xraph/vesting"
	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

type Store struct {
	mu sync.RWMutex

	// Schedule storage
	schedules map[string]*schedule.Schedule

	// Claim receipt storage, append-only
	claims []claim.Receipt

	// Reclaimed shares awaiting admin withdrawal
	withdrawable types.Shares
}

func New() *Store {
	return &Store{
		schedules: make(map[string]*schedule.Schedule),
		claims:    make([]claim.Receipt, 0),
	}
}

// Schedule Store implementation
func (s *Store) CreateSchedule(_ context.Context, sched *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[sched.ID.String()]; exists {
		return vesting.ErrAlreadyExists
	}
	if sched.Active {
		for _, existing := range s.schedules {
			if existing.Active && existing.Beneficiary == sched.Beneficiary {
				return vesting.ErrScheduleActive
			}
		}
	}
	s.schedules[sched.ID.String()] = sched.Clone()
	return nil
}

func (s *Store) GetSchedule(_ context.Context, schedID id.ScheduleID) (*schedule.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sched, ok := s.schedules[schedID.String()]; ok {
		return sched.Clone(), nil
	}
	return nil, vesting.ErrNotFound
}

func (s *Store) GetActiveSchedule(_ context.Context, beneficiary id.AccountID) (*schedule.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sched := range s.schedules {
		if sched.Active && sched.Beneficiary == beneficiary {
			return sched.Clone(), nil
		}
	}
	return nil, vesting.ErrScheduleNotFound
}

func (s *Store) ListSchedules(_ context.Context, beneficiary id.AccountID, opts schedule.ListOpts) ([]*schedule.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*schedule.Schedule, 0)
	for _, sched := range s.schedules {
		if sched.Beneficiary == beneficiary {
			if !opts.ActiveOnly || sched.Active {
				result = append(result, sched.Clone())
			}
		}
	}

	// Oldest first
	for i := 1; i < len(result); i++ {
		for j := i; j > 0 && result[j].StartTime.Before(result[j-1].StartTime); j-- {
			result[j], result[j-1] = result[j-1], result[j]
		}
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) UpdateSchedule(_ context.Context, sched *schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schedules[sched.ID.String()]; !exists {
		return vesting.ErrNotFound
	}
	s.schedules[sched.ID.String()] = sched.Clone()
	return nil
}

// Claim Store implementation
func (s *Store) CreateClaim(_ context.Context, r *claim.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.claims = append(s.claims, *r)
	return nil
}

func (s *Store) ListClaims(_ context.Context, beneficiary id.AccountID, opts claim.ListOpts) ([]*claim.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*claim.Receipt, 0)
	for i := range s.claims {
		if s.claims[i].Beneficiary == beneficiary {
			r := s.claims[i]
			result = append(result, &r)
		}
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

// Withdrawable accumulator
func (s *Store) AddWithdrawable(_ context.Context, shares types.Shares) (types.Shares, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.withdrawable += shares
	return s.withdrawable, nil
}

func (s *Store) TakeWithdrawable(_ context.Context) (types.Shares, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := s.withdrawable
	s.withdrawable = 0
	return taken, nil
}

func (s *Store) Withdrawable(_ context.Context) (types.Shares, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.withdrawable, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
