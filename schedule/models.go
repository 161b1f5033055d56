package schedule

import (
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// Params describes a vesting schedule to be created.
type Params struct {
	// Beneficiary is the account the schedule vests to.
	Beneficiary id.AccountID `json:"beneficiary"`

	// TotalAmount is the full asset amount transferred into custody,
	// including any pre-vested portion.
	TotalAmount types.Assets `json:"total_amount"`

	// VestedAmount is the portion of TotalAmount considered already vested
	// at creation time. It is payable once, is not deposited into the vault,
	// and cannot be combined with a cliff.
	VestedAmount types.Assets `json:"vested_amount"`

	// CliffDuration is the delay before any entitlement becomes claimable.
	CliffDuration time.Duration `json:"cliff_duration"`

	// IntervalDuration is the length of one unlocking step.
	IntervalDuration time.Duration `json:"interval_duration"`

	// Intervals is the number of unlocking steps between start and end.
	Intervals uint32 `json:"intervals"`
}

// TotalDuration returns IntervalDuration * Intervals.
func (p Params) TotalDuration() time.Duration {
	return p.IntervalDuration * time.Duration(p.Intervals)
}

// Schedule is a beneficiary's vesting record.
//
// TotalShares holds the vault shares received for the deposited
// currently-vesting amount (TotalAmount - VestedAmount at creation);
// the pre-vested portion never enters the vault and is tracked as a raw
// asset amount in VestedAmount.
type Schedule struct {
	types.Entity
	ID             id.ScheduleID `json:"id"`
	Beneficiary    id.AccountID  `json:"beneficiary"`
	TotalShares    types.Shares  `json:"total_shares"`
	ReleasedShares types.Shares  `json:"released_shares"`
	VestedAmount   types.Assets  `json:"vested_amount"`
	VestedClaimed  bool          `json:"vested_claimed"`
	StartTime      time.Time     `json:"start_time"`
	CliffTime      time.Time     `json:"cliff_time"`
	EndTime        time.Time     `json:"end_time"`
	Intervals      uint32        `json:"intervals"`
	Active         bool          `json:"active"`
	CancelledAt    *time.Time    `json:"cancelled_at,omitempty"`
}

// TotalDuration returns the full vesting duration (EndTime - StartTime).
func (s *Schedule) TotalDuration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// RemainingShares returns the shares not yet released.
func (s *Schedule) RemainingShares() types.Shares {
	return s.TotalShares - s.ReleasedShares
}

// UnclaimedVested returns the pre-vested asset amount still owed, if any.
func (s *Schedule) UnclaimedVested() types.Assets {
	if s.VestedClaimed {
		return 0
	}
	return s.VestedAmount
}

// ReleasableShares returns the shares unlocked by elapsed time but not yet
// released, as of now. It returns 0 for an inactive schedule and before the
// cliff.
//
// Elapsed time is clamped to the schedule's total duration, so the unlocked
// amount never exceeds TotalShares regardless of how far past EndTime the
// call occurs, and unlocked >= ReleasedShares holds at all times.
func (s *Schedule) ReleasableShares(now time.Time) types.Shares {
	if !s.Active || now.Before(s.CliffTime) {
		return 0
	}

	total := s.TotalDuration()
	if total <= 0 {
		return s.RemainingShares()
	}

	elapsed := now.Sub(s.StartTime)
	if elapsed > total {
		elapsed = total
	}

	unlocked := types.MulDiv(s.TotalShares, uint64(elapsed), uint64(total))
	return unlocked - s.ReleasedShares
}

// Clone returns a deep copy of the schedule.
func (s *Schedule) Clone() *Schedule {
	out := *s
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		out.CancelledAt = &t
	}
	return &out
}
