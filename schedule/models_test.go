package schedule_test

import (
	"testing"
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

const day = 24 * time.Hour

// newSchedule builds an active schedule: 1000 shares, 180d cliff,
// 4 intervals of 90d (end = start + 360d).
func newSchedule(start time.Time) *schedule.Schedule {
	return &schedule.Schedule{
		Entity:      types.NewEntity(),
		ID:          id.NewScheduleID(),
		Beneficiary: id.NewAccountID(),
		TotalShares: 1000,
		StartTime:   start,
		CliffTime:   start.Add(180 * day),
		EndTime:     start.Add(360 * day),
		Intervals:   4,
		Active:      true,
	}
}

func TestReleasableSharesBeforeCliff(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSchedule(start)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"at start", start},
		{"mid cliff", start.Add(90 * day)},
		{"one second before cliff", s.CliffTime.Add(-time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ReleasableShares(tt.at); got != 0 {
				t.Errorf("releasable = %d, want 0", got)
			}
		})
	}
}

func TestReleasableSharesRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSchedule(start)

	// At the cliff, 180 of 360 days have elapsed: 2 of 4 intervals.
	if got := s.ReleasableShares(s.CliffTime); got != 500 {
		t.Errorf("releasable at cliff = %d, want 500", got)
	}

	// At the end, everything not yet released is claimable.
	if got := s.ReleasableShares(s.EndTime); got != 1000 {
		t.Errorf("releasable at end = %d, want 1000", got)
	}

	s.ReleasedShares = 500
	if got := s.ReleasableShares(s.EndTime); got != 500 {
		t.Errorf("releasable at end after partial release = %d, want 500", got)
	}
}

func TestReleasableSharesClampedPastEnd(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSchedule(start)

	tests := []struct {
		name string
		at   time.Time
	}{
		{"at end", s.EndTime},
		{"one day past end", s.EndTime.Add(day)},
		{"a decade past end", s.EndTime.Add(3650 * day)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ReleasableShares(tt.at); got != s.TotalShares {
				t.Errorf("releasable = %d, want %d", got, s.TotalShares)
			}
		})
	}
}

func TestReleasableSharesMonotonic(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSchedule(start)
	s.TotalShares = 987654321

	var prev types.Shares
	for at := s.CliffTime; !at.After(s.EndTime.Add(30 * day)); at = at.Add(12 * time.Hour) {
		got := s.ReleasableShares(at)
		if got < prev {
			t.Fatalf("releasable decreased at %v: %d < %d", at, got, prev)
		}
		if got > s.TotalShares {
			t.Fatalf("releasable exceeded total at %v: %d", at, got)
		}
		prev = got
	}
}

func TestReleasableSharesInactive(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := newSchedule(start)
	s.Active = false

	if got := s.ReleasableShares(s.EndTime); got != 0 {
		t.Errorf("inactive schedule releasable = %d, want 0", got)
	}
}

func TestRemainingShares(t *testing.T) {
	s := newSchedule(time.Now())
	s.ReleasedShares = 300
	if got := s.RemainingShares(); got != 700 {
		t.Errorf("remaining = %d, want 700", got)
	}
}

func TestUnclaimedVested(t *testing.T) {
	s := newSchedule(time.Now())
	s.VestedAmount = 250
	if got := s.UnclaimedVested(); got != 250 {
		t.Errorf("unclaimed vested = %d, want 250", got)
	}
	s.VestedClaimed = true
	if got := s.UnclaimedVested(); got != 0 {
		t.Errorf("unclaimed vested after claim = %d, want 0", got)
	}
}

func TestClone(t *testing.T) {
	s := newSchedule(time.Now())
	cancelled := time.Now().UTC()
	s.CancelledAt = &cancelled

	c := s.Clone()
	c.ReleasedShares = 999
	*c.CancelledAt = c.CancelledAt.Add(time.Hour)

	if s.ReleasedShares == 999 {
		t.Error("clone shares original's fields")
	}
	if !s.CancelledAt.Equal(cancelled) {
		t.Error("clone shares original's CancelledAt pointer")
	}
}
