package schedule

import (
	"context"

	"github.com/xraph/vesting/id"
)

type Store interface {
	Create(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, schedID id.ScheduleID) (*Schedule, error)
	GetActive(ctx context.Context, beneficiary id.AccountID) (*Schedule, error)
	List(ctx context.Context, beneficiary id.AccountID, opts ListOpts) ([]*Schedule, error)
	Update(ctx context.Context, s *Schedule) error
}

type ListOpts struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}
