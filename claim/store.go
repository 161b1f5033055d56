package claim

import (
	"context"

	"github.com/xraph/vesting/id"
)

type Store interface {
	Create(ctx context.Context, r *Receipt) error
	List(ctx context.Context, beneficiary id.AccountID, opts ListOpts) ([]*Receipt, error)
}

type ListOpts struct {
	Limit  int
	Offset int
}
