package claim

import (
	"time"

	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/types"
)

// Receipt records a single payout against a vesting schedule.
type Receipt struct {
	ID             id.ClaimID    `json:"id"`
	ScheduleID     id.ScheduleID `json:"schedule_id"`
	Beneficiary    id.AccountID  `json:"beneficiary"`
	SharesRedeemed types.Shares  `json:"shares_redeemed"`
	AssetsPaid     types.Assets  `json:"assets_paid"`
	VestedPortion  types.Assets  `json:"vested_portion"`
	ClaimedAt      time.Time     `json:"claimed_at"`
}
