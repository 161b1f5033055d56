package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/vesting/claim"
	"github.com/xraph/vesting/id"
	"github.com/xraph/vesting/schedule"
	"github.com/xraph/vesting/types"
)

// ==================== Schedule models ====================

type scheduleModel struct {
	grove.BaseModel `grove:"table:vesting_schedules"`

	ID             string     `grove:"id,pk"`
	Beneficiary    string     `grove:"beneficiary"`
	TotalShares    int64      `grove:"total_shares"`
	ReleasedShares int64      `grove:"released_shares"`
	VestedAmount   int64      `grove:"vested_amount"`
	VestedClaimed  bool       `grove:"vested_claimed"`
	StartTime      time.Time  `grove:"start_time"`
	CliffTime      time.Time  `grove:"cliff_time"`
	EndTime        time.Time  `grove:"end_time"`
	Intervals      int64      `grove:"intervals"`
	Active         bool       `grove:"active"`
	CancelledAt    *time.Time `grove:"cancelled_at"`
	CreatedAt      time.Time  `grove:"created_at"`
	UpdatedAt      time.Time  `grove:"updated_at"`
}

func toScheduleModel(s *schedule.Schedule) *scheduleModel {
	return &scheduleModel{
		ID:             s.ID.String(),
		Beneficiary:    s.Beneficiary.String(),
		TotalShares:    int64(s.TotalShares),
		ReleasedShares: int64(s.ReleasedShares),
		VestedAmount:   int64(s.VestedAmount),
		VestedClaimed:  s.VestedClaimed,
		StartTime:      s.StartTime,
		CliffTime:      s.CliffTime,
		EndTime:        s.EndTime,
		Intervals:      int64(s.Intervals),
		Active:         s.Active,
		CancelledAt:    s.CancelledAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func fromScheduleModel(m *scheduleModel) (*schedule.Schedule, error) {
	schedID, err := id.ParseScheduleID(m.ID)
	if err != nil {
		return nil, err
	}
	beneficiary, err := id.ParseAccountID(m.Beneficiary)
	if err != nil {
		return nil, err
	}

	return &schedule.Schedule{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             schedID,
		Beneficiary:    beneficiary,
		TotalShares:    types.Shares(m.TotalShares),
		ReleasedShares: types.Shares(m.ReleasedShares),
		VestedAmount:   types.Assets(m.VestedAmount),
		VestedClaimed:  m.VestedClaimed,
		StartTime:      m.StartTime,
		CliffTime:      m.CliffTime,
		EndTime:        m.EndTime,
		Intervals:      uint32(m.Intervals),
		Active:         m.Active,
		CancelledAt:    m.CancelledAt,
	}, nil
}

// ==================== Claim models ====================

type claimModel struct {
	grove.BaseModel `grove:"table:vesting_claims"`

	ID             string    `grove:"id,pk"`
	ScheduleID     string    `grove:"schedule_id"`
	Beneficiary    string    `grove:"beneficiary"`
	SharesRedeemed int64     `grove:"shares_redeemed"`
	AssetsPaid     int64     `grove:"assets_paid"`
	VestedPortion  int64     `grove:"vested_portion"`
	ClaimedAt      time.Time `grove:"claimed_at"`
}

func toClaimModel(r *claim.Receipt) *claimModel {
	return &claimModel{
		ID:             r.ID.String(),
		ScheduleID:     r.ScheduleID.String(),
		Beneficiary:    r.Beneficiary.String(),
		SharesRedeemed: int64(r.SharesRedeemed),
		AssetsPaid:     int64(r.AssetsPaid),
		VestedPortion:  int64(r.VestedPortion),
		ClaimedAt:      r.ClaimedAt,
	}
}

func fromClaimModel(m *claimModel) (*claim.Receipt, error) {
	claimID, err := id.ParseClaimID(m.ID)
	if err != nil {
		return nil, err
	}
	schedID, err := id.ParseScheduleID(m.ScheduleID)
	if err != nil {
		return nil, err
	}
	beneficiary, err := id.ParseAccountID(m.Beneficiary)
	if err != nil {
		return nil, err
	}

	return &claim.Receipt{
		ID:             claimID,
		ScheduleID:     schedID,
		Beneficiary:    beneficiary,
		SharesRedeemed: types.Shares(m.SharesRedeemed),
		AssetsPaid:     types.Assets(m.AssetsPaid),
		VestedPortion:  types.Assets(m.VestedPortion),
		ClaimedAt:      m.ClaimedAt,
	}, nil
}

// ==================== State models ====================

// stateModel is a singleton row holding the withdrawable accumulator.
type stateModel struct {
	grove.BaseModel `grove:"table:vesting_state"`

	ID           int64 `grove:"id,pk"`
	Withdrawable int64 `grove:"withdrawable"`
}
