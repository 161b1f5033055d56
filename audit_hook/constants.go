package audithook

// Action constants for audit events.
const (
	// Schedule actions
	ActionScheduleCreated  = "schedule.created"
	ActionVestingCancelled = "vesting.cancelled"

	// Payout actions
	ActionClaimPaid      = "claim.paid"
	ActionFundsWithdrawn = "funds.withdrawn"
)

// Resource constants for audit events.
const (
	ResourceSchedule = "schedule"
	ResourceClaim    = "claim"
	ResourceTreasury = "treasury"
)

// Category constants for audit events.
const (
	CategoryVesting = "vesting"
	CategoryPayout  = "payout"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
