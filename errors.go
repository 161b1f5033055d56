package vesting

import "errors"

// ──────────────────────────────────────────────────
// Not-found errors
// ──────────────────────────────────────────────────

var (
	// ErrNotFound is the generic not-found error.
	ErrNotFound = errors.New("vesting: not found")

	// ErrScheduleNotFound is returned when a beneficiary has no active
	// vesting schedule.
	ErrScheduleNotFound = errors.New("vesting: no active vesting schedule")
)

// ──────────────────────────────────────────────────
// Authorization errors
// ──────────────────────────────────────────────────

var (
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("vesting: caller lacks required capability")

	// ErrNoCaller is returned when no caller identity is attached to the
	// context of a privileged operation.
	ErrNoCaller = errors.New("vesting: no caller identity in context")
)

// ──────────────────────────────────────────────────
// Schedule validation errors
// ──────────────────────────────────────────────────

var (
	// ErrNoBeneficiary is returned when a schedule names no beneficiary.
	ErrNoBeneficiary = errors.New("vesting: beneficiary required")

	// ErrAmountNotPositive is returned when a schedule's total amount is zero.
	ErrAmountNotPositive = errors.New("vesting: total amount must be positive")

	// ErrNoIntervals is returned when a schedule has zero release intervals.
	ErrNoIntervals = errors.New("vesting: interval count must be positive")

	// ErrVestedExceedsTotal is returned when the already-vested amount
	// exceeds the total amount.
	ErrVestedExceedsTotal = errors.New("vesting: vested amount exceeds total amount")

	// ErrCliffTooLong is returned when the cliff outlasts the whole schedule.
	ErrCliffTooLong = errors.New("vesting: cliff longer than total duration")

	// ErrCliffWithVested is returned when a schedule carries both a cliff
	// and an already-vested amount.
	ErrCliffWithVested = errors.New("vesting: cliff incompatible with pre-vested amount")

	// ErrCliffTooShort is returned when a nonzero cliff is shorter than a
	// single release interval.
	ErrCliffTooShort = errors.New("vesting: cliff below required minimum")

	// ErrScheduleActive is returned when a beneficiary already has an
	// active schedule.
	ErrScheduleActive = errors.New("vesting: beneficiary already has an active schedule")
)

// ──────────────────────────────────────────────────
// Operation errors
// ──────────────────────────────────────────────────

var (
	// ErrCliffNotReached is returned when a claim arrives before the cliff.
	ErrCliffNotReached = errors.New("vesting: cliff not reached")

	// ErrNothingToClaim is returned when no shares are releasable and no
	// vested amount remains unclaimed.
	ErrNothingToClaim = errors.New("vesting: nothing to claim")

	// ErrNothingToCancel is returned when cancelling a fully released
	// schedule would reclaim nothing.
	ErrNothingToCancel = errors.New("vesting: nothing to cancel")

	// ErrNothingToWithdraw is returned when the withdrawable accumulator
	// is empty.
	ErrNothingToWithdraw = errors.New("vesting: nothing to withdraw")

	// ErrDepositFailed is returned when the vault mints zero shares for a
	// non-zero deposit.
	ErrDepositFailed = errors.New("vesting: vault deposit returned zero shares")
)

// ──────────────────────────────────────────────────
// Store errors
// ──────────────────────────────────────────────────

var (
	// ErrAlreadyExists is returned when creating an entity with a
	// duplicate ID.
	ErrAlreadyExists = errors.New("vesting: already exists")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached.
	ErrStoreUnavailable = errors.New("vesting: store unavailable")
)

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrScheduleNotFound)
}

// IsValidation reports whether err is a schedule validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoBeneficiary) ||
		errors.Is(err, ErrAmountNotPositive) ||
		errors.Is(err, ErrNoIntervals) ||
		errors.Is(err, ErrVestedExceedsTotal) ||
		errors.Is(err, ErrCliffTooLong) ||
		errors.Is(err, ErrCliffWithVested) ||
		errors.Is(err, ErrCliffTooShort) ||
		errors.Is(err, ErrScheduleActive)
}

// IsNothingToDo reports whether err signals an operation with no effect.
func IsNothingToDo(err error) bool {
	return errors.Is(err, ErrNothingToClaim) ||
		errors.Is(err, ErrNothingToCancel) ||
		errors.Is(err, ErrNothingToWithdraw)
}
