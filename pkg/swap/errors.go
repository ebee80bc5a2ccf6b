package swap

import "errors"

// Named failure kinds shared by the escrow, factory and adapter packages.
// Callers match them with errors.Is to tell retryable failures
// (ErrNotYetExpired) apart from fundamentally invalid attempts
// (ErrInvalidSecret) and from swaps someone else already resolved
// (ErrInvalidState after completion).
var (
	// ErrAlreadyExists is returned when a salt already maps to a deployed escrow.
	ErrAlreadyExists = errors.New("escrow already exists for salt")

	// ErrInvalidState is returned when an operation is attempted outside
	// the state it requires.
	ErrInvalidState = errors.New("invalid escrow state")

	// ErrInvalidSecret is returned when the presented secret does not hash
	// to the committed hashlock.
	ErrInvalidSecret = errors.New("secret does not match hashlock")

	// ErrExpired is returned when a withdrawal is attempted at or after the
	// escrow timeout.
	ErrExpired = errors.New("escrow timeout has passed")

	// ErrNotYetExpired is returned when a refund is attempted before the
	// escrow timeout.
	ErrNotYetExpired = errors.New("escrow timeout has not passed yet")

	// ErrUnauthorized is returned when a restricted entry point is called
	// by anyone other than its registered caller.
	ErrUnauthorized = errors.New("caller is not authorized")

	// ErrTransferFailed is returned when the underlying asset movement
	// could not complete.
	ErrTransferFailed = errors.New("asset transfer failed")

	// ErrAlreadyProcessed is returned when a settlement callback is
	// replayed for an intent that was already settled.
	ErrAlreadyProcessed = errors.New("intent already processed")
)
