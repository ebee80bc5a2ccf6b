package swap

// State is the lifecycle position of an escrow. There is exactly one
// forward edge out of StateCreated, decided by the race between a valid
// secret reveal before the timeout and the timeout being reached. Both
// outcomes are terminal.
type State int

const (
	// StateNone means no escrow exists.
	StateNone State = iota
	// StateCreated means the escrow holds funds and awaits resolution.
	StateCreated
	// StateCompleted means a valid secret was revealed and funds went to
	// the recipient.
	StateCompleted
	// StateRefunded means the timeout passed unresolved and funds went
	// back to the depositor.
	StateRefunded
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateCreated:
		return "created"
	case StateCompleted:
		return "completed"
	case StateRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can leave the state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateRefunded
}
