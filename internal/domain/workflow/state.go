package workflow

// State is a nota's position in the approval lifecycle.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateRejected State = "rejected"
	StateFinished State = "finished"
)

var validStates = map[State]bool{
	StatePending:  true,
	StateApproved: true,
	StateRejected: true,
	StateFinished: true,
}

// IsTerminal returns true if no further transitions are allowed. Rejected is
// not terminal: the submitter may edit and resubmit.
func (s State) IsTerminal() bool {
	return s == StateFinished
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
