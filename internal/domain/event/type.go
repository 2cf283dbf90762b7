package event

// Type identifies the lifecycle transition an event describes
type Type string

const (
	TypeNotaSubmitted   Type = "nota.submitted"
	TypeNotaApproved    Type = "nota.approved"
	TypeNotaRejected    Type = "nota.rejected"
	TypeNotaResubmitted Type = "nota.resubmitted"
	TypeNotaFinished    Type = "nota.finished"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeNotaSubmitted,
		TypeNotaApproved,
		TypeNotaRejected,
		TypeNotaResubmitted,
		TypeNotaFinished:
		return true
	default:
		return false
	}
}
