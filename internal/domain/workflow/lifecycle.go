package workflow

import "github.com/kdninv/nota-api/internal/domain/entity"

// Lifecycle returns the nota approval machine positioned at current:
//
//	pending  --APPROVE-->  approved --FINISH--> finished
//	pending  --REJECT--->  rejected --RESUBMIT--> pending
//	pending  --RESUBMIT--> pending (edit before review)
//
// finished is terminal.
func Lifecycle(current State) (*Machine, error) {
	return NewBuilder().
		Permit(StatePending, TriggerApprove, StateApproved).
		Permit(StatePending, TriggerReject, StateRejected).
		Permit(StatePending, TriggerResubmit, StatePending).
		Permit(StateRejected, TriggerResubmit, StatePending).
		Permit(StateApproved, TriggerFinish, StateFinished).
		Build(current)
}

// RequiredRole returns the role a trigger demands. Resubmit is not
// role-gated but identity-gated: only the original submitter may fire it,
// which the service checks against the nota record.
func RequiredRole(trigger Trigger) (string, bool) {
	switch trigger {
	case TriggerApprove, TriggerReject:
		return entity.RoleManager, true
	case TriggerFinish:
		return entity.RoleAdmin, true
	default:
		return "", false
	}
}
