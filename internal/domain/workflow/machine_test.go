package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifecycleHappyPath(t *testing.T) {
	m, err := Lifecycle(StatePending)
	require.NoError(t, err)

	require.NoError(t, m.Fire(TriggerApprove))
	assert.Equal(t, StateApproved, m.State())

	require.NoError(t, m.Fire(TriggerFinish))
	assert.Equal(t, StateFinished, m.State())
	assert.True(t, m.State().IsTerminal())
	assert.Empty(t, m.PermittedTriggers())
}

func TestLifecycleResubmissionLoop(t *testing.T) {
	m, err := Lifecycle(StatePending)
	require.NoError(t, err)

	require.NoError(t, m.Fire(TriggerReject))
	assert.Equal(t, StateRejected, m.State())
	assert.False(t, m.State().IsTerminal())

	require.NoError(t, m.Fire(TriggerResubmit))
	assert.Equal(t, StatePending, m.State())

	// Editing while still pending keeps the nota pending.
	require.NoError(t, m.Fire(TriggerResubmit))
	assert.Equal(t, StatePending, m.State())
}

func TestLifecycleIllegalTriggers(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
	}{
		{"approve from approved", StateApproved, TriggerApprove},
		{"approve from rejected", StateRejected, TriggerApprove},
		{"approve from finished", StateFinished, TriggerApprove},
		{"reject from approved", StateApproved, TriggerReject},
		{"reject from finished", StateFinished, TriggerReject},
		{"finish from pending", StatePending, TriggerFinish},
		{"finish from rejected", StateRejected, TriggerFinish},
		{"finish from finished", StateFinished, TriggerFinish},
		{"resubmit from approved", StateApproved, TriggerResubmit},
		{"resubmit from finished", StateFinished, TriggerResubmit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Lifecycle(tt.from)
			require.NoError(t, err)

			assert.False(t, m.CanFire(tt.trigger))
			err = m.Fire(tt.trigger)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.from, m.State(), "failed fire must not move the state")
		})
	}
}

func TestLifecycleUnknownState(t *testing.T) {
	_, err := Lifecycle(State("draft"))
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRequiredRole(t *testing.T) {
	role, ok := RequiredRole(TriggerApprove)
	require.True(t, ok)
	assert.Equal(t, "manager", role)

	role, ok = RequiredRole(TriggerReject)
	require.True(t, ok)
	assert.Equal(t, "manager", role)

	role, ok = RequiredRole(TriggerFinish)
	require.True(t, ok)
	assert.Equal(t, "admin", role)

	_, ok = RequiredRole(TriggerResubmit)
	assert.False(t, ok, "resubmit is identity-gated, not role-gated")
}

func TestBuilderCopiesTransitionTable(t *testing.T) {
	b := NewBuilder().Permit(StatePending, TriggerApprove, StateApproved)
	m, err := b.Build(StatePending)
	require.NoError(t, err)

	b.Permit(StatePending, TriggerFinish, StateFinished)
	assert.False(t, m.CanFire(TriggerFinish), "built machine must not see later Permit calls")
}
