package workflow

import "fmt"

// Machine tracks a current state and validates triggers against the
// configured transition table. It holds no persistence; callers apply the
// resulting state under a status-guarded write.
type Machine struct {
	current     State
	transitions map[State]map[Trigger]State
}

// State returns the current state.
func (m *Machine) State() State {
	return m.current
}

// CanFire reports whether the trigger is permitted in the current state.
func (m *Machine) CanFire(trigger Trigger) bool {
	_, ok := m.transitions[m.current][trigger]
	return ok
}

// Fire executes the trigger, moving to the target state, or returns
// ErrInvalidTransition leaving the state untouched.
func (m *Machine) Fire(trigger Trigger) error {
	to, ok := m.transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: %s dari status %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = to
	return nil
}

// PermittedTriggers returns every trigger that may fire from the current
// state.
func (m *Machine) PermittedTriggers() []Trigger {
	triggers := make([]Trigger, 0, len(m.transitions[m.current]))
	for trigger := range m.transitions[m.current] {
		triggers = append(triggers, trigger)
	}
	return triggers
}

// Builder assembles a transition table for a Machine.
type Builder struct {
	transitions map[State]map[Trigger]State
}

// NewBuilder creates an empty state machine builder.
func NewBuilder() *Builder {
	return &Builder{transitions: make(map[State]map[Trigger]State)}
}

// Permit allows trigger to move from one state to another. Panics on
// unknown states: the transition table is static program configuration.
func (b *Builder) Permit(from State, trigger Trigger, to State) *Builder {
	if !from.IsValid() {
		panic(fmt.Sprintf("invalid source state: %s", from))
	}
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", to))
	}
	if b.transitions[from] == nil {
		b.transitions[from] = make(map[Trigger]State)
	}
	b.transitions[from][trigger] = to
	return b
}

// Build creates a machine positioned at initial. The transition table is
// copied so later Permit calls do not leak into built machines.
func (b *Builder) Build(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, initial)
	}
	table := make(map[State]map[Trigger]State, len(b.transitions))
	for from, byTrigger := range b.transitions {
		row := make(map[Trigger]State, len(byTrigger))
		for trigger, to := range byTrigger {
			row[trigger] = to
		}
		table[from] = row
	}
	return &Machine{current: initial, transitions: table}, nil
}
