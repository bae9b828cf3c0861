package machine

import "errors"

var ErrInvalidTransition = errors.New("invalid state transition")

type State interface {
	~string
}

// Allowable maps where a from state is allowed to transition to
type Allowable[S State] struct {
	from S
	to   []S
}

// Machine validates state transitions for a tracked value
type Machine[S State] struct {
	current     S
	transitions []Allowable[S]
}

// TransitionBuilder helps in creating a from-to relationship for state transitions
type TransitionBuilder[S State] struct {
	transition Allowable[S]
}

func New[S State](current S, transitions ...Allowable[S]) *Machine[S] {
	return &Machine[S]{current: current, transitions: transitions}
}

// From initializes a transition from a specific state
func From[S State](from S) *TransitionBuilder[S] {
	return &TransitionBuilder[S]{transition: Allowable[S]{from: from}}
}

// To sets the possible destination states and returns the configured transition
func (tb *TransitionBuilder[S]) To(to ...S) Allowable[S] {
	tb.transition.to = to
	return tb.transition
}

// Current returns the state the machine is in
func (m *Machine[S]) Current() S {
	return m.current
}

// CanTransition reports whether the machine may move to the given state
func (m *Machine[S]) CanTransition(s S) bool {
	for _, transition := range m.transitions {
		if transition.from != m.current {
			continue
		}

		for _, to := range transition.to {
			if to == s {
				return true
			}
		}
	}

	return false
}

// Transition moves the machine to the given state if the transition is allowed
func (m *Machine[S]) Transition(s S) error {
	if !m.CanTransition(s) {
		return ErrInvalidTransition
	}

	m.current = s
	return nil
}
