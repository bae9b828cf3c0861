package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type status string

const (
	statusPending   status = "pending"
	statusRunning   status = "running"
	statusSuccess   status = "success"
	statusFailed    status = "failed"
	statusCancelled status = "cancelled"
)

func newTestMachine() *Machine[status] {
	return New(statusPending,
		From(statusPending).To(statusRunning, statusCancelled),
		From(statusRunning).To(statusSuccess, statusFailed),
	)
}

func TestTransition(t *testing.T) {
	m := newTestMachine()
	require.NoError(t, m.Transition(statusRunning))
	require.NoError(t, m.Transition(statusFailed))
	assert.Equal(t, statusFailed, m.Current())
}

func TestTransitionRejected(t *testing.T) {
	m := newTestMachine()

	// terminal states are unreachable from pending
	assert.ErrorIs(t, m.Transition(statusSuccess), ErrInvalidTransition)

	require.NoError(t, m.Transition(statusRunning))
	assert.ErrorIs(t, m.Transition(statusCancelled), ErrInvalidTransition)
	assert.Equal(t, statusRunning, m.Current())
}

func TestCanTransition(t *testing.T) {
	m := newTestMachine()
	assert.True(t, m.CanTransition(statusCancelled))
	assert.False(t, m.CanTransition(statusFailed))
}
