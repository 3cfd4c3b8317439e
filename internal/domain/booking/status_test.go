package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusConfirmed))
	assert.True(t, StatusPendingPayment.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusPendingPayment.CanTransitionTo(StatusActive))
	assert.False(t, StatusPendingPayment.CanTransitionTo(StatusCompleted))

	assert.True(t, StatusConfirmed.CanTransitionTo(StatusActive))
	assert.True(t, StatusConfirmed.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPendingPayment))

	assert.True(t, StatusActive.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusActive.CanTransitionTo(StatusCancelled))

	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusConfirmed))
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPendingPayment.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusActive.IsTerminal())
	assert.False(t, Status("bogus").IsTerminal())
}

func TestParseStatus(t *testing.T) {
	parsed, err := ParseStatus("confirmed")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, parsed)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)

	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestHoldStatuses_OnlyConfirmedAndActiveHold(t *testing.T) {
	holds := HoldStatuses()
	assert.ElementsMatch(t, []Status{StatusConfirmed, StatusActive}, holds)
}
