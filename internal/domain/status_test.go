package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPendingPayment.Terminal())
	assert.False(t, StatusToBeConfirmed.Terminal())
	assert.False(t, StatusConfirmed.Terminal())
	assert.False(t, StatusDeliveryInProgress.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusForwardPath(t *testing.T) {
	path := []Status{
		StatusPendingPayment,
		StatusToBeConfirmed,
		StatusConfirmed,
		StatusDeliveryInProgress,
		StatusCompleted,
	}

	for i := 0; i < len(path)-1; i++ {
		assert.True(t, path[i].CanTransitionTo(path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}

	// Шаги нельзя пропускать
	assert.False(t, StatusPendingPayment.CanTransitionTo(StatusConfirmed))
	assert.False(t, StatusToBeConfirmed.CanTransitionTo(StatusDeliveryInProgress))
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusCompleted))

	// И нельзя идти назад
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusToBeConfirmed))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusDeliveryInProgress))
}

func TestStatusCancellableFromAnyNonTerminal(t *testing.T) {
	for _, s := range []Status{StatusPendingPayment, StatusToBeConfirmed, StatusConfirmed, StatusDeliveryInProgress} {
		assert.True(t, s.CanTransitionTo(StatusCancelled), "%s should be cancellable", s)
	}

	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancelled))
	assert.False(t, StatusCancelled.CanTransitionTo(StatusCancelled))
}

func TestTerminalStatusesHaveNoOutgoingTransitions(t *testing.T) {
	all := []Status{
		StatusPendingPayment, StatusToBeConfirmed, StatusConfirmed,
		StatusDeliveryInProgress, StatusCompleted, StatusCancelled,
	}
	for _, next := range all {
		assert.False(t, StatusCompleted.CanTransitionTo(next))
		assert.False(t, StatusCancelled.CanTransitionTo(next))
	}
}
