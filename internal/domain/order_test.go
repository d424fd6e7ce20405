package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition_HappyPath(t *testing.T) {
	path := []OrderStatus{
		OrderStatusAwaitingPayment,
		OrderStatusPaid,
		OrderStatusProcessing,
		OrderStatusSent,
		OrderStatusDelivered,
		OrderStatusReceived,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]), "%s -> %s", path[i], path[i+1])
	}
}

func TestCanTransition_Cancellation(t *testing.T) {
	cancellable := []OrderStatus{OrderStatusAwaitingPayment, OrderStatusPaid, OrderStatusProcessing}
	for _, from := range cancellable {
		assert.True(t, CanTransition(from, OrderStatusCancelled), "from %s", from)
	}

	// Once sent the order is in transit; cancellation becomes a return.
	notCancellable := []OrderStatus{OrderStatusSent, OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled}
	for _, from := range notCancellable {
		assert.False(t, CanTransition(from, OrderStatusCancelled), "from %s", from)
	}
}

func TestCanTransition_TerminalStatesHaveNoEdges(t *testing.T) {
	all := []OrderStatus{
		OrderStatusAwaitingPayment, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusSent, OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled,
	}
	for _, to := range all {
		assert.False(t, CanTransition(OrderStatusReceived, to), "received -> %s", to)
		assert.False(t, CanTransition(OrderStatusCancelled, to), "cancelled -> %s", to)
	}
}

func TestCanTransition_NoSkipping(t *testing.T) {
	assert.False(t, CanTransition(OrderStatusAwaitingPayment, OrderStatusProcessing))
	assert.False(t, CanTransition(OrderStatusPaid, OrderStatusSent))
	assert.False(t, CanTransition(OrderStatusProcessing, OrderStatusDelivered))
	// No going backwards either.
	assert.False(t, CanTransition(OrderStatusProcessing, OrderStatusPaid))
	assert.False(t, CanTransition(OrderStatusSent, OrderStatusProcessing))
}

func TestCanAttachProof(t *testing.T) {
	assert.True(t, CanAttachProof(OrderStatusAwaitingPayment))
	assert.True(t, CanAttachProof(OrderStatusPaid))
	assert.False(t, CanAttachProof(OrderStatusProcessing))
	assert.False(t, CanAttachProof(OrderStatusSent))
	assert.False(t, CanAttachProof(OrderStatusCancelled))
}

func TestTerminal(t *testing.T) {
	assert.True(t, OrderStatusReceived.Terminal())
	assert.True(t, OrderStatusCancelled.Terminal())
	assert.False(t, OrderStatusAwaitingPayment.Terminal())
	assert.False(t, OrderStatusDelivered.Terminal())
}

func TestInvalidTransitionError_Message(t *testing.T) {
	err := &InvalidTransitionError{Current: OrderStatusProcessing, Requested: OrderStatusPaid}
	assert.Equal(t, "invalid transition from processing to paid", err.Error())
}
