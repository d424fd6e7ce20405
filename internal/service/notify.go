package service

import "github.com/set-night/shopapp/internal/domain"

// Notifier is informed, never consulted: delivery failures are logged by the
// implementation and must never affect the transaction that produced the event.
type Notifier interface {
	OrderCreated(o domain.Order)
	ProofUploaded(o domain.Order)
	OrderStatusChanged(o domain.Order, from domain.OrderStatus)
}

// nopNotifier is used when no staff channel is configured.
type nopNotifier struct{}

func (nopNotifier) OrderCreated(domain.Order)                           {}
func (nopNotifier) ProofUploaded(domain.Order)                          {}
func (nopNotifier) OrderStatusChanged(domain.Order, domain.OrderStatus) {}
