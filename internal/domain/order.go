package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents where an order sits in its lifecycle.
type OrderStatus string

const (
	// OrderStatusAwaitingPayment indicates the order was placed but no payment proof exists yet.
	OrderStatusAwaitingPayment OrderStatus = "awaiting_payment"
	// OrderStatusPaid indicates the shopper uploaded a proof of payment.
	OrderStatusPaid OrderStatus = "paid"
	// OrderStatusProcessing indicates staff confirmed the payment and are assembling the order.
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusSent indicates the order was handed to delivery.
	OrderStatusSent OrderStatus = "sent"
	// OrderStatusDelivered indicates delivery reported the package arrived.
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusReceived indicates the shopper confirmed receipt. Terminal.
	OrderStatusReceived OrderStatus = "received"
	// OrderStatusCancelled indicates the order was cancelled before shipping. Terminal.
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusReceived || s == OrderStatusCancelled
}

// transitions is the directed edge set of the order lifecycle. Once sent,
// an order is physically in transit and cancellation becomes a return,
// which is handled outside this system.
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusAwaitingPayment: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:            {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing:      {OrderStatusSent, OrderStatusCancelled},
	OrderStatusSent:            {OrderStatusDelivered},
	OrderStatusDelivered:       {OrderStatusReceived},
	OrderStatusReceived:        {},
	OrderStatusCancelled:       {},
}

// CanTransition reports whether moving from one status to another is a legal
// edge of the lifecycle graph.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanAttachProof reports whether a payment proof may be attached or replaced
// in the given status. Re-upload covers replacing a rejected screenshot.
func CanAttachProof(s OrderStatus) bool {
	return s == OrderStatusAwaitingPayment || s == OrderStatusPaid
}

// OrderLine is an immutable snapshot of a cart line at submission time.
// Catalog price changes never retroactively alter a placed order.
type OrderLine struct {
	VariantID int64
	ProductID int64
	Title     string
	Size      string
	Color     string
	Quantity  int
	UnitPrice decimal.Decimal
}

type Order struct {
	ID              int64
	PublicID        uuid.UUID
	UserID          int64
	Status          OrderStatus
	Lines           []OrderLine
	TotalAmount     decimal.Decimal
	PromoCode       string
	ReferralCode    string
	FIO             string
	Phone           string
	DeliveryAddress string
	PaymentProofURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasProof reports whether a payment proof has been attached.
func (o *Order) HasProof() bool {
	return o.PaymentProofURL != ""
}
