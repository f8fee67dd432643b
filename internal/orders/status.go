package orders

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/velora/storefront/internal/models"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrUnknownStatus     = errors.New("unknown status value")
)

// statusNext is the fulfillment transition table: strictly forward through
// the defined sequence, with cancellation and refund reachable from any
// non-terminal state. DELIVERED, CANCELLED and REFUNDED are terminal.
var statusNext = map[models.OrderStatus][]models.OrderStatus{
	models.OrderPending:    {models.OrderConfirmed, models.OrderCancelled, models.OrderRefunded},
	models.OrderConfirmed:  {models.OrderProcessing, models.OrderCancelled, models.OrderRefunded},
	models.OrderProcessing: {models.OrderShipped, models.OrderCancelled, models.OrderRefunded},
	models.OrderShipped:    {models.OrderDelivered, models.OrderCancelled, models.OrderRefunded},
	models.OrderDelivered:  nil,
	models.OrderCancelled:  nil,
	models.OrderRefunded:   nil,
}

// paymentNext is the settlement table, tracked independently of fulfillment.
var paymentNext = map[models.PaymentStatus][]models.PaymentStatus{
	models.PaymentPending:           {models.PaymentPaid, models.PaymentFailed},
	models.PaymentPaid:              {models.PaymentRefunded, models.PaymentPartiallyRefunded},
	models.PaymentFailed:            nil,
	models.PaymentRefunded:          nil,
	models.PaymentPartiallyRefunded: nil,
}

func CanTransition(from, to models.OrderStatus) bool {
	return slices.Contains(statusNext[from], to)
}

func CanTransitionPayment(from, to models.PaymentStatus) bool {
	return slices.Contains(paymentNext[from], to)
}

// Transition moves the order to a new fulfillment status, stamping shipment
// and delivery times on first entry.
func Transition(o *models.Order, to models.OrderStatus) error {
	if !models.ValidOrderStatus(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.Status, to)
	}

	o.Status = to
	now := time.Now()
	switch to {
	case models.OrderShipped:
		if o.ShippedAt == nil {
			o.ShippedAt = &now
		}
	case models.OrderDelivered:
		if o.DeliveredAt == nil {
			o.DeliveredAt = &now
		}
	}
	return nil
}

func TransitionPayment(o *models.Order, to models.PaymentStatus) error {
	if !models.ValidPaymentStatus(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if !CanTransitionPayment(o.PaymentStatus, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, o.PaymentStatus, to)
	}
	o.PaymentStatus = to
	return nil
}
