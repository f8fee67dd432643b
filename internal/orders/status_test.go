package orders

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/velora/storefront/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.OrderStatus
		ok       bool
	}{
		{models.OrderPending, models.OrderConfirmed, true},
		{models.OrderConfirmed, models.OrderProcessing, true},
		{models.OrderProcessing, models.OrderShipped, true},
		{models.OrderShipped, models.OrderDelivered, true},

		// cancellation and refund from any non-terminal state
		{models.OrderPending, models.OrderCancelled, true},
		{models.OrderConfirmed, models.OrderCancelled, true},
		{models.OrderProcessing, models.OrderRefunded, true},
		{models.OrderShipped, models.OrderCancelled, true},

		// no skipping forward
		{models.OrderPending, models.OrderProcessing, false},
		{models.OrderPending, models.OrderShipped, false},
		{models.OrderConfirmed, models.OrderDelivered, false},

		// no going back
		{models.OrderShipped, models.OrderProcessing, false},
		{models.OrderConfirmed, models.OrderPending, false},

		// terminal states admit nothing
		{models.OrderDelivered, models.OrderRefunded, false},
		{models.OrderCancelled, models.OrderPending, false},
		{models.OrderRefunded, models.OrderCancelled, false},

		// self transitions are not transitions
		{models.OrderPending, models.OrderPending, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanTransitionPayment(t *testing.T) {
	cases := []struct {
		from, to models.PaymentStatus
		ok       bool
	}{
		{models.PaymentPending, models.PaymentPaid, true},
		{models.PaymentPending, models.PaymentFailed, true},
		{models.PaymentPaid, models.PaymentRefunded, true},
		{models.PaymentPaid, models.PaymentPartiallyRefunded, true},

		{models.PaymentPending, models.PaymentRefunded, false},
		{models.PaymentFailed, models.PaymentPaid, false},
		{models.PaymentRefunded, models.PaymentPaid, false},
		{models.PaymentPartiallyRefunded, models.PaymentRefunded, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, CanTransitionPayment(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionStampsTimestamps(t *testing.T) {
	o := &models.Order{Status: models.OrderProcessing}

	require.NoError(t, Transition(o, models.OrderShipped))
	require.Equal(t, models.OrderShipped, o.Status)
	require.NotNil(t, o.ShippedAt)
	require.Nil(t, o.DeliveredAt)
	shippedAt := *o.ShippedAt

	require.NoError(t, Transition(o, models.OrderDelivered))
	require.Equal(t, models.OrderDelivered, o.Status)
	require.NotNil(t, o.DeliveredAt)
	// first stamp wins
	require.Equal(t, shippedAt, *o.ShippedAt)
}

func TestTransitionIllegal(t *testing.T) {
	o := &models.Order{Status: models.OrderPending}

	err := Transition(o, models.OrderShipped)
	require.ErrorIs(t, err, ErrIllegalTransition)
	// failed transition leaves the order untouched
	require.Equal(t, models.OrderPending, o.Status)
	require.Nil(t, o.ShippedAt)
}

func TestTransitionUnknownStatus(t *testing.T) {
	o := &models.Order{Status: models.OrderPending}

	err := Transition(o, models.OrderStatus("LOST"))
	require.ErrorIs(t, err, ErrUnknownStatus)
	require.Equal(t, models.OrderPending, o.Status)
}

func TestTransitionPayment(t *testing.T) {
	o := &models.Order{PaymentStatus: models.PaymentPending}

	require.NoError(t, TransitionPayment(o, models.PaymentPaid))
	require.Equal(t, models.PaymentPaid, o.PaymentStatus)

	err := TransitionPayment(o, models.PaymentFailed)
	require.ErrorIs(t, err, ErrIllegalTransition)
	require.Equal(t, models.PaymentPaid, o.PaymentStatus)

	err = TransitionPayment(o, models.PaymentStatus("MAYBE"))
	require.ErrorIs(t, err, ErrUnknownStatus)
}
