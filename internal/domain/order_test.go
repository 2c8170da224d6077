package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	testPrincipal = Principal{ID: "test-user"}
	testTime      = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

func testAddress(t *testing.T) Address {
	t.Helper()
	addr, err := NewAddress("1 Main St", "Springfield", "12345", "US")
	require.NoError(t, err)
	return addr
}

func testLineItems(t *testing.T) []LineItem {
	t.Helper()
	five, err := NewMoney(500, "USD")
	require.NoError(t, err)
	twenty, err := NewMoney(2000, "USD")
	require.NoError(t, err)

	a, err := NewLineItem("prod-1", "Coffee Beans", 2, five)
	require.NoError(t, err)
	b, err := NewLineItem("prod-2", "Grinder", 1, twenty)
	require.NoError(t, err)
	return []LineItem{a, b}
}

func TestNewOrder(t *testing.T) {
	order, err := NewOrder("order-1", "cust-1", testLineItems(t), testAddress(t), testPrincipal, testTime)
	require.NoError(t, err)

	require.Equal(t, OrderPending, order.Status())
	require.Equal(t, int64(3000), order.TotalAmount().Cents)
	require.Equal(t, "USD", order.TotalAmount().Currency)
	require.Equal(t, VersionNew, order.AggregateVersion())

	events := order.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, OrderPlaced, events[0].Type)
	require.Equal(t, "order-1", events[0].AggregateID)
	require.Equal(t, AggregateOrder, events[0].AggregateType)
}

func TestNewOrderRejectsEmptyItems(t *testing.T) {
	_, err := NewOrder("order-1", "cust-1", nil, testAddress(t), testPrincipal, testTime)
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestNewOrderRejectsMixedCurrencies(t *testing.T) {
	usd, err := NewMoney(500, "USD")
	require.NoError(t, err)
	eur, err := NewMoney(500, "EUR")
	require.NoError(t, err)

	a, err := NewLineItem("prod-1", "Coffee Beans", 1, usd)
	require.NoError(t, err)
	b, err := NewLineItem("prod-2", "Grinder", 1, eur)
	require.NoError(t, err)

	_, err = NewOrder("order-1", "cust-1", []LineItem{a, b}, testAddress(t), testPrincipal, testTime)
	require.Error(t, err)
}

func TestOrderTransitionTable(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelledStatus, true},
		{OrderPending, OrderProcessing, false},
		{OrderPending, OrderShipped, false},
		{OrderConfirmed, OrderProcessing, true},
		{OrderConfirmed, OrderCancelledStatus, true},
		{OrderConfirmed, OrderDelivered, false},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelledStatus, true},
		{OrderProcessing, OrderConfirmed, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelledStatus, false},
		{OrderDelivered, OrderCancelledStatus, false},
		{OrderCancelledStatus, OrderPending, false},
	}

	for _, tc := range cases {
		order := RehydrateOrder("order-1", 3, "cust-1", testLineItems(t), tc.from, testAddress(t), Money{Cents: 3000, Currency: "USD"}, testTime)
		_, err := order.TransitionTo(tc.to, testPrincipal, testTime)
		if tc.allowed {
			require.NoErrorf(t, err, "%s -> %s should be allowed", tc.from, tc.to)
		} else {
			require.Errorf(t, err, "%s -> %s should be rejected", tc.from, tc.to)
			var transitionErr *TransitionError
			require.ErrorAs(t, err, &transitionErr)
			require.Equal(t, string(tc.from), transitionErr.From)
			require.Equal(t, string(tc.to), transitionErr.To)
		}
	}
}

func TestOrderTransitionRecordsEvent(t *testing.T) {
	order := RehydrateOrder("order-1", 1, "cust-1", testLineItems(t), OrderPending, testAddress(t), Money{Cents: 3000, Currency: "USD"}, testTime)

	confirmed, err := order.TransitionTo(OrderConfirmed, testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, OrderConfirmed, confirmed.Status())

	events := confirmed.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, OrderStatusChanged, events[0].Type)

	payload, ok := events[0].Payload.(OrderStatusChangedPayload)
	require.True(t, ok)
	require.Equal(t, string(OrderPending), payload.From)
	require.Equal(t, string(OrderConfirmed), payload.To)

	// The original value is untouched.
	require.Equal(t, OrderPending, order.Status())
	require.Empty(t, order.PendingEvents())
}

func TestOrderCancellationUsesCancelledEvent(t *testing.T) {
	order := RehydrateOrder("order-1", 1, "cust-1", testLineItems(t), OrderProcessing, testAddress(t), Money{Cents: 3000, Currency: "USD"}, testTime)

	cancelled, err := order.TransitionTo(OrderCancelledStatus, testPrincipal, testTime)
	require.NoError(t, err)

	events := cancelled.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, OrderCancelled, events[0].Type)
}
