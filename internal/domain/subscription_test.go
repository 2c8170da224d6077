package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSubscription(t *testing.T, status SubscriptionStatus) Subscription {
	t.Helper()
	return RehydrateSubscription("sub-1", 2, "cust-1", 7, status, testTime, testLineItems(t), testAddress(t))
}

func TestNewSubscription(t *testing.T) {
	sub, err := NewSubscription("sub-1", "cust-1", 7, testTime, testLineItems(t), testAddress(t), testPrincipal, testTime)
	require.NoError(t, err)

	require.Equal(t, SubscriptionActive, sub.Status())
	require.Equal(t, 7, sub.IntervalDays())
	require.Equal(t, testTime, sub.NextDeliveryAt())

	events := sub.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, SubscriptionCreated, events[0].Type)
}

func TestNewSubscriptionRejectsShortInterval(t *testing.T) {
	_, err := NewSubscription("sub-1", "cust-1", 0, testTime, testLineItems(t), testAddress(t), testPrincipal, testTime)
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestSubscriptionLifecycle(t *testing.T) {
	active := testSubscription(t, SubscriptionActive)

	paused, err := active.Pause(testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, SubscriptionPausedStatus, paused.Status())

	resumed, err := paused.Resume(testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, SubscriptionActive, resumed.Status())

	cancelled, err := resumed.Cancel(testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, SubscriptionCancelledStatus, cancelled.Status())
}

func TestSubscriptionIllegalTransitions(t *testing.T) {
	_, err := testSubscription(t, SubscriptionActive).Resume(testPrincipal, testTime)
	require.Error(t, err)

	_, err = testSubscription(t, SubscriptionPausedStatus).Pause(testPrincipal, testTime)
	require.Error(t, err)

	cancelled := testSubscription(t, SubscriptionCancelledStatus)
	_, err = cancelled.Resume(testPrincipal, testTime)
	require.Error(t, err)
	_, err = cancelled.Pause(testPrincipal, testTime)
	require.Error(t, err)
	_, err = cancelled.Cancel(testPrincipal, testTime)
	require.Error(t, err)
}

func TestSubscriptionIsDue(t *testing.T) {
	sub := testSubscription(t, SubscriptionActive)

	require.True(t, sub.IsDue(testTime))
	require.True(t, sub.IsDue(testTime.Add(time.Hour)))
	require.False(t, sub.IsDue(testTime.Add(-time.Hour)))

	paused := testSubscription(t, SubscriptionPausedStatus)
	require.False(t, paused.IsDue(testTime.Add(time.Hour)))
}

func TestSubscriptionAdvance(t *testing.T) {
	sub := testSubscription(t, SubscriptionActive)

	advanced, err := sub.Advance("order-9", testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, testTime.AddDate(0, 0, 7), advanced.NextDeliveryAt())
	require.False(t, advanced.IsDue(testTime))

	events := advanced.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, SubscriptionAdvanced, events[0].Type)

	payload, ok := events[0].Payload.(SubscriptionAdvancedPayload)
	require.True(t, ok)
	require.Equal(t, "order-9", payload.OrderID)
	require.Equal(t, testTime, payload.PreviousDeliveryAt)
	require.Equal(t, testTime.AddDate(0, 0, 7), payload.NextDeliveryAt)
}

func TestSubscriptionAdvanceRequiresActive(t *testing.T) {
	_, err := testSubscription(t, SubscriptionPausedStatus).Advance("order-9", testPrincipal, testTime)
	require.Error(t, err)

	_, err = testSubscription(t, SubscriptionCancelledStatus).Advance("order-9", testPrincipal, testTime)
	require.Error(t, err)
}
