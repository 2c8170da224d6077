package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/storefront/services/orders/internal/domain"
)

func TestCreateSubscription(t *testing.T) {
	subscriptions := new(MockSubscriptionStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("domain.Subscription")).Once()

	cmd := NewCreateSubscription(u, subscriptions, clk, ids)
	result, err := cmd.Execute(context.Background(), testPrincipal, CreateSubscriptionParams{
		CustomerID:      "cust-1",
		IntervalDays:    7,
		FirstDeliveryAt: testTime,
		Items: []OrderLineParams{
			{ProductID: "prod-1", Name: "Coffee Beans", Quantity: 2, UnitPriceCents: 500, Currency: "USD"},
		},
		Shipping: testShipping(),
	})
	require.NoError(t, err)

	require.Equal(t, string(domain.SubscriptionActive), result.Status)
	require.Equal(t, testTime, result.NextDeliveryAt)
	require.Len(t, u.tracked, 1)
	subscriptions.AssertExpectations(t)
}

func TestCreateSubscriptionRejectsZeroInterval(t *testing.T) {
	subscriptions := new(MockSubscriptionStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	cmd := NewCreateSubscription(u, subscriptions, clk, ids)
	_, err := cmd.Execute(context.Background(), testPrincipal, CreateSubscriptionParams{
		CustomerID:      "cust-1",
		IntervalDays:    0,
		FirstDeliveryAt: testTime,
		Items: []OrderLineParams{
			{ProductID: "prod-1", Name: "Coffee Beans", Quantity: 2, UnitPriceCents: 500, Currency: "USD"},
		},
		Shipping: testShipping(),
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
	subscriptions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPauseAndResumeSubscription(t *testing.T) {
	subscriptions := new(MockSubscriptionStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	subscriptions.On("FindByID", mock.Anything, "sub-1").
		Return(dueSubscription(t, "sub-1", "prod-1"), nil).Once()
	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("domain.Subscription")).Once()

	pause := NewPauseSubscription(u, subscriptions, clk, ids)
	result, err := pause.Execute(context.Background(), testPrincipal, SubscriptionLifecycleParams{SubscriptionID: "sub-1"})
	require.NoError(t, err)
	require.Equal(t, string(domain.SubscriptionPausedStatus), result.Status)
	require.Equal(t, "PauseSubscription", pause.Meta(testPrincipal).CommandName)
}

func TestCancelSubscriptionIsTerminal(t *testing.T) {
	subscriptions := new(MockSubscriptionStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	price, err := domain.NewMoney(500, "USD")
	require.NoError(t, err)
	line, err := domain.NewLineItem("prod-1", "Coffee Beans", 2, price)
	require.NoError(t, err)
	addr, err := domain.NewAddress("1 Main St", "Springfield", "12345", "US")
	require.NoError(t, err)
	cancelled := domain.RehydrateSubscription("sub-1", 1, "cust-1", 7, domain.SubscriptionCancelledStatus, testTime, []domain.LineItem{line}, addr)

	subscriptions.On("FindByID", mock.Anything, "sub-1").Return(cancelled, nil).Once()

	resume := NewResumeSubscription(u, subscriptions, clk, ids)
	_, err = resume.Execute(context.Background(), testPrincipal, SubscriptionLifecycleParams{SubscriptionID: "sub-1"})
	require.Error(t, err)

	var transitionErr *domain.TransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Empty(t, u.tracked)
}
