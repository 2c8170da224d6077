package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/storefront/services/orders/internal/domain"
	"example.com/storefront/services/orders/internal/uow"
)

func dueSubscription(t *testing.T, id, productID string) domain.Subscription {
	t.Helper()
	price, err := domain.NewMoney(500, "USD")
	require.NoError(t, err)
	line, err := domain.NewLineItem(productID, "Coffee Beans", 2, price)
	require.NoError(t, err)
	addr, err := domain.NewAddress("1 Main St", "Springfield", "12345", "US")
	require.NoError(t, err)
	return domain.RehydrateSubscription(id, 1, "cust-1", 7, domain.SubscriptionActive, testTime, []domain.LineItem{line}, addr)
}

func TestRecurrenceProcessorPlacesOrdersAndAdvances(t *testing.T) {
	inventory := new(MockInventoryStore)
	orders := new(MockOrderStore)
	subscriptions := new(MockSubscriptionStore)
	clk, ids := testClockAndIDs()

	var units []*fakeUnitOfWork
	factory := uow.Factory(func() uow.UnitOfWork {
		u := &fakeUnitOfWork{}
		units = append(units, u)
		return u
	})

	subscriptions.On("FindDue", mock.Anything, testTime).
		Return([]domain.Subscription{dueSubscription(t, "sub-1", "prod-1")}, nil).Once()
	inventory.On("FindByProductID", mock.Anything, "prod-1").Return(stockedItem("inv-1", "prod-1", 10, 0), nil).Once()
	inventory.On("Save", mock.Anything, mock.AnythingOfType("domain.InventoryItem")).Once()
	orders.On("Save", mock.Anything, mock.AnythingOfType("domain.Order")).Once()

	var advanced domain.Subscription
	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("domain.Subscription")).Run(func(args mock.Arguments) {
		advanced = args.Get(1).(domain.Subscription)
	}).Once()

	processor := NewRecurrenceProcessor(factory, inventory, orders, subscriptions, clk, ids)
	result, err := processor.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, result.Processed)
	require.Equal(t, 1, result.Total)
	require.Empty(t, result.Errors)

	// Next delivery moved forward one interval.
	require.Equal(t, testTime.AddDate(0, 0, 7), advanced.NextDeliveryAt())

	// One unit of work, committed with the scheduler's identity.
	require.Len(t, units, 1)
	require.Equal(t, 1, units[0].committed)
	require.Equal(t, "ProcessDueSubscription", units[0].meta.CommandName)
	require.Equal(t, "scheduler", units[0].meta.PrincipalID)
	// Inventory, order, and subscription all in the same commit.
	require.Len(t, units[0].tracked, 3)
}

func TestRecurrenceProcessorIsolatesFailures(t *testing.T) {
	inventory := new(MockInventoryStore)
	orders := new(MockOrderStore)
	subscriptions := new(MockSubscriptionStore)
	clk, ids := testClockAndIDs()

	var units []*fakeUnitOfWork
	factory := uow.Factory(func() uow.UnitOfWork {
		u := &fakeUnitOfWork{}
		units = append(units, u)
		return u
	})

	subscriptions.On("FindDue", mock.Anything, testTime).Return([]domain.Subscription{
		dueSubscription(t, "sub-1", "prod-missing"),
		dueSubscription(t, "sub-2", "prod-1"),
	}, nil).Once()

	// First subscription fails on a missing product, second succeeds.
	inventory.On("FindByProductID", mock.Anything, "prod-missing").
		Return(domain.InventoryItem{}, &domain.NotFoundError{AggregateType: "inventory_item", ID: "prod-missing"}).Once()
	inventory.On("FindByProductID", mock.Anything, "prod-1").Return(stockedItem("inv-1", "prod-1", 10, 0), nil).Once()
	inventory.On("Save", mock.Anything, mock.AnythingOfType("domain.InventoryItem")).Once()
	orders.On("Save", mock.Anything, mock.AnythingOfType("domain.Order")).Once()
	subscriptions.On("Save", mock.Anything, mock.AnythingOfType("domain.Subscription")).Once()

	processor := NewRecurrenceProcessor(factory, inventory, orders, subscriptions, clk, ids)
	result, err := processor.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, result.Processed)
	require.Equal(t, 2, result.Total)
	require.Len(t, result.Errors, 1)
	require.Contains(t, result.Errors[0], "sub-1")

	// The failed subscription's unit of work never committed.
	require.Len(t, units, 2)
	require.Equal(t, 0, units[0].committed)
	require.Equal(t, 1, units[1].committed)
}

func TestRecurrenceProcessorEmptyBatch(t *testing.T) {
	inventory := new(MockInventoryStore)
	orders := new(MockOrderStore)
	subscriptions := new(MockSubscriptionStore)
	clk, ids := testClockAndIDs()

	factory := uow.Factory(func() uow.UnitOfWork { return &fakeUnitOfWork{} })
	subscriptions.On("FindDue", mock.Anything, testTime).Return([]domain.Subscription{}, nil).Once()

	processor := NewRecurrenceProcessor(factory, inventory, orders, subscriptions, clk, ids)
	result, err := processor.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, result.Processed)
	require.Equal(t, 0, result.Total)
}
