package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"example.com/storefront/services/orders/internal/domain"
)

func TestCreateInventoryItem(t *testing.T) {
	inventory := new(MockInventoryStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	inventory.On("Save", mock.Anything, mock.AnythingOfType("domain.InventoryItem")).Once()

	cmd := NewCreateInventoryItem(u, inventory, clk, ids)
	result, err := cmd.Execute(context.Background(), testPrincipal, CreateInventoryItemParams{
		ProductID:      "prod-1",
		SKU:            "SKU-001",
		QuantityOnHand: 25,
		ReorderPoint:   5,
	})
	require.NoError(t, err)
	require.Equal(t, "prod-1", result.ProductID)
	require.NotEmpty(t, result.InventoryItemID)
	require.Len(t, u.tracked, 1)
}

func TestCreateInventoryItemRequiresSKU(t *testing.T) {
	inventory := new(MockInventoryStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	cmd := NewCreateInventoryItem(u, inventory, clk, ids)
	_, err := cmd.Execute(context.Background(), testPrincipal, CreateInventoryItemParams{
		ProductID:      "prod-1",
		QuantityOnHand: 25,
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
	inventory.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestReplenishInventory(t *testing.T) {
	inventory := new(MockInventoryStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	inventory.On("FindByProductID", mock.Anything, "prod-1").Return(stockedItem("inv-1", "prod-1", 4, 2), nil).Once()
	inventory.On("Save", mock.Anything, mock.AnythingOfType("domain.InventoryItem")).Once()

	cmd := NewReplenishInventory(u, inventory, clk, ids)
	result, err := cmd.Execute(context.Background(), testPrincipal, ReplenishInventoryParams{
		ProductID: "prod-1",
		Quantity:  6,
	})
	require.NoError(t, err)
	require.Equal(t, 10, result.QuantityOnHand)
	require.Equal(t, 8, result.QuantityAvailable)
	require.Len(t, u.tracked, 1)
}

func TestReplenishInventoryRejectsNonPositive(t *testing.T) {
	inventory := new(MockInventoryStore)
	u := &fakeUnitOfWork{}
	clk, ids := testClockAndIDs()

	cmd := NewReplenishInventory(u, inventory, clk, ids)
	_, err := cmd.Execute(context.Background(), testPrincipal, ReplenishInventoryParams{
		ProductID: "prod-1",
		Quantity:  0,
	})
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))
	inventory.AssertNotCalled(t, "FindByProductID", mock.Anything, mock.Anything)
}
