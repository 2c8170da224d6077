package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testItem(t *testing.T, onHand, reserved int) InventoryItem {
	t.Helper()
	return RehydrateInventoryItem("inv-1", 2, "prod-1", "SKU-001", onHand, reserved, 3)
}

func TestNewInventoryItem(t *testing.T) {
	item, err := NewInventoryItem("inv-1", "prod-1", "SKU-001", 10, 3, testPrincipal, testTime)
	require.NoError(t, err)

	require.Equal(t, 10, item.QuantityOnHand())
	require.Equal(t, 0, item.QuantityReserved())
	require.Equal(t, 10, item.QuantityAvailable())
	require.Equal(t, VersionNew, item.AggregateVersion())

	events := item.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, InventoryCreated, events[0].Type)
}

func TestReserve(t *testing.T) {
	item := testItem(t, 10, 0)

	reserved, err := item.Reserve(4, testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, 4, reserved.QuantityReserved())
	require.Equal(t, 6, reserved.QuantityAvailable())
	// On-hand stock is untouched by a reservation.
	require.Equal(t, 10, reserved.QuantityOnHand())

	events := reserved.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, InventoryReserved, events[0].Type)

	// The original value is untouched.
	require.Equal(t, 0, item.QuantityReserved())
}

func TestReserveAllAvailable(t *testing.T) {
	item := testItem(t, 10, 0)

	reserved, err := item.Reserve(10, testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, 0, reserved.QuantityAvailable())
}

func TestReserveBeyondAvailable(t *testing.T) {
	item := testItem(t, 10, 8)

	_, err := item.Reserve(3, testPrincipal, testTime)
	require.Error(t, err)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, "prod-1", stockErr.ProductID)
	require.Equal(t, 3, stockErr.Requested)
	require.Equal(t, 2, stockErr.Available)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	item := testItem(t, 10, 0)

	for _, qty := range []int{0, -1} {
		_, err := item.Reserve(qty, testPrincipal, testTime)
		require.Error(t, err)
		require.True(t, IsValidation(err))
	}
}

func TestRelease(t *testing.T) {
	item := testItem(t, 10, 6)

	released, err := item.Release(4, testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, 2, released.QuantityReserved())
	require.Equal(t, 10, released.QuantityOnHand())

	events := released.PendingEvents()
	require.Len(t, events, 1)
	require.Equal(t, InventoryReleased, events[0].Type)
}

func TestReleaseBeyondReserved(t *testing.T) {
	item := testItem(t, 10, 2)

	_, err := item.Release(3, testPrincipal, testTime)
	require.Error(t, err)
	require.True(t, IsValidation(err))
}

func TestReplenish(t *testing.T) {
	item := testItem(t, 10, 6)

	replenished, err := item.Replenish(5, testPrincipal, testTime)
	require.NoError(t, err)
	require.Equal(t, 15, replenished.QuantityOnHand())
	require.Equal(t, 6, replenished.QuantityReserved())
	require.Equal(t, 9, replenished.QuantityAvailable())
}

func TestNeedsReorder(t *testing.T) {
	// Reorder point is 3.
	require.False(t, testItem(t, 10, 0).NeedsReorder())
	require.False(t, testItem(t, 10, 6).NeedsReorder())
	require.True(t, testItem(t, 10, 7).NeedsReorder())
	require.True(t, testItem(t, 3, 0).NeedsReorder())
	require.True(t, testItem(t, 10, 10).NeedsReorder())
}

func TestStockConservation(t *testing.T) {
	item := testItem(t, 10, 0)

	reserved, err := item.Reserve(7, testPrincipal, testTime)
	require.NoError(t, err)
	released, err := reserved.Release(7, testPrincipal, testTime)
	require.NoError(t, err)

	require.Equal(t, item.QuantityOnHand(), released.QuantityOnHand())
	require.Equal(t, item.QuantityReserved(), released.QuantityReserved())
	require.Equal(t, item.QuantityAvailable(), released.QuantityAvailable())
}
