package uow

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"example.com/storefront/services/orders/internal/clock"
	"example.com/storefront/services/orders/internal/domain"
)

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type nopRepository struct{}

func (nopRepository) SaveWithTx(ctx context.Context, tx *gorm.DB, aggregate domain.Aggregate) (domain.Aggregate, error) {
	return aggregate, nil
}

func reservedItem(t *testing.T, id string, quantity int) domain.InventoryItem {
	t.Helper()
	item := domain.RehydrateInventoryItem(id, 1, "prod-"+id, domain.SKU("SKU-"+id), 10, 0, 0)
	reserved, err := item.Reserve(quantity, domain.Principal{ID: "test-user"}, testTime)
	require.NoError(t, err)
	return reserved
}

func TestTrackLastRegistrationWins(t *testing.T) {
	u := NewGormUnitOfWork(nil, nil, clock.NewSequentialGenerator("id"))
	repo := nopRepository{}

	first := reservedItem(t, "inv-1", 2)
	again, err := first.Reserve(3, domain.Principal{ID: "test-user"}, testTime)
	require.NoError(t, err)

	u.Track(first, repo)
	u.Track(again, repo)

	require.Len(t, u.entries, 1)
	require.Len(t, u.order, 1)

	tracked := u.entries["inv-1"].aggregate.(domain.InventoryItem)
	require.Equal(t, 5, tracked.QuantityReserved())
}

func TestTrackKeepsRegistrationOrder(t *testing.T) {
	u := NewGormUnitOfWork(nil, nil, clock.NewSequentialGenerator("id"))
	repo := nopRepository{}

	u.Track(reservedItem(t, "inv-2", 1), repo)
	u.Track(reservedItem(t, "inv-1", 1), repo)
	u.Track(reservedItem(t, "inv-3", 1), repo)
	// Re-registering does not move an aggregate to the back.
	u.Track(reservedItem(t, "inv-2", 2), repo)

	require.Equal(t, []string{"inv-2", "inv-1", "inv-3"}, u.order)
}

func TestCollectEventsPreservesOrder(t *testing.T) {
	repo := nopRepository{}
	snapshot := []tracked{
		{aggregate: reservedItem(t, "inv-1", 1), repo: repo},
		{aggregate: reservedItem(t, "inv-2", 2), repo: repo},
	}

	events := collectEvents(snapshot)
	require.Len(t, events, 2)
	require.Equal(t, "inv-1", events[0].AggregateID)
	require.Equal(t, "inv-2", events[1].AggregateID)
	require.Equal(t, domain.InventoryReserved, events[0].Type)
}

func TestCommitWithNothingTrackedIsANoop(t *testing.T) {
	u := NewGormUnitOfWork(nil, nil, clock.NewSequentialGenerator("id"))
	err := u.Commit(context.Background(), CommandMeta{CommandName: "Noop"})
	require.NoError(t, err)
}

func TestBuildOutboxRow(t *testing.T) {
	u := NewGormUnitOfWork(nil, nil, clock.NewSequentialGenerator("id"))

	item := reservedItem(t, "inv-1", 4)
	events := item.PendingEvents()
	require.Len(t, events, 1)

	meta := CommandMeta{
		CommandName: "PlaceOrder",
		CommandID:   "cmd-1",
		PrincipalID: "test-user",
		Timestamp:   testTime,
	}

	row, err := u.buildOutboxRow(events[0], meta)
	require.NoError(t, err)
	require.NotEmpty(t, row.ID)
	require.Nil(t, row.FlushedAt)

	var payload OutboxPayload
	require.NoError(t, json.Unmarshal(row.Payload, &payload))
	require.NotEmpty(t, payload.EventID)
	require.Equal(t, "inv-1", payload.AggregateID)
	require.Equal(t, domain.AggregateInventory, payload.AggregateType)
	require.Equal(t, domain.InventoryReserved, payload.EventType)
	require.Equal(t, "test-user", payload.PrincipalID)
	require.Equal(t, "PlaceOrder", payload.CommandName)
	require.Equal(t, "cmd-1", payload.CommandID)
	require.Equal(t, testTime, payload.OccurredAt)

	var movement domain.StockMovementPayload
	require.NoError(t, json.Unmarshal(payload.Payload, &movement))
	require.Equal(t, 4, movement.Quantity)
	require.Equal(t, 0, movement.Before)
	require.Equal(t, 4, movement.After)
}
