package eventcore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	es "github.com/terraskye/eventcore"
	"github.com/terraskye/eventcore/fixtures"
)

func TestAggregate_RecordAppliesAndQueues(t *testing.T) {
	id := es.NewIdentifier()
	order := fixtures.CreateOrder(id, "alice")

	require.NoError(t, order.AddItem("book", 2))
	require.NoError(t, order.AddItem("book", 1))

	assert.Equal(t, uint64(3), order.AggregateVersion())
	assert.Equal(t, id.String(), order.ID)
	assert.Equal(t, "alice", order.CustomerID)
	assert.Equal(t, 3, order.Items["book"])

	pending := order.PendingEvents()
	require.Len(t, pending, 3)
	assert.Equal(t, "OrderCreated", pending[0].EventType())
	assert.Equal(t, "ItemAdded", pending[1].EventType())
	assert.Equal(t, "ItemAdded", pending[2].EventType())
}

func TestAggregate_CommitKeepsVersion(t *testing.T) {
	order := fixtures.CreateOrder(es.NewIdentifier(), "bob")
	require.NoError(t, order.Ship())

	order.Commit()

	assert.Empty(t, order.PendingEvents())
	assert.NotNil(t, order.PendingEvents())
	assert.Equal(t, uint64(2), order.AggregateVersion())
	assert.True(t, order.Shipped)
}

func TestAggregate_PendingEventsIsACopy(t *testing.T) {
	order := fixtures.CreateOrder(es.NewIdentifier(), "carol")

	pending := order.PendingEvents()
	pending[0] = fixtures.OrderShipped{}

	assert.Equal(t, "OrderCreated", order.PendingEvents()[0].EventType())
}

func TestAggregate_BusinessRuleLeavesNoEvent(t *testing.T) {
	order := fixtures.CreateOrder(es.NewIdentifier(), "dave")
	require.NoError(t, order.Ship())

	err := order.AddItem("pen", 1)

	assert.ErrorIs(t, err, fixtures.ErrOrderShipped)
	assert.Len(t, order.PendingEvents(), 2)
	assert.Equal(t, uint64(2), order.AggregateVersion())
}

func TestReconstitute(t *testing.T) {
	id := es.NewIdentifier()
	events := []es.Event{
		fixtures.OrderCreated{OrderID: id.String(), CustomerID: "erin"},
		fixtures.ItemAdded{OrderID: id.String(), ItemID: "mug", Qty: 4},
		fixtures.OrderShipped{OrderID: id.String()},
	}

	order := es.Reconstitute(fixtures.NewOrder, events)

	assert.Equal(t, uint64(3), order.AggregateVersion())
	assert.Empty(t, order.PendingEvents())
	assert.Equal(t, "erin", order.CustomerID)
	assert.Equal(t, 4, order.Items["mug"])
	assert.True(t, order.Shipped)
}

func TestReconstitute_EventWithoutHandlerStillCounts(t *testing.T) {
	events := fixtures.NewTestEvent().BuildN(5)

	order := es.Reconstitute(fixtures.NewOrder, events)

	assert.Equal(t, uint64(5), order.AggregateVersion())
	assert.Empty(t, order.ID)
}

func TestReconstitute_NoEvents(t *testing.T) {
	order := es.Reconstitute(fixtures.NewOrder, nil)

	assert.Zero(t, order.AggregateVersion())
	assert.Empty(t, order.PendingEvents())
}
