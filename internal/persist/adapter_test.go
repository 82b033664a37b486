package persist

import (
	"context"
	"errors"
	"testing"

	"keranjang/internal/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSlot is a mock implementation of the Slot interface
type MockSlot struct {
	mock.Mock
}

func (m *MockSlot) Read(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSlot) Write(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockSlot) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSlot) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestAdapter_Hydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Read", ctx).Return([]byte(`[{"id":"1","name":"A","price":50000,"quantity":2,"image":"/a.jpg"}]`), nil).Once()

		store := cart.NewStore()
		NewAdapter(slot).Hydrate(ctx, store)

		items := store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, 2, items[0].Quantity)
		slot.AssertExpectations(t)
	})

	t.Run("Empty slot starts empty", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Read", ctx).Return(nil, ErrSlotEmpty).Once()

		store := cart.NewStore()
		NewAdapter(slot).Hydrate(ctx, store)

		assert.Empty(t, store.Items())
		slot.AssertExpectations(t)
	})

	t.Run("Corrupted payload degrades to empty", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Read", ctx).Return([]byte("not json"), nil).Once()

		store := cart.NewStore()
		assert.NotPanics(t, func() {
			NewAdapter(slot).Hydrate(ctx, store)
		})

		assert.Empty(t, store.Items())
		slot.AssertExpectations(t)
	})

	t.Run("Read failure degrades to empty", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Read", ctx).Return(nil, errors.New("disk error")).Once()

		store := cart.NewStore()
		NewAdapter(slot).Hydrate(ctx, store)

		assert.Empty(t, store.Items())
		slot.AssertExpectations(t)
	})

	t.Run("Stale payload is sanitized", func(t *testing.T) {
		// A pre-schema-change payload may miss quantity; those items drop.
		slot := new(MockSlot)
		slot.On("Read", ctx).Return([]byte(`[{"id":"1"},{"id":"2","quantity":3}]`), nil).Once()

		store := cart.NewStore()
		NewAdapter(slot).Hydrate(ctx, store)

		items := store.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "2", items[0].ID)
		slot.AssertExpectations(t)
	})
}

func TestAdapter_Attach(t *testing.T) {
	ctx := context.Background()

	t.Run("Write-through on every mutation", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Write", ctx, mock.Anything).Return(nil).Times(3)

		store := cart.NewStore()
		NewAdapter(slot).Attach(ctx, store)

		store.AddItem(cart.Candidate{ID: "1", Name: "A", Price: 50000})
		store.UpdateQuantity("1", 4)
		store.Clear()

		slot.AssertExpectations(t)
	})

	t.Run("Persisted payload matches store state", func(t *testing.T) {
		slot := new(MockSlot)
		var lastPayload []byte
		slot.On("Write", ctx, mock.Anything).Run(func(args mock.Arguments) {
			lastPayload = args.Get(1).([]byte)
		}).Return(nil)

		store := cart.NewStore()
		NewAdapter(slot).Attach(ctx, store)

		store.AddItem(cart.Candidate{ID: "1", Name: "A", Price: 50000, Image: "/a.jpg"})
		store.AddItem(cart.Candidate{ID: "1"})

		items, err := cart.DecodeItems(lastPayload)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 2, items[0].Quantity)
	})

	t.Run("Write failure does not disturb the store", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Write", ctx, mock.Anything).Return(errors.New("disk full"))

		store := cart.NewStore()
		NewAdapter(slot).Attach(ctx, store)

		assert.NotPanics(t, func() {
			store.AddItem(cart.Candidate{ID: "1"})
		})
		assert.Len(t, store.Items(), 1)
	})
}

func TestAdapter_RoundTrip(t *testing.T) {
	// Full cycle against a real file slot: mutate, then hydrate a second
	// store from the same slot and expect an identical sequence.
	ctx := context.Background()
	slot, err := NewFileSlot(t.TempDir() + "/cart.json")
	require.NoError(t, err)

	first := cart.NewStore()
	adapter := NewAdapter(slot)
	adapter.Attach(ctx, first)

	first.AddItem(cart.Candidate{ID: "1", Name: "A", Price: 50000, Image: "/a.jpg"})
	first.AddItem(cart.Candidate{ID: "2", Name: "B", Price: 12500, Image: "/b.jpg"})
	first.UpdateQuantity("2", 3)
	first.SetValidity("2", cart.Validity{
		Availability: cart.AvailabilityAvailable,
		Stock:        cart.StockLimited,
		MaxQuantity:  3,
	})

	second := cart.NewStore()
	NewAdapter(slot).Hydrate(ctx, second)

	assert.Equal(t, first.Items(), second.Items())
}
