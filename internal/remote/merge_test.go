package remote

import (
	"context"
	"testing"

	"keranjang/internal/cart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient is a mock implementation of the Client interface
type MockClient struct {
	mock.Mock
}

func (m *MockClient) FetchCart(ctx context.Context) ([]cart.LineItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]cart.LineItem), args.Error(1)
}

func (m *MockClient) ReplaceCart(ctx context.Context, items []cart.LineItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

// blockingClient parks FetchCart until released, so a test can act while
// the fetch is still in flight.
type blockingClient struct {
	fetching chan struct{}
	release  chan struct{}
	items    []cart.LineItem
}

func newBlockingClient(items []cart.LineItem) *blockingClient {
	return &blockingClient{
		fetching: make(chan struct{}),
		release:  make(chan struct{}),
		items:    items,
	}
}

func (c *blockingClient) FetchCart(ctx context.Context) ([]cart.LineItem, error) {
	close(c.fetching)
	<-c.release
	return c.items, nil
}

func (c *blockingClient) ReplaceCart(ctx context.Context, items []cart.LineItem) error {
	return nil
}

func storeWith(items ...cart.Candidate) cart.Store {
	s := cart.NewStore()
	for _, c := range items {
		s.AddItem(c)
	}
	return s
}

func backendItems(n int) []cart.LineItem {
	items := make([]cart.LineItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, cart.LineItem{
			ID:       string(rune('a' + i)),
			Name:     "Backend",
			Price:    1000,
			Quantity: 1,
		})
	}
	return items
}

func TestResolver_Begin(t *testing.T) {
	ctx := context.Background()

	t.Run("Both sides empty", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return([]cart.LineItem{}, nil).Once()

		r := NewResolver(client, cart.NewStore())
		cmp, err := r.Begin(ctx)

		assert.NoError(t, err)
		assert.Equal(t, StateAutoResolved, cmp.State)
		assert.Equal(t, 0, cmp.LocalItemCount)
		assert.Equal(t, 0, cmp.BackendItemCount)
		client.AssertExpectations(t)
	})

	t.Run("Only backend has items - auto-adopt", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(backendItems(3), nil).Once()

		store := cart.NewStore()
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)

		assert.NoError(t, err)
		assert.Equal(t, StateAutoResolved, cmp.State)
		assert.Equal(t, 3, cmp.BackendItemCount)
		assert.Len(t, store.Items(), 3)
		client.AssertExpectations(t)
	})

	t.Run("Only local has items - push up", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return([]cart.LineItem{}, nil).Once()
		client.On("ReplaceCart", ctx, mock.Anything).Return(nil).Once()

		store := storeWith(cart.Candidate{ID: "1"}, cart.Candidate{ID: "2"})
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)

		assert.NoError(t, err)
		assert.Equal(t, StateAutoResolved, cmp.State)
		assert.Equal(t, 2, cmp.LocalItemCount)
		assert.Len(t, store.Items(), 2)
		client.AssertExpectations(t)
	})

	t.Run("Push failure is non-fatal", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return([]cart.LineItem{}, nil).Once()
		client.On("ReplaceCart", ctx, mock.Anything).Return(ErrCartUnavailable).Once()

		store := storeWith(cart.Candidate{ID: "1"})
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)

		assert.NoError(t, err)
		assert.Equal(t, StateAutoResolved, cmp.State)
		assert.Len(t, store.Items(), 1)
	})

	t.Run("Both sides non-empty - prompt required", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(backendItems(4), nil).Once()

		store := storeWith(cart.Candidate{ID: "1"}, cart.Candidate{ID: "2"})
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)

		assert.NoError(t, err)
		assert.Equal(t, StateAwaitingChoice, cmp.State)
		assert.Equal(t, 2, cmp.LocalItemCount)
		assert.Equal(t, 4, cmp.BackendItemCount)
		// Nothing is applied until the user decides.
		assert.Len(t, store.Items(), 2)
		client.AssertExpectations(t)
	})

	t.Run("Fetch failure - local wins silently", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(nil, ErrCartUnavailable).Once()

		store := storeWith(cart.Candidate{ID: "1"})
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)

		assert.NoError(t, err)
		assert.Equal(t, StateAutoResolved, cmp.State)
		assert.Len(t, store.Items(), 1)
		client.AssertExpectations(t)
	})

	t.Run("Canceled fetch returns to Idle", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(nil, context.Canceled).Once()

		store := storeWith(cart.Candidate{ID: "1"})
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateIdle, cmp.State)
		assert.Len(t, store.Items(), 1)
	})

	t.Run("Second Begin while awaiting choice", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(backendItems(1), nil).Once()

		r := NewResolver(client, storeWith(cart.Candidate{ID: "1"}))
		_, err := r.Begin(ctx)
		require.NoError(t, err)

		_, err = r.Begin(ctx)
		assert.ErrorIs(t, err, ErrComparisonPending)
		client.AssertExpectations(t)
	})
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	awaiting := func(t *testing.T, backend int) (*MockClient, cart.Store, *Resolver) {
		t.Helper()
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(backendItems(backend), nil).Once()

		store := storeWith(cart.Candidate{ID: "1", Price: 100}, cart.Candidate{ID: "2", Price: 200})
		r := NewResolver(client, store)
		cmp, err := r.Begin(ctx)
		require.NoError(t, err)
		require.Equal(t, StateAwaitingChoice, cmp.State)
		return client, store, r
	}

	t.Run("Keep local overwrites backend", func(t *testing.T) {
		client, store, r := awaiting(t, 4)
		client.On("ReplaceCart", ctx, store.Items()).Return(nil).Once()

		require.NoError(t, r.Resolve(ctx, ChoiceKeepLocal))

		assert.Equal(t, StateResolved, r.Pending().State)
		assert.Len(t, store.Items(), 2)
		client.AssertExpectations(t)
	})

	t.Run("Load backend replaces local wholesale", func(t *testing.T) {
		client, store, r := awaiting(t, 4)

		require.NoError(t, r.Resolve(ctx, ChoiceLoadBackend))

		assert.Equal(t, StateResolved, r.Pending().State)
		assert.Len(t, store.Items(), 4)
		client.AssertExpectations(t)
	})

	t.Run("Keep local survives a failed push", func(t *testing.T) {
		client, store, r := awaiting(t, 4)
		client.On("ReplaceCart", ctx, mock.Anything).Return(ErrCartUnavailable).Once()

		require.NoError(t, r.Resolve(ctx, ChoiceKeepLocal))

		assert.Len(t, store.Items(), 2)
	})

	t.Run("Unknown choice", func(t *testing.T) {
		_, store, r := awaiting(t, 4)

		assert.ErrorIs(t, r.Resolve(ctx, Choice("merge")), ErrUnknownChoice)
		assert.Len(t, store.Items(), 2)
		// Still awaiting a valid verdict.
		assert.Equal(t, StateAwaitingChoice, r.Pending().State)
	})

	t.Run("No pending choice", func(t *testing.T) {
		r := NewResolver(new(MockClient), cart.NewStore())

		assert.ErrorIs(t, r.Resolve(ctx, ChoiceKeepLocal), ErrNoPendingChoice)
	})

	t.Run("Resolve twice", func(t *testing.T) {
		_, _, r := awaiting(t, 4)
		require.NoError(t, r.Resolve(ctx, ChoiceLoadBackend))

		assert.ErrorIs(t, r.Resolve(ctx, ChoiceLoadBackend), ErrNoPendingChoice)
	})
}

func TestResolver_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Dismissing the prompt leaves the cart untouched", func(t *testing.T) {
		client := new(MockClient)
		client.On("FetchCart", ctx).Return(backendItems(4), nil).Once()

		store := storeWith(cart.Candidate{ID: "1"}, cart.Candidate{ID: "2"})
		r := NewResolver(client, store)
		_, err := r.Begin(ctx)
		require.NoError(t, err)

		r.Cancel()

		assert.Equal(t, StateIdle, r.Pending().State)
		items := store.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "1", items[0].ID)
		assert.Equal(t, "2", items[1].ID)
		client.AssertExpectations(t)

		// A comparison can start again after cancellation.
		client.On("FetchCart", ctx).Return(backendItems(4), nil).Once()
		cmp, err := r.Begin(ctx)
		assert.NoError(t, err)
		assert.Equal(t, StateAwaitingChoice, cmp.State)
	})

	t.Run("Cancel during an in-flight fetch discards the result", func(t *testing.T) {
		client := newBlockingClient(backendItems(1))
		store := cart.NewStore()
		r := NewResolver(client, store)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = r.Begin(ctx)
		}()

		<-client.fetching
		r.Cancel()
		close(client.release)
		<-done

		assert.Equal(t, StateIdle, r.Pending().State)
		assert.Empty(t, store.Items())
	})

	t.Run("Cancel when idle is a no-op", func(t *testing.T) {
		r := NewResolver(new(MockClient), cart.NewStore())

		assert.NotPanics(t, r.Cancel)
		assert.Equal(t, StateIdle, r.Pending().State)
	})
}
