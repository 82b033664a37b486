package remote

import (
	"context"
	"errors"
	"sync"

	"keranjang/internal/cart"
	"keranjang/internal/logger"

	"go.uber.org/zap"
)

// State of a pending cart comparison. Lifecycle per login event:
// Idle → Comparing → {AwaitingChoice → Resolved} | AutoResolved.
type State string

const (
	StateIdle           State = "IDLE"
	StateComparing      State = "COMPARING"
	StateAwaitingChoice State = "AWAITING_CHOICE"
	StateResolved       State = "RESOLVED"
	StateAutoResolved   State = "AUTO_RESOLVED"
)

// Choice is the user's verdict when both carts have items.
type Choice string

const (
	ChoiceKeepLocal   Choice = "keep_local"
	ChoiceLoadBackend Choice = "load_backend"
)

// Comparison is what the presentation layer gets to show in the prompt.
type Comparison struct {
	State            State `json:"state"`
	LocalItemCount   int   `json:"local_item_count"`
	BackendItemCount int   `json:"backend_item_count"`
}

// Resolver adjudicates between the local cart and the server-side cart
// discovered at login. No line-item union is ever computed: prices and
// availability may differ between the two sources, so one side replaces the
// other wholesale, and when both sides have items the user decides which.
type Resolver struct {
	client Client
	store  cart.Store

	mu           sync.Mutex
	state        State
	backendItems []cart.LineItem
}

func NewResolver(client Client, store cart.Store) *Resolver {
	return &Resolver{
		client: client,
		store:  store,
		state:  StateIdle,
	}
}

// Begin runs the comparison after a login succeeds. When at most one side
// has items the winner is adopted without a prompt; when both do, the
// resolver parks in AwaitingChoice until Resolve or Cancel. A failed or
// canceled fetch never leaves the local cart partially applied.
func (r *Resolver) Begin(ctx context.Context) (Comparison, error) {
	r.mu.Lock()
	if r.state == StateComparing || r.state == StateAwaitingChoice {
		c := r.comparison()
		r.mu.Unlock()
		return c, ErrComparisonPending
	}
	r.state = StateComparing
	r.backendItems = nil
	r.mu.Unlock()

	backendItems, err := r.client.FetchCart(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateComparing {
		// Canceled while the fetch was in flight: the outcome is discarded
		// and the local cart stays as it was.
		return r.comparison(), nil
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Abandoned mid-fetch: nothing was applied, go back to Idle.
			r.state = StateIdle
			return r.comparison(), err
		}
		// Remote cart unavailable: the local cart wins unconditionally.
		logger.FromCtx(ctx).Warn("skipping cart merge check", zap.Error(err))
		r.state = StateAutoResolved
		return r.comparison(), nil
	}

	localItems := r.store.Items()

	switch {
	case len(localItems) > 0 && len(backendItems) > 0:
		r.state = StateAwaitingChoice
		r.backendItems = backendItems
		return r.comparison(), nil

	case len(backendItems) > 0:
		// Only the backend has items: adopt them.
		r.store.Replace(backendItems)
		r.state = StateAutoResolved

	case len(localItems) > 0:
		// Only the local cart has items: push it up. Best effort; a failed
		// push just means the next sync repeats it.
		if err := r.client.ReplaceCart(ctx, localItems); err != nil {
			logger.FromCtx(ctx).Warn("failed to push local cart to backend", zap.Error(err))
		}
		r.state = StateAutoResolved

	default:
		r.state = StateAutoResolved
	}

	return r.comparisonFor(localItems, backendItems), nil
}

// Resolve applies the user's choice. keep_local overwrites the server-side
// cart with the local items; load_backend replaces the local cart with the
// stashed backend items (the write-through persists it).
func (r *Resolver) Resolve(ctx context.Context, choice Choice) error {
	r.mu.Lock()
	if r.state != StateAwaitingChoice {
		r.mu.Unlock()
		return ErrNoPendingChoice
	}

	backendItems := r.backendItems

	switch choice {
	case ChoiceKeepLocal, ChoiceLoadBackend:
	default:
		r.mu.Unlock()
		return ErrUnknownChoice
	}

	r.state = StateResolved
	r.backendItems = nil
	r.mu.Unlock()

	if choice == ChoiceLoadBackend {
		r.store.Replace(backendItems)
		return nil
	}

	// keep_local: the local store is already right; syncing it up is best
	// effort and a failure does not undo the resolution.
	if err := r.client.ReplaceCart(ctx, r.store.Items()); err != nil {
		logger.FromCtx(ctx).Warn("failed to overwrite backend cart", zap.Error(err))
	}
	return nil
}

// Cancel dismisses the prompt without applying either side. Indecision is a
// valid terminal outcome here: the store stays untouched.
func (r *Resolver) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateAwaitingChoice || r.state == StateComparing {
		r.state = StateIdle
		r.backendItems = nil
	}
}

// Pending reports the current comparison for the presentation layer.
func (r *Resolver) Pending() Comparison {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.comparison()
}

// callers hold r.mu

func (r *Resolver) comparison() Comparison {
	return Comparison{
		State:            r.state,
		LocalItemCount:   countItems(r.store.Items()),
		BackendItemCount: countItems(r.backendItems),
	}
}

func (r *Resolver) comparisonFor(local, backend []cart.LineItem) Comparison {
	return Comparison{
		State:            r.state,
		LocalItemCount:   countItems(local),
		BackendItemCount: countItems(backend),
	}
}

func countItems(items []cart.LineItem) int {
	return len(items)
}
