package persist

import (
	"context"
	"errors"

	"keranjang/internal/cart"
	"keranjang/internal/logger"

	"go.uber.org/zap"
)

// Adapter keeps the durable slot in sync with a cart store: it hydrates the
// store once at startup and then writes every change through immediately.
// A corrupted slot is never fatal; the cart degrades to empty.
type Adapter struct {
	slot Slot
}

func NewAdapter(slot Slot) *Adapter {
	return &Adapter{slot: slot}
}

// Hydrate loads the persisted payload into the store. Missing or malformed
// payloads leave the store empty and are only logged; an empty cart is
// always a safe state the user can rebuild.
func (a *Adapter) Hydrate(ctx context.Context, store cart.Store) {
	payload, err := a.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		return
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("cart slot unreadable, starting empty", zap.Error(err))
		return
	}

	items, err := cart.DecodeItems(payload)
	if err != nil {
		logger.FromCtx(ctx).Warn("cart slot corrupted, discarding", zap.Error(err))
		return
	}
	if len(items) == 0 {
		return
	}

	store.Replace(items)
}

// Attach subscribes the write-through: each store mutation is serialized and
// flushed to the slot before the next mutation can run. Write failures are
// logged, not surfaced; the in-memory cart stays authoritative.
func (a *Adapter) Attach(ctx context.Context, store cart.Store) {
	store.Subscribe(func(items []cart.LineItem) {
		payload, err := cart.EncodeItems(items)
		if err != nil {
			logger.FromCtx(ctx).Error("failed to serialize cart", zap.Error(err))
			return
		}
		if err := a.slot.Write(ctx, payload); err != nil {
			logger.FromCtx(ctx).Error("failed to persist cart", zap.Error(err))
		}
	})
}
