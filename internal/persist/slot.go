package persist

import (
	"context"
	"errors"
)

var (
	// ErrSlotEmpty means the durable slot has never been written (or was
	// cleared). Callers treat it as an empty cart, not a failure.
	ErrSlotEmpty = errors.New("cart slot is empty")

	ErrFailedReadSlot  = errors.New("failed to read cart slot")
	ErrFailedWriteSlot = errors.New("failed to write cart slot")
	ErrFailedClearSlot = errors.New("failed to clear cart slot")
)

// Slot is one durable key-value cell holding the serialized cart payload.
// It is scoped per profile, not per user account: whoever uses this browser
// profile next sees the same slot.
type Slot interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, payload []byte) error
	Clear(ctx context.Context) error
	Close() error
}
