package persist

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"keranjang/internal/cart"
	"keranjang/internal/logger"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reconciles concurrent writers of a file slot. Each page context
// (tab) owns its own in-memory store but shares the slot, so when another
// writer replaces the file we re-hydrate: last writer wins. Our own
// write-through produces a payload identical to the store's state, so the
// content comparison filters it out and no feedback loop forms.
type Watcher struct {
	slot     *FileSlot
	store    cart.Store
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher builds a watcher for the given file slot; Start must be called.
func NewWatcher(slot *FileSlot, store cart.Store) *Watcher {
	return &Watcher{
		slot:     slot,
		store:    store,
		debounce: 100 * time.Millisecond,
	}
}

// Start begins watching the slot's directory. Watching the directory rather
// than the file survives the rename our atomic writes perform.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.slot.Path())); err != nil {
		fsw.Close()
		return err
	}

	w.fsw = fsw
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true

	go w.loop()
	return nil
}

// Stop halts the watcher and waits for the event loop to drain.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
	w.fsw.Close()
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.slot.Path()) {
				continue
			}
			// Remove matters too: a Clear in another context deletes the
			// file, and the deletion must empty this store as well.
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
				continue
			}
			// Coalesce bursts: a rename-based write emits several events.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reconcile()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.L().Warn("slot watcher error", zap.Error(err))
		}
	}
}

// reconcile re-reads the slot and adopts its contents when they differ from
// the in-memory state.
func (w *Watcher) reconcile() {
	ctx := context.Background()

	payload, err := w.slot.Read(ctx)
	if errors.Is(err, ErrSlotEmpty) {
		payload = []byte("[]")
	} else if err != nil {
		logger.L().Warn("slot changed but is unreadable", zap.Error(err))
		return
	}

	items, err := cart.DecodeItems(payload)
	if err != nil {
		logger.L().Warn("slot changed but is corrupted, ignoring", zap.Error(err))
		return
	}

	incoming := cart.Sanitize(items)
	if sameItems(incoming, w.store.Items()) {
		return
	}

	logger.L().Info("adopting cart written by another context",
		zap.Int("items", len(incoming)),
	)
	w.store.Replace(incoming)
}

func sameItems(a, b []cart.LineItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Name != y.Name || x.Price != y.Price ||
			x.Quantity != y.Quantity || x.Image != y.Image {
			return false
		}
		switch {
		case x.Validity == nil && y.Validity == nil:
		case x.Validity == nil || y.Validity == nil:
			return false
		case *x.Validity != *y.Validity:
			return false
		}
	}
	return true
}
