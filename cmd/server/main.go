package main

import (
	"context"
	"net/http"

	"keranjang/internal/api"
	"keranjang/internal/cart"
	"keranjang/internal/config"
	"keranjang/internal/logger"
	"keranjang/internal/persist"
	"keranjang/internal/remote"

	"go.uber.org/zap"
)

// swapped in tests
var startServerFunc = http.ListenAndServe

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx := context.Background()
	store := cart.NewStore()

	slot, err := openSlot(cfg)
	if err != nil {
		return err
	}
	defer slot.Close()

	adapter := persist.NewAdapter(slot)
	adapter.Hydrate(ctx, store)
	adapter.Attach(ctx, store)

	// The file slot is shared between page contexts; watch it so another
	// writer's cart shows up here too. SQLite writers already serialize
	// through the database, no watcher needed.
	if fileSlot, ok := slot.(*persist.FileSlot); ok {
		watcher := persist.NewWatcher(fileSlot, store)
		if err := watcher.Start(); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	client := remote.NewClient(cfg.SyncBaseURL, remote.ContextTokenSource{})
	resolver := remote.NewResolver(client, store)

	router := api.NewRouter(api.NewHandler(store, resolver), []byte(cfg.SecretKey))

	logger.L().Info("cart server running",
		zap.String("port", cfg.AppPort),
		zap.String("slot_backend", cfg.SlotBackend),
		zap.String("slot_path", cfg.SlotPath),
		zap.Int("hydrated_items", store.TotalItems()),
	)
	return startServerFunc(":"+cfg.AppPort, router)
}

func openSlot(cfg *config.Config) (persist.Slot, error) {
	if cfg.SlotBackend == config.SlotBackendSQLite {
		db, err := persist.OpenSQLite(cfg.SlotPath)
		if err != nil {
			return nil, err
		}
		return persist.NewSQLiteSlot(db, cfg.SlotKey), nil
	}
	return persist.NewFileSlot(cfg.SlotPath)
}
