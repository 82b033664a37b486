// Command slotctl inspects or resets the local cart slot. Handy when a
// corrupted or stale slot needs looking at without starting the server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"keranjang/internal/cart"
	"keranjang/internal/config"
	"keranjang/internal/persist"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "dump", "slot operation: dump or clear")
	flag.Parse()

	cfg := config.LoadConfig()

	slot, err := openSlot(cfg)
	if err != nil {
		log.Fatalf("failed to open slot: %v", err)
	}
	defer slot.Close()

	if err := run(slot, *mode, os.Stdout); err != nil {
		log.Fatal(err)
	}
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

func run(slot persist.Slot, mode string, out io.Writer) error {
	ctx := context.Background()

	switch mode {
	case "dump":
		return dump(ctx, slot, out)
	case "clear":
		if err := slot.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear slot: %w", err)
		}
		fmt.Fprintln(out, "slot cleared")
		return nil
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func dump(ctx context.Context, slot persist.Slot, out io.Writer) error {
	payload, err := slot.Read(ctx)
	if errors.Is(err, persist.ErrSlotEmpty) {
		fmt.Fprintln(out, "slot is empty")
		return nil
	}
	if err != nil {
		return err
	}

	items, err := cart.DecodeItems(payload)
	if err != nil {
		return fmt.Errorf("slot payload is corrupted: %w", err)
	}

	items = cart.Sanitize(items)
	for _, it := range items {
		fmt.Fprintf(out, "%s\tx%d\t%d\t%s\n", it.ID, it.Quantity, it.Price, it.Name)
	}
	fmt.Fprintf(out, "%d line item(s)\n", len(items))
	return nil
}
