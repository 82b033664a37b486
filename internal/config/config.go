package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Slot backends for the durable cart copy.
const (
	SlotBackendFile   = "file"
	SlotBackendSQLite = "sqlite"
)

type Config struct {
	AppEnv      string
	AppPort     string
	SlotBackend string
	SlotPath    string
	SlotKey     string
	SyncBaseURL string
	SecretKey   string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      os.Getenv("APP_ENV"),
		AppPort:     os.Getenv("APP_PORT"),
		SlotBackend: os.Getenv("CART_SLOT_BACKEND"),
		SlotPath:    os.Getenv("CART_SLOT_PATH"),
		SlotKey:     os.Getenv("CART_SLOT_KEY"),
		SyncBaseURL: os.Getenv("SYNC_BASE_URL"),
		SecretKey:   os.Getenv("SECRET_KEY"),
	}

	if cfg.AppPort == "" {
		log.Fatal("APP_PORT not set in environment")
	}

	if cfg.SlotBackend == "" {
		cfg.SlotBackend = SlotBackendFile
	}
	if cfg.SlotBackend != SlotBackendFile && cfg.SlotBackend != SlotBackendSQLite {
		log.Fatalf("unknown CART_SLOT_BACKEND %q", cfg.SlotBackend)
	}

	if cfg.SlotPath == "" {
		cfg.SlotPath = defaultSlotPath(cfg.SlotBackend)
	}

	return cfg
}

func defaultSlotPath(backend string) string {
	if backend == SlotBackendSQLite {
		return "data/cart.db"
	}
	return "data/cart.json"
}
