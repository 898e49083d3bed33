package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"orderconfig/internal/catalog"
	"orderconfig/internal/config"
	"orderconfig/internal/db"
	"orderconfig/internal/logging"
)

func main() {
	path := flag.String("file", "catalog.yaml", "YAML catalog to load")
	flag.Parse()

	config.LoadEnv()
	log := logging.Must(os.Getenv("APP_ENV"))
	defer log.Sync()

	log.Info("🌱 Catalog seed starting...", zap.String("file", *path))

	raw, err := os.ReadFile(*path)
	if err != nil {
		log.Fatal("❌ Cannot read seed file", zap.Error(err))
	}

	seed, err := catalog.ParseSeed(raw)
	if err != nil {
		log.Fatal("❌ Seed file rejected", zap.Error(err))
	}

	cfg, err := config.Load("DATABASE_URL")
	if err != nil {
		log.Fatal("❌ Config load failed", zap.Error(err))
	}

	ctx := context.Background()
	pgDB, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("❌ Database connection failed", zap.Error(err))
	}
	defer pgDB.Close()

	items, drinks, err := catalog.Seed(ctx, catalog.NewPostgresRepository(pgDB), seed)
	if err != nil {
		log.Fatal("❌ Seed failed", zap.Error(err), zap.Int("items", items), zap.Int("drinks", drinks))
	}

	log.Info("✅ Catalog seeded", zap.Int("items", items), zap.Int("drinks", drinks))
}
