package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"roombook/backend/internal/config"
	"roombook/backend/internal/seed"
	"roombook/backend/internal/store/postgres"
)

func main() {
	file := flag.String("file", "fixtures/rooms.yaml", "YAML fixture with rooms and persons")
	timeout := flag.Duration("timeout", time.Minute, "overall deadline for the load")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", "roombook-seed"))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	fixture, err := seed.Load(*file)
	if err != nil {
		log.Error("fixture load failed", slog.Any("err", err), slog.String("file", *file))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		log.Error("database connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	res, err := seed.Apply(ctx, postgres.NewRepo(db), fixture, log)
	if err != nil {
		log.Error("seed failed", slog.Any("err", err))
		_ = postgres.Close(db)
		os.Exit(1)
	}
	log.Info(
		"seed finished",
		slog.Int("rooms_created", res.RoomsCreated),
		slog.Int("rooms_skipped", res.RoomsSkipped),
		slog.Int("persons_created", res.PersonsCreated),
	)
}
