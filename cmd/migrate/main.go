package main

import (
	"context"
	"flag"
	"os"

	"elibrary/internal/platform/logger"
	"elibrary/internal/platform/postgres"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, status, create")
		name    = flag.String("name", "", "Name for 'create' command")
	)
	flag.Parse()

	loadEnvFiles()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	dir := migrationsDir()

	if *command == "create" {
		if *name == "" {
			log.Fatal().Msg("name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Fatal().Err(err).Msg("create migration")
		}
		log.Info().Str("name", *name).Msg("migration created")
		return
	}

	ctx := context.Background()
	dsn := databaseDSN()
	pool, err := postgres.Open(ctx, dsn, 2)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("set goose dialect")
	}

	switch *command {
	case "up":
		if err := goose.UpContext(ctx, db, dir); err != nil {
			log.Fatal().Err(err).Msg("apply migrations")
		}
		log.Info().Str("dsn", postgres.RedactDSN(dsn)).Msg("migrations applied")
	case "down":
		if err := goose.DownContext(ctx, db, dir); err != nil {
			log.Fatal().Err(err).Msg("roll back migration")
		}
		log.Info().Msg("migration rolled back")
	case "status":
		if err := goose.StatusContext(ctx, db, dir); err != nil {
			log.Fatal().Err(err).Msg("migration status")
		}
	default:
		log.Fatal().Str("command", *command).Msg("unknown command, use: up, down, status, create")
	}
}
