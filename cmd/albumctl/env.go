package main

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yigit/photoalbum/internal/bootstrap"
	"github.com/yigit/photoalbum/internal/config"
	"github.com/yigit/photoalbum/internal/db"
)

// appEnv is the wiring shared by every subcommand that touches the database.
type appEnv struct {
	cfg  *config.Config
	log  zerolog.Logger
	db   *db.PostgresDB
	deps *bootstrap.Dependencies
}

func loadConfig(opts *rootOptions) (*config.Config, zerolog.Logger, error) {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(opts.configPath)
	if err != nil {
		return nil, lgr, withCode(exitUsage, err)
	}
	return cfg, lgr, nil
}

func connect(cfg *config.Config) (*db.PostgresDB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, withCode(exitDB, err)
	}
	return database, nil
}

// openEnv connects to the database and builds the services. Metrics are
// collected into a private registry that is never served.
func openEnv(opts *rootOptions) (*appEnv, error) {
	cfg, lgr, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	database, err := connect(cfg)
	if err != nil {
		return nil, err
	}
	deps, err := bootstrap.BuildDependencies(cfg, database.Pool, prometheus.NewRegistry(), lgr)
	if err != nil {
		database.Close()
		return nil, withCode(exitUsage, err)
	}
	return &appEnv{cfg: cfg, log: lgr, db: database, deps: deps}, nil
}

func (e *appEnv) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.deps.Jobs.Shutdown(ctx); err != nil {
		e.log.Warn().Err(err).Msg("Background jobs did not stop in time")
	}
	e.db.Close()
}
