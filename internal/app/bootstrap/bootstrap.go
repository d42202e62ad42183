package bootstrap

import (
	"errors"
	"log/slog"
	"strings"

	proposalservice "papercall/contexts/event-review/proposal-service"
	eventsadapter "papercall/contexts/event-review/proposal-service/adapters/events"
	"papercall/contexts/event-review/proposal-service/adapters/memory"
	postgresadapter "papercall/contexts/event-review/proposal-service/adapters/postgres"
	"papercall/internal/platform/config"
	"papercall/internal/platform/db"
	"papercall/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type App struct {
	Module proposalservice.Module

	// SendResultEmails is the process-level default for publication email
	// fan-out; callers may still override it per request.
	SendResultEmails bool

	postgres *db.Postgres
	logger   *slog.Logger
}

func Build() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus := messaging.NewBus(logger)
	notifier := eventsadapter.NewNotifier(bus, cfg.ServiceName, logger)

	// Access and settings run on the in-memory adapters until the identity
	// context exposes its capability checks over the bus.
	access := memory.NewAccessChecker()
	settings := memory.NewSettings()
	if !cfg.EnableProposalReviews {
		settings.DisableReviews()
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := proposalservice.NewModule(proposalservice.Dependencies{
		Repository:      repo,
		Access:          access,
		Settings:        settings,
		Notifier:        notifier,
		Clock:           postgresadapter.SystemClock{},
		DisplaySpeakers: cfg.DisplayProposalSpeakers,
		DisplayReviews:  cfg.DisplayProposalReviews,
		Logger:          logger,
	})

	return &App{
		Module:           module,
		SendResultEmails: cfg.EnableResultEmails,
		postgres:         pg,
		logger:           logger,
	}, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return a.postgres.Close()
}
