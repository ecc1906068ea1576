// Package app wires the stores, parser, relocator and event bus shared by the
// api server and the migrate CLI.
package app

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"legacy-migrator/assets"
	"legacy-migrator/config"
	"legacy-migrator/db"
	"legacy-migrator/eventbus"
	"legacy-migrator/parser"
	"legacy-migrator/repositories"
	"legacy-migrator/services"
)

type App struct {
	Config  config.AppConfig
	Service *services.MigrationService
	Bus     eventbus.EventBus
	Topic   eventbus.Topic
	closers []func()
}

// Build connects Mongo, opens the configured option store and the event bus,
// and assembles the migration service.
func Build(ctx context.Context, cfg config.AppConfig) (*App, error) {
	if err := db.Init(ctx); err != nil {
		return nil, fmt.Errorf("initialize MongoDB: %w", err)
	}
	a := &App{Config: cfg, Topic: eventbus.MigrationTopic(cfg.Kafka.Topic)}
	a.closers = append(a.closers, func() {
		if err := db.Disconnect(context.Background()); err != nil {
			config.Logger.Warnf("mongo disconnect: %v", err)
		}
	})

	store, err := OptionStore(cfg.Store)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Bus = EventBus(cfg.Kafka)
	a.closers = append(a.closers, a.Bus.Close)

	videos := repositories.NewVideoRepository(db.Database())
	a.Service = services.NewMigrationService(
		videos,
		parser.New(parser.GutenbergProvider{}, videos),
		assets.NewRenamer(cfg.Uploads, videos, videos),
		services.NewStatusStore(store),
		a.Bus,
		services.MigrationOptionsFromConfig(cfg),
	)
	return a, nil
}

// OptionStore opens the store named by cfg.Driver. Mongo must be initialized
// for the mongo driver.
func OptionStore(cfg config.StoreConfig) (repositories.OptionStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "mongo":
		return repositories.NewMongoOptionStore(db.Database()), nil
	case "sqlite":
		gdb, err := db.OpenSQLite(cfg.SQLitePath, &repositories.Option{})
		if err != nil {
			return nil, err
		}
		return repositories.NewSQLOptionStore(gdb), nil
	case "memory":
		config.Logger.Warn("memory option store selected; migration state is lost on exit")
		return repositories.NewMemoryOptionStore(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// EventBus returns a Kafka bus when brokers are configured, otherwise a bus
// that drops every event.
func EventBus(cfg config.KafkaConfig) eventbus.EventBus {
	if cfg.Brokers == "" {
		return eventbus.NopEventBus{}
	}
	partitions := cfg.Partitions
	if partitions <= 0 {
		partitions = 3
	}
	if err := eventbus.EnsureTopics(cfg.Brokers, eventbus.MigrationTopic(cfg.Topic), partitions); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}
	bus, err := eventbus.NewKafkaEventBus(cfg.Brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus, events disabled: %v", err)
		return eventbus.NopEventBus{}
	}
	return bus
}

// Health pings Mongo.
func Health(ctx context.Context) error {
	return db.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

// Close releases everything Build opened, in reverse order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
