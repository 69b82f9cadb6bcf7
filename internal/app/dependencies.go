package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/afero"

	"github.com/duelsim/duelsim/internal/config"
	"github.com/duelsim/duelsim/internal/content"
	"github.com/duelsim/duelsim/internal/database"
	"github.com/duelsim/duelsim/internal/pubsub"
	"github.com/duelsim/duelsim/internal/registry"
	"github.com/duelsim/duelsim/internal/script"
	"github.com/duelsim/duelsim/internal/storage"
	"github.com/duelsim/duelsim/internal/websocket"
)

// BuildRegistry assembles the core services the modules pull from the
// registry: the message bus, the card catalog, the script engine, the
// websocket bridge and, when configured, the database layer. The
// returned cleanup function releases everything in reverse order.
func BuildRegistry(ctx context.Context, cfg config.Provider) (*registry.Registry, func(), error) {
	reg := registry.New(cfg)

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}
	fail := func(err error) (*registry.Registry, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// Tracing first, so the bus instruments its handlers from the start.
	// A disabled setup hands back a no-op tracer, so the bus is always
	// built the same way.
	tracer, stopTracing, err := pubsub.SetupOTel(ctx, pubsub.TracingConfig{
		Enabled:     cfg.TracingEnabled(),
		ServiceName: "duelsim",
		ZipkinURL:   cfg.ZipkinURL(),
	})
	if err != nil {
		return fail(fmt.Errorf("setting up tracing: %w", err))
	}
	cleanups = append(cleanups, stopTracing)

	bus := pubsub.NewWatermillBridge(pubsub.WithTracer(tracer))
	registry.Set(reg, pubsub.PublisherKey, pubsub.Publisher(pubsub.NewTracedPublisher(bus, tracer)))
	registry.Set(reg, pubsub.SubscriberKey, pubsub.Subscriber(bus))
	cleanups = append(cleanups, func() {
		if err := bus.Close(); err != nil {
			slog.Error("closing message bus", "error", err)
		}
	})

	cards := content.NewRegistry()
	loader := content.NewLoader()
	if err := loader.LoadDefaults(cards); err != nil {
		return fail(fmt.Errorf("loading embedded cards: %w", err))
	}
	if dir := cfg.ContentDir(); dir != "" {
		if err := loader.LoadDir(afero.NewOsFs(), dir, cards); err != nil {
			return fail(fmt.Errorf("loading cards from %s: %w", dir, err))
		}
	}
	registry.Set(reg, content.RegistryKey, cards)
	slog.Info("card catalog loaded", "cards", cards.Len())

	engine, err := script.RegisterService(reg, cfg)
	if err != nil {
		return fail(fmt.Errorf("starting script engine: %w", err))
	}
	cleanups = append(cleanups, func() {
		if err := engine.Shutdown(context.Background()); err != nil {
			slog.Error("stopping script engine", "error", err)
		}
	})

	if dir := cfg.DataDir(); dir != "" {
		store := storage.NewAferoStore(afero.NewBasePathFs(afero.NewOsFs(), dir))
		registry.Set(reg, storage.StoreKey, storage.Store(store))
	} else {
		slog.Info("no data directory configured, match transcripts disabled")
	}

	if cfg.DBURL() != "" {
		if err := setupDatabase(ctx, cfg, reg, &cleanups); err != nil {
			return fail(err)
		}
	} else {
		slog.Info("no database configured, running in memory only")
	}

	if err := websocket.RegisterTopics(); err != nil {
		return fail(fmt.Errorf("registering bridge topics: %w", err))
	}
	whitelist := websocket.NewActionWhitelist()
	registry.Set(reg, websocket.WhitelistKey, whitelist)

	publisher := registry.MustGet(reg, pubsub.PublisherKey)
	bridge := websocket.NewBridge(publisher, whitelist)
	registry.Set(reg, websocket.BridgeKey, bridge)

	return reg, cleanup, nil
}

// setupDatabase connects to SurrealDB and registers the connection, the
// live query service and the card store.
func setupDatabase(ctx context.Context, cfg config.Provider, reg *registry.Registry, cleanups *[]func()) error {
	conn := database.NewConnection(cfg)
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	conn.StartMonitoring()
	*cleanups = append(*cleanups, func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.Close(closeCtx); err != nil {
			slog.Error("closing database connection", "error", err)
		}
	})
	registry.Set(reg, database.ConnectionKey, database.DBConnection(conn))

	registry.Set(reg, database.LiveQueryServiceKey,
		database.LiveQueryService(database.NewSurrealLiveQueryService(conn)))

	db, err := conn.DB()
	if err != nil {
		return fmt.Errorf("acquiring database handle: %w", err)
	}
	client, err := database.NewClient[database.CardRecord](db)
	if err != nil {
		return fmt.Errorf("building card client: %w", err)
	}
	registry.Set(reg, database.CardStoreKey, database.NewCardStore(client))

	return nil
}
