// cmd/server/run.go
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/curbsidehq/curbside/internal/app/api"
	"github.com/curbsidehq/curbside/internal/app/lifecycle"
	"github.com/curbsidehq/curbside/internal/app/notifier"
	"github.com/curbsidehq/curbside/internal/app/payments"
	"github.com/curbsidehq/curbside/internal/ports"
	"github.com/curbsidehq/curbside/internal/shared/config"
	"github.com/curbsidehq/curbside/internal/shared/logger"
	pg "github.com/curbsidehq/curbside/internal/shared/postgres"
	"github.com/curbsidehq/curbside/internal/shared/rabbitmq"
	"github.com/curbsidehq/curbside/internal/shared/sqlite"
)

// Run wires the ordering server and blocks until ctx is cancelled or a
// component fails.
func Run(ctx context.Context, configPath string, portOverride int) error {
	log := logger.New("curbside-server")

	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		log.Error(ctx, "config_load_failed", "Failed to load configuration", err)
		return err
	}
	if portOverride > 0 {
		cfg.Server.Port = portOverride
	}

	var (
		orderStore   ports.OrderStore
		catalogStore ports.CatalogStore
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := pg.NewPool(ctx, cfg)
		if err != nil {
			log.Error(ctx, "db_connection_failed", "Failed to initialize Postgres pool", err)
			return err
		}
		defer pool.Close()
		orderStore = pg.NewOrdersRepo(pool)
		catalogStore = pg.NewCatalogRepo(pool)
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			log.Error(ctx, "db_connection_failed", "Failed to open SQLite database", err)
			return err
		}
		defer db.Close()
		orderStore = sqlite.NewOrdersRepo(db)
		catalogStore = sqlite.NewCatalogRepo(db)
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	log.Info(ctx, "db_connected", "Connected to "+cfg.Database.Driver+" database", nil)

	var mirror ports.EventPublisher
	if cfg.RabbitMQ.Enabled {
		client, err := rabbitmq.Connect(ctx, cfg, log)
		if err != nil {
			log.Error(ctx, "rabbitmq_connection_failed", "Failed to connect to RabbitMQ", err)
			return err
		}
		defer client.Close()
		mirror = client
	}

	hub := notifier.NewHub(mirror, log)
	engine := lifecycle.NewEngine(orderStore, hub, log)
	scheduler := lifecycle.NewScheduler(engine, orderStore, log, cfg.TimerInterval())

	gateway := payments.NewHTTPGateway(cfg.Gateway.BaseURL, cfg.GatewayTimeout())
	adapter := payments.NewAdapter(engine, orderStore, gateway, cfg.Gateway.Secret, log)

	router := api.NewRouter(api.Deps{
		Engine:   engine,
		Orders:   orderStore,
		Catalog:  catalogStore,
		Hub:      hub,
		Payments: adapter,
		Gateway:  gateway,
		AdminKey: cfg.Server.AdminKey,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.Info(ctx, "service_started",
		fmt.Sprintf("Curbside server started on port %d", cfg.Server.Port),
		map[string]any{"port": cfg.Server.Port, "driver": cfg.Database.Driver})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shCtx)
	})

	return g.Wait()
}
