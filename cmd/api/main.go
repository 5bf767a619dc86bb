package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/samirrijal/mapcal/internal/adapters/http"
	natsadapter "github.com/samirrijal/mapcal/internal/adapters/nats"
	"github.com/samirrijal/mapcal/internal/adapters/postgres"
	"github.com/samirrijal/mapcal/internal/adapters/valkey"
	"github.com/samirrijal/mapcal/internal/core/ports"
	"github.com/samirrijal/mapcal/internal/core/usecases"
	"github.com/samirrijal/mapcal/internal/pkg/config"
	"github.com/samirrijal/mapcal/internal/pkg/logging"
	"github.com/samirrijal/mapcal/internal/pkg/telemetry"
	"github.com/samirrijal/mapcal/internal/workflows"
)

func main() {
	cfg, err := config.Load("mapcal-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("mapcal-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	deps := &http.Dependencies{DB: db}

	// Cache and event bus are optional. Only assign them to interfaces when
	// they exist so the service sees a nil interface otherwise.
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "mapcal:"); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	// Raw NATS connection for the WebSocket relay
	if nc, err := natsadapter.RawConn(cfg.NATS.URL); err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	} else {
		defer nc.Close()
		deps.NATS = nc
	}

	deps.Maps = usecases.NewMapService(postgres.NewMapRepo(db), cache, publisher, usecases.MapServiceOptions{
		CacheTTL:          cfg.Calibration.CacheTTL,
		DefaultMethod:     cfg.Calibration.DefaultMethod,
		DefaultProjection: cfg.Calibration.DefaultProjection,
	})

	// Temporal is only needed for batch recalibration.
	if cfg.Temporal.HostPort != "" {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable", "error", err)
		} else {
			defer tc.Close()
			deps.Workflows = workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
		}
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "mapcal API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
