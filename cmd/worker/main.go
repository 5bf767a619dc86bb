package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/mapcal/internal/adapters/nats"
	"github.com/samirrijal/mapcal/internal/adapters/postgres"
	"github.com/samirrijal/mapcal/internal/adapters/valkey"
	"github.com/samirrijal/mapcal/internal/core/domain"
	"github.com/samirrijal/mapcal/internal/core/ports"
	"github.com/samirrijal/mapcal/internal/core/usecases"
	"github.com/samirrijal/mapcal/internal/pkg/config"
	"github.com/samirrijal/mapcal/internal/pkg/logging"
	"github.com/samirrijal/mapcal/internal/pkg/telemetry"
	"github.com/samirrijal/mapcal/internal/workflows"
)

func main() {
	cfg, err := config.Load("mapcal-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Temporal.HostPort == "" {
		log.Fatal("temporal.host_port is required for the worker")
	}

	logging.Setup("mapcal-worker", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()
	go db.ReportPoolStats(ctx, 15*time.Second)

	// The worker writes through the same cache keys as the API so that
	// recalibrated maps are invalidated there too.
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "mapcal:"); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	var publisher ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		publisher = pub
	}

	svc := usecases.NewMapService(postgres.NewMapRepo(db), cache, publisher, usecases.MapServiceOptions{
		CacheTTL:          cfg.Calibration.CacheTTL,
		DefaultMethod:     cfg.Calibration.DefaultMethod,
		DefaultProjection: cfg.Calibration.DefaultProjection,
	})

	// Calibration event log
	if publisher != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, "calibration-logger")
		if err != nil {
			slog.Warn("nats subscriber unavailable", "error", err)
		} else {
			defer sub.Close()
			if err := logCalibrations(ctx, sub); err != nil {
				slog.Warn("subscribe calibration events", "error", err)
			}
		}
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.RecalibrationWorkflow)
	w.RegisterActivity(&workflows.RecalibrationActivities{Maps: svc})

	slog.Info("recalibration worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}

// logCalibrations writes one log record per calibration event.
func logCalibrations(ctx context.Context, events ports.EventSubscriber) error {
	return events.SubscribeCalibrations(ctx, func(ctx context.Context, e *domain.CalibrationEvent) error {
		slog.InfoContext(ctx, "calibration event",
			"map_id", e.MapID,
			"status", e.Status.String(),
			"method", e.Method,
			"projection", e.Projection,
			"time", e.Time,
		)
		return nil
	})
}
