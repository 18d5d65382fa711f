package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scan-stats-service/internal/clock"
	"scan-stats-service/internal/config"
	"scan-stats-service/internal/migration"
	"scan-stats-service/internal/platform/amqp"
	"scan-stats-service/internal/report"
	"scan-stats-service/internal/roster"
	"scan-stats-service/internal/storage"
	"scan-stats-service/pkg/logger"
	"scan-stats-service/pkg/metrics"

	scansAmqp "scan-stats-service/internal/scans/adapters/amqp"
	scansHttp "scan-stats-service/internal/scans/adapters/http/fiber"
	scansRepoPg "scan-stats-service/internal/scans/adapters/postgres"
	scansPorts "scan-stats-service/internal/scans/core/ports"
	scansUsecase "scan-stats-service/internal/scans/core/usecase"

	statsHttp "scan-stats-service/internal/stats/adapters/http/fiber"
	statsRepoPg "scan-stats-service/internal/stats/adapters/postgres"
	statsDomain "scan-stats-service/internal/stats/core/domain"
	statsUsecase "scan-stats-service/internal/stats/core/usecase"

	"scan-stats-service/internal/broadcast"
	broadcastAmqp "scan-stats-service/internal/broadcast/adapters/amqp"
	broadcastHttp "scan-stats-service/internal/broadcast/adapters/http/fiber"

	rosterHttp "scan-stats-service/internal/roster/adapters/http/fiber"

	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	_ "scan-stats-service/docs"
)

// @title Scan Stats Service API
// @version 1.0
// @description Scooter scan tracking, statistics and reports.
// @BasePath /
func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		ServiceName: "scan-stats-service",
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("invalid timezone", zap.Error(err))
	}

	m := metrics.NewManager()

	// DB connection
	startCtx, cancelStart := context.WithTimeout(context.Background(), 15*time.Second)
	db, err := storage.Open(startCtx, cfg.PostgresDSN, storage.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	cancelStart()
	if err != nil {
		log.Fatal("failed to open postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := migration.Run(db); err != nil {
			log.Fatal("failed to migrate", zap.Error(err))
		}
	}

	clk := clock.New(loc, cfg.SimulatedYear)

	// Roster
	dir, err := roster.Load(cfg.RosterPath, roster.WithLogger(log), roster.WithMetrics(m))
	if err != nil {
		log.Fatal("failed to load roster", zap.String("path", cfg.RosterPath), zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.WatchRoster {
		if err := dir.Watch(ctx); err != nil {
			log.Warn("roster watch disabled", zap.Error(err))
		}
	}

	mirrorTargets := func(userID int64) (scansPorts.MirrorTarget, bool) {
		snap := dir.Snapshot()
		number, date, ok := snap.SheetColumns(userID)
		if !ok {
			return scansPorts.MirrorTarget{}, false
		}
		return scansPorts.MirrorTarget{ShortName: snap.Name(userID), NumberColumn: number, DateColumn: date}, true
	}

	// Adapter-level DB wrappers
	scansDB := scansRepoPg.NewSQLDB(db)
	statsDB := statsRepoPg.NewSQLDB(db)

	// Repositories
	scanRepository := scansRepoPg.NewScanRepository(scansDB)
	statsRepository := statsRepoPg.NewStatsRepository(statsDB, loc)

	// Usecases
	recordOpts := []scansUsecase.Option{
		scansUsecase.WithLogger(log),
		scansUsecase.WithMetrics(m),
		scansUsecase.WithMirrorRetry(cfg.MirrorTries, cfg.MirrorBackoff),
	}

	var publisher *amqp.Publisher
	if cfg.AMQPURL != "" {
		publisher = amqp.NewPublisher(cfg.AMQPURL)
		recordOpts = append(recordOpts,
			scansUsecase.WithMirror(scansAmqp.NewScanMirror(publisher, cfg.MirrorQueue), mirrorTargets))
	} else {
		log.Warn("amqp_url not set, scan mirror and broadcasts are disabled")
	}

	rule := statsDomain.PremiumRule{Norm: cfg.DecadeNorm, Rate: cfg.PremiumRate}

	recordScanUC := scansUsecase.NewRecordScanUseCase(scanRepository, clk, recordOpts...)
	importHistoryUC := scansUsecase.NewImportHistoryUseCase(scanRepository, m)
	activityUC := scansUsecase.NewGetActivityUseCase(scanRepository)

	personalStatsUC := statsUsecase.NewGetPersonalStatsUseCase(statsRepository, clk, rule, m)
	chartUC := statsUsecase.NewGetChartUseCase(statsRepository, clk, m)
	reportUC := statsUsecase.NewGetReportUseCase(statsRepository, clk, m)

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(logger.FiberMiddleware(log))
	app.Use(metrics.FiberMiddleware(m))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/prometheus", metrics.FiberHandler(m))

	// scan endpoints
	scanHandler := scansHttp.NewScanHandler(recordScanUC, importHistoryUC, activityUC, func(userID int64) bool {
		return dir.Snapshot().IsAllowed(userID)
	})
	app.Post("/scans", scanHandler.CreateScan)
	app.Post("/history/bulk", scanHandler.BulkImportHistory)
	app.Post("/activity/bulk", scanHandler.BulkImportActivity)
	app.Get("/users/:id/activity", scanHandler.GetActivity)

	// stats endpoints
	statsHandler := statsHttp.NewStatsHandler(personalStatsUC, chartUC, reportUC, rule, func() report.Names {
		return dir.Snapshot()
	})
	app.Get("/users/:id/stats", statsHandler.GetPersonalStats)
	app.Get("/users/:id/chart", statsHandler.GetChart)
	app.Get("/users/:id/page", statsHandler.GetPage)
	app.Get("/reports/today", statsHandler.GetTodayReport)
	app.Get("/reports/decade/:num", statsHandler.GetDecadeReport)

	// roster endpoints
	rosterHandler := rosterHttp.NewRosterHandler(dir, clk, cfg.ShiftDays)
	app.Get("/users/:id/shifts", rosterHandler.GetShifts)
	app.Post("/roster/reload", rosterHandler.Reload)

	// broadcast endpoints
	if publisher != nil {
		svc := broadcast.NewService(
			func() broadcast.Roster { return dir.Snapshot() },
			broadcastAmqp.NewSender(publisher, cfg.OutboundQueue),
			broadcast.WithLogger(log),
			broadcast.WithMetrics(m),
		)
		broadcastHandler := broadcastHttp.NewBroadcastHandler(svc)
		app.Post("/broadcasts", broadcastHandler.CreateBroadcast)
		app.Post("/broadcasts/ack", broadcastHandler.AcknowledgeBroadcast)
	}

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)

	// Graceful shutdown
	go func() {
		if err := app.Listen(cfg.Addr); err != nil {
			log.Error("fiber stopped", zap.Error(err))
		}
	}()

	log.Info("server started",
		zap.String("addr", cfg.Addr),
		zap.String("timezone", loc.String()),
		zap.Int("simulated_year", cfg.SimulatedYear),
		zap.Int("roster_users", dir.Snapshot().Len()),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info("shutting down")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("fiber shutdown error", zap.Error(err))
	}

	// in-flight mirrors finish before the process exits
	recordScanUC.Wait()

	log.Info("server exiting")
}
