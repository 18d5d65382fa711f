// Command importer loads legacy JSON exports into the scan database:
// per-day history documents and last-activity markers. Re-running an
// import with the same files changes nothing.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"scan-stats-service/internal/config"
	"scan-stats-service/internal/migration"
	"scan-stats-service/internal/storage"
	"scan-stats-service/pkg/logger"

	scansRepoPg "scan-stats-service/internal/scans/adapters/postgres"
	scansUsecase "scan-stats-service/internal/scans/core/usecase"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type options struct {
	historyPath  string
	activityPath string
	dsn          string
	connectTries uint
	migrate      bool
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("importer", pflag.ContinueOnError)
	fs.StringVar(&o.historyPath, "history", "", "history document: {\"<user_id>\": {\"daily_history\": {\"YYYY-MM-DD\": n}}}")
	fs.StringVar(&o.activityPath, "activity", "", "last activity document: {\"<user_id>\": \"YYYY-MM-DD\"}")
	fs.StringVar(&o.dsn, "dsn", "", "postgres DSN (overrides SCANSTATS_POSTGRES_DSN)")
	fs.UintVar(&o.connectTries, "connect-tries", 5, "database connection attempts")
	fs.BoolVar(&o.migrate, "migrate", true, "apply migrations before importing")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.historyPath == "" && o.activityPath == "" {
		return o, fmt.Errorf("nothing to import: pass --history and/or --activity")
	}
	if o.connectTries == 0 {
		o.connectTries = 1
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil && opts.dsn == "" {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if cfg == nil {
		cfg = config.New()
	}
	if opts.dsn != "" {
		cfg.PostgresDSN = opts.dsn
	}

	log, err := logger.New(logger.Config{ServiceName: "scan-stats-importer", Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log = log.With(zap.String("run_id", uuid.NewString()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := run(ctx, log, cfg, opts); err != nil {
		log.Fatal("import failed", zap.Error(err))
	}
}

func run(ctx context.Context, log *zap.Logger, cfg *config.Config, opts options) error {
	pool := storage.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}

	db, err := backoff.Retry(ctx, func() (*sql.DB, error) {
		return storage.Open(ctx, cfg.PostgresDSN, pool)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(opts.connectTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.Warn("postgres not ready", zap.Duration("retry_in", next), zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if opts.migrate {
		if err := migration.Run(db); err != nil {
			return err
		}
	}

	repo := scansRepoPg.NewScanRepository(scansRepoPg.NewSQLDB(db))
	uc := scansUsecase.NewImportHistoryUseCase(repo, nil)

	if opts.historyPath != "" {
		in, err := readHistory(opts.historyPath)
		if err != nil {
			return err
		}
		res, err := uc.Execute(ctx, in)
		if err != nil {
			return fmt.Errorf("import history: %w", err)
		}
		log.Info("history imported",
			zap.String("path", opts.historyPath),
			zap.Int("users", res.Users),
			zap.Int("rows", res.Rows),
		)
	}

	if opts.activityPath != "" {
		in, err := readActivity(opts.activityPath)
		if err != nil {
			return err
		}
		n, err := uc.ImportActivity(ctx, in)
		if err != nil {
			return fmt.Errorf("import activity: %w", err)
		}
		log.Info("activity imported", zap.String("path", opts.activityPath), zap.Int("users", n))
	}
	return nil
}

type historyDoc map[string]struct {
	Comment      string           `json:"comment"`
	DailyHistory map[string]int64 `json:"daily_history"`
}

func readHistory(path string) (scansUsecase.ImportHistoryInput, error) {
	var doc historyDoc
	if err := readJSON(path, &doc); err != nil {
		return scansUsecase.ImportHistoryInput{}, err
	}

	entries := make(map[int64]scansUsecase.HistoryEntry, len(doc))
	for key, e := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return scansUsecase.ImportHistoryInput{}, fmt.Errorf("%s: user id %q is not an integer", path, key)
		}
		entries[id] = scansUsecase.HistoryEntry{Comment: e.Comment, DailyHistory: e.DailyHistory}
	}
	return scansUsecase.ImportHistoryInput{Entries: entries}, nil
}

func readActivity(path string) (scansUsecase.ImportActivityInput, error) {
	var doc map[string]string
	if err := readJSON(path, &doc); err != nil {
		return scansUsecase.ImportActivityInput{}, err
	}

	markers := make(map[int64]string, len(doc))
	for key, day := range doc {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return scansUsecase.ImportActivityInput{}, fmt.Errorf("%s: user id %q is not an integer", path, key)
		}
		markers[id] = day
	}
	return scansUsecase.ImportActivityInput{Markers: markers}, nil
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
