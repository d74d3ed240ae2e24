// cmd/churn-etl/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/customer-churn/data-pipeline/pkg/config"
	"github.com/customer-churn/data-pipeline/pkg/ingest"
	"github.com/customer-churn/data-pipeline/pkg/loader"
	"github.com/customer-churn/data-pipeline/pkg/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	inputFlag := flag.String("input", "", "path to the raw customer CSV (overrides INPUT_PATH)")
	outputFlag := flag.String("output", "", "directory for fact/dimension CSVs (overrides OUTPUT_DIR)")
	dbFlag := flag.String("db", "", "PostgreSQL DSN (overrides DATABASE_URL)")
	everyFlag := flag.Duration("every", 0, "run on a schedule at this interval instead of once")
	profileOnly := flag.Bool("profile-only", false, "only ingest and profile the input, then exit")
	flag.Parse()

	if *dbFlag != "" {
		os.Setenv("DATABASE_URL", *dbFlag)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return 1
	}
	if *inputFlag != "" {
		cfg.InputPath = *inputFlag
	}
	if *outputFlag != "" {
		cfg.OutputDir = *outputFlag
	}
	if *everyFlag > 0 {
		cfg.RunInterval = *everyFlag
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *profileOnly {
		return profileInput(cfg, logger)
	}

	runner := pipeline.NewRunner(cfg, logger)
	if cfg.Postgres != nil {
		db, err := loader.Connect(ctx, cfg.Postgres, logger.Named("postgres"))
		if err != nil {
			logger.Error("Database connection failed", zap.Error(err))
			return 1
		}
		defer db.Close()
		runner.
			WithPersister(loader.NewPostgresPersister(db, cfg.BatchSize, logger.Named("loader"))).
			WithDatabase(db)
	}

	if cfg.RunInterval > 0 {
		return runScheduled(ctx, runner, cfg.RunInterval, logger)
	}

	if _, err := runner.Run(ctx); err != nil {
		return 1
	}
	return 0
}

// runScheduled executes the pipeline at a fixed interval until interrupted.
// A failed scheduled run is logged and the schedule keeps going; the next
// successful run replaces whatever the last one persisted.
func runScheduled(ctx context.Context, runner *pipeline.Runner, interval time.Duration, logger *zap.Logger) int {
	scheduler := gocron.NewScheduler(time.UTC)

	logger.Info("Starting scheduled pipeline", zap.Duration("interval", interval))
	_, err := scheduler.Every(interval).Do(func() {
		if _, err := runner.Run(ctx); err != nil {
			logger.Error("Scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		logger.Error("Failed to set up scheduler", zap.Error(err))
		return 1
	}

	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()

	logger.Info("Scheduler stopped")
	return 0
}

// profileInput ingests and profiles the input without transforming it
func profileInput(cfg *config.Config, logger *zap.Logger) int {
	reader := ingest.NewReader(cfg.CSVDelimiter, logger.Named("ingest"))
	table, err := reader.Read(cfg.InputPath)
	if err != nil {
		logger.Error("Failed to read input", zap.Error(err))
		return 1
	}
	ingest.Profile(table, logger.Named("profile"))
	return 0
}

// buildLogger constructs the zap logger from config
func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.LogFormat == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
