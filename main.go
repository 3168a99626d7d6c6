package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/giygas/cpic-brick/brick"
	"github.com/giygas/cpic-brick/config"
	"github.com/giygas/cpic-brick/cpic"
	"github.com/giygas/cpic-brick/logging"
	"github.com/giygas/cpic-brick/metrics"
	"github.com/giygas/cpic-brick/pipeline"
	"github.com/giygas/cpic-brick/validation"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env is fine, the environment may already be set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	loggingService, err := logging.InitLogger(logging.Options{
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		LogDir:         cfg.LogDir,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		return 1
	}
	defer func() {
		if err := loggingService.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to close log file: %v\n", err)
		}
	}()

	logging.With("run_id", uuid.NewString())
	logging.Info("Starting CPIC pull", "base_url", cfg.BaseURL, "output_dir", cfg.OutputDir, "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := cpic.NewClient(cfg.BaseURL,
		cpic.WithTimeout(cfg.HTTPTimeout),
		cpic.WithRateLimit(cfg.RequestsPerSecond),
	)
	p := pipeline.New(client, brick.NewWriter(cfg.OutputDir), validation.NewTableValidator())

	result := p.Run(ctx)
	if err := p.Summarize(result.Tables); err != nil {
		logging.Error("Failed to create summaries", "error", err)
		return 1
	}

	report, err := brick.Inspect(cfg.OutputDir)
	if err != nil {
		logging.Error("Failed to read back output files", "dir", cfg.OutputDir, "error", err)
		return 1
	}

	fmt.Println(strings.Repeat("=", 60))
	report.Print(os.Stdout)

	metrics.MarkSuccess(time.Now())
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logging.Warn("Failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		}
	}

	if len(result.Failures) > 0 {
		logging.Warn("Some endpoints failed", "count", len(result.Failures))
	}

	return 0
}
