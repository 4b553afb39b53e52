// Command indexsync rebuilds the index.json of every property's snapshot
// folders, once or on a cron schedule.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/app"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/infrastructure"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/services"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

type options struct {
	configPath string
	properties []string
	years      []int
	category   domain.Category
	schedule   string
}

func parseFlags(args []string, now time.Time, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("indexsync", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (defaults to the standard locations)")
	property := fs.String("property", "", "comma separated properties (defaults to all)")
	year := fs.Int("year", 0, "year to rebuild (defaults to the current and previous year)")
	category := fs.String("category", "", "Forecast | History_Baseline (defaults by year)")
	schedule := fs.String("schedule", "", "cron expression; runs once when empty")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{configPath: *configPath, schedule: *schedule, category: domain.Category(*category)}
	if opts.category != "" && !opts.category.Valid() {
		return options{}, fmt.Errorf("unknown category %q", *category)
	}
	for _, p := range strings.Split(*property, ",") {
		if p = strings.TrimSpace(p); p != "" {
			opts.properties = append(opts.properties, p)
		}
	}
	switch {
	case *year == 0:
		opts.years = []int{now.Year() - 1, now.Year()}
	case *year < 2000 || *year > 2100:
		return options{}, fmt.Errorf("year %d out of range", *year)
	default:
		opts.years = []int{*year}
	}
	if opts.schedule != "" {
		if _, err := cron.ParseStandard(opts.schedule); err != nil {
			return options{}, fmt.Errorf("invalid schedule %q: %w", opts.schedule, err)
		}
	}
	return opts, nil
}

// syncer rebuilds indexes through the analytics service
type syncer struct {
	service *services.AnalyticsService
	logger  *slog.Logger
}

// syncAll rebuilds every property/year pair. Failures are collected and
// returned together; the remaining pairs still run.
func (s *syncer) syncAll(ctx context.Context, properties []string, years []int, category domain.Category) (int, error) {
	if len(properties) == 0 {
		for _, p := range s.service.Properties() {
			properties = append(properties, p.Folder)
		}
	}

	var errs []error
	rebuilt := 0
	for _, prop := range properties {
		for _, year := range years {
			names, err := s.service.RebuildIndex(ctx, domain.Query{Property: prop, Year: year}, category)
			if err != nil {
				s.logger.ErrorContext(ctx, "Index rebuild failed",
					slog.String("property", prop),
					slog.Int("year", year),
					slog.String("error", err.Error()))
				errs = append(errs, fmt.Errorf("%s %d: %w", prop, year, err))
				continue
			}
			rebuilt++
			s.logger.InfoContext(ctx, "Index rebuilt",
				slog.String("property", prop),
				slog.Int("year", year),
				slog.Int("entries", len(names)))
		}
	}
	return rebuilt, errors.Join(errs...)
}

func loadConfig(path string) *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	return cfg
}

func main() {
	opts, err := parseFlags(os.Args[1:], time.Now(), os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		slog.Error("Invalid arguments", "error", err)
		os.Exit(2)
	}

	cfg := loadConfig(opts.configPath)
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := app.BuildCore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to build analytics core", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer core.Close()

	s := &syncer{service: core.Analytics, logger: logger}
	runOnce := func(ctx context.Context) error {
		start := time.Now()
		n, err := s.syncAll(ctx, opts.properties, opts.years, opts.category)
		logger.InfoContext(ctx, "Index sync finished",
			slog.Int("rebuilt", n),
			slog.Duration("duration", time.Since(start)))
		return err
	}

	if opts.schedule == "" {
		if err := runOnce(ctx); err != nil {
			os.Exit(1)
		}
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(opts.schedule, func() { _ = runOnce(ctx) }); err != nil {
		logger.Error("Failed to schedule index sync", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Index sync scheduled", slog.String("schedule", opts.schedule))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Index sync stopped")
}
