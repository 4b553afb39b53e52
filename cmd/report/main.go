// Command report prints analytics for one property and year.
//
//	report [flags] dataset|kpi|pickup|pace|compare
//
// JSON goes to stdout unless -out is set. dataset also exports csv and xlsx,
// pickup and pace export csv.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/app"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/exporter"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/infrastructure"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/services"
	"github.com/DevLab-Dome/kross-dashboard-2026/pkg/contracts/domain"
)

var errUsage = errors.New("usage: report [flags] dataset|kpi|pickup|pace|compare")

type options struct {
	configPath string
	command    string
	query      domain.Query
	metric     string
	end        time.Time
	recent     string
	previous   string
	format     string
	out        string
}

func parseFlags(args []string, now time.Time, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (defaults to the standard locations)")
	property := fs.String("property", "", "property label, folder or upper-snake name")
	year := fs.Int("year", now.Year(), "year")
	month := fs.Int("month", 0, "month 1-12 for a monthly kpi report")
	rooms := fs.Int("rooms", 0, "room count used when records carry none")
	metric := fs.String("metric", "", "kpi comparison metric")
	end := fs.String("end", "", "year-to-date end date, YYYY-MM-DD")
	recent := fs.String("recent", "", "pickup: recent snapshot filename")
	previous := fs.String("previous", "", "pickup: previous snapshot filename")
	format := fs.String("format", "json", "json | csv | xlsx")
	out := fs.String("out", "", "output file (defaults to stdout)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() != 1 {
		return options{}, errUsage
	}

	opts := options{
		configPath: *configPath,
		command:    fs.Arg(0),
		query:      domain.Query{Property: *property, Year: *year, Month: *month, RoomsHint: *rooms},
		metric:     *metric,
		recent:     *recent,
		previous:   *previous,
		format:     *format,
		out:        *out,
	}
	if opts.query.Property == "" {
		return options{}, fmt.Errorf("-property is required")
	}
	if opts.query.Month < 0 || opts.query.Month > 12 {
		return options{}, fmt.Errorf("month %d out of range", opts.query.Month)
	}
	if *end != "" {
		t, err := time.Parse(time.DateOnly, *end)
		if err != nil {
			return options{}, fmt.Errorf("invalid -end: %w", err)
		}
		opts.end = t
	}

	allowed := map[string][]string{
		"dataset": {"json", "csv", "xlsx"},
		"kpi":     {"json"},
		"pickup":  {"json", "csv"},
		"pace":    {"json", "csv"},
		"compare": {"json"},
	}
	formats, ok := allowed[opts.command]
	if !ok {
		return options{}, fmt.Errorf("unknown command %q: %w", opts.command, errUsage)
	}
	for _, f := range formats {
		if f == opts.format {
			return opts, nil
		}
	}
	return options{}, fmt.Errorf("%s does not support format %q", opts.command, opts.format)
}

// run executes one report and writes it to w
func run(ctx context.Context, svc *services.AnalyticsService, opts options, w io.Writer) error {
	var (
		payload any
		export  []byte
		err     error
	)
	switch opts.command {
	case "dataset":
		var ds *domain.ConsolidatedDataset
		if ds, err = svc.Dataset(ctx, opts.query); err != nil {
			return err
		}
		switch opts.format {
		case "csv":
			export, err = exporter.DatasetCSV(ds)
		case "xlsx":
			export, err = exporter.DatasetXLSX(ds)
		default:
			payload = ds
		}
	case "kpi":
		payload, err = svc.KPI(ctx, opts.query, services.KPIOptions{Metric: opts.metric, End: opts.end})
	case "pickup":
		var report *services.PickupReport
		if report, err = svc.Pickup(ctx, opts.query, opts.recent, opts.previous); err != nil {
			return err
		}
		if opts.format == "csv" {
			export, err = exporter.ComparisonCSV(report.Result)
		} else {
			payload = report
		}
	case "pace":
		var report *services.PaceReport
		if report, err = svc.Pace(ctx, opts.query); err != nil {
			return err
		}
		if opts.format == "csv" {
			export, err = exporter.ComparisonCSV(report.Result)
		} else {
			payload = report
		}
	case "compare":
		payload, err = svc.CompareBudget(ctx, opts.query)
	default:
		return errUsage
	}
	if err != nil {
		return err
	}
	if opts.format != "json" {
		_, err = w.Write(export)
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
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
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := loadConfig(opts.configPath)
	// stdout carries the report
	logger := infrastructure.NewLogger(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	core, err := app.BuildCore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to build analytics core", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer core.Close()

	var w io.Writer = os.Stdout
	if opts.out != "" {
		f, err := os.Create(opts.out)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	if err := run(ctx, core.Analytics, opts, w); err != nil {
		logger.Error("Report failed",
			slog.String("command", opts.command),
			slog.String("property", opts.query.Property),
			slog.Int("year", opts.query.Year),
			slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
