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

	"github.com/aluiziolira/go-catalog-browser/config"
	"github.com/aluiziolira/go-catalog-browser/models"
	"github.com/aluiziolira/go-catalog-browser/pipeline"
	"github.com/aluiziolira/go-catalog-browser/query"
)

const appName = "catalog"

type options struct {
	export     bool
	categories string
	types      string
	sort       string
	search     string
	pageSize   int
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	opts, err := parseFlags(cfg, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := newLogger(cfg.LogEncoding, cfg.Verbose)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	initial, err := opts.actions()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.serveMetrics(ctx, cfg.MetricsAddr)
	stopController := a.start(ctx)
	defer func() {
		if err := stopController(); err != nil {
			slog.Error("controller shutdown failed", slog.Any("error", err))
		}
	}()

	slog.Info("catalog browser started",
		slog.String("endpoint", a.client.PageURL(query.Serialize(query.NewState(cfg.DefaultPageSize)))),
		slog.Bool("export", opts.export),
	)

	if !opts.export {
		for _, action := range initial {
			if _, err := a.ctrl.Apply(ctx, action); err != nil {
				return err
			}
		}
		return a.interactive(ctx, stdin, stdout)
	}
	return a.runExport(ctx, stdout, initial)
}

func (a *app) runExport(ctx context.Context, stdout io.Writer, initial []query.Action) error {
	writer, err := pipeline.NewWriter(a.cfg.OutputFormat, a.cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			slog.Error("close writer", slog.Any("error", err))
		}
	}()

	p := pipeline.NewPipeline(ctx, writer, a.cfg)
	p.Start(a.cfg.Parallelism)
	if a.cfg.Verbose {
		p.StartMetricsReporting(10 * time.Second)
	}

	summary, err := a.export(ctx, p, initial)
	if closeErr := p.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("pipeline shutdown failed: %w", closeErr)
	}
	if err != nil {
		return err
	}
	if err := writer.Validate(); err != nil {
		return fmt.Errorf("output validation failed: %w", err)
	}

	printSummary(stdout, summary, p.Stats(), a.cfg.OutputFile)
	return nil
}

func parseFlags(cfg *config.Config, args []string) (*options, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	opts := &options{}

	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Catalog backend base URL")
	fs.StringVar(&cfg.ListPath, "list-path", cfg.ListPath, "Path of the product list endpoint")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	fs.IntVar(&cfg.Parallelism, "parallel", cfg.Parallelism, "Maximum concurrent requests")
	fs.DurationVar(&cfg.Delay, "delay", cfg.Delay, "Delay between requests")
	fs.DurationVar(&cfg.RandomDelay, "random-delay", cfg.RandomDelay, "Random jitter added to delay")
	fs.IntVar(&cfg.CacheSize, "cache-size", cfg.CacheSize, "Cached result pages (0 disables caching)")
	fs.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	fs.StringVar(&cfg.LogEncoding, "log-encoding", cfg.LogEncoding, "Log encoding: auto, console or json")
	fs.StringVar(&cfg.OutputFile, "output", cfg.OutputFile, "Export output file path")
	fs.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Export format: csv, json, or dual")
	fs.IntVar(&cfg.MaxPages, "max-pages", cfg.MaxPages, "Maximum pages to export")

	fs.BoolVar(&opts.export, "export", false, "Export every page of the query instead of browsing")
	fs.StringVar(&opts.categories, "category", "", "Comma separated category filters")
	fs.StringVar(&opts.types, "type", "", "Comma separated subcategory filters")
	fs.StringVar(&opts.sort, "sort", "", "Sort mode: relevant, low-high or high-low")
	fs.StringVar(&opts.search, "search", "", "Search text")
	fs.IntVar(&opts.pageSize, "page-size", 0, "Items per page")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)
	return opts, nil
}

// actions turns the filter flags into the actions applied before the first
// interaction.
func (o *options) actions() ([]query.Action, error) {
	var actions []query.Action
	for _, tag := range splitList(o.categories) {
		actions = append(actions, query.ToggleCategory{Tag: tag})
	}
	for _, tag := range splitList(o.types) {
		actions = append(actions, query.ToggleSubCategory{Tag: tag})
	}
	if o.sort != "" {
		mode, err := query.ParseSortMode(o.sort)
		if err != nil {
			return nil, err
		}
		actions = append(actions, query.SetSort{Mode: mode})
	}
	if o.search != "" {
		actions = append(actions, query.SetSearch{Text: o.search})
	}
	if o.pageSize != 0 {
		actions = append(actions, query.SetPageSize{Size: o.pageSize})
	}
	return actions, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printSummary(out io.Writer, summary *models.ExportSummary, stats pipeline.Stats, outputFile string) {
	separator := "--------------------------------------------------"
	fmt.Fprintln(out, "\n"+separator)
	fmt.Fprintln(out, "Export complete")

	duration := summary.Duration()
	itemsPerSec := 0.0
	if duration.Seconds() > 0 {
		itemsPerSec = float64(stats.Processed) / duration.Seconds()
	}

	fmt.Fprintf(out, "  Query:         %s\n", summary.Query)
	fmt.Fprintf(out, "  Pages:         %d of %d\n", summary.PageCount, summary.TotalPages)
	fmt.Fprintf(out, "  Total items:   %d\n", stats.Processed)
	fmt.Fprintf(out, "  Success rate:  %.2f%%\n", summary.SuccessRate())
	fmt.Fprintf(out, "  Errors:        %d\n", summary.ErrorCount)
	fmt.Fprintf(out, "  Failed pages:  %v\n", summary.FailedPages)
	if len(summary.ErrorsByType) > 0 {
		fmt.Fprintf(out, "  Error types:   %v\n", summary.ErrorsByType)
	}
	if len(stats.Validation) > 0 {
		fmt.Fprintf(out, "  Validation:    %v\n", stats.Validation)
	}
	fmt.Fprintf(out, "  Duration:      %v\n", duration)
	fmt.Fprintf(out, "  Items/sec:     %.2f\n", itemsPerSec)
	fmt.Fprintf(out, "  Output file:   %s\n", outputFile)
	fmt.Fprintln(out, separator)
}
