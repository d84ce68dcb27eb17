package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"safetyreport/internal/config"
	"safetyreport/internal/infrastructure"
	"safetyreport/internal/operations"
	"safetyreport/internal/validation"
	"safetyreport/pkg/contracts"
)

// options are the command line flags
type options struct {
	configPath string
	driver     string
	dsn        string
	dateRange  string
	from       string
	to         string
	out        string
	summary    bool
	summarySet bool
	version    bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		return 1
	}
	paths.Apply(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create directories", "error", err)
		return 1
	}
	resolveFiles(cfg, paths)
	if !opts.summarySet {
		opts.summary = cfg.Report.PrintSummary
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		return 1
	}
	defer infrastructure.CloseLogFile()
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", "error", err)
		}
	}()

	var p *prompter
	if isInteractive(stdin) {
		p = newPrompter(stdin, stdout)
	}
	req, err := buildRequest(opts, cfg, paths, p)
	if err != nil {
		logger.Error("Invalid report request", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.WithTraceID(ctx, infrastructure.GenerateRunID())

	manager, err := operations.NewManager(cfg, providers)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create report pipeline", "error", err)
		return 1
	}

	summary, runErr := manager.Run(ctx, req)

	if cfg.Telemetry.MetricsFile != "" {
		if err := providers.WriteMetrics(cfg.Telemetry.MetricsFile); err != nil {
			logger.WarnContext(ctx, "Failed to write metrics file",
				"path", cfg.Telemetry.MetricsFile,
				"error", err)
		}
	}

	if opts.summary {
		printSummary(stdout, summary, runErr)
	}

	if runErr != nil {
		logger.ErrorContext(ctx, "Safety report failed",
			"step", operations.FailedStep(runErr),
			"category", operations.Category(runErr),
			"error", runErr)
		return 1
	}
	return 0
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet(config.AppName, flag.ContinueOnError)
	opts := &options{}

	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.driver, "driver", "", "database driver: pgx or sqlite (defaults to config)")
	fs.StringVar(&opts.dsn, "dsn", "", "database connection string or sqlite file")
	fs.StringVar(&opts.dateRange, "range", "", `review date range, "M/D/YYYY-M/D/YYYY"`)
	fs.StringVar(&opts.from, "from", "", "first review date, M/D/YYYY or YYYY-MM-DD")
	fs.StringVar(&opts.to, "to", "", "last review date, M/D/YYYY or YYYY-MM-DD")
	fs.StringVar(&opts.out, "out", "", "output workbook path (defaults to the reports directory)")
	fs.BoolVar(&opts.summary, "summary", true, "print a run summary to stdout")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "summary" {
			opts.summarySet = true
		}
	})
	if opts.dateRange != "" && (opts.from != "" || opts.to != "") {
		err := fmt.Errorf("-range cannot be combined with -from or -to")
		fmt.Fprintln(fs.Output(), err)
		return nil, err
	}
	return opts, nil
}

// resolveFiles places relative log, trace and metrics files in the logs directory
func resolveFiles(cfg *config.Config, paths *config.Paths) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return paths.GetLogPath(filepath.Base(p))
	}
	cfg.Logging.FilePath = resolve(cfg.Logging.FilePath)
	cfg.Telemetry.TraceFile = resolve(cfg.Telemetry.TraceFile)
	cfg.Telemetry.MetricsFile = resolve(cfg.Telemetry.MetricsFile)
}

// buildRequest combines flags, config and, when p is non-nil, answers to
// prompts for anything still missing
func buildRequest(opts *options, cfg *config.Config, paths *config.Paths, p *prompter) (validation.ReportRequest, error) {
	req := validation.ReportRequest{
		Driver:     firstNonEmpty(opts.driver, cfg.Database.Driver),
		DSN:        firstNonEmpty(opts.dsn, cfg.Database.DSN),
		OutputPath: firstNonEmpty(opts.out, cfg.Report.OutputPath),
	}

	var err error
	if req.DSN == "" && p != nil {
		if req.DSN, err = p.ask("Database (DSN or sqlite file)"); err != nil {
			return req, err
		}
	}

	switch {
	case opts.dateRange != "":
		req.From, req.To, err = validation.ParseDateRange(opts.dateRange)
	case opts.from != "" || opts.to != "":
		req.From, req.To, err = validation.ParseBounds(opts.from, opts.to)
	case p != nil:
		var text string
		if text, err = p.ask("Date range (M/D/YYYY-M/D/YYYY)"); err != nil {
			return req, err
		}
		req.From, req.To, err = validation.ParseDateRange(text)
	}
	if err != nil {
		return req, err
	}

	if req.OutputPath == "" && p != nil && !req.From.IsZero() {
		def := paths.DefaultReportPath(req.From, req.To)
		if req.OutputPath, err = p.askDefault("Save workbook as", def); err != nil {
			return req, err
		}
	}
	if req.OutputPath == "" && !req.From.IsZero() {
		req.OutputPath = paths.DefaultReportPath(req.From, req.To)
	}

	return req, req.Validate()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// isInteractive reports whether r is a terminal
func isInteractive(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// prompter asks for missing values on the console
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) ask(label string) (string, error) {
	return p.askDefault(label, "")
}

func (p *prompter) askDefault(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) && def != "" {
			return def, nil
		}
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// printSummary writes the console summary of a run
func printSummary(w io.Writer, summary *operations.RunSummary, runErr error) {
	if summary == nil {
		return
	}

	fmt.Fprintln(w, contracts.GetVersionString())
	fmt.Fprintf(w, "Run:     %s\n", summary.RunID)
	fmt.Fprintf(w, "Range:   %s - %s\n", summary.From.Format(config.DateLayout), summary.To.Format(config.DateLayout))
	fmt.Fprintf(w, "Records: %d\n", summary.RecordCount)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tSTATUS\tDURATION")
	for _, s := range summary.Steps {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Status, s.Duration.Round(time.Millisecond))
	}
	tw.Flush()
	fmt.Fprintln(w)

	if runErr != nil {
		fmt.Fprintf(w, "FAILED after %s: %v\n", summary.Duration.Round(time.Millisecond), runErr)
		return
	}
	fmt.Fprintf(w, "Saved %s in %s\n", summary.OutputPath, summary.Duration.Round(time.Millisecond))
}
