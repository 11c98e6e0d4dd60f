// Package cli implements the datesniff command.
package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/nao1215/datesniff"
	"github.com/nao1215/datesniff/internal/config"
	"github.com/nao1215/datesniff/internal/logging"
)

// Exit codes
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// target is one table to evaluate
type target struct {
	name  string
	frame datesniff.Frame
}

// result is the outcome for one table
type result struct {
	Table    string                   `json:"table"`
	Verdicts datesniff.Verdicts       `json:"verdicts"`
	Columns  []datesniff.ColumnReport `json:"columns,omitempty"`

	// order lists the evaluated columns as they appear in the table
	order []string
}

// options are the parsed command line flags
type options struct {
	configPath string
	format     string
	report     bool
	logLevel   string
	logFormat  string
	set        map[string]bool
}

// Run executes the command with args (without the program name) and returns
// the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, paths, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "datesniff: at least one PATH is required")
		return ExitUsage
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "datesniff: %v\n", err)
		return ExitUsage
	}
	opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "datesniff: %v\n", err)
		return ExitUsage
	}

	logger, err := logging.Setup(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(stderr, "datesniff: %v\n", err)
		return ExitUsage
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		fmt.Fprintf(stderr, "datesniff: %v\n", err)
		return ExitUsage
	}
	sniffer := datesniff.NewSniffer(
		datesniff.WithCatalog(catalog),
		datesniff.WithLogger(logger),
		datesniff.WithMinLength(cfg.Sniffer.MinLength),
	)

	targets, closeAll, err := collectTargets(ctx, paths, cfg.Load.NullValues, logger)
	defer closeAll()
	if err != nil {
		logger.Error("failed to load input", "error", err)
		return ExitError
	}

	results, err := evaluateAll(ctx, sniffer, targets, cfg.Load.Concurrency, cfg.Output.Report)
	if err != nil {
		logger.Error("failed to evaluate", "error", err)
		return ExitError
	}

	if err := writeResults(stdout, results, cfg.Output.Format, cfg.Output.Report); err != nil {
		logger.Error("failed to write output", "error", err)
		return ExitError
	}
	return ExitOK
}

// parseFlags parses args. Usage errors are already printed to stderr.
func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("datesniff", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.format, "format", "text", "output format: text or json")
	fs.BoolVar(&opts.report, "report", false, "print per-column counters")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: datesniff [flags] PATH...")
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Reports which text columns of each table hold dates.")
		fmt.Fprintln(fs.Output(), "PATH is a file, a directory or a SQLite database (.db, .sqlite, .sqlite3).")
		fmt.Fprintln(fs.Output(), "Files:", strings.Join(datesniff.SupportedFilePatterns(), " "))
		fmt.Fprintln(fs.Output())
		fmt.Fprintln(fs.Output(), "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	return opts, fs.Args(), nil
}

// apply overrides configuration values with explicitly set flags
func (o *options) apply(cfg *config.Config) {
	if o.set["format"] {
		cfg.Output.Format = o.format
	}
	if o.set["report"] {
		cfg.Output.Report = o.report
	}
	if o.set["log-level"] {
		cfg.Logging.Level = o.logLevel
	}
	if o.set["log-format"] {
		cfg.Logging.Format = o.logFormat
	}
}

// collectTargets loads every path in order. SQLite databases stay open until
// the returned close function runs; other inputs are loaded into memory.
func collectTargets(ctx context.Context, paths, nullValues []string, logger *slog.Logger) ([]target, func(), error) {
	var (
		targets []target
		dbs     []*sql.DB
	)
	closeAll := func() {
		for _, db := range dbs {
			_ = db.Close() // Ignore close error in cleanup
		}
	}

	for _, path := range paths {
		if datesniff.IsSQLitePath(path) {
			db, err := openSQLite(path)
			if err != nil {
				return nil, closeAll, err
			}
			dbs = append(dbs, db)

			frames, err := datesniff.SQLiteFrames(ctx, db)
			if err != nil {
				return nil, closeAll, fmt.Errorf("%s: %w", path, err)
			}
			for _, f := range frames {
				targets = append(targets, target{name: f.Name(), frame: f})
			}
			logger.Info("database opened", "path", path, "tables", len(frames))
			continue
		}

		loader, err := datesniff.NewLoader().AddPath(path).WithNullValues(nullValues...).Build(ctx)
		if err != nil {
			return nil, closeAll, err
		}
		tables, err := loader.Load(ctx)
		if err != nil {
			return nil, closeAll, err
		}
		for _, t := range tables {
			targets = append(targets, target{name: t.Name(), frame: t})
		}
		logger.Info("input loaded", "path", path, "tables", len(tables))
	}
	return targets, closeAll, nil
}

// openSQLite opens an existing database file. sql.Open would create a
// missing file, so existence is checked first.
func openSQLite(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", datesniff.ErrFileNotFound, path)
		}
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return db, nil
}

// evaluateAll evaluates the targets with at most limit running at once.
// Results keep the order of targets.
func evaluateAll(ctx context.Context, sniffer *datesniff.Sniffer, targets []target, limit int, withReport bool) ([]result, error) {
	results := make([]result, len(targets))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, tgt := range targets {
		eg.Go(func() error {
			reports, err := sniffer.EvaluateReport(ctx, tgt.frame)
			if err != nil {
				return fmt.Errorf("table %s: %w", tgt.name, err)
			}
			r := result{Table: tgt.name, Verdicts: make(datesniff.Verdicts, len(reports))}
			for _, rep := range reports {
				r.Verdicts[rep.Name] = rep.Verdict
				r.order = append(r.order, rep.Name)
			}
			if withReport {
				r.Columns = reports
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeResults prints results as an aligned table or as JSON
func writeResults(w io.Writer, results []result, format string, withReport bool) error {
	if strings.EqualFold(format, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if withReport {
		fmt.Fprintln(tw, "TABLE\tCOLUMN\tDATE\tNON_NULL\tPARSABLE\tREJECTED")
	} else {
		fmt.Fprintln(tw, "TABLE\tCOLUMN\tDATE")
	}
	for _, r := range results {
		if withReport {
			for _, c := range r.Columns {
				rejected := "-"
				if c.Disqualified {
					rejected = strconv.Quote(c.Rejected)
				}
				fmt.Fprintf(tw, "%s\t%s\t%t\t%d\t%d\t%s\n",
					r.Table, c.Name, c.Verdict, c.NonNull, c.Parsable, rejected)
			}
			continue
		}
		for _, name := range r.order {
			fmt.Fprintf(tw, "%s\t%s\t%t\n", r.Table, name, r.Verdicts[name])
		}
	}
	return tw.Flush()
}
