// Command colframe joins two CSV files on a key column and writes the result
// to standard output.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/paveg/colframe"
	"github.com/paveg/colframe/internal/config"
	"github.com/paveg/colframe/internal/version"
)

var errUsage = errors.New("usage")

type options struct {
	left, right     string
	leftOn, rightOn string
	how             string
	suffix          string
	configPath      string
	format          string
	verbose         bool
	version         bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	if opts.version {
		fmt.Fprint(stdout, version.Info().String())
		return 0
	}

	config.SetLogOutput(stderr)
	if err := execute(opts, stdout); err != nil {
		config.Logger().Error("join failed", slog.String("error", err.Error()))
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("colframe", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.left, "left", "", "left CSV file")
	fs.StringVar(&opts.right, "right", "", "right CSV file")
	fs.StringVar(&opts.leftOn, "left-on", "", "key column of the left file")
	fs.StringVar(&opts.rightOn, "right-on", "", "key column of the right file (default: -left-on)")
	fs.StringVar(&opts.how, "how", "inner", "join type: inner, left or outer")
	fs.StringVar(&opts.suffix, "suffix", "", "suffix for right columns whose name is taken")
	fs.StringVar(&opts.configPath, "config", "", "JSON or YAML configuration file (default: COLFRAME_* environment)")
	fs.StringVar(&opts.format, "format", "csv", "output format: csv or json")
	fs.BoolVar(&opts.verbose, "verbose", false, "log join details to stderr")
	fs.BoolVar(&opts.version, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: colframe -left a.csv -right b.csv -left-on key [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}

	err := fs.Parse(args)
	return opts, err
}

func execute(opts options, stdout io.Writer) error {
	if opts.left == "" || opts.right == "" || opts.leftOn == "" {
		return fmt.Errorf("%w: -left, -right and -left-on are required", errUsage)
	}

	joinType, err := parseJoinType(opts.how)
	if err != nil {
		return err
	}
	write, err := writerFor(opts.format)
	if err != nil {
		return err
	}

	cfg := config.LoadFromEnv()
	if opts.configPath != "" {
		if cfg, err = colframe.LoadConfig(opts.configPath); err != nil {
			return err
		}
	}
	if opts.verbose {
		cfg.VerboseLogging = true
		colframe.EnableMetrics()
		defer logSummary()
	}
	cfg, notes, err := config.NewConfigValidator().Validate(cfg)
	if err != nil {
		return err
	}
	config.SetGlobalConfig(cfg)
	for _, note := range notes {
		config.Logger().Debug("config", slog.String("note", note))
	}

	mem := memory.NewGoAllocator()
	return colframe.WithMemoryManager(func(m *colframe.MemoryManager) error {
		left, err := readCSVFile(opts.left, mem)
		if err != nil {
			return err
		}
		m.Track(left)

		right, err := readCSVFile(opts.right, mem)
		if err != nil {
			return err
		}
		m.Track(right)

		joined, err := left.Join(right, &colframe.JoinOptions{
			Type:     joinType,
			LeftKey:  opts.leftOn,
			RightKey: opts.rightOn,
			Suffix:   opts.suffix,
		})
		if err != nil {
			return err
		}
		m.Track(joined)

		return write(stdout, joined)
	})
}

func logSummary() {
	summary := colframe.Summary()
	config.Logger().Debug("summary",
		slog.Int("operations", summary.TotalOperations),
		slog.Int64("rows_out", summary.TotalRowsOut),
		slog.Duration("duration", summary.TotalDuration),
	)
	colframe.DisableMetrics()
}

func parseJoinType(how string) (colframe.JoinType, error) {
	switch how {
	case "inner":
		return colframe.InnerJoin, nil
	case "left":
		return colframe.LeftJoin, nil
	case "outer":
		return colframe.OuterJoin, nil
	default:
		return 0, fmt.Errorf("%w: unknown join type %q", errUsage, how)
	}
}

func writerFor(format string) (func(io.Writer, *colframe.DataFrame) error, error) {
	switch format {
	case "csv":
		return colframe.WriteCSV, nil
	case "json":
		return colframe.WriteJSON, nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", errUsage, format)
	}
}

func readCSVFile(path string, mem memory.Allocator) (*colframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	df, err := colframe.ReadCSV(f, mem)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return df, nil
}
