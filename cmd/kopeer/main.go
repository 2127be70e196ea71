package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bamsammich/kopeer"
	"github.com/bamsammich/kopeer/internal/config"
	"github.com/bamsammich/kopeer/internal/event"
	"github.com/bamsammich/kopeer/internal/filter"
	"github.com/bamsammich/kopeer/internal/stats"
	"github.com/bamsammich/kopeer/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "string" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// flags holds every root command flag value.
type flags struct {
	limit       int
	dereference bool
	ignore      []string
	filterFile  string
	minSizeStr  string
	maxSizeStr  string
	verify      bool
	bwLimitStr  string
	verbose     bool
	quiet       bool
	logFile     string
	showVersion bool
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags
	chain := filter.NewChain()

	rootCmd := &cobra.Command{
		Use:   "kopeer [flags] <source> <destination>",
		Short: "Copy files and directory trees with bounded concurrency",
		Args: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				return nil
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.showVersion {
				fmt.Fprintf(stdout, "kopeer %s\n", version)
				return nil
			}
			return copyCmd(cmd, args[0], args[1], &f, chain, stdout, stderr)
		},
	}

	fl := rootCmd.Flags()
	fl.BoolVar(&f.showVersion, "version", false, "print version and exit")
	fl.IntVarP(&f.limit, "limit", "j", 0,
		fmt.Sprintf("maximum simultaneous filesystem operations (default %d)", kopeer.DefaultLimit))
	fl.BoolVarP(&f.dereference, "dereference", "L", false, "copy what symlinks point to")
	fl.StringArrayVar(&f.ignore, "ignore", nil, "skip paths matching GLOB (repeatable)")
	fl.Var(&filterFlag{chain: chain}, "exclude", "exclude files matching PATTERN (repeatable)")
	fl.Var(&filterFlag{chain: chain, include: true}, "include", "include files matching PATTERN (repeatable)")
	fl.StringVar(&f.filterFile, "filter-from", "", "read filter rules from FILE")
	fl.StringVar(&f.minSizeStr, "min-size", "", "skip files smaller than SIZE (e.g. 1M, 100K)")
	fl.StringVar(&f.maxSizeStr, "max-size", "", "skip files larger than SIZE (e.g. 1G, 500M)")
	fl.BoolVar(&f.verify, "verify", false, "verify checksums after copy (BLAKE3)")
	fl.StringVar(&f.bwLimitStr, "bwlimit", "", "bandwidth limit in bytes per second (e.g. 100M, 1G)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "verbose output")
	fl.BoolVarP(&f.quiet, "quiet", "q", false, "suppress all output except errors")
	fl.StringVar(&f.logFile, "log", "", "write structured JSON log to FILE")
	fl.VisitAll(func(pf *pflag.Flag) {
		if pf.Name == "exclude" || pf.Name == "include" {
			pf.NoOptDefVal = ""
		}
	})

	rootCmd.AddCommand(newDocsCmd())
	return rootCmd
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: CLI entry point wires every flag
func copyCmd(
	cmd *cobra.Command,
	src, dst string,
	f *flags,
	chain *filter.Chain,
	stdout, stderr io.Writer,
) error {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("failed to load config", "error", err)
	}
	applyConfigDefaults(cmd, cfg.Defaults, f)

	var bwLimit int64
	if f.bwLimitStr != "" {
		bwLimit, err = filter.ParseSize(f.bwLimitStr)
		if err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	logLevel := slog.LevelWarn
	if f.verbose {
		logLevel = slog.LevelDebug
	} else if !f.quiet {
		logLevel = slog.LevelInfo
	}
	textHandler := slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel})
	var logHandler slog.Handler = textHandler
	if f.logFile != "" {
		lf, lfErr := os.Create(f.logFile)
		if lfErr != nil {
			return fmt.Errorf("open log file: %w", lfErr)
		}
		defer lf.Close()
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{Level: slog.LevelDebug})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	if f.filterFile != "" {
		if err := chain.LoadFile(afero.NewOsFs(), f.filterFile); err != nil {
			return fmt.Errorf("load filter file: %w", err)
		}
	}
	if f.minSizeStr != "" {
		n, err := filter.ParseSize(f.minSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --min-size: %w", err)
		}
		chain.SetMinSize(n)
	}
	if f.maxSizeStr != "" {
		n, err := filter.ParseSize(f.maxSizeStr)
		if err != nil {
			return fmt.Errorf("invalid --max-size: %w", err)
		}
		chain.SetMaxSize(n)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	collector := stats.NewCollector()
	events := make(chan event.Event, 256)

	// With --log, events are also written as structured records before
	// they reach the presenter.
	presenterEvents := (<-chan event.Event)(events)
	if f.logFile != "" {
		teed := make(chan event.Event, 256)
		go func() {
			for ev := range events {
				attrs := []slog.Attr{
					slog.String("type", ev.Type.String()),
					slog.String("path", ev.Path),
					slog.Int64("size", ev.Size),
				}
				if ev.Error != nil {
					attrs = append(attrs, slog.String("error", ev.Error.Error()))
				}
				logger.LogAttrs(context.Background(), slog.LevelDebug, "kopeer.event", attrs...)
				teed <- ev
			}
			close(teed)
		}()
		presenterEvents = teed
	}

	presenter := ui.NewPresenter(ui.Config{
		Writer:    stdout,
		ErrWriter: stderr,
		Stats:     collector,
		DstRoot:   dst,
		Theme:     ui.NewTheme(deref(cfg.Theme.Success), deref(cfg.Theme.Failure), deref(cfg.Theme.Muted)),
		IsTTY:     ui.IsTerminal(stderr),
		Quiet:     f.quiet,
		Verbose:   f.verbose,
	})

	opts := kopeer.Options{
		Limit:       f.limit,
		Dereference: f.dereference,
		Ignore:      f.ignore,
		Verify:      f.verify,
		BWLimit:     bwLimit,
		Events:      events,
		Stats:       collector,
		Logger:      logger,
	}
	if !chain.Empty() {
		opts.Rules = chain
	}

	slog.Debug("starting copy",
		"src", src,
		"dst", dst,
		"limit", f.limit,
		"dereference", f.dereference,
		"verify", f.verify,
	)

	var presenterErr error
	var presenterWg sync.WaitGroup
	presenterWg.Add(1)
	go func() {
		defer presenterWg.Done()
		presenterErr = presenter.Run(presenterEvents)
	}()

	copyErr := kopeer.Copy(ctx, src, dst, opts)
	stop()
	close(events)
	presenterWg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(stderr, "presenter: %v\n", presenterErr)
	}

	if !f.quiet {
		if summary := presenter.Summary(); summary != "" {
			fmt.Fprintln(stderr, summary)
		}
	}

	if copyErr != nil {
		slog.Error("copy failed", "error", copyErr)
		snap := collector.Snapshot()
		if snap.FilesCopied+snap.LinksCreated > 0 {
			return &exitError{code: 1} // partial failure
		}
		return &exitError{code: 2} // total failure
	}
	return nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, f *flags) {
	changed := cmd.Flags().Changed
	if !changed("limit") && defaults.Limit != nil {
		f.limit = *defaults.Limit
	}
	if !changed("dereference") && defaults.Dereference != nil {
		f.dereference = *defaults.Dereference
	}
	if !changed("verify") && defaults.Verify != nil {
		f.verify = *defaults.Verify
	}
	if !changed("bwlimit") && defaults.BWLimit != nil {
		f.bwLimitStr = *defaults.BWLimit
	}
	if !changed("ignore") && len(defaults.Ignore) > 0 {
		f.ignore = append([]string(nil), defaults.Ignore...)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
