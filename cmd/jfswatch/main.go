package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/just1ngray/jfswatch/internal/command"
	"github.com/just1ngray/jfswatch/internal/config"
	"github.com/just1ngray/jfswatch/internal/explore"
	"github.com/just1ngray/jfswatch/internal/observability"
	"github.com/just1ngray/jfswatch/internal/util"
	"github.com/just1ngray/jfswatch/internal/watcher"
	"github.com/just1ngray/jfswatch/internal/watchfs"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()

	// Custom flag set to avoid os.Exit on parse error
	flags := flag.NewFlagSet("jfswatch", flag.ContinueOnError)
	flags.SetInterspersed(false) // Everything after the first non-flag arg is the command
	cfg.RegisterFlags(flags)
	showVersion := flags.Bool("version", false, "Show version and exit")
	noColor := flags.Bool("no-color", false, "Disable colored change announcements")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: jfswatch [flags] -- command [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Run a command when watched files change. Watch sources are exact\n")
		fmt.Fprintf(os.Stderr, "paths (--exact) and glob patterns (--glob). Command arguments may\n")
		fmt.Fprintf(os.Stderr, "contain $diff, $path and $mtime, substituted per detected change.\n\n")
		fmt.Fprintln(os.Stderr, flags.FlagUsages())
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}

	if *showVersion {
		fmt.Printf("jfswatch %s\n", version)
		return 0
	}

	if err := cfg.Finalize(flags, flags.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		flags.Usage()
		return 2
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if *noColor {
		color.NoColor = true
	}

	// Build explorers; a malformed glob is fatal here, before any polling.
	warnings := util.NewLimiter(0.1, 5)
	explorers := make([]explore.Explorer, 0, len(cfg.Exact)+len(cfg.Glob))
	for _, path := range cfg.Exact {
		explorers = append(explorers, explore.NewExact(path, warnings))
	}
	for _, pattern := range cfg.Glob {
		g, err := explore.NewGlob(pattern, warnings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return 2
		}
		explorers = append(explorers, g)
	}

	w, err := watcher.New(
		explorers,
		command.NewTemplate(cfg.Cmd),
		command.NewRunner(cfg.Verbose),
		cfg.Interval(),
		cfg.Sleep(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return 2
	}
	w.OnChange = announce

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := observability.NewServer(cfg.MetricsAddr, w)
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Stop(shutdownCtx)
		}()
	}

	slog.Info("starting", "version", version,
		"interval", cfg.Interval(), "sleep", cfg.Sleep(),
		"sources", len(explorers), "cmd", cfg.Cmd)

	if err := w.Run(ctx); err != nil {
		slog.Error("watcher failed", "error", err)
		return 1
	}

	slog.Info("stopped")
	return 0
}

var (
	newColor      = color.New(color.FgGreen)
	modifiedColor = color.New(color.FgYellow)
	deletedColor  = color.New(color.FgRed)
)

func announce(change watchfs.Change) {
	switch change.Kind {
	case watchfs.New:
		newColor.Printf("'%s' is new\n", change.Path)
	case watchfs.Modified:
		modifiedColor.Printf("'%s' was modified\n", change.Path)
	case watchfs.Deleted:
		deletedColor.Printf("'%s' was deleted\n", change.Path)
	}
}
