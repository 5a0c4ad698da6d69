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
	"syscall"

	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"csvaudit/internal/app"
	"csvaudit/internal/config"
	"csvaudit/internal/infrastructure"
	"csvaudit/internal/inspect"
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env is what every subcommand runs against
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	inspector *inspect.Inspector
	opts      options
	stdout    io.Writer
	stderr    io.Writer
}

// run dispatches args to a subcommand and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return exitUsage
	}

	name := args[0]
	if name == "help" || name == "-h" || name == "-help" || name == "--help" {
		printUsage(stdout)
		return exitOK
	}

	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(stderr, "csvaudit: unknown command %q\n\n", name)
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "csvaudit: %v\n", err)
		return exitError
	}

	fs := flag.NewFlagSet("csvaudit "+cmd.name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	opts := bindFlags(fs, cfg)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: csvaudit %s [flags]%s\n\n%s\n\nflags:\n", cmd.name, cmd.args, cmd.summary)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if opts.file == "" && fs.NArg() > 0 {
		opts.file = fs.Arg(0)
	}

	if !opts.verbose && cmd.name != "serve" {
		cfg.Logging.Level = "warn"
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "csvaudit: failed to initialize logger: %v\n", err)
		return exitError
	}
	defer infrastructure.CloseLogFile()

	var extra []inspect.Option
	if opts.progress {
		extra = append(extra, inspect.WithProgress(progressPrinter(stderr)))
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
		inspector: app.NewInspector(cfg, logger,
			tracenoop.NewTracerProvider().Tracer(config.AppName),
			infrastructure.NoopInspectionMetrics(),
			extra...),
		opts:   *opts,
		stdout: stdout,
		stderr: stderr,
	}

	if err := cmd.run(ctx, e); err != nil {
		logger.Debug("command failed", slog.String("command", cmd.name), slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "csvaudit %s: %v\n", cmd.name, err)
		return exitError
	}
	return exitOK
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "%s %s inspects CSV files for data-quality problems.\n\n", config.AppName, config.AppVersion)
	fmt.Fprintln(w, "usage: csvaudit <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-8s %s\n", "help", "show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Run "csvaudit <command> -h" for the flags of a command.`)
}
