package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/batchblast/batchblast/config"
	"github.com/batchblast/batchblast/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	Stdout io.Writer
}

func main() {
	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			slog.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		if err := writef(os.Stderr, "unknown command %q\n\n", cmdName); err != nil {
			slog.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stdout); err != nil {
			slog.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger := bootstrap.InitLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		Stdout: os.Stdout,
	}
	runErr := cmd.run(cmdCtx, os.Args[2:])
	stop()
	if runErr != nil {
		logger.ErrorContext(ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"submit": {
			name:        "submit",
			description: "Upload a FASTA file, submit it and wait for the job to finish",
			run:         runSubmit,
		},
		"locate": {
			name:        "locate",
			description: "Print download or preview URLs for a folder",
			run:         runLocate,
		},
		"folder": {
			name:        "folder",
			description: "Show or clear the persisted folder id",
			run:         runFolder,
		},
		"settings-show": {
			name:        "settings-show",
			description: "Fetch and print the backend analysis settings",
			run:         runSettingsShow,
		},
		"settings-save": {
			name:        "settings-save",
			description: "Change backend analysis settings",
			run:         runSettingsSave,
		},
		"history": {
			name:        "history",
			description: "List recorded submissions",
			run:         runHistory,
		},
		"migrate": {
			name:        "migrate",
			description: "Run submission history database migrations",
			run:         runMigrations,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: batchblast <command> [flags]\n\n"); err != nil {
		return err
	}
	if err := writef(w, "Available commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeln(w io.Writer, args ...any) error {
	_, err := fmt.Fprintln(w, args...)
	return err
}

// withApp builds the client for one command and closes it afterwards.
func withApp(cmdCtx *commandContext, opts bootstrap.AppOptions, fn func(*bootstrap.App) error) error {
	opts.Config = cmdCtx.Config
	opts.Logger = cmdCtx.Logger
	app, err := bootstrap.NewApp(cmdCtx.Ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("close failed", "error", closeErr)
		}
	}()
	return fn(app)
}
