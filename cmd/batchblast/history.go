package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/batchblast/batchblast/internal/bootstrap"
	"github.com/batchblast/batchblast/internal/domain/model"
)

const defaultMigrationTimeout = 5 * time.Minute

type historyOptions struct {
	JobID string
	Limit int
}

type migrateOptions struct {
	Timeout time.Duration
}

func parseHistoryFlags(args []string) (historyOptions, error) {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := historyOptions{Limit: 20}
	fs.StringVar(&opts.JobID, "job", "", "Show a single job")
	fs.IntVar(&opts.Limit, "limit", 20, "Maximum rows to list (max 100)")
	if err := fs.Parse(args); err != nil {
		return historyOptions{}, err
	}
	if opts.Limit <= 0 {
		return historyOptions{}, errors.New("--limit must be greater than zero")
	}
	opts.JobID = strings.TrimSpace(opts.JobID)
	return opts, nil
}

func runHistory(cmdCtx *commandContext, args []string) error {
	opts, err := parseHistoryFlags(args)
	if err != nil {
		return err
	}

	cfg := cmdCtx.Config.Postgres
	cfg.RunMigrationsOnStart = false
	repo, closeDB, err := bootstrap.OpenHistory(cmdCtx.Ctx, cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeDB(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	var rows []model.SubmissionHistory
	if opts.JobID != "" {
		h, err := repo.GetByJobID(cmdCtx.Ctx, opts.JobID)
		if err != nil {
			return err
		}
		rows = append(rows, *h)
	} else {
		rows, err = repo.ListRecent(cmdCtx.Ctx, opts.Limit)
		if err != nil {
			return err
		}
	}
	return printHistory(cmdCtx.Stdout, rows)
}

func printHistory(w io.Writer, rows []model.SubmissionHistory) error {
	if len(rows) == 0 {
		return writeln(w, "no submissions recorded")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writeln(tw, "Job\tFolder\tEntries\tPhase\tTitle\tSubmitted"); err != nil {
		return fmt.Errorf("write history header: %w", err)
	}
	for _, h := range rows {
		folder := "-"
		if h.FolderID != nil {
			folder = *h.FolderID
		}
		title := h.Title
		if h.Detail != "" {
			title += " (" + h.Detail + ")"
		}
		if err := writef(tw, "%s\t%s\t%d\t%s\t%s\t%s\n",
			h.JobID, folder, h.EntryCount, h.Phase, title, h.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("write history row %s: %w", h.JobID, err)
		}
	}
	return tw.Flush()
}

func parseMigrateFlags(args []string) (migrateOptions, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := migrateOptions{Timeout: defaultMigrationTimeout}
	fs.DurationVar(
		&opts.Timeout,
		"timeout",
		defaultMigrationTimeout,
		"Maximum duration to wait for migrations to complete",
	)
	if err := fs.Parse(args); err != nil {
		return migrateOptions{}, err
	}
	if opts.Timeout <= 0 {
		return migrateOptions{}, errors.New("--timeout must be greater than zero")
	}
	return opts, nil
}

func runMigrations(cmdCtx *commandContext, args []string) error {
	opts, err := parseMigrateFlags(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
	defer cancel()

	db, err := bootstrap.ConnectDB(ctx, cmdCtx.Config.Postgres, cmdCtx.Logger)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("db close failed", "error", closeErr)
		}
	}()

	return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
}
