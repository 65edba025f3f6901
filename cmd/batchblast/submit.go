package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/batchblast/batchblast/internal/adapters/console"
	"github.com/batchblast/batchblast/internal/bootstrap"
	"github.com/batchblast/batchblast/internal/domain/model"
	"github.com/batchblast/batchblast/internal/service"
)

const defaultSubmitTimeout = 2 * time.Hour

type submitOptions struct {
	Path    string
	Timeout time.Duration
}

type locateOptions struct {
	Folder   string
	Artifact string
	Preview  bool
}

func parseSubmitFlags(args []string) (submitOptions, error) {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := submitOptions{Timeout: defaultSubmitTimeout}
	fs.DurationVar(&opts.Timeout, "timeout", defaultSubmitTimeout, "Maximum time to wait for the job to finish")

	if err := fs.Parse(args); err != nil {
		return submitOptions{}, err
	}
	if fs.NArg() != 1 {
		return submitOptions{}, errors.New("usage: batchblast submit [--timeout d] <file.fasta>")
	}
	if opts.Timeout <= 0 {
		return submitOptions{}, errors.New("--timeout must be greater than zero")
	}
	opts.Path = fs.Arg(0)
	return opts, nil
}

func runSubmit(cmdCtx *commandContext, args []string) error {
	opts, err := parseSubmitFlags(args)
	if err != nil {
		return err
	}

	presenter := console.NewPresenter(cmdCtx.Stdout)
	return withApp(cmdCtx, bootstrap.AppOptions{Presenter: presenter}, func(app *bootstrap.App) error {
		ws := app.Workspace()
		n, err := ws.UploadFile(cmdCtx.Ctx, opts.Path)
		if err != nil {
			return err
		}
		if err := writeln(cmdCtx.Stdout, service.LoadedMessage(n)); err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmdCtx.Ctx, opts.Timeout)
		defer cancel()

		var final model.SessionView
		runErr := app.Run(ctx, func(ctx context.Context) error {
			if _, err := ws.Submit(ctx); err != nil {
				return err
			}
			view, err := awaitTerminal(ctx, presenter)
			final = view
			return err
		})
		if runErr != nil {
			return runErr
		}
		if final.State.Phase == model.PhaseError {
			return fmt.Errorf("job failed: %s", final.State.ErrorDetail)
		}
		return nil
	})
}

// awaitTerminal waits for the job to complete or fail.
func awaitTerminal(ctx context.Context, presenter *console.Presenter) (model.SessionView, error) {
	select {
	case view := <-presenter.Done():
		return view, nil
	case <-ctx.Done():
		return model.SessionView{}, fmt.Errorf("wait for job: %w", ctx.Err())
	}
}

func parseLocateFlags(args []string) (locateOptions, error) {
	fs := flag.NewFlagSet("locate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var opts locateOptions
	fs.StringVar(&opts.Folder, "folder", "", "Folder id (defaults to the persisted folder id)")
	fs.StringVar(&opts.Artifact, "type", "", "Artifact: csv, full-report, anomaly-report, fasta or 1-4 (default: all)")
	fs.BoolVar(&opts.Preview, "preview", false, "Print inline viewer URLs instead of downloads")

	if err := fs.Parse(args); err != nil {
		return locateOptions{}, err
	}
	opts.Folder = strings.TrimSpace(opts.Folder)
	opts.Artifact = strings.TrimSpace(opts.Artifact)
	return opts, nil
}

func runLocate(cmdCtx *commandContext, args []string) error {
	opts, err := parseLocateFlags(args)
	if err != nil {
		return err
	}

	folder := opts.Folder
	if folder == "" {
		err := withApp(cmdCtx, bootstrap.AppOptions{}, func(app *bootstrap.App) error {
			folder = app.Workspace().Session().State().SessionID
			return nil
		})
		if err != nil {
			return err
		}
	}

	locs, err := locate(service.NewDownloadLocator(cmdCtx.Config.Backend.URL), folder, opts)
	if err != nil {
		return err
	}
	for _, l := range locs {
		if err := writef(cmdCtx.Stdout, "%s\t%s\n", l.Artifact, l.URL); err != nil {
			return err
		}
	}
	return nil
}

func locate(locator service.DownloadLocator, folder string, opts locateOptions) ([]model.Locator, error) {
	if opts.Artifact == "" {
		downloads, previews, err := locator.All(folder)
		if opts.Preview {
			return previews, err
		}
		return downloads, err
	}

	artifact, err := model.ParseArtifactType(opts.Artifact)
	if err != nil {
		return nil, err
	}
	var loc model.Locator
	if opts.Preview {
		loc, err = locator.LocatePreview(artifact, folder)
	} else {
		loc, err = locator.Locate(artifact, folder)
	}
	if err != nil {
		return nil, err
	}
	return []model.Locator{loc}, nil
}

func runFolder(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("folder", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	clearID := fs.Bool("clear", false, "Forget the persisted folder id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	return withApp(cmdCtx, bootstrap.AppOptions{}, func(app *bootstrap.App) error {
		if *clearID {
			if err := app.FolderIDs().Clear(cmdCtx.Ctx); err != nil {
				return fmt.Errorf("clear folder id: %w", err)
			}
			return writeln(cmdCtx.Stdout, "folder id cleared")
		}
		id, err := app.FolderIDs().Load(cmdCtx.Ctx)
		if err != nil {
			return fmt.Errorf("load folder id: %w", err)
		}
		if id == "" {
			return writeln(cmdCtx.Stdout, "no folder id assigned")
		}
		return writeln(cmdCtx.Stdout, id)
	})
}
