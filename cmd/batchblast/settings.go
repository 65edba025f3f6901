package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/batchblast/batchblast/internal/bootstrap"
	"github.com/batchblast/batchblast/internal/domain/model"
)

type settingsShowOptions struct {
	JSON bool
}

// settingsFlags holds one optional override per setting; nil means unchanged.
type settingsFlags struct {
	Filter      *string
	OutputQty   *string
	Program     *string
	Database    *string
	NonAnomaly  *string
	SpeciesName *string
}

func parseSettingsShowFlags(args []string) (settingsShowOptions, error) {
	fs := flag.NewFlagSet("settings-show", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var opts settingsShowOptions
	fs.BoolVar(&opts.JSON, "json", false, "Print settings as JSON")
	if err := fs.Parse(args); err != nil {
		return settingsShowOptions{}, err
	}
	return opts, nil
}

func runSettingsShow(cmdCtx *commandContext, args []string) error {
	opts, err := parseSettingsShowFlags(args)
	if err != nil {
		return err
	}
	return withApp(cmdCtx, bootstrap.AppOptions{}, func(app *bootstrap.App) error {
		settings, err := app.Workspace().Settings().Load(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		return printSettings(cmdCtx.Stdout, settings, opts.JSON)
	})
}

func printSettings(w io.Writer, s model.Settings, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"Filter", s.Filter},
		{"Output quantity", s.OutputQty},
		{"Program", s.Program},
		{"Database", s.Database},
		{"Non-anomaly keyword", s.NonAnomalyKeyword},
		{"Species name", s.SpeciesName},
	}
	for _, r := range rows {
		if err := writef(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return fmt.Errorf("write setting %q: %w", r[0], err)
		}
	}
	return tw.Flush()
}

func parseSettingsSaveFlags(args []string) (settingsFlags, error) {
	fs := flag.NewFlagSet("settings-save", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var f settingsFlags
	bind := func(dst **string, name, usage string) {
		fs.Func(name, usage, func(v string) error {
			*dst = &v
			return nil
		})
	}
	bind(&f.Filter, "filter", "Result filter")
	bind(&f.OutputQty, "output-qty", "Number of hits to keep per query")
	bind(&f.Program, "program", "BLAST program")
	bind(&f.Database, "database", "BLAST database")
	bind(&f.NonAnomaly, "non-anomaly", "Keyword of the expected species")
	bind(&f.SpeciesName, "species-name", "Display name for the expected species")

	if err := fs.Parse(args); err != nil {
		return settingsFlags{}, err
	}
	if f == (settingsFlags{}) {
		return settingsFlags{}, errors.New("settings-save: at least one setting flag is required")
	}
	return f, nil
}

// apply overwrites the fields that were given on the command line.
func (f settingsFlags) apply(s model.Settings) model.Settings {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&s.Filter, f.Filter)
	set(&s.OutputQty, f.OutputQty)
	set(&s.Program, f.Program)
	set(&s.Database, f.Database)
	set(&s.NonAnomalyKeyword, f.NonAnomaly)
	set(&s.SpeciesName, f.SpeciesName)
	return s
}

func runSettingsSave(cmdCtx *commandContext, args []string) error {
	flags, err := parseSettingsSaveFlags(args)
	if err != nil {
		return err
	}
	return withApp(cmdCtx, bootstrap.AppOptions{}, func(app *bootstrap.App) error {
		svc := app.Workspace().Settings()
		updated := flags.apply(svc.Fetch(cmdCtx.Ctx))
		if err := svc.Save(cmdCtx.Ctx, updated); err != nil {
			return err
		}
		cmdCtx.Logger.Info("settings saved")
		return printSettings(cmdCtx.Stdout, updated, false)
	})
}
