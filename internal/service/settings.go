package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
)

// SettingsMapping holds one JMESPath expression per named setting, evaluated
// against the positional tuple returned by the backend.
type SettingsMapping struct {
	Filter      string
	OutputQty   string
	Program     string
	Database    string
	NonAnomaly  string
	SpeciesName string
}

// DefaultSettingsMapping is the backend's positional order.
func DefaultSettingsMapping() SettingsMapping {
	return SettingsMapping{
		Filter:      "[0]",
		OutputQty:   "[1]",
		Program:     "[2]",
		Database:    "[3]",
		NonAnomaly:  "[4]",
		SpeciesName: "[5]",
	}
}

// Validate compiles every expression.
func (m SettingsMapping) Validate() error {
	var errs []error
	for _, f := range m.fields(&model.Settings{}) {
		if _, err := jmespath.Compile(f.expr); err != nil {
			errs = append(errs, apperrors.ValidationField(f.name, fmt.Sprintf("invalid expression %q: %v", f.expr, err)))
		}
	}
	return errors.Join(errs...)
}

type settingsField struct {
	name string
	expr string
	dst  *string
}

func (m SettingsMapping) fields(dst *model.Settings) []settingsField {
	return []settingsField{
		{name: "filter", expr: m.Filter, dst: &dst.Filter},
		{name: "output_qty", expr: m.OutputQty, dst: &dst.OutputQty},
		{name: "program", expr: m.Program, dst: &dst.Program},
		{name: "database", expr: m.Database, dst: &dst.Database},
		{name: "non_anomaly", expr: m.NonAnomaly, dst: &dst.NonAnomalyKeyword},
		{name: "species_name", expr: m.SpeciesName, dst: &dst.SpeciesName},
	}
}

// SettingsServiceOptions groups dependencies for SettingsService.
type SettingsServiceOptions struct {
	Client  core.SettingsClient // Required: backend settings endpoint
	Mapping SettingsMapping     // Optional: defaults to DefaultSettingsMapping
	Logger  *slog.Logger        // Optional: structured logger
}

// SettingsService fetches and saves the backend analysis settings.
type SettingsService struct {
	client  core.SettingsClient
	mapping SettingsMapping
	logger  *slog.Logger
}

// NewSettingsService constructs a new SettingsService.
func NewSettingsService(opts SettingsServiceOptions) *SettingsService {
	if opts.Client == nil {
		panic("SettingsClient is required")
	}
	mapping := opts.Mapping
	if mapping == (SettingsMapping{}) {
		mapping = DefaultSettingsMapping()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsService{client: opts.Client, mapping: mapping, logger: logger.With("component", "settings")}
}

// Load fetches the settings. Fields the backend does not provide keep their defaults;
// on error the full defaults are returned alongside it.
func (s *SettingsService) Load(ctx context.Context) (model.Settings, error) {
	tuple, err := s.client.Fetch(ctx)
	if err != nil {
		return model.DefaultSettings(), fmt.Errorf("fetch settings: %w", err)
	}

	var fetched model.Settings
	for _, f := range s.mapping.fields(&fetched) {
		v, err := jmespath.Search(f.expr, tuple)
		if err != nil {
			return model.DefaultSettings(), fmt.Errorf("map setting %s: %w", f.name, err)
		}
		if str, ok := scalarString(v); ok {
			*f.dst = strings.TrimSpace(str)
		}
	}
	return model.DefaultSettings().Merge(fetched), nil
}

// Fetch is Load with failures logged instead of returned.
func (s *SettingsService) Fetch(ctx context.Context) model.Settings {
	settings, err := s.Load(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "using default settings", "error", err)
	}
	return settings
}

// Save writes settings back to the backend.
func (s *SettingsService) Save(ctx context.Context, settings model.Settings) error {
	settings = model.Settings{
		Filter:            strings.TrimSpace(settings.Filter),
		OutputQty:         strings.TrimSpace(settings.OutputQty),
		Program:           strings.TrimSpace(settings.Program),
		Database:          strings.TrimSpace(settings.Database),
		NonAnomalyKeyword: strings.TrimSpace(settings.NonAnomalyKeyword),
		SpeciesName:       strings.TrimSpace(settings.SpeciesName),
	}
	if err := s.client.Save(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	s.logger.InfoContext(ctx, "settings saved", "program", settings.Program, "database", settings.Database)
	return nil
}
