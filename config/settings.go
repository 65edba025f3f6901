package config

import "strings"

// SettingsConfig maps positions of the backend's settings tuple to named fields.
// Each value is a JMESPath expression evaluated against the decoded tuple.
type SettingsConfig struct {
	FilterExpr      string `env:"FILTER_EXPR"       envDefault:"[0]"`
	OutputQtyExpr   string `env:"OUTPUT_QTY_EXPR"   envDefault:"[1]"`
	ProgramExpr     string `env:"PROGRAM_EXPR"      envDefault:"[2]"`
	DatabaseExpr    string `env:"DATABASE_EXPR"     envDefault:"[3]"`
	NonAnomalyExpr  string `env:"NON_ANOMALY_EXPR"  envDefault:"[4]"`
	SpeciesNameExpr string `env:"SPECIES_NAME_EXPR" envDefault:"[5]"`
}

// Sanitize restores the positional default for any blank expression.
func (c *SettingsConfig) Sanitize() {
	defaults := DefaultSettingsConfig()
	fill := func(v *string, def string) {
		if *v = strings.TrimSpace(*v); *v == "" {
			*v = def
		}
	}
	fill(&c.FilterExpr, defaults.FilterExpr)
	fill(&c.OutputQtyExpr, defaults.OutputQtyExpr)
	fill(&c.ProgramExpr, defaults.ProgramExpr)
	fill(&c.DatabaseExpr, defaults.DatabaseExpr)
	fill(&c.NonAnomalyExpr, defaults.NonAnomalyExpr)
	fill(&c.SpeciesNameExpr, defaults.SpeciesNameExpr)
}

// DefaultSettingsConfig returns the positional mapping used by the backend.
func DefaultSettingsConfig() SettingsConfig {
	return SettingsConfig{
		FilterExpr:      "[0]",
		OutputQtyExpr:   "[1]",
		ProgramExpr:     "[2]",
		DatabaseExpr:    "[3]",
		NonAnomalyExpr:  "[4]",
		SpeciesNameExpr: "[5]",
	}
}
