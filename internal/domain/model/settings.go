package model

// Settings is the backend analysis configuration edited from the client.
// The backend stores it as a positional tuple; the client only names the positions.
type Settings struct {
	Filter            string `json:"filterSelect"`
	OutputQty         string `json:"outputQty"`
	Program           string `json:"program"`
	Database          string `json:"database"`
	NonAnomalyKeyword string `json:"nonAnomaly"`
	SpeciesName       string `json:"speciesName"`
}

// DefaultSettings returns the values the backend falls back to before any save.
func DefaultSettings() Settings {
	return Settings{
		Filter:            "mL",
		OutputQty:         "1000",
		Program:           "blastn",
		Database:          "nt",
		NonAnomalyKeyword: "sus scrofa",
		SpeciesName:       "Sample",
	}
}

// Merge overlays the non-empty fields of other onto s.
func (s Settings) Merge(other Settings) Settings {
	if other.Filter != "" {
		s.Filter = other.Filter
	}
	if other.OutputQty != "" {
		s.OutputQty = other.OutputQty
	}
	if other.Program != "" {
		s.Program = other.Program
	}
	if other.Database != "" {
		s.Database = other.Database
	}
	if other.NonAnomalyKeyword != "" {
		s.NonAnomalyKeyword = other.NonAnomalyKeyword
	}
	if other.SpeciesName != "" {
		s.SpeciesName = other.SpeciesName
	}
	return s
}
