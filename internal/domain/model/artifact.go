package model

import "fmt"

// ArtifactType enumerates the result documents a completed job exposes.
// Values match the backend's `type` query parameter.
type ArtifactType int

const (
	// ArtifactCSVBundle is the zipped per-query summary spreadsheets.
	ArtifactCSVBundle ArtifactType = 1
	// ArtifactFullReport is the full BLAST report PDF.
	ArtifactFullReport ArtifactType = 2
	// ArtifactAnomalyReport is the anomaly-subset report PDF.
	ArtifactAnomalyReport ArtifactType = 3
	// ArtifactInputsFASTA is the raw sequence export of the submission.
	ArtifactInputsFASTA ArtifactType = 4
)

// AllArtifacts lists every artifact kind in download-button order.
func AllArtifacts() []ArtifactType {
	return []ArtifactType{ArtifactCSVBundle, ArtifactFullReport, ArtifactAnomalyReport, ArtifactInputsFASTA}
}

// PreviewableArtifacts lists the kinds served by the inline viewer endpoint.
func PreviewableArtifacts() []ArtifactType {
	return []ArtifactType{ArtifactFullReport, ArtifactAnomalyReport}
}

// Valid returns true for a known artifact kind.
func (a ArtifactType) Valid() bool {
	return a >= ArtifactCSVBundle && a <= ArtifactInputsFASTA
}

// Previewable reports whether the inline viewer supports the artifact.
func (a ArtifactType) Previewable() bool {
	return a == ArtifactFullReport || a == ArtifactAnomalyReport
}

func (a ArtifactType) String() string {
	switch a {
	case ArtifactCSVBundle:
		return "csv"
	case ArtifactFullReport:
		return "full-report"
	case ArtifactAnomalyReport:
		return "anomaly-report"
	case ArtifactInputsFASTA:
		return "fasta"
	default:
		return fmt.Sprintf("artifact(%d)", int(a))
	}
}

// ParseArtifactType accepts either the name or the numeric enumerant.
func ParseArtifactType(s string) (ArtifactType, error) {
	for _, a := range AllArtifacts() {
		if s == a.String() || s == fmt.Sprint(int(a)) {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown artifact type %q", s)
}

// Locator is a retrieval URL for one artifact.
// Inline locators point at the viewer endpoint instead of the attachment download.
type Locator struct {
	Artifact ArtifactType `json:"artifact"`
	URL      string       `json:"url"`
	Inline   bool         `json:"inline,omitempty"`
}
