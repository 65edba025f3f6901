// Package model defines the core data types shared by the batchblast client components.
package model

// SequenceRecord is one named nucleotide sequence staged for submission.
// ID is assigned at creation and stays stable across removals of other records.
type SequenceRecord struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Sequence string `json:"sequence"`
}

// SubmissionEntry is a validated (title, sequence) pair accepted at submit time.
type SubmissionEntry struct {
	Title    string `json:"title"`
	Sequence string `json:"sequence"`
}

// SubmissionPayload is the ordered set of entries sent for one job.
// JobID is generated client-side and correlates history rows with the backend folder id.
type SubmissionPayload struct {
	JobID   string            `json:"job_id"`
	Entries []SubmissionEntry `json:"entries"`
}

// Empty reports whether the payload carries no entries.
func (p SubmissionPayload) Empty() bool {
	return len(p.Entries) == 0
}

// Titles returns the entry titles in submission order.
func (p SubmissionPayload) Titles() []string {
	titles := make([]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		titles = append(titles, e.Title)
	}
	return titles
}

// Clone returns a deep copy so retained result sets cannot be mutated through shared slices.
func (p SubmissionPayload) Clone() SubmissionPayload {
	out := SubmissionPayload{JobID: p.JobID}
	if p.Entries != nil {
		out.Entries = append([]SubmissionEntry(nil), p.Entries...)
	}
	return out
}
