package model

import "time"

// SubmissionHistory is the durable record of one submitted job and its outcome.
type SubmissionHistory struct {
	JobID      string    `json:"job_id"      db:"job_id"`
	FolderID   *string   `json:"folder_id"   db:"folder_id"`
	EntryCount int       `json:"entry_count" db:"entry_count"`
	Titles     []string  `json:"titles"      db:"titles"`
	Phase      Phase     `json:"phase"       db:"phase"`
	Title      string    `json:"title"       db:"title"`
	Detail     string    `json:"detail"      db:"detail"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"  db:"updated_at"`
}

// SubmissionOutcome carries the terminal state recorded for a job.
type SubmissionOutcome struct {
	Phase  Phase
	Title  string
	Detail string
}
