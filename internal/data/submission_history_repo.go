package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/batchblast/batchblast/internal/core"
	"github.com/batchblast/batchblast/internal/data/pgxutil"
	"github.com/batchblast/batchblast/internal/domain/model"
	apperrors "github.com/batchblast/batchblast/internal/errors"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

const historyColumns = `job_id, folder_id, entry_count, titles, phase, title, detail, created_at, updated_at`

// SubmissionHistoryRepo stores submitted jobs in PostgreSQL.
type SubmissionHistoryRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

var _ core.SubmissionHistoryRepository = (*SubmissionHistoryRepo)(nil)

// NewSubmissionHistoryRepo creates a new SubmissionHistoryRepo with real time provider.
func NewSubmissionHistoryRepo(db *sql.DB) *SubmissionHistoryRepo {
	return &SubmissionHistoryRepo{DB: db, timeProvider: &RealTimeProvider{}}
}

// NewSubmissionHistoryRepoWithTimeProvider creates a repo with a custom time provider (useful for tests).
func NewSubmissionHistoryRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SubmissionHistoryRepo {
	return &SubmissionHistoryRepo{DB: db, timeProvider: tp}
}

// RecordSubmitted inserts a new history row.
func (r *SubmissionHistoryRepo) RecordSubmitted(ctx context.Context, h model.SubmissionHistory) error {
	if strings.TrimSpace(h.JobID) == "" {
		return apperrors.ValidationField("job_id", "job_id is required")
	}
	if !h.Phase.Valid() {
		return apperrors.ValidationField("phase", fmt.Sprintf("invalid phase %q", h.Phase))
	}
	titles := h.Titles
	if titles == nil {
		titles = []string{}
	}

	now := r.timeProvider.Now().UTC()
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, `
			INSERT INTO submission_history (
				job_id, folder_id, entry_count, titles, phase, title, detail, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		`, h.JobID, h.FolderID, h.EntryCount, titles, string(h.Phase), h.Title, h.Detail, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("insert submission history: %w", apperrors.MapDBError(err))
	}
	return nil
}

// SetFolderID attaches the backend folder id to a job.
func (r *SubmissionHistoryRepo) SetFolderID(ctx context.Context, jobID, folderID string) error {
	return r.update(ctx, jobID, `UPDATE submission_history SET updated_at = $2, folder_id = $3 WHERE job_id = $1`,
		folderID)
}

// RecordOutcome stores how a job ended.
func (r *SubmissionHistoryRepo) RecordOutcome(ctx context.Context, jobID string, outcome model.SubmissionOutcome) error {
	if !outcome.Phase.Valid() {
		return apperrors.ValidationField("phase", fmt.Sprintf("invalid phase %q", outcome.Phase))
	}
	return r.update(ctx, jobID, `
		UPDATE submission_history
		SET updated_at = $2, phase = $3, title = $4, detail = $5
		WHERE job_id = $1
	`, string(outcome.Phase), outcome.Title, outcome.Detail)
}

// update runs query with $1 = jobID and $2 = now; args follow from $3.
func (r *SubmissionHistoryRepo) update(ctx context.Context, jobID, query string, args ...any) error {
	if strings.TrimSpace(jobID) == "" {
		return apperrors.ValidationField("job_id", "job_id is required")
	}
	args = append([]any{jobID, r.timeProvider.Now().UTC()}, args...)

	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("update submission history: %w", apperrors.MapDBError(err))
	}
	if affected == 0 {
		return apperrors.NotFoundf("submission %s not found", jobID)
	}
	return nil
}

// GetByJobID returns a NotFound error when no row matches.
func (r *SubmissionHistoryRepo) GetByJobID(ctx context.Context, jobID string) (*model.SubmissionHistory, error) {
	var out *model.SubmissionHistory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		row := conn.QueryRow(ctx, `SELECT `+historyColumns+` FROM submission_history WHERE job_id = $1`, jobID)
		h, err := scanHistory(row)
		if err != nil {
			return err
		}
		out = &h
		return nil
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return out, nil
}

// ListRecent returns the newest submissions first. limit is clamped to [1, 100]; zero means 20.
func (r *SubmissionHistoryRepo) ListRecent(ctx context.Context, limit int) ([]model.SubmissionHistory, error) {
	limit = clampLimit(limit)

	var out []model.SubmissionHistory
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+historyColumns+`
			FROM submission_history
			ORDER BY created_at DESC, job_id
			LIMIT $1
		`, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			h, scanErr := scanHistory(rows)
			if scanErr != nil {
				return scanErr
			}
			out = append(out, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list submission history: %w", apperrors.MapDBError(err))
	}
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}

func scanHistory(row pgx.Row) (model.SubmissionHistory, error) {
	var (
		h     model.SubmissionHistory
		phase string
	)
	if err := row.Scan(
		&h.JobID, &h.FolderID, &h.EntryCount, &h.Titles, &phase,
		&h.Title, &h.Detail, &h.CreatedAt, &h.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return h, err
		}
		return h, fmt.Errorf("scan submission history: %w", err)
	}
	h.Phase = model.Phase(phase)
	return h, nil
}
