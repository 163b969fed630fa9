package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/data/pgxutil"
	"github.com/relaycrm/outreach-api/internal/domain/model"
)

// RepoConfig holds configuration options shared by the data repositories.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo provides database operations for automation jobs.
type JobRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}

	return &JobRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const jobColumns = `
  id,
  automation_id,
  workspace_id,
  status,
  trigger_type,
  payload,
  result,
  started_at,
  completed_at,
  created_at,
  updated_at
`

// Create inserts a new pending job. StartedAt is set to the repository clock
// at enqueue time so pending batches order by enqueue order.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid job request")
	}

	payload, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO automation_jobs(id, automation_id, workspace_id, status, trigger_type, payload, started_at)
      VALUES ($1, $2, $3, 'pending', $4, $5, $6)
      RETURNING `+jobColumns,
		uuid.NewString(), req.AutomationID, req.WorkspaceID, req.TriggerType, payload, now,
	)

	job, err := scanJobFromRow(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// GetByID fetches one job scoped to the workspace.
func (r *JobRepo) GetByID(ctx context.Context, workspaceID, id string) (*model.Job, error) {
	row := r.DB.QueryRowContext(ctx, `
      SELECT `+jobColumns+`
      FROM automation_jobs
      WHERE id = $1 AND workspace_id = $2
    `, id, workspaceID)

	job, err := scanJobFromRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("job %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

// ListPending returns the oldest pending jobs for the workspace. The read
// does not reserve: jobs stay pending until a status report arrives, so the
// same job can appear in consecutive polls.
func (r *JobRepo) ListPending(ctx context.Context, workspaceID string, limit int) ([]*model.Job, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT `+jobColumns+`
      FROM automation_jobs
      WHERE workspace_id = $1 AND status = 'pending'
      ORDER BY started_at ASC
      LIMIT $2
    `, workspaceID, limit)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	jobs := make([]*model.Job, 0, limit)
	for rows.Next() {
		job, scanErr := scanJobFromRow(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan job: %w", scanErr)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return jobs, nil
}

// UpdateStatus applies a status transition inside a transaction. The row is
// locked, the transition checked against the current status, and the result
// document merged into any existing result. A report that would regress a
// terminal job leaves the row untouched and returns the stored state.
func (r *JobRepo) UpdateStatus(ctx context.Context, params core.UpdateJobStatusParams) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Opts: &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		Fn: func(tx pgx.Tx) error {
			var current model.JobStatus
			err := tx.QueryRow(ctx, `
              SELECT status FROM automation_jobs
              WHERE id = $1 AND workspace_id = $2
              FOR UPDATE
            `, params.JobID, params.WorkspaceID).Scan(&current)
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperrors.NotFoundf("job %s not found", params.JobID)
				}
				return err
			}

			if current == params.Status {
				// Duplicate report: status stays put but supplementary
				// result data still merges in.
				if len(params.Result) > 0 {
					return r.mergeResultInTx(ctx, tx, params, &job)
				}
				return r.fetchJobInTx(ctx, tx, params, &job)
			}
			if !current.CanTransitionTo(params.Status) {
				if r.logger != nil {
					r.logger.InfoContext(ctx, "ignoring job status regression",
						"job_id", params.JobID, "current", current, "reported", params.Status)
				}
				return r.fetchJobInTx(ctx, tx, params, &job)
			}

			var completedAt *time.Time
			if params.Status.Terminal() {
				t := r.timeProvider.Now().UTC()
				if params.CompletedAt != nil {
					t = params.CompletedAt.UTC()
				}
				completedAt = &t
			}

			result := params.Result
			if len(result) == 0 {
				result = json.RawMessage(`{}`)
			}

			rows, err := tx.Query(ctx, `
              UPDATE automation_jobs
              SET status = $3,
                  result = COALESCE(result, '{}'::jsonb) || $4::jsonb,
                  completed_at = COALESCE($5, completed_at),
                  updated_at = now()
              WHERE id = $1 AND workspace_id = $2
              RETURNING `+jobColumns,
				params.JobID, params.WorkspaceID, params.Status, result, completedAt)
			if err != nil {
				return err
			}
			updated, collectErr := collectJobFromRows(rows)
			rows.Close()
			if collectErr != nil {
				return collectErr
			}
			job = updated
			return nil
		},
	})
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return job, nil
}

func (r *JobRepo) mergeResultInTx(ctx context.Context, tx pgx.Tx, params core.UpdateJobStatusParams, out **model.Job) error {
	rows, err := tx.Query(ctx, `
      UPDATE automation_jobs
      SET result = COALESCE(result, '{}'::jsonb) || $3::jsonb,
          updated_at = now()
      WHERE id = $1 AND workspace_id = $2
      RETURNING `+jobColumns,
		params.JobID, params.WorkspaceID, params.Result)
	if err != nil {
		return err
	}
	job, collectErr := collectJobFromRows(rows)
	rows.Close()
	if collectErr != nil {
		return collectErr
	}
	*out = job
	return nil
}

func (r *JobRepo) fetchJobInTx(ctx context.Context, tx pgx.Tx, params core.UpdateJobStatusParams, out **model.Job) error {
	rows, err := tx.Query(ctx, `
      SELECT `+jobColumns+`
      FROM automation_jobs
      WHERE id = $1 AND workspace_id = $2
    `, params.JobID, params.WorkspaceID)
	if err != nil {
		return err
	}
	job, collectErr := collectJobFromRows(rows)
	rows.Close()
	if collectErr != nil {
		return collectErr
	}
	*out = job
	return nil
}

// Stats returns per-status job counts for the workspace.
func (r *JobRepo) Stats(ctx context.Context, workspaceID string) (*model.JobStats, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT status, COUNT(*)
      FROM automation_jobs
      WHERE workspace_id = $1
      GROUP BY status
    `, workspaceID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	stats := &model.JobStats{}
	for rows.Next() {
		var status model.JobStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		switch status {
		case model.JobStatusPending:
			stats.Pending = count
		case model.JobStatusRunning:
			stats.Running = count
		case model.JobStatusSuccess:
			stats.Success = count
		case model.JobStatusFailed:
			stats.Failed = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return stats, nil
}

// FailStalePending fails pending jobs whose started_at is older than maxAge.
// The update runs across workspaces; the reaper owns this call, not request
// handlers. At most batchSize rows change per call.
func (r *JobRepo) FailStalePending(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	now := r.timeProvider.Now()
	cutoff := now.Add(-maxAge)

	result, err := r.DB.ExecContext(ctx, `
      UPDATE automation_jobs
      SET status = $1,
          completed_at = $2,
          result = COALESCE(result, '{}'::jsonb) || $3::jsonb,
          updated_at = $2
      WHERE id IN (
        SELECT id FROM automation_jobs
        WHERE status = $4 AND started_at < $5
        LIMIT $6
      )
    `, model.JobStatusFailed, now, `{"error":"job expired before any worker picked it up"}`,
		model.JobStatusPending, cutoff, batchSize)
	if err != nil {
		return 0, apperrors.MapDBError(err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	if count > 0 && r.logger != nil {
		r.logger.InfoContext(ctx, "failed stale pending jobs", "count", count, "cutoff", cutoff)
	}
	return count, nil
}

type jobRowScanner interface {
	Scan(dest ...any) error
}

type jobRowData struct {
	payload, result []byte
	completedAt     sql.NullTime
}

func (d *jobRowData) scanInto(scanner jobRowScanner, job *model.Job) error {
	return scanner.Scan(
		&job.ID,
		&job.AutomationID,
		&job.WorkspaceID,
		&job.Status,
		&job.TriggerType,
		&d.payload,
		&d.result,
		&job.StartedAt,
		&d.completedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
}

func (d *jobRowData) apply(job *model.Job) error {
	if len(d.payload) > 0 {
		if err := json.Unmarshal(d.payload, &job.Payload); err != nil {
			return fmt.Errorf("unmarshal payload: %w", err)
		}
	}
	if len(d.result) > 0 {
		job.Result = append(json.RawMessage(nil), d.result...)
	}
	job.CompletedAt = cloneNullableTime(d.completedAt)
	return nil
}

func scanJobFromRow(scanner jobRowScanner) (*model.Job, error) {
	job := &model.Job{}
	var data jobRowData
	if err := data.scanInto(scanner, job); err != nil {
		return nil, err
	}
	if err := data.apply(job); err != nil {
		return nil, err
	}
	return job, nil
}

func collectJobFromRows(rows pgx.Rows) (*model.Job, error) {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}

	job, err := scanJobFromRow(rows)
	if err != nil {
		return nil, err
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, rowsErr
	}
	return job, nil
}

func cloneNullableTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
