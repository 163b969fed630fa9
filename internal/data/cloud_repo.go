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

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/core"
	"github.com/relaycrm/outreach-api/internal/data/database"
	"github.com/relaycrm/outreach-api/internal/domain/model"
)

// CloudRepo provides database operations for cloud session and task mirrors.
type CloudRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewCloudRepo creates a new CloudRepo instance.
func NewCloudRepo(db *sql.DB, cfg RepoConfig) *CloudRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &CloudRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const cloudSessionColumns = `
  id,
  workspace_id,
  platform,
  status,
  provider_id,
  connector_ids,
  metadata,
  last_used_at,
  created_at,
  updated_at
`

// cloudTaskColumns is qualified so task queries can join cloud_sessions for
// the tenant check.
const cloudTaskColumns = `
  t.id,
  t.session_id,
  t.provider_id,
  t.prompt,
  t.status,
  t.result,
  t.cost,
  t.metadata,
  t.completed_at,
  t.created_at,
  t.updated_at
`

// CreateSession inserts the local mirror row for a provider session.
func (r *CloudRepo) CreateSession(ctx context.Context, sess *model.CloudSession) (*model.CloudSession, error) {
	if sess == nil {
		return nil, errors.New("cloud session is required")
	}

	connectors, err := json.Marshal(sess.ConnectorIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal connector ids: %w", err)
	}
	metadata := sess.Metadata
	if len(metadata) == 0 {
		metadata = []byte(`{}`)
	}

	id := sess.ID
	if id == "" {
		id = uuid.NewString()
	}

	now := r.timeProvider.Now().UTC()
	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO cloud_sessions(id, workspace_id, platform, status, provider_id, connector_ids, metadata, last_used_at)
      VALUES ($1, $2, $3, 'active', $4, $5, $6, $7)
      RETURNING `+cloudSessionColumns,
		id, sess.WorkspaceID, sess.Platform, sess.ProviderID, connectors, metadata, now,
	)

	created, err := scanCloudSession(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return created, nil
}

// GetSession fetches one session scoped to the workspace.
func (r *CloudRepo) GetSession(ctx context.Context, workspaceID, id string) (*model.CloudSession, error) {
	row := r.DB.QueryRowContext(ctx, `
      SELECT `+cloudSessionColumns+`
      FROM cloud_sessions
      WHERE id = $1 AND workspace_id = $2
    `, id, workspaceID)

	sess, err := scanCloudSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("session %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return sess, nil
}

// ListSessions returns the workspace's sessions, most recently used first.
func (r *CloudRepo) ListSessions(ctx context.Context, workspaceID string) ([]*model.CloudSession, error) {
	opts := database.NewListQueryOptions("cloud_sessions",
		database.WithColumns("id", "workspace_id", "platform", "status", "provider_id",
			"connector_ids", "metadata", "last_used_at", "created_at", "updated_at"),
		database.WithCondition(database.WhereCond("workspace_id", database.Equal, workspaceID)),
		database.WithOrderBy("last_used_at", "DESC"),
	)
	query, args := database.BuildListQuery(opts)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var sessions []*model.CloudSession
	for rows.Next() {
		sess, scanErr := scanCloudSession(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan session: %w", scanErr)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return sessions, nil
}

// UpdateSessionStatus sets the session status and returns the updated row.
func (r *CloudRepo) UpdateSessionStatus(ctx context.Context, id string, status model.CloudSessionStatus) (*model.CloudSession, error) {
	row := r.DB.QueryRowContext(ctx, `
      UPDATE cloud_sessions
      SET status = $2, updated_at = now()
      WHERE id = $1
      RETURNING `+cloudSessionColumns,
		id, status)

	sess, err := scanCloudSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("session %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return sess, nil
}

// TouchSession advances last_used_at to now.
func (r *CloudRepo) TouchSession(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `
      UPDATE cloud_sessions
      SET last_used_at = $2, updated_at = now()
      WHERE id = $1
    `, id, r.timeProvider.Now().UTC())
	if err != nil {
		return apperrors.MapDBError(err)
	}
	return nil
}

// CreateTask inserts the local mirror row for a provider task.
func (r *CloudRepo) CreateTask(ctx context.Context, task *model.CloudTask) (*model.CloudTask, error) {
	if task == nil {
		return nil, errors.New("cloud task is required")
	}

	metadata := task.Metadata
	if len(metadata) == 0 {
		metadata = []byte(`{}`)
	}

	id := task.ID
	if id == "" {
		id = uuid.NewString()
	}

	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO cloud_tasks(id, session_id, provider_id, prompt, status, metadata)
      VALUES ($1, $2, $3, $4, 'queued', $5)
      RETURNING `+taskReturningColumns(),
		id, task.SessionID, task.ProviderID, task.Prompt, metadata,
	)

	created, err := scanCloudTask(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return created, nil
}

// GetTask fetches one task, joining its session so the read is scoped to the
// workspace that owns the session.
func (r *CloudRepo) GetTask(ctx context.Context, workspaceID, id string) (*model.CloudTask, error) {
	row := r.DB.QueryRowContext(ctx, `
      SELECT `+cloudTaskColumns+`
      FROM cloud_tasks t
      JOIN cloud_sessions s ON s.id = t.session_id
      WHERE t.id = $1 AND s.workspace_id = $2
    `, id, workspaceID)

	task, err := scanCloudTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("task %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return task, nil
}

// ListTasksBySession returns the session's tasks, newest first. The join
// keeps the read inside the workspace.
func (r *CloudRepo) ListTasksBySession(ctx context.Context, workspaceID, sessionID string) ([]*model.CloudTask, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT `+cloudTaskColumns+`
      FROM cloud_tasks t
      JOIN cloud_sessions s ON s.id = t.session_id
      WHERE t.session_id = $1 AND s.workspace_id = $2
      ORDER BY t.created_at DESC
    `, sessionID, workspaceID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var tasks []*model.CloudTask
	for rows.Next() {
		task, scanErr := scanCloudTask(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan task: %w", scanErr)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return tasks, nil
}

// UpdateTask applies a reconciled status, result, and cost. The status write
// is guarded in SQL so task progress is forward-only: a terminal row keeps
// its status, and a running row never moves back to queued, even when two
// pollers race. A guarded write still merges the supplementary result and
// cost and returns the stored row. A terminal status sets completed_at.
func (r *CloudRepo) UpdateTask(ctx context.Context, params core.UpdateTaskParams) (*model.CloudTask, error) {
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

	row := r.DB.QueryRowContext(ctx, `
      UPDATE cloud_tasks t
      SET status = CASE
            WHEN t.status IN ('completed', 'failed') THEN t.status
            WHEN t.status = 'running' AND $2::text = 'queued' THEN t.status
            ELSE $2::text
          END,
          result = COALESCE(t.result, '{}'::jsonb) || $3::jsonb,
          cost = COALESCE($4, t.cost),
          completed_at = COALESCE($5, t.completed_at),
          updated_at = now()
      FROM cloud_sessions s
      WHERE t.id = $1 AND s.id = t.session_id
      RETURNING `+cloudTaskColumns,
		params.TaskID, params.Status, result, params.Cost, completedAt)

	task, err := scanCloudTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("task %s not found", params.TaskID)
		}
		return nil, apperrors.MapDBError(err)
	}
	return task, nil
}

func taskReturningColumns() string {
	// INSERT has no joined alias; reuse the task column list unqualified.
	return `id, session_id, provider_id, prompt, status, result, cost, metadata, completed_at, created_at, updated_at`
}

func scanCloudSession(scanner jobRowScanner) (*model.CloudSession, error) {
	s := &model.CloudSession{}
	var connectors, metadata []byte
	err := scanner.Scan(
		&s.ID,
		&s.WorkspaceID,
		&s.Platform,
		&s.Status,
		&s.ProviderID,
		&connectors,
		&metadata,
		&s.LastUsedAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(connectors) > 0 {
		if err := json.Unmarshal(connectors, &s.ConnectorIDs); err != nil {
			return nil, fmt.Errorf("unmarshal connector ids: %w", err)
		}
	}
	s.Metadata = append([]byte(nil), metadata...)
	return s, nil
}

func scanCloudTask(scanner jobRowScanner) (*model.CloudTask, error) {
	t := &model.CloudTask{}
	var result, metadata []byte
	var cost sql.NullFloat64
	var completedAt sql.NullTime
	err := scanner.Scan(
		&t.ID,
		&t.SessionID,
		&t.ProviderID,
		&t.Prompt,
		&t.Status,
		&result,
		&cost,
		&metadata,
		&completedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		t.Result = append(json.RawMessage(nil), result...)
	}
	t.Metadata = append([]byte(nil), metadata...)
	if cost.Valid {
		c := cost.Float64
		t.Cost = &c
	}
	t.CompletedAt = cloneNullableTime(completedAt)
	return t, nil
}
