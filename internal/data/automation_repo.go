package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/data/database"
	"github.com/relaycrm/outreach-api/internal/domain/model"
)

// AutomationRepo provides database operations for automations.
type AutomationRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewAutomationRepo creates a new AutomationRepo instance.
func NewAutomationRepo(db *sql.DB, cfg RepoConfig) *AutomationRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	return &AutomationRepo{
		DB:           db,
		timeProvider: tp,
		logger:       cfg.Logger,
	}
}

const automationColumns = `
  id,
  workspace_id,
  stage_id,
  name,
  platform,
  actions,
  config,
  enabled,
  created_at,
  updated_at
`

var automationColumnList = []string{
	"id", "workspace_id", "stage_id", "name", "platform",
	"actions", "config", "enabled", "created_at", "updated_at",
}

// Create inserts a new automation. A second automation for the same
// (workspace, stage) pair fails the unique constraint and surfaces as a
// conflict.
func (r *AutomationRepo) Create(ctx context.Context, req *model.CreateAutomationRequest) (*model.Automation, error) {
	if req == nil {
		return nil, errors.New("create automation request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid automation request")
	}

	config := req.Config
	if len(config) == 0 {
		config = []byte(`{}`)
	}

	row := r.DB.QueryRowContext(ctx, `
      INSERT INTO automations(id, workspace_id, stage_id, name, platform, actions, config)
      VALUES ($1, $2, $3, $4, $5, $6, $7)
      RETURNING `+automationColumns,
		uuid.NewString(), req.WorkspaceID, req.StageID, req.Name, req.Platform, []byte(req.Actions), config,
	)

	automation, err := scanAutomation(row)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return automation, nil
}

// GetByID fetches one automation scoped to the workspace.
func (r *AutomationRepo) GetByID(ctx context.Context, workspaceID, id string) (*model.Automation, error) {
	row := r.DB.QueryRowContext(ctx, `
      SELECT `+automationColumns+`
      FROM automations
      WHERE id = $1 AND workspace_id = $2
    `, id, workspaceID)

	automation, err := scanAutomation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("automation %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return automation, nil
}

// GetByStage fetches the automation bound to a pipeline stage, if any.
func (r *AutomationRepo) GetByStage(ctx context.Context, workspaceID, stageID string) (*model.Automation, error) {
	row := r.DB.QueryRowContext(ctx, `
      SELECT `+automationColumns+`
      FROM automations
      WHERE workspace_id = $1 AND stage_id = $2
    `, workspaceID, stageID)

	automation, err := scanAutomation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("no automation for stage %s", stageID)
		}
		return nil, apperrors.MapDBError(err)
	}
	return automation, nil
}

// List returns automations for the workspace ordered by creation time.
func (r *AutomationRepo) List(ctx context.Context, workspaceID string, limit, offset int) ([]*model.Automation, error) {
	opts := database.NewListQueryOptions("automations",
		database.WithColumns(automationColumnList...),
		database.WithCondition(database.WhereCond("workspace_id", database.Equal, workspaceID)),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(limit),
		database.WithOffset(offset),
	)
	query, args := database.BuildListQuery(opts)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var automations []*model.Automation
	for rows.Next() {
		automation, scanErr := scanAutomation(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan automation: %w", scanErr)
		}
		automations = append(automations, automation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return automations, nil
}

// Delete removes an automation. Returns false when nothing matched.
func (r *AutomationRepo) Delete(ctx context.Context, workspaceID, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
      DELETE FROM automations
      WHERE id = $1 AND workspace_id = $2
    `, id, workspaceID)
	if err != nil {
		return false, apperrors.MapDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func scanAutomation(scanner jobRowScanner) (*model.Automation, error) {
	a := &model.Automation{}
	var actions, config []byte
	err := scanner.Scan(
		&a.ID,
		&a.WorkspaceID,
		&a.StageID,
		&a.Name,
		&a.Platform,
		&actions,
		&config,
		&a.Enabled,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Actions = append([]byte(nil), actions...)
	a.Config = append([]byte(nil), config...)
	return a, nil
}
