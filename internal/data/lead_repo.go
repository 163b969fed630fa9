package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/domain/model"
)

// LeadRepo provides read access to leads for job dispatch.
type LeadRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewLeadRepo creates a new LeadRepo instance.
func NewLeadRepo(db *sql.DB, cfg RepoConfig) *LeadRepo {
	return &LeadRepo{DB: db, logger: cfg.Logger}
}

const leadColumns = `
  id,
  workspace_id,
  stage_id,
  name,
  platform,
  profile_ref,
  avatar_url,
  created_at,
  updated_at
`

// GetByID fetches one lead scoped to the workspace.
func (r *LeadRepo) GetByID(ctx context.Context, workspaceID, id string) (*model.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `
      SELECT `+leadColumns+`
      FROM leads
      WHERE id = $1 AND workspace_id = $2
    `, id, workspaceID)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundf("lead %s not found", id)
		}
		return nil, apperrors.MapDBError(err)
	}
	return lead, nil
}

// ListByStage returns every lead in the stage, oldest first.
func (r *LeadRepo) ListByStage(ctx context.Context, workspaceID, stageID string) ([]*model.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `
      SELECT `+leadColumns+`
      FROM leads
      WHERE workspace_id = $1 AND stage_id = $2
      ORDER BY created_at ASC
    `, workspaceID, stageID)
	if err != nil {
		return nil, apperrors.MapDBError(err)
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, scanErr := scanLead(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan lead: %w", scanErr)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.MapDBError(err)
	}
	return leads, nil
}

func scanLead(scanner jobRowScanner) (*model.Lead, error) {
	l := &model.Lead{}
	err := scanner.Scan(
		&l.ID,
		&l.WorkspaceID,
		&l.StageID,
		&l.Name,
		&l.Platform,
		&l.ProfileRef,
		&l.AvatarURL,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}
