package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/relaycrm/outreach-api/internal/errors"

	"github.com/relaycrm/outreach-api/internal/domain/model"
	"github.com/relaycrm/outreach-api/internal/testutil"
)

func TestAutomationRepo_Create(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewAutomationRepo(db, RepoConfig{})
		ctx := context.Background()

		automation, err := repo.Create(ctx, &model.CreateAutomationRequest{
			WorkspaceID: "ws-1",
			StageID:     "stage-1",
			Name:        "warm intro",
			Platform:    "linkedin",
			Actions:     json.RawMessage(`[{"type":"visit_profile"}]`),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, automation.ID)
		assert.True(t, automation.Enabled)
		assert.JSONEq(t, `{}`, string(automation.Config))
	})
}

func TestAutomationRepo_Create_StageConflict(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewAutomationRepo(db, RepoConfig{})
		ctx := context.Background()

		req := &model.CreateAutomationRequest{
			WorkspaceID: "ws-1",
			StageID:     "stage-1",
			Name:        "warm intro",
			Platform:    "linkedin",
			Actions:     json.RawMessage(`[{"type":"visit_profile"}]`),
		}
		_, err := repo.Create(ctx, req)
		require.NoError(t, err)

		// one automation per stage per workspace
		_, err = repo.Create(ctx, req)
		assert.True(t, apperrors.IsConflict(err), "want conflict, got %v", err)

		// same stage id in another workspace is fine
		other := *req
		other.WorkspaceID = "ws-2"
		_, err = repo.Create(ctx, &other)
		assert.NoError(t, err)
	})
}

func TestAutomationRepo_GetByStage(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewAutomationRepo(db, RepoConfig{})
		ctx := context.Background()

		created := seedAutomation(t, db, "ws-1", "stage-1")

		got, err := repo.GetByStage(ctx, "ws-1", "stage-1")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)

		_, err = repo.GetByStage(ctx, "ws-1", "stage-unbound")
		assert.True(t, apperrors.IsNotFound(err))

		_, err = repo.GetByStage(ctx, "ws-2", "stage-1")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestAutomationRepo_ListAndDelete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo := NewAutomationRepo(db, RepoConfig{})
		ctx := context.Background()

		a := seedAutomation(t, db, "ws-1", "stage-1")
		seedAutomation(t, db, "ws-1", "stage-2")
		seedAutomation(t, db, "ws-2", "stage-1")

		automations, err := repo.List(ctx, "ws-1", 10, 0)
		require.NoError(t, err)
		assert.Len(t, automations, 2)

		deleted, err := repo.Delete(ctx, "ws-1", a.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "ws-1", a.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		// cross-workspace delete is a silent no-match
		b := seedAutomation(t, db, "ws-1", "stage-3")
		deleted, err = repo.Delete(ctx, "ws-2", b.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestLeadRepo_ListByStage(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		insertLead := func(id, ws, stage, platform, ref string) {
			_, err := db.ExecContext(ctx, `
              INSERT INTO leads(id, workspace_id, stage_id, name, platform, profile_ref)
              VALUES ($1, $2, $3, $4, $5, $6)
            `, id, ws, stage, "Lead "+id, platform, ref)
			require.NoError(t, err)
		}
		insertLead("l1", "ws-1", "stage-1", "linkedin", "johndoe")
		insertLead("l2", "ws-1", "stage-1", "linkedin", "https://www.linkedin.com/in/janedoe")
		insertLead("l3", "ws-1", "stage-2", "x", "jdoe")
		insertLead("l4", "ws-2", "stage-1", "linkedin", "other")

		repo := NewLeadRepo(db, RepoConfig{})
		leads, err := repo.ListByStage(ctx, "ws-1", "stage-1")
		require.NoError(t, err)
		require.Len(t, leads, 2)
		assert.Equal(t, "l1", leads[0].ID)

		lead, err := repo.GetByID(ctx, "ws-1", "l3")
		require.NoError(t, err)
		assert.Equal(t, "x", lead.Platform)

		_, err = repo.GetByID(ctx, "ws-2", "l3")
		assert.True(t, apperrors.IsNotFound(err))
	})
}
