package model

import "time"

// Lead is the minimal contact slice the dispatcher needs: who to reach and
// where their profile lives.
type Lead struct {
	ID          string    `json:"id"           db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	StageID     string    `json:"stage_id"     db:"stage_id"`
	Name        string    `json:"name"         db:"name"`
	Platform    string    `json:"platform"     db:"platform"`
	// ProfileRef is either an absolute profile URL or a bare handle; the
	// dispatcher canonicalizes it before queueing work.
	ProfileRef string `json:"profile_ref"          db:"profile_ref"`
	AvatarURL  string `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt  time.Time `json:"created_at"        db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"        db:"updated_at"`
}
