package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/pkg/models"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrDuplicateName = errors.New("skill name already exists")
	ErrDuplicateKey  = errors.New("duplicate key violation")
)

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateSkill(ctx context.Context, skill *models.Skill) error
	GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error)
	GetSkillByName(ctx context.Context, name string) (*models.Skill, error)
	ListSkills(ctx context.Context, filter SkillFilter) ([]*models.Skill, int, error)
	UpdateSkill(ctx context.Context, id uuid.UUID, update SkillUpdate) (*models.Skill, error)
	DeleteSkill(ctx context.Context, id uuid.UUID) error
	ListSkillVersions(ctx context.Context, skillID uuid.UUID) ([]*models.SkillVersion, error)

	CreateContentAnalysis(ctx context.Context, result *models.AnalysisResult) error
	AttachAnalysisToSkill(ctx context.Context, analysisID, skillID uuid.UUID) error

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID) error
}

// SkillFilter narrows and paginates skill listings.
type SkillFilter struct {
	ContentType models.ContentType
	Page        int
	Limit       int
}

// SkillUpdate carries the fields of a versioned update. Nil fields are left
// untouched; the store snapshots the prior revision before applying any of
// them.
type SkillUpdate struct {
	Description *string
	MainContent *string
	References  map[string]string
	Metadata    map[string]any
}

// Empty reports whether the update would change nothing.
func (u SkillUpdate) Empty() bool {
	return u.Description == nil && u.MainContent == nil && u.References == nil && u.Metadata == nil
}
