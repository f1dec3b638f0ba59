package store_test

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mwhitfield/skillforge/internal/store"
	"github.com/mwhitfield/skillforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir returns the absolute path to the migrations directory.
func migrationsDir() string {
	_, filename, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(filename), "..", "..", "migrations")
}

// setupTestDB spins up a Postgres container, runs migrations, and returns a pool.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("skillforge_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	err = store.RunMigrations(connStr, migrationsDir())
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	return pool
}

func newSkill(name string) *models.Skill {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Skill{
		ID:          uuid.New(),
		Name:        name,
		Description: "a test skill",
		ContentType: models.ContentTypeProcess,
		Version:     1,
		MainContent: "# Main\n",
		References:  map[string]string{"workflow.md": "# Workflow\n"},
		Metadata:    map[string]any{"provider": "mock"},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func strPtr(s string) *string { return &s }

// --- Skill Tests ---

func TestSkill_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	skill := newSkill("deploy-pipeline")
	require.NoError(t, s.CreateSkill(ctx, skill))

	got, err := s.GetSkill(ctx, skill.ID)
	require.NoError(t, err)
	assert.Equal(t, skill.Name, got.Name)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, skill.References, got.References)
	assert.Equal(t, skill.Metadata, got.Metadata)

	byName, err := s.GetSkillByName(ctx, "deploy-pipeline")
	require.NoError(t, err)
	assert.Equal(t, skill.ID, byName.ID)

	_, err = s.GetSkill(ctx, uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSkill_DuplicateName(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.CreateSkill(ctx, newSkill("dup")))
	err := s.CreateSkill(ctx, newSkill("dup"))
	require.ErrorIs(t, err, store.ErrDuplicateName)
}

func TestSkill_ListFilterAndPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	for i, ct := range []models.ContentType{
		models.ContentTypeProcess, models.ContentTypeProcess, models.ContentTypeTechnical,
	} {
		sk := newSkill("skill-" + string(rune('a'+i)))
		sk.ContentType = ct
		require.NoError(t, s.CreateSkill(ctx, sk))
	}

	all, total, err := s.ListSkills(ctx, store.SkillFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	procs, total, err := s.ListSkills(ctx, store.SkillFilter{ContentType: models.ContentTypeProcess})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, procs, 2)

	page, total, err := s.ListSkills(ctx, store.SkillFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 1)
}

func TestSkill_UpdateVersioning(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	skill := newSkill("versioned")
	require.NoError(t, s.CreateSkill(ctx, skill))

	v2, err := s.UpdateSkill(ctx, skill.ID, store.SkillUpdate{
		MainContent: strPtr("# Main v2\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, "# Main v2\n", v2.MainContent)
	assert.Equal(t, skill.References, v2.References, "untouched fields carry over")

	v3, err := s.UpdateSkill(ctx, skill.ID, store.SkillUpdate{
		Description: strPtr("updated description"),
		Metadata:    map[string]any{"provider": "openai"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)
	assert.Equal(t, "updated description", v3.Description)
	assert.Equal(t, "# Main v2\n", v3.MainContent)

	versions, err := s.ListSkillVersions(ctx, skill.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2, "one snapshot per applied update")

	assert.Equal(t, 1, versions[0].Version)
	assert.Equal(t, "# Main\n", versions[0].MainContent)
	assert.Equal(t, 2, versions[1].Version)
	assert.Equal(t, "# Main v2\n", versions[1].MainContent)
}

func TestSkill_UpdateEmptyIsNoOp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	skill := newSkill("noop")
	require.NoError(t, s.CreateSkill(ctx, skill))

	got, err := s.UpdateSkill(ctx, skill.ID, store.SkillUpdate{})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version, "empty update must not bump version")

	versions, err := s.ListSkillVersions(ctx, skill.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)
}

func TestSkill_UpdateNotFound(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))

	_, err := s.UpdateSkill(context.Background(), uuid.New(), store.SkillUpdate{
		MainContent: strPtr("x"),
	})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSkill_DeleteCascades(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	pool := setupTestDB(t)
	s := store.NewPostgresStore(pool)
	ctx := context.Background()

	skill := newSkill("doomed")
	require.NoError(t, s.CreateSkill(ctx, skill))
	_, err := s.UpdateSkill(ctx, skill.ID, store.SkillUpdate{MainContent: strPtr("v2")})
	require.NoError(t, err)

	analysis := &models.AnalysisResult{
		ID:            uuid.New(),
		ContentType:   models.ContentTypeProcess,
		ExtractedData: map[string]any{"summary": "s"},
		Confidence:    0.8,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.CreateContentAnalysis(ctx, analysis))
	require.NoError(t, s.AttachAnalysisToSkill(ctx, analysis.ID, skill.ID))

	require.NoError(t, s.DeleteSkill(ctx, skill.ID))

	_, err = s.GetSkill(ctx, skill.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	versions, err := s.ListSkillVersions(ctx, skill.ID)
	require.NoError(t, err)
	assert.Empty(t, versions, "version snapshots deleted with the skill")

	var skillID *uuid.UUID
	err = pool.QueryRow(ctx,
		`SELECT skill_id FROM content_analyses WHERE id = $1`, analysis.ID).Scan(&skillID)
	require.NoError(t, err)
	assert.Nil(t, skillID, "analysis rows survive with skill_id nulled")

	require.ErrorIs(t, s.DeleteSkill(ctx, skill.ID), store.ErrNotFound)
}

// --- Content Analysis Tests ---

func TestContentAnalysis_CreateAndAttach(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	analysis := &models.AnalysisResult{
		ID:            uuid.New(),
		ContentType:   models.ContentTypeExpertise,
		ExtractedData: map[string]any{"summary": "s"},
		Confidence:    0.9,
		Notes:         "good",
		Provider:      "mock",
		Duration:      125 * time.Millisecond,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.CreateContentAnalysis(ctx, analysis))

	err := s.AttachAnalysisToSkill(ctx, uuid.New(), uuid.New())
	require.ErrorIs(t, err, store.ErrNotFound, "attaching an unknown analysis fails")

	skill := newSkill("attached")
	require.NoError(t, s.CreateSkill(ctx, skill))
	require.NoError(t, s.AttachAnalysisToSkill(ctx, analysis.ID, skill.ID))
}

// --- API Key Tests ---

func TestAPIKey_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	s := store.NewPostgresStore(setupTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	key := &models.APIKey{
		ID:        uuid.New(),
		Name:      "test-key",
		KeyHash:   "bcrypt-hash-here",
		KeyPrefix: "sf_abcde",
		Scopes:    []string{"default", "admin"},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateAPIKey(ctx, key))

	keys, err := s.GetAPIKeyByPrefix(ctx, "sf_abcde")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, key.ID, keys[0].ID)
	assert.Equal(t, []string{"default", "admin"}, keys[0].Scopes)

	require.NoError(t, s.UpdateAPIKeyLastUsed(ctx, key.ID))

	all, err := s.ListAPIKeys(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.NotNil(t, all[0].LastUsedAt)

	require.NoError(t, s.RevokeAPIKey(ctx, key.ID))

	keys, err = s.GetAPIKeyByPrefix(ctx, "sf_abcde")
	require.NoError(t, err)
	assert.Empty(t, keys, "revoked keys are excluded")

	require.ErrorIs(t, s.RevokeAPIKey(ctx, key.ID), store.ErrNotFound)
}
