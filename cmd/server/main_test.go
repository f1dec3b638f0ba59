package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/internal/cache"
	"github.com/mwhitfield/skillforge/internal/config"
	"github.com/mwhitfield/skillforge/internal/store"
	"github.com/mwhitfield/skillforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock store ---

type testStore struct {
	pingErr error
}

func (s *testStore) Ping(_ context.Context) error { return s.pingErr }

func (s *testStore) CreateSkill(_ context.Context, _ *models.Skill) error { return nil }
func (s *testStore) GetSkill(_ context.Context, _ uuid.UUID) (*models.Skill, error) {
	return nil, store.ErrNotFound
}
func (s *testStore) GetSkillByName(_ context.Context, _ string) (*models.Skill, error) {
	return nil, store.ErrNotFound
}
func (s *testStore) ListSkills(_ context.Context, _ store.SkillFilter) ([]*models.Skill, int, error) {
	return nil, 0, nil
}
func (s *testStore) UpdateSkill(_ context.Context, _ uuid.UUID, _ store.SkillUpdate) (*models.Skill, error) {
	return nil, store.ErrNotFound
}
func (s *testStore) DeleteSkill(_ context.Context, _ uuid.UUID) error { return nil }
func (s *testStore) ListSkillVersions(_ context.Context, _ uuid.UUID) ([]*models.SkillVersion, error) {
	return nil, nil
}
func (s *testStore) CreateContentAnalysis(_ context.Context, _ *models.AnalysisResult) error {
	return nil
}
func (s *testStore) AttachAnalysisToSkill(_ context.Context, _, _ uuid.UUID) error { return nil }
func (s *testStore) GetAPIKeyByPrefix(_ context.Context, _ string) ([]*models.APIKey, error) {
	return nil, nil
}
func (s *testStore) UpdateAPIKeyLastUsed(_ context.Context, _ uuid.UUID) error { return nil }
func (s *testStore) CreateAPIKey(_ context.Context, _ *models.APIKey) error    { return nil }
func (s *testStore) ListAPIKeys(_ context.Context) ([]*models.APIKey, error)   { return nil, nil }
func (s *testStore) RevokeAPIKey(_ context.Context, _ uuid.UUID) error         { return nil }

var _ store.Store = (*testStore)(nil)

// --- mock cache ---

type testCache struct {
	pingErr error
}

func (c *testCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error { return nil }
func (c *testCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}
func (c *testCache) Delete(_ context.Context, _ string) error { return nil }
func (c *testCache) Ping(_ context.Context) error             { return c.pingErr }
func (c *testCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	return 1, nil
}
func (c *testCache) Close() error { return nil }

var _ cache.Cache = (*testCache)(nil)

// --- health handler tests ---

func TestHealthHandler_AllOK(t *testing.T) {
	h := healthHandler(&testStore{}, &testCache{})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	services := data["services"].(map[string]any)
	assert.Equal(t, "ok", services["database"])
	assert.Equal(t, "ok", services["cache"])
}

func TestHealthHandler_DatabaseDegraded(t *testing.T) {
	h := healthHandler(&testStore{pingErr: errors.New("connection refused")}, &testCache{})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "DEGRADED", errObj["code"])
}

func TestHealthHandler_CacheDegraded(t *testing.T) {
	h := healthHandler(&testStore{}, &testCache{pingErr: errors.New("redis down")})

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// --- wiring helpers ---

func configCache(backend string) config.CacheConfig {
	return config.CacheConfig{Backend: backend, MaxEntries: 16}
}

func configAI(provider string) config.AIConfig {
	return config.AIConfig{Provider: provider}
}

func TestNewCacheBackends(t *testing.T) {
	c, err := newCache(configCache("memory"))
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = newCache(configCache("tape"))
	require.Error(t, err)
}

func TestNewProviderUnknown(t *testing.T) {
	_, err := newProvider(configAI("carrier-pigeon"))
	require.Error(t, err)

	p, err := newProvider(configAI("mock"))
	require.NoError(t, err)
	assert.Equal(t, "mock", p.Name())
}

// --- run() config validation tests ---

func TestRun_FailsOnMissingConfig(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AI_PROVIDER", "mock")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestRun_FailsOnInvalidDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "not-a-valid-url")
	t.Setenv("AI_PROVIDER", "mock")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect database")
}

func TestShutdownTimeout(t *testing.T) {
	assert.Equal(t, 30*time.Second, shutdownTimeout)
}
