package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mwhitfield/skillforge/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const skillColumns = `id, name, description, skill_type, version, main_content, "references", metadata, created_at, updated_at`

// --- Skills ---

func (s *PostgresStore) CreateSkill(ctx context.Context, skill *models.Skill) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO skills (id, name, description, skill_type, version, main_content, "references", metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		skill.ID, skill.Name, skill.Description, skill.ContentType, skill.Version,
		skill.MainContent, skill.References, skill.Metadata, skill.CreatedAt, skill.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create skill: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSkill(ctx context.Context, id uuid.UUID) (*models.Skill, error) {
	skill, err := scanSkill(s.pool.QueryRow(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get skill: %w", err)
	}
	return skill, nil
}

func (s *PostgresStore) GetSkillByName(ctx context.Context, name string) (*models.Skill, error) {
	skill, err := scanSkill(s.pool.QueryRow(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE name = $1`, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get skill by name: %w", err)
	}
	return skill, nil
}

func (s *PostgresStore) ListSkills(ctx context.Context, filter SkillFilter) ([]*models.Skill, int, error) {
	conditions := []string{"TRUE"}
	args := []any{}
	argIdx := 1

	if filter.ContentType != "" {
		conditions = append(conditions, fmt.Sprintf("skill_type = $%d", argIdx))
		args = append(args, filter.ContentType)
		argIdx++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM skills WHERE " + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count skills: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	dataQuery := fmt.Sprintf(
		`SELECT `+skillColumns+` FROM skills WHERE %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		where, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var skills []*models.Skill
	for rows.Next() {
		skill, err := scanSkill(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, skill)
	}
	return skills, total, rows.Err()
}

// UpdateSkill applies a versioned update in a single transaction: it locks
// the current row, writes a snapshot of the current values into
// skill_versions, applies only the provided fields, increments version and
// refreshes updated_at. All-or-nothing: a crash between steps can never
// leave the skill at version N without the N-1 snapshot.
func (s *PostgresStore) UpdateSkill(ctx context.Context, id uuid.UUID, update SkillUpdate) (*models.Skill, error) {
	if update.Empty() {
		return s.GetSkill(ctx, id)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	cur, err := scanSkill(tx.QueryRow(ctx,
		`SELECT `+skillColumns+` FROM skills WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock skill for update: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(ctx,
		`INSERT INTO skill_versions (id, skill_id, version, main_content, "references", metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), cur.ID, cur.Version, cur.MainContent, cur.References, cur.Metadata, now)
	if err != nil {
		return nil, fmt.Errorf("snapshot skill version: %w", err)
	}

	sets := []string{"version = $2", "updated_at = $3"}
	args := []any{id, cur.Version + 1, now}
	argIdx := 4

	if update.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *update.Description)
		argIdx++
	}
	if update.MainContent != nil {
		sets = append(sets, fmt.Sprintf("main_content = $%d", argIdx))
		args = append(args, *update.MainContent)
		argIdx++
	}
	if update.References != nil {
		sets = append(sets, fmt.Sprintf(`"references" = $%d`, argIdx))
		args = append(args, update.References)
		argIdx++
	}
	if update.Metadata != nil {
		sets = append(sets, fmt.Sprintf("metadata = $%d", argIdx))
		args = append(args, update.Metadata)
		argIdx++
	}

	query := "UPDATE skills SET " + strings.Join(sets, ", ") + " WHERE id = $1 RETURNING " + skillColumns
	updated, err := scanSkill(tx.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update skill: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return updated, nil
}

func (s *PostgresStore) DeleteSkill(ctx context.Context, id uuid.UUID) error {
	// skill_versions cascade, content_analyses drop to NULL (schema FKs).
	tag, err := s.pool.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListSkillVersions(ctx context.Context, skillID uuid.UUID) ([]*models.SkillVersion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, skill_id, version, main_content, "references", metadata, created_at
		 FROM skill_versions WHERE skill_id = $1 ORDER BY version ASC`, skillID)
	if err != nil {
		return nil, fmt.Errorf("list skill versions: %w", err)
	}
	defer rows.Close()

	var versions []*models.SkillVersion
	for rows.Next() {
		var v models.SkillVersion
		if err := rows.Scan(&v.ID, &v.SkillID, &v.Version, &v.MainContent,
			&v.References, &v.Metadata, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan skill version: %w", err)
		}
		versions = append(versions, &v)
	}
	return versions, rows.Err()
}

// --- Content Analyses ---

func (s *PostgresStore) CreateContentAnalysis(ctx context.Context, result *models.AnalysisResult) error {
	payload := map[string]any{
		"extracted_data": result.ExtractedData,
		"notes":          result.Notes,
		"quality_flags":  result.QualityFlags,
		"provider":       result.Provider,
		"duration_ms":    result.Duration.Milliseconds(),
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO content_analyses (id, skill_id, content_type, analysis_result, confidence, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		result.ID, result.SkillID, result.ContentType, payload, result.Confidence, result.CreatedAt)
	if err != nil {
		return fmt.Errorf("create content analysis: %w", err)
	}
	return nil
}

func (s *PostgresStore) AttachAnalysisToSkill(ctx context.Context, analysisID, skillID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE content_analyses SET skill_id = $2 WHERE id = $1`, analysisID, skillID)
	if err != nil {
		return fmt.Errorf("attach analysis to skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		key.ID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE deleted_at IS NULL ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// scanSkill reads one skills row from a pgx.Row or pgx.Rows.
func scanSkill(row pgx.Row) (*models.Skill, error) {
	var sk models.Skill
	err := row.Scan(&sk.ID, &sk.Name, &sk.Description, &sk.ContentType, &sk.Version,
		&sk.MainContent, &sk.References, &sk.Metadata, &sk.CreatedAt, &sk.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sk, nil
}

// isUniqueViolation checks if a pgx error is a unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

var _ Store = (*PostgresStore)(nil)
