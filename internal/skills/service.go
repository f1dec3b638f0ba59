// Package skills turns analysis results into versioned skill documents:
// rendering, packaging, persistence, and publication.
package skills

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/internal/ai"
	"github.com/mwhitfield/skillforge/internal/publish"
	"github.com/mwhitfield/skillforge/internal/storage"
	"github.com/mwhitfield/skillforge/internal/store"
	"github.com/mwhitfield/skillforge/pkg/models"
)

// ErrPublishingDisabled is returned when no publisher is configured.
var ErrPublishingDisabled = errors.New("publishing is not configured")

// Service drives the artifact half of the pipeline on top of the analysis
// service. The publisher and archive store are optional; nil disables the
// corresponding operation.
type Service struct {
	analyzer  *ai.AnalysisService
	store     store.Store
	publisher publish.Client
	archives  storage.ArchiveStore
}

func NewService(analyzer *ai.AnalysisService, st store.Store, publisher publish.Client, archives storage.ArchiveStore) *Service {
	return &Service{
		analyzer:  analyzer,
		store:     st,
		publisher: publisher,
		archives:  archives,
	}
}

// GenerateParams describes a full generation request.
type GenerateParams struct {
	Name        string
	Description string
	Content     string
	ContentType models.ContentType
}

// GenerateResult pairs the persisted skill with the analysis that produced it.
type GenerateResult struct {
	Skill    *models.Skill
	Analysis *models.AnalysisResult
}

// Generate runs the end-to-end pipeline: analyze the content, render the
// document bundle, and persist the skill at version 1.
func (s *Service) Generate(ctx context.Context, params GenerateParams) (*GenerateResult, error) {
	name := Slugify(params.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must contain at least one letter or digit", ai.ErrInvalidRequest)
	}

	analysis, err := s.analyzer.Analyze(ctx, ai.AnalyzeParams{
		Content:     params.Content,
		ContentType: params.ContentType,
	})
	if err != nil {
		return nil, err
	}

	bundle, err := Render(RenderInput{
		Name:        params.Name,
		Description: params.Description,
		ContentType: params.ContentType,
		Data:        analysis.ExtractedData,
		Confidence:  analysis.Confidence,
		Notes:       analysis.Notes,
		GeneratedAt: analysis.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	skill := &models.Skill{
		ID:          uuid.New(),
		Name:        name,
		Description: params.Description,
		ContentType: params.ContentType,
		Version:     1,
		MainContent: bundle.MainContent,
		References:  bundle.References,
		Metadata: map[string]any{
			"analysis_id":   analysis.ID.String(),
			"provider":      analysis.Provider,
			"confidence":    analysis.Confidence,
			"quality_flags": analysis.QualityFlags,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSkill(ctx, skill); err != nil {
		return nil, err
	}

	// Provenance link is best effort; the skill row already carries the
	// analysis id in its metadata.
	if err := s.store.AttachAnalysisToSkill(ctx, analysis.ID, skill.ID); err != nil {
		slog.Warn("attaching analysis to skill failed",
			"error", err, "analysis_id", analysis.ID, "skill_id", skill.ID)
	}

	return &GenerateResult{Skill: skill, Analysis: analysis}, nil
}

// Archive packages the skill's current document bundle into a deterministic
// ZIP archive. When an archive store is configured the archive is also
// uploaded there, keyed by name and version.
func (s *Service) Archive(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	skill, err := s.store.GetSkill(ctx, id)
	if err != nil {
		return nil, "", err
	}

	data, err := Package(&Bundle{MainContent: skill.MainContent, References: skill.References})
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s-v%d.zip", skill.Name, skill.Version)
	if s.archives != nil {
		if _, err := s.archives.PutArchive(ctx, filename, data); err != nil {
			slog.Warn("uploading archive failed", "error", err, "archive", filename)
		}
	}
	return data, filename, nil
}

// PublishParams controls repository creation during publication.
type PublishParams struct {
	RepoName string
	Private  bool
}

// Publish pushes the skill's document bundle to a new GitHub repository.
func (s *Service) Publish(ctx context.Context, id uuid.UUID, params PublishParams) (*publish.Result, error) {
	if s.publisher == nil {
		return nil, ErrPublishingDisabled
	}

	skill, err := s.store.GetSkill(ctx, id)
	if err != nil {
		return nil, err
	}

	files := map[string][]byte{"SKILL.md": []byte(skill.MainContent)}
	for name, body := range skill.References {
		files["references/"+name] = []byte(body)
	}

	repoName := params.RepoName
	if repoName == "" {
		repoName = "skill-" + skill.Name
	}

	return s.publisher.Publish(ctx, publish.Request{
		RepoName:    repoName,
		Description: skill.Description,
		Private:     params.Private,
		Files:       files,
	})
}
