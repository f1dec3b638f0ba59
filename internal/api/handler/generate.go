package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mwhitfield/skillforge/internal/api/response"
	"github.com/mwhitfield/skillforge/internal/skills"
	"github.com/mwhitfield/skillforge/pkg/models"
)

// Generator defines the interface the generate handler depends on.
type Generator interface {
	Generate(ctx context.Context, params skills.GenerateParams) (*skills.GenerateResult, error)
}

// NewGenerateHandler returns an http.HandlerFunc for POST /api/v1/skills/generate.
// It runs the full pipeline: analyze, render, persist.
func NewGenerateHandler(svc Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Content     string `json:"content"`
			ContentType string `json:"content_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}
		if req.Name == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "name is required", nil)
			return
		}
		if req.Content == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content is required", nil)
			return
		}
		if req.ContentType == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "content_type is required", nil)
			return
		}

		result, err := svc.Generate(r.Context(), skills.GenerateParams{
			Name:        req.Name,
			Description: req.Description,
			Content:     req.Content,
			ContentType: models.ContentType(req.ContentType),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		response.Created(w, generateResponse{
			Skill: result.Skill,
			Analysis: analysisSummary{
				ID:           result.Analysis.ID.String(),
				Confidence:   result.Analysis.Confidence,
				QualityFlags: result.Analysis.QualityFlags,
				Provider:     result.Analysis.Provider,
			},
		})
	}
}

type generateResponse struct {
	Skill    *models.Skill   `json:"skill"`
	Analysis analysisSummary `json:"analysis"`
}

type analysisSummary struct {
	ID           string   `json:"id"`
	Confidence   float64  `json:"confidence"`
	QualityFlags []string `json:"quality_flags,omitempty"`
	Provider     string   `json:"provider"`
}
