package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/internal/ai"
	"github.com/mwhitfield/skillforge/internal/api/response"
	"github.com/mwhitfield/skillforge/pkg/models"
)

// Analyzer defines the interface the analyze handler depends on.
type Analyzer interface {
	Analyze(ctx context.Context, params ai.AnalyzeParams) (*models.AnalysisResult, error)
}

// NewAnalyzeHandler returns an http.HandlerFunc for POST /api/v1/analyze.
// It runs the analysis half of the pipeline without persisting a skill.
func NewAnalyzeHandler(svc Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content     string `json:"content"`
			ContentType string `json:"content_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
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

		result, err := svc.Analyze(r.Context(), ai.AnalyzeParams{
			Content:     req.Content,
			ContentType: models.ContentType(req.ContentType),
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		response.JSON(w, analysisResponse{
			ID:            result.ID,
			ContentType:   string(result.ContentType),
			ExtractedData: result.ExtractedData,
			Confidence:    result.Confidence,
			Notes:         result.Notes,
			QualityFlags:  result.QualityFlags,
			Provider:      result.Provider,
			DurationMS:    result.Duration.Milliseconds(),
			CreatedAt:     result.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
}

type analysisResponse struct {
	ID            uuid.UUID      `json:"id"`
	ContentType   string         `json:"content_type"`
	ExtractedData map[string]any `json:"extracted_data"`
	Confidence    float64        `json:"confidence"`
	Notes         string         `json:"notes,omitempty"`
	QualityFlags  []string       `json:"quality_flags,omitempty"`
	Provider      string         `json:"provider"`
	DurationMS    int64          `json:"duration_ms"`
	CreatedAt     string         `json:"created_at"`
}
