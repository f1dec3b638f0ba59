package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/internal/cache"
	"github.com/mwhitfield/skillforge/internal/store"
	"github.com/mwhitfield/skillforge/pkg/models"
)

// minContentLength rejects content too short to analyze before any
// external call is attempted.
const minContentLength = 10

const (
	defaultCacheTTL    = 15 * time.Minute
	defaultCallTimeout = 60 * time.Second
	defaultMaxTokens   = 2048
	defaultTemperature = 0.3
)

// AnalyzeParams holds validated parameters for an analysis request.
type AnalyzeParams struct {
	Content     string
	ContentType models.ContentType
}

// Config tunes one AnalysisService instance.
type Config struct {
	CacheTTL    time.Duration
	CallTimeout time.Duration
	MaxTokens   int
	Temperature float32
	Retry       RetryConfig
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = defaultCacheTTL
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	return c
}

// AnalysisService orchestrates the analysis half of the pipeline: fingerprint
// cache lookup, rate-limited and retried provider invocation, response
// parsing and validation, cache write, and the durable audit row.
type AnalysisService struct {
	provider models.AIProvider
	limiter  *Limiter
	store    store.Store
	cache    cache.Cache
	cfg      Config
}

// NewAnalysisService creates a new AnalysisService. The limiter is shared
// across all concurrent invocations within the process.
func NewAnalysisService(provider models.AIProvider, limiter *Limiter, st store.Store, ca cache.Cache, cfg Config) *AnalysisService {
	return &AnalysisService{
		provider: provider,
		limiter:  limiter,
		store:    st,
		cache:    ca,
		cfg:      cfg.withDefaults(),
	}
}

// Analyze runs one full analysis cycle for the given content. Identical
// (content, contentType) pairs within the cache TTL invoke the external
// service at most once.
func (s *AnalysisService) Analyze(ctx context.Context, params AnalyzeParams) (*models.AnalysisResult, error) {
	if !params.ContentType.Valid() {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrInvalidRequest, params.ContentType)
	}
	if utf8.RuneCountInString(strings.TrimSpace(params.Content)) < minContentLength {
		return nil, fmt.Errorf("%w: content must be at least %d characters", ErrInvalidRequest, minContentLength)
	}
	fw, ok := models.FrameworkFor(params.ContentType)
	if !ok {
		return nil, fmt.Errorf("%w: no framework registered for %q", ErrInvalidRequest, params.ContentType)
	}

	key := cache.AnalysisKey(cache.Fingerprint(params.ContentType, params.Content))
	if raw, found, err := s.cache.Get(ctx, key); err == nil && found {
		var cached models.AnalysisResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()

	start := time.Now()
	var rawText string
	err := Retry(callCtx, s.cfg.Retry, func(ctx context.Context) error {
		var callErr error
		rawText, callErr = s.provider.Complete(ctx, models.CompletionRequest{
			System:      systemPrompt(fw),
			Prompt:      userPrompt(params.Content),
			MaxTokens:   s.cfg.MaxTokens,
			Temperature: s.cfg.Temperature,
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	obj, err := ParseAnalysis(rawText)
	if err != nil {
		return nil, err
	}
	validated, err := ValidateAnalysis(obj)
	if err != nil {
		return nil, err
	}
	if len(validated.QualityFlags) > 0 {
		slog.Warn("analysis quality degraded",
			"flags", validated.QualityFlags,
			"content_type", params.ContentType,
			"provider", s.provider.Name(),
		)
	}

	result := &models.AnalysisResult{
		ID:            uuid.New(),
		ContentType:   params.ContentType,
		ExtractedData: validated.ExtractedData,
		Confidence:    validated.Confidence,
		Notes:         validated.Notes,
		QualityFlags:  validated.QualityFlags,
		Provider:      s.provider.Name(),
		Duration:      time.Since(start),
		CreatedAt:     time.Now().UTC(),
	}

	if buf, err := json.Marshal(result); err == nil {
		_ = s.cache.Set(ctx, key, buf, s.cfg.CacheTTL)
	}

	// Audit row is best effort; the analysis itself already succeeded.
	if err := s.store.CreateContentAnalysis(ctx, result); err != nil {
		slog.Warn("recording analysis audit row failed", "error", err, "analysis_id", result.ID)
	}

	return result, nil
}
