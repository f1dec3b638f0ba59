package models

import (
	"time"

	"github.com/google/uuid"
)

// FlagConfidenceDefaulted is recorded on an AnalysisResult when the upstream
// service omitted confidence or returned one outside [0,1] and the validator
// substituted the fixed default instead of failing.
const FlagConfidenceDefaulted = "confidence_defaulted"

// AnalysisResult holds the validated output of one analysis-service call.
// Immutable once created.
type AnalysisResult struct {
	ID            uuid.UUID      `db:"id"              json:"id"`
	SkillID       *uuid.UUID     `db:"skill_id"        json:"skill_id,omitempty"`
	ContentType   ContentType    `db:"content_type"    json:"content_type"`
	ExtractedData map[string]any `db:"extracted_data"  json:"extracted_data"`
	Confidence    float64        `db:"confidence"      json:"confidence"`
	Notes         string         `db:"notes"           json:"notes,omitempty"`
	QualityFlags  []string       `db:"quality_flags"   json:"quality_flags,omitempty"`
	Provider      string         `db:"provider"        json:"provider"`
	Duration      time.Duration  `db:"duration"        json:"duration_ms"`
	CreatedAt     time.Time      `db:"created_at"      json:"created_at"`
}
