package models

import (
	"time"

	"github.com/google/uuid"
)

// Skill is the versioned artifact generated from an analysis: a main document
// plus reference documents and metadata. Name is a globally unique slug.
// Mutated only through the store's versioned update, which increments Version.
type Skill struct {
	ID          uuid.UUID         `db:"id"           json:"id"`
	Name        string            `db:"name"         json:"name"`
	Description string            `db:"description"  json:"description"`
	ContentType ContentType       `db:"skill_type"   json:"content_type"`
	Version     int               `db:"version"      json:"version"`
	MainContent string            `db:"main_content" json:"main_content"`
	References  map[string]string `db:"references"   json:"references"`
	Metadata    map[string]any    `db:"metadata"     json:"metadata"`
	CreatedAt   time.Time         `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time         `db:"updated_at"   json:"updated_at"`
}

// SkillVersion is an immutable snapshot of a skill's mutable fields, taken
// immediately before each update. One row per historical version.
type SkillVersion struct {
	ID          uuid.UUID         `db:"id"           json:"id"`
	SkillID     uuid.UUID         `db:"skill_id"     json:"skill_id"`
	Version     int               `db:"version"      json:"version"`
	MainContent string            `db:"main_content" json:"main_content"`
	References  map[string]string `db:"references"   json:"references"`
	Metadata    map[string]any    `db:"metadata"     json:"metadata"`
	CreatedAt   time.Time         `db:"created_at"   json:"created_at"`
}
