package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/internal/api/response"
	"github.com/mwhitfield/skillforge/internal/store"
	"github.com/mwhitfield/skillforge/pkg/models"
)

// NewListSkillsHandler returns an http.HandlerFunc for GET /api/v1/skills.
func NewListSkillsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.SkillFilter{
			ContentType: models.ContentType(r.URL.Query().Get("content_type")),
			Page:        queryInt(r, "page", 1),
			Limit:       queryInt(r, "limit", 20),
		}
		if filter.ContentType != "" && !filter.ContentType.Valid() {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"content_type must be one of process, expertise, creative, technical", nil)
			return
		}

		items, total, err := st.ListSkills(r.Context(), filter)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		response.Collection(w, items, response.PaginationMeta{
			Page:    filter.Page,
			Limit:   filter.Limit,
			Total:   total,
			HasNext: filter.Page*filter.Limit < total,
		})
	}
}

// NewGetSkillHandler returns an http.HandlerFunc for GET /api/v1/skills/{skillID}.
func NewGetSkillHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := skillID(w, r)
		if !ok {
			return
		}
		skill, err := st.GetSkill(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, skill)
	}
}

// NewUpdateSkillHandler returns an http.HandlerFunc for PATCH /api/v1/skills/{skillID}.
// Every applied update snapshots the prior revision and bumps the version.
func NewUpdateSkillHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := skillID(w, r)
		if !ok {
			return
		}

		var req struct {
			Description *string           `json:"description"`
			MainContent *string           `json:"main_content"`
			References  map[string]string `json:"references"`
			Metadata    map[string]any    `json:"metadata"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		skill, err := st.UpdateSkill(r.Context(), id, store.SkillUpdate{
			Description: req.Description,
			MainContent: req.MainContent,
			References:  req.References,
			Metadata:    req.Metadata,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, skill)
	}
}

// NewDeleteSkillHandler returns an http.HandlerFunc for DELETE /api/v1/skills/{skillID}.
func NewDeleteSkillHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := skillID(w, r)
		if !ok {
			return
		}
		if err := st.DeleteSkill(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		response.NoContent(w)
	}
}

// NewListVersionsHandler returns an http.HandlerFunc for GET /api/v1/skills/{skillID}/versions.
func NewListVersionsHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := skillID(w, r)
		if !ok {
			return
		}
		// 404 for unknown skills rather than an empty list
		if _, err := st.GetSkill(r.Context(), id); err != nil {
			writeServiceError(w, err)
			return
		}
		versions, err := st.ListSkillVersions(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.JSON(w, versions)
	}
}

func skillID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "skillID"))
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "skillID must be a valid UUID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, defaultVal int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
