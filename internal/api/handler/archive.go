package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/mwhitfield/skillforge/internal/api/response"
	"github.com/mwhitfield/skillforge/internal/publish"
	"github.com/mwhitfield/skillforge/internal/skills"
)

// Archiver defines the interface the archive handler depends on.
type Archiver interface {
	Archive(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

// Publisher defines the interface the publish handler depends on.
type Publisher interface {
	Publish(ctx context.Context, id uuid.UUID, params skills.PublishParams) (*publish.Result, error)
}

// NewArchiveHandler returns an http.HandlerFunc for GET /api/v1/skills/{skillID}/archive.
// The response body is the packaged ZIP itself.
func NewArchiveHandler(svc Archiver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := skillID(w, r)
		if !ok {
			return
		}

		data, filename, err := svc.Archive(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

// NewPublishHandler returns an http.HandlerFunc for POST /api/v1/skills/{skillID}/publish.
func NewPublishHandler(svc Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := skillID(w, r)
		if !ok {
			return
		}

		var req struct {
			RepoName string `json:"repo_name"`
			Private  bool   `json:"private"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
				return
			}
		}

		result, err := svc.Publish(r.Context(), id, skills.PublishParams{
			RepoName: req.RepoName,
			Private:  req.Private,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		response.Created(w, result)
	}
}
