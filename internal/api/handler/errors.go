package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mwhitfield/skillforge/internal/ai"
	"github.com/mwhitfield/skillforge/internal/api/response"
	"github.com/mwhitfield/skillforge/internal/publish"
	"github.com/mwhitfield/skillforge/internal/skills"
	"github.com/mwhitfield/skillforge/internal/store"
)

// writeServiceError maps pipeline and store errors onto HTTP responses.
// Upstream analysis failures surface as gateway errors so callers can tell
// them apart from their own bad input.
func writeServiceError(w http.ResponseWriter, err error) {
	var rle *ai.RateLimitError
	switch {
	case errors.As(err, &rle):
		secs := int(rle.RetryAfter.Seconds())
		if secs < 1 {
			secs = 60
		}
		w.Header().Set("Retry-After", strconv.Itoa(secs))
		response.Error(w, http.StatusTooManyRequests, "RATE_LIMITED",
			"The analysis service is rate limiting requests", nil)
	case errors.Is(err, ai.ErrInvalidRequest):
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Skill not found", nil)
	case errors.Is(err, store.ErrDuplicateName):
		response.Error(w, http.StatusConflict, "DUPLICATE_NAME",
			"A skill with this name already exists", nil)
	case errors.Is(err, ai.ErrAuth):
		response.Error(w, http.StatusBadGateway, "UPSTREAM_AUTH_FAILED",
			"The analysis service rejected our credentials", nil)
	case errors.Is(err, ai.ErrParse), errors.Is(err, ai.ErrMissingData):
		response.Error(w, http.StatusBadGateway, "ANALYSIS_MALFORMED",
			"The analysis service returned an unusable response", nil)
	case errors.Is(err, ai.ErrTimeout):
		response.Error(w, http.StatusGatewayTimeout, "ANALYSIS_TIMEOUT",
			"Analysis took too long and was cancelled", nil)
	case errors.Is(err, ai.ErrService):
		response.Error(w, http.StatusBadGateway, "ANALYSIS_UNAVAILABLE",
			"The analysis service is unavailable", nil)
	case errors.Is(err, publish.ErrRepoExists):
		response.Error(w, http.StatusConflict, "REPO_EXISTS",
			"A repository with this name already exists", nil)
	case errors.Is(err, publish.ErrAuthFailed):
		response.Error(w, http.StatusBadGateway, "PUBLISH_AUTH_FAILED",
			"GitHub rejected our credentials", nil)
	case errors.Is(err, skills.ErrPublishingDisabled):
		response.Error(w, http.StatusServiceUnavailable, "PUBLISHING_DISABLED",
			"Publishing is not configured on this server", nil)
	default:
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
