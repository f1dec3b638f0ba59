package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/mwhitfield/skillforge/pkg/models"
)

// Fingerprint computes the deterministic cache key material for a piece of
// content: identical (content, contentType) pairs always hash identically.
func Fingerprint(contentType models.ContentType, content string) string {
	h := sha256.New()
	h.Write([]byte(contentType))
	h.Write([]byte{'\n'})
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))
}

func AnalysisKey(fingerprint string) string {
	return fmt.Sprintf("analysis:%s", fingerprint)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
