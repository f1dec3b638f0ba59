package ai

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/mwhitfield/skillforge/pkg/models"
)

// reFencedJSON matches a fenced code block labeled json (label optional) and
// captures its interior.
var reFencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseAnalysis extracts a JSON object from the raw text an analysis provider
// returned. Providers format inconsistently, so three strategies are tried in
// order: the whole text as JSON, the interior of a fenced json code block,
// and the first balanced {...} substring. Fails with ErrParse if none work.
func ParseAnalysis(raw string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj, nil
	}

	if m := reFencedJSON.FindStringSubmatch(raw); m != nil {
		if err := json.Unmarshal([]byte(m[1]), &obj); err == nil {
			return obj, nil
		}
	}

	if candidate, ok := balancedObject(raw); ok {
		if err := json.Unmarshal([]byte(candidate), &obj); err == nil {
			return obj, nil
		}
	}

	return nil, fmt.Errorf("%w: no JSON object found in response", ErrParse)
}

// balancedObject returns the first brace-balanced {...} substring of s,
// tracking string literals so braces inside them don't count.
func balancedObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

// ValidatedAnalysis is the structurally checked output of one analysis call.
type ValidatedAnalysis struct {
	ExtractedData map[string]any
	Confidence    float64
	Notes         string
	QualityFlags  []string
}

const defaultConfidence = 0.5

// ValidateAnalysis enforces the structural contract on a parsed response:
// extractedData must be present and an object; confidence must be a number
// in [0,1]. A missing or out-of-range confidence is substituted with 0.5
// and recorded as a quality flag rather than failing the request.
func ValidateAnalysis(obj map[string]any) (*ValidatedAnalysis, error) {
	data, ok := obj["extractedData"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: extractedData must be an object", ErrMissingData)
	}

	v := &ValidatedAnalysis{ExtractedData: data}

	switch c := obj["confidence"].(type) {
	case float64:
		if c < 0 || c > 1 {
			v.Confidence = defaultConfidence
			v.QualityFlags = append(v.QualityFlags, models.FlagConfidenceDefaulted)
		} else {
			v.Confidence = c
		}
	default:
		v.Confidence = defaultConfidence
		v.QualityFlags = append(v.QualityFlags, models.FlagConfidenceDefaulted)
	}

	if notes, ok := obj["notes"].(string); ok {
		v.Notes = notes
	}

	return v, nil
}
