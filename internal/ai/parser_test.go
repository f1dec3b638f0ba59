package ai

import (
	"testing"

	"github.com/mwhitfield/skillforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysisWholeJSON(t *testing.T) {
	obj, err := ParseAnalysis(`{"extractedData": {"summary": "s"}, "confidence": 0.9}`)
	require.NoError(t, err)
	assert.Equal(t, 0.9, obj["confidence"])
}

func TestParseAnalysisFencedBlock(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n{\"extractedData\": {\"summary\": \"s\"}}\n```\nLet me know if you need more."
	obj, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Contains(t, obj, "extractedData")
}

func TestParseAnalysisUnlabeledFence(t *testing.T) {
	raw := "```\n{\"confidence\": 0.7, \"extractedData\": {}}\n```"
	obj, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.7, obj["confidence"])
}

func TestParseAnalysisEmbeddedObject(t *testing.T) {
	raw := `The result is {"extractedData": {"note": "braces } inside { strings"}, "confidence": 0.8} as requested.`
	obj, err := ParseAnalysis(raw)
	require.NoError(t, err)
	assert.Equal(t, 0.8, obj["confidence"])

	data := obj["extractedData"].(map[string]any)
	assert.Equal(t, "braces } inside { strings", data["note"])
}

func TestParseAnalysisNoJSON(t *testing.T) {
	_, err := ParseAnalysis("I could not produce structured output, sorry.")
	require.ErrorIs(t, err, ErrParse)
}

func TestValidateAnalysisHappyPath(t *testing.T) {
	v, err := ValidateAnalysis(map[string]any{
		"extractedData": map[string]any{"summary": "s"},
		"confidence":    0.72,
		"notes":         "looks solid",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.72, v.Confidence)
	assert.Equal(t, "looks solid", v.Notes)
	assert.Empty(t, v.QualityFlags)
}

func TestValidateAnalysisMissingExtractedData(t *testing.T) {
	_, err := ValidateAnalysis(map[string]any{"confidence": 0.9})
	require.ErrorIs(t, err, ErrMissingData)

	_, err = ValidateAnalysis(map[string]any{"extractedData": "not an object"})
	require.ErrorIs(t, err, ErrMissingData)
}

func TestValidateAnalysisConfidenceDefaulted(t *testing.T) {
	cases := []struct {
		name string
		obj  map[string]any
	}{
		{"missing", map[string]any{"extractedData": map[string]any{}}},
		{"negative", map[string]any{"extractedData": map[string]any{}, "confidence": -0.1}},
		{"above one", map[string]any{"extractedData": map[string]any{}, "confidence": 1.7}},
		{"wrong type", map[string]any{"extractedData": map[string]any{}, "confidence": "high"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := ValidateAnalysis(tc.obj)
			require.NoError(t, err)
			assert.Equal(t, 0.5, v.Confidence)
			assert.Equal(t, []string{models.FlagConfidenceDefaulted}, v.QualityFlags)
		})
	}
}

func TestValidateAnalysisBoundaryConfidence(t *testing.T) {
	for _, c := range []float64{0, 1} {
		v, err := ValidateAnalysis(map[string]any{
			"extractedData": map[string]any{},
			"confidence":    c,
		})
		require.NoError(t, err)
		assert.Equal(t, c, v.Confidence)
		assert.Empty(t, v.QualityFlags, "boundary value %v is in range", c)
	}
}
