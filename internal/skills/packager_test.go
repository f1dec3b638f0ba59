package skills

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBundle() *Bundle {
	return &Bundle{
		MainContent: "# Main\n\nbody\n",
		References: map[string]string{
			"workflow.md":       "# Workflow\n",
			"best-practices.md": "# Best Practices\n",
		},
	}
}

func TestPackageRoundTrip(t *testing.T) {
	data, err := Package(testBundle())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(body)

		assert.Equal(t, zip.Deflate, f.Method)
		assert.Equal(t, archiveEpoch.Unix(), f.Modified.Unix(), "fixed timestamp on %s", f.Name)
	}

	assert.Equal(t, map[string]string{
		"SKILL.md":                     "# Main\n\nbody\n",
		"references/best-practices.md": "# Best Practices\n",
		"references/workflow.md":       "# Workflow\n",
	}, got)
}

func TestPackageEntryOrder(t *testing.T) {
	data, err := Package(testBundle())
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"SKILL.md",
		"references/best-practices.md",
		"references/workflow.md",
	}, names, "SKILL.md first, then references sorted")
}

func TestPackageDeterministic(t *testing.T) {
	a, err := Package(testBundle())
	require.NoError(t, err)
	b, err := Package(testBundle())
	require.NoError(t, err)
	assert.Equal(t, a, b, "same bundle must produce byte-identical archives")
}

func TestPackageEmptyReferences(t *testing.T) {
	data, err := Package(&Bundle{MainContent: "# Solo\n"})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "SKILL.md", zr.File[0].Name)
}
