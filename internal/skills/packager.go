package skills

import (
	"archive/zip"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"
)

// archiveEpoch is the fixed modification time stamped on every archive entry.
// Together with sorted entry order it makes packaging deterministic: the same
// bundle always produces byte-identical output.
var archiveEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Package serializes a rendered bundle into a ZIP archive at maximum
// compression. The main document is stored as SKILL.md and references under
// references/.
func Package(bundle *Bundle) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	entries := []struct {
		name string
		body string
	}{
		{name: "SKILL.md", body: bundle.MainContent},
	}
	for _, name := range slices.Sorted(maps.Keys(bundle.References)) {
		entries = append(entries, struct {
			name string
			body string
		}{name: "references/" + name, body: bundle.References[name]})
	}

	for _, entry := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.name,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		})
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", entry.name, err)
		}
		if _, err := w.Write([]byte(entry.body)); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", entry.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
