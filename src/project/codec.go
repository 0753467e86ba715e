package project

import (
	"bytes"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/splotview/splotview/src/logging"
	"github.com/splotview/splotview/src/session"
)

// Save writes the session to path as a gzip-compressed gob record graph.
// The file is written via a temp-and-rename so a failed save never clobbers
// an existing project file.
func Save(path string, s *session.Session) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(Snapshot(s)); err != nil {
		return fmt.Errorf("project: encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("project: compress %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("project: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("project: write %s: %w", path, err)
	}
	logging.Infof("project: saved %s (%d pages, %d files)", path, len(s.Pages), s.Files.Len())
	return nil
}

// Load reads a project file written by Save. Files from before compression
// was introduced are plain gob; when the gzip header is absent the raw bytes
// are decoded directly.
func Load(path string) (*session.Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("project: read %s: %w", path, err)
	}
	r, err := decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", path, err)
	}
	logging.Infof("project: loaded %s (%d pages, %d files)", path, len(r.Pages), len(r.Files))
	return Restore(r), nil
}

func decodeRecord(raw []byte) (*Record, error) {
	if zr, err := gzip.NewReader(bytes.NewReader(raw)); err == nil {
		defer zr.Close()
		var r Record
		if err := gob.NewDecoder(zr).Decode(&r); err != nil {
			return nil, err
		}
		return &r, nil
	}
	// Legacy uncompressed form.
	var r Record
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
