package catalog

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/oriondb/oriondb/internal/oriorerr"
)

// Two on-disk copies may coexist during recovery: ORIGINAL and WAL_REPLAYED.
const (
	suffixOriginal    = ".ORIGINAL"
	suffixWalReplayed = ".WAL"
)

// PersistToFile writes the snapshot atomically via a temp-file-rename
// pattern, matching the "single file per database" layout of §6.3.
func (s *Snapshot) PersistToFile(path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".catalog-*.tmp")
	if err != nil {
		return oriorerr.Wrap(oriorerr.IO, "", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := s.Serialize(tmp); err != nil {
		tmp.Close()
		return oriorerr.Wrap(oriorerr.IO, "", err)
	}
	if err := tmp.Close(); err != nil {
		return oriorerr.Wrap(oriorerr.IO, "", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return oriorerr.Wrap(oriorerr.IO, "", err)
	}
	return nil
}

// LoadFromPath opens the catalog file at path, preferring a co-located
// `<path>.WAL` replay copy over `<path>.ORIGINAL` when both exist and are
// valid; on open, the newer valid one wins. A magic mismatch at either end
// of a candidate file is reported as CorruptCatalog only after both
// candidates (and the bare path) have been tried and failed.
func LoadFromPath(path string) (*Snapshot, error) {
	candidates := []string{path + suffixWalReplayed, path + suffixOriginal, path}
	var lastErr error
	for _, candidate := range candidates {
		f, err := os.Open(candidate)
		if err != nil {
			continue
		}
		snap, err := Deserialize(f)
		f.Close()
		if err == nil {
			return snap, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		return nil, oriorerr.WithCode(oriorerr.IO, "NotFound", "no catalog file found at "+path)
	}
	return nil, lastErr
}

// RoundTrip serializes then immediately deserializes s, used by tests to
// verify serialize ∘ deserialize == id.
func (s *Snapshot) RoundTrip() (*Snapshot, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf); err != nil {
		return nil, err
	}
	return Deserialize(&buf)
}
