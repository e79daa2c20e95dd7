package duckdb

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/inodb/vibe-amr/internal/pileup"
)

// PileupCache keeps parsed pileup records as gob files so repeated runs
// over the same pileup skip text parsing:
//
//	{dir}/{name}.gob       (serialized records)
//	{dir}/{name}.gob.meta  (source file fingerprint)
type PileupCache struct {
	dir  string
	name string
}

// NewPileupCache creates a cache in dir for the pileup at path.
func NewPileupCache(dir, path string) *PileupCache {
	return &PileupCache{dir: dir, name: filepath.Base(path)}
}

func (pc *PileupCache) gobPath() string {
	return filepath.Join(pc.dir, pc.name+".gob")
}

func (pc *PileupCache) metaPath() string {
	return filepath.Join(pc.dir, pc.name+".gob.meta")
}

// Valid checks whether the cached records match the current pileup file.
func (pc *PileupCache) Valid(src FileFingerprint) bool {
	meta, err := pc.readMeta()
	if err != nil {
		return false
	}

	checks := []struct{ key, val string }{
		{"pileup_path", src.Path},
		{"pileup_size", strconv.FormatInt(src.Size, 10)},
		{"pileup_modtime", src.ModTime.UTC().Format(time.RFC3339Nano)},
	}
	for _, c := range checks {
		if meta[c.key] != c.val {
			return false
		}
	}

	if _, err := os.Stat(pc.gobPath()); err != nil {
		return false
	}
	return true
}

// Load reads the cached records.
func (pc *PileupCache) Load() ([]*pileup.Record, error) {
	f, err := os.Open(pc.gobPath())
	if err != nil {
		return nil, fmt.Errorf("open pileup cache: %w", err)
	}
	defer f.Close()

	var recs []*pileup.Record
	if err := gob.NewDecoder(f).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode pileup cache: %w", err)
	}
	return recs, nil
}

// Write serializes recs and records the source fingerprint.
func (pc *PileupCache) Write(recs []*pileup.Record, src FileFingerprint) error {
	if err := os.MkdirAll(pc.dir, 0755); err != nil {
		return fmt.Errorf("create pileup cache directory: %w", err)
	}

	f, err := os.Create(pc.gobPath())
	if err != nil {
		return fmt.Errorf("create pileup cache: %w", err)
	}
	if err := gob.NewEncoder(f).Encode(recs); err != nil {
		f.Close()
		os.Remove(pc.gobPath())
		return fmt.Errorf("encode pileup cache: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close pileup cache: %w", err)
	}

	return pc.writeMeta(src)
}

// Clear removes the cached files.
func (pc *PileupCache) Clear() {
	os.Remove(pc.gobPath())
	os.Remove(pc.metaPath())
}

func (pc *PileupCache) writeMeta(src FileFingerprint) error {
	lines := []string{
		"pileup_path=" + src.Path,
		"pileup_size=" + strconv.FormatInt(src.Size, 10),
		"pileup_modtime=" + src.ModTime.UTC().Format(time.RFC3339Nano),
		"created_at=" + time.Now().UTC().Format(time.RFC3339),
		"",
	}
	return os.WriteFile(pc.metaPath(), []byte(strings.Join(lines, "\n")), 0644)
}

func (pc *PileupCache) readMeta() (map[string]string, error) {
	data, err := os.ReadFile(pc.metaPath())
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			meta[k] = v
		}
	}
	return meta, nil
}
