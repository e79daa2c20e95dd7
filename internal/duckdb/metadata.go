package duckdb

import (
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for an input file. Inputs that
// cannot be stat'ed (stdin, S3) have only a Path.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Local reports whether the fingerprint was taken from an on-disk file.
func (f FileFingerprint) Local() bool {
	return !f.ModTime.IsZero()
}
