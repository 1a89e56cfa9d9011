// Package manifest persists computed fingerprints as YAML files.
//
// A manifest records the key spec, the resulting key and hash, and the digest
// of every file that contributed to it, so a later run can explain which files
// changed. Writes are atomic and serialized across processes with a lock file
// next to the manifest.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/cachekey/internal/fingerprint"
)

// Version is the manifest format version written by this package.
const Version = 1

// ErrUnsupportedVersion is returned by Read for manifests from a newer format.
var ErrUnsupportedVersion = errors.New("unsupported manifest version")

// Manifest is the on-disk form of a fingerprint.
type Manifest struct {
	Version          int                         `yaml:"version"`
	GeneratedAt      time.Time                   `yaml:"generated_at"`
	Spec             string                      `yaml:"spec"`
	WorkingDirectory string                      `yaml:"working_directory"`
	Algorithm        fingerprint.Algorithm       `yaml:"algorithm"`
	Key              string                      `yaml:"key"`
	Hash             string                      `yaml:"hash"`
	Segments         []fingerprint.SegmentResult `yaml:"segments"`
}

// New builds a manifest for fp stamped with generatedAt.
func New(fp *fingerprint.Fingerprint, generatedAt time.Time) *Manifest {
	return &Manifest{
		Version:          Version,
		GeneratedAt:      generatedAt.UTC(),
		Spec:             fp.Spec,
		WorkingDirectory: fp.WorkingDirectory,
		Algorithm:        fp.Algorithm,
		Key:              fp.Key,
		Hash:             fp.Hash,
		Segments:         fp.Segments,
	}
}

// Write stores m at path. It holds the manifest's lock for the duration and
// replaces the file atomically.
func Write(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	lock := newFileLock(path)
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	return atomicWrite(path, data)
}

// Read loads the manifest at path under a shared lock.
func Read(path string) (*Manifest, error) {
	lock := newFileLock(path)
	if err := lock.RLock(); err != nil {
		return nil, err
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	if m.Version > Version {
		return nil, fmt.Errorf("%s: %w %d", path, ErrUnsupportedVersion, m.Version)
	}
	return &m, nil
}

// ChangeKind describes how a file differs between two manifests.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// Change is one file that differs between two manifests.
type Change struct {
	Rel  string
	Kind ChangeKind
}

// Diff lists the files that differ between prev and next, sorted by path.
// Files are compared by their working-directory-relative path across all
// file segments.
func Diff(prev, next *Manifest) []Change {
	before := fileDigests(prev)
	after := fileDigests(next)

	var changes []Change
	for rel, digest := range after {
		beforeDigest, ok := before[rel]
		switch {
		case !ok:
			changes = append(changes, Change{Rel: rel, Kind: Added})
		case beforeDigest != digest:
			changes = append(changes, Change{Rel: rel, Kind: Modified})
		}
	}
	for rel := range before {
		if _, ok := after[rel]; !ok {
			changes = append(changes, Change{Rel: rel, Kind: Removed})
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Rel < changes[j].Rel
	})
	return changes
}

func fileDigests(m *Manifest) map[string]string {
	digests := make(map[string]string)
	if m == nil {
		return digests
	}
	for _, seg := range m.Segments {
		for _, f := range seg.Files {
			digests[f.Rel] = f.Digest
		}
	}
	return digests
}
