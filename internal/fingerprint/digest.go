package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Algorithm names the digest used for file contents.
type Algorithm string

const (
	// SHA256 digests file contents with SHA-256.
	SHA256 Algorithm = "sha256"
	// XXHash digests file contents with 64-bit xxHash. Faster, not collision resistant.
	XXHash Algorithm = "xxhash"
)

// ParseAlgorithm validates an algorithm name (case-insensitive).
// An empty name selects SHA256.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(name))) {
	case "", SHA256:
		return SHA256, nil
	case XXHash:
		return XXHash, nil
	default:
		return "", fmt.Errorf("unknown hash algorithm %q, must be one of: sha256, xxhash", name)
	}
}

func (a Algorithm) newHash() hash.Hash {
	if a == XXHash {
		return xxhash.New()
	}
	return sha256.New()
}

// digestFile returns the hex digest of a file's contents.
func digestFile(path string, algorithm Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	h := algorithm.newHash()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// sha256Hash calculates the SHA256 hash of a string and returns it as a hex string.
func sha256Hash(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
