package modhash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// chunkSize is the read buffer used while streaming a file into the digest.
const chunkSize = 1 << 20

var (
	// ErrNotFound is returned when the file to hash does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrHashingDisabled is returned when Compute is asked to hash with AlgorithmNone.
	ErrHashingDisabled = errors.New("hashing disabled")
	// ErrUnknownAlgorithm is returned by ParseAlgorithm for unsupported names.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
)

// Algorithm selects the digest used for content identities.
type Algorithm string

const (
	AlgorithmMD5     Algorithm = "md5"
	AlgorithmSHA1    Algorithm = "sha1"
	AlgorithmSHA256  Algorithm = "sha256"
	AlgorithmBLAKE2b Algorithm = "blake2b"
	AlgorithmNone    Algorithm = "none"
)

// DefaultAlgorithm is the 128-bit digest published by the game server.
const DefaultAlgorithm = AlgorithmMD5

// ParseAlgorithm converts a settings value (case-insensitive) into an Algorithm.
// An empty string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultAlgorithm, nil
	case "md5":
		return AlgorithmMD5, nil
	case "sha1", "sha-1":
		return AlgorithmSHA1, nil
	case "sha256", "sha-256":
		return AlgorithmSHA256, nil
	case "blake2b", "blake2b-256":
		return AlgorithmBLAKE2b, nil
	case "none":
		return AlgorithmNone, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// Enabled reports whether the algorithm produces hashes at all.
func (a Algorithm) Enabled() bool {
	return a != AlgorithmNone && a != ""
}

// String returns the canonical lowercase name.
func (a Algorithm) String() string {
	return string(a)
}

func (a Algorithm) newHash() (hash.Hash, error) {
	switch a {
	case AlgorithmMD5:
		return md5.New(), nil
	case AlgorithmSHA1:
		return sha1.New(), nil
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmBLAKE2b:
		return blake2b.New256(nil)
	case AlgorithmNone:
		return nil, ErrHashingDisabled
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, string(a))
	}
}

// Compute returns the lowercase hex content identity of filePath bound to label.
// The file is streamed in fixed-size chunks; label is appended as a trailing block.
func Compute(filePath, label string, algo Algorithm) (string, error) {
	if strings.TrimSpace(filePath) == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	h, err := algo.newHash()
	if err != nil {
		return "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer f.Close()

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("read %s: %w", filePath, err)
	}

	// hash.Hash.Write never returns an error.
	_, _ = h.Write([]byte(label))

	return hex.EncodeToString(h.Sum(nil)), nil
}

// ComputeFile is Compute with the label defaulted to the file's base name
// without extension.
func ComputeFile(filePath string, algo Algorithm) (string, error) {
	return Compute(filePath, BaseName(filePath), algo)
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Equal compares two hex identities case-insensitively.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
