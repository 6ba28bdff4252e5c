// Package checksum provides content checksums for tracked artifacts.
// All checksums are SHA256 and carry a "sha256:" prefix so the registry
// format can grow other algorithms later without ambiguity.
package checksum

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
)

// Unknown is the sentinel recorded by registry schema versions that did
// not track checksums. Reconciliation treats it as "no usable baseline".
const Unknown = "unknown"

// File calculates the SHA256 checksum of a file.
func File(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", hash.Sum(nil)), nil
}

// Bytes calculates the SHA256 checksum of in-memory content.
func Bytes(content []byte) string {
	return fmt.Sprintf("sha256:%x", sha256.Sum256(content))
}

// IsUnknown reports whether cs is the Unknown sentinel (or empty, which
// older registries wrote for the same situation).
func IsUnknown(cs string) bool {
	return cs == "" || cs == Unknown
}
