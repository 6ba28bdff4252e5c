// Package testutil provides small fixtures shared across test
// packages: bundle directories, isolated state/cache roots, and
// registry entry builders.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/syncpack/pkg/paths"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/stretchr/testify/require"
)

// WriteFiles materializes a file map under dir, creating parent
// directories as needed.
func WriteFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// TempBundle writes a bundle layout into a fresh temp directory and
// returns its path.
func TempBundle(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	WriteFiles(t, dir, files)
	return dir
}

// IsolateState points the cache and state directories at temp dirs so
// tests never touch the real lock or backup locations.
func IsolateState(t *testing.T) {
	t.Helper()
	t.Setenv(paths.EnvCacheDir, t.TempDir())
	t.Setenv(paths.EnvStateDir, t.TempDir())
}

// Entry builds a managed registry entry with matching checksums, the
// common starting point for reconciliation and sync tests.
func Entry(item string, typ types.ArtifactType, target types.DeliveryTarget, filePath, cs string) types.RegistryEntry {
	return types.RegistryEntry{
		Item:           item,
		Type:           typ,
		Target:         target,
		FilePath:       filePath,
		SourceChecksum: cs,
		TargetChecksum: cs,
		InstallSource:  types.InstallSourceManaged,
	}
}
