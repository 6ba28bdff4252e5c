// Package snapshot computes the on-disk view of a run: the current
// state of every file the registry tracks or the bundle would render.
// Taken once per invocation, under the lock, so reconciliation and
// execution see one consistent picture.
package snapshot

import (
	"os"

	"github.com/arthur-debert/syncpack/pkg/bundle"
	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/paths"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/types"
)

// Take stats and checksums every relevant target path. Paths that fail
// validation are left out of the map, which reads as "does not exist";
// the executor re-validates before writing anyway.
func Take(p paths.Paths, reg *registry.Document, b *bundle.Bundle, targets []types.DeliveryTarget) map[string]types.TargetFileState {
	logger := logging.GetLogger("snapshot")

	// rel path -> directory-based artifact
	wanted := make(map[string]bool)
	for _, entry := range reg.Entries {
		wanted[entry.FilePath] = entry.Type.IsDirectoryBased()
	}
	if b != nil {
		for _, item := range b.Items {
			for _, target := range targets {
				if r, ok := b.RenderedFor(item.Item, item.Type, target); ok {
					wanted[r.RelPath] = item.Type.IsDirectoryBased()
				}
			}
		}
	}

	states := make(map[string]types.TargetFileState, len(wanted))
	for rel, isDir := range wanted {
		abs, err := p.TargetPath(rel)
		if err != nil {
			logger.Warn().Str("path", rel).Err(err).Msg("Skipping unsafe tracked path")
			continue
		}
		states[rel] = stat(abs, rel, isDir)
	}
	return states
}

func stat(abs, rel string, isDir bool) types.TargetFileState {
	state := types.TargetFileState{Path: rel}

	info, err := os.Stat(abs)
	if err != nil {
		return state
	}
	state.Exists = true

	if isDir {
		if info.IsDir() {
			if cs, err := bundle.TreeChecksum(abs); err == nil {
				state.Checksum = cs
			}
		}
		return state
	}

	if cs, err := checksum.File(abs); err == nil {
		state.Checksum = cs
	}
	return state
}
