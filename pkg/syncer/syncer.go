// Package syncer classifies previously-tracked files for the sync
// (text-merge) command path. It is the file-path-oriented twin of
// pkg/reconcile: the same checksum comparison, but partitioning files
// into auto-update / needs-review / skipped buckets instead of
// producing per-item actions.
package syncer

import (
	"sort"

	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/types"
)

// Request carries the three views of each tracked file.
type Request struct {
	// Entries is the registry snapshot for the install root.
	Entries []types.RegistryEntry

	// Upstream maps a registry entry's file path to the checksum of the
	// freshly rendered upstream content for that path. Paths absent
	// from the map are no longer produced by the bundle.
	Upstream map[string]string

	// Targets maps a file path to its current on-disk state.
	Targets map[string]types.TargetFileState
}

// Build partitions the tracked files. The result is deterministic:
// each bucket is sorted by path.
func Build(req Request) types.SyncPlan {
	var plan types.SyncPlan

	for _, entry := range req.Entries {
		file := classify(entry, req)
		switch file.Status {
		case types.SyncAutoUpdate:
			plan.AutoUpdate = append(plan.AutoUpdate, file)
		case types.SyncNeedsReview:
			plan.NeedsReview = append(plan.NeedsReview, file)
		case types.SyncSkipped:
			plan.Skipped = append(plan.Skipped, file)
		}
	}

	sortFiles(plan.AutoUpdate)
	sortFiles(plan.NeedsReview)
	sortFiles(plan.Skipped)
	return plan
}

func classify(entry types.RegistryEntry, req Request) types.SyncFile {
	file := types.SyncFile{Path: entry.FilePath}

	if !entry.IsManaged() {
		file.Status = types.SyncSkipped
		file.Reason = "user-owned"
		return file
	}

	upstream, tracked := req.Upstream[entry.FilePath]
	if !tracked {
		file.Status = types.SyncSkipped
		file.Reason = "no longer in source"
		return file
	}

	target := req.Targets[entry.FilePath]
	if !target.Exists {
		file.Status = types.SyncSkipped
		file.Reason = "deleted locally"
		return file
	}

	// A migrated entry has no baseline to compare the disk state
	// against, so nothing is overwritten on this run.
	if checksum.IsUnknown(entry.TargetChecksum) {
		file.Status = types.SyncSkipped
		file.Reason = "no baseline checksum"
		return file
	}

	userEdited := target.Checksum != entry.TargetChecksum
	upstreamChanged := upstream != entry.SourceChecksum

	switch {
	case userEdited && upstreamChanged:
		file.Status = types.SyncNeedsReview
		file.Reason = "modified locally and upstream"
	case userEdited:
		file.Status = types.SyncSkipped
		file.Reason = "modified locally, upstream unchanged"
	case upstreamChanged:
		file.Status = types.SyncAutoUpdate
		file.Reason = "upstream updated"
	default:
		file.Status = types.SyncSkipped
		file.Reason = "up to date"
	}
	return file
}

func sortFiles(files []types.SyncFile) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}
