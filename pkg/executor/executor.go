// Package executor applies a reconciliation plan to the install root.
// All writes go through pkg/safeio; structured settings route through
// pkg/settings; conflicts route through pkg/diffmerge or are blocked
// when no operator is available. Per-item failures are recoverable:
// they are logged, counted, and the run continues. Disk-full aborts
// the run.
package executor

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/syncpack/pkg/bundle"
	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/diffmerge"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/paths"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/safeio"
	"github.com/arthur-debert/syncpack/pkg/settings"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/arthur-debert/syncpack/pkg/ui/confirmations"
)

// Request carries everything one execution run needs. The registry
// document is mutated in place; the caller persists it afterwards.
type Request struct {
	Plan     types.Plan
	Bundle   *bundle.Bundle
	Paths    paths.Paths
	Registry *registry.Document
	Prompter confirmations.Prompter

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Failure records one item that could not be executed.
type Failure struct {
	Item   string
	Path   string
	Reason string
}

// Blocked records one conflict that could not be merged because no
// operator was available.
type Blocked struct {
	Item        string
	Path        string
	Remediation string
}

// Result summarizes one execution run.
type Result struct {
	Installed int
	Updated   int
	Deleted   int
	Skipped   int

	// SettingsStats aggregates structured-merge counters across all
	// settings documents written this run.
	SettingsStats settings.Stats

	HunksApplied  int
	HunksRejected int

	Failures []Failure
	Blocked  []Blocked
}

// Changed reports whether the run mutated anything.
func (r *Result) Changed() bool {
	return r.Installed+r.Updated+r.Deleted > 0
}

const conflictRemediation = "run interactively to merge, re-run with --force to overwrite, or edit the file to match upstream"

// Execute applies the plan in order. It returns an error only for
// fatal conditions; per-item problems land in Result.Failures.
func Execute(req Request) (*Result, error) {
	logger := logging.GetLogger("executor")
	if req.Now == nil {
		req.Now = time.Now
	}

	result := &Result{}
	for _, entry := range req.Plan.Entries {
		var err error
		switch entry.Action {
		case types.ActionSkip:
			result.Skipped++
		case types.ActionInstall, types.ActionUpdate:
			if entry.Type == types.ArtifactTypeSettings {
				err = applySettings(req, entry, result)
			} else {
				err = applyWrite(req, entry, result)
			}
		case types.ActionConflict:
			if entry.Type == types.ArtifactTypeSettings {
				// Structured settings never need a text merge.
				err = applySettings(req, entry, result)
			} else {
				err = applyConflict(req, entry, result)
			}
		case types.ActionDelete:
			err = applyDelete(req, entry, result)
		}

		if err == nil {
			continue
		}
		if errors.IsFatal(err) {
			return nil, err
		}
		logger.Warn().
			Str("item", entry.Item).
			Str("path", entry.FilePath).
			Err(err).
			Msg("Skipping item after error")
		result.Failures = append(result.Failures, Failure{
			Item:   entry.Item,
			Path:   entry.FilePath,
			Reason: err.Error(),
		})
	}

	logger.Info().
		Int("installed", result.Installed).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Int("skipped", result.Skipped).
		Int("failures", len(result.Failures)).
		Int("blocked", len(result.Blocked)).
		Msg("Execution finished")
	return result, nil
}

// relPath picks the file path for an entry: the registry's recorded
// path when one exists, else the freshly rendered path (new installs).
func relPath(entry *types.PlanEntry, rendered bundle.Rendered) string {
	if entry.FilePath == "" {
		entry.FilePath = rendered.RelPath
	}
	return entry.FilePath
}

// applyWrite installs or updates one rendered artifact.
func applyWrite(req Request, entry types.PlanEntry, result *Result) error {
	rendered, ok := req.Bundle.RenderedFor(entry.Item, entry.Type, entry.Target)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "bundle has no rendered content for %s", entry.Item)
	}
	abs, err := req.Paths.TargetPath(relPath(&entry, rendered))
	if err != nil {
		return err
	}

	if entry.Type.IsDirectoryBased() {
		if err := copyTree(filepath.Join(req.Bundle.Root, entry.SourcePath), abs); err != nil {
			return err
		}
	} else {
		if err := safeio.AtomicWrite(abs, rendered.Content, 0644); err != nil {
			return err
		}
	}

	record(req, entry, rendered.Checksum, rendered.Checksum)
	bump(entry.Action, result)
	return nil
}

// applySettings merges the bundle's settings document into the target
// file, preserving user entries and respecting prior deletions.
func applySettings(req Request, entry types.PlanEntry, result *Result) error {
	rendered, ok := req.Bundle.RenderedFor(entry.Item, entry.Type, entry.Target)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "bundle has no settings document for %s", entry.Target.Key())
	}
	abs, err := req.Paths.TargetPath(relPath(&entry, rendered))
	if err != nil {
		return err
	}

	var dest settings.Document
	current, err := os.ReadFile(abs)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(current, &dest); jsonErr != nil {
			return errors.Wrapf(jsonErr, errors.ErrInvalidInput, "settings file %s is not valid JSON", entry.FilePath)
		}
	case os.IsNotExist(err):
		// First install: empty destination.
	default:
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", entry.FilePath)
	}

	merged, stats := settings.Merge(req.Bundle.Settings, dest, req.Registry.PriorInstalled())

	content, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode merged settings")
	}
	content = append(content, '\n')
	if err := safeio.AtomicWrite(abs, content, 0644); err != nil {
		return err
	}

	// Everything the bundle ships this run counts as tool-installed
	// from now on, so future absences read as intentional deletions.
	for _, entries := range req.Bundle.Settings.Hooks {
		for _, he := range entries {
			for _, d := range he.Hooks {
				req.Registry.RecordHookCommand(d.Command)
			}
		}
	}
	for key := range req.Bundle.Settings.Servers {
		req.Registry.RecordServerKey(key)
	}

	result.SettingsStats.Added += stats.Added
	result.SettingsStats.Preserved += stats.Preserved
	result.SettingsStats.SkippedUserDeleted += stats.SkippedUserDeleted
	result.SettingsStats.DuplicatesSkipped += stats.DuplicatesSkipped

	record(req, entry, rendered.Checksum, checksum.Bytes(content))
	bump(entry.Action, result)
	return nil
}

// applyConflict resolves a both-sides-modified text file through an
// interactive hunk merge, or blocks when no operator is available.
func applyConflict(req Request, entry types.PlanEntry, result *Result) error {
	if !req.Prompter.Interactive() {
		result.Blocked = append(result.Blocked, Blocked{
			Item:        entry.Item,
			Path:        entry.FilePath,
			Remediation: conflictRemediation,
		})
		return nil
	}

	rendered, ok := req.Bundle.RenderedFor(entry.Item, entry.Type, entry.Target)
	if !ok {
		return errors.Newf(errors.ErrNotFound, "bundle has no rendered content for %s", entry.Item)
	}
	abs, err := req.Paths.TargetPath(entry.FilePath)
	if err != nil {
		return err
	}
	current, err := os.ReadFile(abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", entry.FilePath)
	}

	// Binary content is never partially merged: whole file or nothing.
	if diffmerge.IsBinary(current) || diffmerge.IsBinary(rendered.Content) {
		overwrite, err := req.Prompter.Confirm("Overwrite "+entry.FilePath+" with the upstream version?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			result.Skipped++
			return nil
		}
		if err := safeio.AtomicWrite(abs, rendered.Content, 0644); err != nil {
			return err
		}
		record(req, entry, rendered.Checksum, rendered.Checksum)
		result.Updated++
		return nil
	}

	hunks := diffmerge.GenerateHunks(string(current), string(rendered.Content))
	if len(hunks) == 0 {
		// Checksums differ but the lines do not (e.g. encoding-level
		// noise): nothing to merge.
		result.Skipped++
		return nil
	}

	var promptErr error
	merge := diffmerge.Merge(entry.FilePath, string(current), hunks,
		func(label string, hunk diffmerge.Hunk, index, total int) diffmerge.Decision {
			if promptErr != nil {
				return diffmerge.DecisionSkipFile
			}
			decision, err := req.Prompter.DecideHunk(label, hunk, index, total)
			if err != nil {
				promptErr = err
				return diffmerge.DecisionSkipFile
			}
			return decision
		})
	if promptErr != nil {
		return promptErr
	}
	if merge.Skipped {
		result.Skipped++
		return nil
	}

	content := []byte(merge.Content)
	if err := safeio.AtomicWrite(abs, content, 0644); err != nil {
		return err
	}
	result.HunksApplied += merge.Applied
	result.HunksRejected += merge.Rejected

	// Recording the merged content as the new baseline means any
	// rejected upstream hunks resurface as a conflict next run instead
	// of being silently forgotten.
	record(req, entry, rendered.Checksum, checksum.Bytes(content))
	result.Updated++
	return nil
}

// applyDelete removes an orphaned managed artifact and its registry
// entry.
func applyDelete(req Request, entry types.PlanEntry, result *Result) error {
	abs, err := req.Paths.TargetPath(entry.FilePath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot delete %s", entry.FilePath)
	}
	req.Registry.Remove(entry.Item, entry.Type, entry.Target)
	result.Deleted++
	return nil
}

func record(req Request, entry types.PlanEntry, sourceCS, targetCS string) {
	req.Registry.Upsert(types.RegistryEntry{
		Item:           entry.Item,
		Type:           entry.Type,
		Target:         entry.Target,
		FilePath:       entry.FilePath,
		SourcePath:     entry.SourcePath,
		SourceChecksum: sourceCS,
		TargetChecksum: targetCS,
		InstalledAt:    req.Now(),
		InstallSource:  types.InstallSourceManaged,
	})
}

func bump(action types.ActionType, result *Result) {
	if action == types.ActionInstall {
		result.Installed++
	} else {
		result.Updated++
	}
}

// copyTree copies a directory tree file by file, each file written
// atomically.
func copyTree(srcDir, dstDir string) error {
	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", srcDir)
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot relativize path")
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
		}
		return safeio.AtomicWrite(filepath.Join(dstDir, rel), content, 0644)
	})
}
