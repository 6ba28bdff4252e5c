// Package reconcile implements the three-way reconciliation decision
// engine: given what upstream contains, what the registry recorded at
// install time, and what is on disk right now, it decides per artifact
// and delivery target whether to install, update, skip, conflict, or
// delete. The engine is a pure function over its inputs: it performs no
// I/O, so every decision path is unit-testable.
package reconcile

import (
	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/types"
)

// Request is a consistent snapshot of all reconciliation inputs,
// assembled by the orchestrator under the lock. Target states are keyed
// by the registry entry's rendered file path.
type Request struct {
	Sources  []types.SourceItemState
	Registry []types.RegistryEntry
	Targets  map[string]types.TargetFileState

	// ActiveTargets is the set of delivery targets being reconciled
	// this run. Registry entries for other targets are left untouched.
	ActiveTargets []types.DeliveryTarget

	// Force means upstream wins unconditionally: decisions that would
	// skip or conflict because of a deleted or user-edited target are
	// promoted to install/update.
	Force bool
}

// Reconcile computes the action plan. Deterministic: identical inputs
// yield identical plans, in source order followed by orphan order.
func Reconcile(req Request) types.Plan {
	var plan types.Plan

	for _, target := range req.ActiveTargets {
		for _, src := range req.Sources {
			// Provider-restricted artifacts render for a subset of the
			// active targets; the rest have nothing to install.
			if !src.AppliesTo(target) {
				continue
			}
			plan.Add(decide(req, src, target))
		}
	}

	for _, orphan := range findOrphans(req) {
		plan.Add(orphan)
	}

	return plan
}

// decide classifies one (item, delivery target) pair. The precedence
// order matters: new item, unknown baseline, deleted target, then the
// four-way changed/unchanged matrix.
func decide(req Request, src types.SourceItemState, target types.DeliveryTarget) types.PlanEntry {
	entry := types.PlanEntry{
		Item:       src.Item,
		Type:       src.Type,
		Target:     target,
		SourcePath: src.SourcePath,
	}

	reg, found := lookupRegistry(req.Registry, src, target)
	if !found {
		entry.Action = types.ActionInstall
		if itemKnownElsewhere(req.Registry, src) {
			entry.Reason = "new delivery target for existing item"
		} else {
			entry.Reason = "new item"
		}
		return entry
	}
	entry.FilePath = reg.FilePath

	// A registry migrated from a schema without checksums has no usable
	// baseline; diffing against it could clobber user content.
	if checksum.IsUnknown(reg.SourceChecksum) {
		entry.Action = types.ActionSkip
		entry.Reason = "first run after registry upgrade, no baseline checksum"
		return entry
	}

	sourceChanged := reg.SourceChecksum != src.ConvertedChecksum(target)
	state := req.Targets[reg.FilePath]

	if !state.Exists {
		if sourceChanged {
			entry.Action = types.ActionInstall
			entry.Reason = "target was deleted, upstream has updates"
		} else if req.Force {
			entry.Action = types.ActionInstall
			entry.Reason = "force reinstall"
		} else {
			entry.Action = types.ActionSkip
			entry.Reason = "deleted by user, checksum unchanged"
		}
		return entry
	}

	userChanged := reg.TargetChecksum != state.Checksum

	switch {
	case !sourceChanged && !userChanged:
		entry.Action = types.ActionSkip
		entry.Reason = "no changes"
	case !sourceChanged && userChanged:
		if req.Force {
			entry.Action = types.ActionUpdate
			entry.Reason = "force overwrite"
		} else {
			entry.Action = types.ActionSkip
			entry.Reason = "user edited, upstream unchanged"
		}
	case sourceChanged && !userChanged:
		entry.Action = types.ActionUpdate
		entry.Reason = "upstream updated, no user edits"
	default:
		if req.Force {
			entry.Action = types.ActionUpdate
			entry.Reason = "force overwrite"
		} else {
			entry.Action = types.ActionConflict
			entry.Reason = "both upstream and user modified"
		}
	}
	return entry
}

// lookupRegistry finds the registry entry matching a source item for a
// delivery target. Settings artifacts match by (type, target) alone:
// the rendered filename of the settings document can legitimately
// change between versions while remaining the same logical artifact,
// so the item name is only a display label for that type.
func lookupRegistry(registry []types.RegistryEntry, src types.SourceItemState, target types.DeliveryTarget) (types.RegistryEntry, bool) {
	for _, reg := range registry {
		if reg.Target != target || reg.Type != src.Type {
			continue
		}
		if src.Type == types.ArtifactTypeSettings || reg.Item == src.Item {
			return reg, true
		}
	}
	return types.RegistryEntry{}, false
}

// itemKnownElsewhere reports whether the item is registered for some
// other delivery target, which makes a missing entry a "new delivery
// target" rather than a brand-new item.
func itemKnownElsewhere(registry []types.RegistryEntry, src types.SourceItemState) bool {
	for _, reg := range registry {
		if reg.Item == src.Item && reg.Type == src.Type {
			return true
		}
	}
	return false
}

// findOrphans returns delete entries for managed registry entries whose
// artifact is gone from the current source set. Directory-based bundle
// types are exempt: they are tracked by directory existence, not
// enumerated in the flat source list, so absence there proves nothing.
// Entries for delivery targets outside the active set are not being
// reconciled at all and stay untouched.
func findOrphans(req Request) []types.PlanEntry {
	var orphans []types.PlanEntry
	for _, reg := range req.Registry {
		if !targetActive(req.ActiveTargets, reg.Target) {
			continue
		}
		if !reg.IsManaged() {
			continue
		}
		if reg.Type.IsDirectoryBased() {
			continue
		}
		if sourceHas(req.Sources, reg.Item, reg.Type, reg.Target) {
			continue
		}
		orphans = append(orphans, types.PlanEntry{
			Item:     reg.Item,
			Type:     reg.Type,
			Target:   reg.Target,
			Action:   types.ActionDelete,
			Reason:   "no longer in source",
			FilePath: reg.FilePath,
		})
	}
	return orphans
}

func targetActive(active []types.DeliveryTarget, target types.DeliveryTarget) bool {
	for _, t := range active {
		if t == target {
			return true
		}
	}
	return false
}

// sourceHas mirrors the registry-matching identity rules: settings
// artifacts are identified by type alone, everything else by
// (item, type). A renamed settings document must not read as an orphan.
// An item still in the source but restricted away from this delivery
// target no longer ships for it, so its old install is an orphan.
func sourceHas(sources []types.SourceItemState, item string, typ types.ArtifactType, target types.DeliveryTarget) bool {
	for _, src := range sources {
		if src.Type != typ {
			continue
		}
		if typ == types.ArtifactTypeSettings || src.Item == item {
			return src.AppliesTo(target)
		}
	}
	return false
}
