// Test Type: Unit Test
// Description: Tests for the reconcile package - three-way decision engine

package reconcile_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/reconcile"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	targetZed   = types.DeliveryTarget{Provider: "zed", Scope: types.ScopeGlobal}
	targetHelix = types.DeliveryTarget{Provider: "helix", Scope: types.ScopeLocal}
)

func sourceItem(item string, typ types.ArtifactType, converted string) types.SourceItemState {
	return types.SourceItemState{
		Item:       item,
		Type:       typ,
		SourcePath: "rules/" + item + ".md",
		Checksum:   converted,
		ConvertedChecksums: map[string]string{
			targetZed.Key():  converted,
			targetHelix.Key(): converted,
		},
	}
}

func registryEntry(item string, typ types.ArtifactType, target types.DeliveryTarget, srcCS, tgtCS string) types.RegistryEntry {
	return types.RegistryEntry{
		Item:           item,
		Type:           typ,
		Target:         target,
		FilePath:       ".zed/rules/" + item + ".md",
		SourcePath:     "rules/" + item + ".md",
		SourceChecksum: srcCS,
		TargetChecksum: tgtCS,
		InstalledAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		InstallSource:  types.InstallSourceManaged,
	}
}

func singleEntry(t *testing.T, plan types.Plan, action types.ActionType) types.PlanEntry {
	t.Helper()
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, action, plan.Entries[0].Action)
	return plan.Entries[0]
}

func TestReconcile_NewItemInstalls(t *testing.T) {
	plan := reconcile.Reconcile(reconcile.Request{
		Sources:       []types.SourceItemState{sourceItem("style", types.ArtifactTypeRule, "sha256:a")},
		ActiveTargets: []types.DeliveryTarget{targetZed},
	})

	entry := singleEntry(t, plan, types.ActionInstall)
	assert.Equal(t, "new item", entry.Reason)
	assert.Equal(t, 1, plan.Summary.Install)
	assert.False(t, plan.HasConflicts)
}

func TestReconcile_NewDeliveryTargetForKnownItem(t *testing.T) {
	plan := reconcile.Reconcile(reconcile.Request{
		Sources:  []types.SourceItemState{sourceItem("style", types.ArtifactTypeRule, "sha256:a")},
		Registry: []types.RegistryEntry{registryEntry("style", types.ArtifactTypeRule, targetHelix, "sha256:a", "sha256:a")},
		Targets: map[string]types.TargetFileState{
			".zed/rules/style.md": {Exists: true, Checksum: "sha256:a"},
		},
		ActiveTargets: []types.DeliveryTarget{targetZed},
	})

	entry := singleEntry(t, plan, types.ActionInstall)
	assert.Equal(t, "new delivery target for existing item", entry.Reason)
}

func TestReconcile_UnknownBaselineSkips(t *testing.T) {
	// Migration safety: unknown baseline wins over everything else,
	// including force.
	for _, force := range []bool{false, true} {
		plan := reconcile.Reconcile(reconcile.Request{
			Sources:  []types.SourceItemState{sourceItem("style", types.ArtifactTypeRule, "sha256:new")},
			Registry: []types.RegistryEntry{registryEntry("style", types.ArtifactTypeRule, targetZed, checksum.Unknown, "sha256:b")},
			Targets: map[string]types.TargetFileState{
				".zed/rules/style.md": {Exists: true, Checksum: "sha256:edited"},
			},
			ActiveTargets: []types.DeliveryTarget{targetZed},
			Force:         force,
		})

		entry := singleEntry(t, plan, types.ActionSkip)
		assert.Contains(t, entry.Reason, "registry upgrade")
	}
}

func TestReconcile_ChangeMatrix(t *testing.T) {
	tests := []struct {
		name       string
		currentSrc string
		currentTgt string
		action     types.ActionType
		reason     string
	}{
		{
			name:       "no_changes",
			currentSrc: "sha256:a",
			currentTgt: "sha256:b",
			action:     types.ActionSkip,
			reason:     "no changes",
		},
		{
			name:       "user_edited_upstream_unchanged",
			currentSrc: "sha256:a",
			currentTgt: "sha256:c",
			action:     types.ActionSkip,
			reason:     "user edited",
		},
		{
			name:       "upstream_updated_no_user_edits",
			currentSrc: "sha256:z",
			currentTgt: "sha256:b",
			action:     types.ActionUpdate,
			reason:     "upstream updated",
		},
		{
			name:       "both_modified",
			currentSrc: "sha256:z",
			currentTgt: "sha256:c",
			action:     types.ActionConflict,
			reason:     "both upstream and user modified",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Registry recorded source=a target=b at install time.
			plan := reconcile.Reconcile(reconcile.Request{
				Sources:  []types.SourceItemState{sourceItem("x", types.ArtifactTypeRule, tt.currentSrc)},
				Registry: []types.RegistryEntry{registryEntry("x", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")},
				Targets: map[string]types.TargetFileState{
					".zed/rules/x.md": {Exists: true, Checksum: tt.currentTgt},
				},
				ActiveTargets: []types.DeliveryTarget{targetZed},
			})

			entry := singleEntry(t, plan, tt.action)
			assert.Contains(t, entry.Reason, tt.reason)
			assert.Equal(t, tt.action == types.ActionConflict, plan.HasConflicts,
				"conflicts must always set HasConflicts, and nothing else may")
		})
	}
}

func TestReconcile_DeletedTarget(t *testing.T) {
	tests := []struct {
		name       string
		currentSrc string
		force      bool
		action     types.ActionType
		reason     string
	}{
		{
			name:       "source_unchanged_respects_deletion",
			currentSrc: "sha256:a",
			action:     types.ActionSkip,
			reason:     "deleted by user",
		},
		{
			name:       "source_changed_reinstalls",
			currentSrc: "sha256:z",
			action:     types.ActionInstall,
			reason:     "target was deleted, upstream has updates",
		},
		{
			name:       "force_reinstalls_even_unchanged",
			currentSrc: "sha256:a",
			force:      true,
			action:     types.ActionInstall,
			reason:     "force reinstall",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := reconcile.Reconcile(reconcile.Request{
				Sources:  []types.SourceItemState{sourceItem("x", types.ArtifactTypeRule, tt.currentSrc)},
				Registry: []types.RegistryEntry{registryEntry("x", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")},
				Targets: map[string]types.TargetFileState{
					".zed/rules/x.md": {Exists: false},
				},
				ActiveTargets: []types.DeliveryTarget{targetZed},
				Force:         tt.force,
			})

			entry := singleEntry(t, plan, tt.action)
			assert.Contains(t, entry.Reason, tt.reason)
		})
	}
}

func TestReconcile_ForceOverwritesUserEdits(t *testing.T) {
	// Both the user-edited skip and the conflict are promoted to update
	// under force; force never produces a silent decision.
	for _, currentSrc := range []string{"sha256:a", "sha256:z"} {
		plan := reconcile.Reconcile(reconcile.Request{
			Sources:  []types.SourceItemState{sourceItem("x", types.ArtifactTypeRule, currentSrc)},
			Registry: []types.RegistryEntry{registryEntry("x", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")},
			Targets: map[string]types.TargetFileState{
				".zed/rules/x.md": {Exists: true, Checksum: "sha256:edited"},
			},
			ActiveTargets: []types.DeliveryTarget{targetZed},
			Force:         true,
		})

		entry := singleEntry(t, plan, types.ActionUpdate)
		assert.Equal(t, "force overwrite", entry.Reason)
		assert.False(t, plan.HasConflicts)
	}
}

func TestReconcile_SettingsMatchedByTypeAndTarget(t *testing.T) {
	// The settings document was renamed upstream; it must still match
	// the old registry entry instead of installing a second copy.
	src := sourceItem("settings-v2", types.ArtifactTypeSettings, "sha256:a")
	plan := reconcile.Reconcile(reconcile.Request{
		Sources:  []types.SourceItemState{src},
		Registry: []types.RegistryEntry{registryEntry("settings-v1", types.ArtifactTypeSettings, targetZed, "sha256:a", "sha256:b")},
		Targets: map[string]types.TargetFileState{
			".zed/rules/settings-v1.md": {Exists: true, Checksum: "sha256:b"},
		},
		ActiveTargets: []types.DeliveryTarget{targetZed},
	})

	// One skip for the matched settings item, no delete for the old
	// name: a settings rename is not an orphan.
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, types.ActionSkip, plan.Entries[0].Action)
	assert.Equal(t, 0, plan.Summary.Delete)
}

func TestReconcile_RuleRenameIsInstallPlusDelete(t *testing.T) {
	// Non-settings types have no rename tracking: the old name orphans
	// and the new name installs.
	plan := reconcile.Reconcile(reconcile.Request{
		Sources:  []types.SourceItemState{sourceItem("new-name", types.ArtifactTypeRule, "sha256:a")},
		Registry: []types.RegistryEntry{registryEntry("old-name", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")},
		Targets: map[string]types.TargetFileState{
			".zed/rules/old-name.md": {Exists: true, Checksum: "sha256:b"},
		},
		ActiveTargets: []types.DeliveryTarget{targetZed},
	})

	assert.Equal(t, 1, plan.Summary.Install)
	assert.Equal(t, 1, plan.Summary.Delete)
}

func TestReconcile_Orphans(t *testing.T) {
	skillEntry := registryEntry("refactor", types.ArtifactTypeSkill, targetZed, "sha256:a", "sha256:b")
	manualEntry := registryEntry("local-rule", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")
	manualEntry.InstallSource = types.InstallSourceManual
	inactiveEntry := registryEntry("gone", types.ArtifactTypeRule, targetHelix, "sha256:a", "sha256:b")
	orphanEntry := registryEntry("removed", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")

	plan := reconcile.Reconcile(reconcile.Request{
		Registry:      []types.RegistryEntry{skillEntry, manualEntry, inactiveEntry, orphanEntry},
		ActiveTargets: []types.DeliveryTarget{targetZed},
	})

	// Only the managed, flat-file, active-target entry is orphaned.
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, types.ActionDelete, plan.Entries[0].Action)
	assert.Equal(t, "removed", plan.Entries[0].Item)
	assert.Equal(t, "no longer in source", plan.Entries[0].Reason)
}

func TestReconcile_ManualEntriesNeverDeleted(t *testing.T) {
	manual := registryEntry("hand-made", types.ArtifactTypeRule, targetZed, "sha256:a", "sha256:b")
	manual.InstallSource = types.InstallSourceManual

	for _, force := range []bool{false, true} {
		plan := reconcile.Reconcile(reconcile.Request{
			Registry:      []types.RegistryEntry{manual},
			ActiveTargets: []types.DeliveryTarget{targetZed},
			Force:         force,
		})
		for _, entry := range plan.Entries {
			assert.NotEqual(t, types.ActionDelete, entry.Action)
		}
	}
}

func TestReconcile_ProviderRestrictedItemSkipsOtherTargets(t *testing.T) {
	// A frontmatter-restricted artifact records rendered checksums only
	// for the providers it ships to. No other target may plan it: there
	// is no rendered content to install.
	restricted := types.SourceItemState{
		Item:       "zed-only",
		Type:       types.ArtifactTypeRule,
		SourcePath: "rules/zed-only.md",
		Checksum:   "sha256:a",
		ConvertedChecksums: map[string]string{
			targetZed.Key(): "sha256:a",
		},
	}

	plan := reconcile.Reconcile(reconcile.Request{
		Sources:       []types.SourceItemState{restricted},
		ActiveTargets: []types.DeliveryTarget{targetZed, targetHelix},
	})

	entry := singleEntry(t, plan, types.ActionInstall)
	assert.Equal(t, targetZed, entry.Target)
}

func TestReconcile_RestrictedAwayFromTargetOrphans(t *testing.T) {
	// The item is still in the source but no longer ships for this
	// provider; the previously installed copy is an orphan.
	restricted := types.SourceItemState{
		Item:       "zed-only",
		Type:       types.ArtifactTypeRule,
		SourcePath: "rules/zed-only.md",
		Checksum:   "sha256:a",
		ConvertedChecksums: map[string]string{
			targetZed.Key(): "sha256:a",
		},
	}

	plan := reconcile.Reconcile(reconcile.Request{
		Sources:  []types.SourceItemState{restricted},
		Registry: []types.RegistryEntry{registryEntry("zed-only", types.ArtifactTypeRule, targetHelix, "sha256:a", "sha256:b")},
		Targets: map[string]types.TargetFileState{
			".zed/rules/zed-only.md": {Exists: true, Checksum: "sha256:b"},
		},
		ActiveTargets: []types.DeliveryTarget{targetZed, targetHelix},
	})

	assert.Equal(t, 1, plan.Summary.Install)
	require.Equal(t, 1, plan.Summary.Delete)
	for _, entry := range plan.Entries {
		if entry.Action == types.ActionDelete {
			assert.Equal(t, targetHelix, entry.Target)
		}
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	req := reconcile.Request{
		Sources: []types.SourceItemState{
			sourceItem("a", types.ArtifactTypeRule, "sha256:1"),
			sourceItem("b", types.ArtifactTypeCommand, "sha256:2"),
		},
		Registry: []types.RegistryEntry{
			registryEntry("a", types.ArtifactTypeRule, targetZed, "sha256:1", "sha256:x"),
			registryEntry("stale", types.ArtifactTypeRule, targetZed, "sha256:3", "sha256:y"),
		},
		Targets: map[string]types.TargetFileState{
			".zed/rules/a.md": {Exists: true, Checksum: "sha256:x"},
		},
		ActiveTargets: []types.DeliveryTarget{targetZed, targetHelix},
	}

	first := reconcile.Reconcile(req)
	second := reconcile.Reconcile(req)
	assert.Equal(t, first, second, "identical inputs must yield identical plans")
}

func TestReconcile_SummaryMatchesEntries(t *testing.T) {
	plan := reconcile.Reconcile(reconcile.Request{
		Sources: []types.SourceItemState{
			sourceItem("a", types.ArtifactTypeRule, "sha256:1"),
			sourceItem("b", types.ArtifactTypeRule, "sha256:2"),
		},
		Registry: []types.RegistryEntry{
			registryEntry("gone", types.ArtifactTypeRule, targetZed, "sha256:3", "sha256:y"),
		},
		ActiveTargets: []types.DeliveryTarget{targetZed},
	})

	assert.Equal(t, len(plan.Entries), plan.Summary.Total())
	assert.Equal(t, 2, plan.Summary.Install)
	assert.Equal(t, 1, plan.Summary.Delete)
	assert.Equal(t, 3, plan.MutationCount())
}
