package display_test

// Test Type: Unit Test
// Verifies the rendered plan, result, and status text. Assertions check
// content, not styling, so they hold regardless of the color profile.

import (
	"testing"

	"github.com/arthur-debert/syncpack/pkg/display"
	"github.com/arthur-debert/syncpack/pkg/executor"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/stretchr/testify/assert"
)

func target() types.DeliveryTarget {
	return types.DeliveryTarget{Provider: "zed", Scope: types.ScopeGlobal}
}

func TestRenderPlan(t *testing.T) {
	var plan types.Plan
	plan.Add(types.PlanEntry{
		Item: "style", Type: types.ArtifactTypeRule, Target: target(),
		Action: types.ActionInstall, FilePath: ".zed/rules/style.md",
		Reason: "upstream updated",
	})
	plan.Add(types.PlanEntry{
		Item: "review", Type: types.ArtifactTypeCommand, Target: target(),
		Action: types.ActionSkip, FilePath: ".zed/commands/review.md",
		Reason: "up to date",
	})

	out := display.RenderPlan(plan, false)
	assert.Contains(t, out, ".zed/rules/style.md")
	assert.Contains(t, out, "upstream updated")
	assert.NotContains(t, out, "review.md", "skips hidden without verbose")
	assert.Contains(t, out, "1 install, 0 update, 1 skip")

	verbose := display.RenderPlan(plan, true)
	assert.Contains(t, verbose, "review.md")
	assert.Contains(t, verbose, "up to date")
}

func TestRenderPlan_NoPathFallsBackToIdentity(t *testing.T) {
	var plan types.Plan
	plan.Add(types.PlanEntry{
		Item: "style", Type: types.ArtifactTypeRule, Target: target(),
		Action: types.ActionInstall, Reason: "new in source",
	})

	out := display.RenderPlan(plan, false)
	assert.Contains(t, out, "zed/global/style (rule)")
}

func TestRenderSyncPlan(t *testing.T) {
	plan := types.SyncPlan{
		AutoUpdate: []types.SyncFile{
			{Path: ".zed/rules/style.md", Reason: "upstream updated"},
		},
		NeedsReview: []types.SyncFile{
			{Path: ".zed/rules/edited.md", Reason: "modified locally and upstream"},
		},
	}

	out := display.RenderSyncPlan(plan)
	assert.Contains(t, out, "Auto-update")
	assert.Contains(t, out, ".zed/rules/style.md")
	assert.Contains(t, out, "Needs review")
	assert.Contains(t, out, "modified locally and upstream")
	assert.NotContains(t, out, "Skipped", "empty sections are omitted")
	assert.Contains(t, out, "1 auto-update, 1 needs-review, 0 skipped")
}

func TestRenderResult(t *testing.T) {
	result := &executor.Result{
		Installed:    2,
		Updated:      1,
		HunksApplied: 3,
		Failures: []executor.Failure{
			{Path: ".zed/rules/bad.md", Reason: "unsafe path"},
		},
		Blocked: []executor.Blocked{
			{Path: ".zed/rules/edited.md", Remediation: "run interactively to merge"},
		},
	}

	out := display.RenderResult(result)
	assert.Contains(t, out, "2 installed, 1 updated")
	assert.Contains(t, out, "3 hunks applied")
	assert.Contains(t, out, "failed: ")
	assert.Contains(t, out, "unsafe path")
	assert.Contains(t, out, "blocked: ")
	assert.Contains(t, out, "run interactively to merge")
}

func TestRenderStatus(t *testing.T) {
	doc := &registry.Document{
		Version: registry.CurrentVersion,
		Entries: []types.RegistryEntry{{
			Item: "style", Type: types.ArtifactTypeRule, Target: target(),
			FilePath: ".zed/rules/style.md", TargetChecksum: "sha256:abc",
			InstallSource: types.InstallSourceManaged,
		}},
	}
	states := map[string]types.TargetFileState{
		".zed/rules/style.md": {Exists: true, Checksum: "sha256:abc"},
	}

	out := display.RenderStatus(doc, states)
	assert.Contains(t, out, "style")
	assert.Contains(t, out, "zed/global")
	assert.Contains(t, out, "clean")

	states[".zed/rules/style.md"] = types.TargetFileState{Exists: true, Checksum: "sha256:other"}
	assert.Contains(t, display.RenderStatus(doc, states), "modified")

	states[".zed/rules/style.md"] = types.TargetFileState{}
	assert.Contains(t, display.RenderStatus(doc, states), "missing")
}

func TestRenderStatus_Empty(t *testing.T) {
	out := display.RenderStatus(&registry.Document{Version: registry.CurrentVersion}, nil)
	assert.Contains(t, out, "nothing installed")
}
