package syncer_test

// Test Type: Unit Test
// Verifies the sync plan partition: checksum comparison against the
// recorded baseline and the freshly rendered upstream content.

import (
	"testing"

	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/syncer"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(path, sourceCS, targetCS string) types.RegistryEntry {
	return types.RegistryEntry{
		Item:           path,
		Type:           types.ArtifactTypeRule,
		FilePath:       path,
		SourceChecksum: sourceCS,
		TargetChecksum: targetCS,
		InstallSource:  types.InstallSourceManaged,
	}
}

func onDisk(cs string) types.TargetFileState {
	return types.TargetFileState{Exists: true, Checksum: cs}
}

func TestBuild_Partition(t *testing.T) {
	req := syncer.Request{
		Entries: []types.RegistryEntry{
			entry("a.md", "sha256:old", "sha256:disk-a"), // upstream changed, untouched
			entry("b.md", "sha256:old", "sha256:disk-b"), // both changed
			entry("c.md", "sha256:old", "sha256:disk-c"), // nothing changed
			entry("d.md", "sha256:old", "sha256:disk-d"), // user edited only
		},
		Upstream: map[string]string{
			"a.md": "sha256:new",
			"b.md": "sha256:new",
			"c.md": "sha256:old",
			"d.md": "sha256:old",
		},
		Targets: map[string]types.TargetFileState{
			"a.md": onDisk("sha256:disk-a"),
			"b.md": onDisk("sha256:edited"),
			"c.md": onDisk("sha256:disk-c"),
			"d.md": onDisk("sha256:edited"),
		},
	}

	plan := syncer.Build(req)

	require.Len(t, plan.AutoUpdate, 1)
	assert.Equal(t, "a.md", plan.AutoUpdate[0].Path)
	assert.Equal(t, "upstream updated", plan.AutoUpdate[0].Reason)

	require.Len(t, plan.NeedsReview, 1)
	assert.Equal(t, "b.md", plan.NeedsReview[0].Path)
	assert.Equal(t, "modified locally and upstream", plan.NeedsReview[0].Reason)

	require.Len(t, plan.Skipped, 2)
	assert.Equal(t, "c.md", plan.Skipped[0].Path)
	assert.Equal(t, "up to date", plan.Skipped[0].Reason)
	assert.Equal(t, "d.md", plan.Skipped[1].Path)
	assert.Equal(t, "modified locally, upstream unchanged", plan.Skipped[1].Reason)

	assert.Equal(t, 4, plan.Total())
}

func TestBuild_ManualEntriesSkipped(t *testing.T) {
	e := entry("notes.md", "sha256:old", "sha256:old")
	e.InstallSource = types.InstallSourceManual

	plan := syncer.Build(syncer.Request{
		Entries:  []types.RegistryEntry{e},
		Upstream: map[string]string{"notes.md": "sha256:new"},
		Targets:  map[string]types.TargetFileState{"notes.md": onDisk("sha256:old")},
	})

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "user-owned", plan.Skipped[0].Reason)
	assert.Empty(t, plan.AutoUpdate)
}

func TestBuild_RemovedUpstreamAndDeletedLocally(t *testing.T) {
	plan := syncer.Build(syncer.Request{
		Entries: []types.RegistryEntry{
			entry("gone-upstream.md", "sha256:old", "sha256:old"),
			entry("gone-local.md", "sha256:old", "sha256:old"),
		},
		Upstream: map[string]string{"gone-local.md": "sha256:new"},
		Targets: map[string]types.TargetFileState{
			"gone-upstream.md": onDisk("sha256:old"),
			"gone-local.md":    {Exists: false},
		},
	})

	require.Len(t, plan.Skipped, 2)
	assert.Equal(t, "deleted locally", plan.Skipped[0].Reason)
	assert.Equal(t, "no longer in source", plan.Skipped[1].Reason)
}

func TestBuild_UnknownBaselineNeverOverwritten(t *testing.T) {
	plan := syncer.Build(syncer.Request{
		Entries:  []types.RegistryEntry{entry("a.md", checksum.Unknown, checksum.Unknown)},
		Upstream: map[string]string{"a.md": "sha256:new"},
		Targets:  map[string]types.TargetFileState{"a.md": onDisk("sha256:whatever")},
	})

	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "no baseline checksum", plan.Skipped[0].Reason)
}

func TestBuild_DeterministicOrder(t *testing.T) {
	req := syncer.Request{
		Entries: []types.RegistryEntry{
			entry("z.md", "sha256:old", "sha256:z"),
			entry("a.md", "sha256:old", "sha256:a"),
		},
		Upstream: map[string]string{"z.md": "sha256:new", "a.md": "sha256:new"},
		Targets: map[string]types.TargetFileState{
			"z.md": onDisk("sha256:z"),
			"a.md": onDisk("sha256:a"),
		},
	}

	plan := syncer.Build(req)
	require.Len(t, plan.AutoUpdate, 2)
	assert.Equal(t, "a.md", plan.AutoUpdate[0].Path)
	assert.Equal(t, "z.md", plan.AutoUpdate[1].Path)
}
