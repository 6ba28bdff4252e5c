package types_test

// Test Type: Unit Test
// Verifies the action enum and the plan histogram invariants.

import (
	"testing"

	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestActionType_IsValid(t *testing.T) {
	for _, a := range []types.ActionType{
		types.ActionInstall, types.ActionUpdate, types.ActionSkip,
		types.ActionConflict, types.ActionDelete,
	} {
		assert.True(t, a.IsValid(), string(a))
	}
	assert.False(t, types.ActionType("upgrade").IsValid())
	assert.False(t, types.ActionType("").IsValid())
}

func TestActionType_Mutates(t *testing.T) {
	assert.True(t, types.ActionInstall.Mutates())
	assert.True(t, types.ActionUpdate.Mutates())
	assert.True(t, types.ActionDelete.Mutates())
	assert.False(t, types.ActionSkip.Mutates())
	assert.False(t, types.ActionConflict.Mutates())
}

func TestPlan_AddKeepsSummaryInSync(t *testing.T) {
	var plan types.Plan
	for _, a := range []types.ActionType{
		types.ActionInstall, types.ActionInstall,
		types.ActionUpdate,
		types.ActionSkip,
		types.ActionDelete,
	} {
		plan.Add(types.PlanEntry{Action: a})
	}

	assert.Equal(t, 2, plan.Summary.Install)
	assert.Equal(t, 1, plan.Summary.Update)
	assert.Equal(t, 1, plan.Summary.Skip)
	assert.Equal(t, 1, plan.Summary.Delete)
	assert.Equal(t, 5, plan.Summary.Total())
	assert.Equal(t, 4, plan.MutationCount())
	assert.False(t, plan.HasConflicts)

	plan.Add(types.PlanEntry{Action: types.ActionConflict})
	assert.True(t, plan.HasConflicts)
	assert.Equal(t, 4, plan.MutationCount(), "conflicts are not mutations until resolved")
}

func TestArtifactType_DirectoryBased(t *testing.T) {
	assert.True(t, types.ArtifactTypeSkill.IsDirectoryBased())
	assert.False(t, types.ArtifactTypeRule.IsDirectoryBased())
	assert.False(t, types.ArtifactTypeSettings.IsDirectoryBased())
}
