// Test Type: Unit Test
// Description: Tests for the registry package - load/save, migration, identity rules

package registry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var target = types.DeliveryTarget{Provider: "zed", Scope: types.ScopeGlobal}

func entry(item string) types.RegistryEntry {
	return types.RegistryEntry{
		Item:           item,
		Type:           types.ArtifactTypeRule,
		Target:         target,
		FilePath:       ".zed/rules/" + item + ".md",
		SourcePath:     "rules/" + item + ".md",
		SourceChecksum: "sha256:a",
		TargetChecksum: "sha256:b",
		InstalledAt:    time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		InstallSource:  types.InstallSourceManaged,
	}
}

func TestLoad_MissingFileIsEmptyDocument(t *testing.T) {
	store := registry.New(filepath.Join(t.TempDir(), "registry.json"))
	doc, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, registry.CurrentVersion, doc.Version)
	assert.Empty(t, doc.Entries)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	store := registry.New(filepath.Join(t.TempDir(), "registry.json"))

	doc := &registry.Document{}
	doc.Upsert(entry("style"))
	doc.RecordHookCommand("gofmt  ${ROOT}/x")
	doc.RecordServerKey("search")
	require.NoError(t, store.Save(doc))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, doc.Entries, loaded.Entries)

	prior := loaded.PriorInstalled()
	assert.True(t, prior.HadCommand("gofmt $ROOT/x"), "commands persist normalized")
	assert.True(t, prior.HadServer("search"))
}

func TestLoad_MalformedJSONIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := registry.New(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryParse))
}

func TestLoad_MissingRequiredFieldsIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	body := `{"version": 2, "entries": [{"item": "x", "type": "rule", "filePath": ""}]}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	_, err := registry.New(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryParse))
}

func TestLoad_FutureVersionIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "entries": []}`), 0644))

	_, err := registry.New(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrRegistryVersion))
}

func TestLoad_V1MigrationFillsUnknownChecksums(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	body := `{
		"version": 1,
		"entries": [{
			"item": "style",
			"type": "rule",
			"target": {"provider": "zed", "scope": "global"},
			"filePath": ".zed/rules/style.md"
		}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	doc, err := registry.New(path).Load()
	require.NoError(t, err)
	assert.Equal(t, registry.CurrentVersion, doc.Version)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, checksum.Unknown, doc.Entries[0].SourceChecksum)
	assert.Equal(t, checksum.Unknown, doc.Entries[0].TargetChecksum)
	assert.Equal(t, types.InstallSourceManaged, doc.Entries[0].InstallSource)
}

func TestFind_SettingsMatchesByTypeAndTarget(t *testing.T) {
	doc := &registry.Document{}
	settingsEntry := entry("settings-v1")
	settingsEntry.Type = types.ArtifactTypeSettings
	doc.Upsert(settingsEntry)

	found, ok := doc.Find("settings-v2", types.ArtifactTypeSettings, target)
	require.True(t, ok, "settings identity ignores the item name")
	assert.Equal(t, "settings-v1", found.Item)

	_, ok = doc.Find("other-name", types.ArtifactTypeRule, target)
	assert.False(t, ok, "non-settings types match by item name")
}

func TestUpsert_ReplacesAndAppends(t *testing.T) {
	doc := &registry.Document{}
	doc.Upsert(entry("style"))
	doc.Upsert(entry("naming"))

	updated := entry("style")
	updated.SourceChecksum = "sha256:new"
	doc.Upsert(updated)

	require.Len(t, doc.Entries, 2)
	found, ok := doc.Find("style", types.ArtifactTypeRule, target)
	require.True(t, ok)
	assert.Equal(t, "sha256:new", found.SourceChecksum)
}

func TestRemove(t *testing.T) {
	doc := &registry.Document{}
	doc.Upsert(entry("style"))

	assert.True(t, doc.Remove("style", types.ArtifactTypeRule, target))
	assert.False(t, doc.Remove("style", types.ArtifactTypeRule, target))
	assert.Empty(t, doc.Entries)
}
