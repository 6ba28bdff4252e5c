package types

import "fmt"

// ArtifactType identifies what kind of managed artifact an item is.
// The set is closed; every switch over it must be exhaustive.
type ArtifactType string

const (
	// ArtifactTypeRule is a markdown rule document
	ArtifactTypeRule ArtifactType = "rule"

	// ArtifactTypeCommand is a command definition
	ArtifactTypeCommand ArtifactType = "command"

	// ArtifactTypeSkill is a directory-based skill bundle
	ArtifactTypeSkill ArtifactType = "skill"

	// ArtifactTypeSettings is the structured settings document
	// (hook lists and the server registry)
	ArtifactTypeSettings ArtifactType = "settings"

	// ArtifactTypeAgent is an agent definition
	ArtifactTypeAgent ArtifactType = "agent"
)

// ArtifactTypes lists every valid artifact type.
var ArtifactTypes = []ArtifactType{
	ArtifactTypeRule,
	ArtifactTypeCommand,
	ArtifactTypeSkill,
	ArtifactTypeSettings,
	ArtifactTypeAgent,
}

// IsValid reports whether t is a member of the closed type set.
func (t ArtifactType) IsValid() bool {
	switch t {
	case ArtifactTypeRule, ArtifactTypeCommand, ArtifactTypeSkill,
		ArtifactTypeSettings, ArtifactTypeAgent:
		return true
	}
	return false
}

// IsDirectoryBased reports whether artifacts of this type are tracked
// by directory existence rather than as individually enumerated files.
// Directory-based types are exempt from orphan detection: their absence
// from the flat source listing is not evidence of upstream removal.
func (t ArtifactType) IsDirectoryBased() bool {
	return t == ArtifactTypeSkill
}

// Scope distinguishes a provider's global (per-user) installation from
// a local (per-project) one.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeLocal  Scope = "local"
)

// IsValid reports whether s is a known scope.
func (s Scope) IsValid() bool {
	return s == ScopeGlobal || s == ScopeLocal
}

// DeliveryTarget identifies the downstream consumer an artifact is
// rendered for: a provider integration plus an installation scope.
// Artifact identity is (Item, Type, DeliveryTarget) and is stable across
// versions even when the rendered file path changes.
type DeliveryTarget struct {
	Provider string `json:"provider"`
	Scope    Scope  `json:"scope"`
}

// Key returns the stable string form used for map keys and registry
// records, e.g. "zed/global".
func (d DeliveryTarget) Key() string {
	return fmt.Sprintf("%s/%s", d.Provider, d.Scope)
}

func (d DeliveryTarget) String() string {
	return d.Key()
}

// InstallSource records who created a registry entry. Manually-added
// entries are never candidates for deletion by reconciliation.
type InstallSource string

const (
	// InstallSourceManaged marks entries created by syncpack itself
	InstallSourceManaged InstallSource = "managed"

	// InstallSourceManual marks entries registered by hand
	InstallSourceManual InstallSource = "manual"
)
