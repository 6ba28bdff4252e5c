package types

import "time"

// RegistryEntry is one persisted record per previously-installed
// (item, type, delivery target). The registry is the only state that
// survives between runs: everything else is recomputed per invocation.
type RegistryEntry struct {
	// Item is the logical artifact name
	Item string `json:"item"`

	// Type is the artifact type
	Type ArtifactType `json:"type"`

	// Target is the delivery target this entry was rendered for
	Target DeliveryTarget `json:"target"`

	// FilePath is the rendered file path, relative to the install root
	FilePath string `json:"filePath"`

	// SourcePath is the upstream path inside the bundle at install time
	SourcePath string `json:"sourcePath"`

	// SourceChecksum is the rendered-content checksum recorded at
	// install time. The sentinel checksum.Unknown marks entries
	// migrated from a schema that did not track checksums.
	SourceChecksum string `json:"sourceChecksum"`

	// TargetChecksum is the checksum of the file as written at install
	// time
	TargetChecksum string `json:"targetChecksum"`

	// InstalledAt is when the entry was last written
	InstalledAt time.Time `json:"installedAt"`

	// InstallSource distinguishes tool-managed entries from
	// manually-added ones
	InstallSource InstallSource `json:"installSource"`
}

// IsManaged reports whether the entry was created by syncpack and is
// therefore eligible for orphan deletion.
func (e RegistryEntry) IsManaged() bool {
	return e.InstallSource == InstallSourceManaged
}
