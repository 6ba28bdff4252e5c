package types

// SourceItemState is the per-run view of one upstream artifact:
// recomputed on every invocation, never persisted.
type SourceItemState struct {
	// Item is the logical artifact name
	Item string

	// Type is the artifact type
	Type ArtifactType

	// SourcePath is the artifact's path inside the bundle
	SourcePath string

	// Checksum covers the raw bundle content
	Checksum string

	// ConvertedChecksums holds the rendered-content checksum per
	// delivery target key, when rendering differs per target.
	ConvertedChecksums map[string]string
}

// ConvertedChecksum returns the rendered checksum for a delivery
// target, falling back to the raw checksum when no per-target
// rendering was recorded.
func (s SourceItemState) ConvertedChecksum(target DeliveryTarget) string {
	if cs, ok := s.ConvertedChecksums[target.Key()]; ok {
		return cs
	}
	return s.Checksum
}

// AppliesTo reports whether the artifact renders for a delivery target.
// Provider-restricted artifacts record checksums only for the targets
// they render for; a nil map means rendering is target-independent.
func (s SourceItemState) AppliesTo(target DeliveryTarget) bool {
	if s.ConvertedChecksums == nil {
		return true
	}
	_, ok := s.ConvertedChecksums[target.Key()]
	return ok
}

// TargetFileState is the per-run view of one path on disk.
type TargetFileState struct {
	// Path is relative to the install root
	Path string

	Exists bool

	// Checksum is empty when the file does not exist
	Checksum string
}
