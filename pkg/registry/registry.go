// Package registry persists the durable memory of "what we last
// installed": one versioned JSON document per installation root. The
// registry is read once at the start of a run and rewritten only after
// a successful, locked mutation, always through an atomic replace.
package registry

import (
	"encoding/json"
	"os"

	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/safeio"
	"github.com/arthur-debert/syncpack/pkg/settings"
	"github.com/arthur-debert/syncpack/pkg/types"
)

// CurrentVersion is the registry schema version this build writes.
// Version 1 predates checksum tracking; loading it fills the Unknown
// sentinel so reconciliation knows there is no usable baseline.
const CurrentVersion = 2

// Document is the persisted registry.
type Document struct {
	Version int                   `json:"version"`
	Entries []types.RegistryEntry `json:"entries"`

	// HookCommands and ServerKeys record the normalized hook commands
	// and server registry keys installed by syncpack, so the settings
	// merger can distinguish "never had it" from "user deleted it".
	HookCommands []string `json:"hookCommands,omitempty"`
	ServerKeys   []string `json:"serverKeys,omitempty"`
}

// PriorInstalled converts the persisted identity lists into the form
// the settings merger consumes.
func (d *Document) PriorInstalled() settings.PriorInstalled {
	prior := settings.PriorInstalled{
		Commands: make(map[string]bool, len(d.HookCommands)),
		Servers:  make(map[string]bool, len(d.ServerKeys)),
	}
	for _, cmd := range d.HookCommands {
		prior.Commands[settings.NormalizeCommand(cmd)] = true
	}
	for _, key := range d.ServerKeys {
		prior.Servers[key] = true
	}
	return prior
}

// RecordHookCommand remembers that a hook command was installed by
// syncpack. Stored normalized and deduplicated.
func (d *Document) RecordHookCommand(command string) {
	norm := settings.NormalizeCommand(command)
	for _, existing := range d.HookCommands {
		if existing == norm {
			return
		}
	}
	d.HookCommands = append(d.HookCommands, norm)
}

// RecordServerKey remembers that a server registry key was installed by
// syncpack.
func (d *Document) RecordServerKey(key string) {
	for _, existing := range d.ServerKeys {
		if existing == key {
			return
		}
	}
	d.ServerKeys = append(d.ServerKeys, key)
}

// Find returns the entry matching (item, type, target), honoring the
// settings identity exception: settings documents match by type and
// target alone.
func (d *Document) Find(item string, typ types.ArtifactType, target types.DeliveryTarget) (types.RegistryEntry, bool) {
	for _, entry := range d.Entries {
		if entry.Target != target || entry.Type != typ {
			continue
		}
		if typ == types.ArtifactTypeSettings || entry.Item == item {
			return entry, true
		}
	}
	return types.RegistryEntry{}, false
}

// Upsert replaces the entry with the same identity or appends a new
// one.
func (d *Document) Upsert(entry types.RegistryEntry) {
	for i, existing := range d.Entries {
		if existing.Target == entry.Target && existing.Type == entry.Type {
			if entry.Type == types.ArtifactTypeSettings || existing.Item == entry.Item {
				d.Entries[i] = entry
				return
			}
		}
	}
	d.Entries = append(d.Entries, entry)
}

// Remove drops the entry matching (item, type, target), reporting
// whether one was found.
func (d *Document) Remove(item string, typ types.ArtifactType, target types.DeliveryTarget) bool {
	for i, entry := range d.Entries {
		if entry.Item == item && entry.Type == typ && entry.Target == target {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Store reads and writes the registry document at a well-known path.
type Store struct {
	Path string
}

// New returns a Store for the given registry path.
func New(path string) *Store {
	return &Store{Path: path}
}

// Load reads the registry. A missing file is an empty current-version
// document; unparsable JSON or invalid entries are fatal; an older
// schema is migrated in memory and persisted on the next save.
func (s *Store) Load() (*Document, error) {
	logger := logging.GetLogger("registry")

	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Version: CurrentVersion}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read registry at %s", s.Path)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrRegistryParse, "registry at %s is not valid JSON", s.Path)
	}
	if doc.Version > CurrentVersion {
		return nil, errors.Newf(errors.ErrRegistryVersion,
			"registry at %s has schema version %d, this build understands up to %d",
			s.Path, doc.Version, CurrentVersion)
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}

	if doc.Version < CurrentVersion {
		logger.Info().
			Int("from", doc.Version).
			Int("to", CurrentVersion).
			Msg("Migrating registry schema")
		migrate(&doc)
	}
	return &doc, nil
}

// Save writes the registry atomically.
func (s *Store) Save(doc *Document) error {
	doc.Version = CurrentVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrRegistryWrite, "cannot serialize registry")
	}
	data = append(data, '\n')
	if err := safeio.AtomicWrite(s.Path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrRegistryWrite, "cannot write registry at %s", s.Path)
	}
	return nil
}

// validate rejects structurally-present but semantically-broken
// registries before any mutation can trust them.
func validate(doc *Document) error {
	for i, entry := range doc.Entries {
		switch {
		case entry.Item == "" && entry.Type != types.ArtifactTypeSettings:
			return errors.Newf(errors.ErrRegistryParse, "registry entry %d is missing its item name", i)
		case !entry.Type.IsValid():
			return errors.Newf(errors.ErrRegistryParse, "registry entry %d has unknown type %q", i, entry.Type)
		case entry.FilePath == "":
			return errors.Newf(errors.ErrRegistryParse, "registry entry %d is missing its file path", i)
		}
	}
	return nil
}

// migrate upgrades an older document in memory. Version 1 tracked no
// checksums: fill the Unknown sentinel so the first reconciliation
// after upgrade skips instead of clobbering.
func migrate(doc *Document) {
	for i := range doc.Entries {
		if doc.Entries[i].SourceChecksum == "" {
			doc.Entries[i].SourceChecksum = checksum.Unknown
		}
		if doc.Entries[i].TargetChecksum == "" {
			doc.Entries[i].TargetChecksum = checksum.Unknown
		}
		if doc.Entries[i].InstallSource == "" {
			doc.Entries[i].InstallSource = types.InstallSourceManaged
		}
	}
	doc.Version = CurrentVersion
}
