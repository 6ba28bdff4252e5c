// Package bundle reads an extracted upstream bundle directory and
// produces the per-run source item states the reconciliation engine
// consumes: raw checksums plus per-delivery-target rendered content and
// checksums. Network retrieval and extraction happen upstream of this
// package; it only ever sees a local directory tree.
package bundle

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/syncpack/pkg/checksum"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/settings"
	"github.com/arthur-debert/syncpack/pkg/types"
	"gopkg.in/yaml.v3"
)

// Manifest is the bundle's top-level metadata.
type Manifest struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// RuleMeta is the optional YAML frontmatter of a markdown artifact.
type RuleMeta struct {
	Description string `yaml:"description"`

	// Providers restricts the artifact to specific integrations; empty
	// means all active providers receive it.
	Providers []string `yaml:"providers"`
}

// Rendered is one artifact's final form for one delivery target.
type Rendered struct {
	// RelPath is the target file path relative to the install root.
	RelPath string

	Content  []byte
	Checksum string
}

// Bundle is a loaded upstream bundle.
type Bundle struct {
	Root     string
	Manifest Manifest
	Items    []types.SourceItemState

	// Settings is the parsed structured settings source document.
	Settings settings.Document

	rendered map[string]Rendered
	meta     map[string]RuleMeta
}

// typeDirs maps bundle subdirectories to artifact types.
var typeDirs = []struct {
	dir string
	typ types.ArtifactType
}{
	{"rules", types.ArtifactTypeRule},
	{"commands", types.ArtifactTypeCommand},
	{"agents", types.ArtifactTypeAgent},
}

const (
	manifestFile = "manifest.yaml"
	settingsFile = "settings.yaml"
	skillsDir    = "skills"
)

// Load reads the bundle at root and renders every artifact for every
// target, so reconciliation and execution work from one consistent
// snapshot.
func Load(root string, targets []types.DeliveryTarget) (*Bundle, error) {
	logger := logging.GetLogger("bundle")

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrBundleNotFound, "bundle directory %s does not exist", root)
	}

	b := &Bundle{
		Root:     root,
		rendered: make(map[string]Rendered),
		meta:     make(map[string]RuleMeta),
	}

	if err := b.loadManifest(); err != nil {
		return nil, err
	}
	if err := b.loadSettings(targets); err != nil {
		return nil, err
	}
	for _, td := range typeDirs {
		if err := b.loadFlatItems(td.dir, td.typ, targets); err != nil {
			return nil, err
		}
	}
	if err := b.loadSkills(targets); err != nil {
		return nil, err
	}

	sort.Slice(b.Items, func(i, j int) bool {
		if b.Items[i].Type != b.Items[j].Type {
			return b.Items[i].Type < b.Items[j].Type
		}
		return b.Items[i].Item < b.Items[j].Item
	})

	logger.Debug().
		Str("bundle", b.Manifest.Name).
		Str("version", b.Manifest.Version).
		Int("items", len(b.Items)).
		Msg("Bundle loaded")
	return b, nil
}

// RenderedFor returns the rendered artifact for one (item, type,
// target), when the bundle contains it.
func (b *Bundle) RenderedFor(item string, typ types.ArtifactType, target types.DeliveryTarget) (Rendered, bool) {
	r, ok := b.rendered[renderKey(item, typ, target)]
	return r, ok
}

// Meta returns the frontmatter metadata for a markdown artifact.
func (b *Bundle) Meta(item string, typ types.ArtifactType) RuleMeta {
	return b.meta[string(typ)+"|"+item]
}

func (b *Bundle) loadManifest() error {
	data, err := os.ReadFile(filepath.Join(b.Root, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrBundleInvalid, "bundle at %s has no %s", b.Root, manifestFile)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", manifestFile)
	}
	if err := yaml.Unmarshal(data, &b.Manifest); err != nil {
		return errors.Wrapf(err, errors.ErrBundleInvalid, "invalid %s", manifestFile)
	}
	if b.Manifest.Name == "" {
		return errors.Newf(errors.ErrBundleInvalid, "%s is missing the bundle name", manifestFile)
	}
	return nil
}

// loadFlatItems reads the individually-enumerated artifacts of one
// type directory.
func (b *Bundle) loadFlatItems(dir string, typ types.ArtifactType, targets []types.DeliveryTarget) error {
	entries, err := os.ReadDir(filepath.Join(b.Root, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read bundle directory %s", dir)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		item := strings.TrimSuffix(entry.Name(), ".md")
		srcPath := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(filepath.Join(b.Root, srcPath))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read bundle item %s", srcPath)
		}

		meta, body := splitFrontmatter(raw)
		b.meta[string(typ)+"|"+item] = meta

		state := types.SourceItemState{
			Item:               item,
			Type:               typ,
			SourcePath:         srcPath,
			Checksum:           checksum.Bytes(raw),
			ConvertedChecksums: make(map[string]string),
		}
		for _, target := range targets {
			if !meta.appliesTo(target.Provider) {
				continue
			}
			r := Rendered{
				RelPath: targetRelPath(item, typ, target),
				Content: body,
			}
			r.Checksum = checksum.Bytes(r.Content)
			b.rendered[renderKey(item, typ, target)] = r
			state.ConvertedChecksums[target.Key()] = r.Checksum
		}
		b.Items = append(b.Items, state)
	}
	return nil
}

// loadSettings parses settings.yaml and renders it as the per-provider
// settings JSON document.
func (b *Bundle) loadSettings(targets []types.DeliveryTarget) error {
	data, err := os.ReadFile(filepath.Join(b.Root, settingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", settingsFile)
	}
	if err := yaml.Unmarshal(data, &b.Settings); err != nil {
		return errors.Wrapf(err, errors.ErrBundleInvalid, "invalid %s", settingsFile)
	}

	state := types.SourceItemState{
		Item:               "settings",
		Type:               types.ArtifactTypeSettings,
		SourcePath:         settingsFile,
		Checksum:           checksum.Bytes(data),
		ConvertedChecksums: make(map[string]string),
	}
	for _, target := range targets {
		content, err := json.MarshalIndent(b.Settings, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "cannot render settings document")
		}
		content = append(content, '\n')
		r := Rendered{
			RelPath:  targetRelPath("settings", types.ArtifactTypeSettings, target),
			Content:  content,
			Checksum: checksum.Bytes(content),
		}
		b.rendered[renderKey("settings", types.ArtifactTypeSettings, target)] = r
		state.ConvertedChecksums[target.Key()] = r.Checksum
	}
	b.Items = append(b.Items, state)
	return nil
}

// loadSkills enumerates directory-based skill bundles. Skills are
// tracked by directory existence; their checksum covers the whole tree.
func (b *Bundle) loadSkills(targets []types.DeliveryTarget) error {
	entries, err := os.ReadDir(filepath.Join(b.Root, skillsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read bundle directory %s", skillsDir)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		item := entry.Name()
		srcPath := filepath.Join(skillsDir, item)
		treeCS, err := TreeChecksum(filepath.Join(b.Root, srcPath))
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot checksum skill %s", item)
		}

		state := types.SourceItemState{
			Item:               item,
			Type:               types.ArtifactTypeSkill,
			SourcePath:         srcPath,
			Checksum:           treeCS,
			ConvertedChecksums: make(map[string]string),
		}
		for _, target := range targets {
			b.rendered[renderKey(item, types.ArtifactTypeSkill, target)] = Rendered{
				RelPath:  targetRelPath(item, types.ArtifactTypeSkill, target),
				Checksum: treeCS,
			}
			state.ConvertedChecksums[target.Key()] = treeCS
		}
		b.Items = append(b.Items, state)
	}
	return nil
}

// TreeChecksum hashes a directory tree: every file's relative path and
// content, in sorted order, folded into one checksum.
func TreeChecksum(dir string) (string, error) {
	var parts []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		parts = append(parts, rel+"\x00"+checksum.Bytes(content))
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(parts)
	return checksum.Bytes([]byte(strings.Join(parts, "\n"))), nil
}

// targetRelPath maps an artifact to its rendered path under the install
// root for one delivery target. Local-scope renders live under a
// "local" subtree of the provider directory so the two scopes of one
// provider never share a file path.
func targetRelPath(item string, typ types.ArtifactType, target types.DeliveryTarget) string {
	base := "." + target.Provider
	if target.Scope == types.ScopeLocal {
		base = filepath.Join(base, "local")
	}
	switch typ {
	case types.ArtifactTypeRule:
		return filepath.Join(base, "rules", item+".md")
	case types.ArtifactTypeCommand:
		return filepath.Join(base, "commands", item+".md")
	case types.ArtifactTypeAgent:
		return filepath.Join(base, "agents", item+".md")
	case types.ArtifactTypeSkill:
		return filepath.Join(base, "skills", item)
	case types.ArtifactTypeSettings:
		return filepath.Join(base, "settings.json")
	}
	return filepath.Join(base, item)
}

func renderKey(item string, typ types.ArtifactType, target types.DeliveryTarget) string {
	return string(typ) + "|" + item + "|" + target.Key()
}

// appliesTo reports whether the artifact's provider restriction admits
// the given provider.
func (m RuleMeta) appliesTo(provider string) bool {
	if len(m.Providers) == 0 {
		return true
	}
	for _, p := range m.Providers {
		if p == provider {
			return true
		}
	}
	return false
}

// splitFrontmatter separates a leading YAML frontmatter block from the
// document body. Content without frontmatter is returned unchanged.
func splitFrontmatter(raw []byte) (RuleMeta, []byte) {
	var meta RuleMeta
	if !bytes.HasPrefix(raw, []byte("---\n")) {
		return meta, raw
	}
	rest := raw[4:]
	end := bytes.Index(rest, []byte("\n---\n"))
	if end < 0 {
		return meta, raw
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		// Malformed frontmatter is treated as body content.
		return RuleMeta{}, raw
	}
	return meta, rest[end+5:]
}
