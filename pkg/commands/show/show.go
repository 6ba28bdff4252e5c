// Package show implements the show command: render one installed
// artifact's content to the terminal, with markdown formatting for the
// text artifact types.
package show

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/syncpack/pkg/commands/internal/session"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/charmbracelet/glamour"
)

// Options controls show.
type Options struct {
	InstallRoot string

	// Item is the artifact name to show.
	Item string

	// Provider narrows the lookup when the item is installed for more
	// than one integration.
	Provider string

	// Raw skips markdown rendering.
	Raw bool
}

// Result is the rendered content.
type Result struct {
	Entry   types.RegistryEntry
	Content string
}

// Run resolves the item in the registry and renders its installed
// file.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.show")

	sess, err := session.Open(session.Options{InstallRoot: opts.InstallRoot, Lock: false})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	entry, found := findEntry(sess.Registry.Entries, opts.Item, opts.Provider)
	if !found {
		return nil, errors.Newf(errors.ErrNotFound, "no installed artifact named %q", opts.Item)
	}
	if entry.Type.IsDirectoryBased() {
		return nil, errors.Newf(errors.ErrInvalidInput, "%q is a directory artifact; inspect it directly", opts.Item)
	}

	abs, err := sess.Paths.TargetPath(entry.FilePath)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", entry.FilePath)
	}

	content := string(raw)
	if !opts.Raw && isMarkdown(entry.FilePath) {
		content = renderMarkdown(content)
	}

	logger.Debug().Str("item", entry.Item).Str("path", entry.FilePath).Msg("Showing artifact")
	return &Result{Entry: entry, Content: content}, nil
}

func findEntry(entries []types.RegistryEntry, item, provider string) (types.RegistryEntry, bool) {
	for _, entry := range entries {
		if entry.Item != item {
			continue
		}
		if provider != "" && entry.Target.Provider != provider {
			continue
		}
		return entry, true
	}
	return types.RegistryEntry{}, false
}

func isMarkdown(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".md")
}

// renderMarkdown formats markdown for the terminal, falling back to
// the plain content when the renderer cannot be built.
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
