// Package genconfig implements the genconfig command: emit the default
// configuration as TOML, optionally writing it to the install root.
package genconfig

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/syncpack/pkg/config"
	"github.com/arthur-debert/syncpack/pkg/errors"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/paths"
	"github.com/arthur-debert/syncpack/pkg/safeio"
)

// Options controls genconfig.
type Options struct {
	InstallRoot string

	// Write persists the config to <root>/.syncpack.toml instead of
	// only returning it.
	Write bool
}

// Result holds the generated content and where it went.
type Result struct {
	Content     string
	FileWritten string
}

// Run generates the default configuration.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.genconfig")

	content, err := config.DefaultTOML()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot render default config")
	}
	result := &Result{Content: content}

	if !opts.Write {
		return result, nil
	}

	p, err := paths.New(opts.InstallRoot)
	if err != nil {
		return nil, err
	}
	target := filepath.Join(p.InstallRoot(), config.FileName)
	if _, err := os.Stat(target); err == nil {
		return nil, errors.Newf(errors.ErrInvalidInput, "%s already exists, not overwriting", target)
	}
	if err := safeio.AtomicWrite(target, []byte(content), 0644); err != nil {
		return nil, err
	}
	result.FileWritten = target

	logger.Info().Str("path", target).Msg("Default config written")
	return result, nil
}
