// Package status implements the read-only status command: what is
// installed, whether each file still matches its recorded baseline,
// and (when a bundle is given) what an install run would do. It never
// takes the mutation lock.
package status

import (
	"io"
	"os"

	"github.com/arthur-debert/syncpack/pkg/commands/internal/session"
	"github.com/arthur-debert/syncpack/pkg/commands/internal/snapshot"
	"github.com/arthur-debert/syncpack/pkg/display"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/reconcile"
	"github.com/arthur-debert/syncpack/pkg/registry"
	"github.com/arthur-debert/syncpack/pkg/types"
)

// Options controls one status run.
type Options struct {
	InstallRoot string

	// BundleDir, when set, adds a plan preview against that bundle.
	BundleDir string

	Providers []string
	Verbose   bool
	Out       io.Writer
}

// Result carries the gathered state for callers that want it
// programmatically.
type Result struct {
	Registry *registry.Document
	Targets  map[string]types.TargetFileState

	// Plan is the preview; zero when no bundle was given.
	Plan types.Plan
}

// Run gathers and renders status.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.status")
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	sess, err := session.Open(session.Options{
		InstallRoot: opts.InstallRoot,
		BundleDir:   opts.BundleDir,
		Providers:   opts.Providers,
		Lock:        false,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	snap := snapshot.Take(sess.Paths, sess.Registry, sess.Bundle, sess.Targets)
	result := &Result{Registry: sess.Registry, Targets: snap}

	io.WriteString(out, display.RenderStatus(sess.Registry, snap))

	if sess.Bundle != nil {
		result.Plan = reconcile.Reconcile(reconcile.Request{
			Sources:       sess.Bundle.Items,
			Registry:      sess.Registry.Entries,
			Targets:       snap,
			ActiveTargets: sess.Targets,
		})
		io.WriteString(out, "\n")
		io.WriteString(out, display.RenderPlan(result.Plan, opts.Verbose))
	}

	logger.Debug().Int("entries", len(sess.Registry.Entries)).Msg("Status rendered")
	return result, nil
}
