// Package install implements the install command: load the bundle,
// reconcile it against the registry and the disk under the mutation
// lock, show the plan, and apply it.
package install

import (
	"io"
	"os"

	"github.com/arthur-debert/syncpack/pkg/commands/internal/session"
	"github.com/arthur-debert/syncpack/pkg/commands/internal/snapshot"
	"github.com/arthur-debert/syncpack/pkg/display"
	"github.com/arthur-debert/syncpack/pkg/executor"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/reconcile"
	"github.com/arthur-debert/syncpack/pkg/safeio"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/arthur-debert/syncpack/pkg/ui/confirmations"
)

// Options controls one install run.
type Options struct {
	// InstallRoot is the workspace to install into; empty falls back to
	// SYNCPACK_ROOT and then the working directory.
	InstallRoot string

	// BundleDir is the extracted upstream bundle (required).
	BundleDir string

	// Providers overrides the configured provider list.
	Providers []string

	// Scope overrides the configured default scope (global or local).
	Scope string

	// Force promotes user-edit skips and conflicts to overwrites.
	Force bool

	// DryRun computes and shows the plan without mutating anything.
	// The lock is still taken so the plan reflects a quiet system.
	DryRun bool

	// Yes approves the plan and every merge hunk without prompting.
	Yes bool

	// Verbose lists skipped entries in the plan output.
	Verbose bool

	// Out receives rendered output; defaults to os.Stdout.
	Out io.Writer

	// Prompter overrides the automatic prompter selection (tests).
	Prompter confirmations.Prompter
}

// Result is what one install run did.
type Result struct {
	Plan      types.Plan
	Execution *executor.Result
	BackupDir string

	// Declined means the operator rejected the plan.
	Declined bool
}

// Run executes the install pipeline.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.install")
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	sess, err := session.Open(session.Options{
		InstallRoot: opts.InstallRoot,
		BundleDir:   opts.BundleDir,
		Providers:   opts.Providers,
		Scope:       opts.Scope,
		Lock:        true,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	snap := snapshot.Take(sess.Paths, sess.Registry, sess.Bundle, sess.Targets)
	plan := reconcile.Reconcile(reconcile.Request{
		Sources:       sess.Bundle.Items,
		Registry:      sess.Registry.Entries,
		Targets:       snap,
		ActiveTargets: sess.Targets,
		Force:         opts.Force,
	})

	io.WriteString(out, display.RenderPlan(plan, opts.Verbose))
	result := &Result{Plan: plan}

	if opts.DryRun {
		logger.Info().Msg("Dry run, stopping before execution")
		return result, nil
	}
	if plan.MutationCount() == 0 && !plan.HasConflicts {
		return result, nil
	}

	prompter := selectPrompter(opts, sess)
	approved, err := prompter.Confirm("Apply these changes?", true)
	if err != nil {
		return nil, err
	}
	if !approved {
		result.Declined = true
		return result, nil
	}

	backupDir, err := backupTouched(sess, plan, snap)
	if err != nil {
		return nil, err
	}
	result.BackupDir = backupDir

	exec, err := executor.Execute(executor.Request{
		Plan:     plan,
		Bundle:   sess.Bundle,
		Paths:    sess.Paths,
		Registry: sess.Registry,
		Prompter: prompter,
	})
	if err != nil {
		return nil, err
	}
	result.Execution = exec

	if err := sess.SaveRegistry(); err != nil {
		return nil, err
	}
	io.WriteString(out, display.RenderResult(exec))
	return result, nil
}

// selectPrompter picks how decisions get answered: --yes approves
// everything, unattended config or a non-terminal stdin blocks
// interaction, otherwise the console asks.
func selectPrompter(opts Options, sess *session.Session) confirmations.Prompter {
	if opts.Prompter != nil {
		return opts.Prompter
	}
	if opts.Yes {
		return confirmations.NewAuto()
	}
	console := confirmations.NewConsole()
	if sess.Config.Unattended || !console.Interactive() {
		return confirmations.NewUnattended()
	}
	return console
}

// backupTouched copies every existing file the plan will overwrite or
// delete into a fresh backup run directory, then prunes old runs.
func backupTouched(sess *session.Session, plan types.Plan, snap map[string]types.TargetFileState) (string, error) {
	var rels []string
	for _, entry := range plan.Entries {
		if !entry.Action.Mutates() && entry.Action != types.ActionConflict {
			continue
		}
		if entry.FilePath == "" || entry.Type.IsDirectoryBased() {
			continue
		}
		if snap[entry.FilePath].Exists {
			rels = append(rels, entry.FilePath)
		}
	}
	if len(rels) == 0 {
		return "", nil
	}

	result, err := safeio.BackupFiles(sess.Paths.InstallRoot(), rels, sess.Paths.BackupRoot())
	if err != nil {
		return "", err
	}
	if err := safeio.PruneBackups(sess.Paths.BackupRoot(), sess.Config.BackupRetention); err != nil {
		logger := logging.GetLogger("commands.install")
		logger.Warn().Err(err).Msg("Backup pruning failed")
	}
	return result.Dir, nil
}
