// Package sync implements the sync command: take the files already
// tracked by the registry, classify them against fresh upstream
// content, auto-update the untouched ones, and walk the operator
// through merges for the edited ones.
package sync

import (
	"io"
	"os"

	"github.com/arthur-debert/syncpack/pkg/commands/internal/session"
	"github.com/arthur-debert/syncpack/pkg/commands/internal/snapshot"
	"github.com/arthur-debert/syncpack/pkg/display"
	"github.com/arthur-debert/syncpack/pkg/executor"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/arthur-debert/syncpack/pkg/safeio"
	"github.com/arthur-debert/syncpack/pkg/syncer"
	"github.com/arthur-debert/syncpack/pkg/types"
	"github.com/arthur-debert/syncpack/pkg/ui/confirmations"
)

// Options controls one sync run.
type Options struct {
	InstallRoot string
	BundleDir   string
	Providers   []string
	DryRun      bool
	Yes         bool
	Out         io.Writer
	Prompter    confirmations.Prompter
}

// Result is what one sync run did.
type Result struct {
	SyncPlan  types.SyncPlan
	Execution *executor.Result
	BackupDir string
	Declined  bool
}

// Run executes the sync pipeline.
func Run(opts Options) (*Result, error) {
	logger := logging.GetLogger("commands.sync")
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	sess, err := session.Open(session.Options{
		InstallRoot: opts.InstallRoot,
		BundleDir:   opts.BundleDir,
		Providers:   opts.Providers,
		Lock:        true,
	})
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	snap := snapshot.Take(sess.Paths, sess.Registry, sess.Bundle, sess.Targets)

	upstream := make(map[string]string)
	for _, entry := range sess.Registry.Entries {
		if r, ok := sess.Bundle.RenderedFor(entry.Item, entry.Type, entry.Target); ok {
			upstream[entry.FilePath] = r.Checksum
		}
	}

	syncPlan := syncer.Build(syncer.Request{
		Entries:  sess.Registry.Entries,
		Upstream: upstream,
		Targets:  snap,
	})
	io.WriteString(out, display.RenderSyncPlan(syncPlan))
	result := &Result{SyncPlan: syncPlan}

	if opts.DryRun {
		logger.Info().Msg("Dry run, stopping before execution")
		return result, nil
	}
	if len(syncPlan.AutoUpdate)+len(syncPlan.NeedsReview) == 0 {
		return result, nil
	}

	prompter := selectPrompter(opts, sess)
	approved, err := prompter.Confirm("Apply these updates?", true)
	if err != nil {
		return nil, err
	}
	if !approved {
		result.Declined = true
		return result, nil
	}

	plan := actionPlan(sess, syncPlan)
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

// actionPlan converts the sync buckets back into an executable plan:
// auto-updates become plain updates, review files become conflicts so
// the executor routes them through the hunk merge.
func actionPlan(sess *session.Session, syncPlan types.SyncPlan) types.Plan {
	byPath := make(map[string]types.RegistryEntry, len(sess.Registry.Entries))
	for _, entry := range sess.Registry.Entries {
		byPath[entry.FilePath] = entry
	}

	var plan types.Plan
	add := func(files []types.SyncFile, action types.ActionType) {
		for _, f := range files {
			entry, ok := byPath[f.Path]
			if !ok {
				continue
			}
			plan.Add(types.PlanEntry{
				Item:       entry.Item,
				Type:       entry.Type,
				Target:     entry.Target,
				Action:     action,
				Reason:     f.Reason,
				FilePath:   entry.FilePath,
				SourcePath: entry.SourcePath,
			})
		}
	}
	add(syncPlan.AutoUpdate, types.ActionUpdate)
	add(syncPlan.NeedsReview, types.ActionConflict)
	return plan
}

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

func backupTouched(sess *session.Session, plan types.Plan, snap map[string]types.TargetFileState) (string, error) {
	var rels []string
	for _, entry := range plan.Entries {
		if snap[entry.FilePath].Exists && !entry.Type.IsDirectoryBased() {
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
		logger := logging.GetLogger("commands.sync")
		logger.Warn().Err(err).Msg("Backup pruning failed")
	}
	return result.Dir, nil
}
