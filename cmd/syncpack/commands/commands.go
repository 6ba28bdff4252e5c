package commands

import (
	"fmt"

	"github.com/arthur-debert/syncpack/pkg/commands/genconfig"
	"github.com/arthur-debert/syncpack/pkg/commands/install"
	"github.com/arthur-debert/syncpack/pkg/commands/show"
	"github.com/arthur-debert/syncpack/pkg/commands/status"
	syncpkg "github.com/arthur-debert/syncpack/pkg/commands/sync"
	"github.com/spf13/cobra"
)

// exitBlocked is returned when conflicts were blocked in unattended
// mode: the run mutated nothing that needed an operator, but the
// operator's attention is required.
type exitBlocked struct{ count int }

func (e exitBlocked) Error() string {
	return fmt.Sprintf("%d conflict(s) need attention; nothing overwritten", e.count)
}

// ExitCode maps an Execute error to a process exit code: 2 for blocked
// conflicts, 1 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if _, ok := err.(exitBlocked); ok {
		return 2
	}
	return 1
}

func newInstallCmd(flags *rootFlags) *cobra.Command {
	var scope string
	cmd := &cobra.Command{
		Use:   "install <bundle-dir>",
		Short: "Install a configuration bundle into the workspace",
		Long: `Install reconciles the bundle against the workspace and applies the
resulting plan: new artifacts are written, updated ones refreshed, and
files you edited are left alone unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := install.Run(install.Options{
				InstallRoot: flags.root,
				BundleDir:   args[0],
				Providers:   flags.providers,
				Scope:       scope,
				Force:       flags.force,
				DryRun:      flags.dryRun,
				Yes:         flags.yes,
				Verbose:     flags.verbosity > 0,
				Out:         cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if result.Execution != nil && len(result.Execution.Blocked) > 0 {
				return exitBlocked{count: len(result.Execution.Blocked)}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "Installation scope: global or local")
	return cmd
}

func newSyncCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <bundle-dir>",
		Short: "Synchronize tracked files with fresh upstream content",
		Long: `Sync classifies every tracked file: untouched files are updated in
place, files you edited go through an interactive per-hunk merge, and
user-owned files are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := syncpkg.Run(syncpkg.Options{
				InstallRoot: flags.root,
				BundleDir:   args[0],
				Providers:   flags.providers,
				DryRun:      flags.dryRun,
				Yes:         flags.yes,
				Out:         cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			if result.Execution != nil && len(result.Execution.Blocked) > 0 {
				return exitBlocked{count: len(result.Execution.Blocked)}
			}
			return nil
		},
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [bundle-dir]",
		Short: "Show installed artifacts and their on-disk state",
		Long: `Status is read-only and never takes the mutation lock. With a bundle
directory argument it also previews what install would do.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundleDir := ""
			if len(args) == 1 {
				bundleDir = args[0]
			}
			_, err := status.Run(status.Options{
				InstallRoot: flags.root,
				BundleDir:   bundleDir,
				Providers:   flags.providers,
				Verbose:     flags.verbosity > 0,
				Out:         cmd.OutOrStdout(),
			})
			return err
		},
	}
	return cmd
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	var raw bool
	var provider string
	cmd := &cobra.Command{
		Use:   "show <item>",
		Short: "Render an installed artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := show.Run(show.Options{
				InstallRoot: flags.root,
				Item:        args[0],
				Provider:    provider,
				Raw:         raw,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the file content without markdown rendering")
	cmd.Flags().StringVar(&provider, "for", "", "Provider to resolve the item for")
	return cmd
}

func newGenConfigCmd(flags *rootFlags) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Print the default configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := genconfig.Run(genconfig.Options{
				InstallRoot: flags.root,
				Write:       write,
			})
			if err != nil {
				return err
			}
			if result.FileWritten != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", result.FileWritten)
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Content)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "Write the config to the install root instead of printing it")
	return cmd
}
