// Package commands builds the syncpack CLI command tree.
package commands

import (
	"fmt"

	"github.com/arthur-debert/syncpack/internal/version"
	"github.com/arthur-debert/syncpack/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// root-level flag state shared by the subcommands.
type rootFlags struct {
	verbosity int
	root      string
	providers []string
	dryRun    bool
	force     bool
	yes       bool
}

// NewRootCmd constructs the full command tree. Built fresh per call so
// tests can execute commands in isolation.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "syncpack",
		Short: "Install and synchronize managed configuration bundles",
		Long: `syncpack installs a versioned bundle of configuration artifacts (rules,
commands, agents, skills, structured settings) into a workspace and keeps
it synchronized over time while preserving your local edits.

Every run reconciles three views of each artifact: what upstream ships,
what was recorded at install time, and what is on disk right now. Files
you edited are never silently overwritten.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	pf.StringVar(&flags.root, "root", "", "Install root (default: $SYNCPACK_ROOT or the working directory)")
	pf.StringSliceVar(&flags.providers, "provider", nil, "Provider integrations to reconcile (repeatable)")
	pf.BoolVar(&flags.dryRun, "dry-run", false, "Preview changes without executing them")
	pf.BoolVar(&flags.force, "force", false, "Overwrite user edits and reinstall deleted files")
	pf.BoolVarP(&flags.yes, "yes", "y", false, "Approve the plan and all merge hunks without prompting")

	rootCmd.AddCommand(
		newInstallCmd(flags),
		newSyncCmd(flags),
		newStatusCmd(flags),
		newShowCmd(flags),
		newGenConfigCmd(flags),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("syncpack version %s\n", version.Version)
			fmt.Printf("  commit: %s\n", version.Commit)
			fmt.Printf("  built:  %s\n", version.Date)
		},
	}
}
