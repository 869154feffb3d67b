// Package archivecmder provides the archive command for sweeping
// superseded release artifacts into cold storage.
package archivecmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cutlineco/cutline/pkg/archive"
	"github.com/cutlineco/cutline/pkg/cliui"
	"github.com/cutlineco/cutline/pkg/config"
	"github.com/cutlineco/cutline/pkg/dotdir"
	"github.com/cutlineco/cutline/pkg/logger"
)

const archiveLongDesc string = `Sweep superseded release artifacts into the archive directory.

Moves every versioned artifact (RELEASE_v*.md, CHANGELOG_v*.md) out of the
docs directory except the ones for the current version, then prunes the
oldest archived versions beyond the configured retention count.

The sweep also runs automatically at the end of every release; this
command exists for cleaning up by hand.

Examples:
  cutline archive
  cutline archive --dry-run`

const archiveShortDesc string = "Archive superseded release artifacts"

type archiveCommander struct {
	debug     bool
	configDir string
	dryRun    bool
}

func NewArchiveCmd() *cobra.Command {
	cmder := &archiveCommander{}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: archiveShortDesc,
		Long:  archiveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().BoolVar(&cmder.dryRun, "dry-run", false, "Show what would be archived without moving files")

	return cmd
}

func (c *archiveCommander) run() error {
	log := logger.New(
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
		logger.WithDebug(c.debug),
	)

	cfg, err := config.LoadResolved(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	current, err := dotdir.NewManager().LoadVersion(c.configDir)
	if err != nil {
		return err
	}

	mgr := archive.NewManager(log, archive.WithDryRun(c.dryRun))
	res, err := mgr.Sweep(cfg.Docs.Dir, cfg.Archive.Dir, current)
	if err != nil {
		return err
	}

	pruned := 0
	if !c.dryRun {
		pruned, err = mgr.Prune(cfg.Archive.Dir, cfg.Archive.Retention)
		if err != nil {
			return err
		}
	}

	verb := "archived"
	if c.dryRun {
		verb = "would archive"
	}
	fmt.Printf("\n  %s %s %d artifact(s), skipped %d\n",
		cliui.SuccessMark, verb, res.Moved, res.Skipped)
	if pruned > 0 {
		fmt.Printf("  %s pruned %d archived version(s)\n", cliui.SuccessMark, pruned)
	}
	fmt.Println()
	return nil
}
