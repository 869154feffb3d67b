// Package cutlinecmder
package cutlinecmder

import (
	archivecmder "github.com/cutlineco/cutline/cmd/cutline/archive"
	checkcmder "github.com/cutlineco/cutline/cmd/cutline/check"
	configcmder "github.com/cutlineco/cutline/cmd/cutline/config"
	initcmder "github.com/cutlineco/cutline/cmd/cutline/init"
	releasecmder "github.com/cutlineco/cutline/cmd/cutline/release"
	versioncmder "github.com/cutlineco/cutline/cmd/version"
	"github.com/spf13/cobra"
)

const cutlineLongDesc string = `Cutline automates release bookkeeping for your repository.

One command takes you from uncommitted work to a tagged, documented
release: it acquires a trusted timestamp, computes the next version,
classifies your git history into release notes, and writes the release
artifacts.

Common commands:
  cutline init              Set up .cutline/ and config.toml
  cutline release minor     Cut a minor release
  cutline archive           Sweep superseded docs into the archive
  cutline config list       Show the active configuration`

const cutlineShortDesc string = "Cutline - Release bookkeeping"

func NewCutlineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cutline",
		Short: cutlineShortDesc,
		Long:  cutlineLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .cutline/ directory location")

	// Add subcommands
	cmd.AddCommand(releasecmder.NewReleaseCmd())
	cmd.AddCommand(archivecmder.NewArchiveCmd())
	cmd.AddCommand(initcmder.NewInitCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(checkcmder.NewCheckCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
