// Package versioncmder prints the build metadata of the cutline binary.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cutlineco/cutline/pkg/utils"
)

type VersionCommander struct{}

func NewVersionCmd() *cobra.Command {
	cmder := &VersionCommander{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "displays the cutline version",
		Long:  "displays the version, commit, and build time of this cutline binary",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	return cmd
}

func (c *VersionCommander) run(cmd *cobra.Command) error {
	fmt.Fprintf(cmd.OutOrStdout(), "cutline %s (%s) built %s\n", utils.Version, utils.Sha, utils.Buildtime)
	return nil
}
