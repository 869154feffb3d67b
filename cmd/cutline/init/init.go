// Package initcmder provides the init command for setting up a .cutline
// directory with a seeded configuration and version file.
package initcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cutlineco/cutline/pkg/cliui"
	"github.com/cutlineco/cutline/pkg/config"
	"github.com/cutlineco/cutline/pkg/dotdir"
)

const initLongDesc string = `Initialize cutline for this repository.

Creates a .cutline/ directory holding config.toml and the VERSION file.
A local ./.cutline/ directory takes precedence over ~/.cutline/, so state
stays per-project.

The VERSION file is seeded from versioning.initial (default "0.1.0") and
advances on every release.

Examples:
  cutline init
  cutline init --version 1.0.0`

const initShortDesc string = "Initialize cutline for this repository"

type initCommander struct {
	configDir string
	version   string
}

func NewInitCmd() *cobra.Command {
	cmder := &initCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.version, "version", "", "Seed the VERSION file with this version")

	return cmd
}

func (c *initCommander) run() error {
	manager := dotdir.NewManager()
	dir, err := manager.Target(c.configDir)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return fmt.Errorf("writing config.toml: %w", err)
	}

	seed := c.version
	if seed == "" {
		seed = cfg.Versioning.Initial
	}

	existing, err := manager.LoadVersion(c.configDir)
	if err != nil {
		return err
	}

	switch {
	case existing != "":
		fmt.Printf("\n  %s Already initialized: %s (version %s)\n\n",
			cliui.SuccessMark, cliui.DimStyle.Render(dir), cliui.ValueStyle.Render(existing))
		return nil
	default:
		if err := manager.SaveVersion(seed, c.configDir); err != nil {
			return err
		}
	}

	fmt.Printf("\n  %s Initialized %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	fmt.Printf("    %s %s\n\n", cliui.KeyStyle.Render("version"), cliui.ValueStyle.Render(seed))
	return nil
}
