// Package configcmder provides the config command for managing persistent
// cutline configuration stored in the .cutline/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent cutline configuration.

Configuration is stored as config.toml in the .cutline/ directory and
provides default values for command flags. CLI flags always take
precedence over config file values, and CUTLINE_* environment variables
sit between the two.

Keys use dotted notation matching the TOML section structure:
  project.name, project.owner, project.url,
  versioning.initial,
  docs.dir, docs.template_dir, docs.readme,
  archive.dir, archive.retention,
  timestamp.timeout_seconds, timestamp.tolerance_seconds, timestamp.retries,
  remote.endpoint, remote.token, remote.max_retries,
  agent.mode, agent.entrypoint, agent.token,
  fallback.disable_agent, fallback.disable_remote, fallback.disable_local,
  update.endpoint, update.cooldown_minutes

The role table (versioning.roles) and the time-source list
(timestamp.sources) are structured values; edit config.toml directly.

Use subcommands to get, set, or list configuration values:
  cutline config set <key> <value>    Set a configuration value
  cutline config get <key>            Get a configuration value
  cutline config list                 List all configuration values

Examples:
  cutline config set docs.dir documentation
  cutline config set remote.endpoint https://docs.example.com/generate
  cutline config get versioning.initial
  cutline config list`

const configShortDesc string = "Manage persistent cutline configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
