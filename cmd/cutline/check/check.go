// Package checkcmder provides the check command, a cooldown-gated query
// for a newer cutline release.
package checkcmder

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cutlineco/cutline/pkg/cliui"
	"github.com/cutlineco/cutline/pkg/config"
	"github.com/cutlineco/cutline/pkg/dotdir"
	"github.com/cutlineco/cutline/pkg/updates"
	"github.com/cutlineco/cutline/pkg/utils"
)

const checkLongDesc string = `Check whether a newer cutline release exists.

Queries the configured update endpoint for the latest released version
and compares it with this build. Checks are throttled by
update.cooldown_minutes; use --force to check regardless.

Examples:
  cutline check
  cutline check --force`

const checkShortDesc string = "Check for a newer cutline release"

type checkCommander struct {
	configDir string
	force     bool
}

func NewCheckCmd() *cobra.Command {
	cmder := &checkCommander{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: checkShortDesc,
		Long:  checkLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd)
		},
	}

	cmd.Flags().BoolVar(&cmder.force, "force", false, "Check even inside the cooldown window")

	return cmd
}

func (c *checkCommander) run(cmd *cobra.Command) error {
	cfg, err := config.LoadResolved(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Update.Endpoint == "" {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No update endpoint configured (update.endpoint)."))
		return nil
	}

	guard := updates.NewGuard(
		dotdir.NewManager(),
		time.Duration(cfg.Update.CooldownMinutes)*time.Minute,
		nil,
		nil,
	)

	if !c.force {
		ok, err := guard.ShouldCheck(c.configDir)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Checked recently; skipping. Use --force to check now."))
			return nil
		}
	}

	var latest string
	err = cliui.Step(os.Stderr, "Querying update endpoint", func() error {
		var stepErr error
		latest, stepErr = fetchLatest(cmd, cfg.Update.Endpoint)
		return stepErr
	})
	if err != nil {
		return err
	}

	if err := guard.MarkChecked(c.configDir); err != nil {
		return err
	}

	if updates.Newer(utils.Version, latest) {
		fmt.Printf("\n  %s A newer release is available: %s (you have %s)\n\n",
			cliui.WarnMark, cliui.ValueStyle.Render(latest), utils.Version)
		return nil
	}

	fmt.Printf("\n  %s cutline is up to date (%s)\n\n", cliui.SuccessMark, utils.Version)
	return nil
}

func fetchLatest(cmd *cobra.Command, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("querying update endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("update endpoint returned status %d", resp.StatusCode)
	}

	var out struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding update response: %w", err)
	}

	latest := strings.TrimSpace(out.Version)
	if latest == "" {
		return "", fmt.Errorf("update endpoint returned no version")
	}
	return latest, nil
}
