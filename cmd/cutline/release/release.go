// Package releasecmder provides the release command, the heart of cutline:
// it bumps the version, acquires a trusted timestamp, classifies history,
// generates documentation through the fallback chain, and tags the result.
package releasecmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cutlineco/cutline/pkg/agent"
	"github.com/cutlineco/cutline/pkg/archive"
	"github.com/cutlineco/cutline/pkg/cliui"
	"github.com/cutlineco/cutline/pkg/config"
	"github.com/cutlineco/cutline/pkg/docgen"
	"github.com/cutlineco/cutline/pkg/dotdir"
	"github.com/cutlineco/cutline/pkg/fallback"
	"github.com/cutlineco/cutline/pkg/gitlog"
	"github.com/cutlineco/cutline/pkg/logger"
	"github.com/cutlineco/cutline/pkg/release"
	"github.com/cutlineco/cutline/pkg/remote"
	"github.com/cutlineco/cutline/pkg/timesource"
	"github.com/cutlineco/cutline/pkg/utils"
	"github.com/cutlineco/cutline/pkg/version"
)

const releaseLongDesc string = `Cut a release.

Computes the next version from the requested role (major, minor, patch,
or revision), acquires a trusted timestamp from the configured time
sources, classifies git history since the last tag into release notes,
writes the documentation artifacts, sweeps superseded artifacts into the
archive, and tags the repository.

Documentation generation falls back across three tiers: a local agent if
one is configured, the remote documentation API, and finally local
template rendering, so the release always completes.

Examples:
  cutline release minor
  cutline release major --skip-tag
  cutline release patch --offline`

const releaseShortDesc string = "Cut a release"

type releaseCommander struct {
	debug     bool
	configDir string
	offline   bool
	skipTag   bool
	showNotes bool
}

func NewReleaseCmd() *cobra.Command {
	cmder := &releaseCommander{}

	cmd := &cobra.Command{
		Use:   "release <major|minor|patch|revision>",
		Short: releaseShortDesc,
		Long:  releaseLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.debug, _ = cmd.Flags().GetBool("debug")
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run(cmd, args[0])
		},
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return []string{"major", "minor", "patch", "revision"}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	cmd.Flags().BoolVar(&cmder.offline, "offline", false, "Skip the remote documentation API")
	cmd.Flags().BoolVar(&cmder.skipTag, "skip-tag", false, "Do not create a release tag")
	cmd.Flags().BoolVar(&cmder.showNotes, "show-notes", false, "Print the generated release notes")

	return cmd
}

func (c *releaseCommander) run(cmd *cobra.Command, roleArg string) error {
	role, err := version.ParseRole(roleArg)
	if err != nil {
		return err
	}

	log := c.buildLogger()

	cfg, err := config.LoadResolved(c.configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pipeline, err := c.buildPipeline(cfg, log)
	if err != nil {
		return err
	}

	out, err := pipeline.Run(cmd.Context(), release.Options{
		Role:    role,
		SkipTag: c.skipTag,
	})
	if err != nil {
		return err
	}

	c.printOutcome(out)

	if c.showNotes {
		return printNotes(out)
	}
	return nil
}

// printNotes renders the freshly written release notes to the terminal.
func printNotes(out *release.Outcome) error {
	for _, artifact := range out.Artifacts.Artifacts {
		if artifact.Kind != docgen.KindReleaseNotes {
			continue
		}

		data, err := os.ReadFile(artifact.Path)
		if err != nil {
			return fmt.Errorf("reading release notes: %w", err)
		}

		rendered, err := cliui.RenderMarkdown(string(data))
		if err != nil {
			// Fall back to the raw markdown on renderer trouble.
			rendered = string(data)
		}
		fmt.Print(rendered)
	}
	return nil
}

// buildLogger writes pretty output to stderr and, when the dot directory is
// writable, appends a JSON record of the run to cutline.log inside it.
func (c *releaseCommander) buildLogger() *slog.Logger {
	pretty := logger.New(
		logger.WithPretty(true),
		logger.WithWriter(os.Stderr),
		logger.WithDebug(c.debug),
	)

	dir, err := dotdir.NewManager().Target(c.configDir)
	if err != nil {
		return pretty
	}
	f, err := os.OpenFile(filepath.Join(dir, "cutline.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return pretty
	}

	return logger.Multi(pretty, logger.New(
		logger.WithJSON(true),
		logger.WithWriter(f),
		logger.WithDebug(c.debug),
	))
}

func (c *releaseCommander) buildPipeline(cfg *config.Config, log *slog.Logger) (*release.Pipeline, error) {
	// Outside a repository the pipeline still runs; there is just no
	// history to classify and nothing to tag.
	var git gitlog.Client
	if cwd, err := os.Getwd(); err == nil {
		if client, err := gitlog.Open(cwd); err == nil {
			git = client
		} else {
			log.Debug("no git repository detected", "error", err)
		}
	}

	times := timesource.NewService(timesource.Config{
		Sources:   buildSources(cfg),
		Timeout:   time.Duration(cfg.Timestamp.TimeoutSeconds) * time.Second,
		Tolerance: time.Duration(cfg.Timestamp.ToleranceSeconds) * time.Second,
		Retries:   cfg.Timestamp.Retries,
		Logger:    log,
	})

	gen := docgen.NewGenerator(cfg.Docs.TemplateDir, log)

	chain, err := buildChain(cfg, log, c.offline)
	if err != nil {
		return nil, err
	}

	return release.NewPipeline(release.Params{
		Config:     cfg,
		ConfigDir:  c.configDir,
		Dotdir:     dotdir.NewManager(),
		Git:        git,
		Times:      times,
		Generator:  gen,
		Chain:      chain,
		Archiver:   archive.NewManager(log),
		CLIVersion: utils.Version,
		Logger:     log,
	}), nil
}

func buildSources(cfg *config.Config) []timesource.Source {
	sources := make([]timesource.Source, 0, len(cfg.Timestamp.Sources))
	for _, sc := range cfg.Timestamp.Sources {
		switch sc.Kind {
		case "ntp":
			sources = append(sources, timesource.NewNTPSource(sc.Name, sc.Target))
		default:
			sources = append(sources, timesource.NewHTTPSource(sc.Name, sc.Target, nil))
		}
	}
	return sources
}

func buildChain(cfg *config.Config, log *slog.Logger, offline bool) (*fallback.Chain, error) {
	desc, err := agentDescriptor(cfg)
	if err != nil {
		return nil, err
	}

	chainCfg := fallback.Config{
		Runner:     agent.NewExecRunner(log),
		Descriptor: desc,
		Remote: remote.NewClient(remote.ClientConfig{
			Endpoint: cfg.Remote.Endpoint,
			Token:    cfg.Remote.Token,
			Logger:   log,
		}),
		MaxRetries:    cfg.Remote.MaxRetries,
		DisableAgent:  cfg.Fallback.DisableAgent,
		DisableRemote: cfg.Fallback.DisableRemote,
		Offline:       offline,
		Logger:        log,
	}

	// The local tier defers rendering to Persist, which has the full
	// inputs; an empty chain result means "render from templates".
	chainCfg.Local = func(context.Context) (string, error) {
		return "", nil
	}
	if cfg.Fallback.DisableLocal {
		chainCfg.Local = func(context.Context) (string, error) {
			return "", fmt.Errorf("local generation disabled by configuration")
		}
	}

	return fallback.NewChain(chainCfg)
}

func agentDescriptor(cfg *config.Config) (agent.Descriptor, error) {
	if cfg.Agent.Entrypoint == "" {
		return agent.Descriptor{}, nil
	}

	mode := agent.ModeBinary
	if cfg.Agent.Mode != "" {
		var err error
		mode, err = agent.ParseMode(cfg.Agent.Mode)
		if err != nil {
			return agent.Descriptor{}, err
		}
	}

	return agent.Descriptor{
		Mode:       mode,
		EntryPoint: cfg.Agent.Entrypoint,
		Token:      cfg.Agent.Token,
	}, nil
}

func (c *releaseCommander) printOutcome(out *release.Outcome) {
	fmt.Printf("\n  %s Released %s (%s)\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(out.Version),
		out.ReleaseType,
	)
	fmt.Printf("    %s %s\n",
		cliui.KeyStyle.Render("timestamp"),
		out.Timestamp.Time.UTC().Format(time.RFC3339)+" ("+out.Timestamp.Provenance.String()+")",
	)
	fmt.Printf("    %s %s\n", cliui.KeyStyle.Render("changes"), out.Changes.Summary())
	fmt.Printf("    %s %s\n", cliui.KeyStyle.Render("docs tier"), out.Tier.String())
	if out.Status == release.StatusDegraded {
		fmt.Printf("    %s degraded: a lower documentation tier produced the notes\n", cliui.WarnMark)
	}
	if out.Archived.Moved > 0 {
		fmt.Printf("    %s %d artifact(s) archived\n", cliui.KeyStyle.Render("archive"), out.Archived.Moved)
	}
	if out.Tagged {
		fmt.Printf("    %s %s\n", cliui.KeyStyle.Render("tag"), out.TagName)
	}
	fmt.Println()
}
