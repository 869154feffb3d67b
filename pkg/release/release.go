// Package release orchestrates one release run: version arithmetic,
// trusted timestamp, history classification, documentation generation
// through the fallback chain, artifact persistence, the archive sweep,
// and the release tag.
package release

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cutlineco/cutline/pkg/archive"
	"github.com/cutlineco/cutline/pkg/classify"
	"github.com/cutlineco/cutline/pkg/config"
	"github.com/cutlineco/cutline/pkg/docgen"
	"github.com/cutlineco/cutline/pkg/dotdir"
	"github.com/cutlineco/cutline/pkg/fallback"
	"github.com/cutlineco/cutline/pkg/gitlog"
	"github.com/cutlineco/cutline/pkg/remote"
	"github.com/cutlineco/cutline/pkg/timesource"
	"github.com/cutlineco/cutline/pkg/utils"
	"github.com/cutlineco/cutline/pkg/version"
)

// Status is the overall outcome of a run.
type Status int

const (
	// StatusSuccess means artifacts were written by the first eligible tier.
	StatusSuccess Status = iota

	// StatusDegraded means artifacts were written, but by a lower tier
	// than the first eligible one.
	StatusDegraded
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Timestamper acquires the release timestamp. *timesource.Service
// satisfies it.
type Timestamper interface {
	Acquire(ctx context.Context) timesource.TrustedTimestamp
}

// NotesChain produces release-notes content. *fallback.Chain satisfies it.
type NotesChain interface {
	Generate(ctx context.Context, req fallback.Request) (fallback.Result, error)
}

// Archiver sweeps and prunes superseded artifacts. *archive.Manager
// satisfies it.
type Archiver interface {
	Sweep(docsDir, archiveDir, currentVersion string) (archive.Result, error)
	Prune(archiveDir string, retention int) (int, error)
}

// Options are per-run knobs on top of the persistent configuration.
type Options struct {
	Role version.Role

	// SkipTag leaves the repository untagged.
	SkipTag bool
}

// Outcome summarizes a completed run.
type Outcome struct {
	RunID           string
	PreviousVersion string
	Version         string
	ReleaseType     string
	Status          Status

	Timestamp timesource.TrustedTimestamp
	Changes   classify.ChangeSet
	Tier      fallback.Tier
	Artifacts *docgen.ArtifactSet
	Archived  archive.Result

	Tagged  bool
	TagName string
}

// Params assembles a Pipeline.
type Params struct {
	Config    *config.Config
	ConfigDir string

	Dotdir    *dotdir.Manager
	Git       gitlog.Client // nil outside a repository
	Times     Timestamper
	Generator *docgen.Generator
	Chain     NotesChain
	Archiver  Archiver

	CLIVersion string
	Logger     *slog.Logger
}

// Pipeline runs releases. One release invocation is single-flow; callers
// do not run it concurrently against the same working tree.
type Pipeline struct {
	p Params
}

// NewPipeline creates a Pipeline from its collaborators.
func NewPipeline(p Params) *Pipeline {
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{p: p}
}

// Run executes one release.
func (pl *Pipeline) Run(ctx context.Context, opts Options) (*Outcome, error) {
	runID := uuid.NewString()[:8]
	log := pl.p.Logger.With("run_id", runID)
	cfg := pl.p.Config

	// Configuration problems abort before any I/O.
	mapping, err := cfg.RoleMapping()
	if err != nil {
		return nil, err
	}

	current, err := pl.currentVersion()
	if err != nil {
		return nil, err
	}
	cur, err := version.Parse(current)
	if err != nil {
		return nil, fmt.Errorf("stored version: %w", err)
	}
	next, err := version.Next(cur, opts.Role, mapping)
	if err != nil {
		return nil, err
	}

	out := &Outcome{
		RunID:           runID,
		PreviousVersion: current,
		Version:         next.String(),
		ReleaseType:     opts.Role.String(),
	}
	log.Info("starting release",
		"previous_version", out.PreviousVersion,
		"version", out.Version,
		"role", out.ReleaseType,
	)

	out.Timestamp = pl.p.Times.Acquire(ctx)
	if out.Timestamp.Provenance != timesource.ProvenanceTrusted {
		log.Info("release timestamp confidence degraded",
			"provenance", out.Timestamp.Provenance.String(),
		)
	}

	out.Changes, err = pl.collectChanges(ctx, log)
	if err != nil {
		return nil, err
	}

	repo := pl.repository(ctx)
	res, err := pl.p.Chain.Generate(ctx, fallback.Request{
		Version:     out.Version,
		ReleaseType: out.ReleaseType,
		Changes:     out.Changes.Markdown(),
		Repository:  repo,
		Timestamp:   out.Timestamp.Time.UTC().Format(time.RFC3339),
		CLIVersion:  pl.p.CLIVersion,
	})
	if err != nil {
		return nil, err
	}
	out.Tier = res.Tier
	out.Status = StatusSuccess
	if res.Degraded {
		out.Status = StatusDegraded
	}
	if res.Notes != "" {
		log.Debug("generated notes", "tier", res.Tier.String(), "preview", utils.Truncate(res.Notes, 120))
	}

	in := docgen.Input{
		Version:     out.Version,
		Timestamp:   out.Timestamp,
		ReleaseType: out.ReleaseType,
		Changes:     out.Changes,
		Project: docgen.Project{
			Name:  repo.Name,
			Owner: repo.Owner,
			URL:   repo.URL,
		},
		Notes: res.Notes,
	}
	out.Artifacts, err = pl.p.Generator.Persist(in, cfg.Docs.Dir, cfg.Docs.Readme)
	if err != nil {
		return nil, err
	}

	if err := pl.p.Dotdir.SaveVersion(out.Version, pl.p.ConfigDir); err != nil {
		return nil, err
	}

	// Archiving is best effort; the release already succeeded.
	out.Archived, err = pl.p.Archiver.Sweep(cfg.Docs.Dir, cfg.Archive.Dir, out.Version)
	if err != nil {
		log.Warn("archive sweep failed", "error", err)
	}
	if _, err := pl.p.Archiver.Prune(cfg.Archive.Dir, cfg.Archive.Retention); err != nil {
		log.Warn("archive pruning failed", "error", err)
	}

	pl.tag(ctx, log, opts, out)

	log.Info("release complete",
		"version", out.Version,
		"status", out.Status.String(),
		"tier", out.Tier.String(),
		"archived", out.Archived.Moved,
	)
	return out, nil
}

// currentVersion reads the persisted version, falling back to the
// configured initial version for a first release.
func (pl *Pipeline) currentVersion() (string, error) {
	stored, err := pl.p.Dotdir.LoadVersion(pl.p.ConfigDir)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}
	if pl.p.Config.Versioning.Initial != "" {
		return pl.p.Config.Versioning.Initial, nil
	}
	return "0.1.0", nil
}

// collectChanges classifies commit subjects since the last tag. Outside a
// repository the change set is simply empty.
func (pl *Pipeline) collectChanges(ctx context.Context, log *slog.Logger) (classify.ChangeSet, error) {
	if pl.p.Git == nil {
		log.Info("no git repository, release notes will have no change list")
		return classify.Classify(nil), nil
	}

	tag, err := pl.p.Git.LatestTag(ctx)
	if err != nil {
		return classify.ChangeSet{}, fmt.Errorf("finding last tag: %w", err)
	}

	subjects, err := pl.p.Git.LogSince(ctx, tag)
	if err != nil {
		return classify.ChangeSet{}, fmt.Errorf("reading history since %q: %w", tag, err)
	}

	changes := classify.Classify(subjects)
	log.Info("classified history", "since_tag", tag, "commits", changes.Total())
	return changes, nil
}

// repository merges git-derived metadata with configured overrides.
func (pl *Pipeline) repository(ctx context.Context) remote.Repository {
	repo := remote.Repository{
		URL:   pl.p.Config.Project.URL,
		Name:  pl.p.Config.Project.Name,
		Owner: pl.p.Config.Project.Owner,
	}

	if pl.p.Git == nil {
		return repo
	}

	if meta, err := pl.p.Git.Metadata(ctx); err == nil {
		if repo.URL == "" {
			repo.URL = meta.URL
		}
		if repo.Name == "" {
			repo.Name = meta.Name
		}
		if repo.Owner == "" {
			repo.Owner = meta.Owner
		}
	}
	if branch, err := pl.p.Git.Branch(ctx); err == nil {
		repo.Branch = branch
	}
	if head, err := pl.p.Git.Head(ctx); err == nil {
		repo.CommitHash = head
	}
	return repo
}

// tag records the release in git. Failure never fails the run; the
// artifacts are already on disk.
func (pl *Pipeline) tag(ctx context.Context, log *slog.Logger, opts Options, out *Outcome) {
	if opts.SkipTag || pl.p.Git == nil {
		return
	}

	name := out.Version
	if !strings.HasPrefix(name, "v") {
		name = "v" + name
	}

	message := fmt.Sprintf("Release %s (%s)", out.Version, out.ReleaseType)
	if err := pl.p.Git.CreateTag(ctx, name, message, out.Timestamp.Time); err != nil {
		log.Warn("could not create release tag", "tag", name, "error", err)
		return
	}

	out.Tagged = true
	out.TagName = name
	log.Info("created release tag", "tag", name)
}
