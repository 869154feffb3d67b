// Package docgen renders and persists release documentation artifacts.
//
// Every artifact kind has a built-in template; a template directory can
// override any of them. Placeholder substitution is exact-match string
// replacement, so rendering the same inputs always produces byte-identical
// output.
package docgen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cutlineco/cutline/pkg/classify"
	"github.com/cutlineco/cutline/pkg/timesource"
)

// ArtifactKind identifies one generated documentation artifact.
type ArtifactKind int

const (
	KindReleaseNotes ArtifactKind = iota
	KindChangelog
	KindReadmeBlock
	KindIndex
)

func (k ArtifactKind) String() string {
	switch k {
	case KindReleaseNotes:
		return "release-notes"
	case KindChangelog:
		return "changelog"
	case KindReadmeBlock:
		return "readme-block"
	case KindIndex:
		return "index"
	default:
		return fmt.Sprintf("artifact(%d)", int(k))
	}
}

// templateName maps a kind to its override filename in the template dir.
func (k ArtifactKind) templateName() string {
	switch k {
	case KindReleaseNotes:
		return "release.md"
	case KindChangelog:
		return "changelog.md"
	case KindReadmeBlock:
		return "readme.md"
	case KindIndex:
		return "index.md"
	default:
		return ""
	}
}

// Project carries repository metadata into templates and the remote payload.
type Project struct {
	Name  string
	Owner string
	URL   string
}

// Input is everything one release's artifacts are rendered from.
type Input struct {
	// Version is the new version string, without any "v" filename prefix.
	Version string

	Timestamp   timesource.TrustedTimestamp
	ReleaseType string
	Changes     classify.ChangeSet
	Project     Project

	// Notes optionally overrides the release-notes body with externally
	// generated content (from the agent or remote API tiers). Empty means
	// render from the template.
	Notes string

	// IndexVersions lists every known release version for the index
	// artifact, newest first. Filled in by Persist from the docs dir.
	IndexVersions []string
}

// Generator renders artifacts from templates.
type Generator struct {
	templateDir string
	logger      *slog.Logger
}

// NewGenerator creates a Generator. templateDir may be empty to use only the
// built-in templates.
func NewGenerator(templateDir string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{templateDir: templateDir, logger: logger}
}

// Render produces the markdown content for one artifact kind. Identical
// inputs render byte-identical output.
func (g *Generator) Render(kind ArtifactKind, in Input) (string, error) {
	if kind == KindReleaseNotes && in.Notes != "" {
		return normalizeTrailingNewline(in.Notes), nil
	}

	tmpl, err := g.template(kind)
	if err != nil {
		return "", err
	}

	return substitute(tmpl, g.placeholders(kind, in)), nil
}

// template returns the override from the template dir when present, the
// built-in default otherwise.
func (g *Generator) template(kind ArtifactKind) (string, error) {
	if g.templateDir != "" {
		path := filepath.Join(g.templateDir, kind.templateName())
		data, err := os.ReadFile(path)
		if err == nil {
			g.logger.Debug("using template override", "kind", kind.String(), "path", path)
			return string(data), nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("reading template %s: %w", path, err)
		}
	}

	tmpl, ok := builtinTemplates[kind]
	if !ok {
		return "", fmt.Errorf("no template for artifact kind %s", kind)
	}
	return tmpl, nil
}

// placeholders builds the substitution table for one render. Timestamps are
// formatted deterministically so re-rendering reproduces the same bytes.
func (g *Generator) placeholders(kind ArtifactKind, in Input) map[string]string {
	at := in.Timestamp.Time.UTC()

	table := map[string]string{
		"{{VERSION}}":      in.Version,
		"{{DATE}}":         at.Format("2006-01-02"),
		"{{TIMESTAMP}}":    at.Format(time.RFC3339),
		"{{PROVENANCE}}":   in.Timestamp.Provenance.String(),
		"{{RELEASE_TYPE}}": in.ReleaseType,
		"{{CHANGES}}":      strings.TrimRight(in.Changes.Markdown(), "\n"),
		"{{SUMMARY}}":      in.Changes.Summary(),
		"{{PROJECT}}":      in.Project.Name,
		"{{OWNER}}":        in.Project.Owner,
		"{{URL}}":          in.Project.URL,
	}

	if kind == KindIndex {
		table["{{ENTRIES}}"] = indexEntries(in.IndexVersions)
	}

	return table
}

// substitute applies exact-match placeholder replacement. Unknown
// placeholders in user templates are left untouched rather than erroring.
func substitute(tmpl string, table map[string]string) string {
	pairs := make([]string, 0, len(table)*2)
	for placeholder, value := range table {
		pairs = append(pairs, placeholder, value)
	}
	return normalizeTrailingNewline(strings.NewReplacer(pairs...).Replace(tmpl))
}

func indexEntries(versions []string) string {
	if len(versions) == 0 {
		return "_No releases yet._"
	}

	var b strings.Builder
	for _, v := range versions {
		fmt.Fprintf(&b, "- [v%s](%s) ([changelog](%s))\n", v, ReleaseNotesName(v), ChangelogName(v))
	}
	return strings.TrimRight(b.String(), "\n")
}

func normalizeTrailingNewline(s string) string {
	return strings.TrimRight(s, "\n") + "\n"
}
