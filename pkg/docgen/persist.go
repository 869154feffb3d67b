package docgen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cutlineco/cutline/pkg/version"
)

const (
	releasePrefix   = "RELEASE_v"
	changelogPrefix = "CHANGELOG_v"
	indexFile       = "INDEX.md"
)

// ReleaseNotesName returns the versioned release-notes filename.
func ReleaseNotesName(v string) string {
	return releasePrefix + v + ".md"
}

// ChangelogName returns the versioned changelog filename.
func ChangelogName(v string) string {
	return changelogPrefix + v + ".md"
}

// VersionFromArtifact extracts the embedded version from a versioned
// artifact filename, or "" when the name doesn't match the convention.
func VersionFromArtifact(name string) string {
	for _, prefix := range []string{releasePrefix, changelogPrefix} {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".md") {
			return strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".md")
		}
	}
	return ""
}

// Artifact is one persisted file of a release.
type Artifact struct {
	Kind ArtifactKind
	Path string
}

// ArtifactSet is the set of files generated for one version.
type ArtifactSet struct {
	Version   string
	Artifacts []Artifact
}

// Persist writes all artifacts for one release: versioned release notes and
// changelog plus the regenerated index under docsDir, and the version block
// replaced in place inside the README. Every file write is atomic
// (temp file, then rename).
func (g *Generator) Persist(in Input, docsDir, readmePath string) (*ArtifactSet, error) {
	if err := os.MkdirAll(docsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating docs directory %s: %w", docsDir, err)
	}

	set := &ArtifactSet{Version: in.Version}

	notes, err := g.Render(KindReleaseNotes, in)
	if err != nil {
		return nil, err
	}
	notesPath := filepath.Join(docsDir, ReleaseNotesName(in.Version))
	if err := writeFileAtomic(notesPath, []byte(notes)); err != nil {
		return nil, err
	}
	set.Artifacts = append(set.Artifacts, Artifact{Kind: KindReleaseNotes, Path: notesPath})

	changelog, err := g.Render(KindChangelog, in)
	if err != nil {
		return nil, err
	}
	changelogPath := filepath.Join(docsDir, ChangelogName(in.Version))
	if err := writeFileAtomic(changelogPath, []byte(changelog)); err != nil {
		return nil, err
	}
	set.Artifacts = append(set.Artifacts, Artifact{Kind: KindChangelog, Path: changelogPath})

	in.IndexVersions, err = knownVersions(docsDir)
	if err != nil {
		return nil, err
	}
	index, err := g.Render(KindIndex, in)
	if err != nil {
		return nil, err
	}
	indexPath := filepath.Join(docsDir, indexFile)
	if err := writeFileAtomic(indexPath, []byte(index)); err != nil {
		return nil, err
	}
	set.Artifacts = append(set.Artifacts, Artifact{Kind: KindIndex, Path: indexPath})

	if readmePath != "" {
		if err := g.updateReadme(in, readmePath); err != nil {
			return nil, err
		}
		set.Artifacts = append(set.Artifacts, Artifact{Kind: KindReadmeBlock, Path: readmePath})
	}

	g.logger.Info("release artifacts written",
		"version", in.Version,
		"docs_dir", docsDir,
		"artifacts", len(set.Artifacts),
	)

	return set, nil
}

// updateReadme replaces (or prepends) the version block in the README. A
// missing README is created containing only the block.
func (g *Generator) updateReadme(in Input, readmePath string) error {
	block, err := g.Render(KindReadmeBlock, in)
	if err != nil {
		return err
	}

	content := ""
	data, err := os.ReadFile(readmePath)
	switch {
	case err == nil:
		content = string(data)
	case errors.Is(err, os.ErrNotExist):
		// Created below.
	default:
		return fmt.Errorf("reading %s: %w", readmePath, err)
	}

	updated := UpdateReadmeBlock(content, block)
	if updated == content {
		return nil
	}

	return writeFileAtomic(readmePath, []byte(updated))
}

// knownVersions scans docsDir for versioned release-notes artifacts and
// returns their versions sorted newest first.
func knownVersions(docsDir string) ([]string, error) {
	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return nil, fmt.Errorf("scanning docs directory %s: %w", docsDir, err)
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), releasePrefix) {
			if v := VersionFromArtifact(entry.Name()); v != "" {
				versions = append(versions, v)
			}
		}
	}

	sort.Slice(versions, func(i, j int) bool {
		return version.CompareStrings(versions[i], versions[j]) > 0
	})
	return versions, nil
}

// writeFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so interrupted writes never leave partial artifacts.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}

	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		_ = os.Remove(tmpFile.Name())
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
