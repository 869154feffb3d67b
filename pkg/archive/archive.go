// Package archive moves superseded release artifacts out of the docs
// directory into cold storage, and optionally prunes the oldest archived
// versions beyond a retention count.
package archive

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/cutlineco/cutline/pkg/docgen"
	"github.com/cutlineco/cutline/pkg/version"
)

// Result reports what one sweep did.
type Result struct {
	Moved   int
	Skipped int
}

// Manager performs archive sweeps over a docs directory.
type Manager struct {
	logger *slog.Logger
	dryRun bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithDryRun makes the sweep log what it would move without touching files.
func WithDryRun(dryRun bool) Option {
	return func(m *Manager) {
		m.dryRun = dryRun
	}
}

// NewManager creates an archive Manager.
func NewManager(logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := &Manager{logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Sweep moves every versioned artifact in docsDir into archiveDir, except
// artifacts for currentVersion. Filenames are preserved. A missing docs
// directory or zero matching files is a no-op, not an error. A file that
// cannot be moved is logged and counted as skipped; the sweep continues.
func (m *Manager) Sweep(docsDir, archiveDir, currentVersion string) (Result, error) {
	var res Result

	entries, err := os.ReadDir(docsDir)
	if errors.Is(err, os.ErrNotExist) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("scanning docs directory %s: %w", docsDir, err)
	}

	created := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		v := docgen.VersionFromArtifact(entry.Name())
		if v == "" {
			continue
		}
		if v == currentVersion {
			res.Skipped++
			continue
		}

		src := filepath.Join(docsDir, entry.Name())
		dst := filepath.Join(archiveDir, entry.Name())

		if m.dryRun {
			m.logger.Info("would archive", "artifact", entry.Name(), "to", archiveDir)
			res.Moved++
			continue
		}

		if !created {
			if err := os.MkdirAll(archiveDir, 0o755); err != nil {
				return res, fmt.Errorf("creating archive directory %s: %w", archiveDir, err)
			}
			created = true
		}

		if err := os.Rename(src, dst); err != nil {
			m.logger.Warn("could not archive artifact", "artifact", entry.Name(), "error", err)
			res.Skipped++
			continue
		}

		m.logger.Debug("archived artifact", "artifact", entry.Name(), "to", archiveDir)
		res.Moved++
	}

	m.logger.Info("archive sweep complete",
		"docs_dir", docsDir,
		"moved", res.Moved,
		"skipped", res.Skipped,
	)
	return res, nil
}

// Prune deletes the oldest archived versions beyond retention, removing
// every artifact that embeds a pruned version. retention <= 0 keeps
// everything. Returns the number of versions pruned.
func (m *Manager) Prune(archiveDir string, retention int) (int, error) {
	if retention <= 0 {
		return 0, nil
	}

	entries, err := os.ReadDir(archiveDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("scanning archive directory %s: %w", archiveDir, err)
	}

	byVersion := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if v := docgen.VersionFromArtifact(entry.Name()); v != "" {
			byVersion[v] = append(byVersion[v], entry.Name())
		}
	}

	versions := make([]string, 0, len(byVersion))
	for v := range byVersion {
		versions = append(versions, v)
	}
	if len(versions) <= retention {
		return 0, nil
	}

	sort.Slice(versions, func(i, j int) bool {
		return version.CompareStrings(versions[i], versions[j]) > 0
	})

	pruned := 0
	for _, v := range versions[retention:] {
		failed := false
		for _, name := range byVersion[v] {
			if err := os.Remove(filepath.Join(archiveDir, name)); err != nil {
				m.logger.Warn("could not prune artifact", "artifact", name, "error", err)
				failed = true
			}
		}
		if !failed {
			m.logger.Debug("pruned archived version", "version", v)
			pruned++
		}
	}

	if pruned > 0 {
		m.logger.Info("archive retention applied", "retention", retention, "pruned", pruned)
	}
	return pruned, nil
}
