package dotdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const versionFile = "VERSION"

// LoadVersion reads the persisted version string from .cutline/VERSION.
// Returns "" with no error when the file does not exist yet.
// If overrideDir is non-empty, it is used instead of the default location.
func (m *Manager) LoadVersion(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, versionFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading version file: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}

// SaveVersion atomically persists the version string to .cutline/VERSION.
func (m *Manager) SaveVersion(version, overrideDir string) error {
	if strings.TrimSpace(version) == "" {
		return errors.New("cannot save empty version")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, versionFile)
	if err := writeFileAtomic(path, []byte(version+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing version file: %w", err)
	}

	return nil
}
