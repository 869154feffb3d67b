package dotdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const cooldownFile = "last_update_check"

// LoadLastCheck reads the update-check cooldown timestamp. Returns the zero
// time with no error when no check has been recorded yet.
func (m *Manager) LoadLastCheck(overrideDir string) (time.Time, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return time.Time{}, err
	}

	data, err := os.ReadFile(filepath.Join(dir, cooldownFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("reading cooldown file: %w", err)
	}

	unix, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		// A corrupt cooldown file means the next check simply runs.
		return time.Time{}, nil
	}

	return time.Unix(unix, 0).UTC(), nil
}

// SaveLastCheck atomically records when the last update check ran.
func (m *Manager) SaveLastCheck(at time.Time, overrideDir string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, cooldownFile)
	data := []byte(strconv.FormatInt(at.Unix(), 10) + "\n")
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("writing cooldown file: %w", err)
	}

	return nil
}
