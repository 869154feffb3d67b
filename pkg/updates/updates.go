// Package updates throttles how often cutline checks for a newer CLI
// release. The gate is pure time arithmetic; the last-check timestamp
// lives in a single dot-directory file.
package updates

import (
	"log/slog"
	"time"

	"github.com/cutlineco/cutline/pkg/dotdir"
	"github.com/cutlineco/cutline/pkg/version"
)

// ShouldCheck reports whether enough time has passed since lastCheck.
// A zero lastCheck (never checked) always allows a check; a cooldown of
// zero or less disables checking entirely.
func ShouldCheck(lastCheck time.Time, cooldown time.Duration, now time.Time) bool {
	if cooldown <= 0 {
		return false
	}
	if lastCheck.IsZero() {
		return true
	}
	return now.Sub(lastCheck) >= cooldown
}

// Guard gates update checks behind the persisted cooldown timestamp.
type Guard struct {
	dotdir   *dotdir.Manager
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewGuard creates a Guard. now may be nil to use the wall clock.
func NewGuard(manager *dotdir.Manager, cooldown time.Duration, now func() time.Time, logger *slog.Logger) *Guard {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{dotdir: manager, cooldown: cooldown, now: now, logger: logger}
}

// ShouldCheck reads the persisted timestamp and applies the gate.
func (g *Guard) ShouldCheck(overrideDir string) (bool, error) {
	last, err := g.dotdir.LoadLastCheck(overrideDir)
	if err != nil {
		return false, err
	}

	ok := ShouldCheck(last, g.cooldown, g.now())
	if !ok {
		g.logger.Debug("update check suppressed",
			"last_check", last,
			"cooldown", g.cooldown,
		)
	}
	return ok, nil
}

// MarkChecked persists the current time as the last check.
func (g *Guard) MarkChecked(overrideDir string) error {
	return g.dotdir.SaveLastCheck(g.now(), overrideDir)
}

// Newer reports whether latest is a strictly newer version than current.
// Unparseable inputs report false so a bad remote answer never nags.
func Newer(current, latest string) bool {
	cur, err := version.Parse(current)
	if err != nil {
		return false
	}
	lat, err := version.Parse(latest)
	if err != nil {
		return false
	}
	return version.Compare(lat, cur) > 0
}
