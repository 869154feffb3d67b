// Package agent invokes a locally installed documentation agent, the first
// tier of the fallback chain.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Mode selects how the agent entry point is executed.
type Mode int

const (
	ModeBinary Mode = iota
	ModeDocker
	ModeScript
)

// ErrUnknownMode reports an agent mode name outside the closed set.
var ErrUnknownMode = errors.New("unknown agent mode")

func (m Mode) String() string {
	switch m {
	case ModeBinary:
		return "binary"
	case ModeDocker:
		return "docker"
	case ModeScript:
		return "script"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode maps a configured mode name onto the closed Mode set.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "binary":
		return ModeBinary, nil
	case "docker":
		return ModeDocker, nil
	case "script":
		return ModeScript, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Descriptor identifies a configured agent. Created during one-time agent
// setup; read-only here.
type Descriptor struct {
	Mode       Mode
	EntryPoint string
	Token      string
}

// Configured reports whether a usable descriptor exists at all.
func (d Descriptor) Configured() bool {
	return d.EntryPoint != ""
}

// Request carries one documentation-generation request to the agent.
type Request struct {
	Version     string
	ReleaseType string
	Summary     string
}

// Runner executes an agent and returns the generated documentation.
type Runner interface {
	// Available reports whether the descriptor's entry point can be
	// invoked right now.
	Available(desc Descriptor) bool

	// Generate runs the agent and returns its stdout as the generated
	// documentation content.
	Generate(ctx context.Context, desc Descriptor, req Request) (string, error)
}

// executable reports whether path exists as a regular file with any execute
// bit set.
func executable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
