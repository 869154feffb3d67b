package agent

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// tokenEnv is the environment variable the agent reads its credential from.
const tokenEnv = "CUTLINE_AGENT_TOKEN"

// ExecRunner runs the agent as a subprocess.
type ExecRunner struct {
	logger *slog.Logger

	// lookPath is swappable in tests.
	lookPath func(string) (string, error)
}

// NewExecRunner creates a subprocess-backed Runner.
func NewExecRunner(logger *slog.Logger) *ExecRunner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ExecRunner{logger: logger, lookPath: exec.LookPath}
}

func (r *ExecRunner) Available(desc Descriptor) bool {
	if !desc.Configured() {
		return false
	}
	switch desc.Mode {
	case ModeDocker:
		_, err := r.lookPath("docker")
		return err == nil
	case ModeScript:
		_, err := os.Stat(desc.EntryPoint)
		return err == nil
	default:
		return executable(desc.EntryPoint)
	}
}

func (r *ExecRunner) Generate(ctx context.Context, desc Descriptor, req Request) (string, error) {
	args := []string{
		"generate",
		"--version", req.Version,
		"--release-type", req.ReleaseType,
	}

	var cmd *exec.Cmd
	switch desc.Mode {
	case ModeDocker:
		dockerArgs := append([]string{"run", "--rm", "-i", "-e", tokenEnv, desc.EntryPoint}, args...)
		cmd = exec.CommandContext(ctx, "docker", dockerArgs...)
	case ModeScript:
		cmd = exec.CommandContext(ctx, "/bin/sh", append([]string{desc.EntryPoint}, args...)...)
	default:
		cmd = exec.CommandContext(ctx, desc.EntryPoint, args...)
	}

	cmd.Env = append(os.Environ(), tokenEnv+"="+desc.Token)
	cmd.Stdin = strings.NewReader(req.Summary)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("invoking agent", "mode", desc.Mode.String(), "entry_point", desc.EntryPoint)

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("agent %s failed: %s: %w", desc.Mode, msg, err)
		}
		return "", fmt.Errorf("agent %s failed: %w", desc.Mode, err)
	}

	content := stdout.String()
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("agent %s produced no output", desc.Mode)
	}
	return content, nil
}
