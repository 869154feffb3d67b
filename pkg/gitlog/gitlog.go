// Package gitlog reads release-relevant history from a git repository:
// the latest tag, commit subjects since it, and repository metadata for
// the remote documentation payload.
package gitlog

import (
	"context"
	"strings"
	"time"
)

// Metadata identifies the repository a release belongs to, derived from
// the origin remote.
type Metadata struct {
	URL   string
	Name  string
	Owner string
}

// Client is the capability the release pipeline needs from git.
type Client interface {
	// LatestTag returns the most recently committed tag, or "" when the
	// repository has no tags.
	LatestTag(ctx context.Context) (string, error)

	// LogSince returns commit subject lines from HEAD back to (but not
	// including) the given tag, newest first. An empty tag returns the
	// full history.
	LogSince(ctx context.Context, tag string) ([]string, error)

	// Branch returns the current branch short name, or "HEAD" when
	// detached.
	Branch(ctx context.Context) (string, error)

	// Head returns the abbreviated HEAD commit hash.
	Head(ctx context.Context) (string, error)

	// Metadata derives repository identity from the origin remote.
	Metadata(ctx context.Context) (Metadata, error)

	// CreateTag creates an annotated tag at HEAD.
	CreateTag(ctx context.Context, name, message string, when time.Time) error
}

// subject extracts the first line of a commit message.
func subject(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		message = message[:i]
	}
	return strings.TrimSpace(message)
}

// parseRemoteURL extracts owner and repository name from common remote URL
// shapes (https, ssh, scp-like).
func parseRemoteURL(url string) (owner, name string) {
	trimmed := strings.TrimSuffix(url, ".git")

	// scp-like: git@host:owner/name
	if i := strings.Index(trimmed, ":"); i >= 0 && !strings.Contains(trimmed[:i], "/") && !strings.Contains(trimmed, "://") {
		trimmed = trimmed[i+1:]
	} else if i := strings.Index(trimmed, "://"); i >= 0 {
		trimmed = trimmed[i+3:]
		if j := strings.IndexByte(trimmed, '/'); j >= 0 {
			trimmed = trimmed[j+1:]
		}
	}

	parts := strings.Split(strings.Trim(trimmed, "/"), "/")
	if len(parts) < 2 {
		return "", ""
	}
	return parts[len(parts)-2], parts[len(parts)-1]
}
