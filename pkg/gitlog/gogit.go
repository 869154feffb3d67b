package gitlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoRepository reports that the path is not inside a git repository.
var ErrNoRepository = errors.New("not a git repository")

// GoGitClient implements Client against an on-disk repository.
type GoGitClient struct {
	repo *git.Repository
}

var _ Client = (*GoGitClient)(nil)

// Open locates the repository containing path, searching parent
// directories the way git itself does.
func Open(path string) (*GoGitClient, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", ErrNoRepository, path)
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &GoGitClient{repo: repo}, nil
}

func (c *GoGitClient) LatestTag(ctx context.Context) (string, error) {
	iter, err := c.repo.Tags()
	if err != nil {
		return "", fmt.Errorf("listing tags: %w", err)
	}
	defer iter.Close()

	var (
		latest     string
		latestWhen time.Time
	)
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		commit, err := c.tagCommit(ref)
		if err != nil {
			// Unresolvable tag, skip it.
			return nil
		}
		if latest == "" || commit.Committer.When.After(latestWhen) {
			latest = ref.Name().Short()
			latestWhen = commit.Committer.When
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("iterating tags: %w", err)
	}
	return latest, nil
}

// tagCommit resolves a tag reference to its commit, peeling annotated tags.
func (c *GoGitClient) tagCommit(ref *plumbing.Reference) (*object.Commit, error) {
	if commit, err := c.repo.CommitObject(ref.Hash()); err == nil {
		return commit, nil
	}

	tag, err := c.repo.TagObject(ref.Hash())
	if err != nil {
		return nil, err
	}
	return tag.Commit()
}

func (c *GoGitClient) LogSince(ctx context.Context, tag string) ([]string, error) {
	var boundary plumbing.Hash
	if tag != "" {
		hash, err := c.repo.ResolveRevision(plumbing.Revision(tag))
		if err != nil {
			return nil, fmt.Errorf("resolving tag %s: %w", tag, err)
		}
		boundary = *hash
	}

	iter, err := c.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("reading log: %w", err)
	}
	defer iter.Close()

	var subjects []string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		commit, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating log: %w", err)
		}

		if tag != "" && commit.Hash == boundary {
			break
		}
		subjects = append(subjects, subject(commit.Message))
	}
	return subjects, nil
}

func (c *GoGitClient) Branch(ctx context.Context) (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return "HEAD", nil
}

func (c *GoGitClient) Head(ctx context.Context) (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return head.Hash().String()[:7], nil
}

func (c *GoGitClient) Metadata(ctx context.Context) (Metadata, error) {
	remote, err := c.repo.Remote("origin")
	if err != nil {
		// No origin is fine; the payload just carries less context.
		return Metadata{}, nil
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return Metadata{}, nil
	}

	owner, name := parseRemoteURL(urls[0])
	return Metadata{URL: urls[0], Owner: owner, Name: name}, nil
}

func (c *GoGitClient) CreateTag(ctx context.Context, name, message string, when time.Time) error {
	head, err := c.repo.Head()
	if err != nil {
		return fmt.Errorf("reading HEAD: %w", err)
	}

	_, err = c.repo.CreateTag(name, head.Hash(), &git.CreateTagOptions{
		Tagger: &object.Signature{
			Name:  "cutline",
			Email: "release@cutline",
			When:  when,
		},
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("creating tag %s: %w", name, err)
	}
	return nil
}
