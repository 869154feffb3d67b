// Package fallback drives documentation generation through three tiers:
// a local agent, the remote documentation API, and local template
// rendering. The chain always terminates in Done or Failed and never
// loops back to an earlier tier.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cutlineco/cutline/pkg/agent"
	"github.com/cutlineco/cutline/pkg/remote"
)

// Tier identifies which stage of the chain produced the documentation.
type Tier int

const (
	TierAgent Tier = iota
	TierRemote
	TierLocal
)

func (t Tier) String() string {
	switch t {
	case TierAgent:
		return "local-agent"
	case TierRemote:
		return "remote-api"
	case TierLocal:
		return "local-generation"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// State is one node of the chain's state machine.
type State int

const (
	StateTryLocalAgent State = iota
	StateTryRemoteAPI
	StateTryLocalGeneration
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateTryLocalAgent:
		return "TRY_LOCAL_AGENT"
	case StateTryRemoteAPI:
		return "TRY_REMOTE_API"
	case StateTryLocalGeneration:
		return "TRY_LOCAL_GENERATION"
	case StateDone:
		return "DONE"
	case StateFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RemoteGenerator is the remote tier's capability. *remote.Client
// satisfies it.
type RemoteGenerator interface {
	Configured() bool
	Generate(ctx context.Context, p remote.Payload) (string, error)
}

// Request carries everything the tiers need for one release.
type Request struct {
	Version     string
	ReleaseType string

	// Changes is the rendered change list the remote API and the agent
	// summary are built from.
	Changes string

	Repository remote.Repository
	Timestamp  string
	CLIVersion string
}

// Result is the chain's outcome.
type Result struct {
	// Notes is the generated release-notes content. Empty when the local
	// tier won, in which case the caller renders from templates.
	Notes string

	// Tier is the stage that produced the documentation.
	Tier Tier

	// Degraded is true when a tier below the first eligible one won.
	Degraded bool
}

// Config assembles a Chain.
type Config struct {
	Runner     agent.Runner
	Descriptor agent.Descriptor
	Remote     RemoteGenerator

	// Local renders the release notes from templates. It is the floor of
	// the chain: if it errors, the whole chain fails.
	Local func(ctx context.Context) (string, error)

	// MaxRetries bounds remote-tier retries after the initial attempt.
	MaxRetries int

	DisableAgent  bool
	DisableRemote bool

	// Offline skips the remote tier regardless of configuration.
	Offline bool

	// Sleep waits between remote retries. Swappable in tests; defaults to
	// a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	Logger *slog.Logger
}

// Chain is the fallback state machine.
type Chain struct {
	cfg Config
}

// NewChain creates a Chain. Config.Local must be set.
func NewChain(cfg Config) (*Chain, error) {
	if cfg.Local == nil {
		return nil, errors.New("fallback chain requires a local generator")
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Chain{cfg: cfg}, nil
}

// Generate walks the tiers in order and returns the first success. An
// error is returned only when the local tier itself fails.
func (c *Chain) Generate(ctx context.Context, req Request) (Result, error) {
	log := c.cfg.Logger
	degraded := false

	state := StateTryLocalAgent
	for {
		switch state {
		case StateTryLocalAgent:
			notes, ok := c.tryAgent(ctx, req)
			if ok {
				log.Info("documentation generated", "tier", TierAgent.String())
				return Result{Notes: notes, Tier: TierAgent, Degraded: false}, nil
			}
			if c.agentEligible() {
				degraded = true
			}
			log.Info("advancing fallback tier", "from", state.String(), "to", StateTryRemoteAPI.String())
			state = StateTryRemoteAPI

		case StateTryRemoteAPI:
			notes, ok := c.tryRemote(ctx, req)
			if ok {
				log.Info("documentation generated", "tier", TierRemote.String(), "degraded", degraded)
				return Result{Notes: notes, Tier: TierRemote, Degraded: degraded}, nil
			}
			if c.remoteEligible() {
				degraded = true
			}
			log.Info("advancing fallback tier", "from", state.String(), "to", StateTryLocalGeneration.String())
			state = StateTryLocalGeneration

		case StateTryLocalGeneration:
			notes, err := c.cfg.Local(ctx)
			if err != nil {
				log.Error("local generation failed", "error", err)
				return Result{}, fmt.Errorf("all fallback tiers exhausted: %w", err)
			}
			log.Info("documentation generated", "tier", TierLocal.String(), "degraded", degraded)
			return Result{Notes: notes, Tier: TierLocal, Degraded: degraded}, nil
		}
	}
}

func (c *Chain) agentEligible() bool {
	return !c.cfg.DisableAgent &&
		c.cfg.Runner != nil &&
		c.cfg.Descriptor.Configured() &&
		c.cfg.Runner.Available(c.cfg.Descriptor)
}

func (c *Chain) tryAgent(ctx context.Context, req Request) (string, bool) {
	log := c.cfg.Logger

	if c.cfg.DisableAgent {
		log.Debug("agent tier disabled")
		return "", false
	}
	if c.cfg.Runner == nil || !c.cfg.Descriptor.Configured() {
		log.Debug("no agent configured")
		return "", false
	}
	if !c.cfg.Runner.Available(c.cfg.Descriptor) {
		log.Info("agent configured but not available", "entry_point", c.cfg.Descriptor.EntryPoint)
		return "", false
	}

	notes, err := c.cfg.Runner.Generate(ctx, c.cfg.Descriptor, agent.Request{
		Version:     req.Version,
		ReleaseType: req.ReleaseType,
		Summary:     req.Changes,
	})
	if err != nil {
		log.Warn("agent tier failed", "error", err)
		return "", false
	}
	return notes, true
}

func (c *Chain) remoteEligible() bool {
	return !c.cfg.DisableRemote &&
		!c.cfg.Offline &&
		c.cfg.Remote != nil &&
		c.cfg.Remote.Configured()
}

// tryRemote sends the identical payload up to 1+MaxRetries times, sleeping
// 2^attempt seconds between attempts. A validation error ends the tier
// immediately since resending the same payload cannot change the outcome.
func (c *Chain) tryRemote(ctx context.Context, req Request) (string, bool) {
	log := c.cfg.Logger

	if !c.remoteEligible() {
		switch {
		case c.cfg.Offline:
			log.Debug("remote tier skipped: offline")
		case c.cfg.DisableRemote:
			log.Debug("remote tier disabled")
		default:
			log.Debug("remote tier not configured")
		}
		return "", false
	}

	payload := remote.Payload{
		Version:     req.Version,
		ReleaseType: req.ReleaseType,
		Repository:  req.Repository,
		Changes:     req.Changes,
		Context: remote.RequestContext{
			Timestamp:  req.Timestamp,
			CLIVersion: req.CLIVersion,
		},
	}

	for attempt := 0; ; attempt++ {
		notes, err := c.cfg.Remote.Generate(ctx, payload)
		if err == nil {
			return notes, true
		}

		var vErr *remote.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("remote tier returned unusable response", "error", err)
			return "", false
		}

		if attempt >= c.cfg.MaxRetries {
			log.Warn("remote tier exhausted retries", "attempts", attempt+1, "error", err)
			return "", false
		}

		delay := time.Duration(1<<(attempt+1)) * time.Second
		log.Info("remote request failed, retrying",
			"attempt", attempt+1,
			"max_retries", c.cfg.MaxRetries,
			"delay", delay,
			"error", err,
		)
		if err := c.cfg.Sleep(ctx, delay); err != nil {
			log.Warn("remote tier aborted during backoff", "error", err)
			return "", false
		}
	}
}

// sleepContext waits for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
