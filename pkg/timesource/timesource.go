// Package timesource acquires a consensus release timestamp from multiple
// time sources. Sources are queried in parallel under one deadline; the
// service degrades through best-effort down to the local clock but never
// fails a release.
package timesource

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Provenance labels how much agreement backs a timestamp.
type Provenance int

const (
	// ProvenanceTrusted means at least two sources agreed within tolerance.
	ProvenanceTrusted Provenance = iota

	// ProvenanceBestEffort means exactly one source responded.
	ProvenanceBestEffort

	// ProvenanceLocalFallback means no source responded and the local
	// system clock was used.
	ProvenanceLocalFallback
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceTrusted:
		return "trusted"
	case ProvenanceBestEffort:
		return "best-effort"
	case ProvenanceLocalFallback:
		return "local-fallback"
	default:
		return fmt.Sprintf("provenance(%d)", int(p))
	}
}

// TrustedTimestamp is a point in time plus its provenance: which sources
// responded, how many agreed, and the resulting confidence label.
type TrustedTimestamp struct {
	Time       time.Time
	Provenance Provenance

	// Responded names the sources that returned a time value.
	Responded []string

	// Agreeing counts the sources inside the winning tolerance cluster.
	Agreeing int
}

// Source is one queryable time authority.
type Source interface {
	Name() string
	Now(ctx context.Context) (time.Time, error)
}

const (
	defaultTimeout   = 5 * time.Second
	defaultRetries   = 1
	defaultTolerance = 5 * time.Second
)

// Config holds the knobs for a timestamp Service.
type Config struct {
	// Sources are the time authorities to query. Empty means local-clock only.
	Sources []Source

	// Timeout bounds each acquisition round (defaults to 5s).
	Timeout time.Duration

	// Retries is the number of extra query rounds per source after a
	// failure (defaults to 1).
	Retries int

	// Tolerance is the agreement window between sources (defaults to 5s).
	Tolerance time.Duration

	// Clock supplies the local fallback time. Defaults to time.Now;
	// injectable for tests.
	Clock func() time.Time

	Logger *slog.Logger
}

// Service queries a set of time sources and derives a TrustedTimestamp.
type Service struct {
	cfg Config
}

// NewService creates a timestamp service, filling zero-value config fields
// with defaults.
func NewService(cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaultTolerance
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Service{cfg: cfg}
}

type sourceResult struct {
	name string
	at   time.Time
	err  error
}

// Acquire queries every source in parallel under a shared deadline and
// reduces the responses to a single timestamp. Individual source failures
// are swallowed and logged; total failure degrades provenance to
// local-fallback rather than returning an error.
func (s *Service) Acquire(ctx context.Context) TrustedTimestamp {
	if len(s.cfg.Sources) == 0 {
		return TrustedTimestamp{Time: s.cfg.Clock().UTC(), Provenance: ProvenanceLocalFallback}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	results := make(chan sourceResult, len(s.cfg.Sources))
	for _, src := range s.cfg.Sources {
		go func() {
			at, err := s.query(ctx, src)
			results <- sourceResult{name: src.Name(), at: at, err: err}
		}()
	}

	var responded []sourceResult
	for range s.cfg.Sources {
		res := <-results
		if res.err != nil {
			s.cfg.Logger.Warn("time source unavailable",
				"source", res.name,
				"error", res.err,
			)
			continue
		}
		responded = append(responded, res)
	}

	return s.reduce(responded)
}

// query asks one source for the time, retrying within the shared deadline.
func (s *Service) query(ctx context.Context, src Source) (time.Time, error) {
	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return time.Time{}, lastErr
			}
			return time.Time{}, err
		}

		at, err := src.Now(ctx)
		if err == nil {
			return at.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// reduce picks the final timestamp from the responding sources: the median
// of the largest agreement cluster when two or more agree, the single value
// when only one responded, and the local clock when none did.
func (s *Service) reduce(responded []sourceResult) TrustedTimestamp {
	ts := TrustedTimestamp{}
	for _, r := range responded {
		ts.Responded = append(ts.Responded, r.name)
	}

	switch len(responded) {
	case 0:
		ts.Time = s.cfg.Clock().UTC()
		ts.Provenance = ProvenanceLocalFallback
		s.cfg.Logger.Info("no time sources responded, using local clock",
			"timestamp", ts.Time,
		)
		return ts

	case 1:
		ts.Time = responded[0].at
		ts.Provenance = ProvenanceBestEffort
		ts.Agreeing = 1
		s.cfg.Logger.Info("single time source responded",
			"source", responded[0].name,
			"timestamp", ts.Time,
		)
		return ts
	}

	times := make([]time.Time, len(responded))
	for i, r := range responded {
		times[i] = r.at
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	cluster := largestCluster(times, s.cfg.Tolerance)
	if len(cluster) >= 2 {
		ts.Time = cluster[len(cluster)/2]
		ts.Provenance = ProvenanceTrusted
		ts.Agreeing = len(cluster)
	} else {
		// Multiple responses but none agree; trust no single one more
		// than another and degrade to best-effort on the median.
		ts.Time = times[len(times)/2]
		ts.Provenance = ProvenanceBestEffort
		ts.Agreeing = 1
	}

	s.cfg.Logger.Info("time sources reduced",
		"responded", len(responded),
		"agreeing", ts.Agreeing,
		"provenance", ts.Provenance.String(),
	)
	return ts
}

// largestCluster finds the biggest run of sorted times whose spread stays
// within tolerance.
func largestCluster(sorted []time.Time, tolerance time.Duration) []time.Time {
	best := sorted[:1]
	for i := range sorted {
		j := i
		for j+1 < len(sorted) && sorted[j+1].Sub(sorted[i]) <= tolerance {
			j++
		}
		if j-i+1 > len(best) {
			best = sorted[i : j+1]
		}
	}
	return best
}
