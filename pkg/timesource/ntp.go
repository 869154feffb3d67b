package timesource

import (
	"context"
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// NTPSource queries an NTP server. The acquisition context's deadline is
// translated into the NTP query timeout.
type NTPSource struct {
	name string
	host string
}

// NewNTPSource creates an NTP time source for the given host
// (e.g. "pool.ntp.org").
func NewNTPSource(name, host string) *NTPSource {
	return &NTPSource{name: name, host: host}
}

func (n *NTPSource) Name() string {
	return n.name
}

// Now queries the NTP server and returns the offset-corrected current time.
func (n *NTPSource) Now(ctx context.Context) (time.Time, error) {
	opts := ntp.QueryOptions{}
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return time.Time{}, ctx.Err()
		}
		opts.Timeout = remaining
	}

	resp, err := ntp.QueryWithOptions(n.host, opts)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying ntp %s: %w", n.host, err)
	}
	if err := resp.Validate(); err != nil {
		return time.Time{}, fmt.Errorf("invalid ntp response from %s: %w", n.host, err)
	}

	return time.Now().Add(resp.ClockOffset).UTC(), nil
}
