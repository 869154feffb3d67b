package timesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSource queries a JSON time API over HTTP. It understands the common
// response shapes of worldtimeapi-style endpoints: an RFC 3339 datetime
// field or a unix timestamp.
type HTTPSource struct {
	name       string
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates an HTTP time source. The client is injectable for
// tests; nil uses a default client (the per-request deadline comes from the
// acquisition context).
func NewHTTPSource(name, url string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPSource{name: name, url: url, httpClient: client}
}

func (h *HTTPSource) Name() string {
	return h.name
}

// timeResponse covers the field names used by the supported time APIs.
type timeResponse struct {
	UTCDateTime string `json:"utc_datetime"`
	DateTime    string `json:"dateTime"`
	UnixTime    int64  `json:"unixtime"`
}

// Now fetches and parses the current time from the endpoint.
func (h *HTTPSource) Now(ctx context.Context) (time.Time, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying %s: %w", h.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return time.Time{}, fmt.Errorf("%s returned status %d: %s", h.name, resp.StatusCode, string(body))
	}

	var tr timeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return time.Time{}, fmt.Errorf("decoding %s response: %w", h.name, err)
	}

	return tr.toTime()
}

func (t timeResponse) toTime() (time.Time, error) {
	if t.UTCDateTime != "" {
		return parseRFC3339(t.UTCDateTime)
	}
	if t.DateTime != "" {
		return parseRFC3339(t.DateTime)
	}
	if t.UnixTime != 0 {
		return time.Unix(t.UnixTime, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("response contains no recognizable time field")
}

func parseRFC3339(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.9999999"} {
		if at, err := time.Parse(layout, s); err == nil {
			return at.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable datetime %q", s)
}
