// Package remote is the client for the hosted documentation-generation API,
// the second tier of the fallback chain.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one request round-trip.
const DefaultTimeout = 30 * time.Second

// Repository identifies the repository a release belongs to.
type Repository struct {
	URL        string `json:"url"`
	Name       string `json:"name"`
	Owner      string `json:"owner"`
	Branch     string `json:"branch"`
	CommitHash string `json:"commit_hash"`
}

// RequestContext carries run metadata alongside the release content.
type RequestContext struct {
	Timestamp  string `json:"timestamp"`
	CLIVersion string `json:"cli_version"`
}

// Payload is the request body for one documentation-generation call.
type Payload struct {
	Version     string         `json:"version"`
	ReleaseType string         `json:"release_type"`
	Repository  Repository     `json:"repository"`
	Changes     string         `json:"changes"`
	Context     RequestContext `json:"context"`
}

// generateResponse is the API's response body. Exactly one of the two
// fields is expected to be set.
type generateResponse struct {
	Documentation string `json:"documentation"`
	Error         string `json:"error"`
}

// ValidationError marks a response that came back but cannot be used: a
// malformed body, an error field, or missing documentation. It is terminal
// for the remote tier; retrying the identical payload cannot help.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid remote response: " + e.Reason
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// Endpoint is the full URL of the generation endpoint.
	Endpoint string

	// Token is the bearer credential. Empty sends no Authorization header.
	Token string

	// Timeout bounds one request. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client, for tests.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client calls the documentation API.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a documentation API client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Configured reports whether the tier's prerequisites (endpoint and
// credential) are present.
func (c *Client) Configured() bool {
	return c.endpoint != "" && c.token != ""
}

// Generate posts one payload and returns the generated documentation.
// Transport failures and non-2xx statuses return plain errors, which the
// caller may retry; a *ValidationError means the response itself was
// unusable and retrying is pointless.
func (c *Client) Generate(ctx context.Context, p Payload) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("requesting remote documentation", "endpoint", c.endpoint, "version", p.Version)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("remote API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &ValidationError{Reason: fmt.Sprintf("decoding body: %v", err)}
	}

	if out.Error != "" {
		return "", &ValidationError{Reason: out.Error}
	}
	if strings.TrimSpace(out.Documentation) == "" {
		return "", &ValidationError{Reason: "missing documentation field"}
	}

	return out.Documentation, nil
}
