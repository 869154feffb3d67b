package config

import (
	"fmt"
	"strconv"

	"github.com/cutlineco/cutline/pkg/version"
)

// Config represents the persistent cutline configuration stored as
// config.toml in the .cutline/ directory. It is built once at process start
// and passed into every component; nothing else reads ambient environment
// state.
type Config struct {
	Version    int              `toml:"version"`
	Project    ProjectConfig    `toml:"project"`
	Versioning VersioningConfig `toml:"versioning"`
	Docs       DocsConfig       `toml:"docs"`
	Archive    ArchiveConfig    `toml:"archive"`
	Timestamp  TimestampConfig  `toml:"timestamp"`
	Remote     RemoteConfig     `toml:"remote"`
	Agent      AgentConfig      `toml:"agent"`
	Fallback   FallbackConfig   `toml:"fallback"`
	Update     UpdateConfig     `toml:"update"`
}

// ProjectConfig describes the repository, used when git metadata is
// unavailable and for remote documentation requests.
type ProjectConfig struct {
	Name  string `toml:"name,omitempty"`
	Owner string `toml:"owner,omitempty"`
	URL   string `toml:"url,omitempty"`
}

// RoleRule configures one version role: the 1-based component position it
// increments and the positions it resets to zero.
type RoleRule struct {
	Position int   `toml:"position"`
	Resets   []int `toml:"resets,omitempty"`
}

// VersioningConfig holds the version-arithmetic scheme.
type VersioningConfig struct {
	// Initial seeds the VERSION file on `cutline init`.
	Initial string `toml:"initial,omitempty"`

	// Roles maps role names (major, minor, patch, revision) to rules.
	// Empty falls back to the conventional three-component layout.
	Roles map[string]RoleRule `toml:"roles,omitempty"`
}

// DocsConfig holds documentation paths.
type DocsConfig struct {
	Dir         string `toml:"dir,omitempty"`
	TemplateDir string `toml:"template_dir,omitempty"`
	Readme      string `toml:"readme,omitempty"`
}

// ArchiveConfig holds archive sweep settings.
type ArchiveConfig struct {
	Dir string `toml:"dir,omitempty"`

	// Retention caps how many archived versions are kept; 0 keeps all.
	Retention int `toml:"retention,omitempty"`
}

// SourceConfig describes one time source.
type SourceConfig struct {
	Name string `toml:"name"`

	// Kind is "http" or "ntp".
	Kind string `toml:"kind"`

	// Target is a URL for http sources or a host for ntp sources.
	Target string `toml:"target"`
}

// TimestampConfig holds trusted-timestamp acquisition settings.
type TimestampConfig struct {
	Sources          []SourceConfig `toml:"sources,omitempty"`
	TimeoutSeconds   int            `toml:"timeout_seconds,omitempty"`
	ToleranceSeconds int            `toml:"tolerance_seconds,omitempty"`
	Retries          int            `toml:"retries,omitempty"`
}

// RemoteConfig holds the remote documentation API settings.
type RemoteConfig struct {
	Endpoint   string `toml:"endpoint,omitempty"`
	Token      string `toml:"token,omitempty"`
	MaxRetries int    `toml:"max_retries,omitempty"`
}

// AgentConfig describes the optional local documentation agent.
type AgentConfig struct {
	// Mode is "docker", "binary", or "script"; empty disables the tier.
	Mode       string `toml:"mode,omitempty"`
	Entrypoint string `toml:"entrypoint,omitempty"`
	Token      string `toml:"token,omitempty"`
}

// FallbackConfig disables individual documentation tiers.
type FallbackConfig struct {
	DisableAgent  bool `toml:"disable_agent,omitempty"`
	DisableRemote bool `toml:"disable_remote,omitempty"`
	DisableLocal  bool `toml:"disable_local,omitempty"`
}

// UpdateConfig holds the CLI update-check settings.
type UpdateConfig struct {
	Endpoint        string `toml:"endpoint,omitempty"`
	CooldownMinutes int    `toml:"cooldown_minutes,omitempty"`
}

// RoleMapping converts the configured role table into the engine's typed
// mapping. Unknown role names are a configuration error.
func (c *Config) RoleMapping() (version.RoleMapping, error) {
	if len(c.Versioning.Roles) == 0 {
		return version.DefaultMapping(), nil
	}

	mapping := make(version.RoleMapping, len(c.Versioning.Roles))
	for name, rule := range c.Versioning.Roles {
		role, err := version.ParseRole(name)
		if err != nil {
			return nil, fmt.Errorf("versioning.roles: %w", err)
		}
		mapping[role] = version.RoleRule{Position: rule.Position, Resets: rule.Resets}
	}
	return mapping, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported scalar config keys.
// Keys use dotted notation matching the TOML section structure. The role
// table and time-source list are structured values edited in config.toml
// directly.
var configKeys = map[string]configKeyInfo{
	"project.name": {
		get: func(c *Config) string { return c.Project.Name },
		set: func(c *Config, v string) error { c.Project.Name = v; return nil },
	},
	"project.owner": {
		get: func(c *Config) string { return c.Project.Owner },
		set: func(c *Config, v string) error { c.Project.Owner = v; return nil },
	},
	"project.url": {
		get: func(c *Config) string { return c.Project.URL },
		set: func(c *Config, v string) error { c.Project.URL = v; return nil },
	},
	"versioning.initial": {
		get: func(c *Config) string { return c.Versioning.Initial },
		set: func(c *Config, v string) error { c.Versioning.Initial = v; return nil },
	},
	"docs.dir": {
		get: func(c *Config) string { return c.Docs.Dir },
		set: func(c *Config, v string) error { c.Docs.Dir = v; return nil },
	},
	"docs.template_dir": {
		get: func(c *Config) string { return c.Docs.TemplateDir },
		set: func(c *Config, v string) error { c.Docs.TemplateDir = v; return nil },
	},
	"docs.readme": {
		get: func(c *Config) string { return c.Docs.Readme },
		set: func(c *Config, v string) error { c.Docs.Readme = v; return nil },
	},
	"archive.dir": {
		get: func(c *Config) string { return c.Archive.Dir },
		set: func(c *Config, v string) error { c.Archive.Dir = v; return nil },
	},
	"archive.retention": {
		get: func(c *Config) string { return strconv.Itoa(c.Archive.Retention) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for archive.retention: %w", err)
			}
			c.Archive.Retention = n
			return nil
		},
	},
	"timestamp.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Timestamp.TimeoutSeconds) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for timestamp.timeout_seconds: %w", err)
			}
			c.Timestamp.TimeoutSeconds = n
			return nil
		},
	},
	"timestamp.tolerance_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Timestamp.ToleranceSeconds) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for timestamp.tolerance_seconds: %w", err)
			}
			c.Timestamp.ToleranceSeconds = n
			return nil
		},
	},
	"timestamp.retries": {
		get: func(c *Config) string { return strconv.Itoa(c.Timestamp.Retries) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for timestamp.retries: %w", err)
			}
			c.Timestamp.Retries = n
			return nil
		},
	},
	"remote.endpoint": {
		get: func(c *Config) string { return c.Remote.Endpoint },
		set: func(c *Config, v string) error { c.Remote.Endpoint = v; return nil },
	},
	"remote.token": {
		get: func(c *Config) string { return c.Remote.Token },
		set: func(c *Config, v string) error { c.Remote.Token = v; return nil },
	},
	"remote.max_retries": {
		get: func(c *Config) string { return strconv.Itoa(c.Remote.MaxRetries) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for remote.max_retries: %w", err)
			}
			c.Remote.MaxRetries = n
			return nil
		},
	},
	"agent.mode": {
		get: func(c *Config) string { return c.Agent.Mode },
		set: func(c *Config, v string) error { c.Agent.Mode = v; return nil },
	},
	"agent.entrypoint": {
		get: func(c *Config) string { return c.Agent.Entrypoint },
		set: func(c *Config, v string) error { c.Agent.Entrypoint = v; return nil },
	},
	"agent.token": {
		get: func(c *Config) string { return c.Agent.Token },
		set: func(c *Config, v string) error { c.Agent.Token = v; return nil },
	},
	"fallback.disable_agent": {
		get: func(c *Config) string { return strconv.FormatBool(c.Fallback.DisableAgent) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for fallback.disable_agent: %w", err)
			}
			c.Fallback.DisableAgent = b
			return nil
		},
	},
	"fallback.disable_remote": {
		get: func(c *Config) string { return strconv.FormatBool(c.Fallback.DisableRemote) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for fallback.disable_remote: %w", err)
			}
			c.Fallback.DisableRemote = b
			return nil
		},
	},
	"fallback.disable_local": {
		get: func(c *Config) string { return strconv.FormatBool(c.Fallback.DisableLocal) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for fallback.disable_local: %w", err)
			}
			c.Fallback.DisableLocal = b
			return nil
		},
	},
	"update.endpoint": {
		get: func(c *Config) string { return c.Update.Endpoint },
		set: func(c *Config, v string) error { c.Update.Endpoint = v; return nil },
	},
	"update.cooldown_minutes": {
		get: func(c *Config) string { return strconv.Itoa(c.Update.CooldownMinutes) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for update.cooldown_minutes: %w", err)
			}
			c.Update.CooldownMinutes = n
			return nil
		},
	},
}
