package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/cutlineco/cutline/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the CUTLINE_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (bound by commands that accept overrides)
//  2. Environment variables (CUTLINE_REMOTE_ENDPOINT, CUTLINE_DOCS_DIR, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: CUTLINE_REMOTE_ENDPOINT, CUTLINE_AGENT_MODE, etc.
	v.SetEnvPrefix("CUTLINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// LoadResolved builds the final immutable Config through the viper
// precedence chain. This is what commands call once at startup; the result
// is passed by value into the pipeline so no component re-reads the
// environment.
func LoadResolved(configDir string) (*Config, error) {
	v, err := InitViper(configDir)
	if err != nil {
		return nil, err
	}

	cfg := NewDefaultConfig()
	for key, info := range configKeys {
		if !v.IsSet(key) {
			continue
		}
		if err := info.set(cfg, v.GetString(key)); err != nil {
			return nil, fmt.Errorf("resolving %s: %w", key, err)
		}
	}

	// Structured values (role table, time sources) bypass the dotted-key
	// registry and come straight from the config file.
	cfger, err := NewConfiger(configDir)
	if err != nil {
		return nil, err
	}
	fileCfg, err := cfger.LoadConfig()
	if err != nil {
		return nil, err
	}
	cfg.Versioning.Roles = fileCfg.Versioning.Roles
	cfg.Timestamp.Sources = fileCfg.Timestamp.Sources

	return cfg, nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Project
	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.owner", d.Project.Owner)
	v.SetDefault("project.url", d.Project.URL)

	// Versioning
	v.SetDefault("versioning.initial", d.Versioning.Initial)

	// Docs
	v.SetDefault("docs.dir", d.Docs.Dir)
	v.SetDefault("docs.template_dir", d.Docs.TemplateDir)
	v.SetDefault("docs.readme", d.Docs.Readme)

	// Archive
	v.SetDefault("archive.dir", d.Archive.Dir)
	v.SetDefault("archive.retention", d.Archive.Retention)

	// Timestamp
	v.SetDefault("timestamp.timeout_seconds", d.Timestamp.TimeoutSeconds)
	v.SetDefault("timestamp.tolerance_seconds", d.Timestamp.ToleranceSeconds)
	v.SetDefault("timestamp.retries", d.Timestamp.Retries)

	// Remote
	v.SetDefault("remote.endpoint", d.Remote.Endpoint)
	v.SetDefault("remote.token", d.Remote.Token)
	v.SetDefault("remote.max_retries", d.Remote.MaxRetries)

	// Agent
	v.SetDefault("agent.mode", d.Agent.Mode)
	v.SetDefault("agent.entrypoint", d.Agent.Entrypoint)
	v.SetDefault("agent.token", d.Agent.Token)

	// Fallback
	v.SetDefault("fallback.disable_agent", d.Fallback.DisableAgent)
	v.SetDefault("fallback.disable_remote", d.Fallback.DisableRemote)
	v.SetDefault("fallback.disable_local", d.Fallback.DisableLocal)

	// Update
	v.SetDefault("update.endpoint", d.Update.Endpoint)
	v.SetDefault("update.cooldown_minutes", d.Update.CooldownMinutes)
}
