package config

const (
	defaultInitialVersion = "0.1.0"

	defaultDocsDir    = "docs"
	defaultReadme     = "README.md"
	defaultArchiveDir = "docs/archive"

	defaultTimestampTimeout   = 5
	defaultTimestampTolerance = 5
	defaultTimestampRetries   = 1

	defaultRemoteMaxRetries = 3

	defaultUpdateCooldownMinutes = 1440
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Versioning: VersioningConfig{
			Initial: defaultInitialVersion,
		},
		Docs: DocsConfig{
			Dir:    defaultDocsDir,
			Readme: defaultReadme,
		},
		Archive: ArchiveConfig{
			Dir: defaultArchiveDir,
		},
		Timestamp: TimestampConfig{
			Sources: []SourceConfig{
				{Name: "worldtimeapi", Kind: "http", Target: "https://worldtimeapi.org/api/timezone/Etc/UTC"},
				{Name: "timeapi", Kind: "http", Target: "https://timeapi.io/api/Time/current/zone?timeZone=UTC"},
				{Name: "ntp-pool", Kind: "ntp", Target: "pool.ntp.org"},
			},
			TimeoutSeconds:   defaultTimestampTimeout,
			ToleranceSeconds: defaultTimestampTolerance,
			Retries:          defaultTimestampRetries,
		},
		Remote: RemoteConfig{
			MaxRetries: defaultRemoteMaxRetries,
		},
		Update: UpdateConfig{
			CooldownMinutes: defaultUpdateCooldownMinutes,
		},
	}
}
