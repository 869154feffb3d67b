package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutlineco/cutline/pkg/config"
	"github.com/cutlineco/cutline/pkg/version"
)

var _ = Describe("Configer", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "cutline-config-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(dir)
		})
	})

	It("returns defaults when no config file exists", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Docs.Dir).To(Equal("docs"))
		Expect(cfg.Archive.Dir).To(Equal("docs/archive"))
		Expect(cfg.Remote.MaxRetries).To(Equal(3))
		Expect(cfg.Timestamp.Sources).To(HaveLen(3))
	})

	It("round-trips a config through save and load", func() {
		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg := config.NewDefaultConfig()
		cfg.Project.Name = "cutline"
		cfg.Remote.Endpoint = "https://docs.example.com/generate"
		Expect(cfger.SaveConfig(cfg)).To(Succeed())

		loaded, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Project.Name).To(Equal("cutline"))
		Expect(loaded.Remote.Endpoint).To(Equal("https://docs.example.com/generate"))
	})

	It("merges defaults into sparse config files", func() {
		path := filepath.Join(dir, "config.toml")
		Expect(os.WriteFile(path, []byte("[project]\nname = \"sparse\"\n"), 0o600)).To(Succeed())

		cfger, err := config.NewConfiger(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Project.Name).To(Equal("sparse"))
		Expect(cfg.Docs.Dir).To(Equal("docs"))
		Expect(cfg.Update.CooldownMinutes).To(Equal(1440))
	})

	It("rejects unsupported config versions", func() {
		_, err := config.ParseConfigTOML([]byte("version = 99\n"))
		Expect(err).To(MatchError(ContainSubstring("unsupported config version")))
	})

	Describe("config keys", func() {
		It("gets and sets dotted keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("docs.dir", "documentation")).To(Succeed())

			value, err := cfger.GetConfigValue("docs.dir")
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal("documentation"))
		})

		It("rejects unknown keys", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("nope.nope", "x")).NotTo(Succeed())
			Expect(config.IsValidConfigKey("nope.nope")).To(BeFalse())
		})

		It("validates numeric values", func() {
			cfger, err := config.NewConfiger(dir)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfger.SetConfigValue("archive.retention", "five")).NotTo(Succeed())
			Expect(cfger.SetConfigValue("archive.retention", "5")).To(Succeed())
		})

		It("lists every registered key", func() {
			keys := config.ValidConfigKeys()
			Expect(keys).To(ContainElements("docs.dir", "remote.endpoint", "agent.mode"))
			for _, k := range keys {
				Expect(config.IsValidConfigKey(k)).To(BeTrue())
			}
		})
	})

	Describe("RoleMapping", func() {
		It("falls back to the default mapping when unconfigured", func() {
			cfg := config.NewDefaultConfig()
			mapping, err := cfg.RoleMapping()
			Expect(err).NotTo(HaveOccurred())
			Expect(mapping[version.RoleMajor].Position).To(Equal(1))
			Expect(mapping[version.RoleMajor].Resets).To(Equal([]int{2, 3}))
		})

		It("builds a typed mapping from the config table", func() {
			cfg := config.NewDefaultConfig()
			cfg.Versioning.Roles = map[string]config.RoleRule{
				"major": {Position: 1, Resets: []int{2, 3, 4}},
				"minor": {Position: 2, Resets: []int{3}},
			}

			mapping, err := cfg.RoleMapping()
			Expect(err).NotTo(HaveOccurred())
			Expect(mapping).To(HaveLen(2))
			Expect(mapping[version.RoleMajor].Resets).To(Equal([]int{2, 3, 4}))
		})

		It("fails on unknown role names", func() {
			cfg := config.NewDefaultConfig()
			cfg.Versioning.Roles = map[string]config.RoleRule{
				"hotfix": {Position: 5},
			}

			_, err := cfg.RoleMapping()
			Expect(err).To(MatchError(version.ErrUnknownRole))
		})
	})

	Describe("LoadResolved", func() {
		It("lets environment variables override the file", func() {
			path := filepath.Join(dir, "config.toml")
			Expect(os.WriteFile(path, []byte("[docs]\ndir = \"from-file\"\n"), 0o600)).To(Succeed())

			orig := os.Getenv("CUTLINE_DOCS_DIR")
			Expect(os.Setenv("CUTLINE_DOCS_DIR", "from-env")).To(Succeed())
			DeferCleanup(func() {
				_ = os.Setenv("CUTLINE_DOCS_DIR", orig)
			})

			cfg, err := config.LoadResolved(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Docs.Dir).To(Equal("from-env"))
		})

		It("resolves every timestamp scalar from the file", func() {
			path := filepath.Join(dir, "config.toml")
			content := `
[timestamp]
timeout_seconds = 9
tolerance_seconds = 7
retries = 2
`
			Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

			cfg, err := config.LoadResolved(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Timestamp.TimeoutSeconds).To(Equal(9))
			Expect(cfg.Timestamp.ToleranceSeconds).To(Equal(7))
			Expect(cfg.Timestamp.Retries).To(Equal(2))
		})

		It("reads structured values from the file", func() {
			path := filepath.Join(dir, "config.toml")
			content := `
[versioning.roles.major]
position = 1
resets = [2, 3, 4]
`
			Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())

			cfg, err := config.LoadResolved(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Versioning.Roles).To(HaveKey("major"))
			Expect(cfg.Versioning.Roles["major"].Resets).To(Equal([]int{2, 3, 4}))
		})
	})
})
