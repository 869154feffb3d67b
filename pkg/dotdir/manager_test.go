package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutlineco/cutline/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		m   *dotdir.Manager
		dir string
	)

	BeforeEach(func() {
		m = dotdir.NewManager()
		var err error
		dir, err = os.MkdirTemp("", "cutline-dotdir-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(dir)
		})
	})

	Describe("Target", func() {
		It("uses the override directory when provided", func() {
			target, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(Equal(dir))
		})

		It("creates the directory if missing", func() {
			nested := filepath.Join(dir, "sub", ".cutline")
			target, err := m.Target(nested)
			Expect(err).NotTo(HaveOccurred())
			Expect(target).To(BeADirectory())
		})
	})

	Describe("version file", func() {
		It("returns empty when no version was persisted", func() {
			v, err := m.LoadVersion(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(BeEmpty())
		})

		It("round-trips a version string", func() {
			Expect(m.SaveVersion("1.2.3", dir)).To(Succeed())

			v, err := m.LoadVersion(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("1.2.3"))
		})

		It("trims whitespace on load", func() {
			path := filepath.Join(dir, "VERSION")
			Expect(os.WriteFile(path, []byte("  2.0.0\n\n"), 0o644)).To(Succeed())

			v, err := m.LoadVersion(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal("2.0.0"))
		})

		It("rejects an empty version", func() {
			Expect(m.SaveVersion("  ", dir)).NotTo(Succeed())
		})

		It("leaves no temp files behind", func() {
			Expect(m.SaveVersion("1.0.0", dir)).To(Succeed())

			entries, err := os.ReadDir(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name()).To(Equal("VERSION"))
		})
	})

	Describe("cooldown file", func() {
		It("returns the zero time when no check was recorded", func() {
			at, err := m.LoadLastCheck(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(at.IsZero()).To(BeTrue())
		})

		It("round-trips a timestamp at second precision", func() {
			now := time.Now().Truncate(time.Second)
			Expect(m.SaveLastCheck(now, dir)).To(Succeed())

			at, err := m.LoadLastCheck(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(at.Equal(now)).To(BeTrue())
		})

		It("treats a corrupt cooldown file as never-checked", func() {
			path := filepath.Join(dir, "last_update_check")
			Expect(os.WriteFile(path, []byte("not-a-number"), 0o644)).To(Succeed())

			at, err := m.LoadLastCheck(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(at.IsZero()).To(BeTrue())
		})
	})
})
