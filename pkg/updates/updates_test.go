package updates_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutlineco/cutline/pkg/dotdir"
	"github.com/cutlineco/cutline/pkg/updates"
)

var _ = Describe("ShouldCheck", func() {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cooldown := 24 * time.Hour

	It("allows a check when none has been recorded", func() {
		Expect(updates.ShouldCheck(time.Time{}, cooldown, now)).To(BeTrue())
	})

	It("suppresses a check inside the cooldown window", func() {
		last := now.Add(-time.Hour)
		Expect(updates.ShouldCheck(last, cooldown, now)).To(BeFalse())
	})

	It("allows a check exactly at the cooldown boundary", func() {
		last := now.Add(-cooldown)
		Expect(updates.ShouldCheck(last, cooldown, now)).To(BeTrue())
	})

	It("disables checking when the cooldown is zero", func() {
		Expect(updates.ShouldCheck(time.Time{}, 0, now)).To(BeFalse())
	})
})

var _ = Describe("Guard", func() {
	var (
		dir   string
		guard *updates.Guard
		now   time.Time
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "cutline-updates-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(dir)
		})

		now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		guard = updates.NewGuard(dotdir.NewManager(), 24*time.Hour, func() time.Time { return now }, nil)
	})

	It("allows the first check and suppresses the second", func() {
		ok, err := guard.ShouldCheck(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		Expect(guard.MarkChecked(dir)).To(Succeed())

		ok, err = guard.ShouldCheck(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("allows a check again after the cooldown elapses", func() {
		Expect(guard.MarkChecked(dir)).To(Succeed())

		now = now.Add(25 * time.Hour)
		ok, err := guard.ShouldCheck(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})
})

var _ = Describe("Newer", func() {
	It("compares versions component-wise", func() {
		Expect(updates.Newer("1.0.0", "1.1.0")).To(BeTrue())
		Expect(updates.Newer("1.1.0", "1.0.0")).To(BeFalse())
		Expect(updates.Newer("1.0.0", "1.0.0")).To(BeFalse())
		Expect(updates.Newer("1.9.0", "1.10.0")).To(BeTrue())
	})

	It("reports false for unparseable input", func() {
		Expect(updates.Newer("garbage", "1.0.0")).To(BeFalse())
		Expect(updates.Newer("1.0.0", "garbage")).To(BeFalse())
	})
})
