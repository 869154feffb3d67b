package classify_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cutlineco/cutline/pkg/classify"
)

var _ = Describe("Classify", func() {
	It("returns an empty change set for empty input", func() {
		cs := classify.Classify(nil)
		Expect(cs.Empty()).To(BeTrue())
		Expect(cs.Total()).To(BeZero())
		Expect(cs.Summary()).To(Equal("no changes"))
		Expect(cs.Markdown()).To(BeEmpty())
	})

	It("buckets lines by keyword", func() {
		cs := classify.Classify([]string{
			"feat: add archive sweep",
			"fix: readme heading detection off by one",
			"docs: rewrite install section",
			"refactor template rendering",
			"breaking change: rename the version file",
		})

		Expect(cs.ByCategory(classify.CategoryFeature)).To(HaveLen(1))
		Expect(cs.ByCategory(classify.CategoryBugfix)).To(HaveLen(1))
		Expect(cs.ByCategory(classify.CategoryDocumentation)).To(HaveLen(1))
		Expect(cs.ByCategory(classify.CategoryImprovement)).To(HaveLen(1))
		Expect(cs.ByCategory(classify.CategoryBreaking)).To(HaveLen(1))
	})

	It("lets the first matching rule win", func() {
		// Matches breaking, bugfix, and documentation keywords at once;
		// breaking is listed first in the table.
		cs := classify.Classify([]string{"fix readme for breaking change in config"})
		Expect(cs.ByCategory(classify.CategoryBreaking)).To(HaveLen(1))
	})

	It("defaults unmatched lines to improvement", func() {
		cs := classify.Classify([]string{"tighten up the worker loop"})
		records := cs.ByCategory(classify.CategoryImprovement)
		Expect(records).To(HaveLen(1))
		Expect(records[0].Message).To(Equal("tighten up the worker loop"))
	})

	It("tolerates arbitrary UTF-8 without panicking", func() {
		Expect(func() {
			classify.Classify([]string{
				"\x00\xff garbage",
				"日本語のコミットメッセージ",
				strings.Repeat("a", 10_000),
				"",
				"   ",
			})
		}).NotTo(Panic())
	})

	It("strips oneline hash prefixes", func() {
		cs := classify.Classify([]string{"a1b2c3d fix: broken archive path"})
		records := cs.ByCategory(classify.CategoryBugfix)
		Expect(records).To(HaveLen(1))
		Expect(records[0].Message).To(Equal("broken archive path"))
	})

	It("stores messages without their conventional markers", func() {
		cs := classify.Classify([]string{
			"feat: add archive sweep",
			"feat(archive): add dry run",
			"feat!: redo the cli surface",
		})
		Expect(cs.ByCategory(classify.CategoryFeature)[0].Message).To(Equal("add archive sweep"))
		Expect(cs.ByCategory(classify.CategoryFeature)[1].Message).To(Equal("add dry run"))
		Expect(cs.ByCategory(classify.CategoryBreaking)[0].Message).To(Equal("redo the cli surface"))
	})

	It("strips bullet prefixes", func() {
		cs := classify.Classify([]string{"- feat: template overrides"})
		Expect(cs.ByCategory(classify.CategoryFeature)).To(HaveLen(1))
	})

	It("keeps non-hash leading words", func() {
		cs := classify.Classify([]string{"added retention pruning"})
		records := cs.ByCategory(classify.CategoryFeature)
		Expect(records).To(HaveLen(1))
		Expect(records[0].Message).To(Equal("added retention pruning"))
	})

	It("skips blank lines", func() {
		cs := classify.Classify([]string{"", "  ", "fix: one real line"})
		Expect(cs.Total()).To(Equal(1))
	})

	It("counts per category", func() {
		cs := classify.Classify([]string{
			"feat: a",
			"feat: b",
			"fix: c",
		})
		counts := cs.Counts()
		Expect(counts[classify.CategoryFeature]).To(Equal(2))
		Expect(counts[classify.CategoryBugfix]).To(Equal(1))
	})

	It("summarizes counts in display order", func() {
		cs := classify.Classify([]string{
			"feat: a",
			"feat: b",
			"fix: c",
			"misc cleanup",
		})
		Expect(cs.Summary()).To(Equal("2 features, 1 improvement, 1 bug fix"))
	})

	It("renders deterministic grouped markdown", func() {
		lines := []string{"feat: a", "fix: b"}
		first := classify.Classify(lines).Markdown()
		second := classify.Classify(lines).Markdown()

		Expect(first).To(Equal(second))
		Expect(first).To(ContainSubstring("### Features"))
		Expect(first).To(ContainSubstring("- a"))
		Expect(first).To(ContainSubstring("### Bug Fixes"))
		Expect(first).NotTo(ContainSubstring("### Breaking"))
	})
})

var _ = Describe("StripMarker", func() {
	It("removes conventional markers", func() {
		Expect(classify.StripMarker("feat: add archive sweep")).To(Equal("add archive sweep"))
		Expect(classify.StripMarker("fix(docgen): readme span")).To(Equal("readme span"))
		Expect(classify.StripMarker("feat!: redo the cli surface")).To(Equal("redo the cli surface"))
	})

	It("leaves unmarked messages alone", func() {
		Expect(classify.StripMarker("tighten up the worker loop")).To(Equal("tighten up the worker loop"))
		Expect(classify.StripMarker("breaking change: rename the version file")).To(Equal("breaking change: rename the version file"))
		Expect(classify.StripMarker("see https://example.com/issues/7")).To(Equal("see https://example.com/issues/7"))
	})
})

var _ = Describe("rule table", func() {
	It("tests each default rule in isolation", func() {
		rules := classify.DefaultRules()
		for msg, want := range map[string]classify.Category{
			"breaking: drop config v0":     classify.CategoryBreaking,
			"feat!: redo the cli surface":  classify.CategoryBreaking,
			"fix: off by one":              classify.CategoryBugfix,
			"hotfix for prod":              classify.CategoryBugfix,
			"docs: clarify retention":      classify.CategoryDocumentation,
			"update changelog format":      classify.CategoryDocumentation,
			"feat(archive): add dry run":   classify.CategoryFeature,
			"implement update guard":       classify.CategoryFeature,
			"chore: bump deps":             classify.CategoryImprovement,
			"refactor timestamp fan-out":   classify.CategoryImprovement,
		} {
			Expect(classify.Match(rules, msg)).To(Equal(want), "message: %s", msg)
		}
	})
})
