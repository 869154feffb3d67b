// Package classify buckets commit-log lines into release-note categories.
//
// Classification is a keyword heuristic, not a parser: each line is tested
// against an ordered rule table and the first matching rule wins. Arbitrary
// free-text commit messages must never cause an error; anything unmatched
// lands in the improvement bucket.
package classify

import (
	"fmt"
	"strings"
)

// Category is a release-note bucket for one commit.
type Category int

const (
	CategoryBreaking Category = iota
	CategoryBugfix
	CategoryDocumentation
	CategoryFeature
	CategoryImprovement
)

// Categories lists every category in display order: breaking changes first,
// then features, improvements, fixes, and documentation.
var Categories = []Category{
	CategoryBreaking,
	CategoryFeature,
	CategoryImprovement,
	CategoryBugfix,
	CategoryDocumentation,
}

func (c Category) String() string {
	switch c {
	case CategoryBreaking:
		return "breaking"
	case CategoryBugfix:
		return "bugfix"
	case CategoryDocumentation:
		return "documentation"
	case CategoryFeature:
		return "feature"
	case CategoryImprovement:
		return "improvement"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Heading returns the markdown section heading used for the category in
// generated release notes.
func (c Category) Heading() string {
	switch c {
	case CategoryBreaking:
		return "Breaking Changes"
	case CategoryBugfix:
		return "Bug Fixes"
	case CategoryDocumentation:
		return "Documentation"
	case CategoryFeature:
		return "Features"
	case CategoryImprovement:
		return "Improvements"
	default:
		return "Changes"
	}
}

// Record is one classified commit-log line.
type Record struct {
	Message  string
	Category Category
}

// ChangeSet groups the records of one release by category, in rule-table
// order. It is built fresh per release and only ever persisted as rendered
// markdown.
type ChangeSet struct {
	records []Record
}

// Classify buckets log lines using the default rule table. It never fails:
// empty input yields an empty ChangeSet.
func Classify(lines []string) ChangeSet {
	return ClassifyWith(DefaultRules(), lines)
}

// ClassifyWith buckets log lines using a caller-supplied rule table. Rules
// are evaluated in order and the first match wins, so more specific rules
// (breaking-change markers) must precede broader ones (feature keywords).
func ClassifyWith(rules []Rule, lines []string) ChangeSet {
	var cs ChangeSet
	for _, line := range lines {
		msg := StripPrefix(line)
		if msg == "" {
			continue
		}
		// Match before stripping so prefix rules like "feat:" still see
		// the marker; the stored message is the human-readable remainder.
		cat := Match(rules, msg)
		cs.records = append(cs.records, Record{Message: StripMarker(msg), Category: cat})
	}
	return cs
}

// Match returns the category of the first rule matching msg, or
// CategoryImprovement when nothing matches.
func Match(rules []Rule, msg string) Category {
	lower := strings.ToLower(msg)
	for _, rule := range rules {
		if rule.matches(lower) {
			return rule.Category
		}
	}
	return CategoryImprovement
}

// ByCategory returns the records of one category in input order.
func (cs ChangeSet) ByCategory(c Category) []Record {
	var out []Record
	for _, r := range cs.records {
		if r.Category == c {
			out = append(out, r)
		}
	}
	return out
}

// Counts returns the number of records per category.
func (cs ChangeSet) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, r := range cs.records {
		counts[r.Category]++
	}
	return counts
}

// Total returns the number of classified records.
func (cs ChangeSet) Total() int {
	return len(cs.records)
}

// Empty reports whether nothing was classified.
func (cs ChangeSet) Empty() bool {
	return len(cs.records) == 0
}

// Markdown renders the change set as grouped markdown bullet lists, omitting
// empty categories. Identical input always renders identical output.
func (cs ChangeSet) Markdown() string {
	var b strings.Builder
	for _, cat := range Categories {
		records := cs.ByCategory(cat)
		if len(records) == 0 {
			continue
		}

		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n\n", cat.Heading())
		for _, r := range records {
			fmt.Fprintf(&b, "- %s\n", r.Message)
		}
	}
	return b.String()
}

// Summary returns a one-line per-category count summary, e.g.
// "3 features, 2 bug fixes". Empty change sets summarize as "no changes".
func (cs ChangeSet) Summary() string {
	if cs.Empty() {
		return "no changes"
	}

	counts := cs.Counts()
	var parts []string
	for _, cat := range Categories {
		if n := counts[cat]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, pluralize(cat, n)))
		}
	}
	return strings.Join(parts, ", ")
}

func pluralize(c Category, n int) string {
	name := c.String()
	if c == CategoryBugfix {
		name = "bug fix"
	}
	if n == 1 {
		return name
	}
	if c == CategoryBugfix {
		return "bug fixes"
	}
	return name + "s"
}

// StripPrefix removes leading log-format noise from a commit line: list
// bullets ("- ", "* ") and an abbreviated or full commit hash token.
func StripPrefix(line string) string {
	msg := strings.TrimSpace(line)
	for _, bullet := range []string{"- ", "* "} {
		if strings.HasPrefix(msg, bullet) {
			msg = strings.TrimSpace(msg[len(bullet):])
			break
		}
	}

	if first, rest, ok := strings.Cut(msg, " "); ok && isHash(first) {
		msg = strings.TrimSpace(rest)
	}

	return msg
}

// StripMarker removes a leading conventional-commit marker such as
// "feat:", "fix(archive):", or "feat!:" from a message, leaving the
// summary text. Messages without a recognizable marker come back
// unchanged.
func StripMarker(msg string) string {
	head, rest, ok := strings.Cut(msg, ": ")
	if !ok {
		return msg
	}
	head = strings.TrimSuffix(head, "!")
	if i := strings.IndexByte(head, '('); i >= 0 && strings.HasSuffix(head, ")") {
		head = head[:i]
	}
	if head == "" {
		return msg
	}
	for _, r := range head {
		if r < 'a' || r > 'z' {
			return msg
		}
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return msg
	}
	return rest
}

// isHash reports whether the token looks like an abbreviated git hash
// (7-40 hex characters).
func isHash(token string) bool {
	if len(token) < 7 || len(token) > 40 {
		return false
	}
	for _, r := range token {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
