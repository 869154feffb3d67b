package classify

import "strings"

// Rule pairs a category with the keywords that select it. The rule table is
// data so individual rules can be unit-tested and reordered without touching
// branching code.
type Rule struct {
	Category Category

	// Keywords match anywhere in the lowercased message.
	Keywords []string

	// Prefixes match only at the start of the message, for conventional
	// commit style markers like "feat:".
	Prefixes []string
}

func (r Rule) matches(lower string) bool {
	for _, p := range r.Prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	for _, k := range r.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// DefaultRules returns the ordered default rule table. Order matters: a
// message like "fix docs for breaking change" matches several categories and
// must land in the first one listed here.
func DefaultRules() []Rule {
	return []Rule{
		{
			Category: CategoryBreaking,
			Keywords: []string{"breaking change", "breaking:", "backwards incompatible", "!:"},
			Prefixes: []string{"breaking"},
		},
		{
			Category: CategoryBugfix,
			Keywords: []string{"hotfix", "bugfix", "regression"},
			Prefixes: []string{"fix:", "fix(", "fix ", "fixed ", "fixes ", "bug:", "bug "},
		},
		{
			Category: CategoryDocumentation,
			Keywords: []string{"readme", "changelog", "documentation"},
			Prefixes: []string{"docs:", "docs(", "doc:", "docs ", "document "},
		},
		{
			Category: CategoryFeature,
			Keywords: []string{"new feature"},
			Prefixes: []string{"feat:", "feat(", "feature:", "add ", "added ", "adds ", "implement ", "introduce "},
		},
	}
}
