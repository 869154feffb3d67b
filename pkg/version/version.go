// Package version implements cutline's version arithmetic. A version string is
// an ordered list of zero-padded numeric components plus an optional literal
// prefix (e.g. "v") and suffix (e.g. "-beta"). The package deliberately does
// not implement any external versioning standard; the component layout is
// whatever the administrator configured.
package version

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultSeparator joins components when a spec is built from scratch.
const DefaultSeparator = "."

// ErrMalformed is returned when a version string contains no numeric components.
var ErrMalformed = errors.New("malformed version string")

// Component is one numeric segment of a version string. Width records the
// zero-padding width the component was parsed with so that "0001" renders
// back as "0001" and not "1".
type Component struct {
	Value int
	Width int
}

// Spec is a parsed version string. Specs are immutable by convention: Next
// returns a fresh Spec and never mutates its input.
type Spec struct {
	// Prefix is any literal text before the first digit, e.g. "v".
	Prefix string

	// Suffix is any literal text after the last component, e.g. "-rc1".
	Suffix string

	// Separator joins components, "." unless the parsed string used another.
	Separator string

	Components []Component
}

// Parse parses a version string into a Spec, preserving prefix, suffix,
// separator, and per-component padding width.
func Parse(s string) (Spec, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Spec{}, fmt.Errorf("%w: empty string", ErrMalformed)
	}

	// Everything before the first digit is the literal prefix.
	start := strings.IndexFunc(trimmed, isDigit)
	if start < 0 {
		return Spec{}, fmt.Errorf("%w: %q has no numeric component", ErrMalformed, s)
	}

	spec := Spec{
		Prefix:    trimmed[:start],
		Separator: DefaultSeparator,
	}

	rest := trimmed[start:]
	for {
		digits := leadingDigits(rest)
		if digits == "" {
			return Spec{}, fmt.Errorf("%w: %q has an empty component", ErrMalformed, s)
		}

		spec.Components = append(spec.Components, parseComponent(digits))
		rest = rest[len(digits):]

		if rest == "" {
			return spec, nil
		}

		sep := string(rest[0])
		if len(rest) < 2 || !isDigit(rune(rest[1])) {
			// No digit after the delimiter: the remainder is a literal suffix.
			spec.Suffix = rest
			return spec, nil
		}

		if len(spec.Components) == 1 {
			spec.Separator = sep
		} else if sep != spec.Separator {
			return Spec{}, fmt.Errorf("%w: %q mixes separators %q and %q",
				ErrMalformed, s, spec.Separator, sep)
		}

		rest = rest[1:]
	}
}

// String renders the spec back to its canonical string form. Each component
// keeps its parsed padding width; a value that outgrew its width simply
// renders wider (9999 in a 4-digit field increments to 10000).
func (s Spec) String() string {
	parts := make([]string, len(s.Components))
	for i, c := range s.Components {
		parts[i] = c.String()
	}

	sep := s.Separator
	if sep == "" {
		sep = DefaultSeparator
	}

	return s.Prefix + strings.Join(parts, sep) + s.Suffix
}

// Equal reports whether two specs have identical components, padding, and
// literal text.
func (s Spec) Equal(o Spec) bool {
	return s.String() == o.String()
}

// Compare orders two specs numerically, component by component. A missing
// component counts as zero, so "1.2" and "1.2.0" compare equal. Prefix,
// suffix, and padding are ignored.
func Compare(a, b Spec) int {
	n := max(len(a.Components), len(b.Components))
	for i := range n {
		av, bv := 0, 0
		if i < len(a.Components) {
			av = a.Components[i].Value
		}
		if i < len(b.Components) {
			bv = b.Components[i].Value
		}

		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	}
	return 0
}

// CompareStrings parses and compares two version strings. Unparseable input
// orders as the zero version.
func CompareStrings(a, b string) int {
	as, _ := Parse(a)
	bs, _ := Parse(b)
	return Compare(as, bs)
}

func (c Component) String() string {
	return fmt.Sprintf("%0*d", c.Width, c.Value)
}

func parseComponent(digits string) Component {
	value := 0
	for _, r := range digits {
		value = value*10 + int(r-'0')
	}
	return Component{Value: value, Width: len(digits)}
}

func leadingDigits(s string) string {
	for i, r := range s {
		if !isDigit(r) {
			return s[:i]
		}
	}
	return s
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
