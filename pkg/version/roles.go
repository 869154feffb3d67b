package version

import (
	"errors"
	"fmt"
)

// Role is a semantic increment request, independent of which component
// position it maps to.
type Role int

const (
	RoleMajor Role = iota
	RoleMinor
	RolePatch
	RoleRevision
)

// ErrUnknownRole is returned when an increment is requested for a role the
// mapping does not define. This is a configuration error and callers should
// treat it as fatal.
var ErrUnknownRole = errors.New("unknown version role")

// ParseRole converts a user-supplied role name into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "major":
		return RoleMajor, nil
	case "minor":
		return RoleMinor, nil
	case "patch":
		return RolePatch, nil
	case "revision":
		return RoleRevision, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: major, minor, patch, revision)", ErrUnknownRole, s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleMajor:
		return "major"
	case RoleMinor:
		return "minor"
	case RolePatch:
		return "patch"
	case RoleRevision:
		return "revision"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// RoleRule says which 1-based component position a role increments and which
// positions it resets to zero.
type RoleRule struct {
	// Position is the 1-based component the role reads and increments.
	Position int

	// Resets lists 1-based positions zeroed when the role is incremented.
	// An empty set makes the role purely additive.
	Resets []int
}

// RoleMapping maps roles to their increment rules. Built once from
// configuration and treated as immutable afterwards.
type RoleMapping map[Role]RoleRule

// DefaultMapping returns the conventional three-component layout. The
// revision role targets a fourth component and resets nothing; it is not
// listed in any other role's reset set unless the administrator opts in.
func DefaultMapping() RoleMapping {
	return RoleMapping{
		RoleMajor:    {Position: 1, Resets: []int{2, 3}},
		RoleMinor:    {Position: 2, Resets: []int{3}},
		RolePatch:    {Position: 3},
		RoleRevision: {Position: 4},
	}
}

// Next derives the successor of cur for the given role. The targeted
// component is incremented by exactly one, every reset-listed component is
// zeroed, and all other components are untouched. The input spec is never
// modified.
//
// If the mapping references a position beyond the spec's component count, the
// spec is first extended with zero-valued, width-1 components up to that
// position. This is deterministic: "1.0" with patch mapped to position 3
// always yields "1.0.1".
func Next(cur Spec, role Role, mapping RoleMapping) (Spec, error) {
	rule, ok := mapping[role]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s has no rule in the configured mapping", ErrUnknownRole, role)
	}
	if rule.Position < 1 {
		return Spec{}, fmt.Errorf("role %s maps to invalid position %d", role, rule.Position)
	}

	highest := rule.Position
	for _, p := range rule.Resets {
		if p > highest {
			highest = p
		}
	}

	next := Spec{
		Prefix:     cur.Prefix,
		Suffix:     cur.Suffix,
		Separator:  cur.Separator,
		Components: make([]Component, max(len(cur.Components), highest)),
	}
	copy(next.Components, cur.Components)
	for i := len(cur.Components); i < len(next.Components); i++ {
		next.Components[i] = Component{Value: 0, Width: 1}
	}

	next.Components[rule.Position-1].Value++
	for _, p := range rule.Resets {
		if p >= 1 {
			next.Components[p-1].Value = 0
		}
	}

	return next, nil
}
