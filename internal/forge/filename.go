package forge

import (
	"fmt"
	"strings"

	"forgefetch/internal/scryfall"
)

// NamingPolicy selects which name field of a print wins. It is a pure input
// parameter: the set workflow runs oracle-first, the rev-print-name workflow
// runs printed-first.
type NamingPolicy int

const (
	// OracleFirst uses the canonical oracle name unless the print is a
	// special product carrying a flavor name (crossover drops), in which
	// case the printed/flavor name wins.
	OracleFirst NamingPolicy = iota
	// PrintedFirst prefers the name as printed on the card:
	// flavor, then printed, then oracle.
	PrintedFirst
)

func (p NamingPolicy) String() string {
	if p == PrintedFirst {
		return "printed"
	}
	return "oracle"
}

// ParsePolicy maps the config value to a policy; unknown input falls back
// to oracle-first.
func ParsePolicy(s string) NamingPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "printed") {
		return PrintedFirst
	}
	return OracleFirst
}

// roleSuffix keeps sibling faces of one print from ever sharing a base
// name. Single-image prints carry no suffix.
var roleSuffix = map[FaceRole]string{
	RoleSingle: "",
	RoleFront:  "_A",
	RoleBack:   "_B",
	RoleLeft:   "_A",
	RoleRight:  "_B",
}

// BuildBaseName computes the collision-safe base filename for one face of a
// print (no directory, no enumeration suffix, no extension). faceCount is
// the number of files the print emits; when it is greater than one the
// face-role suffix is mandatory so sibling faces never collide.
func BuildBaseName(card scryfall.Card, face Face, faceCount int, policy NamingPolicy) string {
	name := rankedName(card, face, policy)
	base := Sanitize(name, false)
	base = strings.ReplaceAll(base, " ", "_")
	if faceCount > 1 {
		base += roleSuffix[face.Role]
	}
	return base
}

// rankedName returns the first non-empty name field in the order the policy
// dictates, falling back from face-level to card-level fields.
func rankedName(card scryfall.Card, face Face, policy NamingPolicy) string {
	oracle := firstNonEmpty(face.Name, card.Name, FallbackName)
	printed := firstNonEmpty(face.PrintedName, card.PrintedName)
	flavor := firstNonEmpty(face.FlavorName, card.FlavorName)

	switch policy {
	case PrintedFirst:
		return firstNonEmpty(flavor, printed, oracle)
	default:
		if flavor != "" {
			// Special-product prints (flavor-name crossovers) are
			// filed under their printed identity even oracle-first.
			return firstNonEmpty(printed, flavor, oracle)
		}
		return oracle
	}
}

// SingleStem is the Singles folder naming scheme: SET_Name. Enumeration and
// the fullborder infix are applied later, like everywhere else.
func SingleStem(card scryfall.Card, face Face, faceCount int, policy NamingPolicy) string {
	return fmt.Sprintf("%s_%s", strings.ToUpper(card.Set), BuildBaseName(card, face, faceCount, policy))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
