package core

import (
	"regexp"
	"strconv"
	"strings"
)

// nameSep joins the field segments of derived names.
const nameSep = "-"

var versionSuffix = regexp.MustCompile(`-\d+$`)

// BaseIdentifier returns the identity-group key of an item: the part of
// its naming that survives version changes. For freeform items this is
// the title with any trailing "-N" suffix stripped; for the other
// schemes it is the field composite joined with the fixed separator.
func BaseIdentifier(it Item) string {
	switch it.Scheme {
	case SchemeCohort:
		return it.CohortKey + nameSep + it.Subject
	case SchemeRoster:
		return strings.Join([]string{it.Period, it.CohortKey, it.Subject, it.Member}, nameSep)
	default:
		return versionSuffix.ReplaceAllString(it.Title, "")
	}
}

// InternalName derives the stable machine-oriented name used as remote
// naming material. Freeform titles already embed their "-N" suffix
// (applied by the lineage functions, not here), so the version number is
// not re-applied for them.
func InternalName(it Item) string {
	switch it.Scheme {
	case SchemeCohort:
		return strings.Join([]string{it.CohortKey, it.Subject, strconv.Itoa(it.Version)}, nameSep)
	case SchemeRoster:
		return strings.Join([]string{it.Period, it.CohortKey, it.Subject, it.Member, strconv.Itoa(it.Version)}, nameSep)
	default:
		return it.Title
	}
}

// DisplayName derives the label shown in navigation. Roster items never
// show their version to the user.
func DisplayName(it Item) string {
	switch it.Scheme {
	case SchemeCohort:
		if it.Version > 1 {
			return it.Subject + nameSep + strconv.Itoa(it.Version)
		}
		return it.Subject
	case SchemeRoster:
		return it.Member
	default:
		return it.Title
	}
}

// SameLineage reports whether two items belong to the same identity group.
func SameLineage(a, b Item) bool {
	return a.Scheme == b.Scheme && BaseIdentifier(a) == BaseIdentifier(b)
}
