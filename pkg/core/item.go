package core

import (
	"fmt"
	"time"
)

// Scheme selects which organizing fields of an Item are meaningful.
// It is fixed at creation and changed only by an explicit conversion.
type Scheme string

const (
	SchemeFreeform Scheme = "freeform"
	SchemeCohort   Scheme = "cohort"
	SchemeRoster   Scheme = "roster"
)

// Valid reports whether s is one of the three known schemes.
func (s Scheme) Valid() bool {
	switch s {
	case SchemeFreeform, SchemeCohort, SchemeRoster:
		return true
	}
	return false
}

// Item is the central entity of the domain: a single note record with
// scheme-dependent fields, opaque content, and a version number unique
// within its identity group.
type Item struct {
	ID     string `json:"id"`
	Scheme Scheme `json:"scheme"`

	// Freeform fields.
	Title       string `json:"title,omitempty"`
	ContainerID string `json:"containerId,omitempty"`

	// Cohort and roster fields.
	CohortKey string `json:"cohortKey,omitempty"`
	Subject   string `json:"subject,omitempty"`

	// Roster-only fields.
	Period string `json:"period,omitempty"`
	Member string `json:"member,omitempty"`

	Content string `json:"content"`
	Version int    `json:"version"`

	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
	ViewedAt   time.Time `json:"viewedAt"`

	// Derived names, recomputed on every structural change.
	InternalName string `json:"internalName"`
	DisplayName  string `json:"displayName"`
}

// Refresh recomputes the cached derived names from the current fields.
func (it *Item) Refresh() {
	it.InternalName = InternalName(*it)
	it.DisplayName = DisplayName(*it)
}

// ValidateFields checks the scheme-dependent field constraints.
func ValidateFields(it Item) error {
	switch it.Scheme {
	case SchemeFreeform:
		if it.Title == "" {
			return fmt.Errorf("%w: freeform item needs a title", ErrInvalidScheme)
		}
	case SchemeCohort:
		if !ValidRank(it.CohortKey) {
			return fmt.Errorf("%w: %q is not a valid cohort rank", ErrInvalidScheme, it.CohortKey)
		}
		if it.Subject == "" {
			return fmt.Errorf("%w: cohort item needs a subject", ErrInvalidScheme)
		}
	case SchemeRoster:
		if !ValidPeriod(it.Period) {
			return fmt.Errorf("%w: %q is not a valid period", ErrInvalidScheme, it.Period)
		}
		if !ValidRank(it.CohortKey) {
			return fmt.Errorf("%w: %q is not a valid cohort rank", ErrInvalidScheme, it.CohortKey)
		}
		if it.Subject == "" || it.Member == "" {
			return fmt.Errorf("%w: roster item needs a subject and a member", ErrInvalidScheme)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScheme, it.Scheme)
	}
	return nil
}

// ValidRank reports whether s is a positive decimal integer, the form a
// cohort rank (e.g. a grade level) must take.
func ValidRank(s string) bool {
	if s == "" {
		return false
	}
	nonzero := false
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
		if r != '0' {
			nonzero = true
		}
	}
	return nonzero
}

// ValidPeriod reports whether s is a four-digit year-like rank.
func ValidPeriod(s string) bool {
	return len(s) == 4 && ValidRank(s)
}
