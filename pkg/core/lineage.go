package core

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NextAvailableVersion returns the smallest positive version number not
// used within it's identity group across all. Gaps left by deletions are
// filled before the run is extended, so {1,3} yields 2, not 4.
func NextAvailableVersion(it Item, all []Item) int {
	used := make(map[int]bool)
	for _, other := range all {
		if SameLineage(it, other) {
			used[other.Version] = true
		}
	}
	for v := 1; ; v++ {
		if !used[v] {
			return v
		}
	}
}

// ApplyVersion sets the item's version and cascades the change through
// its derived names. Freeform titles re-embed the "-N" suffix for N>1.
func ApplyVersion(it *Item, version int) {
	it.Version = version
	if it.Scheme == SchemeFreeform {
		base := versionSuffix.ReplaceAllString(it.Title, "")
		if version > 1 {
			it.Title = base + nameSep + strconv.Itoa(version)
		} else {
			it.Title = base
		}
	}
	it.Refresh()
}

// RenumberAfterRemoval reassigns contiguous versions 1..K, in ascending
// version order, to the items sharing removed's identity group. It
// returns the full remaining set with corrections applied plus the
// subset whose version actually changed (names recomputed, content
// untouched). The operation is all-or-nothing: if the group carries
// duplicate version numbers the input is returned unmodified alongside
// ErrVersionConflict.
func RenumberAfterRemoval(removed Item, remaining []Item) ([]Item, []Item, error) {
	var group []int
	seen := make(map[int]bool)
	for i, it := range remaining {
		if it.ID == removed.ID || !SameLineage(removed, it) {
			continue
		}
		if seen[it.Version] {
			return remaining, nil, fmt.Errorf("group %q has duplicate version %d: %w",
				BaseIdentifier(removed), it.Version, ErrVersionConflict)
		}
		seen[it.Version] = true
		group = append(group, i)
	}
	sort.Slice(group, func(a, b int) bool {
		return remaining[group[a]].Version < remaining[group[b]].Version
	})

	out := make([]Item, len(remaining))
	copy(out, remaining)

	var changed []Item
	for rank, idx := range group {
		want := rank + 1
		if out[idx].Version == want {
			continue
		}
		ApplyVersion(&out[idx], want)
		changed = append(changed, out[idx])
	}
	return out, changed, nil
}

// NewVersionOf clones source as the next revision of its identity group:
// fresh id, next free version, copied content, timestamps reset to now.
func NewVersionOf(source Item, all []Item, now time.Time) Item {
	next := source
	next.ID = uuid.NewString()
	next.CreatedAt = now
	next.ModifiedAt = now
	next.ViewedAt = now
	ApplyVersion(&next, NextAvailableVersion(source, all))
	return next
}
