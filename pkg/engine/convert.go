package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/satchelhq/satchel/pkg/core"
)

// FieldValues supplies explicit target-scheme fields for one item in a
// conversion, overriding the name-parsing heuristic.
type FieldValues struct {
	Title     string
	CohortKey string
	Subject   string
	Period    string
	Member    string
}

// ConversionError reports which items could not be mapped onto the
// target scheme. It matches core.ErrConversionIncomplete.
type ConversionError struct {
	Target core.Scheme
	IDs    []string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%d item(s) could not be converted to %s", len(e.IDs), e.Target)
}

func (e *ConversionError) Is(target error) bool {
	return target == core.ErrConversionIncomplete
}

// Convert switches every item to the target scheme, deriving the new
// fields from each item's current internal name.
func (e *Engine) Convert(ctx context.Context, target core.Scheme) error {
	return e.ConvertWith(ctx, target, nil)
}

// ConvertWith is Convert with explicit per-item field values for items
// whose names the heuristic cannot parse. The conversion is all or
// none: if any item fails to map, no item changes and the failing ids
// are reported.
func (e *Engine) ConvertWith(ctx context.Context, target core.Scheme, supplied map[string]FieldValues) error {
	if !target.Valid() {
		return fmt.Errorf("target scheme %q: %w", target, core.ErrInvalidScheme)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	converted := make(map[string]core.Item, len(e.items))
	var failed []string
	for id, it := range e.items {
		next, err := convertItem(it, target, supplied)
		if err != nil {
			failed = append(failed, id)
			continue
		}
		converted[id] = next
	}
	if len(failed) > 0 {
		sort.Strings(failed)
		return &ConversionError{Target: target, IDs: failed}
	}

	// Regroup under the new identities: versions within each new group
	// become a contiguous run ordered by the previous version numbers.
	groups := make(map[string][]string)
	for id, it := range converted {
		key := string(it.Scheme) + "\x00" + core.BaseIdentifier(it)
		groups[key] = append(groups[key], id)
	}
	now := e.now()
	for _, ids := range groups {
		sort.Slice(ids, func(i, j int) bool {
			a, b := converted[ids[i]], converted[ids[j]]
			if a.Version != b.Version {
				return a.Version < b.Version
			}
			return a.ID < b.ID
		})
		for rank, id := range ids {
			it := converted[id]
			core.ApplyVersion(&it, rank+1)
			it.ModifiedAt = now
			converted[id] = it
		}
	}

	for id, it := range converted {
		e.items[id] = it
	}
	e.schemePref = target
	e.persistLocked(ctx)
	for _, it := range sortItems(mapValues(converted)) {
		e.enqueueLocked(intent{kind: intentSaveItem, item: it})
	}
	if data, err := encodeSettings(target); err == nil {
		e.enqueueLocked(intent{kind: intentSaveSettings, settings: data})
	}
	e.logger.Info("converted collection", "scheme", target, "items", len(converted))
	return nil
}

// SaveSchemePreference records the preferred organizing scheme and
// writes it to the reserved settings blob.
func (e *Engine) SaveSchemePreference(ctx context.Context, scheme core.Scheme) error {
	if !scheme.Valid() {
		return fmt.Errorf("scheme %q: %w", scheme, core.ErrInvalidScheme)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.schemePref = scheme
	data, err := encodeSettings(scheme)
	if err != nil {
		return err
	}
	e.enqueueLocked(intent{kind: intentSaveSettings, settings: data})
	return nil
}

// convertItem maps one item onto the target scheme, using supplied
// fields when present and the name-parsing heuristic otherwise.
func convertItem(it core.Item, target core.Scheme, supplied map[string]FieldValues) (core.Item, error) {
	next := it
	next.Scheme = target
	next.Title, next.CohortKey, next.Subject, next.Period, next.Member = "", "", "", "", ""
	if target != core.SchemeFreeform {
		next.ContainerID = ""
	}

	if fv, ok := supplied[it.ID]; ok {
		next.Title = fv.Title
		next.CohortKey = fv.CohortKey
		next.Subject = fv.Subject
		next.Period = fv.Period
		next.Member = fv.Member
	} else if err := parseFields(&next, it, target); err != nil {
		return core.Item{}, err
	}

	if err := core.ValidateFields(next); err != nil {
		return core.Item{}, err
	}
	next.Refresh()
	return next, nil
}

// parseFields derives target-scheme fields from an item's internal
// name. A trailing segment equal to the item's version number is
// treated as the version suffix and stripped before matching the
// target shape.
func parseFields(next *core.Item, it core.Item, target core.Scheme) error {
	name := core.InternalName(it)
	segs := strings.Split(name, "-")
	if len(segs) > 1 && segs[len(segs)-1] == strconv.Itoa(it.Version) {
		segs = segs[:len(segs)-1]
	}

	switch target {
	case core.SchemeFreeform:
		next.Title = strings.Join(segs, "-")
		return nil
	case core.SchemeCohort:
		if len(segs) != 2 || !core.ValidRank(segs[0]) || segs[1] == "" {
			return fmt.Errorf("name %q does not fit a cohort identity", name)
		}
		next.CohortKey, next.Subject = segs[0], segs[1]
		return nil
	case core.SchemeRoster:
		if len(segs) != 4 || !core.ValidPeriod(segs[0]) || !core.ValidRank(segs[1]) || segs[2] == "" || segs[3] == "" {
			return fmt.Errorf("name %q does not fit a roster identity", name)
		}
		next.Period, next.CohortKey, next.Subject, next.Member = segs[0], segs[1], segs[2], segs[3]
		return nil
	default:
		return errors.New("unknown target scheme")
	}
}

func mapValues(m map[string]core.Item) []core.Item {
	out := make([]core.Item, 0, len(m))
	for _, it := range m {
		out = append(out, it)
	}
	return out
}
