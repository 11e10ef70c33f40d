package optimistic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/amonks/todomvc/internal/validation"
)

// Filter selects which todos a page lists.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterActive   Filter = "active"
	FilterComplete Filter = "complete"
)

// Filters lists every filter in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterComplete}

// ErrInvalidFilter indicates an unknown filter name.
var ErrInvalidFilter = errors.New("invalid filter")

// ParseFilter resolves a filter name. The empty name means FilterAll.
func ParseFilter(name string) (Filter, error) {
	if name == "" {
		return FilterAll, nil
	}
	return validation.OneOf(ErrInvalidFilter, name, Filters)
}

// Keep reports whether v passes the filter.
func (f Filter) Keep(v *View) bool {
	switch f {
	case FilterActive:
		return !v.Complete
	case FilterComplete:
		return v.Complete
	default:
		return true
	}
}

// Counts summarizes a composed list.
type Counts struct {
	Total    int
	Active   int
	Complete int
	// Visible counts todos that pass the filter and aren't being deleted.
	Visible int
}

// ItemsLeft renders the active count for the footer.
func (c Counts) ItemsLeft() string {
	if c.Active == 1 {
		return "1 item left"
	}
	return fmt.Sprintf("%d items left", c.Active)
}

// ToggleAllTo is the complete value the toggle-all control submits.
func (c Counts) ToggleAllTo() string {
	if c.Active == 0 && c.Complete > 0 {
		return "false"
	}
	return "true"
}

// ToggleAllTitle labels the toggle-all control.
func (c Counts) ToggleAllTitle() string {
	switch {
	case c.Active > 0:
		return "Mark all as complete"
	case c.Complete > 0:
		return "Mark all as active"
	default:
		return ""
	}
}

// Materializer filters, counts and orders a composed list, keeping one
// *View per todo ID across calls.
type Materializer struct {
	items []*View
	byID  map[string]*View
}

// NewMaterializer returns an empty materializer.
func NewMaterializer() *Materializer {
	return &Materializer{byID: make(map[string]*View)}
}

// Make counts views, filters and sorts them, and reconciles the result
// with the previous call: an ID seen before keeps its *View, refreshed
// with the new fields. Filtered todos being deleted are kept in the
// result but not counted as visible.
func (m *Materializer) Make(filter Filter, views []*View) (Counts, []*View, Changes) {
	var counts Counts
	filtered := make([]*View, 0, len(views))
	for _, view := range views {
		if filter.Keep(view) {
			filtered = append(filtered, view)
			if view.ToBe != ToBeDeleted {
				counts.Visible++
			}
		}
		counts.Total++
		if view.Complete {
			counts.Complete++
		}
	}
	counts.Active = counts.Total - counts.Complete

	sort.SliceStable(filtered, func(i, j int) bool {
		return lessCreatedDesc(filtered[i], filtered[j])
	})

	items := make([]*View, len(filtered))
	byID := make(map[string]*View, len(filtered))
	for i, view := range filtered {
		item, ok := m.byID[view.ID]
		if ok {
			*item = *view
		} else {
			item = view.Clone()
		}
		items[i] = item
		byID[view.ID] = item
	}

	changes := compareItems(m.items, items)
	m.items = items
	m.byID = byID
	return counts, items, changes
}

// lessCreatedDesc orders created-views first, then newest first.
func lessCreatedDesc(a, b *View) bool {
	aNew := a.ToBe == ToBeCreated
	bNew := b.ToBe == ToBeCreated
	if aNew != bNew {
		return aNew
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// Changes describes how the rendered list moved between two renders.
type Changes struct {
	PrevSize int
	NextSize int
	// Moved maps former positions to new positions.
	Moved map[int]int
	// Removed lists former positions no longer rendered.
	Removed []int
	// Added lists positions of items that weren't rendered before.
	Added []int
}

// Empty reports whether nothing moved.
func (c Changes) Empty() bool {
	return c.PrevSize == c.NextSize && len(c.Moved) == 0 && len(c.Removed) == 0 && len(c.Added) == 0
}

func (c Changes) String() string {
	var findings []string
	if c.PrevSize != c.NextSize {
		findings = append(findings, fmt.Sprintf("size: %d -> %d", c.PrevSize, c.NextSize))
	}

	formers := make([]int, 0, len(c.Moved))
	for former := range c.Moved {
		formers = append(formers, former)
	}
	sort.Ints(formers)
	for _, former := range formers {
		findings = append(findings, fmt.Sprintf("former %d moved to %d", former, c.Moved[former]))
	}
	for _, former := range c.Removed {
		findings = append(findings, fmt.Sprintf("former %d removed", former))
	}
	if len(c.Added) > 0 {
		positions := make([]string, len(c.Added))
		for i, position := range c.Added {
			positions[i] = fmt.Sprint(position)
		}
		findings = append(findings, "new items at: "+strings.Join(positions, ", "))
	}
	return strings.Join(findings, "\n")
}

// compareItems matches items by identity, as a DOM diff would.
func compareItems(prev, next []*View) Changes {
	changes := Changes{PrevSize: len(prev), NextSize: len(next)}

	position := make(map[*View]int, len(next))
	for i, item := range next {
		position[item] = i
	}
	seen := make(map[*View]bool, len(prev))
	for former, item := range prev {
		seen[item] = true
		j, ok := position[item]
		switch {
		case !ok:
			changes.Removed = append(changes.Removed, former)
		case j != former:
			if changes.Moved == nil {
				changes.Moved = make(map[int]int)
			}
			changes.Moved[former] = j
		}
	}
	for i, item := range next {
		if !seen[item] {
			changes.Added = append(changes.Added, i)
		}
	}
	return changes
}
