package search

import (
	"log"
	"net/url"
)

// RelationFilter restricts a list view to records whose foreign key
// points at a particular entity ("show only tasks of category 7").
// It is supplied by the embedding context and always wins over the
// free-text criteria on a key collision.
type RelationFilter struct {
	Key   string
	Value string
}

// Event is a UI interaction a list view feeds into the reducer.
type Event interface{ isEvent() }

// SetPage moves to a 0-based page index.
type SetPage struct{ Index int }

// SetPageSize changes the page size.
type SetPageSize struct{ Size int }

// ToggleSort sorts by a column, flipping direction when the column is
// already the active sort. At most one sort column is active.
type ToggleSort struct{ Column string }

// SetFilter replaces the free-text filter and resets to the first page.
type SetFilter struct{ Value string }

func (SetPage) isEvent()     {}
func (SetPageSize) isEvent() {}
func (ToggleSort) isEvent()  {}
func (SetFilter) isEvent()   {}

// State is the per-view search state machine. It owns pagination,
// sort, and filter state decoupled from the external URL; Params
// recomputes the canonical parameter value after every event, and the
// caller decides when to externalize it (rewrite the URL). That
// explicit boundary is what keeps typing in the filter box from
// feeding back through the location.
type State struct {
	PageIndex    int // 0-based; Params exposes 1-based PageNo
	PageSize     int
	SortColumn   string
	SortDesc     bool
	GlobalFilter string

	relation *RelationFilter
	initial  Params
	base     map[string]string
}

// NewState parses the externally supplied parameter set once. A set
// that fails strict validation is merged field-by-field over the
// defaults instead of being rejected. Criteria carried in the URL
// persist across events, except the one derived from the free-text
// filter, which Params regenerates under the current sort column.
func NewState(external url.Values, relation *RelationFilter) *State {
	initial, err := Parse(external)
	if err != nil {
		initial = ParseLenient(external)
	}
	base := make(map[string]string, len(initial.Criteria))
	for k, v := range initial.Criteria {
		base[k] = v
	}
	if initial.GlobalFilter != "" {
		delete(base, initial.OrderByColumn)
	}
	return &State{
		PageIndex:    initial.PageNo - 1,
		PageSize:     initial.PageSize,
		SortColumn:   initial.OrderByColumn,
		SortDesc:     !initial.Ascending,
		GlobalFilter: initial.GlobalFilter,
		relation:     relation,
		initial:      initial,
		base:         base,
	}
}

// Reduce applies one UI event.
func (s *State) Reduce(ev Event) {
	switch e := ev.(type) {
	case SetPage:
		if e.Index >= 0 {
			s.PageIndex = e.Index
		}
	case SetPageSize:
		if e.Size >= MinPageSize && e.Size <= MaxPageSize {
			s.PageSize = e.Size
		}
	case ToggleSort:
		if s.SortColumn == e.Column {
			s.SortDesc = !s.SortDesc
		} else {
			s.SortColumn = e.Column
			s.SortDesc = false
		}
	case SetFilter:
		s.GlobalFilter = e.Value
		s.PageIndex = 0
	}
}

// Params recomputes the canonical search parameters from the current
// state. The free-text filter is matched against whichever column is
// currently sorted; the relation filter is merged last so it wins on
// a key collision. An invalid recomputation falls back to the initial
// parse and is logged, never surfaced.
func (s *State) Params() Params {
	p := Params{
		PageNo:        s.PageIndex + 1,
		PageSize:      s.PageSize,
		Ascending:     !s.SortDesc,
		OrderByColumn: s.SortColumn,
		Criteria:      map[string]string{},
		GlobalFilter:  s.GlobalFilter,
	}
	if p.OrderByColumn == "" {
		p.OrderByColumn = s.initial.OrderByColumn
	}
	for k, v := range s.base {
		p.Criteria[k] = v
	}
	if s.GlobalFilter != "" {
		p.Criteria[p.OrderByColumn] = s.GlobalFilter
	}
	if s.relation != nil {
		p.Criteria[s.relation.Key] = s.relation.Value
	}
	if err := p.Validate(); err != nil {
		log.Printf("search: invalid recomputed params (%v), keeping previous", err)
		return s.initial.Clone()
	}
	return p
}

// After returns the canonical parameters that would result from one
// event, without mutating the state. List views use it to build the
// URLs behind pagination and sort affordances.
func (s *State) After(ev Event) Params {
	c := *s
	c.Reduce(ev)
	return c.Params()
}
