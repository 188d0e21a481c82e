// Package search defines the canonical search-parameter value shared
// between list views, the URL, and the remote search endpoint, plus
// the reducer that keeps per-view UI state consistent with it.
package search

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Bounds enforced by Validate.
const (
	MinPageSize = 1
	MaxPageSize = 20
)

// Params is the canonical, schema-valid representation of page, sort,
// and filter state for one list view. It serializes both to the page
// URL (Encode/Parse) and to the search endpoint's request body.
type Params struct {
	PageNo        int               `json:"pageNo"`
	PageSize      int               `json:"pageSize"`
	Ascending     bool              `json:"ascending"`
	OrderByColumn string            `json:"orderByColumn"`
	Criteria      map[string]string `json:"criteria"`
	GlobalFilter  string            `json:"globalFilter"`
}

// Defaults returns the parameter set every view starts from.
func Defaults() Params {
	return Params{
		PageNo:        1,
		PageSize:      10,
		Ascending:     true,
		OrderByColumn: "id",
		Criteria:      map[string]string{},
		GlobalFilter:  "",
	}
}

// Validate reports the first schema violation, or nil.
func (p Params) Validate() error {
	if p.PageNo < 1 {
		return fmt.Errorf("pageNo %d: must be >= 1", p.PageNo)
	}
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return fmt.Errorf("pageSize %d: must be in [%d,%d]", p.PageSize, MinPageSize, MaxPageSize)
	}
	if p.OrderByColumn == "" {
		return fmt.Errorf("orderByColumn: must not be empty")
	}
	return nil
}

// Clone returns a deep copy (the criteria map is not shared).
func (p Params) Clone() Params {
	c := p
	c.Criteria = make(map[string]string, len(p.Criteria))
	for k, v := range p.Criteria {
		c.Criteria[k] = v
	}
	return c
}

// Equal reports whether two parameter sets are identical.
func (p Params) Equal(o Params) bool {
	if p.PageNo != o.PageNo || p.PageSize != o.PageSize ||
		p.Ascending != o.Ascending || p.OrderByColumn != o.OrderByColumn ||
		p.GlobalFilter != o.GlobalFilter || len(p.Criteria) != len(o.Criteria) {
		return false
	}
	for k, v := range p.Criteria {
		if o.Criteria[k] != v {
			return false
		}
	}
	return true
}

// Encode serializes to a query string with fields in declared order
// and one criteria[key]=value pair per structured filter. GlobalFilter
// is always present, even when empty.
func (p Params) Encode() string {
	var b strings.Builder
	pair := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	pair("pageNo", strconv.Itoa(p.PageNo))
	pair("pageSize", strconv.Itoa(p.PageSize))
	pair("ascending", strconv.FormatBool(p.Ascending))
	pair("orderByColumn", p.OrderByColumn)
	keys := make([]string, 0, len(p.Criteria))
	for k := range p.Criteria {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pair("criteria["+k+"]", p.Criteria[k])
	}
	pair("globalFilter", p.GlobalFilter)
	return b.String()
}

// Parse strictly decodes a query-string value set. It fails when any
// present field does not parse or the result violates the schema.
func Parse(values url.Values) (Params, error) {
	p := Defaults()
	if v := values.Get("pageNo"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("pageNo %q: %w", v, err)
		}
		p.PageNo = n
	}
	if v := values.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("pageSize %q: %w", v, err)
		}
		p.PageSize = n
	}
	if v := values.Get("ascending"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("ascending %q: %w", v, err)
		}
		p.Ascending = b
	}
	if v := values.Get("orderByColumn"); v != "" {
		p.OrderByColumn = v
	}
	if v, ok := values["globalFilter"]; ok && len(v) > 0 {
		p.GlobalFilter = v[0]
	}
	for key, vals := range values {
		if !strings.HasPrefix(key, "criteria[") || !strings.HasSuffix(key, "]") {
			continue
		}
		crit := key[len("criteria[") : len(key)-1]
		if crit == "" || len(vals) == 0 {
			continue
		}
		p.Criteria[crit] = vals[0]
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// ParseLenient decodes a query-string value set, merging whatever
// fields parse and validate individually over the defaults. It never
// fails; garbage in a single field costs only that field.
func ParseLenient(values url.Values) Params {
	p := Defaults()
	if n, err := strconv.Atoi(values.Get("pageNo")); err == nil && n >= 1 {
		p.PageNo = n
	}
	if n, err := strconv.Atoi(values.Get("pageSize")); err == nil &&
		n >= MinPageSize && n <= MaxPageSize {
		p.PageSize = n
	}
	if b, err := strconv.ParseBool(values.Get("ascending")); err == nil {
		p.Ascending = b
	}
	if v := values.Get("orderByColumn"); v != "" {
		p.OrderByColumn = v
	}
	if v, ok := values["globalFilter"]; ok && len(v) > 0 {
		p.GlobalFilter = v[0]
	}
	for key, vals := range values {
		if !strings.HasPrefix(key, "criteria[") || !strings.HasSuffix(key, "]") {
			continue
		}
		crit := key[len("criteria[") : len(key)-1]
		if crit == "" || len(vals) == 0 {
			continue
		}
		p.Criteria[crit] = vals[0]
	}
	return p
}

// Response is the shape the search endpoint answers with.
type Response struct {
	Items     []map[string]any `json:"items"`
	PageCount int              `json:"pageCount"`
}
