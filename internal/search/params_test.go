package search

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	p := Defaults()
	assert.Equal(t, 1, p.PageNo)
	assert.Equal(t, 10, p.PageSize)
	assert.True(t, p.Ascending)
	assert.Equal(t, "id", p.OrderByColumn)
	assert.Empty(t, p.Criteria)
	assert.Equal(t, "", p.GlobalFilter)
	assert.NoError(t, p.Validate())
}

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		ok     bool
	}{
		{"defaults", func(p *Params) {}, true},
		{"page zero", func(p *Params) { p.PageNo = 0 }, false},
		{"negative page", func(p *Params) { p.PageNo = -3 }, false},
		{"size zero", func(p *Params) { p.PageSize = 0 }, false},
		{"size over max", func(p *Params) { p.PageSize = 21 }, false},
		{"size at max", func(p *Params) { p.PageSize = 20 }, true},
		{"size at min", func(p *Params) { p.PageSize = 1 }, true},
		{"empty sort column", func(p *Params) { p.OrderByColumn = "" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Defaults()
			tt.mutate(&p)
			if tt.ok {
				assert.NoError(t, p.Validate())
			} else {
				assert.Error(t, p.Validate())
			}
		})
	}
}

func TestEncode(t *testing.T) {
	p := Params{
		PageNo:        2,
		PageSize:      10,
		Ascending:     false,
		OrderByColumn: "priority",
		Criteria:      map[string]string{"status_id": "3"},
		GlobalFilter:  "",
	}
	assert.Equal(t,
		"pageNo=2&pageSize=10&ascending=false&orderByColumn=priority&criteria%5Bstatus_id%5D=3&globalFilter=",
		p.Encode())
}

func TestEncodeSortsCriteriaKeys(t *testing.T) {
	p := Defaults()
	p.Criteria = map[string]string{"title": "x", "category_id": "1", "status_id": "2"}
	assert.Equal(t,
		"pageNo=1&pageSize=10&ascending=true&orderByColumn=id"+
			"&criteria%5Bcategory_id%5D=1&criteria%5Bstatus_id%5D=2&criteria%5Btitle%5D=x"+
			"&globalFilter=",
		p.Encode())
}

func TestEncodeEscapesValues(t *testing.T) {
	p := Defaults()
	p.GlobalFilter = "a b&c"
	assert.Contains(t, p.Encode(), "globalFilter=a+b%26c")
}

func TestParseRoundTrip(t *testing.T) {
	orig := Params{
		PageNo:        3,
		PageSize:      5,
		Ascending:     false,
		OrderByColumn: "title",
		Criteria:      map[string]string{"status_id": "3", "category_id": "7"},
		GlobalFilter:  "urgent",
	}
	values, err := url.ParseQuery(orig.Encode())
	require.NoError(t, err)
	parsed, err := Parse(values)
	require.NoError(t, err)
	assert.True(t, orig.Equal(parsed))
}

func TestParseMergesOverDefaults(t *testing.T) {
	p, err := Parse(url.Values{"pageNo": {"4"}})
	require.NoError(t, err)
	assert.Equal(t, 4, p.PageNo)
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, "id", p.OrderByColumn)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse(url.Values{"pageNo": {"abc"}})
	assert.Error(t, err)

	_, err = Parse(url.Values{"pageSize": {"21"}})
	assert.Error(t, err)

	_, err = Parse(url.Values{"ascending": {"maybe"}})
	assert.Error(t, err)
}

func TestParseLenientSalvagesValidFields(t *testing.T) {
	p := ParseLenient(url.Values{
		"pageNo":             {"abc"},
		"pageSize":           {"15"},
		"ascending":          {"false"},
		"criteria[category]": {"9"},
	})
	assert.Equal(t, 1, p.PageNo)
	assert.Equal(t, 15, p.PageSize)
	assert.False(t, p.Ascending)
	assert.Equal(t, "9", p.Criteria["category"])
	assert.NoError(t, p.Validate())
}

func TestParseLenientIgnoresOutOfRange(t *testing.T) {
	p := ParseLenient(url.Values{"pageSize": {"100"}, "pageNo": {"0"}})
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 1, p.PageNo)
}

func TestCloneDoesNotShareCriteria(t *testing.T) {
	p := Defaults()
	p.Criteria["a"] = "1"
	c := p.Clone()
	c.Criteria["a"] = "2"
	assert.Equal(t, "1", p.Criteria["a"])
}
