package view

import (
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/taskdeck/taskdeck/internal/client"
	"github.com/taskdeck/taskdeck/internal/search"
)

// TableOptions control table rendering. The URL builders are supplied
// by the page layer: the table itself never knows how the canonical
// search parameters are externalized.
type TableOptions struct {
	// Edit enables the selection column and the create/update/delete
	// affordances.
	Edit bool
	// Traverse adds the trailing open-detail column.
	Traverse bool
	// Picker renders the single-selection picking mode: the selection
	// column reports the chosen row through ChooseHRef.
	Picker bool
	// SelectedID is the currently selected row, 0 for none. At most
	// one row is selected.
	SelectedID int64

	// HRef externalizes a canonical parameter value as a page URL.
	// Sort headers, pagination, and the filter form go through it.
	HRef func(search.Params) string
	// SelectHRef toggles row selection in edit mode.
	SelectHRef func(id int64) string
	// ChooseHRef reports the picked row in picker mode.
	ChooseHRef func(id int64) string
	// NewHRef, EditHRef, DeleteHRef open the mutation pages.
	NewHRef    string
	EditHRef   func(id int64) string
	DeleteHRef func(id int64) string
	// FilterAction is the GET target of the free-text filter box.
	FilterAction string
	// FilterHidden are extra hidden fields the filter form must carry
	// (the picker's own context, for instance).
	FilterHidden url.Values
}

// Table renders a paginated, sortable, filterable grid for the current
// canonical search parameters. Pagination, sorting, and filtering are
// manual: the grid renders exactly the page the service returned and
// exposes the controls as links through the reducer.
func Table(ctx context.Context, rc Context, svc *client.Service, st *search.State, opts TableOptions) template.HTML {
	em := svc.Meta()
	params := st.Params()
	res := svc.Search(ctx, params)

	var b builder
	b.raw(`<div class="entity-table">`)
	renderToolbar(st, opts, &b)

	if len(res.Items) == 0 {
		b.raw(`<div class="empty">No `)
		b.text(em.Plural)
		b.raw(` found</div>`)
	} else {
		b.raw(`<table><thead><tr>`)
		if opts.Edit || opts.Picker {
			b.raw(`<th></th>`)
		}
		for _, name := range em.FieldOrder {
			renderHeader(st, name, em.Fields[name].Label, opts, &b)
		}
		if opts.Traverse {
			b.raw(`<th>Info</th>`)
		}
		b.raw(`</tr></thead><tbody>`)
		for _, rec := range res.Items {
			id := rec.ID()
			rowClass := ""
			if id == opts.SelectedID && id != 0 {
				rowClass = ` class="selected"`
			}
			b.raw(`<tr` + rowClass + `>`)
			if opts.Edit || opts.Picker {
				renderSelectCell(id, opts, &b)
			}
			for _, name := range em.FieldOrder {
				b.raw(`<td>`)
				b.raw(string(FieldDisplay(ctx, rc, em, name, rec[name])))
				b.raw(`</td>`)
			}
			if opts.Traverse {
				b.raw(fmt.Sprintf(`<td><a class="icon icon-open" href="%s/%d"></a></td>`,
					attr(em.IndexPagePrefix), id))
			}
			b.raw(`</tr>`)
		}
		b.raw(`</tbody></table>`)
	}

	renderPagination(st, res, opts, &b)
	b.raw(`</div>`)
	return b.html()
}

func renderToolbar(st *search.State, opts TableOptions, b *builder) {
	b.raw(`<div class="table-toolbar">`)
	if opts.FilterAction != "" {
		// Submitting the filter resets to the first page; pageNo is
		// deliberately not carried as a hidden field.
		b.raw(`<form method="get" action="` + attr(opts.FilterAction) + `" class="filter">`)
		b.raw(fmt.Sprintf(`<input type="hidden" name="pageSize" value="%d">`, st.PageSize))
		b.raw(`<input type="hidden" name="orderByColumn" value="` + attr(st.SortColumn) + `">`)
		b.raw(fmt.Sprintf(`<input type="hidden" name="ascending" value="%t">`, !st.SortDesc))
		for name, vals := range opts.FilterHidden {
			for _, v := range vals {
				b.raw(`<input type="hidden" name="` + attr(name) + `" value="` + attr(v) + `">`)
			}
		}
		b.raw(`<input type="text" name="globalFilter" placeholder="Search..." value="` + attr(st.GlobalFilter) + `">`)
		b.raw(`</form>`)
	}
	if opts.Edit {
		if opts.NewHRef != "" {
			b.raw(`<a class="icon icon-plus" href="` + attr(opts.NewHRef) + `"></a>`)
		}
		if opts.SelectedID != 0 {
			if opts.EditHRef != nil {
				b.raw(`<a class="icon icon-edit" href="` + attr(opts.EditHRef(opts.SelectedID)) + `"></a>`)
			}
			if opts.DeleteHRef != nil {
				b.raw(`<a class="icon icon-trash danger" href="` + attr(opts.DeleteHRef(opts.SelectedID)) + `"></a>`)
			}
		}
	}
	b.raw(`</div>`)
}

func renderHeader(st *search.State, column, label string, opts TableOptions, b *builder) {
	b.raw(`<th>`)
	marker := ""
	if st.SortColumn == column {
		if st.SortDesc {
			marker = ` &#9650;`
		} else {
			marker = ` &#9660;`
		}
	}
	if opts.HRef != nil {
		href := opts.HRef(st.After(search.ToggleSort{Column: column}))
		b.raw(`<a href="` + attr(href) + `">`)
		b.text(label)
		b.raw(marker + `</a>`)
	} else {
		b.text(label)
		b.raw(marker)
	}
	b.raw(`</th>`)
}

func renderSelectCell(id int64, opts TableOptions, b *builder) {
	b.raw(`<td>`)
	href := ""
	switch {
	case opts.Picker && opts.ChooseHRef != nil:
		href = opts.ChooseHRef(id)
	case opts.SelectHRef != nil:
		href = opts.SelectHRef(id)
	}
	checked := ""
	if id == opts.SelectedID && id != 0 {
		checked = ` checked`
	}
	if href != "" {
		b.raw(`<a href="` + attr(href) + `">`)
	}
	b.raw(`<input type="checkbox"` + checked + ` disabled>`)
	if href != "" {
		b.raw(`</a>`)
	}
	b.raw(`</td>`)
}

func renderPagination(st *search.State, res client.SearchResult, opts TableOptions, b *builder) {
	b.raw(`<div class="pagination">`)
	if st.PageIndex > 0 && opts.HRef != nil {
		href := opts.HRef(st.After(search.SetPage{Index: st.PageIndex - 1}))
		b.raw(`<a class="icon icon-prev" href="` + attr(href) + `"></a>`)
	} else {
		b.raw(`<span class="icon icon-prev disabled"></span>`)
	}
	if res.PageCount > 0 {
		b.textf("Page %d of %d", st.PageIndex+1, res.PageCount)
	} else {
		b.text("Page")
	}
	if st.PageIndex+1 < res.PageCount && opts.HRef != nil {
		href := opts.HRef(st.After(search.SetPage{Index: st.PageIndex + 1}))
		b.raw(`<a class="icon icon-next" href="` + attr(href) + `"></a>`)
	} else {
		b.raw(`<span class="icon icon-next disabled"></span>`)
	}
	b.raw(`</div>`)
}
