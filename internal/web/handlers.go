package web

import (
	"fmt"
	"html"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/taskdeck/taskdeck/internal/form"
	"github.com/taskdeck/taskdeck/internal/meta"
	"github.com/taskdeck/taskdeck/internal/search"
	"github.com/taskdeck/taskdeck/internal/view"
)

// hrefWith externalizes canonical search parameters as a page URL,
// carrying any extra page-local query fields along.
func hrefWith(base string, p search.Params, extra url.Values) string {
	q := p.Encode()
	if len(extra) > 0 {
		q += "&" + extra.Encode()
	}
	return base + "?" + q
}

// listPage renders the entity's searchable table. The URL query string
// is the externalized search state; every control on the page is a
// link or form that produces the next canonical parameter value.
func (s *Server) listPage(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		st := search.NewState(r.URL.Query(), nil)
		selected, _ := strconv.ParseInt(r.URL.Query().Get("selected"), 10, 64)

		extra := url.Values{}
		if selected > 0 {
			extra.Set("selected", strconv.FormatInt(selected, 10))
		}
		opts := view.TableOptions{
			Edit:       true,
			Traverse:   true,
			SelectedID: selected,
			HRef: func(p search.Params) string {
				return hrefWith(em.IndexPagePrefix, p, extra)
			},
			SelectHRef: func(id int64) string {
				e := url.Values{}
				if id != selected {
					e.Set("selected", strconv.FormatInt(id, 10))
				}
				return hrefWith(em.IndexPagePrefix, st.Params(), e)
			},
			NewHRef:      em.IndexPagePrefix + "/new",
			EditHRef:     func(id int64) string { return fmt.Sprintf("%s/%d/edit", em.IndexPagePrefix, id) },
			DeleteHRef:   func(id int64) string { return fmt.Sprintf("%s/%d/delete", em.IndexPagePrefix, id) },
			FilterAction: em.IndexPagePrefix,
		}
		body := view.Table(r.Context(), s.viewContext(), svc, st, opts)
		s.renderPage(w, em.Plural, body)
	}
}

// detailPage renders the read-only form plus one related-records table
// per declared relation, each filtered to rows whose foreign key
// points back at this entity.
func (s *Server) detailPage(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		id, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		rec := svc.Get(r.Context(), id)
		if rec == nil {
			s.renderPage(w, em.Singular, template.HTML(`<div class="pending">Loading ...</div>`))
			return
		}
		rc := s.viewContext()

		var b strings.Builder
		fmt.Fprintf(&b, `<a href="%s">&larr; Back</a> <a href="%s/%d/edit">Edit ...</a>`,
			html.EscapeString(em.IndexPagePrefix), html.EscapeString(em.IndexPagePrefix), id)
		fmt.Fprintf(&b, `<h2>%s %d</h2>`, html.EscapeString(em.Singular), id)
		b.WriteString(string(view.Form(r.Context(), rc, form.New(em, rec), view.FormOptions{})))

		if len(em.Relations) == 0 {
			b.WriteString(`<h2>No references</h2>`)
		}
		for _, rel := range em.Relations {
			relMeta := s.metas.Entity(rel.Ref)
			relSvc := s.services.Service(rel.Ref)
			filter := &search.RelationFilter{Key: rel.FKField, Value: strconv.FormatInt(id, 10)}
			rst := search.NewState(url.Values{}, filter)
			full := hrefWith(relMeta.IndexPagePrefix, rst.Params(), nil)
			fmt.Fprintf(&b, `<h2><a href="%s">%s</a></h2>`, html.EscapeString(full), html.EscapeString(rel.Label))
			b.WriteString(string(view.Table(r.Context(), rc, relSvc, rst, view.TableOptions{Traverse: true})))
		}
		s.renderPage(w, fmt.Sprintf("%s %d", em.Singular, id), template.HTML(b.String()))
	}
}

func (s *Server) createPage(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		f := form.New(em, em.BlankRecord())
		applyQueryOverrides(f, r.URL.Query())
		s.renderForm(w, r, f, em.IndexPagePrefix+"/new", false)
	}
}

func (s *Server) editPage(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		id, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		rec := svc.Get(r.Context(), id)
		if rec == nil {
			s.renderPage(w, em.Singular, template.HTML(`<div class="pending">Loading ...</div>`))
			return
		}
		f := form.New(em, rec)
		applyQueryOverrides(f, r.URL.Query())
		s.renderForm(w, r, f, fmt.Sprintf("%s/%d/edit", em.IndexPagePrefix, id), true)
	}
}

// renderForm renders the editable form page for its current state.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, f *form.Form, action string, allowDelete bool) {
	em := f.Meta()
	title := "New " + em.Singular
	if f.Persisted() {
		title = fmt.Sprintf("Edit %s %d", em.Singular, f.ID())
	}
	body := view.Form(r.Context(), s.viewContext(), f, view.FormOptions{
		Edit:        true,
		Action:      action,
		AllowDelete: allowDelete,
		PickURL:     s.pickURLBuilder(action, f),
	})
	s.renderPage(w, title, body)
}

func (s *Server) createSubmit(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		f := form.New(em, em.BlankRecord())
		applyPost(f, r.PostForm)
		action := em.IndexPagePrefix + "/new"
		if s.handleFormAction(w, r, f, action, false) {
			return
		}
		if !f.Validate() {
			s.alertInvalid(f)
			s.renderForm(w, r, f, action, false)
			return
		}
		if svc.Create(r.Context(), f.Payload()) {
			http.Redirect(w, r, em.IndexPagePrefix, http.StatusSeeOther)
			return
		}
		// Mutation failed: the alert is queued, the form stays dirty.
		s.renderForm(w, r, f, action, false)
	}
}

func (s *Server) editSubmit(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		id, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		rec := svc.Get(r.Context(), id)
		if rec == nil {
			http.Redirect(w, r, em.IndexPagePrefix, http.StatusSeeOther)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		f := form.New(em, rec)
		applyPost(f, r.PostForm)
		action := fmt.Sprintf("%s/%d/edit", em.IndexPagePrefix, id)
		if r.PostForm.Get("__action") == "delete" {
			http.Redirect(w, r, fmt.Sprintf("%s/%d/delete", em.IndexPagePrefix, id), http.StatusSeeOther)
			return
		}
		if s.handleFormAction(w, r, f, action, true) {
			return
		}
		if !f.Validate() {
			s.alertInvalid(f)
			s.renderForm(w, r, f, action, true)
			return
		}
		if svc.Update(r.Context(), id, f.Payload()) {
			http.Redirect(w, r, fmt.Sprintf("%s/%d", em.IndexPagePrefix, id), http.StatusSeeOther)
			return
		}
		s.renderForm(w, r, f, action, true)
	}
}

// handleFormAction applies the per-field form actions (reset, clear,
// materialize) and re-renders. It reports true when it handled the
// request, leaving only "apply" for the caller.
func (s *Server) handleFormAction(w http.ResponseWriter, r *http.Request, f *form.Form, action string, allowDelete bool) bool {
	act := r.PostForm.Get("__action")
	field := ""
	if i := strings.IndexByte(act, ':'); i >= 0 {
		act, field = act[:i], act[i+1:]
	}
	switch act {
	case "reset":
		f.Reset()
	case "resetfield":
		f.ResetField(field)
	case "clear":
		f.Clear(field)
	case "materialize":
		f.Materialize(field)
	default:
		return false
	}
	s.renderForm(w, r, f, action, allowDelete)
	return true
}

func (s *Server) alertInvalid(f *form.Form) {
	fields := make([]string, 0, len(f.Errors()))
	for _, e := range f.Errors() {
		if e.Field != "" {
			fields = append(fields, e.Field)
		}
	}
	s.flash.Alertf("Invalid form: %s", strings.Join(fields, ", "))
}

// deleteConfirmPage is the explicit confirmation gate in front of
// Service.Delete. Declining is just navigating away.
func (s *Server) deleteConfirmPage(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		id, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		var b strings.Builder
		fmt.Fprintf(&b, `<p>Are you sure you want to delete [%s.id:%d]?</p>`,
			html.EscapeString(em.Singular), id)
		fmt.Fprintf(&b, `<form method="post" action="%s/%d/delete">`,
			html.EscapeString(em.IndexPagePrefix), id)
		b.WriteString(`<button type="submit" class="danger">Delete</button> `)
		fmt.Fprintf(&b, `<a href="%s">Cancel</a></form>`, html.EscapeString(em.IndexPagePrefix))
		s.renderPage(w, "Delete "+em.Singular, template.HTML(b.String()))
	}
}

func (s *Server) deleteSubmit(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		id, ok := parseID(w, r, "id")
		if !ok {
			return
		}
		deleted, _ := svc.Delete(r.Context(), id)
		if deleted {
			http.Redirect(w, r, em.IndexPagePrefix, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, fmt.Sprintf("%s/%d", em.IndexPagePrefix, id), http.StatusSeeOther)
	}
}

// pickPage renders the single-selection table a form's foreign-key
// field embeds to choose a reference. The chosen id travels back to
// the embedding form through the return URL.
func (s *Server) pickPage(k meta.Key) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		em := s.metas.Entity(k)
		svc := s.services.Service(k)
		q := r.URL.Query()
		field := q.Get("field")
		ret := q.Get("return")
		current, _ := strconv.ParseInt(q.Get("current"), 10, 64)
		if field == "" || ret == "" {
			http.Error(w, "missing picker context", http.StatusBadRequest)
			return
		}

		pickCtx := url.Values{}
		pickCtx.Set("field", field)
		pickCtx.Set("return", ret)
		if current > 0 {
			pickCtx.Set("current", strconv.FormatInt(current, 10))
		}

		st := search.NewState(q, nil)
		opts := view.TableOptions{
			Picker:     true,
			SelectedID: current,
			HRef: func(p search.Params) string {
				return hrefWith(em.IndexPagePrefix+"/pick", p, pickCtx)
			},
			ChooseHRef: func(id int64) string {
				pick := url.Values{}
				pick.Set("pick["+field+"]", strconv.FormatInt(id, 10))
				sep := "?"
				if strings.Contains(ret, "?") {
					sep = "&"
				}
				return ret + sep + pick.Encode()
			},
			FilterAction: em.IndexPagePrefix + "/pick",
			FilterHidden: pickCtx,
		}
		body := view.Table(r.Context(), s.viewContext(), svc, st, opts)
		s.renderPage(w, "Pick "+em.Singular, body)
	}
}

// applyPost feeds submitted values into the form. Unchecked checkboxes
// are absent from the post body, so booleans are derived from presence
// unless the field is currently null.
func applyPost(f *form.Form, post url.Values) {
	for _, name := range f.Fields() {
		fm := f.Meta().Field(name)
		vals, posted := post[name]
		if fm != nil && fm.Kind == meta.KindBoolean {
			if f.Value(name) != nil {
				f.Set(name, posted && len(vals) > 0 && (vals[0] == "true" || vals[0] == "on"))
			}
			continue
		}
		if posted && len(vals) > 0 {
			f.SetString(name, vals[0])
		}
	}
}

// applyQueryOverrides restores form state carried through a picker
// round trip (v[field]) and applies the picked id (pick[field]).
func applyQueryOverrides(f *form.Form, q url.Values) {
	apply := func(prefix string) {
		for key, vals := range q {
			if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") || len(vals) == 0 {
				continue
			}
			f.SetString(key[len(prefix):len(key)-1], vals[0])
		}
	}
	apply("v[")
	apply("pick[")
}

// pickURLBuilder builds the picker link for a foreign-key field,
// carrying the form's current values so they survive the round trip.
func (s *Server) pickURLBuilder(returnPath string, f *form.Form) func(field string, ref meta.Key) string {
	return func(field string, ref meta.Key) string {
		state := url.Values{}
		for _, name := range f.Fields() {
			if v := f.Value(name); v != nil {
				state.Set("v["+name+"]", fmt.Sprintf("%v", v))
			}
		}
		ret := returnPath
		if len(state) > 0 {
			ret += "?" + state.Encode()
		}
		q := url.Values{}
		q.Set("field", field)
		q.Set("return", ret)
		if id := meta.AsID(f.Value(field)); id > 0 {
			q.Set("current", strconv.FormatInt(id, 10))
		}
		return s.metas.Entity(ref).IndexPagePrefix + "/pick?" + q.Encode()
	}
}
