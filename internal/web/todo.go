package web

import (
	"fmt"
	"html"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/entity"
	"github.com/taskdeck/taskdeck/internal/meta"
	"github.com/taskdeck/taskdeck/internal/tasklist"
)

// todoPage renders the task list as cards with a completion toggle.
// Filtering and ordering happen here over the full task set rather
// than through the server-side search, so toggling a task never
// shuffles it out from under the pointer.
func (s *Server) todoPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	taskRecs := s.services.Service(meta.KeyTask).GetAll(ctx)
	statusRecs := s.services.Service(meta.KeyStatus).GetAll(ctx)
	categoryRecs := s.services.Service(meta.KeyCategory).GetAll(ctx)

	tasks := make([]entity.Task, 0, len(taskRecs))
	for _, rec := range taskRecs {
		tasks = append(tasks, entity.TaskFromRecord(rec))
	}
	statuses := make([]entity.Status, 0, len(statusRecs))
	for _, rec := range statusRecs {
		statuses = append(statuses, entity.StatusFromRecord(rec))
	}
	categories := make(map[int64]string, len(categoryRecs))
	for _, rec := range categoryRecs {
		c := entity.CategoryFromRecord(rec)
		categories[c.ID] = c.Name
	}

	q := r.URL.Query()
	query := q.Get("q")
	statusID, _ := strconv.ParseInt(q.Get("status"), 10, 64)
	ascending := q.Get("asc") == "true"

	bs, canToggle := tasklist.ResolveBinaryStatuses(statuses)
	tasks = tasklist.Filter(tasks, query, statusID)
	tasks = tasklist.Order(tasks, bs, ascending)

	var b strings.Builder
	b.WriteString(`<form method="get" action="/todo" class="toolbar">`)
	fmt.Fprintf(&b, `<input type="text" name="q" value="%s" placeholder="Filter tasks ...">`,
		html.EscapeString(query))
	b.WriteString(`<select name="status"><option value="0">Any status</option>`)
	for _, st := range statuses {
		sel := ""
		if st.ID == statusID {
			sel = ` selected`
		}
		fmt.Fprintf(&b, `<option value="%d"%s>%s</option>`, st.ID, sel, html.EscapeString(st.Name))
	}
	b.WriteString(`</select>`)
	fmt.Fprintf(&b, `<label><input type="checkbox" name="asc" value="true"%s> low priority first</label>`,
		checkedAttr(ascending))
	b.WriteString(`<button type="submit">Apply</button></form>`)

	if len(tasks) == 0 {
		b.WriteString(`<div class="empty">No tasks found</div>`)
	}
	for _, t := range tasks {
		s.todoCard(&b, t, bs, canToggle, categories, r.URL.RawQuery)
	}
	s.renderPage(w, "Todo", template.HTML(b.String()))
}

func (s *Server) todoCard(b *strings.Builder, t entity.Task, bs tasklist.BinaryStatuses, canToggle bool, categories map[int64]string, rawQuery string) {
	done := bs.Done(t)
	class := "task-card"
	if done {
		class += " task-done"
	}
	fmt.Fprintf(b, `<div class="%s">`, class)

	if canToggle {
		action := fmt.Sprintf("/todo/%d/toggle", t.ID)
		if rawQuery != "" {
			action += "?" + rawQuery
		}
		fmt.Fprintf(b, `<form method="post" action="%s" class="toggle">`, html.EscapeString(action))
		fmt.Fprintf(b, `<button type="submit"><input type="checkbox"%s disabled></button></form>`,
			checkedAttr(done))
	}

	fmt.Fprintf(b, `<a href="/task/%d"><strong>%s</strong></a>`, t.ID, html.EscapeString(t.Title))
	if t.Description != "" {
		fmt.Fprintf(b, `<p>%s</p>`, html.EscapeString(t.Description))
	}
	if t.CategoryID != nil {
		if name, ok := categories[*t.CategoryID]; ok {
			fmt.Fprintf(b, `<span class="badge">&#127991; %s</span>`, html.EscapeString(name))
		}
	}
	if t.Priority != nil {
		fmt.Fprintf(b, `<span class="badge">priority %d</span>`, *t.Priority)
	}
	if t.DueDate != nil {
		fmt.Fprintf(b, `<span class="badge">due %s</span>`, html.EscapeString(shortDate(*t.DueDate)))
	}
	b.WriteString(`</div>`)
}

func shortDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Format("Mon Jan 02 2006")
}

func checkedAttr(on bool) string {
	if on {
		return " checked"
	}
	return ""
}

// todoToggle flips a task between Done and In Progress and returns to
// the list, keeping whatever filter was active.
func (s *Server) todoToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()
	taskSvc := s.services.Service(meta.KeyTask)
	rec := taskSvc.Get(ctx, id)
	back := "/todo"
	if r.URL.RawQuery != "" {
		back += "?" + r.URL.RawQuery
	}
	if rec == nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	statusRecs := s.services.Service(meta.KeyStatus).GetAll(ctx)
	statuses := make([]entity.Status, 0, len(statusRecs))
	for _, sr := range statusRecs {
		statuses = append(statuses, entity.StatusFromRecord(sr))
	}
	tasklist.ToggleCompletion(ctx, taskSvc, entity.TaskFromRecord(rec), statuses)
	http.Redirect(w, r, back, http.StatusSeeOther)
}
