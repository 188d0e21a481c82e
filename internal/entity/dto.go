package entity

import "github.com/taskdeck/taskdeck/internal/meta"

// Task is the typed projection of a Task record, for code paths that
// need more than the generic Record (the task list page).
type Task struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	StatusID    *int64  `json:"status_id"`
	CategoryID  *int64  `json:"category_id"`
	Priority    *int64  `json:"priority"`
	CreatedAt   string  `json:"created_at"`
}

// Status is the typed projection of a Status record.
type Status struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Order *int64 `json:"order"`
}

// Category is the typed projection of a Category record.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TaskFromRecord converts a generic record to a typed Task.
func TaskFromRecord(r meta.Record) Task {
	return Task{
		ID:          r.ID(),
		Title:       str(r["title"]),
		Description: str(r["description"]),
		DueDate:     optStr(r["due_date"]),
		StatusID:    optID(r["status_id"]),
		CategoryID:  optID(r["category_id"]),
		Priority:    optID(r["priority"]),
		CreatedAt:   str(r["created_at"]),
	}
}

// Record converts the task back to the generic form used by the
// entity service, primary key included.
func (t Task) Record() meta.Record {
	return meta.Record{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"due_date":    fromOptStr(t.DueDate),
		"status_id":   fromOptID(t.StatusID),
		"category_id": fromOptID(t.CategoryID),
		"priority":    fromOptID(t.Priority),
		"created_at":  t.CreatedAt,
	}
}

// StatusFromRecord converts a generic record to a typed Status.
func StatusFromRecord(r meta.Record) Status {
	return Status{ID: r.ID(), Name: str(r["name"]), Order: optID(r["order"])}
}

// CategoryFromRecord converts a generic record to a typed Category.
func CategoryFromRecord(r meta.Record) Category {
	return Category{ID: r.ID(), Name: str(r["name"])}
}

func optStr(v any) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func optID(v any) *int64 {
	if v == nil {
		return nil
	}
	n := meta.AsID(v)
	return &n
}

func fromOptStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func fromOptID(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
