package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdeck/taskdeck/internal/meta"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Same(t, TaskMeta, r.Entity(meta.KeyTask))
	assert.Same(t, StatusMeta, r.Entity(meta.KeyStatus))
	assert.Same(t, CategoryMeta, r.Entity(meta.KeyCategory))
}

func TestPeeks(t *testing.T) {
	p := TaskMeta.Peek(meta.Record{"title": "Buy milk"})
	assert.Equal(t, meta.Peek{Icon: "list", Text: "Buy milk"}, p)

	p = StatusMeta.Peek(meta.Record{"name": "Done"})
	assert.Equal(t, meta.Peek{Icon: "flag", Text: "Done"}, p)

	p = CategoryMeta.Peek(meta.Record{"name": "Chores"})
	assert.Equal(t, meta.Peek{Icon: "tag", Text: "Chores"}, p)
}

func validTaskPayload() map[string]any {
	return map[string]any{
		"title":       "Buy milk",
		"description": "2 liters",
		"due_date":    nil,
		"status_id":   1,
		"category_id": nil,
		"priority":    3,
		"created_at":  "2026-08-01T10:00:00Z",
	}
}

func TestTaskFormValid(t *testing.T) {
	assert.Nil(t, TaskMeta.Form.Validate(validTaskPayload()))
}

func TestTaskFormRejectsNullTitle(t *testing.T) {
	p := validTaskPayload()
	p["title"] = nil
	errs := TaskMeta.Form.Validate(p)
	require.NotEmpty(t, errs)
}

func TestTaskFormRejectsEmptyTitle(t *testing.T) {
	p := validTaskPayload()
	p["title"] = ""
	assert.NotEmpty(t, TaskMeta.Form.Validate(p))
}

func TestTaskFormRejectsPrimaryKey(t *testing.T) {
	p := validTaskPayload()
	p["id"] = 7
	assert.NotEmpty(t, TaskMeta.Form.Validate(p))
}

func TestStatusForm(t *testing.T) {
	assert.Nil(t, StatusMeta.Form.Validate(map[string]any{"name": "Done", "order": 2}))
	assert.Nil(t, StatusMeta.Form.Validate(map[string]any{"name": "Done", "order": nil}))
	assert.NotEmpty(t, StatusMeta.Form.Validate(map[string]any{"name": "", "order": 2}))
}

func TestCategoryForm(t *testing.T) {
	assert.Nil(t, CategoryMeta.Form.Validate(map[string]any{"name": "Chores"}))
	assert.NotEmpty(t, CategoryMeta.Form.Validate(map[string]any{"name": ""}))
}

func TestTaskRecordRoundTrip(t *testing.T) {
	rec := meta.Record{
		"id":          float64(7),
		"title":       "Buy milk",
		"description": "2 liters",
		"due_date":    nil,
		"status_id":   float64(1),
		"category_id": nil,
		"priority":    float64(3),
		"created_at":  "2026-08-01T10:00:00Z",
	}
	task := TaskFromRecord(rec)
	assert.Equal(t, int64(7), task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Nil(t, task.DueDate)
	require.NotNil(t, task.StatusID)
	assert.Equal(t, int64(1), *task.StatusID)

	back := task.Record()
	assert.Equal(t, int64(7), back.ID())
	assert.Equal(t, "Buy milk", back["title"])
	assert.Nil(t, back["due_date"])
	assert.Equal(t, int64(1), back["status_id"])
}
