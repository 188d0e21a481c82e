// Package entity declares the concrete entity types the application
// knows about (Task, Status, Category) and assembles the process-wide
// metadata registry from them.
package entity

import (
	"github.com/taskdeck/taskdeck/internal/meta"
	"github.com/taskdeck/taskdeck/internal/schema"
)

const taskFormCUE = `
#Form: {
	title:       string & !=""
	description: string & !=""
	due_date:    string | null
	status_id:   int | null
	category_id: int | null
	priority:    int | null
	created_at:  string & !=""
}
`

const statusFormCUE = `
#Form: {
	name:  string & !=""
	order: int | null
}
`

const categoryFormCUE = `
#Form: {
	name: string & !=""
}
`

// TaskMeta describes the Task entity.
var TaskMeta = &meta.EntityMeta{
	Key:             meta.KeyTask,
	APIPrefix:       "/task",
	IndexPagePrefix: "/tasks",
	Singular:        "Task",
	Plural:          "tasks",
	FieldOrder: []string{
		"id", "title", "description", "due_date",
		"status_id", "category_id", "priority", "created_at",
	},
	Fields: map[string]*meta.FieldMeta{
		"id":          {Label: "Id", Kind: meta.KindKey, Constant: true},
		"title":       {Label: "Title", Kind: meta.KindText},
		"description": {Label: "Description", Kind: meta.KindText},
		"due_date":    {Label: "Due date", Kind: meta.KindDate, Nullable: true},
		"status_id":   {Label: "Status", Kind: meta.KindFKey, Ref: meta.KeyStatus, Nullable: true},
		"category_id": {Label: "Category", Kind: meta.KindFKey, Ref: meta.KeyCategory, Nullable: true},
		"priority":    {Label: "Priority", Kind: meta.KindNumber, Nullable: true},
		"created_at":  {Label: "Creation time", Kind: meta.KindDate},
	},
	Form: schema.MustCompile(taskFormCUE),
	Peek: func(r meta.Record) meta.Peek {
		return meta.Peek{Icon: "list", Text: str(r["title"])}
	},
}

// StatusMeta describes the Status entity.
var StatusMeta = &meta.EntityMeta{
	Key:             meta.KeyStatus,
	APIPrefix:       "/status",
	IndexPagePrefix: "/statuses",
	Singular:        "Status",
	Plural:          "statuses",
	FieldOrder:      []string{"id", "name", "order"},
	Fields: map[string]*meta.FieldMeta{
		"id":    {Label: "Id", Kind: meta.KindKey, Constant: true},
		"name":  {Label: "Title", Kind: meta.KindText},
		"order": {Label: "Order", Kind: meta.KindNumber, Nullable: true},
	},
	Relations: []meta.Relation{
		{Label: "Has tasks", Ref: meta.KeyTask, FKField: "status_id"},
	},
	Form: schema.MustCompile(statusFormCUE),
	Peek: func(r meta.Record) meta.Peek {
		return meta.Peek{Icon: "flag", Text: str(r["name"])}
	},
}

// CategoryMeta describes the Category entity.
var CategoryMeta = &meta.EntityMeta{
	Key:             meta.KeyCategory,
	APIPrefix:       "/category",
	IndexPagePrefix: "/categories",
	Singular:        "Category",
	Plural:          "categories",
	FieldOrder:      []string{"id", "name"},
	Fields: map[string]*meta.FieldMeta{
		"id":   {Label: "Id", Kind: meta.KindKey, Constant: true},
		"name": {Label: "Title", Kind: meta.KindText},
	},
	Relations: []meta.Relation{
		{Label: "Has tasks", Ref: meta.KeyTask, FKField: "category_id"},
	},
	Form: schema.MustCompile(categoryFormCUE),
	Peek: func(r meta.Record) meta.Peek {
		return meta.Peek{Icon: "tag", Text: str(r["name"])}
	},
}

// NewRegistry builds the metadata registry for all known entities.
func NewRegistry() *meta.Registry {
	return meta.NewRegistry(TaskMeta, StatusMeta, CategoryMeta)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
