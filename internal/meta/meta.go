// Package meta holds the declarative entity metadata the rest of the
// engine is driven by: field kinds, per-field metadata, per-entity
// metadata, and the process-wide registry.
//
// Metadata is constructed once at startup and is read-only afterwards.
// The table, form, and display layers never contain per-entity code;
// everything they render is derived from the structures in this package.
package meta

import (
	"math"
	"time"
)

// FieldKind classifies a field for display and input dispatch.
// The set is closed; renderers map over it with exhaustive tables.
type FieldKind int

const (
	KindKey FieldKind = iota
	KindFKey
	KindEnum
	KindDate
	KindNumber
	KindText
	KindBoolean
)

// String returns the wire/metadata name of the kind.
func (k FieldKind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindFKey:
		return "fkey"
	case KindEnum:
		return "enum"
	case KindDate:
		return "date"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// EnumMeta declares the option set of an enum field.
type EnumMeta struct {
	Default string
	Options map[string]string // stored key -> human label
	Order   []string          // option keys in declaration order
}

// FieldMeta describes a single field on an entity.
type FieldMeta struct {
	Kind     FieldKind
	Label    string
	Constant bool // immutable after creation, never editable
	Nullable bool
	Ref      Key       // referenced entity, KindFKey only
	Enum     *EnumMeta // KindEnum only
}

// Relation declares an inverse foreign-key link used for the
// "related records" panels on a detail page. FKField names the field
// on the related entity that points back at this one.
type Relation struct {
	Label   string
	Ref     Key
	FKField string
}

// EntityMeta is the complete static description of one entity type.
type EntityMeta struct {
	Key             Key
	APIPrefix       string // base route on the remote API, e.g. "/task"
	IndexPagePrefix string // base route of this app's pages, e.g. "/tasks"
	Singular        string
	Plural          string
	FieldOrder      []string
	Fields          map[string]*FieldMeta
	Relations       []Relation
	Form            FormSchema
	Peek            func(Record) Peek
}

// FormSchema validates a create/update payload (the entity's fields
// minus the primary key). Implemented by internal/schema.
type FormSchema interface {
	Validate(payload map[string]any) []FieldError
}

// FieldError is one schema violation attributed to a field.
// Field is empty for violations that cannot be attributed.
type FieldError struct {
	Field   string
	Message string
}

// Peek is the compact, renderer-agnostic preview of an entity used in
// badges and hover previews.
type Peek struct {
	Icon string
	Text string
}

// Field returns the metadata for a named field, or nil when the field
// has no metadata entry (the renderer shows a placeholder for that).
func (m *EntityMeta) Field(name string) *FieldMeta {
	return m.Fields[name]
}

// Record is a transient client-side projection of one server entity.
// Values carry whatever encoding/json produced: float64 for numbers,
// nil for null.
type Record map[string]any

// ID returns the primary identifier, or 0 when absent.
func (r Record) ID() int64 {
	return AsID(r["id"])
}

// AsID coerces a decoded JSON value to an entity id. Unset references
// are null on the wire; a literal 0 is treated as unset as well since
// the backend never allocates id 0.
func AsID(v any) int64 {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0
		}
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

// InitialValue returns the value a field gets when it is materialized
// from null or seeded on a blank create form. The mapping is the
// per-kind dispatch table; extending FieldKind means extending it here.
func (f *FieldMeta) InitialValue() any {
	fn, ok := initialValues[f.Kind]
	if !ok {
		return nil
	}
	return fn(f)
}

// DefaultValue returns the value a blank form starts with: null for
// nullable fields, the kind's initial value otherwise.
func (f *FieldMeta) DefaultValue() any {
	if f.Nullable {
		return nil
	}
	return f.InitialValue()
}

var initialValues = map[FieldKind]func(*FieldMeta) any{
	KindKey:     func(*FieldMeta) any { return int64(0) },
	KindFKey:    func(*FieldMeta) any { return int64(0) },
	KindDate:    func(*FieldMeta) any { return time.Now().UTC().Format(time.RFC3339) },
	KindNumber:  func(*FieldMeta) any { return int64(0) },
	KindText:    func(*FieldMeta) any { return "" },
	KindBoolean: func(*FieldMeta) any { return false },
	KindEnum: func(f *FieldMeta) any {
		if f.Enum == nil {
			return nil
		}
		return f.Enum.Default
	},
}

// BlankRecord builds the default values for a create form: every field
// at its DefaultValue, in metadata order.
func (m *EntityMeta) BlankRecord() Record {
	r := make(Record, len(m.FieldOrder))
	for _, name := range m.FieldOrder {
		r[name] = m.Fields[name].DefaultValue()
	}
	return r
}
