// Package form implements the metadata-driven form state machine: the
// editable projection of one entity instance, with per-field dirty
// tracking, null handling, schema validation, and payload derivation.
// It is pure state; the view layer renders it and the web layer feeds
// it user input.
package form

import (
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/taskdeck/taskdeck/internal/meta"
)

// Form tracks edits to one entity instance. Primary-key fields are
// stripped at construction and never appear in the payload.
type Form struct {
	meta      *meta.EntityMeta
	fields    []string
	initial   map[string]any
	values    map[string]any
	errs      []meta.FieldError
	persisted bool
	id        int64
}

// New builds a form over an entity record. A record with a zero id is
// an in-creation entity: it gets no delete affordance and Persisted
// reports false.
func New(em *meta.EntityMeta, record meta.Record) *Form {
	f := &Form{
		meta:    em,
		initial: make(map[string]any),
		values:  make(map[string]any),
		id:      record.ID(),
	}
	f.persisted = f.id > 0
	for _, name := range em.FieldOrder {
		fm := em.Fields[name]
		if fm.Kind == meta.KindKey {
			continue
		}
		v := normalize(record[name])
		f.fields = append(f.fields, name)
		f.initial[name] = v
		f.values[name] = v
	}
	return f
}

// normalize maps decoded JSON values onto the form's canonical
// representation: whole floats become int64 so that an untouched form
// round-trips to the entity's persisted fields.
func normalize(v any) any {
	if n, ok := v.(float64); ok && n == math.Trunc(n) {
		return int64(n)
	}
	if n, ok := v.(int); ok {
		return int64(n)
	}
	return v
}

// Meta returns the entity metadata behind the form.
func (f *Form) Meta() *meta.EntityMeta { return f.meta }

// Fields returns the editable field names in metadata order.
func (f *Form) Fields() []string { return f.fields }

// Persisted reports whether the form edits an already-persisted
// entity (update) rather than an in-creation one (create).
func (f *Form) Persisted() bool { return f.persisted }

// ID returns the persisted entity's id, or 0 for an in-creation one.
func (f *Form) ID() int64 { return f.id }

// Value returns a field's current value.
func (f *Form) Value(name string) any { return f.values[name] }

// Initial returns a field's initial value.
func (f *Form) Initial(name string) any { return f.initial[name] }

// Dirty reports whether a field differs from its initial value.
func (f *Form) Dirty(name string) bool {
	return !reflect.DeepEqual(f.values[name], f.initial[name])
}

// Set replaces a field's value. Constant and key fields are never
// writable; writes to them are dropped.
func (f *Form) Set(name string, v any) {
	fm := f.meta.Fields[name]
	if fm == nil || fm.Constant || fm.Kind == meta.KindKey {
		return
	}
	f.values[name] = normalize(v)
}

// SetString coerces raw form input per the field's kind and sets it.
// Unparseable numeric input leaves the field untouched so validation
// can point at the stale value rather than silently zeroing it.
func (f *Form) SetString(name, raw string) {
	fm := f.meta.Fields[name]
	if fm == nil {
		return
	}
	switch fm.Kind {
	case meta.KindNumber, meta.KindFKey:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return
		}
		f.Set(name, n)
	case meta.KindBoolean:
		f.Set(name, raw == "true" || raw == "on" || raw == "1")
	case meta.KindDate:
		f.Set(name, toISODate(raw))
	default:
		f.Set(name, raw)
	}
}

// toISODate normalizes browser date-input formats to the ISO-8601
// timestamp strings stored on the wire. Unrecognized input is kept
// as-is for the schema to reject.
func toISODate(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return raw
}

// Clear sets a nullable field to null. Non-nullable, constant, and
// key fields never offer null-toggling.
func (f *Form) Clear(name string) {
	fm := f.meta.Fields[name]
	if fm == nil || !fm.Nullable || fm.Constant || fm.Kind == meta.KindKey {
		return
	}
	f.values[name] = nil
}

// Materialize gives a currently-null field its kind's initial value.
func (f *Form) Materialize(name string) {
	fm := f.meta.Fields[name]
	if fm == nil || f.values[name] != nil {
		return
	}
	f.Set(name, fm.InitialValue())
}

// ResetField restores one field to its initial value.
func (f *Form) ResetField(name string) {
	if _, ok := f.initial[name]; ok {
		f.values[name] = f.initial[name]
	}
}

// Reset restores every field to its initial value and clears errors.
func (f *Form) Reset() {
	for _, name := range f.fields {
		f.values[name] = f.initial[name]
	}
	f.errs = nil
}

// Validate runs the entity's schema over the would-be payload.
// On failure the field errors are retained for inline rendering and
// submission must not proceed.
func (f *Form) Validate() bool {
	f.errs = f.meta.Form.Validate(f.Payload())
	return len(f.errs) == 0
}

// Errors returns the violations from the last Validate call.
func (f *Form) Errors() []meta.FieldError { return f.errs }

// ErrorFor returns the first violation message for a field, or "".
func (f *Form) ErrorFor(name string) string {
	for _, e := range f.errs {
		if e.Field == name {
			return e.Message
		}
	}
	return ""
}

// Payload returns the submission body: every editable field's current
// value, primary key excluded.
func (f *Form) Payload() map[string]any {
	out := make(map[string]any, len(f.fields))
	for _, name := range f.fields {
		out[name] = f.values[name]
	}
	return out
}
