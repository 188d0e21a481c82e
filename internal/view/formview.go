package view

import (
	"context"
	"fmt"
	"html/template"
	"sort"
	"time"

	"github.com/taskdeck/taskdeck/internal/form"
	"github.com/taskdeck/taskdeck/internal/meta"
)

// FormOptions control form rendering.
type FormOptions struct {
	// Edit renders input controls and the Apply/Reset buttons;
	// otherwise the form is a read-only field list.
	Edit bool
	// Action is the POST target of an editable form.
	Action string
	// AllowDelete adds the delete affordance. Only honored for
	// persisted entities, never for in-creation ones.
	AllowDelete bool
	// PickURL builds the picker link for a foreign-key field. Without
	// it fkey inputs render their current value only.
	PickURL func(field string, ref meta.Key) string
}

// kindTags are the small per-kind markers next to field labels.
var kindTags = map[meta.FieldKind]string{
	meta.KindKey:     "KEY",
	meta.KindBoolean: "Y/N",
	meta.KindText:    "TXT",
	meta.KindFKey:    "FK",
}

// Form renders a metadata-driven editor (or read-only field list) for
// the form's entity instance.
func Form(ctx context.Context, rc Context, f *form.Form, opts FormOptions) template.HTML {
	var b builder
	if opts.Edit {
		b.raw(`<form method="post" action="` + attr(opts.Action) + `" class="entity-form">`)
	} else {
		b.raw(`<div class="entity-form">`)
	}
	for _, name := range f.Fields() {
		renderField(ctx, rc, f, name, opts, &b)
	}
	if opts.Edit {
		b.raw(`<div class="form-actions">`)
		b.raw(`<button type="submit" name="__action" value="reset">Reset</button>`)
		if opts.AllowDelete && f.Persisted() {
			b.raw(`<button type="submit" name="__action" value="delete" class="danger icon icon-trash"></button>`)
		}
		b.raw(`<button type="submit" name="__action" value="apply">Apply</button>`)
		b.raw(`</div></form>`)
	} else {
		b.raw(`</div>`)
	}
	return b.html()
}

func renderField(ctx context.Context, rc Context, f *form.Form, name string, opts FormOptions, b *builder) {
	em := f.Meta()
	fm := em.Field(name)
	if fm == nil {
		b.raw(`<span class="placeholder">unspecified field metadata</span>`)
		return
	}
	keyOrConst := fm.Constant || fm.Kind == meta.KindKey

	b.raw(`<div class="form-field">`)
	b.raw(`<div class="form-field-head">`)
	b.raw(`<label for="` + attr(name) + `">`)
	b.text(fm.Label)
	b.raw(`</label>`)
	if tag, ok := kindTags[fm.Kind]; ok {
		b.raw(`<button class="icon" disabled>` + tag + `</button>`)
	}
	if opts.Edit && !keyOrConst {
		if f.Dirty(name) {
			b.raw(`<button type="submit" name="__action" value="resetfield:` + attr(name) + `">reset?</button>`)
		}
		if fm.Nullable && f.Value(name) != nil {
			b.raw(`<button type="submit" name="__action" value="clear:` + attr(name) + `" class="icon icon-x"></button>`)
		}
	}
	b.raw(`</div>`)

	if opts.Edit {
		renderControl(ctx, rc, f, name, fm, opts, b)
	} else {
		b.raw(string(FieldDisplay(ctx, rc, em, name, f.Value(name))))
	}

	if msg := f.ErrorFor(name); msg != "" {
		b.raw(`<p class="field-error">`)
		b.text(msg)
		b.raw(`</p>`)
	}
	b.raw(`</div>`)
}

// renderControl renders the editable control for one field: the
// kind-dispatched input when a value is present, the disabled absent
// indicator or the materialize affordance when it is null.
func renderControl(ctx context.Context, rc Context, f *form.Form, name string, fm *meta.FieldMeta, opts FormOptions, b *builder) {
	keyOrConst := fm.Constant || fm.Kind == meta.KindKey
	if f.Value(name) == nil {
		if keyOrConst || !fm.Nullable {
			b.raw(`<button class="icon" disabled title="absent">&empty;</button>`)
		} else {
			b.raw(`<button type="submit" name="__action" value="materialize:` + attr(name) + `" class="icon icon-plus"></button>`)
		}
		return
	}
	render, ok := inputRenderers[fm.Kind]
	if !ok {
		b.raw(`<div class="placeholder">unimplemented_input</div>`)
		return
	}
	render(ctx, rc, f, name, fm, opts, b)
}

type inputRenderer func(ctx context.Context, rc Context, f *form.Form, name string, fm *meta.FieldMeta, opts FormOptions, b *builder)

// inputRenderers is the closed input dispatch table over field kinds.
var inputRenderers map[meta.FieldKind]inputRenderer

func init() {
	inputRenderers = map[meta.FieldKind]inputRenderer{
		meta.KindKey:     inputNumber,
		meta.KindNumber:  inputNumber,
		meta.KindDate:    inputDate,
		meta.KindBoolean: inputBoolean,
		meta.KindText:    inputText,
		meta.KindEnum:    inputEnum,
		meta.KindFKey:    inputFKey,
	}
}

func inputClass(f *form.Form, name string) string {
	switch {
	case f.ErrorFor(name) != "":
		return "input input-error"
	case f.Dirty(name):
		return "input input-dirty"
	default:
		return "input"
	}
}

func disabledAttr(fm *meta.FieldMeta) string {
	if fm.Constant || fm.Kind == meta.KindKey {
		return ` disabled`
	}
	return ``
}

func inputNumber(_ context.Context, _ Context, f *form.Form, name string, fm *meta.FieldMeta, _ FormOptions, b *builder) {
	b.raw(fmt.Sprintf(`<input type="number" id="%s" name="%s" value="%v" class="%s"%s>`,
		attr(name), attr(name), f.Value(name), inputClass(f, name), disabledAttr(fm)))
}

func inputDate(_ context.Context, _ Context, f *form.Form, name string, fm *meta.FieldMeta, _ FormOptions, b *builder) {
	s, _ := f.Value(name).(string)
	val := ""
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		val = t.UTC().Format("2006-01-02T15:04")
	}
	b.raw(fmt.Sprintf(`<input type="datetime-local" id="%s" name="%s" value="%s" class="%s"%s>`,
		attr(name), attr(name), attr(val), inputClass(f, name), disabledAttr(fm)))
}

func inputBoolean(_ context.Context, _ Context, f *form.Form, name string, fm *meta.FieldMeta, _ FormOptions, b *builder) {
	checked := ""
	if v, _ := f.Value(name).(bool); v {
		checked = ` checked`
	}
	b.raw(fmt.Sprintf(`<input type="checkbox" id="%s" name="%s" value="true" class="%s"%s%s>`,
		attr(name), attr(name), inputClass(f, name), checked, disabledAttr(fm)))
}

func inputText(_ context.Context, _ Context, f *form.Form, name string, fm *meta.FieldMeta, _ FormOptions, b *builder) {
	b.raw(fmt.Sprintf(`<textarea id="%s" name="%s" class="%s"%s>`,
		attr(name), attr(name), inputClass(f, name), disabledAttr(fm)))
	b.textf("%v", f.Value(name))
	b.raw(`</textarea>`)
}

func inputEnum(_ context.Context, _ Context, f *form.Form, name string, fm *meta.FieldMeta, _ FormOptions, b *builder) {
	if fm.Enum == nil {
		b.raw(`<div class="placeholder">unimplemented_input</div>`)
		return
	}
	keys := fm.Enum.Order
	if len(keys) == 0 {
		keys = make([]string, 0, len(fm.Enum.Options))
		for k := range fm.Enum.Options {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}
	current := fmt.Sprintf("%v", f.Value(name))
	b.raw(fmt.Sprintf(`<select id="%s" name="%s" size="%d" class="%s">`,
		attr(name), attr(name), len(keys), inputClass(f, name)))
	for _, k := range keys {
		selected := ""
		if k == current {
			selected = ` selected`
		}
		b.raw(`<option value="` + attr(k) + `"` + selected + `>`)
		b.text(fm.Enum.Options[k])
		b.raw(`</option>`)
	}
	b.raw(`</select>`)
}

// inputFKey renders the current reference's preview plus the picker
// affordance. The chosen id comes back through the picker redirect;
// the raw id also travels as a hidden input so an untouched reference
// survives the round trip.
func inputFKey(ctx context.Context, rc Context, f *form.Form, name string, fm *meta.FieldMeta, opts FormOptions, b *builder) {
	b.raw(`<div class="fkey-control">`)
	b.raw(fmt.Sprintf(`<input type="hidden" name="%s" value="%v">`, attr(name), f.Value(name)))
	b.raw(string(FieldDisplay(ctx, rc, f.Meta(), name, f.Value(name))))
	if opts.PickURL != nil {
		b.raw(`<a class="icon icon-edit" href="` + attr(opts.PickURL(name, fm.Ref)) + `"></a>`)
	}
	b.raw(`</div>`)
}
