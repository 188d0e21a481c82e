package view

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/taskdeck/taskdeck/internal/form"
	"github.com/taskdeck/taskdeck/internal/meta"
)

// displayRenderer renders one field value for a read context.
type displayRenderer func(ctx context.Context, rc Context, fm *meta.FieldMeta, value any, b *builder)

// displayRenderers is the closed dispatch table over field kinds.
// A kind missing here renders the explicit unimplemented placeholder,
// never a panic.
var displayRenderers map[meta.FieldKind]displayRenderer

func init() {
	displayRenderers = map[meta.FieldKind]displayRenderer{
		meta.KindKey:     displayNumber,
		meta.KindNumber:  displayNumber,
		meta.KindDate:    displayDate,
		meta.KindBoolean: displayBoolean,
		meta.KindText:    displayText,
		meta.KindEnum:    displayEnum,
		meta.KindFKey:    displayFKey,
	}
}

// FieldDisplay renders a single field's value per its declared kind.
// Missing metadata and unknown kinds render visible placeholders.
func FieldDisplay(ctx context.Context, rc Context, em *meta.EntityMeta, name string, value any) template.HTML {
	var b builder
	fm := em.Field(name)
	if fm == nil {
		b.raw(`<span class="placeholder">unspecified field metadata</span>`)
		return b.html()
	}
	if value == nil {
		b.raw(`<button class="icon" disabled title="absent">&empty;</button>`)
		return b.html()
	}
	render, ok := displayRenderers[fm.Kind]
	if !ok {
		b.raw(`<span class="placeholder">Unimplemented type display</span>`)
		return b.html()
	}
	render(ctx, rc, fm, value, &b)
	return b.html()
}

func displayNumber(_ context.Context, _ Context, _ *meta.FieldMeta, value any, b *builder) {
	b.textf("%v", value)
}

func displayDate(_ context.Context, _ Context, _ *meta.FieldMeta, value any, b *builder) {
	s, _ := value.(string)
	t, err := time.Parse(time.RFC3339, s)
	label := "???"
	if err == nil {
		label = t.Format("Mon Jan 02 2006")
	}
	b.raw(`<span class="badge"><span class="icon icon-calendar"></span>`)
	b.text(label)
	b.raw(`</span>`)
}

func displayBoolean(_ context.Context, _ Context, _ *meta.FieldMeta, value any, b *builder) {
	if v, _ := value.(bool); v {
		b.text("yes")
	} else {
		b.text("no")
	}
}

func displayText(_ context.Context, _ Context, _ *meta.FieldMeta, value any, b *builder) {
	b.raw(`<div class="cell-text">`)
	b.textf("%v", value)
	b.raw(`</div>`)
}

func displayEnum(_ context.Context, _ Context, fm *meta.FieldMeta, value any, b *builder) {
	key := fmt.Sprintf("%v", value)
	if fm.Enum != nil {
		if label, ok := fm.Enum.Options[key]; ok {
			b.text(label)
			return
		}
	}
	b.text(key)
}

// displayFKey resolves the referenced entity and renders its peek.
// A zero or null reference is the unset sentinel: it renders an
// "unspecified" badge (error-styled when the field is non-nullable)
// and never triggers a fetch.
func displayFKey(ctx context.Context, rc Context, fm *meta.FieldMeta, value any, b *builder) {
	id := meta.AsID(value)
	if id == 0 {
		class := "badge"
		if !fm.Nullable {
			class = "badge badge-error"
		}
		b.raw(`<span class="` + class + `">unspecified</span>`)
		return
	}
	svc := rc.service(fm.Ref)
	refMeta := svc.Meta()
	rec := svc.Get(ctx, id)
	if rec == nil {
		b.raw(`<span class="pending">Loading ...</span>`)
		return
	}
	peek := refMeta.Peek(rec)
	if !rc.PopoverAllowed() {
		b.peekBadge(peek.Icon, peek.Text)
		return
	}
	b.raw(`<span class="popover">`)
	b.raw(`<span class="popover-trigger">`)
	b.peekBadge(peek.Icon, peek.Text)
	b.raw(`</span>`)
	b.raw(`<span class="popover-content">`)
	b.raw(string(Form(ctx, rc.Nested(), form.New(refMeta, rec), FormOptions{})))
	b.raw(fmt.Sprintf(`<a class="icon icon-open" href="%s/%d"></a>`, attr(refMeta.IndexPagePrefix), id))
	b.raw(`</span></span>`)
}
