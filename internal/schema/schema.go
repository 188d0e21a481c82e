// Package schema validates create/update payloads against per-entity
// CUE definitions.
//
// Each entity declares its form shape as a CUE definition named #Form.
// Definitions are closed, so a payload carrying a stray key (most
// importantly the primary key, which must never be submitted) fails
// validation along with any type or requiredness violation.
package schema

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/taskdeck/taskdeck/internal/meta"
)

// Schema is a compiled form schema. Compile once at startup; Validate
// is safe for concurrent use.
type Schema struct {
	ctx  *cue.Context
	form cue.Value
}

// MustCompile compiles CUE source containing a #Form definition.
// It panics on malformed source; schemas are static program data.
func MustCompile(src string) *Schema {
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	if err := v.Err(); err != nil {
		panic(fmt.Sprintf("schema: compile: %v", err))
	}
	form := v.LookupPath(cue.ParsePath("#Form"))
	if err := form.Err(); err != nil {
		panic(fmt.Sprintf("schema: missing #Form definition: %v", err))
	}
	return &Schema{ctx: ctx, form: form}
}

// Validate checks a payload against the schema and returns one entry
// per violated field. A nil return means the payload is valid.
func (s *Schema) Validate(payload map[string]any) []meta.FieldError {
	unified := s.form.Unify(s.ctx.Encode(payload))
	err := unified.Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}
	var out []meta.FieldError
	for _, e := range cueerrors.Errors(err) {
		field := ""
		if p := e.Path(); len(p) > 0 {
			field = p[len(p)-1]
		}
		format, args := e.Msg()
		out = append(out, meta.FieldError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
		})
	}
	return out
}

var _ meta.FormSchema = (*Schema)(nil)
