// Package view synthesizes the HTML for the metadata-driven table,
// form, and field-display components. It holds no per-entity markup:
// everything is derived from metadata plus live data pulled through
// the entity services.
package view

import (
	"github.com/taskdeck/taskdeck/internal/client"
	"github.com/taskdeck/taskdeck/internal/meta"
)

// DefaultMaxDepth is how many popover levels a field display may nest.
// A foreign-key preview inside a hover popover renders as a bare peek
// instead of opening another popover.
const DefaultMaxDepth = 1

// Context carries what every renderer needs: the service registry for
// foreign-key resolution, and the ambient popover nesting depth.
type Context struct {
	Services *client.Registry
	Depth    int
	MaxDepth int
}

// NewContext builds a render context with the default nesting limit.
func NewContext(services *client.Registry) Context {
	return Context{Services: services, MaxDepth: DefaultMaxDepth}
}

// Nested returns the context one popover level deeper.
func (c Context) Nested() Context {
	c.Depth++
	return c
}

// PopoverAllowed reports whether another popover level may open here.
func (c Context) PopoverAllowed() bool {
	return c.Depth < c.MaxDepth
}

func (c Context) service(k meta.Key) *client.Service {
	return c.Services.Service(k)
}
