package meta

import "fmt"

// Key identifies a registered entity type. The enumeration is closed:
// foreign keys and relations reference entities through Key, so a
// dangling reference is a compile-time error rather than a failed
// string lookup.
type Key int

const (
	KeyTask Key = iota
	KeyStatus
	KeyCategory

	numKeys
)

// String returns the entity's API prefix, the stable wire-level name.
func (k Key) String() string {
	switch k {
	case KeyTask:
		return "/task"
	case KeyStatus:
		return "/status"
	case KeyCategory:
		return "/category"
	default:
		return "unknown"
	}
}

// KeyFromPrefix resolves a wire-level API prefix back to a Key.
func KeyFromPrefix(prefix string) (Key, bool) {
	for k := Key(0); k < numKeys; k++ {
		if k.String() == prefix {
			return k, true
		}
	}
	return 0, false
}

// Registry holds the metadata for all entity types. It is built once
// at startup and safe for concurrent read access.
type Registry struct {
	entities [numKeys]*EntityMeta
	order    []Key
}

// NewRegistry builds a registry from a fixed list of descriptors.
// It panics on an incomplete or inconsistent descriptor set; the set
// is static, so this is a startup-time programming error.
func NewRegistry(descriptors ...*EntityMeta) *Registry {
	r := &Registry{}
	for _, em := range descriptors {
		if r.entities[em.Key] != nil {
			panic(fmt.Sprintf("meta: duplicate descriptor for %s", em.Key))
		}
		r.entities[em.Key] = em
		r.order = append(r.order, em.Key)
	}
	for k := Key(0); k < numKeys; k++ {
		if r.entities[k] == nil {
			panic(fmt.Sprintf("meta: missing descriptor for %s", k))
		}
	}
	for _, em := range descriptors {
		r.check(em)
	}
	return r
}

// check verifies cross-entity invariants: fkey fields and relations
// must point at registered entities, and a relation's FKField must be
// an fkey field on the related entity.
func (r *Registry) check(em *EntityMeta) {
	for name, f := range em.Fields {
		if f.Kind == KindFKey && r.entities[f.Ref] == nil {
			panic(fmt.Sprintf("meta: %s.%s references unregistered entity", em.Singular, name))
		}
	}
	for _, rel := range em.Relations {
		related := r.entities[rel.Ref]
		if related == nil {
			panic(fmt.Sprintf("meta: %s relation %q references unregistered entity", em.Singular, rel.Label))
		}
		fk := related.Fields[rel.FKField]
		if fk == nil || fk.Kind != KindFKey || fk.Ref != em.Key {
			panic(fmt.Sprintf("meta: %s relation %q: %s.%s is not a foreign key back to %s",
				em.Singular, rel.Label, related.Singular, rel.FKField, em.Singular))
		}
	}
}

// Entity returns the metadata for a key.
func (r *Registry) Entity(k Key) *EntityMeta {
	return r.entities[k]
}

// Keys returns all registered keys in registration order.
func (r *Registry) Keys() []Key {
	return r.order
}
