// Package registry keeps the append-only record of every entity
// produced during a run, in insertion order, with lookups by name,
// class type, and subset tag. Nothing is ever removed here; exclusion
// happens in a later pass so that template expansion always sees the
// complete history.
package registry

import (
	"log/slog"

	"github.com/yakaboskic/meta-sanity/pkg"
)

var (
	ErrDuplicateName = pkg.NewError("duplicate entity name")
	ErrUnknownParent = pkg.NewError("unknown parent reference")
)

// Property is one resolved name/value pair. Values are already in
// canonical string form.
type Property struct {
	Name  string
	Value string
}

// Entity is one fully resolved record. A nil Parents slice marks a
// root.
type Entity struct {
	Name       string
	Class      string
	Parents    []string
	Properties []Property
	Subsets    []string
}

// HasSubset reports whether the entity carries any of the given tags.
func (e *Entity) HasSubset(tags []string) bool {
	for _, tag := range tags {
		for _, have := range e.Subsets {
			if have == tag {
				return true
			}
		}
	}

	return false
}

// Registry is the ordered entity store for one run.
type Registry struct {
	entities []*Entity
	byName   map[string]*Entity
	byClass  map[string][]*Entity
	bySubset map[string][]*Entity
	classes  []string
}

func New() *Registry {
	return &Registry{
		byName:   make(map[string]*Entity),
		byClass:  make(map[string][]*Entity),
		bySubset: make(map[string][]*Entity),
	}
}

// Insert appends an entity. The name must be new and every parent must
// already be present, so references can only point backward in
// declaration order.
func (r *Registry) Insert(e *Entity) error {
	if _, exists := r.byName[e.Name]; exists {
		return ErrDuplicateName.With(slog.String("name", e.Name))
	}

	for _, parent := range e.Parents {
		if _, exists := r.byName[parent]; !exists {
			return ErrUnknownParent.With(
				slog.String("name", e.Name),
				slog.String("parent", parent),
			)
		}
	}

	r.entities = append(r.entities, e)
	r.byName[e.Name] = e

	if _, seen := r.byClass[e.Class]; !seen {
		r.classes = append(r.classes, e.Class)
	}

	r.byClass[e.Class] = append(r.byClass[e.Class], e)

	for _, tag := range e.Subsets {
		r.bySubset[tag] = append(r.bySubset[tag], e)
	}

	return nil
}

// Len returns the number of entities inserted so far.
func (r *Registry) Len() int { return len(r.entities) }

// Entities returns all entities in insertion order. The slice is shared;
// callers must not modify it.
func (r *Registry) Entities() []*Entity { return r.entities }

// Lookup finds an entity by name.
func (r *Registry) Lookup(name string) (*Entity, bool) {
	e, ok := r.byName[name]

	return e, ok
}

// HasClass reports whether any entity of the given class type exists.
func (r *Registry) HasClass(class string) bool {
	return len(r.byClass[class]) > 0
}

// ByClass returns all entities of the given class type in insertion
// order. When tags is non-empty, only entities carrying at least one of
// the tags are returned.
func (r *Registry) ByClass(class string, tags []string) []*Entity {
	all := r.byClass[class]
	if len(tags) == 0 {
		return all
	}

	var out []*Entity

	for _, e := range all {
		if e.HasSubset(tags) {
			out = append(out, e)
		}
	}

	return out
}

// BySubset returns all entities carrying the given tag in insertion
// order.
func (r *Registry) BySubset(tag string) []*Entity {
	return r.bySubset[tag]
}

// Classes returns every class type seen so far, in first-insertion
// order.
func (r *Registry) Classes() []string { return r.classes }
