// Package inference derives the part of a vocabulary that is reachable from
// a set of root classes, and indexes the subclass hierarchy of a vocabulary.
//
// The derivation follows RDFS rule 11 restricted to the roots: any class
// that declares a superclass already kept is kept as well, until nothing
// changes.
package inference

import (
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/subschema/ontology"
)

// Closure returns the smallest superset of roots that also contains every
// class declaring a superclass inside the set.
//
// Roots are always members, declared or not. Superclasses that are not
// declared in classes never cause growth, and subclass cycles terminate
// because the result only grows.
func Closure(classes ontology.Classes, roots ontology.IRISet) ontology.IRISet {
	allowed := roots.Clone()
	for changed := true; changed; {
		changed = false
		for id, c := range classes {
			if allowed.Has(id) {
				continue
			}
			if c.Super.Intersects(allowed) {
				allowed.Add(id)
				changed = true
			}
		}
	}
	return allowed
}

// Class is a node of the subclass hierarchy.
type Class struct {
	name     quad.IRI
	declared bool
	super    map[*Class]struct{}
	sub      map[*Class]struct{}
}

func newClass(name quad.IRI) *Class {
	return &Class{
		name:  name,
		super: map[*Class]struct{}{},
		sub:   map[*Class]struct{}{},
	}
}

// Name returns the class's name
func (class *Class) Name() quad.IRI {
	return class.name
}

// Declared reports whether the class has its own record, as opposed to only
// being referenced as a superclass.
func (class *Class) Declared() bool {
	return class.declared
}

// IsSubClassOf checks whether superClass is reachable through declared
// superclass links. Every class is a subclass of itself.
func (class *Class) IsSubClassOf(superClass *Class) bool {
	if class == superClass {
		return true
	}
	seen := map[*Class]struct{}{class: {}}
	next := []*Class{class}
	for len(next) > 0 {
		c := next[len(next)-1]
		next = next[:len(next)-1]
		for s := range c.super {
			if s == superClass {
				return true
			}
			if _, ok := seen[s]; !ok {
				seen[s] = struct{}{}
				next = append(next, s)
			}
		}
	}
	return false
}

// SuperClasses returns the direct superclasses, sorted by name.
func (class *Class) SuperClasses() []*Class {
	return sortedClasses(class.super)
}

// SubClasses returns the direct subclasses, sorted by name.
func (class *Class) SubClasses() []*Class {
	return sortedClasses(class.sub)
}

func sortedClasses(m map[*Class]struct{}) []*Class {
	out := make([]*Class, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// Store is an index of the subclass hierarchy.
type Store struct {
	classes map[quad.IRI]*Class
}

// NewStore indexes the hierarchy declared by classes. Superclasses without
// their own record get an undeclared node.
func NewStore(classes ontology.Classes) *Store {
	store := &Store{classes: map[quad.IRI]*Class{}}
	for _, id := range classes.IDs() {
		store.addClass(id).declared = true
		for s := range classes[id].Super {
			store.addClassRelationship(id, s)
		}
	}
	return store
}

// GetClass returns a class struct for class name, if it doesn't exist in the store then it returns nil
func (store *Store) GetClass(name quad.IRI) *Class {
	return store.classes[name]
}

func (store *Store) addClass(name quad.IRI) *Class {
	if c, ok := store.classes[name]; ok {
		return c
	}
	c := newClass(name)
	store.classes[name] = c
	return c
}

func (store *Store) addClassRelationship(child, parent quad.IRI) {
	parentClass := store.addClass(parent)
	childClass := store.addClass(child)
	if _, ok := parentClass.sub[childClass]; !ok {
		parentClass.sub[childClass] = struct{}{}
		childClass.super[parentClass] = struct{}{}
	}
}

// Descendants walks subclass links down from roots and returns every class
// reached, roots included. On the same input it yields the same set as
// Closure.
func (store *Store) Descendants(roots ontology.IRISet) ontology.IRISet {
	out := roots.Clone()
	var next []*Class
	for id := range roots {
		if c := store.classes[id]; c != nil {
			next = append(next, c)
		}
	}
	for len(next) > 0 {
		c := next[len(next)-1]
		next = next[:len(next)-1]
		for s := range c.sub {
			if out.Add(s.name) {
				next = append(next, s)
			}
		}
	}
	return out
}

// Restrict returns a new store that only holds the classes in allowed and
// the subclass links between them.
func (store *Store) Restrict(allowed ontology.IRISet) *Store {
	out := &Store{classes: map[quad.IRI]*Class{}}
	for id := range allowed {
		c := store.classes[id]
		n := out.addClass(id)
		if c == nil {
			continue
		}
		n.declared = c.declared
		for s := range c.super {
			if allowed.Has(s.name) {
				out.addClassRelationship(id, s.name)
			}
		}
	}
	return out
}

// Roots returns the classes of the store that have no superclass in it,
// sorted by name.
func (store *Store) Roots() []*Class {
	m := map[*Class]struct{}{}
	for _, c := range store.classes {
		if len(c.super) == 0 {
			m[c] = struct{}{}
		}
	}
	return sortedClasses(m)
}
