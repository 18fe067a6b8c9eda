// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ontology defines the typed records that describe a class/property
// vocabulary once it has been read from its source graph.
//
// Records are created by the ingestion step and are never modified
// afterwards; the closure and projection steps only read them.
package ontology

import (
	"sort"

	"github.com/cayleygraph/quad"
)

// Class is a vocabulary class with its declared superclasses.
type Class struct {
	ID    quad.IRI
	Super IRISet
}

// NewClass creates a class record. The superclass list is copied.
func NewClass(id quad.IRI, super ...quad.IRI) *Class {
	return &Class{ID: id, Super: NewIRISet(super...)}
}

// Property is a vocabulary property with its declared domain and range.
type Property struct {
	ID     quad.IRI
	Domain IRISet
	Range  IRISet
}

// NewProperty creates a property record from domain and range lists.
func NewProperty(id quad.IRI, domain, rng []quad.IRI) *Property {
	return &Property{ID: id, Domain: NewIRISet(domain...), Range: NewIRISet(rng...)}
}

// Classes indexes class records by identifier.
type Classes map[quad.IRI]*Class

// NewClasses indexes the given records. Later records replace earlier ones
// with the same identifier.
func NewClasses(list ...*Class) Classes {
	m := make(Classes, len(list))
	for _, c := range list {
		m[c.ID] = c
	}
	return m
}

// Has reports whether id is a declared class.
func (m Classes) Has(id quad.IRI) bool {
	_, ok := m[id]
	return ok
}

// IDs returns all class identifiers in lexical order.
func (m Classes) IDs() []quad.IRI {
	out := make([]quad.IRI, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SortProperties orders properties by identifier, in place.
func SortProperties(props []*Property) {
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
}

// DatatypeMap maps a vocabulary data type to a primitive datatype tag,
// for example schema:Text to "xsd:string".
type DatatypeMap map[quad.IRI]string

// Lookup returns the tag for id, if id is a known data type.
func (m DatatypeMap) Lookup(id quad.IRI) (string, bool) {
	tag, ok := m[id]
	return tag, ok
}

// Clone returns a copy of m.
func (m DatatypeMap) Clone() DatatypeMap {
	out := make(DatatypeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
