// Copyright 2017 The Cayley Authors. All rights reserved.
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

package ingest

import (
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
)

var iriType = quad.IRI(rdf.Type).Full()

// Element is one node of a vocabulary document: its identifier, the graph
// it was declared in, its declared types, and every other field as a list
// of values.
type Element struct {
	ID     quad.Value
	Graph  quad.Value
	Types  []quad.IRI
	Fields map[quad.IRI][]quad.Value
}

// HasType reports whether t is among the element's types.
func (e *Element) HasType(t quad.IRI) bool {
	for _, v := range e.Types {
		if v == t {
			return true
		}
	}
	return false
}

// Has reports whether the field is present.
func (e *Element) Has(field quad.IRI) bool {
	return len(e.Fields[field]) != 0
}

// IRIs returns the field values that name a node. Plain string values are
// read as identifiers, other literals are ignored.
func (e *Element) IRIs(field quad.IRI) []quad.IRI {
	vals := e.Fields[field]
	out := make([]quad.IRI, 0, len(vals))
	for _, v := range vals {
		switch v := v.(type) {
		case quad.IRI:
			out = append(out, v.Full())
		case quad.String:
			out = append(out, quad.IRI(v))
		}
	}
	return out
}

func (e *Element) add(pred quad.IRI, val quad.Value) {
	if pred == iriType {
		if t, ok := val.(quad.IRI); ok {
			t = t.Full()
			if !e.HasType(t) {
				e.Types = append(e.Types, t)
			}
			return
		}
	}
	for _, v := range e.Fields[pred] {
		if v == val {
			return
		}
	}
	e.Fields[pred] = append(e.Fields[pred], val)
}

type elementKey struct {
	id, graph quad.Value
}

// Group assembles quads into elements, one per subject and graph, in order
// of first appearance. A subject declared in several graphs gives one
// element per graph. Blank nodes used as the object of another statement
// are nested values, not elements, and are left out.
func Group(quads []quad.Quad) []*Element {
	nested := make(map[quad.BNode]struct{})
	for _, q := range quads {
		if b, ok := q.Object.(quad.BNode); ok {
			nested[b] = struct{}{}
		}
	}
	var (
		out  []*Element
		byID = make(map[elementKey]*Element)
	)
	for _, q := range quads {
		if q.Subject == nil || q.Predicate == nil {
			continue
		}
		id := q.Subject
		switch s := id.(type) {
		case quad.IRI:
			id = s.Full()
		case quad.BNode:
			if _, ok := nested[s]; ok {
				continue
			}
		}
		graph := q.Label
		if g, ok := graph.(quad.IRI); ok {
			graph = g.Full()
		}
		key := elementKey{id: id, graph: graph}
		e := byID[key]
		if e == nil {
			e = &Element{ID: id, Graph: graph, Fields: make(map[quad.IRI][]quad.Value)}
			byID[key] = e
			out = append(out, e)
		}
		pred, ok := q.Predicate.(quad.IRI)
		if !ok {
			continue
		}
		val := q.Object
		if v, ok := val.(quad.IRI); ok {
			val = v.Full()
		}
		e.add(pred.Full(), val)
	}
	return out
}
