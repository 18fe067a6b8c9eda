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

package ontology

import (
	"encoding/json"
	"sort"

	"github.com/cayleygraph/quad"
)

// IRISet is an unordered set of identifiers.
//
// A nil IRISet is a valid empty set for reading.
type IRISet map[quad.IRI]struct{}

// NewIRISet returns a set holding the given identifiers.
func NewIRISet(ids ...quad.IRI) IRISet {
	s := make(IRISet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts id and reports whether it was not present before.
func (s IRISet) Add(id quad.IRI) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Has reports whether id is a member of s.
func (s IRISet) Has(id quad.IRI) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of members.
func (s IRISet) Len() int { return len(s) }

// Intersects reports whether s and o share at least one member.
func (s IRISet) Intersects(o IRISet) bool {
	a, b := s, o
	if len(b) < len(a) {
		a, b = b, a
	}
	for id := range a {
		if b.Has(id) {
			return true
		}
	}
	return false
}

// Intersect returns a new set with the members found in both s and o.
func (s IRISet) Intersect(o IRISet) IRISet {
	out := make(IRISet)
	for id := range s {
		if o.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Clone returns a copy of s that shares no storage with it.
func (s IRISet) Clone() IRISet {
	out := make(IRISet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Equal reports whether both sets have the same members.
func (s IRISet) Equal(o IRISet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if !o.Has(id) {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexical order.
func (s IRISet) Sorted() []quad.IRI {
	out := make([]quad.IRI, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s IRISet) MarshalJSON() ([]byte, error) {
	ids := s.Sorted()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return json.Marshal(out)
}

// StringSet is an unordered set of plain strings, used for datatype tags and
// for object ranges that mix identifiers with the universal sentinel.
type StringSet map[string]struct{}

// NewStringSet returns a set holding the given strings.
func NewStringSet(vals ...string) StringSet {
	s := make(StringSet, len(vals))
	for _, v := range vals {
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) Add(v string) { s[v] = struct{}{} }

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s StringSet) Len() int { return len(s) }

func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}
