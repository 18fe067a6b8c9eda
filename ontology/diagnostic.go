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
	"fmt"
	"sort"
	"sync"

	"github.com/cayleygraph/quad"
)

// Kind identifies the anomaly a Diagnostic reports.
type Kind int

const (
	// SkippedNamespace: an element belonged to an extension that is not allowed.
	SkippedNamespace Kind = iota + 1
	// IgnoredType: an element was neither a class nor a property.
	IgnoredType
	// UnknownRange: a range term is neither a data type nor a retained class.
	UnknownRange
	// MixedRange: a property accepts both data type and object values.
	MixedRange
	// MalformedElement: an element had no identifier or no declared type.
	MalformedElement
)

var kindNames = map[Kind]string{
	SkippedNamespace: "skipped_namespace",
	IgnoredType:      "ignored_type",
	UnknownRange:     "unknown_range",
	MixedRange:       "mixed_range",
	MalformedElement: "malformed_element",
}

// Kinds lists every diagnostic kind in declaration order.
func Kinds() []Kind {
	return []Kind{SkippedNamespace, IgnoredType, UnknownRange, MixedRange, MalformedElement}
}

// ParseKind returns the kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, s := range kindNames {
		if s == name {
			return k, true
		}
	}
	return 0, false
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Diagnostic is a non-fatal warning produced while reading or projecting
// the vocabulary.
//
// Subject is the namespace, type, property or element the warning is about.
// Term is only set for UnknownRange and holds the offending range term.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject"`
	Term    string `json:"term,omitempty"`
}

func NewSkippedNamespace(ns quad.IRI) Diagnostic {
	return Diagnostic{Kind: SkippedNamespace, Subject: string(ns)}
}

func NewIgnoredType(typ quad.IRI) Diagnostic {
	return Diagnostic{Kind: IgnoredType, Subject: string(typ)}
}

func NewUnknownRange(prop, rng quad.IRI) Diagnostic {
	return Diagnostic{Kind: UnknownRange, Subject: string(prop), Term: string(rng)}
}

func NewMixedRange(prop quad.IRI) Diagnostic {
	return Diagnostic{Kind: MixedRange, Subject: string(prop)}
}

// NewMalformedElement records an element that could not be typed. The
// subject is whatever identifies the element in its source, possibly a
// blank node label.
func NewMalformedElement(subject string) Diagnostic {
	return Diagnostic{Kind: MalformedElement, Subject: subject}
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case SkippedNamespace:
		return fmt.Sprintf("extension has been ignored: %s", d.Subject)
	case IgnoredType:
		return fmt.Sprintf("elements of this type have been ignored: %s", d.Subject)
	case UnknownRange:
		return fmt.Sprintf("%s: unknown range: %s", d.Subject, d.Term)
	case MixedRange:
		return fmt.Sprintf("datatype and object range: %s", d.Subject)
	case MalformedElement:
		return fmt.Sprintf("element without type or identifier: %s", d.Subject)
	}
	return fmt.Sprintf("%v: %s %s", d.Kind, d.Subject, d.Term)
}

func (d Diagnostic) less(o Diagnostic) bool {
	if d.Kind != o.Kind {
		return d.Kind < o.Kind
	}
	if d.Subject != o.Subject {
		return d.Subject < o.Subject
	}
	return d.Term < o.Term
}

// Diagnostics collects warnings. Identical warnings are kept once.
//
// The zero value is ready to use and safe for concurrent use.
type Diagnostics struct {
	mu   sync.Mutex
	seen map[Diagnostic]struct{}
	list []Diagnostic
}

// NewDiagnostics returns a collector holding the given warnings.
func NewDiagnostics(list ...Diagnostic) *Diagnostics {
	d := &Diagnostics{}
	for _, x := range list {
		d.Add(x)
	}
	return d
}

// Add records d and reports whether it was not recorded before.
func (c *Diagnostics) Add(d Diagnostic) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen == nil {
		c.seen = make(map[Diagnostic]struct{})
	}
	if _, ok := c.seen[d]; ok {
		return false
	}
	c.seen[d] = struct{}{}
	c.list = append(c.list, d)
	return true
}

// Merge adds every warning of o, in o's insertion order.
func (c *Diagnostics) Merge(o *Diagnostics) {
	if o == nil || o == c {
		return
	}
	o.mu.Lock()
	list := make([]Diagnostic, len(o.list))
	copy(list, o.list)
	o.mu.Unlock()
	for _, d := range list {
		c.Add(d)
	}
}

// Len returns the number of distinct warnings.
func (c *Diagnostics) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.list)
}

// Count returns the number of distinct warnings of the given kind.
func (c *Diagnostics) Count(kind Kind) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, d := range c.list {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// List returns a sorted copy of all warnings.
func (c *Diagnostics) List() []Diagnostic {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	out := make([]Diagnostic, len(c.list))
	copy(out, c.list)
	c.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

// Of returns the sorted warnings of one kind.
func (c *Diagnostics) Of(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.List() {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func (c *Diagnostics) MarshalJSON() ([]byte, error) {
	list := c.List()
	if list == nil {
		list = []Diagnostic{}
	}
	return json.Marshal(list)
}
