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

// Package projection re-targets vocabulary properties onto a retained set
// of classes.
//
// Each property whose domain meets the retained set is kept, and every term
// of its range is classified as a primitive datatype, a retained class, the
// universal "any object" sentinel, or an unknown term. Anomalies are
// reported as ontology.Diagnostic values; nothing in this package fails.
package projection

import (
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"golang.org/x/sync/errgroup"

	"github.com/cayleygraph/subschema/ontology"
)

// Policy decides what happens to a property whose domain has no retained
// class.
type Policy int

const (
	// PolicyStrict drops the property.
	PolicyStrict Policy = iota
	// PolicyRetainUnmatched keeps the property with an empty domain.
	PolicyRetainUnmatched
)

var policyNames = []string{
	PolicyStrict:          "strict",
	PolicyRetainUnmatched: "retain-unmatched",
}

func (p Policy) String() string {
	if int(p) >= 0 && int(p) < len(policyNames) {
		return policyNames[p]
	}
	return fmt.Sprintf("policy(%d)", int(p))
}

// ParsePolicy returns the policy with the given name. An empty name selects
// PolicyStrict.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "strict":
		return PolicyStrict, nil
	case "retain-unmatched", "retain_unmatched":
		return PolicyRetainUnmatched, nil
	}
	return 0, fmt.Errorf("unknown inclusion policy %q", name)
}

// Params holds the fixed inputs of a projection.
type Params struct {
	Datatypes         ontology.DatatypeMap
	UniversalRoot     quad.IRI
	UniversalSentinel string
	Policy            Policy
	// Workers bounds the number of properties projected concurrently.
	// Values below 2 project sequentially.
	Workers int
}

// Property is a vocabulary property re-targeted onto the retained classes.
type Property struct {
	ID quad.IRI `json:"id"`
	// Domain is the part of the declared domain that was retained.
	Domain ontology.IRISet `json:"domain"`
	// Datatypes holds primitive datatype tags.
	Datatypes ontology.StringSet `json:"datatype_range"`
	// Objects holds retained class identifiers and, possibly, the universal
	// sentinel.
	Objects ontology.StringSet `json:"object_range"`
}

// IsMixed reports whether the property accepts both datatype and object values.
func (p *Property) IsMixed() bool {
	return p.Datatypes.Len() != 0 && p.Objects.Len() != 0
}

// Result is the outcome of Project.
type Result struct {
	// Properties are sorted by identifier.
	Properties  []*Property
	Excluded    int
	Diagnostics *ontology.Diagnostics
}

// Project re-targets props onto closure.
//
// The output only depends on the inputs, never on the number of workers or
// the order of props.
func Project(props []*ontology.Property, closure ontology.IRISet, classes ontology.Classes, p Params) *Result {
	out := make([]*Property, len(props))
	diags := make([][]ontology.Diagnostic, len(props))
	project := func(i int) {
		out[i], diags[i] = projectOne(props[i], closure, classes, p)
	}
	if p.Workers < 2 || len(props) < 2 {
		for i := range props {
			project(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(p.Workers)
		for i := range props {
			i := i
			g.Go(func() error {
				project(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	res := &Result{Diagnostics: &ontology.Diagnostics{}}
	for i, prop := range out {
		for _, d := range diags[i] {
			res.Diagnostics.Add(d)
		}
		if prop == nil {
			res.Excluded++
			continue
		}
		res.Properties = append(res.Properties, prop)
	}
	sortProperties(res.Properties)
	observe(res)
	return res
}

func projectOne(prop *ontology.Property, closure ontology.IRISet, classes ontology.Classes, p Params) (*Property, []ontology.Diagnostic) {
	domain := prop.Domain.Intersect(closure)
	if domain.Len() == 0 && p.Policy != PolicyRetainUnmatched {
		return nil, nil
	}
	out := &Property{
		ID:        prop.ID,
		Domain:    domain,
		Datatypes: ontology.StringSet{},
		Objects:   ontology.StringSet{},
	}
	var diags []ontology.Diagnostic
	for _, r := range prop.Range.Sorted() {
		t := Classify(r, closure, classes, p)
		switch t.Kind {
		case TermDatatype:
			out.Datatypes.Add(t.Value)
		case TermUniversal, TermObject:
			out.Objects.Add(t.Value)
		default:
			diags = append(diags, ontology.NewUnknownRange(prop.ID, r))
		}
	}
	if out.IsMixed() {
		diags = append(diags, ontology.NewMixedRange(prop.ID))
	}
	return out, diags
}
