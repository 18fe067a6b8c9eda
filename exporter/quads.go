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

// Package exporter renders build results as RDF quads, JSON or a text report.
package exporter

import (
	"errors"
	"fmt"
	"io"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"
	_ "github.com/cayleygraph/quad/pquads"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"

	"github.com/cayleygraph/subschema"
	"github.com/cayleygraph/subschema/owl"
	"github.com/cayleygraph/subschema/voc/schema"
)

// DefaultFormat is used when neither a format name nor a known file
// extension is given.
const DefaultFormat = "nquads"

var ErrNoWriter = errors.New("exporter: format cannot be written")

var (
	iriType       = quad.IRI(rdf.Type).Full()
	iriProperty   = quad.IRI(rdf.Property).Full()
	iriSubClassOf = quad.IRI(rdfs.SubClassOf).Full()
	iriDomain     = quad.IRI(rdfs.Domain).Full()
	iriRange      = quad.IRI(rdfs.Range).Full()
)

// Quads describes res as an OWL ontology: one owl:Class per retained class
// with its retained parents, and one property per projected property. A
// property with object values is an owl:ObjectProperty, one with datatype
// values an owl:DatatypeProperty, and a mixed one is both. Prefixed tags,
// such as xsd:string or owl:NamedIndividual, are expanded to full IRIs.
func Quads(res *subschema.Result) []quad.Quad {
	var out []quad.Quad
	add := func(s, p quad.IRI, o quad.Value) {
		out = append(out, quad.Quad{Subject: s, Predicate: p, Object: o})
	}
	ont := quad.IRI(schema.NS)
	add(ont, iriType, quad.IRI(owl.Ontology))
	if res.Version != "" {
		add(ont, quad.IRI(owl.VersionInfo), quad.String(res.Version))
	}

	h := res.Hierarchy()
	for _, id := range res.Allowed.Sorted() {
		add(id, iriType, quad.IRI(owl.Class))
		c := h.GetClass(id)
		if c == nil {
			continue
		}
		for _, s := range c.SuperClasses() {
			add(id, iriSubClassOf, s.Name())
		}
	}

	for _, p := range res.Properties {
		switch {
		case p.Objects.Len() != 0 || p.Datatypes.Len() != 0:
			if p.Objects.Len() != 0 {
				add(p.ID, iriType, quad.IRI(owl.ObjectProperty))
			}
			if p.Datatypes.Len() != 0 {
				add(p.ID, iriType, quad.IRI(owl.DatatypeProperty))
			}
		default:
			add(p.ID, iriType, iriProperty)
		}
		for _, d := range p.Domain.Sorted() {
			add(p.ID, iriDomain, d)
		}
		for _, v := range p.Objects.Sorted() {
			add(p.ID, iriRange, quad.IRI(v).Full())
		}
		for _, v := range p.Datatypes.Sorted() {
			add(p.ID, iriRange, quad.IRI(v).Full())
		}
	}
	return out
}

// FormatFor picks an output format by name, then by file extension, then
// falls back to DefaultFormat.
func FormatFor(name, ext string) (*quad.Format, error) {
	if name == "" {
		if f := quad.FormatByExt(ext); f != nil {
			return f, nil
		}
		name = DefaultFormat
	}
	f := quad.FormatByName(name)
	if f == nil {
		return nil, fmt.Errorf("unsupported format: %q", name)
	} else if f.Writer == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoWriter, name)
	}
	return f, nil
}

// WriteQuads encodes res in format f and returns the number of quads
// written.
func WriteQuads(w io.Writer, f *quad.Format, res *subschema.Result) (int, error) {
	if f.Writer == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoWriter, f.Name)
	}
	qw := f.Writer(w)
	n, err := quad.Copy(qw, quad.NewReader(Quads(res)))
	if err != nil {
		qw.Close()
		return n, err
	}
	return n, qw.Close()
}
