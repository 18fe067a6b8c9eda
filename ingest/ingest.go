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

// Package ingest reads a vocabulary snapshot and sorts its elements into
// class and property records.
package ingest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"

	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/internal/snapshot"
	"github.com/cayleygraph/subschema/ontology"
	"github.com/cayleygraph/subschema/voc/schema"
)

var (
	iriProperty       = quad.IRI(rdf.Property).Full()
	iriClass          = quad.IRI(rdfs.Class).Full()
	iriSubClassOf     = quad.IRI(rdfs.SubClassOf).Full()
	iriSupersededBy   = quad.IRI(schema.SupersededBy)
	iriIsPartOf       = quad.IRI(schema.IsPartOf)
	iriDomainIncludes = quad.IRI(schema.DomainIncludes)
	iriRangeIncludes  = quad.IRI(schema.RangeIncludes)
)

// Options controls how a snapshot is read.
type Options struct {
	// Format forces a quad format by name. Empty selects by file extension.
	Format string
	// Namespaces are the extensions whose elements are kept.
	Namespaces ontology.IRISet
	// Contexts maps remote JSON-LD context URLs to local files.
	Contexts map[string]string
	// Cache keeps fetched remote documents. Optional.
	Cache *snapshot.Cache
	// Client is used for remote sources and contexts. Defaults to
	// http.DefaultClient.
	Client *http.Client
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return http.DefaultClient
}

// Graph is the classified content of a snapshot.
type Graph struct {
	Classes     ontology.Classes
	Properties  []*ontology.Property
	Diagnostics *ontology.Diagnostics
}

// Load opens, decodes and classifies the snapshot at src. Any failure to
// read or parse the source is returned; problems with single elements are
// recorded as diagnostics instead.
func Load(ctx context.Context, src string, opts Options) (*Graph, error) {
	f, err := FormatFor(opts.Format, src)
	if err != nil {
		return nil, err
	}
	rc, err := Open(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	quads, err := Decode(rc, f, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", src, err)
	}
	if clog.V(1) {
		clog.Infof("read %d quads from %q as %s", len(quads), src, f.Name)
	}
	return FromQuads(quads, opts.Namespaces), nil
}

// FromQuads groups quads into elements and classifies them.
func FromQuads(quads []quad.Quad, allowed ontology.IRISet) *Graph {
	return Classify(Group(quads), allowed)
}

// Classify sorts elements into classes and properties. In order, an element
// is dropped when it has no identifier or no type, skipped when it has been
// superseded, skipped when it belongs to an extension outside allowed, and
// otherwise kept as a property or a class by its declared types. Each
// element is judged on its own; the records of a term declared by several
// kept elements are unioned.
func Classify(elems []*Element, allowed ontology.IRISet) *Graph {
	g := &Graph{
		Classes:     make(ontology.Classes),
		Diagnostics: ontology.NewDiagnostics(),
	}
	props := make(map[quad.IRI]*ontology.Property)
	mElements.Add(float64(len(elems)))
	for _, e := range elems {
		id, ok := e.ID.(quad.IRI)
		if !ok || len(e.Types) == 0 {
			g.Diagnostics.Add(ontology.NewMalformedElement(subjectString(e.ID)))
			clog.Warningf("dropping element %s: no identifier or no type", subjectString(e.ID))
			mDropped.WithLabelValues("malformed").Inc()
			continue
		}
		if e.Has(iriSupersededBy) {
			mDropped.WithLabelValues("superseded").Inc()
			continue
		}
		skip := false
		for _, ns := range e.IRIs(iriIsPartOf) {
			if !allowed.Has(ns) {
				g.Diagnostics.Add(ontology.NewSkippedNamespace(ns))
				skip = true
			}
		}
		if skip {
			mDropped.WithLabelValues("namespace").Inc()
			continue
		}
		switch {
		case e.HasType(iriProperty):
			// declarations in other graphs add to domain and range
			if p, ok := props[id]; ok {
				for _, d := range e.IRIs(iriDomainIncludes) {
					p.Domain.Add(d)
				}
				for _, r := range e.IRIs(iriRangeIncludes) {
					p.Range.Add(r)
				}
				continue
			}
			p := ontology.NewProperty(id, e.IRIs(iriDomainIncludes), e.IRIs(iriRangeIncludes))
			props[id] = p
			g.Properties = append(g.Properties, p)
		case e.HasType(iriClass):
			// a later declaration of the same class adds to its parents
			if c, ok := g.Classes[id]; ok {
				for _, s := range e.IRIs(iriSubClassOf) {
					c.Super.Add(s)
				}
				continue
			}
			g.Classes[id] = ontology.NewClass(id, e.IRIs(iriSubClassOf)...)
		default:
			for _, t := range e.Types {
				g.Diagnostics.Add(ontology.NewIgnoredType(t))
			}
			mDropped.WithLabelValues("ignored_type").Inc()
		}
	}
	ontology.SortProperties(g.Properties)
	mClasses.Add(float64(len(g.Classes)))
	mProperties.Add(float64(len(g.Properties)))
	if clog.V(1) {
		clog.Infof("classified %d elements: %d classes, %d properties", len(elems), len(g.Classes), len(g.Properties))
	}
	return g
}

func subjectString(v quad.Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.String()
}
