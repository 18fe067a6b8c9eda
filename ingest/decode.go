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
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"
	"github.com/piprate/json-gold/ld"

	"github.com/cayleygraph/subschema/internal/decompressor"
	"github.com/cayleygraph/subschema/voc/xsd"
)

// JSONLD is the name of the format vocabulary snapshots are published in.
const JSONLD = "jsonld"

var ErrUnknownFormat = errors.New("ingest: unknown format")

// FormatFor selects the quad format for a source. An explicit name wins;
// otherwise the file extension of src decides, ignoring a compression
// suffix. Sources without a known extension are read as JSON-LD.
func FormatFor(name, src string) (*quad.Format, error) {
	if name != "" {
		f := quad.FormatByName(name)
		if f == nil {
			return nil, fmt.Errorf("%w %q", ErrUnknownFormat, name)
		}
		return f, nil
	}
	p := src
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := path.Ext(p)
	for _, c := range []decompressor.Compression{decompressor.Gzip, decompressor.Bzip2} {
		if ext == c.Ext() {
			ext = path.Ext(strings.TrimSuffix(p, ext))
		}
	}
	if f := quad.FormatByExt(ext); f != nil {
		return f, nil
	}
	return quad.FormatByName(JSONLD), nil
}

// Decode reads all quads from r. JSON-LD is expanded with the options'
// context mappings; other formats use their registered reader.
func Decode(r io.Reader, f *quad.Format, opts Options) ([]quad.Quad, error) {
	if f == nil {
		return nil, ErrUnknownFormat
	}
	if f.Name == JSONLD {
		return decodeJSONLD(r, opts)
	}
	if f.Reader == nil {
		return nil, fmt.Errorf("decoding of %q is not supported", f.Name)
	}
	qr := f.Reader(r)
	defer qr.Close()
	quads, err := quad.ReadAll(qr)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %v", f.Name, err)
	}
	return quads, nil
}

func decodeJSONLD(r io.Reader, opts Options) ([]quad.Quad, error) {
	doc, err := ld.DocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot parse JSON-LD: %v", err)
	}
	loader := ld.NewCachingDocumentLoader(ld.NewDefaultDocumentLoader(opts.client()))
	if len(opts.Contexts) != 0 {
		if err := loader.PreloadWithMapping(opts.Contexts); err != nil {
			return nil, fmt.Errorf("cannot preload JSON-LD contexts: %v", err)
		}
	}
	ldopts := ld.NewJsonLdOptions("")
	ldopts.DocumentLoader = loader
	out, err := ld.NewJsonLdProcessor().ToRDF(doc, ldopts)
	if err != nil {
		return nil, fmt.Errorf("cannot expand JSON-LD: %v", err)
	}
	ds, ok := out.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("unexpected JSON-LD expansion result: %T", out)
	}
	return datasetQuads(ds), nil
}

// datasetQuads flattens all graphs of ds, the default graph first and named
// graphs in label order.
func datasetQuads(ds *ld.RDFDataset) []quad.Quad {
	names := make([]string, 0, len(ds.Graphs))
	for name := range ds.Graphs {
		if name != "@default" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	names = append([]string{"@default"}, names...)

	var out []quad.Quad
	for _, name := range names {
		var label quad.Value
		if name != "@default" {
			label = fromLabel(name)
		}
		for _, q := range ds.Graphs[name] {
			out = append(out, quad.Quad{
				Subject:   fromNode(q.Subject),
				Predicate: fromNode(q.Predicate),
				Object:    fromNode(q.Object),
				Label:     label,
			})
		}
	}
	return out
}

func fromLabel(name string) quad.Value {
	if strings.HasPrefix(name, "_:") {
		return quad.BNode(name[2:])
	}
	return quad.IRI(name)
}

var xsdString = quad.IRI(xsd.String).Full()

func fromNode(n ld.Node) quad.Value {
	switch n := n.(type) {
	case *ld.IRI:
		return quad.IRI(n.Value)
	case *ld.BlankNode:
		return quad.BNode(strings.TrimPrefix(n.Attribute, "_:"))
	case *ld.Literal:
		if n.Language != "" {
			return quad.LangString{Value: quad.String(n.Value), Lang: n.Language}
		}
		if n.Datatype != "" && quad.IRI(n.Datatype) != xsdString {
			return quad.TypedString{Value: quad.String(n.Value), Type: quad.IRI(n.Datatype)}
		}
		return quad.String(n.Value)
	case nil:
		return nil
	}
	return quad.String(n.GetValue())
}
