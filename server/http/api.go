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

// Package schemahttp serves a derived vocabulary subset over HTTP.
package schemahttp

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/cayleygraph/quad"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cayleygraph/subschema"
	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/exporter"
	"github.com/cayleygraph/subschema/inference"
	"github.com/cayleygraph/subschema/ontology"
	"github.com/cayleygraph/subschema/projection"
)

const prefix = "/api/v1"

// API serves one build result. The result can be replaced while serving.
type API struct {
	mu      sync.RWMutex
	res     *subschema.Result
	hier    *inference.Store
	handler http.Handler
}

// NewAPI creates a handler with all routes registered, each wrapped in the
// given handlers.
func NewAPI(res *subschema.Result, wrappers ...Handler) *API {
	r := httprouter.New()
	api := &API{handler: r}
	api.SetResult(res)
	api.RegisterOn(r, wrappers...)
	return api
}

// SetResult replaces the served result.
func (api *API) SetResult(res *subschema.Result) {
	hier := res.Hierarchy()
	api.mu.Lock()
	api.res, api.hier = res, hier
	api.mu.Unlock()
}

func (api *API) result() (*subschema.Result, *inference.Store) {
	api.mu.RLock()
	defer api.mu.RUnlock()
	return api.res, api.hier
}

func (api *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.handler.ServeHTTP(w, r)
}

// RegisterOn adds the API routes to r.
func (api *API) RegisterOn(r *httprouter.Router, wrappers ...Handler) {
	wrap := func(h httprouter.Handle) httprouter.Handle {
		for i := len(wrappers) - 1; i >= 0; i-- {
			h = wrappers[i](h)
		}
		return h
	}
	r.GET(prefix+"/classes", wrap(api.ServeClasses))
	r.GET(prefix+"/properties", wrap(api.ServeProperties))
	r.GET(prefix+"/property", wrap(api.ServeProperty))
	r.GET(prefix+"/diagnostics", wrap(api.ServeDiagnostics))
	r.GET(prefix+"/schema", wrap(api.ServeSchema))
	r.GET(prefix+"/formats", wrap(api.ServeFormats))
	r.GET("/health", HandleHealth)
	r.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	r.OPTIONS("/*path", HandlePreflight)
}

// parseIRI accepts an identifier as a full IRI, in angle brackets, or in a
// registered prefixed form.
func parseIRI(s string) quad.IRI {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	return quad.IRI(s).Full()
}

type classInfo struct {
	ID         quad.IRI   `json:"id"`
	Undeclared bool       `json:"undeclared,omitempty"`
	Super      []quad.IRI `json:"super,omitempty"`
	Sub        []quad.IRI `json:"sub,omitempty"`
}

func names(list []*inference.Class) []quad.IRI {
	out := make([]quad.IRI, 0, len(list))
	for _, c := range list {
		out = append(out, c.Name())
	}
	return out
}

// ServeClasses lists retained classes with their retained parents and
// children. With "under", only that class and its descendants are listed.
func (api *API) ServeClasses(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, hier := api.result()
	ids := res.Allowed
	if s := r.FormValue("under"); s != "" {
		root := parseIRI(s)
		if !res.Allowed.Has(root) {
			jsonResponse(w, http.StatusNotFound, fmt.Sprintf("class %s is not retained", root))
			return
		}
		ids = hier.Descendants(ontology.NewIRISet(root))
	}
	out := make([]classInfo, 0, ids.Len())
	for _, id := range ids.Sorted() {
		info := classInfo{ID: id, Undeclared: true}
		if c := hier.GetClass(id); c != nil {
			// roots are kept even when the vocabulary does not declare them
			info.Undeclared = !c.Declared()
			info.Super = names(c.SuperClasses())
			info.Sub = names(c.SubClasses())
		}
		out = append(out, info)
	}
	writeResults(w, out)
}

// ServeProperties lists projected properties. With "domain", only
// properties whose retained domain includes that class are listed.
func (api *API) ServeProperties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, _ := api.result()
	out := make([]*projection.Property, 0, len(res.Properties))
	var domain quad.IRI
	if s := r.FormValue("domain"); s != "" {
		domain = parseIRI(s)
	}
	for _, p := range res.Properties {
		if domain != "" && !p.Domain.Has(domain) {
			continue
		}
		out = append(out, p)
	}
	writeResults(w, out)
}

// ServeProperty returns the property named by the "id" parameter.
func (api *API) ServeProperty(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s := r.FormValue("id")
	if s == "" {
		jsonResponse(w, http.StatusBadRequest, "missing id parameter")
		return
	}
	res, _ := api.result()
	p := res.Property(parseIRI(s))
	if p == nil {
		jsonResponse(w, http.StatusNotFound, fmt.Sprintf("property %s is not projected", parseIRI(s)))
		return
	}
	writeResults(w, p)
}

// ServeDiagnostics lists warnings, optionally of a single "kind".
func (api *API) ServeDiagnostics(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res, _ := api.result()
	list := res.Diagnostics.List()
	if s := r.FormValue("kind"); s != "" {
		k, ok := ontology.ParseKind(s)
		if !ok {
			jsonResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown diagnostic kind %q", s))
			return
		}
		list = res.Diagnostics.Of(k)
	}
	if list == nil {
		list = []ontology.Diagnostic{}
	}
	writeResults(w, list)
}

// ServeSchema writes the subset as quads in the negotiated format.
func (api *API) ServeSchema(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	format := getFormat(r, "format", hdrAccept)
	if format == nil || format.Writer == nil {
		jsonResponse(w, http.StatusBadRequest, "format is not supported for writing")
		return
	}
	res, _ := api.result()
	if len(format.Mime) != 0 {
		w.Header().Set(hdrContentType, format.Mime[0])
	}
	wr := writerFrom(w, r, hdrAcceptEncoding)
	cw := &checkWriter{w: wr}
	_, err := exporter.WriteQuads(cw, format, res)
	if err != nil && !cw.written {
		// nothing reached wr, so it is dropped without a gzip footer
		w.Header().Del(hdrContentEncoding)
		jsonResponse(w, http.StatusInternalServerError, err)
		return
	} else if err != nil {
		// headers are already sent
		clog.Errorf("write schema error: %v", err)
	}
	if err := wr.Close(); err != nil {
		clog.Errorf("write schema error: %v", err)
	}
}

// ServeFormats lists the formats ServeSchema can produce.
func (api *API) ServeFormats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	type Format struct {
		ID     string   `json:"id"`
		Ext    []string `json:"ext,omitempty"`
		Mime   []string `json:"mime,omitempty"`
		Binary bool     `json:"binary,omitempty"`
	}
	var out []Format
	for _, f := range quad.Formats() {
		if f.Writer == nil {
			continue
		}
		out = append(out, Format{ID: f.Name, Ext: f.Ext, Mime: f.Mime, Binary: f.Binary})
	}
	writeResults(w, out)
}
