// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package subschema derives a self-contained subset of a schema.org-style
// vocabulary: the classes reachable from a set of root classes, and every
// property re-targeted onto those classes.
package subschema

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/config"
	"github.com/cayleygraph/subschema/inference"
	"github.com/cayleygraph/subschema/ingest"
	"github.com/cayleygraph/subschema/internal/snapshot"
	"github.com/cayleygraph/subschema/ontology"
	"github.com/cayleygraph/subschema/projection"
)

var (
	mBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "subschema_build_duration_seconds",
		Help:    "Time spent on a complete build, ingestion included.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
	})
	mAllowed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "subschema_allowed_classes",
		Help: "Number of classes retained by the last build.",
	})
)

// Result is a derived vocabulary subset.
type Result struct {
	Version string `json:"version"`
	Source  string `json:"source"`
	// Classes are all classes read from the source, retained or not.
	Classes ontology.Classes `json:"-"`
	// Allowed is the closure of the root classes.
	Allowed     ontology.IRISet        `json:"classes"`
	Properties  []*projection.Property `json:"properties"`
	Excluded    int                    `json:"excluded"`
	Diagnostics *ontology.Diagnostics  `json:"diagnostics"`
	// Snapshot describes the cached copy of a remote source, if any.
	Snapshot *snapshot.Meta `json:"snapshot,omitempty"`
}

// Property returns the projected property with the given identifier.
func (r *Result) Property(id quad.IRI) *projection.Property {
	for _, p := range r.Properties {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Hierarchy returns the subclass relation between retained classes.
func (r *Result) Hierarchy() *inference.Store {
	return inference.NewStore(r.Classes).Restrict(r.Allowed)
}

type options struct {
	client  *http.Client
	cache   *snapshot.Cache
	refetch bool
}

// Option customizes Build.
type Option func(*options)

// WithHTTPClient sets the client used to fetch remote sources and contexts.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.client = c }
}

// WithCache sets the snapshot cache, overriding the configured one. The
// caller keeps ownership of c.
func WithCache(c *snapshot.Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithRefetch drops the cached copy of the source before reading it, so a
// remote source is downloaded again.
func WithRefetch() Option {
	return func(o *options) { o.refetch = true }
}

// Build reads the configured snapshot and derives the subset. Only failures
// to read the source are returned as errors; everything else ends up in the
// result's diagnostics.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*Result, error) {
	start := time.Now()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.cache == nil && cfg.Cache.Backend != "" {
		c, err := snapshot.Open(cfg.Cache.Backend, cfg.Cache.Path)
		if err != nil {
			return nil, err
		}
		defer c.Close()
		o.cache = c
	}
	src := cfg.SourceURL()
	clog.Infof("building subset of %s", src)
	if o.refetch && o.cache != nil {
		if err := o.cache.Delete(ctx, src); err != nil {
			return nil, err
		}
	}
	g, err := ingest.Load(ctx, src, ingest.Options{
		Format:     cfg.Format,
		Namespaces: cfg.NamespaceSet(),
		Contexts:   cfg.ContextMap(),
		Cache:      o.cache,
		Client:     o.client,
	})
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}
	res, err := FromGraph(g, cfg)
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		if m, err := o.cache.Meta(ctx, src); err == nil {
			res.Snapshot = &m
		} else if err != snapshot.ErrNotFound {
			clog.Warningf("cannot read snapshot metadata for %s: %v", src, err)
		}
	}
	mBuildDuration.Observe(time.Since(start).Seconds())
	return res, nil
}

// FromGraph derives the subset from an already classified graph.
func FromGraph(g *ingest.Graph, cfg config.Config) (*Result, error) {
	params, err := cfg.ProjectionParams()
	if err != nil {
		return nil, err
	}
	allowed := inference.Closure(g.Classes, cfg.RootSet())
	if clog.V(2) {
		clog.Infof("closure of %d roots: %d of %d classes", len(cfg.Roots), allowed.Len(), len(g.Classes))
	}
	pr := projection.Project(g.Properties, allowed, g.Classes, params)

	diags := ontology.NewDiagnostics()
	diags.Merge(g.Diagnostics)
	diags.Merge(pr.Diagnostics)

	mAllowed.Set(float64(allowed.Len()))
	clog.Infof("retained %d classes and %d properties (%d excluded, %d diagnostics)",
		allowed.Len(), len(pr.Properties), pr.Excluded, diags.Len())
	return &Result{
		Version:     cfg.Version,
		Source:      cfg.SourceURL(),
		Classes:     g.Classes,
		Allowed:     allowed,
		Properties:  pr.Properties,
		Excluded:    pr.Excluded,
		Diagnostics: diags,
	}, nil
}
