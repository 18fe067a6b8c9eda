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

// Package config holds the settings of a subset build: which vocabulary
// snapshot to read, which extensions and root classes to keep, and how data
// types and the universal class are projected.
//
// A Config is a plain value. It is built once (Default, then FromViper) and
// passed by value; accessors return fresh copies so callers cannot alter it.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/spf13/viper"

	"github.com/cayleygraph/subschema/ontology"
	"github.com/cayleygraph/subschema/owl"
	"github.com/cayleygraph/subschema/projection"
	"github.com/cayleygraph/subschema/voc/schema"
	"github.com/cayleygraph/subschema/voc/xsd"
)

// Keys used in configuration files, environment variables and flags.
const (
	KeyVersion           = "schema.version"
	KeySource            = "schema.source"
	KeyFormat            = "schema.format"
	KeyNamespaces        = "schema.namespaces"
	KeyRoots             = "schema.roots"
	KeyDatatypes         = "schema.datatypes"
	KeyUniversalRoot     = "schema.universal_root"
	KeyUniversalSentinel = "schema.universal_sentinel"
	KeyContexts          = "jsonld.contexts"
	KeyPolicy            = "projection.policy"
	KeyWorkers           = "projection.workers"
	KeyCacheBackend      = "cache.backend"
	KeyCachePath         = "cache.path"
)

// VersionPlaceholder is replaced by the snapshot version in Source.
const VersionPlaceholder = "{version}"

var (
	ErrNoRoots    = errors.New("config: no root classes")
	ErrNoSource   = errors.New("config: no source")
	ErrNoSentinel = errors.New("config: universal sentinel is empty")
)

// Datatype maps a vocabulary data type to a primitive datatype tag.
type Datatype struct {
	IRI string `mapstructure:"iri" json:"iri"`
	Tag string `mapstructure:"tag" json:"tag"`
}

// Context maps a remote JSON-LD context to a local copy.
type Context struct {
	URL  string `mapstructure:"url" json:"url"`
	Path string `mapstructure:"path" json:"path"`
}

// Cache selects where fetched snapshots are kept. An empty backend disables
// the cache.
type Cache struct {
	Backend string `json:"backend,omitempty"`
	Path    string `json:"path,omitempty"`
}

type Config struct {
	Version           string     `json:"version"`
	Source            string     `json:"source"`
	Format            string     `json:"format,omitempty"`
	Namespaces        []string   `json:"namespaces"`
	Roots             []string   `json:"roots"`
	Datatypes         []Datatype `json:"datatypes"`
	UniversalRoot     string     `json:"universal_root"`
	UniversalSentinel string     `json:"universal_sentinel"`
	Contexts          []Context  `json:"contexts,omitempty"`
	Policy            string     `json:"policy"`
	Workers           int        `json:"workers"`
	Cache             Cache      `json:"cache"`
}

// Default returns the settings of the schema.org 3.2 subset: the health,
// bibliographic and automotive extensions, thirty root classes in the order
// of the schema.org full hierarchy page, and the ten primitive data types.
func Default() Config {
	return Config{
		Version:    "3.2",
		Source:     "http://schema.org/version/" + VersionPlaceholder + "/all-layers.jsonld",
		Namespaces: []string{schema.HealthLifeSci, schema.Bib, schema.Auto},
		Roots: []string{
			schema.NS + "CreativeWork",
			schema.NS + "Brand",
			schema.NS + "BedDetails",
			schema.NS + "BroadcastChannel",
			schema.NS + "BroadcastFrequencySpecification",
			schema.NS + "BusTrip",
			schema.NS + "ComputerLanguage",
			schema.NS + "Flight",
			schema.NS + "GameServer",
			schema.NS + "JobPosting",
			schema.NS + "Language",
			schema.NS + "MenuItem",
			schema.NS + "Offer",
			schema.NS + "Order",
			schema.NS + "OrderItem",
			schema.NS + "ParcelDelivery",
			schema.NS + "Permit",
			schema.NS + "ProgramMembership",
			schema.NS + "Reservation",
			schema.NS + "Seat",
			schema.NS + "Service",
			schema.NS + "ServiceChannel",
			schema.NS + "ContactPoint",
			schema.NS + "GeoCoordinates",
			schema.NS + "GeoShape",
			schema.NS + "TrainTrip",
			schema.NS + "Organization",
			schema.NS + "Person",
			schema.NS + "Place",
			schema.NS + "Product",
		},
		Datatypes: []Datatype{
			{IRI: schema.Boolean, Tag: xsd.Boolean},
			{IRI: schema.Date, Tag: xsd.Date},
			{IRI: schema.DateTime, Tag: xsd.DateTime},
			{IRI: schema.Number, Tag: xsd.Decimal},
			{IRI: schema.Float, Tag: xsd.Double},
			{IRI: schema.Integer, Tag: xsd.Integer},
			{IRI: schema.Text, Tag: xsd.String},
			{IRI: schema.URL, Tag: xsd.AnyURI},
			{IRI: schema.Time, Tag: xsd.Time},
			{IRI: schema.Duration, Tag: xsd.Duration},
		},
		UniversalRoot:     schema.Thing,
		UniversalSentinel: owl.ShortNamedIndividual,
		Policy:            projection.PolicyStrict.String(),
		Workers:           1,
	}
}

// SetDefaults registers the values of Default on v, so that v.Get returns
// them when nothing else sets a key.
func SetDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault(KeyVersion, def.Version)
	v.SetDefault(KeySource, def.Source)
	v.SetDefault(KeyPolicy, def.Policy)
	v.SetDefault(KeyWorkers, def.Workers)
	v.SetDefault(KeyUniversalRoot, def.UniversalRoot)
	v.SetDefault(KeyUniversalSentinel, def.UniversalSentinel)
}

// FromViper overlays the keys set on v onto Default and validates the result.
func FromViper(v *viper.Viper) (Config, error) {
	c := Default()
	if v.IsSet(KeyVersion) {
		c.Version = v.GetString(KeyVersion)
	}
	if v.IsSet(KeySource) {
		c.Source = v.GetString(KeySource)
	}
	if v.IsSet(KeyFormat) {
		c.Format = v.GetString(KeyFormat)
	}
	if v.IsSet(KeyNamespaces) {
		c.Namespaces = v.GetStringSlice(KeyNamespaces)
	}
	if v.IsSet(KeyRoots) {
		c.Roots = v.GetStringSlice(KeyRoots)
	}
	if v.IsSet(KeyDatatypes) {
		var list []Datatype
		if err := v.UnmarshalKey(KeyDatatypes, &list); err != nil {
			return Config{}, fmt.Errorf("config: cannot decode %s: %v", KeyDatatypes, err)
		}
		c.Datatypes = list
	}
	if v.IsSet(KeyUniversalRoot) {
		c.UniversalRoot = v.GetString(KeyUniversalRoot)
	}
	if v.IsSet(KeyUniversalSentinel) {
		c.UniversalSentinel = v.GetString(KeyUniversalSentinel)
	}
	if v.IsSet(KeyContexts) {
		var list []Context
		if err := v.UnmarshalKey(KeyContexts, &list); err != nil {
			return Config{}, fmt.Errorf("config: cannot decode %s: %v", KeyContexts, err)
		}
		c.Contexts = list
	}
	if v.IsSet(KeyPolicy) {
		c.Policy = v.GetString(KeyPolicy)
	}
	if v.IsSet(KeyWorkers) {
		c.Workers = v.GetInt(KeyWorkers)
	}
	c.Cache.Backend = v.GetString(KeyCacheBackend)
	c.Cache.Path = v.GetString(KeyCachePath)
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports the first setting that cannot produce a build.
func (c Config) Validate() error {
	if c.Source == "" {
		return ErrNoSource
	}
	if len(c.Roots) == 0 {
		return ErrNoRoots
	}
	if c.UniversalSentinel == "" {
		return ErrNoSentinel
	}
	for _, d := range c.Datatypes {
		if d.IRI == "" || d.Tag == "" {
			return fmt.Errorf("config: incomplete datatype mapping %q -> %q", d.IRI, d.Tag)
		}
	}
	for _, x := range c.Contexts {
		if x.URL == "" || x.Path == "" {
			return fmt.Errorf("config: incomplete context mapping %q -> %q", x.URL, x.Path)
		}
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: negative worker count %d", c.Workers)
	}
	_, err := c.InclusionPolicy()
	return err
}

// SourceURL returns Source with the version placeholder filled in.
func (c Config) SourceURL() string {
	return strings.ReplaceAll(c.Source, VersionPlaceholder, c.Version)
}

// RootSet returns the root classes as a set.
func (c Config) RootSet() ontology.IRISet {
	return toSet(c.Roots)
}

// NamespaceSet returns the allowed extensions as a set.
func (c Config) NamespaceSet() ontology.IRISet {
	return toSet(c.Namespaces)
}

// DatatypeMap returns the datatype mapping. Later entries win on duplicates.
func (c Config) DatatypeMap() ontology.DatatypeMap {
	m := make(ontology.DatatypeMap, len(c.Datatypes))
	for _, d := range c.Datatypes {
		m[quad.IRI(d.IRI)] = d.Tag
	}
	return m
}

// ContextMap returns the JSON-LD context mapping, URL to local path.
func (c Config) ContextMap() map[string]string {
	m := make(map[string]string, len(c.Contexts))
	for _, x := range c.Contexts {
		m[x.URL] = x.Path
	}
	return m
}

// InclusionPolicy parses Policy.
func (c Config) InclusionPolicy() (projection.Policy, error) {
	return projection.ParsePolicy(c.Policy)
}

// ProjectionParams returns the parameters the projection step runs with.
func (c Config) ProjectionParams() (projection.Params, error) {
	pol, err := c.InclusionPolicy()
	if err != nil {
		return projection.Params{}, err
	}
	return projection.Params{
		Datatypes:         c.DatatypeMap(),
		UniversalRoot:     quad.IRI(c.UniversalRoot),
		UniversalSentinel: c.UniversalSentinel,
		Policy:            pol,
		Workers:           c.Workers,
	}, nil
}

func toSet(list []string) ontology.IRISet {
	s := make(ontology.IRISet, len(list))
	for _, v := range list {
		s.Add(quad.IRI(v))
	}
	return s
}
