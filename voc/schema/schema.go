// Package schema contains the schema.org terms used to read and filter the
// vocabulary graph.
package schema

import (
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/schema"
)

const (
	NS     = schema.NS
	Prefix = schema.Prefix
)

// Element markers.
const (
	// Marks a term as deprecated in favour of another one.
	SupersededBy = NS + `supersededBy`
	// Links a term to the extension (hosted sub-vocabulary) it belongs to.
	IsPartOf = NS + `isPartOf`
	// Classes a property may be used on.
	DomainIncludes = NS + `domainIncludes`
	// Classes and datatypes a property value may take.
	RangeIncludes = NS + `rangeIncludes`
)

// The most generic type of item.
const Thing = NS + `Thing`

// Data types.
const (
	Boolean  = NS + `Boolean`
	Date     = NS + `Date`
	DateTime = NS + `DateTime`
	Number   = NS + `Number`
	Float    = NS + `Float`
	Integer  = NS + `Integer`
	Text     = NS + `Text`
	URL      = NS + `URL`
	Time     = NS + `Time`
	// Duration is declared as a class in schema.org, not as a data type.
	Duration = NS + `Duration`
)

// Hosted extensions.
const (
	HealthLifeSci = `http://health-lifesci.schema.org`
	Bib           = `http://bib.schema.org`
	Auto          = `http://auto.schema.org`
	Pending       = `http://pending.schema.org`
	Meta          = `http://meta.schema.org`
	Attic         = `http://attic.schema.org`
)

// IRI is a shorthand for quad.IRI(NS + name).
func IRI(name string) quad.IRI {
	return quad.IRI(NS + name)
}
