// Package owl contains constants of the Web Ontology Language (OWL)
package owl

import "github.com/cayleygraph/quad/voc"

func init() {
	voc.RegisterPrefix(Prefix, NS)
}

const (
	NS     = `http://www.w3.org/2002/07/owl#`
	Prefix = `owl:`
)

const (
	Class            = NS + "Class"
	Thing            = NS + "Thing"
	NamedIndividual  = NS + "NamedIndividual"
	DatatypeProperty = NS + "DatatypeProperty"
	ObjectProperty   = NS + "ObjectProperty"
	Ontology         = NS + "Ontology"
	VersionInfo      = NS + "versionInfo"
)

// ShortNamedIndividual is the prefixed form used as the "any object" range
// sentinel in projected properties.
const ShortNamedIndividual = Prefix + "NamedIndividual"
