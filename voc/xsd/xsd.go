// Package xsd contains the XML Schema datatype tags that schema.org data
// types are projected onto.
package xsd

import "github.com/cayleygraph/quad/voc"

func init() {
	voc.RegisterPrefix(Prefix, NS)
}

const (
	NS     = `http://www.w3.org/2001/XMLSchema#`
	Prefix = `xsd:`
)

// Tags are kept in prefixed form; expand them with quad.IRI(tag).Full().
const (
	Boolean  = Prefix + `boolean`
	Date     = Prefix + `date`
	DateTime = Prefix + `dateTime`
	Decimal  = Prefix + `decimal`
	Double   = Prefix + `double`
	Integer  = Prefix + `integer`
	String   = Prefix + `string`
	AnyURI   = Prefix + `anyURI`
	Time     = Prefix + `time`
	Duration = Prefix + `duration`
)
