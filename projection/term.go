package projection

import (
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/subschema/ontology"
)

// TermKind is the classification of one range term.
type TermKind int

const (
	// TermDatatype is a data type mapped to a primitive tag.
	TermDatatype TermKind = iota
	// TermUniversal is the vocabulary's topmost class.
	TermUniversal
	// TermObject is a retained class.
	TermObject
	// TermOutOfScope is a declared class that was not retained.
	TermOutOfScope
	// TermUnknown is neither a data type nor a declared class.
	TermUnknown
)

func (k TermKind) String() string {
	switch k {
	case TermDatatype:
		return "datatype"
	case TermUniversal:
		return "universal"
	case TermObject:
		return "object"
	case TermOutOfScope:
		return "out_of_scope"
	case TermUnknown:
		return "unknown"
	}
	return "invalid"
}

// Term is a classified range term. Value is what goes into the projected
// range: the datatype tag, the sentinel, or the class identifier. It is
// empty for out-of-scope and unknown terms.
type Term struct {
	Kind  TermKind
	Value string
}

// Classify places a single range term. The first matching rule wins:
// datatype map, universal root, retained class, declared class, unknown.
func Classify(r quad.IRI, closure ontology.IRISet, classes ontology.Classes, p Params) Term {
	if tag, ok := p.Datatypes.Lookup(r); ok {
		return Term{Kind: TermDatatype, Value: tag}
	}
	if r == p.UniversalRoot {
		return Term{Kind: TermUniversal, Value: p.UniversalSentinel}
	}
	if classes.Has(r) {
		if closure.Has(r) {
			return Term{Kind: TermObject, Value: string(r)}
		}
		return Term{Kind: TermOutOfScope}
	}
	return Term{Kind: TermUnknown}
}

func sortProperties(props []*Property) {
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
}
