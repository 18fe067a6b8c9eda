package projection

import (
	"fmt"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/subschema/inference"
	"github.com/cayleygraph/subschema/ontology"
)

const (
	text  = quad.IRI("http://schema.org/Text")
	thing = quad.IRI("http://schema.org/Thing")
)

func fixture() (ontology.Classes, ontology.IRISet, Params) {
	classes := ontology.NewClasses(
		ontology.NewClass("A"),
		ontology.NewClass("B", "A"),
		ontology.NewClass("C", "B"),
		ontology.NewClass("D"),
		ontology.NewClass(thing),
	)
	closure := inference.Closure(classes, ontology.NewIRISet("A"))
	params := Params{
		Datatypes:         ontology.DatatypeMap{text: "xsd:string"},
		UniversalRoot:     thing,
		UniversalSentinel: "owl:NamedIndividual",
	}
	return classes, closure, params
}

func find(res *Result, id quad.IRI) *Property {
	for _, p := range res.Properties {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func TestProjectScenarios(t *testing.T) {
	classes, closure, params := fixture()
	require.Equal(t, []quad.IRI{"A", "B", "C"}, closure.Sorted())

	props := []*ontology.Property{
		ontology.NewProperty("P1", []quad.IRI{"B"}, []quad.IRI{"A"}),
		ontology.NewProperty("P2", []quad.IRI{"D"}, []quad.IRI{"A"}),
		ontology.NewProperty("P3", []quad.IRI{"A"}, []quad.IRI{text, "C"}),
		ontology.NewProperty("P4", []quad.IRI{"A"}, []quad.IRI{"E"}),
	}
	res := Project(props, closure, classes, params)

	require.Len(t, res.Properties, 3)
	require.Equal(t, 1, res.Excluded)

	p1 := find(res, "P1")
	require.NotNil(t, p1)
	require.Equal(t, []string{"A"}, p1.Objects.Sorted())
	require.Equal(t, 0, p1.Datatypes.Len())
	require.Equal(t, []quad.IRI{"B"}, p1.Domain.Sorted())

	require.Nil(t, find(res, "P2"), "domain outside the closure")

	p3 := find(res, "P3")
	require.NotNil(t, p3)
	require.Equal(t, []string{"xsd:string"}, p3.Datatypes.Sorted())
	require.Equal(t, []string{"C"}, p3.Objects.Sorted())
	require.True(t, p3.IsMixed())

	p4 := find(res, "P4")
	require.NotNil(t, p4)
	require.Equal(t, 0, p4.Objects.Len())
	require.Equal(t, 0, p4.Datatypes.Len())

	require.Equal(t, []ontology.Diagnostic{
		ontology.NewUnknownRange("P4", "E"),
		ontology.NewMixedRange("P3"),
	}, res.Diagnostics.List())
}

func TestProjectRangeRules(t *testing.T) {
	classes, closure, params := fixture()
	props := []*ontology.Property{
		ontology.NewProperty("about", []quad.IRI{"C"}, []quad.IRI{thing}),
		ontology.NewProperty("outside", []quad.IRI{"A", "D"}, []quad.IRI{"D", "B"}),
	}
	res := Project(props, closure, classes, params)

	about := find(res, "about")
	require.Equal(t, []string{"owl:NamedIndividual"}, about.Objects.Sorted())
	require.False(t, about.IsMixed())

	outside := find(res, "outside")
	require.Equal(t, []quad.IRI{"A"}, outside.Domain.Sorted())
	require.Equal(t, []string{"B"}, outside.Objects.Sorted())
	require.Equal(t, []ontology.Diagnostic{ontology.NewUnknownRange("outside", "D")}, res.Diagnostics.List())
}

func TestClassify(t *testing.T) {
	classes, closure, params := fixture()
	// A data type that is also declared as a class stays a data type.
	classes[text] = ontology.NewClass(text)
	params.Datatypes[thing] = "xsd:anyType"

	cases := []struct {
		term quad.IRI
		kind TermKind
		val  string
	}{
		{text, TermDatatype, "xsd:string"},
		{thing, TermDatatype, "xsd:anyType"},
		{"C", TermObject, "C"},
		{"D", TermOutOfScope, ""},
		{"E", TermUnknown, ""},
	}
	for _, c := range cases {
		got := Classify(c.term, closure, classes, params)
		require.Equal(t, Term{Kind: c.kind, Value: c.val}, got, "term %v", c.term)
		require.Equal(t, got, Classify(c.term, closure, classes, params))
	}

	delete(params.Datatypes, thing)
	require.Equal(t, Term{Kind: TermUniversal, Value: "owl:NamedIndividual"}, Classify(thing, closure, classes, params))
	// The universal root does not need to be declared.
	delete(classes, thing)
	require.Equal(t, TermUniversal, Classify(thing, closure, classes, params).Kind)
}

func TestProjectPolicy(t *testing.T) {
	classes, closure, params := fixture()
	props := []*ontology.Property{
		ontology.NewProperty("P2", []quad.IRI{"D"}, []quad.IRI{"A", "D"}),
		ontology.NewProperty("orphan", nil, []quad.IRI{text}),
	}

	strict := Project(props, closure, classes, params)
	require.Empty(t, strict.Properties)
	require.Equal(t, 2, strict.Excluded)
	require.Equal(t, 0, strict.Diagnostics.Len(), "excluded properties are not classified")

	params.Policy = PolicyRetainUnmatched
	retained := Project(props, closure, classes, params)
	require.Len(t, retained.Properties, 2)
	require.Equal(t, 0, retained.Excluded)
	p2 := find(retained, "P2")
	require.Equal(t, 0, p2.Domain.Len())
	require.Equal(t, []string{"A"}, p2.Objects.Sorted())
	require.Equal(t, []ontology.Diagnostic{ontology.NewUnknownRange("P2", "D")}, retained.Diagnostics.List())
}

func TestParsePolicy(t *testing.T) {
	for name, expect := range map[string]Policy{
		"":                 PolicyStrict,
		"strict":           PolicyStrict,
		"Retain-Unmatched": PolicyRetainUnmatched,
		"retain_unmatched": PolicyRetainUnmatched,
	} {
		got, err := ParsePolicy(name)
		require.NoError(t, err)
		require.Equal(t, expect, got)
	}
	_, err := ParsePolicy("lenient")
	require.Error(t, err)
	require.Equal(t, "retain-unmatched", PolicyRetainUnmatched.String())
}

func TestProjectWorkersAreDeterministic(t *testing.T) {
	var list []*ontology.Class
	for i := 0; i < 50; i++ {
		list = append(list, ontology.NewClass(quad.IRI(fmt.Sprintf("k%d", i)), quad.IRI(fmt.Sprintf("k%d", i/2))))
	}
	classes := ontology.NewClasses(list...)
	closure := inference.Closure(classes, ontology.NewIRISet("k3"))

	var props []*ontology.Property
	for i := 0; i < 300; i++ {
		props = append(props, ontology.NewProperty(
			quad.IRI(fmt.Sprintf("p%03d", 299-i)),
			[]quad.IRI{quad.IRI(fmt.Sprintf("k%d", i%50))},
			[]quad.IRI{quad.IRI(fmt.Sprintf("k%d", (i*7)%50)), text, "missing"},
		))
	}
	params := Params{Datatypes: ontology.DatatypeMap{text: "xsd:string"}}

	seq := Project(props, closure, classes, params)
	params.Workers = 8
	par := Project(props, closure, classes, params)

	require.Equal(t, seq.Excluded, par.Excluded)
	require.Equal(t, seq.Properties, par.Properties)
	require.Equal(t, seq.Diagnostics.List(), par.Diagnostics.List())
	for i := 1; i < len(par.Properties); i++ {
		require.True(t, par.Properties[i-1].ID < par.Properties[i].ID)
	}
}
