package subschema

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/subschema/config"
	"github.com/cayleygraph/subschema/ingest"
	"github.com/cayleygraph/subschema/internal/snapshot"
	"github.com/cayleygraph/subschema/ontology"
	"github.com/cayleygraph/subschema/voc/schema"
)

const fixture = "ingest/testdata/mini.jsonld"

func testConfig(roots ...string) config.Config {
	c := config.Default()
	c.Source = fixture
	c.Namespaces = []string{schema.Bib}
	c.Roots = nil
	for _, r := range roots {
		c.Roots = append(c.Roots, schema.NS+r)
	}
	return c
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	res, err := Build(ctx, testConfig("CreativeWork"))
	require.NoError(t, err)

	require.Equal(t, "3.2", res.Version)
	require.Equal(t, fixture, res.Source)
	require.Equal(t, []quad.IRI{
		schema.IRI("Book"), schema.IRI("Chapter"), schema.IRI("CreativeWork"),
	}, res.Allowed.Sorted())

	require.Len(t, res.Properties, 1)
	author := res.Properties[0]
	require.Equal(t, schema.IRI("author"), author.ID)
	require.Equal(t, 0, author.Datatypes.Len())
	require.Equal(t, 0, author.Objects.Len())
	require.Equal(t, 1, res.Excluded)
	require.Same(t, author, res.Property(schema.IRI("author")))
	require.Nil(t, res.Property(schema.IRI("name")))

	d := res.Diagnostics
	require.Equal(t, 2, d.Count(ontology.UnknownRange))
	require.Equal(t, 1, d.Count(ontology.SkippedNamespace))
	require.Equal(t, 1, d.Count(ontology.IgnoredType))
	require.Equal(t, 2, d.Count(ontology.MalformedElement))
	require.Equal(t, 6, d.Len())
}

func TestBuildFromThing(t *testing.T) {
	res, err := Build(context.Background(), testConfig("Thing"))
	require.NoError(t, err)
	require.Equal(t, 5, res.Allowed.Len())
	require.False(t, res.Allowed.Has(schema.IRI("Text")))

	require.Len(t, res.Properties, 2)
	author, name := res.Properties[0], res.Properties[1]
	require.Equal(t, []string{schema.NS + "Person"}, author.Objects.Sorted())
	require.Equal(t, []string{"xsd:string"}, name.Datatypes.Sorted())
	require.Equal(t, []ontology.Diagnostic{
		ontology.NewUnknownRange(schema.IRI("author"), schema.IRI("Organization")),
	}, res.Diagnostics.Of(ontology.UnknownRange))

	h := res.Hierarchy()
	book := h.GetClass(schema.IRI("Book"))
	require.NotNil(t, book)
	require.True(t, book.IsSubClassOf(h.GetClass(schema.IRI("Thing"))))
}

func TestBuildIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig("CreativeWork", "Person")
	a, err := Build(ctx, cfg)
	require.NoError(t, err)
	cfg.Workers = 4
	b, err := Build(ctx, cfg)
	require.NoError(t, err)

	require.True(t, a.Allowed.Equal(b.Allowed))
	require.Equal(t, a.Properties, b.Properties)
	require.Equal(t, a.Diagnostics.List(), b.Diagnostics.List())
}

func TestBuildErrors(t *testing.T) {
	ctx := context.Background()

	_, err := Build(ctx, testConfig())
	require.Equal(t, config.ErrNoRoots, err)

	cfg := testConfig("Thing")
	cfg.Source = "testdata/missing-{version}.jsonld"
	_, err = Build(ctx, cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "ingestion failed")

	cfg = testConfig("Thing")
	cfg.Cache.Backend = "no-such-backend"
	_, err = Build(ctx, cfg)
	require.Error(t, err)
}

func TestBuildRemote(t *testing.T) {
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write(data)
	}))
	defer srv.Close()

	cache, err := snapshot.Open(snapshot.Memory, "")
	require.NoError(t, err)
	defer cache.Close()

	cfg := testConfig("Thing")
	cfg.Version = "3.3"
	cfg.Source = srv.URL + "/version/{version}/all-layers.jsonld"
	for i := 0; i < 3; i++ {
		res, err := Build(context.Background(), cfg, WithHTTPClient(srv.Client()), WithCache(cache))
		require.NoError(t, err)
		require.Equal(t, srv.URL+"/version/3.3/all-layers.jsonld", res.Source)
		require.Len(t, res.Properties, 2)
		require.NotNil(t, res.Snapshot)
		require.Equal(t, len(data), res.Snapshot.Size)
		require.Equal(t, res.Source, res.Snapshot.URL)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))

	first, err := cache.Meta(context.Background(), srv.URL+"/version/3.3/all-layers.jsonld")
	require.NoError(t, err)
	res, err := Build(context.Background(), cfg, WithHTTPClient(srv.Client()), WithCache(cache), WithRefetch())
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&hits))
	require.False(t, res.Snapshot.Fetched.Before(first.Fetched))

	// local sources are never cached
	res, err = Build(context.Background(), testConfig("Thing"), WithCache(cache))
	require.NoError(t, err)
	require.Nil(t, res.Snapshot)
}

func TestFromGraph(t *testing.T) {
	g := &ingest.Graph{
		Classes: ontology.NewClasses(
			ontology.NewClass("A"),
			ontology.NewClass("B", "A"),
			ontology.NewClass("C"),
		),
		Properties: []*ontology.Property{
			ontology.NewProperty("p1", []quad.IRI{"B"}, []quad.IRI{"C", schema.Text}),
			ontology.NewProperty("p2", []quad.IRI{"C"}, []quad.IRI{"A"}),
		},
		Diagnostics: ontology.NewDiagnostics(ontology.NewIgnoredType("T")),
	}
	cfg := config.Default()
	cfg.Roots = []string{"A"}
	res, err := FromGraph(g, cfg)
	require.NoError(t, err)
	require.Equal(t, []quad.IRI{"A", "B"}, res.Allowed.Sorted())
	require.Len(t, res.Properties, 1)
	require.Equal(t, []string{"xsd:string"}, res.Properties[0].Datatypes.Sorted())
	require.Equal(t, []ontology.Diagnostic{
		ontology.NewIgnoredType("T"),
		ontology.NewUnknownRange("p1", "C"),
	}, res.Diagnostics.List())
	require.Equal(t, 1, g.Diagnostics.Len(), "input diagnostics are not modified")

	cfg.Policy = "bogus"
	_, err = FromGraph(g, cfg)
	require.Error(t, err)
}
