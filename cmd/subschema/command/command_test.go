package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/phayes/freeport"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/subschema/config"
	"github.com/cayleygraph/subschema/internal/decompressor"
	"github.com/cayleygraph/subschema/voc/schema"
)

const fixture = "../../../ingest/testdata/mini.jsonld"

func run(t *testing.T, args ...string) (string, string, error) {
	cmd := NewRootCmd(BuildInfo{})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestBuildCmd(t *testing.T) {
	dir := t.TempDir()
	nq := filepath.Join(dir, "subset.nq.gz")
	metrics := filepath.Join(dir, "metrics.prom")

	out, _, err := run(t, "build",
		"--source", fixture,
		"--namespaces", schema.Bib,
		"--roots", schema.NS+"Thing",
		"-o", nq,
		"--metrics_file", metrics,
	)
	require.NoError(t, err)
	require.Contains(t, out, "classes: 5 retained of")
	require.Contains(t, out, "properties: 2 projected, 1 excluded")
	require.Contains(t, out, "[unknown_range] 1")

	f, err := os.Open(nq)
	require.NoError(t, err)
	defer f.Close()
	r, err := decompressor.New(f)
	require.NoError(t, err)
	quads, err := quad.ReadAll(nquads.NewReader(r, false))
	require.NoError(t, err)
	require.NotEmpty(t, quads)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	require.Contains(t, string(data), "subschema_build_duration_seconds")
}

func TestBuildCmdStdout(t *testing.T) {
	out, errOut, err := run(t, "build",
		"--source", fixture,
		"--namespaces", schema.Bib,
		"--roots", schema.NS+"CreativeWork",
		"-o", "-",
	)
	require.NoError(t, err)
	require.Contains(t, errOut, "classes: 3 retained of")
	quads, err := quad.ReadAll(nquads.NewReader(strings.NewReader(out), false))
	require.NoError(t, err)
	require.Contains(t, quads, quad.MakeIRI(schema.NS+"Book", "http://www.w3.org/2000/01/rdf-schema#subClassOf", schema.NS+"CreativeWork", ""))
}

func TestBuildCmdJSON(t *testing.T) {
	out, _, err := run(t, "build", "-q", "--json",
		"--source", fixture,
		"--namespaces", schema.Bib,
		"--roots", schema.NS+"CreativeWork",
	)
	require.NoError(t, err)
	var doc struct {
		Version string   `json:"version"`
		Classes []string `json:"classes"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "3.2", doc.Version)
	require.Len(t, doc.Classes, 3)
}

func TestBuildCmdErrors(t *testing.T) {
	_, _, err := run(t, "build", "--source", filepath.Join(t.TempDir(), "missing.jsonld"))
	require.Error(t, err)

	_, _, err = run(t, "build", "--source", fixture, "--policy", "lenient")
	require.Error(t, err)

	_, _, err = run(t, "build", "--source", fixture, "--roots", schema.NS+"Thing",
		"-o", filepath.Join(t.TempDir(), "out.nq"), "--out_format", "graphml")
	require.Error(t, err)
}

func TestConfigCmd(t *testing.T) {
	t.Setenv("SUBSCHEMA_SCHEMA_VERSION", "3.4")
	out, _, err := run(t, "config", "--workers", "4")
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	require.Equal(t, "3.4", cfg.Version)
	require.Equal(t, 4, cfg.Workers)
	require.Equal(t, "http://schema.org/version/3.4/all-layers.jsonld", cfg.SourceURL())
	require.Len(t, cfg.Roots, 30)
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "subschema.yml")
	require.NoError(t, os.WriteFile(file, []byte(`
schema:
  roots:
    - http://schema.org/Person
  namespaces: []
projection:
  policy: retain-unmatched
`), 0644))

	out, _, err := run(t, "config", "--config", file)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal([]byte(out), &cfg))
	require.Equal(t, []string{schema.NS + "Person"}, cfg.Roots)
	require.Empty(t, cfg.Namespaces)
	require.Equal(t, "retain-unmatched", cfg.Policy)

	_, _, err = run(t, "config", "--config", filepath.Join(t.TempDir(), "none.yml"))
	require.Error(t, err)
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	require.Equal(t, "subschema snapshot\n", out)

	cmd := NewRootCmd(BuildInfo{Version: "v1.0.0", GitHash: "abc123"})
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	require.Equal(t, "subschema v1.0.0 (abc123)\n", buf.String())
}

func TestServeCmd(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := NewRootCmd(BuildInfo{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve",
		"--host", addr,
		"--max_conns", "8",
		"--source", fixture,
		"--namespaces", schema.Bib,
		"--roots", schema.NS + "CreativeWork",
	})
	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 10*time.Second, 50*time.Millisecond)

	resp, err := http.Get(base + "/api/v1/classes")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Result []struct {
			ID string `json:"id"`
		} `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	var ids []string
	for _, c := range body.Result {
		ids = append(ids, c.ID)
	}
	require.Equal(t, []string{schema.NS + "Book", schema.NS + "Chapter", schema.NS + "CreativeWork"}, ids)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRefreshStopWaits(t *testing.T) {
	var running, calls int32
	started := make(chan struct{}, 1)
	stop := startRefresh(context.Background(), time.Millisecond, func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		atomic.StoreInt32(&running, 1)
		defer atomic.StoreInt32(&running, 0)
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		time.Sleep(10 * time.Millisecond)
		return ctx.Err()
	})
	<-started
	stop()
	require.Equal(t, int32(0), atomic.LoadInt32(&running))

	n := atomic.LoadInt32(&calls)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, n, atomic.LoadInt32(&calls))
}

func TestServeRefresh(t *testing.T) {
	port, err := freeport.GetFreePort()
	require.NoError(t, err)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd := NewRootCmd(BuildInfo{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve",
		"--host", addr,
		"--refresh", "20ms",
		"--cache", "btree",
		"--source", fixture,
		"--roots", schema.NS + "Thing",
	})
	done := make(chan error, 1)
	go func() {
		done <- cmd.ExecuteContext(ctx)
	}()
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusNoContent
	}, 10*time.Second, 50*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
