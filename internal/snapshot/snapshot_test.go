package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/hidal-go/hidalgo/kv"
	"github.com/stretchr/testify/require"
)

const src = "http://schema.org/version/3.2/all-layers.jsonld"

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := Open("", "")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(ctx, src)
	require.Equal(t, ErrNotFound, err)

	doc := []byte(`{"@graph": []}`)
	require.NoError(t, c.Put(ctx, src, doc))

	got, err := c.Get(ctx, src)
	require.NoError(t, err)
	require.Equal(t, doc, got)

	m, err := c.Meta(ctx, src)
	require.NoError(t, err)
	require.Equal(t, src, m.URL)
	require.Equal(t, len(doc), m.Size)
	require.False(t, m.Fetched.IsZero())

	_, err = c.Get(ctx, src+"#other")
	require.Equal(t, ErrNotFound, err)

	require.NoError(t, c.Put(ctx, src, []byte("{}")))
	got, err = c.Get(ctx, src)
	require.NoError(t, err)
	require.Equal(t, "{}", string(got))

	require.NoError(t, c.Delete(ctx, src))
	_, err = c.Get(ctx, src)
	require.Equal(t, ErrNotFound, err)
	_, err = c.Meta(ctx, src)
	require.Equal(t, ErrNotFound, err)
	require.NoError(t, c.Delete(ctx, src))
}

func TestOpen(t *testing.T) {
	_, err := Open("no-such-backend", "")
	require.Error(t, err)

	names := Backends()
	require.Contains(t, names, Memory)
	require.Contains(t, names, "bolt")

	_, err = Open("bolt", "")
	require.Error(t, err, "persistent backends need a path")
}

func TestPersistentBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache")

	c, err := Open("bolt", path)
	require.NoError(t, err)
	require.NoError(t, c.Put(ctx, src, []byte("cached")))
	require.NoError(t, c.Close())

	c, err = Open("bolt", path)
	require.NoError(t, err)
	defer c.Close()
	got, err := c.Get(ctx, src)
	require.NoError(t, err)
	require.Equal(t, "cached", string(got))
}

var errReadOnly = errors.New("read-only store")

type readOnlyKV struct {
	kv.KV
}

func (readOnlyKV) Tx(rw bool) (kv.Tx, error) { return nil, errReadOnly }
func (readOnlyKV) Close() error              { return nil }

func TestNewStoreError(t *testing.T) {
	c, err := New(readOnlyKV{})
	require.ErrorIs(t, err, errReadOnly)
	require.Nil(t, c)
}
