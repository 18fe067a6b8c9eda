// Copyright 2017 The Cayley Authors. All rights reserved.
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

// Package snapshot keeps fetched vocabulary documents in a key-value store,
// so a pinned version can be rebuilt without network access.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hidal-go/hidalgo/kv"
	_ "github.com/hidal-go/hidalgo/kv/all"
	"github.com/hidal-go/hidalgo/kv/flat"
	"github.com/hidal-go/hidalgo/kv/flat/btree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/subschema/clog"
)

// Memory is the name of the volatile in-memory backend.
const Memory = btree.Name

var ErrNotFound = kv.ErrNotFound

var (
	dataBucket = kv.Key{[]byte("data")}
	metaBucket = kv.Key{[]byte("meta")}
)

var (
	mHits   = promauto.NewCounter(prometheus.CounterOpts{Name: "subschema_snapshot_hits_count"})
	mMisses = promauto.NewCounter(prometheus.CounterOpts{Name: "subschema_snapshot_misses_count"})
	mStored = promauto.NewCounter(prometheus.CounterOpts{Name: "subschema_snapshot_stored_bytes"})
)

// Meta describes a stored document.
type Meta struct {
	URL     string    `json:"url"`
	Size    int       `json:"size"`
	Fetched time.Time `json:"fetched"`
}

// Cache stores documents by source URL.
type Cache struct {
	db kv.KV
}

// Backends lists the names accepted by Open.
func Backends() []string {
	var out []string
	for _, r := range kv.List() {
		out = append(out, shortName(r.Name))
	}
	sort.Strings(out)
	return out
}

func shortName(name string) string {
	return strings.TrimPrefix(name, "flat.")
}

// Open opens a cache with the named hidalgo backend. An empty backend name
// selects the in-memory store.
func Open(backend, path string) (*Cache, error) {
	if backend == "" || backend == Memory {
		return New(flat.Upgrade(btree.New()))
	}
	for _, r := range kv.List() {
		if r.Name != backend && shortName(r.Name) != backend {
			continue
		}
		if !r.Volatile && path == "" {
			return nil, fmt.Errorf("snapshot: backend %q needs a path", backend)
		}
		db, err := r.OpenPath(path)
		if err != nil {
			return nil, fmt.Errorf("snapshot: cannot open %s at %q: %v", backend, path, err)
		}
		c, err := New(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		clog.Infof("snapshot cache: %s at %q", backend, path)
		return c, nil
	}
	return nil, fmt.Errorf("snapshot: unknown backend %q", backend)
}

// New wraps an open key-value store.
func New(db kv.KV) (*Cache, error) {
	ctx := context.TODO()
	err := kv.Update(ctx, db, func(tx kv.Tx) error {
		_ = kv.CreateBucket(ctx, tx, dataBucket)
		_ = kv.CreateBucket(ctx, tx, metaBucket)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: cannot initialize store: %w", err)
	}
	return &Cache{db: db}, nil
}

func dataKey(url string) kv.Key { return dataBucket.AppendBytes([]byte(url)) }
func metaKey(url string) kv.Key { return metaBucket.AppendBytes([]byte(url)) }

// Get returns the document stored for url, or ErrNotFound.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, error) {
	tx, err := c.db.Tx(false)
	if err != nil {
		return nil, err
	}
	defer tx.Close()
	val, err := tx.Get(ctx, dataKey(url))
	if err == kv.ErrNotFound {
		mMisses.Inc()
		return nil, ErrNotFound
	} else if err != nil {
		return nil, err
	}
	mHits.Inc()
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

// Meta returns the metadata stored for url, or ErrNotFound.
func (c *Cache) Meta(ctx context.Context, url string) (Meta, error) {
	tx, err := c.db.Tx(false)
	if err != nil {
		return Meta{}, err
	}
	defer tx.Close()
	val, err := tx.Get(ctx, metaKey(url))
	if err == kv.ErrNotFound {
		return Meta{}, ErrNotFound
	} else if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := json.Unmarshal(val, &m); err != nil {
		return Meta{}, fmt.Errorf("snapshot: cannot decode metadata for %q: %v", url, err)
	}
	return m, nil
}

// Put stores data for url, replacing any previous document.
func (c *Cache) Put(ctx context.Context, url string, data []byte) error {
	meta, err := json.Marshal(Meta{URL: url, Size: len(data), Fetched: time.Now().UTC()})
	if err != nil {
		return err
	}
	err = kv.Update(ctx, c.db, func(tx kv.Tx) error {
		if err := tx.Put(dataKey(url), data); err != nil {
			return err
		}
		return tx.Put(metaKey(url), meta)
	})
	if err != nil {
		return fmt.Errorf("snapshot: cannot store %q: %v", url, err)
	}
	mStored.Add(float64(len(data)))
	return nil
}

// Delete removes the document stored for url. Deleting a missing entry is
// not an error.
func (c *Cache) Delete(ctx context.Context, url string) error {
	return kv.Update(ctx, c.db, func(tx kv.Tx) error {
		if err := tx.Del(dataKey(url)); err != nil && err != kv.ErrNotFound {
			return err
		}
		if err := tx.Del(metaKey(url)); err != nil && err != kv.ErrNotFound {
			return err
		}
		return nil
	})
}

func (c *Cache) Close() error {
	return c.db.Close()
}
