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

package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/cayleygraph/subschema/clog"
	"github.com/cayleygraph/subschema/internal/decompressor"
	"github.com/cayleygraph/subschema/internal/snapshot"
)

var ErrNoSource = errors.New("ingest: no source")

// Open returns the decompressed content of src. The source may be a local
// path, a file:// URL or an http(s):// URL. Remote documents go through
// opts.Cache when one is set.
func Open(ctx context.Context, src string, opts Options) (io.ReadCloser, error) {
	if src == "" {
		return nil, ErrNoSource
	}
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "file" || u.Scheme == "" {
		path := src
		// Don't alter relative URL path or non-URL path parameter.
		if err == nil && u.Scheme != "" {
			// Recovery heuristic for mistyping "file://path/to/file".
			path = filepath.Join(u.Host, u.Path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("could not open file %q: %v", path, err)
		}
		return decompressor.NewReadCloser(f)
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported source scheme %q", u.Scheme)
	}
	data, err := fetch(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	return decompressor.NewReadCloser(io.NopCloser(bytes.NewReader(data)))
}

func fetch(ctx context.Context, src string, opts Options) ([]byte, error) {
	if opts.Cache != nil {
		data, err := opts.Cache.Get(ctx, src)
		if err == nil {
			if clog.V(1) {
				clog.Infof("using cached snapshot of <%s> (%d bytes)", src, len(data))
			}
			return data, nil
		} else if err != snapshot.ErrNotFound {
			clog.Warningf("cannot read snapshot cache: %v", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/ld+json, application/n-quads;q=0.9, */*;q=0.1")
	resp, err := opts.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get resource <%s>: %v", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not get resource <%s>: %s", src, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read resource <%s>: %v", src, err)
	}
	clog.Infof("fetched <%s> (%d bytes)", src, len(data))
	if opts.Cache != nil {
		if err := opts.Cache.Put(ctx, src, data); err != nil {
			clog.Warningf("%v", err)
		}
	}
	return data, nil
}
