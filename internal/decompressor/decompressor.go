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

// Package decompressor unwraps compressed vocabulary snapshots.
package decompressor

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"io"
)

// Compression is the container format of a snapshot stream.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	}
	return "none"
}

// Ext returns the file extension conventionally used for c.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	}
	return ""
}

var (
	gzipMagic  = []byte("\x1f\x8b")
	bzip2Magic = []byte("BZh")
)

// Detect peeks at the head of br and reports its compression. It does not
// consume any input.
func Detect(br *bufio.Reader) Compression {
	buf, _ := br.Peek(len(bzip2Magic))
	switch {
	case bytes.HasPrefix(buf, gzipMagic):
		return Gzip
	case bytes.HasPrefix(buf, bzip2Magic):
		return Bzip2
	}
	return None
}

// New wraps r so that reads return decompressed content. Plain input,
// including input shorter than any magic number, is returned unchanged.
func New(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	switch Detect(br) {
	case Gzip:
		return gzip.NewReader(br)
	case Bzip2:
		return bzip2.NewReader(br), nil
	}
	return br, nil
}

// NewReadCloser is like New, but closing the result also closes rc.
func NewReadCloser(rc io.ReadCloser) (io.ReadCloser, error) {
	r, err := New(rc)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return readCloser{Reader: r, c: rc}, nil
}

type readCloser struct {
	io.Reader
	c io.Closer
}

func (r readCloser) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		c.Close()
	}
	return r.c.Close()
}
