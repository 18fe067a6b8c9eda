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

package schemahttp

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// AcceptSpec is one entry of an Accept-style header.
type AcceptSpec struct {
	Value string
	Q     float64
}

// ParseAccept parses the named header of h into specs ordered by
// decreasing quality. Entries with equal quality keep their header order.
func ParseAccept(h http.Header, name string) []AcceptSpec {
	var out []AcceptSpec
	for _, line := range h[http.CanonicalHeaderKey(name)] {
		for _, part := range strings.Split(line, ",") {
			params := strings.Split(part, ";")
			v := strings.TrimSpace(params[0])
			if v == "" {
				continue
			}
			spec := AcceptSpec{Value: strings.ToLower(v), Q: 1}
			for _, p := range params[1:] {
				p = strings.TrimSpace(p)
				if !strings.HasPrefix(p, "q=") {
					continue
				}
				if q, err := strconv.ParseFloat(p[2:], 64); err == nil {
					spec.Q = q
				}
			}
			if spec.Q <= 0 {
				continue
			}
			out = append(out, spec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Q > out[j].Q })
	return out
}
