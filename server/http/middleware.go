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

package schemahttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/subschema/clog"
)

var mRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "subschema_http_requests_count",
	Help: "Number of served HTTP requests, by method and status.",
}, []string{"method", "code"})

// statusWriter wraps http.ResponseWriter and captures the written status code
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Handler wraps a route.
type Handler func(httprouter.Handle) httprouter.Handle

// LogRequest logs every request and its outcome.
func LogRequest(handler httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		start := time.Now()
		addr := req.Header.Get("X-Real-IP")
		if addr == "" {
			addr = req.Header.Get("X-Forwarded-For")
			if addr == "" {
				addr = req.RemoteAddr
			}
		}
		rw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		if clog.V(2) {
			clog.Infof("started %s %s for %s", req.Method, req.URL.Path, addr)
		}
		handler(rw, req, params)
		clog.Infof("completed %v %s %s in %v", rw.code, http.StatusText(rw.code), req.URL.Path, time.Since(start))
		mRequests.WithLabelValues(req.Method, strconv.Itoa(rw.code)).Inc()
	}
}

func CORSFunc(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	if origin := req.Header.Get("Origin"); origin != "" {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers",
			"Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")
	}
}

// CORS adds CORS related headers to responses
func CORS(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
		CORSFunc(w, req, params)
		h(w, req, params)
	}
}

// HandlePreflight answers CORS preflight requests.
func HandlePreflight(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	CORSFunc(w, req, params)
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth is a route for handling health checks to the server
func HandleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusNoContent)
}
