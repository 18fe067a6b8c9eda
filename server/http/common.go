package schemahttp

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/cayleygraph/quad"
)

const (
	defaultFormat      = "nquads"
	hdrContentType     = "Content-Type"
	hdrContentEncoding = "Content-Encoding"
	hdrAccept          = "Accept"
	hdrAcceptEncoding  = "Accept-Encoding"
	contentTypeJSON    = "application/json"
)

func jsonResponse(w http.ResponseWriter, code int, err interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	w.WriteHeader(code)
	w.Write([]byte(`{"error": `))
	var s string
	switch err := err.(type) {
	case string:
		s = err
	case error:
		s = err.Error()
	default:
		s = fmt.Sprint(err)
	}
	data, _ := json.Marshal(s)
	w.Write(data)
	w.Write([]byte(`}`))
}

func writeResults(w http.ResponseWriter, r interface{}) {
	w.Header().Set(hdrContentType, contentTypeJSON)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(map[string]interface{}{
		"result": r,
	})
}

// getFormat picks the output format from the "format" form value, then from
// the Accept header, then falls back to N-Quads. It returns nil when an
// explicitly named format is unknown.
func getFormat(r *http.Request, formKey string, acceptName string) *quad.Format {
	if formKey != "" {
		if name := r.FormValue(formKey); name != "" {
			return quad.FormatByName(name)
		}
	}
	if acceptName != "" {
		for _, s := range ParseAccept(r.Header, acceptName) {
			if f := quad.FormatByMime(s.Value); f != nil {
				return f
			}
		}
	}
	return quad.FormatByName(defaultFormat)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func writerFrom(w http.ResponseWriter, r *http.Request, acceptName string) io.WriteCloser {
	for _, s := range ParseAccept(r.Header, acceptName) {
		if s.Value == "gzip" {
			w.Header().Set(hdrContentEncoding, s.Value)
			return gzip.NewWriter(w)
		}
	}
	return nopWriteCloser{Writer: w}
}

type checkWriter struct {
	w       io.Writer
	written bool
}

func (w *checkWriter) Write(p []byte) (int, error) {
	w.written = true
	return w.w.Write(p)
}
