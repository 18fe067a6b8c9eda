package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cayleygraph/subschema"
	"github.com/cayleygraph/subschema/ontology"
)

// Exporter writes a build result as text. The first write error is kept and
// every later write becomes a no-op.
type Exporter struct {
	wr    io.Writer
	err   error
	count int32
}

func NewExporter(writer io.Writer) *Exporter {
	return &Exporter{wr: writer}
}

// Count returns the number of records written: diagnostics for a report,
// properties for a JSON document.
func (exp *Exporter) Count() int32 {
	return exp.count
}

// ExportJson writes res as a single JSON document.
func (exp *Exporter) ExportJson(res *subschema.Result) {
	var jstr []byte
	jstr, exp.err = json.Marshal(res)
	if exp.err != nil {
		return
	}
	exp.count += int32(len(res.Properties))
	exp.Write(string(jstr))
	exp.Write("\n")
}

// ExportReport writes a human readable summary of res followed by one line
// per diagnostic, grouped by kind.
func (exp *Exporter) ExportReport(res *subschema.Result) {
	exp.Printf("schema %s from %s\n", res.Version, res.Source)
	if m := res.Snapshot; m != nil {
		exp.Printf("snapshot: %d bytes fetched %s\n", m.Size, m.Fetched.Format(time.RFC3339))
	}
	exp.Printf("classes: %d retained of %d\n", res.Allowed.Len(), len(res.Classes))
	if top := res.Hierarchy().Roots(); len(top) != 0 {
		names := make([]string, len(top))
		for i, c := range top {
			names[i] = string(c.Name())
		}
		exp.Printf("top classes: %s\n", strings.Join(names, ", "))
	}
	exp.Printf("properties: %d projected, %d excluded\n", len(res.Properties), res.Excluded)
	if res.Diagnostics.Len() == 0 {
		return
	}
	exp.Printf("diagnostics: %d\n", res.Diagnostics.Len())
	for _, k := range ontology.Kinds() {
		list := res.Diagnostics.Of(k)
		if len(list) == 0 {
			continue
		}
		exp.Printf("\n[%s] %d\n", k, len(list))
		for _, d := range list {
			exp.count++
			exp.Printf("  %s\n", d)
		}
	}
}

// Printf writes a formatted string.
func (exp *Exporter) Printf(format string, args ...interface{}) {
	if exp.err != nil {
		return
	}
	_, exp.err = fmt.Fprintf(exp.wr, format, args...)
}

func (exp *Exporter) Write(str string) {
	if exp.err != nil {
		return
	}
	_, exp.err = io.WriteString(exp.wr, str)
}

func (exp *Exporter) Err() error {
	return exp.err
}
