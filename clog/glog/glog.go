// Package glog installs github.com/golang/glog as the clog backend.
//
// Import it for side effects from a main package:
//
//	import _ "github.com/cayleygraph/subschema/clog/glog"
package glog

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/cayleygraph/subschema/clog"
)

func init() {
	clog.SetLogger(Logger{})
}

// Logger forwards clog calls to glog, skipping the clog frames so that
// file:line in the log points at the caller.
type Logger struct{}

func (Logger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(2, fmt.Sprintf(format, args...))
}
func (Logger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(2, fmt.Sprintf(format, args...))
}
func (Logger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(2, fmt.Sprintf(format, args...))
}
func (Logger) Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(2, fmt.Sprintf(format, args...))
}

// V reports glog's -v level, so clog.V follows the command line flag.
func (Logger) V(level int) bool {
	return bool(glog.V(glog.Level(level)))
}
