package clog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	lines []string
	level int
}

func (r *recorder) Infof(format string, args ...interface{}) {
	r.lines = append(r.lines, "I "+fmt.Sprintf(format, args...))
}
func (r *recorder) Warningf(format string, args ...interface{}) {
	r.lines = append(r.lines, "W "+fmt.Sprintf(format, args...))
}
func (r *recorder) Errorf(format string, args ...interface{}) {
	r.lines = append(r.lines, "E "+fmt.Sprintf(format, args...))
}
func (r *recorder) Fatalf(format string, args ...interface{}) {
	r.lines = append(r.lines, "F "+fmt.Sprintf(format, args...))
}

type leveled struct {
	recorder
}

func (l *leveled) V(level int) bool { return l.level >= level }

func TestLoggerForwarding(t *testing.T) {
	prev := logger
	defer SetLogger(prev)

	r := &recorder{}
	SetLogger(r)
	Infof("loaded %d classes", 3)
	Warningf("dropped %q", "x")
	Errorf("failed")
	require.Equal(t, []string{`I loaded 3 classes`, `W dropped "x"`, `E failed`}, r.lines)

	SetLogger(nil)
	Infof("discarded")
	require.Len(t, r.lines, 3)
}

func TestVerbosity(t *testing.T) {
	prev := logger
	defer SetLogger(prev)
	defer SetV(0)

	SetLogger(&recorder{})
	SetV(2)
	require.True(t, V(2))
	require.False(t, V(3))

	l := &leveled{}
	l.level = 1
	SetLogger(l)
	require.True(t, V(1))
	require.False(t, V(2), "leveled loggers override SetV")
}
