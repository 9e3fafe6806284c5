// Package logger contains a leveled, multi-destination log handler.
package logger

import (
	"bytes"
	"os"
	"sync"
	"time"

	"github.com/gookit/color"
	"golang.org/x/term"
)

// Level is a log severity.
type Level int

// Log severities, in increasing order.
const (
	Debug Level = iota
	Info
	Warn
	Error
)

// Writer is implemented by anything that accepts log lines. Components take
// a Writer rather than a concrete *Logger so tests can substitute a recorder.
type Writer interface {
	Log(level Level, format string, args ...interface{})
}

type destination interface {
	log(t time.Time, level Level, format string, args ...interface{})
	close()
}

// Logger is a log handler writing to one or more destinations.
type Logger struct {
	level        Level
	destinations []destination
	mutex        sync.Mutex
}

// New allocates a Logger writing to stdout, and additionally to filePath
// when it is non-empty.
func New(level Level, filePath string) (*Logger, error) {
	lh := &Logger{level: level}

	lh.destinations = append(lh.destinations, newDestinationStdout(os.Stdout))

	if filePath != "" {
		dest, err := newDestinationFile(filePath)
		if err != nil {
			lh.Close()
			return nil, err
		}
		lh.destinations = append(lh.destinations, dest)
	}

	return lh, nil
}

// Close closes every destination.
func (lh *Logger) Close() {
	for _, dest := range lh.destinations {
		dest.close()
	}
}

// Log writes a log entry to every destination at or above the configured level.
func (lh *Logger) Log(level Level, format string, args ...interface{}) {
	if level < lh.level {
		return
	}

	lh.mutex.Lock()
	defer lh.mutex.Unlock()

	t := time.Now()
	for _, dest := range lh.destinations {
		dest.log(t, level, format, args...)
	}
}

func writePlainTime(buf *bytes.Buffer, t time.Time, useColor bool) {
	s := t.Format("2006/01/02 15:04:05")
	if useColor {
		buf.WriteString(color.RenderString(color.Gray.Code(), s))
	} else {
		buf.WriteString(s)
	}
	buf.WriteByte(' ')
}

func writeLevel(buf *bytes.Buffer, level Level, useColor bool) {
	var s string
	var code color.Color

	switch level {
	case Debug:
		s, code = "DEB", color.Debug
	case Info:
		s, code = "INF", color.Green
	case Warn:
		s, code = "WAR", color.Warn
	case Error:
		s, code = "ERR", color.Error
	}

	if useColor {
		buf.WriteString(color.RenderString(code.Code(), s))
	} else {
		buf.WriteString(s)
	}
	buf.WriteByte(' ')
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
