// Package runlog implements the per-run log sink shared by the pipeline and
// the command runner.  Every line is written both to a log file and to the
// console; the file's final content is embedded verbatim into each sample's
// result record, so the sink must stay append-only and single-writer for the
// lifetime of a run.
package runlog

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is a view of the run log tagged with a component name.  Views
// created with WithComponent share the same underlying file and console
// writer, and the same mutex.
type Logger struct {
	component string
	s         *sink
}

type sink struct {
	mu      sync.Mutex
	path    string
	f       *os.File
	console io.Writer
}

// Create opens the run log file at path, truncating any existing file.
// Lines are teed to os.Stdout until SetConsole is called.
func Create(path string) (*Logger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Logger{
		component: "run",
		s:         &sink{path: path, f: f, console: os.Stdout},
	}, nil
}

// SetConsole replaces the console writer.  Tests use this to silence output.
func (l *Logger) SetConsole(w io.Writer) {
	l.s.mu.Lock()
	l.s.console = w
	l.s.mu.Unlock()
}

// WithComponent returns a view of the same sink tagged with the given
// component name.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{component: name, s: l.s}
}

// Path returns the location of the run log file.
func (l *Logger) Path() string { return l.s.path }

// Infof writes an INFO line.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.write("INFO", fmt.Sprintf(format, args...))
}

// Errorf writes an ERROR line.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write("ERROR", fmt.Sprintf(format, args...))
}

func (l *Logger) write(level, msg string) {
	line := fmt.Sprintf("%s %-8s [%s] %s\n",
		time.Now().UTC().Format("2006-01-02 15:04:05"), level, l.component, msg)
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.f != nil {
		l.s.f.WriteString(line) // nolint: errcheck
	}
	if l.s.console != nil {
		io.WriteString(l.s.console, line) // nolint: errcheck
	}
}

// Lines returns the current content of the run log file, one entry per line.
// The file is flushed before reading so the snapshot includes every line
// written so far.
func (l *Logger) Lines() ([]string, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.f != nil {
		if err := l.s.f.Sync(); err != nil {
			return nil, err
		}
	}
	data, err := ioutil.ReadFile(l.s.path)
	if err != nil {
		return nil, err
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil, nil
	}
	return strings.Split(content, "\n"), nil
}

// Close flushes and closes the log file.  Further writes go only to the
// console.
func (l *Logger) Close() error {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	if l.s.f == nil {
		return nil
	}
	err := l.s.f.Close()
	l.s.f = nil
	return err
}
