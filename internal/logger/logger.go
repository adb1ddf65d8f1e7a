// Package logger provides verbose logging for the Rostrum CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the indexing pipeline and
// the agent loop. Warnings and errors are always printed.
//
// Output goes through logrus. The default text format prints
// "[LEVEL] message key=value"; JSON format is meant for log collection.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
)

// Format selects the log line encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	format  = FormatText
	base    = newBase(os.Stderr)
)

func newBase(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&textFormatter{})
	l.SetLevel(logrus.WarnLevel)
	return l
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		base.SetLevel(logrus.DebugLevel)
	} else {
		base.SetLevel(logrus.WarnLevel)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base.SetOutput(w)
}

// SetFormat switches between text and JSON output.
func SetFormat(f Format) error {
	mu.Lock()
	defer mu.Unlock()

	switch f {
	case FormatText:
		base.SetFormatter(&textFormatter{})
	case FormatJSON:
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	default:
		return fmt.Errorf("unknown log format %q", f)
	}
	format = f
	return nil
}

// Debug prints a message if verbose mode is enabled.
func Debug(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Debugf(msg, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Infof(msg, args...)
}

// Warn prints a warning message.
func Warn(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Warnf(msg, args...)
}

// Error prints an error message.
func Error(msg string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	base.Errorf(msg, args...)
}

// WithFields returns an entry carrying structured fields.
// The entry honours the current verbosity and format.
func WithFields(fields map[string]any) *logrus.Entry {
	mu.RLock()
	defer mu.RUnlock()
	return base.WithFields(logrus.Fields(fields))
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if format == FormatJSON {
		base.WithField("section", name).Info("section")
		return
	}
	fmt.Fprintf(base.Out, "\n=== %s ===\n", name)
}

// textFormatter renders "[LEVEL] message key=value".
type textFormatter struct{}

func (f *textFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	fmt.Fprintf(&b, "[%s] %s", levelTag(e.Level), e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelTag(l logrus.Level) string {
	switch l {
	case logrus.DebugLevel, logrus.TraceLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}
