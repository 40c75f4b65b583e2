package lightlab

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type DefaultLogger struct {
	mu     sync.Mutex
	debug  bool
	prefix string
	out    *log.Logger
	err    *log.Logger
	closer io.Closer
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return newLogger(prefix, debug, os.Stdout, os.Stderr, nil)
}

// NewFileLogger writes every level to path, creating parent directories.
// Used while the terminal panel owns stdout.
func NewFileLogger(prefix string, debug bool, path string) (*DefaultLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(prefix, debug, f, f, f), nil
}

func newLogger(prefix string, debug bool, out, errOut io.Writer, closer io.Closer) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		debug:  debug,
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
		closer: closer,
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.mu.Lock()
	l.debug = enabled
	l.mu.Unlock()
}

// Close releases the file sink, if any.
func (l *DefaultLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func (l *DefaultLogger) prefixf(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.out.Print(l.prefixf("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.out.Print(l.prefixf("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.err.Print(l.prefixf("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.err.Print(l.prefixf("ERROR", format, args...))
}

// LoggingModule installs a logger as a resource.
// With File set, output goes there instead of stdout/stderr.
type LoggingModule struct {
	Prefix string
	Debug  bool
	File   string
}

func (m LoggingModule) Install(app *App, cmd *Commands) {
	if m.File != "" {
		logger, err := NewFileLogger(m.Prefix, m.Debug, m.File)
		if err == nil {
			app.addResources(logger)
			return
		}
		fmt.Fprintf(os.Stderr, "falling back to stderr logging: %v\n", err)
	}
	app.addResources(NewDefaultLogger(m.Prefix, m.Debug))
}

// Nop logger and App helper accessor

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// Logger returns the first Logger resource if present, otherwise a no-op logger.
// Safe to call at any time; never returns nil.
func (app *App) Logger() Logger {
	if app == nil {
		return NewNopLogger()
	}
	for _, r := range app.resources {
		if l, ok := r.(Logger); ok {
			return l
		}
	}
	return NewNopLogger()
}
