package lightlab

import (
	"fmt"
	"sync"
)

// newTestApp builds a stateless app with the given modules installed.
func newTestApp(modules ...Module) *App {
	return NewAppBuilder().UseModule(modules...).Build()
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, format string, args ...any) {
	l.mu.Lock()
	l.lines = append(l.lines, level+": "+fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *recordingLogger) DebugEnabled() bool                { return true }
func (l *recordingLogger) SetDebug(bool)                     {}
func (l *recordingLogger) Debugf(format string, args ...any) { l.record("DEBUG", format, args...) }
func (l *recordingLogger) Infof(format string, args ...any)  { l.record("INFO", format, args...) }
func (l *recordingLogger) Warnf(format string, args ...any)  { l.record("WARN", format, args...) }
func (l *recordingLogger) Errorf(format string, args ...any) { l.record("ERROR", format, args...) }

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type loggerModule struct {
	logger Logger
}

func (m loggerModule) Install(app *App, cmd *Commands) {
	app.addResources(m.logger)
}
