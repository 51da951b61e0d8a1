package logger

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger records every event handed to it so tests can assert on what a
// component logged during a run. Derived loggers from WithField and friends
// report back into the same recorder, and Fatal records without exiting.
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
	zl      zerolog.Logger
}

// LogEntry is one captured event. Fields holds the union of the scope fields
// accumulated through WithField/WithFields and the fields passed at the call
// site; Err carries whatever WithError attached.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
	Err     error
}

// NewTestLogger creates an empty recorder.
func NewTestLogger() *TestLogger {
	return &TestLogger{zl: zerolog.Nop()}
}

// record folds scope state and call-site fields into a fresh map so later
// mutation of either source cannot rewrite history.
func (l *TestLogger) record(level, msg string, scope map[string]interface{}, fields map[string]interface{}, err error) {
	merged := make(map[string]interface{}, len(scope)+len(fields))
	for k, v := range scope {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{
		Level:   level,
		Message: msg,
		Fields:  merged,
		Err:     err,
	})
}

// Entries returns a copy of everything recorded so far, in order.
func (l *TestLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByLevel returns the recorded entries at one level, in order.
func (l *TestLogger) ByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []LogEntry
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Find returns the first entry with the given message.
func (l *TestLogger) Find(msg string) (LogEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Message == msg {
			return e, true
		}
	}
	return LogEntry{}, false
}

// Has reports whether an entry with the given level and message was recorded.
func (l *TestLogger) Has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// Reset discards all recorded entries.
func (l *TestLogger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
}

func (l *TestLogger) Debug(msg string) { l.record("debug", msg, nil, nil, nil) }
func (l *TestLogger) Info(msg string)  { l.record("info", msg, nil, nil, nil) }
func (l *TestLogger) Warn(msg string)  { l.record("warn", msg, nil, nil, nil) }
func (l *TestLogger) Error(msg string) { l.record("error", msg, nil, nil, nil) }
func (l *TestLogger) Fatal(msg string) { l.record("fatal", msg, nil, nil, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.record("debug", msg, nil, fields, nil)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.record("info", msg, nil, fields, nil)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.record("warn", msg, nil, fields, nil)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.record("error", msg, nil, fields, nil)
}

func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.record("fatal", msg, nil, fields, nil)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testScope{root: l, fields: map[string]interface{}{key: value}}
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	scope := &testScope{root: l, fields: make(map[string]interface{}, len(fields))}
	for k, v := range fields {
		scope.fields[k] = v
	}
	return scope
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return &testScope{root: l, err: err}
}

func (l *TestLogger) WithContext(ctx context.Context) Logger { return l }

func (l *TestLogger) GetZerolog() *zerolog.Logger { return &l.zl }

// testScope is a derived logger carrying accumulated fields and an attached
// error. Every logging call lands in the root recorder.
type testScope struct {
	root   *TestLogger
	fields map[string]interface{}
	err    error
}

func (s *testScope) Debug(msg string) { s.root.record("debug", msg, s.fields, nil, s.err) }
func (s *testScope) Info(msg string)  { s.root.record("info", msg, s.fields, nil, s.err) }
func (s *testScope) Warn(msg string)  { s.root.record("warn", msg, s.fields, nil, s.err) }
func (s *testScope) Error(msg string) { s.root.record("error", msg, s.fields, nil, s.err) }
func (s *testScope) Fatal(msg string) { s.root.record("fatal", msg, s.fields, nil, s.err) }

func (s *testScope) DebugWithFields(msg string, fields map[string]interface{}) {
	s.root.record("debug", msg, s.fields, fields, s.err)
}

func (s *testScope) InfoWithFields(msg string, fields map[string]interface{}) {
	s.root.record("info", msg, s.fields, fields, s.err)
}

func (s *testScope) WarnWithFields(msg string, fields map[string]interface{}) {
	s.root.record("warn", msg, s.fields, fields, s.err)
}

func (s *testScope) ErrorWithFields(msg string, fields map[string]interface{}) {
	s.root.record("error", msg, s.fields, fields, s.err)
}

func (s *testScope) FatalWithFields(msg string, fields map[string]interface{}) {
	s.root.record("fatal", msg, s.fields, fields, s.err)
}

func (s *testScope) WithField(key string, value interface{}) Logger {
	return s.derive(map[string]interface{}{key: value}, s.err)
}

func (s *testScope) WithFields(fields map[string]interface{}) Logger {
	return s.derive(fields, s.err)
}

func (s *testScope) WithError(err error) Logger {
	if err == nil {
		return s
	}
	return s.derive(nil, err)
}

func (s *testScope) WithContext(ctx context.Context) Logger { return s }

func (s *testScope) GetZerolog() *zerolog.Logger { return &s.root.zl }

func (s *testScope) derive(extra map[string]interface{}, err error) *testScope {
	next := &testScope{
		root:   s.root,
		fields: make(map[string]interface{}, len(s.fields)+len(extra)),
		err:    err,
	}
	for k, v := range s.fields {
		next.fields[k] = v
	}
	for k, v := range extra {
		next.fields[k] = v
	}
	return next
}
