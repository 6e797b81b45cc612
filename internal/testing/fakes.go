package testing

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vvka-141/edseed/pkg/edseed"
)

// LogEntry is one message captured by RecordingLogger.
type LogEntry struct {
	Level   string
	Message string
}

// RecordingLogger keeps every message for later assertions.
// Safe for concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) log(level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *RecordingLogger) Verbose(format string, args ...interface{}) {
	l.log("verbose", format, args...)
}
func (l *RecordingLogger) Info(format string, args ...interface{})  { l.log("info", format, args...) }
func (l *RecordingLogger) Warn(format string, args ...interface{})  { l.log("warn", format, args...) }
func (l *RecordingLogger) Error(format string, args ...interface{}) { l.log("error", format, args...) }

// Messages returns the messages logged at level, in order.
func (l *RecordingLogger) Messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at any level contains substr.
func (l *RecordingLogger) Contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, e := range l.entries {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// MemorySource serves a fixed table, or a fixed error.
type MemorySource struct {
	SourceName string
	Table      *edseed.Table
	Err        error
}

// NewMemorySource builds a source from a header and positional rows.
func NewMemorySource(name string, header []string, rows ...[]string) *MemorySource {
	table := &edseed.Table{Name: name, Header: header}
	for _, cells := range rows {
		row := make(edseed.Row, len(header))
		for i, h := range header {
			if i < len(cells) {
				row[h] = cells[i]
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return &MemorySource{SourceName: name, Table: table}
}

func (s *MemorySource) Name() string {
	return s.SourceName
}

func (s *MemorySource) Read(ctx context.Context) (*edseed.Table, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Table, nil
}

// MemorySink applies upserts to in-memory tables and records every call.
// Fail, when set, is consulted before each call; a non-nil result fails
// the call without applying it.
type MemorySink struct {
	mu     sync.Mutex
	Calls  []edseed.UpsertRequest
	Fail   func(req edseed.UpsertRequest) error
	tables map[string]map[string][]any
	order  map[string][]string
}

func NewMemorySink() *MemorySink {
	return &MemorySink{
		tables: make(map[string]map[string][]any),
		order:  make(map[string][]string),
	}
}

func (s *MemorySink) Upsert(ctx context.Context, req edseed.UpsertRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Calls = append(s.Calls, req)
	if s.Fail != nil {
		if err := s.Fail(req); err != nil {
			return err
		}
	}

	rows, ok := s.tables[req.Table]
	if !ok {
		rows = make(map[string][]any)
		s.tables[req.Table] = rows
	}
	for _, row := range req.Rows {
		key := conflictKey(req, row)
		if _, exists := rows[key]; !exists {
			s.order[req.Table] = append(s.order[req.Table], key)
		}
		rows[key] = row
	}
	return nil
}

// Rows returns the stored rows of table in first-insert order.
func (s *MemorySink) Rows(table string) [][]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out [][]any
	for _, key := range s.order[table] {
		out = append(out, s.tables[table][key])
	}
	return out
}

// CallCount returns the number of Upsert calls made so far.
func (s *MemorySink) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

func conflictKey(req edseed.UpsertRequest, row []any) string {
	parts := make([]string, 0, len(req.ConflictKey))
	for _, k := range req.ConflictKey {
		for i, c := range req.Columns {
			if c == k {
				parts = append(parts, fmt.Sprint(deref(row[i])))
			}
		}
	}
	return strings.Join(parts, "\x1f")
}

func deref(v any) any {
	switch p := v.(type) {
	case *int64:
		if p == nil {
			return nil
		}
		return *p
	case *float64:
		if p == nil {
			return nil
		}
		return *p
	}
	return v
}

var (
	_ edseed.Logger      = (*RecordingLogger)(nil)
	_ edseed.TableSource = (*MemorySource)(nil)
	_ edseed.Sink        = (*MemorySink)(nil)
)
