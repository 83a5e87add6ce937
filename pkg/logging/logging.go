// Package logging provides the structured logger shared by the sphere engine,
// its command stack and the interactive front ends.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level represents a log level
type Level int

const (
	// DebugLevel carries per-pass propagation detail
	DebugLevel Level = iota
	// InfoLevel is the default; command execution is logged here
	InfoLevel
	// WarnLevel is used for geometry that stopped existing
	WarnLevel
	// ErrorLevel is reserved for integrity violations
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name to a Level, falling back to InfoLevel.
func ParseLevel(s string) Level {
	level, err := LookupLevel(s)
	if err != nil {
		return InfoLevel
	}
	return level
}

// LookupLevel is the strict form of ParseLevel used by configuration validation.
func LookupLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DebugLevel, nil
	case "INFO", "":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Format selects the line encoding of a logger.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Field is a key-value pair attached to a log line
type Field struct {
	Key   string
	Value any
}

// Logger is the interface for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	// With returns a child logger that prefixes every line with fields.
	With(fields ...Field) Logger
	SetLevel(level Level)
	GetLevel() Level
}

// New builds a logger for the given format. Unknown formats get JSON.
func New(format Format, level Level, w io.Writer) Logger {
	if w == nil {
		w = os.Stderr
	}
	if format == FormatText {
		return NewTextLogger(w, level)
	}
	return NewJSONLogger(w, level)
}

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// NopLogger discards everything. Used as the zero-value logger in tests.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field)       {}
func (NopLogger) Info(string, ...Field)        {}
func (NopLogger) Warn(string, ...Field)        {}
func (NopLogger) Error(string, ...Field)       {}
func (n NopLogger) With(...Field) Logger       { return n }
func (NopLogger) SetLevel(Level)               {}
func (NopLogger) GetLevel() Level              { return InfoLevel }

// core holds the state shared by the JSON and text loggers. Children created
// with With share the parent's writer lock so lines never interleave.
type core struct {
	mu     *sync.Mutex
	writer io.Writer
	level  *Level
	fields []Field
	encode func(w io.Writer, level Level, msg string, fields []Field)
}

func newCore(w io.Writer, level Level, encode func(io.Writer, Level, string, []Field)) *core {
	lvl := level
	return &core{mu: &sync.Mutex{}, writer: w, level: &lvl, encode: encode}
}

func (c *core) log(level Level, msg string, fields []Field) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if level < *c.level {
		return
	}
	all := make([]Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)
	c.encode(c.writer, level, msg, all)
}

func (c *core) child(fields []Field) *core {
	merged := make([]Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &core{mu: c.mu, writer: c.writer, level: c.level, fields: merged, encode: c.encode}
}

func (c *core) setLevel(level Level) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.level = level
}

func (c *core) getLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return *c.level
}
