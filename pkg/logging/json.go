package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// LogEntry is one JSON log line
type LogEntry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// JSONLogger writes one JSON object per line
type JSONLogger struct {
	c *core
}

// NewJSONLogger creates a new JSON logger
func NewJSONLogger(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{c: newCore(w, level, encodeJSON)}
}

func encodeJSON(w io.Writer, level Level, msg string, fields []Field) {
	entry := LogEntry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fields) > 0 {
		entry.Fields = make(map[string]any, len(fields))
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "[ERROR] Failed to marshal log entry: %v\n", err)
		return
	}
	w.Write(append(data, '\n'))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.c.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.c.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.c.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.c.log(ErrorLevel, msg, fields) }

func (l *JSONLogger) With(fields ...Field) Logger {
	return &JSONLogger{c: l.c.child(fields)}
}

func (l *JSONLogger) SetLevel(level Level) { l.c.setLevel(level) }
func (l *JSONLogger) GetLevel() Level      { return l.c.getLevel() }
