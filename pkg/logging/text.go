package logging

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// TextLogger writes human-readable key=value lines, used by the REPL.
type TextLogger struct {
	c *core
}

// NewTextLogger creates a new text logger
func NewTextLogger(w io.Writer, level Level) *TextLogger {
	return &TextLogger{c: newCore(w, level, encodeText)}
}

func encodeText(w io.Writer, level Level, msg string, fields []Field) {
	var b strings.Builder
	b.WriteString(time.Now().Format("15:04:05.000"))
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%-5s %s", level, msg)
	for _, f := range fields {
		value := fmt.Sprint(f.Value)
		if strings.ContainsAny(value, " \t\"") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&b, " %s=%s", f.Key, value)
	}
	b.WriteByte('\n')
	io.WriteString(w, b.String())
}

func (l *TextLogger) Debug(msg string, fields ...Field) { l.c.log(DebugLevel, msg, fields) }
func (l *TextLogger) Info(msg string, fields ...Field)  { l.c.log(InfoLevel, msg, fields) }
func (l *TextLogger) Warn(msg string, fields ...Field)  { l.c.log(WarnLevel, msg, fields) }
func (l *TextLogger) Error(msg string, fields ...Field) { l.c.log(ErrorLevel, msg, fields) }

func (l *TextLogger) With(fields ...Field) Logger {
	return &TextLogger{c: l.c.child(fields)}
}

func (l *TextLogger) SetLevel(level Level) { l.c.setLevel(level) }
func (l *TextLogger) GetLevel() Level      { return l.c.getLevel() }
