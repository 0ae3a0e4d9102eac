package logging

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"

	"github.com/fatih/color"
)

// writer is an io.Writer that splits its input stream into lines and writes
// those lines to an underlying logger.
type writer struct {
	// callback is the logging callback.
	callback func(string)
	// buffer is any incomplete line fragment left over from a previous write.
	buffer []byte
}

// trimCarriageReturn trims any single trailing carriage return from the end of
// a byte slice.
func trimCarriageReturn(buffer []byte) []byte {
	if len(buffer) > 0 && buffer[len(buffer)-1] == '\r' {
		return buffer[:len(buffer)-1]
	}
	return buffer
}

// Write implements io.Writer.Write.
func (w *writer) Write(buffer []byte) (int, error) {
	w.buffer = append(w.buffer, buffer...)

	var processed int
	remaining := w.buffer
	for {
		index := bytes.IndexByte(remaining, '\n')
		if index == -1 {
			break
		}
		w.callback(string(trimCarriageReturn(remaining[:index])))
		processed += index + 1
		remaining = remaining[index+1:]
	}

	if processed > 0 {
		leftover := len(w.buffer) - processed
		if leftover > 0 {
			copy(w.buffer[:leftover], w.buffer[processed:])
		}
		w.buffer = w.buffer[:leftover]
	}

	return len(buffer), nil
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It is designed to use the
// standard logger provided by the log package, so it respects any flags set
// for that logger. It is safe for concurrent usage. Each Logger carries a
// Level: calls below the configured level are no-ops, so callers can log
// liberally at LevelDebug/LevelTrace without paying formatting costs in the
// common case.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level is the minimum level at which this logger emits output.
	level Level
}

// RootLogger is the root logger from which all other loggers derive. It logs
// at LevelInfo by default; callers that want more (or less) should construct
// their own root via NewLogger.
var RootLogger = &Logger{level: LevelInfo}

// NewLogger creates a new root logger at the specified level.
func NewLogger(level Level) *Logger {
	return &Logger{level: level}
}

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}

	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}

	return &Logger{
		prefix: prefix,
		level:  l.level,
	}
}

// Level returns the logger's configured level.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelDisabled
	}
	return l.level
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// enabled reports whether a message at the given level should be emitted.
func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

// Print logs information with semantics equivalent to fmt.Print.
func (l *Logger) Print(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Printf logs information with semantics equivalent to fmt.Printf.
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Println logs information with semantics equivalent to fmt.Println.
func (l *Logger) Println(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Writer returns an io.Writer that writes lines using Println.
func (l *Logger) Writer() io.Writer {
	if !l.enabled(LevelInfo) {
		return ioutil.Discard
	}
	return &writer{callback: func(s string) { l.Println(s) }}
}

// Debug logs information with semantics equivalent to fmt.Print, gated on
// LevelDebug.
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, gated on
// LevelDebug.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debugln logs information with semantics equivalent to fmt.Println, gated on
// LevelDebug.
func (l *Logger) Debugln(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintln(v...))
	}
}

// DebugWriter returns an io.Writer that writes lines using Debugln.
func (l *Logger) DebugWriter() io.Writer {
	if !l.enabled(LevelDebug) {
		return ioutil.Discard
	}
	return &writer{callback: func(s string) { l.Debugln(s) }}
}

// Trace logs information with semantics equivalent to fmt.Print, gated on
// LevelTrace.
func (l *Logger) Trace(v ...interface{}) {
	if l.enabled(LevelTrace) {
		l.output(3, fmt.Sprint(v...))
	}
}

// Warn logs error information with a warning prefix and yellow color, gated
// on LevelWarn.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Error logs error information with an error prefix and red color, gated on
// LevelError.
func (l *Logger) Error(err error) {
	if l.enabled(LevelError) {
		l.output(3, color.RedString("Error: %v", err))
	}
}
