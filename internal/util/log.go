package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

const colorReset = "\033[0m"

// logTag is how one kind of console line is printed
type logTag struct {
	level LogLevel
	label string
	color string
}

var (
	tagDebug   = logTag{LevelDebug, "[DEBUG]", "\033[90m"}
	tagInfo    = logTag{LevelInfo, "[INFO] ", "\033[36m"}
	tagWarn    = logTag{LevelWarn, "[WARN] ", "\033[33m"}
	tagError   = logTag{LevelError, "[ERROR]", "\033[31m"}
	tagSuccess = logTag{LevelInfo, "[OK]   ", "\033[32m"}
)

var (
	logMu           sync.Mutex
	logOutput       io.Writer = os.Stderr
	currentLogLevel           = LevelInfo
	useColors                 = true
)

// SetLogLevel sets the minimum log level to display
func SetLogLevel(level LogLevel) {
	logMu.Lock()
	defer logMu.Unlock()
	currentLogLevel = level
}

// SetVerbose enables verbose (debug) logging; false is a no-op
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LevelDebug)
	}
}

// SetQuiet limits output to errors; false is a no-op
func SetQuiet(quiet bool) {
	if quiet {
		SetLogLevel(LevelError)
	}
}

// IsQuiet reports whether only errors are shown
func IsQuiet() bool {
	return level() >= LevelError
}

// IsVerbose reports whether debug messages are shown
func IsVerbose() bool {
	return level() <= LevelDebug
}

// SetColors enables or disables colored output
func SetColors(enabled bool) {
	logMu.Lock()
	defer logMu.Unlock()
	useColors = enabled
}

// SetOutput redirects console logging and returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	logMu.Lock()
	defer logMu.Unlock()
	prev := logOutput
	logOutput = w
	return prev
}

func level() LogLevel {
	logMu.Lock()
	defer logMu.Unlock()
	return currentLogLevel
}

func colorize(color string, text string) string {
	if !useColors {
		return text
	}
	return color + text + colorReset
}

func logf(tag logTag, format string, args ...interface{}) {
	logMu.Lock()
	defer logMu.Unlock()
	if currentLogLevel > tag.level {
		return
	}
	stamp := colorize(tag.color, time.Now().Format("15:04:05"))
	fmt.Fprintf(logOutput, "%s %s %s\n", stamp, tag.label, fmt.Sprintf(format, args...))
}

// DebugLog logs debug messages
func DebugLog(format string, args ...interface{}) { logf(tagDebug, format, args...) }

// InfoLog logs informational messages
func InfoLog(format string, args ...interface{}) { logf(tagInfo, format, args...) }

// WarnLog logs warning messages
func WarnLog(format string, args ...interface{}) { logf(tagWarn, format, args...) }

// ErrorLog logs error messages
func ErrorLog(format string, args ...interface{}) { logf(tagError, format, args...) }

// SuccessLog logs success messages, hidden in quiet mode
func SuccessLog(format string, args ...interface{}) { logf(tagSuccess, format, args...) }
