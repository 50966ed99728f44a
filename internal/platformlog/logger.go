// Package platformlog provides a minimal leveled logger shared across the
// CLI, HTTP server, and analytical core.
package platformlog

import (
	"fmt"
	"log"
	"os"
)

// LogLevel orders the severities from most to least verbose.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) tag() string {
	switch l {
	case DEBUG:
		return "[DEBUG]"
	case INFO:
		return "[INFO]"
	case WARN:
		return "[WARN]"
	case ERROR:
		return "[ERROR]"
	default:
		return "[UNKNOWN]"
	}
}

// Logger filters messages below its configured level before writing them
// through a wrapped standard-library logger.
type Logger struct {
	level  LogLevel
	logger *log.Logger
}

// New builds a Logger at the given level, writing to stderr.
func New(level LogLevel) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(os.Stderr, "", log.LstdFlags),
	}
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	// Depth 3 skips log and the exported level method, so Lshortfile
	// reports the caller of the Logger.
	_ = l.logger.Output(3, fmt.Sprintf("%s %s", level.tag(), fmt.Sprintf(format, args...)))
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})   { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{})  { l.log(ERROR, format, args...) }

var defaultLogger = New(INFO)

// SetLevel adjusts the package-level default logger's minimum level.
func SetLevel(level LogLevel) {
	defaultLogger.level = level
}

// Debug logs at DEBUG through the default logger.
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }

// Info logs at INFO through the default logger.
func Info(format string, args ...interface{}) { defaultLogger.Info(format, args...) }

// Warn logs at WARN through the default logger.
func Warn(format string, args ...interface{}) { defaultLogger.Warn(format, args...) }

// Error logs at ERROR through the default logger.
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
