package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(levelStr string) LogLevel {
	switch levelStr {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is the leveled logging interface components receive. Every
// state change logs through one of these instead of printing directly.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Leveled is a Logger that filters by level and writes through the
// standard library logger.
type Leveled struct {
	level  LogLevel
	logger *log.Logger
	file   *os.File
}

// New creates a Leveled logger writing to w.
func New(level LogLevel, w io.Writer) *Leveled {
	return &Leveled{
		level:  level,
		logger: log.New(w, "", log.LstdFlags),
	}
}

// NewFile creates a Leveled logger appending to the given file path,
// creating parent directories as needed.
func NewFile(level LogLevel, path string) (*Leveled, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(level, file)
	l.file = file
	return l, nil
}

// Close closes the log file, if any.
func (l *Leveled) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Leveled) log(level LogLevel, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.logger.Printf("[%s] %s", level.String(), fmt.Sprintf(format, args...))
}

func (l *Leveled) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

func (l *Leveled) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

func (l *Leveled) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

func (l *Leveled) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

type discard struct{}

func (discard) Debug(string, ...interface{}) {}
func (discard) Info(string, ...interface{})  {}
func (discard) Warn(string, ...interface{})  {}
func (discard) Error(string, ...interface{}) {}

// Discard returns a Logger that drops everything. Useful in tests.
func Discard() Logger {
	return discard{}
}
