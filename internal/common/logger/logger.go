package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aportsknife/aportsknife/internal/common/xdg"
)

// Level represents the logging level
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelQuiet // No output
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// terminalPrefix is prepended to terminal lines so warnings and errors stand
// out between abuild progress output.
var terminalPrefix = map[Level]string{
	LevelWarn:  "warning: ",
	LevelError: "error: ",
}

// LogFileName is the file created inside LogDir when file logging is enabled.
const LogFileName = "aportsknife.log"

// Logger handles application logging
type Logger struct {
	level      Level
	output     io.Writer
	fileOutput io.WriteCloser
	nowFunc    func() time.Time
	mu         sync.Mutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a logger writing terminal output to w at LevelInfo.
func New(w io.Writer) *Logger {
	return &Logger{
		level:   LevelInfo,
		output:  w,
		nowFunc: time.Now,
	}
}

// Default returns the default logger instance
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(os.Stderr)
	})
	return defaultLogger
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the current logging level
func (l *Logger) Level() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetVerbose enables debug output
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.SetLevel(LevelDebug)
	}
}

// SetQuiet disables all output except errors
func (l *Logger) SetQuiet(quiet bool) {
	if quiet {
		l.SetLevel(LevelError)
	}
}

// EnableFileLogging appends every message, regardless of level, to
// LogDir()/aportsknife.log.
func (l *Logger) EnableFileLogging() (string, error) {
	logDir, err := LogDir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(logDir, LogFileName)
	return path, l.EnableFileLoggingAt(path)
}

// EnableFileLoggingAt appends every message to the file at path.
func (l *Logger) EnableFileLoggingAt(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileOutput != nil {
		l.fileOutput.Close()
	}
	l.fileOutput = f
	return nil
}

// Close closes the log file if open
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fileOutput != nil {
		l.fileOutput.Close()
		l.fileOutput = nil
	}
}

// LogDir returns the log directory path
func LogDir() (string, error) {
	state, err := xdg.StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(state, "logs"), nil
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)

	// The file receives everything so a quiet run still leaves a trace
	if l.fileOutput != nil {
		now := time.Now
		if l.nowFunc != nil {
			now = l.nowFunc
		}
		fmt.Fprintf(l.fileOutput, "[%s] %s: %s\n", now().Format("2006-01-02 15:04:05"), levelNames[level], msg)
	}

	if level < l.level || l.output == nil {
		return
	}
	fmt.Fprint(l.output, terminalPrefix[level]+msg+"\n")
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Package-level convenience functions
func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }
func Info(format string, args ...interface{})  { Default().Info(format, args...) }
func Warn(format string, args ...interface{})  { Default().Warn(format, args...) }
func Error(format string, args ...interface{}) { Default().Error(format, args...) }
func SetVerbose(v bool)                        { Default().SetVerbose(v) }
func SetQuiet(q bool)                          { Default().SetQuiet(q) }
func Close()                                   { Default().Close() }
