package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Logger is the logging interface threaded through config structs. All
// call sites tolerate a nil Logger.
type Logger interface {
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	debugPrefix = color.New(color.FgCyan, color.Bold).Sprint("DEBUG: ")
	infoPrefix  = color.New(color.FgGreen, color.Bold).Sprint("INFO:  ")
	warnPrefix  = color.New(color.FgYellow, color.Bold).Sprint("WARN:  ")
	errorPrefix = color.New(color.FgRed, color.Bold).Sprint("ERROR: ")
)

// StdLogger writes leveled, colored lines to a single destination.
type StdLogger struct {
	level Level
	out   io.Writer
	mu    sync.Mutex
}

// NewStdLogger returns a logger writing to stderr at the given level.
func NewStdLogger(level Level) *StdLogger {
	return &StdLogger{
		level: level,
		out:   os.Stderr,
	}
}

// NewStdLoggerWithOutput returns a logger writing to out at the given level.
func NewStdLoggerWithOutput(level Level, out io.Writer) *StdLogger {
	return &StdLogger{
		level: level,
		out:   out,
	}
}

func (l *StdLogger) log(level Level, prefix string, msg string) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	fmt.Fprintf(l.out, "%s %s%s\n", time.Now().Format(time.RFC3339), prefix, msg)
	l.mu.Unlock()
}

func (l *StdLogger) Debug(msg string) {
	l.log(LevelDebug, debugPrefix, msg)
}

func (l *StdLogger) Info(msg string) {
	l.log(LevelInfo, infoPrefix, msg)
}

func (l *StdLogger) Warn(msg string) {
	l.log(LevelWarn, warnPrefix, msg)
}

func (l *StdLogger) Error(msg string) {
	l.log(LevelError, errorPrefix, msg)
}

// NopLogger discards everything. Useful in tests.
type NopLogger struct{}

func (NopLogger) Debug(string) {}
func (NopLogger) Info(string)  {}
func (NopLogger) Warn(string)  {}
func (NopLogger) Error(string) {}
