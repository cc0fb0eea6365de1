package monitor

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel orders log lines; lines below the active level are dropped.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "INFO"
}

// ParseLogLevel accepts debug, info, warn (or warning) and error in any case.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// leveledLogger prefixes every line with its level tag.
type leveledLogger struct {
	level atomic.Int32
	out   *log.Logger
}

func newLeveledLogger(w io.Writer, flags int) *leveledLogger {
	l := &leveledLogger{out: log.New(w, "", flags)}
	l.level.Store(int32(LevelInfo))
	return l
}

func (l *leveledLogger) enabled(lv LogLevel) bool { return LogLevel(l.level.Load()) <= lv }

func (l *leveledLogger) print(lv LogLevel, msg string) {
	l.out.Printf("[%s] %s", lv, msg)
}

// std is shared by the session, reader, render and export code.
var std = newLeveledLogger(os.Stderr, log.Ldate|log.Ltime|log.Lmicroseconds)

// SetLogLevel switches the active level. It reports false and keeps the current
// level when s is not a known level name.
func SetLogLevel(s string) bool {
	lv, err := ParseLogLevel(s)
	if err != nil {
		return false
	}
	std.level.Store(int32(lv))
	return true
}

// GetLogLevel returns the active level.
func GetLogLevel() LogLevel { return LogLevel(std.level.Load()) }

// SetLogOutput sends log lines to w.
func SetLogOutput(w io.Writer) { std.out.SetOutput(w) }

func logf(lv LogLevel, format string, args ...interface{}) {
	if !std.enabled(lv) {
		return
	}
	// Without args the text may hold a raw device line; a literal % must survive.
	if len(args) == 0 {
		std.print(lv, format)
		return
	}
	std.print(lv, fmt.Sprintf(format, args...))
}

func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// TimeTrack is deferred as TimeTrack(time.Now(), "phase") and logs the elapsed time at debug.
func TimeTrack(start time.Time, label string) {
	if std.enabled(LevelDebug) {
		std.print(LevelDebug, fmt.Sprintf("%s took %s", label, time.Since(start)))
	}
}
