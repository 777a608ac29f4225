// Package log is the plain process logger, used before the monitor UI owns
// the terminal and for failures that abort startup. Messages raised while
// the UI is running go through its scrolling history instead.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Level filters messages: anything below the active level is dropped.
type Level int

const (
	DEBUG Level = iota - 1
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel maps a config or environment string to a Level. An empty or
// unrecognised string leaves the default in place.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	}
	return INFO, false
}

var (
	level  = INFO
	writer io.Writer = os.Stderr

	// exit is swapped out by tests of the fatal path.
	exit = func() { os.Exit(1) }
)

// SetLevel sets the minimum level that will be written.
func SetLevel(l Level) { level = l }

// SetOutput redirects log output, primarily for tests.
func SetOutput(w io.Writer) { writer = w }

func write(l Level, format string, args []interface{}) {
	if l < level {
		return
	}
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "???", 0
	}
	msg := fmt.Sprint(args...)
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	fmt.Fprintf(writer, "%s %-5s %s:%d %s\n",
		time.Now().Format("15:04:05.000"), l, filepath.Base(file), line, msg)
}

func Debug(args ...interface{})                 { write(DEBUG, "", args) }
func Debugf(format string, args ...interface{}) { write(DEBUG, format, args) }
func Info(args ...interface{})                  { write(INFO, "", args) }
func Infof(format string, args ...interface{})  { write(INFO, format, args) }
func Warn(args ...interface{})                  { write(WARN, "", args) }
func Warnf(format string, args ...interface{})  { write(WARN, format, args) }
func Error(args ...interface{})                 { write(ERROR, "", args) }
func Errorf(format string, args ...interface{}) { write(ERROR, format, args) }

// Fatal logs the message and stops the process.
func Fatal(args ...interface{}) {
	write(FATAL, "", args)
	exit()
}

// Fatalf logs the formatted message and stops the process.
func Fatalf(format string, args ...interface{}) {
	write(FATAL, format, args)
	exit()
}
