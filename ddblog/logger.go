// Package ddblog provides the structured, leveled logger used throughout
// the index engine. It never reads ambient global state — every component
// that wants to log is handed a *Logger explicitly via ddbconfig.Config.
package ddblog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger struct {
	writer io.Writer

	Name  string
	Level LogLevel

	TimeFormat string
	File       string
	NoColor    bool
	JSON       bool
	NoTerminal bool
	Rotation   *Rotation
}

type Rotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Op        string `json:"op,omitempty"`
	Message   string `json:"message"`
}

// New creates a Logger writing to stdout and, if file is non-empty, to a
// lumberjack-rotated log file colocated at that path.
func New(name string, level LogLevel, file string, noTerminal bool) *Logger {
	l := &Logger{
		Name:       name,
		Level:      level,
		File:       file,
		NoTerminal: noTerminal,

		TimeFormat: "2006-01-02 15:04:05",
		Rotation: &Rotation{
			MaxSize:    128,
			MaxBackups: 5,
			MaxAge:     16,
			Compress:   false,
		},
	}

	l.setupWriter()
	return l
}

// Discard returns a Logger that drops every line. Used as the Default()
// fallback so components never need a nil check before logging.
func Discard() *Logger {
	return &Logger{writer: io.Discard, Level: Fatal + 1, NoTerminal: true}
}

func (l *Logger) setupWriter() {
	var writers []io.Writer

	if !l.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if l.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   l.File,
			MaxSize:    l.Rotation.MaxSize,
			MaxBackups: l.Rotation.MaxBackups,
			MaxAge:     l.Rotation.MaxAge,
			Compress:   l.Rotation.Compress,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	l.writer = io.MultiWriter(writers...)
}

func (l *Logger) log(level LogLevel, op, msg string, args ...any) {
	if level < l.Level {
		return
	}

	timestamp := time.Now().Format(l.TimeFormat)
	formatted := fmt.Sprintf(msg, args...)

	if l.JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   formatted,
			Op:        op,
		}
		if l.Name != "" {
			entry.Service = l.Name
		}

		raw, _ := json.Marshal(entry)
		fmt.Fprintf(l.writer, "%s\n", raw)
	} else {
		prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
		if l.Name != "" {
			prefix = fmt.Sprintf("%s [%s]", prefix, l.Name)
		}
		if op != "" {
			prefix = fmt.Sprintf("%s (%s)", prefix, op)
		}

		if !l.NoTerminal && !l.NoColor {
			fmt.Fprintf(l.writer, "%s%s %s\033[0m\n", color(level), prefix, formatted)
		} else {
			fmt.Fprintf(l.writer, "%s %s\n", prefix, formatted)
		}
	}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(Debug, "", msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(Info, "", msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(Warn, "", msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(Error, "", msg, args...) }

// Named returns a derived Logger sharing the same writer, qualified with a
// sub-service name (e.g. logger.Named("index")).
func (l *Logger) Named(name string) *Logger {
	clone := *l
	if l.Name != "" {
		clone.Name = fmt.Sprintf("%s/%s", l.Name, name)
	} else {
		clone.Name = name
	}
	return &clone
}

// Operation starts a correlated sub-logger for a single mutating index
// operation (add/remove/sync/move), tagging every line with a fresh
// operation id so interleaved log output from concurrent working trees can
// be told apart.
type Operation struct {
	*Logger
	ID string
}

func (l *Logger) Operation(name string) *Operation {
	id := uuid.Must(uuid.NewV7()).String()
	return &Operation{Logger: l.Named(name), ID: id}
}

func (o *Operation) Debug(msg string, args ...any) { o.Logger.log(Debug, o.ID, msg, args...) }
func (o *Operation) Info(msg string, args ...any)  { o.Logger.log(Info, o.ID, msg, args...) }
func (o *Operation) Warn(msg string, args ...any)  { o.Logger.log(Warn, o.ID, msg, args...) }
func (o *Operation) Error(msg string, args ...any) { o.Logger.log(Error, o.ID, msg, args...) }
