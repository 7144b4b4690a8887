// Package logger provides the console logger used by every vibe-sync command.
//
// Console lines carry a colored tag ([INFO], [OK], [WARN], [ERROR]) and are
// mirrored to a zerolog logger so the log file keeps structured fields.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Logger is the logging interface consumed by the core packages.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	OK(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
}

// NoOp discards everything.
type NoOp struct{}

func (NoOp) Debug(msg string, fields ...interface{})            {}
func (NoOp) Info(msg string, fields ...interface{})             {}
func (NoOp) OK(msg string, fields ...interface{})               {}
func (NoOp) Warn(msg string, fields ...interface{})             {}
func (NoOp) Error(msg string, err error, fields ...interface{}) {}

var (
	infoTag  = color.New(color.FgBlue).Sprint("[INFO]")
	okTag    = color.New(color.FgGreen).Sprint("[OK]")
	warnTag  = color.New(color.FgYellow).Sprint("[WARN]")
	errorTag = color.New(color.FgRed).Sprint("[ERROR]")
)

// Console writes tagged lines to out (errors to errOut) and mirrors them to zl.
type Console struct {
	out    io.Writer
	errOut io.Writer
	zl     zerolog.Logger
}

// NewConsole creates a Console on stdout/stderr.
func NewConsole(zl zerolog.Logger) *Console {
	return &Console{out: os.Stdout, errOut: os.Stderr, zl: zl}
}

// NewConsoleWriter creates a Console writing to the given writers.
func NewConsoleWriter(out, errOut io.Writer, zl zerolog.Logger) *Console {
	return &Console{out: out, errOut: errOut, zl: zl}
}

func (c *Console) Debug(msg string, fields ...interface{}) {
	withFields(c.zl.Debug(), fields).Msg(msg)
}

func (c *Console) Info(msg string, fields ...interface{}) {
	fmt.Fprintln(c.out, infoTag, msg+formatFields(fields))
	withFields(c.zl.Info(), fields).Msg(msg)
}

func (c *Console) OK(msg string, fields ...interface{}) {
	fmt.Fprintln(c.out, okTag, msg+formatFields(fields))
	withFields(c.zl.Info(), fields).Bool("ok", true).Msg(msg)
}

func (c *Console) Warn(msg string, fields ...interface{}) {
	fmt.Fprintln(c.out, warnTag, msg+formatFields(fields))
	withFields(c.zl.Warn(), fields).Msg(msg)
}

func (c *Console) Error(msg string, err error, fields ...interface{}) {
	line := msg + formatFields(fields)
	if err != nil {
		line += ": " + err.Error()
	}
	fmt.Fprintln(c.errOut, errorTag, line)
	withFields(c.zl.Error().Err(err), fields).Msg(msg)
}

// withFields attaches alternating key/value pairs to an event.
func withFields(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprint(fields[i])
		}
		e = e.Interface(key, fields[i+1])
	}
	return e
}

// formatFields renders key/value pairs as " (k=v, k=v)".
func formatFields(fields []interface{}) string {
	if len(fields) < 2 {
		return ""
	}
	parts := make([]string, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		parts = append(parts, fmt.Sprintf("%v=%v", fields[i], fields[i+1]))
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// Level identifies the kind of a recorded entry.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelOK    Level = "ok"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Entry is one message captured by Recorder.
type Entry struct {
	Level   Level
	Message string
	Err     error
	Fields  []interface{}
}

// Recorder keeps every message in memory. Tests use it to check what a
// command reported.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

func (r *Recorder) add(level Level, msg string, err error, fields []interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Level: level, Message: msg, Err: err, Fields: fields})
}

func (r *Recorder) Debug(msg string, fields ...interface{}) { r.add(LevelDebug, msg, nil, fields) }
func (r *Recorder) Info(msg string, fields ...interface{})  { r.add(LevelInfo, msg, nil, fields) }
func (r *Recorder) OK(msg string, fields ...interface{})    { r.add(LevelOK, msg, nil, fields) }
func (r *Recorder) Warn(msg string, fields ...interface{})  { r.add(LevelWarn, msg, nil, fields) }
func (r *Recorder) Error(msg string, err error, fields ...interface{}) {
	r.add(LevelError, msg, err, fields)
}

// Messages returns the messages recorded at level.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.Entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (r *Recorder) Contains(level Level, substr string) bool {
	for _, msg := range r.Messages(level) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
