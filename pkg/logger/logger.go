// Package logger provides a small structured logging interface backed by
// charmbracelet/log.
package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	callerSkipFrames = 3 // getCaller -> emit -> logging method -> actual caller
)

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value interface{}
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Uint64(key string, val uint64) Field          { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val interface{}) Field        { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

// Option configures Init.
type Option func(*options)

type options struct {
	writer io.Writer
	format string
}

// WithWriter sends log output to w instead of stdout.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithFormat selects the output format: text, json or logfmt.
func WithFormat(format string) Option {
	return func(o *options) {
		o.format = strings.ToLower(strings.TrimSpace(format))
	}
}

// charmLogger implements Logger on top of a charmbracelet logger. Level
// filtering happens here against the global level so that named children
// follow later SetLevel calls.
type charmLogger struct {
	l *log.Logger
}

func (c *charmLogger) Named(name string) Logger {
	prefix := name
	if p := c.l.GetPrefix(); p != "" {
		prefix = p + "." + name
	}
	return &charmLogger{l: c.l.WithPrefix(prefix)}
}

func (c *charmLogger) Info(_ context.Context, msg string, fields ...Field) {
	c.emit(log.InfoLevel, msg, fields)
}

func (c *charmLogger) Error(_ context.Context, msg string, fields ...Field) {
	c.emit(log.ErrorLevel, msg, fields)
}

func (c *charmLogger) Debug(_ context.Context, msg string, fields ...Field) {
	c.emit(log.DebugLevel, msg, fields)
}

func (c *charmLogger) Warn(_ context.Context, msg string, fields ...Field) {
	c.emit(log.WarnLevel, msg, fields)
}

func (c *charmLogger) Fatal(_ context.Context, msg string, fields ...Field) {
	c.emit(log.ErrorLevel, msg, fields)
	os.Exit(1)
}

func (c *charmLogger) emit(level log.Level, msg string, fields []Field) {
	if level < log.Level(currentLevel.Load()) {
		return
	}
	fields = append(fields, String("source", getCaller()))
	c.l.Log(level, msg, convertFields(fields)...)
}

// convertFields flattens fields into alternating keys and values.
func convertFields(fields []Field) []interface{} {
	kv := make([]interface{}, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}

var (
	global       atomic.Pointer[charmLogger]
	currentLevel atomic.Int64
)

// Init initializes the global logger at info level.
func Init(opts ...Option) error {
	o := options{writer: os.Stdout, format: "text"}
	for _, opt := range opts {
		opt(&o)
	}

	l := log.NewWithOptions(o.writer, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           log.DebugLevel,
	})
	switch o.format {
	case "", "text":
		l.SetFormatter(log.TextFormatter)
	case "json":
		l.SetFormatter(log.JSONFormatter)
	case "logfmt":
		l.SetFormatter(log.LogfmtFormatter)
	default:
		return fmt.Errorf("unknown log format: %s", o.format)
	}

	currentLevel.Store(int64(log.InfoLevel))
	global.Store(&charmLogger{l: l})
	return nil
}

// getCaller returns the caller location as relative/path/file.go:line.
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	relPath, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s:%d", relPath, line)
}

// Get returns the global logger.
func Get() Logger {
	l := global.Load()
	if l == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return l
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries. The backend writes synchronously.
func Sync() error {
	return nil
}

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		currentLevel.Store(int64(log.DebugLevel))
	case "", "info":
		currentLevel.Store(int64(log.InfoLevel))
	case "warn", "warning":
		currentLevel.Store(int64(log.WarnLevel))
	case "error":
		currentLevel.Store(int64(log.ErrorLevel))
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
