// Package console writes human-readable logfmt entries to an io.Writer. It is
// the default provider for the CLI, which keeps diagnostics on stderr.
package console

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Level is the severity of an entry.
type Level uint8

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelLabels = [...]string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

var levelsByName = map[string]Level{
	"trace":   LevelTrace,
	"debug":   LevelDebug,
	"":        LevelInfo,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
	"fatal":   LevelFatal,
}

func (l Level) String() string {
	if int(l) < len(levelLabels) {
		return levelLabels[l]
	}
	return levelLabels[LevelInfo]
}

// ParseLevel maps a configuration value such as "debug" or "WARN" to a
// Level. Blank values mean info.
func ParseLevel(value string) (Level, bool) {
	level, ok := levelsByName[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return LevelInfo, false
	}
	return level, true
}

// Options configures the provider. Writer defaults to stderr, TimeFunc to
// time.Now and MinLevel to debug.
type Options struct {
	Writer   io.Writer
	TimeFunc func() time.Time
	MinLevel *Level
}

// sink serializes writes from every logger handed out by one provider.
type sink struct {
	mu    sync.Mutex
	w     io.Writer
	now   func() time.Time
	level Level
}

type provider struct {
	sink *sink
}

// NewProvider returns a console logger provider.
func NewProvider(opts Options) interfaces.LoggerProvider {
	s := &sink{w: opts.Writer, now: opts.TimeFunc, level: LevelDebug}
	if s.w == nil {
		s.w = os.Stderr
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.MinLevel != nil {
		s.level = *opts.MinLevel
	}
	return &provider{sink: s}
}

func (p *provider) GetLogger(name string) interfaces.Logger {
	return &logger{sink: p.sink, name: strings.TrimSpace(name)}
}

type logger struct {
	sink   *sink
	name   string
	fields map[string]any
	ctx    context.Context
}

var (
	_ interfaces.Logger       = (*logger)(nil)
	_ interfaces.FieldsLogger = (*logger)(nil)
)

func (l *logger) Trace(msg string, args ...any) { l.write(LevelTrace, msg, args) }
func (l *logger) Debug(msg string, args ...any) { l.write(LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.write(LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.write(LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.write(LevelError, msg, args) }
func (l *logger) Fatal(msg string, args ...any) { l.write(LevelFatal, msg, args) }

func (l *logger) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	child := *l
	child.fields = make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(child.fields, l.fields)
	maps.Copy(child.fields, fields)
	return &child
}

func (l *logger) WithContext(ctx context.Context) interfaces.Logger {
	child := *l
	child.ctx = ctx
	return &child
}

// write merges fields in order of precedence: logger fields, context fields,
// then call arguments.
func (l *logger) write(level Level, msg string, args []any) {
	if level < l.sink.level {
		return
	}
	fields := maps.Clone(l.fields)
	if fields == nil {
		fields = map[string]any{}
	}
	maps.Copy(fields, logging.ContextFields(l.ctx))
	addArgs(fields, args)

	line := format(l.sink.now().UTC(), level, l.name, msg, fields)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	// Write errors are dropped; logging is best effort.
	_, _ = io.WriteString(l.sink.w, line)
}

// addArgs reads key/value pairs. A trailing key without a value, or a
// non-string key, is kept under "arg<N>".
func addArgs(fields map[string]any, args []any) {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if i+1 >= len(args) {
			fields["arg"+strconv.Itoa(i)] = args[i]
			return
		}
		if !ok || key == "" {
			key = "arg" + strconv.Itoa(i)
		}
		fields[key] = args[i+1]
	}
}

func format(ts time.Time, level Level, name, msg string, fields map[string]any) string {
	var b strings.Builder
	b.WriteString(ts.Format(time.RFC3339Nano))
	b.WriteByte(' ')
	b.WriteString(fmt.Sprintf("%-5s", level.String()))
	if name != "" {
		b.WriteString(" [")
		b.WriteString(name)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(msg)

	for _, key := range slices.Sorted(maps.Keys(fields)) {
		b.WriteByte(' ')
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(value(fields[key]))
	}
	b.WriteByte('\n')
	return b.String()
}

func value(v any) string {
	var s string
	switch typed := v.(type) {
	case nil:
		return "null"
	case string:
		s = typed
	case time.Time:
		s = typed.UTC().Format(time.RFC3339Nano)
	case error:
		s = typed.Error()
	case float32:
		s = strconv.FormatFloat(float64(typed), 'g', -1, 32)
	case float64:
		s = strconv.FormatFloat(typed, 'g', -1, 64)
	default:
		s = fmt.Sprint(typed)
	}
	if s == "" || strings.ContainsFunc(s, needsQuote) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(r rune) bool {
	return r <= ' ' || r == '=' || r == '"'
}
