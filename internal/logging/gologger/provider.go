// Package gologger adapts github.com/goliatone/go-logger to the lore logging
// contracts.
package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Config mirrors the logging section of the runtime config.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

var formats = map[string]func() glog.Option{
	"":        glog.WithLoggerTypeJSON,
	"json":    glog.WithLoggerTypeJSON,
	"console": glog.WithLoggerTypeConsole,
	"pretty":  glog.WithLoggerTypePretty,
}

// Provider hands out go-logger children named after lore modules.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds the go-logger root from cfg. Focus limits output to the
// named module loggers.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	focus := slices.DeleteFunc(slices.Clone(cfg.Focus), func(name string) bool {
		return strings.TrimSpace(name) == ""
	})
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child logger for name, or the root when name is blank.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(name))
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter forwards to go-logger. Loggers without native field support get
// their fields appended to every call as key/value pairs.
type adapter struct {
	inner glog.Logger
	extra []any
}

func (a *adapter) Trace(msg string, args ...any) { a.inner.Trace(msg, a.args(args)...) }
func (a *adapter) Debug(msg string, args ...any) { a.inner.Debug(msg, a.args(args)...) }
func (a *adapter) Info(msg string, args ...any)  { a.inner.Info(msg, a.args(args)...) }
func (a *adapter) Warn(msg string, args ...any)  { a.inner.Warn(msg, a.args(args)...) }
func (a *adapter) Error(msg string, args ...any) { a.inner.Error(msg, a.args(args)...) }
func (a *adapter) Fatal(msg string, args ...any) { a.inner.Fatal(msg, a.args(args)...) }

func (a *adapter) args(args []any) []any {
	if len(a.extra) == 0 {
		return args
	}
	return append(slices.Clone(a.extra), args...)
}

func (a *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return a
	}
	if fl, ok := a.inner.(glog.FieldsLogger); ok {
		return &adapter{inner: fl.WithFields(maps.Clone(fields)), extra: a.extra}
	}
	extra := slices.Clone(a.extra)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		extra = append(extra, key, fields[key])
	}
	return &adapter{inner: a.inner, extra: extra}
}

func (a *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return a
	}
	return &adapter{inner: a.inner.WithContext(ctx), extra: a.extra}
}
