// Package bootstrap builds the lore module for CLI commands.
package bootstrap

import (
	"io"
	"os"

	"github.com/goliatone/go-lore"
	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// Options captures CLI-only wiring.
type Options struct {
	LogWriter      io.Writer
	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the lore module and the CLI logger.
type Module struct {
	*lore.Module
	Logger interfaces.Logger
}

// BuildModule constructs the module from cfg.
func BuildModule(cfg lore.Config, opts Options) (*Module, error) {
	writer := opts.LogWriter
	if writer == nil {
		writer = os.Stderr
	}
	moduleOpts := []lore.Option{lore.WithLogWriter(writer)}
	if opts.LoggerProvider != nil {
		moduleOpts = append(moduleOpts, lore.WithLoggerProvider(opts.LoggerProvider))
	}

	module, err := lore.New(cfg, moduleOpts...)
	if err != nil {
		return nil, err
	}
	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "lore.cli")
	return &Module{Module: module, Logger: logger}, nil
}
