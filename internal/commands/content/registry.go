package contentcmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-lore/internal/commands"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// CommandRegistry is the registration contract expected when wiring handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// Dependencies are the collaborators the content handlers need. Indexer and
// Cards are optional; without an indexer no index handler is built.
type Dependencies struct {
	Store   interfaces.ContentStore
	Codec   interfaces.DocumentCodec
	Indexer interfaces.CandidateIndexer
	Cards   interfaces.CardWriter
	Metrics commands.CommandMetrics
}

// HandlerSet groups the handlers produced by RegisterContentCommands.
type HandlerSet struct {
	Normalize *NormalizeContentHandler
	Index     *IndexContentHandler
}

// RegisterContentCommands builds the content handlers and registers them
// with reg when it is non-nil.
func RegisterContentCommands(reg CommandRegistry, deps Dependencies, provider interfaces.LoggerProvider) (*HandlerSet, error) {
	if deps.Store == nil {
		return nil, errors.New("content command registration: store is nil")
	}
	if deps.Codec == nil {
		return nil, errors.New("content command registration: codec is nil")
	}

	logger := commands.CommandLogger(provider, "content")

	normalizeOpts := []commands.HandlerOption[NormalizeContentCommand]{
		commands.WithTelemetry(commands.DefaultTelemetry[NormalizeContentCommand](logger)),
	}
	if deps.Metrics != nil {
		normalizeOpts = append(normalizeOpts, commands.WithTelemetry(commands.MetricsTelemetry[NormalizeContentCommand](deps.Metrics)))
	}
	set := &HandlerSet{
		Normalize: NewNormalizeContentHandler(deps.Store, deps.Codec, logger, normalizeOpts...),
	}

	if deps.Indexer != nil {
		indexOpts := []commands.HandlerOption[IndexContentCommand]{
			commands.WithTelemetry(commands.DefaultTelemetry[IndexContentCommand](logger)),
		}
		if deps.Metrics != nil {
			indexOpts = append(indexOpts, commands.WithTelemetry(commands.MetricsTelemetry[IndexContentCommand](deps.Metrics)))
		}
		set.Index = NewIndexContentHandler(deps.Indexer, deps.Cards, logger, indexOpts...)
	}

	if reg != nil {
		if err := reg.RegisterCommand(set.Normalize); err != nil {
			return nil, err
		}
		if set.Index != nil {
			if err := reg.RegisterCommand(set.Index); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

// RegisterNormalizeCron schedules a normalize run for msg.
func RegisterNormalizeCron(reg CronRegistrar, handler *NormalizeContentHandler, cfg command.HandlerConfig, msg NormalizeContentCommand) error {
	if reg == nil || handler == nil {
		return nil
	}
	return reg(cfg, func() error {
		return handler.Execute(context.Background(), msg)
	})
}
