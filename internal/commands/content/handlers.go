// Package contentcmd exposes content maintenance operations as go-command
// handlers.
package contentcmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-lore/internal/commands"
	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

const (
	normalizeOperation = "content.normalize"
	indexOperation     = "content.index"
)

var (
	_ command.Commander[NormalizeContentCommand] = (*NormalizeContentHandler)(nil)
	_ command.Commander[IndexContentCommand]     = (*IndexContentHandler)(nil)
)

// NormalizeContentHandler loads a body, reads it with the classifying codec
// and saves the portable encoding when it differs.
type NormalizeContentHandler struct {
	inner *commands.Handler[NormalizeContentCommand]
}

// NewNormalizeContentHandler binds the handler to a store and codec.
func NewNormalizeContentHandler(store interfaces.ContentStore, codec interfaces.DocumentCodec, logger interfaces.Logger, opts ...commands.HandlerOption[NormalizeContentCommand]) *NormalizeContentHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg NormalizeContentCommand) error {
		body, err := store.LoadContent(ctx, msg.DocumentID)
		if err != nil {
			return err
		}
		wasNative := codec.IsNativeMarkup(body)
		normalized := codec.Encode(codec.Parse(body))
		changed := normalized != body

		entry := logging.WithFields(logger.WithContext(ctx), map[string]any{
			"document_id": msg.DocumentID,
			"changed":     changed,
			"native":      wasNative,
			"dry_run":     msg.DryRun,
		})
		if !changed || msg.DryRun {
			entry.Info("content.command.normalize.skipped")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := store.SaveContent(ctx, msg.DocumentID, normalized); err != nil {
			return err
		}
		entry.Info("content.command.normalize.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[NormalizeContentCommand]{
		commands.WithLogger[NormalizeContentCommand](logger),
		commands.WithOperation[NormalizeContentCommand](normalizeOperation),
		commands.WithMessageFields(func(msg NormalizeContentCommand) map[string]any {
			fields := map[string]any{"document_id": msg.DocumentID}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &NormalizeContentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[NormalizeContentCommand].
func (h *NormalizeContentHandler) Execute(ctx context.Context, msg NormalizeContentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// IndexContentHandler adds a card to the search index and, when a card
// writer is available, records its metadata.
type IndexContentHandler struct {
	inner *commands.Handler[IndexContentCommand]
}

// NewIndexContentHandler binds the handler to an indexer. cards may be nil.
func NewIndexContentHandler(indexer interfaces.CandidateIndexer, cards interfaces.CardWriter, logger interfaces.Logger, opts ...commands.HandlerOption[IndexContentCommand]) *IndexContentHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg IndexContentCommand) error {
		if cards != nil {
			card := interfaces.Card{ID: msg.DocumentID, ScopeID: msg.ScopeID, Title: msg.Title}
			if err := cards.PutCard(ctx, card); err != nil {
				return err
			}
		}
		candidate := interfaces.Candidate{ID: msg.DocumentID, Title: msg.Title}
		if err := indexer.IndexCandidate(ctx, msg.ScopeID, candidate); err != nil {
			return err
		}
		logging.WithDocumentContext(logger, msg.ScopeID, msg.DocumentID, "command").
			Debug("content.command.index.completed")
		return nil
	}

	handlerOpts := []commands.HandlerOption[IndexContentCommand]{
		commands.WithLogger[IndexContentCommand](logger),
		commands.WithOperation[IndexContentCommand](indexOperation),
		commands.WithMessageFields(func(msg IndexContentCommand) map[string]any {
			return map[string]any{
				"scope_id":    msg.ScopeID,
				"document_id": msg.DocumentID,
			}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &IndexContentHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[IndexContentCommand].
func (h *IndexContentHandler) Execute(ctx context.Context, msg IndexContentCommand) error {
	return h.inner.Execute(ctx, msg)
}
