package content

import (
	"context"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-lore/internal/identity"
	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

const (
	documentNamespace  = "stored_document"
	defaultSearchLimit = 10
	likeEscape         = "!"
)

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// BunStore persists document bodies and card metadata with go-repository-bun.
// Reads by document id go through the optional repository cache; searches
// always hit the database.
type BunStore struct {
	base         repository.Repository[*StoredDocument]
	repo         repository.Repository[*StoredDocument]
	cacheService cache.CacheService
	cachePrefix  string
	logger       interfaces.Logger
	searchLimit  int
	now          func() time.Time
}

// BunStoreOption configures a BunStore.
type BunStoreOption func(*bunStoreConfig)

type bunStoreConfig struct {
	cacheService cache.CacheService
	serializer   cache.KeySerializer
	logger       interfaces.Logger
	searchLimit  int
}

// WithCache enables repository caching for reads by document id.
func WithCache(cacheService cache.CacheService, serializer cache.KeySerializer) BunStoreOption {
	return func(cfg *bunStoreConfig) {
		cfg.cacheService = cacheService
		cfg.serializer = serializer
	}
}

// WithStoreLogger attaches a logger.
func WithStoreLogger(logger interfaces.Logger) BunStoreOption {
	return func(cfg *bunStoreConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithSearchLimit caps candidate searches.
func WithSearchLimit(limit int) BunStoreOption {
	return func(cfg *bunStoreConfig) {
		if limit > 0 {
			cfg.searchLimit = limit
		}
	}
}

// NewBunStore creates a store over db. The lore_documents table must exist;
// see EnsureSchema.
func NewBunStore(db *bun.DB, opts ...BunStoreOption) *BunStore {
	cfg := bunStoreConfig{
		logger:      logging.NoOp(),
		searchLimit: defaultSearchLimit,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	base := NewDocumentRepository(db)
	wrapped := base
	var svc cache.CacheService
	if cfg.cacheService != nil && cfg.serializer != nil {
		wrapped = repositorycache.New(base, cfg.cacheService, cfg.serializer)
		svc = cfg.cacheService
	}
	prefix := ""
	if svc != nil {
		prefix = documentNamespace + cache.KeySeparator
	}

	return &BunStore{
		base:         base,
		repo:         wrapped,
		cacheService: svc,
		cachePrefix:  prefix,
		logger:       cfg.logger,
		searchLimit:  cfg.searchLimit,
		now:          time.Now,
	}
}

// EnsureSchema creates the lore_documents table when missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*StoredDocument)(nil)).IfNotExists().Exec(ctx)
	return err
}

var (
	_ interfaces.ContentStore      = (*BunStore)(nil)
	_ interfaces.CardWriter        = (*BunStore)(nil)
	_ interfaces.CandidateSearcher = (*BunStore)(nil)
)

// LoadContent returns the stored body, or NotFoundError.
func (s *BunStore) LoadContent(ctx context.Context, documentID string) (string, error) {
	documentID = strings.TrimSpace(documentID)
	if err := requireID(documentID); err != nil {
		return "", err
	}
	record, err := s.repo.GetByIdentifier(ctx, documentID)
	if err != nil {
		return "", mapRepositoryError(err, "document", documentID)
	}
	return record.Body, nil
}

// SaveContent creates or replaces the body of documentID.
func (s *BunStore) SaveContent(ctx context.Context, documentID, text string) error {
	documentID = strings.TrimSpace(documentID)
	if err := requireID(documentID); err != nil {
		return err
	}
	return s.upsert(ctx, documentID, func(record *StoredDocument) {
		record.Body = text
	})
}

// PutCard records title and scope for a document, keeping its body.
func (s *BunStore) PutCard(ctx context.Context, card interfaces.Card) error {
	id := strings.TrimSpace(card.ID)
	if err := requireID(id); err != nil {
		return err
	}
	return s.upsert(ctx, id, func(record *StoredDocument) {
		record.ScopeID = card.ScopeID
		record.Title = card.Title
	})
}

// FindCandidates matches titles in scopeID containing query, ignoring case.
func (s *BunStore) FindCandidates(ctx context.Context, scopeID, query string) ([]interfaces.Candidate, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	pattern := "%" + likeEscaper.Replace(needle) + "%"

	records, _, err := s.base.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.scope_id = ?", scopeID).
				Where("LOWER(?TableAlias.title) LIKE ? ESCAPE '"+likeEscape+"'", pattern).
				OrderExpr("?TableAlias.title ASC, ?TableAlias.document_id ASC")
		}),
		repository.SelectPaginate(s.searchLimit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.Candidate, 0, len(records))
	for _, record := range records {
		out = append(out, interfaces.Candidate{ID: record.DocumentID, Title: record.Title})
	}
	return out, nil
}

// InvalidateCache drops cached reads.
func (s *BunStore) InvalidateCache(ctx context.Context) error {
	if s.cacheService == nil || s.cachePrefix == "" {
		return nil
	}
	return s.cacheService.DeleteByPrefix(ctx, s.cachePrefix)
}

func (s *BunStore) upsert(ctx context.Context, documentID string, apply func(*StoredDocument)) error {
	now := s.now()
	existing, err := s.base.GetByIdentifier(ctx, documentID)
	switch {
	case err == nil:
		apply(existing)
		existing.UpdatedAt = now
		if _, err := s.repo.Update(ctx, existing); err != nil {
			return mapRepositoryError(err, "document", documentID)
		}
	case IsNotFound(mapRepositoryError(err, "document", documentID)):
		record := &StoredDocument{
			ID:         identity.DocumentUUID(documentID),
			DocumentID: documentID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		apply(record)
		if _, err := s.repo.Create(ctx, record); err != nil {
			return mapRepositoryError(err, "document", documentID)
		}
	default:
		return mapRepositoryError(err, "document", documentID)
	}

	if err := s.InvalidateCache(ctx); err != nil {
		logging.WithFields(s.logger, map[string]any{
			"document_id": documentID,
			"error":       err,
		}).Warn("content.store.cache_invalidate_failed")
	}
	logging.WithFields(s.logger, map[string]any{
		"document_id": documentID,
	}).Debug("content.store.saved")
	return nil
}
