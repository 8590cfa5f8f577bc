package content

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lore/internal/identity"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// MemoryStore is an in-memory implementation for scaffolding, the CLI and
// tests.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string]*StoredDocument
	now       func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string]*StoredDocument),
		now:       time.Now,
	}
}

var (
	_ interfaces.ContentStore      = (*MemoryStore)(nil)
	_ interfaces.CardWriter        = (*MemoryStore)(nil)
	_ interfaces.CandidateSearcher = (*MemoryStore)(nil)
)

// LoadContent returns the stored body, or NotFoundError.
func (m *MemoryStore) LoadContent(_ context.Context, documentID string) (string, error) {
	documentID = strings.TrimSpace(documentID)
	if err := requireID(documentID); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.documents[documentID]
	if !ok {
		return "", &NotFoundError{Resource: "document", Key: documentID}
	}
	return rec.Body, nil
}

// SaveContent stores text as the body of documentID.
func (m *MemoryStore) SaveContent(_ context.Context, documentID, text string) error {
	documentID = strings.TrimSpace(documentID)
	if err := requireID(documentID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordLocked(documentID)
	rec.Body = text
	rec.UpdatedAt = m.now()
	return nil
}

// PutCard records card metadata, keeping any stored body.
func (m *MemoryStore) PutCard(_ context.Context, card interfaces.Card) error {
	id := strings.TrimSpace(card.ID)
	if err := requireID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.recordLocked(id)
	rec.ScopeID = card.ScopeID
	rec.Title = card.Title
	rec.UpdatedAt = m.now()
	return nil
}

// Get returns a copy of the stored row.
func (m *MemoryStore) Get(_ context.Context, documentID string) (*StoredDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.documents[strings.TrimSpace(documentID)]
	if !ok {
		return nil, &NotFoundError{Resource: "document", Key: documentID}
	}
	return cloneDocument(rec), nil
}

// FindCandidates matches titles in scopeID containing query, ignoring case.
func (m *MemoryStore) FindCandidates(ctx context.Context, scopeID, query string) ([]interfaces.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []interfaces.Candidate
	for _, rec := range m.documents {
		if rec.ScopeID != scopeID || rec.Title == "" {
			continue
		}
		if strings.Contains(strings.ToLower(rec.Title), needle) {
			out = append(out, interfaces.Candidate{ID: rec.DocumentID, Title: rec.Title})
		}
	}
	sortCandidates(out)
	return out, nil
}

func (m *MemoryStore) recordLocked(documentID string) *StoredDocument {
	rec, ok := m.documents[documentID]
	if !ok {
		now := m.now()
		rec = &StoredDocument{
			ID:         identity.DocumentUUID(documentID),
			DocumentID: documentID,
			CreatedAt:  now,
		}
		m.documents[documentID] = rec
	}
	return rec
}

func sortCandidates(candidates []interfaces.Candidate) {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Title == candidates[j].Title {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].Title < candidates[j].Title
	})
}
