package content

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDocumentRepository builds the generic repository keyed by document_id.
func NewDocumentRepository(db *bun.DB) repository.Repository[*StoredDocument] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*StoredDocument]{
		NewRecord: func() *StoredDocument { return &StoredDocument{} },
		GetID: func(d *StoredDocument) uuid.UUID {
			return d.ID
		},
		SetID: func(d *StoredDocument, id uuid.UUID) {
			d.ID = id
		},
		GetIdentifier: func() string {
			return "document_id"
		},
		GetIdentifierValue: func(d *StoredDocument) string {
			return d.DocumentID
		},
	})
}
