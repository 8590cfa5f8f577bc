package content

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StoredDocument is the persisted row behind a document body and its card
// metadata.
type StoredDocument struct {
	bun.BaseModel `bun:"table:lore_documents,alias:d"`

	ID         uuid.UUID `bun:",pk,type:uuid"                                json:"id"`
	DocumentID string    `bun:"document_id,notnull,unique"                   json:"document_id"`
	ScopeID    string    `bun:"scope_id"                                     json:"scope_id,omitempty"`
	Title      string    `bun:"title"                                        json:"title,omitempty"`
	Body       string    `bun:"body"                                         json:"body"`
	CreatedAt  time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

func cloneDocument(src *StoredDocument) *StoredDocument {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
