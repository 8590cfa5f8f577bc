package contentcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	normalizeContentMessageType = "lore.content.normalize"
	indexContentMessageType     = "lore.content.index"
)

// NormalizeContentCommand rewrites a stored body into canonical portable
// text. Bodies saved as editor markup are migrated on the way.
type NormalizeContentCommand struct {
	DocumentID string `json:"document_id"`
	// DryRun reports whether the body would change without saving it.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (NormalizeContentCommand) Type() string { return normalizeContentMessageType }

// Validate ensures a document id is present.
func (cmd NormalizeContentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DocumentID, validation.Required, validation.By(notBlank("lore.content.normalize.document_id_required", "document id is required"))),
	)
}

// IndexContentCommand pushes a card title into the search index.
type IndexContentCommand struct {
	ScopeID    string `json:"scope_id"`
	DocumentID string `json:"document_id"`
	Title      string `json:"title"`
}

// Type implements command.Message.
func (IndexContentCommand) Type() string { return indexContentMessageType }

// Validate ensures the scope, id and title are present.
func (cmd IndexContentCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ScopeID, validation.Required, validation.By(notBlank("lore.content.index.scope_required", "scope id is required"))),
		validation.Field(&cmd.DocumentID, validation.Required, validation.By(notBlank("lore.content.index.document_id_required", "document id is required"))),
		validation.Field(&cmd.Title, validation.Required, validation.Length(1, 512)),
	)
}

func notBlank(code, message string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
