package interfaces

import "context"

// ContentStore is the persistence collaborator. It only ever sees serialized
// text; how and where bodies are stored is up to the implementation.
type ContentStore interface {
	LoadContent(ctx context.Context, documentID string) (string, error)
	SaveContent(ctx context.Context, documentID, text string) error
}

// Card carries the metadata a store keeps next to a body so other
// collaborators (search, navigation) can use it.
type Card struct {
	ID      string `json:"id" yaml:"id"`
	ScopeID string `json:"scope_id" yaml:"scope_id"`
	Title   string `json:"title" yaml:"title"`
}

// CardWriter is implemented by stores that also track card metadata.
type CardWriter interface {
	PutCard(ctx context.Context, card Card) error
}
