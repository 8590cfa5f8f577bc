package interfaces

import "context"

// Candidate is a lightweight search hit offered as a mention target.
type Candidate struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// CandidateSearcher is the search collaborator used by suggestion sessions.
// Implementations may be slow or fail; they should honour ctx cancellation.
type CandidateSearcher interface {
	FindCandidates(ctx context.Context, scopeID, query string) ([]Candidate, error)
}

// CandidateIndexer is implemented by searchers that accept new entries.
type CandidateIndexer interface {
	IndexCandidate(ctx context.Context, scopeID string, candidate Candidate) error
}
