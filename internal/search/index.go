// Package search provides the candidate search collaborators used by
// suggestion sessions.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/analysis/token/lowercase"
	unicodetokenizer "github.com/blevesearch/bleve/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/mapping"
	blevequery "github.com/blevesearch/bleve/search/query"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

const (
	titleField     = "title"
	titleAnalyzer  = "lore_title"
	defaultResults = 10
)

var (
	// ErrIndexClosed is returned once Close has been called.
	ErrIndexClosed = errors.New("search: index closed")
	// ErrCandidateIDRequired is returned when indexing a candidate without id.
	ErrCandidateIDRequired = errors.New("search: candidate id required")
)

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithLimit caps the number of hits returned per query.
func WithLimit(limit int) IndexOption {
	return func(i *Index) {
		if limit > 0 {
			i.limit = limit
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) IndexOption {
	return func(i *Index) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Index keeps one in-memory bleve index per scope and matches candidate
// titles by word prefix.
type Index struct {
	mu     sync.RWMutex
	scopes map[string]bleve.Index
	closed bool
	limit  int
	logger interfaces.Logger
}

// NewIndex constructs an empty index.
func NewIndex(opts ...IndexOption) *Index {
	idx := &Index{
		scopes: map[string]bleve.Index{},
		limit:  defaultResults,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

var (
	_ interfaces.CandidateSearcher = (*Index)(nil)
	_ interfaces.CandidateIndexer  = (*Index)(nil)
)

func newMapping() (mapping.IndexMapping, error) {
	m := bleve.NewIndexMapping()
	// No stop words: short titles such as "The Mountain" must stay findable.
	if err := m.AddCustomAnalyzer(titleAnalyzer, map[string]any{
		"type":          custom.Name,
		"tokenizer":     unicodetokenizer.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		return nil, err
	}
	m.DefaultAnalyzer = titleAnalyzer
	return m, nil
}

// IndexCandidate adds or replaces a candidate in scopeID.
func (i *Index) IndexCandidate(ctx context.Context, scopeID string, candidate interfaces.Candidate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(candidate.ID) == "" {
		return goerrors.Wrap(ErrCandidateIDRequired, goerrors.CategoryValidation, ErrCandidateIDRequired.Error()).
			WithTextCode("SEARCH_CANDIDATE_ID_REQUIRED")
	}
	index, err := i.scope(scopeID, true)
	if err != nil {
		return err
	}
	if err := index.Index(candidate.ID, map[string]any{titleField: candidate.Title}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "search: index candidate failed").
			WithTextCode("SEARCH_INDEX_FAILED")
	}
	logging.WithFields(i.logger, map[string]any{
		"scope_id":     scopeID,
		"candidate_id": candidate.ID,
	}).Debug("search.index.candidate_indexed")
	return nil
}

// RemoveCandidate drops id from scopeID. Unknown ids are ignored.
func (i *Index) RemoveCandidate(ctx context.Context, scopeID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	index, err := i.scope(scopeID, false)
	if err != nil || index == nil {
		return err
	}
	return index.Delete(id)
}

// FindCandidates returns candidates whose title words start with every word
// of query, best match first.
func (i *Index) FindCandidates(ctx context.Context, scopeID, query string) ([]interfaces.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := queryTerms(query)
	if len(terms) == 0 {
		return nil, nil
	}
	index, err := i.scope(scopeID, false)
	if err != nil || index == nil {
		return nil, err
	}

	conjuncts := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField(titleField)
		conjuncts = append(conjuncts, prefix)
	}
	request := bleve.NewSearchRequestOptions(bleve.NewConjunctionQuery(conjuncts...), i.limit, 0, false)
	request.Fields = []string{titleField}
	request.SortBy([]string{"-_score", "_id"})

	result, err := index.SearchInContext(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "search index unavailable").
			WithTextCode("SEARCH_QUERY_FAILED")
	}

	out := make([]interfaces.Candidate, 0, len(result.Hits))
	for _, hit := range result.Hits {
		title, _ := hit.Fields[titleField].(string)
		out = append(out, interfaces.Candidate{ID: hit.ID, Title: title})
	}
	return out, nil
}

// Close releases every scope index.
func (i *Index) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil
	}
	i.closed = true
	var errs []error
	for scopeID, index := range i.scopes {
		if err := index.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(i.scopes, scopeID)
	}
	return errors.Join(errs...)
}

func (i *Index) scope(scopeID string, create bool) (bleve.Index, error) {
	i.mu.RLock()
	index, ok := i.scopes[scopeID]
	closed := i.closed
	i.mu.RUnlock()
	if closed {
		return nil, ErrIndexClosed
	}
	if ok || !create {
		return index, nil
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if i.closed {
		return nil, ErrIndexClosed
	}
	if index, ok := i.scopes[scopeID]; ok {
		return index, nil
	}
	m, err := newMapping()
	if err != nil {
		return nil, err
	}
	index, err = bleve.NewMemOnly(m)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "search: create index failed").
			WithTextCode("SEARCH_INDEX_CREATE_FAILED")
	}
	i.scopes[scopeID] = index
	return index, nil
}

func queryTerms(query string) []string {
	return strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
