// Package suggestion drives the mention suggestion popup: it debounces
// keystrokes, queries the search collaborator and keeps only the response
// to the most recent request.
package suggestion

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-lore/internal/logging"
	"github.com/goliatone/go-lore/internal/mention"
	"github.com/goliatone/go-lore/pkg/document"
	"github.com/goliatone/go-lore/pkg/interfaces"
)

// DefaultDebounce is the quiet period before a query is issued.
const DefaultDebounce = 300 * time.Millisecond

// DefaultFailureReason is shown when the collaborator error carries no
// message of its own.
const DefaultFailureReason = "search failed"

// State is the visible phase of a session.
type State string

const (
	StateIdle      State = "idle"
	StateSearching State = "searching"
	StateResolved  State = "resolved"
	StateFailed    State = "failed"
)

// Snapshot is a copy of the visible session state.
type Snapshot struct {
	Query      string                 `json:"query"`
	RequestID  uint64                 `json:"request_id"`
	Candidates []interfaces.Candidate `json:"candidates"`
	Loading    bool                   `json:"loading"`
	Err        string                 `json:"error,omitempty"`
	State      State                  `json:"state"`
	Selected   int                    `json:"selected"`
}

// Listener receives a snapshot after every visible transition.
type Listener func(Snapshot)

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the debounce delay.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithClock swaps the timer source.
func WithClock(clock Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(metrics interfaces.SuggestionMetrics) Option {
	return func(s *Session) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithListener registers the transition callback.
func WithListener(listener Listener) Option {
	return func(s *Session) {
		s.listener = listener
	}
}

// WithLimit caps the number of candidates kept from a response. Zero keeps
// all of them.
func WithLimit(limit int) Option {
	return func(s *Session) {
		if limit >= 0 {
			s.limit = limit
		}
	}
}

// Session is the per-popup suggestion state machine. It is safe for use from
// multiple goroutines. The listener is invoked without the session lock held,
// one snapshot at a time and in transition order.
type Session struct {
	searcher interfaces.CandidateSearcher
	scopeID  string
	debounce time.Duration
	clock    Clock
	logger   interfaces.Logger
	metrics  interfaces.SuggestionMetrics
	limit    int

	mu       sync.Mutex
	listener Listener
	pending  []Snapshot
	draining bool
	closed   bool
	timer    Timer
	timerSeq uint64
	counter  uint64
	cancel   context.CancelFunc
	state    Snapshot
}

var errSearcherMissing = errors.New("suggestion: search collaborator not configured")

// NewSession builds an idle session bound to one scope.
func NewSession(searcher interfaces.CandidateSearcher, scopeID string, opts ...Option) *Session {
	s := &Session{
		searcher: searcher,
		scopeID:  scopeID,
		debounce: DefaultDebounce,
		clock:    RealClock(),
		logger:   logging.NoOp(),
		metrics:  NoOpMetrics(),
		state:    Snapshot{State: StateIdle},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.WithFields(s.logger, map[string]any{"scope_id": scopeID})
	return s
}

// Search records a keystroke. A blank query resets the session at once and
// never reaches the collaborator; anything else restarts the debounce timer.
func (s *Session) Search(query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.stopTimerLocked()
	s.state.Query = query

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		s.counter++
		s.cancelLocked()
		s.state.RequestID = s.counter
		s.state.Candidates = nil
		s.state.Err = ""
		s.state.Loading = false
		s.state.State = StateIdle
		s.state.Selected = 0
		s.notifyUnlock()
		return
	}

	s.timerSeq++
	seq := s.timerSeq
	s.timer = s.clock.AfterFunc(s.debounce, func() {
		s.fire(seq, trimmed)
	})
	s.mu.Unlock()
}

// fire runs when the debounce window closes.
func (s *Session) fire(seq uint64, query string) {
	s.mu.Lock()
	if s.closed || seq != s.timerSeq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.counter++
	requestID := s.counter
	s.cancelLocked()
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.state.RequestID = requestID
	s.state.State = StateSearching
	s.state.Loading = true
	s.state.Err = ""
	searcher := s.searcher
	s.notifyUnlock()

	logging.WithFields(s.logger, map[string]any{
		"request_id": requestID,
		"query":      query,
	}).Debug("suggestion.session.search_started")

	started := time.Now()
	var (
		candidates []interfaces.Candidate
		err        error
	)
	if searcher == nil {
		err = errSearcherMissing
	} else {
		candidates, err = searcher.FindCandidates(ctx, s.scopeID, query)
	}
	s.resolve(requestID, candidates, err, time.Since(started))
}

// resolve applies a response only when it answers the latest request.
func (s *Session) resolve(requestID uint64, candidates []interfaces.Candidate, err error, elapsed time.Duration) {
	s.mu.Lock()
	if s.closed || requestID != s.counter {
		s.mu.Unlock()
		s.metrics.ObserveSearchDuration(OutcomeStale, elapsed)
		s.metrics.IncrementStaleResponse()
		s.logger.Debug("suggestion.session.stale_response", "request_id", requestID)
		return
	}
	s.cancelLocked()
	s.state.Loading = false

	if err != nil {
		s.state.State = StateFailed
		s.state.Err = failureReason(err)
		s.state.Candidates = nil
		s.state.Selected = 0
		reason := s.state.Err
		s.notifyUnlock()

		s.metrics.ObserveSearchDuration(OutcomeError, elapsed)
		logging.WithFields(s.logger, map[string]any{
			"request_id": requestID,
			"reason":     reason,
			"error":      err,
		}).Warn("suggestion.session.search_failed")
		return
	}

	if s.limit > 0 && len(candidates) > s.limit {
		candidates = candidates[:s.limit]
	}
	s.state.State = StateResolved
	s.state.Err = ""
	s.state.Candidates = append([]interfaces.Candidate(nil), candidates...)
	s.state.Selected = 0
	count := len(s.state.Candidates)
	s.notifyUnlock()

	s.metrics.ObserveSearchDuration(OutcomeSuccess, elapsed)
	s.logger.Debug("suggestion.session.resolved", "request_id", requestID, "candidates", count)
}

// Close tears the session down. No transition is delivered afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopTimerLocked()
	s.cancelLocked()
	s.listener = nil
	s.pending = nil
	s.state.Loading = false
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Snapshot returns a copy of the visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// MoveNext selects the following candidate, wrapping to the first.
func (s *Session) MoveNext() {
	s.move(1)
}

// MovePrevious selects the preceding candidate, wrapping to the last.
func (s *Session) MovePrevious() {
	s.move(-1)
}

func (s *Session) move(delta int) {
	s.mu.Lock()
	count := len(s.state.Candidates)
	if s.closed || count == 0 {
		s.mu.Unlock()
		return
	}
	s.state.Selected = ((s.state.Selected+delta)%count + count) % count
	s.notifyUnlock()
}

// Choose returns the candidate at index, clamped to the list bounds. It
// reports false when there is nothing to choose.
func (s *Session) Choose(index int) (interfaces.Candidate, bool) {
	s.mu.Lock()
	return s.chooseUnlock(index)
}

// ChooseSelected returns the currently selected candidate.
func (s *Session) ChooseSelected() (interfaces.Candidate, bool) {
	s.mu.Lock()
	return s.chooseUnlock(s.state.Selected)
}

// chooseUnlock reads the list and the selection under the lock the caller
// already holds, so both refer to the same response.
func (s *Session) chooseUnlock(index int) (interfaces.Candidate, bool) {
	count := len(s.state.Candidates)
	if s.closed || count == 0 {
		s.mu.Unlock()
		return interfaces.Candidate{}, false
	}
	s.state.Selected = clamp(index, 0, count-1)
	chosen := s.state.Candidates[s.state.Selected]
	s.notifyUnlock()
	return chosen, true
}

// Mention builds the document node inserted for a chosen candidate.
func Mention(c interfaces.Candidate) document.Inline {
	label := strings.TrimSpace(c.Title)
	if label == "" {
		label = c.ID
	}
	return document.Mention(c.ID, label)
}

// Token encodes a chosen candidate as a mention token.
func Token(c interfaces.Candidate) (string, error) {
	node := Mention(c)
	return mention.Encode(node.ID, node.Label)
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerSeq++
}

func (s *Session) cancelLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) snapshotLocked() Snapshot {
	out := s.state
	out.Candidates = append([]interfaces.Candidate(nil), s.state.Candidates...)
	return out
}

// notifyUnlock queues a snapshot and releases the lock. The first goroutine
// to queue while nobody is delivering drains the queue; the others return at
// once. Snapshots are queued under the lock, so they reach the listener in the
// order the transitions happened and the latest state is always delivered last.
func (s *Session) notifyUnlock() {
	if s.listener == nil {
		s.mu.Unlock()
		return
	}
	s.pending = append(s.pending, s.snapshotLocked())
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true
	for {
		listener := s.listener
		if listener == nil || len(s.pending) == 0 {
			s.pending = nil
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()
		listener(next)
		s.mu.Lock()
	}
}

func failureReason(err error) string {
	var gerr *goerrors.Error
	if errors.As(err, &gerr) && strings.TrimSpace(gerr.Message) != "" {
		return gerr.Message
	}
	return DefaultFailureReason
}

func clamp(value, lower, upper int) int {
	if value < lower {
		return lower
	}
	if value > upper {
		return upper
	}
	return value
}
