package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"ballot/internal/voting/models"
	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/platform/sentinel"
	txrunner "ballot/pkg/platform/tx"
)

// InMemoryStore keeps the ledgers in process memory. Transactions hold the
// write lock and roll back through an undo log.
type InMemoryStore struct {
	mu      sync.RWMutex
	state   *memState
	timeout time.Duration
}

type memState struct {
	categories    []models.Category
	candidates    map[string]*models.Candidate
	verifications map[string]*models.Verification
	byFingerprint map[string]string
	byIP          map[string]string
	votes         map[string]*models.Vote
	byVerifyID    map[string]string
	history       map[string]int64
}

// NewInMemory creates an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{state: &memState{
		candidates:    make(map[string]*models.Candidate),
		verifications: make(map[string]*models.Verification),
		byFingerprint: make(map[string]string),
		byIP:          make(map[string]string),
		votes:         make(map[string]*models.Vote),
		byVerifyID:    make(map[string]string),
		history:       make(map[string]int64),
	}}
}

// WithTxTimeout sets the transaction timeout applied when ctx has no deadline.
func (s *InMemoryStore) WithTxTimeout(d time.Duration) *InMemoryStore {
	s.timeout = d
	return s
}

// RunInTx runs fn under the store write lock. Any error undoes every write fn made.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(Ledger) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	timeout := s.timeout
	if timeout == 0 {
		timeout = txrunner.DefaultTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	tx := &memTx{state: s.state, tracking: true}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	return nil
}

func (s *InMemoryStore) read() *memTx {
	return &memTx{state: s.state}
}

// Seed inserts categories and candidates that are not present yet.
func (s *InMemoryStore) Seed(_ context.Context, categories []models.Category, candidates []models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := make(map[string]bool, len(s.state.categories))
	for _, c := range s.state.categories {
		known[c.ID] = true
	}
	for _, c := range categories {
		if !known[c.ID] {
			s.state.categories = append(s.state.categories, c)
		}
	}
	sort.SliceStable(s.state.categories, func(i, j int) bool {
		return s.state.categories[i].Position < s.state.categories[j].Position
	})
	for _, c := range candidates {
		if _, ok := s.state.candidates[c.ID]; !ok {
			cp := c
			s.state.candidates[c.ID] = &cp
		}
	}
	return nil
}

func (s *InMemoryStore) ListCategories(_ context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Category, 0, len(s.state.categories))
	for _, c := range s.state.categories {
		cp := c
		out = append(out, &cp)
	}
	return out, nil
}

// ListCandidates returns candidates of categoryID ordered by tally, or every
// candidate when categoryID is empty.
func (s *InMemoryStore) ListCandidates(_ context.Context, categoryID string) ([]*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Candidate, 0, len(s.state.candidates))
	for _, c := range s.state.candidates {
		if categoryID != "" && c.CategoryID != categoryID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	models.SortByVotes(out)
	return out, nil
}

func (s *InMemoryStore) GetCandidate(ctx context.Context, id string) (*models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().GetCandidate(ctx, id)
}

func (s *InMemoryStore) FindVerification(ctx context.Context, fingerprint, ip string) (*models.Verification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().FindVerification(ctx, fingerprint, ip)
}

// CountVotes counts vote records for candidateID, or all votes when empty.
func (s *InMemoryStore) CountVotes(_ context.Context, candidateID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, v := range s.state.votes {
		if candidateID == "" || v.CandidateID == candidateID {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) CountVerifications(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.state.verifications)), nil
}

// SetTally overwrites a candidate's tally. Used to simulate drift and by seeding tools.
func (s *InMemoryStore) SetTally(_ context.Context, candidateID string, count int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.state.candidates[candidateID]
	if !ok {
		return sentinel.ErrNotFound
	}
	c.VotesCount = count
	return nil
}

// Reconcile recomputes every tally from the vote ledger and returns the
// number of candidates whose tally changed.
func (s *InMemoryStore) Reconcile(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[string]int64, len(s.state.candidates))
	for _, v := range s.state.votes {
		counts[v.CandidateID]++
	}
	corrected := 0
	for id, c := range s.state.candidates {
		if c.VotesCount != counts[id] {
			c.VotesCount = counts[id]
			corrected++
		}
	}
	return corrected, nil
}

// SaveDailyTotal upserts the snapshot for total.Date.
func (s *InMemoryStore) SaveDailyTotal(_ context.Context, total models.DailyTotal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.history[total.Date.Format(dateLayout)] = total.TotalVotes
	return nil
}

// GetDailyTotal returns the snapshot for date, or nil when none exists.
func (s *InMemoryStore) GetDailyTotal(_ context.Context, date time.Time) (*models.DailyTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := date.Format(dateLayout)
	total, ok := s.state.history[key]
	if !ok {
		return nil, nil
	}
	day, _ := time.Parse(dateLayout, key)
	return &models.DailyTotal{Date: day, TotalVotes: total}, nil
}

// memTx implements Ledger directly on the state. Callers hold the lock.
type memTx struct {
	state    *memState
	tracking bool
	undo     []func()
}

func (t *memTx) onRollback(fn func()) {
	if t.tracking {
		t.undo = append(t.undo, fn)
	}
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) GetCandidate(_ context.Context, id string) (*models.Candidate, error) {
	c, ok := t.state.candidates[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) FindVerification(_ context.Context, fingerprint, ip string) (*models.Verification, error) {
	if id, ok := t.state.byFingerprint[fingerprint]; ok && fingerprint != "" {
		cp := *t.state.verifications[id]
		return &cp, nil
	}
	if ip != "" && ip != models.UnknownIP {
		if id, ok := t.state.byIP[ip]; ok {
			cp := *t.state.verifications[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (t *memTx) CreateVerification(_ context.Context, v *models.Verification) error {
	if _, ok := t.state.byFingerprint[v.BrowserFingerprint]; ok {
		return sentinel.ErrAlreadyUsed
	}
	knownIP := v.IPAddress != "" && v.IPAddress != models.UnknownIP
	if knownIP {
		if _, ok := t.state.byIP[v.IPAddress]; ok {
			return sentinel.ErrAlreadyUsed
		}
	}
	cp := *v
	t.state.verifications[v.ID] = &cp
	t.state.byFingerprint[v.BrowserFingerprint] = v.ID
	if knownIP {
		t.state.byIP[v.IPAddress] = v.ID
	}
	t.onRollback(func() {
		delete(t.state.verifications, v.ID)
		delete(t.state.byFingerprint, v.BrowserFingerprint)
		if knownIP {
			delete(t.state.byIP, v.IPAddress)
		}
	})
	return nil
}

func (t *memTx) InsertVote(_ context.Context, v *models.Vote) error {
	if _, ok := t.state.byVerifyID[v.VerificationID]; ok {
		return sentinel.ErrAlreadyUsed
	}
	if _, ok := t.state.verifications[v.VerificationID]; !ok {
		return sentinel.ErrInvalidState
	}
	if _, ok := t.state.candidates[v.CandidateID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *v
	t.state.votes[v.ID] = &cp
	t.state.byVerifyID[v.VerificationID] = v.ID
	t.onRollback(func() {
		delete(t.state.votes, v.ID)
		delete(t.state.byVerifyID, v.VerificationID)
	})
	return nil
}

func (t *memTx) IncrementTally(_ context.Context, candidateID string) (int64, error) {
	c, ok := t.state.candidates[candidateID]
	if !ok || !c.IsActive {
		return 0, sentinel.ErrNotFound
	}
	c.VotesCount++
	t.onRollback(func() { c.VotesCount-- })
	return c.VotesCount, nil
}
