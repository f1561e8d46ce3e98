// Package localstate persists the voter client's device state in Badger.
package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"ballot/internal/voting/models"
)

const (
	keyVote       = "vote"
	keyLastVoteAt = "last_vote_at"
	keyVoteToken  = "vote_token"
	keyValidation = "validation"
	keyCandidates = "candidates"
	keyDeviceID   = "device_id"
	keyWriteCheck = "write_check"
)

// State is the client's key/value store. A zero dir keeps everything in
// memory, which is what incognito-like sessions and tests use.
type State struct {
	db     *badger.DB
	logger *slog.Logger
}

type Option func(*options)

type options struct {
	dir    string
	logger *slog.Logger
}

// WithDir persists state under dir.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func Open(opts ...Option) (*State, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	badgerOpts := badger.DefaultOptions(o.dir).
		WithLogger(badgerLogger{o.logger}).
		WithLoggingLevel(badger.WARNING)
	if o.dir == "" {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("open local state: %w", err)
	}
	return &State{db: db, logger: o.logger}, nil
}

func (s *State) Close() error {
	return s.db.Close()
}

// Vote returns the stored vote selection, or "" when none is stored.
func (s *State) Vote() (string, error) {
	v, err := s.get(keyVote)
	return string(v), err
}

// SetVote stores the selected candidate. An empty id clears the selection.
func (s *State) SetVote(candidateID string) error {
	if candidateID == "" {
		return s.ClearVote()
	}
	return s.set(keyVote, []byte(candidateID))
}

func (s *State) ClearVote() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyVote))
	})
}

// RecordVote stores the id of a cast vote and its time; the client cooldown
// runs from here.
func (s *State) RecordVote(token string, at time.Time) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyVoteToken), []byte(token)); err != nil {
			return err
		}
		return txn.Set([]byte(keyLastVoteAt), []byte(strconv.FormatInt(at.UnixMilli(), 10)))
	})
}

// LastVote returns the last recorded vote time and token. The zero time is
// returned when no vote was recorded.
func (s *State) LastVote() (time.Time, string, error) {
	rawAt, err := s.get(keyLastVoteAt)
	if err != nil || rawAt == nil {
		return time.Time{}, "", err
	}
	token, err := s.get(keyVoteToken)
	if err != nil {
		return time.Time{}, "", err
	}
	ms, err := strconv.ParseInt(string(rawAt), 10, 64)
	if err != nil {
		s.logger.Warn("discarding corrupt last vote time", "value", string(rawAt))
		return time.Time{}, "", nil
	}
	return time.UnixMilli(ms), string(token), nil
}

// SetValidation stores the token of a server validation that has not been
// followed by a vote yet. It does not start the local cooldown.
func (s *State) SetValidation(token string, at time.Time) error {
	return s.set(keyValidation, []byte(strconv.FormatInt(at.UnixMilli(), 10)+":"+token))
}

// Validation returns the pending validation, or a zero time when none is stored.
func (s *State) Validation() (time.Time, string, error) {
	raw, err := s.get(keyValidation)
	if err != nil || raw == nil {
		return time.Time{}, "", err
	}
	rawAt, token, ok := strings.Cut(string(raw), ":")
	ms, perr := strconv.ParseInt(rawAt, 10, 64)
	if !ok || perr != nil {
		s.logger.Warn("discarding corrupt validation", "value", string(raw))
		return time.Time{}, "", nil
	}
	return time.UnixMilli(ms), token, nil
}

func (s *State) ClearValidation() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyValidation))
	})
}

// Candidates returns the cached candidate list, or nil when nothing is cached.
func (s *State) Candidates() ([]*models.Candidate, error) {
	raw, err := s.get(keyCandidates)
	if err != nil || raw == nil {
		return nil, err
	}
	var candidates []*models.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, fmt.Errorf("decode cached candidates: %w", err)
	}
	return candidates, nil
}

func (s *State) SetCandidates(candidates []*models.Candidate) error {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("encode candidates: %w", err)
	}
	return s.set(keyCandidates, raw)
}

// DeviceID returns the persistent device id, creating it on first use.
func (s *State) DeviceID() (string, error) {
	var id string
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyDeviceID))
		switch {
		case err == nil:
			return item.Value(func(val []byte) error {
				id = string(val)
				return nil
			})
		case errors.Is(err, badger.ErrKeyNotFound):
			id = uuid.NewString()
			return txn.Set([]byte(keyDeviceID), []byte(id))
		default:
			return err
		}
	})
	if err != nil {
		return "", fmt.Errorf("device id: %w", err)
	}
	return id, nil
}

// Available reports whether the store accepts a write and delete.
func (s *State) Available() bool {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(keyWriteCheck), []byte("1")); err != nil {
			return err
		}
		return txn.Delete([]byte(keyWriteCheck))
	})
	return err == nil
}

func (s *State) get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return out, nil
}

func (s *State) set(key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
