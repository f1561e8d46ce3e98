package localstate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballot/internal/voting/models"
)

func openMemory(t *testing.T) *State {
	t.Helper()
	s, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestVoteSelection(t *testing.T) {
	s := openMemory(t)

	got, err := s.Vote()
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, s.SetVote("cat1-a"))
	got, err = s.Vote()
	require.NoError(t, err)
	assert.Equal(t, "cat1-a", got)

	t.Run("empty selection clears", func(t *testing.T) {
		require.NoError(t, s.SetVote(""))
		got, err := s.Vote()
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("clear without a stored vote", func(t *testing.T) {
		require.NoError(t, s.ClearVote())
	})
}

func TestLastVote(t *testing.T) {
	s := openMemory(t)

	at, token, err := s.LastVote()
	require.NoError(t, err)
	assert.True(t, at.IsZero())
	assert.Empty(t, token)

	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, s.RecordVote("tok-1", now))

	at, token, err = s.LastVote()
	require.NoError(t, err)
	assert.True(t, now.Equal(at))
	assert.Equal(t, "tok-1", token)
}

func TestValidationIsSeparateFromLastVote(t *testing.T) {
	s := openMemory(t)

	at, token, err := s.Validation()
	require.NoError(t, err)
	assert.True(t, at.IsZero())
	assert.Empty(t, token)

	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, s.SetValidation("val-1", now))

	at, token, err = s.Validation()
	require.NoError(t, err)
	assert.True(t, now.Equal(at))
	assert.Equal(t, "val-1", token)

	last, _, err := s.LastVote()
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	require.NoError(t, s.ClearValidation())
	at, _, err = s.Validation()
	require.NoError(t, err)
	assert.True(t, at.IsZero())
}

func TestCandidatesCache(t *testing.T) {
	s := openMemory(t)

	cached, err := s.Candidates()
	require.NoError(t, err)
	assert.Nil(t, cached)

	in := []*models.Candidate{
		{ID: "cat1-a", Name: "A", CategoryID: "cat1", VotesCount: 5, IsActive: true},
		{ID: "cat1-b", Name: "B", CategoryID: "cat1", VotesCount: 2, IsActive: true},
	}
	require.NoError(t, s.SetCandidates(in))

	cached, err = s.Candidates()
	require.NoError(t, err)
	assert.Equal(t, in, cached)
}

func TestDeviceIDIsStable(t *testing.T) {
	s := openMemory(t)

	first, err := s.DeviceID()
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := s.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(WithDir(dir))
	require.NoError(t, err)
	require.NoError(t, s.SetVote("cat2-c"))
	id, err := s.DeviceID()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(WithDir(dir))
	require.NoError(t, err)
	defer s.Close()

	vote, err := s.Vote()
	require.NoError(t, err)
	assert.Equal(t, "cat2-c", vote)

	again, err := s.DeviceID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestAvailable(t *testing.T) {
	s, err := Open()
	require.NoError(t, err)
	assert.True(t, s.Available())

	require.NoError(t, s.Close())
	assert.False(t, s.Available())
}
