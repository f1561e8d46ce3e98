package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(5, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 100, Percent(7, 7))
	// 0.5% rounds up
	assert.Equal(t, 1, Percent(1, 200))
}

func TestComputeStats(t *testing.T) {
	candidates := []*Candidate{
		{ID: "cat1-a", Name: "A", VotesCount: 5},
		{ID: "cat1-b", Name: "B", VotesCount: 10},
		{ID: "cat2-a", Name: "C", VotesCount: 3},
		{ID: "cat3-a", Name: "D", VotesCount: 2},
	}

	t.Run("leaders and no history", func(t *testing.T) {
		stats := ComputeStats(candidates, nil)
		assert.Equal(t, int64(20), stats.TotalVotes)
		require.Len(t, stats.Leaders, 3)
		assert.Equal(t, "cat1-b", stats.Leaders[0].CandidateID)
		assert.Equal(t, 50, stats.Leaders[0].Percent)
		assert.Equal(t, "cat1-a", stats.Leaders[1].CandidateID)
		assert.Equal(t, 25, stats.Leaders[1].Percent)
		assert.Equal(t, "cat2-a", stats.Leaders[2].CandidateID)
		assert.Zero(t, stats.DailyGrowth)
		assert.Equal(t, "cat1-a", candidates[0].ID, "input order untouched")
	})

	t.Run("growth against yesterday", func(t *testing.T) {
		stats := ComputeStats(candidates, &DailyTotal{TotalVotes: 16})
		assert.InDelta(t, 25.0, stats.DailyGrowth, 0.0001)
	})

	t.Run("zero yesterday means no growth", func(t *testing.T) {
		stats := ComputeStats(candidates, &DailyTotal{TotalVotes: 0})
		assert.Zero(t, stats.DailyGrowth)
	})

	t.Run("empty", func(t *testing.T) {
		stats := ComputeStats(nil, nil)
		assert.Zero(t, stats.TotalVotes)
		assert.Empty(t, stats.Leaders)
	})
}

func TestIdentityHasKnownIP(t *testing.T) {
	assert.True(t, Identity{IP: "203.0.113.1"}.HasKnownIP())
	assert.False(t, Identity{IP: UnknownIP}.HasKnownIP())
	assert.False(t, Identity{}.HasKnownIP())
}

func TestVoteErrors(t *testing.T) {
	cause := errors.New("pq: relation votes does not exist")
	err := NewVoteError(ErrVoteSubmission, cause)

	assert.Equal(t, ErrVoteSubmission, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrUnknown, KindOf(cause))

	res := ResultFromError(err)
	assert.False(t, res.Success)
	assert.Equal(t, MsgVoteSubmission, res.Message)
	assert.NotContains(t, res.Message, "pq:")

	res = ResultFromError(cause)
	assert.Equal(t, ErrUnknown, res.Error)
	assert.Equal(t, MsgGeneric, res.Message)

	cd := NewCooldownError(23)
	assert.Equal(t, "لقد قمت بالتصويت مسبقاً. يرجى المحاولة بعد 23 ساعة", cd.Message)
	assert.Equal(t, ErrCooldownActive, KindOf(cd))
}

func TestSeedCandidatesReferenceSeedCategories(t *testing.T) {
	cats := map[string]bool{}
	for _, c := range SeedCategories {
		cats[c.ID] = true
	}
	seen := map[string]bool{}
	for _, c := range SeedCandidates {
		assert.True(t, cats[c.CategoryID], c.ID)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}
