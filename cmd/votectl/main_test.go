package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballot/internal/voting/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func fakeServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/categories", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "key-1", r.Header.Get("apikey"))
		_ = json.NewEncoder(w).Encode(models.SeedCategories)
	})
	mux.HandleFunc("POST /api/validate-vote", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(models.VoteResult{Success: true})
	})
	mux.HandleFunc("POST /api/votes", func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(models.VoteResult{
			Success:    true,
			Message:    models.MsgVoteSuccess,
			VoteID:     "vote-1",
			VotesCount: 6,
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCategories(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)

	out, err := execute(t, "--server", srv.URL, "--api-key", "key-1", "--memory", "categories")
	require.NoError(t, err)

	var got []models.Category
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, models.SeedCategories, got)
}

func TestVoteThenSelectionPersists(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)
	dir := t.TempDir()

	out, err := execute(t, "--server", srv.URL, "--state-dir", dir, "vote", "cat1-a")
	require.NoError(t, err)
	assert.Contains(t, out, models.MsgVoteSuccess)

	out, err = execute(t, "--server", srv.URL, "--state-dir", dir, "selection")
	require.NoError(t, err)
	assert.Equal(t, "cat1-a", strings.TrimSpace(out))

	out, err = execute(t, "--server", srv.URL, "--state-dir", dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"can_vote": false`)
	assert.Contains(t, out, models.CooldownMessage(24))

	_, err = execute(t, "--server", srv.URL, "--state-dir", dir, "selection", "--clear")
	require.NoError(t, err)
	out, err = execute(t, "--server", srv.URL, "--state-dir", dir, "selection")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestValidateThenVote(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)
	dir := t.TempDir()

	_, err := execute(t, "--server", srv.URL, "--state-dir", dir, "validate")
	require.NoError(t, err)

	out, err := execute(t, "--server", srv.URL, "--state-dir", dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"can_vote": true`)
	assert.Contains(t, out, `"validated": true`)

	out, err = execute(t, "--server", srv.URL, "--state-dir", dir, "vote", "cat1-a")
	require.NoError(t, err)
	assert.Contains(t, out, models.MsgVoteSuccess)
	assert.Equal(t, int32(2), hits.Load())

	out, err = execute(t, "--server", srv.URL, "--state-dir", dir, "status")
	require.NoError(t, err)
	assert.Contains(t, out, `"can_vote": false`)
	assert.NotContains(t, out, `"validated"`)
}

func TestVoteIncognitoIsRejectedLocally(t *testing.T) {
	var hits atomic.Int32
	srv := fakeServer(t, &hits)

	out, err := execute(t, "--server", srv.URL, "--memory", "vote", "cat1-a", "--no-indexed-db")
	require.Error(t, err)
	assert.Contains(t, out, string(models.ErrIncognitoMode))
	assert.Contains(t, out, models.MsgIncognito)
	assert.Zero(t, hits.Load())
}
