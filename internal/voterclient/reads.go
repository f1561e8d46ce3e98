package voterclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	profilemodels "ballot/internal/profile/models"
	"ballot/internal/voting/models"
)

func (c *Client) Categories(ctx context.Context) ([]*models.Category, error) {
	var out []*models.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Candidates lists a category ordered by votes. The result is cached
// locally and the cache answers when the server cannot be reached.
func (c *Client) Candidates(ctx context.Context, categoryID string) ([]*models.Candidate, error) {
	var out []*models.Candidate
	err := c.do(ctx, http.MethodGet, "/api/categories/"+url.PathEscape(categoryID)+"/candidates", nil, &out)
	if err == nil {
		if cacheErr := c.cacheCandidates(categoryID, out); cacheErr != nil {
			c.logger.WarnContext(ctx, "cache candidates failed", "error", cacheErr)
		}
		return out, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil, err
	}

	cached, cacheErr := c.cachedCandidates(categoryID)
	if cacheErr != nil || len(cached) == 0 {
		return nil, err
	}
	c.logger.WarnContext(ctx, "serving cached candidates", "category_id", categoryID, "error", err)
	return cached, nil
}

func (c *Client) Candidate(ctx context.Context, id string) (*models.Candidate, error) {
	var out models.Candidate
	if err := c.do(ctx, http.MethodGet, "/api/candidates/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stats(ctx context.Context) (models.Stats, error) {
	var out models.Stats
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &out); err != nil {
		return models.Stats{}, err
	}
	return out, nil
}

type registerResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Error   models.ErrorKind       `json:"error,omitempty"`
	Profile *profilemodels.Profile `json:"profile,omitempty"`
}

// Register creates a voter profile. Rejections come back as a VoteError
// carrying the server's message.
func (c *Client) Register(ctx context.Context, reg profilemodels.Registration) (*profilemodels.Profile, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/profiles", reg)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	defer resp.Body.Close()

	var out registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode register response (status %d): %w", resp.StatusCode, err)
	}
	if !out.Success || out.Profile == nil {
		return nil, resultError(models.VoteResult{Message: out.Message, Error: out.Error})
	}
	return out.Profile, nil
}

// cacheCandidates replaces one category's entries in the shared cache.
func (c *Client) cacheCandidates(categoryID string, fresh []*models.Candidate) error {
	cached, err := c.state.Candidates()
	if err != nil {
		return err
	}
	merged := make([]*models.Candidate, 0, len(cached)+len(fresh))
	for _, cand := range cached {
		if cand.CategoryID != categoryID {
			merged = append(merged, cand)
		}
	}
	merged = append(merged, fresh...)
	return c.state.SetCandidates(merged)
}

func (c *Client) cachedCandidates(categoryID string) ([]*models.Candidate, error) {
	cached, err := c.state.Candidates()
	if err != nil {
		return nil, err
	}
	var out []*models.Candidate
	for _, cand := range cached {
		if cand.CategoryID == categoryID {
			out = append(out, cand)
		}
	}
	models.SortByVotes(out)
	return out, nil
}
