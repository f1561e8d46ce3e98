package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ballot/pkg/domain-errors"
	"ballot/pkg/testutil"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, dErrors.New(dErrors.CodeInternal, "tally update failed"))

		testutil.AssertStatus(t, rr, http.StatusInternalServerError)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("not found includes description", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, dErrors.New(dErrors.CodeNotFound, "candidate not found"))

		testutil.AssertStatus(t, rr, http.StatusNotFound)
		body := testutil.UnmarshalErrorResponse(t, rr)
		assert.Equal(t, "candidate not found", body["error_description"])
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteError(rr, errors.New("pq: connection refused"))

		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	})
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "a@b.co", dst.Email)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mail":"a@b.co"}`))
	err := DecodeJSON(req, &dst)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
