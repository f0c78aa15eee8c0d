package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errSampleNotFound = NewAPIError(ErrCodeNotFound, "session not found")

func TestAPIError_IsMatchesCopiesWithDetails(t *testing.T) {
	withDetails := errSampleNotFound.WithDetails(map[string]int{"id": 4})
	wrapped := fmt.Errorf("lookup: %w", withDetails)

	require.True(t, stderrors.Is(wrapped, errSampleNotFound))
	require.False(t, stderrors.Is(wrapped, ErrNotFound))
	require.Equal(t, ErrCodeNotFound, CodeOf(wrapped))
	require.Equal(t, ErrCodeInternalError, CodeOf(stderrors.New("boom")))
}

func TestRespondWithServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"api error", errSampleNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"state conflict", NewAPIError(ErrCodeInvalidOperation, "illegal"), http.StatusConflict, ErrCodeInvalidOperation},
		{"bulk item", &BulkItemError{Index: 2, Err: NewAPIError(ErrCodeInvalidInput, "bad value")}, http.StatusBadRequest, ErrCodeInvalidInput},
		{"unknown", stderrors.New("db down"), http.StatusInternalServerError, ErrCodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondWithServiceError(c, zap.NewNop(), tc.err)

			require.Equal(t, tc.status, w.Code)
			var body APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			require.Equal(t, tc.code, body.Code)
		})
	}
}
