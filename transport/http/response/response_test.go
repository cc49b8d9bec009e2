package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slotkeeper/shared/failure"
	"slotkeeper/transport/http/response"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	body := map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestWithError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		code       int
		body       map[string]any
		retryAfter string
	}{
		{
			name: "invalid state carries current status",
			err:  failure.InvalidState("cancelled"),
			code: http.StatusConflict,
			body: map[string]any{"error": "operation not allowed in state cancelled", "kind": "invalid_state", "state": "cancelled"},
		},
		{
			name:       "busy is retryable",
			err:        fmt.Errorf("confirm: %w", failure.Busy("resource busy")),
			code:       http.StatusServiceUnavailable,
			body:       map[string]any{"error": "resource busy", "kind": "busy"},
			retryAfter: "1",
		},
		{
			name: "internal errors are not leaked",
			err:  errors.New("pq: connection refused"),
			code: http.StatusInternalServerError,
			body: map[string]any{"error": "Internal Server Error", "kind": "internal"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			response.WithError(rec, tt.err)

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.body, decode(t, rec))
			assert.Equal(t, tt.retryAfter, rec.Header().Get("Retry-After"))
		})
	}
}

func TestWithJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	response.WithJSON(rec, http.StatusCreated, map[string]string{"id": "b1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"data": map[string]any{"id": "b1"}}, decode(t, rec))
}
