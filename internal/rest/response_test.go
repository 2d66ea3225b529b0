package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusBadRequest, "Invalid from (date) format", "'from' must be in RFC3339 format")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "Invalid from (date) format", resp.Error)
	assert.Equal(t, "'from' must be in RFC3339 format", resp.Details)
}

func TestWriteError_NoDetails(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, http.StatusUnauthorized, "Token required")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Token required"}`, w.Body.String())
}
