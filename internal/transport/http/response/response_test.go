package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, e Envelope) map[string]any {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestOK(t *testing.T) {
	m := decode(t, OK(http.StatusCreated, map[string]string{"id": "1"}))

	assert.Equal(t, true, m["success"])
	assert.Equal(t, float64(201), m["statusCode"])
	assert.Equal(t, map[string]any{"id": "1"}, m["data"])
	assert.NotContains(t, m, "error")
}

func TestOK_NilAndEmptyData(t *testing.T) {
	m := decode(t, OK(http.StatusOK, nil))
	assert.Equal(t, map[string]any{}, m["data"], "data must never be null")

	m = decode(t, OK(http.StatusOK, []string{}))
	assert.Equal(t, []any{}, m["data"], "empty list stays an array")
}

func TestError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		msg      string
		expected string
	}{
		{"custom message", http.StatusNotFound, MsgUserNotFound, "User not found"},
		{"default message", http.StatusInternalServerError, "", "Internal Server Error"},
		{"falls back to status text", http.StatusTeapot, "", "I'm a teapot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := decode(t, Error(tt.status, tt.msg))

			assert.Equal(t, false, m["success"])
			assert.Equal(t, float64(tt.status), m["statusCode"])
			assert.Equal(t, tt.expected, m["error"])
			assert.NotContains(t, m, "data")
			assert.NotContains(t, m, "details")
		})
	}
}

func TestWithDetails(t *testing.T) {
	m := decode(t, Error(http.StatusBadRequest, MsgValidation).WithDetails([]string{"body.email"}))
	assert.Equal(t, []any{"body.email"}, m["details"])

	ok := OK(http.StatusOK, "x").WithDetails("ignored")
	assert.Nil(t, ok.Details, "success envelopes never carry details")
}
