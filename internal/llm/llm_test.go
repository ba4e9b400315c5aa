package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGemini_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash-exp:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Equal(t, "What is in the report?", req.Contents[0].Parts[0].Text)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"The report "},{"text":"covers Q3."}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	g := NewGemini(srv.URL, "secret", "gemini-2.0-flash-exp")
	got, err := g.Generate(context.Background(), "What is in the report?")
	require.NoError(t, err)
	assert.Equal(t, "The report covers Q3.", got)
	assert.NoError(t, g.Ping(context.Background()))
}

func TestGemini_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusForbidden, `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`, "denied"},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, "no candidates"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewGemini(srv.URL, "k", "m").Generate(context.Background(), "q")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnavailable(t *testing.T) {
	var g Generator = Unavailable{}
	got, err := g.Generate(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, UnavailableMessage, got)
	assert.ErrorIs(t, g.Ping(context.Background()), ErrUnavailable)
}
