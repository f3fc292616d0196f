package notifier

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_PostsContent(t *testing.T) {
	var received map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := &DiscordNotifier{WebhookURL: server.URL}

	require.NoError(t, n.Notify("❌ Download failed for file: photo1.png"))
	assert.Equal(t, "❌ Download failed for file: photo1.png", received["content"])
}

func TestNotify_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	n := &DiscordNotifier{WebhookURL: server.URL}

	err := n.Notify("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestNotify_MissingWebhook(t *testing.T) {
	n := &DiscordNotifier{}

	assert.Error(t, n.Notify("hello"))
}
