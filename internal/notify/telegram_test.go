package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramClientSendMessage(t *testing.T) {
	var got sendMessageReq
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken-123/sendMessage", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewTelegramClient("token-123", nil)
	client.baseURL = server.URL

	require.NoError(t, client.SendMessage(context.Background(), "chat-1", "olá"))
	assert.Equal(t, "chat-1", got.ChatID)
	assert.Equal(t, "olá", got.Text)
	assert.Equal(t, "Markdown", got.ParseMode)
}

func TestTelegramClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"bot was blocked"}`))
	}))
	defer server.Close()

	client := NewTelegramClient("token-123", nil)
	client.baseURL = server.URL

	err := client.SendMessage(context.Background(), "chat-1", "olá")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestTelegramClientRequiresChatID(t *testing.T) {
	client := NewTelegramClient("token-123", nil)
	assert.Error(t, client.SendMessage(context.Background(), "", "olá"))
}

func TestNewTelegramClientWithoutToken(t *testing.T) {
	assert.Nil(t, NewTelegramClient("", nil))
}
