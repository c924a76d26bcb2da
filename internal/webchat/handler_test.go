package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertosilva007/triagem-platform/internal/sessions"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

type mockProcessor struct {
	calls   []string
	reply   string
	handErr error
}

func (m *mockProcessor) Handle(_ context.Context, conversationID, message string) (string, error) {
	m.calls = append(m.calls, conversationID+"|"+message)
	return m.reply, m.handErr
}

type mockTranscript struct {
	store map[string][]sessions.TranscriptMessage
}

func newMockTranscript() *mockTranscript {
	return &mockTranscript{store: make(map[string][]sessions.TranscriptMessage)}
}

func (m *mockTranscript) Append(_ context.Context, convID string, msg sessions.TranscriptMessage) error {
	m.store[convID] = append(m.store[convID], msg)
	return nil
}

func (m *mockTranscript) List(_ context.Context, convID string, limit int64) ([]sessions.TranscriptMessage, error) {
	msgs := m.store[convID]
	if int64(len(msgs)) > limit {
		msgs = msgs[int64(len(msgs))-limit:]
	}
	return msgs, nil
}

func TestConversationID(t *testing.T) {
	assert.Equal(t, "webchat:sess456", ConversationID("sess456"))
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEmpty(t, s1)
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32) // 16 bytes = 32 hex chars
}

func TestHandleMessage_HTTP(t *testing.T) {
	proc := &mockProcessor{reply: "Prazer, Maria!"}
	ts := newMockTranscript()
	h := NewHandler(proc, ts, []byte("// widget"), logging.New("error"))

	body := `{"session_id":"sess1","text":"Maria Silva"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess1", resp["session_id"])
	assert.Equal(t, "Prazer, Maria!", resp["reply"])

	require.Len(t, proc.calls, 1)
	assert.Equal(t, "webchat:sess1|Maria Silva", proc.calls[0])

	// Both sides of the turn land in the transcript.
	msgs := ts.store["webchat:sess1"]
	require.Len(t, msgs, 2)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "Maria Silva", msgs[0].Text)
	assert.Equal(t, "assistant", msgs[1].Role)
}

func TestHandleHistory(t *testing.T) {
	ts := newMockTranscript()
	ts.store["webchat:sess1"] = []sessions.TranscriptMessage{
		{Role: "user", Text: "olá"},
		{Role: "assistant", Text: "Qual é o seu nome?"},
	}
	h := NewHandler(&mockProcessor{}, ts, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=sess1", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "olá", resp.Messages[0].Text)
}

func TestHandleHistory_MissingSession(t *testing.T) {
	h := NewHandler(&mockProcessor{}, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/history", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHistory_NoTranscriptStore(t *testing.T) {
	h := NewHandler(&mockProcessor{}, nil, nil, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/history?session=sess1", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"messages":[]`)
}

func TestHandleMessage_MissingText(t *testing.T) {
	h := NewHandler(&mockProcessor{}, nil, nil, logging.New("error"))

	body := `{"session_id":"sess1","text":"  "}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMessage_GeneratesSessionID(t *testing.T) {
	proc := &mockProcessor{reply: "oi"}
	h := NewHandler(proc, nil, nil, logging.New("error"))

	body := `{"text":"oi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["session_id"])
}

func TestHandleMessage_ProcessorFailure(t *testing.T) {
	proc := &mockProcessor{handErr: errors.New("redis down")}
	h := NewHandler(proc, nil, nil, logging.New("error"))

	body := `{"session_id":"sess1","text":"oi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleMessage_DeliversReplyDespiteSaveError(t *testing.T) {
	// The triage service can return a reply alongside a session persistence
	// error; the visitor should still see the reply.
	proc := &mockProcessor{reply: "anotado", handErr: errors.New("save failed")}
	h := NewHandler(proc, nil, nil, logging.New("error"))

	body := `{"session_id":"sess1","text":"oi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	h.HandleMessage(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "anotado", resp["reply"])
}

func TestHandleWidgetJS(t *testing.T) {
	widgetContent := []byte("(function(){ /* widget */ })();")
	h := NewHandler(&mockProcessor{}, nil, widgetContent, logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/chat/widget.js", nil)
	w := httptest.NewRecorder()

	h.HandleWidgetJS(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/javascript", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, string(widgetContent), w.Body.String())
}

func TestSendToSessionIgnoresUnknownConversation(t *testing.T) {
	h := NewHandler(&mockProcessor{}, nil, nil, logging.New("error"))
	h.SendToSession("webchat:unknown", OutboundMessage{Type: "message", Text: "oi"})
}
