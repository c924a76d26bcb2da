package webchat

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/albertosilva007/triagem-platform/internal/sessions"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// Processor runs one turn of the triage conversation.
type Processor interface {
	Handle(ctx context.Context, conversationID, message string) (string, error)
}

// TranscriptStore records chat history for reconnects.
type TranscriptStore interface {
	Append(ctx context.Context, conversationID string, msg sessions.TranscriptMessage) error
	List(ctx context.Context, conversationID string, limit int64) ([]sessions.TranscriptMessage, error)
}

// Handler manages web chat connections for the triage widget. Replies
// are produced synchronously by the triage script, so each inbound
// message is answered on the same connection.
type Handler struct {
	processor  Processor
	transcript TranscriptStore
	logger     *logging.Logger
	widgetJS   []byte

	mu       sync.RWMutex
	sessions map[string]*wsConn // conversationID -> active connection
}

type wsConn struct {
	conn *websocket.Conn
	done chan struct{}
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type      string `json:"type"` // "message", "ping"
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string           `json:"type"` // "message", "typing", "history", "session", "pong", "error"
	Text      string           `json:"text,omitempty"`
	Role      string           `json:"role,omitempty"` // "assistant" or "user"
	SessionID string           `json:"session_id,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history responses.
type HistoryMessage struct {
	Role      string `json:"role"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewHandler creates a web chat handler. transcript may be nil; history
// restore is then disabled.
func NewHandler(processor Processor, transcript TranscriptStore, widgetJS []byte, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		processor:  processor,
		transcript: transcript,
		logger:     logger,
		widgetJS:   widgetJS,
		sessions:   make(map[string]*wsConn),
	}
}

// ConversationID builds the canonical conversation ID for a webchat session.
func ConversationID(sessionID string) string {
	return "webchat:" + sessionID
}

// generateSessionID creates a random session identifier.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	resumed := sessionID != ""
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	convID := ConversationID(sessionID)

	// Send session info so the widget can reconnect later.
	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "session",
		SessionID: sessionID,
	})

	// Send history if available
	if resumed && h.transcript != nil {
		if msgs, err := h.transcript.List(r.Context(), convID, 50); err == nil && len(msgs) > 0 {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "history", Messages: historyMessages(msgs)})
		}
	}

	// Register connection
	wsc := &wsConn{conn: conn, done: make(chan struct{})}
	h.mu.Lock()
	h.sessions[convID] = wsc
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		if h.sessions[convID] == wsc {
			delete(h.sessions, convID)
		}
		h.mu.Unlock()
		close(wsc.done)
	}()

	h.logger.Info("webchat: connection opened", "session_id", sessionID, "resumed", resumed)

	// New sessions get the opening prompt right away. Resumed sessions
	// keep their place in the script and wait for the next message.
	if !resumed {
		h.processMessage(r.Context(), sessionID, "")
	}

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}

		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		h.processMessage(r.Context(), sessionID, msg.Text)
	}
}

func (h *Handler) processMessage(ctx context.Context, sessionID, text string) {
	convID := ConversationID(sessionID)

	h.SendToSession(convID, OutboundMessage{Type: "typing"})

	h.appendTranscript(ctx, convID, "user", text)

	reply, err := h.processor.Handle(ctx, convID, text)
	if err != nil {
		h.logger.Error("webchat: failed to process message", "error", err, "session_id", sessionID)
		if reply == "" {
			h.SendToSession(convID, OutboundMessage{
				Type: "error",
				Text: "Desculpe, algo deu errado. Tente novamente.",
			})
			return
		}
		// The script still produced a reply; deliver it.
	}

	h.appendTranscript(ctx, convID, "assistant", reply)

	h.SendToSession(convID, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) appendTranscript(ctx context.Context, convID, role, text string) {
	if h.transcript == nil || text == "" {
		return
	}
	err := h.transcript.Append(ctx, convID, sessions.TranscriptMessage{
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Warn("webchat: failed to store transcript message", "error", err)
	}
}

func historyMessages(msgs []sessions.TranscriptMessage) []HistoryMessage {
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Role:      m.Role,
			Text:      m.Text,
			Timestamp: m.Timestamp.Format(time.RFC3339),
		})
	}
	return history
}

// SendToSession sends a message to an active WebSocket session.
func (h *Handler) SendToSession(convID string, msg OutboundMessage) {
	h.mu.RLock()
	wsc, ok := h.sessions[convID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	_ = websocket.JSON.Send(wsc.conn, msg)
}

// HandleMessage is the HTTP fallback for widgets without WebSocket support.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = generateSessionID()
	}

	convID := ConversationID(req.SessionID)
	h.appendTranscript(r.Context(), convID, "user", req.Text)

	reply, err := h.processor.Handle(r.Context(), convID, req.Text)
	if err != nil && reply == "" {
		h.logger.Error("webchat: failed to process message", "error", err, "session_id", req.SessionID)
		http.Error(w, "failed to process message", http.StatusInternalServerError)
		return
	}

	h.appendTranscript(r.Context(), convID, "assistant", reply)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"session_id": req.SessionID,
		"reply":      reply,
	})
}

// HandleHistory returns chat history for a session.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if h.transcript == nil {
		_ = json.NewEncoder(w).Encode(map[string]any{"messages": []HistoryMessage{}})
		return
	}

	msgs, err := h.transcript.List(r.Context(), ConversationID(sessionID), 100)
	if err != nil {
		h.logger.Error("webchat: failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"messages": historyMessages(msgs)})
}

// HandleWidgetJS serves the embeddable widget JavaScript.
func (h *Handler) HandleWidgetJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_, _ = w.Write(h.widgetJS)
}
