package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramClient sends messages through the Telegram Bot API.
type TelegramClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTelegramClient builds a bot client. Returns nil when no token is
// configured so callers can treat Telegram as absent.
func NewTelegramClient(token string, logger *logging.Logger) *TelegramClient {
	if token == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &TelegramClient{
		token:   token,
		baseURL: telegramAPIBase,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

type sendMessageReq struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts a Markdown message to a chat.
func (c *TelegramClient) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("notify: telegram chat id required")
	}

	body, err := json.Marshal(sendMessageReq{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		return fmt.Errorf("notify: failed to encode telegram message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: failed to send telegram message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify: telegram api returned status %s: %s", resp.Status, string(respBody))
	}

	c.logger.Info("telegram message sent", "chat_id", chatID)
	return nil
}
