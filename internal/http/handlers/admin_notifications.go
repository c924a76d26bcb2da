package handlers

import (
	"context"
	"net/http"

	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

// TestNotifier sends a test message over the configured alert channel.
type TestNotifier interface {
	SendTest(ctx context.Context) error
}

// AdminNotificationsHandler verifies the alert channel end to end.
type AdminNotificationsHandler struct {
	notifier TestNotifier
	logger   *logging.Logger
}

// NewAdminNotificationsHandler creates a new admin notifications handler.
func NewAdminNotificationsHandler(notifier TestNotifier, logger *logging.Logger) *AdminNotificationsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminNotificationsHandler{
		notifier: notifier,
		logger:   logger,
	}
}

// SendTest sends a test alert so operators can confirm Telegram delivery
// before an urgent case depends on it.
// POST /admin/notifications/test
func (h *AdminNotificationsHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if h.notifier == nil {
		jsonError(w, "notifications not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.notifier.SendTest(r.Context()); err != nil {
		h.logger.Error("failed to send test notification", "error", err)
		jsonError(w, "failed to send test notification", http.StatusBadGateway)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
