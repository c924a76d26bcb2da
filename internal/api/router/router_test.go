package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albertosilva007/triagem-platform/internal/http/handlers"
	"github.com/albertosilva007/triagem-platform/internal/records"
	"github.com/albertosilva007/triagem-platform/internal/triage"
	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

type routerProcessor struct{}

func (routerProcessor) Handle(_ context.Context, _, _ string) (string, error) {
	return "olá", nil
}

type routerRecordLister struct{}

func (routerRecordLister) ListRecent(_ context.Context, _ int) ([]records.StoredRecord, error) {
	return nil, nil
}

func (routerRecordLister) ListByNationalID(_ context.Context, _ string, _ int) ([]records.StoredRecord, error) {
	return nil, nil
}

func newTestRouter(adminSecret string) http.Handler {
	logger := logging.New("error")
	return New(&Config{
		Logger:              logger,
		ConversationHandler: triage.NewHandler(routerProcessor{}, nil, nil, nil, logger),
		AdminRecords:        handlers.NewAdminRecordsHandler(routerRecordLister{}, logger),
		AdminAuthSecret:     adminSecret,
		CORSAllowedOrigins:  []string{"*"},
	})
}

func adminToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestConversationRoutesAreWired(t *testing.T) {
	r := newTestRouter("")

	req := httptest.NewRequest(http.MethodPost, "/conversations/message", strings.NewReader(`{"conversation_id":"c1","message":"oi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "olá")
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	r := newTestRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/records", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesAcceptValidJWT(t *testing.T) {
	r := newTestRouter("secret")

	req := httptest.NewRequest(http.MethodGet, "/admin/records", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, "secret"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminRoutesDisabledWithoutSecret(t *testing.T) {
	r := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/admin/records", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
