package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/albertosilva007/triagem-platform/pkg/logging"
)

func TestSetupTriageMetricsExposesMetrics(t *testing.T) {
	m, handler := setupTriageMetrics()
	if m == nil || handler == nil {
		t.Fatalf("expected non-nil metrics and handler")
	}

	m.ObserveSessionStarted()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "triagem_sessions_started_total") {
		t.Fatalf("expected sessions counter to be exported")
	}
}

func TestConnectPostgresPoolEmptyURLReturnsNil(t *testing.T) {
	logger := logging.New("error")
	if pool := connectPostgresPool(context.Background(), "", logger); pool != nil {
		t.Fatalf("expected nil pool for empty URL")
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(" a@b.com, ,c@d.com ")
	if len(got) != 2 || got[0] != "a@b.com" || got[1] != "c@d.com" {
		t.Fatalf("unexpected result: %v", got)
	}
	if splitAndTrim("  ") != nil {
		t.Fatalf("expected nil for blank input")
	}
}
