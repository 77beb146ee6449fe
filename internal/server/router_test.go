package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keypad-calculator/internal/calculator"
	"keypad-calculator/internal/observability"
	"keypad-calculator/internal/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := calculator.InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	store := calculator.NewStore(time.Minute)
	t.Cleanup(store.Close)

	return NewRouter(calculator.NewAPI(store))
}

func TestNewRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}

	if body := w.Body.String(); body != "ok" {
		t.Fatalf("expected body %q, got %q", "ok", body)
	}
}

func TestNewRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}

func TestNewRouterSessionFlow(t *testing.T) {
	router := newTestRouter(t)

	// Create a session.
	req := httptest.NewRequest(http.MethodPost, "/calculator/sessions", nil)
	w := testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	requestID := w.Result().Header.Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		t.Fatalf("expected valid UUID in X-Request-ID, got %q: %v", requestID, err)
	}

	var created calculator.SessionResponse
	testutil.DecodeJSONBody(t, w.Result().Body, &created)

	if created.SessionID == "" {
		t.Fatal("expected a session ID")
	}
	if created.RequestID != requestID {
		t.Fatalf("expected body request_id %q to match header %q", created.RequestID, requestID)
	}

	// Type 5 + 3 and evaluate.
	keys := []string{
		`{"key":"digit","digit":"5"}`,
		`{"key":"operator","operator":"+"}`,
		`{"key":"digit","digit":"3"}`,
		`{"key":"equals"}`,
	}

	var last calculator.SessionResponse
	for _, body := range keys {
		url := fmt.Sprintf("/calculator/sessions/%s/keys", created.SessionID)
		req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
		w := testutil.ExecuteRequest(req, router)
		testutil.CheckResponseCode(t, http.StatusOK, w.Code)
		last = calculator.SessionResponse{}
		testutil.DecodeJSONBody(t, w.Result().Body, &last)
	}

	if last.State.FirstNumber != "8" {
		t.Fatalf("expected first number %q, got %q", "8", last.State.FirstNumber)
	}
	if last.State.SecondNumber != "" || last.State.Operation != "" {
		t.Fatalf("expected collapsed state, got %+v", last.State)
	}
	if last.Display.Expression != "8" || last.Display.Entry != "" {
		t.Fatalf("expected display lines %q/%q, got %q/%q", "8", "", last.Display.Expression, last.Display.Entry)
	}

	// End the session.
	url := fmt.Sprintf("/calculator/sessions/%s", created.SessionID)
	req = httptest.NewRequest(http.MethodDelete, url, nil)
	w = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, url, nil)
	w = testutil.ExecuteRequest(req, router)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}
