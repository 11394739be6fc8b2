package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func csrfTestHandler(trusted []string) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return CSRFProtection(trusted, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestCSRFProtection_AllowsGetFromAnywhere(t *testing.T) {
	handler := csrfTestHandler(nil)

	req := httptest.NewRequest("GET", "/accounts", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("GET should never be blocked, got %d", w.Code)
	}
}

func TestCSRFProtection_BlocksForeignOriginPost(t *testing.T) {
	handler := csrfTestHandler(nil)

	req := httptest.NewRequest("POST", "/accounts", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("cross-origin POST should be rejected, got %d", w.Code)
	}
}

func TestCSRFProtection_AllowsSameHostPost(t *testing.T) {
	handler := csrfTestHandler(nil)

	req := httptest.NewRequest("POST", "http://panel.local/accounts", nil)
	req.Header.Set("Origin", "http://panel.local")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("same-origin POST should pass, got %d", w.Code)
	}
}

func TestCSRFProtection_AllowsTrustedOrigin(t *testing.T) {
	handler := csrfTestHandler([]string{"https://admin.example.com"})

	req := httptest.NewRequest("POST", "/accounts", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("trusted origin should pass, got %d", w.Code)
	}
}

func TestCSRFProtection_AllowsRequestsWithoutOrigin(t *testing.T) {
	handler := csrfTestHandler(nil)

	req := httptest.NewRequest("POST", "/accounts", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("request without Origin header should pass, got %d", w.Code)
	}
}
