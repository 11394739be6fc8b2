package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/database"
	"github.com/yhlin/memberdir/internal/handlers"
	middlewareCustom "github.com/yhlin/memberdir/internal/middleware"
	"github.com/yhlin/memberdir/internal/routes"
	"github.com/yhlin/memberdir/internal/services"
)

const (
	testSessionSecret = "test-secret-32-characters-long-for-testing"
	testCookieName    = "memberdir_session"
	testMaxUpload     = 10 << 20
)

// TestServer wraps httptest.Server with the full route stack on a real database
type TestServer struct {
	Server       *httptest.Server
	DB           *database.DB
	Sessions     *auth.SessionManager
	CookieConfig auth.CookieConfig
}

// NewTestServer wires repositories, services, handlers and middleware the
// same way main does, against the given database.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	accountRepo, importRunRepo := InitializeRepositories(db)

	sessionManager := auth.NewSessionManager(testSessionSecret, 24*time.Hour)
	cookieConfig := auth.CookieConfig{
		Name:     testCookieName,
		Secure:   false,
		MaxAge:   int((24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	}

	timingDelay := auth.NewTimingDelay(auth.TimingConfig{})

	authService := services.NewAuthService(accountRepo, logger, timingDelay)
	accountService := services.NewAccountService(accountRepo, logger)
	importService := services.NewImportService(accountRepo, importRunRepo, logger)

	authHandler := handlers.NewAuthHandler(authService, sessionManager, cookieConfig)
	accountHandler := handlers.NewAccountHandler(accountService)
	settingsHandler := handlers.NewSettingsHandler(accountService)
	importHandler := handlers.NewImportHandler(importService, testMaxUpload)

	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	router.Use(middlewareCustom.CSRFProtection(nil, logger))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(chiMiddleware.Recoverer)

	// A generous limit so the suite's repeated logins never throttle each other.
	rateLimit := middlewareCustom.RateLimitConfig{RequestsPerMinute: 1000}

	routes.RegisterRoutes(router, authHandler, accountHandler, settingsHandler, importHandler, sessionManager, cookieConfig, rateLimit)

	return &TestServer{
		Server:       httptest.NewServer(router),
		DB:           db,
		Sessions:     sessionManager,
		CookieConfig: cookieConfig,
	}
}

// Close shuts the HTTP server down
func (ts *TestServer) Close() {
	ts.Server.Close()
}

// DoJSON performs a JSON request against the test server, attaching the
// given session cookie when non-nil.
func (ts *TestServer) DoJSON(method, path string, body interface{}, session *http.Cookie) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if session != nil {
		req.AddCookie(session)
	}
	return http.DefaultClient.Do(req)
}

// Upload posts a multipart spreadsheet to the given path.
func (ts *TestServer) Upload(path, filename string, content []byte, session *http.Cookie) (*http.Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", ts.Server.URL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if session != nil {
		req.AddCookie(session)
	}
	return http.DefaultClient.Do(req)
}

// Login authenticates and returns the session cookie
func (ts *TestServer) Login(handle, password string) (*http.Cookie, error) {
	resp, err := ts.DoJSON("POST", "/auth/login", map[string]string{
		"account":  handle,
		"password": password,
	}, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("login failed with status %d: %s", resp.StatusCode, payload)
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == testCookieName {
			return cookie, nil
		}
	}
	return nil, fmt.Errorf("login response carried no session cookie")
}

// DecodeJSON reads and decodes a response body
func DecodeJSON(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
