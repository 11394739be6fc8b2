package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/models"
	"github.com/yhlin/memberdir/internal/services"
	pkghttp "github.com/yhlin/memberdir/pkg/http"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewUploadRequest creates a multipart request carrying one file part.
func NewUploadRequest(t *testing.T, url, filename string, content []byte) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest("POST", url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// WithUserContext attaches a regular user session to the request context
func WithUserContext(req *http.Request, account string) *http.Request {
	return withSession(req, &models.SessionUser{
		Account:     account,
		DisplayName: account,
		Role:        models.RoleUser,
	})
}

// WithAdminContext attaches an admin session to the request context
func WithAdminContext(req *http.Request, account string) *http.Request {
	return withSession(req, &models.SessionUser{
		Account:     account,
		DisplayName: account,
		Role:        models.RoleAdmin,
	})
}

func withSession(req *http.Request, user *models.SessionUser) *http.Request {
	ctx := context.WithValue(req.Context(), auth.UserContextKey, user)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// TestAccount builds a directory row with fixed timestamps.
func TestAccount(handle, name string) *models.Account {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return &models.Account{
		ID:           uuid.NewString(),
		Account:      handle,
		DisplayName:  name,
		PasswordHash: "$2a$12$notarealhash",
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc    func(ctx context.Context, handle, password, ipAddress string) (*models.SessionUser, error)
	RegisterFunc func(ctx context.Context, handle, displayName, password, ipAddress string) (*models.SessionUser, error)
}

func (m *MockAuthService) Login(ctx context.Context, handle, password, ipAddress string) (*models.SessionUser, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, handle, password, ipAddress)
}

func (m *MockAuthService) Register(ctx context.Context, handle, displayName, password, ipAddress string) (*models.SessionUser, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, handle, displayName, password, ipAddress)
}

// MockAccountService implements AccountServiceInterface and
// SettingsServiceInterface for testing
type MockAccountService struct {
	ListDirectoryFunc func(ctx context.Context, query string, page int) (*services.DirectoryPage, error)
	GetAccountFunc    func(ctx context.Context, id string) (*models.Account, error)
	CreateAccountFunc func(ctx context.Context, input services.CreateAccountInput) (*models.Account, error)
	UpdateAccountFunc func(ctx context.Context, id string, input services.UpdateAccountInput) (*models.Account, error)
	DeleteAccountFunc func(ctx context.Context, id string) error
	GetByHandleFunc   func(ctx context.Context, handle string) (*models.Account, error)
	UpdateContactFunc func(ctx context.Context, handle, phone, address string) (*models.Account, error)
}

func (m *MockAccountService) ListDirectory(ctx context.Context, query string, page int) (*services.DirectoryPage, error) {
	if m.ListDirectoryFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.ListDirectoryFunc(ctx, query, page)
}

func (m *MockAccountService) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	if m.GetAccountFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetAccountFunc(ctx, id)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, input services.CreateAccountInput) (*models.Account, error) {
	if m.CreateAccountFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.CreateAccountFunc(ctx, input)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, id string, input services.UpdateAccountInput) (*models.Account, error) {
	if m.UpdateAccountFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateAccountFunc(ctx, id, input)
}

func (m *MockAccountService) DeleteAccount(ctx context.Context, id string) error {
	if m.DeleteAccountFunc == nil {
		return models.ErrNotFound
	}
	return m.DeleteAccountFunc(ctx, id)
}

func (m *MockAccountService) GetByHandle(ctx context.Context, handle string) (*models.Account, error) {
	if m.GetByHandleFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetByHandleFunc(ctx, handle)
}

func (m *MockAccountService) UpdateContact(ctx context.Context, handle, phone, address string) (*models.Account, error) {
	if m.UpdateContactFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateContactFunc(ctx, handle, phone, address)
}

// MockImportService implements ImportServiceInterface for testing
type MockImportService struct {
	PreviewFunc    func(r io.Reader) (*services.Preview, error)
	RunFunc        func(ctx context.Context, actor string, candidates []models.ImportCandidate) (*models.ImportReport, error)
	RecentRunsFunc func(ctx context.Context, limit int) ([]*models.ImportRun, error)
}

func (m *MockImportService) Preview(r io.Reader) (*services.Preview, error) {
	if m.PreviewFunc == nil {
		return &services.Preview{}, nil
	}
	return m.PreviewFunc(r)
}

func (m *MockImportService) Run(ctx context.Context, actor string, candidates []models.ImportCandidate) (*models.ImportReport, error) {
	if m.RunFunc == nil {
		return &models.ImportReport{}, nil
	}
	return m.RunFunc(ctx, actor, candidates)
}

func (m *MockImportService) RecentRuns(ctx context.Context, limit int) ([]*models.ImportRun, error) {
	if m.RecentRunsFunc == nil {
		return nil, nil
	}
	return m.RecentRunsFunc(ctx, limit)
}
