package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/models"
	"github.com/yhlin/memberdir/internal/services"
	pkghttp "github.com/yhlin/memberdir/pkg/http"
)

// AccountServiceInterface defines the interface for directory business logic
type AccountServiceInterface interface {
	ListDirectory(ctx context.Context, query string, page int) (*services.DirectoryPage, error)
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	CreateAccount(ctx context.Context, input services.CreateAccountInput) (*models.Account, error)
	UpdateAccount(ctx context.Context, id string, input services.UpdateAccountInput) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// AccountHandler handles directory listing and account CRUD requests
type AccountHandler struct {
	service AccountServiceInterface
}

func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{
		service: service,
	}
}

// Request/Response DTOs

// CreateAccountRequest represents the request body for creating an account
type CreateAccountRequest struct {
	Account  string `json:"account" validate:"required,min=1"`
	Name     string `json:"name" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=4"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=256"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateAccountRequest represents the request body for editing an account.
// A blank password keeps the stored one.
type UpdateAccountRequest struct {
	Account  string `json:"account" validate:"required,min=1"`
	Name     string `json:"name" validate:"required,min=1"`
	Password string `json:"password" validate:"omitempty,min=4"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=256"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

// AccountResponse represents a directory row in the HTTP response. The
// admin-only fields are omitted from the reduced projection.
type AccountResponse struct {
	ID          string  `json:"id,omitempty"`
	Account     string  `json:"account"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Password    string  `json:"password,omitempty"` // always a mask, never the hash
	Phone       *string `json:"phone,omitempty"`
	Address     *string `json:"address,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// PaginationMeta mirrors the pagination bar: the visible page numbers plus
// ellipsis flags on either side.
type PaginationMeta struct {
	Page             int   `json:"page"`
	PageSize         int   `json:"page_size"`
	TotalPages       int   `json:"total_pages"`
	TotalCount       int   `json:"total_count"`
	VisiblePages     []int `json:"visible_pages"`
	LeadingEllipsis  bool  `json:"leading_ellipsis"`
	TrailingEllipsis bool  `json:"trailing_ellipsis"`
}

// ListAccountsResponse represents one page of the directory
type ListAccountsResponse struct {
	Accounts   []*AccountResponse `json:"accounts"`
	Query      string             `json:"query"`
	Pagination PaginationMeta     `json:"pagination"`
}

const passwordMask = "********"

func accountModelToResponse(account *models.Account, adminView bool) *AccountResponse {
	resp := &AccountResponse{
		Account:   account.Account,
		Name:      account.DisplayName,
		Role:      account.Role,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
	if adminView {
		resp.ID = account.ID
		resp.Password = passwordMask
		resp.Phone = account.Phone
		resp.Address = account.Address
		resp.UpdatedAt = account.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

// List returns the filtered, paginated directory. Admin sessions get the
// full row projection; everyone else gets the reduced one.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			pkghttp.WriteBadRequest(w, "Invalid page number")
			return
		}
		page = parsed
	}

	result, err := h.service.ListDirectory(r.Context(), query, page)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	user := auth.GetUserFromContext(r)
	adminView := user != nil && user.IsAdmin()

	accounts := make([]*AccountResponse, 0, len(result.Accounts))
	for _, account := range result.Accounts {
		accounts = append(accounts, accountModelToResponse(account, adminView))
	}

	writeJSON(w, http.StatusOK, ListAccountsResponse{
		Accounts: accounts,
		Query:    result.Query,
		Pagination: PaginationMeta{
			Page:             result.Page,
			PageSize:         result.PageSize,
			TotalPages:       result.TotalPages,
			TotalCount:       result.TotalCount,
			VisiblePages:     result.Window.Pages,
			LeadingEllipsis:  result.Window.LeadingEllipsis,
			TrailingEllipsis: result.Window.TrailingEllipsis,
		},
	})
}

// Get returns a single account for the edit form.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	account, err := h.service.GetAccount(r.Context(), id)
	if err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountModelToResponse(account, true))
}

// Create adds a directory entry.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.service.CreateAccount(r.Context(), services.CreateAccountInput{
		Account:     req.Account,
		DisplayName: req.Name,
		Password:    req.Password,
		Phone:       optionalField(req.Phone),
		Address:     optionalField(req.Address),
		Role:        req.Role,
	})
	if err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountModelToResponse(account, true))
}

// Update rewrites a directory entry.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.service.UpdateAccount(r.Context(), id, services.UpdateAccountInput{
		Account:     req.Account,
		DisplayName: req.Name,
		Password:    req.Password,
		Phone:       optionalField(req.Phone),
		Address:     optionalField(req.Address),
		Role:        req.Role,
	})
	if err != nil {
		h.writeAccountError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountModelToResponse(account, true))
}

// Delete removes a directory entry.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseAccountID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		h.writeAccountError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		pkghttp.WriteBadRequest(w, err.Error())
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, "Account already in use")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Account not found")
	case errors.Is(err, models.ErrInternalServer):
		pkghttp.WriteInternalError(w, "Internal server error")
	default:
		// Store failures surface their own message.
		pkghttp.WriteInternalError(w, err.Error())
	}
}

func parseAccountID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid account id")
		return "", false
	}
	return id, true
}

func optionalField(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
