package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/yhlin/memberdir/internal/auth"
	"github.com/yhlin/memberdir/internal/models"
	pkghttp "github.com/yhlin/memberdir/pkg/http"
)

// SettingsServiceInterface defines the interface for self-service profile access
type SettingsServiceInterface interface {
	GetByHandle(ctx context.Context, handle string) (*models.Account, error)
	UpdateContact(ctx context.Context, handle, phone, address string) (*models.Account, error)
}

// SettingsHandler serves the caller's own profile row.
type SettingsHandler struct {
	service SettingsServiceInterface
}

func NewSettingsHandler(service SettingsServiceInterface) *SettingsHandler {
	return &SettingsHandler{
		service: service,
	}
}

// UpdateSettingsRequest represents the request body for saving contact info
type UpdateSettingsRequest struct {
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Address string `json:"address" validate:"omitempty,max=256"`
}

// SettingsResponse is the caller's own row. The password field is a fixed
// mask; the hash never leaves the server.
type SettingsResponse struct {
	Account   string  `json:"account"`
	Name      string  `json:"name"`
	Password  string  `json:"password"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	Role      string  `json:"role"`
	UpdatedAt string  `json:"updated_at"`
}

func settingsResponse(account *models.Account) SettingsResponse {
	return SettingsResponse{
		Account:   account.Account,
		Name:      account.DisplayName,
		Password:  passwordMask,
		Phone:     account.Phone,
		Address:   account.Address,
		Role:      account.Role,
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}
}

// Get returns the session owner's row.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	account, err := h.service.GetByHandle(r.Context(), user.Account)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(account))
}

// Update saves the session owner's phone and address. Nothing else on the
// row is touched.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUserFromContext(r)
	if user == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.service.UpdateContact(r.Context(), user.Account, req.Phone, req.Address)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Account not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(account))
}
