// internal/auth/handlers.go

package auth

import (
	"errors"
	"net/http"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// Handler holds dependencies for auth endpoints
type Handler struct {
	service Service
	log     *logging.Logger
}

// NewHandler creates a new auth handler
func NewHandler(service Service, log *logging.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// Register handles POST /api/auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.handleError(w, err, "registration failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.handleError(w, err, "login failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// RefreshToken handles POST /api/auth/refresh
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.handleError(w, err, "token refresh failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Provision handles POST /api/auth/provision for externally authenticated users
func (h *Handler) Provision(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ProvisionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.service.Provision(r.Context(), principal, &req)
	if err != nil {
		h.handleError(w, err, "provisioning failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"message": "Account created. Refresh your ID token to pick up your role.",
	})
}

// Me handles GET /api/auth/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetUserByID(r.Context(), principal.UserID)
	if err != nil {
		h.handleError(w, err, "failed to load current user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) handleError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrInvalidRole):
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid role")
	case errors.Is(err, ErrEmailAlreadyExists):
		utils.RespondWithError(w, http.StatusBadRequest, "User already exists")
	case errors.Is(err, ErrInvalidCredentials):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, ErrProvisioningEnabled):
		utils.RespondWithError(w, http.StatusUnauthorized, "Sign in with your identity provider")
	case errors.Is(err, ErrInvalidToken):
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
	case errors.Is(err, ErrTooManyAttempts):
		utils.RespondWithError(w, http.StatusTooManyRequests, "Too many failed attempts, try again later")
	case errors.Is(err, ErrAlreadyProvisioned):
		utils.RespondWithError(w, http.StatusConflict, "Account already set up")
	case errors.Is(err, ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
	default:
		h.log.Error(msg, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
