// internal/payments/handlers.go

package payments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// Handler holds dependencies for payment endpoints
type Handler struct {
	service Service
	log     *logging.Logger
}

// NewHandler creates a new payment handler
func NewHandler(service Service, log *logging.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// CreateSession handles POST /api/v1/payments/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req CreateSessionRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment data")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		h.log.Debug("payment rejected", "user_id", principal.UserID, "err", err)
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payment data")
		return
	}

	resp, err := h.service.CreateSession(r.Context(), principal.UserID, &req)
	if err != nil {
		if errors.Is(err, ErrAmountTooSmall) {
			utils.RespondWithError(w, http.StatusBadRequest, "Amount must exceed the processing fee")
			return
		}
		h.log.Error("payment session creation error", "user_id", principal.UserID, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create payment session")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, resp)
}

// List handles GET /api/v1/payments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	payments, err := h.service.List(r.Context(), principal.UserID, limit, offset)
	if err != nil {
		h.log.Error("failed to list payments", "user_id", principal.UserID, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"payments": payments})
}

// Get handles GET /api/v1/payments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Payment not found")
		return
	}

	payment, err := h.service.Get(r.Context(), principal.UserID, id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Payment not found")
			return
		}
		h.log.Error("failed to get payment", "payment_id", id, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, payment)
}
