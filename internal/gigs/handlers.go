// internal/gigs/handlers.go

package gigs

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// Handler holds dependencies for gig endpoints
type Handler struct {
	service Service
	log     *logging.Logger
}

// NewHandler creates a new gig handler
func NewHandler(service Service, log *logging.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log,
	}
}

// Create handles POST /api/v1/gigs
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req CreateGigRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	gig, err := h.service.Create(r.Context(), principal.UserID, &req)
	if err != nil {
		h.handleError(w, err, "failed to create gig")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, gig)
}

// List handles GET /api/v1/gigs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &ListFilter{
		Search:   strings.TrimSpace(q.Get("search")),
		Location: strings.TrimSpace(q.Get("location")),
	}

	if v := q.Get("category"); v != "" {
		c, ok := ParseCategory(v)
		if !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid category")
			return
		}
		filter.Category = c
	}
	if v := q.Get("status"); v != "" {
		st, ok := ParseStatus(v)
		if !ok {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
			return
		}
		filter.Status = st
	}
	if v := q.Get("remote"); v != "" {
		remote, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "remote must be true or false")
			return
		}
		filter.Remote = &remote
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	gigs, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleError(w, err, "failed to list gigs")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"gigs":   gigs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// Get handles GET /api/v1/gigs/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
		return
	}

	gig, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "failed to get gig")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, gig)
}

// ListMine handles GET /api/v1/gigs/mine
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	gigs, err := h.service.ListMine(r.Context(), principal.UserID)
	if err != nil {
		h.handleError(w, err, "failed to list client gigs")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"gigs": gigs})
}

// UpdateStatus handles PATCH /api/v1/gigs/{id}/status
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
		return
	}

	var req UpdateStatusRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	gig, err := h.service.UpdateStatus(r.Context(), principal.UserID, id, status)
	if err != nil {
		h.handleError(w, err, "failed to update gig status")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, gig)
}

// ListNeighborhoods handles GET /api/v1/neighborhoods
func (h *Handler) ListNeighborhoods(w http.ResponseWriter, r *http.Request) {
	neighborhoods, err := h.service.ListNeighborhoods(r.Context())
	if err != nil {
		h.handleError(w, err, "failed to list neighborhoods")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"neighborhoods": neighborhoods})
}

func (h *Handler) handleError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrGigNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Gig not found")
	case errors.Is(err, ErrClientProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Client profile not found")
	case errors.Is(err, ErrNotOwner):
		utils.RespondWithError(w, http.StatusForbidden, "Only the client who posted this gig can change it")
	case errors.Is(err, ErrInvalidTransition):
		utils.RespondWithError(w, http.StatusConflict, "Invalid status transition")
	case errors.Is(err, ErrInvalidCategory):
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid category")
	case errors.Is(err, ErrInvalidBudgetType):
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid budget type")
	case errors.Is(err, ErrDeadlinePassed):
		utils.RespondWithError(w, http.StatusBadRequest, "Deadline must be in the future")
	case errors.Is(err, ErrUnknownNeighborhood):
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown neighborhood")
	default:
		h.log.Error(msg, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
