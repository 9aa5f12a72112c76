// internal/artists/handlers.go

package artists

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// Handler holds dependencies for artist endpoints
type Handler struct {
	service       Service
	maxUploadSize int64
	log           *logging.Logger
}

// NewHandler creates a new artist handler
func NewHandler(service Service, maxUploadSize int64, log *logging.Logger) *Handler {
	return &Handler{
		service:       service,
		maxUploadSize: maxUploadSize,
		log:           log,
	}
}

// Browse handles GET /api/v1/artists
func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := &BrowseFilter{
		Search:       strings.TrimSpace(q.Get("search")),
		Skill:        strings.TrimSpace(q.Get("skill")),
		Neighborhood: strings.TrimSpace(q.Get("neighborhood")),
	}
	if v := q.Get("openToWork"); v != "" {
		open, err := strconv.ParseBool(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "openToWork must be true or false")
			return
		}
		filter.OpenToWork = &open
	}
	if v := q.Get("limit"); v != "" {
		filter.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		filter.Offset, _ = strconv.Atoi(v)
	}

	profiles, err := h.service.Browse(r.Context(), filter)
	if err != nil {
		h.handleError(w, err, "failed to browse artists")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"artists": profiles,
		"limit":   filter.Limit,
		"offset":  filter.Offset,
	})
}

// GetProfile handles GET /api/v1/artists/{id}
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !isUUID(id) {
		utils.RespondWithError(w, http.StatusNotFound, "Artist profile not found")
		return
	}

	profile, err := h.service.GetPublicProfile(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "failed to get artist profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// GetMyProfile handles GET /api/v1/artists/me
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	profile, err := h.service.GetMyProfile(r.Context(), principal.UserID)
	if err != nil {
		h.handleError(w, err, "failed to get artist profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// UpdateMyProfile handles PUT /api/v1/artists/me
func (h *Handler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req UpdateProfileRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	profile, err := h.service.UpdateMyProfile(r.Context(), principal.UserID, &req)
	if err != nil {
		h.handleError(w, err, "failed to update artist profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, profile)
}

// CreatePortfolio handles POST /api/v1/artists/me/portfolios
func (h *Handler) CreatePortfolio(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	var req CreatePortfolioRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	portfolio, err := h.service.CreatePortfolio(r.Context(), principal.UserID, &req)
	if err != nil {
		h.handleError(w, err, "failed to create portfolio")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, portfolio)
}

// ListMyPortfolios handles GET /api/v1/artists/me/portfolios
func (h *Handler) ListMyPortfolios(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	portfolios, err := h.service.ListMyPortfolios(r.Context(), principal.UserID)
	if err != nil {
		h.handleError(w, err, "failed to list portfolios")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"portfolios": portfolios})
}

// AddPortfolioItem handles POST /api/v1/artists/me/portfolios/{portfolioID}/items.
// The body is multipart: title, description, category, tags (comma separated),
// displayOrder and an optional "image" file.
func (h *Handler) AddPortfolioItem(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())
	portfolioID := chi.URLParam(r, "portfolioID")
	if !isUUID(portfolioID) {
		utils.RespondWithError(w, http.StatusNotFound, "Portfolio not found")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	req := CreateItemRequest{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	if tags := r.FormValue("tags"); tags != "" {
		req.Tags = strings.Split(tags, ",")
	}
	if v := r.FormValue("displayOrder"); v != "" {
		order, err := strconv.Atoi(v)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "displayOrder must be a number")
			return
		}
		req.DisplayOrder = order
	}
	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var image io.Reader
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		if header.Size > h.maxUploadSize {
			utils.RespondWithError(w, http.StatusBadRequest, "Image too large")
			return
		}
		image = file
	case errors.Is(err, http.ErrMissingFile):
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid image upload")
		return
	}

	item, err := h.service.AddPortfolioItem(r.Context(), principal.UserID, portfolioID, &req, image)
	if err != nil {
		h.handleError(w, err, "failed to add portfolio item")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, item)
}

// DeletePortfolioItem handles DELETE /api/v1/artists/me/portfolios/{portfolioID}/items/{itemID}
func (h *Handler) DeletePortfolioItem(w http.ResponseWriter, r *http.Request) {
	principal, _ := auth.PrincipalFromContext(r.Context())

	portfolioID, itemID := chi.URLParam(r, "portfolioID"), chi.URLParam(r, "itemID")
	if !isUUID(portfolioID) || !isUUID(itemID) {
		utils.RespondWithError(w, http.StatusNotFound, "Portfolio item not found")
		return
	}

	err := h.service.DeletePortfolioItem(r.Context(), principal.UserID, portfolioID, itemID)
	if err != nil {
		h.handleError(w, err, "failed to delete portfolio item")
		return
	}
	utils.RespondWithMessage(w, http.StatusOK, "Portfolio item deleted")
}

func (h *Handler) handleError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Artist profile not found")
	case errors.Is(err, ErrPortfolioNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Portfolio not found")
	case errors.Is(err, ErrItemNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Portfolio item not found")
	case errors.Is(err, ErrUnknownNeighborhood):
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown neighborhood")
	case errors.Is(err, ErrUnsupportedImage):
		utils.RespondWithError(w, http.StatusBadRequest, "Image must be JPEG, PNG, GIF or WebP")
	default:
		h.log.Error(msg, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
