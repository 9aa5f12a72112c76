// internal/matching/handlers.go

package matching

import (
	"context"
	"errors"
	"net/http"

	"github.com/brooklyncreativehub/hub-backend/internal/artists"
	"github.com/brooklyncreativehub/hub-backend/internal/auth"
	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// RateLimiter decides whether a caller may start another match request
type RateLimiter interface {
	Allow(ctx context.Context, id string) (bool, error)
}

// Handler holds dependencies for the matching endpoint
type Handler struct {
	service *Service
	limiter RateLimiter
	log     *logging.Logger
}

// NewHandler creates a new matching handler. limiter may be nil.
func NewHandler(service *Service, limiter RateLimiter, log *logging.Logger) *Handler {
	return &Handler{
		service: service,
		limiter: limiter,
		log:     log,
	}
}

// MatchGigs handles POST /api/v1/ai/match-gigs
func (h *Handler) MatchGigs(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.limiter != nil {
		allowed, err := h.limiter.Allow(r.Context(), principal.UserID)
		if err != nil {
			h.log.Warn("match rate limit unavailable", "user_id", principal.UserID, "err", err)
		} else if !allowed {
			recordOutcome(outcomeRateLimited)
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many match requests")
			return
		}
	}

	result, err := h.service.MatchGigs(r.Context(), principal.UserID)
	if err != nil {
		if errors.Is(err, artists.ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Artist profile not found")
			return
		}
		h.log.Error("AI matching error", "user_id", principal.UserID, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate gig matches")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, result)
}
