// internal/auth/devices.go
// Push device tokens registered by signed-in users

package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/brooklyncreativehub/hub-backend/internal/common/logging"
	"github.com/brooklyncreativehub/hub-backend/internal/common/utils"
)

// maxDevicesPerUser bounds how many tokens a single push fans out to
const maxDevicesPerUser = 20

// DeviceRepository stores push tokens. A token belongs to at most one user;
// registering it again moves it to the caller.
type DeviceRepository interface {
	RegisterDevice(ctx context.Context, userID, token, platform string) error
	DeleteDevice(ctx context.Context, userID, token string) error
	ListDeviceTokens(ctx context.Context, userID string) ([]string, error)
	RemoveDeviceTokens(ctx context.Context, userID string, tokens []string) error
}

type postgresDeviceRepository struct {
	db *sqlx.DB
}

// NewDeviceRepository creates a PostgreSQL device token store
func NewDeviceRepository(db *sqlx.DB) DeviceRepository {
	return &postgresDeviceRepository{db: db}
}

func (r *postgresDeviceRepository) RegisterDevice(ctx context.Context, userID, token, platform string) error {
	query := `
		INSERT INTO device_tokens (token, user_id, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE
		SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.ExecContext(ctx, query, token, userID, platform); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (r *postgresDeviceRepository) DeleteDevice(ctx context.Context, userID, token string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`, userID, token); err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	return nil
}

func (r *postgresDeviceRepository) ListDeviceTokens(ctx context.Context, userID string) ([]string, error) {
	var tokens []string
	query := `
		SELECT token FROM device_tokens
		WHERE user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`

	if err := r.db.SelectContext(ctx, &tokens, query, userID, maxDevicesPerUser); err != nil {
		return nil, fmt.Errorf("failed to list device tokens: %w", err)
	}
	return tokens, nil
}

func (r *postgresDeviceRepository) RemoveDeviceTokens(ctx context.Context, userID string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM device_tokens WHERE user_id = $1 AND token = ANY($2)`, userID, pq.Array(tokens)); err != nil {
		return fmt.Errorf("failed to remove device tokens: %w", err)
	}
	return nil
}

type RegisterDeviceRequest struct {
	Token    string `json:"token" validate:"required,max=4096"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

type UnregisterDeviceRequest struct {
	Token string `json:"token" validate:"required,max=4096"`
}

// DeviceHandler serves /api/v1/devices
type DeviceHandler struct {
	devices DeviceRepository
	log     *logging.Logger
}

func NewDeviceHandler(devices DeviceRepository, log *logging.Logger) *DeviceHandler {
	return &DeviceHandler{devices: devices, log: log}
}

// Register handles POST /api/v1/devices
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req RegisterDeviceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.devices.RegisterDevice(r.Context(), principal.UserID, req.Token, req.Platform); err != nil {
		h.log.Error("failed to register device", "user_id", principal.UserID, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register device")
		return
	}

	utils.RespondWithMessage(w, http.StatusCreated, "Device registered")
}

// Unregister handles DELETE /api/v1/devices
func (h *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UnregisterDeviceRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.devices.DeleteDevice(r.Context(), principal.UserID, req.Token); err != nil {
		h.log.Error("failed to delete device", "user_id", principal.UserID, "err", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to remove device")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Device removed")
}
