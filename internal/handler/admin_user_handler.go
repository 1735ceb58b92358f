package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

// AdminUserHandler lists learners for administrators.
type AdminUserHandler struct {
	service service.AdminUserService
	logger  zerolog.Logger
}

// NewAdminUserHandler constructs the admin user handler.
func NewAdminUserHandler(service service.AdminUserService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register attaches admin user routes.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	var req dto.AdminUserListRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	result, err := h.service.List(c.UserContext(), req)
	if err != nil {
		if handled, sendErr := commonError(c, err); handled {
			return sendErr
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list users")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list users")
	}

	return utils.SendSuccess(c, "users retrieved", result)
}
