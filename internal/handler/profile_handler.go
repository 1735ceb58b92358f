package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/models"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

// ProfileHandler exposes the caller's class enrolment.
type ProfileHandler struct {
	service service.ProfileService
	logger  zerolog.Logger
}

// NewProfileHandler constructs a profile handler.
func NewProfileHandler(service service.ProfileService, logger zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{
		service: service,
		logger:  logger.With().Str("component", "profile_handler").Logger(),
	}
}

// Register wires profile routes.
func (h *ProfileHandler) Register(router fiber.Router) {
	router.Get("", h.get)
	router.Post("", h.upsert)
}

func (h *ProfileHandler) get(c *fiber.Ctx) error {
	identity, ok, err := identityOrReject(c)
	if !ok {
		return err
	}

	profile, err := h.service.Get(c.UserContext(), identity)
	if err != nil {
		return h.handleError(c, err)
	}
	if profile == nil {
		return utils.SendSuccess(c, "profile not set", nil)
	}

	return utils.SendSuccess(c, "profile retrieved", profile)
}

func (h *ProfileHandler) upsert(c *fiber.Ctx) error {
	identity, ok, err := identityOrReject(c)
	if !ok {
		return err
	}

	var payload dto.ProfileUpsertRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.Upsert(c.UserContext(), identity, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "profile saved", profile)
}

func (h *ProfileHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, sendErr := commonError(c, err); handled {
		return sendErr
	}

	switch {
	case errors.Is(err, service.ErrInvalidClassName):
		return utils.SendError(c, fiber.StatusBadRequest, "className must be one of: "+models.ClassSpring2026+", "+models.ClassGeneral)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
