package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

// IdempotencyHeader lets clients retry a save without creating a second observation.
const IdempotencyHeader = "Idempotency-Key"

// ObservationHandler manages observation endpoints.
type ObservationHandler struct {
	service service.ObservationService
	logger  zerolog.Logger
}

// NewObservationHandler builds an observation handler instance.
func NewObservationHandler(service service.ObservationService, logger zerolog.Logger) *ObservationHandler {
	return &ObservationHandler{
		service: service,
		logger:  logger.With().Str("component", "observation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ObservationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
}

func (h *ObservationHandler) list(c *fiber.Ctx) error {
	identity, ok, err := identityOrReject(c)
	if !ok {
		return err
	}

	var query dto.ObservationListRequest
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	observations, err := h.service.List(c.UserContext(), identity, query.UserID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "observations retrieved", observations)
}

func (h *ObservationHandler) create(c *fiber.Ctx) error {
	identity, ok, err := identityOrReject(c)
	if !ok {
		return err
	}

	var payload dto.ObservationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.service.Save(c.UserContext(), identity, payload, c.Get(IdempotencyHeader))
	if err != nil {
		return h.handleError(c, err)
	}

	if result.Duplicate {
		return utils.SendSuccess(c, "observation already recorded", result)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "observation recorded", result)
}

func (h *ObservationHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, sendErr := commonError(c, err); handled {
		return sendErr
	}

	switch {
	case errors.Is(err, service.ErrMissingJudgment):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAnalysisNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "analysis expired, please analyze the photo again")
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "Forbidden: cannot access another user's observations")
	case errors.Is(err, service.ErrImageTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrImageTypeNotAllowed), errors.Is(err, service.ErrInvalidImage):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
