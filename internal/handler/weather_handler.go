package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

// WeatherHandler resolves current conditions for the caller's position.
type WeatherHandler struct {
	service service.WeatherService
	logger  zerolog.Logger
}

// NewWeatherHandler constructs a weather handler.
func NewWeatherHandler(service service.WeatherService, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		logger:  logger.With().Str("component", "weather_handler").Logger(),
	}
}

// Register wires weather routes.
func (h *WeatherHandler) Register(router fiber.Router) {
	router.Post("", h.current)
}

func (h *WeatherHandler) current(c *fiber.Ctx) error {
	var payload dto.WeatherRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	weather, err := h.service.Current(c.UserContext(), payload)
	if err != nil {
		if handled, sendErr := commonError(c, err); handled {
			return sendErr
		}
		if errors.Is(err, service.ErrLocationUnsupported) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, service.ErrUpstreamUnavailable) {
			requestLogger(h.logger, c).Error().Err(err).Msg("weather provider failed")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to fetch weather data")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "weather retrieved", weather)
}
