package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

// StatsHandler exposes learner statistics.
type StatsHandler struct {
	service service.StatsService
	logger  zerolog.Logger
}

// NewStatsHandler constructs a stats handler.
func NewStatsHandler(service service.StatsService, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		service: service,
		logger:  logger.With().Str("component", "stats_handler").Logger(),
	}
}

// Register wires stats routes.
func (h *StatsHandler) Register(router fiber.Router) {
	router.Get("", h.get)
}

func (h *StatsHandler) get(c *fiber.Ctx) error {
	identity, ok, err := identityOrReject(c)
	if !ok {
		return err
	}

	stats, err := h.service.Get(c.UserContext(), identity, c.Query("userId"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return utils.SendError(c, fiber.StatusForbidden, "Forbidden: cannot access another user's statistics")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to compute stats")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to compute statistics")
	}

	return utils.SendSuccess(c, "statistics retrieved", stats)
}
