package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/dto"
	"github.com/noah-isme/cloudlab-api/internal/service"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

const analysisFailedMessage = "AI 분석에 실패했습니다. 잠시 후 다시 시도하거나 데모 모드를 사용해주세요."

// AnalysisHandler exposes the photograph classification endpoint.
type AnalysisHandler struct {
	service service.AnalysisService
	logger  zerolog.Logger
}

// NewAnalysisHandler constructs an analysis handler.
func NewAnalysisHandler(service service.AnalysisService, logger zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger.With().Str("component", "analysis_handler").Logger(),
	}
}

// Register wires analysis routes.
func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Post("", h.analyze)
}

func (h *AnalysisHandler) analyze(c *fiber.Ctx) error {
	identity, ok, err := identityOrReject(c)
	if !ok {
		return err
	}

	var payload dto.AnalyzeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Analyze(c.UserContext(), identity, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	message := "analysis completed"
	if response.Synthetic {
		message = "demo analysis completed"
	}
	return utils.SendSuccess(c, message, response)
}

func (h *AnalysisHandler) handleError(c *fiber.Ctx, err error) error {
	if handled, sendErr := commonError(c, err); handled {
		return sendErr
	}

	switch {
	case errors.Is(err, service.ErrAnalysisFailed):
		requestLogger(h.logger, c).Error().Err(err).Msg("analysis failed")
		return utils.SendError(c, fiber.StatusInternalServerError, analysisFailedMessage)
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
