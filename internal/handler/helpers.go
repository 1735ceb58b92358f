package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/cloudlab-api/internal/auth"
	"github.com/noah-isme/cloudlab-api/internal/grading"
	"github.com/noah-isme/cloudlab-api/internal/middleware"
	"github.com/noah-isme/cloudlab-api/internal/utils"
)

const unauthenticatedMessage = "authentication required"

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// validationMessage lists the offending fields, e.g. "imageData is required".
func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := jsonFieldName(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			messages = append(messages, field+" is required")
		default:
			messages = append(messages, field+" is invalid")
		}
	}
	return strings.Join(messages, "; ")
}

// jsonFieldName turns a Go field name into its camelCase JSON name.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	field = strings.Replace(field, "URL", "Url", 1)
	field = strings.Replace(field, "ID", "Id", 1)
	return strings.ToLower(field[:1]) + field[1:]
}

// identityOrReject returns the verified caller, writing a 401 when the route was
// mounted without the JWT middleware.
func identityOrReject(c *fiber.Ctx) (*auth.Identity, bool, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return nil, false, utils.SendError(c, fiber.StatusUnauthorized, unauthenticatedMessage)
	}
	return identity, true, nil
}

// commonError maps errors shared by every endpoint; ok is false when the caller
// should fall through to its own classification.
func commonError(c *fiber.Ctx, err error) (bool, error) {
	switch {
	case isValidationError(err):
		return true, utils.SendError(c, fiber.StatusBadRequest, validationMessage(err))
	case grading.IsValidationError(err):
		return true, utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		return false, nil
	}
}
