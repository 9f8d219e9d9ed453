package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nodewee/ocr-hub/pkg/utils"
)

// statusFor maps an error kind to the HTTP status the API answers with
func statusFor(errType utils.ErrorType) int {
	switch errType {
	case utils.ErrorTypeValidation:
		return fiber.StatusBadRequest
	case utils.ErrorTypeUnsupported:
		return fiber.StatusUnsupportedMediaType
	case utils.ErrorTypeBusy:
		return fiber.StatusConflict
	case utils.ErrorTypeNotFound:
		return fiber.StatusNotFound
	case utils.ErrorTypeCameraUnavailable, utils.ErrorTypeClipboard:
		return fiber.StatusServiceUnavailable
	case utils.ErrorTypeTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every error as {"error", "type", "code"}
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"
	errType := utils.ErrorTypeSystem

	var fe *fiber.Error
	var appErr *utils.AppError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
		message = fe.Message
	case errors.As(err, &appErr):
		errType = appErr.Type
		code = statusFor(errType)
		message = utils.UserMessage(appErr)
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("%s %s: %v", c.Method(), c.Path(), err)
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"type":  errType,
		"code":  code,
	})
}
