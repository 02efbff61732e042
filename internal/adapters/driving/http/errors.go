package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/docpilot/internal/core/domain"
	"github.com/custodia-labs/docpilot/internal/logger"
)

var validate = validator.New()

// validateRequest checks req's validate tags and reports failures as
// invalid input.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(fields, "; "))
}

// statusFor maps a domain error kind onto an HTTP status.
func statusFor(kind string) int {
	switch kind {
	case domain.KindInvalidInput:
		return fiber.StatusBadRequest
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindCapacityExceeded, domain.KindDimensionMismatch:
		return fiber.StatusConflict
	case domain.KindEmbeddingProvider, domain.KindGeneration:
		return fiber.StatusBadGateway
	case domain.KindConfig:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// errorHandler renders every handler error as an ErrorResponse.
func errorHandler(c *fiber.Ctx, err error) error {
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return c.Status(ferr.Code).JSON(ErrorResponse{
			Code:    ferr.Code,
			Kind:    kindForStatus(ferr.Code),
			Message: ferr.Message,
		})
	}

	kind := domain.ErrorKind(err)
	status := statusFor(kind)
	if status >= fiber.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Method(), c.Path(), err)
	} else {
		logger.Debug("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(status).JSON(ErrorResponse{
		Code:    status,
		Kind:    kind,
		Message: err.Error(),
	})
}

func kindForStatus(status int) string {
	switch {
	case status == fiber.StatusNotFound:
		return domain.KindNotFound
	case status < fiber.StatusInternalServerError:
		return domain.KindInvalidInput
	default:
		return domain.KindInternal
	}
}
