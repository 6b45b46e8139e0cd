package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/firma-xades/internal/application/dto"
	"github.com/jhoicas/firma-xades/internal/domain"
	"github.com/jhoicas/firma-xades/internal/domain/xades"
	pkgxades "github.com/jhoicas/firma-xades/pkg/xades"
)

// writeError traduce errores de aplicación a código HTTP + dto.ErrorResponse.
func writeError(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		GetLogger(c).Error().Err(err).Msg("error interno")
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, RequestID: GetRequestID(c)})
}

func classify(err error) (int, string) {
	var gen *xades.PropertyDataGenerationError
	if errors.As(err, &gen) {
		switch gen.Reason {
		case xades.ErrUnsupportedAlgorithm:
			return fiber.StatusUnprocessableEntity, "UNSUPPORTED_ALGORITHM"
		case xades.ErrMalformedPolicyDocument:
			return fiber.StatusUnprocessableEntity, "MALFORMED_POLICY"
		case xades.ErrCanonicalizationFailed:
			return fiber.StatusUnprocessableEntity, "CANONICALIZATION_FAILED"
		case xades.ErrTransformFailed:
			return fiber.StatusUnprocessableEntity, "TRANSFORM_FAILED"
		case xades.ErrPolicyDocumentIO:
			return fiber.StatusBadRequest, "POLICY_DOCUMENT_IO"
		case xades.ErrDigestFailed:
			// Falla del motor de digest: es del servidor, no de la política recibida.
			return fiber.StatusInternalServerError, "DIGEST_FAILED"
		}
	}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, pkgxades.ErrInvalidDocument):
		return fiber.StatusUnprocessableEntity, "INVALID_DOCUMENT"
	case errors.Is(err, domain.ErrSignerNotConfigured):
		return fiber.StatusServiceUnavailable, "SIGNER_NOT_CONFIGURED"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}
