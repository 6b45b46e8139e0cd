package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/firma-xades/internal/application/dto"
	"github.com/jhoicas/firma-xades/internal/application/usecase"
)

// PolicyHandler maneja las peticiones sobre la política de firma.
type PolicyHandler struct {
	uc *usecase.PolicyUseCase
}

// NewPolicyHandler construye el handler.
func NewPolicyHandler(uc *usecase.PolicyUseCase) *PolicyHandler {
	return &PolicyHandler{uc: uc}
}

// Identify godoc
// @Summary      Calcular SignaturePolicyIdentifier
// @Tags         signature-policy
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PolicyIdentifierRequest  true  "Política y transformadas"
// @Success      200   {object}  dto.PolicyIdentifierResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/signature-policy/identifier [post]
func (h *PolicyHandler) Identify(c *fiber.Ctx) error {
	var in dto.PolicyIdentifierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Identify(in)
	if err != nil {
		return writeError(c, err)
	}
	GetLogger(c).Debug().
		Bool("implied", out.Implied).
		Str("digest_alg", out.DigestAlgorithm).
		Msg("SignaturePolicyIdentifier generado")
	return c.JSON(out)
}
