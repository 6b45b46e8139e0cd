package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/firma-xades/internal/application/dto"
	"github.com/jhoicas/firma-xades/internal/application/usecase"
)

// SignatureHandler firma documentos XML.
type SignatureHandler struct {
	uc *usecase.SignatureUseCase
}

// NewSignatureHandler construye el handler.
func NewSignatureHandler(uc *usecase.SignatureUseCase) *SignatureHandler {
	return &SignatureHandler{uc: uc}
}

// Sign godoc
// @Summary      Firmar XML (XAdES-EPES)
// @Tags         signatures
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SignRequest  true  "XML en Base64"
// @Success      201   {object}  dto.SignResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/signatures [post]
func (h *SignatureHandler) Sign(c *fiber.Ctx) error {
	var in dto.SignRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Sign(in)
	if err != nil {
		return writeError(c, err)
	}
	GetLogger(c).Info().Str("client_id", GetClientID(c)).Msg("documento firmado")
	return c.Status(fiber.StatusCreated).JSON(out)
}
