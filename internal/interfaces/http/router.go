package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/firma-xades/internal/application/usecase"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName     string
	PolicyUC    *usecase.PolicyUseCase
	SignatureUC *usecase.SignatureUseCase
	JWTSecret   string
	JWTIssuer   string
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(RequestMiddleware(deps.Log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	// Rutas protegidas si hay JWT_SECRET
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	policyHandler := NewPolicyHandler(deps.PolicyUC)
	api.Post("/signature-policy/identifier", policyHandler.Identify)

	signatureHandler := NewSignatureHandler(deps.SignatureUC)
	api.Post("/signatures", signatureHandler.Sign)
}
