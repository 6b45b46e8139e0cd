package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jhoicas/firma-xades/pkg/logger"
)

// Cabecera y key de Locals del identificador de petición.
const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "request_id"
	localLogger     = "logger"
)

// RequestMiddleware asigna un request id (o respeta el recibido), deja un logger hijo en
// Locals y registra cada petición al terminar.
func RequestMiddleware(log *logger.Logger) fiber.Handler {
	log = logger.OrNop(log)
	return func(c *fiber.Ctx) error {
		reqID := c.Get(HeaderRequestID)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		c.Set(HeaderRequestID, reqID)
		c.Locals(LocalRequestID, reqID)
		reqLog := log.Child("request_id", reqID)
		c.Locals(localLogger, reqLog)

		start := time.Now()
		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler fije el status antes de registrar.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		reqLog.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("petición HTTP")
		return nil
	}
}

// GetRequestID devuelve el request id del contexto.
func GetRequestID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalRequestID).(string)
	return s
}

// GetLogger devuelve el logger de la petición (Nop si no pasó por RequestMiddleware).
func GetLogger(c *fiber.Ctx) *logger.Logger {
	l, _ := c.Locals(localLogger).(*logger.Logger)
	return logger.OrNop(l)
}
