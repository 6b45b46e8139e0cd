package domain

import "errors"

// Errores de aplicación (sin dependencias externas).
var (
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrSignerNotConfigured = errors.New("no hay certificado de firma configurado")
)
