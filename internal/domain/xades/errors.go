package xades

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNilPolicyDocument       = errors.New("documento de política nulo")
	ErrNilTransform            = errors.New("la transformada no puede ser nula")
	ErrTransformAlreadyAdded   = errors.New("la transformada ya fue agregada")
	ErrPolicySealed            = errors.New("la política ya fue consumida por el generador")
	ErrPolicyDocumentIO        = errors.New("no se pudo leer el documento de política")
	ErrUnsupportedAlgorithm    = errors.New("algoritmo no soportado")
	ErrMalformedPolicyDocument = errors.New("documento de política mal formado")
	ErrTransformFailed         = errors.New("falló la ejecución de la transformada")
	ErrCanonicalizationFailed  = errors.New("falló la canonicalización")
	ErrDigestFailed            = errors.New("no se pudo calcular el digest de la política")
	ErrInvalidPolicyData       = errors.New("datos de política inválidos")
)

// UnsupportedAlgorithmError identifica el URI de digest o transformada desconocido.
type UnsupportedAlgorithmError struct {
	URI string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("algoritmo no soportado: %q", e.URI)
}

// Is permite errors.Is(err, ErrUnsupportedAlgorithm).
func (e *UnsupportedAlgorithmError) Is(target error) bool {
	return target == ErrUnsupportedAlgorithm
}

// PropertyDataGenerationError es el único tipo de error que sale del generador de datos
// de una propiedad. Reason es uno de los errores de dominio y Err la causa original.
type PropertyDataGenerationError struct {
	Property string
	Reason   error
	Err      error
}

func (e *PropertyDataGenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("xades: generación de datos de %s: %v", e.Property, e.Reason)
	}
	if e.Reason == nil || errors.Is(e.Err, e.Reason) {
		return fmt.Sprintf("xades: generación de datos de %s: %v", e.Property, e.Err)
	}
	return fmt.Sprintf("xades: generación de datos de %s: %v: %v", e.Property, e.Reason, e.Err)
}

// Unwrap expone tanto el motivo como la causa para errors.Is / errors.As.
func (e *PropertyDataGenerationError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Reason != nil {
		out = append(out, e.Reason)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}
