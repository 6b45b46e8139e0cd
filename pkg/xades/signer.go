// Package xades: interfaz para firma digital XAdES-EPES de documentos XML.

package xades

import (
	"crypto/tls"
	"errors"
)

// ErrInvalidDocument se retorna cuando el XML a firmar no se puede parsear de forma segura.
var ErrInvalidDocument = errors.New("xades: documento XML inválido")

// Signer firma un documento XML y devuelve el XML con ds:Signature inyectado.
type Signer interface {
	// Sign toma el XML sin firma y el certificado con llave privada RSA y retorna el XML
	// firmado. La firma lleva SignaturePolicyIdentifier en SignedSignatureProperties.
	Sign(xmlBytes []byte, cert tls.Certificate) ([]byte, error)
}
