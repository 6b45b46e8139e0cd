package algorithms

import "github.com/jhoicas/firma-xades/internal/domain/xades"

// AlgorithmsProvider define los algoritmos globales de la sesión de firma.
type AlgorithmsProvider struct {
	digestForReferenceProperties string
}

// NewAlgorithmsProvider usa digestURI para las propiedades con referencia
// (SigPolicyHash, CertDigest). Vacío = SHA-256.
func NewAlgorithmsProvider(digestURI string) *AlgorithmsProvider {
	if digestURI == "" {
		digestURI = xades.AlgSHA256
	}
	return &AlgorithmsProvider{digestForReferenceProperties: digestURI}
}

// DigestAlgorithmForReferenceProperties devuelve el URI de digest configurado.
func (p *AlgorithmsProvider) DigestAlgorithmForReferenceProperties() string {
	return p.digestForReferenceProperties
}
